// Dfalex
// Copyright (C) James Shubin and the project contributors
// Written by James Shubin <james@shubin.ca> and the project contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package lexer

import (
	"fmt"
)

// Error is a constant error type that implements error.
type Error string

// Error fulfills the error interface of this type.
func (e Error) Error() string { return string(e) }

// These constants represent the different possible lexer errors.
const (
	ErrUnrecognized = Error("unrecognized")
	ErrEmptyMatch   = Error("empty match")

	// ErrInvalidUTF8 means the source can't be split into characters.
	ErrInvalidUTF8 = Error("invalid utf-8")
)

// LexError is the permanent failure of a single token walk. It contains the
// state of the walk at the moment it died.
type LexError struct {
	Err Error

	// Pos is the zero-indexed character offset of the cursor when the walk
	// gave up. For a real character this is just past it, and at the end of
	// input it is the length of the source.
	Pos int

	// Symbol is the symbol that could not be consumed.
	Symbol Symbol

	// State is the state the walk was in. There is never a remembered
	// accepting state, since a walk that saw one falls back to it instead
	// of failing.
	State State
}

// Error displays this error with all the relevant state information.
func (e *LexError) Error() string {
	return fmt.Sprintf("%s: error at lexeme number %d: current lexeme %s, current state %d, remembered state none", e.Err, e.Pos, e.Symbol, e.State)
}

// Unwrap returns the error kind, so that errors.Is works on it.
func (e *LexError) Unwrap() error { return e.Err }
