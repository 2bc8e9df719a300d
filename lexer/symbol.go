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
	"strconv"
)

// State is the identifier of a state in the automaton. By convention the start
// state is zero, but an engine can be told to start anywhere.
type State int

// String returns the decimal form of the state.
func (obj State) String() string {
	return strconv.Itoa(int(obj))
}

// Label is the kind of a token, such as "identifier" or "whitespace".
type Label string

const (
	// LabelIdentifier is the default label that keyword resolution applies
	// to.
	LabelIdentifier Label = "identifier"

	// LabelKeyword is the default label given to identifiers that are in
	// the keyword set.
	LabelKeyword Label = "keyword"

	// LabelError is the label of the single character tokens which are
	// emitted when the resync policy skips over unrecognized input.
	LabelError Label = "error"

	// LabelWhitespace, LabelNewline and LabelComment are filtered from the
	// output stream by default.
	LabelWhitespace Label = "whitespace"
	LabelNewline    Label = "newline"
	LabelComment    Label = "comment"
)

// Symbol is a single unit of input for the automaton. It is either a real
// character, or the end of input marker. The zero value is the NUL character,
// not the end of input.
type Symbol struct {
	r   rune
	eoi bool
}

// EndOfInput is the symbol that is read once the source has been exhausted. It
// never has a transition in any table.
var EndOfInput = Symbol{eoi: true}

// Char builds the symbol for a real character.
func Char(r rune) Symbol {
	return Symbol{r: r}
}

// Rune returns the character of this symbol, and false if this is the end of
// input.
func (obj Symbol) Rune() (rune, bool) {
	if obj.eoi {
		return 0, false
	}
	return obj.r, true
}

// IsEndOfInput returns true if this symbol marks the end of input.
func (obj Symbol) IsEndOfInput() bool { return obj.eoi }

// String returns a printable representation of the symbol.
func (obj Symbol) String() string {
	if obj.eoi {
		return "<EOI>"
	}
	return strconv.QuoteRune(obj.r)
}

// Token is a single lexeme and its label. Tokens are values and are never
// mutated after they have been emitted.
type Token struct {
	Image string
	Label Label
}

// String returns the token in the (image, label) form.
func (obj Token) String() string {
	return fmt.Sprintf("(%q, %s)", obj.Image, obj.Label)
}
