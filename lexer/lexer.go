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

// Package lexer contains the table driven lexer engine. It runs a sparse
// deterministic finite automaton over the source text with maximal munch
// semantics, falls back to the longest accepting prefix on a dead end, and
// reclassifies identifiers which are keywords.
package lexer

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/purpleidea/dfalex/util/errwrap"
)

// Policy is what the engine does when a token can't be recognized at all.
type Policy int

const (
	// PolicyAbort stops the run at the first lexical error. This is the
	// default.
	PolicyAbort Policy = iota

	// PolicyResync emits the first character of the failed token as an
	// error token and resumes at the next character.
	PolicyResync
)

// String returns the name of the policy as used in config files.
func (obj Policy) String() string {
	switch obj {
	case PolicyAbort:
		return "abort"
	case PolicyResync:
		return "resync"
	}
	return fmt.Sprintf("policy(%d)", int(obj))
}

// ParsePolicy returns the policy for a name. The empty string is the default.
func ParsePolicy(name string) (Policy, error) {
	switch strings.ToLower(name) {
	case "", "abort":
		return PolicyAbort, nil
	case "resync":
		return PolicyResync, nil
	}
	return PolicyAbort, fmt.Errorf("unknown policy: `%s`", name)
}

// DefaultFiltered are the labels that are dropped from the output stream unless
// the engine is told otherwise.
var DefaultFiltered = []Label{
	LabelWhitespace,
	LabelNewline,
	LabelComment,
}

// Engine executes an automaton over source texts. Fill in the fields and run
// Init on it. After Init, the engine and its tables must not be modified, but it
// can be used by many goroutines at once.
type Engine struct {
	Transitions *TransitionTable
	Labels      *LabelTable
	Keywords    KeywordSet // may be nil

	// Start is the state that every token walk begins in.
	Start State

	// Identifier is the label that keyword resolution looks at. It
	// defaults to LabelIdentifier.
	Identifier Label

	// Keyword is the label that resolved keywords get. It defaults to
	// LabelKeyword.
	Keyword Label

	// Filtered are the labels that are removed from the output stream. If
	// this is nil, DefaultFiltered is used. Use an empty, non-nil slice to
	// keep everything.
	Filtered []Label

	Policy Policy

	// FoldCase retries the lookup of an upper case character with its
	// lower case form when there's no transition for it.
	FoldCase bool

	Debug bool
	Logf  func(format string, v ...interface{})

	filtered map[Label]struct{}
}

// Init validates the engine and sets the defaults.
func (obj *Engine) Init() error {
	if obj.Transitions == nil {
		return fmt.Errorf("the Transitions table is nil")
	}
	if obj.Labels == nil {
		return fmt.Errorf("the Labels table is nil")
	}
	if obj.Identifier == "" {
		obj.Identifier = LabelIdentifier
	}
	if obj.Keyword == "" {
		obj.Keyword = LabelKeyword
	}
	if obj.Filtered == nil {
		obj.Filtered = DefaultFiltered
	}
	if obj.Policy != PolicyAbort && obj.Policy != PolicyResync {
		return fmt.Errorf("invalid policy: %s", obj.Policy)
	}
	if obj.Logf == nil {
		obj.Logf = func(format string, v ...interface{}) {} // noop
	}

	obj.filtered = make(map[Label]struct{})
	for _, label := range obj.Filtered {
		obj.filtered[label] = struct{}{}
	}

	if obj.Debug {
		obj.Logf("init: %d states, %d transitions, %d accepting, %d keywords", len(obj.Transitions.States()), obj.Transitions.Len(), obj.Labels.Len(), len(obj.Keywords))
	}
	return nil
}

// NewSession starts a lexing session over the source. The source must be valid
// utf-8, otherwise every call to Next fails with ErrInvalidUTF8, whatever the
// policy is.
func (obj *Engine) NewSession(source string) *Session {
	session := &Session{
		engine: obj,
		cur: &cursor{
			src: []rune(source),
		},
	}
	if offset := invalidOffset(source); offset >= 0 {
		session.failed = errwrap.Wrapf(ErrInvalidUTF8, "bad byte at offset %d", offset)
	}
	return session
}

// invalidOffset returns the byte offset of the first invalid utf-8 sequence in
// s, or -1 if there is none.
func invalidOffset(s string) int {
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			return i
		}
		i += size
	}
	return -1
}

// Result is the outcome of a scan.
type Result struct {
	// All is the unfiltered stream. Concatenated, the images rebuild the
	// scanned part of the source.
	All []Token

	// Tokens is the stream with the filtered labels removed.
	Tokens []Token
}

// Scan runs a whole session over the source. On a lexical error under the abort
// policy, the partial result up to the error is returned along with the error.
// Under the resync policy the result is complete, and if anything was skipped,
// every skipped error is returned together. A source which isn't valid utf-8
// gives an empty result and an ErrInvalidUTF8 error under either policy.
func (obj *Engine) Scan(source string) (*Result, error) {
	all := []Token{}
	session := obj.NewSession(source)
	for {
		tok, err := session.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return &Result{All: all, Tokens: Filter(all, obj.Filtered...)}, err
		}
		all = append(all, tok)
	}

	var reterr error
	for _, err := range session.Errors() {
		reterr = errwrap.Append(reterr, err)
	}
	return &Result{All: all, Tokens: Filter(all, obj.Filtered...)}, reterr
}

// Tokenize returns the filtered token stream of the source.
func (obj *Engine) Tokenize(source string) ([]Token, error) {
	result, err := obj.Scan(source)
	return result.Tokens, err
}

// IsFiltered returns true if tokens with this label are dropped from the output
// stream.
func (obj *Engine) IsFiltered(label Label) bool {
	_, exists := obj.filtered[label]
	return exists
}
