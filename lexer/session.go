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
	"io"
	"unicode"
)

// cursor is the scan position of one session, counted in characters.
type cursor struct {
	src []rune
	pos int
}

// next reads the symbol at the cursor and advances past it. Once the source is
// exhausted it returns the end of input symbol and stays put.
func (obj *cursor) next() Symbol {
	if obj.pos >= len(obj.src) {
		return EndOfInput
	}
	r := obj.src[obj.pos]
	obj.pos++
	return Char(r)
}

// unread steps back over the character that was just read.
func (obj *cursor) unread() {
	obj.pos--
}

// done returns true when every character has been consumed.
func (obj *cursor) done() bool {
	return obj.pos >= len(obj.src)
}

// checkpoint is the most recent accepting point of a walk. The length is the
// number of characters of the image at that point.
type checkpoint struct {
	state  State
	label  Label
	length int
}

// Session is a single lexing run over one source text. It owns its cursor, so
// sessions of the same engine can run in parallel. A session can not be
// restarted, once it has reached the end it only returns io.EOF.
type Session struct {
	engine *Engine
	cur    *cursor

	failed error   // sticky error under the abort policy
	errs   []error // errors skipped over under the resync policy
}

// Next returns the next token of the unfiltered stream, including whitespace
// and other filtered kinds. At the end of the source it returns io.EOF. Under
// the abort policy, a lexical error is returned on this and on every later
// call. Under the resync policy, an error token is returned instead and the
// error can be seen with Errors.
func (obj *Session) Next() (Token, error) {
	if obj.failed != nil {
		return Token{}, obj.failed
	}
	if obj.cur.done() {
		return Token{}, io.EOF
	}

	start := obj.cur.pos
	tok, err := obj.walk()
	if err == nil {
		return tok, nil
	}
	if obj.engine.Policy != PolicyResync {
		obj.failed = err
		return Token{}, err
	}

	// skip the first character of the failed attempt and carry on
	obj.errs = append(obj.errs, err)
	obj.cur.pos = start + 1
	tok = Token{
		Image: string(obj.cur.src[start]),
		Label: LabelError,
	}
	if obj.engine.Debug {
		obj.engine.Logf("resync: skipped %s at %d: %v", tok, start, err)
	}
	return tok, nil
}

// Errors returns the lexical errors which the resync policy skipped over so
// far.
func (obj *Session) Errors() []error {
	return obj.errs
}

// walk runs the automaton from the start state for a single token. The image
// is always the slice of the source between the token start and the number of
// characters moved over, so only its length is tracked.
func (obj *Session) walk() (Token, error) {
	engine := obj.engine
	start := obj.cur.pos
	state := engine.Start
	n := 0
	var mark *checkpoint // nil until we've moved out of an accepting state

	for {
		sym := obj.cur.next()

		// move
		if next, ok := engine.lookup(state, sym); ok {
			if label, accepting := engine.Labels.Label(state); accepting && n > 0 {
				mark = &checkpoint{
					state:  state,
					label:  label,
					length: n,
				}
			}
			n++
			state = next
			continue
		}

		// recognize
		label, accepting := engine.Labels.Label(state)
		if accepting && n > 0 {
			if !sym.IsEndOfInput() {
				obj.cur.unread()
			}
			return engine.emit(obj.cur.src[start:start+n], label), nil
		}

		// error, fall back to the longest accepting prefix if we saw one
		if mark != nil {
			if engine.Debug {
				engine.Logf("walk: dead end in state %d on %s, back to state %d", state, sym, mark.state)
			}
			obj.cur.pos = start + mark.length
			return engine.emit(obj.cur.src[start:start+mark.length], mark.label), nil
		}

		kind := ErrUnrecognized
		if accepting { // accepting start state that can't move
			kind = ErrEmptyMatch
		}
		return Token{}, &LexError{
			Err:    kind,
			Pos:    obj.cur.pos,
			Symbol: sym,
			State:  state,
		}
	}
}

// lookup finds the transition for the symbol, retrying with the lower case form
// of the character when case folding is enabled.
func (obj *Engine) lookup(state State, sym Symbol) (State, bool) {
	if next, ok := obj.Transitions.Lookup(state, sym); ok {
		return next, true
	}
	if !obj.FoldCase {
		return 0, false
	}
	r, ok := sym.Rune()
	if !ok {
		return 0, false
	}
	if lower := unicode.ToLower(r); lower != r {
		return obj.Transitions.Lookup(state, Char(lower))
	}
	return 0, false
}

// emit builds the token for a recognized image and applies keyword resolution.
func (obj *Engine) emit(image []rune, label Label) Token {
	tok := obj.Keywords.Reclassify(Token{Image: string(image), Label: label}, obj.Identifier, obj.Keyword)
	if obj.Debug {
		obj.Logf("emit: %s", tok)
	}
	return tok
}
