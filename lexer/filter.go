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
	"strings"
)

// Filter returns the tokens whose label is not one of the labels, in the same
// order. The input is not modified.
func Filter(tokens []Token, labels ...Label) []Token {
	drop := make(map[Label]struct{})
	for _, label := range labels {
		drop[label] = struct{}{}
	}
	out := []Token{}
	for _, tok := range tokens {
		if _, exists := drop[tok.Label]; exists {
			continue
		}
		out = append(out, tok)
	}
	return out
}

// Reconstruct concatenates the images of the tokens. For an unfiltered stream
// this is the source text.
func Reconstruct(tokens []Token) string {
	var b strings.Builder
	for _, tok := range tokens {
		b.WriteString(tok.Image)
	}
	return b.String()
}
