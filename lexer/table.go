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
	"sort"
)

// transitionKey is the composite key of the sparse transition table.
type transitionKey struct {
	from State
	r    rune
}

// Transition is a single edge of the automaton.
type Transition struct {
	From State
	Char rune
	To   State
}

// TransitionTable maps a state and an input character to the next state. It is
// sparse: any pair which was never set has no transition. Build it fully before
// handing it to an engine, it must not be modified afterwards.
type TransitionTable struct {
	edges  map[transitionKey]State
	states map[State]struct{} // states which have a row
}

// NewTransitionTable returns an empty transition table.
func NewTransitionTable() *TransitionTable {
	return &TransitionTable{
		edges:  make(map[transitionKey]State),
		states: make(map[State]struct{}),
	}
}

// AddState records that a state exists, even if it has no outgoing edges. The
// loader does this for every row so that dead end rows are still known.
func (obj *TransitionTable) AddState(state State) {
	obj.states[state] = struct{}{}
}

// Set adds the edge from -- r --> to, replacing any previous one.
func (obj *TransitionTable) Set(from State, r rune, to State) {
	obj.AddState(from)
	obj.edges[transitionKey{from: from, r: r}] = to
}

// Lookup returns the next state for the symbol, and false if there is none.
// The end of input symbol never has a transition.
func (obj *TransitionTable) Lookup(from State, sym Symbol) (State, bool) {
	r, ok := sym.Rune()
	if !ok {
		return 0, false
	}
	to, exists := obj.edges[transitionKey{from: from, r: r}]
	return to, exists
}

// HasState returns true if the state has a row in this table.
func (obj *TransitionTable) HasState(state State) bool {
	_, exists := obj.states[state]
	return exists
}

// States returns the sorted list of states that have a row.
func (obj *TransitionTable) States() []State {
	states := []State{}
	for state := range obj.states {
		states = append(states, state)
	}
	sort.Slice(states, func(i, j int) bool { return states[i] < states[j] })
	return states
}

// Len returns the number of edges.
func (obj *TransitionTable) Len() int { return len(obj.edges) }

// Transitions returns every edge, sorted by source state and then character.
func (obj *TransitionTable) Transitions() []Transition {
	edges := []Transition{}
	for key, to := range obj.edges {
		edges = append(edges, Transition{From: key.from, Char: key.r, To: to})
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		return edges[i].Char < edges[j].Char
	})
	return edges
}

// Reachable returns the set of states reachable from start, start included.
func (obj *TransitionTable) Reachable(start State) map[State]struct{} {
	adj := make(map[State][]State)
	for key, to := range obj.edges {
		adj[key.from] = append(adj[key.from], to)
	}
	seen := map[State]struct{}{start: {}}
	queue := []State{start}
	for len(queue) > 0 {
		state := queue[0]
		queue = queue[1:]
		for _, next := range adj[state] {
			if _, exists := seen[next]; exists {
				continue
			}
			seen[next] = struct{}{}
			queue = append(queue, next)
		}
	}
	return seen
}

// LabelTable maps accepting states to the label of the token they recognize.
// Any state which is absent is not accepting.
type LabelTable struct {
	labels map[State]Label
}

// NewLabelTable returns an empty label table.
func NewLabelTable() *LabelTable {
	return &LabelTable{
		labels: make(map[State]Label),
	}
}

// Set marks the state as accepting with this label. An empty label removes the
// state, since it would not be accepting.
func (obj *LabelTable) Set(state State, label Label) {
	if label == "" {
		delete(obj.labels, state)
		return
	}
	obj.labels[state] = label
}

// Label returns the label of an accepting state, and false if the state is not
// accepting.
func (obj *LabelTable) Label(state State) (Label, bool) {
	label, exists := obj.labels[state]
	return label, exists
}

// Accepting returns the sorted list of accepting states.
func (obj *LabelTable) Accepting() []State {
	states := []State{}
	for state := range obj.labels {
		states = append(states, state)
	}
	sort.Slice(states, func(i, j int) bool { return states[i] < states[j] })
	return states
}

// Labels returns the sorted list of distinct labels in use.
func (obj *LabelTable) Labels() []Label {
	m := make(map[Label]struct{})
	for _, label := range obj.labels {
		m[label] = struct{}{}
	}
	labels := []Label{}
	for label := range m {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool { return labels[i] < labels[j] })
	return labels
}

// Len returns the number of accepting states.
func (obj *LabelTable) Len() int { return len(obj.labels) }

// KeywordSet is the case-sensitive set of reserved words.
type KeywordSet map[string]struct{}

// NewKeywordSet builds a keyword set from a list of words.
func NewKeywordSet(words ...string) KeywordSet {
	obj := make(KeywordSet)
	for _, word := range words {
		obj.Add(word)
	}
	return obj
}

// Add puts a word in the set.
func (obj KeywordSet) Add(word string) {
	obj[word] = struct{}{}
}

// Contains returns true if the word is a keyword. A nil set contains nothing.
func (obj KeywordSet) Contains(word string) bool {
	_, exists := obj[word]
	return exists
}

// Words returns the sorted list of keywords.
func (obj KeywordSet) Words() []string {
	words := []string{}
	for word := range obj {
		words = append(words, word)
	}
	sort.Strings(words)
	return words
}

// Resolve reclassifies an identifier token as a keyword if its image is in the
// set. Any other token is returned as is.
func (obj KeywordSet) Resolve(tok Token) Token {
	return obj.Reclassify(tok, LabelIdentifier, LabelKeyword)
}

// Reclassify is Resolve with custom identifier and keyword labels.
func (obj KeywordSet) Reclassify(tok Token, identifier, keyword Label) Token {
	if tok.Label != identifier || !obj.Contains(tok.Image) {
		return tok
	}
	return Token{Image: tok.Image, Label: keyword}
}
