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

// Package loader reads the automaton tables, the keyword list and the source
// text from files. The tables are in the CSV format of the original lexer
// tables: a transition matrix with code point columns, a state to label list,
// and a comma separated keyword list.
package loader

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/purpleidea/dfalex/lexer"
	"github.com/purpleidea/dfalex/util/errwrap"

	"github.com/spf13/afero"
)

// Error is a constant error type that implements error.
type Error string

// Error fulfills the error interface of this type.
func (e Error) Error() string { return string(e) }

// These constants represent the different possible loader errors.
const (
	ErrNotCSV      = Error("expected a .csv file")
	ErrMissingFile = Error("file does not exist")
	ErrIsDir       = Error("file is a directory")
	ErrMalformed   = Error("malformed table")
)

const (
	// CSVExtension is the extension that every table file must have.
	CSVExtension = ".csv"

	// NoTransition is the cell value which marks an absent transition. An
	// empty cell means the same thing.
	NoTransition = "-1"

	// NotAccepting is the label which marks a state as not accepting. An
	// empty label means the same thing.
	NotAccepting = "error"
)

// Files is the set of input files.
type Files struct {
	Transitions string
	Labels      string
	Keywords    string

	// Source is the file to lex. It is optional, leave it empty to only
	// load the tables.
	Source string
}

// Validate checks that every table has the csv extension and that every file
// exists. It reports all the problems at once.
func (obj *Files) Validate(fs afero.Fs) error {
	var reterr error
	tables := []string{obj.Transitions, obj.Labels, obj.Keywords}
	for _, name := range tables {
		if len(name) <= len(CSVExtension) || !strings.HasSuffix(name, CSVExtension) {
			reterr = errwrap.Append(reterr, errwrap.Wrapf(ErrNotCSV, "file `%s`", name))
		}
	}
	files := tables
	if obj.Source != "" {
		files = append(files, obj.Source)
	}
	for _, name := range files {
		if name == "" {
			continue // already reported as not a csv
		}
		fi, err := fs.Stat(name)
		if os.IsNotExist(err) {
			reterr = errwrap.Append(reterr, errwrap.Wrapf(ErrMissingFile, "file `%s`", name))
			continue
		}
		if err != nil {
			reterr = errwrap.Append(reterr, errwrap.Wrapf(err, "can't stat file `%s`", name))
			continue
		}
		if fi.IsDir() {
			reterr = errwrap.Append(reterr, errwrap.Wrapf(ErrIsDir, "file `%s`", name))
		}
	}
	return reterr
}

// List returns the names of every file in use, source last if it's set.
func (obj *Files) List() []string {
	files := []string{obj.Transitions, obj.Labels, obj.Keywords}
	if obj.Source != "" {
		files = append(files, obj.Source)
	}
	return files
}

// Bundle is everything that was loaded.
type Bundle struct {
	Transitions *lexer.TransitionTable
	Labels      *lexer.LabelTable
	Keywords    lexer.KeywordSet

	// Source is empty if no source file was given.
	Source string
}

// Load validates the files and then reads and parses all of them.
func Load(fs afero.Fs, files *Files) (*Bundle, error) {
	if err := files.Validate(fs); err != nil {
		return nil, err
	}

	bundle := &Bundle{}
	var err error
	if bundle.Transitions, err = parseFile(fs, files.Transitions, ParseTransitions); err != nil {
		return nil, err
	}
	if bundle.Labels, err = parseFile(fs, files.Labels, ParseLabels); err != nil {
		return nil, err
	}
	if bundle.Keywords, err = parseFile(fs, files.Keywords, ParseKeywords); err != nil {
		return nil, err
	}
	if files.Source != "" {
		data, err := afero.ReadFile(fs, files.Source)
		if err != nil {
			return nil, errwrap.Wrapf(err, "can't read source `%s`", files.Source)
		}
		if !utf8.Valid(data) {
			return nil, fmt.Errorf("source `%s` is not valid utf-8", files.Source)
		}
		bundle.Source = string(data)
	}
	return bundle, nil
}

// parseFile reads the named file and runs the parser on it.
func parseFile[T any](fs afero.Fs, name string, parse func(io.Reader) (T, error)) (T, error) {
	var zero T
	data, err := afero.ReadFile(fs, name)
	if err != nil {
		return zero, errwrap.Wrapf(err, "can't read file `%s`", name)
	}
	out, err := parse(bytes.NewReader(data))
	if err != nil {
		return zero, errwrap.Wrapf(err, "file `%s`", name)
	}
	return out, nil
}

// newReader returns a csv reader which allows a variable number of fields, so
// that we can report bad rows ourselves.
func newReader(r io.Reader) *csv.Reader {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	return reader
}

// rowErr builds a malformed table error for a one-indexed row.
func rowErr(row int, format string, v ...interface{}) error {
	return errwrap.Wrapf(ErrMalformed, "row %d: %s", row, fmt.Sprintf(format, v...))
}

// ParseTransitions parses a transition table. The first row is the header: its
// first cell is ignored, and every other cell is the decimal code point of the
// character of that column. Each following row is a state number and then the
// next state for every column. An empty cell or -1 means no transition. All the
// malformed rows are reported together.
func ParseTransitions(r io.Reader) (*lexer.TransitionTable, error) {
	records, err := newReader(r).ReadAll()
	if err != nil {
		return nil, errwrap.Wrapf(ErrMalformed, "%v", err)
	}
	if len(records) == 0 {
		return nil, errwrap.Wrapf(ErrMalformed, "missing header")
	}

	var reterr error
	header := records[0]
	columns := make([]rune, len(header))
	seen := make(map[rune]int)
	for j := 1; j < len(header); j++ {
		cell := strings.TrimSpace(header[j])
		i, err := strconv.Atoi(cell)
		if err != nil || i < 0 || i > utf8.MaxRune || !utf8.ValidRune(rune(i)) {
			reterr = errwrap.Append(reterr, rowErr(1, "column %d: invalid code point `%s`", j+1, cell))
			continue
		}
		if k, exists := seen[rune(i)]; exists {
			reterr = errwrap.Append(reterr, rowErr(1, "column %d: duplicate of column %d", j+1, k+1))
			continue
		}
		seen[rune(i)] = j
		columns[j] = rune(i)
	}
	if reterr != nil {
		return nil, reterr // can't read the rows without a good header
	}

	table := lexer.NewTransitionTable()
	rows := make(map[lexer.State]int)
	for i := 1; i < len(records); i++ {
		record := records[i]
		row := i + 1
		if len(record) != len(header) {
			reterr = errwrap.Append(reterr, rowErr(row, "expected %d cells, got %d", len(header), len(record)))
			continue
		}
		state, err := parseState(record[0])
		if err != nil {
			reterr = errwrap.Append(reterr, rowErr(row, "%v", err))
			continue
		}
		if prev, exists := rows[state]; exists {
			reterr = errwrap.Append(reterr, rowErr(row, "state %d is already defined in row %d", state, prev))
			continue
		}
		rows[state] = row
		table.AddState(state)

		for j := 1; j < len(record); j++ {
			cell := strings.TrimSpace(record[j])
			if cell == "" || cell == NoTransition {
				continue
			}
			next, err := parseState(cell)
			if err != nil {
				reterr = errwrap.Append(reterr, rowErr(row, "column %d: %v", j+1, err))
				continue
			}
			table.Set(state, columns[j], next)
		}
	}
	if reterr != nil {
		return nil, reterr
	}
	return table, nil
}

// ParseLabels parses a token label table: one `state,label` pair per row. An
// empty label or the `error` label means the state is not accepting.
func ParseLabels(r io.Reader) (*lexer.LabelTable, error) {
	records, err := newReader(r).ReadAll()
	if err != nil {
		return nil, errwrap.Wrapf(ErrMalformed, "%v", err)
	}

	var reterr error
	table := lexer.NewLabelTable()
	rows := make(map[lexer.State]int)
	for i, record := range records {
		row := i + 1
		if len(record) != 2 {
			reterr = errwrap.Append(reterr, rowErr(row, "expected a state and a label, got %d cells", len(record)))
			continue
		}
		state, err := parseState(record[0])
		if err != nil {
			reterr = errwrap.Append(reterr, rowErr(row, "%v", err))
			continue
		}
		if prev, exists := rows[state]; exists {
			reterr = errwrap.Append(reterr, rowErr(row, "state %d is already labeled in row %d", state, prev))
			continue
		}
		rows[state] = row

		label := strings.TrimSpace(record[1])
		if label == "" || label == NotAccepting {
			continue
		}
		table.Set(state, lexer.Label(label))
	}
	if reterr != nil {
		return nil, reterr
	}
	return table, nil
}

// ParseKeywords parses a comma separated list of keywords. Keywords may be
// spread over several lines, and empty cells are skipped.
func ParseKeywords(r io.Reader) (lexer.KeywordSet, error) {
	records, err := newReader(r).ReadAll()
	if err != nil {
		return nil, errwrap.Wrapf(ErrMalformed, "%v", err)
	}
	keywords := lexer.NewKeywordSet()
	for _, record := range records {
		for _, cell := range record {
			if word := strings.TrimSpace(cell); word != "" {
				keywords.Add(word)
			}
		}
	}
	return keywords, nil
}

// parseState parses a non negative state number.
func parseState(s string) (lexer.State, error) {
	s = strings.TrimSpace(s)
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid state `%s`", s)
	}
	if i < 0 {
		return 0, fmt.Errorf("negative state `%s`", s)
	}
	return lexer.State(i), nil
}
