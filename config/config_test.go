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

package config

import (
	"testing"

	"github.com/purpleidea/dfalex/lexer"

	"github.com/davecgh/go-spew/spew"
	"github.com/kylelemons/godebug/pretty"
	"github.com/spf13/afero"
)

func TestParse0(t *testing.T) {
	type test struct { // an individual test
		name string
		data string
		fail bool
		exp  *Config
	}
	testCases := []test{}

	zero := 0
	seven := 7
	testCases = append(testCases, test{
		name: "empty",
		data: ``,
		exp:  &Config{},
	})
	testCases = append(testCases, test{
		name: "everything",
		data: `
start: 7
identifier: ident
keyword: reserved
filtered: [space, comment]
policy: resync
foldcase: true
`,
		exp: &Config{
			Start:      &seven,
			Identifier: "ident",
			Keyword:    "reserved",
			Filtered:   []string{"space", "comment"},
			Policy:     "resync",
			FoldCase:   true,
		},
	})
	testCases = append(testCases, test{
		name: "explicit zero start and no filter",
		data: "start: 0\nfiltered: []\n",
		exp: &Config{
			Start:    &zero,
			Filtered: []string{},
		},
	})
	testCases = append(testCases, test{
		name: "unknown field",
		data: "stat: 0\n",
		fail: true,
	})
	testCases = append(testCases, test{
		name: "bad policy",
		data: "policy: skip\n",
		fail: true,
	})
	testCases = append(testCases, test{
		name: "negative start",
		data: "start: -1\n",
		fail: true,
	})
	testCases = append(testCases, test{
		name: "empty label",
		data: "filtered: [\"\"]\n",
		fail: true,
	})

	for index, tc := range testCases { // run all the tests
		name, data, fail, exp := tc.name, tc.data, tc.fail, tc.exp
		t.Run(name, func(t *testing.T) {
			cfg, err := Parse([]byte(data))
			if !fail && err != nil {
				t.Errorf("test #%d: parse failed with: %+v", index, err)
				return
			}
			if fail && err == nil {
				t.Errorf("test #%d: parse passed, expected fail", index)
				return
			}
			if fail {
				return
			}
			if diff := pretty.Compare(cfg, exp); diff != "" {
				t.Errorf("test #%d: config did not match expected", index)
				t.Logf("test #%d:   actual: \n%s", index, spew.Sdump(cfg))
				t.Logf("test #%d: diff:\n%s", index, diff)
			}
		})
	}
}

func TestApply(t *testing.T) {
	fs := afero.NewMemMapFs()
	data := "start: 3\nkeyword: kw\nfiltered: []\npolicy: resync\nfoldcase: true\n"
	if err := afero.WriteFile(fs, "/dfalex.yaml", []byte(data), 0644); err != nil {
		t.Fatalf("could not write config: %+v", err)
	}
	cfg, err := ParseFile(fs, "/dfalex.yaml")
	if err != nil {
		t.Fatalf("parse failed with: %+v", err)
	}

	engine := &lexer.Engine{
		Transitions: lexer.NewTransitionTable(),
		Labels:      lexer.NewLabelTable(),
		Identifier:  "name",
	}
	if err := cfg.Apply(engine); err != nil {
		t.Fatalf("apply failed with: %+v", err)
	}
	if err := engine.Init(); err != nil {
		t.Fatalf("could not init engine: %+v", err)
	}

	if engine.Start != 3 || engine.Keyword != "kw" || engine.Policy != lexer.PolicyResync || !engine.FoldCase {
		t.Errorf("options were not applied: %s", spew.Sdump(cfg))
	}
	if engine.Identifier != "name" {
		t.Errorf("a missing option should not override the engine: %s", engine.Identifier)
	}
	if engine.IsFiltered(lexer.LabelWhitespace) {
		t.Errorf("an empty filter list should keep whitespace")
	}
}

func TestParseFileMissing(t *testing.T) {
	if _, err := ParseFile(afero.NewMemMapFs(), "/nope.yaml"); err == nil {
		t.Errorf("expected an error for a missing file")
	}
}

func TestString(t *testing.T) {
	seven := 7
	cfg := &Config{Start: &seven, Policy: "abort"}
	out, err := Parse([]byte(cfg.String()))
	if err != nil {
		t.Fatalf("parse failed with: %+v", err)
	}
	if *out.Start != 7 || out.Policy != "abort" {
		t.Errorf("unexpected config: %s", out)
	}
}
