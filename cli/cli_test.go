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

package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	cliUtil "github.com/purpleidea/dfalex/cli/util"
	"github.com/purpleidea/dfalex/lexer"

	"github.com/spf13/afero"
)

// The columns are 'a' (97), 'b' (98) and ' ' (32).
const (
	transitionsCSV = "state,97,98,32\n0,1,1,2\n1,1,1,-1\n2,,,2\n"
	labelsCSV      = "0,\n1,identifier\n2,whitespace\n"
	keywordsCSV    = "ab,ba\n"
)

func testData(t *testing.T, files map[string]string, args ...string) (*cliUtil.Data, *bytes.Buffer) {
	fs := afero.NewMemMapFs()
	base := map[string]string{
		"/t.csv": transitionsCSV,
		"/l.csv": labelsCSV,
		"/k.csv": keywordsCSV,
	}
	for name, data := range files {
		base[name] = data
	}
	for name, data := range base {
		if err := afero.WriteFile(fs, name, []byte(data), 0644); err != nil {
			t.Fatalf("could not write %s: %+v", name, err)
		}
	}

	stdout := &bytes.Buffer{}
	data := &cliUtil.Data{
		Program: "dfalex",
		Version: "0.0.1-test",
		Copying: "copying\n",
		Tagline: "a table driven lexer",
		Flags: cliUtil.Flags{
			Logf: func(format string, v ...interface{}) {
				t.Logf("cli: "+format, v...)
			},
		},
		Args:   append([]string{"dfalex"}, args...),
		Fs:     fs,
		Stdout: stdout,
	}
	return data, stdout
}

var tableFlags = []string{"-t", "/t.csv", "-l", "/l.csv", "-k", "/k.csv"}

func lexArgs(extra ...string) []string {
	args := append([]string{"lex"}, tableFlags...)
	return append(args, extra...)
}

func checkArgs(extra ...string) []string {
	args := append([]string{"check"}, tableFlags...)
	return append(args, extra...)
}

func TestLex0(t *testing.T) {
	type test struct { // an individual test
		name  string
		files map[string]string
		args  []string
		out   string
		fail  bool
	}
	testCases := []test{}

	testCases = append(testCases, test{
		name:  "filtered stream",
		files: map[string]string{"/src": "ab bab ba"},
		args:  lexArgs("/src"),
		out:   "(\"ab\", keyword)\n(\"bab\", identifier)\n(\"ba\", keyword)\n",
	})
	testCases = append(testCases, test{
		name:  "unfiltered stream",
		files: map[string]string{"/src": "ab  b"},
		args:  lexArgs("--all", "/src"),
		out:   "(\"ab\", keyword)\n(\"  \", whitespace)\n(\"b\", identifier)\n",
	})
	testCases = append(testCases, test{
		name:  "yaml",
		files: map[string]string{"/src": "ab bb"},
		args:  lexArgs("--format", "yaml", "/src"),
		out:   "- image: ab\n  label: keyword\n- image: bb\n  label: identifier\n",
	})
	testCases = append(testCases, test{
		name:  "empty source",
		files: map[string]string{"/src": ""},
		args:  lexArgs("/src"),
		out:   "",
	})
	testCases = append(testCases, test{
		name:  "partial stream on error",
		files: map[string]string{"/src": "ab $"},
		args:  lexArgs("/src"),
		out:   "(\"ab\", keyword)\n",
		fail:  true,
	})
	testCases = append(testCases, test{
		name:  "resync",
		files: map[string]string{"/src": "ab $ba"},
		args:  lexArgs("--policy", "resync", "/src"),
		out:   "(\"ab\", keyword)\n(\"$\", error)\n(\"ba\", keyword)\n",
		fail:  true, // the skipped error is still reported
	})
	testCases = append(testCases, test{
		name:  "foldcase",
		files: map[string]string{"/src": "AB"},
		args:  lexArgs("--foldcase", "/src"),
		out:   "(\"AB\", identifier)\n", // keywords are matched exactly
	})
	testCases = append(testCases, test{
		name: "config",
		files: map[string]string{
			"/src":     "ab ba",
			"/cfg.yml": "filtered: []\nkeyword: reserved\n",
		},
		args: lexArgs("-c", "/cfg.yml", "/src"),
		out:  "(\"ab\", reserved)\n(\" \", whitespace)\n(\"ba\", reserved)\n",
	})
	testCases = append(testCases, test{
		name:  "round trip",
		files: map[string]string{"/src": "ab  ba "},
		args:  lexArgs("--check-roundtrip", "/src"),
		out:   "(\"ab\", keyword)\n(\"ba\", keyword)\n",
	})
	testCases = append(testCases, test{
		name:  "bad format",
		files: map[string]string{"/src": "ab"},
		args:  lexArgs("--format", "json", "/src"),
		fail:  true,
	})
	testCases = append(testCases, test{
		name:  "bad policy",
		files: map[string]string{"/src": "ab"},
		args:  lexArgs("--policy", "ignore", "/src"),
		fail:  true,
	})
	testCases = append(testCases, test{
		name: "missing source",
		args: lexArgs("/nope"),
		fail: true,
	})
	testCases = append(testCases, test{
		name: "missing table flag",
		args: []string{"lex", "-t", "/t.csv", "-l", "/l.csv", "/src"},
		fail: true,
	})

	names := make(map[string]struct{})
	for index, tc := range testCases { // run all the tests
		if tc.name == "" {
			t.Errorf("test #%d: not named", index)
			continue
		}
		if _, exists := names[tc.name]; exists {
			t.Errorf("test #%d: duplicate sub test name of: %s", index, tc.name)
			continue
		}
		names[tc.name] = struct{}{}

		t.Run(tc.name, func(t *testing.T) {
			data, stdout := testData(t, tc.files, tc.args...)
			err := CLI(context.Background(), data)
			if !tc.fail && err != nil {
				t.Errorf("test #%d: failed with: %+v", index, err)
				return
			}
			if tc.fail && err == nil {
				t.Errorf("test #%d: passed, expected fail", index)
				return
			}
			if tc.out == "" && tc.fail {
				return // nothing to compare
			}
			if s := stdout.String(); s != tc.out {
				t.Errorf("test #%d: output did not match", index)
				t.Logf("test #%d:   got: %q", index, s)
				t.Logf("test #%d:   exp: %q", index, tc.out)
			}
		})
	}
}

func TestLexError(t *testing.T) {
	data, _ := testData(t, map[string]string{"/src": "ab $"}, lexArgs("/src")...)
	err := CLI(context.Background(), data)
	if err == nil {
		t.Fatalf("expected an error")
	}
	var lexErr *lexer.LexError
	if !errors.As(err, &lexErr) {
		t.Fatalf("expected a lex error, got: %+v", err)
	}
	if lexErr.Pos != 4 {
		t.Errorf("expected error at lexeme number 4, got: %d", lexErr.Pos)
	}
	if !errors.Is(err, lexer.ErrUnrecognized) {
		t.Errorf("expected an unrecognized error, got: %+v", err)
	}
}

func TestCheck(t *testing.T) {
	data, stdout := testData(t, nil, checkArgs()...)
	if err := CLI(context.Background(), data); err != nil {
		t.Fatalf("check failed with: %+v", err)
	}
	exp := "start state: 0\n" +
		"states: 3\n" +
		"transitions: 6\n" +
		"accepting states: 2\n" +
		"labels: identifier, whitespace\n" +
		"keywords: 2\n"
	if s := stdout.String(); s != exp {
		t.Errorf("unexpected check output:\n%s", s)
	}
}

func TestCheckWarnings(t *testing.T) {
	files := map[string]string{
		// state 3 is a dead end, and the comment state can't be reached
		"/w.csv": "state,97,98\n0,1,3\n1,1,-1\n",
		"/x.csv": "1,identifier\n4,comment\n",
	}
	args := []string{"check", "-t", "/w.csv", "-l", "/x.csv", "-k", "/k.csv"}

	data, stdout := testData(t, files, args...)
	if err := CLI(context.Background(), data); err != nil {
		t.Fatalf("check failed with: %+v", err)
	}
	out := stdout.String()
	for _, s := range []string{
		"warning: state 3 has no row and is not accepting\n",
		"warning: accepting state 4 (comment) is unreachable from state 0\n",
	} {
		if !strings.Contains(out, s) {
			t.Errorf("missing warning %q in:\n%s", s, out)
		}
	}

	data, _ = testData(t, files, append(args, "--strict")...)
	err := CLI(context.Background(), data)
	if !errors.Is(err, cliUtil.ErrWarnings) {
		t.Errorf("expected strict check to fail with warnings, got: %+v", err)
	}
}

func TestTableWarnings(t *testing.T) {
	transitions := lexer.NewTransitionTable()
	transitions.Set(0, 'a', 1)
	transitions.Set(0, 'b', 2)
	labels := lexer.NewLabelTable()
	labels.Set(1, "a")
	engine := &lexer.Engine{
		Transitions: transitions,
		Labels:      labels,
	}
	if err := engine.Init(); err != nil {
		t.Fatalf("init failed with: %+v", err)
	}
	// state 1 is final, so only state 2 is reported
	warnings := tableWarnings(engine)
	if len(warnings) != 1 || !strings.Contains(warnings[0], "state 2") {
		t.Errorf("unexpected warnings: %v", warnings)
	}
}

func TestHelpAndVersion(t *testing.T) {
	data, stdout := testData(t, nil)
	if err := CLI(context.Background(), data); err != nil {
		t.Fatalf("help failed with: %+v", err)
	}
	if s := stdout.String(); !strings.Contains(s, "Usage: dfalex") {
		t.Errorf("expected usage, got:\n%s", s)
	}

	data, stdout = testData(t, nil, "--version")
	if err := CLI(context.Background(), data); err != nil {
		t.Fatalf("version failed with: %+v", err)
	}
	if s := stdout.String(); s != "0.0.1-test\n" {
		t.Errorf("unexpected version: %q", s)
	}

	data, stdout = testData(t, nil, "--license")
	if err := CLI(context.Background(), data); err != nil {
		t.Fatalf("license failed with: %+v", err)
	}
	if s := stdout.String(); s != "copying\n" {
		t.Errorf("unexpected license: %q", s)
	}
}

func TestCLISanity(t *testing.T) {
	if err := CLI(context.Background(), nil); err == nil {
		t.Errorf("expected nil data to fail")
	}
	data, _ := testData(t, nil)
	data.Copying = ""
	if err := CLI(context.Background(), data); err == nil {
		t.Errorf("expected missing copyrights to fail")
	}
}

// syncBuffer is a bytes.Buffer that can be read while the CLI writes to it.
type syncBuffer struct {
	mutex sync.Mutex
	buf   bytes.Buffer
}

func (obj *syncBuffer) Write(p []byte) (int, error) {
	obj.mutex.Lock()
	defer obj.mutex.Unlock()
	return obj.buf.Write(p)
}

func (obj *syncBuffer) String() string {
	obj.mutex.Lock()
	defer obj.mutex.Unlock()
	return obj.buf.String()
}

func TestLexWatch(t *testing.T) {
	dir := t.TempDir()
	write := func(name, data string) string {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(data), 0644); err != nil {
			t.Fatalf("could not write %s: %+v", name, err)
		}
		return p
	}
	args := []string{
		"dfalex", "lex",
		"-t", write("t.csv", transitionsCSV),
		"-l", write("l.csv", labelsCSV),
		"-k", write("k.csv", keywordsCSV),
		"--watch", "--watch-limit", "0",
		write("src", "ab"),
	}

	stdout := &syncBuffer{}
	data := &cliUtil.Data{
		Program: "dfalex",
		Version: "0.0.1-test",
		Copying: "copying\n",
		Flags: cliUtil.Flags{
			Logf: func(format string, v ...interface{}) {
				t.Logf("cli: "+format, v...)
			},
		},
		Args:   args,
		Fs:     afero.NewOsFs(),
		Stdout: stdout,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := make(chan error, 1)
	go func() {
		ch <- CLI(ctx, data)
	}()

	waitFor := func(s string) {
		deadline := time.Now().Add(10 * time.Second)
		for !strings.Contains(stdout.String(), s) {
			if time.Now().After(deadline) {
				t.Fatalf("timed out waiting for %q, got:\n%s", s, stdout.String())
			}
			time.Sleep(10 * time.Millisecond)
		}
	}
	waitFor("(\"ab\", keyword)\n")

	write("src", "bb")
	waitFor("(\"bb\", identifier)\n")

	cancel()
	select {
	case err := <-ch:
		if err != nil {
			t.Errorf("watch failed with: %+v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatalf("watch did not exit")
	}
}
