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

package util

import (
	"errors"
	"testing"
)

func TestLookupSubcommand(t *testing.T) {
	type fooArgs struct{}
	type barArgs struct{}
	type args struct {
		Debug bool `arg:"--debug"`

		FooCmd *fooArgs `arg:"subcommand:foo"`
		BarCmd *barArgs `arg:"subcommand:bar" help:"bar things"`

		private string `arg:"-"`
	}

	bar := &barArgs{}
	obj := &args{BarCmd: bar}
	if s := LookupSubcommand(obj, bar); s != "bar" {
		t.Errorf("expected `bar`, got: `%s`", s)
	}
	if s := LookupSubcommand(obj, &fooArgs{}); s != "" {
		t.Errorf("expected nothing, got: `%s`", s)
	}
	_ = obj.private
}

func TestCliParseError(t *testing.T) {
	err := CliParseError(ErrWarnings)
	if !errors.Is(err, ErrWarnings) {
		t.Errorf("expected the cause to be kept, got: %+v", err)
	}
	if s := err.Error(); s != "cli parse error: tables have warnings" {
		t.Errorf("unexpected message: %s", s)
	}
}

func TestTableArgsFiles(t *testing.T) {
	args := &TableArgs{
		Transitions: "t.csv",
		Labels:      "l.csv",
		Keywords:    "k.csv",
	}
	files := args.Files("src")
	if l := files.List(); len(l) != 4 || l[3] != "src" {
		t.Errorf("unexpected files: %v", l)
	}
	if l := args.Files("").List(); len(l) != 3 {
		t.Errorf("expected no source, got: %v", l)
	}
}
