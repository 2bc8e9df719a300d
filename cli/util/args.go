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
	"github.com/purpleidea/dfalex/loader"
)

// TableArgs are the flags which name the three table files. They are shared by
// every subcommand that loads tables.
type TableArgs struct {
	Transitions string `arg:"--transitions,-t,required,env:DFALEX_TRANSITIONS" help:"transition table csv file"`
	Labels      string `arg:"--labels,-l,required,env:DFALEX_LABELS" help:"token label table csv file"`
	Keywords    string `arg:"--keywords,-k,required,env:DFALEX_KEYWORDS" help:"keyword list csv file"`

	Config string `arg:"--config,-c,env:DFALEX_CONFIG" help:"yaml engine config file"`
	Start  *int   `arg:"--start" help:"start state (overrides the config)"`
}

// Files returns the loader form of the table arguments, with source as the file
// to lex, which may be empty.
func (obj *TableArgs) Files(source string) *loader.Files {
	return &loader.Files{
		Transitions: obj.Transitions,
		Labels:      obj.Labels,
		Keywords:    obj.Keywords,
		Source:      source,
	}
}
