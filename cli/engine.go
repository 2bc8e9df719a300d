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
	cliUtil "github.com/purpleidea/dfalex/cli/util"
	"github.com/purpleidea/dfalex/config"
	"github.com/purpleidea/dfalex/lexer"
	"github.com/purpleidea/dfalex/loader"

	"github.com/davecgh/go-spew/spew"
)

// newEngine builds an engine from the loaded tables, the config file and the
// start state flag, in increasing order of precedence. The caller can override
// more options before running Init on it.
func newEngine(data *cliUtil.Data, args *cliUtil.TableArgs, bundle *loader.Bundle, name string) (*lexer.Engine, error) {
	engine := &lexer.Engine{
		Transitions: bundle.Transitions,
		Labels:      bundle.Labels,
		Keywords:    bundle.Keywords,
		Debug:       data.Flags.Debug,
		Logf: func(format string, v ...interface{}) {
			data.Flags.Logf(name+": engine: "+format, v...)
		},
	}

	if args.Config != "" {
		cfg, err := config.ParseFile(data.Fs, args.Config)
		if err != nil {
			return nil, err
		}
		if data.Flags.Debug {
			data.Flags.Logf("%s: config: %s", name, spew.Sdump(cfg))
		}
		if err := cfg.Apply(engine); err != nil {
			return nil, err
		}
	}

	if args.Start != nil {
		engine.Start = lexer.State(*args.Start)
	}
	return engine, nil
}
