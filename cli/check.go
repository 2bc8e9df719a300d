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
	"context"
	"fmt"
	"strings"

	cliUtil "github.com/purpleidea/dfalex/cli/util"
	"github.com/purpleidea/dfalex/lexer"
	"github.com/purpleidea/dfalex/loader"
	"github.com/purpleidea/dfalex/util/errwrap"
)

// CheckArgs is the check CLI parsing structure and type of the parsed result.
type CheckArgs struct {
	cliUtil.TableArgs

	Strict bool `arg:"--strict" help:"treat warnings as errors"`
}

// Run executes the correct subcommand. It errors if there's ever an error. It
// returns true if we did activate one of the subcommands. It returns false if
// we did not. This particular Run is the run for the `check` subcommand.
func (obj *CheckArgs) Run(ctx context.Context, data *cliUtil.Data) (bool, error) {
	bundle, err := loader.Load(data.Fs, obj.Files(""))
	if err != nil {
		return false, errwrap.Wrapf(err, "can't load tables")
	}

	engine, err := newEngine(data, &obj.TableArgs, bundle, "check")
	if err != nil {
		return false, err
	}
	if err := engine.Init(); err != nil {
		return false, errwrap.Wrapf(err, "invalid engine")
	}

	labels := []string{}
	for _, label := range engine.Labels.Labels() {
		labels = append(labels, string(label))
	}

	w := data.Stdout
	fmt.Fprintf(w, "start state: %d\n", engine.Start)
	fmt.Fprintf(w, "states: %d\n", len(engine.Transitions.States()))
	fmt.Fprintf(w, "transitions: %d\n", engine.Transitions.Len())
	fmt.Fprintf(w, "accepting states: %d\n", engine.Labels.Len())
	fmt.Fprintf(w, "labels: %s\n", strings.Join(labels, ", "))
	fmt.Fprintf(w, "keywords: %d\n", len(engine.Keywords))

	warnings := tableWarnings(engine)
	for _, warning := range warnings {
		fmt.Fprintf(w, "warning: %s\n", warning)
	}

	if obj.Strict && len(warnings) > 0 {
		return false, errwrap.Wrapf(cliUtil.ErrWarnings, "found %d", len(warnings))
	}
	return true, nil
}

// tableWarnings returns the problems in the tables which don't stop the engine
// from running, but which probably aren't what the author meant.
func tableWarnings(engine *lexer.Engine) []string {
	warnings := []string{}

	seen := make(map[lexer.State]struct{})
	for _, edge := range engine.Transitions.Transitions() {
		to := edge.To
		if engine.Transitions.HasState(to) {
			continue
		}
		if _, accepting := engine.Labels.Label(to); accepting {
			continue // a final state, with nowhere else to go
		}
		if _, exists := seen[to]; exists {
			continue
		}
		seen[to] = struct{}{}
		warnings = append(warnings, fmt.Sprintf("state %d has no row and is not accepting", to))
	}

	reachable := engine.Transitions.Reachable(engine.Start)
	for _, state := range engine.Labels.Accepting() {
		if _, exists := reachable[state]; exists {
			continue
		}
		label, _ := engine.Labels.Label(state)
		warnings = append(warnings, fmt.Sprintf("accepting state %d (%s) is unreachable from state %d", state, label, engine.Start))
	}

	return warnings
}
