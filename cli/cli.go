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

// Package cli handles all of the core command line parsing. It's the first
// entry point after the real main function, and it loads the tables and runs
// the lexer engine.
package cli

import (
	"context"
	"fmt"
	"log"
	"os"

	cliUtil "github.com/purpleidea/dfalex/cli/util"
	"github.com/purpleidea/dfalex/util/errwrap"

	"github.com/alexflint/go-arg"
	"github.com/spf13/afero"
)

// CLI is the entry point for using dfalex normally from the CLI.
func CLI(ctx context.Context, data *cliUtil.Data) error {
	// test for sanity
	if data == nil {
		return fmt.Errorf("this CLI was not run correctly")
	}
	if data.Program == "" || data.Version == "" {
		return fmt.Errorf("program was not compiled correctly")
	}
	if data.Copying == "" {
		return fmt.Errorf("program copyrights were removed, can't run")
	}
	if len(data.Args) == 0 {
		return fmt.Errorf("args are missing argv[0]")
	}

	d := *data // don't modify the caller's copy when filling in defaults
	if d.Fs == nil {
		d.Fs = afero.NewOsFs()
	}
	if d.Stdout == nil {
		d.Stdout = os.Stdout
	}
	if d.Flags.Logf == nil {
		d.Flags.Logf = func(format string, v ...interface{}) {
			log.Printf(format, v...)
		}
	}

	args := Args{}
	args.version = d.Version // copy this in
	args.description = d.Tagline

	config := arg.Config{
		Program: d.Program,
	}
	parser, err := arg.NewParser(config, &args)
	if err != nil {
		// programming error
		return errwrap.Wrapf(err, "cli config error")
	}
	err = parser.Parse(d.Args[1:])
	if err == arg.ErrHelp {
		parser.WriteHelp(d.Stdout)
		return nil
	}
	if err == arg.ErrVersion {
		fmt.Fprintf(d.Stdout, "%s\n", d.Version) // byon: bring your own newline
		return nil
	}
	if err != nil {
		return cliUtil.CliParseError(err) // consistent errors
	}

	// display the license
	if args.License {
		fmt.Fprintf(d.Stdout, "%s", d.Copying) // file comes with a trailing nl
		return nil
	}

	if args.Debug {
		d.Flags.Debug = true
	}
	if args.Verbose {
		d.Flags.Verbose = true
	}
	cliUtil.Hello(d.Program, d.Version, d.Flags) // say hello!

	if ok, err := args.Run(ctx, &d); err != nil {
		return err
	} else if ok { // did we activate one of the commands?
		return nil
	}

	// print help if no subcommands are set
	parser.WriteHelp(d.Stdout)

	return nil
}

// Args is the CLI parsing structure and type of the parsed result. This
// particular struct is the top-most one.
type Args struct {
	License bool `arg:"--license" help:"display the license and exit"`

	Debug   bool `arg:"--debug" help:"add additional log messages"`
	Verbose bool `arg:"--verbose,-v" help:"add extra log message output"`

	LexCmd *LexArgs `arg:"subcommand:lex" help:"lex a source file and print the tokens"`

	CheckCmd *CheckArgs `arg:"subcommand:check" help:"validate the tables and print a summary"`

	// version is a private handle for our version string.
	version string `arg:"-"` // ignored from parsing

	// description is a private handle for our description string.
	description string `arg:"-"` // ignored from parsing
}

// Version returns the version string. Implementing this signature is part of
// the API for the cli library.
func (obj *Args) Version() string {
	return obj.version
}

// Description returns a description string. Implementing this signature is part
// of the API for the cli library.
func (obj *Args) Description() string {
	return obj.description
}

// Run executes the correct subcommand. It errors if there's ever an error. It
// returns true if we did activate one of the subcommands. It returns false if
// we did not. This information is used so that the top-level parser can return
// usage or help information if no subcommand activates.
func (obj *Args) Run(ctx context.Context, data *cliUtil.Data) (bool, error) {
	if cmd := obj.LexCmd; cmd != nil {
		if data.Flags.Debug {
			data.Flags.Logf("main: running: %s", cliUtil.LookupSubcommand(obj, cmd))
		}
		return cmd.Run(ctx, data)
	}

	if cmd := obj.CheckCmd; cmd != nil {
		if data.Flags.Debug {
			data.Flags.Logf("main: running: %s", cliUtil.LookupSubcommand(obj, cmd))
		}
		return cmd.Run(ctx, data)
	}

	return false, nil // nobody activated
}
