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
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	cliUtil "github.com/purpleidea/dfalex/cli/util"
	"github.com/purpleidea/dfalex/lexer"
	"github.com/purpleidea/dfalex/loader"
	"github.com/purpleidea/dfalex/prometheus"
	"github.com/purpleidea/dfalex/util"
	"github.com/purpleidea/dfalex/util/errwrap"
	"github.com/purpleidea/dfalex/util/recwatch"

	"github.com/davecgh/go-spew/spew"
	"golang.org/x/time/rate"
	yaml "gopkg.in/yaml.v2"
)

const (
	// FormatText prints one token per line as an (image, label) pair.
	FormatText = "text"

	// FormatYAML prints the token stream as a yaml list.
	FormatYAML = "yaml"
)

// ErrRoundTrip is returned when the unfiltered stream doesn't rebuild the
// source exactly.
const ErrRoundTrip = cliUtil.Error("round trip mismatch")

// LexArgs is the lex CLI parsing structure and type of the parsed result.
type LexArgs struct {
	cliUtil.TableArgs

	Source string `arg:"positional,required" help:"source file to lex"`

	All            bool    `arg:"--all,-a" help:"print the unfiltered stream, whitespace and comments included"`
	Format         string  `arg:"--format" default:"text" help:"output format: text or yaml"`
	Policy         *string `arg:"--policy" help:"lexical error policy: abort or resync (overrides the config)"`
	FoldCase       bool    `arg:"--foldcase" help:"retry failed transitions with the lower case character"`
	CheckRoundTrip bool    `arg:"--check-roundtrip" help:"error if the unfiltered stream doesn't rebuild the source"`

	Watch      bool    `arg:"--watch,-w" help:"lex again whenever an input file changes"`
	WatchLimit float64 `arg:"--watch-limit" default:"10" help:"maximum number of runs per second while watching, 0 for no limit"`

	Prometheus       bool   `arg:"--prometheus" help:"start a prometheus instance"`
	PrometheusListen string `arg:"--prometheus-listen" help:"specify prometheus instance binding"`
}

// tokenYAML is the yaml output form of a token.
type tokenYAML struct {
	Image string `yaml:"image"`
	Label string `yaml:"label"`
}

// Run executes the correct subcommand. It errors if there's ever an error. It
// returns true if we did activate one of the subcommands. It returns false if
// we did not. This information is used so that the top-level parser can return
// usage or help information if no subcommand activates. This particular Run is
// the run for the main `lex` subcommand.
func (obj *LexArgs) Run(ctx context.Context, data *cliUtil.Data) (bool, error) {
	if obj.WatchLimit < 0 {
		return false, fmt.Errorf("the watch limit can't be negative")
	}
	if obj.Format != FormatText && obj.Format != FormatYAML {
		return false, fmt.Errorf("unknown format `%s`", obj.Format)
	}
	if obj.Policy != nil {
		if _, err := lexer.ParsePolicy(*obj.Policy); err != nil {
			return false, err
		}
	}

	var prom *prometheus.Prometheus
	if obj.Prometheus {
		prom = &prometheus.Prometheus{
			Listen: obj.PrometheusListen,
			Logf: func(format string, v ...interface{}) {
				data.Flags.Logf("prometheus: "+format, v...)
			},
		}
		if err := prom.Init(); err != nil {
			return false, errwrap.Wrapf(err, "can't initialize prometheus instance")
		}
		if err := prom.Start(); err != nil {
			return false, errwrap.Wrapf(err, "can't start prometheus instance")
		}
		if data.Flags.Debug {
			data.Flags.Logf("main: prometheus listening on: %s", prom.Addr())
		}
		defer func() {
			if err := prom.Stop(); err != nil {
				data.Flags.Logf("main: can't stop prometheus instance: %+v", err)
			}
		}()
	}

	if !obj.Watch {
		return true, obj.once(data, prom)
	}

	files := obj.Files(obj.Source).List()
	if obj.Config != "" {
		files = append(files, obj.Config)
	}
	watcher, err := recwatch.NewFileWatcher(
		util.StrRemoveDuplicatesInList(files),
		recwatch.Debug(data.Flags.Debug),
		recwatch.Logf(func(format string, v ...interface{}) {
			data.Flags.Logf("watch: "+format, v...)
		}),
	)
	if err != nil {
		return false, err
	}
	defer watcher.Close()

	limit := rate.Inf
	if obj.WatchLimit > 0 {
		limit = rate.Limit(obj.WatchLimit)
	}
	limiter := rate.NewLimiter(limit, 1) // editors save in bursts

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// install the exit signal handler
	wg := &sync.WaitGroup{}
	defer wg.Wait()
	exit := make(chan struct{})
	defer close(exit)
	wg.Add(1)
	go func() {
		defer wg.Done()
		signals := make(chan os.Signal, 1+1) // 1 * ^C + 1 * SIGTERM
		signal.Notify(signals, os.Interrupt) // catch ^C
		signal.Notify(signals, syscall.SIGTERM)
		defer signal.Stop(signals)
		select {
		case sig := <-signals:
			data.Flags.Logf("main: interrupted by %v", sig)
			cancel()
		case <-exit:
		}
	}()

	for {
		if err := limiter.Wait(ctx); err != nil {
			return true, nil // cancelled
		}
		// a bad edit is not fatal while watching
		if err := obj.once(data, prom); err != nil {
			data.Flags.Logf("main: error: %+v", err)
		}

		select {
		case event, ok := <-watcher.Events():
			if !ok {
				return true, nil
			}
			if err := event.Error; err != nil {
				return false, errwrap.Wrapf(err, "watcher failed")
			}
			if data.Flags.Debug {
				data.Flags.Logf("main: file changed: %s", event.Body.Name)
			}

		case <-ctx.Done():
			return true, nil
		}
	}
}

// once loads everything fresh, runs a single scan and prints the stream.
func (obj *LexArgs) once(data *cliUtil.Data, prom *prometheus.Prometheus) error {
	bundle, err := loader.Load(data.Fs, obj.Files(obj.Source))
	if err != nil {
		return errwrap.Wrapf(err, "can't load input files")
	}

	engine, err := newEngine(data, &obj.TableArgs, bundle, "lex")
	if err != nil {
		return err
	}
	if obj.Policy != nil {
		if engine.Policy, err = lexer.ParsePolicy(*obj.Policy); err != nil {
			return err
		}
	}
	if obj.FoldCase {
		engine.FoldCase = true
	}
	if err := engine.Init(); err != nil {
		return errwrap.Wrapf(err, "invalid engine")
	}

	result, reterr := engine.Scan(bundle.Source)
	if prom != nil {
		if err := prom.UpdateSession(result, reterr); err != nil {
			data.Flags.Logf("main: can't update metrics: %+v", err)
		}
	}
	if data.Flags.Debug {
		data.Flags.Logf("main: result: %s", spew.Sdump(result))
	}

	// print whatever we got, even if it's a partial stream
	tokens := result.Tokens
	if obj.All {
		tokens = result.All
	}
	if err := printTokens(data.Stdout, obj.Format, tokens); err != nil {
		return err
	}

	if reterr != nil {
		return errwrap.Wrapf(reterr, "lexing failed")
	}

	if obj.CheckRoundTrip {
		if s := lexer.Reconstruct(result.All); s != bundle.Source {
			return errwrap.Wrapf(ErrRoundTrip, "got %d bytes, expected %d", len(s), len(bundle.Source))
		}
	}
	return nil
}

// printTokens writes the tokens in the chosen format.
func printTokens(w io.Writer, format string, tokens []lexer.Token) error {
	switch format {
	case FormatYAML:
		out := []tokenYAML{}
		for _, tok := range tokens {
			out = append(out, tokenYAML{
				Image: tok.Image,
				Label: string(tok.Label),
			})
		}
		b, err := yaml.Marshal(out)
		if err != nil {
			return errwrap.Wrapf(err, "can't encode tokens")
		}
		_, err = w.Write(b)
		return err

	default:
		for _, tok := range tokens {
			if _, err := fmt.Fprintf(w, "%s\n", tok); err != nil {
				return err
			}
		}
		return nil
	}
}
