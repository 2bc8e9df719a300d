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

// Package prometheus provides functions that are useful to control and manage
// the built-in prometheus instance.
package prometheus

import (
	"context"
	"log"
	"net"
	"net/http"

	"github.com/purpleidea/dfalex/lexer"
	"github.com/purpleidea/dfalex/util"
	"github.com/purpleidea/dfalex/util/errwrap"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultPrometheusListen is the default listen address of the metrics server.
const DefaultPrometheusListen = "127.0.0.1:9233"

// Prometheus is the struct that contains information about the prometheus
// instance. Run Init() on it.
type Prometheus struct {
	Listen string // the listen specification for the net/http server

	Logf func(format string, v ...interface{})

	registry                *prometheus.Registry
	tokensTotal             *prometheus.CounterVec // tokens emitted, by label
	lexicalErrorsTotal      prometheus.Counter     // lexical errors, skipped or not
	sessionsTotal           *prometheus.CounterVec // finished sessions, by result
	processStartTimeSeconds prometheus.Gauge       // process start time in seconds since unix epoch

	server *http.Server
	addr   string
}

// Init some parameters - currently the Listen address.
func (obj *Prometheus) Init() error {
	if len(obj.Listen) == 0 {
		obj.Listen = DefaultPrometheusListen
	}
	if obj.Logf == nil {
		obj.Logf = func(format string, v ...interface{}) {} // noop
	}
	obj.registry = prometheus.NewRegistry()

	obj.tokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dfalex_tokens_total",
			Help: "Number of tokens emitted, filtered ones included.",
		},
		// label: the token label, such as identifier or whitespace
		[]string{"label"},
	)
	obj.lexicalErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dfalex_lexical_errors_total",
			Help: "Number of lexical errors, including ones skipped over by resync.",
		},
	)
	obj.sessionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dfalex_sessions_total",
			Help: "Number of lexing sessions that have run.",
		},
		// result: ok or error
		[]string{"result"},
	)
	obj.processStartTimeSeconds = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "dfalex_process_start_time_seconds",
			Help: "Start time of the process since unix epoch in seconds.",
		},
	)
	for _, c := range []prometheus.Collector{obj.tokensTotal, obj.lexicalErrorsTotal, obj.sessionsTotal, obj.processStartTimeSeconds} {
		if err := obj.registry.Register(c); err != nil {
			return errwrap.Wrapf(err, "can't register metric")
		}
	}
	// directly set the processStartTimeSeconds
	obj.processStartTimeSeconds.SetToCurrentTime()

	return nil
}

// Registry returns the registry that holds our metrics.
func (obj *Prometheus) Registry() *prometheus.Registry { return obj.registry }

// Start runs a http server in a go routine, that responds to /metrics as
// prometheus would expect. It errors if it can't listen.
func (obj *Prometheus) Start() error {
	listener, err := net.Listen("tcp", obj.Listen)
	if err != nil {
		return errwrap.Wrapf(err, "can't listen on `%s`", obj.Listen)
	}
	obj.addr = listener.Addr().String()
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(obj.registry, promhttp.HandlerOpts{}))
	obj.server = &http.Server{Handler: mux}
	obj.server.ErrorLog = log.New(&util.LogWriter{
		Prefix: "http: ",
		Logf:   obj.Logf,
	}, "", 0)
	go func() {
		if err := obj.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			obj.Logf("server error: %v", err)
		}
	}()
	return nil
}

// Addr returns the address the server is listening on once it has started.
func (obj *Prometheus) Addr() string {
	if obj.addr == "" {
		return obj.Listen
	}
	return obj.addr
}

// Stop the http server.
func (obj *Prometheus) Stop() error {
	if obj.server == nil {
		return nil
	}
	return obj.server.Shutdown(context.Background())
}

// UpdateSession records the outcome of one lexing session. The result may be
// partial, or nil if nothing was scanned. Only the errors that are caused by a
// *lexer.LexError count as lexical errors, but any error fails the session.
func (obj *Prometheus) UpdateSession(result *lexer.Result, err error) error {
	if result != nil {
		for _, tok := range result.All {
			obj.tokensTotal.With(prometheus.Labels{"label": string(tok.Label)}).Inc()
		}
	}

	for _, e := range errwrap.Split(err) {
		if _, ok := errwrap.Cause(e).(*lexer.LexError); ok {
			obj.lexicalErrorsTotal.Inc()
		}
	}

	status := "ok"
	if err != nil {
		status = "error"
	}
	obj.sessionsTotal.With(prometheus.Labels{"result": status}).Inc()
	return nil
}
