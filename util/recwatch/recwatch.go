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

// Package recwatch provides file watching events via fsnotify.
package recwatch

import (
	"fmt"
	"path/filepath"
	"sort"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Event represents a watcher event. These can include errors.
type Event struct {
	Error error
	Body  *fsnotify.Event
}

// FileWatcher watches a fixed list of files. Since editors often replace a file
// by renaming a new one over it, the parent directories are watched, and only
// events about the listed files are passed on. Run Init() on it.
type FileWatcher struct {
	// Paths are the files that we're watching.
	Paths []string

	// Opts are the list of options that we are using this with.
	Opts []Option

	options *recwatchOptions // computed options
	files   map[string]struct{}
	watcher *fsnotify.Watcher
	events  chan Event // one channel for events and err...
	wg      sync.WaitGroup
	exit    chan struct{}
}

// NewFileWatcher creates and initializes a new file watcher.
func NewFileWatcher(paths []string, opts ...Option) (*FileWatcher, error) {
	obj := &FileWatcher{
		Paths: paths,
		Opts:  opts,
	}
	return obj, obj.Init()
}

// Init starts the file watcher.
func (obj *FileWatcher) Init() error {
	if len(obj.Paths) == 0 {
		return fmt.Errorf("recwatch: no paths to watch")
	}
	obj.files = make(map[string]struct{})
	obj.events = make(chan Event)
	obj.exit = make(chan struct{})
	obj.options = &recwatchOptions{ // default recwatch options
		debug: false,
		logf: func(format string, v ...interface{}) {
			// noop
		},
	}
	for _, optionFunc := range obj.Opts { // apply the recwatch options
		optionFunc(obj.options)
	}
	if obj.options.logf == nil {
		return fmt.Errorf("recwatch: logf must not be nil")
	}

	dirs := make(map[string]struct{})
	for _, p := range obj.Paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return err
		}
		obj.files[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}

	var err error
	obj.watcher, err = fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	names := []string{}
	for dir := range dirs {
		names = append(names, dir)
	}
	sort.Strings(names)
	for _, dir := range names {
		if obj.options.debug {
			obj.options.logf("watching: %s", dir)
		}
		if err := obj.watcher.Add(dir); err != nil {
			obj.watcher.Close()
			return fmt.Errorf("can't watch `%s`: %v", dir, err)
		}
	}

	obj.wg.Add(1)
	go func() {
		defer obj.wg.Done()
		if err := obj.watch(); err != nil {
			select {
			case obj.events <- Event{Error: err}:
			case <-obj.exit:
				// pass
			}
		}
	}()
	return nil
}

// Close shuts down the watcher.
func (obj *FileWatcher) Close() error {
	close(obj.exit) // send exit signal
	obj.wg.Wait()
	err := obj.watcher.Close()
	close(obj.events)
	return err
}

// Events returns a channel of events. These include events for errors.
func (obj *FileWatcher) Events() chan Event { return obj.events }

// watch is the main loop which filters and forwards the fsnotify events.
func (obj *FileWatcher) watch() error {
	for {
		select {
		case event, ok := <-obj.watcher.Events:
			if !ok {
				return nil
			}
			if _, exists := obj.files[filepath.Clean(event.Name)]; !exists {
				continue // a neighbour in the same directory
			}
			if event.Op == fsnotify.Chmod {
				continue // content didn't change
			}
			if obj.options.debug {
				obj.options.logf("event(%s): %v", event.Name, event.Op)
			}
			select {
			// exit even when we're blocked on event sending
			case obj.events <- Event{Error: nil, Body: &event}:
			case <-obj.exit:
				return nil
			}

		case err, ok := <-obj.watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("unknown watcher error: %v", err)

		case <-obj.exit:
			return nil
		}
	}
}

// Option is a type that can be used to configure the watcher.
type Option func(*recwatchOptions)

type recwatchOptions struct {
	debug bool
	logf  func(format string, v ...interface{})
}

// Debug specifies whether we should run in debug mode or not.
func Debug(debug bool) Option {
	return func(rwo *recwatchOptions) {
		rwo.debug = debug
	}
}

// Logf passes a logger function that we can use if so desired.
func Logf(logf func(format string, v ...interface{})) Option {
	return func(rwo *recwatchOptions) {
		rwo.logf = logf
	}
}
