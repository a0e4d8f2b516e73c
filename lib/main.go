// Mgmt
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
//
// Additional permission under GNU GPL version 3 section 7
//
// If you modify this program, or any covered work, by linking or combining it
// with embedded mcl code and modules (and that the embedded mcl code and
// modules which link with this program, contain a copy of their source code in
// the authoritative form) containing parts covered by the terms of any other
// license, the licensors of this program grant you additional permission to
// convey the resulting work. Furthermore, the licensors of this program grant
// the original author, James Shubin, additional permission to update this
// additional permission if he deems it necessary to achieve the goals of this
// additional permission.

// Package lib is the orchestrator for a run of a program from the command
// line. It loads the config, starts the metrics server, and runs the program
// once, or again after each change in watch mode.
package lib

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rtfl-lang/rtfl/lang"
	"github.com/rtfl-lang/rtfl/lang/interfaces"
	"github.com/rtfl-lang/rtfl/lang/interpret"
	"github.com/rtfl-lang/rtfl/lang/loader"
	"github.com/rtfl-lang/rtfl/prometheus"
	"github.com/rtfl-lang/rtfl/util/errwrap"
	"github.com/rtfl-lang/rtfl/util/recwatch"

	"github.com/spf13/afero"
)

// ErrNotAFile is returned when the program path is missing or a directory.
var ErrNotAFile = errors.New("Specified path does not point to a file")

// Main is the main struct for running a program.
type Main struct {
	// Config holds the options. It must be set.
	Config *Config

	Program string // the name of this program, usually set at compile time
	Version string // the version of this program, usually set at compile time

	// Path is the program file, either source or compiled.
	Path string

	// Args become the args global.
	Args []string

	Fs afero.Fs

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Exit ends the process when the program calls exit.
	Exit func(int)

	Debug bool
	Logf  func(format string, v ...interface{})

	loader     *loader.Loader
	prometheus *prometheus.Prometheus
	metrics    interpret.Metrics // nil unless enabled
}

// Validate checks the fields and fills in the defaults.
func (obj *Main) Validate() error {
	if obj.Config == nil {
		return fmt.Errorf("the Config is missing")
	}
	if obj.Path == "" {
		return fmt.Errorf("the Path is empty")
	}
	return obj.Config.Validate()
}

// Init sets up the main struct, and starts the metrics server if asked for.
func (obj *Main) Init() error {
	if obj.Fs == nil {
		obj.Fs = afero.NewOsFs()
	}
	if obj.Stdout == nil {
		obj.Stdout = os.Stdout
	}
	if obj.Stderr == nil {
		obj.Stderr = os.Stderr
	}
	if obj.Logf == nil {
		obj.Logf = func(format string, v ...interface{}) {}
	}

	obj.loader = &loader.Loader{Fs: obj.Fs}
	if !obj.loader.IsFile(obj.Path) {
		return ErrNotAFile
	}

	if obj.Config.Prometheus {
		obj.prometheus = &prometheus.Prometheus{
			Listen: obj.Config.PrometheusListen,
		}
		if err := obj.prometheus.Init(); err != nil {
			return errwrap.Wrapf(err, "can't initialize prometheus instance")
		}
		obj.Logf("prometheus: starting instance on: %s", obj.prometheus.Listen)
		if err := obj.prometheus.Start(); err != nil {
			return errwrap.Wrapf(err, "can't start prometheus instance")
		}
		obj.metrics = obj.prometheus
	}
	return nil
}

// Run runs the program. In watch mode it runs it again after every change, and
// only returns when the context is cancelled.
func (obj *Main) Run(ctx context.Context) error {
	err := obj.runOnce()
	if !obj.Config.Watch {
		return err
	}
	if err != nil {
		obj.Logf("run failed: %v", err) // it was already reported
	}

	watcher := &recwatch.RecWatcher{
		Path:    obj.Path,
		Recurse: true,
		Filter: func(name string) bool {
			return strings.HasSuffix(name, loader.SourceExtension) || strings.HasSuffix(name, loader.CompiledExtension)
		},
		Debug: obj.Debug,
		Logf: func(format string, v ...interface{}) {
			obj.Logf("watch: "+format, v...)
		},
	}
	if err := watcher.Init(); err != nil {
		return errwrap.Wrapf(err, "could not watch %s", obj.Path)
	}
	defer watcher.Close()
	obj.Logf("watching %s for changes", filepath.Dir(obj.Path))

	for {
		select {
		case event, ok := <-watcher.Events():
			if !ok {
				return nil
			}
			if event.Error != nil {
				return errwrap.Wrapf(event.Error, "watch failed")
			}
			obj.Logf("changed: %s", event.Name)
			if !obj.loader.IsFile(obj.Path) {
				continue // removed, or being replaced
			}
			if err := obj.runOnce(); err != nil {
				obj.Logf("run failed: %v", err)
			}

		case <-ctx.Done():
			return nil
		}
	}
}

// runOnce runs the program on a fresh runtime, and reports any error to the
// diagnostic stream in the file:line message form.
func (obj *Main) runOnce() error {
	l := &lang.Lang{
		Fs:         obj.Fs,
		Stdin:      obj.Stdin,
		Stdout:     obj.Stdout,
		Stderr:     obj.Stderr,
		GCInterval: obj.Config.Interval(),
		LibDir:     obj.Config.Libs,
		Metrics:    obj.metrics,
		Exit:       obj.Exit,
		Debug:      obj.Debug,
		Logf: func(format string, v ...interface{}) {
			obj.Logf("lang: "+format, v...)
		},
	}
	if err := l.Init(); err != nil {
		return err
	}

	start := time.Now()
	_, err := l.RunFile(obj.Path, obj.Args)
	l.Wait() // async tasks finish before we exit
	if obj.Config.Time {
		fmt.Fprintf(obj.Stdout, "Took %dms to read and execute file\n", time.Since(start).Milliseconds())
	}
	if e := l.Close(); e != nil {
		err = errwrap.Append(err, e)
	}
	if err != nil {
		fmt.Fprintln(obj.Stderr, Report(err))
	}
	return err
}

// Close stops the metrics server.
func (obj *Main) Close() error {
	var reterr error
	if obj.prometheus != nil {
		obj.Logf("prometheus: stopping instance")
		if err := obj.prometheus.Stop(); err != nil {
			reterr = errwrap.Append(reterr, errwrap.Wrapf(err, "the prometheus instance exited poorly"))
		}
	}
	return reterr
}

// Report formats an error for the user, one line per merged error. Execution
// errors carry the file and line where they happened. Anything else happened
// outside of the program.
func Report(err error) string {
	lines := []string{}
	for _, x := range errwrap.Errors(err) {
		var e *interfaces.ExecutionError
		if errors.As(x, &e) {
			lines = append(lines, e.Report())
			continue
		}
		lines = append(lines, "Failed to execute file: "+x.Error())
	}
	return strings.Join(lines, "\n")
}
