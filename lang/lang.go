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

// Package lang is the front door of the language. It wires a runtime to the
// standard library and the loader, and runs whole programs.
package lang

import (
	"fmt"
	"io"
	"time"

	"github.com/rtfl-lang/rtfl/lang/funcs"
	_ "github.com/rtfl-lang/rtfl/lang/funcs/core" // import so the funcs register
	"github.com/rtfl-lang/rtfl/lang/interfaces"
	"github.com/rtfl-lang/rtfl/lang/interpret"
	"github.com/rtfl-lang/rtfl/lang/loader"
	"github.com/rtfl-lang/rtfl/lang/types"
	"github.com/rtfl-lang/rtfl/util/errwrap"

	"github.com/spf13/afero"
)

const (
	// ArgsName is the global that holds the program arguments.
	ArgsName = "args"

	// EvalName is the origin file name of code that isn't in a file.
	EvalName = "eval"

	// KindFile is the execution kind reported for programs run from files.
	KindFile = "file"

	// KindCode is the execution kind reported for code run directly.
	KindCode = "code"
)

// Lang runs programs on one runtime with the standard library loaded. Fill in
// the public fields, call Init, and call Close when done.
type Lang struct {
	Fs afero.Fs

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	GCInterval time.Duration
	LibDir     string

	// Metrics is optional.
	Metrics interpret.Metrics

	// Exit ends the process. It defaults to os.Exit.
	Exit func(int)

	Debug bool
	Logf  func(format string, v ...interface{})

	runtime *interpret.Runtime
	loader  *loader.Loader
}

// Init builds the runtime and imports the standard library.
func (obj *Lang) Init() error {
	if obj.Fs == nil {
		obj.Fs = afero.NewOsFs()
	}
	if obj.Logf == nil {
		obj.Logf = func(format string, v ...interface{}) {}
	}

	obj.runtime = &interpret.Runtime{
		Fs:         obj.Fs,
		Stdin:      obj.Stdin,
		Stdout:     obj.Stdout,
		Stderr:     obj.Stderr,
		GCInterval: obj.GCInterval,
		LibDir:     obj.LibDir,
		Metrics:    obj.Metrics,
		Exit:       obj.Exit,
		Debug:      obj.Debug,
		Logf: func(format string, v ...interface{}) {
			obj.Logf("runtime: "+format, v...)
		},
	}
	if err := obj.runtime.Init(); err != nil {
		return errwrap.Wrapf(err, "could not init the runtime")
	}
	obj.runtime.ImportFuncs(funcs.Map())
	if obj.Debug {
		obj.Logf("imported %d functions", len(funcs.Names()))
	}

	obj.loader = &loader.Loader{Fs: obj.Fs}
	return nil
}

// Runtime returns the runtime, so that the host can register more functions.
func (obj *Lang) Runtime() *interpret.Runtime { return obj.runtime }

// SetArgs stores the program arguments in the args global, as strings.
func (obj *Lang) SetArgs(args []string) {
	arr := types.NewArray()
	for _, x := range args {
		arr.Append(types.NewStr(x))
	}
	obj.runtime.SetGlobal(ArgsName, arr)
}

// RunFile loads a source or compiled file and runs it at the top level. Every
// variable it leaves behind is released when it ends.
func (obj *Lang) RunFile(path string, args []string) (types.Value, error) {
	unit, err := obj.loader.Load(path)
	if err != nil {
		return nil, err
	}
	if obj.Debug {
		obj.Logf("loaded %d instructions from %s (compiled: %t)", len(unit.Instructions), path, unit.Compiled)
	}
	obj.SetArgs(args)
	return obj.run(unit.Instructions, KindFile)
}

// RunCode parses source code and runs it at the top level.
func (obj *Lang) RunCode(code string) (types.Value, error) {
	instructions, err := obj.loader.LoadSource(EvalName, code)
	if err != nil {
		return nil, err
	}
	return obj.run(instructions, KindCode)
}

func (obj *Lang) run(instructions []interfaces.Instruction, kind string) (types.Value, error) {
	if obj.Metrics != nil {
		if err := obj.Metrics.UpdateExecutionTotal(kind); err != nil {
			obj.Logf("metrics error: %+v", err)
		}
	}
	return obj.runtime.Execute(instructions, obj.runtime.TopScope(), true)
}

// Wait blocks until every async task has finished.
func (obj *Lang) Wait() {
	obj.runtime.Wait()
}

// Close stops the runtime. It does not wait for async tasks.
func (obj *Lang) Close() error {
	if obj.runtime == nil {
		return fmt.Errorf("the lang was never initialized")
	}
	var errs error
	if err := obj.runtime.Close(); err != nil {
		errs = errwrap.Append(errs, errwrap.Wrapf(err, "could not close the runtime"))
	}
	return errs
}
