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

// Package interpret is the execution engine. It owns the global tables, the
// shared local variable table and the garbage collector, and it runs flat
// instruction lists in scopes.
package interpret

import (
	"fmt"
	"io"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/rtfl-lang/rtfl/lang/gc"
	"github.com/rtfl-lang/rtfl/lang/interfaces"
	"github.com/rtfl-lang/rtfl/lang/types"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

const (
	// MainOwner is the owner of the top level program.
	MainOwner = "main"

	// AsyncOwnerPrefix is the prefix of the owner of each async task.
	AsyncOwnerPrefix = "async-"

	// DefaultLibDir is where require looks for libraries by name.
	DefaultLibDir = "libs"
)

// Metrics receives updates about the runtime. The prometheus package has an
// implementation. Every method may be called concurrently.
type Metrics interface {
	// UpdateGCCollected adds to the number of reclaimed variables.
	UpdateGCCollected(n int) error

	// UpdateLocals sets the current size of the local variable table.
	UpdateLocals(n int) error

	// UpdateAsyncTotal counts a finished async task.
	UpdateAsyncTotal(errorful bool) error

	// UpdateExecutionTotal counts a program that was started.
	UpdateExecutionTotal(kind string) error
}

// Runtime runs programs. Fill in the public fields, call Init, and call Close
// when done.
type Runtime struct {
	// Fs is used for all file access. It defaults to the os filesystem.
	Fs afero.Fs

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// GCInterval is the time between two periodic sweeps.
	GCInterval time.Duration

	// LibDir is where require looks for libraries by name.
	LibDir string

	// Metrics is optional.
	Metrics Metrics

	// Exit ends the process. It defaults to os.Exit.
	Exit func(int)

	Debug bool
	Logf  func(format string, v ...interface{})

	env *interfaces.Env

	globalsMutex *sync.RWMutex
	globals      map[string]types.Value

	funcsMutex *sync.RWMutex
	funcs      map[string]interfaces.Func

	locals  *localTable
	sweeper *gc.Sweeper
	top     *Scope

	terminal *terminal

	requiredMutex *sync.Mutex
	required      map[string]struct{}

	wg *sync.WaitGroup // async tasks
}

// Init sets the defaults, builds the tables and starts the garbage collector.
func (obj *Runtime) Init() error {
	if obj.Fs == nil {
		obj.Fs = afero.NewOsFs()
	}
	if obj.Stdin == nil {
		obj.Stdin = os.Stdin
	}
	if obj.Stdout == nil {
		obj.Stdout = os.Stdout
	}
	if obj.Stderr == nil {
		obj.Stderr = os.Stderr
	}
	if obj.LibDir == "" {
		obj.LibDir = DefaultLibDir
	}
	if obj.Exit == nil {
		obj.Exit = os.Exit
	}
	if obj.Logf == nil {
		obj.Logf = func(format string, v ...interface{}) {}
	}

	obj.env = &interfaces.Env{
		Fs:     obj.Fs,
		Stdin:  obj.Stdin,
		Stdout: &syncWriter{mutex: &sync.Mutex{}, w: obj.Stdout},
		Stderr: &syncWriter{mutex: &sync.Mutex{}, w: obj.Stderr},
		LibDir: obj.LibDir,
		Exit:   obj.Exit,
		Debug:  obj.Debug,
		Logf:   obj.Logf,
	}

	obj.globalsMutex = &sync.RWMutex{}
	obj.globals = make(map[string]types.Value)
	obj.funcsMutex = &sync.RWMutex{}
	obj.funcs = make(map[string]interfaces.Func)
	obj.locals = newLocalTable()
	obj.top = newScope(obj, MainOwner)
	obj.terminal = newTerminal(obj.Stdin)
	obj.requiredMutex = &sync.Mutex{}
	obj.required = make(map[string]struct{})
	obj.wg = &sync.WaitGroup{}

	obj.sweeper = &gc.Sweeper{
		Interval: obj.GCInterval,
		Sweep:    obj.sweep,
		Debug:    obj.Debug,
		Logf: func(format string, v ...interface{}) {
			obj.Logf("gc: "+format, v...)
		},
	}
	if err := obj.sweeper.Init(); err != nil {
		return err
	}
	go obj.sweeper.Run()
	return nil
}

// Close stops the garbage collector and closes the terminal. It does not wait
// for async tasks, use Wait for that.
func (obj *Runtime) Close() error {
	obj.sweeper.Shutdown() // waits for the sweeper to exit
	return obj.terminal.Close()
}

// Wait blocks until every async task has finished.
func (obj *Runtime) Wait() {
	obj.wg.Wait()
}

// Env returns the host environment of this runtime.
func (obj *Runtime) Env() *interfaces.Env { return obj.env }

// TopScope returns the scope that top level programs run in.
func (obj *Runtime) TopScope() *Scope { return obj.top }

// ExecuteAsync runs the instructions in a new goroutine, with a new owner. The
// new owner co-owns every variable visible in the scope, so that nothing it
// can see is reclaimed before it's done. Errors are reported on stderr.
func (obj *Runtime) ExecuteAsync(instructions []interfaces.Instruction, scope interfaces.Scope) {
	s, ok := scope.(*Scope)
	if !ok {
		fmt.Fprintf(obj.env.Stderr, "(async) unknown:0 unsupported scope type: %T\n", scope)
		return
	}
	owner := AsyncOwnerPrefix + uuid.New().String()
	task := s.fork(owner)
	obj.locals.AddOwner(owner, task.ids()...)

	if obj.Debug {
		obj.Logf("async: starting %s", owner)
	}
	obj.wg.Add(1)
	go func() {
		defer obj.wg.Done()
		_, err := obj.Execute(instructions, task, true)
		if obj.Metrics != nil {
			obj.Metrics.UpdateAsyncTotal(err != nil) // ignore errors
		}
		if err != nil {
			e := interfaces.AsExecutionError(err)
			fmt.Fprintf(obj.env.Stderr, "(async) %s\n", e.Report())
		}
		if obj.Debug {
			obj.Logf("async: finished %s", owner)
		}
	}()
}

// Global returns a global variable.
func (obj *Runtime) Global(name string) (types.Value, bool) {
	obj.globalsMutex.RLock()
	defer obj.globalsMutex.RUnlock()
	v, exists := obj.globals[name]
	return v, exists
}

// SetGlobal creates or replaces a global variable.
func (obj *Runtime) SetGlobal(name string, value types.Value) {
	obj.globalsMutex.Lock()
	defer obj.globalsMutex.Unlock()
	obj.globals[name] = value
}

// DeleteGlobal removes a global variable, and returns false if it didn't
// exist.
func (obj *Runtime) DeleteGlobal(name string) bool {
	obj.globalsMutex.Lock()
	defer obj.globalsMutex.Unlock()
	_, exists := obj.globals[name]
	delete(obj.globals, name)
	return exists
}

// Globals returns the sorted names of all global variables.
func (obj *Runtime) Globals() []string {
	obj.globalsMutex.RLock()
	defer obj.globalsMutex.RUnlock()
	names := []string{}
	for name := range obj.globals {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Function returns a function from the global table.
func (obj *Runtime) Function(name string) (interfaces.Func, bool) {
	obj.funcsMutex.RLock()
	defer obj.funcsMutex.RUnlock()
	fn, exists := obj.funcs[name]
	return fn, exists
}

// Register adds or replaces a function.
func (obj *Runtime) Register(name string, fn interfaces.Func) {
	obj.funcsMutex.Lock()
	defer obj.funcsMutex.Unlock()
	obj.funcs[name] = fn
}

// RegisterFunc adds or replaces a function given as a plain go func.
func (obj *Runtime) RegisterFunc(name string, fn func([]types.Value, interfaces.Scope) (types.Value, error)) {
	obj.Register(name, FuncOf(fn))
}

// ImportFuncs registers every function of a table, replacing any that exist.
func (obj *Runtime) ImportFuncs(funcs map[string]interfaces.Func) {
	obj.funcsMutex.Lock()
	defer obj.funcsMutex.Unlock()
	for name, fn := range funcs {
		obj.funcs[name] = fn
	}
}

// Unregister removes a function and returns false if it didn't exist.
func (obj *Runtime) Unregister(name string) bool {
	obj.funcsMutex.Lock()
	defer obj.funcsMutex.Unlock()
	_, exists := obj.funcs[name]
	delete(obj.funcs, name)
	return exists
}

// Functions returns the sorted names of all functions.
func (obj *Runtime) Functions() []string {
	obj.funcsMutex.RLock()
	defer obj.funcsMutex.RUnlock()
	names := []string{}
	for name := range obj.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LocalCount returns the size of the local variable table.
func (obj *Runtime) LocalCount() int { return obj.locals.Len() }

// LocalValue returns the value of a local variable by id.
func (obj *Runtime) LocalValue(id int) (types.Value, bool) { return obj.locals.Get(id) }

// GC returns the garbage collector.
func (obj *Runtime) GC() interfaces.GC { return obj.sweeper }

// Collect sweeps once and returns the number of reclaimed variables.
func (obj *Runtime) Collect() int { return obj.sweeper.Collect() }

// Terminal returns the interactive input of this runtime.
func (obj *Runtime) Terminal() interfaces.Terminal { return obj.terminal }

// OpenTerminal allows reading from the terminal.
func (obj *Runtime) OpenTerminal() { obj.terminal.Open() }

// CloseTerminal stops reading from the terminal.
func (obj *Runtime) CloseTerminal() error { return obj.terminal.Close() }

// TerminalOpen returns true if the terminal is open.
func (obj *Runtime) TerminalOpen() bool { return obj.terminal.IsOpen() }

// ReadTerminal reads one line from the terminal.
func (obj *Runtime) ReadTerminal() (string, error) { return obj.terminal.ReadLine() }

// Required returns true if the path was already loaded with require.
func (obj *Runtime) Required(path string) bool {
	obj.requiredMutex.Lock()
	defer obj.requiredMutex.Unlock()
	_, exists := obj.required[path]
	return exists
}

// MarkRequired records a path as loaded with require.
func (obj *Runtime) MarkRequired(path string) {
	obj.requiredMutex.Lock()
	defer obj.requiredMutex.Unlock()
	obj.required[path] = struct{}{}
}

// sweep is what the garbage collector runs.
func (obj *Runtime) sweep() int {
	n := obj.locals.Sweep()
	if obj.Metrics != nil {
		obj.Metrics.UpdateGCCollected(n) // ignore errors
	}
	obj.updateLocals()
	return n
}

func (obj *Runtime) updateLocals() {
	if obj.Metrics == nil {
		return
	}
	obj.Metrics.UpdateLocals(obj.locals.Len()) // ignore errors
}

// syncWriter serializes writes so that lines from concurrent tasks don't mix.
type syncWriter struct {
	mutex *sync.Mutex
	w     io.Writer
}

func (obj *syncWriter) Write(p []byte) (int, error) {
	obj.mutex.Lock()
	defer obj.mutex.Unlock()
	return obj.w.Write(p)
}
