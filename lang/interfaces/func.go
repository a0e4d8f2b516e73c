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

package interfaces

import (
	"io"

	"github.com/rtfl-lang/rtfl/lang/types"

	"github.com/spf13/afero"
)

// Func is the common calling convention for every callable, whether it was
// defined in a script or registered by the host.
type Func interface {
	// Run calls the function with already resolved arguments. The scope is
	// a fresh descendant of the caller's scope.
	Run(args []types.Value, scope Scope) (types.Value, error)
}

// Scope is a snapshot of local variable aliases with a link to its parent.
// The aliases point into the runtime's shared local variable table. A scope
// is used by a single goroutine at a time.
type Scope interface {
	// CreateLocalVar allocates a new local variable owned by this scope's
	// owner, and points the alias for name at it. It returns the new id.
	CreateLocalVar(name string, value types.Value) int

	// AssignVar stores a value into the local alias for name, or into the
	// global of that name if there is no local.
	AssignVar(name string, value types.Value) error

	// UndefineVar removes the local alias and its variable, or the global of
	// that name. It returns the id of the removed local, or -1 for a global.
	UndefineVar(name string) (int, error)

	// VarValue looks up a variable, locals first.
	VarValue(name string) (types.Value, error)

	// Function looks up a function, honouring the restriction set.
	Function(name string) (Func, error)

	// UndefineFunc removes a function unless it is restricted here.
	UndefineFunc(name string)

	// RestrictFunc adds a function name to the parent's restriction set.
	RestrictFunc(name string)

	// Descend returns a child scope with a copy of the aliases and of the
	// restriction set. The cause is the instruction that led here, if any.
	Descend(cause Instruction) Scope

	// Parent returns the scope this one descended from, or nil.
	Parent() Scope

	// Cause returns the instruction this scope was created for, or nil.
	Cause() Instruction

	// Owner returns the identity of the task that runs in this scope.
	Owner() string

	// Aliases returns a copy of the name to variable id table.
	Aliases() map[string]int

	// Runtime returns the runtime this scope belongs to.
	Runtime() Runtime
}

// Runtime is the part of the engine that host functions can see.
type Runtime interface {
	// Env returns the host environment of this runtime.
	Env() *Env

	// Execute runs a flat instruction list in a scope. If disownAll is
	// set, every variable visible at the end is released, otherwise only
	// those that this call created.
	Execute(instructions []Instruction, scope Scope, disownAll bool) (types.Value, error)

	// ExecuteAsync runs an instruction list in a new goroutine. Errors are
	// reported to the diagnostic stream.
	ExecuteAsync(instructions []Instruction, scope Scope)

	// Global returns a global variable.
	Global(name string) (types.Value, bool)

	// SetGlobal creates or replaces a global variable.
	SetGlobal(name string, value types.Value)

	// Register adds or replaces a function in the global function table.
	Register(name string, fn Func)

	// Unregister removes a function from the global function table.
	Unregister(name string) bool

	// GC returns the garbage collector controls.
	GC() GC

	// Terminal returns the interactive input of this runtime.
	Terminal() Terminal

	// Required returns true if the file was already loaded with require.
	Required(path string) bool

	// MarkRequired records that the file was loaded with require.
	MarkRequired(path string)
}

// GC is the control surface of the garbage collector.
type GC interface {
	// Collect sweeps once and returns the number of variables reclaimed.
	Collect() int

	// Pause stops the periodic sweep without stopping the collector.
	Pause()

	// Resume restarts the periodic sweep.
	Resume()

	// Paused returns true if the periodic sweep is paused.
	Paused() bool
}

// Terminal is line based interactive input.
type Terminal interface {
	Open()
	Close() error
	IsOpen() bool
	ReadLine() (string, error)
}

// Env is the host environment that functions interact with.
type Env struct {
	// Fs is the filesystem used for every file access.
	Fs afero.Fs

	// Stdin is the source for terminal input.
	Stdin io.Reader

	// Stdout receives the program output.
	Stdout io.Writer

	// Stderr is the diagnostic stream.
	Stderr io.Writer

	// LibDir is where require looks for libraries by name.
	LibDir string

	// Exit ends the process with a status code.
	Exit func(int)

	Debug bool
	Logf  func(format string, v ...interface{})
}
