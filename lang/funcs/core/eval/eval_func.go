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

// Package coreeval contains the functions that run more code, and the ones
// that change how code runs.
package coreeval

import (
	"errors"
	"path/filepath"

	"github.com/rtfl-lang/rtfl/lang/bytecode"
	"github.com/rtfl-lang/rtfl/lang/funcs"
	"github.com/rtfl-lang/rtfl/lang/interfaces"
	"github.com/rtfl-lang/rtfl/lang/loader"
	"github.com/rtfl-lang/rtfl/lang/parser"
	"github.com/rtfl-lang/rtfl/lang/types"
)

// EvalName is the origin file name of code run by eval and async.
const EvalName = "eval"

const errNotString = "Provided non-string argument"

func init() {
	funcs.RegisterSimple("var", Var)
	funcs.RegisterSimple("eval", Eval)
	funcs.RegisterSimple("async", Async)
	funcs.RegisterSimple("load", Load)
	funcs.RegisterSimple("load_async", LoadAsync)
	funcs.RegisterSimple("require", Require)
}

// Var returns the value of the variable named by the argument.
func Var(args []types.Value, scope interfaces.Scope) (types.Value, error) {
	if err := funcs.Arity(args, 1); err != nil {
		return nil, err
	}
	name, err := funcs.Str(args, 0, errNotString)
	if err != nil {
		return nil, err
	}
	return scope.VarValue(name)
}

// Eval runs source code in the calling scope and returns what it returned.
func Eval(args []types.Value, scope interfaces.Scope) (types.Value, error) {
	instructions, err := source(args)
	if err != nil {
		return nil, err
	}
	return scope.Runtime().Execute(instructions, scope, false)
}

// Async runs source code in the background.
func Async(args []types.Value, scope interfaces.Scope) (types.Value, error) {
	instructions, err := source(args)
	if err != nil {
		return nil, err
	}
	scope.Runtime().ExecuteAsync(instructions, scope)
	return types.Null, nil
}

// Load runs a file, either source code or compiled.
func Load(args []types.Value, scope interfaces.Scope) (types.Value, error) {
	instructions, err := file(args, scope)
	if err != nil {
		return nil, err
	}
	if _, err := scope.Runtime().Execute(instructions, scope, false); err != nil {
		return nil, err
	}
	return types.Null, nil
}

// LoadAsync runs a file in the background. The file is read before this
// returns.
func LoadAsync(args []types.Value, scope interfaces.Scope) (types.Value, error) {
	instructions, err := file(args, scope)
	if err != nil {
		return nil, err
	}
	scope.Runtime().ExecuteAsync(instructions, scope)
	return types.Null, nil
}

// Require runs a library, unless this runtime already ran it. Bare names are
// looked up in the library directory.
func Require(args []types.Value, scope interfaces.Scope) (types.Value, error) {
	if err := funcs.Arity(args, 1); err != nil {
		return nil, err
	}
	name, err := funcs.Str(args, 0, errNotString)
	if err != nil {
		return nil, err
	}
	env := scope.Runtime().Env()
	path := loader.Library(env.Fs, env.LibDir, name)
	key := path
	if abs, err := filepath.Abs(path); err == nil {
		key = abs
	}
	if scope.Runtime().Required(key) {
		return types.Null, nil
	}

	l := &loader.Loader{Fs: env.Fs}
	if !l.IsFile(path) {
		return nil, funcs.HostError("File/library \"%s\" does not exist", name)
	}
	instructions, err := l.LoadFile(path)
	if err != nil {
		return nil, failed(err)
	}
	if _, err := scope.Runtime().Execute(instructions, scope, false); err != nil {
		return nil, err
	}
	scope.Runtime().MarkRequired(key)
	return types.Null, nil
}

func source(args []types.Value) ([]interfaces.Instruction, error) {
	if err := funcs.Arity(args, 1); err != nil {
		return nil, err
	}
	code, err := funcs.Str(args, 0, errNotString)
	if err != nil {
		return nil, err
	}
	instructions, err := parser.ParseString(EvalName, code)
	if err != nil {
		return nil, interfaces.AsExecutionError(err)
	}
	return instructions, nil
}

func file(args []types.Value, scope interfaces.Scope) ([]interfaces.Instruction, error) {
	if err := funcs.Arity(args, 1); err != nil {
		return nil, err
	}
	path, err := funcs.Str(args, 0, errNotString)
	if err != nil {
		return nil, err
	}
	l := &loader.Loader{Fs: scope.Runtime().Env().Fs}
	instructions, err := l.LoadFile(path)
	if err != nil {
		return nil, failed(err)
	}
	return instructions, nil
}

// failed passes errors of the language through, and wraps the rest.
func failed(err error) error {
	if e, ok := err.(*interfaces.ExecutionError); ok {
		return e
	}
	var mismatch *bytecode.VersionMismatch
	if errors.As(err, &mismatch) {
		return funcs.HostError("%s", mismatch.Error())
	}
	return funcs.HostError("Failed to execute file: %v", err)
}
