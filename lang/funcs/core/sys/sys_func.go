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

// Package coresys contains the functions that control the runtime and the
// process.
package coresys

import (
	"time"

	"github.com/rtfl-lang/rtfl/lang/funcs"
	"github.com/rtfl-lang/rtfl/lang/interfaces"
	"github.com/rtfl-lang/rtfl/lang/types"
)

func init() {
	funcs.RegisterSimple("sleep", Sleep)
	funcs.RegisterSimple("exit", Exit)
	funcs.RegisterSimple("gc", GC)
	funcs.RegisterSimple("gc_pause", func(args []types.Value, scope interfaces.Scope) (types.Value, error) {
		scope.Runtime().GC().Pause()
		return types.Null, nil
	})
	funcs.RegisterSimple("gc_resume", func(args []types.Value, scope interfaces.Scope) (types.Value, error) {
		scope.Runtime().GC().Resume()
		return types.Null, nil
	})
}

// Sleep blocks for a number of milliseconds.
func Sleep(args []types.Value, scope interfaces.Scope) (types.Value, error) {
	if err := funcs.Arity(args, 1); err != nil {
		return nil, err
	}
	ms, err := funcs.Int(args, 0, "Provided non-number argument")
	if err != nil {
		return nil, err
	}
	if ms > 0 {
		time.Sleep(time.Duration(ms) * time.Millisecond)
	}
	return types.Null, nil
}

// Exit ends the process with the status in the first argument, or zero.
func Exit(args []types.Value, scope interfaces.Scope) (types.Value, error) {
	code := 0
	if len(args) > 0 {
		code, _ = types.Int(args[0])
	}
	scope.Runtime().Env().Exit(code)
	return types.Null, nil
}

// GC sweeps the local variable table now, and returns how many variables were
// reclaimed.
func GC(args []types.Value, scope interfaces.Scope) (types.Value, error) {
	return types.NewInt(int32(scope.Runtime().GC().Collect())), nil
}
