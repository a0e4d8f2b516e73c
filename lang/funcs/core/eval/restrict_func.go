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

package coreeval

import (
	"github.com/rtfl-lang/rtfl/lang/funcs"
	"github.com/rtfl-lang/rtfl/lang/interfaces"
	"github.com/rtfl-lang/rtfl/lang/types"
)

func init() {
	funcs.RegisterSimple("restrict", Restrict)
	funcs.RegisterSimple("throw", Throw)
	funcs.RegisterSimple("copy_func", CopyFunc)
}

// Restrict stops the calling scope, and the scopes it creates from then on,
// from calling or removing a function.
func Restrict(args []types.Value, scope interfaces.Scope) (types.Value, error) {
	if err := funcs.Arity(args, 1); err != nil {
		return nil, err
	}
	name, err := funcs.Str(args, 0, errNotString)
	if err != nil {
		return nil, err
	}
	scope.RestrictFunc(name)
	return types.Null, nil
}

// Throw fails with the message in the argument.
func Throw(args []types.Value, scope interfaces.Scope) (types.Value, error) {
	if err := funcs.Arity(args, 1); err != nil {
		return nil, err
	}
	msg, err := funcs.Str(args, 0, errNotString)
	if err != nil {
		return nil, err
	}
	return nil, interfaces.NewExecutionError(interfaces.ErrThrown, "%s", msg)
}

// CopyFunc registers a function under a second name. Missing or restricted
// functions are ignored.
func CopyFunc(args []types.Value, scope interfaces.Scope) (types.Value, error) {
	if err := funcs.Arity(args, 2); err != nil {
		return nil, err
	}
	from, err := funcs.Str(args, 0, errNotString)
	if err != nil {
		return nil, err
	}
	to, err := funcs.Str(args, 1, errNotString)
	if err != nil {
		return nil, err
	}
	if fn, err := scope.Function(from); err == nil {
		scope.Runtime().Register(to, fn)
	}
	return types.Null, nil
}
