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

package coremath

import (
	"github.com/rtfl-lang/rtfl/lang/funcs"
	"github.com/rtfl-lang/rtfl/lang/interfaces"
	"github.com/rtfl-lang/rtfl/lang/types"
)

const errNotLogical = "Provided non-number/bool argument"

func init() {
	funcs.RegisterSimple("equals", Equals)
	funcs.RegisterSimple("more_than", compare(func(a, b float64) bool { return a > b }))
	funcs.RegisterSimple("less_than", compare(func(a, b float64) bool { return a < b }))
	funcs.RegisterSimple("not", Not)
	funcs.RegisterSimple("and", logic(func(a, b bool) bool { return a && b }))
	funcs.RegisterSimple("or", logic(func(a, b bool) bool { return a || b }))
}

// Equals compares two values the way the == operator does.
func Equals(args []types.Value, scope interfaces.Scope) (types.Value, error) {
	if err := funcs.Arity(args, 2); err != nil {
		return nil, err
	}
	return types.NewBool(args[0].Equals(args[1])), nil
}

func compare(fn func(a, b float64) bool) funcs.Simple {
	return func(args []types.Value, scope interfaces.Scope) (types.Value, error) {
		if err := funcs.Arity(args, 2); err != nil {
			return nil, err
		}
		a, err := funcs.Number(args, 0, errNotNumber)
		if err != nil {
			return nil, err
		}
		b, err := funcs.Number(args, 1, errNotNumber)
		if err != nil {
			return nil, err
		}
		return types.NewBool(fn(a, b)), nil
	}
}

// Not inverts the truth of a number or bool.
func Not(args []types.Value, scope interfaces.Scope) (types.Value, error) {
	if err := funcs.Arity(args, 1); err != nil {
		return nil, err
	}
	if !types.IsNumber(args[0]) {
		return nil, funcs.TypeError(errNotLogical)
	}
	return types.NewBool(!types.Truthy(args[0])), nil
}

func logic(fn func(a, b bool) bool) funcs.Simple {
	return func(args []types.Value, scope interfaces.Scope) (types.Value, error) {
		if err := funcs.Arity(args, 2); err != nil {
			return nil, err
		}
		if !types.IsNumber(args[0]) || !types.IsNumber(args[1]) {
			return nil, funcs.TypeError(errNotLogical)
		}
		return types.NewBool(fn(types.Truthy(args[0]), types.Truthy(args[1]))), nil
	}
}
