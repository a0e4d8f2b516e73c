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

// Package coremath contains the arithmetic and logic functions.
package coremath

import (
	"math"
	"strconv"
	"strings"

	"github.com/rtfl-lang/rtfl/lang/funcs"
	"github.com/rtfl-lang/rtfl/lang/interfaces"
	"github.com/rtfl-lang/rtfl/lang/types"
)

const errNotNumber = "Provided non-number argument"

func init() {
	funcs.RegisterSimple("add", arithmetic(func(a, b int32) int32 { return a + b }, func(a, b float64) float64 { return a + b }))
	funcs.RegisterSimple("sub", arithmetic(func(a, b int32) int32 { return a - b }, func(a, b float64) float64 { return a - b }))
	funcs.RegisterSimple("mul", arithmetic(func(a, b int32) int32 { return a * b }, func(a, b float64) float64 { return a * b }))
	funcs.RegisterSimple("div", Div)
	funcs.RegisterSimple("inc", step(1))
	funcs.RegisterSimple("dec", step(-1))
	funcs.RegisterSimple("to_number", ToNumber)
}

// arithmetic builds a binary operation. Ints stay ints, and wrap around on
// overflow. If either side is a double, so is the result.
func arithmetic(ints func(a, b int32) int32, doubles func(a, b float64) float64) funcs.Simple {
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
		if isDouble(args[0]) || isDouble(args[1]) {
			return types.NewDouble(doubles(a, b)), nil
		}
		return types.NewInt(ints(int32(a), int32(b))), nil
	}
}

// Div divides two numbers. The result is an int when it is integral.
func Div(args []types.Value, scope interfaces.Scope) (types.Value, error) {
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
	f := a / b
	if f == math.Floor(f) && !math.IsInf(f, 0) {
		return types.NewInt(types.Int32(f)), nil
	}
	return types.NewDouble(f), nil
}

// step adds delta to the variable named by the first argument.
func step(delta int32) funcs.Simple {
	return func(args []types.Value, scope interfaces.Scope) (types.Value, error) {
		if err := funcs.Arity(args, 1); err != nil {
			return nil, err
		}
		name, err := funcs.Str(args, 0, "Provided non-string argument")
		if err != nil {
			return nil, err
		}
		v, err := scope.VarValue(name)
		if err != nil {
			return nil, err
		}
		var next types.Value
		switch x := v.(type) {
		case *types.IntValue:
			next = types.NewInt(x.V + delta)
		case *types.DoubleValue:
			next = types.NewDouble(x.V + float64(delta))
		default:
			return nil, funcs.TypeError("Variable \"%s\" is not a number", name)
		}
		return types.Null, scope.AssignVar(name, next)
	}
}

// ToNumber converts a value to a number. Strings with a dot become doubles.
func ToNumber(args []types.Value, scope interfaces.Scope) (types.Value, error) {
	if err := funcs.Arity(args, 1); err != nil {
		return nil, err
	}
	switch x := args[0].(type) {
	case *types.IntValue, *types.DoubleValue:
		return x, nil
	case *types.BoolValue:
		n, _ := types.Int(x)
		return types.NewInt(int32(n)), nil
	case *types.StrValue:
		if strings.Contains(x.V, ".") {
			f, err := strconv.ParseFloat(strings.TrimSpace(x.V), 64)
			if err != nil {
				return nil, funcs.TypeError("String \"%s\" does not represent a number", x.V)
			}
			return types.NewDouble(f), nil
		}
		i, err := strconv.ParseInt(x.V, 10, 32)
		if err != nil {
			return nil, funcs.TypeError("String \"%s\" does not represent a number", x.V)
		}
		return types.NewInt(int32(i)), nil
	}
	return nil, funcs.TypeError("Cannot convert \"%s\" to number", args[0])
}

func isDouble(v types.Value) bool {
	_, ok := v.(*types.DoubleValue)
	return ok
}
