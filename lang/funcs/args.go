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

package funcs

import (
	"github.com/rtfl-lang/rtfl/lang/interfaces"
	"github.com/rtfl-lang/rtfl/lang/types"
)

// Arity errors unless there are at least n arguments.
func Arity(args []types.Value, n int) error {
	if len(args) >= n {
		return nil
	}
	if n == 1 {
		return interfaces.NewExecutionError(interfaces.ErrArity, "Must provide at least 1 argument")
	}
	return interfaces.NewExecutionError(interfaces.ErrArity, "Must provide at least %d arguments", n)
}

// TypeError builds the error used for arguments of the wrong kind.
func TypeError(format string, v ...interface{}) error {
	return interfaces.NewExecutionError(interfaces.ErrType, format, v...)
}

// HostError builds the error used when the host environment fails.
func HostError(format string, v ...interface{}) error {
	return interfaces.NewExecutionError(interfaces.ErrHost, format, v...)
}

// Str returns argument i if it is a string. The message is used otherwise.
func Str(args []types.Value, i int, msg string) (string, error) {
	if i < len(args) {
		if x, ok := args[i].(*types.StrValue); ok {
			return x.V, nil
		}
	}
	return "", TypeError("%s", msg)
}

// Number returns argument i if it is numeric. The message is used otherwise.
func Number(args []types.Value, i int, msg string) (float64, error) {
	if i < len(args) {
		if f, ok := types.Number(args[i]); ok {
			return f, nil
		}
	}
	return 0, TypeError("%s", msg)
}

// Int is like Number, but truncates toward zero.
func Int(args []types.Value, i int, msg string) (int, error) {
	if i < len(args) {
		if n, ok := types.Int(args[i]); ok {
			return n, nil
		}
	}
	return 0, TypeError("%s", msg)
}

// Array returns argument i if it is an array. The message is used otherwise.
func Array(args []types.Value, i int, msg string) (*types.ArrayValue, error) {
	if i < len(args) {
		if x, ok := args[i].(*types.ArrayValue); ok {
			return x, nil
		}
	}
	return nil, TypeError("%s", msg)
}

// MapArg returns argument i if it is a map. The message is used otherwise.
func MapArg(args []types.Value, i int, msg string) (*types.MapValue, error) {
	if i < len(args) {
		if x, ok := args[i].(*types.MapValue); ok {
			return x, nil
		}
	}
	return nil, TypeError("%s", msg)
}
