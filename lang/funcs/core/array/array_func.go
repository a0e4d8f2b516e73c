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

// Package corearray contains the array functions. Arrays are shared, so these
// change them in place.
package corearray

import (
	"github.com/rtfl-lang/rtfl/lang/ast"
	"github.com/rtfl-lang/rtfl/lang/funcs"
	"github.com/rtfl-lang/rtfl/lang/interfaces"
	"github.com/rtfl-lang/rtfl/lang/types"
)

func init() {
	funcs.RegisterSimple("array", New)
	funcs.RegisterSimple("array_add", Add)
	funcs.RegisterSimple("array_contains", Contains)
	funcs.RegisterSimple("array_remove", Remove)
	funcs.RegisterSimple("array_get", Get)
	funcs.RegisterSimple("array_set", Set)
	funcs.RegisterSimple("array_length", Length)
}

// New returns a new array of the arguments.
func New(args []types.Value, scope interfaces.Scope) (types.Value, error) {
	return types.NewArray(args...), nil
}

// Add appends the rest of the arguments to the array.
func Add(args []types.Value, scope interfaces.Scope) (types.Value, error) {
	if err := funcs.Arity(args, 2); err != nil {
		return nil, err
	}
	arr, err := funcs.Array(args, 0, "Did not provide array to add elements to")
	if err != nil {
		return nil, err
	}
	arr.Append(args[1:]...)
	return types.Null, nil
}

// Contains returns true if an element equals the second argument.
func Contains(args []types.Value, scope interfaces.Scope) (types.Value, error) {
	if err := funcs.Arity(args, 2); err != nil {
		return nil, err
	}
	arr, err := funcs.Array(args, 0, "Did not provide array to search")
	if err != nil {
		return nil, err
	}
	for _, x := range arr.Values() {
		if x.Equals(args[1]) {
			return types.NewBool(true), nil
		}
	}
	return types.NewBool(false), nil
}

// Remove deletes the element at a numeric index, or else every element which
// equals the second argument.
func Remove(args []types.Value, scope interfaces.Scope) (types.Value, error) {
	if err := funcs.Arity(args, 2); err != nil {
		return nil, err
	}
	arr, err := funcs.Array(args, 0, "Did not provide array to remove elements from")
	if err != nil {
		return nil, err
	}
	if i, ok := types.Int(args[1]); ok {
		if !arr.Remove(i) {
			return nil, ast.OutOfBounds(i, arr.Len())
		}
		return types.Null, nil
	}

	// compare outside of the lock, since the array may contain itself
	matches := make(map[types.Value]struct{})
	for _, x := range arr.Values() {
		if x.Equals(args[1]) {
			matches[x] = struct{}{}
		}
	}
	arr.RemoveFunc(func(x types.Value) bool {
		_, exists := matches[x]
		return exists
	})
	return types.Null, nil
}

// Get returns the element at an index.
func Get(args []types.Value, scope interfaces.Scope) (types.Value, error) {
	if err := funcs.Arity(args, 2); err != nil {
		return nil, err
	}
	arr, err := funcs.Array(args, 0, "Did not provide array to read")
	if err != nil {
		return nil, err
	}
	i, err := funcs.Int(args, 1, "Index must be a number")
	if err != nil {
		return nil, err
	}
	x, ok := arr.Get(i)
	if !ok {
		return nil, ast.OutOfBounds(i, arr.Len())
	}
	return x, nil
}

// Set replaces the element at an index.
func Set(args []types.Value, scope interfaces.Scope) (types.Value, error) {
	if err := funcs.Arity(args, 3); err != nil {
		return nil, err
	}
	arr, err := funcs.Array(args, 0, "Did not provide array to set")
	if err != nil {
		return nil, err
	}
	i, err := funcs.Int(args, 1, "Index must be a number")
	if err != nil {
		return nil, err
	}
	if !arr.Set(i, args[2]) {
		return nil, ast.OutOfBounds(i, arr.Len())
	}
	return types.Null, nil
}

// Length returns the number of elements.
func Length(args []types.Value, scope interfaces.Scope) (types.Value, error) {
	if err := funcs.Arity(args, 1); err != nil {
		return nil, err
	}
	arr, err := funcs.Array(args, 0, "Did not provide array to measure")
	if err != nil {
		return nil, err
	}
	return types.NewInt(int32(arr.Len())), nil
}
