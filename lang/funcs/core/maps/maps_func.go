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

// Package coremaps contains the map functions, including the conversions to
// and from JSON.
package coremaps

import (
	"github.com/rtfl-lang/rtfl/lang/funcs"
	"github.com/rtfl-lang/rtfl/lang/interfaces"
	"github.com/rtfl-lang/rtfl/lang/types"
)

const (
	errNotMap = "Provided non-map argument"
	errKey    = "Key must be a string"
)

func init() {
	funcs.RegisterSimple("map", New)
	funcs.RegisterSimple("map_keys", Keys)
	funcs.RegisterSimple("map_values", Values)
	funcs.RegisterSimple("map_contains_key", ContainsKey)
	funcs.RegisterSimple("map_put", Put)
	funcs.RegisterSimple("map_set", Put) // alias
	funcs.RegisterSimple("map_get", Get)
	funcs.RegisterSimple("map_remove", Remove)
}

// New returns a new empty map.
func New(args []types.Value, scope interfaces.Scope) (types.Value, error) {
	return types.NewMap(), nil
}

// Keys returns the sorted keys of a map as an array of strings.
func Keys(args []types.Value, scope interfaces.Scope) (types.Value, error) {
	if err := funcs.Arity(args, 1); err != nil {
		return nil, err
	}
	m, err := funcs.MapArg(args, 0, errNotMap)
	if err != nil {
		return nil, err
	}
	arr := types.NewArray()
	for _, k := range m.Keys() {
		arr.Append(types.NewStr(k))
	}
	return arr, nil
}

// Values returns the values of a map, in the order of their sorted keys.
func Values(args []types.Value, scope interfaces.Scope) (types.Value, error) {
	if err := funcs.Arity(args, 1); err != nil {
		return nil, err
	}
	m, err := funcs.MapArg(args, 0, errNotMap)
	if err != nil {
		return nil, err
	}
	arr := types.NewArray()
	for _, k := range m.Keys() {
		if v, exists := m.Get(k); exists {
			arr.Append(v)
		}
	}
	return arr, nil
}

// ContainsKey returns true if the map has the key.
func ContainsKey(args []types.Value, scope interfaces.Scope) (types.Value, error) {
	m, key, err := mapAndKey(args, 2)
	if err != nil {
		return nil, err
	}
	return types.NewBool(m.Has(key)), nil
}

// Put stores the third argument under the key.
func Put(args []types.Value, scope interfaces.Scope) (types.Value, error) {
	m, key, err := mapAndKey(args, 3)
	if err != nil {
		return nil, err
	}
	m.Set(key, args[2])
	return types.Null, nil
}

// Get returns the value under the key, or null.
func Get(args []types.Value, scope interfaces.Scope) (types.Value, error) {
	m, key, err := mapAndKey(args, 2)
	if err != nil {
		return nil, err
	}
	if v, exists := m.Get(key); exists {
		return v, nil
	}
	return types.Null, nil
}

// Remove deletes the key.
func Remove(args []types.Value, scope interfaces.Scope) (types.Value, error) {
	m, key, err := mapAndKey(args, 2)
	if err != nil {
		return nil, err
	}
	m.Delete(key)
	return types.Null, nil
}

func mapAndKey(args []types.Value, arity int) (*types.MapValue, string, error) {
	if err := funcs.Arity(args, arity); err != nil {
		return nil, "", err
	}
	m, err := funcs.MapArg(args, 0, errNotMap)
	if err != nil {
		return nil, "", err
	}
	key, err := funcs.Str(args, 1, errKey)
	if err != nil {
		return nil, "", err
	}
	return m, key, nil
}
