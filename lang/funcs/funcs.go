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

// Package funcs provides a framework for host functions. The standard library
// lives in the core subpackages, which register themselves when imported.
package funcs

import (
	"fmt"
	"sort"

	"github.com/rtfl-lang/rtfl/lang/interfaces"
	"github.com/rtfl-lang/rtfl/lang/types"
)

// registeredFuncs is a global map of all the host functions that can be
// imported into a runtime. You should never touch this map directly. Use
// methods like Register instead.
var registeredFuncs = make(map[string]interfaces.Func) // must initialize

// Register takes a func and its name and makes it available for use. It is
// commonly called in the init() method of the func at program startup. There
// is no matching Unregister function.
func Register(name string, fn interfaces.Func) {
	if _, exists := registeredFuncs[name]; exists {
		panic(fmt.Sprintf("a func named %s is already registered", name))
	}
	registeredFuncs[name] = fn
}

// RegisterSimple is a helper around Register for plain golang functions.
func RegisterSimple(name string, fn func([]types.Value, interfaces.Scope) (types.Value, error)) {
	Register(name, Simple(fn))
}

// Lookup returns the function registered with that name.
func Lookup(name string) (interfaces.Func, error) {
	f, exists := registeredFuncs[name]
	if !exists {
		return nil, fmt.Errorf("not found")
	}
	return f, nil
}

// Map returns a copy of the registered functions, suitable for importing into
// a runtime.
func Map() map[string]interfaces.Func {
	m := make(map[string]interfaces.Func)
	for name, fn := range registeredFuncs {
		m[name] = fn
	}
	return m
}

// Names returns the sorted names of every registered function.
func Names() []string {
	names := []string{}
	for name := range registeredFuncs {
		names = append(names, name)
	}
	sort.Strings(names) // deterministic order
	return names
}

// Simple is a host function in the form of a plain golang function.
type Simple func([]types.Value, interfaces.Scope) (types.Value, error)

// Run calls the function.
func (obj Simple) Run(args []types.Value, scope interfaces.Scope) (types.Value, error) {
	return obj(args, scope)
}
