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

package interpret

import (
	"fmt"

	"github.com/rtfl-lang/rtfl/lang/interfaces"
	"github.com/rtfl-lang/rtfl/lang/types"
)

// InstFunc is a function defined by a script.
type InstFunc struct {
	Name string
	Args []string
	Body []interfaces.Instruction
}

// String returns a short description of the function.
func (obj *InstFunc) String() string {
	return fmt.Sprintf("func %s(%d args, %d instructions)", obj.Name, len(obj.Args), len(obj.Body))
}

// Run binds the arguments as locals and executes the body. Each argument is
// available by its declared name, if it has one, and as argN counting from
// one. The number of arguments is in arglen. The argument variables are
// removed afterwards, even if the body failed.
func (obj *InstFunc) Run(args []types.Value, scope interfaces.Scope) (types.Value, error) {
	names := []string{}
	for i, arg := range args {
		if i < len(obj.Args) && obj.Args[i] != "" {
			scope.CreateLocalVar(obj.Args[i], arg)
			names = append(names, obj.Args[i])
		}
		name := fmt.Sprintf("arg%d", i+1)
		scope.CreateLocalVar(name, arg)
		names = append(names, name)
	}
	scope.CreateLocalVar("arglen", types.NewInt(int32(len(args))))
	names = append(names, "arglen")

	defer func() {
		aliases := scope.Aliases()
		for _, name := range names {
			if _, exists := aliases[name]; !exists {
				continue // the body undefined it already
			}
			scope.UndefineVar(name) // ignore errors
			delete(aliases, name)
		}
	}()

	return scope.Runtime().Execute(obj.Body, scope, false)
}

// FuncOf wraps a plain go func so that it can be registered.
func FuncOf(fn func([]types.Value, interfaces.Scope) (types.Value, error)) interfaces.Func {
	return nativeFunc(fn)
}

type nativeFunc func([]types.Value, interfaces.Scope) (types.Value, error)

func (obj nativeFunc) Run(args []types.Value, scope interfaces.Scope) (types.Value, error) {
	return obj(args, scope)
}
