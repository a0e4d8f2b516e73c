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

package ast

import (
	"fmt"
	"strings"

	"github.com/rtfl-lang/rtfl/lang/interfaces"
)

// Pos is the origin of an instruction. It is embedded in every instruction.
type Pos struct {
	File string
	Line int
}

// Origin returns the file and line of this position.
func (obj Pos) Origin() (string, int) { return obj.File, obj.Line }

// At builds a position. It's a small helper for producers.
func At(file string, line int) Pos { return Pos{File: file, Line: line} }

// InstGlobalDef defines or replaces a global variable.
type InstGlobalDef struct {
	Pos
	Name  string
	Value interfaces.Operand
}

func (obj *InstGlobalDef) String() string { return fmt.Sprintf("def %s = %s", obj.Name, obj.Value) }

// InstLocalDef creates a local variable in the current scope.
type InstLocalDef struct {
	Pos
	Name  string
	Value interfaces.Operand
}

func (obj *InstLocalDef) String() string { return fmt.Sprintf("local %s = %s", obj.Name, obj.Value) }

// InstAssign assigns to an existing local or global variable.
type InstAssign struct {
	Pos
	Name  string
	Value interfaces.Operand
}

func (obj *InstAssign) String() string { return fmt.Sprintf("%s = %s", obj.Name, obj.Value) }

// InstUndef removes a local or global variable.
type InstUndef struct {
	Pos
	Name string
}

func (obj *InstUndef) String() string { return "undef " + obj.Name }

// InstArrayAssign replaces an element of an array in place.
type InstArrayAssign struct {
	Pos
	Array interfaces.Operand
	Index interfaces.Operand
	Value interfaces.Operand
}

func (obj *InstArrayAssign) String() string {
	return fmt.Sprintf("%s[%s] = %s", obj.Array, obj.Index, obj.Value)
}

// InstMapAssign sets a field of a map in place.
type InstMapAssign struct {
	Pos
	Map   interfaces.Operand
	Field string
	Value interfaces.Operand
}

func (obj *InstMapAssign) String() string {
	return fmt.Sprintf("%s->%s = %s", obj.Map, obj.Field, obj.Value)
}

// InstCall calls a function and discards the result.
type InstCall struct {
	Pos
	Name string
	Args []interfaces.Operand
}

func (obj *InstCall) String() string { return obj.Name + "(" + joinOperands(obj.Args) + ")" }

// InstReturn sets the result of the current execution. It does not stop it.
type InstReturn struct {
	Pos
	Value interfaces.Operand
}

func (obj *InstReturn) String() string { return "return " + obj.Value.String() }

// InstIf opens a clause that runs once if the condition is truthy.
type InstIf struct {
	Pos
	Cond interfaces.Operand
}

func (obj *InstIf) String() string { return "if " + obj.Cond.String() + " {" }

// InstWhile opens a clause that runs as long as the condition is truthy.
type InstWhile struct {
	Pos
	Cond interfaces.Operand
}

func (obj *InstWhile) String() string { return "while " + obj.Cond.String() + " {" }

// InstErrorGuard opens a clause whose errors are caught, and stored as a
// message in the named local variable. The variable is "ok" otherwise.
type InstErrorGuard struct {
	Pos
	Name string
}

func (obj *InstErrorGuard) String() string { return "error " + obj.Name + " {" }

// InstEnd closes the most recent open clause.
type InstEnd struct {
	Pos
}

func (obj *InstEnd) String() string { return "}" }

// InstFuncDef opens a clause that defines a function with named arguments.
type InstFuncDef struct {
	Pos
	Name string
	Args []string
}

func (obj *InstFuncDef) String() string {
	return fmt.Sprintf("func %s(%s) {", obj.Name, strings.Join(obj.Args, ", "))
}

// InstFuncUndef removes a function.
type InstFuncUndef struct {
	Pos
	Name string
}

func (obj *InstFuncUndef) String() string { return "unfunc " + obj.Name }

// InstAsync opens a clause that runs in a new goroutine.
type InstAsync struct {
	Pos
}

func (obj *InstAsync) String() string { return "async {" }

// InstDescend switches the rest of the current execution into a child scope.
// It has no origin.
type InstDescend struct{}

// Origin returns no position.
func (obj *InstDescend) Origin() (string, int) { return "", 0 }

func (obj *InstDescend) String() string { return "<descend>" }

// InstAscend switches the rest of the current execution back to the parent
// scope. It has no origin.
type InstAscend struct{}

// Origin returns no position.
func (obj *InstAscend) Origin() (string, int) { return "", 0 }

func (obj *InstAscend) String() string { return "<ascend>" }
