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

// Package ast contains the closed set of expressions and instructions that make
// up a program. Programs are flat lists of instructions, and the nesting of
// clauses is recovered by the engine when it runs them.
package ast

import (
	"fmt"
	"strings"

	"github.com/rtfl-lang/rtfl/lang/interfaces"
	"github.com/rtfl-lang/rtfl/lang/types"
)

// CmpOp is the operator of a comparison. The numeric values are part of the
// binary format and must not change.
type CmpOp uint8

const (
	// CmpEqual compares two values for equality.
	CmpEqual CmpOp = iota
	// CmpAnd is true if both sides are numbers greater than zero.
	CmpAnd
	// CmpOr is true if either side is a number greater than zero.
	CmpOr
	// CmpGreater is true if the left number is greater than the right one.
	CmpGreater
	// CmpLess is true if the left number is less than the right one.
	CmpLess
)

// String returns the operator character used in source code.
func (obj CmpOp) String() string {
	switch obj {
	case CmpEqual:
		return "="
	case CmpAnd:
		return "&"
	case CmpOr:
		return "|"
	case CmpGreater:
		return ">"
	case CmpLess:
		return "<"
	}
	return fmt.Sprintf("CmpOp(%d)", uint8(obj))
}

// CmpOpFromChar returns the operator for a source character.
func CmpOpFromChar(c string) (CmpOp, bool) {
	switch c {
	case "=":
		return CmpEqual, true
	case "&":
		return CmpAnd, true
	case "|":
		return CmpOr, true
	case ">":
		return CmpGreater, true
	case "<":
		return CmpLess, true
	}
	return 0, false
}

// ExprVar is a reference to a variable by name.
type ExprVar struct {
	Name string
}

// String returns the source form of this expression.
func (obj *ExprVar) String() string { return obj.Name }

// Resolve returns the current value of the variable.
func (obj *ExprVar) Resolve(scope interfaces.Scope) (types.Value, error) {
	return scope.VarValue(obj.Name)
}

// ExprCall is a function call used as a value.
type ExprCall struct {
	Name string
	Args []interfaces.Operand
}

// String returns the source form of this expression.
func (obj *ExprCall) String() string {
	return obj.Name + "(" + joinOperands(obj.Args) + ")"
}

// Resolve resolves the arguments, calls the function in a descended scope, and
// returns its result.
func (obj *ExprCall) Resolve(scope interfaces.Scope) (types.Value, error) {
	return Call(obj.Name, obj.Args, scope, nil)
}

// ExprCmp is a comparison between two operands. The result is a bool.
type ExprCmp struct {
	Left   interfaces.Operand
	Op     CmpOp
	Right  interfaces.Operand
	Invert bool
}

// String returns the source form of this expression.
func (obj *ExprCmp) String() string {
	s := fmt.Sprintf("[%s %s %s]", obj.Left, obj.Op, obj.Right)
	if obj.Invert {
		return "!" + s
	}
	return s
}

// Resolve evaluates both sides, left first, and compares them. Anything other
// than equality needs two numbers, and is simply false otherwise.
func (obj *ExprCmp) Resolve(scope interfaces.Scope) (types.Value, error) {
	l, err := Resolve(obj.Left, scope)
	if err != nil {
		return nil, err
	}
	r, err := Resolve(obj.Right, scope)
	if err != nil {
		return nil, err
	}

	var result bool
	if obj.Op == CmpEqual {
		result = l.Equals(r)
	} else {
		x, okx := types.Number(l)
		y, oky := types.Number(r)
		if okx && oky {
			switch obj.Op {
			case CmpAnd:
				result = x > 0 && y > 0
			case CmpOr:
				result = x > 0 || y > 0
			case CmpGreater:
				result = x > y
			case CmpLess:
				result = x < y
			}
		}
	}

	if obj.Invert {
		result = !result
	}
	return types.NewBool(result), nil
}

// ExprNot negates a value. A number negates its truthiness, and anything else
// is considered false, so its negation is true.
type ExprNot struct {
	Inner interfaces.Operand
}

// String returns the source form of this expression.
func (obj *ExprNot) String() string { return "![" + obj.Inner.String() + "]" }

// Resolve returns the negated truthiness of the inner operand.
func (obj *ExprNot) Resolve(scope interfaces.Scope) (types.Value, error) {
	v, err := Resolve(obj.Inner, scope)
	if err != nil {
		return nil, err
	}
	if f, ok := types.Number(v); ok {
		return types.NewBool(!(f > 0)), nil
	}
	return types.NewBool(true), nil
}

// ExprIndex selects an element of an array.
type ExprIndex struct {
	Array interfaces.Operand
	Index interfaces.Operand
}

// String returns the source form of this expression.
func (obj *ExprIndex) String() string {
	return obj.Array.String() + "[" + obj.Index.String() + "]"
}

// Resolve returns the selected element.
func (obj *ExprIndex) Resolve(scope interfaces.Scope) (types.Value, error) {
	a, err := Resolve(obj.Array, scope)
	if err != nil {
		return nil, err
	}
	arr, ok := a.(*types.ArrayValue)
	if !ok {
		return nil, interfaces.NewExecutionError(interfaces.ErrType, "Cannot get array element from non-array value")
	}
	idx, err := Resolve(obj.Index, scope)
	if err != nil {
		return nil, err
	}
	i, ok := types.Int(idx)
	if !ok {
		return nil, interfaces.NewExecutionError(interfaces.ErrType, "Cannot select element at non-number index")
	}
	v, ok := arr.Get(i)
	if !ok {
		return nil, OutOfBounds(i, arr.Len())
	}
	return v, nil
}

// ExprField selects a field of a map. Missing fields are null.
type ExprField struct {
	Map   interfaces.Operand
	Field string
}

// String returns the source form of this expression.
func (obj *ExprField) String() string { return obj.Map.String() + "->" + obj.Field }

// Resolve returns the field value, or null if it doesn't exist.
func (obj *ExprField) Resolve(scope interfaces.Scope) (types.Value, error) {
	v, err := Resolve(obj.Map, scope)
	if err != nil {
		return nil, err
	}
	m, ok := v.(*types.MapValue)
	if !ok {
		return nil, interfaces.NewExecutionError(interfaces.ErrType, "Cannot get field of non-map value")
	}
	if x, exists := m.Get(obj.Field); exists {
		return x, nil
	}
	return types.Null, nil
}

// OutOfBounds builds the error for an array index that doesn't exist.
func OutOfBounds(index, length int) *interfaces.ExecutionError {
	return interfaces.NewExecutionError(interfaces.ErrIndex, "Index %d is out of bounds for array of length %d", index, length)
}

func joinOperands(operands []interfaces.Operand) string {
	s := []string{}
	for _, x := range operands {
		s = append(s, x.String())
	}
	return strings.Join(s, ", ")
}
