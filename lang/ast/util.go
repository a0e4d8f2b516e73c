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

	"github.com/rtfl-lang/rtfl/lang/interfaces"
	"github.com/rtfl-lang/rtfl/lang/types"
)

// Resolve produces the concrete value of an operand. Values are returned as
// is, and expressions are evaluated against the scope.
func Resolve(operand interfaces.Operand, scope interfaces.Scope) (types.Value, error) {
	switch x := operand.(type) {
	case types.Value:
		return x, nil
	case interfaces.Expr:
		v, err := x.Resolve(scope)
		if err != nil {
			return nil, err
		}
		if v == nil {
			return types.Null, nil
		}
		return v, nil
	case nil:
		return types.Null, nil
	}
	return nil, fmt.Errorf("unknown operand type: %T", operand)
}

// ResolveAll resolves a list of operands in order.
func ResolveAll(operands []interfaces.Operand, scope interfaces.Scope) ([]types.Value, error) {
	values := make([]types.Value, 0, len(operands))
	for _, x := range operands {
		v, err := Resolve(x, scope)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}

// Equals compares a value with an operand. The operand is resolved first.
func Equals(left types.Value, right interfaces.Operand, scope interfaces.Scope) (bool, error) {
	r, err := Resolve(right, scope)
	if err != nil {
		return false, err
	}
	return left.Equals(r), nil
}

// Call resolves the arguments, looks up the function and runs it in a scope
// descended from the given one. A nil result is turned into null.
func Call(name string, args []interfaces.Operand, scope interfaces.Scope, cause interfaces.Instruction) (types.Value, error) {
	values, err := ResolveAll(args, scope)
	if err != nil {
		return nil, err
	}
	fn, err := scope.Function(name)
	if err != nil {
		return nil, err
	}
	result, err := fn.Run(values, scope.Descend(cause))
	if err != nil {
		return nil, err
	}
	if result == nil {
		return types.Null, nil
	}
	return result, nil
}

// IsOpener returns true if the instruction opens a clause which must be closed
// by a matching InstEnd.
func IsOpener(inst interfaces.Instruction) bool {
	switch inst.(type) {
	case *InstIf, *InstWhile, *InstErrorGuard, *InstFuncDef, *InstAsync:
		return true
	}
	return false
}

// Body returns the instructions of the clause opened at index i, and the index
// of the InstEnd which closes it. If the clause is never closed, the body runs
// to the end of the list and the returned index is the last one.
func Body(instructions []interfaces.Instruction, i int) ([]interfaces.Instruction, int) {
	depth := 1
	for j := i + 1; j < len(instructions); j++ {
		switch {
		case IsOpener(instructions[j]):
			depth++
		case isEnd(instructions[j]):
			depth--
		}
		if depth == 0 {
			return instructions[i+1 : j], j
		}
	}
	return instructions[i+1:], len(instructions) - 1
}

func isEnd(inst interfaces.Instruction) bool {
	_, ok := inst.(*InstEnd)
	return ok
}
