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
	"github.com/rtfl-lang/rtfl/lang/ast"
	"github.com/rtfl-lang/rtfl/lang/interfaces"
	"github.com/rtfl-lang/rtfl/lang/types"
)

// Execute runs a flat list of instructions in a scope and returns the value
// of the last return instruction at this level, or null. Clauses run nested
// executions in descendant scopes. Every variable this call created is
// released by the owner of the scope when it's done, and with disownAll set,
// every variable visible at the end is released instead.
func (obj *Runtime) Execute(instructions []interfaces.Instruction, scope interfaces.Scope, disownAll bool) (types.Value, error) {
	s, ok := scope.(*Scope)
	if !ok {
		return nil, interfaces.NewExecutionError(interfaces.ErrHost, "unsupported scope type: %T", scope)
	}
	e := &execution{
		runtime:   obj,
		scope:     s,
		owner:     s.owner,
		disownAll: disownAll,
		created:   make(map[int]struct{}),
	}
	result, err := e.run(instructions)
	e.release()
	if err != nil {
		return nil, err
	}
	return result, nil
}

// execution is the state of a single Execute call.
type execution struct {
	runtime   *Runtime
	scope     *Scope
	owner     string
	disownAll bool

	// created holds the ids of the variables made by this execution.
	created map[int]struct{}
}

func (obj *execution) run(instructions []interfaces.Instruction) (types.Value, error) {
	var result types.Value = types.Null
	for i := 0; i < len(instructions); i++ {
		inst := instructions[i]
		next, value, err := obj.step(instructions, i)
		if err != nil {
			return nil, interfaces.WithCause(err, inst)
		}
		if value != nil {
			result = value
		}
		i = next
	}
	return result, nil
}

// step runs the instruction at index i. It returns the index of the last
// instruction it consumed, and a value if the instruction was a return.
func (obj *execution) step(instructions []interfaces.Instruction, i int) (int, types.Value, error) {
	scope := obj.scope
	switch x := instructions[i].(type) {
	case *ast.InstGlobalDef:
		v, err := ast.Resolve(x.Value, scope)
		if err != nil {
			return i, nil, err
		}
		obj.runtime.SetGlobal(x.Name, v)

	case *ast.InstLocalDef:
		v, err := ast.Resolve(x.Value, scope)
		if err != nil {
			return i, nil, err
		}
		obj.created[scope.CreateLocalVar(x.Name, v)] = struct{}{}

	case *ast.InstAssign:
		v, err := ast.Resolve(x.Value, scope)
		if err != nil {
			return i, nil, err
		}
		if err := scope.AssignVar(x.Name, v); err != nil {
			return i, nil, err
		}

	case *ast.InstUndef:
		id, err := scope.UndefineVar(x.Name)
		if err != nil {
			return i, nil, err
		}
		delete(obj.created, id)

	case *ast.InstArrayAssign:
		if err := obj.arrayAssign(x); err != nil {
			return i, nil, err
		}

	case *ast.InstMapAssign:
		m, err := ast.Resolve(x.Map, scope)
		if err != nil {
			return i, nil, err
		}
		mv, ok := m.(*types.MapValue)
		if !ok {
			return i, nil, interfaces.NewExecutionError(interfaces.ErrType, "Cannot get field from non-map")
		}
		v, err := ast.Resolve(x.Value, scope)
		if err != nil {
			return i, nil, err
		}
		mv.Set(x.Field, v)

	case *ast.InstCall:
		if _, err := ast.Call(x.Name, x.Args, scope, x); err != nil {
			return i, nil, err
		}

	case *ast.InstReturn:
		v, err := ast.Resolve(x.Value, scope)
		if err != nil {
			return i, nil, err
		}
		return i, v, nil

	case *ast.InstIf:
		body, end := ast.Body(instructions, i)
		yes, err := obj.condition(x.Cond, "if")
		if err != nil {
			return end, nil, err
		}
		if yes {
			// a return in here doesn't end the enclosing function
			if _, err := obj.runtime.Execute(body, scope.descend(x), false); err != nil {
				return end, nil, err
			}
		}
		return end, nil, nil

	case *ast.InstWhile:
		body, end := ast.Body(instructions, i)
		for {
			yes, err := obj.condition(x.Cond, "while")
			if err != nil {
				return end, nil, err
			}
			if !yes {
				break
			}
			if _, err := obj.runtime.Execute(body, scope.descend(x), false); err != nil {
				return end, nil, err
			}
		}
		return end, nil, nil

	case *ast.InstErrorGuard:
		body, end := ast.Body(instructions, i)
		obj.created[scope.CreateLocalVar(x.Name, types.NewStr("ok"))] = struct{}{}
		if _, err := obj.runtime.Execute(body, scope.descend(x), false); err != nil {
			msg := interfaces.AsExecutionError(err).Msg
			if obj.runtime.Debug {
				obj.runtime.Logf("guard: %s caught: %s", x.Name, msg)
			}
			if err := scope.AssignVar(x.Name, types.NewStr(msg)); err != nil {
				return end, nil, err
			}
		}
		return end, nil, nil

	case *ast.InstFuncDef:
		body, end := ast.Body(instructions, i)
		obj.runtime.Register(x.Name, &InstFunc{
			Name: x.Name,
			Args: x.Args,
			Body: body,
		})
		return end, nil, nil

	case *ast.InstFuncUndef:
		scope.UndefineFunc(x.Name)

	case *ast.InstAsync:
		body, end := ast.Body(instructions, i)
		obj.runtime.ExecuteAsync(body, scope.descend(x))
		return end, nil, nil

	case *ast.InstDescend:
		obj.scope = scope.descend(x)

	case *ast.InstAscend:
		if scope.parent != nil {
			obj.scope = scope.parent
		}

	case *ast.InstEnd:
		// stray end, nothing to close

	default:
		return i, nil, interfaces.NewExecutionError(interfaces.ErrHost, "unknown instruction: %T", x)
	}
	return i, nil, nil
}

// condition resolves the condition of an if or a while.
func (obj *execution) condition(cond interfaces.Operand, keyword string) (bool, error) {
	v, err := ast.Resolve(cond, obj.scope)
	if err != nil {
		return false, err
	}
	f, ok := types.Number(v)
	if !ok {
		return false, interfaces.NewExecutionError(interfaces.ErrType, "Non-number/bool value provided for '%s' instruction", keyword)
	}
	return f > 0, nil
}

func (obj *execution) arrayAssign(x *ast.InstArrayAssign) error {
	a, err := ast.Resolve(x.Array, obj.scope)
	if err != nil {
		return err
	}
	arr, ok := a.(*types.ArrayValue)
	if !ok {
		return interfaces.NewExecutionError(interfaces.ErrType, "Cannot get element from non-array")
	}
	idx, err := ast.Resolve(x.Index, obj.scope)
	if err != nil {
		return err
	}
	n, ok := types.Int(idx)
	if !ok {
		return interfaces.NewExecutionError(interfaces.ErrType, "Provided non-number index")
	}
	v, err := ast.Resolve(x.Value, obj.scope)
	if err != nil {
		return err
	}
	if !arr.Set(n, v) {
		return ast.OutOfBounds(n, arr.Len())
	}
	return nil
}

// release gives up ownership of the variables of this execution.
func (obj *execution) release() {
	var ids []int
	if obj.disownAll {
		ids = obj.scope.ids()
	} else {
		for id := range obj.created {
			ids = append(ids, id)
		}
	}
	obj.runtime.locals.RemoveOwner(obj.owner, ids...)
}

