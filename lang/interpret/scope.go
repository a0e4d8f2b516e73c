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
	"sync"

	"github.com/rtfl-lang/rtfl/lang/interfaces"
	"github.com/rtfl-lang/rtfl/lang/types"
)

// Scope is the runtime implementation of interfaces.Scope. The aliases point
// into the local variable table of the runtime.
type Scope struct {
	runtime *Runtime
	owner   string
	parent  *Scope
	cause   interfaces.Instruction

	mutex      *sync.Mutex
	aliases    map[string]int
	restricted map[string]struct{}
}

func newScope(runtime *Runtime, owner string) *Scope {
	return &Scope{
		runtime:    runtime,
		owner:      owner,
		mutex:      &sync.Mutex{},
		aliases:    make(map[string]int),
		restricted: make(map[string]struct{}),
	}
}

// CreateLocalVar allocates a new local variable and points the alias at it.
func (obj *Scope) CreateLocalVar(name string, value types.Value) int {
	id := obj.runtime.locals.Create(value, obj.owner)
	obj.mutex.Lock()
	obj.aliases[name] = id
	obj.mutex.Unlock()
	obj.runtime.updateLocals()
	return id
}

// AssignVar stores a value in the local alias or in the global of that name.
// Assigning to a local replaces its variable, so the current task becomes its
// only owner.
func (obj *Scope) AssignVar(name string, value types.Value) error {
	if id, exists := obj.alias(name); exists {
		if obj.runtime.locals.Replace(id, value, obj.owner) {
			return nil
		}
		obj.dropAlias(name)
		return interfaces.NewExecutionError(interfaces.ErrUndefinedVariable, "Attempted to assign value to undefined variable \"%s\"", name)
	}
	if _, exists := obj.runtime.Global(name); exists {
		obj.runtime.SetGlobal(name, value)
		return nil
	}
	return interfaces.NewExecutionError(interfaces.ErrUndefinedVariable, "Attempted to assign value to undefined variable \"%s\"", name)
}

// UndefineVar removes the local alias and its variable, or the global.
func (obj *Scope) UndefineVar(name string) (int, error) {
	if id, exists := obj.alias(name); exists {
		obj.dropAlias(name)
		obj.runtime.locals.Delete(id)
		obj.runtime.updateLocals()
		return id, nil
	}
	if obj.runtime.DeleteGlobal(name) {
		return -1, nil
	}
	return -1, interfaces.NewExecutionError(interfaces.ErrUndefinedVariable, "Attempted undefine undefined variable \"%s\"", name)
}

// VarValue looks up a local first, and a global second. A local alias that
// points at a reclaimed variable is dropped.
func (obj *Scope) VarValue(name string) (types.Value, error) {
	if id, exists := obj.alias(name); exists {
		if v, ok := obj.runtime.locals.Get(id); ok {
			return v, nil
		}
		obj.dropAlias(name)
		return nil, interfaces.NewExecutionError(interfaces.ErrUndefinedVariable, "Attempted to retrieve value from undefined variable \"%s\"", name)
	}
	if v, exists := obj.runtime.Global(name); exists {
		return v, nil
	}
	return nil, interfaces.NewExecutionError(interfaces.ErrUndefinedVariable, "Attempted to retrieve value from undefined variable \"%s\"", name)
}

// Function looks up a function unless it is restricted in this scope.
func (obj *Scope) Function(name string) (interfaces.Func, error) {
	if !obj.isRestricted(name) {
		if fn, exists := obj.runtime.Function(name); exists {
			return fn, nil
		}
	}
	return nil, interfaces.NewExecutionError(interfaces.ErrUndefinedFunction, "Attempted to call undefined or restricted function \"%s\"", name)
}

// UndefineFunc removes a function from the runtime unless it is restricted.
func (obj *Scope) UndefineFunc(name string) {
	if obj.isRestricted(name) {
		return
	}
	obj.runtime.Unregister(name)
}

// RestrictFunc adds a name to the restriction set of the parent scope. This
// is how a called function restricts things for its caller. A scope without a
// parent restricts itself.
func (obj *Scope) RestrictFunc(name string) {
	target := obj
	if obj.parent != nil {
		target = obj.parent
	}
	target.mutex.Lock()
	defer target.mutex.Unlock()
	target.restricted[name] = struct{}{}
}

// Descend returns a child scope with copies of the aliases and restrictions.
func (obj *Scope) Descend(cause interfaces.Instruction) interfaces.Scope {
	return obj.descend(cause)
}

func (obj *Scope) descend(cause interfaces.Instruction) *Scope {
	child := obj.fork(obj.owner)
	child.parent = obj
	child.cause = cause
	return child
}

// fork copies this scope for another owner. The copy has the same parent.
func (obj *Scope) fork(owner string) *Scope {
	obj.mutex.Lock()
	defer obj.mutex.Unlock()
	s := newScope(obj.runtime, owner)
	s.parent = obj.parent
	s.cause = obj.cause
	for k, v := range obj.aliases {
		s.aliases[k] = v
	}
	for k := range obj.restricted {
		s.restricted[k] = struct{}{}
	}
	return s
}

// Parent returns the scope this one descended from, or nil.
func (obj *Scope) Parent() interfaces.Scope {
	if obj.parent == nil {
		return nil // avoid a typed nil
	}
	return obj.parent
}

// Cause returns the instruction that created this scope.
func (obj *Scope) Cause() interfaces.Instruction { return obj.cause }

// Owner returns the task identity of this scope.
func (obj *Scope) Owner() string { return obj.owner }

// Aliases returns a copy of the alias table.
func (obj *Scope) Aliases() map[string]int {
	obj.mutex.Lock()
	defer obj.mutex.Unlock()
	m := make(map[string]int, len(obj.aliases))
	for k, v := range obj.aliases {
		m[k] = v
	}
	return m
}

// Runtime returns the runtime this scope belongs to.
func (obj *Scope) Runtime() interfaces.Runtime { return obj.runtime }

// ids returns every variable id visible in this scope.
func (obj *Scope) ids() []int {
	obj.mutex.Lock()
	defer obj.mutex.Unlock()
	ids := make([]int, 0, len(obj.aliases))
	for _, id := range obj.aliases {
		ids = append(ids, id)
	}
	return ids
}

func (obj *Scope) alias(name string) (int, bool) {
	obj.mutex.Lock()
	defer obj.mutex.Unlock()
	id, exists := obj.aliases[name]
	return id, exists
}

func (obj *Scope) dropAlias(name string) {
	obj.mutex.Lock()
	defer obj.mutex.Unlock()
	delete(obj.aliases, name)
}

func (obj *Scope) isRestricted(name string) bool {
	obj.mutex.Lock()
	defer obj.mutex.Unlock()
	_, exists := obj.restricted[name]
	return exists
}
