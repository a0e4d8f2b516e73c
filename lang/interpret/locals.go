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

	"github.com/rtfl-lang/rtfl/lang/types"
)

// localVar is a slot in the local variable table. It lives for as long as at
// least one task owns it, or until it is undefined.
type localVar struct {
	value  types.Value
	owners map[string]struct{}
}

// localTable is the shared table of local variables, keyed by id. Ids are
// never reused.
type localTable struct {
	mutex  *sync.Mutex
	nextID int
	vars   map[int]*localVar
}

func newLocalTable() *localTable {
	return &localTable{
		mutex: &sync.Mutex{},
		vars:  make(map[int]*localVar),
	}
}

// Create stores a new variable with a single owner and returns its id.
func (obj *localTable) Create(value types.Value, owner string) int {
	obj.mutex.Lock()
	defer obj.mutex.Unlock()
	id := obj.nextID
	obj.nextID++
	obj.vars[id] = &localVar{
		value:  value,
		owners: map[string]struct{}{owner: {}},
	}
	return id
}

// Get returns the value stored under an id.
func (obj *localTable) Get(id int) (types.Value, bool) {
	obj.mutex.Lock()
	defer obj.mutex.Unlock()
	v, exists := obj.vars[id]
	if !exists {
		return nil, false
	}
	return v.value, true
}

// Exists returns true if the id is still in the table.
func (obj *localTable) Exists(id int) bool {
	obj.mutex.Lock()
	defer obj.mutex.Unlock()
	_, exists := obj.vars[id]
	return exists
}

// Replace swaps the variable stored under an existing id for a new one whose
// only owner is the given task. It returns false if the id is gone.
func (obj *localTable) Replace(id int, value types.Value, owner string) bool {
	obj.mutex.Lock()
	defer obj.mutex.Unlock()
	if _, exists := obj.vars[id]; !exists {
		return false
	}
	obj.vars[id] = &localVar{
		value:  value,
		owners: map[string]struct{}{owner: {}},
	}
	return true
}

// Delete removes an id from the table.
func (obj *localTable) Delete(id int) {
	obj.mutex.Lock()
	defer obj.mutex.Unlock()
	delete(obj.vars, id)
}

// AddOwner adds an owner to each of the ids. Ids that are gone are skipped.
func (obj *localTable) AddOwner(owner string, ids ...int) {
	obj.mutex.Lock()
	defer obj.mutex.Unlock()
	for _, id := range ids {
		if v, exists := obj.vars[id]; exists {
			v.owners[owner] = struct{}{}
		}
	}
}

// RemoveOwner removes an owner from each of the ids. Ids that are gone are
// skipped. Variables are not deleted here, even when they become unowned.
func (obj *localTable) RemoveOwner(owner string, ids ...int) {
	obj.mutex.Lock()
	defer obj.mutex.Unlock()
	for _, id := range ids {
		if v, exists := obj.vars[id]; exists {
			delete(v.owners, owner)
		}
	}
}

// Owners returns the number of owners of an id, or -1 if it is gone.
func (obj *localTable) Owners(id int) int {
	obj.mutex.Lock()
	defer obj.mutex.Unlock()
	v, exists := obj.vars[id]
	if !exists {
		return -1
	}
	return len(v.owners)
}

// Sweep deletes every variable without owners and returns how many it
// deleted.
func (obj *localTable) Sweep() int {
	obj.mutex.Lock()
	defer obj.mutex.Unlock()
	count := 0
	for id, v := range obj.vars {
		if len(v.owners) == 0 {
			delete(obj.vars, id)
			count++
		}
	}
	return count
}

// Len returns the number of variables in the table.
func (obj *localTable) Len() int {
	obj.mutex.Lock()
	defer obj.mutex.Unlock()
	return len(obj.vars)
}
