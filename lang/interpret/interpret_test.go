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

//go:build !root

package interpret

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rtfl-lang/rtfl/lang/ast"
	"github.com/rtfl-lang/rtfl/lang/interfaces"
	"github.com/rtfl-lang/rtfl/lang/types"
	"github.com/rtfl-lang/rtfl/util"

	"github.com/spf13/afero"
)

// lockedBuffer is a bytes.Buffer that can be read while tasks write to it.
type lockedBuffer struct {
	mutex sync.Mutex
	buf   bytes.Buffer
}

func (obj *lockedBuffer) Write(p []byte) (int, error) {
	obj.mutex.Lock()
	defer obj.mutex.Unlock()
	return obj.buf.Write(p)
}

func (obj *lockedBuffer) String() string {
	obj.mutex.Lock()
	defer obj.mutex.Unlock()
	return obj.buf.String()
}

func newRuntime(t *testing.T) (*Runtime, *lockedBuffer) {
	stderr := &lockedBuffer{}
	rt := &Runtime{
		Fs:         afero.NewMemMapFs(),
		Stdin:      strings.NewReader(""),
		Stdout:     &lockedBuffer{},
		Stderr:     stderr,
		GCInterval: time.Hour, // only manual collections in tests
		Exit:       func(int) {},
		Logf: func(format string, v ...interface{}) {
			t.Logf("runtime: "+format, v...)
		},
	}
	if err := rt.Init(); err != nil {
		t.Fatalf("could not init runtime: %+v", err)
	}
	rt.RegisterFunc("add", func(args []types.Value, scope interfaces.Scope) (types.Value, error) {
		x, _ := types.Number(args[0])
		y, _ := types.Number(args[1])
		return types.NewInt(int32(x + y)), nil
	})
	return rt, stderr
}

func pos(line int) ast.Pos { return ast.At("test.rtfl", line) }

func TestLocalTable(t *testing.T) {
	table := newLocalTable()
	a := table.Create(types.NewInt(1), "main")
	b := table.Create(types.NewInt(2), "main")
	if a == b {
		t.Errorf("ids must be unique")
	}
	table.AddOwner("other", a, b, 42) // 42 doesn't exist
	if n := table.Owners(a); n != 2 {
		t.Errorf("expected 2 owners, got: %d", n)
	}
	if n := table.Owners(42); n != -1 {
		t.Errorf("expected missing id, got: %d", n)
	}
	table.RemoveOwner("main", a, b)
	if n := table.Sweep(); n != 0 {
		t.Errorf("nothing is unowned yet, swept: %d", n)
	}
	table.RemoveOwner("other", a)
	if n := table.Sweep(); n != 1 {
		t.Errorf("expected one sweep, got: %d", n)
	}
	if table.Exists(a) || !table.Exists(b) {
		t.Errorf("wrong variable was swept")
	}
	if !table.Replace(b, types.NewStr("x"), "main") {
		t.Errorf("could not replace")
	}
	if n := table.Owners(b); n != 1 {
		t.Errorf("replacing should reset the owners, got: %d", n)
	}
	if table.Replace(a, types.Null, "main") {
		t.Errorf("replaced a missing variable")
	}
}

func TestScopeErrors(t *testing.T) {
	rt, _ := newRuntime(t)
	defer rt.Close()
	scope := rt.TopScope()

	if _, err := scope.VarValue("x"); err == nil || err.Error() != `Attempted to retrieve value from undefined variable "x"` {
		t.Errorf("unexpected error: %v", err)
	}
	if err := scope.AssignVar("x", types.Null); err == nil || err.Error() != `Attempted to assign value to undefined variable "x"` {
		t.Errorf("unexpected error: %v", err)
	}
	if _, err := scope.UndefineVar("x"); err == nil || err.Error() != `Attempted undefine undefined variable "x"` {
		t.Errorf("unexpected error: %v", err)
	}
	_, err := scope.Function("nope")
	if err == nil || err.Error() != `Attempted to call undefined or restricted function "nope"` {
		t.Errorf("unexpected error: %v", err)
	}
	if !errors.Is(err, interfaces.ErrUndefinedFunction) {
		t.Errorf("wrong kind of error: %+v", err)
	}

	rt.SetGlobal("g", types.NewInt(1))
	if err := scope.AssignVar("g", types.NewInt(2)); err != nil {
		t.Errorf("could not assign global: %+v", err)
	}
	if v, _ := rt.Global("g"); !v.Equals(types.NewInt(2)) {
		t.Errorf("unexpected global value: %s", v)
	}
	if id, err := scope.UndefineVar("g"); err != nil || id != -1 {
		t.Errorf("unexpected undefine result: %d, %v", id, err)
	}
}

func TestScopeDescend(t *testing.T) {
	rt, _ := newRuntime(t)
	defer rt.Close()
	top := rt.TopScope()
	top.CreateLocalVar("x", types.NewInt(1))

	child := top.Descend(nil)
	if v, err := child.VarValue("x"); err != nil || !v.Equals(types.NewInt(1)) {
		t.Errorf("child should see x: %v, %v", v, err)
	}
	child.CreateLocalVar("y", types.NewInt(2))
	if _, err := top.VarValue("y"); err == nil {
		t.Errorf("parent should not see y")
	}

	// assigning through the child changes the shared variable
	if err := child.AssignVar("x", types.NewInt(3)); err != nil {
		t.Errorf("could not assign: %+v", err)
	}
	if v, _ := top.VarValue("x"); !v.Equals(types.NewInt(3)) {
		t.Errorf("parent should see the new value, got: %s", v)
	}

	// a function restricts for its caller
	callee := child.Descend(nil)
	callee.RestrictFunc("add")
	if _, err := child.Function("add"); err == nil {
		t.Errorf("add should be restricted in the caller")
	}
	if _, err := top.Function("add"); err != nil {
		t.Errorf("add should still work above the caller: %+v", err)
	}
	child.UndefineFunc("add")
	if _, exists := rt.Function("add"); !exists {
		t.Errorf("restricted functions can't be undefined")
	}
}

func TestExecuteReturnInIf(t *testing.T) {
	rt, _ := newRuntime(t)
	defer rt.Close()
	insts := []interfaces.Instruction{
		&ast.InstIf{Pos: pos(1), Cond: types.NewBool(true)},
		&ast.InstReturn{Pos: pos(2), Value: types.NewInt(1)},
		&ast.InstEnd{Pos: pos(3)},
		&ast.InstReturn{Pos: pos(4), Value: types.NewInt(2)},
	}
	v, err := rt.Execute(insts, rt.TopScope(), false)
	if err != nil {
		t.Errorf("execute failed: %+v", err)
		return
	}
	if !v.Equals(types.NewInt(2)) {
		t.Errorf("expected 2, got: %s", v)
	}
	// a return doesn't stop execution either
	insts = []interfaces.Instruction{
		&ast.InstReturn{Pos: pos(1), Value: types.NewInt(1)},
		&ast.InstGlobalDef{Pos: pos(2), Name: "after", Value: types.NewBool(true)},
	}
	if v, _ := rt.Execute(insts, rt.TopScope(), false); !v.Equals(types.NewInt(1)) {
		t.Errorf("expected 1, got: %s", v)
	}
	if _, exists := rt.Global("after"); !exists {
		t.Errorf("execution stopped at return")
	}
}

func TestExecuteWhile(t *testing.T) {
	rt, _ := newRuntime(t)
	defer rt.Close()
	i := &ast.ExprVar{Name: "i"}
	insts := []interfaces.Instruction{
		&ast.InstLocalDef{Pos: pos(1), Name: "i", Value: types.NewInt(0)},
		&ast.InstWhile{Pos: pos(2), Cond: &ast.ExprCmp{Left: i, Op: ast.CmpLess, Right: types.NewInt(5)}},
		&ast.InstLocalDef{Pos: pos(3), Name: "tmp", Value: i},
		&ast.InstAssign{Pos: pos(4), Name: "i", Value: &ast.ExprCall{Name: "add", Args: []interfaces.Operand{i, types.NewInt(1)}}},
		&ast.InstEnd{Pos: pos(5)},
		&ast.InstReturn{Pos: pos(6), Value: i},
	}
	v, err := rt.Execute(insts, rt.TopScope().Descend(nil), false)
	if err != nil {
		t.Errorf("execute failed: %+v", err)
		return
	}
	if !v.Equals(types.NewInt(5)) {
		t.Errorf("expected 5, got: %s", v)
	}
	// five tmp and the last value of i are all released now
	if n := rt.Collect(); n != 6 {
		t.Errorf("expected 6 collected, got: %d", n)
	}
	if n := rt.Collect(); n != 0 {
		t.Errorf("expected nothing left, got: %d", n)
	}
}

func TestExecuteConditionType(t *testing.T) {
	rt, _ := newRuntime(t)
	defer rt.Close()
	insts := []interfaces.Instruction{
		&ast.InstWhile{Pos: pos(7), Cond: types.NewStr("yes")},
		&ast.InstEnd{Pos: pos(8)},
	}
	_, err := rt.Execute(insts, rt.TopScope(), false)
	e := interfaces.AsExecutionError(err)
	if e == nil {
		t.Errorf("expected an error")
		return
	}
	if e.Report() != "test.rtfl:7 Non-number/bool value provided for 'while' instruction" {
		t.Errorf("unexpected report: %s", e.Report())
	}
}

func TestErrorGuard(t *testing.T) {
	rt, _ := newRuntime(t)
	defer rt.Close()
	insts := []interfaces.Instruction{
		&ast.InstErrorGuard{Pos: pos(1), Name: "err"},
		&ast.InstCall{Pos: pos(2), Name: "missing"},
		&ast.InstGlobalDef{Pos: pos(3), Name: "skipped", Value: types.Null},
		&ast.InstEnd{Pos: pos(4)},
		&ast.InstReturn{Pos: pos(5), Value: &ast.ExprVar{Name: "err"}},
	}
	v, err := rt.Execute(insts, rt.TopScope().Descend(nil), false)
	if err != nil {
		t.Errorf("execute failed: %+v", err)
		return
	}
	if !v.Equals(types.NewStr(`Attempted to call undefined or restricted function "missing"`)) {
		t.Errorf("unexpected guard value: %s", v)
	}
	if _, exists := rt.Global("skipped"); exists {
		t.Errorf("guarded body continued after the error")
	}

	insts = []interfaces.Instruction{
		&ast.InstErrorGuard{Pos: pos(1), Name: "err"},
		&ast.InstEnd{Pos: pos(2)},
		&ast.InstReturn{Pos: pos(3), Value: &ast.ExprVar{Name: "err"}},
	}
	if v, _ := rt.Execute(insts, rt.TopScope().Descend(nil), false); !v.Equals(types.NewStr("ok")) {
		t.Errorf("expected ok, got: %s", v)
	}
}

func TestErrorLocation(t *testing.T) {
	rt, _ := newRuntime(t)
	defer rt.Close()
	insts := []interfaces.Instruction{
		&ast.InstFuncDef{Pos: pos(1), Name: "f"},
		&ast.InstUndef{Pos: pos(2), Name: "nope"},
		&ast.InstEnd{Pos: pos(3)},
		&ast.InstCall{Pos: pos(4), Name: "f"},
	}
	_, err := rt.Execute(insts, rt.TopScope(), false)
	e := interfaces.AsExecutionError(err)
	if e == nil {
		t.Errorf("expected an error")
		return
	}
	// the innermost location wins
	if e.Where() != "test.rtfl:2" {
		t.Errorf("unexpected location: %s", e.Where())
	}
}

func TestFunctionArgs(t *testing.T) {
	rt, _ := newRuntime(t)
	defer rt.Close()
	insts := []interfaces.Instruction{
		&ast.InstFuncDef{Pos: pos(1), Name: "second", Args: []string{"a", "b"}},
		&ast.InstLocalDef{Pos: pos(2), Name: "inner", Value: types.Null},
		&ast.InstReturn{Pos: pos(3), Value: &ast.ExprVar{Name: "b"}},
		&ast.InstEnd{Pos: pos(4)},
		&ast.InstReturn{Pos: pos(5), Value: &ast.ExprCall{Name: "second", Args: []interfaces.Operand{types.NewInt(1), types.NewStr("two"), types.NewInt(3)}}},
	}
	v, err := rt.Execute(insts, rt.TopScope(), false)
	if err != nil {
		t.Errorf("execute failed: %+v", err)
		return
	}
	if !v.Equals(types.NewStr("two")) {
		t.Errorf("unexpected result: %s", v)
	}
	// the arguments are gone, only the released inner is left to collect
	if n := rt.Collect(); n != 1 {
		t.Errorf("expected 1 collected, got: %d", n)
	}
	if n := rt.LocalCount(); n != 0 {
		t.Errorf("expected an empty table, got: %d", n)
	}

	fn, _ := rt.Function("second")
	scope := rt.TopScope().Descend(nil)
	if _, err := fn.Run([]types.Value{types.NewInt(1), types.NewInt(2)}, scope); err != nil {
		t.Errorf("call failed: %+v", err)
	}
	if _, err := scope.VarValue("arglen"); err == nil {
		t.Errorf("arglen was left behind")
	}
}

func TestArrayAndMapAssign(t *testing.T) {
	rt, _ := newRuntime(t)
	defer rt.Close()
	arr := types.NewArray(types.NewInt(0), types.NewInt(0))
	m := types.NewMap()
	rt.SetGlobal("arr", arr)
	rt.SetGlobal("m", m)
	insts := []interfaces.Instruction{
		&ast.InstArrayAssign{Pos: pos(1), Array: &ast.ExprVar{Name: "arr"}, Index: types.NewInt(1), Value: types.NewStr("x")},
		&ast.InstMapAssign{Pos: pos(2), Map: &ast.ExprVar{Name: "m"}, Field: "key", Value: types.NewBool(true)},
	}
	if _, err := rt.Execute(insts, rt.TopScope(), false); err != nil {
		t.Errorf("execute failed: %+v", err)
		return
	}
	if v, _ := arr.Get(1); !v.Equals(types.NewStr("x")) {
		t.Errorf("array was not changed: %s", arr)
	}
	if v, _ := m.Get("key"); !v.Equals(types.NewBool(true)) {
		t.Errorf("map was not changed: %s", m)
	}

	insts = []interfaces.Instruction{
		&ast.InstArrayAssign{Pos: pos(3), Array: &ast.ExprVar{Name: "arr"}, Index: types.NewInt(5), Value: types.Null},
	}
	_, err := rt.Execute(insts, rt.TopScope(), false)
	if err == nil || err.Error() != "Index 5 is out of bounds for array of length 2" {
		t.Errorf("unexpected error: %v", err)
	}
	insts = []interfaces.Instruction{
		&ast.InstMapAssign{Pos: pos(4), Map: &ast.ExprVar{Name: "arr"}, Field: "x", Value: types.Null},
	}
	_, err = rt.Execute(insts, rt.TopScope(), false)
	if err == nil || err.Error() != "Cannot get field from non-map" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestDescendAscend(t *testing.T) {
	rt, _ := newRuntime(t)
	defer rt.Close()
	insts := []interfaces.Instruction{
		&ast.InstAscend{}, // no parent, nothing happens
		&ast.InstDescend{},
		&ast.InstLocalDef{Pos: pos(1), Name: "x", Value: types.NewInt(1)},
		&ast.InstAscend{},
		&ast.InstReturn{Pos: pos(2), Value: &ast.ExprVar{Name: "x"}},
	}
	_, err := rt.Execute(insts, rt.TopScope(), false)
	if err == nil || err.Error() != `Attempted to retrieve value from undefined variable "x"` {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAsync(t *testing.T) {
	rt, stderr := newRuntime(t)
	defer rt.Close()
	top := rt.TopScope()
	insts := []interfaces.Instruction{
		&ast.InstLocalDef{Pos: pos(1), Name: "x", Value: types.NewInt(41)},
		&ast.InstAsync{Pos: pos(2)},
		&ast.InstGlobalDef{Pos: pos(3), Name: "seen", Value: &ast.ExprCall{Name: "add", Args: []interfaces.Operand{&ast.ExprVar{Name: "x"}, types.NewInt(1)}}},
		&ast.InstCall{Pos: pos(4), Name: "missing"},
		&ast.InstEnd{Pos: pos(5)},
	}
	if _, err := rt.Execute(insts, top, false); err != nil {
		t.Errorf("execute failed: %+v", err)
		return
	}
	rt.Wait()

	if v, _ := rt.Global("seen"); v == nil || !v.Equals(types.NewInt(42)) {
		t.Errorf("async task didn't run: %v", v)
	}
	want := "(async) test.rtfl:4 Attempted to call undefined or restricted function \"missing\"\n"
	if s := stderr.String(); s != want {
		t.Errorf("unexpected stderr: %q", s)
	}
	// both main and the task released x
	if n := rt.Collect(); n != 1 {
		t.Errorf("expected 1 collected, got: %d", n)
	}
}

func TestInitClose(t *testing.T) {
	for i := 0; i < 20; i++ {
		rt, _ := newRuntime(t)
		insts := []interfaces.Instruction{
			&ast.InstAsync{Pos: pos(1)},
			&ast.InstGlobalDef{Pos: pos(2), Name: "x", Value: types.NewInt(int32(i))},
			&ast.InstEnd{Pos: pos(3)},
		}
		if _, err := rt.Execute(insts, rt.TopScope(), false); err != nil {
			t.Errorf("execute failed: %+v", err)
		}
		if err := rt.Close(); err != nil {
			t.Errorf("close failed: %+v", err)
		}
		rt.Wait()
	}
}

func TestExecuteRelease(t *testing.T) {
	type test struct { // an individual test
		name  string
		insts []interfaces.Instruction

		// pre is a variable the scope already holds before the run
		pre       bool
		disownAll bool
		fails     bool
		swept     int
	}
	testCases := []test{}

	{
		testCases = append(testCases, test{
			name: "locals released on normal exit",
			insts: []interfaces.Instruction{
				&ast.InstLocalDef{Pos: pos(1), Name: "a", Value: types.NewInt(1)},
				&ast.InstIf{Pos: pos(2), Cond: types.NewInt(1)},
				&ast.InstLocalDef{Pos: pos(3), Name: "b", Value: types.NewInt(2)},
				&ast.InstEnd{Pos: pos(4)},
			},
			pre:   true,
			swept: 2,
		})
	}
	{
		testCases = append(testCases, test{
			name: "locals released when a nested clause fails",
			insts: []interfaces.Instruction{
				&ast.InstLocalDef{Pos: pos(1), Name: "a", Value: types.NewInt(1)},
				&ast.InstIf{Pos: pos(2), Cond: types.NewInt(1)},
				&ast.InstLocalDef{Pos: pos(3), Name: "b", Value: types.NewInt(2)},
				&ast.InstCall{Pos: pos(4), Name: "missing"},
				&ast.InstEnd{Pos: pos(5)},
			},
			pre:   true,
			fails: true,
			swept: 2,
		})
	}
	{
		testCases = append(testCases, test{
			name: "disown everything visible after a descend",
			insts: []interfaces.Instruction{
				&ast.InstDescend{},
				&ast.InstLocalDef{Pos: pos(1), Name: "b", Value: types.NewInt(2)},
			},
			pre:       true,
			disownAll: true,
			swept:     2, // pre is visible in the descended scope
		})
	}
	{
		testCases = append(testCases, test{
			name: "disown everything visible on a failure",
			insts: []interfaces.Instruction{
				&ast.InstDescend{},
				&ast.InstLocalDef{Pos: pos(1), Name: "b", Value: types.NewInt(2)},
				&ast.InstUndef{Pos: pos(2), Name: "nope"},
			},
			pre:       true,
			disownAll: true,
			fails:     true,
			swept:     2,
		})
	}

	names := []string{}
	for index, tc := range testCases { // run all the tests
		if tc.name == "" {
			t.Errorf("test #%d: not named", index)
			continue
		}
		if util.StrInList(tc.name, names) {
			t.Errorf("test #%d: duplicate sub test name of: %s", index, tc.name)
			continue
		}
		names = append(names, tc.name)

		t.Run(fmt.Sprintf("test #%d (%s)", index, tc.name), func(t *testing.T) {
			rt, _ := newRuntime(t)
			defer rt.Close()
			scope := rt.TopScope().Descend(nil)
			if tc.pre {
				scope.CreateLocalVar("pre", types.NewStr("kept"))
			}

			_, err := rt.Execute(tc.insts, scope, tc.disownAll)
			if tc.fails && err == nil {
				t.Errorf("test #%d: FAIL", index)
				t.Errorf("test #%d: expected an error", index)
				return
			}
			if !tc.fails && err != nil {
				t.Errorf("test #%d: FAIL", index)
				t.Errorf("test #%d: execute failed: %+v", index, err)
				return
			}
			if n := rt.Collect(); n != tc.swept {
				t.Errorf("test #%d: FAIL", index)
				t.Errorf("test #%d: expected %d collected, got: %d", index, tc.swept, n)
			}
		})
	}
}

func TestFunctionErrorRelease(t *testing.T) {
	rt, _ := newRuntime(t)
	defer rt.Close()
	rt.RegisterFunc("collect", func(args []types.Value, scope interfaces.Scope) (types.Value, error) {
		return types.NewInt(int32(scope.Runtime().GC().Collect())), nil
	})
	insts := []interfaces.Instruction{
		&ast.InstFuncDef{Pos: pos(1), Name: "f"},
		&ast.InstLocalDef{Pos: pos(2), Name: "a", Value: types.NewInt(1)},
		&ast.InstIf{Pos: pos(3), Cond: types.NewInt(1)},
		&ast.InstLocalDef{Pos: pos(4), Name: "b", Value: types.NewInt(2)},
		&ast.InstCall{Pos: pos(5), Name: "missing"},
		&ast.InstEnd{Pos: pos(6)},
		&ast.InstEnd{Pos: pos(7)},
		&ast.InstErrorGuard{Pos: pos(8), Name: "e"},
		&ast.InstCall{Pos: pos(9), Name: "f"},
		&ast.InstEnd{Pos: pos(10)},
		&ast.InstGlobalDef{Pos: pos(11), Name: "swept", Value: &ast.ExprCall{Name: "collect"}},
		&ast.InstReturn{Pos: pos(12), Value: &ast.ExprVar{Name: "e"}},
	}
	v, err := rt.Execute(insts, rt.TopScope().Descend(nil), false)
	if err != nil {
		t.Errorf("execute failed: %+v", err)
		return
	}
	if !v.Equals(types.NewStr(`Attempted to call undefined or restricted function "missing"`)) {
		t.Errorf("unexpected guard value: %s", v)
	}
	// a and b were released by the failing function, e is still held
	if v, _ := rt.Global("swept"); v == nil || !v.Equals(types.NewInt(2)) {
		t.Errorf("expected 2 swept inside, got: %v", v)
	}
	if n := rt.Collect(); n != 1 {
		t.Errorf("expected 1 collected, got: %d", n)
	}
}

func TestTerminal(t *testing.T) {
	term := newTerminal(strings.NewReader("one\r\ntwo"))
	if _, err := term.ReadLine(); err == nil || err.Error() != "Terminal is not open" {
		t.Errorf("unexpected error: %v", err)
	}
	term.Open()
	for _, want := range []string{"one", "two"} {
		line, err := term.ReadLine()
		if err != nil {
			t.Errorf("read failed: %+v", err)
			return
		}
		if line != want {
			t.Errorf("expected %s, got: %s", want, line)
		}
	}
	if _, err := term.ReadLine(); err == nil {
		t.Errorf("expected an error at the end of input")
	}
}
