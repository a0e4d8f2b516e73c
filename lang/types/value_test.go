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

package types

import (
	"fmt"
	"testing"

	"github.com/kylelemons/godebug/pretty"
)

func TestEquals0(t *testing.T) {
	type test struct { // an individual test
		name   string
		a      Value
		b      Value
		expect bool
	}
	testCases := []test{}

	{
		testCases = append(testCases, test{
			name:   "null",
			a:      Null,
			b:      &NullValue{},
			expect: true,
		})
	}
	{
		testCases = append(testCases, test{
			name:   "bool true is one",
			a:      NewBool(true),
			b:      NewInt(1),
			expect: true,
		})
	}
	{
		testCases = append(testCases, test{
			name:   "int and double",
			a:      NewInt(3),
			b:      NewDouble(3.0),
			expect: true,
		})
	}
	{
		testCases = append(testCases, test{
			name:   "numbers differ",
			a:      NewDouble(3.5),
			b:      NewInt(3),
			expect: false,
		})
	}
	{
		testCases = append(testCases, test{
			name:   "string is not a number",
			a:      NewStr("1"),
			b:      NewInt(1),
			expect: false,
		})
	}
	{
		testCases = append(testCases, test{
			name:   "same text",
			a:      NewStr("hello"),
			b:      NewStr("hello"),
			expect: true,
		})
	}
	{
		testCases = append(testCases, test{
			name:   "null is not zero",
			a:      Null,
			b:      NewInt(0),
			expect: false,
		})
	}
	{
		testCases = append(testCases, test{
			name:   "arrays with equal elements",
			a:      NewArray(NewInt(1), NewStr("x")),
			b:      NewArray(NewDouble(1), NewStr("x")),
			expect: true,
		})
	}
	{
		testCases = append(testCases, test{
			name:   "arrays differ in the middle",
			a:      NewArray(NewInt(1), NewInt(2), NewInt(3)),
			b:      NewArray(NewInt(1), NewInt(9), NewInt(3)),
			expect: false,
		})
	}
	{
		testCases = append(testCases, test{
			name:   "arrays differ in length",
			a:      NewArray(NewInt(1)),
			b:      NewArray(NewInt(1), NewInt(1)),
			expect: false,
		})
	}
	{
		testCases = append(testCases, test{
			name:   "empty arrays",
			a:      NewArray(),
			b:      NewArray(),
			expect: true,
		})
	}
	{
		m := NewMap()
		testCases = append(testCases, test{
			name:   "map is never equal to itself",
			a:      m,
			b:      m,
			expect: false,
		})
	}
	{
		testCases = append(testCases, test{
			name:   "arrays holding maps",
			a:      NewArray(NewMap()),
			b:      NewArray(NewMap()),
			expect: false,
		})
	}
	{
		x := &struct{ n int }{n: 42}
		testCases = append(testCases, test{
			name:   "handle identity",
			a:      NewHandle(x),
			b:      NewHandle(x),
			expect: true,
		})
	}
	{
		testCases = append(testCases, test{
			name:   "different handles",
			a:      NewHandle(&struct{ n int }{n: 42}),
			b:      NewHandle(&struct{ n int }{n: 42}),
			expect: false,
		})
	}
	{
		testCases = append(testCases, test{
			name:   "uncomparable handles",
			a:      NewHandle([]int{1}),
			b:      NewHandle([]int{1}),
			expect: false,
		})
	}

	names := []string{}
	for index, tc := range testCases { // run all the tests
		if tc.name == "" {
			t.Errorf("test #%d: not named", index)
			continue
		}
		for _, n := range names {
			if n == tc.name {
				t.Errorf("test #%d: duplicate sub test name of: %s", index, tc.name)
			}
		}
		names = append(names, tc.name)

		t.Run(fmt.Sprintf("test #%d (%s)", index, tc.name), func(t *testing.T) {
			a, b, expect := tc.a, tc.b, tc.expect
			if got := a.Equals(b); got != expect {
				t.Errorf("test #%d: FAIL", index)
				t.Logf("test #%d:   a: %s", index, a)
				t.Logf("test #%d:   b: %s", index, b)
				t.Logf("test #%d: exp: %t, got: %t", index, expect, got)
			}
		})
	}
}

// TestEqualsSelf checks that every non-map value equals itself.
func TestEqualsSelf(t *testing.T) {
	values := []Value{
		Null,
		NewBool(false),
		NewBool(true),
		NewInt(-7),
		NewDouble(0.25),
		NewStr(""),
		NewStr("text"),
		NewArray(),
		NewArray(NewInt(1), NewArray(NewStr("nested"))),
		NewHandle(t),
	}
	for i, v := range values {
		if !v.Equals(v) {
			t.Errorf("value #%d (%s) does not equal itself", i, v)
		}
	}
	if m := NewMap(); m.Equals(m) {
		t.Errorf("map equals itself")
	}
}

func TestString0(t *testing.T) {
	m := NewMap()
	m.Set("b", NewStr("x"))
	m.Set("a", NewInt(1))

	values := []Value{
		Null,
		NewBool(true),
		NewInt(42),
		NewDouble(5),
		NewDouble(0.1),
		NewDouble(-2.5),
		NewDouble(1e10),
		NewDouble(0.0001),
		NewStr("hi"),
		NewArray(NewInt(1), NewStr("a"), NewDouble(2)),
		m,
	}
	expected := []string{
		"null",
		"true",
		"42",
		"5.0",
		"0.1",
		"-2.5",
		"1.0E10",
		"1.0E-4",
		`"hi"`,
		`[1, "a", 2.0]`,
		`{a=1, b="x"}`,
	}
	got := []string{}
	for _, v := range values {
		got = append(got, v.String())
	}
	if diff := pretty.Compare(expected, got); diff != "" {
		t.Errorf("string forms differ: (-expected +got)\n%s", diff)
	}

	if s := Text(NewStr("raw")); s != "raw" {
		t.Errorf("expected unquoted text, got: %s", s)
	}
	if s := Text(NewArray(NewStr("q"))); s != `["q"]` {
		t.Errorf("expected quoted elements, got: %s", s)
	}
}

func TestArrayMutation(t *testing.T) {
	arr := NewArray(NewInt(1), NewInt(2), NewInt(3))
	alias := Value(arr)

	if !arr.Set(1, NewStr("two")) {
		t.Errorf("set failed")
	}
	if v, _ := alias.(*ArrayValue).Get(1); v.String() != `"two"` {
		t.Errorf("alias did not observe the change, got: %s", v)
	}
	if arr.Set(3, Null) {
		t.Errorf("set out of range succeeded")
	}
	if !arr.Remove(0) || arr.Len() != 2 {
		t.Errorf("remove failed: %s", arr)
	}
	arr.RemoveFunc(func(v Value) bool { return v.Equals(NewInt(3)) })
	if s := arr.String(); s != `["two"]` {
		t.Errorf("unexpected contents: %s", s)
	}
}

func TestNumber0(t *testing.T) {
	if n, ok := Int(NewDouble(3.9)); !ok || n != 3 {
		t.Errorf("expected truncation to 3, got: %d", n)
	}
	if n, ok := Int(NewDouble(-3.9)); !ok || n != -3 {
		t.Errorf("expected truncation to -3, got: %d", n)
	}
	if _, ok := Int(NewStr("3")); ok {
		t.Errorf("string coerced to int")
	}
	if !Truthy(NewBool(true)) || Truthy(NewInt(0)) || Truthy(NewStr("1")) {
		t.Errorf("truthiness is wrong")
	}
}

func TestValueOf0(t *testing.T) {
	v := ValueOf(map[string]interface{}{
		"list": []interface{}{1, "two", 3.5, true, nil},
		"big":  int64(1) << 40,
	})
	expected := `{big=1.099511627776E12, list=[1, "two", 3.5, true, null]}`
	if s := v.String(); s != expected {
		t.Errorf("expected: %s, got: %s", expected, s)
	}

	back := ToGolang(v)
	exp := map[string]interface{}{
		"big":  float64(int64(1) << 40),
		"list": []interface{}{1, "two", 3.5, true, nil},
	}
	if diff := pretty.Compare(exp, back); diff != "" {
		t.Errorf("round trip differs: (-expected +got)\n%s", diff)
	}

	ch := make(chan int)
	if h, ok := ValueOf(ch).(*HandleValue); !ok || h.V != interface{}(ch) {
		t.Errorf("expected a handle")
	}
}
