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

package corestrings

import (
	"testing"

	"github.com/rtfl-lang/rtfl/lang/interfaces"
	"github.com/rtfl-lang/rtfl/lang/types"
)

func str(s string) types.Value { return types.NewStr(s) }
func num(i int32) types.Value  { return types.NewInt(i) }

func TestStringFuncs0(t *testing.T) {
	testCases := []struct {
		name string
		fn   func([]types.Value, interfaces.Scope) (types.Value, error)
		args []types.Value
		exp  string
	}{
		{"split drops trailing empties", Split, []types.Value{str("a,b,,"), str(",")}, `["a", "b"]`},
		{"split keeps inner empties", Split, []types.Value{str("a,,b"), str(",")}, `["a", "", "b"]`},
		{"split on a pattern", Split, []types.Value{str("a1b22c"), str("[0-9]+")}, `["a", "b", "c"]`},
		{"split empty", Split, []types.Value{str(""), str(",")}, `[""]`},
		{"substring", Substring, []types.Value{str("hello"), num(1), num(3)}, `"el"`},
		{"substring to the end", Substring, []types.Value{str("héllo"), num(1)}, `"éllo"`},
		{"char at", CharAt, []types.Value{str("héllo"), num(1)}, `"é"`},
		{"length counts runes", Length, []types.Value{str("héllo")}, "5"},
		{"trim", Trim, []types.Value{str("\t x y \n")}, `"x y"`},
		{"replace", Replace, []types.Value{str("a.b.c"), str("."), str("")}, `"abc"`},
		{"concat", Concat, []types.Value{str("a"), num(1), types.Null}, `"a1null"`},
		{"to string", ToString, []types.Value{types.NewDouble(2)}, `"2.0"`},
		{"type of int", Type, []types.Value{num(1)}, `"number"`},
		{"type of array", Type, []types.Value{types.NewArray()}, `"array"`},
	}
	for index, tc := range testCases {
		v, err := tc.fn(tc.args, nil)
		if err != nil {
			t.Errorf("test #%d (%s): unexpected error: %+v", index, tc.name, err)
			continue
		}
		if s := v.String(); s != tc.exp {
			t.Errorf("test #%d (%s): expected %s, got %s", index, tc.name, tc.exp, s)
		}
	}
}

func TestStringErrors(t *testing.T) {
	_, err := Substring([]types.Value{str("abc"), num(2), num(9)}, nil)
	if err == nil || err.Error() != "String range is out of bounds" {
		t.Errorf("unexpected error: %v", err)
	}
	_, err = CharAt([]types.Value{str("abc"), str("x")}, nil)
	if err == nil || err.Error() != "Character index must be a number" {
		t.Errorf("unexpected error: %v", err)
	}
	_, err = Concat([]types.Value{str("abc")}, nil)
	if err == nil || err.Error() != "Must provide at least 2 arguments" {
		t.Errorf("unexpected error: %v", err)
	}
}
