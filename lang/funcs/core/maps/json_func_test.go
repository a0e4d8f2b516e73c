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

package coremaps

import (
	"testing"

	"github.com/rtfl-lang/rtfl/lang/types"
)

func TestFromJSON(t *testing.T) {
	v, err := FromJSON([]types.Value{types.NewStr(`{"n": 3, "big": 3000000000, "f": 0.25, "s": "x", "z": null, "l": [1, {"k": false}]}`)}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %+v", err)
	}
	m, ok := v.(*types.MapValue)
	if !ok {
		t.Fatalf("expected a map, got: %T", v)
	}
	expect := map[string]string{
		"n":   "3",
		"big": "3.0E9",
		"f":   "0.25",
		"s":   `"x"`,
		"z":   "null",
		"l":   "[1, {k=false}]",
	}
	for k, exp := range expect {
		x, exists := m.Get(k)
		if !exists {
			t.Errorf("key %s is missing", k)
			continue
		}
		if s := x.String(); s != exp {
			t.Errorf("key %s: expected %s, got %s", k, exp, s)
		}
	}
	if _, ok := mustGet(t, m, "n").(*types.IntValue); !ok {
		t.Errorf("small numbers should be ints")
	}
}

func mustGet(t *testing.T, m *types.MapValue, k string) types.Value {
	v, exists := m.Get(k)
	if !exists {
		t.Fatalf("key %s is missing", k)
	}
	return v
}

func TestFromJSONErrors(t *testing.T) {
	for _, s := range []string{"null", "[1, 2]", "{", "3"} {
		_, err := FromJSON([]types.Value{types.NewStr(s)}, nil)
		if err == nil {
			t.Errorf("expected an error for: %s", s)
		}
	}
}

func TestToJSON(t *testing.T) {
	m := types.NewMap()
	m.Set("b", types.NewDouble(1.5))
	m.Set("a", types.NewArray(types.NewInt(1), types.Null))

	v, err := ToJSON([]types.Value{m}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %+v", err)
	}
	if s := types.Text(v); s != `{"a":[1,null],"b":1.5}` {
		t.Errorf("unexpected json: %s", s)
	}

	v, err = ToJSON([]types.Value{m, types.NewBool(true)}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %+v", err)
	}
	exp := "{\n \"a\": [\n  1,\n  null\n ],\n \"b\": 1.5\n}"
	if s := types.Text(v); s != exp {
		t.Errorf("unexpected json: %q", s)
	}
}
