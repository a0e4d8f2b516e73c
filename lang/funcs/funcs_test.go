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

package funcs_test

import (
	"errors"
	"testing"

	"github.com/rtfl-lang/rtfl/lang/funcs"
	_ "github.com/rtfl-lang/rtfl/lang/funcs/core" // import so the funcs register
	"github.com/rtfl-lang/rtfl/lang/interfaces"
	"github.com/rtfl-lang/rtfl/lang/types"
)

// TestStandardLibrary checks that every function of the standard library is
// registered.
func TestStandardLibrary(t *testing.T) {
	names := []string{
		"print", "println",
		"add", "sub", "mul", "div", "inc", "dec", "equals", "more_than", "less_than", "not", "and", "or", "to_number",
		"concat", "string_contains", "string_trim", "split", "index_of", "starts_with", "ends_with", "string_replace", "substring", "char_at", "string_length", "to_string", "type",
		"array", "array_add", "array_contains", "array_remove", "array_get", "array_set", "array_length",
		"map", "map_keys", "map_values", "map_contains_key", "map_put", "map_set", "map_get", "map_remove", "to_json", "from_json",
		"read_file", "write_file", "file_exists", "is_file", "is_directory", "delete_file", "list_files", "create_directory", "move_file", "exec",
		"sleep", "exit", "system_property", "gc", "gc_pause", "gc_resume", "open_terminal", "close_terminal", "terminal_open", "read_terminal",
		"read_http",
		"var", "eval", "async", "load", "load_async", "require", "restrict", "throw", "copy_func",
	}
	for _, name := range names {
		if _, err := funcs.Lookup(name); err != nil {
			t.Errorf("func %s is not registered", name)
		}
	}
	if len(funcs.Map()) != len(funcs.Names()) {
		t.Errorf("map and names disagree")
	}
	if _, err := funcs.Lookup("no_such_func"); err == nil {
		t.Errorf("expected a lookup error")
	}
}

func TestRegisterDuplicate(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("expected a panic")
		}
	}()
	funcs.RegisterSimple("println", func([]types.Value, interfaces.Scope) (types.Value, error) {
		return types.Null, nil
	})
}

func TestArgs(t *testing.T) {
	args := []types.Value{types.NewStr("s"), types.NewInt(3)}

	if err := funcs.Arity(args, 3); err == nil || err.Error() != "Must provide at least 3 arguments" {
		t.Errorf("unexpected error: %v", err)
	}
	if err := funcs.Arity(nil, 1); !errors.Is(err, interfaces.ErrArity) || err.Error() != "Must provide at least 1 argument" {
		t.Errorf("unexpected error: %v", err)
	}
	if s, err := funcs.Str(args, 0, "no"); err != nil || s != "s" {
		t.Errorf("unexpected result: %s, %v", s, err)
	}
	if _, err := funcs.Str(args, 1, "Provided non-string argument"); !errors.Is(err, interfaces.ErrType) || err.Error() != "Provided non-string argument" {
		t.Errorf("unexpected error: %v", err)
	}
}
