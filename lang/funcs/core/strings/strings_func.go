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

// Package corestrings contains the string functions. Indexes count unicode
// code points.
package corestrings

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/rtfl-lang/rtfl/lang/funcs"
	"github.com/rtfl-lang/rtfl/lang/interfaces"
	"github.com/rtfl-lang/rtfl/lang/types"
)

const errNotString = "Provided non-string argument"

func init() {
	funcs.RegisterSimple("concat", Concat)
	funcs.RegisterSimple("string_contains", binary(func(a, b string) types.Value { return types.NewBool(strings.Contains(a, b)) }))
	funcs.RegisterSimple("starts_with", binary(func(a, b string) types.Value { return types.NewBool(strings.HasPrefix(a, b)) }))
	funcs.RegisterSimple("ends_with", binary(func(a, b string) types.Value { return types.NewBool(strings.HasSuffix(a, b)) }))
	funcs.RegisterSimple("index_of", binary(IndexOf))
	funcs.RegisterSimple("string_trim", Trim)
	funcs.RegisterSimple("split", Split)
	funcs.RegisterSimple("string_replace", Replace)
	funcs.RegisterSimple("substring", Substring)
	funcs.RegisterSimple("char_at", CharAt)
	funcs.RegisterSimple("string_length", Length)
	funcs.RegisterSimple("to_string", ToString)
	funcs.RegisterSimple("type", Type)
}

// Concat joins the display form of every argument.
func Concat(args []types.Value, scope interfaces.Scope) (types.Value, error) {
	if err := funcs.Arity(args, 2); err != nil {
		return nil, err
	}
	b := &strings.Builder{}
	for _, x := range args {
		b.WriteString(types.Text(x))
	}
	return types.NewStr(b.String()), nil
}

func binary(fn func(a, b string) types.Value) funcs.Simple {
	return func(args []types.Value, scope interfaces.Scope) (types.Value, error) {
		if err := funcs.Arity(args, 2); err != nil {
			return nil, err
		}
		a, err := funcs.Str(args, 0, errNotString)
		if err != nil {
			return nil, err
		}
		b, err := funcs.Str(args, 1, errNotString)
		if err != nil {
			return nil, err
		}
		return fn(a, b), nil
	}
}

// IndexOf returns the position of the first occurrence of b in a, or -1.
func IndexOf(a, b string) types.Value {
	i := strings.Index(a, b)
	if i < 0 {
		return types.NewInt(-1)
	}
	return types.NewInt(int32(utf8.RuneCountInString(a[:i])))
}

// Trim removes leading and trailing control characters and spaces.
func Trim(args []types.Value, scope interfaces.Scope) (types.Value, error) {
	if err := funcs.Arity(args, 1); err != nil {
		return nil, err
	}
	s, err := funcs.Str(args, 0, errNotString)
	if err != nil {
		return nil, err
	}
	return types.NewStr(strings.TrimFunc(s, func(r rune) bool { return r <= ' ' })), nil
}

// Split cuts a string around each match of a regular expression. Trailing
// empty parts are dropped.
func Split(args []types.Value, scope interfaces.Scope) (types.Value, error) {
	if err := funcs.Arity(args, 2); err != nil {
		return nil, err
	}
	s, err := funcs.Str(args, 0, errNotString)
	if err != nil {
		return nil, err
	}
	sep, err := funcs.Str(args, 1, errNotString)
	if err != nil {
		return nil, err
	}
	re, err := regexp.Compile(sep)
	if err != nil {
		return nil, funcs.TypeError("Invalid split pattern \"%s\": %v", sep, err)
	}

	arr := types.NewArray()
	if s == "" {
		arr.Append(types.NewStr(""))
		return arr, nil
	}
	parts := re.Split(s, -1)
	for len(parts) > 0 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	for _, x := range parts {
		arr.Append(types.NewStr(x))
	}
	return arr, nil
}

// Replace replaces every occurrence of the second argument with the third.
func Replace(args []types.Value, scope interfaces.Scope) (types.Value, error) {
	if err := funcs.Arity(args, 3); err != nil {
		return nil, err
	}
	s := []string{}
	for i := 0; i < 3; i++ {
		x, err := funcs.Str(args, i, errNotString)
		if err != nil {
			return nil, err
		}
		s = append(s, x)
	}
	return types.NewStr(strings.ReplaceAll(s[0], s[1], s[2])), nil
}

// Substring returns the characters from the start index up to, but not
// including, the optional end index.
func Substring(args []types.Value, scope interfaces.Scope) (types.Value, error) {
	if err := funcs.Arity(args, 2); err != nil {
		return nil, err
	}
	s, err := funcs.Str(args, 0, errNotString)
	if err != nil {
		return nil, err
	}
	runes := []rune(s)
	start, err := funcs.Int(args, 1, "Starting index must be a number")
	if err != nil {
		return nil, err
	}
	end := len(runes)
	if len(args) > 2 && types.IsNumber(args[2]) {
		end, _ = types.Int(args[2])
	}
	if start < 0 || end > len(runes) || start > end {
		return nil, interfaces.NewExecutionError(interfaces.ErrIndex, "String range is out of bounds")
	}
	return types.NewStr(string(runes[start:end])), nil
}

// CharAt returns the character at an index as a string.
func CharAt(args []types.Value, scope interfaces.Scope) (types.Value, error) {
	if err := funcs.Arity(args, 2); err != nil {
		return nil, err
	}
	s, err := funcs.Str(args, 0, errNotString)
	if err != nil {
		return nil, err
	}
	i, err := funcs.Int(args, 1, "Character index must be a number")
	if err != nil {
		return nil, err
	}
	runes := []rune(s)
	if i < 0 || i >= len(runes) {
		return nil, interfaces.NewExecutionError(interfaces.ErrIndex, "Character index is out of bounds")
	}
	return types.NewStr(string(runes[i])), nil
}

// Length returns the number of characters in a string.
func Length(args []types.Value, scope interfaces.Scope) (types.Value, error) {
	if err := funcs.Arity(args, 1); err != nil {
		return nil, err
	}
	s, err := funcs.Str(args, 0, "Did not provide string to measure")
	if err != nil {
		return nil, err
	}
	return types.NewInt(int32(utf8.RuneCountInString(s))), nil
}

// ToString returns the display form of a value.
func ToString(args []types.Value, scope interfaces.Scope) (types.Value, error) {
	if err := funcs.Arity(args, 1); err != nil {
		return nil, err
	}
	return types.NewStr(types.Text(args[0])), nil
}

// Type returns the name of the kind of a value. Ints and doubles are both
// numbers.
func Type(args []types.Value, scope interfaces.Scope) (types.Value, error) {
	if err := funcs.Arity(args, 1); err != nil {
		return nil, err
	}
	switch args[0].Kind() {
	case types.KindBool:
		return types.NewStr("boolean"), nil
	case types.KindInt, types.KindDouble:
		return types.NewStr("number"), nil
	}
	return types.NewStr(strings.ToLower(args[0].Kind().String())), nil
}
