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

package coremaps

import (
	"bytes"
	"encoding/json"
	"math"

	"github.com/rtfl-lang/rtfl/lang/funcs"
	"github.com/rtfl-lang/rtfl/lang/interfaces"
	"github.com/rtfl-lang/rtfl/lang/types"
)

func init() {
	funcs.RegisterSimple("to_json", ToJSON)
	funcs.RegisterSimple("from_json", FromJSON)
}

// ToJSON encodes a map as a JSON object. If the second argument is true, the
// output is indented.
func ToJSON(args []types.Value, scope interfaces.Scope) (types.Value, error) {
	if err := funcs.Arity(args, 1); err != nil {
		return nil, err
	}
	m, err := funcs.MapArg(args, 0, errNotMap)
	if err != nil {
		return nil, err
	}
	pretty := false
	if len(args) > 1 {
		if b, ok := args[1].(*types.BoolValue); ok {
			pretty = b.V
		}
	}

	var b []byte
	if pretty {
		b, err = json.MarshalIndent(types.ToGolang(m), "", " ")
	} else {
		b, err = json.Marshal(types.ToGolang(m))
	}
	if err != nil {
		return nil, funcs.TypeError("Failed to convert to JSON: %v", err)
	}
	return types.NewStr(string(b)), nil
}

// FromJSON decodes a JSON object into a map. Integers that fit in 32 bits
// become ints, and other numbers become doubles.
func FromJSON(args []types.Value, scope interfaces.Scope) (types.Value, error) {
	if err := funcs.Arity(args, 1); err != nil {
		return nil, err
	}
	s, err := funcs.Str(args, 0, "Provided non-string argument")
	if err != nil {
		return nil, err
	}

	decoder := json.NewDecoder(bytes.NewReader([]byte(s)))
	decoder.UseNumber()
	var object map[string]interface{}
	if err := decoder.Decode(&object); err != nil {
		return nil, funcs.TypeError("Failed to parse JSON: %v", err)
	}
	if object == nil { // the text was null
		return nil, funcs.TypeError("Failed to parse JSON: not an object")
	}
	return fromJSON(object), nil
}

func fromJSON(x interface{}) types.Value {
	switch v := x.(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil && i >= math.MinInt32 && i <= math.MaxInt32 {
			return types.NewInt(int32(i))
		}
		f, _ := v.Float64()
		return types.NewDouble(f)
	case []interface{}:
		arr := types.NewArray()
		for _, elem := range v {
			arr.Append(fromJSON(elem)) // recurse
		}
		return arr
	case map[string]interface{}:
		m := types.NewMap()
		for k, elem := range v {
			m.Set(k, fromJSON(elem)) // recurse
		}
		return m
	}
	return types.ValueOf(x) // bool, string and null
}
