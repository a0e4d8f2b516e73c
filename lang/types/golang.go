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

package types

import (
	"math"
	"reflect"
)

// ValueOf takes a golang value, and produces the equivalent language value.
// Anything that has no natural equivalent is wrapped in a HandleValue, so this
// never fails. Integers that don't fit in 32 bits become doubles.
func ValueOf(i interface{}) Value {
	if i == nil {
		return Null
	}
	if v, ok := i.(Value); ok {
		return v
	}

	switch x := i.(type) { // fast path for the common cases
	case bool:
		return NewBool(x)
	case string:
		return NewStr(x)
	case int32:
		return NewInt(x)
	case float64:
		return NewDouble(x)
	case []interface{}:
		arr := NewArray()
		for _, elem := range x {
			arr.Append(ValueOf(elem)) // recurse
		}
		return arr
	case map[string]interface{}:
		m := NewMap()
		for k, elem := range x {
			m.Set(k, ValueOf(elem)) // recurse
		}
		return m
	}

	value := reflect.ValueOf(i)
	switch value.Kind() {
	case reflect.Int, reflect.Int64, reflect.Int16, reflect.Int8:
		n := value.Int()
		if n < math.MinInt32 || n > math.MaxInt32 {
			return NewDouble(float64(n))
		}
		return NewInt(int32(n))

	case reflect.Uint, reflect.Uint64, reflect.Uint32, reflect.Uint16, reflect.Uint8:
		n := value.Uint()
		if n > math.MaxInt32 {
			return NewDouble(float64(n))
		}
		return NewInt(int32(n))

	case reflect.Float32:
		return NewDouble(value.Float())

	case reflect.Slice, reflect.Array:
		if value.Kind() == reflect.Slice && value.IsNil() {
			return Null
		}
		arr := NewArray()
		for i := 0; i < value.Len(); i++ {
			arr.Append(ValueOf(value.Index(i).Interface())) // recurse
		}
		return arr

	case reflect.Map:
		if value.Type().Key().Kind() != reflect.String {
			break // not representable, use a handle
		}
		m := NewMap()
		iter := value.MapRange()
		for iter.Next() {
			m.Set(iter.Key().String(), ValueOf(iter.Value().Interface())) // recurse
		}
		return m
	}

	return NewHandle(i)
}

// ToGolang converts a language value into plain golang data. Arrays become
// []interface{} and maps become map[string]interface{}. Handles are unwrapped.
func ToGolang(v Value) interface{} {
	switch x := v.(type) {
	case nil, *NullValue:
		return nil
	case *BoolValue:
		return x.V
	case *IntValue:
		return int(x.V)
	case *DoubleValue:
		return x.V
	case *StrValue:
		return x.V
	case *ArrayValue:
		out := []interface{}{}
		for _, elem := range x.Values() {
			out = append(out, ToGolang(elem)) // recurse
		}
		return out
	case *MapValue:
		out := make(map[string]interface{})
		for _, k := range x.Keys() {
			if elem, exists := x.Get(k); exists {
				out[k] = ToGolang(elem) // recurse
			}
		}
		return out
	case *HandleValue:
		return x.V
	}
	return v.Value()
}
