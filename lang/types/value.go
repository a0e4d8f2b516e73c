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

// Package types provides the value model of the language. Values are either
// simple immutable scalars or shared, mutable containers.
package types

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Kind is the tag of a Value.
type Kind int

// The list of kinds a Value can have.
const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindDouble
	KindString
	KindArray
	KindMap
	KindHandle
)

// String returns the upper case name of the kind. This is the same name that
// the language shows to users in type reports.
func (obj Kind) String() string {
	switch obj {
	case KindNull:
		return "NULL"
	case KindBool:
		return "BOOL"
	case KindInt:
		return "INT"
	case KindDouble:
		return "DOUBLE"
	case KindString:
		return "STRING"
	case KindArray:
		return "ARRAY"
	case KindMap:
		return "MAP"
	case KindHandle:
		return "HANDLE"
	}
	return fmt.Sprintf("Kind(%d)", int(obj))
}

// Value represents a concrete value of the language. The set of
// implementations is closed, and lives entirely in this package.
type Value interface {
	fmt.Stringer // String() string (literal form, strings are quoted)

	// Kind returns the tag of this value.
	Kind() Kind

	// Value returns the golang representation of the value.
	Value() interface{}

	// Equals compares this value with an already resolved value.
	Equals(Value) bool
}

// Null is the shared null value. It is immutable so one instance is enough.
var Null Value = &NullValue{}

// NullValue represents the absence of a value.
type NullValue struct{}

// String returns the literal form of this value.
func (obj *NullValue) String() string { return "null" }

// Kind returns KindNull.
func (obj *NullValue) Kind() Kind { return KindNull }

// Value returns nil.
func (obj *NullValue) Value() interface{} { return nil }

// Equals returns true only if the other value is also null.
func (obj *NullValue) Equals(v Value) bool {
	return v != nil && v.Kind() == KindNull
}

// BoolValue represents a boolean value. It coerces to 1 or 0 in numeric
// contexts.
type BoolValue struct {
	V bool
}

// NewBool creates a new boolean value.
func NewBool(b bool) *BoolValue { return &BoolValue{V: b} }

// String returns the literal form of this value.
func (obj *BoolValue) String() string { return strconv.FormatBool(obj.V) }

// Kind returns KindBool.
func (obj *BoolValue) Kind() Kind { return KindBool }

// Value returns the golang bool.
func (obj *BoolValue) Value() interface{} { return obj.V }

// Equals compares numerically, so true equals 1 and false equals 0.0.
func (obj *BoolValue) Equals(v Value) bool { return numericEquals(obj, v) }

// IntValue represents a 32 bit signed integer.
type IntValue struct {
	V int32
}

// NewInt creates a new integer value.
func NewInt(i int32) *IntValue { return &IntValue{V: i} }

// String returns the literal form of this value.
func (obj *IntValue) String() string { return strconv.FormatInt(int64(obj.V), 10) }

// Kind returns KindInt.
func (obj *IntValue) Kind() Kind { return KindInt }

// Value returns the golang int32.
func (obj *IntValue) Value() interface{} { return obj.V }

// Equals compares numerically against any numeric value.
func (obj *IntValue) Equals(v Value) bool { return numericEquals(obj, v) }

// DoubleValue represents a 64 bit floating point value.
type DoubleValue struct {
	V float64
}

// NewDouble creates a new double value.
func NewDouble(f float64) *DoubleValue { return &DoubleValue{V: f} }

// String returns the literal form of this value. There is always a decimal
// point, and large or small magnitudes use an exponent, eg: 1.0E10.
func (obj *DoubleValue) String() string { return FormatDouble(obj.V) }

// Kind returns KindDouble.
func (obj *DoubleValue) Kind() Kind { return KindDouble }

// Value returns the golang float64.
func (obj *DoubleValue) Value() interface{} { return obj.V }

// Equals compares numerically against any numeric value.
func (obj *DoubleValue) Equals(v Value) bool { return numericEquals(obj, v) }

// StrValue represents a string.
type StrValue struct {
	V string
}

// NewStr creates a new string value.
func NewStr(s string) *StrValue { return &StrValue{V: s} }

// String returns the quoted literal form of this value.
func (obj *StrValue) String() string { return `"` + obj.V + `"` }

// Kind returns KindString.
func (obj *StrValue) Kind() Kind { return KindString }

// Value returns the golang string.
func (obj *StrValue) Value() interface{} { return obj.V }

// Equals compares the exact text of two strings.
func (obj *StrValue) Equals(v Value) bool {
	x, ok := v.(*StrValue)
	return ok && x.V == obj.V
}

// ArrayValue is an ordered, mutable sequence of values. It is always passed by
// pointer, so every holder sees the changes made through any other holder.
type ArrayValue struct {
	mutex  sync.RWMutex
	values []Value
}

// NewArray returns a new array containing the given values.
func NewArray(values ...Value) *ArrayValue {
	obj := &ArrayValue{
		values: make([]Value, 0, len(values)),
	}
	obj.values = append(obj.values, values...)
	return obj
}

// String returns the literal form of this value, eg: [1, "a"].
func (obj *ArrayValue) String() string {
	values := obj.Values()
	s := []string{}
	for _, x := range values {
		s = append(s, x.String())
	}
	return "[" + strings.Join(s, ", ") + "]"
}

// Kind returns KindArray.
func (obj *ArrayValue) Kind() Kind { return KindArray }

// Value returns a snapshot of the contents.
func (obj *ArrayValue) Value() interface{} { return obj.Values() }

// Equals requires the same length, and walks the pairs in order. The walk
// stops at the first mismatch. Two empty arrays are equal.
func (obj *ArrayValue) Equals(v Value) bool {
	x, ok := v.(*ArrayValue)
	if !ok {
		return false
	}
	mine := obj.Values()
	theirs := x.Values()
	if len(mine) != len(theirs) {
		return false
	}
	eq := true
	for i := range mine {
		if eq = theirs[i].Equals(mine[i]); !eq {
			break
		}
	}
	return eq
}

// Len returns the number of elements.
func (obj *ArrayValue) Len() int {
	obj.mutex.RLock()
	defer obj.mutex.RUnlock()
	return len(obj.values)
}

// Get returns the element at index i, and false if the index is out of range.
func (obj *ArrayValue) Get(i int) (Value, bool) {
	obj.mutex.RLock()
	defer obj.mutex.RUnlock()
	if i < 0 || i >= len(obj.values) {
		return nil, false
	}
	return obj.values[i], true
}

// Set replaces the element at index i. It returns false if the index is out of
// range.
func (obj *ArrayValue) Set(i int, v Value) bool {
	obj.mutex.Lock()
	defer obj.mutex.Unlock()
	if i < 0 || i >= len(obj.values) {
		return false
	}
	obj.values[i] = v
	return true
}

// Append adds values to the end.
func (obj *ArrayValue) Append(values ...Value) {
	obj.mutex.Lock()
	defer obj.mutex.Unlock()
	obj.values = append(obj.values, values...)
}

// Remove deletes the element at index i and shifts the rest down. It returns
// false if the index is out of range.
func (obj *ArrayValue) Remove(i int) bool {
	obj.mutex.Lock()
	defer obj.mutex.Unlock()
	if i < 0 || i >= len(obj.values) {
		return false
	}
	obj.values = append(obj.values[:i], obj.values[i+1:]...)
	return true
}

// RemoveFunc deletes every element for which fn returns true.
func (obj *ArrayValue) RemoveFunc(fn func(Value) bool) {
	obj.mutex.Lock()
	defer obj.mutex.Unlock()
	values := obj.values[:0]
	for _, x := range obj.values {
		if !fn(x) {
			values = append(values, x)
		}
	}
	for i := len(values); i < len(obj.values); i++ {
		obj.values[i] = nil // let the gc have it
	}
	obj.values = values
}

// Values returns a copy of the element list.
func (obj *ArrayValue) Values() []Value {
	obj.mutex.RLock()
	defer obj.mutex.RUnlock()
	values := make([]Value, len(obj.values))
	copy(values, obj.values)
	return values
}

// MapValue is a mutable mapping from strings to values. Like ArrayValue it is
// always shared by pointer, and is safe for concurrent use.
type MapValue struct {
	mutex  sync.RWMutex
	values map[string]Value
}

// NewMap returns a new empty map.
func NewMap() *MapValue {
	return &MapValue{
		values: make(map[string]Value),
	}
}

// String returns the literal form of this value, eg: {a=1, b="x"}. Keys are
// sorted so that the output is stable.
func (obj *MapValue) String() string {
	s := []string{}
	for _, k := range obj.Keys() {
		v, exists := obj.Get(k)
		if !exists {
			continue // removed from under us
		}
		s = append(s, k+"="+v.String())
	}
	return "{" + strings.Join(s, ", ") + "}"
}

// Kind returns KindMap.
func (obj *MapValue) Kind() Kind { return KindMap }

// Value returns a snapshot of the contents.
func (obj *MapValue) Value() interface{} {
	obj.mutex.RLock()
	defer obj.mutex.RUnlock()
	m := make(map[string]Value, len(obj.values))
	for k, v := range obj.values {
		m[k] = v
	}
	return m
}

// Equals always returns false. A map is not even equal to itself.
func (obj *MapValue) Equals(v Value) bool { return false }

// Get returns the value stored under key.
func (obj *MapValue) Get(key string) (Value, bool) {
	obj.mutex.RLock()
	defer obj.mutex.RUnlock()
	v, exists := obj.values[key]
	return v, exists
}

// Set stores the value under key, replacing any previous value.
func (obj *MapValue) Set(key string, v Value) {
	obj.mutex.Lock()
	defer obj.mutex.Unlock()
	obj.values[key] = v
}

// Delete removes the key. Missing keys are ignored.
func (obj *MapValue) Delete(key string) {
	obj.mutex.Lock()
	defer obj.mutex.Unlock()
	delete(obj.values, key)
}

// Has returns true if the key is present.
func (obj *MapValue) Has(key string) bool {
	_, exists := obj.Get(key)
	return exists
}

// Len returns the number of keys.
func (obj *MapValue) Len() int {
	obj.mutex.RLock()
	defer obj.mutex.RUnlock()
	return len(obj.values)
}

// Keys returns the sorted list of keys.
func (obj *MapValue) Keys() []string {
	obj.mutex.RLock()
	keys := make([]string, 0, len(obj.values))
	for k := range obj.values {
		keys = append(keys, k)
	}
	obj.mutex.RUnlock()
	sort.Strings(keys)
	return keys
}

// HandleValue wraps an opaque host object. The language can store and pass it
// around, but only host functions can look inside.
type HandleValue struct {
	V interface{}
}

// NewHandle wraps a host object.
func NewHandle(v interface{}) *HandleValue { return &HandleValue{V: v} }

// String returns the host's own formatting of the wrapped object.
func (obj *HandleValue) String() string { return fmt.Sprintf("%v", obj.V) }

// Kind returns KindHandle.
func (obj *HandleValue) Kind() Kind { return KindHandle }

// Value returns the wrapped host object.
func (obj *HandleValue) Value() interface{} { return obj.V }

// Equals compares by host identity.
func (obj *HandleValue) Equals(v Value) bool {
	x, ok := v.(*HandleValue)
	if !ok {
		return false
	}
	return sameHandle(obj.V, x.V)
}

// sameHandle compares two host objects with == when that is safe to do.
func sameHandle(a, b interface{}) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) || !ta.Comparable() {
		return false
	}
	return a == b
}

func numericEquals(obj, v Value) bool {
	x, ok := Number(obj)
	if !ok {
		return false
	}
	y, ok := Number(v)
	if !ok {
		return false
	}
	return x == y
}

// Number coerces a value to a float64. Only bools, ints and doubles are
// numeric, and bools count as 1 or 0.
func Number(v Value) (float64, bool) {
	switch x := v.(type) {
	case *BoolValue:
		if x.V {
			return 1.0, true
		}
		return 0.0, true
	case *IntValue:
		return float64(x.V), true
	case *DoubleValue:
		return x.V, true
	}
	return 0, false
}

// IsNumber returns true if the value can be coerced with Number.
func IsNumber(v Value) bool {
	_, ok := Number(v)
	return ok
}

// Int coerces a numeric value to an int, truncating toward zero. Values out of
// the int32 range saturate, and NaN becomes zero.
func Int(v Value) (int, bool) {
	switch x := v.(type) {
	case *IntValue:
		return int(x.V), true
	case *BoolValue, *DoubleValue:
		f, _ := Number(v)
		return int(Int32(f)), true
	}
	return 0, false
}

// Int32 truncates a float64 into the int32 range.
func Int32(f float64) int32 {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt32:
		return math.MaxInt32
	case f <= math.MinInt32:
		return math.MinInt32
	}
	return int32(f)
}

// Truthy returns true if the value is numeric and greater than zero.
func Truthy(v Value) bool {
	f, ok := Number(v)
	return ok && f > 0
}

// Text returns the display form of a value. This is the literal form, except
// that top-level strings are not quoted.
func Text(v Value) string {
	if v == nil {
		return "null"
	}
	if x, ok := v.(*StrValue); ok {
		return x.V
	}
	return v.String()
}

// FormatDouble formats a float64 the way the language displays doubles.
// Magnitudes between 1e-3 and 1e7 print in plain notation with at least one
// decimal digit, everything else uses a mantissa and exponent.
func FormatDouble(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}

	if abs := math.Abs(f); abs == 0 || (abs >= 1e-3 && abs < 1e7) {
		s := strconv.FormatFloat(f, 'f', -1, 64)
		if !strings.Contains(s, ".") {
			s += ".0"
		}
		return s
	}

	s := strconv.FormatFloat(f, 'E', -1, 64) // eg: 1.5E+10
	mantissa, exponent, _ := strings.Cut(s, "E")
	if !strings.Contains(mantissa, ".") {
		mantissa += ".0"
	}
	exp, err := strconv.Atoi(exponent)
	if err != nil {
		return s // should not happen
	}
	return mantissa + "E" + strconv.Itoa(exp)
}
