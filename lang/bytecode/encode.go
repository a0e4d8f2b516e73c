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

package bytecode

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/rtfl-lang/rtfl/lang/ast"
	"github.com/rtfl-lang/rtfl/lang/interfaces"
	"github.com/rtfl-lang/rtfl/lang/types"
	"github.com/rtfl-lang/rtfl/util/errwrap"
)

// Encoder writes instruction records. Each instruction is written with the
// line it came from if LineNumbers is set. When an instruction comes from a
// different file than the previous one, a source swap record is written
// first, so that decoded instructions keep their origin.
type Encoder struct {
	w           io.Writer
	lineNumbers bool
	source      string
}

// NewEncoder returns an encoder that writes to w. The source is the file name
// that the decoder will start with, which is the file name in the header.
func NewEncoder(w io.Writer, source string, lineNumbers bool) *Encoder {
	return &Encoder{
		w:           w,
		lineNumbers: lineNumbers,
		source:      source,
	}
}

// LineNumbers returns true if records carry line numbers.
func (obj *Encoder) LineNumbers() bool { return obj.lineNumbers }

// Source returns the file name that the decoder will currently assume.
func (obj *Encoder) Source() string { return obj.source }

// WriteHeader writes the signature and the header. The header decides if line
// numbers are written.
func (obj *Encoder) WriteHeader(h *Header) error {
	buf := append([]byte{}, Magic...)
	buf = append(buf, h.CompilerVersion, h.LanguageVersion)
	buf, err := appendName(buf, h.FileName)
	if err != nil {
		return err
	}
	buf = append(buf, boolByte(h.LineNumbers))
	obj.lineNumbers = h.LineNumbers
	obj.source = h.FileName
	_, err = obj.w.Write(buf)
	return err
}

// SwapSource writes a record that changes the origin file of the records
// after it.
func (obj *Encoder) SwapSource(name string) error {
	buf := obj.prefix(0)
	buf = append(buf, OpSwapSource)
	buf, err := appendName(buf, name)
	if err != nil {
		return err
	}
	if _, err := obj.w.Write(buf); err != nil {
		return err
	}
	obj.source = name
	return nil
}

// EncodeAll writes every instruction in order.
func (obj *Encoder) EncodeAll(instructions []interfaces.Instruction) error {
	for _, inst := range instructions {
		if err := obj.Encode(inst); err != nil {
			return err
		}
	}
	return nil
}

// Encode writes one instruction record.
func (obj *Encoder) Encode(inst interfaces.Instruction) error {
	file, line := inst.Origin()
	if file != "" && file != obj.source {
		if err := obj.SwapSource(file); err != nil {
			return err
		}
	}
	buf, err := obj.record(inst, obj.prefix(line))
	if err != nil {
		return errwrap.Wrapf(err, "could not encode `%s` at %s:%d", inst, file, line)
	}
	_, err = obj.w.Write(buf)
	return err
}

// prefix starts a record, with the line number if those are enabled.
func (obj *Encoder) prefix(line int) []byte {
	if !obj.lineNumbers {
		return []byte{}
	}
	if line < 0 || line > math.MaxUint16 {
		line = 0 // doesn't fit, so it's unknown
	}
	return binary.BigEndian.AppendUint16(nil, uint16(line))
}

func (obj *Encoder) record(inst interfaces.Instruction, buf []byte) ([]byte, error) {
	var err error
	switch x := inst.(type) {
	case *ast.InstGlobalDef:
		return appendNameValue(append(buf, OpGlobalDef), x.Name, x.Value)

	case *ast.InstLocalDef:
		return appendNameValue(append(buf, OpLocalDef), x.Name, x.Value)

	case *ast.InstAssign:
		return appendNameValue(append(buf, OpAssign), x.Name, x.Value)

	case *ast.InstUndef:
		return appendName(append(buf, OpUndef), x.Name)

	case *ast.InstCall:
		return appendCall(append(buf, OpCall), x.Name, x.Args)

	case *ast.InstReturn:
		return appendValue(append(buf, OpReturn), x.Value)

	case *ast.InstIf:
		if !isCondition(x.Cond) {
			return nil, fmt.Errorf("Non-number/bool value provided for 'if' instruction")
		}
		return appendValue(append(buf, OpIf), x.Cond)

	case *ast.InstWhile:
		if !isCondition(x.Cond) {
			return nil, fmt.Errorf("Non-number/bool value provided for 'while' instruction")
		}
		return appendValue(append(buf, OpWhile), x.Cond)

	case *ast.InstErrorGuard:
		return appendName(append(buf, OpErrorGuard), x.Name)

	case *ast.InstEnd:
		return append(buf, OpEnd), nil

	case *ast.InstFuncDef:
		if buf, err = appendName(append(buf, OpFuncDef), x.Name); err != nil {
			return nil, err
		}
		if len(x.Args) > math.MaxUint8 {
			return nil, fmt.Errorf("too many argument names: %d", len(x.Args))
		}
		buf = append(buf, byte(len(x.Args)))
		for _, name := range x.Args {
			if buf, err = appendName(buf, name); err != nil {
				return nil, err
			}
		}
		return buf, nil

	case *ast.InstFuncUndef:
		return appendName(append(buf, OpFuncUndef), x.Name)

	case *ast.InstAsync:
		return append(buf, OpAsync), nil

	case *ast.InstDescend:
		return append(buf, OpDescend), nil

	case *ast.InstAscend:
		return append(buf, OpAscend), nil

	case *ast.InstArrayAssign:
		buf = append(buf, OpArrayAssign)
		for _, operand := range []interfaces.Operand{x.Array, x.Index, x.Value} {
			if buf, err = appendValue(buf, operand); err != nil {
				return nil, err
			}
		}
		return buf, nil

	case *ast.InstMapAssign:
		if buf, err = appendValue(append(buf, OpMapAssign), x.Map); err != nil {
			return nil, err
		}
		return appendNameValue(buf, x.Field, x.Value)
	}
	return nil, fmt.Errorf("unknown instruction type: %T", inst)
}

// appendValue encodes an operand with its type tag.
func appendValue(buf []byte, operand interfaces.Operand) ([]byte, error) {
	var err error
	switch x := operand.(type) {
	case nil, *types.NullValue:
		return append(buf, ValNull), nil

	case *types.BoolValue:
		return append(buf, ValBool, boolByte(x.V)), nil

	case *types.IntValue:
		return binary.BigEndian.AppendUint32(append(buf, ValInt), uint32(x.V)), nil

	case *types.DoubleValue:
		return binary.BigEndian.AppendUint64(append(buf, ValDouble), math.Float64bits(x.V)), nil

	case *types.StrValue:
		b := []byte(x.V)
		if len(b) <= maxShort {
			buf = append(buf, ValShortStr, byte(len(b)))
			return append(buf, b...), nil
		}
		if len(b) > math.MaxUint16 {
			return nil, fmt.Errorf("string of %d bytes is too long", len(b))
		}
		buf = binary.BigEndian.AppendUint16(append(buf, ValLongStr), uint16(len(b)))
		return append(buf, b...), nil

	case *ast.ExprCall:
		return appendCall(append(buf, ValCall), x.Name, x.Args)

	case *ast.ExprVar:
		return appendName(append(buf, ValVar), x.Name)

	case *ast.ExprCmp:
		buf = append(buf, ValCmp, byte(x.Op), boolByte(x.Invert))
		if buf, err = appendValue(buf, x.Left); err != nil {
			return nil, err
		}
		return appendValue(buf, x.Right)

	case *ast.ExprNot:
		return appendValue(append(buf, ValNot), x.Inner)

	case *ast.ExprIndex:
		if buf, err = appendValue(append(buf, ValIndex), x.Array); err != nil {
			return nil, err
		}
		return appendValue(buf, x.Index)

	case *ast.ExprField:
		if buf, err = appendValue(append(buf, ValField), x.Map); err != nil {
			return nil, err
		}
		return appendName(buf, x.Field)
	}
	return nil, fmt.Errorf("cannot encode value of type %T", operand)
}

func appendCall(buf []byte, name string, args []interfaces.Operand) ([]byte, error) {
	buf, err := appendName(buf, name)
	if err != nil {
		return nil, err
	}
	if len(args) > math.MaxUint8 {
		return nil, fmt.Errorf("too many arguments: %d", len(args))
	}
	buf = append(buf, byte(len(args)))
	for _, arg := range args {
		if buf, err = appendValue(buf, arg); err != nil {
			return nil, err
		}
	}
	return buf, nil
}

func appendNameValue(buf []byte, name string, operand interfaces.Operand) ([]byte, error) {
	buf, err := appendName(buf, name)
	if err != nil {
		return nil, err
	}
	return appendValue(buf, operand)
}

// appendName writes a name with a single length byte.
func appendName(buf []byte, name string) ([]byte, error) {
	b := []byte(name)
	if len(b) > maxShort {
		return nil, errwrap.Wrapf(ErrNameTooLong, "name of %d bytes", len(b))
	}
	buf = append(buf, byte(len(b)))
	return append(buf, b...), nil
}

// isCondition returns true for operands that an if or a while accepts.
func isCondition(operand interfaces.Operand) bool {
	switch x := operand.(type) {
	case interfaces.Expr:
		return true
	case types.Value:
		return types.IsNumber(x)
	}
	return false
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
