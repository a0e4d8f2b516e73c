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
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/rtfl-lang/rtfl/lang/ast"
	"github.com/rtfl-lang/rtfl/lang/interfaces"
	"github.com/rtfl-lang/rtfl/lang/types"
)

// Decode reads a whole compiled file. The instructions get the file name from
// the header as their origin, until a source swap record changes it.
func Decode(r io.Reader) (*Header, []interfaces.Instruction, error) {
	br := bufio.NewReader(r)
	h, err := ReadHeader(br)
	if err != nil {
		return nil, nil, err
	}
	if h.LanguageVersion > LanguageVersion {
		return h, nil, &VersionMismatch{
			Compiled: int(h.LanguageVersion),
			Running:  LanguageVersion,
		}
	}
	instructions, err := DecodeBody(br, h.FileName, h.LineNumbers)
	if err != nil {
		return h, nil, err
	}
	return h, instructions, nil
}

// ReadHeader reads the signature and the header.
func ReadHeader(r io.Reader) (*Header, error) {
	d := &decoder{r: bufio.NewReader(r), file: "unknown"}
	if br, ok := r.(*bufio.Reader); ok {
		d.r = br // don't lose buffered data of the caller
	}
	magic, err := d.readBytes(len(Magic))
	if err != nil || !bytes.Equal(magic, Magic) {
		return nil, ErrBadMagic
	}
	h := &Header{}
	if h.CompilerVersion, err = d.readByte(); err != nil {
		return nil, err
	}
	if h.LanguageVersion, err = d.readByte(); err != nil {
		return nil, err
	}
	if h.FileName, err = d.readName(); err != nil {
		return nil, err
	}
	flag, err := d.readByte()
	if err != nil {
		return nil, err
	}
	h.LineNumbers = flag > 0
	return h, nil
}

// DecodeBody reads instruction records until the end of the input. The source
// is the origin file of the first records.
func DecodeBody(r io.Reader, source string, lineNumbers bool) ([]interfaces.Instruction, error) {
	d := &decoder{r: bufio.NewReader(r), file: source, lineNumbers: lineNumbers}
	if br, ok := r.(*bufio.Reader); ok {
		d.r = br
	}
	instructions := []interfaces.Instruction{}
	for {
		if _, err := d.r.Peek(1); err == io.EOF {
			return instructions, nil
		}
		inst, err := d.record()
		if err != nil {
			return nil, err
		}
		if inst != nil {
			instructions = append(instructions, inst)
		}
	}
}

// decoder keeps track of where it is, for error messages and origins.
type decoder struct {
	r           *bufio.Reader
	offset      int64
	file        string
	line        int
	lineNumbers bool
}

func (obj *decoder) errorf(format string, v ...interface{}) error {
	return &DecodeError{
		File:   obj.file,
		Line:   obj.line,
		Offset: obj.offset,
		Msg:    fmt.Sprintf(format, v...),
	}
}

func (obj *decoder) pos() ast.Pos { return ast.At(obj.file, obj.line) }

func (obj *decoder) readByte() (byte, error) {
	b, err := obj.r.ReadByte()
	if err != nil {
		return 0, obj.errorf("Unexpected end of input")
	}
	obj.offset++
	return b, nil
}

func (obj *decoder) readBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(obj.r, b); err != nil {
		return nil, obj.errorf("Unexpected end of input")
	}
	obj.offset += int64(n)
	return b, nil
}

func (obj *decoder) readName() (string, error) {
	n, err := obj.readByte()
	if err != nil {
		return "", err
	}
	b, err := obj.readBytes(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (obj *decoder) readUint16() (uint16, error) {
	b, err := obj.readBytes(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

// record reads one record. Source swaps give no instruction.
func (obj *decoder) record() (interfaces.Instruction, error) {
	obj.line = 0
	if obj.lineNumbers {
		line, err := obj.readUint16()
		if err != nil {
			return nil, err
		}
		obj.line = int(line)
	}
	op, err := obj.readByte()
	if err != nil {
		return nil, err
	}

	switch op {
	case OpGlobalDef, OpLocalDef, OpAssign:
		name, value, err := obj.nameValue()
		if err != nil {
			return nil, err
		}
		switch op {
		case OpGlobalDef:
			return &ast.InstGlobalDef{Pos: obj.pos(), Name: name, Value: value}, nil
		case OpLocalDef:
			return &ast.InstLocalDef{Pos: obj.pos(), Name: name, Value: value}, nil
		}
		return &ast.InstAssign{Pos: obj.pos(), Name: name, Value: value}, nil

	case OpUndef:
		name, err := obj.readName()
		if err != nil {
			return nil, err
		}
		return &ast.InstUndef{Pos: obj.pos(), Name: name}, nil

	case OpCall:
		name, args, err := obj.call()
		if err != nil {
			return nil, err
		}
		return &ast.InstCall{Pos: obj.pos(), Name: name, Args: args}, nil

	case OpReturn:
		value, err := obj.value()
		if err != nil {
			return nil, err
		}
		return &ast.InstReturn{Pos: obj.pos(), Value: value}, nil

	case OpIf:
		cond, err := obj.condition("if")
		if err != nil {
			return nil, err
		}
		return &ast.InstIf{Pos: obj.pos(), Cond: cond}, nil

	case OpWhile:
		cond, err := obj.condition("while")
		if err != nil {
			return nil, err
		}
		return &ast.InstWhile{Pos: obj.pos(), Cond: cond}, nil

	case OpErrorGuard:
		name, err := obj.readName()
		if err != nil {
			return nil, err
		}
		return &ast.InstErrorGuard{Pos: obj.pos(), Name: name}, nil

	case OpEnd:
		return &ast.InstEnd{Pos: obj.pos()}, nil

	case OpFuncDef:
		name, err := obj.readName()
		if err != nil {
			return nil, err
		}
		count, err := obj.readByte()
		if err != nil {
			return nil, err
		}
		var args []string
		for i := 0; i < int(count); i++ {
			arg, err := obj.readName()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
		}
		return &ast.InstFuncDef{Pos: obj.pos(), Name: name, Args: args}, nil

	case OpFuncUndef:
		name, err := obj.readName()
		if err != nil {
			return nil, err
		}
		return &ast.InstFuncUndef{Pos: obj.pos(), Name: name}, nil

	case OpAsync:
		return &ast.InstAsync{Pos: obj.pos()}, nil

	case OpSwapSource:
		name, err := obj.readName()
		if err != nil {
			return nil, err
		}
		obj.file = name
		return nil, nil

	case OpDescend:
		return &ast.InstDescend{}, nil

	case OpAscend:
		return &ast.InstAscend{}, nil

	case OpArrayAssign:
		operands := []interfaces.Operand{}
		for i := 0; i < 3; i++ {
			v, err := obj.value()
			if err != nil {
				return nil, err
			}
			operands = append(operands, v)
		}
		return &ast.InstArrayAssign{Pos: obj.pos(), Array: operands[0], Index: operands[1], Value: operands[2]}, nil

	case OpMapAssign:
		m, err := obj.value()
		if err != nil {
			return nil, err
		}
		field, value, err := obj.nameValue()
		if err != nil {
			return nil, err
		}
		return &ast.InstMapAssign{Pos: obj.pos(), Map: m, Field: field, Value: value}, nil
	}
	return nil, obj.errorf("Encountered invalid opcode \"%d\", perhaps this was compiled for a newer version of Rtfl?", op)
}

func (obj *decoder) condition(keyword string) (interfaces.Operand, error) {
	cond, err := obj.value()
	if err != nil {
		return nil, err
	}
	if !isCondition(cond) {
		return nil, obj.errorf("Non-number/bool value provided for '%s' instruction", keyword)
	}
	return cond, nil
}

func (obj *decoder) nameValue() (string, interfaces.Operand, error) {
	name, err := obj.readName()
	if err != nil {
		return "", nil, err
	}
	value, err := obj.value()
	if err != nil {
		return "", nil, err
	}
	return name, value, nil
}

func (obj *decoder) call() (string, []interfaces.Operand, error) {
	name, err := obj.readName()
	if err != nil {
		return "", nil, err
	}
	count, err := obj.readByte()
	if err != nil {
		return "", nil, err
	}
	args := []interfaces.Operand{}
	for i := 0; i < int(count); i++ {
		v, err := obj.value()
		if err != nil {
			return "", nil, err
		}
		args = append(args, v)
	}
	return name, args, nil
}

// value reads a tagged operand.
func (obj *decoder) value() (interfaces.Operand, error) {
	tag, err := obj.readByte()
	if err != nil {
		return nil, err
	}
	switch tag {
	case ValNull:
		return types.Null, nil

	case ValBool:
		b, err := obj.readByte()
		if err != nil {
			return nil, err
		}
		return types.NewBool(b > 0), nil

	case ValInt:
		b, err := obj.readBytes(4)
		if err != nil {
			return nil, err
		}
		return types.NewInt(int32(binary.BigEndian.Uint32(b))), nil

	case ValDouble:
		b, err := obj.readBytes(8)
		if err != nil {
			return nil, err
		}
		return types.NewDouble(math.Float64frombits(binary.BigEndian.Uint64(b))), nil

	case ValShortStr:
		s, err := obj.readName()
		if err != nil {
			return nil, err
		}
		return types.NewStr(s), nil

	case ValLongStr:
		n, err := obj.readUint16()
		if err != nil {
			return nil, err
		}
		b, err := obj.readBytes(int(n))
		if err != nil {
			return nil, err
		}
		return types.NewStr(string(b)), nil

	case ValCall:
		name, args, err := obj.call()
		if err != nil {
			return nil, err
		}
		return &ast.ExprCall{Name: name, Args: args}, nil

	case ValVar:
		name, err := obj.readName()
		if err != nil {
			return nil, err
		}
		return &ast.ExprVar{Name: name}, nil

	case ValCmp:
		op, err := obj.readByte()
		if err != nil {
			return nil, err
		}
		if op > byte(ast.CmpLess) {
			return nil, obj.errorf("Encountered invalid comparison type \"%d\"", op)
		}
		invert, err := obj.readByte()
		if err != nil {
			return nil, err
		}
		left, err := obj.value()
		if err != nil {
			return nil, err
		}
		right, err := obj.value()
		if err != nil {
			return nil, err
		}
		return &ast.ExprCmp{Left: left, Op: ast.CmpOp(op), Right: right, Invert: invert > 0}, nil

	case ValNot:
		inner, err := obj.value()
		if err != nil {
			return nil, err
		}
		return &ast.ExprNot{Inner: inner}, nil

	case ValIndex:
		arr, err := obj.value()
		if err != nil {
			return nil, err
		}
		idx, err := obj.value()
		if err != nil {
			return nil, err
		}
		return &ast.ExprIndex{Array: arr, Index: idx}, nil

	case ValField:
		m, err := obj.value()
		if err != nil {
			return nil, err
		}
		field, err := obj.readName()
		if err != nil {
			return nil, err
		}
		return &ast.ExprField{Map: m, Field: field}, nil
	}
	return nil, obj.errorf("Encountered invalid value type \"%d\", perhaps this was compiled for a newer version of Rtfl?", tag)
}
