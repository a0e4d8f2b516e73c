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

// Package bytecode implements the compiled program format. A compiled file is
// a small header followed by a flat list of instruction records. The layout is
// fixed and shared with other implementations, so every byte matters.
package bytecode

import (
	"bytes"
	"fmt"

	"github.com/rtfl-lang/rtfl/util"
)

const (
	// CompilerVersion is written into the header of new files.
	CompilerVersion = 0

	// LanguageVersion is the newest language version this package reads,
	// and the one written into new files.
	LanguageVersion = 4

	// ErrBadMagic is returned when the input doesn't start with Magic.
	ErrBadMagic = util.Error("not a compiled script")

	// ErrNameTooLong is returned when a name doesn't fit in a single length
	// byte.
	ErrNameTooLong = util.Error("name is too long")
)

// Magic is the signature at the start of every compiled file.
var Magic = []byte{0x01, 0x03, 0x03, 0x07}

// Opcodes of the instruction records.
const (
	OpGlobalDef   byte = 0
	OpLocalDef    byte = 1
	OpAssign      byte = 2
	OpUndef       byte = 3
	OpCall        byte = 4
	OpReturn      byte = 5
	OpIf          byte = 6
	OpWhile       byte = 7
	OpErrorGuard  byte = 8
	OpEnd         byte = 9
	OpFuncDef     byte = 10
	OpFuncUndef   byte = 11
	OpAsync       byte = 12
	OpSwapSource  byte = 13
	OpDescend     byte = 14
	OpAscend      byte = 15
	OpArrayAssign byte = 16
	OpMapAssign   byte = 17
)

// Value type tags of the operands.
const (
	ValNull       byte = 0
	ValBool       byte = 1
	ValInt        byte = 2
	ValDouble     byte = 3
	ValShortStr   byte = 4
	ValLongStr    byte = 5
	ValCall       byte = 6
	ValVar        byte = 7
	ValCmp        byte = 8
	ValNot        byte = 9
	ValIndex      byte = 10
	ValField      byte = 11
)

// maxShort is the longest name, or short string, in bytes.
const maxShort = 255

// Header is the metadata at the start of a compiled file.
type Header struct {
	CompilerVersion uint8
	LanguageVersion uint8

	// FileName is the name of the source file this was compiled from. It
	// is the origin of the decoded instructions.
	FileName string

	// LineNumbers is true if each record carries its source line.
	LineNumbers bool
}

// NewHeader returns the header for a new file compiled by this package.
func NewHeader(fileName string, lineNumbers bool) *Header {
	return &Header{
		CompilerVersion: CompilerVersion,
		LanguageVersion: LanguageVersion,
		FileName:        fileName,
		LineNumbers:     lineNumbers,
	}
}

// DecodeError is returned for input that can't be decoded.
type DecodeError struct {
	File   string
	Line   int
	Offset int64
	Msg    string
}

// Error returns the location and the message.
func (obj *DecodeError) Error() string {
	return fmt.Sprintf("%s:%d %s", obj.File, obj.Line, obj.Msg)
}

// VersionMismatch is returned for files compiled for a newer language.
type VersionMismatch struct {
	Compiled int
	Running  int
}

// Error returns the message.
func (obj *VersionMismatch) Error() string {
	return fmt.Sprintf("Binary was compiled for a newer version of Rtfl (compiled for %d, running %d)", obj.Compiled, obj.Running)
}

// IsCompiled returns true if the data starts with the signature of a compiled
// file.
func IsCompiled(b []byte) bool {
	return len(b) >= len(Magic) && bytes.Equal(b[:len(Magic)], Magic)
}

