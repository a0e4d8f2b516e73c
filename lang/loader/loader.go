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

// Package loader reads programs from files, whether they are source code or
// compiled.
package loader

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/rtfl-lang/rtfl/lang/bytecode"
	"github.com/rtfl-lang/rtfl/lang/interfaces"
	"github.com/rtfl-lang/rtfl/lang/parser"

	"github.com/spf13/afero"
)

const (
	// SourceExtension is the usual extension of source files.
	SourceExtension = ".rtfl"

	// CompiledExtension is the usual extension of compiled files.
	CompiledExtension = ".rtfc"
)

// Unit is a loaded program.
type Unit struct {
	// Name is the origin file name of the first instructions.
	Name string

	// Compiled is true if the file was compiled.
	Compiled bool

	// Header is set for compiled files.
	Header *bytecode.Header

	Instructions []interfaces.Instruction
}

// Loader reads programs through a filesystem.
type Loader struct {
	Fs afero.Fs
}

// LoadFile reads a file and returns its instructions. Compiled files are
// detected by their signature, and everything else is parsed as source code
// named after the file's base name.
func (obj *Loader) LoadFile(path string) ([]interfaces.Instruction, error) {
	unit, err := obj.Load(path)
	if err != nil {
		return nil, err
	}
	return unit.Instructions, nil
}

// Load is like LoadFile, but it returns the details of the file too.
func (obj *Loader) Load(path string) (*Unit, error) {
	fi, err := obj.Fs.Stat(path)
	if os.IsNotExist(err) {
		return nil, interfaces.NewExecutionError(interfaces.ErrHost, "Provided file does not exist")
	}
	if err != nil {
		return nil, interfaces.NewExecutionError(interfaces.ErrHost, "Failed to read file: %v", err)
	}
	if fi.IsDir() {
		return nil, interfaces.NewExecutionError(interfaces.ErrHost, "Provided path is not a file")
	}
	b, err := afero.ReadFile(obj.Fs, path)
	if err != nil {
		return nil, interfaces.NewExecutionError(interfaces.ErrHost, "Failed to read file: %v", err)
	}

	if bytecode.IsCompiled(b) {
		h, instructions, err := bytecode.Decode(bytes.NewReader(b))
		if err != nil {
			return nil, err
		}
		return &Unit{
			Name:         h.FileName,
			Compiled:     true,
			Header:       h,
			Instructions: instructions,
		}, nil
	}

	name := filepath.Base(path)
	instructions, err := parser.Parse(name, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	return &Unit{
		Name:         name,
		Instructions: instructions,
	}, nil
}

// LoadSource parses source code that isn't in a file.
func (obj *Loader) LoadSource(name, code string) ([]interfaces.Instruction, error) {
	return parser.ParseString(name, code)
}

// IsFile returns true if the path exists and isn't a directory.
func (obj *Loader) IsFile(path string) bool {
	fi, err := obj.Fs.Stat(path)
	return err == nil && !fi.IsDir()
}

// Library returns the path of a library for require. Paths which contain a
// dot or a slash are used as they are. Bare names are looked up in the
// library directory, compiled first.
func Library(fs afero.Fs, libDir, name string) string {
	if strings.ContainsAny(name, "./") {
		return name
	}
	compiled := filepath.Join(libDir, name+CompiledExtension)
	if fi, err := fs.Stat(compiled); err == nil && !fi.IsDir() {
		return compiled
	}
	return filepath.Join(libDir, name+SourceExtension)
}
