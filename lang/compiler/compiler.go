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

// Package compiler turns programs into their binary form, and can optionally
// compile or package the files that they load.
package compiler

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/rtfl-lang/rtfl/lang/ast"
	"github.com/rtfl-lang/rtfl/lang/bytecode"
	"github.com/rtfl-lang/rtfl/lang/interfaces"
	"github.com/rtfl-lang/rtfl/lang/loader"
	"github.com/rtfl-lang/rtfl/lang/types"
	"github.com/rtfl-lang/rtfl/util"
	"github.com/rtfl-lang/rtfl/util/errwrap"

	"github.com/spf13/afero"
)

const (
	// FuncLoad is the name of the function that runs a file in a child
	// scope.
	FuncLoad = "load"

	// FuncRequire is the name of the function that runs a library once.
	FuncRequire = "require"
)

// Options changes what the compiler does with the files a program loads. The
// package options win over the compile options when both are set.
type Options struct {
	// PreserveLineNumbers writes the source line of each instruction.
	PreserveLineNumbers bool

	// CompileLiteralLoads compiles files named by string literals in load
	// calls, and points the calls at the compiled files.
	CompileLiteralLoads bool

	// CompileLiteralRequires is like CompileLiteralLoads for require.
	CompileLiteralRequires bool

	// PackageLiteralLoads embeds files named by string literals in load
	// calls into the output.
	PackageLiteralLoads bool

	// PackageLiteralRequires embeds each library named by a string literal
	// in a require call into the output, once.
	PackageLiteralRequires bool
}

// Compiler compiles programs. A single compiler remembers which files it has
// already compiled or packaged, so it should be used for one run only.
type Compiler struct {
	Fs      afero.Fs
	Options *Options

	// LibDir is where bare library names are looked up.
	LibDir string

	Debug bool
	Logf  func(format string, v ...interface{})

	loader   *loader.Loader
	requires map[string]struct{}
	loads    map[string]struct{}
}

// Init prepares the compiler.
func (obj *Compiler) Init() error {
	if obj.Fs == nil {
		return fmt.Errorf("the Fs is missing")
	}
	if obj.Options == nil {
		obj.Options = &Options{}
	}
	if obj.LibDir == "" {
		obj.LibDir = "libs"
	}
	if obj.Logf == nil {
		obj.Logf = func(format string, v ...interface{}) {}
	}
	obj.loader = &loader.Loader{Fs: obj.Fs}
	obj.requires = make(map[string]struct{})
	obj.loads = make(map[string]struct{})
	return nil
}

// OutputPath returns the default output path for an input file. A trailing
// .rtfl is replaced by .rtfc, and .rtfc is appended otherwise.
func OutputPath(in string) string {
	return util.SwapExtension(in, loader.SourceExtension, loader.CompiledExtension)
}

// CompileFile compiles the input file into the output file, which is replaced
// if it exists.
func (obj *Compiler) CompileFile(in, out string) error {
	// read everything first, so that the output can't clobber the input
	unit, err := obj.loader.Load(in)
	if err != nil {
		return err
	}
	f, err := obj.Fs.Create(out)
	if err != nil {
		return errwrap.Wrapf(err, "could not create output file `%s`", out)
	}
	obj.Logf("Compiling %s...", in)
	if err := obj.compile(in, unit, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Compile compiles the input file and writes the result.
func (obj *Compiler) Compile(in string, w io.Writer) error {
	unit, err := obj.loader.Load(in)
	if err != nil {
		return err
	}
	obj.Logf("Compiling %s...", in)
	return obj.compile(in, unit, w)
}

func (obj *Compiler) compile(in string, unit *loader.Unit, w io.Writer) error {
	name := filepath.Base(in)
	enc := bytecode.NewEncoder(w, name, obj.Options.PreserveLineNumbers)
	if err := enc.WriteHeader(bytecode.NewHeader(name, obj.Options.PreserveLineNumbers)); err != nil {
		return err
	}
	return obj.emit(enc, unit.Instructions)
}

// emit writes the instructions, expanding the literal load and require calls
// that the options ask for.
func (obj *Compiler) emit(enc *bytecode.Encoder, instructions []interfaces.Instruction) error {
	for _, inst := range instructions {
		call, ok := inst.(*ast.InstCall)
		if !ok || (call.Name != FuncLoad && call.Name != FuncRequire) || len(call.Args) == 0 {
			if err := enc.Encode(inst); err != nil {
				return err
			}
			continue
		}
		arg, ok := call.Args[0].(*types.StrValue)
		if !ok || !obj.applies(call.Name) { // not a literal, or nothing to do
			if err := enc.Encode(inst); err != nil {
				return err
			}
			continue
		}

		var err error
		if call.Name == FuncLoad {
			err = obj.load(enc, call, arg.V)
		} else {
			err = obj.require(enc, call, arg.V)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (obj *Compiler) applies(name string) bool {
	if name == FuncLoad {
		return obj.Options.PackageLiteralLoads || obj.Options.CompileLiteralLoads
	}
	return obj.Options.PackageLiteralRequires || obj.Options.CompileLiteralRequires
}

func (obj *Compiler) load(enc *bytecode.Encoder, call *ast.InstCall, arg string) error {
	if !obj.loader.IsFile(arg) {
		return notAFile(call)
	}
	if obj.Options.PackageLiteralLoads {
		return obj.pack(enc, call, arg)
	}

	out, err := obj.compileOnce(obj.loads, arg)
	if err != nil {
		return err
	}
	return enc.Encode(&ast.InstCall{
		Pos:  call.Pos,
		Name: FuncLoad,
		Args: []interfaces.Operand{types.NewStr(out)},
	})
}

func (obj *Compiler) require(enc *bytecode.Encoder, call *ast.InstCall, arg string) error {
	path := loader.Library(obj.Fs, obj.LibDir, arg)
	if !obj.loader.IsFile(path) {
		return notAFile(call)
	}
	key := canonical(path)

	if obj.Options.PackageLiteralRequires {
		if _, exists := obj.requires[key]; exists {
			return nil
		}
		obj.requires[key] = struct{}{}
		return obj.pack(enc, call, path)
	}

	out, err := obj.compileOnce(obj.requires, path)
	if err != nil {
		return err
	}
	if !strings.ContainsAny(arg, "./") {
		out = arg // the compiled library is found first by name
	}
	return enc.Encode(&ast.InstCall{
		Pos:  call.Pos,
		Name: FuncRequire,
		Args: []interfaces.Operand{types.NewStr(out)},
	})
}

// pack embeds a file into the output, surrounded by a child scope.
func (obj *Compiler) pack(enc *bytecode.Encoder, call *ast.InstCall, path string) error {
	unit, err := obj.loader.Load(path)
	if err != nil {
		return errwrap.Wrapf(err, "could not package `%s`", path)
	}
	obj.Logf("Packaging %s...", path)

	outer := enc.Source()
	if err := enc.Encode(&ast.InstDescend{}); err != nil {
		return err
	}
	if unit.Compiled && unit.Name != enc.Source() {
		if err := enc.SwapSource(unit.Name); err != nil {
			return err
		}
	}
	if err := obj.emit(enc, unit.Instructions); err != nil {
		return err
	}
	if err := enc.SwapSource(outer); err != nil {
		return err
	}
	return enc.Encode(&ast.InstAscend{})
}

// compileOnce compiles a source file next to itself, unless this was done
// already during this run. Compiled files are used as they are. It returns
// the path of the compiled file.
func (obj *Compiler) compileOnce(done map[string]struct{}, path string) (string, error) {
	unit, err := obj.loader.Load(path)
	if err != nil {
		return "", errwrap.Wrapf(err, "could not compile `%s`", path)
	}
	if unit.Compiled {
		return path, nil
	}
	out := OutputPath(path)
	key := canonical(path)
	if _, exists := done[key]; exists {
		return out, nil
	}
	done[key] = struct{}{}

	f, err := obj.Fs.Create(out)
	if err != nil {
		return "", errwrap.Wrapf(err, "could not create output file `%s`", out)
	}
	obj.Logf("Compiling %s...", path)
	if err := obj.compile(path, unit, f); err != nil {
		f.Close()
		return "", err
	}
	return out, f.Close()
}

func notAFile(call *ast.InstCall) error {
	file, line := call.Origin()
	return interfaces.NewExecutionError(interfaces.ErrHost, "Path specified in %s at %s:%d is not a file", call.Name, file, line)
}

// canonical is the key used to remember files.
func canonical(path string) string {
	if p, err := filepath.Abs(path); err == nil {
		return p
	}
	return filepath.Clean(path)
}
