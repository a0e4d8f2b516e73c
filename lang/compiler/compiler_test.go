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

package compiler

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/rtfl-lang/rtfl/lang/ast"
	"github.com/rtfl-lang/rtfl/lang/bytecode"
	"github.com/rtfl-lang/rtfl/lang/interfaces"
	"github.com/rtfl-lang/rtfl/lang/types"

	"github.com/spf13/afero"
)

func newCompiler(t *testing.T, fs afero.Fs, options *Options) *Compiler {
	c := &Compiler{
		Fs:      fs,
		Options: options,
		Logf: func(format string, v ...interface{}) {
			t.Logf("compiler: "+format, v...)
		},
	}
	if err := c.Init(); err != nil {
		t.Fatalf("init failed: %+v", err)
	}
	return c
}

func writeFiles(t *testing.T, fs afero.Fs, files map[string]string) {
	for name, code := range files {
		if err := afero.WriteFile(fs, name, []byte(code), 0644); err != nil {
			t.Fatalf("could not write %s: %+v", name, err)
		}
	}
}

func decode(t *testing.T, b []byte) (*bytecode.Header, []interfaces.Instruction) {
	h, instructions, err := bytecode.Decode(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("decode failed: %+v", err)
	}
	return h, instructions
}

// describe flattens instructions into comparable strings with their origins.
func describe(instructions []interfaces.Instruction) []string {
	out := []string{}
	for _, inst := range instructions {
		file, line := inst.Origin()
		out = append(out, fmt.Sprintf("%s:%d %s", file, line, inst))
	}
	return out
}

func expect(t *testing.T, got, exp []string) {
	if len(got) != len(exp) {
		t.Errorf("expected %d instructions, got %d", len(exp), len(got))
	}
	for i := 0; i < len(got) && i < len(exp); i++ {
		if got[i] != exp[i] {
			t.Errorf("instruction %d: expected `%s`, got `%s`", i, exp[i], got[i])
		}
	}
}

func TestOutputPath(t *testing.T) {
	tests := map[string]string{
		"main.rtfl":       "main.rtfc",
		"dir/x.rtfl":      "dir/x.rtfc",
		"script":          "script.rtfc",
		"script.txt":      "script.txt.rtfc",
		"main.rtfl.bak":   "main.rtfl.bak.rtfc",
		"/abs/other.rtfl": "/abs/other.rtfc",
	}
	for in, exp := range tests {
		if out := OutputPath(in); out != exp {
			t.Errorf("output path of %s: expected %s, got %s", in, exp, out)
		}
	}
}

func TestCompile(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, map[string]string{
		"src/main.rtfl": "def x = 1\nif x {\n\tprint(x)\n}\n",
	})
	c := newCompiler(t, fs, &Options{PreserveLineNumbers: true})
	if err := c.CompileFile("src/main.rtfl", OutputPath("src/main.rtfl")); err != nil {
		t.Fatalf("compile failed: %+v", err)
	}
	b, err := afero.ReadFile(fs, "src/main.rtfc")
	if err != nil {
		t.Fatalf("no output: %+v", err)
	}
	h, instructions := decode(t, b)
	if h.FileName != "main.rtfl" || !h.LineNumbers {
		t.Errorf("unexpected header: %+v", h)
	}
	expect(t, describe(instructions), []string{
		"main.rtfl:1 def x = 1",
		"main.rtfl:2 if x {",
		"main.rtfl:3 print(x)",
		"main.rtfl:4 }",
	})
}

func TestCompileWithoutLineNumbers(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, map[string]string{
		"main.rtfl": "def x = 1\n\nx = 2\n",
	})
	c := newCompiler(t, fs, nil)
	buf := &bytes.Buffer{}
	if err := c.Compile("main.rtfl", buf); err != nil {
		t.Fatalf("compile failed: %+v", err)
	}
	_, instructions := decode(t, buf.Bytes())
	expect(t, describe(instructions), []string{
		"main.rtfl:0 def x = 1",
		"main.rtfl:0 x = 2",
	})
}

func TestPackageLiteralLoads(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, map[string]string{
		"main.rtfl":  "load(\"other.rtfl\")\ndef x = 1\nload(\"other.rtfl\")\n",
		"other.rtfl": "def y = 2\n",
	})
	c := newCompiler(t, fs, &Options{PreserveLineNumbers: true, PackageLiteralLoads: true})
	buf := &bytes.Buffer{}
	if err := c.Compile("main.rtfl", buf); err != nil {
		t.Fatalf("compile failed: %+v", err)
	}
	_, instructions := decode(t, buf.Bytes())
	// loads are packaged every time they appear
	expect(t, describe(instructions), []string{
		":0 <descend>",
		"other.rtfl:1 def y = 2",
		":0 <ascend>",
		"main.rtfl:2 def x = 1",
		":0 <descend>",
		"other.rtfl:1 def y = 2",
		":0 <ascend>",
	})
}

func TestPackageLiteralRequires(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, map[string]string{
		"main.rtfl":     "require(\"util\")\nrequire(\"util\")\nprint(\"done\")\n",
		"libs/util.rtfl": "func hello() {\n\tprint(\"hello\")\n}\n",
	})
	c := newCompiler(t, fs, &Options{PreserveLineNumbers: true, PackageLiteralRequires: true})
	buf := &bytes.Buffer{}
	if err := c.Compile("main.rtfl", buf); err != nil {
		t.Fatalf("compile failed: %+v", err)
	}
	_, instructions := decode(t, buf.Bytes())
	expect(t, describe(instructions), []string{
		":0 <descend>",
		"util.rtfl:1 func hello() {",
		"util.rtfl:2 print(\"hello\")",
		"util.rtfl:3 }",
		":0 <ascend>",
		"main.rtfl:3 print(\"done\")",
	})
}

func TestCompileLiteralLoads(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, map[string]string{
		"main.rtfl":  "load(\"other.rtfl\")\nload(\"other.rtfl\")\n",
		"other.rtfl": "def y = 2\n",
	})
	c := newCompiler(t, fs, &Options{CompileLiteralLoads: true})
	buf := &bytes.Buffer{}
	if err := c.Compile("main.rtfl", buf); err != nil {
		t.Fatalf("compile failed: %+v", err)
	}
	_, instructions := decode(t, buf.Bytes())
	expect(t, describe(instructions), []string{
		"main.rtfl:0 load(\"other.rtfc\")",
		"main.rtfl:0 load(\"other.rtfc\")",
	})
	if len(c.loads) != 1 {
		t.Errorf("expected the file to be compiled once, got: %d", len(c.loads))
	}

	b, err := afero.ReadFile(fs, "other.rtfc")
	if err != nil {
		t.Fatalf("the loaded file was not compiled: %+v", err)
	}
	h, nested := decode(t, b)
	if h.FileName != "other.rtfl" {
		t.Errorf("unexpected header name: %s", h.FileName)
	}
	expect(t, describe(nested), []string{
		"other.rtfl:0 def y = 2",
	})
}

func TestCompileLiteralRequires(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, map[string]string{
		"main.rtfl":      "require(\"util\")\nrequire(\"lib/extra.rtfl\")\n",
		"libs/util.rtfl": "def u = 1\n",
		"lib/extra.rtfl": "def e = 1\n",
	})
	c := newCompiler(t, fs, &Options{CompileLiteralRequires: true})
	buf := &bytes.Buffer{}
	if err := c.Compile("main.rtfl", buf); err != nil {
		t.Fatalf("compile failed: %+v", err)
	}
	_, instructions := decode(t, buf.Bytes())
	expect(t, describe(instructions), []string{
		"main.rtfl:0 require(\"util\")",
		"main.rtfl:0 require(\"lib/extra.rtfc\")",
	})
	for _, p := range []string{"libs/util.rtfc", "lib/extra.rtfc"} {
		b, err := afero.ReadFile(fs, p)
		if err != nil {
			t.Errorf("missing compiled library %s: %+v", p, err)
			continue
		}
		if !bytecode.IsCompiled(b) {
			t.Errorf("library %s is not compiled", p)
		}
	}
}

func TestCompiledLibraryIsReused(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, map[string]string{
		"lib.rtfl":  "def z = 3\n",
		"main.rtfl": "load(\"lib.rtfc\")\n",
	})
	c := newCompiler(t, fs, &Options{})
	if err := c.CompileFile("lib.rtfl", "lib.rtfc"); err != nil {
		t.Fatalf("compile failed: %+v", err)
	}

	c = newCompiler(t, fs, &Options{CompileLiteralLoads: true})
	buf := &bytes.Buffer{}
	if err := c.Compile("main.rtfl", buf); err != nil {
		t.Fatalf("compile failed: %+v", err)
	}
	_, instructions := decode(t, buf.Bytes())
	expect(t, describe(instructions), []string{
		"main.rtfl:0 load(\"lib.rtfc\")",
	})
	if exists, _ := afero.Exists(fs, "lib.rtfc.rtfc"); exists {
		t.Errorf("a compiled file was compiled again")
	}
}

func TestNotAFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, map[string]string{
		"main.rtfl": "print(1)\nload(\"missing.rtfl\")\n",
	})

	// without options the call is kept as it is
	c := newCompiler(t, fs, &Options{PreserveLineNumbers: true})
	if err := c.Compile("main.rtfl", &bytes.Buffer{}); err != nil {
		t.Errorf("compile failed: %+v", err)
	}

	c = newCompiler(t, fs, &Options{PreserveLineNumbers: true, PackageLiteralLoads: true})
	err := c.Compile("main.rtfl", &bytes.Buffer{})
	if err == nil {
		t.Fatalf("expected an error")
	}
	if s := err.Error(); s != "Path specified in load at main.rtfl:2 is not a file" {
		t.Errorf("unexpected error: %s", s)
	}
}

func TestNonLiteralKept(t *testing.T) {
	fs := afero.NewMemMapFs()
	c := newCompiler(t, fs, &Options{PackageLiteralLoads: true})
	enc := bytecode.NewEncoder(&bytes.Buffer{}, "main.rtfl", false)
	call := &ast.InstCall{
		Pos:  ast.At("main.rtfl", 1),
		Name: FuncLoad,
		Args: []interfaces.Operand{&ast.ExprVar{Name: "path"}},
	}
	if err := c.emit(enc, []interfaces.Instruction{call}); err != nil {
		t.Errorf("emit failed: %+v", err)
	}
	call.Args = []interfaces.Operand{types.NewInt(1)}
	if err := c.emit(enc, []interfaces.Instruction{call}); err != nil {
		t.Errorf("emit failed: %+v", err)
	}
}
