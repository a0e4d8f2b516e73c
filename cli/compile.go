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

package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	cliUtil "github.com/rtfl-lang/rtfl/cli/util"
	"github.com/rtfl-lang/rtfl/lang/compiler"
	"github.com/rtfl-lang/rtfl/lang/loader"

	"github.com/spf13/afero"
)

// CompileArgs is the CLI parsing structure and type of the parsed result. This
// particular one contains all the flags for the `compile` subcommand.
type CompileArgs struct {
	// Path is the script or binary to compile.
	Path string `arg:"positional,required" help:"script or binary to compile"`

	Out string `arg:"--out" help:"path to write the compiled binary to"`

	PreserveLineNumbers    bool `arg:"-n,--preserve-line-numbers" help:"keep line numbers in the binary for debugging"`
	CompileLiteralLoads    bool `arg:"-l,--compile-literal-loads" help:"compile files named by literal load() calls, and reference the compiled versions"`
	CompileLiteralRequires bool `arg:"-r,--compile-literal-requires" help:"compile files named by literal require() calls, and reference the compiled versions"`
	PackageLiteralLoads    bool `arg:"-p,--package-literal-loads" help:"package files named by literal load() calls into the binary"`
	PackageLiteralRequires bool `arg:"-e,--package-literal-requires" help:"package files named by literal require() calls into the binary"`

	Time bool `arg:"-t,--time" help:"print how long the compile took"`

	Libs string `arg:"--libs,env:RTFL_LIBS" help:"directory that require searches for libraries"`
}

// Run executes the `compile` subcommand.
func (obj *CompileArgs) Run(ctx context.Context, data *cliUtil.Data) (bool, error) {
	fs := afero.NewOsFs()
	if !(&loader.Loader{Fs: fs}).IsFile(obj.Path) {
		fmt.Println("Specified path does not point to a file")
		return true, nil
	}

	out := obj.Out
	if out == "" {
		out = compiler.OutputPath(obj.Path)
	}

	c := &compiler.Compiler{
		Fs: fs,
		Options: &compiler.Options{
			PreserveLineNumbers:    obj.PreserveLineNumbers,
			CompileLiteralLoads:    obj.CompileLiteralLoads,
			CompileLiteralRequires: obj.CompileLiteralRequires,
			PackageLiteralLoads:    obj.PackageLiteralLoads,
			PackageLiteralRequires: obj.PackageLiteralRequires,
		},
		LibDir: obj.Libs,
		Debug:  data.Flags.Debug,
		Logf: func(format string, v ...interface{}) {
			data.Flags.Logf("compiler: "+format, v...)
		},
	}
	if err := c.Init(); err != nil {
		return false, err
	}

	start := time.Now()
	if err := c.CompileFile(obj.Path, out); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to compile file: %v\n", err)
		return false, errFailed{err}
	}
	if obj.Time {
		fmt.Printf("Took %dms to compile file\n", time.Since(start).Milliseconds())
	}
	return true, nil
}
