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
	"io"
	"os"
	"strings"

	cliUtil "github.com/rtfl-lang/rtfl/cli/util"
	"github.com/rtfl-lang/rtfl/lang"
	"github.com/rtfl-lang/rtfl/lang/ast"
	"github.com/rtfl-lang/rtfl/lang/interfaces"
	"github.com/rtfl-lang/rtfl/lang/parser"
	"github.com/rtfl-lang/rtfl/lang/types"
	"github.com/rtfl-lang/rtfl/lib"
	"github.com/rtfl-lang/rtfl/util"

	"github.com/peterh/liner"
	"github.com/spf13/afero"
)

const (
	replPrompt         = "rtfl> "
	replContinuePrompt = "....> "
	replHistoryFile    = "~/.rtfl_history"
)

// ReplArgs is the CLI parsing structure and type of the parsed result. This
// particular one contains all the flags for the `repl` subcommand.
type ReplArgs struct {
	Libs string `arg:"--libs,env:RTFL_LIBS" help:"directory that require searches for libraries"`

	GCInterval string `arg:"--gc-interval" help:"time between two garbage collector sweeps"`
}

// Run executes the `repl` subcommand. Every entry runs at the top level of one
// runtime, so globals and functions persist between entries.
func (obj *ReplArgs) Run(ctx context.Context, data *cliUtil.Data) (bool, error) {
	config := &lib.Config{
		GCInterval: obj.GCInterval,
		Libs:       obj.Libs,
	}
	if err := config.Validate(); err != nil {
		return false, cliUtil.CliParseError(err)
	}

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	history, err := util.ExpandHome(replHistoryFile)
	if err != nil {
		history = "" // no home, no history
	}
	if history != "" {
		if f, err := os.Open(history); err == nil {
			line.ReadHistory(f)
			f.Close()
		}
	}

	l := &lang.Lang{
		Fs:         afero.NewOsFs(),
		Stdin:      os.Stdin,
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
		GCInterval: config.Interval(),
		LibDir:     config.Libs,
		Exit:       os.Exit,
		Debug:      data.Flags.Debug,
		Logf: func(format string, v ...interface{}) {
			data.Flags.Logf("lang: "+format, v...)
		},
	}
	if err := l.Init(); err != nil {
		return false, err
	}
	defer l.Close()
	l.SetArgs(nil)

	r := &repl{
		lang:   l,
		prompt: line.Prompt,
		out:    os.Stdout,
		errOut: os.Stderr,
		added:  line.AppendHistory,
	}
	err = r.loop(ctx)
	l.Wait()

	if history != "" {
		if f, e := os.Create(history); e == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// repl reads entries until the input ends.
type repl struct {
	lang   *lang.Lang
	prompt func(string) (string, error)
	out    io.Writer
	errOut io.Writer

	// added records the history of complete entries. It may be nil.
	added func(string)
}

func (obj *repl) loop(ctx context.Context) error {
	buffer := []string{}
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		p := replPrompt
		if len(buffer) > 0 {
			p = replContinuePrompt
		}
		text, err := obj.prompt(p)
		if err == liner.ErrPromptAborted {
			buffer = buffer[:0] // ^C drops the entry
			continue
		}
		if err == io.EOF {
			fmt.Fprintln(obj.out)
			return nil
		}
		if err != nil {
			return err
		}

		buffer = append(buffer, text)
		code := strings.Join(buffer, "\n")
		if strings.TrimSpace(code) == "" {
			buffer = buffer[:0]
			continue
		}
		if open(code) {
			continue // wait for the clauses to close
		}
		buffer = buffer[:0]
		if obj.added != nil {
			obj.added(code)
		}

		v, err := obj.lang.RunCode(code)
		if err != nil {
			fmt.Fprintln(obj.errOut, lib.Report(err))
			continue
		}
		if v != nil && v.Kind() != types.KindNull {
			fmt.Fprintf(obj.out, "=> %s\n", v)
		}
	}
}

// open returns true if the code has a clause that is not closed yet. Code that
// does not parse is not open, so that the error is shown right away.
func open(code string) bool {
	instructions, err := parser.ParseString(lang.EvalName, code)
	if err != nil {
		return false
	}
	return depth(instructions) > 0
}

func depth(instructions []interfaces.Instruction) int {
	d := 0
	for _, x := range instructions {
		if ast.IsOpener(x) {
			d++
		}
		if _, ok := x.(*ast.InstEnd); ok {
			d--
		}
	}
	return d
}
