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
	"os/signal"
	"sync"
	"syscall"

	cliUtil "github.com/rtfl-lang/rtfl/cli/util"
	"github.com/rtfl-lang/rtfl/lib"
	"github.com/rtfl-lang/rtfl/util/errwrap"

	"github.com/spf13/afero"
)

// RunArgs is the CLI parsing structure and type of the parsed result. This
// particular one contains all the flags for the `run` subcommand.
type RunArgs struct {
	lib.Config // embedded config (can't be a pointer) https://github.com/alexflint/go-arg/issues/240

	// Path is the script or the compiled binary to run.
	Path string `arg:"positional,required" help:"script or binary to run"`

	// Args are passed to the program in the args global.
	Args []string `arg:"positional" help:"arguments for the program"`
}

// Run executes the `run` subcommand. A failing program is reported on stderr
// and returns an error, so that the process exits non-zero.
func (obj *RunArgs) Run(ctx context.Context, data *cliUtil.Data) (bool, error) {
	fs := afero.NewOsFs()

	config := &obj.Config
	if config.ConfigFile != "" {
		fileConfig, err := lib.LoadConfig(fs, config.ConfigFile)
		if err != nil {
			return false, err
		}
		config = fileConfig.Override(config) // flags win
	}

	main := &lib.Main{
		Config:  config,
		Program: data.Program,
		Version: data.Version,
		Path:    obj.Path,
		Args:    obj.Args,
		Fs:      fs,
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Exit:    os.Exit,
		Debug:   data.Flags.Debug,
		Logf: func(format string, v ...interface{}) {
			data.Flags.Logf("main: "+format, v...)
		},
	}

	cliUtil.Hello(main.Program, main.Version, data.Flags) // say hello!

	if err := main.Validate(); err != nil {
		return false, cliUtil.CliParseError(err)
	}
	if err := main.Init(); err != nil {
		if errwrap.Cause(err) == lib.ErrNotAFile {
			fmt.Println(err) // not a failure of the program itself
			return true, nil
		}
		return false, err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// install the exit signal handler, used to stop watch mode
	wg := &sync.WaitGroup{}
	defer wg.Wait()
	exit := make(chan struct{})
	defer close(exit)
	wg.Add(1)
	go func() {
		defer wg.Done()
		signals := make(chan os.Signal, 1+1) // 1 * ^C + 1 * SIGTERM
		signal.Notify(signals, os.Interrupt) // catch ^C
		signal.Notify(signals, syscall.SIGTERM)
		defer signal.Stop(signals)
		select {
		case sig := <-signals:
			data.Flags.Logf("interrupted by signal: %v", sig)
			cancel()
		case <-exit:
		}
	}()

	reterr := main.Run(ctx)
	if reterr != nil && data.Flags.Debug {
		data.Flags.Logf("main: %+v", reterr)
	}
	if err := main.Close(); err != nil {
		if reterr == nil {
			return false, err
		}
		fmt.Fprintln(os.Stderr, errwrap.String(err))
	}
	if reterr != nil {
		return false, errFailed{reterr}
	}
	return true, nil
}

// errFailed marks an error that was already reported to the user.
type errFailed struct {
	err error
}

func (e errFailed) Error() string { return e.err.Error() }
func (e errFailed) Unwrap() error { return e.err }

// Reported returns true if the error was already shown to the user, so that
// main should only set the exit code.
func Reported(err error) bool {
	_, ok := err.(errFailed)
	return ok
}
