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

// Package corefmt contains the output functions.
package corefmt

import (
	"io"
	"strings"

	"github.com/rtfl-lang/rtfl/lang/funcs"
	"github.com/rtfl-lang/rtfl/lang/interfaces"
	"github.com/rtfl-lang/rtfl/lang/types"
)

func init() {
	funcs.RegisterSimple("print", Print)
	funcs.RegisterSimple("println", Println)
}

// Print writes the display form of every argument to the program output.
func Print(args []types.Value, scope interfaces.Scope) (types.Value, error) {
	return types.Null, write(scope.Runtime().Env().Stdout, args, "")
}

// Println is like Print, but ends with a newline.
func Println(args []types.Value, scope interfaces.Scope) (types.Value, error) {
	return types.Null, write(scope.Runtime().Env().Stdout, args, "\n")
}

func write(w io.Writer, args []types.Value, end string) error {
	b := &strings.Builder{}
	for _, x := range args {
		b.WriteString(types.Text(x))
	}
	b.WriteString(end)
	if _, err := io.WriteString(w, b.String()); err != nil {
		return funcs.HostError("Failed to write output: %v", err)
	}
	return nil
}
