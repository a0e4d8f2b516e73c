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

// Package interfaces contains the common interfaces used by the language. It
// exists so that the expression, engine and function packages can all talk to
// each other without import cycles.
package interfaces

import (
	"fmt"

	"github.com/rtfl-lang/rtfl/lang/types"
)

// Operand is anything that can appear where an instruction expects a value.
// It is either a concrete types.Value or an Expr. No other implementations are
// valid, and the engine resolves an Expr exactly once, right before use.
type Operand interface {
	fmt.Stringer
}

// Expr is a deferred computation which produces a value when resolved against
// a scope. The result is never cached.
type Expr interface {
	Operand

	// Resolve evaluates the expression in the given scope. This may call
	// functions, and thus re-enter the engine.
	Resolve(Scope) (types.Value, error)
}

// Instruction is a single step of a flat program. Every instruction remembers
// where it came from so that errors can point at it.
type Instruction interface {
	fmt.Stringer

	// Origin returns the file name and line that produced this instruction.
	// Synthetic instructions return an empty file name and zero.
	Origin() (string, int)
}
