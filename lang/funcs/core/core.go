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

// Package core imports the whole standard library of host functions. Import
// it for its side effects, and then use funcs.Map to import the functions into
// a runtime.
package core

import (
	// import so the funcs register
	_ "github.com/rtfl-lang/rtfl/lang/funcs/core/array"
	_ "github.com/rtfl-lang/rtfl/lang/funcs/core/eval"
	_ "github.com/rtfl-lang/rtfl/lang/funcs/core/fmt"
	_ "github.com/rtfl-lang/rtfl/lang/funcs/core/maps"
	_ "github.com/rtfl-lang/rtfl/lang/funcs/core/math"
	_ "github.com/rtfl-lang/rtfl/lang/funcs/core/net"
	_ "github.com/rtfl-lang/rtfl/lang/funcs/core/os"
	_ "github.com/rtfl-lang/rtfl/lang/funcs/core/strings"
	_ "github.com/rtfl-lang/rtfl/lang/funcs/core/sys"
)
