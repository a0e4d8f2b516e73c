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

package coresys

import (
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/rtfl-lang/rtfl/lang/funcs"
	"github.com/rtfl-lang/rtfl/lang/interfaces"
	"github.com/rtfl-lang/rtfl/lang/types"
)

// LanguageVersion is reported as the rtfl.version property.
const LanguageVersion = "1.4"

func init() {
	funcs.RegisterSimple("system_property", SystemProperty)
}

// properties are looked up lazily, since some of them can fail.
var properties = map[string]func() (string, bool){
	"os.name":    osName,
	"os.version": osVersion,
	"os.arch":    func() (string, bool) { return runtime.GOARCH, true },
	"user.dir": func() (string, bool) {
		dir, err := os.Getwd()
		return dir, err == nil
	},
	"user.home": func() (string, bool) {
		dir, err := os.UserHomeDir()
		return dir, err == nil
	},
	"user.name": func() (string, bool) {
		u, err := user.Current()
		if err != nil {
			return "", false
		}
		return u.Username, true
	},
	"file.separator": func() (string, bool) { return string(filepath.Separator), true },
	"path.separator": func() (string, bool) { return string(filepath.ListSeparator), true },
	"line.separator": func() (string, bool) { return "\n", true },
	"rtfl.version":   func() (string, bool) { return LanguageVersion, true },
	"go.version":     func() (string, bool) { return strings.TrimPrefix(runtime.Version(), "go"), true },
}

// SystemProperty returns a property of the host system, or null if it is not
// known.
func SystemProperty(args []types.Value, scope interfaces.Scope) (types.Value, error) {
	if err := funcs.Arity(args, 1); err != nil {
		return nil, err
	}
	name, err := funcs.Str(args, 0, "Provided non-string property name")
	if err != nil {
		return nil, err
	}
	fn, exists := properties[name]
	if !exists {
		return types.Null, nil
	}
	if s, ok := fn(); ok {
		return types.NewStr(s), nil
	}
	return types.Null, nil
}
