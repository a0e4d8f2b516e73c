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

package util

import (
	"fmt"
	"os/user"
	"path/filepath"
	"regexp"
	"strings"
)

var homeRegexp = regexp.MustCompile(`^~([^/]+)(/|$)`)

// ExpandHome does an expansion of ~/ or ~james/ into the user's home dir. Any
// other path is returned unchanged.
func ExpandHome(p string) (string, error) {
	if p == "~" || strings.HasPrefix(p, "~/") {
		usr, err := user.Current()
		if err != nil {
			return p, fmt.Errorf("can't expand ~ into home directory")
		}
		return filepath.Join(usr.HomeDir, strings.TrimPrefix(p[1:], "/")), nil
	}

	// check if provided path is in format ~username
	if match := homeRegexp.FindStringSubmatch(p); match != nil {
		usr, err := user.Lookup(match[1])
		if err != nil {
			return p, fmt.Errorf("can't expand ~%s into home directory", match[1])
		}
		return filepath.Join(usr.HomeDir, p[len(match[0]):]), nil
	}

	return p, nil
}
