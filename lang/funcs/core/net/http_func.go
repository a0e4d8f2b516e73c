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

// Package corenet contains the network functions.
package corenet

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rtfl-lang/rtfl/lang/funcs"
	"github.com/rtfl-lang/rtfl/lang/interfaces"
	"github.com/rtfl-lang/rtfl/lang/types"
)

// Timeout is the longest a request may take.
const Timeout = 60 * time.Second

func init() {
	funcs.RegisterSimple("read_http", ReadHTTP)
}

var client = &http.Client{Timeout: Timeout}

// ReadHTTP requests a URL and returns the body. The method defaults to GET.
func ReadHTTP(args []types.Value, scope interfaces.Scope) (types.Value, error) {
	if err := funcs.Arity(args, 1); err != nil {
		return nil, err
	}
	url, err := funcs.Str(args, 0, "Provided non-string argument")
	if err != nil {
		return nil, err
	}
	method := http.MethodGet
	if len(args) > 1 {
		if x, ok := args[1].(*types.StrValue); ok {
			method = strings.ToUpper(x.V)
		}
	}

	req, err := http.NewRequest(method, url, nil)
	if err != nil {
		return nil, funcs.HostError("Failed to load URL: %v", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, funcs.HostError("Failed to load URL: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, funcs.HostError("Failed to load URL: server returned %s", resp.Status)
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, funcs.HostError("Failed to load URL: %v", err)
	}
	return types.NewStr(string(b)), nil
}
