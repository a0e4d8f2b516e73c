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

package interpret

import (
	"bufio"
	"io"
	"strings"
	"sync"

	"github.com/rtfl-lang/rtfl/lang/interfaces"
)

// terminal reads lines from stdin, but only while it is open.
type terminal struct {
	mutex  *sync.Mutex
	open   bool
	reader *bufio.Reader
}

func newTerminal(r io.Reader) *terminal {
	return &terminal{
		mutex:  &sync.Mutex{},
		reader: bufio.NewReader(r),
	}
}

// Open allows reading.
func (obj *terminal) Open() {
	obj.mutex.Lock()
	defer obj.mutex.Unlock()
	obj.open = true
}

// Close stops reading. The underlying reader is left alone.
func (obj *terminal) Close() error {
	obj.mutex.Lock()
	defer obj.mutex.Unlock()
	obj.open = false
	return nil
}

// IsOpen returns true if the terminal is open.
func (obj *terminal) IsOpen() bool {
	obj.mutex.Lock()
	defer obj.mutex.Unlock()
	return obj.open
}

// ReadLine reads one line without its line ending.
func (obj *terminal) ReadLine() (string, error) {
	obj.mutex.Lock()
	defer obj.mutex.Unlock()
	if !obj.open {
		return "", interfaces.NewExecutionError(interfaces.ErrHost, "Terminal is not open")
	}
	line, err := obj.reader.ReadString('\n')
	if err == io.EOF && line != "" {
		err = nil
	}
	if err != nil {
		return "", interfaces.NewExecutionError(interfaces.ErrHost, "Failed to read from terminal: %v", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
