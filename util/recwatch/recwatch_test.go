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

//go:build !root

package recwatch

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func expectEvent(t *testing.T, w *RecWatcher, name string) {
	timeout := time.After(5 * time.Second)
	for {
		select {
		case event, ok := <-w.Events():
			if !ok {
				t.Fatalf("events closed early")
			}
			if event.Error != nil {
				t.Fatalf("watch error: %+v", event.Error)
			}
			if event.Name == name {
				return
			}
		case <-timeout:
			t.Fatalf("no event for %s", name)
		}
	}
}

func TestWatchFile(t *testing.T) {
	dir := t.TempDir()
	main := filepath.Join(dir, "main.rtfl")
	if err := os.WriteFile(main, []byte("println(1)\n"), 0644); err != nil {
		t.Fatalf("write failed: %+v", err)
	}

	w := &RecWatcher{
		Path: main,
		Logf: t.Logf,
	}
	if err := w.Init(); err != nil {
		t.Fatalf("init failed: %+v", err)
	}
	defer w.Close()

	if err := os.WriteFile(main, []byte("println(2)\n"), 0644); err != nil {
		t.Fatalf("write failed: %+v", err)
	}
	expectEvent(t, w, main)
}

func TestWatchRecurse(t *testing.T) {
	dir := t.TempDir()
	main := filepath.Join(dir, "main.rtfl")
	libs := filepath.Join(dir, "libs")
	if err := os.MkdirAll(libs, 0755); err != nil {
		t.Fatalf("mkdir failed: %+v", err)
	}
	if err := os.WriteFile(main, []byte("require(\"x\")\n"), 0644); err != nil {
		t.Fatalf("write failed: %+v", err)
	}

	w := &RecWatcher{
		Path:    main,
		Recurse: true,
		Filter:  func(name string) bool { return strings.HasSuffix(name, ".rtfl") },
		Logf:    t.Logf,
	}
	if err := w.Init(); err != nil {
		t.Fatalf("init failed: %+v", err)
	}
	defer w.Close()

	lib := filepath.Join(libs, "x.rtfl")
	if err := os.WriteFile(lib, []byte("println(1)\n"), 0644); err != nil {
		t.Fatalf("write failed: %+v", err)
	}
	expectEvent(t, w, lib)
}
