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

package cli

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/rtfl-lang/rtfl/lang"

	"github.com/spf13/afero"
)

func TestReplLoop(t *testing.T) {
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	l := &lang.Lang{
		Fs:         afero.NewMemMapFs(),
		Stdin:      strings.NewReader(""),
		Stdout:     stdout,
		Stderr:     stderr,
		GCInterval: time.Hour,
		Exit:       func(int) {},
	}
	if err := l.Init(); err != nil {
		t.Fatalf("init failed: %+v", err)
	}
	defer l.Close()

	input := []string{
		"def x = 2",
		"func double(n) {",
		"return mul(n, 2)",
		"}",
		"",
		"println(double(x))",
		"return double(21)",
		"missing()",
	}
	prompts := []string{}
	history := []string{}
	r := &repl{
		lang: l,
		prompt: func(p string) (string, error) {
			prompts = append(prompts, p)
			if len(input) == 0 {
				return "", io.EOF
			}
			s := input[0]
			input = input[1:]
			return s, nil
		},
		out:    stdout,
		errOut: stderr,
		added:  func(s string) { history = append(history, s) },
	}
	if err := r.loop(context.Background()); err != nil {
		t.Fatalf("loop failed: %+v", err)
	}

	if s := stdout.String(); s != "4\n=> 42\n\n" {
		t.Errorf("unexpected output: %q", s)
	}
	if s := stderr.String(); s != "eval:1 Attempted to call undefined or restricted function \"missing\"\n" {
		t.Errorf("unexpected errors: %q", s)
	}
	if len(prompts) < 5 || prompts[2] != replContinuePrompt || prompts[3] != replContinuePrompt || prompts[4] != replPrompt {
		t.Errorf("unexpected prompts: %v", prompts)
	}
	if len(history) != 5 || history[1] != "func double(n) {\nreturn mul(n, 2)\n}" {
		t.Errorf("unexpected history: %q", history)
	}
}

func TestDepth(t *testing.T) {
	if !open("if 1 {\nwhile 0 {\n}") {
		t.Errorf("expected an open clause")
	}
	if open("if 1 {\n}") {
		t.Errorf("expected a closed clause")
	}
}
