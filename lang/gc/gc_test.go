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

package gc

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestSweeperPeriodic(t *testing.T) {
	var count int64
	sweeper := &Sweeper{
		Interval: 10 * time.Millisecond,
		Sweep: func() int {
			atomic.AddInt64(&count, 1)
			return 0
		},
	}
	if err := sweeper.Init(); err != nil {
		t.Errorf("could not init: %+v", err)
		return
	}
	go sweeper.Run()
	defer sweeper.Shutdown()

	deadline := time.Now().Add(5 * time.Second)
	for atomic.LoadInt64(&count) < 3 {
		if time.Now().After(deadline) {
			t.Errorf("sweeper never ran")
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestSweeperPaused(t *testing.T) {
	var count int64
	sweeper := &Sweeper{
		Interval: 5 * time.Millisecond,
		Sweep: func() int {
			atomic.AddInt64(&count, 1)
			return 7
		},
	}
	if err := sweeper.Init(); err != nil {
		t.Errorf("could not init: %+v", err)
		return
	}
	sweeper.Pause()
	if !sweeper.Paused() {
		t.Errorf("expected sweeper to be paused")
	}
	go sweeper.Run()
	time.Sleep(50 * time.Millisecond)
	if n := atomic.LoadInt64(&count); n != 0 {
		t.Errorf("paused sweeper ran %d time(s)", n)
	}

	// manual collections still work
	if n := sweeper.Collect(); n != 7 {
		t.Errorf("expected 7, got: %d", n)
	}
	if n := atomic.LoadInt64(&count); n != 1 {
		t.Errorf("expected one sweep, got: %d", n)
	}
	sweeper.Resume()
	if sweeper.Paused() {
		t.Errorf("expected sweeper to be running")
	}
	sweeper.Shutdown()
}

func TestSweeperInit(t *testing.T) {
	if err := (&Sweeper{}).Init(); err == nil {
		t.Errorf("expected error without a Sweep function")
	}
	sweeper := &Sweeper{Sweep: func() int { return 0 }}
	if err := sweeper.Init(); err != nil {
		t.Errorf("could not init: %+v", err)
		return
	}
	if sweeper.Interval != DefaultInterval {
		t.Errorf("unexpected interval: %v", sweeper.Interval)
	}
}

func TestSweeperShutdownEarly(t *testing.T) {
	// shutting down before the loop got to run must not race or block
	for i := 0; i < 20; i++ {
		sweeper := &Sweeper{Sweep: func() int { return 0 }}
		if err := sweeper.Init(); err != nil {
			t.Errorf("could not init: %+v", err)
			return
		}
		go sweeper.Run()
		sweeper.Shutdown()
	}
}
