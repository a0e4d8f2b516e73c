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

// Package gc contains the periodic sweeper which reclaims local variables
// that no longer have any owners.
package gc

import (
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// DefaultInterval is the time between two periodic sweeps.
const DefaultInterval = 20 * time.Second

// Sweeper runs a collection function at a fixed interval until it is shut
// down. It can be paused, in which case only manual collections happen.
type Sweeper struct {
	// Interval is the time between two sweeps. If zero, DefaultInterval is
	// used.
	Interval time.Duration

	// Sweep removes every unowned variable and returns how many it removed.
	Sweep func() int

	Debug bool
	Logf  func(format string, v ...interface{})

	mutex  *sync.Mutex
	paused bool

	// sometimes keeps the debug output of manual collections readable when
	// a script calls gc in a tight loop.
	sometimes *rate.Sometimes

	closeChan chan struct{}
	wg        *sync.WaitGroup
}

// Init validates the sweeper and prepares it for running.
func (obj *Sweeper) Init() error {
	if obj.Sweep == nil {
		return fmt.Errorf("the Sweep function must be specified")
	}
	if obj.Interval < 0 {
		return fmt.Errorf("the Interval must not be negative")
	}
	if obj.Interval == 0 {
		obj.Interval = DefaultInterval
	}
	if obj.Logf == nil {
		obj.Logf = func(format string, v ...interface{}) {}
	}
	obj.mutex = &sync.Mutex{}
	obj.sometimes = &rate.Sometimes{First: 3, Interval: time.Second}
	obj.closeChan = make(chan struct{})
	obj.wg = &sync.WaitGroup{}
	obj.wg.Add(1) // for Run, so that Shutdown can't miss it
	return nil
}

// Run is the main loop. It blocks until Shutdown is called. It must be called
// exactly once after Init, or Shutdown will block forever.
func (obj *Sweeper) Run() {
	defer obj.wg.Done()

	ticker := time.NewTicker(obj.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if obj.Paused() {
				continue
			}
			n := obj.Sweep()
			if obj.Debug && n > 0 {
				obj.Logf("swept %d variable(s)", n)
			}

		case <-obj.closeChan:
			return
		}
	}
}

// Collect sweeps once, right now, and returns the number of reclaimed
// variables. It works even when the sweeper is paused.
func (obj *Sweeper) Collect() int {
	n := obj.Sweep()
	if obj.Debug {
		obj.sometimes.Do(func() {
			obj.Logf("manual collection swept %d variable(s)", n)
		})
	}
	return n
}

// Pause stops the periodic sweep.
func (obj *Sweeper) Pause() { obj.SetPaused(true) }

// Resume restarts the periodic sweep.
func (obj *Sweeper) Resume() { obj.SetPaused(false) }

// SetPaused pauses or resumes the periodic sweep.
func (obj *Sweeper) SetPaused(paused bool) {
	obj.mutex.Lock()
	defer obj.mutex.Unlock()
	obj.paused = paused
}

// Paused returns true if the periodic sweep is paused.
func (obj *Sweeper) Paused() bool {
	obj.mutex.Lock()
	defer obj.mutex.Unlock()
	return obj.paused
}

// Shutdown stops the main loop and waits for it to exit. It must be called
// exactly once.
func (obj *Sweeper) Shutdown() {
	close(obj.closeChan)
	obj.wg.Wait()
}
