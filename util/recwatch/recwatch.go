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

// Package recwatch provides file watching events via fsnotify. It watches a
// program file, and optionally every directory below the one it lives in, so
// that changes to loaded files are seen too.
package recwatch

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/rtfl-lang/rtfl/util"

	"github.com/fsnotify/fsnotify"
)

// Event represents a watcher event. These can include errors.
type Event struct {
	Error error
	Name  string
	Op    fsnotify.Op
}

// RecWatcher is the struct for the recursive watcher. Run Init() on it.
type RecWatcher struct {
	// Path is the file that we're watching.
	Path string

	// Recurse also watches every directory below the one that holds Path.
	Recurse bool

	// Filter decides which other changed files are sent when recursing. If
	// it is nil, every file is.
	Filter func(name string) bool

	Debug bool
	Logf  func(format string, v ...interface{})

	safename string // clean path
	dir      string
	watcher  *fsnotify.Watcher
	watches  map[string]struct{}
	events   chan Event // one channel for events and err...
	wg       *sync.WaitGroup
	exit     chan struct{}
}

// NewRecWatcher creates an initializes a new recursive watcher.
func NewRecWatcher(path string, recurse bool) (*RecWatcher, error) {
	obj := &RecWatcher{
		Path:    path,
		Recurse: recurse,
	}
	return obj, obj.Init()
}

// Init starts the watcher.
func (obj *RecWatcher) Init() error {
	if obj.Logf == nil {
		obj.Logf = func(format string, v ...interface{}) {}
	}
	obj.watches = make(map[string]struct{})
	obj.events = make(chan Event)
	obj.exit = make(chan struct{})
	obj.wg = &sync.WaitGroup{}

	abs, err := filepath.Abs(obj.Path)
	if err != nil {
		return err
	}
	obj.safename = filepath.Clean(abs)
	obj.dir = filepath.Dir(obj.safename)

	obj.watcher, err = fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := obj.add(obj.dir); err != nil {
		obj.watcher.Close()
		return err
	}
	if obj.Recurse {
		if err := obj.addSubFolders(obj.dir); err != nil {
			obj.watcher.Close()
			return err
		}
	}

	obj.wg.Add(1)
	go func() {
		defer obj.wg.Done()
		defer close(obj.events)
		if err := obj.watch(); err != nil {
			select {
			case obj.events <- Event{Error: err}:
			case <-obj.exit:
			}
		}
	}()
	return nil
}

// Close shuts down the watcher. The events channel is closed when it returns.
func (obj *RecWatcher) Close() error {
	close(obj.exit) // send exit signal
	err := obj.watcher.Close()
	obj.wg.Wait()
	return err
}

// Events returns a channel of events. These include events for errors.
func (obj *RecWatcher) Events() <-chan Event { return obj.events }

func (obj *RecWatcher) watch() error {
	for {
		select {
		case event, ok := <-obj.watcher.Events:
			if !ok {
				return nil
			}
			if obj.Debug {
				obj.Logf("event(%s): %v", event.Name, event.Op)
			}
			if !obj.relevant(event) {
				continue
			}
			select {
			case obj.events <- Event{Name: event.Name, Op: event.Op}:
			case <-obj.exit:
				return nil
			}

		case err, ok := <-obj.watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("unknown watcher error: %v", err)

		case <-obj.exit:
			return nil
		}
	}
}

// relevant updates the watches for directory events, and says whether the
// event should be sent.
func (obj *RecWatcher) relevant(event fsnotify.Event) bool {
	if event.Name == obj.safename {
		return event.Op&fsnotify.Chmod == 0
	}
	if !obj.Recurse || !util.HasPathPrefix(event.Name, obj.dir) {
		return false
	}

	if _, exists := obj.watches[event.Name]; exists && event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
		obj.watcher.Remove(event.Name) // may already be gone
		delete(obj.watches, event.Name)
		return false
	}
	if event.Op&fsnotify.Create != 0 && isDir(event.Name) {
		if err := obj.addSubFolders(event.Name); err != nil {
			obj.Logf("could not watch %s: %+v", event.Name, err)
		}
		return false
	}
	if event.Op&fsnotify.Chmod != 0 {
		return false
	}
	return obj.Filter == nil || obj.Filter(event.Name)
}

func (obj *RecWatcher) add(p string) error {
	if obj.Debug {
		obj.Logf("watching: %s", p)
	}
	if err := obj.watcher.Add(p); err != nil {
		if err == syscall.ENOSPC {
			// no space left on device, out of inotify watches
			return fmt.Errorf("out of inotify watches: %v", err)
		} else if os.IsPermission(err) {
			return fmt.Errorf("permission denied adding a watch: %v", err)
		}
		return fmt.Errorf("could not watch %s: %v", p, err)
	}
	obj.watches[p] = struct{}{}
	return nil
}

// addSubFolders is a helper that is used to add recursive dirs to the watches.
func (obj *RecWatcher) addSubFolders(p string) error {
	walkFn := func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // it was removed while we walked
		}
		if !info.IsDir() {
			return nil
		}
		if _, exists := obj.watches[path]; exists {
			return nil
		}
		return obj.add(path)
	}
	return filepath.Walk(p, walkFn)
}

func isDir(path string) bool {
	finfo, err := os.Stat(path)
	if err != nil {
		return false
	}
	return finfo.IsDir()
}
