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

package interfaces

import (
	"errors"
	"fmt"

	"github.com/rtfl-lang/rtfl/util"
)

const (
	// ErrUndefinedVariable is the kind of error returned when a variable
	// that doesn't exist is read, assigned or removed.
	ErrUndefinedVariable = util.Error("undefined variable")

	// ErrUndefinedFunction is the kind of error returned when a function
	// doesn't exist, or is restricted in the calling scope.
	ErrUndefinedFunction = util.Error("undefined or restricted function")

	// ErrType is the kind of error returned when a value has the wrong
	// kind for the operation.
	ErrType = util.Error("type mismatch")

	// ErrIndex is the kind of error returned for out of bounds accesses.
	ErrIndex = util.Error("index out of bounds")

	// ErrArity is the kind of error returned when a function gets too few
	// arguments.
	ErrArity = util.Error("arity mismatch")

	// ErrHost is the kind of error used when the host environment fails,
	// such as for file or network errors.
	ErrHost = util.Error("host failure")

	// ErrThrown is the kind of error raised by scripts on purpose.
	ErrThrown = util.Error("thrown")
)

// ExecutionError is an error that happened while running instructions. As it
// travels up through nested executions it picks up the instruction that
// caused it, but only once, so that the innermost location is kept.
type ExecutionError struct {
	// Msg is the message shown to users and stored by error guards.
	Msg string

	// Cause is the instruction that was running when this happened.
	Cause Instruction

	// Err is the kind of error, if known. It is returned by Unwrap.
	Err error
}

// NewExecutionError builds an error of the given kind without a cause.
func NewExecutionError(kind error, format string, v ...interface{}) *ExecutionError {
	return &ExecutionError{
		Msg: fmt.Sprintf(format, v...),
		Err: kind,
	}
}

// Error returns the message.
func (obj *ExecutionError) Error() string { return obj.Msg }

// Unwrap returns the kind of error so that errors.Is works.
func (obj *ExecutionError) Unwrap() error { return obj.Err }

// Where returns file:line of the cause, or unknown:0 if it is not known.
func (obj *ExecutionError) Where() string {
	if obj.Cause == nil {
		return "unknown:0"
	}
	file, line := obj.Cause.Origin()
	return fmt.Sprintf("%s:%d", file, line)
}

// Report returns the location and the message, in the form used for errors
// that reach the top of a program or of an async task.
func (obj *ExecutionError) Report() string {
	return obj.Where() + " " + obj.Msg
}

// AsExecutionError turns any error into an ExecutionError. If one is already
// inside the chain it is returned directly, otherwise a new one is made from
// the error text.
func AsExecutionError(err error) *ExecutionError {
	if err == nil {
		return nil
	}
	var e *ExecutionError
	if errors.As(err, &e) {
		return e
	}
	return &ExecutionError{
		Msg: err.Error(),
		Err: err,
	}
}

// WithCause returns the error with the instruction attached as its cause. An
// error that already has a cause is returned unchanged.
func WithCause(err error, cause Instruction) *ExecutionError {
	e := AsExecutionError(err)
	if e == nil || e.Cause != nil {
		return e
	}
	x := *e // copy so that shared errors aren't mutated
	x.Cause = cause
	return &x
}
