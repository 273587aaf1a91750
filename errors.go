/*
 * errors.go, part of convoy.
 *
 * Copyright 2024 The convoy authors.
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package convoy

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Use errors.Is to test for them.
var (
	ErrClusteringFailure = errors.New("clustering failure")
	ErrOutOfRange        = errors.New("out of range access")
	ErrRoleConflict      = errors.New("role conflict")
	ErrInvalidParameter  = errors.New("invalid parameter")
	ErrFormat            = errors.New("wrong format")
)

// Error is the error type returned by all packages in this library. The Decorate
// method allows to add information (normally the name of the calling function)
// as the error travels up, without changing its type or wrapping it.
type Error struct {
	message  string
	kind     error
	cause    error
	deco     []string
	critical bool
}

// NewError returns a new critical error of the given kind. The first decoration
// is the caller's name.
func NewError(kind error, caller, format string, args ...interface{}) *Error {
	return &Error{message: fmt.Sprintf(format, args...), kind: kind, deco: []string{caller}, critical: true}
}

// NewWarning is like NewError but the error is not critical.
func NewWarning(kind error, caller, format string, args ...interface{}) *Error {
	err := NewError(kind, caller, format, args...)
	err.critical = false
	return err
}

// Error returns a string with an error message, the kind of error and the
// decoration trail, innermost caller first.
func (err *Error) Error() string {
	var b strings.Builder
	if err.kind != nil {
		b.WriteString(err.kind.Error())
		b.WriteString(": ")
	}
	b.WriteString(err.message)
	if len(err.deco) > 0 {
		b.WriteString(" [")
		b.WriteString(strings.Join(err.deco, " < "))
		b.WriteString("]")
	}
	return b.String()
}

// Decorate adds dec to the decoration slice of the error and returns the
// resulting slice. An empty string only returns the current slice.
func (err *Error) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

// Critical returns whether the error is critical or it can be ignored.
func (err *Error) Critical() bool { return err.critical }

// Unwrap returns the kind of the error and, if present, the error that
// caused it.
func (err *Error) Unwrap() []error {
	if err.cause != nil {
		return []error{err.kind, err.cause}
	}
	return []error{err.kind}
}

// Decorate adds caller to the decoration trail of err if err is an *Error, and
// returns err. Other errors are wrapped into an *Error of the given kind.
func Decorate(err error, kind error, caller string) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		e.Decorate(caller)
		return e
	}
	return &Error{message: err.Error(), kind: kind, cause: err, deco: []string{caller}, critical: true}
}

// Wrap returns a new *Error of the given kind, caused by err.
func Wrap(err error, kind error, caller string) error {
	if err == nil {
		return nil
	}
	return &Error{message: err.Error(), kind: kind, cause: err, deco: []string{caller}, critical: true}
}
