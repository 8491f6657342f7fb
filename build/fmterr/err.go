// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package fmterr

import (
	"fmt"
	"runtime/debug"

	"github.com/gx-org/tflower/build/ir"
	"github.com/pkg/errors"
)

type (
	// ErrorWithLoc is an error attached to a location in the source code.
	ErrorWithLoc interface {
		error
		Loc() ir.Location
		Err() error
	}

	errorWithLoc struct {
		loc ir.Location
		err error
	}
)

// Position attaches a location to an error.
func Position(loc ir.Location, err error) ErrorWithLoc {
	return errorWithLoc{loc: loc, err: err}
}

// Errorf returns a formatted error for the user at a given location.
func Errorf(loc ir.Location, format string, a ...any) error {
	return Position(loc, errors.Errorf(format, a...))
}

// Wrapf wraps an error kind with a formatted message at a given location.
// The returned error matches kind with errors.Is.
func Wrapf(loc ir.Location, kind error, format string, a ...any) error {
	return Position(loc, errors.Wrapf(kind, format, a...))
}

// Internal wraps an error to signal a bug in the lowering pipeline
// rather than an error in the user code.
func Internal(err error) error {
	return internalError{err: err}
}

// Internalf returns a formatted internal error.
func Internalf(loc ir.Location, format string, a ...any) error {
	return Internal(Errorf(loc, format, a...))
}

// IsInternal returns true if the error has been marked as an internal error.
func IsInternal(err error) bool {
	var internal internalError
	return errors.As(err, &internal)
}

type internalError struct {
	err error
}

func (err internalError) Error() string {
	return fmt.Sprintf("internal error in the tensor op lowering. This is a bug in the compiler pipeline. Error:\n%+v", err.err)
}

func (err internalError) Unwrap() error {
	return err.err
}

func (err internalError) Format(s fmt.State, verb rune) {
	format(err, s, verb)
}

func (err errorWithLoc) Error() (s string) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		s = fmt.Sprintf("recovered from panic when building error message: %T:\n%v", err.err, string(debug.Stack()))
	}()
	if !err.loc.IsKnown() {
		return err.err.Error()
	}
	return LocString(err.loc) + " " + err.err.Error()
}

func (err errorWithLoc) Unwrap() error {
	return err.err
}

func (err errorWithLoc) Format(s fmt.State, verb rune) {
	format(err, s, verb)
}

// Loc returns the location of the error.
func (err errorWithLoc) Loc() ir.Location {
	return err.loc
}

// Err returns the error without location.
func (err errorWithLoc) Err() error {
	return err.err
}

// LocString returns a string representation of a location for error messages.
func LocString(loc ir.Location) string {
	return loc.String() + ":"
}
