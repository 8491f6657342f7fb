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

// Package ir is a typed, straight-line intermediate representation of
// functions holding tensor operations.
//
// Instructions are values. Their operand lists are immutable once built:
// the only way to change a use edge is Function.ReplaceAllUsesWith, which
// reports the users it updated.
package ir

import (
	"fmt"
	"strconv"
	"strings"
)

type (
	// Value is anything that can be used as an operand.
	Value interface {
		// Type of the value.
		Type() Type
		value()
	}

	// Location in source code.
	Location struct {
		File      string
		Line, Col int

		// InlinedAt is the location of the call site if the
		// instruction has been inlined from another function.
		InlinedAt *Location
	}

	// Inst is an instruction in a function.
	Inst interface {
		Value

		// Loc returns the location of the instruction.
		Loc() Location

		// Operands returns a copy of the operands of the instruction.
		Operands() []Value

		// NumOperands returns the number of operands.
		NumOperands() int

		// Operand returns the ith operand.
		Operand(i int) Value

		// Parent returns the function owning the instruction.
		// Returns nil if the instruction has been erased or not inserted yet.
		Parent() *Function

		base() *instBase
	}

	// Argument of a function.
	Argument struct {
		Index int
		Name  string
		Typ   Type

		fn *Function
	}

	instBase struct {
		loc    Location
		ops    []Value
		parent *Function
	}
)

// IsKnown returns true if the location points to a source file.
func (l Location) IsKnown() bool {
	return l.File != ""
}

// String representation of the location.
func (l Location) String() string {
	if !l.IsKnown() {
		return "<unknown>"
	}
	var s strings.Builder
	s.WriteString(l.File)
	if l.Line > 0 {
		s.WriteString(":" + strconv.Itoa(l.Line))
		if l.Col > 0 {
			s.WriteString(":" + strconv.Itoa(l.Col))
		}
	}
	return s.String()
}

// Type of the argument.
func (a *Argument) Type() Type { return a.Typ }

// Function owning the argument.
func (a *Argument) Function() *Function { return a.fn }

func (*Argument) value() {}

func (a *Argument) String() string {
	return fmt.Sprintf("%s: %s", a.Name, a.Typ)
}

func (b *instBase) base() *instBase { return b }

func (*instBase) value() {}

// Loc returns the location of the instruction.
func (b *instBase) Loc() Location { return b.loc }

// Operands returns a copy of the operand list.
func (b *instBase) Operands() []Value {
	return append([]Value{}, b.ops...)
}

// NumOperands returns the number of operands.
func (b *instBase) NumOperands() int { return len(b.ops) }

// Operand returns the ith operand.
func (b *instBase) Operand(i int) Value { return b.ops[i] }

// Parent returns the function owning the instruction.
func (b *instBase) Parent() *Function { return b.parent }
