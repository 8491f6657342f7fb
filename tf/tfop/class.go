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

package tfop

import (
	"strings"

	"github.com/pkg/errors"
)

// Prefix of the symbolic name of builtins representing tensor ops.
const Prefix = "__tfop_"

// OperandClass classifies an operand of a tensor op.
// Inputs always come first, followed by attributes.
type OperandClass int

// Operand classes.
const (
	// Input is a tensor input. It is either:
	//   - a tensor handle,
	//   - a scalar promoted to a tensor by the scalar-to-tensor pseudo-op,
	//   - a metatype marker followed by InputElt operands forming an input list.
	Input OperandClass = iota
	// InputElt is an element of an input list. Always a tensor handle.
	InputElt

	// Normal is an attribute without modifier.
	Normal
	// DType is an integer attribute holding a runtime data type.
	DType
	// Tensor is a scalar or an array turned into a tensor.
	Tensor
	// Shape is an array of integers specifying a shape.
	Shape

	// Array is an array attribute. Its value is a metatype marker
	// of the element type.
	Array
	// ArrayElement is a continuation element of an array, a shape, or a tensor.
	ArrayElement

	// ShapeArray starts an array of shapes. Its value is the number of shapes.
	ShapeArray
)

var classSuffixes = [...]string{
	Input:        "in",
	InputElt:     "inelt",
	Normal:       "",
	DType:        "dtype",
	Tensor:       "tensor",
	Shape:        "shape",
	Array:        "array",
	ArrayElement: "elt",
	ShapeArray:   "shapearray",
}

var classNames = [...]string{
	Input:        "Input",
	InputElt:     "InputElt",
	Normal:       "Normal",
	DType:        "DType",
	Tensor:       "Tensor",
	Shape:        "Shape",
	Array:        "Array",
	ArrayElement: "ArrayElement",
	ShapeArray:   "ShapeArray",
}

// Suffix returns the modifier of the class in a symbolic name, including the
// leading '$'. The Normal class has no suffix.
func (c OperandClass) Suffix() string {
	if c == Normal {
		return ""
	}
	return "$" + classSuffixes[c]
}

// String returns the name of the class.
func (c OperandClass) String() string {
	if c < 0 || int(c) >= len(classNames) {
		return "Unknown"
	}
	return classNames[c]
}

// IsInput returns true if the class is an input class (as opposed to an attribute).
func (c OperandClass) IsInput() bool {
	return c == Input || c == InputElt
}

// ParseOperandClass returns the class given its modifier (without the leading '$').
func ParseOperandClass(suffix string) (OperandClass, bool) {
	for c, s := range classSuffixes {
		if s != "" && s == suffix {
			return OperandClass(c), true
		}
	}
	return Normal, false
}

// Operand describes an operand of a tensor op.
type Operand struct {
	// Name of the attribute. Empty for inputs and continuation elements.
	Name  string
	Class OperandClass
}

// String returns the entry of the operand in a symbolic name.
func (o Operand) String() string {
	return o.Name + o.Class.Suffix()
}

func parseOperand(entry string) (Operand, error) {
	i := strings.LastIndexByte(entry, '$')
	if i < 0 {
		return Operand{Name: entry, Class: Normal}, nil
	}
	class, ok := ParseOperandClass(entry[i+1:])
	if !ok {
		return Operand{}, errors.Errorf("unknown operand modifier %q in %q", entry[i+1:], entry)
	}
	return Operand{Name: entry[:i], Class: class}, nil
}

// Encode returns the symbolic name of a tensor op.
// The first implicitInputs operands need to be inputs without names and are
// omitted from the name.
func Encode(opName string, implicitInputs int, operands []Operand) string {
	var s strings.Builder
	s.WriteString(Prefix)
	s.WriteString(opName)
	for _, op := range operands[implicitInputs:] {
		s.WriteString(",")
		s.WriteString(op.String())
	}
	return s.String()
}
