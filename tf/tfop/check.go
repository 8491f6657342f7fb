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
	"github.com/gx-org/tflower/build/fmterr"
	"github.com/gx-org/tflower/build/ir"
	"github.com/gx-org/tflower/tf/tftypes"
	"github.com/pkg/errors"
)

type literalKind int

const (
	notLiteral literalKind = iota
	intLiteral
	floatLiteral
	stringLiteral
	typeLiteral
)

var literalKindNames = [...]string{
	notLiteral:    "non-constant",
	intLiteral:    "integer",
	floatLiteral:  "float",
	stringLiteral: "string",
	typeLiteral:   "type",
}

func (k literalKind) String() string {
	return literalKindNames[k]
}

func kindOf(inst ir.Inst) literalKind {
	switch inst.(type) {
	case *ir.IntegerLiteral:
		return intLiteral
	case *ir.FloatLiteral:
		return floatLiteral
	case *ir.StringLiteral:
		return stringLiteral
	case *ir.MetatypeInst:
		return typeLiteral
	}
	return notLiteral
}

// kindOfType returns the kind of literal holding values of a given type.
func kindOfType(typ ir.Type) literalKind {
	switch typT := typ.(type) {
	case *ir.BuiltinIntType:
		return intLiteral
	case *ir.BuiltinFloatType:
		return floatLiteral
	case *ir.RawPointerType:
		return stringLiteral
	case *ir.MetatypeType:
		return typeLiteral
	case *ir.StructType:
		if len(typT.Fields) == 1 {
			return kindOfType(typT.Fields[0].Type)
		}
	}
	return notLiteral
}

func isScalar(k literalKind) bool {
	return k == intLiteral || k == floatLiteral
}

// continuation returns the index of the first operand after i which is not of class cl.
func (op *OpInfo) continuation(i int, cl OperandClass) int {
	j := i + 1
	for j < len(op.Operands) && op.Operands[j].Class == cl {
		j++
	}
	return j
}

// CheckOperands verifies that all operands of the op are correctly formed:
// inputs are tensors and attributes are constants compatible with their classes.
// It returns nil if the operands are valid.
func (op *OpInfo) CheckOperands() error {
	errs := &fmterr.Errors{}
	loc := op.Loc()
	errs.Push(fmterr.PrefixWith("op %s: ", op.OpName))
	for i := 0; i < len(op.Operands); {
		next, err := op.checkOperand(i)
		if err != nil {
			errs.Append(fmterr.Position(loc, errors.WithMessagef(err, "operand %d %q", i, op.Operands[i].String())))
		}
		if next <= i {
			next = i + 1
		}
		i = next
	}
	errs.Pop()
	return errs.ToError()
}

func invalidAttr(format string, a ...any) error {
	return errors.Wrapf(ErrInvalidAttr, format, a...)
}

func (op *OpInfo) checkOperand(i int) (int, error) {
	switch op.Operands[i].Class {
	case Input:
		return op.checkInput(i)
	case InputElt:
		return i + 1, errors.Wrapf(ErrInvalidInput, "input list element without a list")
	case Normal:
		lit := op.AttrOperand(i)
		if _, isArray := lit.(*ir.ArrayInst); isArray {
			return i + 1, invalidAttr("array value requires the %s modifier", Array.Suffix())
		}
		if lit == nil {
			return i + 1, invalidAttr("value is not a constant")
		}
		return i + 1, nil
	case DType:
		lit, ok := op.AttrOperand(i).(*ir.IntegerLiteral)
		if !ok {
			return i + 1, invalidAttr("data type is not an integer constant")
		}
		if !tftypes.DataType(lit.Value).IsKnown() {
			return i + 1, invalidAttr("%d is not a valid data type", lit.Value)
		}
		return i + 1, nil
	case Tensor:
		return op.checkTensor(i)
	case Shape:
		_, next, err := op.shapeDims(i)
		return next, err
	case Array:
		_, next, err := op.arrayElements(i)
		return next, err
	case ShapeArray:
		return op.checkShapeArray(i)
	case ArrayElement:
		return i + 1, invalidAttr("array element without an array")
	}
	return i + 1, invalidAttr("unknown operand class %d", op.Operands[i].Class)
}

func (op *OpInfo) checkInput(i int) (int, error) {
	v := op.Inst.Operand(i)
	if op.IsScalarToTensor() {
		if tftypes.IsValidElementType(v.Type()) {
			return i + 1, nil
		}
		if lit := AttrOperand(v); lit != nil && tftypes.IsValidElementType(lit.Type()) {
			return i + 1, nil
		}
		return i + 1, errors.Wrapf(ErrInvalidInput, "%s cannot be promoted to a tensor", v.Type())
	}
	end := op.continuation(i, InputElt)
	if marker, isMarker := v.(*ir.MetatypeInst); isMarker {
		if !tftypes.IsTensorValue(marker.Instance) {
			return end, errors.Wrapf(ErrInvalidInput, "input list of %s", marker.Instance)
		}
		for j := i + 1; j < end; j++ {
			if elType := op.Inst.Operand(j).Type(); !tftypes.IsTensorValue(elType) {
				return end, errors.Wrapf(ErrInvalidInput, "input list element %d of type %s is not a tensor", j, elType)
			}
		}
		return end, nil
	}
	if end > i+1 {
		return end, errors.Wrapf(ErrInvalidInput, "input list elements need to follow a metatype marker")
	}
	if arrayType, isArray := v.Type().(*ir.ArrayType); isArray {
		if !tftypes.IsTensorValue(arrayType.Elem) {
			return end, errors.Wrapf(ErrInvalidInput, "input list of %s", arrayType.Elem)
		}
		if _, ok := lookThrough(v).(*ir.ArrayInst); !ok {
			return end, errors.Wrapf(ErrInvalidInput, "input list is not a constant array")
		}
		return end, nil
	}
	if !tftypes.IsTensorValue(v.Type()) {
		return end, errors.Wrapf(ErrInvalidInput, "%s is not a tensor", v.Type())
	}
	return end, nil
}

// arrayElements returns the elements of an array attribute, either
// a constant array or a metatype marker followed by array elements.
func (op *OpInfo) arrayElements(i int) ([]ir.Inst, int, error) {
	end := op.continuation(i, ArrayElement)
	var elems []ir.Inst
	kind := notLiteral
	switch lit := op.AttrOperand(i).(type) {
	case *ir.ArrayInst:
		if end > i+1 {
			return nil, end, invalidAttr("array value followed by array elements")
		}
		kind = kindOfType(lit.Typ.Elem)
		for j, el := range lit.Operands() {
			elLit := AttrOperand(el)
			if elLit == nil {
				return nil, end, invalidAttr("array element %d is not a constant", j)
			}
			elems = append(elems, elLit)
		}
	case *ir.MetatypeInst:
		kind = kindOfType(lit.Instance)
		for j := i + 1; j < end; j++ {
			elLit := op.AttrOperand(j)
			if elLit == nil {
				return nil, end, invalidAttr("array element %d is not a constant", j)
			}
			elems = append(elems, elLit)
		}
	default:
		return nil, end, invalidAttr("value is not a constant array")
	}
	if kind == notLiteral {
		return nil, end, invalidAttr("array elements cannot be constants")
	}
	for j, el := range elems {
		if elKind := kindOf(el); elKind != kind {
			return nil, end, invalidAttr("array element %d is a %s constant but want a %s constant", j, elKind, kind)
		}
	}
	return elems, end, nil
}

// shapeDims returns the dimensions of a shape attribute.
func (op *OpInfo) shapeDims(i int) ([]int64, int, error) {
	elems, end, err := op.arrayElements(i)
	if err != nil {
		return nil, end, err
	}
	dims := make([]int64, len(elems))
	for j, el := range elems {
		lit, ok := el.(*ir.IntegerLiteral)
		if !ok {
			return nil, end, invalidAttr("shape dimension %d is not an integer", j)
		}
		if lit.Value < -1 {
			return nil, end, invalidAttr("invalid shape dimension %d: %d", j, lit.Value)
		}
		dims[j] = lit.Value
	}
	return dims, end, nil
}

// tensorScalars returns the scalars of a tensor attribute.
func (op *OpInfo) tensorScalars(i int) ([]ir.Inst, int, error) {
	lit := op.AttrOperand(i)
	switch lit.(type) {
	case *ir.IntegerLiteral, *ir.FloatLiteral:
		end := op.continuation(i, ArrayElement)
		if end > i+1 {
			return nil, end, invalidAttr("scalar value followed by array elements")
		}
		return []ir.Inst{lit}, end, nil
	case *ir.ArrayInst, *ir.MetatypeInst:
		elems, end, err := op.arrayElements(i)
		if err != nil {
			return nil, end, err
		}
		for j, el := range elems {
			if !isScalar(kindOf(el)) {
				return nil, end, invalidAttr("tensor element %d is not a number", j)
			}
		}
		return elems, end, nil
	}
	return nil, i + 1, invalidAttr("value is neither a scalar nor an array of scalars")
}

func (op *OpInfo) checkTensor(i int) (int, error) {
	scalars, end, err := op.tensorScalars(i)
	if err != nil {
		return end, err
	}
	if marker, ok := op.AttrOperand(i).(*ir.MetatypeInst); ok && !tftypes.IsValidElementType(marker.Instance) {
		return end, invalidAttr("%s is not a valid tensor element type", marker.Instance)
	}
	if end >= len(op.Operands) {
		return end, nil
	}
	shape := op.Operands[end]
	if shape.Class != Shape || shape.Name != op.Operands[i].Name {
		return end, nil
	}
	dims, _, err := op.shapeDims(end)
	if err != nil {
		// The error is reported when the shape operand is checked.
		return end, nil
	}
	size := int64(1)
	for _, dim := range dims {
		size *= dim
	}
	if size != int64(len(scalars)) {
		return end, invalidAttr("tensor has %d element(s) but its shape %v has %d", len(scalars), dims, size)
	}
	return end, nil
}

func (op *OpInfo) checkShapeArray(i int) (int, error) {
	switch lit := op.AttrOperand(i).(type) {
	case *ir.IntegerLiteral:
		if lit.Value < 0 {
			return i + 1, invalidAttr("shape array declares a negative number of shapes: %d", lit.Value)
		}
		j := i + 1
		for k := range lit.Value {
			if j >= len(op.Operands) || op.Operands[j].Class != Shape || op.Operands[j].Name != "" {
				return j, invalidAttr("shape array declares %d shape(s) but has %d", lit.Value, k)
			}
			var err error
			if _, j, err = op.shapeDims(j); err != nil {
				return j, errors.WithMessagef(err, "shape %d", k)
			}
		}
		if j < len(op.Operands) && op.Operands[j].Class == Shape && op.Operands[j].Name == "" {
			return j, invalidAttr("shape array declares %d shape(s) but has more", lit.Value)
		}
		return j, nil
	case *ir.ArrayInst:
		for k, el := range lit.Operands() {
			shape, ok := AttrOperand(el).(*ir.ArrayInst)
			if !ok {
				return i + 1, invalidAttr("shape %d is not a constant array", k)
			}
			for d, dim := range shape.Operands() {
				if _, ok := AttrOperand(dim).(*ir.IntegerLiteral); !ok {
					return i + 1, invalidAttr("dimension %d of shape %d is not an integer", d, k)
				}
			}
		}
		return i + 1, nil
	}
	return i + 1, invalidAttr("value is neither a number of shapes nor an array of shapes")
}
