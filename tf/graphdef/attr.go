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

package graphdef

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gx-org/backend/shape"
	"github.com/gx-org/tflower/tf/tftypes"
)

// AttrKind is the kind of value stored in an attribute.
type AttrKind int

// Attribute kinds.
const (
	StringKind AttrKind = iota
	IntKind
	FloatKind
	BoolKind
	TypeKind
	ShapeKind
	TensorKind
	ListKind
)

type (
	// AttrValue is the value of a node attribute.
	AttrValue struct {
		Kind AttrKind

		S string
		I int64
		F float64
		B bool
		// Type of a TypeKind attribute.
		Type tftypes.DataType
		// Shape of a ShapeKind attribute. A nil shape has an unknown rank.
		Shape *shape.Shape
		// Tensor of a TensorKind attribute.
		Tensor *Tensor
		// List of a ListKind attribute.
		List *AttrList
	}

	// AttrList is a list of attribute values of the same kind.
	AttrList struct {
		Kind AttrKind

		S     []string
		I     []int64
		F     []float64
		B     []bool
		Type  []tftypes.DataType
		Shape []*shape.Shape
	}

	// Tensor is a constant tensor.
	// Values of integer and boolean tensors are stored in Ints,
	// values of floating point tensors in Floats.
	Tensor struct {
		DType  tftypes.DataType
		Shape  *shape.Shape
		Ints   []int64
		Floats []float64
	}
)

// StringAttr returns a string attribute.
func StringAttr(s string) *AttrValue { return &AttrValue{Kind: StringKind, S: s} }

// IntAttr returns an integer attribute.
func IntAttr(i int64) *AttrValue { return &AttrValue{Kind: IntKind, I: i} }

// FloatAttr returns a float attribute.
func FloatAttr(f float64) *AttrValue { return &AttrValue{Kind: FloatKind, F: f} }

// BoolAttr returns a boolean attribute.
func BoolAttr(b bool) *AttrValue { return &AttrValue{Kind: BoolKind, B: b} }

// TypeAttr returns a data type attribute.
func TypeAttr(dt tftypes.DataType) *AttrValue { return &AttrValue{Kind: TypeKind, Type: dt} }

// ShapeAttr returns a shape attribute. A nil shape has an unknown rank.
func ShapeAttr(sh *shape.Shape) *AttrValue { return &AttrValue{Kind: ShapeKind, Shape: sh} }

// TensorAttr returns a tensor attribute.
func TensorAttr(t *Tensor) *AttrValue { return &AttrValue{Kind: TensorKind, Tensor: t} }

// ListAttr returns a list attribute.
func ListAttr(l *AttrList) *AttrValue { return &AttrValue{Kind: ListKind, List: l} }

// Len returns the number of elements in the list.
func (l *AttrList) Len() int {
	switch l.Kind {
	case StringKind:
		return len(l.S)
	case IntKind:
		return len(l.I)
	case FloatKind:
		return len(l.F)
	case BoolKind:
		return len(l.B)
	case TypeKind:
		return len(l.Type)
	case ShapeKind:
		return len(l.Shape)
	}
	return 0
}

// NewShape returns the shape of a tensor given the length of its axes.
// A negative length is an unknown dimension.
func NewShape(dt tftypes.DataType, dims ...int64) *shape.Shape {
	sh := &shape.Shape{DType: dt.BackendDType(), AxisLengths: make([]int, len(dims))}
	for i, dim := range dims {
		sh.AxisLengths[i] = int(dim)
	}
	return sh
}

// NumValues returns the number of values stored in the tensor.
func (t *Tensor) NumValues() int {
	if t.DType.IsFloat() {
		return len(t.Floats)
	}
	return len(t.Ints)
}

func shapeString(sh *shape.Shape) string {
	if sh == nil {
		return "<unknown rank>"
	}
	dims := make([]string, len(sh.AxisLengths))
	for i, dim := range sh.AxisLengths {
		if dim < 0 {
			dims[i] = "?"
			continue
		}
		dims[i] = strconv.Itoa(dim)
	}
	return "[" + strings.Join(dims, ",") + "]"
}

func join[T any](vals []T, f func(T) string) string {
	ss := make([]string, len(vals))
	for i, v := range vals {
		ss[i] = f(v)
	}
	return "[" + strings.Join(ss, ", ") + "]"
}

func (t *Tensor) String() string {
	var vals string
	if t.DType.IsFloat() {
		vals = join(t.Floats, func(f float64) string { return strconv.FormatFloat(f, 'g', -1, 64) })
	} else {
		vals = join(t.Ints, func(i int64) string { return strconv.FormatInt(i, 10) })
	}
	return fmt.Sprintf("%s%s%s", t.DType, shapeString(t.Shape), vals)
}

func (l *AttrList) String() string {
	switch l.Kind {
	case StringKind:
		return join(l.S, strconv.Quote)
	case IntKind:
		return join(l.I, func(i int64) string { return strconv.FormatInt(i, 10) })
	case FloatKind:
		return join(l.F, func(f float64) string { return strconv.FormatFloat(f, 'g', -1, 64) })
	case BoolKind:
		return join(l.B, strconv.FormatBool)
	case TypeKind:
		return join(l.Type, tftypes.DataType.String)
	case ShapeKind:
		return join(l.Shape, shapeString)
	}
	return "[]"
}

func (v *AttrValue) String() string {
	switch v.Kind {
	case StringKind:
		return strconv.Quote(v.S)
	case IntKind:
		return strconv.FormatInt(v.I, 10)
	case FloatKind:
		return strconv.FormatFloat(v.F, 'g', -1, 64)
	case BoolKind:
		return strconv.FormatBool(v.B)
	case TypeKind:
		return v.Type.String()
	case ShapeKind:
		return shapeString(v.Shape)
	case TensorKind:
		return v.Tensor.String()
	case ListKind:
		return v.List.String()
	}
	return fmt.Sprintf("<invalid attribute kind %d>", v.Kind)
}
