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
	"github.com/gx-org/tflower/build/ir"
	"github.com/gx-org/tflower/tf/tfop"
	"github.com/gx-org/tflower/tf/tftypes"
	"github.com/pkg/errors"
)

func (e *emitter) emitOperand(node *Node, op *tfop.OpInfo, i int) (int, error) {
	operand := op.Operands[i]
	v := op.Inst.Operand(i)
	switch operand.Class {
	case tfop.Input:
		if _, isMarker := v.(*ir.MetatypeInst); !isMarker {
			return i + 1, e.addInput(node, v)
		}
		j := i + 1
		for ; j < len(op.Operands) && op.Operands[j].Class == tfop.InputElt; j++ {
			if err := e.addInput(node, op.Inst.Operand(j)); err != nil {
				return j, err
			}
		}
		return j, nil
	case tfop.Normal:
		val, err := scalarAttr(tfop.AttrOperand(v))
		if err != nil {
			return i + 1, e.operandError(op, i, err)
		}
		node.SetAttr(operand.Name, val)
		return i + 1, nil
	case tfop.DType:
		lit, ok := tfop.AttrOperand(v).(*ir.IntegerLiteral)
		if !ok {
			return i + 1, e.operandError(op, i, errors.Errorf("data type is not an integer literal"))
		}
		node.SetAttr(operand.Name, TypeAttr(tftypes.DataType(lit.Value)))
		return i + 1, nil
	case tfop.Tensor:
		t, next, err := tensorAttr(op, i)
		if err != nil {
			return next, e.operandError(op, i, err)
		}
		node.SetAttr(operand.Name, TensorAttr(t))
		return next, nil
	case tfop.Shape:
		dims, next, err := shapeDims(op, i)
		if err != nil {
			return next, e.operandError(op, i, err)
		}
		node.SetAttr(operand.Name, ShapeAttr(NewShape(tftypes.Invalid, dims...)))
		return next, nil
	case tfop.Array:
		list, next, err := listAttr(op, i)
		if err != nil {
			return next, e.operandError(op, i, err)
		}
		node.SetAttr(operand.Name, ListAttr(list))
		return next, nil
	case tfop.ShapeArray:
		list, next, err := shapeListAttr(op, i)
		if err != nil {
			return next, e.operandError(op, i, err)
		}
		node.SetAttr(operand.Name, ListAttr(list))
		return next, nil
	}
	return i + 1, e.operandError(op, i, errors.Errorf("unexpected %s operand", operand.Class))
}

func (e *emitter) operandError(op *tfop.OpInfo, i int, err error) error {
	return e.errorf(op.Loc(), "op %s operand %d %q: %v", op.OpName, i, op.Operands[i].String(), err)
}

// elements returns the elements following the metatype marker of a
// canonical array operand.
func elements(op *tfop.OpInfo, i int) (*ir.MetatypeInst, []ir.Inst, int, error) {
	marker, ok := op.Inst.Operand(i).(*ir.MetatypeInst)
	if !ok {
		return nil, nil, i + 1, errors.Errorf("array operand is not canonical: %T instead of a metatype marker", op.Inst.Operand(i))
	}
	j := i + 1
	var elts []ir.Inst
	for ; j < len(op.Operands) && op.Operands[j].Class == tfop.ArrayElement; j++ {
		lit := tfop.AttrOperand(op.Inst.Operand(j))
		if lit == nil {
			return nil, nil, j, errors.Errorf("array element %d is not a literal", j)
		}
		elts = append(elts, lit)
	}
	return marker, elts, j, nil
}

func scalarAttr(lit ir.Inst) (*AttrValue, error) {
	switch litT := lit.(type) {
	case *ir.IntegerLiteral:
		if litT.Typ.Width == 1 {
			return BoolAttr(litT.Value != 0), nil
		}
		return IntAttr(litT.Value), nil
	case *ir.FloatLiteral:
		return FloatAttr(litT.Value), nil
	case *ir.StringLiteral:
		return StringAttr(litT.Value), nil
	case *ir.MetatypeInst:
		dt := tftypes.ConvertType(litT.Instance)
		if !dt.IsKnown() {
			return nil, errors.Errorf("type %s has no runtime data type", litT.Instance)
		}
		return TypeAttr(dt), nil
	}
	return nil, errors.Errorf("%T is not a literal", lit)
}

func appendScalar(t *Tensor, lit ir.Inst) error {
	var f float64
	var i int64
	switch litT := lit.(type) {
	case *ir.IntegerLiteral:
		f, i = float64(litT.Value), litT.Value
	case *ir.FloatLiteral:
		f, i = litT.Value, int64(litT.Value)
	default:
		return errors.Errorf("%T is not a number literal", lit)
	}
	if t.DType.IsFloat() {
		t.Floats = append(t.Floats, f)
	} else {
		t.Ints = append(t.Ints, i)
	}
	return nil
}

func tensorAttr(op *tfop.OpInfo, i int) (*Tensor, int, error) {
	lit := tfop.AttrOperand(op.Inst.Operand(i))
	if lit == nil {
		return nil, i + 1, errors.Errorf("tensor value is not a literal")
	}
	if _, isMarker := lit.(*ir.MetatypeInst); !isMarker {
		dt := tftypes.ConvertType(lit.Type())
		t := &Tensor{DType: dt, Shape: NewShape(dt)}
		return t, i + 1, appendScalar(t, lit)
	}
	marker, elts, next, err := elements(op, i)
	if err != nil {
		return nil, next, err
	}
	dt := tftypes.ConvertType(marker.Instance)
	if !dt.IsKnown() {
		return nil, next, errors.Errorf("type %s has no runtime data type", marker.Instance)
	}
	t := &Tensor{DType: dt}
	for _, elt := range elts {
		if err := appendScalar(t, elt); err != nil {
			return nil, next, err
		}
	}
	t.Shape = NewShape(dt, int64(len(elts)))
	if next < len(op.Operands) && op.Operands[next].Class == tfop.Shape && op.Operands[next].Name == op.Operands[i].Name {
		var dims []int64
		if dims, next, err = shapeDims(op, next); err != nil {
			return nil, next, err
		}
		t.Shape = NewShape(dt, dims...)
	}
	return t, next, nil
}

func shapeDims(op *tfop.OpInfo, i int) ([]int64, int, error) {
	_, elts, next, err := elements(op, i)
	if err != nil {
		return nil, next, err
	}
	dims := make([]int64, len(elts))
	for j, elt := range elts {
		lit, ok := elt.(*ir.IntegerLiteral)
		if !ok {
			return nil, next, errors.Errorf("dimension %d is not an integer", j)
		}
		dims[j] = lit.Value
	}
	return dims, next, nil
}

func listKind(typ ir.Type) (AttrKind, error) {
	dt := tftypes.ConvertType(typ)
	switch {
	case dt == tftypes.Bool:
		return BoolKind, nil
	case dt.IsFloat():
		return FloatKind, nil
	case dt.IsInteger():
		return IntKind, nil
	}
	switch typT := typ.(type) {
	case *ir.MetatypeType:
		return TypeKind, nil
	case *ir.RawPointerType:
		return StringKind, nil
	case *ir.StructType:
		if len(typT.Fields) == 1 {
			return listKind(typT.Fields[0].Type)
		}
	}
	return 0, errors.Errorf("no attribute list of %s", typ)
}

func listAttr(op *tfop.OpInfo, i int) (*AttrList, int, error) {
	marker, elts, next, err := elements(op, i)
	if err != nil {
		return nil, next, err
	}
	kind, err := listKind(marker.Instance)
	if err != nil {
		return nil, next, err
	}
	list := &AttrList{Kind: kind}
	for j, elt := range elts {
		val, err := scalarAttr(elt)
		if err != nil {
			return nil, next, err
		}
		if kind == BoolKind && val.Kind == IntKind {
			val = BoolAttr(val.I != 0)
		}
		if kind == FloatKind && val.Kind == IntKind {
			val = FloatAttr(float64(val.I))
		}
		if val.Kind != kind {
			return nil, next, errors.Errorf("element %d of a list of %s is a %s", j, marker.Instance, val)
		}
		switch kind {
		case StringKind:
			list.S = append(list.S, val.S)
		case IntKind:
			list.I = append(list.I, val.I)
		case FloatKind:
			list.F = append(list.F, val.F)
		case BoolKind:
			list.B = append(list.B, val.B)
		case TypeKind:
			list.Type = append(list.Type, val.Type)
		}
	}
	return list, next, nil
}

func shapeListAttr(op *tfop.OpInfo, i int) (*AttrList, int, error) {
	count, ok := tfop.AttrOperand(op.Inst.Operand(i)).(*ir.IntegerLiteral)
	if !ok {
		return nil, i + 1, errors.Errorf("shape array is not canonical: %T instead of the number of shapes", op.Inst.Operand(i))
	}
	list := &AttrList{Kind: ShapeKind}
	next := i + 1
	for k := range count.Value {
		if next >= len(op.Operands) || op.Operands[next].Class != tfop.Shape {
			return nil, next, errors.Errorf("got %d shape(s) but want %d", k, count.Value)
		}
		var dims []int64
		var err error
		if dims, next, err = shapeDims(op, next); err != nil {
			return nil, next, err
		}
		list.Shape = append(list.Shape, NewShape(tftypes.Invalid, dims...))
	}
	return list, next, nil
}
