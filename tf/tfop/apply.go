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
	"github.com/gx-org/tflower/internal/srcloc"
	"github.com/gx-org/tflower/tf/tftypes"
	"github.com/pkg/errors"
)

const (
	// TensorFromScalars1D is the library function building a 1-D tensor from
	// an array of scalars.
	TensorFromScalars1D = "_TFTensorFromScalars"

	// TensorFromScalarsND is the library function building a N-D tensor from
	// an array of scalars and an array of dimensions.
	TensorFromScalarsND = "_TFTensorFromScalarsND"
)

var (
	const1DName = Encode("Const", 0, []Operand{
		{Name: "dtype", Class: DType},
		{Name: "value", Class: Tensor},
	})
	constNDName = Encode("Const", 0, []Operand{
		{Name: "dtype", Class: DType},
		{Name: "value", Class: Tensor},
		{Name: "value", Class: Shape},
	})
)

func applyElementType(apply *ir.ApplyInst) ir.Type {
	if len(apply.Subs) > 0 {
		return apply.Subs[0]
	}
	if elem, ok := tftypes.IsTensorHandle(apply.Typ); ok {
		return elem
	}
	return nil
}

// IsDecodableApply returns true if inst is a call to a library function
// building a tensor from scalars which can be rewritten as a Const op.
func IsDecodableApply(inst ir.Inst) bool {
	apply, ok := inst.(*ir.ApplyInst)
	if !ok {
		return false
	}
	if apply.Callee != TensorFromScalars1D && apply.Callee != TensorFromScalarsND {
		return false
	}
	elem := applyElementType(apply)
	return elem != nil && tftypes.IsValidElementType(elem)
}

// isConstantArray returns true if v is a constant array of literals
// accepted by valid.
func isConstantArray(v ir.Value, valid func(literalKind) bool) bool {
	arr, ok := AttrOperand(v).(*ir.ArrayInst)
	if !ok {
		return false
	}
	for _, el := range arr.Operands() {
		if !valid(kindOf(AttrOperand(el))) {
			return false
		}
	}
	return true
}

func isInt(k literalKind) bool {
	return k == intLiteral
}

// DecodeApply replaces a call accepted by IsDecodableApply by the
// equivalent Const op. The data type of the tensor is inserted as a new
// literal. The call is erased from its function once all its uses point to
// the new op, which is returned.
//
// If the scalars (or the dimensions) are not constant arrays, the call
// is left unchanged and nil is returned.
func DecodeApply(inst ir.Inst) (*ir.BuiltinInst, error) {
	if !IsDecodableApply(inst) {
		return nil, fmterr.Internalf(inst.Loc(), "%T cannot be decoded as a tensor op", inst)
	}
	apply := inst.(*ir.ApplyInst)
	fn := apply.Parent()
	if fn == nil {
		return nil, fmterr.Internalf(apply.Loc(), "call to %s is not in a function", apply.Callee)
	}
	name, wantArgs := const1DName, 1
	if apply.Callee == TensorFromScalarsND {
		name, wantArgs = constNDName, 2
	}
	if apply.NumOperands() != wantArgs {
		return nil, fmterr.Wrapf(srcloc.UserLocation(apply), ErrMalformedOp, "%s expects %d argument(s) but got %d", apply.Callee, wantArgs, apply.NumOperands())
	}
	if !isConstantArray(apply.Operand(0), isScalar) {
		return nil, nil
	}
	if apply.Callee == TensorFromScalarsND && !isConstantArray(apply.Operand(1), isInt) {
		return nil, nil
	}
	dt := tftypes.ConvertType(applyElementType(apply))
	b := ir.NewBuilder(fn).Before(apply)
	ops := append([]ir.Value{b.IntegerLiteral(int64(dt), ir.IntType(32))}, apply.Operands()...)
	op := b.Builtin(name, apply.Typ, ops...)
	if _, err := fn.Replace(apply, op); err != nil {
		return nil, fmterr.Internal(errors.WithStack(err))
	}
	return op, nil
}
