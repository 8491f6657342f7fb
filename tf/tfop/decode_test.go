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

package tfop_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/gx-org/tflower/build/ir"
	"github.com/gx-org/tflower/internal/irtest"
	"github.com/gx-org/tflower/tf/tfop"
	"github.com/pkg/errors"
)

// newOp builds a function with a single builtin using numOperands integer literals.
func newOp(name string, numOperands int) *ir.BuiltinInst {
	fn := ir.NewFunction("f", nil, nil)
	b := ir.NewBuilder(fn).At(ir.Location{File: "main.swift", Line: 4, Col: 2})
	ops := make([]ir.Value, numOperands)
	for i := range ops {
		ops[i] = b.IntegerLiteral(int64(i), ir.IntType(64))
	}
	return b.Builtin(name, irtest.FloatTensor, ops...)
}

func TestDecodeRoundTrip(t *testing.T) {
	tests := []struct {
		name        string
		numOperands int
		implicit    int
		operands    []tfop.Operand
	}{
		{
			name:        "__tfop_Add",
			numOperands: 2,
			implicit:    2,
			operands:    []tfop.Operand{{Class: tfop.Input}, {Class: tfop.Input}},
		},
		{
			name:        "__tfop_Add,$in,$in,device",
			numOperands: 3,
			operands: []tfop.Operand{
				{Class: tfop.Input},
				{Class: tfop.Input},
				{Name: "device", Class: tfop.Normal},
			},
		},
		{
			name:        "__tfop_Const,dtype$dtype,value$tensor,$elt,$elt,value$shape,$elt",
			numOperands: 6,
			operands: []tfop.Operand{
				{Name: "dtype", Class: tfop.DType},
				{Name: "value", Class: tfop.Tensor},
				{Class: tfop.ArrayElement},
				{Class: tfop.ArrayElement},
				{Name: "value", Class: tfop.Shape},
				{Class: tfop.ArrayElement},
			},
		},
		{
			name:        "__tfop_Pack,$in,$inelt,$inelt,axis",
			numOperands: 4,
			operands: []tfop.Operand{
				{Class: tfop.Input},
				{Class: tfop.InputElt},
				{Class: tfop.InputElt},
				{Name: "axis", Class: tfop.Normal},
			},
		},
		{
			name:        "__tfop_Infeed,shapes$shapearray,$shape,$elt,$shape,dtypes$array,$elt",
			numOperands: 6,
			operands: []tfop.Operand{
				{Name: "shapes", Class: tfop.ShapeArray},
				{Class: tfop.Shape},
				{Class: tfop.ArrayElement},
				{Class: tfop.Shape},
				{Name: "dtypes", Class: tfop.Array},
				{Class: tfop.ArrayElement},
			},
		},
		{
			name:        "__tfop_MatMul,transpose_a,transpose_b",
			numOperands: 4,
			implicit:    2,
			operands: []tfop.Operand{
				{Class: tfop.Input},
				{Class: tfop.Input},
				{Name: "transpose_a", Class: tfop.Normal},
				{Name: "transpose_b", Class: tfop.Normal},
			},
		},
	}
	for i, test := range tests {
		inst := newOp(test.name, test.numOperands)
		op, err := tfop.Decode(inst)
		if err != nil {
			t.Errorf("test %d: cannot decode %q: %v", i, test.name, err)
			continue
		}
		if op == nil {
			t.Errorf("test %d: %q has not been recognized as a tensor op", i, test.name)
			continue
		}
		if op.ImplicitInputs != test.implicit {
			t.Errorf("test %d: got %d implicit input(s) but want %d", i, op.ImplicitInputs, test.implicit)
		}
		if diff := cmp.Diff(test.operands, op.Operands); diff != "" {
			t.Errorf("test %d: unexpected operands (-want +got):\n%s", i, diff)
		}
		if got := op.SymbolicName(); got != test.name {
			t.Errorf("test %d: got symbolic name %q but want %q", i, got, test.name)
		}
	}
}

func TestDecodeNotAnOp(t *testing.T) {
	fn := ir.NewFunction("f", []ir.Type{irtest.FloatTensor}, nil)
	b := ir.NewBuilder(fn)
	insts := []ir.Inst{
		b.IntegerLiteral(1, ir.IntType(32)),
		b.Builtin("int_add_Int64", ir.IntType(64)),
		b.Apply("print", nil, ir.Void(), fn.Params[0]),
	}
	for i, inst := range insts {
		op, err := tfop.Decode(inst)
		if op != nil || err != nil {
			t.Errorf("test %d: got (%v, %v) but want (nil, nil)", i, op, err)
		}
	}
}

func TestDecodeMalformed(t *testing.T) {
	tests := []struct {
		name        string
		numOperands int
	}{
		{name: "__tfop_", numOperands: 0},
		{name: "__tfop_Add,$in,$in", numOperands: 1},
		{name: "__tfop_Add,x$unknown", numOperands: 1},
		{name: "__tfop_Add,axis,$in", numOperands: 2},
		{name: "__tfop_Add,$inelt", numOperands: 1},
		{name: "__tfop_Add,axis,$inelt", numOperands: 2},
		{name: "__tfop_Add,$elt", numOperands: 1},
		{name: "__tfop_Add,axis,$elt", numOperands: 2},
		{name: "__tfop_Add,$dtype", numOperands: 1},
		{name: "__tfop_Add,$shape", numOperands: 1},
		{name: "__tfop_Add,x$array,a$elt", numOperands: 2},
	}
	for i, test := range tests {
		op, err := tfop.Decode(newOp(test.name, test.numOperands))
		if !errors.Is(err, tfop.ErrMalformedOp) {
			t.Errorf("test %d: decoding %q: got error %v but want %v", i, test.name, err, tfop.ErrMalformedOp)
		}
		if op != nil {
			t.Errorf("test %d: decoding %q returned an op: %v", i, test.name, op)
		}
	}
}

func TestDecodeErrorPosition(t *testing.T) {
	_, err := tfop.Decode(newOp("__tfop_Add,x$unknown", 1))
	if err == nil {
		t.Fatal("expected an error")
	}
	const want = "main.swift:4:2:"
	if got := err.Error(); !strings.HasPrefix(got, want) {
		t.Errorf("error %q does not start with %q", got, want)
	}
}

func TestOperandClassSuffix(t *testing.T) {
	for cl := tfop.Input; cl <= tfop.ShapeArray; cl++ {
		if cl == tfop.Normal {
			continue
		}
		got, ok := tfop.ParseOperandClass(strings.TrimPrefix(cl.Suffix(), "$"))
		if !ok {
			t.Errorf("%s: cannot parse suffix %q", cl, cl.Suffix())
			continue
		}
		if got != cl {
			t.Errorf("%s: suffix %q parsed as %s", cl, cl.Suffix(), got)
		}
	}
	if _, ok := tfop.ParseOperandClass("foo"); ok {
		t.Errorf("unknown suffix has been parsed")
	}
}

func TestFindAttr(t *testing.T) {
	fn := ir.NewFunction("f", []ir.Type{irtest.FloatTensor}, nil)
	b := ir.NewBuilder(fn)
	inst := b.Builtin("__tfop_Cast,$in,DstT$dtype,device", irtest.FloatTensor,
		fn.Params[0],
		b.IntegerLiteral(3, ir.IntType(32)),
		b.StringLiteral("/device:GPU:0"),
	)
	op, err := tfop.Decode(inst)
	if err != nil {
		t.Fatal(err)
	}
	if got := op.FindAttr("DstT"); got != 1 {
		t.Errorf("got attribute index %d but want 1", got)
	}
	if got := op.FindAttr("SrcT"); got != -1 {
		t.Errorf("got attribute index %d but want -1", got)
	}
	dev, err := op.DeviceString()
	if err != nil {
		t.Fatal(err)
	}
	if dev != "/device:GPU:0" {
		t.Errorf("got device %q but want %q", dev, "/device:GPU:0")
	}
	if op.NumInputs() != 1 {
		t.Errorf("got %d input(s) but want 1", op.NumInputs())
	}
}
