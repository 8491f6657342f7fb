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

package tftypes_test

import (
	"sync"
	"testing"

	"github.com/gx-org/backend/dtype"
	"github.com/gx-org/tflower/build/ir"
	"github.com/gx-org/tflower/tf/tftypes"
)

func stdlib(name string, field ir.Type) *ir.StructType {
	return &ir.StructType{
		Module: tftypes.StdlibModule,
		Name:   name,
		Fields: []ir.Field{{Name: "_value", Type: field}},
	}
}

func TestConvertType(t *testing.T) {
	tests := []struct {
		typ  ir.Type
		want tftypes.DataType
	}{
		{typ: ir.IntType(1), want: tftypes.Bool},
		{typ: ir.IntType(8), want: tftypes.Int8},
		{typ: ir.IntType(16), want: tftypes.Int16},
		{typ: ir.IntType(32), want: tftypes.Int32},
		{typ: ir.IntType(64), want: tftypes.Int64},
		{typ: ir.IntType(128), want: tftypes.Invalid},
		{typ: ir.FloatType(16), want: tftypes.Half},
		{typ: ir.FloatType(32), want: tftypes.Float},
		{typ: ir.FloatType(64), want: tftypes.Double},
		{typ: ir.FloatType(80), want: tftypes.Invalid},
		{typ: ir.RawPointer(), want: tftypes.Invalid},
		{typ: stdlib("Float", ir.FloatType(32)), want: tftypes.Float},
		{typ: stdlib("Double", ir.FloatType(64)), want: tftypes.Double},
		{typ: stdlib("Int", ir.IntType(64)), want: tftypes.Int64},
		{typ: stdlib("UInt8", ir.IntType(8)), want: tftypes.Uint8},
		{typ: stdlib("UInt", ir.IntType(64)), want: tftypes.Uint64},
		{typ: stdlib("Bool", ir.IntType(1)), want: tftypes.Bool},
		{typ: stdlib("Int", ir.RawPointer()), want: tftypes.Invalid},
		{typ: stdlib("String", ir.RawPointer()), want: tftypes.Invalid},
		{typ: &ir.StructType{Module: "User", Name: "Float", Fields: []ir.Field{{Type: ir.FloatType(32)}}}, want: tftypes.Invalid},
		{typ: &ir.TensorHandleType{Elem: ir.FloatType(32)}, want: tftypes.Invalid},
	}
	for i, test := range tests {
		got := tftypes.ConvertType(test.typ)
		if got != test.want {
			t.Errorf("test %d: %s: got %s but want %s", i, test.typ, got, test.want)
		}
		if valid := tftypes.IsValidElementType(test.typ); valid != (test.want != tftypes.Invalid) {
			t.Errorf("test %d: %s: IsValidElementType returned %v", i, test.typ, valid)
		}
	}
}

func TestDataType(t *testing.T) {
	if got, want := tftypes.Float.String(), "DT_FLOAT"; got != want {
		t.Errorf("got %q but want %q", got, want)
	}
	if got, want := tftypes.DataType(99).String(), "DT_UNKNOWN(99)"; got != want {
		t.Errorf("got %q but want %q", got, want)
	}
	if tftypes.Invalid.IsKnown() || tftypes.DataType(99).IsKnown() || !tftypes.Uint64.IsKnown() {
		t.Errorf("unexpected known data types")
	}
	if got := tftypes.Double.BackendDType(); got != dtype.Float64 {
		t.Errorf("got backend data type %v but want %v", got, dtype.Float64)
	}
	if got := tftypes.Int8.BackendDType(); got != dtype.Invalid {
		t.Errorf("got backend data type %v but want %v", got, dtype.Invalid)
	}
	if !tftypes.Int16.IsInteger() || tftypes.Float.IsInteger() || !tftypes.Half.IsFloat() {
		t.Errorf("unexpected integer/float classification")
	}
}

func TestClassifyValue(t *testing.T) {
	tensor := &ir.TensorHandleType{Elem: ir.FloatType(32)}
	tests := []struct {
		typ  ir.Type
		want tftypes.ValueKind
	}{
		{typ: tensor, want: tftypes.TensorHandle},
		{typ: ir.ResourceHandle(), want: tftypes.ResourceHandle},
		{typ: ir.VariantHandle(), want: tftypes.VariantHandle},
		{typ: ir.FloatType(32), want: tftypes.NotValue},
		{typ: &ir.TupleType{Elems: []ir.Type{tensor}}, want: tftypes.NotValue},
	}
	for i, test := range tests {
		if got := tftypes.ClassifyValue(test.typ); got != test.want {
			t.Errorf("test %d: %s: got %s but want %s", i, test.typ, got, test.want)
		}
	}
	elem, ok := tftypes.IsTensorHandle(tensor)
	if !ok || elem != ir.FloatType(32) {
		t.Errorf("got %v, %v but want %s, true", elem, ok, ir.FloatType(32))
	}
	if _, ok := tftypes.IsTensorHandle(ir.ResourceHandle()); ok {
		t.Errorf("resource handle classified as a tensor handle")
	}
}

func TestContainsTensorValue(t *testing.T) {
	tensor := &ir.TensorHandleType{Elem: ir.FloatType(32)}
	wrapper := &ir.StructType{Name: "Tensor", Fields: []ir.Field{{Name: "handle", Type: tensor}}}
	pair := &ir.StructType{Name: "Pair", Fields: []ir.Field{
		{Name: "a", Type: stdlib("Int", ir.IntType(64))},
		{Name: "b", Type: wrapper},
	}}
	// node -> next -> node and node -> value -> tensor.
	node := &ir.StructType{Name: "Node"}
	next := &ir.StructType{Name: "Next", Fields: []ir.Field{{Name: "node", Type: node}}}
	node.Fields = []ir.Field{{Name: "next", Type: next}, {Name: "value", Type: wrapper}}
	// list -> tail -> list, without any tensor.
	list := &ir.StructType{Name: "List"}
	tail := &ir.StructType{Name: "Tail", Fields: []ir.Field{{Name: "list", Type: list}}}
	list.Fields = []ir.Field{{Name: "tail", Type: tail}, {Name: "n", Type: ir.IntType(64)}}

	tests := []struct {
		typ  ir.Type
		want bool
	}{
		{typ: tensor, want: true},
		{typ: ir.ResourceHandle(), want: true},
		{typ: wrapper, want: true},
		{typ: pair, want: true},
		{typ: &ir.TupleType{Elems: []ir.Type{ir.IntType(32), pair}}, want: true},
		{typ: &ir.TupleType{Elems: []ir.Type{ir.IntType(32), ir.RawPointer()}}, want: false},
		{typ: stdlib("Float", ir.FloatType(32)), want: false},
		{typ: &ir.ArrayType{Elem: tensor}, want: false},
		{typ: next, want: true},
		{typ: node, want: true},
		{typ: tail, want: false},
		{typ: list, want: false},
	}
	classifier := tftypes.NewClassifier()
	for i, test := range tests {
		for pass := range 2 {
			if got := classifier.ContainsTensorValue(test.typ); got != test.want {
				t.Errorf("test %d pass %d: %s: got %v but want %v", i, pass, test.typ, got, test.want)
			}
		}
	}
	if classifier.CacheSize() == 0 {
		t.Errorf("classifier has not memoized any result")
	}
	// A fresh classifier gives the same answers for types classified in a different order.
	fresh := tftypes.NewClassifier()
	for i := len(tests) - 1; i >= 0; i-- {
		if got := fresh.ContainsTensorValue(tests[i].typ); got != tests[i].want {
			t.Errorf("test %d (reversed): %s: got %v but want %v", i, tests[i].typ, got, tests[i].want)
		}
	}
}

func TestContainsTensorValueInSignature(t *testing.T) {
	tensor := &ir.TensorHandleType{Elem: ir.FloatType(32)}
	wrapper := &ir.StructType{Name: "Tensor", Fields: []ir.Field{{Name: "handle", Type: tensor}}}
	tests := []struct {
		sig  *ir.FunctionType
		want bool
	}{
		{sig: &ir.FunctionType{}, want: false},
		{sig: &ir.FunctionType{Params: []ir.Type{ir.IntType(64)}, Results: []ir.Type{ir.FloatType(32)}}, want: false},
		{sig: &ir.FunctionType{Params: []ir.Type{wrapper}}, want: true},
		{sig: &ir.FunctionType{Results: []ir.Type{&ir.TupleType{Elems: []ir.Type{ir.IntType(1), wrapper}}}}, want: true},
	}
	classifier := tftypes.NewClassifier()
	for i, test := range tests {
		if got := classifier.ContainsTensorValueInSignature(test.sig); got != test.want {
			t.Errorf("test %d: %s: got %v but want %v", i, test.sig, got, test.want)
		}
	}
}

func TestClassifierConcurrent(t *testing.T) {
	tensor := &ir.TensorHandleType{Elem: ir.FloatType(32)}
	types := []ir.Type{
		&ir.StructType{Name: "A", Fields: []ir.Field{{Type: tensor}}},
		&ir.StructType{Name: "B", Fields: []ir.Field{{Type: ir.IntType(8)}}},
		&ir.TupleType{Elems: []ir.Type{ir.IntType(8), tensor}},
	}
	want := []bool{true, false, true}
	classifier := tftypes.NewClassifier()
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i, typ := range types {
				if got := classifier.ContainsTensorValue(typ); got != want[i] {
					t.Errorf("%s: got %v but want %v", typ, got, want[i])
				}
			}
		}()
	}
	wg.Wait()
}
