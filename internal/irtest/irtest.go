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

// Package irtest provides helpers to build IR functions in tests.
package irtest

import (
	"github.com/gx-org/tflower/build/ir"
	"github.com/gx-org/tflower/tf/tftypes"
)

// Stdlib returns a standard library structure wrapping a single builtin field.
func Stdlib(name string, field ir.Type) *ir.StructType {
	return &ir.StructType{
		Module: tftypes.StdlibModule,
		Name:   name,
		Fields: []ir.Field{{Name: "_value", Type: field}},
	}
}

// Standard library types shared by tests.
var (
	Int    = Stdlib("Int", ir.IntType(64))
	Int32  = Stdlib("Int32", ir.IntType(32))
	Float  = Stdlib("Float", ir.FloatType(32))
	Double = Stdlib("Double", ir.FloatType(64))
	Bool   = Stdlib("Bool", ir.IntType(1))
	String = &ir.StructType{
		Module: tftypes.StdlibModule,
		Name:   "String",
		Fields: []ir.Field{{Name: "_core", Type: ir.RawPointer()}},
	}

	FloatTensor = Tensor(Float)
	IntTensor   = Tensor(Int32)
)

// Tensor returns the type of a tensor handle.
func Tensor(elem ir.Type) *ir.TensorHandleType {
	return &ir.TensorHandleType{Elem: elem}
}

// IntValue builds a standard library integer.
func IntValue(b *ir.Builder, val int64) *ir.StructInst {
	return b.Struct(Int, b.IntegerLiteral(val, ir.IntType(64)))
}

// FloatValue builds a standard library float.
func FloatValue(b *ir.Builder, val float64) *ir.StructInst {
	return b.Struct(Float, b.FloatLiteral(val, ir.FloatType(32)))
}

// IntArray builds an array of standard library integers.
func IntArray(b *ir.Builder, vals ...int64) *ir.ArrayInst {
	elems := make([]ir.Value, len(vals))
	for i, val := range vals {
		elems[i] = IntValue(b, val)
	}
	return b.Array(Int, elems...)
}

// FloatArray builds an array of standard library floats.
func FloatArray(b *ir.Builder, vals ...float64) *ir.ArrayInst {
	elems := make([]ir.Value, len(vals))
	for i, val := range vals {
		elems[i] = FloatValue(b, val)
	}
	return b.Array(Float, elems...)
}

// Count returns the number of instructions of type T in a function.
func Count[T ir.Inst](fn *ir.Function) int {
	n := 0
	for _, inst := range fn.Insts() {
		if _, ok := inst.(T); ok {
			n++
		}
	}
	return n
}
