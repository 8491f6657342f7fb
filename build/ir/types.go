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

package ir

import (
	"fmt"
	"strings"
)

type (
	// Type of a value.
	// Types are immutable once formed and are compared by identity,
	// which makes them usable as map keys.
	Type interface {
		// String representation of the type.
		String() string
		typ()
	}

	// BuiltinIntType is a builtin integer type of a given bit width (Builtin.Int32).
	BuiltinIntType struct {
		Width int
	}

	// BuiltinFloatType is a builtin IEEE floating point type (Builtin.FPIEEE32).
	BuiltinFloatType struct {
		Width int
	}

	// RawPointerType is an untyped pointer. String literals have this type.
	RawPointerType struct{}

	// VoidType is the type of instructions producing no value.
	VoidType struct{}

	// MetatypeType is the type of a value representing a type.
	MetatypeType struct {
		Instance Type
	}

	// Field of a structure.
	Field struct {
		Name string
		Type Type
	}

	// StructType is a nominal structure type.
	// Fields can be set after creation to build recursive types.
	StructType struct {
		Module string
		Name   string
		Fields []Field
	}

	// TupleType is an anonymous product of types.
	TupleType struct {
		Elems []Type
	}

	// ArrayType is an owned, heap allocated array of elements.
	ArrayType struct {
		Elem Type
	}

	// AddressType is the address of a memory location holding a value.
	AddressType struct {
		Elem Type
	}

	// TensorHandleType is a handle to a tensor owned by the runtime.
	TensorHandleType struct {
		Elem Type
	}

	// ResourceHandleType is a handle to a runtime resource.
	ResourceHandleType struct{}

	// VariantHandleType is a handle to a runtime variant.
	VariantHandleType struct{}

	// FunctionType is the signature of a function.
	FunctionType struct {
		Params  []Type
		Results []Type
	}
)

var (
	_ Type = (*BuiltinIntType)(nil)
	_ Type = (*BuiltinFloatType)(nil)
	_ Type = (*RawPointerType)(nil)
	_ Type = (*VoidType)(nil)
	_ Type = (*MetatypeType)(nil)
	_ Type = (*StructType)(nil)
	_ Type = (*TupleType)(nil)
	_ Type = (*ArrayType)(nil)
	_ Type = (*AddressType)(nil)
	_ Type = (*TensorHandleType)(nil)
	_ Type = (*ResourceHandleType)(nil)
	_ Type = (*VariantHandleType)(nil)
	_ Type = (*FunctionType)(nil)
)

var (
	builtinInts   = map[int]*BuiltinIntType{}
	builtinFloats = map[int]*BuiltinFloatType{}
	rawPointer    = &RawPointerType{}
	void          = &VoidType{}
	resource      = &ResourceHandleType{}
	variant       = &VariantHandleType{}
)

func init() {
	for _, w := range []int{1, 8, 16, 32, 64, 128} {
		builtinInts[w] = &BuiltinIntType{Width: w}
	}
	for _, w := range []int{16, 32, 64, 80} {
		builtinFloats[w] = &BuiltinFloatType{Width: w}
	}
}

// IntType returns the builtin integer type of a given width.
func IntType(width int) *BuiltinIntType {
	if t, ok := builtinInts[width]; ok {
		return t
	}
	return &BuiltinIntType{Width: width}
}

// FloatType returns the builtin floating point type of a given width.
func FloatType(width int) *BuiltinFloatType {
	if t, ok := builtinFloats[width]; ok {
		return t
	}
	return &BuiltinFloatType{Width: width}
}

// RawPointer returns the raw pointer type.
func RawPointer() *RawPointerType { return rawPointer }

// Void returns the void type.
func Void() *VoidType { return void }

// ResourceHandle returns the resource handle type.
func ResourceHandle() *ResourceHandleType { return resource }

// VariantHandle returns the variant handle type.
func VariantHandle() *VariantHandleType { return variant }

func (*BuiltinIntType) typ() {}

func (t *BuiltinIntType) String() string {
	return fmt.Sprintf("Builtin.Int%d", t.Width)
}

func (*BuiltinFloatType) typ() {}

func (t *BuiltinFloatType) String() string {
	return fmt.Sprintf("Builtin.FPIEEE%d", t.Width)
}

func (*RawPointerType) typ() {}

func (*RawPointerType) String() string { return "Builtin.RawPointer" }

func (*VoidType) typ() {}

func (*VoidType) String() string { return "()" }

func (*MetatypeType) typ() {}

func (t *MetatypeType) String() string {
	return "@thin " + t.Instance.String() + ".Type"
}

func (*StructType) typ() {}

func (t *StructType) String() string {
	if t.Module == "" {
		return t.Name
	}
	return t.Module + "." + t.Name
}

func (*TupleType) typ() {}

func (t *TupleType) String() string {
	return "(" + typeList(t.Elems) + ")"
}

func (*ArrayType) typ() {}

func (t *ArrayType) String() string {
	return "Array<" + t.Elem.String() + ">"
}

func (*AddressType) typ() {}

func (t *AddressType) String() string {
	return "*" + t.Elem.String()
}

func (*TensorHandleType) typ() {}

func (t *TensorHandleType) String() string {
	return "TensorHandle<" + t.Elem.String() + ">"
}

func (*ResourceHandleType) typ() {}

func (*ResourceHandleType) String() string { return "ResourceHandle" }

func (*VariantHandleType) typ() {}

func (*VariantHandleType) String() string { return "VariantHandle" }

func (*FunctionType) typ() {}

func (t *FunctionType) String() string {
	return "(" + typeList(t.Params) + ") -> (" + typeList(t.Results) + ")"
}

func typeList(ts []Type) string {
	ss := make([]string, len(ts))
	for i, t := range ts {
		ss[i] = t.String()
	}
	return strings.Join(ss, ", ")
}
