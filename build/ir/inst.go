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

type (
	// IntegerLiteral is a builtin integer constant.
	IntegerLiteral struct {
		instBase
		Value int64
		Typ   *BuiltinIntType
	}

	// FloatLiteral is a builtin floating point constant.
	FloatLiteral struct {
		instBase
		Value float64
		Typ   *BuiltinFloatType
	}

	// StringLiteral is a UTF-8 string constant.
	StringLiteral struct {
		instBase
		Value string
	}

	// MetatypeInst is a value representing a type.
	MetatypeInst struct {
		instBase
		Instance Type
	}

	// StructInst builds a structure from its fields.
	StructInst struct {
		instBase
		Typ *StructType
	}

	// StructExtractInst extracts a field from a structure.
	StructExtractInst struct {
		instBase
		Field int
	}

	// TupleInst builds a tuple from its elements.
	TupleInst struct {
		instBase
		Typ *TupleType
	}

	// TupleExtractInst extracts an element from a tuple.
	TupleExtractInst struct {
		instBase
		Index int
	}

	// ArrayInst allocates an array owning its elements.
	// The array needs to be released once it is not used anymore.
	ArrayInst struct {
		instBase
		Typ *ArrayType
	}

	// AllocStackInst allocates a memory location on the stack.
	AllocStackInst struct {
		instBase
		Elem Type
	}

	// StoreInst stores a value (operand 0) to an address (operand 1).
	StoreInst struct {
		instBase
	}

	// LoadInst loads a value from an address.
	LoadInst struct {
		instBase
	}

	// DeallocStackInst deallocates a memory location allocated with AllocStackInst.
	DeallocStackInst struct {
		instBase
	}

	// CopyValueInst copies a value.
	CopyValueInst struct {
		instBase
	}

	// ReleaseInst releases an owned value.
	ReleaseInst struct {
		instBase
	}

	// BuiltinInst is a call to a builtin identified by its symbolic name.
	BuiltinInst struct {
		instBase
		Name string
		Typ  Type
	}

	// ApplyInst is a call to a function given its name.
	ApplyInst struct {
		instBase
		Callee string
		// Subs are the type arguments of a generic callee.
		Subs []Type
		Typ  Type
	}

	// ReturnInst returns from the function.
	ReturnInst struct {
		instBase
	}
)

var (
	_ Inst = (*IntegerLiteral)(nil)
	_ Inst = (*FloatLiteral)(nil)
	_ Inst = (*StringLiteral)(nil)
	_ Inst = (*MetatypeInst)(nil)
	_ Inst = (*StructInst)(nil)
	_ Inst = (*StructExtractInst)(nil)
	_ Inst = (*TupleInst)(nil)
	_ Inst = (*TupleExtractInst)(nil)
	_ Inst = (*ArrayInst)(nil)
	_ Inst = (*AllocStackInst)(nil)
	_ Inst = (*StoreInst)(nil)
	_ Inst = (*LoadInst)(nil)
	_ Inst = (*DeallocStackInst)(nil)
	_ Inst = (*CopyValueInst)(nil)
	_ Inst = (*ReleaseInst)(nil)
	_ Inst = (*BuiltinInst)(nil)
	_ Inst = (*ApplyInst)(nil)
	_ Inst = (*ReturnInst)(nil)
)

// Type of the literal.
func (l *IntegerLiteral) Type() Type { return l.Typ }

// Type of the literal.
func (l *FloatLiteral) Type() Type { return l.Typ }

// Type of the literal.
func (*StringLiteral) Type() Type { return RawPointer() }

// Type of the metatype.
func (m *MetatypeInst) Type() Type { return &MetatypeType{Instance: m.Instance} }

// Type of the structure.
func (s *StructInst) Type() Type { return s.Typ }

// Type of the extracted field.
func (s *StructExtractInst) Type() Type {
	return s.ops[0].Type().(*StructType).Fields[s.Field].Type
}

// Type of the tuple.
func (t *TupleInst) Type() Type { return t.Typ }

// Type of the extracted element.
func (t *TupleExtractInst) Type() Type {
	return t.ops[0].Type().(*TupleType).Elems[t.Index]
}

// Type of the array.
func (a *ArrayInst) Type() Type { return a.Typ }

// Elements of the array.
func (a *ArrayInst) Elements() []Value { return a.Operands() }

// Type of the allocated address.
func (a *AllocStackInst) Type() Type { return &AddressType{Elem: a.Elem} }

// Type returns void.
func (*StoreInst) Type() Type { return Void() }

// Src returns the stored value.
func (s *StoreInst) Src() Value { return s.ops[0] }

// Dest returns the address written to.
func (s *StoreInst) Dest() Value { return s.ops[1] }

// Type of the loaded value.
func (l *LoadInst) Type() Type {
	return l.ops[0].Type().(*AddressType).Elem
}

// Type returns void.
func (*DeallocStackInst) Type() Type { return Void() }

// Type of the copied value.
func (c *CopyValueInst) Type() Type { return c.ops[0].Type() }

// Type returns void.
func (*ReleaseInst) Type() Type { return Void() }

// Type of the value returned by the builtin.
func (b *BuiltinInst) Type() Type { return b.Typ }

// Type of the value returned by the callee.
func (a *ApplyInst) Type() Type { return a.Typ }

// Type returns void.
func (*ReturnInst) Type() Type { return Void() }

// IsLiteral returns true if the instruction is a literal.
func IsLiteral(v Value) bool {
	switch v.(type) {
	case *IntegerLiteral, *FloatLiteral, *StringLiteral, *MetatypeInst:
		return true
	}
	return false
}

// HasSideEffects returns true if erasing an unused instruction would
// change the behavior of the function.
func HasSideEffects(inst Inst) bool {
	switch inst.(type) {
	case *IntegerLiteral, *FloatLiteral, *StringLiteral, *MetatypeInst,
		*StructInst, *StructExtractInst, *TupleInst, *TupleExtractInst,
		*LoadInst, *CopyValueInst:
		return false
	}
	return true
}
