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

// Builder creates instructions and inserts them in a function.
type Builder struct {
	fn     *Function
	before Inst
	after  Inst
	loc    Location
}

// NewBuilder returns a builder appending instructions at the end of a function.
func NewBuilder(fn *Function) *Builder {
	return &Builder{fn: fn}
}

// Function in which instructions are inserted.
func (b *Builder) Function() *Function {
	return b.fn
}

// Before returns a builder inserting instructions before pos.
func (b *Builder) Before(pos Inst) *Builder {
	return &Builder{fn: b.fn, before: pos, loc: pos.Loc()}
}

// After returns a builder inserting instructions after pos.
// Successive instructions are inserted in order.
func (b *Builder) After(pos Inst) *Builder {
	return &Builder{fn: b.fn, after: pos, loc: pos.Loc()}
}

// At returns a builder attaching a given location to the instructions it creates.
func (b *Builder) At(loc Location) *Builder {
	cp := *b
	cp.loc = loc
	return &cp
}

// Loc returns the location attached to new instructions.
func (b *Builder) Loc() Location {
	return b.loc
}

func (b *Builder) insert(inst Inst, ops ...Value) {
	base := inst.base()
	base.loc = b.loc
	base.ops = append([]Value{}, ops...)
	switch {
	case b.before != nil:
		b.fn.insert(b.fn.Index(b.before), inst)
	case b.after != nil:
		b.fn.insert(b.fn.Index(b.after)+1, inst)
		b.after = inst
	default:
		b.fn.Append(inst)
	}
}

// IntegerLiteral inserts a builtin integer constant.
func (b *Builder) IntegerLiteral(val int64, typ *BuiltinIntType) *IntegerLiteral {
	inst := &IntegerLiteral{Value: val, Typ: typ}
	b.insert(inst)
	return inst
}

// FloatLiteral inserts a builtin floating point constant.
func (b *Builder) FloatLiteral(val float64, typ *BuiltinFloatType) *FloatLiteral {
	inst := &FloatLiteral{Value: val, Typ: typ}
	b.insert(inst)
	return inst
}

// StringLiteral inserts a string constant.
func (b *Builder) StringLiteral(val string) *StringLiteral {
	inst := &StringLiteral{Value: val}
	b.insert(inst)
	return inst
}

// Metatype inserts a value representing a type.
func (b *Builder) Metatype(instance Type) *MetatypeInst {
	inst := &MetatypeInst{Instance: instance}
	b.insert(inst)
	return inst
}

// Struct inserts a structure built from fields.
func (b *Builder) Struct(typ *StructType, fields ...Value) *StructInst {
	inst := &StructInst{Typ: typ}
	b.insert(inst, fields...)
	return inst
}

// StructExtract inserts the extraction of a field from a structure.
func (b *Builder) StructExtract(x Value, field int) *StructExtractInst {
	inst := &StructExtractInst{Field: field}
	b.insert(inst, x)
	return inst
}

// Tuple inserts a tuple built from elements.
func (b *Builder) Tuple(elems ...Value) *TupleInst {
	types := make([]Type, len(elems))
	for i, el := range elems {
		types[i] = el.Type()
	}
	inst := &TupleInst{Typ: &TupleType{Elems: types}}
	b.insert(inst, elems...)
	return inst
}

// TupleExtract inserts the extraction of an element from a tuple.
func (b *Builder) TupleExtract(x Value, index int) *TupleExtractInst {
	inst := &TupleExtractInst{Index: index}
	b.insert(inst, x)
	return inst
}

// Array inserts the allocation of an array.
func (b *Builder) Array(elem Type, elems ...Value) *ArrayInst {
	inst := &ArrayInst{Typ: &ArrayType{Elem: elem}}
	b.insert(inst, elems...)
	return inst
}

// AllocStack inserts the allocation of a stack location.
func (b *Builder) AllocStack(elem Type) *AllocStackInst {
	inst := &AllocStackInst{Elem: elem}
	b.insert(inst)
	return inst
}

// Store inserts a store of src to dest.
func (b *Builder) Store(src, dest Value) *StoreInst {
	inst := &StoreInst{}
	b.insert(inst, src, dest)
	return inst
}

// Load inserts a load from an address.
func (b *Builder) Load(addr Value) *LoadInst {
	inst := &LoadInst{}
	b.insert(inst, addr)
	return inst
}

// DeallocStack inserts the deallocation of a stack location.
func (b *Builder) DeallocStack(addr Value) *DeallocStackInst {
	inst := &DeallocStackInst{}
	b.insert(inst, addr)
	return inst
}

// CopyValue inserts a copy of a value.
func (b *Builder) CopyValue(x Value) *CopyValueInst {
	inst := &CopyValueInst{}
	b.insert(inst, x)
	return inst
}

// Release inserts the release of an owned value.
func (b *Builder) Release(x Value) *ReleaseInst {
	inst := &ReleaseInst{}
	b.insert(inst, x)
	return inst
}

// Builtin inserts a call to a builtin.
func (b *Builder) Builtin(name string, typ Type, ops ...Value) *BuiltinInst {
	inst := &BuiltinInst{Name: name, Typ: typ}
	b.insert(inst, ops...)
	return inst
}

// Apply inserts a call to a function.
func (b *Builder) Apply(callee string, subs []Type, typ Type, args ...Value) *ApplyInst {
	inst := &ApplyInst{Callee: callee, Subs: subs, Typ: typ}
	b.insert(inst, args...)
	return inst
}

// Return inserts a return instruction.
func (b *Builder) Return(vals ...Value) *ReturnInst {
	inst := &ReturnInst{}
	b.insert(inst, vals...)
	return inst
}
