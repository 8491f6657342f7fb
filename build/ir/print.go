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
	"strconv"
	"strings"
)

type printer struct {
	names map[Value]string
	next  int
}

func (p *printer) name(v Value) string {
	if n, ok := p.names[v]; ok {
		return n
	}
	return "<undef>"
}

func (p *printer) define(v Value) string {
	n := "%" + strconv.Itoa(p.next)
	p.next++
	p.names[v] = n
	return n
}

func (p *printer) operands(inst Inst) string {
	ss := make([]string, inst.NumOperands())
	for i, op := range inst.base().ops {
		ss[i] = p.name(op) + " : $" + op.Type().String()
	}
	return strings.Join(ss, ", ")
}

func (p *printer) inst(inst Inst) string {
	switch instT := inst.(type) {
	case *IntegerLiteral:
		return fmt.Sprintf("integer_literal $%s, %d", instT.Typ, instT.Value)
	case *FloatLiteral:
		return fmt.Sprintf("float_literal $%s, %g", instT.Typ, instT.Value)
	case *StringLiteral:
		return fmt.Sprintf("string_literal utf8 %q", instT.Value)
	case *MetatypeInst:
		return fmt.Sprintf("metatype $%s", instT.Type())
	case *StructInst:
		return fmt.Sprintf("struct $%s (%s)", instT.Typ, p.operands(inst))
	case *StructExtractInst:
		return fmt.Sprintf("struct_extract %s, #%d", p.operands(inst), instT.Field)
	case *TupleInst:
		return fmt.Sprintf("tuple (%s)", p.operands(inst))
	case *TupleExtractInst:
		return fmt.Sprintf("tuple_extract %s, %d", p.operands(inst), instT.Index)
	case *ArrayInst:
		return fmt.Sprintf("array $%s (%s)", instT.Typ.Elem, p.operands(inst))
	case *AllocStackInst:
		return fmt.Sprintf("alloc_stack $%s", instT.Elem)
	case *StoreInst:
		return fmt.Sprintf("store %s to %s", p.name(instT.Src()), p.name(instT.Dest()))
	case *LoadInst:
		return "load " + p.operands(inst)
	case *DeallocStackInst:
		return "dealloc_stack " + p.operands(inst)
	case *CopyValueInst:
		return "copy_value " + p.operands(inst)
	case *ReleaseInst:
		return "release_value " + p.operands(inst)
	case *BuiltinInst:
		return fmt.Sprintf("builtin %q(%s) : $%s", instT.Name, p.operands(inst), instT.Typ)
	case *ApplyInst:
		subs := ""
		if len(instT.Subs) > 0 {
			subs = "<" + typeList(instT.Subs) + ">"
		}
		return fmt.Sprintf("apply @%s%s(%s) : $%s", instT.Callee, subs, p.operands(inst), instT.Typ)
	case *ReturnInst:
		return "return " + p.operands(inst)
	}
	return fmt.Sprintf("<unknown instruction %T>", inst)
}

// String returns a textual representation of the function.
func (fn *Function) String() string {
	p := &printer{names: make(map[Value]string)}
	var s strings.Builder
	params := make([]string, len(fn.Params))
	for i, param := range fn.Params {
		params[i] = p.define(param) + " : $" + param.Typ.String()
	}
	fmt.Fprintf(&s, "func @%s(%s) -> (%s) {\n", fn.Name, strings.Join(params, ", "), typeList(fn.Results))
	for _, inst := range fn.insts {
		s.WriteString("  ")
		if _, isVoid := inst.Type().(*VoidType); !isVoid {
			s.WriteString(p.define(inst) + " = ")
		}
		s.WriteString(p.inst(inst))
		s.WriteString("\n")
	}
	s.WriteString("}\n")
	return s.String()
}
