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

import "github.com/gx-org/tflower/build/ir"

// AttrOperand returns the instruction defining the constant value of an
// attribute operand, looking through structure wrappers, copies, and stack
// slots written exactly once.
//
// The returned instruction is either a literal or an array. AttrOperand
// returns nil if the value is not a constant.
func AttrOperand(v ir.Value) ir.Inst {
	for {
		switch vT := v.(type) {
		case *ir.IntegerLiteral, *ir.FloatLiteral, *ir.StringLiteral, *ir.MetatypeInst, *ir.ArrayInst:
			return vT.(ir.Inst)
		case *ir.StructInst:
			if vT.NumOperands() != 1 {
				return nil
			}
			v = vT.Operand(0)
		case *ir.StructExtractInst:
			s, ok := lookThrough(vT.Operand(0)).(*ir.StructInst)
			if !ok {
				return nil
			}
			v = s.Operand(vT.Field)
		case *ir.TupleExtractInst:
			t, ok := lookThrough(vT.Operand(0)).(*ir.TupleInst)
			if !ok {
				return nil
			}
			v = t.Operand(vT.Index)
		case *ir.CopyValueInst:
			v = vT.Operand(0)
		case *ir.LoadInst:
			src := storedValue(vT)
			if src == nil {
				return nil
			}
			v = src
		default:
			return nil
		}
	}
}

// lookThrough skips copies and loads from stack slots.
func lookThrough(v ir.Value) ir.Value {
	for {
		switch vT := v.(type) {
		case *ir.CopyValueInst:
			v = vT.Operand(0)
		case *ir.LoadInst:
			src := storedValue(vT)
			if src == nil {
				return v
			}
			v = src
		default:
			return v
		}
	}
}

// storedValue returns the value loaded by a load instruction if the address
// is a stack slot written exactly once before the load.
func storedValue(load *ir.LoadInst) ir.Value {
	slot, ok := load.Operand(0).(*ir.AllocStackInst)
	if !ok {
		return nil
	}
	fn := load.Parent()
	if fn == nil {
		return nil
	}
	var store *ir.StoreInst
	for _, use := range fn.Uses(slot) {
		switch userT := use.User.(type) {
		case *ir.StoreInst:
			if use.Index != 1 || store != nil {
				// The address escapes or is written more than once.
				return nil
			}
			store = userT
		case *ir.LoadInst, *ir.DeallocStackInst:
		default:
			return nil
		}
	}
	if store == nil || fn.Index(store) > fn.Index(load) {
		return nil
	}
	return store.Src()
}
