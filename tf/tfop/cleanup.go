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
	"github.com/pkg/errors"
)

// RemoveOrDestroyArrayValue is called when an operand referring to an array
// has been dropped. If the array is not used anymore, it is erased together
// with the computation of its elements. Otherwise, the array is released
// right after the instruction which dropped it.
func RemoveOrDestroyArrayValue(fn *ir.Function, arr ir.Value, after ir.Inst) error {
	inst, ok := arr.(ir.Inst)
	if !ok {
		return nil
	}
	if fn.HasUses(inst) {
		ir.NewBuilder(fn).After(after).Release(inst)
		return nil
	}
	return removeIfDead(fn, inst)
}

// removeIfDead erases v if it is an instruction without uses and without side effects.
// Operands of an erased instruction are recursively removed if they become dead.
// Literals are left for RemoveDeadLiterals.
func removeIfDead(fn *ir.Function, v ir.Value) error {
	inst, ok := v.(ir.Inst)
	if !ok || inst.Parent() != fn || ir.IsLiteral(inst) {
		return nil
	}
	switch instT := inst.(type) {
	case *ir.AllocStackInst:
		return removeDeadSlot(fn, instT)
	case *ir.ArrayInst:
	default:
		if ir.HasSideEffects(inst) {
			return nil
		}
	}
	if fn.HasUses(inst) {
		return nil
	}
	ops := inst.Operands()
	if err := fn.Erase(inst); err != nil {
		return fmterr.Internal(errors.WithStack(err))
	}
	for _, op := range ops {
		if err := removeIfDead(fn, op); err != nil {
			return err
		}
	}
	return nil
}

// removeDeadSlot erases a stack slot which is only written to and deallocated.
func removeDeadSlot(fn *ir.Function, slot *ir.AllocStackInst) error {
	uses := fn.Uses(slot)
	for _, use := range uses {
		switch use.User.(type) {
		case *ir.StoreInst:
			if use.Index != 1 {
				return nil
			}
		case *ir.DeallocStackInst:
		default:
			return nil
		}
	}
	var stored []ir.Value
	for _, use := range uses {
		if store, ok := use.User.(*ir.StoreInst); ok {
			stored = append(stored, store.Src())
		}
		if err := fn.Erase(use.User); err != nil {
			return fmterr.Internal(errors.WithStack(err))
		}
	}
	if err := fn.Erase(slot); err != nil {
		return fmterr.Internal(errors.WithStack(err))
	}
	for _, v := range stored {
		if err := removeIfDead(fn, v); err != nil {
			return err
		}
	}
	return nil
}

// RemoveDeadLiterals erases all the literals of a function which are not used.
// It returns the number of literals erased.
func RemoveDeadLiterals(fn *ir.Function) int {
	removed := 0
	for _, inst := range fn.Insts() {
		if !ir.IsLiteral(inst) || fn.HasUses(inst) {
			continue
		}
		if err := fn.Erase(inst); err == nil {
			removed++
		}
	}
	return removed
}
