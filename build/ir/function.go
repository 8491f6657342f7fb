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
	"slices"

	"github.com/pkg/errors"
)

type (
	// Function is a straight-line sequence of instructions.
	Function struct {
		Name    string
		Loc     Location
		Params  []*Argument
		Results []Type

		insts []Inst
	}

	// Use of a value as the operand of an instruction.
	Use struct {
		User  Inst
		Index int
	}
)

// NewFunction returns a new empty function.
func NewFunction(name string, params []Type, results []Type) *Function {
	fn := &Function{Name: name, Results: results}
	fn.Params = make([]*Argument, len(params))
	for i, p := range params {
		fn.Params[i] = &Argument{Index: i, Typ: p, fn: fn}
	}
	return fn
}

// Signature returns the type of the function.
func (fn *Function) Signature() *FunctionType {
	params := make([]Type, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = p.Typ
	}
	return &FunctionType{Params: params, Results: fn.Results}
}

// Insts returns a copy of the list of instructions.
func (fn *Function) Insts() []Inst {
	return append([]Inst{}, fn.insts...)
}

// Len returns the number of instructions in the function.
func (fn *Function) Len() int {
	return len(fn.insts)
}

// Index returns the position of an instruction in the function or -1.
func (fn *Function) Index(inst Inst) int {
	return slices.Index(fn.insts, inst)
}

// Append an instruction at the end of the function.
func (fn *Function) Append(inst Inst) {
	fn.insert(len(fn.insts), inst)
}

// InsertBefore inserts an instruction before another.
func (fn *Function) InsertBefore(pos, inst Inst) error {
	i := fn.Index(pos)
	if i < 0 {
		return errors.Errorf("cannot insert %T before %T: instruction not in function %s", inst, pos, fn.Name)
	}
	fn.insert(i, inst)
	return nil
}

// InsertAfter inserts an instruction after another.
func (fn *Function) InsertAfter(pos, inst Inst) error {
	i := fn.Index(pos)
	if i < 0 {
		return errors.Errorf("cannot insert %T after %T: instruction not in function %s", inst, pos, fn.Name)
	}
	fn.insert(i+1, inst)
	return nil
}

func (fn *Function) insert(i int, inst Inst) {
	fn.insts = slices.Insert(fn.insts, i, inst)
	inst.base().parent = fn
}

// Erase removes an instruction from the function.
// The instruction must not have any use left.
func (fn *Function) Erase(inst Inst) error {
	i := fn.Index(inst)
	if i < 0 {
		return errors.Errorf("cannot erase %T: instruction not in function %s", inst, fn.Name)
	}
	if uses := fn.Uses(inst); len(uses) > 0 {
		return errors.Errorf("cannot erase %T: instruction still has %d use(s)", inst, len(uses))
	}
	fn.insts = slices.Delete(fn.insts, i, i+1)
	inst.base().parent = nil
	return nil
}

// Uses returns all the uses of a value in the function.
func (fn *Function) Uses(v Value) []Use {
	var uses []Use
	for _, inst := range fn.insts {
		for i, op := range inst.base().ops {
			if op == v {
				uses = append(uses, Use{User: inst, Index: i})
			}
		}
	}
	return uses
}

// HasUses returns true if a value is used by at least one instruction.
func (fn *Function) HasUses(v Value) bool {
	for _, inst := range fn.insts {
		if slices.Contains(inst.base().ops, v) {
			return true
		}
	}
	return false
}

// ReplaceAllUsesWith replaces every use of old by repl.
// It returns the list of instructions which have been updated.
func (fn *Function) ReplaceAllUsesWith(old, repl Value) []Inst {
	var users []Inst
	for _, inst := range fn.insts {
		updated := false
		ops := inst.base().ops
		for i, op := range ops {
			if op != old {
				continue
			}
			ops[i] = repl
			updated = true
		}
		if updated {
			users = append(users, inst)
		}
	}
	return users
}

// Replace inserts repl at the position of old, moves all the uses of old to repl,
// and erases old. It returns the users that have been updated.
func (fn *Function) Replace(old, repl Inst) ([]Inst, error) {
	if repl.Parent() == nil {
		if err := fn.InsertBefore(old, repl); err != nil {
			return nil, err
		}
	}
	users := fn.ReplaceAllUsesWith(old, repl)
	if err := fn.Erase(old); err != nil {
		return nil, err
	}
	return users, nil
}
