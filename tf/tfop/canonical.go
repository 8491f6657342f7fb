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
	"github.com/gx-org/tflower/tf/device"
	"github.com/gx-org/tflower/tf/placement"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Rewrite is the result of the canonicalization of an op.
type Rewrite struct {
	// Old is the instruction before canonicalization.
	// It has been erased from its function if it is different from New.
	Old *ir.BuiltinInst
	// New is the canonical instruction.
	New *ir.BuiltinInst
	// Users are the instructions which have been updated to use New instead of Old.
	Users []ir.Inst
	// Placement is the device placement of the op.
	// It is nil when no configuration has been given.
	Placement *placement.Placement
}

// Changed returns true if the canonicalization created a new instruction.
func (r *Rewrite) Changed() bool {
	return r.Old != r.New
}

type canonicalizer struct {
	op  *OpInfo
	b   *ir.Builder
	cfg *placement.Configuration

	ops      []ir.Value
	operands []Operand
	implicit int
	explicit bool
	changed  bool

	explicitDevice string
	// created are the instructions inserted for the new operands.
	created []ir.Inst
}

// discard erases the instructions inserted for the new operands.
func (c *canonicalizer) discard(fn *ir.Function) {
	for _, inst := range c.created {
		if err := fn.Erase(inst); err != nil {
			klog.Errorf("cannot erase %v: %v", inst, err)
		}
	}
	c.created = nil
}

func (c *canonicalizer) push(v ir.Value, operand Operand) {
	if !c.explicit && operand.Class == Input && operand.Name == "" && len(c.ops) < c.op.ImplicitInputs {
		c.implicit++
	} else {
		c.explicit = true
	}
	c.ops = append(c.ops, v)
	c.operands = append(c.operands, operand)
}

func (c *canonicalizer) pushLiteral(i int) {
	v := c.op.Inst.Operand(i)
	lit := c.op.AttrOperand(i)
	if lit != v {
		c.changed = true
	}
	c.push(lit, c.op.Operands[i])
}

// pushArray flattens an array into a metatype marker followed by its elements.
func (c *canonicalizer) pushArray(arr *ir.ArrayInst, marker Operand, elClass OperandClass) {
	c.changed = true
	meta := c.b.Metatype(arr.Typ.Elem)
	c.created = append(c.created, meta)
	c.push(meta, marker)
	for _, el := range arr.Operands() {
		if elClass != InputElt {
			el = AttrOperand(el)
		}
		c.push(el, Operand{Class: elClass})
	}
}

func (c *canonicalizer) canonicalizeOperand(i int) error {
	operand := c.op.Operands[i]
	v := c.op.Inst.Operand(i)
	switch operand.Class {
	case Input:
		if _, isArray := v.Type().(*ir.ArrayType); isArray {
			arr, ok := lookThrough(v).(*ir.ArrayInst)
			if !ok {
				return errors.Wrapf(ErrInvalidInput, "operand %d is not a constant array", i)
			}
			c.pushArray(arr, Operand{Name: operand.Name, Class: Input}, InputElt)
			return nil
		}
		c.push(v, operand)
	case InputElt:
		c.push(v, operand)
	case Normal:
		if c.cfg != nil && operand.Name == device.Attr {
			lit, ok := c.op.AttrOperand(i).(*ir.StringLiteral)
			if !ok {
				return errors.Wrapf(ErrInvalidAttr, "device attribute is not a string")
			}
			c.explicitDevice = lit.Value
			c.changed = true
			return nil
		}
		c.pushLiteral(i)
	case DType, ArrayElement:
		c.pushLiteral(i)
	case Tensor, Shape, Array:
		arr, ok := c.op.AttrOperand(i).(*ir.ArrayInst)
		if !ok {
			c.pushLiteral(i)
			return nil
		}
		c.pushArray(arr, operand, ArrayElement)
	case ShapeArray:
		arr, ok := c.op.AttrOperand(i).(*ir.ArrayInst)
		if !ok {
			c.pushLiteral(i)
			return nil
		}
		c.changed = true
		count := c.b.IntegerLiteral(int64(arr.NumOperands()), ir.IntType(64))
		c.created = append(c.created, count)
		c.push(count, operand)
		for k, el := range arr.Operands() {
			shape, ok := AttrOperand(el).(*ir.ArrayInst)
			if !ok {
				return errors.Wrapf(ErrInvalidAttr, "shape %d of operand %d is not a constant array", k, i)
			}
			c.pushArray(shape, Operand{Class: Shape}, ArrayElement)
		}
	default:
		return errors.Errorf("unknown operand class %d", operand.Class)
	}
	return nil
}

// Canonicalize rewrites the operands of an op such that every attribute
// operand is a literal and every array is flattened into a metatype marker
// followed by its elements.
//
// If cfg is not nil, the op is also placed on a device: an existing device
// attribute is used as the explicit device of the op and a device attribute
// is appended at the end of the operands.
//
// The operands of the op are expected to have been checked with CheckOperands.
// If an error is returned, the function is left unchanged.
// The function containing the op is modified in place: the new op is inserted
// before the old one, all uses are updated, the old op is erased and arrays
// which are not used anymore are erased or released.
func (op *OpInfo) Canonicalize(cfg *placement.Configuration) (*Rewrite, error) {
	fn := op.Inst.Parent()
	if fn == nil {
		return nil, fmterr.Internalf(op.Inst.Loc(), "op %s is not in a function", op.OpName)
	}
	c := &canonicalizer{
		op:  op,
		b:   ir.NewBuilder(fn).Before(op.Inst),
		cfg: cfg,
	}
	for i := range op.Operands {
		if err := c.canonicalizeOperand(i); err != nil {
			c.discard(fn)
			return nil, fmterr.Position(op.Loc(), errors.WithMessagef(err, "op %s", op.OpName))
		}
	}
	rw := &Rewrite{Old: op.Inst, New: op.Inst}
	if cfg != nil {
		pl, err := cfg.PlaceDevice(c.b, op.OpName, c.explicitDevice)
		if err != nil {
			c.discard(fn)
			return nil, fmterr.Position(op.Loc(), errors.WithMessagef(err, "op %s", op.OpName))
		}
		rw.Placement = pl
		for _, v := range pl.Operands {
			c.changed = true
			c.push(v, Operand{Name: device.Attr, Class: Normal})
		}
	}
	if !c.changed {
		return rw, nil
	}
	name := Encode(op.OpName, c.implicit, c.operands)
	rw.New = c.b.Builtin(name, op.Inst.Typ, c.ops...)
	if klog.V(2).Enabled() {
		klog.Infof("canonical op: %s", name)
	}
	var err error
	if rw.Users, err = fn.Replace(rw.Old, rw.New); err != nil {
		return nil, fmterr.Internal(errors.WithStack(err))
	}
	if err := c.cleanup(fn, rw.New); err != nil {
		return nil, err
	}
	return rw, nil
}

// cleanup removes the computation of the operands dropped by the new op.
func (c *canonicalizer) cleanup(fn *ir.Function, newOp *ir.BuiltinInst) error {
	seen := make(map[ir.Value]bool)
	for _, v := range c.op.Inst.Operands() {
		if seen[v] {
			continue
		}
		seen[v] = true
		if _, isArray := lookThrough(v).(*ir.ArrayInst); isArray {
			if err := RemoveOrDestroyArrayValue(fn, v, newOp); err != nil {
				return err
			}
			continue
		}
		if err := removeIfDead(fn, v); err != nil {
			return err
		}
	}
	return nil
}
