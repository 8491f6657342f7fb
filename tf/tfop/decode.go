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
	"strings"

	"github.com/gx-org/tflower/build/fmterr"
	"github.com/gx-org/tflower/build/ir"
	"github.com/gx-org/tflower/internal/srcloc"
	"github.com/gx-org/tflower/tf/device"
	"github.com/gx-org/tflower/tf/placement"
	"github.com/pkg/errors"
)

// OpInfo describes a tensor op represented by a builtin instruction.
type OpInfo struct {
	// Inst is the instruction being analyzed.
	Inst *ir.BuiltinInst

	// BuiltinName is the full symbolic name of the builtin.
	BuiltinName string

	// OpName is the name of the op in the runtime.
	OpName string

	// ImplicitInputs is the number of leading inputs not named in BuiltinName.
	ImplicitInputs int

	// Operands classifies every operand of the instruction.
	Operands []Operand
}

// Decode analyzes an instruction and returns the description of the tensor op
// it represents.
//
// Decode returns nil without an error if the instruction is not a tensor op.
// An error is returned if the instruction is a tensor op with a malformed signature.
func Decode(inst ir.Inst) (*OpInfo, error) {
	builtin, ok := inst.(*ir.BuiltinInst)
	if !ok {
		return nil, nil
	}
	if !strings.HasPrefix(builtin.Name, Prefix) {
		return nil, nil
	}
	op := &OpInfo{Inst: builtin, BuiltinName: builtin.Name}
	if err := op.decodeBuiltin(); err != nil {
		return nil, fmterr.Wrapf(srcloc.UserLocation(builtin), ErrMalformedOp, "%s", err.Error())
	}
	return op, nil
}

func (op *OpInfo) decodeBuiltin() error {
	entries := strings.Split(op.BuiltinName[len(Prefix):], ",")
	op.OpName = entries[0]
	entries = entries[1:]
	if op.OpName == "" {
		return errors.Errorf("builtin %q has no op name", op.BuiltinName)
	}
	numOperands := op.Inst.NumOperands()
	if len(entries) > numOperands {
		return errors.Errorf("builtin %q describes %d operand(s) but has %d", op.BuiltinName, len(entries), numOperands)
	}
	op.ImplicitInputs = numOperands - len(entries)
	op.Operands = make([]Operand, 0, numOperands)
	for range op.ImplicitInputs {
		op.Operands = append(op.Operands, Operand{Class: Input})
	}
	for _, entry := range entries {
		operand, err := parseOperand(entry)
		if err != nil {
			return errors.Wrapf(err, "builtin %q", op.BuiltinName)
		}
		op.Operands = append(op.Operands, operand)
	}
	return op.checkSignature()
}

// checkSignature checks the order of the operand classes.
func (op *OpInfo) checkSignature() error {
	seenAttr := false
	inShapeArray := false
	var prev *Operand
	for i := range op.Operands {
		operand := &op.Operands[i]
		switch operand.Class {
		case Input:
			if seenAttr {
				return errors.Errorf("input operand %d follows attribute operands", i)
			}
		case InputElt:
			if seenAttr {
				return errors.Errorf("input list element %d follows attribute operands", i)
			}
			if prev == nil || !prev.Class.IsInput() {
				return errors.Errorf("input list element %d does not follow an input list", i)
			}
		case ArrayElement:
			if prev == nil {
				return errors.Errorf("array element %d does not follow an array", i)
			}
			switch prev.Class {
			case Array, ArrayElement, Tensor, Shape:
			default:
				return errors.Errorf("array element %d follows a %s operand", i, prev.Class)
			}
		case Shape:
			if operand.Name == "" && !inShapeArray {
				return errors.Errorf("shape operand %d has no name", i)
			}
		default:
			if operand.Name == "" {
				return errors.Errorf("%s attribute operand %d has no name", operand.Class, i)
			}
		}
		if operand.Class.IsInput() {
			if operand.Class == InputElt && operand.Name != "" {
				return errors.Errorf("input list element %d cannot have a name", i)
			}
		} else {
			seenAttr = true
		}
		if operand.Class == ArrayElement && operand.Name != "" {
			return errors.Errorf("array element %d cannot have a name", i)
		}
		switch {
		case operand.Class == ShapeArray:
			inShapeArray = true
		case operand.Name != "":
			inShapeArray = false
		}
		prev = operand
	}
	return nil
}

// IsInput returns true if the specified operand is an input (not an attribute).
func (op *OpInfo) IsInput(i int) bool {
	return op.Operands[i].Class.IsInput()
}

// NumInputs returns the number of input operands, including input list markers and elements.
func (op *OpInfo) NumInputs() int {
	n := 0
	for n < len(op.Operands) && op.IsInput(n) {
		n++
	}
	return n
}

// SymbolicName returns the symbolic name of the op rebuilt from its operand classes.
func (op *OpInfo) SymbolicName() string {
	return Encode(op.OpName, op.ImplicitInputs, op.Operands)
}

// IsScalarToTensor returns true if the op is the scalar-to-tensor pseudo-op.
func (op *OpInfo) IsScalarToTensor() bool {
	return op.OpName == placement.ScalarToTensorOp
}

// Loc returns the location of the op in user code.
func (op *OpInfo) Loc() ir.Location {
	return srcloc.UserLocation(op.Inst)
}

// AttrOperand returns the constant instruction defining an attribute operand,
// or nil if the operand is not a valid constant for an attribute.
func (op *OpInfo) AttrOperand(i int) ir.Inst {
	return AttrOperand(op.Inst.Operand(i))
}

// FindAttr returns the index of the last operand with a given attribute name, or -1.
func (op *OpInfo) FindAttr(name string) int {
	for i := len(op.Operands) - 1; i >= 0; i-- {
		if !op.IsInput(i) && op.Operands[i].Name == name {
			return i
		}
	}
	return -1
}

// DeviceString returns the device on which the op has been placed.
// The op must have a device attribute.
func (op *OpInfo) DeviceString() (string, error) {
	i := op.FindAttr(device.Attr)
	if i < 0 || op.Operands[i].Class != Normal {
		return "", errors.Errorf("op %s has no device attribute", op.OpName)
	}
	lit, ok := op.AttrOperand(i).(*ir.StringLiteral)
	if !ok {
		return "", errors.Errorf("device attribute of op %s is not a string literal", op.OpName)
	}
	return lit.Value, nil
}

// String returns a description of the op and its operands.
func (op *OpInfo) String() string {
	ss := make([]string, len(op.Operands))
	for i, operand := range op.Operands {
		ss[i] = operand.Class.String()
		if operand.Name != "" {
			ss[i] = operand.Name + ":" + ss[i]
		}
	}
	return op.OpName + "(" + strings.Join(ss, ", ") + ")"
}
