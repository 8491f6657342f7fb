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

package graphdef

import (
	"fmt"

	"github.com/gx-org/backend/shape"
	"github.com/gx-org/tflower/base/uname"
	"github.com/gx-org/tflower/build/fmterr"
	"github.com/gx-org/tflower/build/ir"
	"github.com/gx-org/tflower/internal/srcloc"
	"github.com/gx-org/tflower/tf/device"
	"github.com/gx-org/tflower/tf/placement"
	"github.com/gx-org/tflower/tf/tfop"
	"github.com/gx-org/tflower/tf/tftypes"
)

// Names of the nodes and attributes created for the inputs and outputs of a function.
const (
	inputPrefix  = "tfc_input_"
	infeedPrefix = "tfc_infeed_"
	outputPrefix = "tfc_output_"
)

type emitter struct {
	fn    *ir.Function
	cfg   *placement.Configuration
	graph *Graph
	names *uname.Unique

	// refs maps tensor values to the output of the node computing them.
	refs map[ir.Value]string
	// tuples maps tuples of tensors to the node computing them.
	tuples map[ir.Value]string
	// outputs are the names of the nodes returning the results of the function.
	outputs []string
}

// Build returns the graph of a function and the name of its entry node.
// Running the entry node runs the whole function.
//
// All tensor ops in the function need to be canonical and placed on a device.
// Function arguments are fed through placeholders or, on TPUs with infeed
// enabled, through a single infeed node.
func Build(fn *ir.Function, cfg *placement.Configuration) (*Graph, string, error) {
	if cfg == nil {
		return nil, "", fmterr.Internalf(fn.Loc, "no graph configuration to build function %s", fn.Name)
	}
	e := &emitter{
		fn:     fn,
		cfg:    cfg,
		graph:  New(),
		names:  uname.New(),
		refs:   make(map[ir.Value]string),
		tuples: make(map[ir.Value]string),
	}
	entry := e.names.Name(fn.Name)
	if err := e.emitArgs(); err != nil {
		return nil, "", err
	}
	for _, inst := range fn.Insts() {
		if err := e.emitInst(inst); err != nil {
			return nil, "", err
		}
	}
	node := e.graph.AddNode(entry, "NoOp")
	for _, out := range e.outputs {
		node.Inputs = append(node.Inputs, "^"+out)
	}
	return e.graph, entry, nil
}

// Lower builds the graph of a function and returns it in the GraphDef wire
// format together with the name of its entry node.
func Lower(fn *ir.Function, cfg *placement.Configuration) ([]byte, string, error) {
	g, entry, err := Build(fn, cfg)
	if err != nil {
		return nil, "", err
	}
	return g.Marshal(), entry, nil
}

func (e *emitter) errorf(loc ir.Location, format string, a ...any) error {
	return fmterr.Internal(fmterr.Wrapf(loc, ErrEmission, format, a...))
}

func outputRef(name string, i int) string {
	if i == 0 {
		return name
	}
	return fmt.Sprintf("%s:%d", name, i)
}

func dtypeOf(typ ir.Type) (tftypes.DataType, bool) {
	switch tftypes.ClassifyValue(typ) {
	case tftypes.TensorHandle:
		elem, _ := tftypes.IsTensorHandle(typ)
		dt := tftypes.ConvertType(elem)
		return dt, dt.IsKnown()
	case tftypes.ResourceHandle:
		return tftypes.Resource, true
	case tftypes.VariantHandle:
		return tftypes.Variant, true
	}
	return tftypes.Invalid, false
}

func (e *emitter) emitArgs() error {
	dtypes := make([]tftypes.DataType, len(e.fn.Params))
	for i, param := range e.fn.Params {
		dt, ok := dtypeOf(param.Typ)
		if !ok {
			return e.errorf(e.fn.Loc, "argument %d of function %s has type %s which is not a tensor", i, e.fn.Name, param.Typ)
		}
		dtypes[i] = dt
	}
	if len(dtypes) == 0 {
		return nil
	}
	if e.cfg.IsTPUEnabled() && e.cfg.TPUInfeed {
		return e.emitInfeed(dtypes)
	}
	for i, param := range e.fn.Params {
		node := e.graph.AddNode(e.names.Name(fmt.Sprintf("%s%d_%s", inputPrefix, i, e.fn.Name)), "Placeholder")
		node.SetAttr("dtype", TypeAttr(dtypes[i]))
		node.SetAttr("shape", ShapeAttr(nil))
		e.refs[param] = node.Name
	}
	return nil
}

func (e *emitter) emitInfeed(dtypes []tftypes.DataType) error {
	const opName = "InfeedDequeueTuple"
	dev, err := e.cfg.Choose(opName, "")
	if err != nil {
		return fmterr.Position(e.fn.Loc, err)
	}
	node := e.graph.AddNode(e.names.Name(infeedPrefix+e.fn.Name), opName)
	node.Device = dev.String()
	node.SetAttr("dtypes", ListAttr(&AttrList{Kind: TypeKind, Type: dtypes}))
	node.SetAttr("shapes", ListAttr(&AttrList{Kind: ShapeKind, Shape: make([]*shape.Shape, len(dtypes))}))
	for i, param := range e.fn.Params {
		e.refs[param] = outputRef(node.Name, i)
	}
	return nil
}

func (e *emitter) emitInst(inst ir.Inst) error {
	switch instT := inst.(type) {
	case *ir.BuiltinInst:
		return e.emitBuiltin(instT)
	case *ir.ReturnInst:
		return e.emitReturn(instT)
	case *ir.CopyValueInst:
		if ref, ok := e.refs[instT.Operand(0)]; ok {
			e.refs[inst] = ref
			return nil
		}
	case *ir.TupleExtractInst:
		if name, ok := e.tuples[instT.Operand(0)]; ok {
			e.refs[inst] = outputRef(name, instT.Index)
			return nil
		}
	}
	if tftypes.IsTensorValue(inst.Type()) {
		return e.errorf(srcloc.UserLocation(inst), "tensor value of type %s computed by %T instead of a tensor op", inst.Type(), inst)
	}
	return nil
}

func (e *emitter) setResult(inst ir.Inst, name string) {
	typ := inst.Type()
	if tftypes.IsTensorValue(typ) {
		e.refs[inst] = name
		return
	}
	if _, isTuple := typ.(*ir.TupleType); isTuple {
		e.tuples[inst] = name
	}
}

func (e *emitter) addInput(node *Node, v ir.Value) error {
	ref, ok := e.refs[v]
	if !ok {
		return e.errorf(srcloc.UserLocation(v), "input of node %s of type %s is not computed by a tensor op", node.Name, v.Type())
	}
	node.Inputs = append(node.Inputs, ref)
	return nil
}

var deviceOperand = tfop.Operand{Name: device.Attr, Class: tfop.Normal}

func (e *emitter) emitBuiltin(inst *ir.BuiltinInst) error {
	op, err := tfop.Decode(inst)
	if err != nil {
		return fmterr.Internal(err)
	}
	if op == nil {
		if tftypes.IsTensorValue(inst.Type()) {
			return e.errorf(srcloc.UserLocation(inst), "builtin %s computing a tensor is not a tensor op", inst.Name)
		}
		return nil
	}
	if op.IsScalarToTensor() {
		return e.emitScalarToTensor(op)
	}
	last := len(op.Operands) - 1
	if last < 0 || op.Operands[last] != deviceOperand {
		return e.errorf(op.Loc(), "op %s has not been placed on a device", inst.Name)
	}
	dev, err := op.DeviceString()
	if err != nil {
		return e.errorf(op.Loc(), "%v", err)
	}
	node := e.graph.AddNode(e.names.Name(op.OpName), op.OpName)
	node.Device = dev
	for i := 0; i < last; {
		if i, err = e.emitOperand(node, op, i); err != nil {
			return err
		}
	}
	e.setResult(inst, node.Name)
	return nil
}

func (e *emitter) emitScalarToTensor(op *tfop.OpInfo) error {
	v := op.Inst.Operand(0)
	lit := tfop.AttrOperand(v)
	dt := tftypes.ConvertType(v.Type())
	if lit != nil && !dt.IsKnown() {
		dt = tftypes.ConvertType(lit.Type())
	}
	t := &Tensor{DType: dt, Shape: NewShape(dt)}
	if err := appendScalar(t, lit); err != nil {
		return e.errorf(op.Loc(), "scalar promoted to a tensor: %v", err)
	}
	const opName = "Const"
	dev, err := e.cfg.Choose(opName, "")
	if err != nil {
		return fmterr.Position(op.Loc(), err)
	}
	node := e.graph.AddNode(e.names.Name(opName), opName)
	node.Device = dev.String()
	node.SetAttr("dtype", TypeAttr(dt))
	node.SetAttr("value", TensorAttr(t))
	e.setResult(op.Inst, node.Name)
	return nil
}

func (e *emitter) emitReturn(ret *ir.ReturnInst) error {
	vals := ret.Operands()
	if len(vals) == 1 {
		if tuple, ok := vals[0].(*ir.TupleInst); ok {
			vals = tuple.Operands()
		}
	}
	for i, v := range vals {
		ref, ok := e.refs[v]
		if !ok {
			return e.errorf(srcloc.UserLocation(ret), "result %d of type %s is not computed by a tensor op", i, v.Type())
		}
		dt, _ := dtypeOf(v.Type())
		node := e.graph.AddNode(e.names.Name(fmt.Sprintf("%s%d_%s", outputPrefix, i, e.fn.Name)), "Identity")
		node.Inputs = []string{ref}
		node.SetAttr("T", TypeAttr(dt))
		e.outputs = append(e.outputs, node.Name)
	}
	return nil
}
