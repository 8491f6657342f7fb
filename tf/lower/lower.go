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

// Package lower lowers the tensor ops of functions into graphs.
//
// Each function is processed in one pass: calls to tensor construction
// functions are rewritten as Const ops, every tensor op is decoded,
// its operands are checked, canonicalized, and the op is placed on a device.
// The graph of the function is then built from the canonical ops.
package lower

import (
	"bytes"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/gx-org/tflower/build/fmterr"
	"github.com/gx-org/tflower/build/ir"
	"github.com/gx-org/tflower/tf/device"
	"github.com/gx-org/tflower/tf/graphdef"
	"github.com/gx-org/tflower/tf/placement"
	"github.com/gx-org/tflower/tf/tfop"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

type (
	// Options of the lowering.
	Options struct {
		// Dump receives the function before and after canonicalization
		// as well as the text of its graph. Nothing is dumped if nil.
		Dump io.Writer
	}

	// Result of lowering a function.
	Result struct {
		// Function is the name of the function lowered.
		Function string
		// Graph is the serialized graph.
		Graph []byte
		// Entry is the name of the node to run to execute the function.
		Entry string
		// UsedDevices are the devices on which at least one node runs.
		UsedDevices []device.Kind
	}
)

// Function lowers the tensor ops of a function into a graph.
// The function is modified in place. Nothing is returned if an error
// occurs, in which case the function should not be used anymore.
func Function(fn *ir.Function, cfg *placement.Configuration, opts Options) (*Result, error) {
	var dump bytes.Buffer
	res, err := lowerFunction(fn, cfg, &dump)
	if opts.Dump != nil {
		if _, werr := opts.Dump.Write(dump.Bytes()); werr != nil && err == nil {
			err = errors.Wrapf(werr, "cannot dump intermediates of %s", fn.Name)
		}
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

func lowerFunction(fn *ir.Function, cfg *placement.Configuration, dump io.Writer) (*Result, error) {
	klog.V(1).Infof("lowering function %s on %s", fn.Name, cfg.Device)
	fmt.Fprintf(dump, "--- %s: input\n%s\n", fn.Name, fn)
	if err := canonicalizeOps(fn, cfg); err != nil {
		return nil, err
	}
	if removed := tfop.RemoveDeadLiterals(fn); removed > 0 {
		klog.V(2).Infof("%s: removed %d dead literal(s)", fn.Name, removed)
	}
	fmt.Fprintf(dump, "--- %s: canonical\n%s\n", fn.Name, fn)
	g, entry, err := graphdef.Build(fn, cfg)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(dump, "--- %s: graph\n%s\n", fn.Name, g)
	res := &Result{
		Function:    fn.Name,
		Graph:       g.Marshal(),
		Entry:       entry,
		UsedDevices: cfg.UsedDevices(),
	}
	klog.V(1).Infof("function %s: %d node(s), %s, entry %q, devices %v", fn.Name, len(g.Nodes), humanize.Bytes(uint64(len(res.Graph))), entry, res.UsedDevices)
	return res, nil
}

// canonicalizeOps decodes, checks, and canonicalizes all the tensor ops of a function.
// Decoding and checking errors are reported for all ops before returning.
func canonicalizeOps(fn *ir.Function, cfg *placement.Configuration) error {
	errs := &fmterr.Errors{}
	errs.Push(fmterr.LocPrefixWith(fn.Loc, "function %s:\n", fn.Name))
	for _, inst := range fn.Insts() {
		if inst.Parent() != fn {
			// Erased by the canonicalization of a previous op.
			continue
		}
		if tfop.IsDecodableApply(inst) {
			cst, err := tfop.DecodeApply(inst)
			if err != nil {
				errs.Append(err)
				continue
			}
			if cst == nil {
				klog.V(2).Infof("%s: call to %s with non-constant arguments left unchanged", fn.Name, inst.(*ir.ApplyInst).Callee)
				continue
			}
			inst = cst
		}
		op, err := tfop.Decode(inst)
		if err != nil {
			errs.Append(err)
			continue
		}
		if op == nil {
			continue
		}
		if err := op.CheckOperands(); err != nil {
			errs.Append(err)
			continue
		}
		if !errs.Empty() {
			// Do not modify the function anymore once an error has been found.
			continue
		}
		rw, err := op.Canonicalize(cfg)
		if err != nil {
			errs.Append(err)
			continue
		}
		if klog.V(2).Enabled() {
			klog.Infof("%s: %s -> %s", fn.Name, rw.Old.Name, rw.New.Name)
		}
	}
	errs.Pop()
	return errs.ToError()
}
