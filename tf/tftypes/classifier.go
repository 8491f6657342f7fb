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

// Package tftypes classifies the types of values exchanged with the tensor
// runtime and maps source types to runtime data types.
package tftypes

import (
	"github.com/gx-org/tflower/base/sync"
	"github.com/gx-org/tflower/build/ir"
)

// ValueKind is a kind of value known by the tensor runtime.
type ValueKind int

// Kinds of runtime values.
const (
	// NotValue is returned for types which are not runtime values.
	NotValue ValueKind = iota
	TensorHandle
	ResourceHandle
	VariantHandle
)

// String representation of the kind.
func (k ValueKind) String() string {
	switch k {
	case NotValue:
		return "none"
	case TensorHandle:
		return "TensorHandle"
	case ResourceHandle:
		return "ResourceHandle"
	case VariantHandle:
		return "VariantHandle"
	}
	return "unknown"
}

// ClassifyValue returns the kind of runtime value of a type.
func ClassifyValue(typ ir.Type) ValueKind {
	switch typ.(type) {
	case *ir.TensorHandleType:
		return TensorHandle
	case *ir.ResourceHandleType:
		return ResourceHandle
	case *ir.VariantHandleType:
		return VariantHandle
	}
	return NotValue
}

// IsTensorValue returns true if the type is a tensor handle, a resource handle, or a variant handle.
func IsTensorValue(typ ir.Type) bool {
	return ClassifyValue(typ) != NotValue
}

// IsTensorHandle returns the element type of a tensor handle type.
func IsTensorHandle(typ ir.Type) (ir.Type, bool) {
	th, ok := typ.(*ir.TensorHandleType)
	if !ok {
		return nil, false
	}
	return th.Elem, true
}

// Classifier determines whether types contain runtime values once
// structures and tuples have been flattened.
//
// Results are memoized. A classifier is owned by its caller, typically one per
// compilation unit, and can be shared by concurrent lowerings.
type Classifier struct {
	cache sync.Map[ir.Type, bool]
}

// NewClassifier returns a classifier with an empty cache.
func NewClassifier() *Classifier {
	return &Classifier{}
}

// ContainsTensorValue returns true if the type is or contains a runtime value.
func (c *Classifier) ContainsTensorValue(typ ir.Type) bool {
	contains, final := c.classify(typ, map[ir.Type]bool{})
	if !final {
		// All the types on the recursion path have been explored.
		c.cache.Store(typ, contains)
	}
	return contains
}

// classify returns whether typ contains a runtime value and whether that
// answer is final. An answer is not final when it depends on a type which
// is still being classified up the stack.
func (c *Classifier) classify(typ ir.Type, visiting map[ir.Type]bool) (contains, final bool) {
	if contains, ok := c.cache.Load(typ); ok {
		return contains, true
	}
	if IsTensorValue(typ) {
		return true, true
	}
	if visiting[typ] {
		return false, false
	}
	var elems []ir.Type
	switch typT := typ.(type) {
	case *ir.StructType:
		for _, field := range typT.Fields {
			elems = append(elems, field.Type)
		}
	case *ir.TupleType:
		elems = typT.Elems
	default:
		return false, true
	}
	visiting[typ] = true
	defer delete(visiting, typ)
	final = true
	for _, elem := range elems {
		elemContains, elemFinal := c.classify(elem, visiting)
		if elemContains {
			contains, final = true, true
			break
		}
		final = final && elemFinal
	}
	if !final {
		return contains, false
	}
	actual, _ := c.cache.LoadOrStore(typ, contains)
	return actual, true
}

// ContainsTensorValueInSignature returns true if the parameters or the results of
// a function type contain runtime values, even if abstracted by structures or tuples.
func (c *Classifier) ContainsTensorValueInSignature(fnType *ir.FunctionType) bool {
	for _, param := range fnType.Params {
		if c.ContainsTensorValue(param) {
			return true
		}
	}
	for _, result := range fnType.Results {
		if c.ContainsTensorValue(result) {
			return true
		}
	}
	return false
}

// CacheSize returns the number of types memoized by the classifier.
func (c *Classifier) CacheSize() int {
	return c.cache.Size()
}
