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
	"math"

	"github.com/gomlx/gopjrt/dtypes/bfloat16"
	"github.com/gx-org/backend/shape"
	"github.com/gx-org/tflower/tf/tftypes"
	"github.com/x448/float16"
	"google.golang.org/protobuf/encoding/protowire"
)

// Field numbers of the GraphDef protocol buffer messages.
const (
	graphNodeField     protowire.Number = 1
	graphVersionsField protowire.Number = 4

	versionProducerField    protowire.Number = 1
	versionMinConsumerField protowire.Number = 2

	nodeNameField   protowire.Number = 1
	nodeOpField     protowire.Number = 2
	nodeInputField  protowire.Number = 3
	nodeDeviceField protowire.Number = 4
	nodeAttrField   protowire.Number = 5

	mapKeyField   protowire.Number = 1
	mapValueField protowire.Number = 2

	attrListField   protowire.Number = 1
	attrSField      protowire.Number = 2
	attrIField      protowire.Number = 3
	attrFField      protowire.Number = 4
	attrBField      protowire.Number = 5
	attrTypeField   protowire.Number = 6
	attrShapeField  protowire.Number = 7
	attrTensorField protowire.Number = 8

	shapeDimField         protowire.Number = 2
	shapeUnknownRankField protowire.Number = 3
	dimSizeField          protowire.Number = 1

	tensorDTypeField  protowire.Number = 1
	tensorShapeField  protowire.Number = 2
	tensorFloatField  protowire.Number = 5
	tensorDoubleField protowire.Number = 6
	tensorIntField    protowire.Number = 7
	tensorInt64Field  protowire.Number = 10
	tensorBoolField   protowire.Number = 11
	tensorHalfField   protowire.Number = 13
	tensorUint32Field protowire.Number = 16
	tensorUint64Field protowire.Number = 17
)

// MinConsumer is the minimum version of the consumer of the graph.
const MinConsumer = 12

type encoder func([]byte) []byte

func appendMessage(b []byte, num protowire.Number, enc encoder) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, enc(nil))
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendVarint(b []byte, num protowire.Number, v uint64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendPacked[T any](b []byte, num protowire.Number, vals []T, f func([]byte, T) []byte) []byte {
	if len(vals) == 0 {
		return b
	}
	return appendMessage(b, num, func(b []byte) []byte {
		for _, v := range vals {
			b = f(b, v)
		}
		return b
	})
}

func varintOf[T ~int64 | ~int32 | ~int](b []byte, v T) []byte {
	return protowire.AppendVarint(b, uint64(int64(v)))
}

func boolOf(b []byte, v bool) []byte {
	return protowire.AppendVarint(b, protowire.EncodeBool(v))
}

func float32Of(b []byte, v float64) []byte {
	return protowire.AppendFixed32(b, math.Float32bits(float32(v)))
}

func float64Of(b []byte, v float64) []byte {
	return protowire.AppendFixed64(b, math.Float64bits(v))
}

func halfOf(b []byte, v float64) []byte {
	return protowire.AppendVarint(b, uint64(float16.Fromfloat32(float32(v)).Bits()))
}

func bfloat16Of(b []byte, v float64) []byte {
	return protowire.AppendVarint(b, uint64(bfloat16.FromFloat32(float32(v))))
}

// Marshal encodes the graph in the GraphDef wire format.
func (g *Graph) Marshal() []byte {
	var b []byte
	for _, n := range g.Nodes {
		b = appendMessage(b, graphNodeField, n.marshal)
	}
	return appendMessage(b, graphVersionsField, func(b []byte) []byte {
		b = appendVarint(b, versionProducerField, uint64(g.Producer))
		return appendVarint(b, versionMinConsumerField, MinConsumer)
	})
}

func (n *Node) marshal(b []byte) []byte {
	b = appendString(b, nodeNameField, n.Name)
	b = appendString(b, nodeOpField, n.Op)
	for _, input := range n.Inputs {
		b = appendString(b, nodeInputField, input)
	}
	if n.Device != "" {
		b = appendString(b, nodeDeviceField, n.Device)
	}
	for name, val := range n.Attrs.Iter() {
		b = appendMessage(b, nodeAttrField, func(b []byte) []byte {
			b = appendString(b, mapKeyField, name)
			return appendMessage(b, mapValueField, val.marshal)
		})
	}
	return b
}

func (v *AttrValue) marshal(b []byte) []byte {
	switch v.Kind {
	case StringKind:
		return appendString(b, attrSField, v.S)
	case IntKind:
		return appendVarint(b, attrIField, uint64(v.I))
	case FloatKind:
		b = protowire.AppendTag(b, attrFField, protowire.Fixed32Type)
		return float32Of(b, v.F)
	case BoolKind:
		return appendVarint(b, attrBField, protowire.EncodeBool(v.B))
	case TypeKind:
		return appendVarint(b, attrTypeField, uint64(v.Type))
	case ShapeKind:
		return appendMessage(b, attrShapeField, shapeEncoder(v.Shape))
	case TensorKind:
		return appendMessage(b, attrTensorField, v.Tensor.marshal)
	case ListKind:
		return appendMessage(b, attrListField, v.List.marshal)
	}
	return b
}

func (l *AttrList) marshal(b []byte) []byte {
	switch l.Kind {
	case StringKind:
		for _, s := range l.S {
			b = appendString(b, attrSField, s)
		}
	case IntKind:
		b = appendPacked(b, attrIField, l.I, varintOf[int64])
	case FloatKind:
		b = appendPacked(b, attrFField, l.F, float32Of)
	case BoolKind:
		b = appendPacked(b, attrBField, l.B, boolOf)
	case TypeKind:
		b = appendPacked(b, attrTypeField, l.Type, varintOf[tftypes.DataType])
	case ShapeKind:
		for _, sh := range l.Shape {
			b = appendMessage(b, attrShapeField, shapeEncoder(sh))
		}
	}
	return b
}

func shapeEncoder(sh *shape.Shape) encoder {
	return func(b []byte) []byte {
		if sh == nil {
			return appendVarint(b, shapeUnknownRankField, protowire.EncodeBool(true))
		}
		for _, dim := range sh.AxisLengths {
			b = appendMessage(b, shapeDimField, func(b []byte) []byte {
				return appendVarint(b, dimSizeField, uint64(int64(dim)))
			})
		}
		return b
	}
}

func (t *Tensor) marshal(b []byte) []byte {
	b = appendVarint(b, tensorDTypeField, uint64(t.DType))
	b = appendMessage(b, tensorShapeField, shapeEncoder(t.Shape))
	switch t.DType {
	case tftypes.Float:
		b = appendPacked(b, tensorFloatField, t.Floats, float32Of)
	case tftypes.Double:
		b = appendPacked(b, tensorDoubleField, t.Floats, float64Of)
	case tftypes.Half:
		b = appendPacked(b, tensorHalfField, t.Floats, halfOf)
	case tftypes.Bfloat16:
		b = appendPacked(b, tensorHalfField, t.Floats, bfloat16Of)
	case tftypes.Int64:
		b = appendPacked(b, tensorInt64Field, t.Ints, varintOf[int64])
	case tftypes.Uint32:
		b = appendPacked(b, tensorUint32Field, t.Ints, varintOf[int64])
	case tftypes.Uint64:
		b = appendPacked(b, tensorUint64Field, t.Ints, varintOf[int64])
	case tftypes.Bool:
		b = appendPacked(b, tensorBoolField, t.Ints, func(b []byte, v int64) []byte {
			return boolOf(b, v != 0)
		})
	default:
		b = appendPacked(b, tensorIntField, t.Ints, varintOf[int64])
	}
	return b
}
