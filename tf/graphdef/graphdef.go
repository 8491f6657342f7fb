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

// Package graphdef builds the dataflow graph of a function whose tensor ops
// have been canonicalized and placed on devices.
//
// The graph is serialized in the wire format of the runtime GraphDef
// protocol buffer message.
package graphdef

import (
	"github.com/gx-org/tflower/base/ordered"
	"github.com/pkg/errors"
)

// ErrEmission is returned when a function cannot be turned into a graph.
// It signals a problem in an earlier stage of the lowering and is always
// reported as an internal error.
var ErrEmission = errors.New("cannot emit graph")

// Producer is the version of the graph producer written in the graph.
const Producer = 26

type (
	// Graph is a set of nodes.
	Graph struct {
		Nodes []*Node
		// Producer is the version of the graph producer.
		Producer int64
	}

	// Node is a node in the graph.
	Node struct {
		Name string
		Op   string
		// Inputs are references to the outputs of other nodes: "name" for the
		// first output, "name:i" for output i, and "^name" for a control dependency.
		Inputs []string
		Device string
		Attrs  *ordered.Map[string, *AttrValue]
	}
)

// New returns an empty graph.
func New() *Graph {
	return &Graph{Producer: Producer}
}

// AddNode appends a new node to the graph.
func (g *Graph) AddNode(name, op string) *Node {
	n := &Node{Name: name, Op: op, Attrs: ordered.NewMap[string, *AttrValue]()}
	g.Nodes = append(g.Nodes, n)
	return n
}

// Node returns a node given its name or nil if no such node exists.
func (g *Graph) Node(name string) *Node {
	for _, n := range g.Nodes {
		if n.Name == name {
			return n
		}
	}
	return nil
}

// SetAttr sets the value of an attribute.
func (n *Node) SetAttr(name string, val *AttrValue) *Node {
	n.Attrs.Store(name, val)
	return n
}

// Attr returns the value of an attribute or nil if the attribute is not set.
func (n *Node) Attr(name string) *AttrValue {
	val, _ := n.Attrs.Load(name)
	return val
}
