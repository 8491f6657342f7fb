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
	"strings"
)

// String returns a textual representation of the graph.
func (g *Graph) String() string {
	var s strings.Builder
	for _, n := range g.Nodes {
		s.WriteString(n.String())
	}
	fmt.Fprintf(&s, "versions { producer: %d min_consumer: %d }\n", g.Producer, MinConsumer)
	return s.String()
}

func (n *Node) String() string {
	var s strings.Builder
	s.WriteString("node {\n")
	fmt.Fprintf(&s, "  name: %q\n", n.Name)
	fmt.Fprintf(&s, "  op: %q\n", n.Op)
	for _, input := range n.Inputs {
		fmt.Fprintf(&s, "  input: %q\n", input)
	}
	if n.Device != "" {
		fmt.Fprintf(&s, "  device: %q\n", n.Device)
	}
	for name, val := range n.Attrs.Iter() {
		fmt.Fprintf(&s, "  attr { key: %q value: %s }\n", name, val)
	}
	s.WriteString("}\n")
	return s.String()
}
