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

// Package uname provides unique names for the nodes of a graph.
package uname

import (
	"strconv"
	"strings"
)

// Unique generates unique names.
type Unique struct {
	taken map[string]bool
	next  map[string]int
}

// New name generator.
func New() *Unique {
	return &Unique{
		taken: make(map[string]bool),
		next:  make(map[string]int),
	}
}

// Register reserves a name. It returns false if the name was already taken.
func (n *Unique) Register(name string) bool {
	if n.taken[name] {
		return false
	}
	n.taken[name] = true
	return true
}

// Name returns a unique name given a desired root.
// If the root is available, it is returned directly.
// Else, a suffix _<i> is appended with the smallest i available.
func (n *Unique) Name(root string) string {
	root = Sanitize(root)
	if n.Register(root) {
		return root
	}
	for i := max(n.next[root], 1); ; i++ {
		name := root + "_" + strconv.Itoa(i)
		if n.Register(name) {
			n.next[root] = i + 1
			return name
		}
	}
}

func isNameChar(r rune, first bool) bool {
	switch {
	case 'a' <= r && r <= 'z', 'A' <= r && r <= 'Z', '0' <= r && r <= '9':
		return true
	case r == '.':
		return true
	case r == '_' || r == '/' || r == '-':
		return !first
	}
	return false
}

// Sanitize replaces the characters which cannot be used in a node name by '_'.
// A node name starts with a letter, a digit, or '.', followed by letters,
// digits, and any of "._-/".
func Sanitize(s string) string {
	if s == "" {
		return "."
	}
	var b strings.Builder
	for i, r := range s {
		switch {
		case isNameChar(r, i == 0):
			b.WriteRune(r)
		case i == 0:
			b.WriteString("._")
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
