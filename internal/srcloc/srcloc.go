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

// Package srcloc finds the location in user code of instructions which
// have been inlined from the tensor library.
package srcloc

import (
	"strings"

	"github.com/gx-org/tflower/build/ir"
)

// DefaultInternalDirs are the directories of the library implementing tensor
// operations. Locations in these directories are implementation details for users.
var DefaultInternalDirs = []string{
	"/stdlib/public/TensorFlow/",
	"/stdlib/public/DeepLearning/",
}

// Skipper skips locations internal to the library.
type Skipper struct {
	// InternalDirs are path fragments identifying internal files.
	InternalDirs []string
}

// Default returns a skipper using the default internal directories.
func Default() *Skipper {
	return &Skipper{InternalDirs: DefaultInternalDirs}
}

// IsInternal returns true if a location is inside the library.
func (s *Skipper) IsInternal(loc ir.Location) bool {
	for _, dir := range s.InternalDirs {
		if strings.Contains(loc.File, dir) {
			return true
		}
	}
	return false
}

// Skip walks the inlining chain of a location and returns the first location
// outside of the library.
// If no such location exists, the outermost location is returned.
func (s *Skipper) Skip(loc ir.Location) ir.Location {
	for s.IsInternal(loc) && loc.InlinedAt != nil {
		loc = *loc.InlinedAt
	}
	return loc
}

func (s *Skipper) isUserLoc(loc ir.Location) bool {
	return loc.IsKnown() && !s.IsInternal(loc)
}

// ForInst returns the location in user code of an instruction.
//
// Literals and other helper instructions often carry no useful location.
// In this case, the location of the users of the instruction, then of its
// operands, are used instead.
func (s *Skipper) ForInst(inst ir.Inst) ir.Location {
	loc := s.Skip(inst.Loc())
	if s.isUserLoc(loc) {
		return loc
	}
	if fn := inst.Parent(); fn != nil {
		for _, use := range fn.Uses(inst) {
			if userLoc := s.Skip(use.User.Loc()); s.isUserLoc(userLoc) {
				return userLoc
			}
		}
	}
	for _, op := range inst.Operands() {
		opInst, ok := op.(ir.Inst)
		if !ok {
			continue
		}
		if opLoc := s.Skip(opInst.Loc()); s.isUserLoc(opLoc) {
			return opLoc
		}
	}
	return loc
}

// ForValue returns the location in user code of a value.
func (s *Skipper) ForValue(v ir.Value) ir.Location {
	switch vT := v.(type) {
	case ir.Inst:
		return s.ForInst(vT)
	case *ir.Argument:
		if fn := vT.Function(); fn != nil {
			return s.Skip(fn.Loc)
		}
	}
	return ir.Location{}
}

var defaultSkipper = Default()

// UserLocation returns the location in user code of a value using the default skipper.
func UserLocation(v ir.Value) ir.Location {
	return defaultSkipper.ForValue(v)
}
