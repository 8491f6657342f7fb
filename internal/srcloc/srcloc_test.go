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

package srcloc_test

import (
	"testing"

	"github.com/gx-org/tflower/build/ir"
	"github.com/gx-org/tflower/internal/srcloc"
)

var (
	userLoc = ir.Location{File: "/home/user/model.swift", Line: 7, Col: 3}
	libLoc  = ir.Location{File: "/swift/stdlib/public/TensorFlow/Ops.swift", Line: 120, InlinedAt: &ir.Location{
		File:      "/swift/stdlib/public/TensorFlow/Tensor.swift",
		Line:      40,
		InlinedAt: &userLoc,
	}}
)

func TestSkip(t *testing.T) {
	s := srcloc.Default()
	tests := []struct {
		loc  ir.Location
		want ir.Location
	}{
		{loc: userLoc, want: userLoc},
		{loc: libLoc, want: userLoc},
		{loc: ir.Location{}, want: ir.Location{}},
		{
			loc:  ir.Location{File: "/swift/stdlib/public/TensorFlow/Ops.swift", Line: 3},
			want: ir.Location{File: "/swift/stdlib/public/TensorFlow/Ops.swift", Line: 3},
		},
	}
	for i, test := range tests {
		if got := s.Skip(test.loc); got != test.want {
			t.Errorf("test %d: got %s but want %s", i, got, test.want)
		}
	}
}

func TestForValue(t *testing.T) {
	tensor := &ir.TensorHandleType{Elem: ir.FloatType(32)}
	fn := ir.NewFunction("f", []ir.Type{tensor}, nil)
	fn.Loc = userLoc
	b := ir.NewBuilder(fn)
	lit := b.At(ir.Location{}).IntegerLiteral(1, ir.IntType(64))
	op := b.At(libLoc).Builtin("__tfop_Foo,$in,x", tensor, fn.Params[0], lit)
	orphan := b.At(ir.Location{}).IntegerLiteral(2, ir.IntType(64))

	if got := srcloc.UserLocation(lit); got != userLoc {
		t.Errorf("literal: got %s but want %s", got, userLoc)
	}
	if got := srcloc.UserLocation(op); got != userLoc {
		t.Errorf("op: got %s but want %s", got, userLoc)
	}
	if got := srcloc.UserLocation(fn.Params[0]); got != userLoc {
		t.Errorf("argument: got %s but want %s", got, userLoc)
	}
	if got := srcloc.UserLocation(orphan); got.IsKnown() {
		t.Errorf("orphan literal: got %s but want an unknown location", got)
	}
}
