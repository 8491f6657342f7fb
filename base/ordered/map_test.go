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

package ordered_test

import (
	"maps"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/gx-org/tflower/base/ordered"
)

type entry struct {
	K string
	V int
}

func TestMap(t *testing.T) {
	tests := []struct {
		entries []entry
		want    []entry
	}{
		{
			entries: []entry{{"dtype", 1}, {"value", 2}, {"device", 3}},
			want:    []entry{{"dtype", 1}, {"value", 2}, {"device", 3}},
		},
		{
			entries: []entry{{"T", 1}, {"N", 2}, {"T", 3}},
			want:    []entry{{"T", 3}, {"N", 2}},
		},
		{
			entries: []entry{{"a", 1}, {"a", 2}, {"a", 3}},
			want:    []entry{{"a", 3}},
		},
		{},
	}
	for i, test := range tests {
		m := ordered.NewMap[string, int]()
		for _, e := range test.entries {
			m.Store(e.K, e.V)
		}
		if m.Size() != len(test.want) {
			t.Errorf("test %d: map has %d entries but want %d", i, m.Size(), len(test.want))
			continue
		}
		var got []entry
		for k, v := range m.Iter() {
			got = append(got, entry{k, v})
		}
		if diff := cmp.Diff(test.want, got); diff != "" {
			t.Errorf("test %d: unexpected entries (-want +got):\n%s", i, diff)
		}
		for _, e := range test.want {
			v, ok := m.Load(e.K)
			if !ok || v != e.V {
				t.Errorf("test %d: got %s->%d,%v but want %s->%d", i, e.K, v, ok, e.K, e.V)
			}
		}
		if _, ok := m.Load("missing"); ok || m.Has("missing") {
			t.Errorf("test %d: map has a key never stored", i)
		}
	}
}

func TestKeysStopEarly(t *testing.T) {
	m := ordered.NewMap[string, bool]()
	for _, k := range []string{"c", "a", "b"} {
		m.Store(k, true)
	}
	var got []string
	for k := range m.Keys() {
		got = append(got, k)
		if len(got) == 2 {
			break
		}
	}
	if diff := cmp.Diff([]string{"c", "a"}, got); diff != "" {
		t.Errorf("unexpected keys (-want +got):\n%s", diff)
	}
	all := maps.Collect(m.Iter())
	if diff := cmp.Diff([]string{"a", "b", "c"}, slices.Sorted(maps.Keys(all))); diff != "" {
		t.Errorf("unexpected keys (-want +got):\n%s", diff)
	}
}
