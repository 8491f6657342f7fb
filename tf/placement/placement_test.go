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

package placement_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/gx-org/tflower/build/ir"
	"github.com/gx-org/tflower/tf/device"
	"github.com/gx-org/tflower/tf/placement"
	"github.com/pkg/errors"
)

func newBuilder() *ir.Builder {
	return ir.NewBuilder(ir.NewFunction("f", nil, nil))
}

func TestPlaceOnConfigurationDevice(t *testing.T) {
	cfg := placement.New(device.GPU)
	b := newBuilder()
	pl, err := cfg.PlaceDevice(b, "Add", "")
	if err != nil {
		t.Fatal(err)
	}
	if pl.Device != device.GPU || !pl.Placed || pl.Skipped {
		t.Errorf("unexpected placement: %+v", pl)
	}
	if pl.NameSuffix != ",device" {
		t.Errorf("got suffix %q but want %q", pl.NameSuffix, ",device")
	}
	if len(pl.Operands) != 1 {
		t.Fatalf("got %d operands but want 1", len(pl.Operands))
	}
	lit, ok := pl.Operands[0].(*ir.StringLiteral)
	if !ok {
		t.Fatalf("got operand %T but want *ir.StringLiteral", pl.Operands[0])
	}
	if lit.Value != "/device:GPU:0" {
		t.Errorf("got device %q but want %q", lit.Value, "/device:GPU:0")
	}
	if lit.Parent() != b.Function() {
		t.Errorf("device literal has not been inserted in the function")
	}
	if diff := cmp.Diff([]device.Kind{device.GPU}, cfg.UsedDevices()); diff != "" {
		t.Errorf("unexpected used devices (-want +got):\n%s", diff)
	}
}

func TestExplicitDevice(t *testing.T) {
	cfg := placement.New(device.GPU)
	b := newBuilder()
	for i := range 2 {
		before := cfg.UsedDevices()
		pl, err := cfg.PlaceDevice(b, "MatMul", device.CPUDevice)
		if err != nil {
			t.Fatal(err)
		}
		if pl.Device != device.CPU || pl.Placed {
			t.Errorf("pass %d: unexpected placement: %+v", i, pl)
		}
		if lit := pl.Operands[0].(*ir.StringLiteral); lit.Value != device.CPUDevice {
			t.Errorf("pass %d: got device %q but want %q", i, lit.Value, device.CPUDevice)
		}
		after := cfg.UsedDevices()
		want := []device.Kind{device.CPU}
		if i == 0 && len(before) != 0 {
			t.Errorf("pass %d: configuration used devices before any placement: %v", i, before)
		}
		if diff := cmp.Diff(want, after); diff != "" {
			t.Errorf("pass %d: unexpected used devices (-want +got):\n%s", i, diff)
		}
	}
	if cfg.Uses(device.GPU) {
		t.Errorf("configuration uses %s but no op has been placed on it", device.GPU)
	}
}

func TestUnknownExplicitDevice(t *testing.T) {
	cfg := placement.New(device.CPU)
	_, err := cfg.PlaceDevice(newBuilder(), "Add", "/device:XPU:0")
	if !errors.Is(err, device.ErrUnknownDevice) {
		t.Errorf("got error %v but want %v", err, device.ErrUnknownDevice)
	}
	if len(cfg.UsedDevices()) != 0 {
		t.Errorf("failed placement recorded a device: %v", cfg.UsedDevices())
	}
}

func TestScalarToTensor(t *testing.T) {
	cfg := placement.New(device.TPU)
	b := newBuilder()
	pl, err := cfg.PlaceDevice(b, placement.ScalarToTensorOp, "")
	if err != nil {
		t.Fatal(err)
	}
	if !pl.Skipped || pl.Placed || len(pl.Operands) != 0 || pl.NameSuffix != "" {
		t.Errorf("unexpected placement for %s: %+v", placement.ScalarToTensorOp, pl)
	}
	if b.Function().Len() != 0 {
		t.Errorf("placement of %s inserted instructions", placement.ScalarToTensorOp)
	}
	if _, err := cfg.PlaceDevice(b, placement.ScalarToTensorOp, device.TPUDevice); !errors.Is(err, placement.ErrContract) {
		t.Errorf("got error %v but want %v", err, placement.ErrContract)
	}
	if len(cfg.UsedDevices()) != 0 {
		t.Errorf("unexpected used devices: %v", cfg.UsedDevices())
	}
}

func TestUsedDevicesMatchPlacements(t *testing.T) {
	cfg := placement.New(device.TPU, placement.WithTPUInfeed())
	if !cfg.IsTPUEnabled() || !cfg.TPUInfeed {
		t.Fatalf("unexpected configuration: %+v", cfg)
	}
	b := newBuilder()
	explicit := []string{"", device.CPUDevice, "", device.CPUDevice, device.TPUDevice, ""}
	returned := make(map[device.Kind]bool)
	for _, dev := range explicit {
		pl, err := cfg.PlaceDevice(b, "Mul", dev)
		if err != nil {
			t.Fatal(err)
		}
		returned[pl.Device] = true
	}
	for _, k := range device.All() {
		if cfg.Uses(k) != returned[k] {
			t.Errorf("%s: configuration uses it: %v, returned by a placement: %v", k, cfg.Uses(k), returned[k])
		}
	}
	if diff := cmp.Diff([]device.Kind{device.CPU, device.TPU}, cfg.UsedDevices()); diff != "" {
		t.Errorf("unexpected used devices (-want +got):\n%s", diff)
	}
}

func TestKernelAvailability(t *testing.T) {
	kernels := map[string][]device.Kind{
		"Add":       {device.CPU, device.GPU},
		"DecodePng": {device.CPU},
	}
	available := func(opType string, kind device.Kind) bool {
		for _, k := range kernels[opType] {
			if k == kind {
				return true
			}
		}
		return false
	}
	cfg := placement.New(device.GPU, placement.WithKernelAvailability(available))
	tests := []struct {
		op   string
		want device.Kind
		err  error
	}{
		{op: "Add", want: device.GPU},
		{op: "DecodePng", want: device.CPU},
		{op: "Unknown", err: placement.ErrNoKernel},
	}
	for _, test := range tests {
		pl, err := cfg.PlaceDevice(newBuilder(), test.op, "")
		if test.err != nil {
			if !errors.Is(err, test.err) {
				t.Errorf("%s: got error %v but want %v", test.op, err, test.err)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s: %v", test.op, err)
			continue
		}
		if pl.Device != test.want {
			t.Errorf("%s: got device %s but want %s", test.op, pl.Device, test.want)
		}
	}
}
