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

// Package placement chooses the device on which tensor operations run
// and tracks the devices used by a graph.
package placement

import (
	"slices"

	"github.com/gx-org/tflower/build/ir"
	"github.com/gx-org/tflower/tf/device"
	"github.com/pkg/errors"
	"golang.org/x/exp/maps"
	"k8s.io/klog/v2"
)

// ScalarToTensorOp is the pseudo-op promoting a scalar to a tensor.
// It is expanded into real ops later on, each of them being placed then.
const ScalarToTensorOp = "tfc.scalarToTensor"

// DeviceSuffix is appended to the symbolic name of an op when a device
// attribute operand is appended to its operands.
const DeviceSuffix = "," + device.Attr

var (
	// ErrContract is returned when an op violates a placement precondition.
	ErrContract = errors.New("device placement contract violation")

	// ErrNoKernel is returned when no device can run an op.
	ErrNoKernel = errors.New("no kernel available")
)

type (
	// KernelAvailability reports whether the runtime has a kernel for an op on a device.
	KernelAvailability func(opType string, kind device.Kind) bool

	// Configuration is the global configuration of a graph being generated.
	// Each graph owns its configuration: configurations must not be shared
	// between concurrent lowerings.
	Configuration struct {
		// Device is the default device for ops without an explicit device.
		Device device.Kind
		// TPUInfeed enables on-device streaming input on TPUs.
		TPUInfeed bool
		// KernelAvailable is optional. If nil, ops are placed on Device
		// without checking if the runtime has a kernel for them.
		KernelAvailable KernelAvailability

		used map[device.Kind]bool
	}

	// Option of a configuration.
	Option func(*Configuration)

	// Placement is the result of placing an op.
	Placement struct {
		// Device on which the op runs.
		Device device.Kind
		// Operands to append to the operands of the op.
		Operands []ir.Value
		// NameSuffix to append to the symbolic name of the op.
		NameSuffix string
		// Placed is true if a new placement decision has been made,
		// false if the op had an explicit device or is not placed at all.
		Placed bool
		// Skipped is true if the op does not get any device.
		Skipped bool
	}
)

// WithTPUInfeed enables on-device streaming input.
func WithTPUInfeed() Option {
	return func(c *Configuration) {
		c.TPUInfeed = true
	}
}

// WithKernelAvailability checks kernel availability when choosing a device.
func WithKernelAvailability(available KernelAvailability) Option {
	return func(c *Configuration) {
		c.KernelAvailable = available
	}
}

// New returns a configuration targeting a given device.
func New(kind device.Kind, opts ...Option) *Configuration {
	c := &Configuration{Device: kind, used: make(map[device.Kind]bool)}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// IsTPUEnabled returns true if the graph targets TPUs.
func (c *Configuration) IsTPUEnabled() bool {
	return c.Device == device.TPU
}

// UsedDevices returns the devices used so far by ops in the graph, sorted by kind.
func (c *Configuration) UsedDevices() []device.Kind {
	kinds := maps.Keys(c.used)
	slices.Sort(kinds)
	return kinds
}

// Uses returns true if at least one op has been placed on a given device.
func (c *Configuration) Uses(kind device.Kind) bool {
	return c.used[kind]
}

func (c *Configuration) markUsed(kind device.Kind) {
	if c.used == nil {
		c.used = make(map[device.Kind]bool)
	}
	c.used[kind] = true
}

// PlaceDevice chooses a device for an op, builds the device attribute operand
// with b, and tracks the chosen device.
//
// If opDevice is set, that device is respected and the returned placement
// is not marked as Placed. Its device string is still materialized as a new
// operand: the original operand is expected to be removed by a later cleanup.
func (c *Configuration) PlaceDevice(b *ir.Builder, opType, opDevice string) (*Placement, error) {
	if opType == ScalarToTensorOp {
		if opDevice != "" {
			return nil, errors.Wrapf(ErrContract, "%s cannot have an explicit device (got %q)", ScalarToTensorOp, opDevice)
		}
		return &Placement{Skipped: true}, nil
	}
	chosen, err := c.Choose(opType, opDevice)
	if err != nil {
		return nil, err
	}
	deviceStr := b.StringLiteral(chosen.String())
	return &Placement{
		Device:     chosen,
		Operands:   []ir.Value{deviceStr},
		NameSuffix: DeviceSuffix,
		Placed:     opDevice == "",
	}, nil
}

// Choose returns the device on which an op runs given its explicit device
// (empty if none) and records that device as used.
// Unlike PlaceDevice, no operand is built.
func (c *Configuration) Choose(opType, opDevice string) (device.Kind, error) {
	chosen, err := c.chooseDevice(opType, opDevice)
	if err != nil {
		return 0, err
	}
	c.markUsed(chosen)
	if klog.V(2).Enabled() {
		klog.Infof("op %s placed on %s (explicit device: %q)", opType, chosen, opDevice)
	}
	return chosen, nil
}

func (c *Configuration) chooseDevice(opType, opDevice string) (device.Kind, error) {
	if opDevice != "" {
		return device.Parse(opDevice)
	}
	if c.KernelAvailable == nil || c.KernelAvailable(opType, c.Device) {
		return c.Device, nil
	}
	if c.Device != device.CPU && c.KernelAvailable(opType, device.CPU) {
		klog.V(1).Infof("no kernel for op %s on %s: falling back to %s", opType, c.Device, device.CPU)
		return device.CPU, nil
	}
	return 0, errors.Wrapf(ErrNoKernel, "op %s on %s", opType, c.Device)
}
