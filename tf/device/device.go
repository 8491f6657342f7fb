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

// Package device lists the devices on which tensor operations can be placed.
package device

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Kind of device.
type Kind int

// Kinds of devices supported by the runtime.
const (
	CPU Kind = iota
	GPU
	TPU
)

// Canonical device strings used by the runtime.
const (
	CPUDevice = "/device:CPU:0"
	GPUDevice = "/device:GPU:0"
	TPUDevice = "TPU_SYSTEM"

	// Attr is the name of the attribute holding the device of an op.
	Attr = "device"
)

// ErrUnknownDevice is returned when a device string does not match any known device.
var ErrUnknownDevice = errors.New("unknown device")

// All returns all the kinds of devices.
func All() []Kind {
	return []Kind{CPU, GPU, TPU}
}

// String returns the device string used by the runtime in graphs.
func (k Kind) String() string {
	switch k {
	case CPU:
		return CPUDevice
	case GPU:
		return GPUDevice
	case TPU:
		return TPUDevice
	}
	panic(fmt.Sprintf("device kind %d not supported", int(k)))
}

// ShortName returns a short name of the device which can be used in identifiers.
func (k Kind) ShortName() string {
	switch k {
	case CPU:
		return "CPU"
	case GPU:
		return "GPU"
	case TPU:
		return "TPU"
	}
	panic(fmt.Sprintf("device kind %d not supported", int(k)))
}

// Parse returns the kind of device given a canonical device string.
func Parse(device string) (Kind, error) {
	for _, k := range All() {
		if k.String() == device {
			return k, nil
		}
	}
	return 0, errors.Wrapf(ErrUnknownDevice, "%q (want one of %q, %q, %q)", device, CPUDevice, GPUDevice, TPUDevice)
}

// ParseShortName returns the kind of device given its short name.
// The comparison is case-insensitive.
func ParseShortName(name string) (Kind, error) {
	for _, k := range All() {
		if strings.EqualFold(k.ShortName(), name) {
			return k, nil
		}
	}
	return 0, errors.Wrapf(ErrUnknownDevice, "short name %q", name)
}
