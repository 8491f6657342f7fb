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

// Package tfflag provides the command-line flags configuring the lowering
// of tensor ops into graphs.
package tfflag

import (
	"flag"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/gx-org/tflower/tf/device"
	"github.com/gx-org/tflower/tf/lower"
	"github.com/gx-org/tflower/tf/placement"
	"github.com/pkg/errors"
)

type stringList struct {
	list *[]string
}

func (sl *stringList) String() string {
	if sl.list == nil {
		return ""
	}
	return strings.Join(*sl.list, ",")
}

func (sl *stringList) Set(values string) error {
	for _, value := range strings.Split(values, ",") {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		*sl.list = append(*sl.list, value)
	}
	return nil
}

type deviceValue struct {
	kind *device.Kind
}

func (dv *deviceValue) String() string {
	if dv.kind == nil {
		return ""
	}
	return dv.kind.ShortName()
}

func (dv *deviceValue) Set(value string) error {
	kind, err := device.ParseShortName(value)
	if err == nil {
		*dv.kind = kind
		return nil
	}
	if kind, err = device.Parse(value); err != nil {
		return err
	}
	*dv.kind = kind
	return nil
}

// Flags configuring the lowering.
type Flags struct {
	// Device is the default device of the ops.
	Device device.Kind
	// TPUInfeed enables on-device streaming input when targeting TPUs.
	TPUInfeed bool
	// DumpIntermediates is the path of the file receiving intermediate
	// representations. "-" is the standard error.
	DumpIntermediates string
	// CPUOnlyOps are the ops for which the runtime has only CPU kernels.
	CPUOnlyOps []string
}

// Register registers the flags in a flag set.
func Register(fs *flag.FlagSet) *Flags {
	f := &Flags{Device: device.CPU}
	fs.Var(&deviceValue{kind: &f.Device}, "tf-target-device", "default device of tensor ops: cpu, gpu, tpu, or a runtime device string")
	fs.BoolVar(&f.TPUInfeed, "tf-tpu-infeed", false, "feed function arguments with an infeed node when targeting TPUs")
	fs.StringVar(&f.DumpIntermediates, "tf-dump-intermediates", "", "file receiving the intermediate representations of the lowering ('-' for stderr)")
	fs.Var(&stringList{list: &f.CPUOnlyOps}, "tf-cpu-only-ops", "comma separated list of ops only available on CPU")
	return f
}

func (f *Flags) kernelAvailable(opType string, kind device.Kind) bool {
	return kind == device.CPU || !slices.Contains(f.CPUOnlyOps, opType)
}

// NewConfiguration returns a new graph configuration given the flags.
func (f *Flags) NewConfiguration() *placement.Configuration {
	var opts []placement.Option
	if f.TPUInfeed {
		opts = append(opts, placement.WithTPUInfeed())
	}
	if len(f.CPUOnlyOps) > 0 {
		opts = append(opts, placement.WithKernelAvailability(f.kernelAvailable))
	}
	return placement.New(f.Device, opts...)
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

// Options returns the lowering options given the flags.
// The returned closer needs to be called once the lowering is done.
func (f *Flags) Options() (lower.Options, io.Closer, error) {
	switch f.DumpIntermediates {
	case "":
		return lower.Options{}, nopCloser{}, nil
	case "-":
		return lower.Options{Dump: os.Stderr}, nopCloser{os.Stderr}, nil
	}
	file, err := os.Create(f.DumpIntermediates)
	if err != nil {
		return lower.Options{}, nil, errors.Wrapf(err, "cannot create intermediates dump file")
	}
	return lower.Options{Dump: file}, file, nil
}
