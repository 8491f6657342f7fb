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

package tfflag_test

import (
	"bytes"
	"flag"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/gx-org/tflower/tf/device"
	"github.com/gx-org/tflower/tools/tfflag"
)

func parse(t *testing.T, args ...string) *tfflag.Flags {
	t.Helper()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	f := tfflag.Register(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("cannot parse %v: %v", args, err)
	}
	return f
}

func TestDefaults(t *testing.T) {
	f := parse(t)
	want := &tfflag.Flags{Device: device.CPU}
	if diff := cmp.Diff(f, want); diff != "" {
		t.Errorf("unexpected default flags:\n%s", diff)
	}
	cfg := f.NewConfiguration()
	if cfg.Device != device.CPU || cfg.TPUInfeed || cfg.KernelAvailable != nil {
		t.Errorf("unexpected default configuration: %+v", cfg)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		args []string
		want tfflag.Flags
	}{
		{
			args: []string{"-tf-target-device=gpu"},
			want: tfflag.Flags{Device: device.GPU},
		},
		{
			args: []string{"-tf-target-device", "TPU_SYSTEM", "-tf-tpu-infeed"},
			want: tfflag.Flags{Device: device.TPU, TPUInfeed: true},
		},
		{
			args: []string{"-tf-cpu-only-ops=DecodePng, PrintV2", "-tf-cpu-only-ops", "StringFormat"},
			want: tfflag.Flags{Device: device.CPU, CPUOnlyOps: []string{"DecodePng", "PrintV2", "StringFormat"}},
		},
		{
			args: []string{"-tf-dump-intermediates=-"},
			want: tfflag.Flags{Device: device.CPU, DumpIntermediates: "-"},
		},
	}
	for i, test := range tests {
		got := parse(t, test.args...)
		if diff := cmp.Diff(*got, test.want); diff != "" {
			t.Errorf("test %d: unexpected flags:\n%s", i, diff)
		}
	}
}

func TestUnknownDevice(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	tfflag.Register(fs)
	for _, value := range []string{"fpga", "/job:localhost/replica:0/task:0/device:TPU:0"} {
		if err := fs.Parse([]string{"-tf-target-device=" + value}); err == nil {
			t.Errorf("%s: expected an error for an unknown device", value)
		}
	}
}

func TestCPUOnlyOps(t *testing.T) {
	cfg := parse(t, "-tf-target-device=gpu", "-tf-cpu-only-ops=DecodePng").NewConfiguration()
	tests := []struct {
		op   string
		want device.Kind
	}{
		{op: "Add", want: device.GPU},
		{op: "DecodePng", want: device.CPU},
	}
	for _, test := range tests {
		got, err := cfg.Choose(test.op, "")
		if err != nil {
			t.Errorf("%s: %v", test.op, err)
			continue
		}
		if got != test.want {
			t.Errorf("%s: got device %s but want %s", test.op, got, test.want)
		}
	}
}

func TestOptions(t *testing.T) {
	opts, closer, err := parse(t).Options()
	if err != nil {
		t.Fatal(err)
	}
	if opts.Dump != nil {
		t.Errorf("got dump writer %v but want nil", opts.Dump)
	}
	if err := closer.Close(); err != nil {
		t.Error(err)
	}

	path := filepath.Join(t.TempDir(), "dump.txt")
	opts, closer, err = parse(t, "-tf-dump-intermediates="+path).Options()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := io.WriteString(opts.Dump, "--- main: input\n"); err != nil {
		t.Fatal(err)
	}
	if err := closer.Close(); err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, []byte("--- main: input\n")) {
		t.Errorf("got dump %q but want %q", got, "--- main: input\n")
	}
}
