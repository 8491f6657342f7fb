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

package lower

import (
	"io"
	"sync"

	"github.com/gx-org/tflower/build/ir"
	"github.com/gx-org/tflower/tf/placement"
	"github.com/gx-org/tflower/tf/tftypes"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"k8s.io/klog/v2"
)

// numWorkers is the number of functions lowered simultaneously.
const numWorkers = 8

type asyncErrors struct {
	locker sync.Mutex
	errs   error
}

func (ae *asyncErrors) add(err error) {
	ae.locker.Lock()
	defer ae.locker.Unlock()

	ae.errs = multierr.Append(ae.errs, err)
}

func (ae *asyncErrors) errors() error {
	ae.locker.Lock()
	defer ae.locker.Unlock()

	errs := ae.errs
	ae.errs = nil
	return errs
}

// syncWriter serializes writes from concurrent lowerings.
type syncWriter struct {
	locker sync.Mutex
	w      io.Writer
}

func (sw *syncWriter) Write(p []byte) (int, error) {
	sw.locker.Lock()
	defer sw.locker.Unlock()
	return sw.w.Write(p)
}

// Module lowers functions concurrently. Each function gets its own
// configuration returned by newConfig.
//
// Functions without any tensor value in their signature are skipped:
// their result is nil. Results of functions lowered successfully are
// returned even if other functions failed. The returned error combines
// the errors of all the functions which failed.
func Module(fns []*ir.Function, newConfig func() *placement.Configuration, opts Options) ([]*Result, error) {
	if opts.Dump != nil {
		opts.Dump = &syncWriter{w: opts.Dump}
	}
	classifier := tftypes.NewClassifier()
	results := make([]*Result, len(fns))
	var (
		wg   sync.WaitGroup
		errs asyncErrors
	)
	toWorker := make(chan int)
	for range min(numWorkers, len(fns)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range toWorker {
				fn := fns[i]
				if !classifier.ContainsTensorValueInSignature(fn.Signature()) {
					klog.V(1).Infof("skipping function %s: no tensor in its signature", fn.Name)
					continue
				}
				res, err := Function(fn, newConfig(), opts)
				if err != nil {
					errs.add(errors.WithMessagef(err, "cannot lower function %s", fn.Name))
					continue
				}
				results[i] = res
			}
		}()
	}
	for i := range fns {
		toWorker <- i
	}
	close(toWorker)
	wg.Wait()
	return results, errs.errors()
}
