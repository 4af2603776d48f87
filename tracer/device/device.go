// Package device implements the compute device that trace kernels are
// dispatched on: a fixed pool of workers that execute a kernel function over
// an index range and synchronize with the host before the dispatch returns.
// Kernels must only write state owned by their own index.
package device

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/borealisgfx/borealis/log"
)

// The minimum number of work items that justifies fanning a dispatch out to
// more than one worker.
const minParallelWork = 256

// A kernel is executed once for every index in a dispatch range.
type Kernel func(index int)

// Device schedules kernel dispatches over a fixed worker pool. A zero worker
// count selects one worker per CPU.
type Device struct {
	name    string
	workers int
	logger  log.Logger
}

func New(name string, workers int) *Device {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Device{
		name:    name,
		workers: workers,
		logger:  log.New("device"),
	}
}

// Get device name.
func (d *Device) Name() string {
	return d.name
}

// Get the worker pool size.
func (d *Device) Workers() int {
	return d.workers
}

// Execute the kernel for every index in [0, globalSize). The call blocks
// until all work items complete and returns the wall-clock execution time.
//
// A panic inside a kernel is reported as an error naming the kernel; the
// trace pipeline treats any such failure as fatal.
func (d *Device) Dispatch1D(kernelName string, globalSize int, kernel Kernel) (time.Duration, error) {
	start := time.Now()
	if globalSize <= 0 {
		return 0, nil
	}

	workers := d.workers
	if globalSize < minParallelWork {
		workers = 1
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	var kernelErr error

	// Split the range into one contiguous group per worker.
	groupSize := (globalSize + workers - 1) / workers
	for first := 0; first < globalSize; first += groupSize {
		last := first + groupSize
		if last > globalSize {
			last = globalSize
		}

		wg.Add(1)
		go func(first, last int) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					mu.Lock()
					if kernelErr == nil {
						kernelErr = fmt.Errorf("device (%s): kernel %s failed: %v", d.name, kernelName, r)
					}
					mu.Unlock()
				}
			}()

			for index := first; index < last; index++ {
				kernel(index)
			}
		}(first, last)
	}
	wg.Wait()

	if kernelErr != nil {
		d.logger.Errorf("%v", kernelErr)
		return time.Since(start), kernelErr
	}
	return time.Since(start), nil
}
