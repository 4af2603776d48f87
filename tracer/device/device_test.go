package device

import (
	"runtime"
	"strings"
	"sync/atomic"
	"testing"
)

func TestDispatchCoversFullIndexRange(t *testing.T) {
	sizes := []int{1, 7, minParallelWork - 1, minParallelWork, 4*minParallelWork + 3}

	for _, size := range sizes {
		dev := New("test", 4)
		visited := make([]int32, size)

		_, err := dev.Dispatch1D("cover", size, func(index int) {
			atomic.AddInt32(&visited[index], 1)
		})
		if err != nil {
			t.Fatal(err)
		}

		for index, count := range visited {
			if count != 1 {
				t.Fatalf("[size %d] index %d executed %d times; expected exactly once", size, index, count)
			}
		}
	}
}

func TestDispatchWithEmptyRange(t *testing.T) {
	dev := New("test", 2)
	_, err := dev.Dispatch1D("noop", 0, func(int) {
		t.Fatal("kernel must not run for an empty range")
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestKernelPanicBecomesError(t *testing.T) {
	dev := New("gpu0", 4)

	_, err := dev.Dispatch1D("explode", 10, func(index int) {
		if index == 7 {
			panic("out of bounds access")
		}
	})
	if err == nil {
		t.Fatal("expected a panicking kernel to produce an error")
	}
	for _, fragment := range []string{"gpu0", "explode", "out of bounds access"} {
		if !strings.Contains(err.Error(), fragment) {
			t.Fatalf("expected error to mention %q; got %v", fragment, err)
		}
	}
}

func TestPanicDoesNotLeakGoroutines(t *testing.T) {
	dev := New("test", 8)
	before := runtime.NumGoroutine()

	for i := 0; i < 10; i++ {
		dev.Dispatch1D("explode", minParallelWork*2, func(int) {
			panic("boom")
		})
	}

	// Dispatches block until every worker reaches the barrier, panic or
	// not; allow some scheduler slack before comparing.
	runtime.Gosched()
	if after := runtime.NumGoroutine(); after > before+2 {
		t.Fatalf("goroutine count grew from %d to %d", before, after)
	}
}

func TestWorkerDefaults(t *testing.T) {
	if dev := New("auto", 0); dev.Workers() != runtime.NumCPU() {
		t.Fatalf("expected one worker per CPU; got %d", dev.Workers())
	}
	if dev := New("auto", -3); dev.Workers() != runtime.NumCPU() {
		t.Fatalf("expected one worker per CPU for a negative count; got %d", dev.Workers())
	}
	if dev := New("fixed", 5); dev.Workers() != 5 {
		t.Fatalf("expected 5 workers; got %d", dev.Workers())
	}
	if dev := New("fixed", 5); dev.Name() != "fixed" {
		t.Fatalf("unexpected device name %q", dev.Name())
	}
}
