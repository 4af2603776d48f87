package wavefront

import "sort"

// An activeSet is a view over the path slots that are still eligible to
// bounce. It supports the two whole-buffer reductions the host loop needs
// between parallel stages: stable partition by a liveness predicate and
// stable sort by a material key. Both permute slot indices only; the path
// and intersection buffers themselves are never moved.
type activeSet struct {
	indices []int32
	scratch []int32
	count   int
}

func newActiveSet(capacity int) *activeSet {
	return &activeSet{
		indices: make([]int32, capacity),
		scratch: make([]int32, capacity),
	}
}

// Rebuild the set from all slots accepted by the include predicate.
func (as *activeSet) reset(numSlots int, include func(slot int32) bool) {
	as.count = 0
	for slot := int32(0); slot < int32(numSlots); slot++ {
		if include(slot) {
			as.indices[as.count] = slot
			as.count++
		}
	}
}

// Get the current active slot indices.
func (as *activeSet) view() []int32 {
	return as.indices[:as.count]
}

// Stable-partition the set so slots accepted by the alive predicate precede
// the rest, then shrink the set to the alive partition. Returns the new
// active count.
func (as *activeSet) partition(alive func(slot int32) bool) int {
	numAlive := 0
	numDead := 0
	for _, slot := range as.indices[:as.count] {
		if alive(slot) {
			as.indices[numAlive] = slot
			numAlive++
		} else {
			as.scratch[numDead] = slot
			numDead++
		}
	}
	copy(as.indices[numAlive:as.count], as.scratch[:numDead])

	as.count = numAlive
	return numAlive
}

// Stable-sort the set by ascending key.
func (as *activeSet) sortByKey(key func(slot int32) int) {
	view := as.view()
	sort.SliceStable(view, func(i, j int) bool {
		return key(view[i]) < key(view[j])
	})
}
