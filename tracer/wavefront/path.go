package wavefront

import (
	"github.com/borealisgfx/borealis/scene"
	"github.com/borealisgfx/borealis/types"
)

// A PathSegment is the in-flight state of one light path. The buffer holds
// one slot per screen pixel; slots are rewritten by the ray generator at the
// start of every iteration and then mutated in place across bounces. Nothing
// outside the trace pipeline may alias a slot.
type PathSegment struct {
	Ray scene.Ray

	// Accumulated throughput; once the segment terminates this is the
	// path's color contribution for the iteration.
	Color types.Vec3

	PixelIndex       int
	RemainingBounces int

	// The path hit a light, missed the scene or ran out of bounces; its
	// color is final for this iteration.
	Terminated bool

	// The owning pixel converged in an earlier iteration; the segment
	// was never launched and is excluded from accumulation.
	Skipped bool
}

// Report whether the segment may still bounce.
func (seg *PathSegment) alive() bool {
	return !seg.Terminated && seg.RemainingBounces > 0
}

// An Intersection records the nearest scene hit for a path slot. T == -1
// encodes a miss. Recomputed every bounce, or copied from the first-bounce
// cache for bounce zero.
type Intersection struct {
	T          float32
	MaterialID int
	Normal     types.Vec3
	Outside    bool
}

func miss() Intersection {
	return Intersection{T: -1, MaterialID: -1}
}
