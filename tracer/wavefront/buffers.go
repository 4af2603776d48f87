package wavefront

import (
	"fmt"

	"github.com/borealisgfx/borealis/scene"
	"github.com/borealisgfx/borealis/types"
)

// The bufferSet owns every session-lifetime allocation of the trace
// pipeline: the immutable scene mirror plus the per-pixel working buffers.
// All buffers are sized once at Init from the scene resolution and geometry
// and material counts, and released together.
type bufferSet struct {
	// Scene mirror; frozen for the session.
	Geometry  []scene.Geometry
	Materials []scene.Material

	// Per-pixel working state, reused every iteration.
	Paths  []PathSegment
	Isects []Intersection

	// First-bounce intersection cache; snapshotted during iteration 1.
	CachedIsects []Intersection

	// Session-lifetime accumulation state.
	Accum []types.Vec3
	Stats []pixelStats

	// Active path slot view used between bounces.
	Active *activeSet
}

// Allocate all buffers and mirror the scene's geometry and material arrays.
func newBufferSet(sc *scene.Scene, cacheFirstBounce bool) (*bufferSet, error) {
	numPixels := sc.Camera.ResX * sc.Camera.ResY
	if numPixels <= 0 {
		return nil, fmt.Errorf("wavefront: cannot size buffers for %dx%d frame", sc.Camera.ResX, sc.Camera.ResY)
	}

	bs := &bufferSet{
		Geometry:  make([]scene.Geometry, len(sc.Geometry)),
		Materials: make([]scene.Material, len(sc.Materials)),
		Paths:     make([]PathSegment, numPixels),
		Isects:    make([]Intersection, numPixels),
		Accum:     make([]types.Vec3, numPixels),
		Stats:     make([]pixelStats, numPixels),
		Active:    newActiveSet(numPixels),
	}
	copy(bs.Geometry, sc.Geometry)
	copy(bs.Materials, sc.Materials)

	if cacheFirstBounce {
		bs.CachedIsects = make([]Intersection, numPixels)
	}

	return bs, nil
}

// Release all buffers.
func (bs *bufferSet) Release() {
	bs.Geometry = nil
	bs.Materials = nil
	bs.Paths = nil
	bs.Isects = nil
	bs.CachedIsects = nil
	bs.Accum = nil
	bs.Stats = nil
	bs.Active = nil
}

// Clear the accumulation state: the running-average image, the adaptive
// statistics and the skip flags. Used when the camera moves and the
// progressive estimate restarts.
func (bs *bufferSet) ClearAccumulator() {
	for i := range bs.Accum {
		bs.Accum[i] = types.Vec3{}
	}
	for i := range bs.Stats {
		bs.Stats[i] = pixelStats{}
	}
}
