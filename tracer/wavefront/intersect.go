package wavefront

import "time"

// Compute the nearest scene hit for every active path. Bounce zero may be
// served from the first-bounce cache: iteration 1 snapshots its computed
// intersections, every later iteration copies the snapshot back instead of
// recomputing. The cache is only consistent because caching also forces
// deterministic primary rays and disables motion blur.
func (tr *Tracer) computeIntersections(iteration uint32, depth int) (time.Duration, error) {
	if tr.cfg.CacheFirstBounce && depth == 0 {
		if iteration == 1 {
			dur, err := tr.intersectActive()
			if err != nil {
				return dur, err
			}
			copy(tr.buffers.CachedIsects, tr.buffers.Isects)
			return dur, nil
		}

		start := time.Now()
		copy(tr.buffers.Isects, tr.buffers.CachedIsects)
		return time.Since(start), nil
	}

	return tr.intersectActive()
}

// Brute-force every active ray against every geometry instance and retain
// the minimum positive hit distance. Cost is linear in geometry count per
// path; no acceleration structure is assumed.
func (tr *Tracer) intersectActive() (time.Duration, error) {
	active := tr.buffers.Active.view()
	paths := tr.buffers.Paths
	isects := tr.buffers.Isects
	geoms := tr.buffers.Geometry
	motionBlur := !tr.cfg.CacheFirstBounce

	return tr.device.Dispatch1D("computeIntersections", len(active), func(index int) {
		slot := active[index]
		seg := &paths[slot]
		if !seg.alive() {
			isects[slot] = miss()
			return
		}

		nearest := miss()
		for g := range geoms {
			hit := geoms[g].Intersect(seg.Ray, motionBlur)
			if hit.T < 0 {
				continue
			}
			if nearest.T < 0 || hit.T < nearest.T {
				nearest = Intersection{
					T:          hit.T,
					MaterialID: geoms[g].MaterialID,
					Normal:     hit.Normal,
					Outside:    hit.Outside,
				}
			}
		}
		isects[slot] = nearest
	})
}

// Reorder the active set by ascending material id ahead of shading. Misses
// carry material id -1 and group at the front. The sort is stable and
// permutes the slot view only, so each intersection stays paired with its
// owning path. Purely a divergence optimization; shading results are
// identical with or without it.
func (tr *Tracer) sortByMaterial() (time.Duration, error) {
	start := time.Now()

	isects := tr.buffers.Isects
	tr.buffers.Active.sortByKey(func(slot int32) int {
		return isects[slot].MaterialID
	})

	return time.Since(start), nil
}

// Drop terminated paths from the active set. The surviving count bounds the
// next bounce's dispatch size.
func (tr *Tracer) compactPaths() (time.Duration, error) {
	start := time.Now()

	paths := tr.buffers.Paths
	tr.buffers.Active.partition(func(slot int32) bool {
		return paths[slot].alive()
	})

	return time.Since(start), nil
}
