package wavefront

import "time"

// Shade every active path against its intersection record. Emissive hits
// terminate the path with throughput scaled by (color x emittance); misses
// terminate with the background color; everything else scatters through the
// configured BSDF and spends one bounce. A path whose bounce budget runs out
// without reaching a light is treated as a miss, not as accumulated light.
//
// The random source is reseeded per (iteration, pixel, bounce depth). The
// ray generator seeds with the full trace depth, so the zero-based bounce
// depth keeps the scatter streams disjoint from the jitter stream, and
// repeated runs stay bit-identical for the same scene and config.
func (tr *Tracer) shadeMaterials(iteration uint32, depth int) (time.Duration, error) {
	active := tr.buffers.Active.view()
	paths := tr.buffers.Paths
	isects := tr.buffers.Isects
	materials := tr.buffers.Materials
	background := tr.cfg.BackgroundColor
	scatter := tr.cfg.Scatter

	return tr.device.Dispatch1D("shadeMaterials", len(active), func(index int) {
		slot := active[index]
		seg := &paths[slot]

		// Dead slots stay in the set when compaction is off.
		if !seg.alive() {
			return
		}

		isect := isects[slot]
		if isect.T < 0 {
			seg.Color = background
			seg.RemainingBounces = 0
			seg.Terminated = true
			return
		}

		mat := materials[isect.MaterialID]
		if mat.IsEmissive() {
			seg.Color = seg.Color.MulVec(mat.Color.Mul(mat.Emittance))
			seg.RemainingBounces = 0
			seg.Terminated = true
			return
		}

		rng := newRNG(iteration, seg.PixelIndex, depth)
		next := scatter(ScatterInput{
			Ray:        seg.Ray,
			Point:      seg.Ray.At(isect.T),
			Normal:     isect.Normal,
			Outside:    isect.Outside,
			Material:   mat,
			Throughput: seg.Color,
		}, rng)

		seg.Ray.Origin = next.Origin
		seg.Ray.Dir = next.Dir
		seg.Color = next.Throughput

		seg.RemainingBounces--
		if seg.RemainingBounces == 0 {
			seg.Color = background
			seg.Terminated = true
		}
	})
}
