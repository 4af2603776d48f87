package wavefront

import "time"

// Fold the finished iteration into the running-average image and update the
// adaptive controller. Pixels that were frozen before this iteration retain
// their last computed average; pixels that converge now keep this
// iteration's contribution and are skipped from the next iteration on.
func (tr *Tracer) finalizeIteration(iteration uint32) (time.Duration, error) {
	paths := tr.buffers.Paths
	accum := tr.buffers.Accum
	stats := tr.buffers.Stats

	adaptive := tr.cfg.Adaptive
	minSamples := tr.cfg.AdaptiveMinSamples
	threshold := tr.cfg.AdaptiveThreshold
	invIter := 1 / float32(iteration)
	prevWeight := float32(iteration - 1)

	return tr.device.Dispatch1D("finalizeIteration", tr.numPixels, func(index int) {
		seg := &paths[index]
		if seg.Skipped {
			return
		}

		color := seg.Color
		accum[index] = accum[index].Mul(prevWeight).Add(color).Mul(invIter)

		if !adaptive {
			return
		}
		st := &stats[index]
		st.addSample(color)
		if !st.Skip && st.converged(minSamples, threshold) {
			st.Skip = true
		}
	})
}

// Convert the running-average radiance to clamped 8-bit RGBA in the
// provided presentable surface. Channels scale by 255 and truncate into
// [0, 255]; alpha is opaque.
func (tr *Tracer) presentFrame(target []uint8) (time.Duration, error) {
	accum := tr.buffers.Accum

	return tr.device.Dispatch1D("presentFrame", tr.numPixels, func(index int) {
		base := index * 4
		for c := 0; c < 3; c++ {
			scaled := accum[index][c] * 255
			if scaled < 0 {
				scaled = 0
			} else if scaled > 255 {
				scaled = 255
			}
			target[base+c] = uint8(scaled)
		}
		target[base+3] = 255
	})
}
