package wavefront

import "github.com/borealisgfx/borealis/types"

// Running per-pixel sample statistics for adaptive termination. Stats
// persist for the whole session; Skip, once set, is never cleared while the
// session lives.
type pixelStats struct {
	Samples  int
	ColorSum types.Vec3
	MagSqSum float32
	Skip     bool
}

func (ps *pixelStats) addSample(c types.Vec3) {
	ps.Samples++
	ps.ColorSum = ps.ColorSum.Add(c)
	ps.MagSqSum += c.LenSq()
}

// Online variance estimate of the color magnitude: E[|c|^2] - |E[c]|^2.
// Clamped at zero to absorb single-precision cancellation; the threshold
// comparison only needs "low empirical variance", not an unbiased estimate.
func (ps *pixelStats) variance() float32 {
	if ps.Samples == 0 {
		return 0
	}
	n := float32(ps.Samples)
	mean := ps.ColorSum.Mul(1 / n)
	v := ps.MagSqSum/n - mean.LenSq()
	if v < 0 {
		return 0
	}
	return v
}

// Report whether the pixel estimate qualifies as converged under the given
// adaptive settings.
func (ps *pixelStats) converged(minSamples int, threshold float32) bool {
	return ps.Samples > minSamples && ps.variance() <= threshold
}
