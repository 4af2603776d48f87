package wavefront

import (
	"math"
	"math/rand"

	"github.com/borealisgfx/borealis/types"
)

// Standard deviation of the gaussian antialias jitter, in pixels.
const antialiasStdDev = 0.5

// Thomas Wang style integer hash used for RNG seed derivation.
func utilHash(a uint32) uint32 {
	a = (a + 0x7ed55d16) + (a << 12)
	a = (a ^ 0xc761c23c) ^ (a >> 19)
	a = (a + 0x165667b1) + (a << 5)
	a = (a + 0xd3a2646c) ^ (a << 9)
	a = (a + 0xfd7046c5) + (a << 3)
	a = (a ^ 0xb55a4f09) ^ (a >> 16)
	return a
}

// Derive the RNG seed for an (iteration, pixel, bounce depth) triple. The
// derivation is part of the trace contract: two runs over the same scene and
// config must produce identical images.
func seedFor(iteration uint32, pixel, depth int) int64 {
	h := utilHash((1<<31)|(uint32(depth)<<22)|iteration) ^ utilHash(uint32(pixel))
	return int64(h)
}

// Create the random source for an (iteration, pixel, bounce depth) triple.
func newRNG(iteration uint32, pixel, depth int) *rand.Rand {
	return rand.New(rand.NewSource(seedFor(iteration, pixel, depth)))
}

// Map two uniform samples in [0,1) onto the unit disk with the concentric
// quadrant mapping, which preserves relative area and avoids the clumping of
// the naive polar mapping.
func concentricSampleDisk(u1, u2 float32) (float32, float32) {
	ox := 2*u1 - 1
	oy := 2*u2 - 1
	if ox == 0 && oy == 0 {
		return 0, 0
	}

	var r, theta float64
	if math.Abs(float64(ox)) > math.Abs(float64(oy)) {
		r = float64(ox)
		theta = math.Pi / 4 * float64(oy/ox)
	} else {
		r = float64(oy)
		theta = math.Pi/2 - math.Pi/4*float64(ox/oy)
	}

	sin, cos := math.Sincos(theta)
	return float32(r * cos), float32(r * sin)
}

// Sample a direction from the cosine-weighted hemisphere around the normal.
func cosineSampleHemisphere(normal types.Vec3, rng *rand.Rand) types.Vec3 {
	up := float32(math.Sqrt(float64(rng.Float32()))) // cos(theta)
	over := float32(math.Sqrt(float64(1 - up*up)))
	around := rng.Float64() * 2 * math.Pi

	// Build any tangent frame around the normal.
	var axis types.Vec3
	switch {
	case math.Abs(float64(normal[0])) < 1/math.Sqrt2:
		axis = types.Vec3{1, 0, 0}
	case math.Abs(float64(normal[1])) < 1/math.Sqrt2:
		axis = types.Vec3{0, 1, 0}
	default:
		axis = types.Vec3{0, 0, 1}
	}
	tangent1 := normal.Cross(axis).Normalize()
	tangent2 := normal.Cross(tangent1)

	sin, cos := math.Sincos(around)
	return normal.Mul(up).
		Add(tangent1.Mul(float32(cos) * over)).
		Add(tangent2.Mul(float32(sin) * over))
}
