package wavefront

import (
	"math"
	"math/rand"

	"github.com/borealisgfx/borealis/scene"
	"github.com/borealisgfx/borealis/types"
)

// Offset applied along the outgoing direction so continuation rays do not
// re-hit the surface they scattered from.
const rayOffsetEpsilon = 1e-3

// ScatterInput captures everything a BSDF may consult when scattering a
// path at a surface hit.
type ScatterInput struct {
	Ray        scene.Ray
	Point      types.Vec3
	Normal     types.Vec3
	Outside    bool
	Material   scene.Material
	Throughput types.Vec3
}

// ScatterResult is the continuation ray and the attenuated throughput
// produced by a BSDF.
type ScatterResult struct {
	Origin     types.Vec3
	Dir        types.Vec3
	Throughput types.Vec3
}

// A ScatterFunc implements the BSDF contract: a pure function from the
// current path state, hit data and a seeded random source to the updated
// path state. Implementations must not retain the rng across calls.
type ScatterFunc func(in ScatterInput, rng *rand.Rand) ScatterResult

// DefaultScatter covers the built-in material model: refractive surfaces
// with Schlick fresnel, perfect mirrors, and cosine-weighted diffuse for
// everything else.
func DefaultScatter(in ScatterInput, rng *rand.Rand) ScatterResult {
	mat := in.Material

	switch {
	case mat.Refractive > 0:
		return scatterRefractive(in, rng)
	case mat.Reflective > 0:
		dir := reflectDir(in.Ray.Dir, in.Normal)
		return continuation(in, dir, in.Throughput.MulVec(mat.SpecularColor))
	default:
		dir := cosineSampleHemisphere(in.Normal, rng)
		return continuation(in, dir, in.Throughput.MulVec(mat.Color))
	}
}

func scatterRefractive(in ScatterInput, rng *rand.Rand) ScatterResult {
	mat := in.Material

	eta := 1 / mat.IOR
	if !in.Outside {
		eta = mat.IOR
	}

	cosIncident := -in.Ray.Dir.Dot(in.Normal)
	if reflectance(cosIncident, eta) > rng.Float32() {
		dir := reflectDir(in.Ray.Dir, in.Normal)
		return continuation(in, dir, in.Throughput.MulVec(mat.SpecularColor))
	}

	dir, ok := refract(in.Ray.Dir, in.Normal, eta)
	if !ok {
		// Total internal reflection.
		dir = reflectDir(in.Ray.Dir, in.Normal)
	}
	return continuation(in, dir, in.Throughput.MulVec(mat.Color))
}

func continuation(in ScatterInput, dir types.Vec3, throughput types.Vec3) ScatterResult {
	return ScatterResult{
		Origin:     in.Point.Add(dir.Mul(rayOffsetEpsilon)),
		Dir:        dir,
		Throughput: throughput,
	}
}

// Mirror-reflect an incident direction about the normal.
func reflectDir(incident, normal types.Vec3) types.Vec3 {
	return incident.Sub(normal.Mul(2 * incident.Dot(normal)))
}

// Refract an incident direction about the normal with the given relative
// index of refraction. Reports false on total internal reflection.
func refract(incident, normal types.Vec3, eta float32) (types.Vec3, bool) {
	cosIncident := -incident.Dot(normal)
	sinSqTransmitted := eta * eta * (1 - cosIncident*cosIncident)
	if sinSqTransmitted > 1 {
		return types.Vec3{}, false
	}
	cosTransmitted := float32(math.Sqrt(float64(1 - sinSqTransmitted)))
	dir := incident.Mul(eta).Add(normal.Mul(eta*cosIncident - cosTransmitted))
	return dir.Normalize(), true
}

// Schlick approximation of the fresnel reflectance.
func reflectance(cosIncident, eta float32) float32 {
	r0 := (1 - eta) / (1 + eta)
	r0 *= r0
	oneMinusCos := 1 - cosIncident
	return r0 + (1-r0)*oneMinusCos*oneMinusCos*oneMinusCos*oneMinusCos*oneMinusCos
}
