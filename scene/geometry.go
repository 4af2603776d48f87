package scene

import (
	"math"

	"github.com/borealisgfx/borealis/types"
)

type GeometryType uint8

const (
	Sphere GeometryType = iota
	Cube
)

func (gt GeometryType) String() string {
	switch gt {
	case Sphere:
		return "sphere"
	case Cube:
		return "cube"
	}
	panic("scene: unsupported geometry type")
}

// A ray with a time sample for motion-blur evaluation.
type Ray struct {
	Origin types.Vec3
	Dir    types.Vec3
	Time   float32
}

// Get the point at parametric distance t along the ray.
func (r Ray) At(t float32) types.Vec3 {
	return r.Origin.Add(r.Dir.Mul(t))
}

// A transformed instance of a unit primitive. Spheres have radius 0.5 and
// cubes extend to +-0.5 in local space; the TRS terms place them in the
// world. Instances are immutable during a trace.
type Geometry struct {
	Type       GeometryType
	MaterialID int

	Translation types.Vec3
	Rotation    types.Vec3 // euler degrees
	Scale       types.Vec3

	// Linear velocity in world units per unit of ray time; a non-zero
	// velocity enables motion blur for this instance.
	Velocity types.Vec3

	// Derived transforms; built by UpdateTransforms.
	Transform    types.Mat4
	InvTransform types.Mat4
	InvTranspose types.Mat4
}

// Rebuild the cached local-to-world, world-to-local and normal transforms
// from the TRS terms.
func (g *Geometry) UpdateTransforms() {
	g.Transform = types.Translate4(g.Translation).
		Mul4(types.Rotate4(g.Rotation)).
		Mul4(types.Scale4(g.Scale))
	g.InvTransform = g.Transform.Inv()
	g.InvTranspose = g.Transform.Inv().Transpose().Mat3()
}

// Get the instance transforms displaced along the velocity vector for the
// given ray time. Translation commutes with the rest of the TRS chain, so
// the displacement composes without a full matrix rebuild.
func (g *Geometry) TransformsAt(time float32) (fwd, inv types.Mat4) {
	if g.Velocity == (types.Vec3{}) || time == 0 {
		return g.Transform, g.InvTransform
	}
	offset := g.Velocity.Mul(time)
	fwd = types.Translate4(offset).Mul4(g.Transform)
	inv = g.InvTransform.Mul4(types.Translate4(offset.Mul(-1)))
	return fwd, inv
}

// Hit describes a ray/instance intersection in world space.
type Hit struct {
	T       float32
	Point   types.Vec3
	Normal  types.Vec3
	Outside bool
}

// Intersect the ray against this instance and return the nearest positive
// hit. When motionBlur is false the ray's time sample is ignored. A miss is
// reported with T == -1.
func (g *Geometry) Intersect(ray Ray, motionBlur bool) Hit {
	var time float32
	if motionBlur {
		time = ray.Time
	}
	fwd, inv := g.TransformsAt(time)

	// Transform the ray into the local space of the unit primitive.
	local := Ray{
		Origin: inv.MulPoint(ray.Origin),
		Dir:    inv.MulDir(ray.Dir).Normalize(),
	}

	var t float32
	var localNormal types.Vec3
	var outside bool

	switch g.Type {
	case Sphere:
		t, localNormal, outside = sphereIntersect(local)
	case Cube:
		t, localNormal, outside = cubeIntersect(local)
	}
	if t < 0 {
		return Hit{T: -1}
	}

	point := fwd.MulPoint(local.At(t))
	return Hit{
		T:       point.Sub(ray.Origin).Len(),
		Point:   point,
		Normal:  g.InvTranspose.MulDir(localNormal).Normalize(),
		Outside: outside,
	}
}

// Intersect a local-space ray with the origin-centered sphere of radius 0.5.
func sphereIntersect(r Ray) (float32, types.Vec3, bool) {
	const radius = 0.5

	b := r.Origin.Dot(r.Dir)
	c := r.Origin.LenSq() - radius*radius
	disc := b*b - c
	if disc < 0 {
		return -1, types.Vec3{}, false
	}

	sqrtDisc := float32(math.Sqrt(float64(disc)))
	t1 := -b - sqrtDisc
	t2 := -b + sqrtDisc
	if t2 < 0 {
		return -1, types.Vec3{}, false
	}

	t := t1
	outside := true
	if t1 < 0 {
		// Origin is inside the sphere; the normal points back inward.
		t = t2
		outside = false
	}

	normal := r.At(t).Normalize()
	if !outside {
		normal = normal.Mul(-1)
	}
	return t, normal, outside
}

// Intersect a local-space ray with the origin-centered unit cube using the
// slab method.
func cubeIntersect(r Ray) (float32, types.Vec3, bool) {
	tMin := float32(math.Inf(-1))
	tMax := float32(math.Inf(1))
	var minAxis, maxAxis int
	var minSign, maxSign float32

	for axis := 0; axis < 3; axis++ {
		dir := r.Dir[axis]
		if dir == 0 {
			if r.Origin[axis] < -0.5 || r.Origin[axis] > 0.5 {
				return -1, types.Vec3{}, false
			}
			continue
		}

		t1 := (-0.5 - r.Origin[axis]) / dir
		t2 := (0.5 - r.Origin[axis]) / dir
		sign := float32(-1)
		if t1 > t2 {
			t1, t2 = t2, t1
			sign = 1
		}
		if t1 > tMin {
			tMin = t1
			minAxis = axis
			minSign = sign
		}
		if t2 < tMax {
			tMax = t2
			maxAxis = axis
			maxSign = -sign
		}
	}

	if tMax < tMin || tMax < 0 {
		return -1, types.Vec3{}, false
	}

	if tMin >= 0 {
		var normal types.Vec3
		normal[minAxis] = minSign
		return tMin, normal, true
	}

	// Origin is inside the cube; exit face, flipped inward.
	var normal types.Vec3
	normal[maxAxis] = -maxSign
	return tMax, normal, false
}
