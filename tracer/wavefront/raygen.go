package wavefront

import (
	"time"

	"github.com/borealisgfx/borealis/scene"
	"github.com/borealisgfx/borealis/types"
)

// Fill the path buffer with primary rays from the camera model. Pixels that
// the adaptive controller froze in an earlier iteration produce an
// immediately exhausted segment instead of a ray.
//
// Antialias jitter and the motion-blur time sample are suppressed while
// first-bounce caching is on: the cache is only valid for deterministic
// primary rays.
func (tr *Tracer) generateCameraRays(iteration uint32) (time.Duration, error) {
	cam := tr.camera
	paths := tr.buffers.Paths
	stats := tr.buffers.Stats

	jitter := cam.Antialias && !tr.cfg.CacheFirstBounce
	timeSamples := !tr.cfg.CacheFirstBounce
	depthOfField := cam.DepthOfField()
	traceDepth := tr.cfg.TraceDepth
	halfResX := float32(cam.ResX) * 0.5
	halfResY := float32(cam.ResY) * 0.5

	return tr.device.Dispatch1D("generateCameraRays", tr.numPixels, func(index int) {
		if stats[index].Skip {
			paths[index] = PathSegment{
				PixelIndex: index,
				Terminated: true,
				Skipped:    true,
			}
			return
		}

		rng := newRNG(iteration, index, traceDepth)

		// Signed pixel offset from the image center, optionally jittered
		// with a gaussian for antialiasing.
		dx := float32(index%cam.ResX) - halfResX
		dy := float32(index/cam.ResX) - halfResY
		if jitter {
			dx += float32(rng.NormFloat64()) * antialiasStdDev
			dy += float32(rng.NormFloat64()) * antialiasStdDev
		}

		origin := cam.Position
		dir := cam.View.
			Sub(cam.Right.Mul(cam.PixelLength[0] * dx)).
			Sub(cam.UpDir.Mul(cam.PixelLength[1] * dy)).
			Normalize()

		if depthOfField {
			// Jitter the origin across the lens disk and aim the ray back
			// at the focus point of the unjittered direction.
			lensX, lensY := concentricSampleDisk(rng.Float32(), rng.Float32())
			lensPoint := cam.Right.Mul(lensX * cam.LensRadius).
				Add(cam.UpDir.Mul(lensY * cam.LensRadius))
			focusPoint := origin.Add(dir.Mul(cam.FocalDistance))

			origin = origin.Add(lensPoint)
			dir = focusPoint.Sub(origin).Normalize()
		}

		var rayTime float32
		if timeSamples {
			rayTime = rng.Float32()
		}

		paths[index] = PathSegment{
			Ray:              scene.Ray{Origin: origin, Dir: dir, Time: rayTime},
			Color:            types.Vec3{1, 1, 1},
			PixelIndex:       index,
			RemainingBounces: traceDepth,
		}
	})
}
