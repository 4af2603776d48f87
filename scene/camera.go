package scene

import (
	"math"

	"github.com/borealisgfx/borealis/types"
)

// Camera movement directions used by interactive renderers.
type CameraDirection uint8

const (
	Forward CameraDirection = iota
	Backward
	Left
	Right
)

// The camera type defines the eye position and viewing basis that primary
// rays are generated from. It is immutable for the duration of a frame;
// interactive renderers mutate it between frames and call Update.
type Camera struct {
	Position types.Vec3
	LookAt   types.Vec3
	Up       types.Vec3

	// Vertical field of view in degrees.
	FOV float32

	// Output resolution in pixels.
	ResX, ResY int

	// Thin-lens parameters; depth of field is enabled when both are > 0.
	LensRadius    float32
	FocalDistance float32

	// Jitter primary rays with a gaussian offset for antialiasing.
	Antialias bool

	// Derived viewing basis; updated by Update.
	View  types.Vec3
	Right types.Vec3
	UpDir types.Vec3

	// Angular extent covered by a single pixel along each axis.
	PixelLength types.Vec2
}

func NewCamera(fov float32, resX, resY int) *Camera {
	c := &Camera{
		Position: types.Vec3{0, 0, 0},
		LookAt:   types.Vec3{0, 0, -1},
		Up:       types.Vec3{0, 1, 0},
		FOV:      fov,
		ResX:     resX,
		ResY:     resY,
	}
	c.Update()
	return c
}

// Recompute the viewing basis and the per-pixel angular extents from the
// camera position, look-at target and field of view.
func (c *Camera) Update() {
	c.View = c.LookAt.Sub(c.Position).Normalize()
	c.Right = c.View.Cross(c.Up).Normalize()
	c.UpDir = c.Right.Cross(c.View).Normalize()

	yScaled := float32(math.Tan(float64(c.FOV) * math.Pi / 360.0))
	xScaled := yScaled * float32(c.ResX) / float32(c.ResY)
	c.PixelLength = types.Vec2{
		2 * xScaled / float32(c.ResX),
		2 * yScaled / float32(c.ResY),
	}
}

// Report whether thin-lens depth of field is active.
func (c *Camera) DepthOfField() bool {
	return c.LensRadius > 0 && c.FocalDistance > 0
}

// Move the camera along its viewing basis and refresh it.
func (c *Camera) Move(dir CameraDirection, dist float32) {
	var offset types.Vec3
	switch dir {
	case Forward:
		offset = c.View.Mul(dist)
	case Backward:
		offset = c.View.Mul(-dist)
	case Left:
		offset = c.Right.Mul(-dist)
	case Right:
		offset = c.Right.Mul(dist)
	}

	c.Position = c.Position.Add(offset)
	c.LookAt = c.LookAt.Add(offset)
	c.Update()
}

// Aim the camera by rotating the look-at target around the eye position by
// the given yaw/pitch deltas (radians).
func (c *Camera) Aim(yaw, pitch float32) {
	dist := c.LookAt.Sub(c.Position).Len()

	view := c.View.Add(c.Right.Mul(yaw)).Add(c.UpDir.Mul(pitch)).Normalize()
	c.LookAt = c.Position.Add(view.Mul(dist))
	c.Update()
}
