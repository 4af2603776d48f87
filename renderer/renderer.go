package renderer

import "image"

type Renderer interface {
	// Render frame(s) until the configured iteration budget is spent or
	// the renderer is shut down.
	Render() error

	// Shutdown renderer and the attached tracer.
	Close()

	// Get the most recently presented frame.
	Frame() *image.RGBA

	// Get render statistics.
	Stats() FrameStats
}
