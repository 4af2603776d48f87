package scene

import "github.com/borealisgfx/borealis/types"

// Defines a surface material. A positive Emittance marks the material as a
// light source; the remaining fields parameterize the BSDF and are opaque to
// the trace pipeline, which only forwards them to the scatter function.
type Material struct {
	// Base diffuse color.
	Color types.Vec3

	// Specular reflection parameters.
	SpecularColor types.Vec3
	Reflective    float32

	// Refraction parameters.
	Refractive float32
	IOR        float32

	// Light emission scale factor; > 0 marks a light.
	Emittance float32
}

// Report whether the material acts as a light source.
func (m *Material) IsEmissive() bool {
	return m.Emittance > 0
}
