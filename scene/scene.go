package scene

import "fmt"

// A fully assembled scene: geometry instances, the materials they reference
// and the camera. The trace pipeline mirrors the geometry and material lists
// at session init and treats them as frozen until the session is released.
type Scene struct {
	Geometry  []Geometry
	Materials []Material
	Camera    *Camera
}

// Validate the scene before it is mirrored by a tracer. Returns an error
// describing the first inconsistency found.
func (sc *Scene) Validate() error {
	if sc.Camera == nil {
		return fmt.Errorf("scene: missing camera")
	}
	if sc.Camera.ResX <= 0 || sc.Camera.ResY <= 0 {
		return fmt.Errorf("scene: invalid camera resolution %dx%d", sc.Camera.ResX, sc.Camera.ResY)
	}
	for idx, geom := range sc.Geometry {
		if geom.MaterialID < 0 || geom.MaterialID >= len(sc.Materials) {
			return fmt.Errorf("scene: geometry %d (%s) references unknown material %d", idx, geom.Type, geom.MaterialID)
		}
	}
	return nil
}
