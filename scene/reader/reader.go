// Package reader parses text scene descriptions into scene instances.
//
// The format is line-oriented. Top-level directives open a camera, material
// or object block; indented property lines apply to the open block. Blank
// lines and lines starting with # are ignored:
//
//	camera
//	  res 800 800
//	  fov 45
//	  eye 0 5 10
//	  lookat 0 5 0
//
//	material light
//	  rgb 1 1 1
//	  emittance 5
//
//	object sphere light
//	  translate 0 7 0
//	  scale 3 0.3 3
package reader

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/borealisgfx/borealis/log"
	"github.com/borealisgfx/borealis/scene"
	"github.com/borealisgfx/borealis/types"
)

var logger = log.New("reader")

// Read a scene definition from a file.
func ReadScene(filename string) (*scene.Scene, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("reader: could not open scene file: %v", err)
	}
	defer f.Close()

	logger.Noticef("parsing scene from %s", filename)
	return Parse(f)
}

type blockType uint8

const (
	noBlock blockType = iota
	cameraBlock
	materialBlock
	objectBlock
)

// Parse a scene definition from a reader.
func Parse(r io.Reader) (*scene.Scene, error) {
	p := &parser{
		sc:           &scene.Scene{},
		materialRefs: make(map[string]int),
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		p.lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if err := p.parseLine(line); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reader: %v", err)
	}

	if err := p.finish(); err != nil {
		return nil, err
	}
	return p.sc, nil
}

type parser struct {
	sc           *scene.Scene
	lineNum      int
	materialRefs map[string]int

	block        blockType
	curMaterial  scene.Material
	materialName string
	curObject    scene.Geometry
}

func (p *parser) errorf(format string, args ...interface{}) error {
	return fmt.Errorf("reader: [line %d] %s", p.lineNum, fmt.Sprintf(format, args...))
}

func (p *parser) parseLine(line string) error {
	fields := strings.Fields(line)

	switch fields[0] {
	case "camera":
		p.closeBlock()
		if p.sc.Camera != nil {
			return p.errorf("camera defined more than once")
		}
		p.sc.Camera = scene.NewCamera(45, 0, 0)
		p.block = cameraBlock
		return nil
	case "material":
		p.closeBlock()
		if len(fields) != 2 {
			return p.errorf("material requires a name")
		}
		if _, exists := p.materialRefs[fields[1]]; exists {
			return p.errorf("material %q defined more than once", fields[1])
		}
		p.block = materialBlock
		p.materialName = fields[1]
		p.curMaterial = scene.Material{}
		return nil
	case "object":
		p.closeBlock()
		if len(fields) != 3 {
			return p.errorf("object requires a primitive type and a material name")
		}
		matID, exists := p.materialRefs[fields[2]]
		if !exists {
			return p.errorf("object references undefined material %q", fields[2])
		}
		p.block = objectBlock
		p.curObject = scene.Geometry{
			MaterialID: matID,
			Scale:      types.Vec3{1, 1, 1},
		}
		switch fields[1] {
		case "sphere":
			p.curObject.Type = scene.Sphere
		case "cube":
			p.curObject.Type = scene.Cube
		default:
			return p.errorf("unsupported primitive type %q", fields[1])
		}
		return nil
	}

	switch p.block {
	case cameraBlock:
		return p.parseCameraProp(fields)
	case materialBlock:
		return p.parseMaterialProp(fields)
	case objectBlock:
		return p.parseObjectProp(fields)
	}
	return p.errorf("unexpected directive %q outside of a block", fields[0])
}

func (p *parser) parseCameraProp(fields []string) error {
	cam := p.sc.Camera
	var err error

	switch fields[0] {
	case "res":
		var res types.Vec2
		if res, err = p.parseVec2(fields); err == nil {
			cam.ResX, cam.ResY = int(res[0]), int(res[1])
		}
	case "fov":
		cam.FOV, err = p.parseScalar(fields)
	case "eye":
		cam.Position, err = p.parseVec3(fields)
	case "lookat":
		cam.LookAt, err = p.parseVec3(fields)
	case "up":
		cam.Up, err = p.parseVec3(fields)
	case "lens":
		var lens types.Vec2
		if lens, err = p.parseVec2(fields); err == nil {
			cam.LensRadius, cam.FocalDistance = lens[0], lens[1]
		}
	case "antialias":
		cam.Antialias = true
	default:
		err = p.errorf("unsupported camera property %q", fields[0])
	}
	return err
}

func (p *parser) parseMaterialProp(fields []string) error {
	mat := &p.curMaterial
	var err error

	switch fields[0] {
	case "rgb":
		mat.Color, err = p.parseVec3(fields)
	case "specular":
		mat.SpecularColor, err = p.parseVec3(fields)
	case "reflective":
		mat.Reflective, err = p.parseScalar(fields)
	case "refractive":
		mat.Refractive, err = p.parseScalar(fields)
	case "ior":
		mat.IOR, err = p.parseScalar(fields)
	case "emittance":
		mat.Emittance, err = p.parseScalar(fields)
	default:
		err = p.errorf("unsupported material property %q", fields[0])
	}
	return err
}

func (p *parser) parseObjectProp(fields []string) error {
	obj := &p.curObject
	var err error

	switch fields[0] {
	case "translate":
		obj.Translation, err = p.parseVec3(fields)
	case "rotate":
		obj.Rotation, err = p.parseVec3(fields)
	case "scale":
		obj.Scale, err = p.parseVec3(fields)
	case "velocity":
		obj.Velocity, err = p.parseVec3(fields)
	default:
		err = p.errorf("unsupported object property %q", fields[0])
	}
	return err
}

// Commit the currently open block, if any.
func (p *parser) closeBlock() {
	switch p.block {
	case cameraBlock:
		p.sc.Camera.Update()
	case materialBlock:
		p.materialRefs[p.materialName] = len(p.sc.Materials)
		p.sc.Materials = append(p.sc.Materials, p.curMaterial)
	case objectBlock:
		p.curObject.UpdateTransforms()
		p.sc.Geometry = append(p.sc.Geometry, p.curObject)
	}
	p.block = noBlock
}

func (p *parser) finish() error {
	p.closeBlock()
	if err := p.sc.Validate(); err != nil {
		return err
	}
	logger.Infof("parsed scene: %d objects, %d materials", len(p.sc.Geometry), len(p.sc.Materials))
	return nil
}

func (p *parser) parseScalar(fields []string) (float32, error) {
	if len(fields) != 2 {
		return 0, p.errorf("%s expects 1 value", fields[0])
	}
	val, err := strconv.ParseFloat(fields[1], 32)
	if err != nil {
		return 0, p.errorf("could not parse %s value: %v", fields[0], err)
	}
	return float32(val), nil
}

func (p *parser) parseVec2(fields []string) (types.Vec2, error) {
	if len(fields) != 3 {
		return types.Vec2{}, p.errorf("%s expects 2 values", fields[0])
	}
	var out types.Vec2
	for i := 0; i < 2; i++ {
		val, err := strconv.ParseFloat(fields[i+1], 32)
		if err != nil {
			return types.Vec2{}, p.errorf("could not parse %s value: %v", fields[0], err)
		}
		out[i] = float32(val)
	}
	return out, nil
}

func (p *parser) parseVec3(fields []string) (types.Vec3, error) {
	if len(fields) != 4 {
		return types.Vec3{}, p.errorf("%s expects 3 values", fields[0])
	}
	var out types.Vec3
	for i := 0; i < 3; i++ {
		val, err := strconv.ParseFloat(fields[i+1], 32)
		if err != nil {
			return types.Vec3{}, p.errorf("could not parse %s value: %v", fields[0], err)
		}
		out[i] = float32(val)
	}
	return out, nil
}
