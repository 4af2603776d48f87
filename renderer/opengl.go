package renderer

import (
	"fmt"
	"image"
	"runtime"
	"time"
	"unsafe"

	"github.com/go-gl/gl/v2.1/gl"
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/borealisgfx/borealis/log"
	"github.com/borealisgfx/borealis/scene"
	"github.com/borealisgfx/borealis/tracer"
	"github.com/borealisgfx/borealis/types"
)

const (
	// Coefficients for converting delta cursor movements to yaw/pitch camera angles.
	mouseSensitivityX float32 = 0.005
	mouseSensitivityY float32 = 0.005

	// Camera movement speed.
	cameraMoveSpeed float32 = 0.05
)

// An interactive opengl-based renderer. Each loop pass traces one
// progressive iteration and blits the presented framebuffer to the window;
// camera movement restarts the progressive estimate.
type interactiveGLRenderer struct {
	*defaultRenderer

	camera *scene.Camera

	// Iterations accumulated since the last camera change.
	accumulatedIterations uint32

	// opengl handles
	window *glfw.Window
	texFbo uint32

	// input state
	lastCursorPos types.Vec2
	mousePressed  bool
}

// Create a new interactive opengl renderer driving the supplied tracer.
// Must be called from the main goroutine.
func NewInteractive(sc *scene.Scene, tr tracer.Tracer, opts Options) (Renderer, error) {
	if err := tr.Init(sc); err != nil {
		tr.Close()
		return nil, err
	}

	r := &interactiveGLRenderer{
		defaultRenderer: &defaultRenderer{
			logger: log.New("renderer"),
			sc:     sc,
			tracer: tr,
			opts:   opts,
			frame:  image.NewRGBA(image.Rect(0, 0, sc.Camera.ResX, sc.Camera.ResY)),
		},
		camera: sc.Camera,
	}

	if err := r.initGL(); err != nil {
		r.Close()
		return nil, err
	}

	return r, nil
}

func (r *interactiveGLRenderer) initGL() error {
	runtime.LockOSThread()

	if err := glfw.Init(); err != nil {
		return fmt.Errorf("renderer: failed to initialize glfw: %v", err)
	}

	glfw.WindowHint(glfw.Resizable, glfw.False)
	glfw.WindowHint(glfw.ContextVersionMajor, 2)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)

	var err error
	r.window, err = glfw.CreateWindow(r.sc.Camera.ResX, r.sc.Camera.ResY, "borealis", nil, nil)
	if err != nil {
		return fmt.Errorf("renderer: could not create opengl window: %v", err)
	}
	r.window.MakeContextCurrent()

	if err = gl.Init(); err != nil {
		return fmt.Errorf("renderer: could not init opengl: %v", err)
	}

	frameW, frameH := int32(r.sc.Camera.ResX), int32(r.sc.Camera.ResY)

	// Setup texture for image data
	var fbTexture uint32
	gl.GenTextures(1, &fbTexture)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, fbTexture)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, frameW, frameH, 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)

	// Attach texture to FBO
	gl.GenFramebuffers(1, &r.texFbo)
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, r.texFbo)
	gl.FramebufferTexture2D(gl.READ_FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, fbTexture, 0)
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, 0)

	// Bind event callbacks
	r.window.SetInputMode(glfw.CursorMode, glfw.CursorNormal)
	r.window.SetKeyCallback(r.onKeyEvent)
	r.window.SetMouseButtonCallback(r.onMouseEvent)
	r.window.SetCursorPosCallback(r.onCursorPosEvent)

	return nil
}

// Render iterations until the window closes. A zero iteration budget keeps
// refining indefinitely.
func (r *interactiveGLRenderer) Render() error {
	start := time.Now()
	frameW, frameH := int32(r.sc.Camera.ResX), int32(r.sc.Camera.ResY)

	for !r.window.ShouldClose() {
		glfw.PollEvents()

		// Nothing left to refine for the current camera position.
		if r.opts.Iterations != 0 && r.accumulatedIterations >= r.opts.Iterations {
			continue
		}

		r.accumulatedIterations++
		if err := r.renderIteration(r.accumulatedIterations); err != nil {
			return err
		}

		// Update texture with frame data and blit to the window.
		gl.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, frameW, frameH, gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&r.frame.Pix[0]))
		gl.BindFramebuffer(gl.READ_FRAMEBUFFER, r.texFbo)
		gl.BlitFramebuffer(0, 0, frameW, frameH, 0, frameH, frameW, 0, gl.COLOR_BUFFER_BIT, gl.LINEAR)
		gl.BindFramebuffer(gl.READ_FRAMEBUFFER, 0)

		r.window.SwapBuffers()
	}

	r.stats.RenderTime = time.Since(start)
	return nil
}

func (r *interactiveGLRenderer) Close() {
	if r.window != nil {
		r.window.SetShouldClose(true)
		glfw.Terminate()
		r.window = nil
	}
	r.defaultRenderer.Close()
}

// Restart the progressive estimate after a camera change.
func (r *interactiveGLRenderer) resetAccumulation() {
	r.tracer.Reset()
	r.accumulatedIterations = 0
}

func (r *interactiveGLRenderer) onKeyEvent(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if action != glfw.Press && action != glfw.Repeat {
		return
	}

	var moveDir scene.CameraDirection
	switch key {
	case glfw.KeyEscape:
		r.window.SetShouldClose(true)
		return
	case glfw.KeyUp:
		moveDir = scene.Forward
	case glfw.KeyDown:
		moveDir = scene.Backward
	case glfw.KeyLeft:
		moveDir = scene.Left
	case glfw.KeyRight:
		moveDir = scene.Right
	default:
		return
	}

	// Double speed if shift is pressed
	var speedScaler float32 = 1.0
	if (mods & glfw.ModShift) == glfw.ModShift {
		speedScaler = 2.0
	}
	r.camera.Move(moveDir, speedScaler*cameraMoveSpeed)
	r.resetAccumulation()
}

func (r *interactiveGLRenderer) onMouseEvent(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mod glfw.ModifierKey) {
	if button != glfw.MouseButtonLeft {
		return
	}

	if action == glfw.Press {
		xPos, yPos := w.GetCursorPos()
		r.lastCursorPos[0], r.lastCursorPos[1] = float32(xPos), float32(yPos)
		r.mousePressed = true
	} else {
		r.mousePressed = false
	}
}

func (r *interactiveGLRenderer) onCursorPosEvent(w *glfw.Window, xPos, yPos float64) {
	if !r.mousePressed {
		return
	}

	// Calculate delta movement and apply mouse sensitivity
	newPos := types.Vec2{float32(xPos), float32(yPos)}
	delta := r.lastCursorPos.Sub(newPos)
	r.lastCursorPos = newPos

	r.camera.Aim(delta[0]*mouseSensitivityX, delta[1]*mouseSensitivityY)
	r.resetAccumulation()
}
