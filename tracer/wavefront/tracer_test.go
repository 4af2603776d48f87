package wavefront

import (
	"bytes"
	"math/rand"
	"reflect"
	"strings"
	"testing"

	"github.com/borealisgfx/borealis/scene"
	"github.com/borealisgfx/borealis/tracer/device"
	"github.com/borealisgfx/borealis/types"
)

// A scene whose camera sits inside a huge sphere, so every primary ray hits
// it from the inside regardless of resolution.
func enclosingSphereScene(resX, resY int, mat scene.Material) *scene.Scene {
	geom := scene.Geometry{
		Type:       scene.Sphere,
		MaterialID: 0,
		Scale:      types.Vec3{100, 100, 100},
	}
	geom.UpdateTransforms()

	return &scene.Scene{
		Geometry:  []scene.Geometry{geom},
		Materials: []scene.Material{mat},
		Camera:    scene.NewCamera(45, resX, resY),
	}
}

func makeTestTracer(t *testing.T, sc *scene.Scene, cfg Config) *Tracer {
	t.Helper()

	tr, err := New("test", device.New("test", 2), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if err = tr.Init(sc); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(tr.Close)
	return tr
}

func traceFrames(t *testing.T, tr *Tracer, iterations int) []uint8 {
	t.Helper()

	target := make([]uint8, tr.numPixels*4)
	for iter := 1; iter <= iterations; iter++ {
		if err := tr.TraceFrame(target, 0, uint32(iter)); err != nil {
			t.Fatal(err)
		}
	}
	return target
}

func TestEmissiveSphereSaturatesFrame(t *testing.T) {
	// color (1,1,1) with emittance 2 must clamp to 255 on every channel.
	sc := enclosingSphereScene(4, 4, scene.Material{
		Color:     types.Vec3{1, 1, 1},
		Emittance: 2,
	})
	tr := makeTestTracer(t, sc, Config{TraceDepth: 1, CompactPaths: true, SortByMaterial: true})

	target := traceFrames(t, tr, 1)
	for i, val := range target {
		if val != 255 {
			t.Fatalf("pixel byte %d: expected saturated channel 255; got %d", i, val)
		}
	}

	if tr.Stats().Bounces != 1 {
		t.Fatalf("expected exactly 1 bounce; got %d", tr.Stats().Bounces)
	}
}

func TestEmptySceneRendersBackground(t *testing.T) {
	background := types.Vec3{0.1, 0.2, 0.3}
	sc := &scene.Scene{Camera: scene.NewCamera(45, 3, 3)}
	tr := makeTestTracer(t, sc, Config{TraceDepth: 4, CompactPaths: true, BackgroundColor: background})

	target := traceFrames(t, tr, 1)
	for pixel := 0; pixel < tr.numPixels; pixel++ {
		for c := 0; c < 3; c++ {
			exp := uint8(background[c] * 255)
			if got := target[pixel*4+c]; got != exp {
				t.Fatalf("pixel %d channel %d: expected background %d; got %d", pixel, c, exp, got)
			}
		}
		if target[pixel*4+3] != 255 {
			t.Fatalf("pixel %d: expected opaque alpha", pixel)
		}
	}
}

func TestExhaustedBounceBudgetYieldsBackground(t *testing.T) {
	// A diffuse enclosure with no lights: every path spends its full
	// budget and must come out as the background color, not as a partial
	// throughput accumulation.
	background := types.Vec3{0.25, 0.5, 0.75}
	sc := enclosingSphereScene(3, 3, scene.Material{Color: types.Vec3{0.8, 0.8, 0.8}})
	tr := makeTestTracer(t, sc, Config{TraceDepth: 3, CompactPaths: true, BackgroundColor: background})

	target := traceFrames(t, tr, 1)
	for pixel := 0; pixel < tr.numPixels; pixel++ {
		for c := 0; c < 3; c++ {
			exp := uint8(background[c] * 255)
			if got := target[pixel*4+c]; got != exp {
				t.Fatalf("pixel %d channel %d: expected background %d; got %d", pixel, c, exp, got)
			}
		}
	}

	if tr.Stats().Bounces != 3 {
		t.Fatalf("expected the full 3 bounces; got %d", tr.Stats().Bounces)
	}
}

func TestTraceIsDeterministic(t *testing.T) {
	mat := scene.Material{Color: types.Vec3{0.9, 0.7, 0.5}, Emittance: 0.8}
	cfg := Config{TraceDepth: 5, CompactPaths: true, SortByMaterial: true}

	tr1 := makeTestTracer(t, enclosingSphereScene(8, 8, mat), cfg)
	tr2 := makeTestTracer(t, enclosingSphereScene(8, 8, mat), cfg)

	frame1 := traceFrames(t, tr1, 4)
	frame2 := traceFrames(t, tr2, 4)

	if !bytes.Equal(frame1, frame2) {
		t.Fatal("expected two runs over the same scene and config to produce identical frames")
	}
}

func TestVariantTogglesDoNotChangeOutput(t *testing.T) {
	// Sorting and compaction are pure throughput optimizations; toggling
	// them must not change a single output byte.
	mat := scene.Material{Color: types.Vec3{0.6, 0.6, 0.9}}
	baseline := Config{TraceDepth: 4, CompactPaths: true, SortByMaterial: true}

	variants := []Config{
		{TraceDepth: 4, CompactPaths: true, SortByMaterial: false},
		{TraceDepth: 4, CompactPaths: false, SortByMaterial: true},
		{TraceDepth: 4, CompactPaths: false, SortByMaterial: false},
	}

	trBase := makeTestTracer(t, enclosingSphereScene(6, 6, mat), baseline)
	expected := traceFrames(t, trBase, 3)

	for index, cfg := range variants {
		tr := makeTestTracer(t, enclosingSphereScene(6, 6, mat), cfg)
		got := traceFrames(t, tr, 3)
		if !bytes.Equal(expected, got) {
			t.Fatalf("[variant %d] expected output to match the baseline configuration", index)
		}
	}
}

func TestActiveSetShrinksMonotonically(t *testing.T) {
	// Half the frame sees an emissive wall (terminates at bounce 0), the
	// rest miss and terminate too; drive the stages by hand and verify
	// active(k+1) <= active(k) at every bounce.
	mat := scene.Material{Color: types.Vec3{0.7, 0.7, 0.7}}
	sc := enclosingSphereScene(8, 8, mat)
	tr := makeTestTracer(t, sc, Config{TraceDepth: 6, CompactPaths: true})

	if _, err := tr.generateCameraRays(1); err != nil {
		t.Fatal(err)
	}
	paths := tr.buffers.Paths
	tr.buffers.Active.reset(tr.numPixels, func(slot int32) bool {
		return paths[slot].alive()
	})

	prevCount := tr.buffers.Active.count
	for depth := 0; depth < 6 && tr.buffers.Active.count > 0; depth++ {
		if _, err := tr.computeIntersections(1, depth); err != nil {
			t.Fatal(err)
		}
		if _, err := tr.shadeMaterials(1, depth); err != nil {
			t.Fatal(err)
		}
		if _, err := tr.compactPaths(); err != nil {
			t.Fatal(err)
		}

		if tr.buffers.Active.count > prevCount {
			t.Fatalf("[depth %d] active set grew from %d to %d", depth, prevCount, tr.buffers.Active.count)
		}
		prevCount = tr.buffers.Active.count
	}

	if tr.buffers.Active.count != 0 {
		t.Fatalf("expected all paths exhausted after the bounce budget; %d still active", tr.buffers.Active.count)
	}
}

func TestEmissiveHitTerminatesWithScaledThroughput(t *testing.T) {
	mat := scene.Material{Color: types.Vec3{0.5, 0.25, 1}, Emittance: 3}
	sc := enclosingSphereScene(2, 2, mat)
	tr := makeTestTracer(t, sc, Config{TraceDepth: 4, CompactPaths: true})

	if _, err := tr.generateCameraRays(1); err != nil {
		t.Fatal(err)
	}
	paths := tr.buffers.Paths
	tr.buffers.Active.reset(tr.numPixels, func(slot int32) bool {
		return paths[slot].alive()
	})
	if _, err := tr.computeIntersections(1, 0); err != nil {
		t.Fatal(err)
	}
	if _, err := tr.shadeMaterials(1, 0); err != nil {
		t.Fatal(err)
	}

	exp := mat.Color.Mul(mat.Emittance) // pre-hit throughput is (1,1,1)
	for slot := range paths {
		seg := &paths[slot]
		if !seg.Terminated || seg.RemainingBounces != 0 {
			t.Fatalf("slot %d: expected emissive hit to terminate the path", slot)
		}
		if !types.ApproxEqual(seg.Color, exp, 1e-5) {
			t.Fatalf("slot %d: expected throughput %v; got %v", slot, exp, seg.Color)
		}
	}
}

func TestFirstBounceCacheIsBitIdentical(t *testing.T) {
	mat := scene.Material{Color: types.Vec3{0.8, 0.8, 0.8}}
	sc := enclosingSphereScene(4, 4, mat)
	sc.Camera.Antialias = true // must be suppressed by caching
	tr := makeTestTracer(t, sc, Config{TraceDepth: 3, CompactPaths: true, CacheFirstBounce: true})

	runFirstBounce := func(iteration uint32) []Intersection {
		if _, err := tr.generateCameraRays(iteration); err != nil {
			t.Fatal(err)
		}
		paths := tr.buffers.Paths
		tr.buffers.Active.reset(tr.numPixels, func(slot int32) bool {
			return paths[slot].alive()
		})
		if _, err := tr.computeIntersections(iteration, 0); err != nil {
			t.Fatal(err)
		}
		out := make([]Intersection, tr.numPixels)
		copy(out, tr.buffers.Isects)
		return out
	}

	first := runFirstBounce(1)
	if !reflect.DeepEqual(first, tr.buffers.CachedIsects) {
		t.Fatal("expected iteration 1 to snapshot its first-bounce intersections into the cache")
	}

	second := runFirstBounce(2)
	if !reflect.DeepEqual(first, second) {
		t.Fatal("expected cached first-bounce intersections to be bit-identical across iterations")
	}
}

func TestCachingForcesDeterministicPrimaryRays(t *testing.T) {
	mat := scene.Material{Color: types.Vec3{0.8, 0.8, 0.8}}
	sc := enclosingSphereScene(4, 4, mat)
	sc.Camera.Antialias = true
	tr := makeTestTracer(t, sc, Config{TraceDepth: 2, CompactPaths: true, CacheFirstBounce: true})

	if _, err := tr.generateCameraRays(1); err != nil {
		t.Fatal(err)
	}
	rays1 := make([]scene.Ray, tr.numPixels)
	for slot, seg := range tr.buffers.Paths {
		rays1[slot] = seg.Ray
	}

	if _, err := tr.generateCameraRays(2); err != nil {
		t.Fatal(err)
	}
	for slot, seg := range tr.buffers.Paths {
		if seg.Ray != rays1[slot] {
			t.Fatalf("slot %d: expected un-jittered primary ray to repeat across iterations; got %+v vs %+v", slot, seg.Ray, rays1[slot])
		}
		if seg.Ray.Time != 0 {
			t.Fatalf("slot %d: expected ray-time jitter to be suppressed under caching", slot)
		}
	}
}

func TestAdaptiveControllerFreezesConstantPixels(t *testing.T) {
	// A constant emissive view converges immediately: once the sample
	// count clears the minimum, every pixel must be skip-flagged and the
	// displayed estimate must stay frozen.
	mat := scene.Material{Color: types.Vec3{0.5, 0.5, 0.5}, Emittance: 1}
	sc := enclosingSphereScene(3, 3, mat)
	tr := makeTestTracer(t, sc, Config{
		TraceDepth:         2,
		CompactPaths:       true,
		Adaptive:           true,
		AdaptiveMinSamples: 3,
		AdaptiveThreshold:  0,
	})

	target := traceFrames(t, tr, 4)

	for pixel := range tr.buffers.Stats {
		if !tr.buffers.Stats[pixel].Skip {
			t.Fatalf("pixel %d: expected skip flag after %d constant samples", pixel, 4)
		}
	}
	if tr.Stats().ConvergedPixels != tr.numPixels {
		t.Fatalf("expected %d converged pixels; got %d", tr.numPixels, tr.Stats().ConvergedPixels)
	}

	// Further iterations trace no bounces and leave the image untouched.
	after := make([]uint8, len(target))
	copy(after, target)
	if err := tr.TraceFrame(after, 0, 5); err != nil {
		t.Fatal(err)
	}
	if tr.Stats().Bounces != 0 {
		t.Fatalf("expected no bounces once every pixel is frozen; got %d", tr.Stats().Bounces)
	}
	if !bytes.Equal(target, after) {
		t.Fatal("expected frozen pixels to retain their last computed average")
	}
}

func TestAccumulatorAveragesAcrossIterations(t *testing.T) {
	// An emissive enclosure produces the same radiance every iteration, so
	// the running average must still equal that constant after N samples.
	mat := scene.Material{Color: types.Vec3{0.2, 0.4, 0.6}, Emittance: 1}
	sc := enclosingSphereScene(2, 2, mat)
	tr := makeTestTracer(t, sc, Config{TraceDepth: 2, CompactPaths: true})

	traceFrames(t, tr, 5)

	exp := mat.Color
	for pixel := 0; pixel < tr.numPixels; pixel++ {
		if !types.ApproxEqual(tr.buffers.Accum[pixel], exp, 1e-5) {
			t.Fatalf("pixel %d: expected running average %v; got %v", pixel, exp, tr.buffers.Accum[pixel])
		}
	}
}

func TestLifecycleIsIdempotent(t *testing.T) {
	tr, err := New("test", device.New("test", 1), Config{})
	if err != nil {
		t.Fatal(err)
	}

	// Close on an uninitialized session is a no-op.
	tr.Close()
	tr.Close()
	tr.Reset()

	if err = tr.TraceFrame(make([]uint8, 4), 0, 1); err == nil {
		t.Fatal("expected TraceFrame on an uninitialized session to fail")
	}

	sc := enclosingSphereScene(2, 2, scene.Material{Color: types.Vec3{1, 1, 1}, Emittance: 1})
	if err = tr.Init(sc); err != nil {
		t.Fatal(err)
	}
	if err = tr.Init(sc); err == nil {
		t.Fatal("expected double Init to fail")
	}

	tr.Close()
	tr.Close()
}

func TestKernelFailureIsReported(t *testing.T) {
	sc := enclosingSphereScene(2, 2, scene.Material{Color: types.Vec3{1, 1, 1}})
	tr := makeTestTracer(t, sc, Config{
		TraceDepth:   2,
		CompactPaths: true,
		Scatter: func(ScatterInput, *rand.Rand) ScatterResult {
			panic("bsdf blew up")
		},
	})

	err := tr.TraceFrame(make([]uint8, tr.numPixels*4), 0, 1)
	if err == nil {
		t.Fatal("expected a panicking scatter function to surface as a trace error")
	}
	if !strings.Contains(err.Error(), "shadeMaterials") {
		t.Fatalf("expected the error to name the failing kernel; got %v", err)
	}
}
