// Package sim is a headless, scripted AR runtime. It implements the xr
// Platform and Renderer capabilities on a virtual clock so the placement core
// can run without a device, driven step by step or by a YAML scenario.
package sim

import (
	"errors"
	"fmt"
	"time"

	"github.com/Faultbox/midgard-ar/internal/task"
	"github.com/Faultbox/midgard-ar/internal/xr"
	"github.com/Faultbox/midgard-ar/pkg/math"
)

// FrameInterval is the virtual display refresh period.
const FrameInterval = time.Second / 60

var (
	// ErrSourceRejected is the rejection used when a hit-test source is planned to fail.
	ErrSourceRejected = errors.New("hit-test source rejected by platform")
	// ErrLoadFailed is the rejection used when a model load is planned to fail.
	ErrLoadFailed = errors.New("model load failed")
	// ErrSourceCancelled is returned when querying a released source.
	ErrSourceCancelled = errors.New("hit-test source cancelled")
)

// Plan schedules the outcome of an asynchronous request.
type Plan struct {
	// AfterFrames delays completion; 0 completes on the next Step.
	AfterFrames int  `yaml:"after_frames"`
	Fail        bool `yaml:"fail"`
}

// Source is a simulated hit-test source.
type Source struct {
	Space     xr.ReferenceSpace
	cancelled bool
}

// Cancel releases the source.
func (s *Source) Cancel() { s.cancelled = true }

// Cancelled reports whether Cancel was called.
func (s *Source) Cancelled() bool { return s.cancelled }

// Frame is one scripted tracking frame.
type Frame struct {
	// Hits are ranked nearest first.
	Hits []math.Mat4
	// Err makes HitTestResults fail for this frame.
	Err error
}

// HitTestResults implements xr.Frame.
func (f *Frame) HitTestResults(src xr.HitTestSource) ([]xr.HitTestResult, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	s, ok := src.(*Source)
	if !ok || s == nil {
		return nil, fmt.Errorf("unknown hit-test source %T", src)
	}
	if s.cancelled {
		return nil, ErrSourceCancelled
	}
	results := make([]xr.HitTestResult, len(f.Hits))
	for i, h := range f.Hits {
		results[i] = xr.HitTestResult{Transform: h}
	}
	return results, nil
}

// HitAt is a frame with a single hit at the given position.
func HitAt(x, y, z float32) *Frame {
	return &Frame{Hits: []math.Mat4{math.Translate(x, y, z)}}
}

type scheduled struct {
	due  int
	fire func()
}

// Runtime implements xr.Platform and xr.Renderer.
type Runtime struct {
	queue *task.Queue

	frames  int
	clock   time.Duration
	loop    xr.FrameCallback
	pending []scheduled

	sourcePlan  Plan
	loadPlans   map[string]Plan
	unsupported bool

	scene       []*Object
	environment xr.Environment

	// Sources holds every hit-test source handed out, in request order.
	Sources []*Source
	// SourceRequests counts RequestHitTestSource calls.
	SourceRequests int
	// SurfaceReleases counts ReleaseSurface calls.
	SurfaceReleases int
	// Renders counts Render calls.
	Renders  int
	Disposed bool
}

// NewRuntime creates a runtime whose futures post to q.
func NewRuntime(q *task.Queue) *Runtime {
	return &Runtime{
		queue:     q,
		loadPlans: make(map[string]Plan),
	}
}

// PlanSource sets how hit-test source requests complete.
func (r *Runtime) PlanSource(p Plan) { r.sourcePlan = p }

// PlanLoad sets how loading source completes. Unplanned sources load on the next Step.
func (r *Runtime) PlanLoad(source string, p Plan) { r.loadPlans[source] = p }

// SetSupported controls SessionSupported.
func (r *Runtime) SetSupported(supported bool) { r.unsupported = !supported }

// Frames returns the number of steps taken.
func (r *Runtime) Frames() int { return r.frames }

// Looping reports whether a frame callback is registered.
func (r *Runtime) Looping() bool { return r.loop != nil }

// Step advances one display refresh: due completions settle first, then the
// frame callback runs. A nil frame means no tracking pose this tick.
func (r *Runtime) Step(frame *Frame) {
	r.frames++
	r.clock += FrameInterval

	remaining := r.pending[:0]
	var due []scheduled
	for _, s := range r.pending {
		if s.due <= r.frames {
			due = append(due, s)
		} else {
			remaining = append(remaining, s)
		}
	}
	r.pending = remaining
	for _, s := range due {
		s.fire()
	}

	if r.loop == nil {
		return
	}
	if frame == nil {
		r.loop(r.clock, nil)
		return
	}
	r.loop(r.clock, frame)
}

func (r *Runtime) schedule(p Plan, fire func()) {
	r.pending = append(r.pending, scheduled{due: r.frames + 1 + p.AfterFrames, fire: fire})
}

// SessionSupported implements xr.Platform.
func (r *Runtime) SessionSupported(required []string) bool {
	return !r.unsupported
}

// RequestHitTestSource implements xr.Platform.
func (r *Runtime) RequestHitTestSource(space xr.ReferenceSpace) *task.Future[xr.HitTestSource] {
	r.SourceRequests++
	f := task.NewFuture[xr.HitTestSource](r.queue)
	plan := r.sourcePlan
	r.schedule(plan, func() {
		if plan.Fail {
			_ = f.Reject(ErrSourceRejected)
			return
		}
		src := &Source{Space: space}
		r.Sources = append(r.Sources, src)
		_ = f.Resolve(src)
	})
	return f
}

// SetAnimationLoop implements xr.Platform.
func (r *Runtime) SetAnimationLoop(cb xr.FrameCallback) { r.loop = cb }

// ReleaseSurface implements xr.Platform.
func (r *Runtime) ReleaseSurface() { r.SurfaceReleases++ }

// LoadModel implements xr.Renderer. Loaded models start hidden.
func (r *Runtime) LoadModel(source string) *task.Future[xr.SceneObject] {
	f := task.NewFuture[xr.SceneObject](r.queue)
	plan := r.loadPlans[source]
	r.schedule(plan, func() {
		if plan.Fail {
			_ = f.Reject(fmt.Errorf("%s: %w", source, ErrLoadFailed))
			return
		}
		_ = f.Resolve(newObject(KindModel, source))
	})
	return f
}

// Clone implements xr.Renderer.
func (r *Runtime) Clone(obj xr.SceneObject) xr.SceneObject {
	o := asObject(obj)
	if o == nil {
		return nil
	}
	return o.clone()
}

// AddToScene implements xr.Renderer.
func (r *Runtime) AddToScene(obj xr.SceneObject) {
	o := asObject(obj)
	if o == nil {
		return
	}
	for _, existing := range r.scene {
		if existing == o {
			return
		}
	}
	r.scene = append(r.scene, o)
}

// RemoveFromScene implements xr.Renderer.
func (r *Runtime) RemoveFromScene(obj xr.SceneObject) {
	o := asObject(obj)
	for i, existing := range r.scene {
		if existing == o {
			r.scene = append(r.scene[:i], r.scene[i+1:]...)
			return
		}
	}
}

// NewRing implements xr.Renderer.
func (r *Runtime) NewRing(g xr.RingGeometry) xr.SceneObject {
	o := newObject(KindReticle, "")
	o.Ring = g
	return o
}

// NewHemisphereLight implements xr.Renderer.
func (r *Runtime) NewHemisphereLight(l xr.HemisphereLight) xr.SceneObject {
	o := newObject(KindLight, "")
	o.Light = l
	o.visible = true
	o.SetTransform(l.Position, math.QuatIdentity(), math.Uniform(1))
	return o
}

// NewEstimatedLight creates the light the platform hands over when light
// estimation starts.
func (r *Runtime) NewEstimatedLight() *Object {
	o := newObject(KindEstimatedLight, "")
	o.visible = true
	return o
}

// SetEnvironment implements xr.Renderer.
func (r *Runtime) SetEnvironment(env xr.Environment) { r.environment = env }

// Environment returns the current environment map.
func (r *Runtime) Environment() xr.Environment { return r.environment }

// Render implements xr.Renderer.
func (r *Runtime) Render() { r.Renders++ }

// Dispose implements xr.Renderer.
func (r *Runtime) Dispose() {
	r.Disposed = true
	r.scene = nil
	r.loop = nil
}

// Scene returns the objects currently in the scene.
func (r *Runtime) Scene() []*Object {
	out := make([]*Object, len(r.scene))
	copy(out, r.scene)
	return out
}

// SceneOf returns the scene objects of the given kind.
func (r *Runtime) SceneOf(kind string) []*Object {
	var out []*Object
	for _, o := range r.scene {
		if o.Kind == kind {
			out = append(out, o)
		}
	}
	return out
}
