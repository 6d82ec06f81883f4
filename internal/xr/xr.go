// Package xr defines the capability surface the placement core consumes from
// the host AR runtime and rendering engine.
package xr

import (
	"time"

	"github.com/Faultbox/midgard-ar/internal/task"
	"github.com/Faultbox/midgard-ar/pkg/math"
)

// ReferenceSpace names the coordinate frame hit-test poses are expressed in.
type ReferenceSpace string

// Reference spaces understood by the platform.
const (
	SpaceViewer ReferenceSpace = "viewer"
	SpaceLocal  ReferenceSpace = "local"
)

// Session features.
const (
	FeatureHitTest         = "hit-test"
	FeatureDOMOverlay      = "dom-overlay"
	FeatureLightEstimation = "light-estimation"
)

// HitTestResult is one candidate surface pose.
type HitTestResult struct {
	Transform math.Mat4
}

// HitTestSource is a platform handle that produces hit-test results each frame.
type HitTestSource interface {
	// Cancel releases the source. Calling it more than once is harmless.
	Cancel()
}

// Frame is the tracking state for one display refresh.
type Frame interface {
	// HitTestResults returns candidate poses ranked nearest first.
	HitTestResults(src HitTestSource) ([]HitTestResult, error)
}

// FrameCallback runs once per display refresh. frame is nil when the
// runtime has no valid tracking pose for this tick.
type FrameCallback func(ts time.Duration, frame Frame)

// Platform is the host AR runtime.
type Platform interface {
	// SessionSupported reports whether a session with the given required
	// features can be started.
	SessionSupported(required []string) bool

	// RequestHitTestSource starts asynchronous acquisition of a hit-test
	// source in the given reference space.
	RequestHitTestSource(space ReferenceSpace) *task.Future[HitTestSource]

	// SetAnimationLoop registers the frame callback. nil stops the loop.
	SetAnimationLoop(cb FrameCallback)

	// ReleaseSurface hands the session's rendering surface back to the runtime.
	ReleaseSurface()
}

// SceneObject is a node in the renderer's scene graph.
type SceneObject interface {
	SetVisible(visible bool)
	Visible() bool

	// SetMatrix replaces the local transform outright.
	SetMatrix(m math.Mat4)

	// SetTransform sets the local transform from its components.
	SetTransform(position math.Vec3, rotation math.Quat, scale math.Vec3)

	Matrix() math.Mat4
}

// Environment is an opaque environment map supplied by light estimation.
type Environment any

// RingGeometry describes the flat ring mesh drawn as the reticle.
type RingGeometry struct {
	InnerRadius float32
	OuterRadius float32
	Segments    int
	// Basis is applied to the geometry itself, not the object transform.
	Basis math.Mat4
}

// HemisphereLight describes the default scene light.
type HemisphereLight struct {
	SkyColor    uint32
	GroundColor uint32
	Intensity   float32
	Position    math.Vec3
}

// Renderer is the rendering engine capability used by the core.
type Renderer interface {
	// LoadModel starts asynchronous loading of a model source.
	LoadModel(source string) *task.Future[SceneObject]

	// Clone deep-clones obj into a new scene-graph subtree.
	Clone(obj SceneObject) SceneObject

	AddToScene(obj SceneObject)
	RemoveFromScene(obj SceneObject)

	// NewRing creates the reticle mesh. The object is not yet in the scene.
	NewRing(g RingGeometry) SceneObject

	// NewHemisphereLight creates the default light. Not yet in the scene.
	NewHemisphereLight(l HemisphereLight) SceneObject

	// SetEnvironment sets the scene environment map; nil clears it.
	SetEnvironment(env Environment)

	// Render draws the scene for the current frame.
	Render()

	// Dispose frees all renderer resources.
	Dispose()
}
