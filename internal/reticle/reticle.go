// Package reticle owns the placement indicator. Its visibility and transform
// are a pure function of the latest hit-test result.
package reticle

import (
	gomath "math"

	"github.com/Faultbox/midgard-ar/internal/hittest"
	"github.com/Faultbox/midgard-ar/internal/xr"
	"github.com/Faultbox/midgard-ar/pkg/math"
)

// Pose is the reticle's last known placement pose.
type Pose struct {
	Visible   bool
	Transform math.Mat4
}

// Ring returns reticle geometry lying flat in the XZ plane.
func Ring(inner, outer float32, segments int) xr.RingGeometry {
	return xr.RingGeometry{
		InnerRadius: inner,
		OuterRadius: outer,
		Segments:    segments,
		Basis:       math.RotateX(-gomath.Pi / 2),
	}
}

// Controller tracks the reticle pose and mirrors it onto a mesh, if any.
type Controller struct {
	pose Pose
	mesh xr.SceneObject
}

// New creates a hidden reticle. mesh may be nil when nothing is drawn.
func New(mesh xr.SceneObject) *Controller {
	c := &Controller{
		pose: Pose{Transform: math.Identity()},
		mesh: mesh,
	}
	c.sync()
	return c
}

// Update applies one frame's hit-test result. Hit shows the reticle at the
// hit pose, Miss hides it, and anything else (no frame, no source yet,
// acquisition failure) leaves it untouched.
func (c *Controller) Update(r hittest.Result) {
	switch r.Outcome {
	case hittest.Hit:
		c.pose = Pose{Visible: true, Transform: r.Pose}
	case hittest.Miss:
		c.pose.Visible = false
	default:
		return
	}
	c.sync()
}

// Hide hides the reticle, keeping its last transform.
func (c *Controller) Hide() {
	c.pose.Visible = false
	c.sync()
}

// CurrentPose returns the pose as of the last update.
func (c *Controller) CurrentPose() Pose {
	return c.pose
}

// Mesh returns the rendered reticle object, or nil.
func (c *Controller) Mesh() xr.SceneObject {
	return c.mesh
}

func (c *Controller) sync() {
	if c.mesh == nil {
		return
	}
	c.mesh.SetVisible(c.pose.Visible)
	if c.pose.Visible {
		c.mesh.SetMatrix(c.pose.Transform)
	}
}
