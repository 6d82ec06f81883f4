// Package lighting swaps the default scene light for the platform's estimated
// light while light estimation is running.
package lighting

import (
	"github.com/Faultbox/midgard-ar/internal/logger"
	"github.com/Faultbox/midgard-ar/internal/xr"
)

// Controller owns the default hemisphere light and the active estimated light.
type Controller struct {
	renderer  xr.Renderer
	def       xr.SceneObject
	estimated xr.SceneObject
}

// New creates the default light and adds it to the scene.
func New(r xr.Renderer, l xr.HemisphereLight) *Controller {
	c := &Controller{renderer: r, def: r.NewHemisphereLight(l)}
	r.AddToScene(c.def)
	return c
}

// OnEstimationStart replaces the default light with light. A non-nil env
// becomes the scene environment map.
func (c *Controller) OnEstimationStart(light xr.SceneObject, env xr.Environment) {
	if light == nil {
		return
	}
	if c.estimated != nil {
		c.renderer.RemoveFromScene(c.estimated)
	}
	c.renderer.RemoveFromScene(c.def)
	c.estimated = light
	c.renderer.AddToScene(light)
	if env != nil {
		c.renderer.SetEnvironment(env)
	}
	logger.Debug("light estimation started")
}

// OnEstimationEnd restores the default light. The environment map stays.
func (c *Controller) OnEstimationEnd() {
	if c.estimated == nil {
		return
	}
	c.renderer.RemoveFromScene(c.estimated)
	c.estimated = nil
	c.renderer.AddToScene(c.def)
	logger.Debug("light estimation ended")
}

// Estimating reports whether an estimated light is in use.
func (c *Controller) Estimating() bool {
	return c.estimated != nil
}

// Default returns the default light object.
func (c *Controller) Default() xr.SceneObject {
	return c.def
}
