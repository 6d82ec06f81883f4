// Package placement turns select triggers into scene objects at the reticle pose.
package placement

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-ar/internal/catalog"
	"github.com/Faultbox/midgard-ar/internal/metrics"
	"github.com/Faultbox/midgard-ar/internal/reticle"
	"github.com/Faultbox/midgard-ar/internal/selection"
	"github.com/Faultbox/midgard-ar/internal/session"
	"github.com/Faultbox/midgard-ar/internal/ui"
	"github.com/Faultbox/midgard-ar/internal/xr"
	"github.com/Faultbox/midgard-ar/pkg/math"
)

// PlacedObject is one instance put into the scene by a trigger.
type PlacedObject struct {
	ID          uuid.UUID
	Index       int
	Position    math.Vec3
	Orientation math.Quat
	Scale       math.Vec3
	Object      xr.SceneObject
}

// Engine validates triggers and instantiates objects.
type Engine struct {
	registry  *catalog.Registry
	selection *selection.State
	reticle   *reticle.Controller
	renderer  xr.Renderer
	sink      ui.Sink
	metrics   *metrics.Metrics

	placed []PlacedObject
}

// NewEngine creates a placement engine.
func NewEngine(reg *catalog.Registry, sel *selection.State, ret *reticle.Controller, r xr.Renderer, sink ui.Sink, m *metrics.Metrics) *Engine {
	return &Engine{
		registry:  reg,
		selection: sel,
		reticle:   ret,
		renderer:  r,
		sink:      sink,
		metrics:   m,
	}
}

// OnTrigger handles one select gesture. It places a clone of the active
// template when the reticle is visible and the template is loaded; otherwise
// the trigger is ignored and false is returned.
func (e *Engine) OnTrigger(ctx *session.Context) (PlacedObject, bool) {
	if ctx == nil {
		e.metrics.Rejected(metrics.RejectNoSession)
		return PlacedObject{}, false
	}

	if !ctx.Flags.FirstObjectPlaced {
		ctx.Flags.FirstObjectPlaced = true
		e.sink.InstructionsVisible(false)
	}

	pose := e.reticle.CurrentPose()
	if !pose.Visible {
		e.metrics.Rejected(metrics.RejectNoReticle)
		ctx.Log.Debug("trigger ignored: no surface under reticle")
		return PlacedObject{}, false
	}

	index := e.selection.Current()
	obj, ok := e.registry.CloneFor(index)
	if !ok || obj == nil {
		e.metrics.Rejected(metrics.RejectNotLoaded)
		ctx.Log.Debug("trigger ignored: model not loaded", zap.Int("index", index))
		return PlacedObject{}, false
	}
	tmpl, _ := e.registry.Resolve(index)

	position, orientation, _ := pose.Transform.Decompose()
	scale := math.Uniform(tmpl.ScaleFactor)
	obj.SetTransform(position, orientation, scale)
	obj.SetVisible(true)
	e.renderer.AddToScene(obj)

	p := PlacedObject{
		ID:          uuid.New(),
		Index:       index,
		Position:    position,
		Orientation: orientation,
		Scale:       scale,
		Object:      obj,
	}
	e.placed = append(e.placed, p)
	e.metrics.Placed(tmpl.Source)

	ctx.Log.Info("object placed",
		zap.Stringer("id", p.ID),
		zap.Int("index", index),
		zap.Float32("x", position.X),
		zap.Float32("y", position.Y),
		zap.Float32("z", position.Z))
	return p, true
}

// Placed returns the objects placed so far, oldest first.
func (e *Engine) Placed() []PlacedObject {
	out := make([]PlacedObject, len(e.placed))
	copy(out, e.placed)
	return out
}

// Count returns the number of placed objects.
func (e *Engine) Count() int {
	return len(e.placed)
}
