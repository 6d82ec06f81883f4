// Package app wires the placement core together and dispatches host events
// and frame ticks to it.
package app

import (
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-ar/internal/catalog"
	"github.com/Faultbox/midgard-ar/internal/config"
	"github.com/Faultbox/midgard-ar/internal/hittest"
	"github.com/Faultbox/midgard-ar/internal/lighting"
	"github.com/Faultbox/midgard-ar/internal/logger"
	"github.com/Faultbox/midgard-ar/internal/metrics"
	"github.com/Faultbox/midgard-ar/internal/placement"
	"github.com/Faultbox/midgard-ar/internal/reticle"
	"github.com/Faultbox/midgard-ar/internal/selection"
	"github.com/Faultbox/midgard-ar/internal/session"
	"github.com/Faultbox/midgard-ar/internal/task"
	"github.com/Faultbox/midgard-ar/internal/ui"
	"github.com/Faultbox/midgard-ar/internal/xr"
	"github.com/Faultbox/midgard-ar/pkg/math"
)

// App is the placement application instance.
type App struct {
	platform xr.Platform
	renderer xr.Renderer
	queue    *task.Queue
	metrics  *metrics.Metrics

	catalog     *catalog.Registry
	selection   *selection.State
	reticle     *reticle.Controller
	hitTest     *hittest.Pipeline
	coordinator *session.Coordinator
	placement   *placement.Engine
	lighting    *lighting.Controller

	// estimation is false when light estimation was not requested.
	estimation bool

	ticks  int
	closed bool
}

// New builds the app from cfg. Completions of the platform's and renderer's
// futures must be posted to q.
func New(cfg *config.Config, p xr.Platform, r xr.Renderer, q *task.Queue, sink ui.Sink, m *metrics.Metrics) (*App, error) {
	a := &App{
		platform: p,
		renderer: r,
		queue:    q,
		metrics:  m,
		catalog:  catalog.NewRegistry(r, m),
	}

	if len(cfg.Catalog.Models) == 0 {
		return nil, fmt.Errorf("building catalog: %w: no models", catalog.ErrInvalidTemplate)
	}
	for i, mc := range cfg.Catalog.Models {
		if err := a.catalog.RegisterTemplate(i, mc.Source, mc.Scale); err != nil {
			return nil, fmt.Errorf("building catalog: %w", err)
		}
	}
	a.selection = selection.New(a.catalog.Len(), sink)

	rc := cfg.Reticle
	mesh := r.NewRing(reticle.Ring(rc.InnerRadius, rc.OuterRadius, rc.Segments))
	r.AddToScene(mesh)
	a.reticle = reticle.New(mesh)

	lc := cfg.Lighting
	a.lighting = lighting.New(r, xr.HemisphereLight{
		SkyColor:    lc.SkyColor,
		GroundColor: lc.GroundColor,
		Intensity:   lc.Intensity,
		Position:    math.Vec3{X: lc.Position[0], Y: lc.Position[1], Z: lc.Position[2]},
	})

	a.hitTest = hittest.NewPipeline(p, xr.ReferenceSpace(cfg.Session.ReferenceSpace))
	a.coordinator = session.NewCoordinator(p, a.reticle, sink, m, a.Tick, session.Options{
		RequiredFeatures: cfg.Session.RequiredFeatures,
		OptionalFeatures: cfg.Session.OptionalFeatures,
		OwnsSurface:      cfg.Session.OwnsSurface,
	})
	a.estimation = slices.Contains(cfg.Session.RequiredFeatures, xr.FeatureLightEstimation) ||
		slices.Contains(cfg.Session.OptionalFeatures, xr.FeatureLightEstimation)
	a.placement = placement.NewEngine(a.catalog, a.selection, a.reticle, r, sink, m)

	logger.Info("app initialized",
		zap.Int("models", a.catalog.Len()),
		zap.String("reference_space", cfg.Session.ReferenceSpace))
	return a, nil
}

// Start begins loading the catalog models.
func (a *App) Start() {
	a.catalog.LoadAll()
}

// Pump delivers pending completions. The host calls it on refreshes that
// run no frame loop, so model loads settle before any session starts.
func (a *App) Pump() {
	a.queue.Drain()
}

// Tick is the frame callback. Within one tick, pending completions are
// delivered first, then hit-testing runs, then the reticle follows, then
// the scene is drawn. Select triggers are handled between ticks and so
// always see the reticle as of the last completed tick.
func (a *App) Tick(ts time.Duration, frame xr.Frame) {
	a.ticks++
	a.Pump()

	ctx := a.coordinator.Current()
	if ctx == nil {
		a.renderer.Render()
		return
	}

	res := a.hitTest.Update(ctx.HitTest, frame)
	a.reticle.Update(res)

	switch res.Outcome {
	case hittest.Hit:
		a.coordinator.NoteHit(ctx)
		a.metrics.Frame(metrics.FrameHit)
	case hittest.Miss:
		a.metrics.Frame(metrics.FrameMiss)
	case hittest.Failed:
		a.coordinator.NoteFailure(ctx, res.Err)
		a.metrics.Frame(metrics.FrameSkipped)
	default:
		if res.NoFrame {
			a.metrics.Frame(metrics.FrameNoFrame)
		} else {
			a.metrics.Frame(metrics.FrameSkipped)
		}
	}

	a.renderer.Render()
}

// OnSessionStart handles the host's session-start event.
func (a *App) OnSessionStart() {
	if _, err := a.coordinator.OnSessionStart(); err != nil {
		logger.Warn("session start failed", zap.Error(err))
	}
}

// OnSessionEnd handles the host's session-end event.
func (a *App) OnSessionEnd() {
	a.coordinator.OnSessionEnd()
}

// OnSelectionClick handles a palette click. It is not a placement gesture.
func (a *App) OnSelectionClick(index int) {
	a.selection.Select(index)
}

// OnTriggerSelect handles one AR select gesture.
func (a *App) OnTriggerSelect() {
	a.placement.OnTrigger(a.coordinator.Current())
}

// OnEstimationStart handles the light-estimation start event. It is ignored
// unless the session asked for light estimation.
func (a *App) OnEstimationStart(light xr.SceneObject, env xr.Environment) {
	if !a.estimation {
		logger.Debug("light estimation not requested, keeping default light")
		return
	}
	a.lighting.OnEstimationStart(light, env)
}

// OnEstimationEnd handles the light-estimation end event.
func (a *App) OnEstimationEnd() {
	a.lighting.OnEstimationEnd()
}

// Close ends any running session and frees renderer resources. Safe to call
// more than once.
func (a *App) Close() {
	if a.closed {
		return
	}
	a.closed = true
	logger.Info("closing app")

	a.coordinator.OnSessionEnd()
	a.platform.SetAnimationLoop(nil)
	a.renderer.Dispose()
}

// Placed returns the objects placed so far.
func (a *App) Placed() []placement.PlacedObject {
	return a.placement.Placed()
}

// Catalog returns the model registry.
func (a *App) Catalog() *catalog.Registry {
	return a.catalog
}

// Reticle returns the reticle controller.
func (a *App) Reticle() *reticle.Controller {
	return a.reticle
}

// Session returns the running session, or nil.
func (a *App) Session() *session.Context {
	return a.coordinator.Current()
}

// Selection returns the active palette index.
func (a *App) Selection() int {
	return a.selection.Current()
}

// Estimating reports whether light estimation is active.
func (a *App) Estimating() bool {
	return a.lighting.Estimating()
}

// Ticks returns how many frame callbacks have run.
func (a *App) Ticks() int {
	return a.ticks
}
