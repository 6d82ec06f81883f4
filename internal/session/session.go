// Package session coordinates AR session start and end. All transient
// per-session state lives in a Context that is built on start and dropped on
// end; nothing from one session leaks into the next.
package session

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-ar/internal/hittest"
	"github.com/Faultbox/midgard-ar/internal/logger"
	"github.com/Faultbox/midgard-ar/internal/metrics"
	"github.com/Faultbox/midgard-ar/internal/reticle"
	"github.com/Faultbox/midgard-ar/internal/task"
	"github.com/Faultbox/midgard-ar/internal/ui"
	"github.com/Faultbox/midgard-ar/internal/xr"
)

// ErrUnsupported is returned when the platform cannot run the requested session.
var ErrUnsupported = errors.New("AR session not supported")

// Flags drive the one-shot overlay notifications of a session.
type Flags struct {
	FirstHitDetected  bool
	FirstObjectPlaced bool
}

// Context is the state of one running AR session.
type Context struct {
	Gen     task.Generation
	HitTest *hittest.Session
	Flags   Flags
	Log     *zap.Logger
}

// Options configures a Coordinator.
type Options struct {
	RequiredFeatures []string
	OptionalFeatures []string
	// OwnsSurface releases the rendering surface on session end.
	OwnsSurface bool
}

// Coordinator starts and ends sessions and emits the lifecycle notifications.
type Coordinator struct {
	platform xr.Platform
	reticle  *reticle.Controller
	sink     ui.Sink
	metrics  *metrics.Metrics
	frame    xr.FrameCallback
	opts     Options

	current *Context
	lastGen task.Generation
}

// NewCoordinator creates a coordinator. frame is registered as the animation
// loop for the duration of each session.
func NewCoordinator(p xr.Platform, r *reticle.Controller, sink ui.Sink, m *metrics.Metrics, frame xr.FrameCallback, opts Options) *Coordinator {
	return &Coordinator{
		platform: p,
		reticle:  r,
		sink:     sink,
		metrics:  m,
		frame:    frame,
		opts:     opts,
	}
}

// Current returns the running session, or nil.
func (c *Coordinator) Current() *Context {
	return c.current
}

// OnSessionStart begins a new session with fresh flags and hit-test state.
// A session that is still running is ended first, even when the new one
// turns out to be unsupported.
func (c *Coordinator) OnSessionStart() (*Context, error) {
	if c.current != nil {
		c.OnSessionEnd()
	}

	if !c.platform.SessionSupported(c.opts.RequiredFeatures) {
		logger.Warn("AR session not supported", zap.Strings("required", c.opts.RequiredFeatures))
		c.sink.LoadingVisible(false)
		c.sink.Failure(ErrUnsupported.Error())
		return nil, fmt.Errorf("%w: required features %v", ErrUnsupported, c.opts.RequiredFeatures)
	}

	c.lastGen++
	ctx := &Context{
		Gen:     c.lastGen,
		HitTest: hittest.NewSession(c.lastGen),
		Log:     logger.Session(uint64(c.lastGen)),
	}
	c.current = ctx

	c.reticle.Hide()
	c.sink.LoadingVisible(true)
	c.sink.InstructionsVisible(false)
	c.platform.SetAnimationLoop(c.frame)
	c.metrics.SessionStarted()

	ctx.Log.Info("AR session started",
		zap.Strings("required", c.opts.RequiredFeatures),
		zap.Strings("optional", c.opts.OptionalFeatures))
	return ctx, nil
}

// OnSessionEnd tears the running session down. Without a session it does nothing.
func (c *Coordinator) OnSessionEnd() {
	ctx := c.current
	if ctx == nil {
		return
	}
	c.current = nil

	c.sink.LoadingVisible(false)
	c.sink.InstructionsVisible(false)
	ctx.HitTest.End()
	c.platform.SetAnimationLoop(nil)
	if c.opts.OwnsSurface {
		c.platform.ReleaseSurface()
	}
	c.reticle.Hide()
	c.metrics.SessionEnded()

	ctx.Log.Info("AR session ended")
}

// NoteHit records a successful hit-test. The first one of a session swaps
// the loading indicator for the placement instructions.
func (c *Coordinator) NoteHit(ctx *Context) {
	if ctx.Flags.FirstHitDetected {
		return
	}
	ctx.Flags.FirstHitDetected = true
	c.sink.LoadingVisible(false)
	c.sink.InstructionsVisible(true)
	ctx.Log.Debug("first surface hit")
}

// NoteFailure surfaces a hit-test source failure to the user.
func (c *Coordinator) NoteFailure(ctx *Context, err error) {
	c.sink.LoadingVisible(false)
	c.sink.Failure(err.Error())
	c.metrics.SourceFailed()
	ctx.Log.Warn("placement unavailable for this session", zap.Error(err))
}
