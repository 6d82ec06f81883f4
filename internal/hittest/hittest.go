// Package hittest manages the per-session hit-test source and turns each
// frame's raw hit results into a placement pose.
//
// Source acquisition is a one-shot asynchronous request per session. The
// Session entity records the request and the resulting handle; the Pipeline
// runs the per-frame query against it. A Session that has ended ignores (and
// releases) any source that resolves afterwards.
package hittest

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-ar/internal/logger"
	"github.com/Faultbox/midgard-ar/internal/task"
	"github.com/Faultbox/midgard-ar/internal/xr"
	"github.com/Faultbox/midgard-ar/pkg/math"
)

// ErrSourceUnavailable wraps platform rejections of source acquisition.
var ErrSourceUnavailable = errors.New("hit-test source unavailable")

// State is the source lifecycle of a Session.
type State int

const (
	// StateIdle: no request issued yet, or the session has ended.
	StateIdle State = iota
	// StateAwaitingSource: request in flight.
	StateAwaitingSource
	// StateActive: source available, queried every frame.
	StateActive
	// StateFailed: the platform rejected the request. No retry this session.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingSource:
		return "awaiting-source"
	case StateActive:
		return "active"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Session is the hit-test state of one AR session.
type Session struct {
	Source    xr.HitTestSource
	Requested bool

	gen      task.Generation
	state    State
	ended    bool
	err      error
	reported bool
	log      *zap.Logger
}

// NewSession creates the hit-test state for the session with generation gen.
func NewSession(gen task.Generation) *Session {
	return &Session{
		gen: gen,
		log: logger.Session(uint64(gen)),
	}
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	return s.state
}

// Generation returns the session generation this state belongs to.
func (s *Session) Generation() task.Generation {
	return s.gen
}

// Err returns the acquisition failure, if any.
func (s *Session) Err() error {
	return s.err
}

// End releases the source and clears the request flag. Safe to call twice.
func (s *Session) End() {
	if s.Source != nil {
		s.Source.Cancel()
		s.log.Debug("hit-test source released")
	}
	s.Source = nil
	s.Requested = false
	s.ended = true
	s.state = StateIdle
}

// resolveSource is the delivery target for the acquisition future.
func (s *Session) resolveSource(res task.Result[xr.HitTestSource]) {
	if s.ended || res.Gen != s.gen {
		if res.Err == nil && res.Value != nil {
			res.Value.Cancel()
		}
		s.log.Debug("discarding hit-test source from ended session",
			zap.Uint64("result_session", uint64(res.Gen)))
		return
	}
	if res.Err != nil || res.Value == nil {
		err := res.Err
		if err == nil {
			err = errors.New("platform returned no source")
		}
		s.err = fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
		s.state = StateFailed
		s.log.Warn("hit-test source acquisition failed", zap.Error(err))
		return
	}
	s.Source = res.Value
	s.state = StateActive
	s.log.Info("hit-test source ready")
}

// Outcome classifies one frame's hit-test step.
type Outcome int

const (
	// Skip: no frame, or no source yet. Reticle state is left as is.
	Skip Outcome = iota
	// Hit: at least one result; Pose is the nearest.
	Hit
	// Miss: source queried, nothing found (or the query failed).
	Miss
	// Failed: source acquisition was rejected; reported once per session.
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Skip:
		return "skip"
	case Hit:
		return "hit"
	case Miss:
		return "miss"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// Result is the pipeline output for one frame.
type Result struct {
	Outcome Outcome
	Pose    math.Mat4
	// NoFrame is set when Skip was caused by a missing tracking frame.
	NoFrame bool
	Err     error
}

// Pipeline runs hit-testing against a Session each frame.
type Pipeline struct {
	platform xr.Platform
	space    xr.ReferenceSpace
}

// NewPipeline creates a pipeline that acquires sources in space.
func NewPipeline(p xr.Platform, space xr.ReferenceSpace) *Pipeline {
	return &Pipeline{platform: p, space: space}
}

// Update advances s by one frame. frame is nil when tracking has no pose this
// tick; hit-testing is then skipped entirely. The first available frame of a
// session issues the one-shot source request.
func (p *Pipeline) Update(s *Session, frame xr.Frame) Result {
	if s == nil || s.ended {
		return Result{Outcome: Skip}
	}
	if frame == nil {
		return Result{Outcome: Skip, NoFrame: true}
	}

	if !s.Requested {
		s.Requested = true
		s.state = StateAwaitingSource
		s.log.Debug("requesting hit-test source", zap.String("space", string(p.space)))
		p.platform.RequestHitTestSource(p.space).Await(s.gen, s.resolveSource)
	}

	switch s.state {
	case StateFailed:
		if s.reported {
			return Result{Outcome: Skip}
		}
		s.reported = true
		return Result{Outcome: Failed, Err: s.err}
	case StateActive:
	default:
		return Result{Outcome: Skip}
	}

	results, err := frame.HitTestResults(s.Source)
	if err != nil {
		s.log.Warn("hit-test query failed", zap.Error(err))
		return Result{Outcome: Miss, Err: err}
	}
	if len(results) == 0 {
		return Result{Outcome: Miss}
	}
	return Result{Outcome: Hit, Pose: results[0].Transform}
}
