// Package catalog holds the placeable model templates and their scale factors.
//
// Templates are declared synchronously and loaded asynchronously. A template
// whose model has not finished loading stays registered but cannot be cloned;
// callers treat that as "not ready" rather than as an error.
package catalog

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-ar/internal/logger"
	"github.com/Faultbox/midgard-ar/internal/metrics"
	"github.com/Faultbox/midgard-ar/internal/task"
	"github.com/Faultbox/midgard-ar/internal/xr"
)

var (
	// ErrIndexOutOfRange is returned for catalog indices outside [0, N).
	ErrIndexOutOfRange = errors.New("catalog index out of range")
	// ErrInvalidTemplate is returned when a template declaration is rejected.
	ErrInvalidTemplate = errors.New("invalid template")
)

// ModelTemplate is one catalog slot.
type ModelTemplate struct {
	ID          int
	Source      string
	ScaleFactor float32

	// Loaded is nil until the asynchronous load completes.
	Loaded xr.SceneObject
	// LoadErr is set if the load failed; the slot then never becomes ready.
	LoadErr error

	metrics *metrics.Metrics
}

// Ready reports whether the template's model is available for cloning.
func (t *ModelTemplate) Ready() bool {
	return t.Loaded != nil
}

// completeLoad is the delivery target for the template's load future.
func (t *ModelTemplate) completeLoad(res task.Result[xr.SceneObject]) {
	if t.Loaded != nil || t.LoadErr != nil {
		return
	}
	if res.Err != nil {
		t.LoadErr = res.Err
		logger.Warn("model load failed",
			zap.Int("index", t.ID),
			zap.String("source", t.Source),
			zap.Error(res.Err))
		return
	}
	if res.Value == nil {
		t.LoadErr = fmt.Errorf("loading %s: renderer returned no object", t.Source)
		logger.Warn("model load returned nothing", zap.Int("index", t.ID), zap.String("source", t.Source))
		return
	}
	t.Loaded = res.Value
	t.metrics.ModelLoaded()
	logger.Info("model loaded", zap.Int("index", t.ID), zap.String("source", t.Source))
}

// Registry exclusively owns the template slots.
type Registry struct {
	renderer  xr.Renderer
	metrics   *metrics.Metrics
	templates []*ModelTemplate
}

// NewRegistry creates an empty registry that loads and clones through r.
func NewRegistry(r xr.Renderer, m *metrics.Metrics) *Registry {
	return &Registry{renderer: r, metrics: m}
}

// RegisterTemplate declares the next catalog slot. Slots are dense, so id must
// equal the current number of templates, and scale must be positive.
func (r *Registry) RegisterTemplate(id int, source string, scale float32) error {
	if id != len(r.templates) {
		return fmt.Errorf("%w: id %d, expected %d", ErrInvalidTemplate, id, len(r.templates))
	}
	if source == "" {
		return fmt.Errorf("%w: slot %d has no source", ErrInvalidTemplate, id)
	}
	if scale <= 0 {
		return fmt.Errorf("%w: slot %d scale %v must be positive", ErrInvalidTemplate, id, scale)
	}
	r.templates = append(r.templates, &ModelTemplate{
		ID:          id,
		Source:      source,
		ScaleFactor: scale,
		metrics:     r.metrics,
	})
	return nil
}

// LoadAll starts loading every template that is not loaded or loading yet.
// Completions arrive through the task queue the renderer's futures post to.
func (r *Registry) LoadAll() {
	for _, t := range r.templates {
		if t.Loaded != nil || t.LoadErr != nil {
			continue
		}
		logger.Debug("loading model", zap.Int("index", t.ID), zap.String("source", t.Source))
		r.renderer.LoadModel(t.Source).Await(task.NoGeneration, t.completeLoad)
	}
}

// Len returns the number of slots.
func (r *Registry) Len() int {
	return len(r.templates)
}

// Resolve returns the slot at index.
func (r *Registry) Resolve(index int) (*ModelTemplate, error) {
	if index < 0 || index >= len(r.templates) {
		return nil, fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, index, len(r.templates))
	}
	return r.templates[index], nil
}

// CloneFor returns a deep clone of the template's model, or false if the
// slot does not exist or its model is not loaded yet.
func (r *Registry) CloneFor(index int) (xr.SceneObject, bool) {
	t, err := r.Resolve(index)
	if err != nil || !t.Ready() {
		return nil, false
	}
	return r.renderer.Clone(t.Loaded), true
}

// LoadedCount returns how many slots are ready.
func (r *Registry) LoadedCount() int {
	n := 0
	for _, t := range r.templates {
		if t.Ready() {
			n++
		}
	}
	return n
}
