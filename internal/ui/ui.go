// Package ui defines the overlay notifications emitted by the placement core.
package ui

import (
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-ar/internal/logger"
)

// Sink receives presentation notifications. Implementations must not call
// back into the core.
type Sink interface {
	// SelectionChanged highlights the active palette entry.
	SelectionChanged(index int)
	InstructionsVisible(visible bool)
	LoadingVisible(visible bool)
	// Failure shows a user-visible failure state, distinct from loading.
	Failure(reason string)
}

// LogSink writes notifications to the structured log. Used when no overlay
// is attached (headless runs).
type LogSink struct{}

func (LogSink) SelectionChanged(index int) {
	logger.Info("ui: selection changed", zap.Int("index", index))
}

func (LogSink) InstructionsVisible(visible bool) {
	logger.Debug("ui: instructions", zap.Bool("visible", visible))
}

func (LogSink) LoadingVisible(visible bool) {
	logger.Debug("ui: loading", zap.Bool("visible", visible))
}

func (LogSink) Failure(reason string) {
	logger.Warn("ui: failure", zap.String("reason", reason))
}

// Multi fans notifications out to several sinks in order.
type Multi []Sink

func (m Multi) SelectionChanged(index int) {
	for _, s := range m {
		s.SelectionChanged(index)
	}
}

func (m Multi) InstructionsVisible(visible bool) {
	for _, s := range m {
		s.InstructionsVisible(visible)
	}
}

func (m Multi) LoadingVisible(visible bool) {
	for _, s := range m {
		s.LoadingVisible(visible)
	}
}

func (m Multi) Failure(reason string) {
	for _, s := range m {
		s.Failure(reason)
	}
}
