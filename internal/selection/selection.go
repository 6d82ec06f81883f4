// Package selection tracks which catalog entry the user has picked.
package selection

import (
	"fmt"

	"github.com/Faultbox/midgard-ar/internal/ui"
)

// State holds the active catalog index.
type State struct {
	active int
	n      int
	sink   ui.Sink
}

// New creates a selection over n catalog entries with index 0 active.
func New(n int, sink ui.Sink) *State {
	if n <= 0 {
		panic(fmt.Sprintf("selection: catalog size must be positive, got %d", n))
	}
	return &State{n: n, sink: sink}
}

// Select makes index the active entry. Indices come from a fixed-size palette,
// so an out-of-range index is a programming error and panics.
func (s *State) Select(index int) {
	if index < 0 || index >= s.n {
		panic(fmt.Sprintf("selection: index %d not in [0, %d)", index, s.n))
	}
	s.active = index
	if s.sink != nil {
		s.sink.SelectionChanged(index)
	}
}

// Current returns the active index.
func (s *State) Current() int {
	return s.active
}

// Len returns the palette size.
func (s *State) Len() int {
	return s.n
}
