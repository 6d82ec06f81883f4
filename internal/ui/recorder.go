package ui

// EventKind identifies a recorded notification.
type EventKind int

const (
	EventSelection EventKind = iota
	EventInstructions
	EventLoading
	EventFailure
)

func (k EventKind) String() string {
	switch k {
	case EventSelection:
		return "selection"
	case EventInstructions:
		return "instructions"
	case EventLoading:
		return "loading"
	case EventFailure:
		return "failure"
	}
	return "unknown"
}

// Event is one recorded notification.
type Event struct {
	Kind    EventKind
	Index   int
	Visible bool
	Reason  string
}

// Recorder is a Sink that keeps every notification, and the resulting
// overlay state, for inspection.
type Recorder struct {
	Events []Event

	Selected          int
	InstructionsShown bool
	LoadingShown      bool
	FailureReason     string
}

func (r *Recorder) SelectionChanged(index int) {
	r.Selected = index
	r.Events = append(r.Events, Event{Kind: EventSelection, Index: index})
}

func (r *Recorder) InstructionsVisible(visible bool) {
	r.InstructionsShown = visible
	r.Events = append(r.Events, Event{Kind: EventInstructions, Visible: visible})
}

func (r *Recorder) LoadingVisible(visible bool) {
	r.LoadingShown = visible
	r.Events = append(r.Events, Event{Kind: EventLoading, Visible: visible})
}

func (r *Recorder) Failure(reason string) {
	r.FailureReason = reason
	r.Events = append(r.Events, Event{Kind: EventFailure, Reason: reason})
}

// Count returns how many events of kind k carried the given visibility.
// For selection and failure events visible is ignored.
func (r *Recorder) Count(k EventKind, visible bool) int {
	n := 0
	for _, e := range r.Events {
		if e.Kind != k {
			continue
		}
		if (k == EventInstructions || k == EventLoading) && e.Visible != visible {
			continue
		}
		n++
	}
	return n
}

// Reset clears recorded events but keeps overlay state.
func (r *Recorder) Reset() {
	r.Events = nil
}
