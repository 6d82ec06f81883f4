package sim

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/midgard-ar/internal/xr"
	"github.com/Faultbox/midgard-ar/pkg/math"
)

// ErrScenario marks malformed scenario files.
var ErrScenario = errors.New("invalid scenario")

// Step actions.
const (
	ActionSessionStart    = "session_start"
	ActionSessionEnd      = "session_end"
	ActionFrame           = "frame"
	ActionNoFrame         = "no_frame"
	ActionSelect          = "select"
	ActionTrigger         = "trigger"
	ActionEstimationStart = "estimation_start"
	ActionEstimationEnd   = "estimation_end"
)

// Step is one scripted event.
type Step struct {
	Action string `yaml:"action"`

	// Hits are full column-major pose matrices, nearest first.
	Hits [][16]float32 `yaml:"hits,omitempty"`
	// At is shorthand for a single unrotated hit at a position.
	At []float32 `yaml:"at,omitempty"`
	// Look casts the viewer's gaze ray against the scenario surfaces to
	// produce the hits.
	Look *Look `yaml:"look,omitempty"`
	// Error fails the hit-test query for this frame.
	Error string `yaml:"error,omitempty"`

	// Index is the palette entry for select steps.
	Index int `yaml:"index,omitempty"`

	// Repeat runs the step this many times; 0 means once.
	Repeat int `yaml:"repeat,omitempty"`
}

// Scenario scripts a complete run against the placement core.
type Scenario struct {
	Unsupported   bool            `yaml:"unsupported"`
	HitTestSource Plan            `yaml:"hit_test_source"`
	Loads         map[string]Plan `yaml:"loads"`
	Surfaces      Surfaces        `yaml:"surfaces"`
	Steps         []Step          `yaml:"steps"`
}

// LoadScenario reads and parses a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario %s: %w", path, err)
	}
	return ParseScenario(data)
}

// ParseScenario parses a YAML scenario.
func ParseScenario(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScenario, err)
	}
	return &sc, nil
}

// Validate checks actions and select indices against a catalog of n entries.
func (sc *Scenario) Validate(n int) error {
	for i, st := range sc.Steps {
		switch st.Action {
		case ActionSessionStart, ActionSessionEnd, ActionNoFrame, ActionTrigger,
			ActionEstimationStart, ActionEstimationEnd:
		case ActionFrame:
			if len(st.At) != 0 && len(st.At) != 3 {
				return fmt.Errorf("%w: step %d: at needs 3 components, got %d", ErrScenario, i, len(st.At))
			}
			sources := 0
			for _, set := range []bool{len(st.At) == 3, len(st.Hits) > 0, st.Look != nil} {
				if set {
					sources++
				}
			}
			if sources > 1 {
				return fmt.Errorf("%w: step %d: use only one of at, hits or look", ErrScenario, i)
			}
			if st.Look != nil && len(st.Look.From) != 0 && len(st.Look.From) != 3 {
				return fmt.Errorf("%w: step %d: look.from needs 3 components, got %d", ErrScenario, i, len(st.Look.From))
			}
		case ActionSelect:
			if st.Index < 0 || st.Index >= n {
				return fmt.Errorf("%w: step %d: select index %d not in [0, %d)", ErrScenario, i, st.Index, n)
			}
		default:
			return fmt.Errorf("%w: step %d: unknown action %q", ErrScenario, i, st.Action)
		}
		if st.Repeat < 0 {
			return fmt.Errorf("%w: step %d: negative repeat", ErrScenario, i)
		}
	}
	return nil
}

// Apply installs the scenario's plans on the runtime.
func (sc *Scenario) Apply(rt *Runtime) {
	rt.SetSupported(!sc.Unsupported)
	rt.PlanSource(sc.HitTestSource)
	for source, p := range sc.Loads {
		rt.PlanLoad(source, p)
	}
}

func (st Step) frame(s Surfaces) *Frame {
	f := &Frame{}
	if st.Error != "" {
		f.Err = errors.New(st.Error)
	}
	if len(st.At) == 3 {
		f.Hits = []math.Mat4{math.Translate(st.At[0], st.At[1], st.At[2])}
	}
	for _, h := range st.Hits {
		f.Hits = append(f.Hits, math.Mat4(h))
	}
	if st.Look != nil {
		f.Hits = s.Cast(st.Look.Ray())
	}
	return f
}

// Driver receives the scripted host events.
type Driver interface {
	OnSessionStart()
	OnSessionEnd()
	OnSelectionClick(index int)
	OnTriggerSelect()
	OnEstimationStart(light xr.SceneObject, env xr.Environment)
	OnEstimationEnd()
	// Pump delivers completed asynchronous work on refreshes that run no
	// frame callback.
	Pump()
}

// EstimatedEnvironment is the environment map handed over on estimation start.
const EstimatedEnvironment = "estimated-environment"

// Run validates the scenario against a catalog of n entries and plays its
// steps through d and rt. Plans must already be applied, before any model
// loads start.
func Run(d Driver, rt *Runtime, sc *Scenario, n int) error {
	if err := sc.Validate(n); err != nil {
		return err
	}

	for _, st := range sc.Steps {
		times := st.Repeat
		if times == 0 {
			times = 1
		}
		for i := 0; i < times; i++ {
			switch st.Action {
			case ActionSessionStart:
				d.OnSessionStart()
			case ActionSessionEnd:
				d.OnSessionEnd()
			case ActionFrame:
				rt.Step(st.frame(sc.Surfaces))
			case ActionNoFrame:
				rt.Step(nil)
			case ActionSelect:
				d.OnSelectionClick(st.Index)
			case ActionTrigger:
				d.OnTriggerSelect()
			case ActionEstimationStart:
				d.OnEstimationStart(rt.NewEstimatedLight(), EstimatedEnvironment)
			case ActionEstimationEnd:
				d.OnEstimationEnd()
			}
			if (st.Action == ActionFrame || st.Action == ActionNoFrame) && !rt.Looping() {
				d.Pump()
			}
		}
	}
	return nil
}
