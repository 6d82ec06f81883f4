package placement

import (
	gomath "math"
	"testing"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-ar/internal/catalog"
	"github.com/Faultbox/midgard-ar/internal/hittest"
	"github.com/Faultbox/midgard-ar/internal/reticle"
	"github.com/Faultbox/midgard-ar/internal/selection"
	"github.com/Faultbox/midgard-ar/internal/session"
	"github.com/Faultbox/midgard-ar/internal/sim"
	"github.com/Faultbox/midgard-ar/internal/task"
	"github.com/Faultbox/midgard-ar/internal/ui"
	"github.com/Faultbox/midgard-ar/pkg/math"
)

type fixture struct {
	q       *task.Queue
	rt      *sim.Runtime
	rec     *ui.Recorder
	reg     *catalog.Registry
	sel     *selection.State
	reticle *reticle.Controller
	engine  *Engine
	ctx     *session.Context
}

func newFixture(t *testing.T, plans map[string]sim.Plan, scales ...float32) *fixture {
	t.Helper()
	f := &fixture{q: task.NewQueue(), rec: &ui.Recorder{}}
	f.rt = sim.NewRuntime(f.q)
	for src, p := range plans {
		f.rt.PlanLoad(src, p)
	}
	f.reg = catalog.NewRegistry(f.rt, nil)
	sources := []string{"chair.glb", "sofa.glb", "lamp.glb"}
	for i, s := range scales {
		if err := f.reg.RegisterTemplate(i, sources[i], s); err != nil {
			t.Fatalf("RegisterTemplate: %v", err)
		}
	}
	f.reg.LoadAll()
	f.sel = selection.New(len(scales), f.rec)
	f.reticle = reticle.New(nil)
	f.engine = NewEngine(f.reg, f.sel, f.reticle, f.rt, f.rec, nil)
	f.ctx = &session.Context{Gen: 1, HitTest: hittest.NewSession(1), Log: zap.NewNop()}
	return f
}

func (f *fixture) pump(n int) {
	for i := 0; i < n; i++ {
		f.rt.Step(nil)
		f.q.Drain()
	}
}

func (f *fixture) hit(m math.Mat4) {
	f.reticle.Update(hittest.Result{Outcome: hittest.Hit, Pose: m})
}

func (f *fixture) miss() {
	f.reticle.Update(hittest.Result{Outcome: hittest.Miss})
}

func near(a, b float32) bool {
	return gomath.Abs(float64(a-b)) < 1e-4
}

func sameRotation(a, b math.Quat) bool {
	d := a.Dot(b)
	return near(d, 1) || near(d, -1)
}

func TestTwoTemplateScenario(t *testing.T) {
	f := newFixture(t, map[string]sim.Plan{"sofa.glb": {AfterFrames: 3}}, 0.01, 0.4)
	f.pump(1)

	tmpl0, _ := f.reg.Resolve(0)
	tmpl1, _ := f.reg.Resolve(1)
	if !tmpl0.Ready() || tmpl1.Ready() {
		t.Fatalf("expected only template 0 loaded, got %v/%v", tmpl0.Ready(), tmpl1.Ready())
	}

	pose := math.Translate(1, 0, -2).Mul(math.RotateY(gomath.Pi / 2))
	f.hit(pose)
	f.sel.Select(1)

	if _, ok := f.engine.OnTrigger(f.ctx); ok {
		t.Fatal("placed from a template that has not loaded")
	}
	if f.engine.Count() != 0 {
		t.Fatalf("expected no objects, got %d", f.engine.Count())
	}

	f.pump(3)
	if !tmpl1.Ready() {
		t.Fatal("template 1 should be loaded")
	}

	p, ok := f.engine.OnTrigger(f.ctx)
	if !ok {
		t.Fatal("expected placement once loaded")
	}
	if p.Index != 1 {
		t.Errorf("placed index %d, want 1", p.Index)
	}
	if p.Position != (math.Vec3{X: 1, Y: 0, Z: -2}) {
		t.Errorf("position %+v, want (1, 0, -2)", p.Position)
	}
	if !sameRotation(p.Orientation, math.QuatFromRotation(math.RotateY(gomath.Pi/2))) {
		t.Errorf("orientation %+v does not match the reticle", p.Orientation)
	}
	if p.Scale != math.Uniform(0.4) {
		t.Errorf("scale %+v, want uniform 0.4", p.Scale)
	}

	models := f.rt.SceneOf(sim.KindModel)
	if len(models) != 1 {
		t.Fatalf("expected 1 model in scene, got %d", len(models))
	}
	obj := models[0]
	if !obj.Visible() {
		t.Error("placed object must be visible")
	}
	if obj.Source != "sofa.glb" || obj.Scale != math.Uniform(0.4) {
		t.Errorf("unexpected scene object %+v", obj)
	}
}

func TestScaleOverridesReticleScale(t *testing.T) {
	f := newFixture(t, nil, 0.01)
	f.pump(1)

	f.hit(math.Translate(0, 0, -1).Mul(math.Scale(3, 3, 3)))
	p, ok := f.engine.OnTrigger(f.ctx)
	if !ok {
		t.Fatal("expected placement")
	}
	if p.Scale != math.Uniform(0.01) {
		t.Errorf("scale %+v, want uniform 0.01", p.Scale)
	}
}

func TestUsesPoseBeforeMiss(t *testing.T) {
	f := newFixture(t, nil, 0.01)
	f.pump(1)

	f.hit(math.Translate(0.5, 0, -1))
	p, ok := f.engine.OnTrigger(f.ctx)
	f.miss()

	if !ok {
		t.Fatal("trigger after a hit should place")
	}
	if p.Position != (math.Vec3{X: 0.5, Y: 0, Z: -1}) {
		t.Errorf("position %+v, want the hit pose", p.Position)
	}
	if _, ok := f.engine.OnTrigger(f.ctx); ok {
		t.Error("trigger after a miss must not place")
	}
}

func TestPlacementPredicate(t *testing.T) {
	tests := []struct {
		name    string
		loaded  bool
		visible bool
		want    bool
	}{
		{"loaded and visible", true, true, true},
		{"loaded, no reticle", true, false, false},
		{"not loaded, visible", false, true, false},
		{"nothing ready", false, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, map[string]sim.Plan{"chair.glb": {AfterFrames: 10}}, 0.01)
			if tt.loaded {
				f.pump(11)
			}
			if tt.visible {
				f.hit(math.Identity())
			}
			_, ok := f.engine.OnTrigger(f.ctx)
			if ok != tt.want {
				t.Errorf("placed = %v, want %v", ok, tt.want)
			}
			if f.engine.Count() != len(f.rt.SceneOf(sim.KindModel)) {
				t.Error("engine and scene disagree on object count")
			}
		})
	}
}

func TestNoLimitNoDedup(t *testing.T) {
	f := newFixture(t, nil, 0.01, 0.4)
	f.pump(1)
	f.hit(math.Translate(1, 0, -1))

	for i := 0; i < 5; i++ {
		f.sel.Select(i % 2)
		if _, ok := f.engine.OnTrigger(f.ctx); !ok {
			t.Fatalf("trigger %d: expected placement", i)
		}
	}
	placed := f.engine.Placed()
	if len(placed) != 5 {
		t.Fatalf("expected 5 placed objects, got %d", len(placed))
	}
	seen := map[interface{}]bool{}
	for _, p := range placed {
		if seen[p.Object] || seen[p.ID] {
			t.Error("placed objects must be independent instances")
		}
		seen[p.Object] = true
		seen[p.ID] = true
	}
}

func TestFirstTriggerHidesInstructionsOnce(t *testing.T) {
	f := newFixture(t, nil, 0.01)
	f.pump(1)

	// first trigger fails but still counts
	f.engine.OnTrigger(f.ctx)
	if !f.ctx.Flags.FirstObjectPlaced {
		t.Error("first trigger must set the flag")
	}
	f.hit(math.Identity())
	for i := 0; i < 3; i++ {
		f.engine.OnTrigger(f.ctx)
	}

	if got := f.rec.Count(ui.EventInstructions, false); got != 1 {
		t.Errorf("instructions hidden %d times, want 1", got)
	}
}

func TestTriggerWithoutSession(t *testing.T) {
	f := newFixture(t, nil, 0.01)
	f.pump(1)
	f.hit(math.Identity())

	if _, ok := f.engine.OnTrigger(nil); ok {
		t.Error("no placement outside a session")
	}
	if len(f.rec.Events) != 0 {
		t.Error("no notifications outside a session")
	}
}
