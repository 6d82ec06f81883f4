package selection

import (
	"testing"

	"github.com/Faultbox/midgard-ar/internal/ui"
)

func TestDefaultsToFirstEntry(t *testing.T) {
	s := New(6, nil)
	if s.Current() != 0 {
		t.Errorf("expected index 0, got %d", s.Current())
	}
	if s.Len() != 6 {
		t.Errorf("expected 6 entries, got %d", s.Len())
	}
}

func TestSelectNotifies(t *testing.T) {
	rec := &ui.Recorder{}
	s := New(3, rec)

	s.Select(2)
	s.Select(2)

	if s.Current() != 2 {
		t.Errorf("expected index 2, got %d", s.Current())
	}
	if rec.Selected != 2 {
		t.Errorf("ui highlighted %d, want 2", rec.Selected)
	}
	if got := rec.Count(ui.EventSelection, false); got != 2 {
		t.Errorf("expected 2 selection events, got %d", got)
	}
}

func TestSelectOutOfRangePanics(t *testing.T) {
	for _, idx := range []int{-1, 3} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("Select(%d) should panic", idx)
				}
			}()
			New(3, nil).Select(idx)
		}()
	}
}

func TestNewRejectsEmptyCatalog(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("New(0) should panic")
		}
	}()
	New(0, nil)
}
