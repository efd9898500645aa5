package cli

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/granulab/spherepack/pkg/pipeline"
)

func TestWatchModelProgress(t *testing.T) {
	_, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := newWatchModel("glass.toml", cancel)

	next, _ := m.Update(passMsg{pass: 120, overlap: 0.25})
	wm := next.(watchModel)
	if wm.pass != 120 || wm.overlap != 0.25 {
		t.Errorf("passMsg not applied: pass=%d overlap=%g", wm.pass, wm.overlap)
	}

	view := wm.View()
	if !strings.Contains(view, "glass.toml") {
		t.Errorf("View() = %q, should name the source", view)
	}
	if !strings.Contains(view, "pass 120") {
		t.Errorf("View() = %q, should show the pass count", view)
	}
}

func TestWatchModelQuitOnResult(t *testing.T) {
	m := newWatchModel("glass.toml", func() {})

	res := &pipeline.Result{}
	next, cmd := m.Update(resultMsg{res: res})
	wm := next.(watchModel)

	if wm.res != res {
		t.Error("resultMsg should store the result")
	}
	if cmd == nil {
		t.Fatal("resultMsg should quit the program")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Errorf("resultMsg command returned %T, want tea.QuitMsg", cmd())
	}
	if wm.View() != "" {
		t.Errorf("View() after result = %q, want empty", wm.View())
	}
}

func TestWatchModelCancelKey(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	m := newWatchModel("glass.toml", cancel)

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	wm := next.(watchModel)

	if !wm.cancelling {
		t.Error("q should mark the model as cancelling")
	}
	if ctx.Err() == nil {
		t.Error("q should cancel the pack context")
	}
}

func TestWatchModelFrameAdvances(t *testing.T) {
	m := newWatchModel("glass.toml", func() {})

	next, cmd := m.Update(frameMsg{})
	wm := next.(watchModel)
	if wm.frame != 1 {
		t.Errorf("frame = %d, want 1", wm.frame)
	}
	if cmd == nil {
		t.Error("frameMsg should schedule the next tick")
	}
}
