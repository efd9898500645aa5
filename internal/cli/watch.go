package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/granulab/spherepack/pkg/pipeline"
)

// watchFrames is the spinner animation for the live view.
var watchFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// =============================================================================
// Messages
// =============================================================================

// frameMsg advances the spinner animation.
type frameMsg struct{}

// passMsg carries relaxation progress from the packing goroutine.
type passMsg struct {
	pass    int
	overlap float64
}

// resultMsg carries the finished pipeline result.
type resultMsg struct {
	res *pipeline.Result
	err error
}

// =============================================================================
// WatchModel - Live relaxation view
// =============================================================================

// watchModel is the bubbletea model for the live relaxation view.
type watchModel struct {
	source     string
	cancel     context.CancelFunc
	start      time.Time
	frame      int
	pass       int
	overlap    float64
	cancelling bool
	res        *pipeline.Result
	err        error
}

func newWatchModel(source string, cancel context.CancelFunc) watchModel {
	return watchModel{source: source, cancel: cancel, start: time.Now()}
}

func (m watchModel) Init() tea.Cmd {
	return watchTick()
}

func watchTick() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(time.Time) tea.Msg { return frameMsg{} })
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			// Stop the pack; the run finishes with its best-effort packing
			// and the program quits on the trailing resultMsg.
			m.cancelling = true
			m.cancel()
		}
	case frameMsg:
		m.frame++
		return m, watchTick()
	case passMsg:
		m.pass = msg.pass
		m.overlap = msg.overlap
	case resultMsg:
		m.res = msg.res
		m.err = msg.err
		return m, tea.Quit
	}
	return m, nil
}

func (m watchModel) View() string {
	if m.res != nil || m.err != nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(StyleTitle.Render("Packing " + m.source))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("q: stop and keep the best-effort packing"))
	b.WriteString("\n\n")

	frame := watchFrames[m.frame%len(watchFrames)]
	status := fmt.Sprintf("%s pass %d", frame, m.pass)
	if m.overlap > 0 {
		status += fmt.Sprintf("  max overlap %.3g", m.overlap)
	}
	status += fmt.Sprintf("  elapsed %s", time.Since(m.start).Round(time.Second))
	if m.cancelling {
		status += "  (stopping)"
	}
	b.WriteString(status)
	b.WriteString("\n")
	return b.String()
}

// =============================================================================
// Program
// =============================================================================

// runWatch executes the pipeline under a bubbletea program that shows
// relaxation progress live. The view renders on stderr so stdout stays
// free for the report.
func runWatch(ctx context.Context, runner *pipeline.Runner, opts pipeline.Options) (*pipeline.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newWatchModel(opts.MixturePath, cancel), tea.WithOutput(os.Stderr))

	opts.Progress = func(pass int, maxOverlap float64) {
		p.Send(passMsg{pass: pass, overlap: maxOverlap})
	}

	go func() {
		res, err := runner.Execute(ctx, opts)
		p.Send(resultMsg{res: res, err: err})
	}()

	finalModel, err := p.Run()
	if err != nil {
		return nil, err
	}

	m, ok := finalModel.(watchModel)
	if !ok {
		return nil, fmt.Errorf("unexpected model type %T", finalModel)
	}
	return m.res, m.err
}
