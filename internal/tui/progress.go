package tui

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/vvka-141/zclload/internal/services"
)

var quitKeys = key.NewBinding(
	key.WithKeys("ctrl+c", "q"),
	key.WithHelp("q", "cancel"),
)

// doneMsg ends the progress display.
type doneMsg struct {
	result string
	err    error
}

// Progress is a bubbletea model that follows the events of one load.
type Progress struct {
	spinner  spinner.Model
	title    string
	phase    services.Phase
	path     string
	done     int
	total    int
	parsed   int
	finished bool
	result   string
	err      error
	cancel   context.CancelFunc
}

// NewProgress returns a progress model. cancel is called when the user
// quits before the load finishes; it may be nil.
func NewProgress(title string, cancel context.CancelFunc) Progress {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle
	return Progress{spinner: s, title: title, cancel: cancel}
}

// Init implements tea.Model.
func (p Progress) Init() tea.Cmd {
	return p.spinner.Tick
}

// Update implements tea.Model.
func (p Progress) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case services.Event:
		p.phase = msg.Phase
		if msg.Path != "" {
			p.path = msg.Path
		}
		p.done, p.total = msg.Done, msg.Total
		if msg.Phase == services.PhaseParse {
			p.parsed++
		}
		return p, nil
	case doneMsg:
		p.finished = true
		p.result, p.err = msg.result, msg.err
		return p, tea.Quit
	case tea.KeyMsg:
		if key.Matches(msg, quitKeys) {
			if p.cancel != nil {
				p.cancel()
			}
			return p, nil
		}
	case spinner.TickMsg:
		var cmd tea.Cmd
		p.spinner, cmd = p.spinner.Update(msg)
		return p, cmd
	}
	return p, nil
}

// View implements tea.Model.
func (p Progress) View() string {
	if p.finished {
		if p.err != nil {
			return ErrorStyle.Render(SymbolCross+" "+p.err.Error()) + "\n"
		}
		return SuccessStyle.Render(SymbolCheck+" "+p.result) + "\n"
	}

	var b strings.Builder
	b.WriteString(p.spinner.View())
	b.WriteString(" ")
	b.WriteString(MessageStyle.Render(p.title))
	if p.phase != "" {
		b.WriteString(MutedStyle.Render(fmt.Sprintf(" %s %s", SymbolArrow, p.phase)))
		if p.total > 0 {
			b.WriteString(MutedStyle.Render(fmt.Sprintf(" %d/%d", p.done, p.total)))
		}
		if p.path != "" {
			b.WriteString(MutedStyle.Render(" " + filepath.Base(p.path)))
		}
	}
	b.WriteString("\n")
	return b.String()
}

// Parsed counts the parse events seen so far.
func (p Progress) Parsed() int { return p.parsed }

// Runner drives a Progress program for one operation.
type Runner struct {
	program *tea.Program
	exited  chan struct{}
}

// StartProgress renders progress to out until Finish is called.
func StartProgress(out io.Writer, title string, cancel context.CancelFunc) *Runner {
	r := &Runner{
		program: tea.NewProgram(NewProgress(title, cancel), tea.WithOutput(out)),
		exited:  make(chan struct{}),
	}
	go func() {
		defer close(r.exited)
		_, _ = r.program.Run()
	}()
	return r
}

// Observer forwards load events to the program.
func (r *Runner) Observer() services.Observer {
	return services.ObserverFunc(func(e services.Event) { r.program.Send(e) })
}

// Finish shows the outcome and waits for the program to exit.
func (r *Runner) Finish(result string, err error) {
	r.program.Send(doneMsg{result: result, err: err})
	<-r.exited
}
