// Package tui hosts a single insight widget in the terminal.
package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/Adithya411/sac-databricks-widget/internal/host"
	"github.com/Adithya411/sac-databricks-widget/internal/widget"
)

const (
	// header, endpoint, bordered input, status, output rule, help
	chromeHeight  = 8
	minOutputRows = 3
)

type Options struct {
	Title string
	// GlamourStyle names a glamour standard style. Empty picks one from the
	// terminal background.
	GlamourStyle string
}

type Model struct {
	session *host.Session
	bridge  *Bridge
	opts    Options

	input    textinput.Model
	spinner  spinner.Model
	output   viewport.Model
	renderer *glamour.TermRenderer
	theme    theme

	result widget.Result
	view   widget.View
	width  int
	height int
}

// New builds a model for an initialized session whose renderer is
// bridge.Render.
func New(session *host.Session, bridge *Bridge, opts Options) Model {
	if strings.TrimSpace(opts.Title) == "" {
		opts.Title = session.Widget().Name()
	}

	input := textinput.New()
	input.Prompt = "> "
	input.Placeholder = "Ask a question about your data"
	input.CharLimit = 2000
	input.SetValue(session.Props().DefaultQuestion)
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	state := session.Widget().State()
	return Model{
		session: session,
		bridge:  bridge,
		opts:    opts,
		input:   input,
		spinner: sp,
		output:  viewport.New(0, 0),
		theme:   newTheme(),
		result:  state,
		view:    session.Widget().Describe(state),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, m.bridge.wait())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.input.Width = max(msg.Width-8, 10)
		m.output.Width = msg.Width
		m.output.Height = max(msg.Height-chromeHeight, minOutputRows)
		m.renderer = newRenderer(m.opts.GlamourStyle, msg.Width)
		m.refreshOutput()
		return m, resizeCmd(m.session, msg.Width, msg.Height)

	case StateMsg:
		m.result, m.view = msg.Result, msg.View
		m.refreshOutput()
		return m, m.bridge.wait()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "enter":
			if m.result.Phase == widget.Pending {
				return m, nil
			}
			return m, submitCmd(m.session, m.input.Value())
		case "pgup", "pgdown", "up", "down":
			var cmd tea.Cmd
			m.output, cmd = m.output.Update(msg)
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	status := m.theme.status.Render(m.view.Status)
	if m.view.Error {
		status = m.theme.errorStatus.Render(m.view.Status)
	}
	if m.view.Busy {
		status = m.spinner.View() + status
	}

	return strings.Join([]string{
		m.theme.header.Render(m.opts.Title),
		m.theme.endpoint.Render(m.session.Widget().EndpointURL()),
		m.theme.inputPanel.Render(m.input.View()),
		status,
		m.theme.output.Render(m.output.View()),
		m.theme.help.Render("enter: ask  pgup/pgdown: scroll  esc: quit"),
	}, "\n")
}

// refreshOutput renders answers as markdown. Failure bodies are shown as
// received.
func (m *Model) refreshOutput() {
	body := m.view.Body
	if m.result.Phase == widget.Succeeded && m.renderer != nil {
		if rendered, err := m.renderer.Render(body); err == nil {
			body = strings.TrimRight(rendered, "\n")
		}
	}
	m.output.SetContent(body)
	m.output.GotoTop()
}

func newRenderer(style string, width int) *glamour.TermRenderer {
	styleOpt := glamour.WithAutoStyle()
	if style != "" {
		styleOpt = glamour.WithStandardStyle(style)
	}
	r, err := glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(max(width-4, 20)))
	if err != nil {
		return nil
	}
	return r
}

// Submission and resize run off the program loop: both notify the bridge,
// which the loop itself drains.
func submitCmd(s *host.Session, question string) tea.Cmd {
	return func() tea.Msg {
		s.Submit(question)
		return nil
	}
}

func resizeCmd(s *host.Session, width, height int) tea.Cmd {
	return func() tea.Msg {
		s.OnResize(width, height)
		return nil
	}
}

// Run drives the program until the user quits, then disposes the session.
func Run(session *host.Session, bridge *Bridge, opts Options) error {
	defer session.Dispose()
	defer bridge.Close()

	p := tea.NewProgram(New(session, bridge, opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
