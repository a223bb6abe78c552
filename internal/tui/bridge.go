package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Adithya411/sac-databricks-widget/internal/widget"
)

// StateMsg carries one widget transition into the program loop.
type StateMsg struct {
	Result widget.Result
	View   widget.View
}

// Bridge queues widget transitions for the program loop in the order the
// widget delivered them. Its Render method is a host.Renderer.
type Bridge struct {
	states chan StateMsg
	done   chan struct{}
	once   sync.Once
}

func NewBridge() *Bridge {
	return &Bridge{
		states: make(chan StateMsg, 16),
		done:   make(chan struct{}),
	}
}

func (b *Bridge) Render(r widget.Result, v widget.View) {
	select {
	case b.states <- StateMsg{Result: r, View: v}:
	case <-b.done:
	}
}

// Close releases any Render blocked on a program that has exited.
func (b *Bridge) Close() {
	b.once.Do(func() { close(b.done) })
}

func (b *Bridge) wait() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-b.states:
			return msg
		case <-b.done:
			return nil
		}
	}
}
