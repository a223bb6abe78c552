// Package host adapts embedding runtimes (browser widget host, terminal UI) to
// the widget state machine through a fixed lifecycle.
package host

import (
	"fmt"
	"strings"
	"sync"

	"github.com/Adithya411/sac-databricks-widget/internal/widget"
)

// Lifecycle is the capability set a host runtime drives.
type Lifecycle interface {
	Init(props Props) error
	OnPropsChanged(props Props)
	OnResize(width, height int)
	Dispose()
}

// Props are the externally supplied widget properties.
type Props struct {
	EndpointURL     string `json:"endpoint_url"`
	DefaultQuestion string `json:"default_question"`
}

type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Renderer receives every state the presentation layer should draw.
type Renderer func(widget.Result, widget.View)

// Session wires one widget to one host.
type Session struct {
	widget *widget.Widget
	render Renderer

	mu          sync.Mutex
	props       Props
	size        Size
	initialized bool
	unsubscribe func()
}

var _ Lifecycle = (*Session)(nil)

func NewSession(w *widget.Widget, render Renderer) *Session {
	return &Session{widget: w, render: render}
}

func (s *Session) Widget() *widget.Widget {
	return s.widget
}

func (s *Session) Init(props Props) error {
	s.mu.Lock()
	if s.initialized {
		s.mu.Unlock()
		return fmt.Errorf("widget %q already initialized", s.widget.Name())
	}
	s.initialized = true
	s.mu.Unlock()

	s.OnPropsChanged(props)
	if s.render != nil {
		unsubscribe := s.widget.OnStateChange(func(r widget.Result) {
			s.render(r, s.widget.Describe(r))
		})
		s.mu.Lock()
		s.unsubscribe = unsubscribe
		s.mu.Unlock()
		s.draw()
	}
	return nil
}

// OnPropsChanged applies new properties. A blank endpoint falls back to the
// dialect default on the next submission.
func (s *Session) OnPropsChanged(props Props) {
	props.EndpointURL = strings.TrimSpace(props.EndpointURL)
	s.mu.Lock()
	s.props = props
	s.mu.Unlock()
	s.widget.SetEndpointURL(props.EndpointURL)
}

func (s *Session) OnResize(width, height int) {
	s.mu.Lock()
	s.size = Size{Width: width, Height: height}
	s.mu.Unlock()
	s.draw()
}

func (s *Session) Dispose() {
	s.mu.Lock()
	unsubscribe := s.unsubscribe
	s.unsubscribe = nil
	s.mu.Unlock()
	if unsubscribe != nil {
		unsubscribe()
	}
	s.widget.Dispose()
}

func (s *Session) Submit(text string) bool {
	return s.widget.Submit(text)
}

func (s *Session) Props() Props {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.props
}

func (s *Session) Size() Size {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.size
}

func (s *Session) draw() {
	if s.render == nil {
		return
	}
	s.render(s.widget.State(), s.widget.View())
}
