package tui

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya411/sac-databricks-widget/internal/adapter"
	"github.com/Adithya411/sac-databricks-widget/internal/config"
	"github.com/Adithya411/sac-databricks-widget/internal/gateway"
	"github.com/Adithya411/sac-databricks-widget/internal/host"
	"github.com/Adithya411/sac-databricks-widget/internal/widget"
)

type stubCaller struct {
	calls atomic.Int32
	body  string
}

func (s *stubCaller) Call(_ context.Context, _ adapter.Request) (gateway.Response, error) {
	s.calls.Add(1)
	return gateway.Response{Status: http.StatusOK, Body: []byte(s.body)}, nil
}

func TestNewPrefillsDefaultQuestion(t *testing.T) {
	m, _, _ := newTestModel(t, &stubCaller{body: `"ok"`})

	assert.Equal(t, "Top risks this quarter?", m.input.Value())
	assert.Equal(t, widget.StatusReady, m.view.Status)
	assert.Contains(t, m.View(), "ISU Insight")
	assert.Contains(t, m.View(), adapter.DefaultQuestionURL)
}

func TestEnterSubmitsAndStatesFlowThroughBridge(t *testing.T) {
	caller := &stubCaller{body: `{"insights":"**Revenue** is up"}`}
	m, session, bridge := newTestModel(t, caller)
	m = resize(t, m, 100, 30)

	// Init drew the idle state into the bridge.
	idle := drain(t, bridge)
	assert.Equal(t, widget.Idle, idle.Result.Phase)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	require.NotNil(t, cmd)
	cmd()

	pending := drain(t, bridge)
	assert.Equal(t, widget.Pending, pending.Result.Phase)
	m = apply(t, m, pending)
	assert.True(t, m.view.Busy)
	assert.Contains(t, m.View(), widget.StatusPending)

	next, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	assert.Nil(t, cmd, "enter is ignored while pending")

	done := drain(t, bridge)
	require.Equal(t, widget.Succeeded, done.Result.Phase)
	m = apply(t, m, done)
	assert.Contains(t, m.View(), widget.StatusSuccess)
	assert.Contains(t, m.View(), "Revenue")
	assert.EqualValues(t, 1, caller.calls.Load())
	assert.Equal(t, widget.Succeeded, session.Widget().State().Phase)
}

func TestFailureBodyShownVerbatim(t *testing.T) {
	m, _, _ := newTestModel(t, &stubCaller{})
	m = resize(t, m, 80, 24)

	r := widget.Result{Phase: widget.Failed, Failure: adapter.NewUnrecognized(`{"x": 1}`)}
	m = apply(t, m, StateMsg{Result: r, View: widget.Describe(r, "")})

	assert.True(t, m.view.Error)
	assert.Contains(t, m.View(), widget.StatusNoAnswer)
	assert.Contains(t, m.View(), "Raw response:")
}

func TestResizeReachesSession(t *testing.T) {
	m, session, _ := newTestModel(t, &stubCaller{})

	next, cmd := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = next.(Model)
	require.NotNil(t, cmd)
	cmd()

	assert.Equal(t, host.Size{Width: 120, Height: 40}, session.Size())
	assert.Equal(t, 40-chromeHeight, m.output.Height)
	assert.NotNil(t, m.renderer)
}

func TestQuitKeys(t *testing.T) {
	m, _, _ := newTestModel(t, &stubCaller{})

	for _, key := range []tea.KeyMsg{{Type: tea.KeyCtrlC}, {Type: tea.KeyEsc}} {
		_, cmd := m.Update(key)
		require.NotNil(t, cmd)
		assert.IsType(t, tea.QuitMsg{}, cmd())
	}
}

func TestBridgeCloseReleasesRender(t *testing.T) {
	b := NewBridge()
	for i := 0; i < cap(b.states); i++ {
		b.Render(widget.Result{}, widget.View{})
	}

	released := make(chan struct{})
	go func() {
		b.Render(widget.Result{}, widget.View{})
		close(released)
	}()
	b.Close()

	select {
	case <-released:
	case <-time.After(time.Second):
		t.Fatal("render still blocked after close")
	}
}

func newTestModel(t *testing.T, caller widget.Caller) (Model, *host.Session, *Bridge) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	w, err := host.NewWidget(config.WidgetConfig{Name: "isu", Dialect: adapter.RawQuestion}, caller, logger)
	require.NoError(t, err)

	bridge := NewBridge()
	session := host.NewSession(w, bridge.Render)
	require.NoError(t, session.Init(host.Props{DefaultQuestion: "Top risks this quarter?"}))
	t.Cleanup(func() {
		bridge.Close()
		session.Dispose()
	})

	return New(session, bridge, Options{Title: "ISU Insight", GlamourStyle: "notty"}), session, bridge
}

func resize(t *testing.T, m Model, width, height int) Model {
	t.Helper()
	next, _ := m.Update(tea.WindowSizeMsg{Width: width, Height: height})
	return next.(Model)
}

func apply(t *testing.T, m Model, msg StateMsg) Model {
	t.Helper()
	next, cmd := m.Update(msg)
	assert.NotNil(t, cmd, "state handling re-arms the bridge")
	return next.(Model)
}

func drain(t *testing.T, b *Bridge) StateMsg {
	t.Helper()
	select {
	case msg := <-b.states:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("no state delivered")
		return StateMsg{}
	}
}
