package widget

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Adithya411/sac-databricks-widget/internal/adapter"
	"github.com/Adithya411/sac-databricks-widget/internal/gateway"
)

const DefaultTimeout = 60 * time.Second

// Caller performs the outbound insight call.
type Caller interface {
	Call(ctx context.Context, req adapter.Request) (gateway.Response, error)
}

type Listener func(Result)

type Options struct {
	Name          string
	Adapter       adapter.Adapter
	Caller        Caller
	EndpointURL   string
	PendingStatus string
	Timeout       time.Duration
	Logger        *slog.Logger
}

// Widget sequences one insight call at a time. A submission while a call is
// pending is ignored.
type Widget struct {
	name          string
	adapter       adapter.Adapter
	caller        Caller
	pendingStatus string
	timeout       time.Duration
	logger        *slog.Logger

	ctx  context.Context
	stop context.CancelFunc

	// notifyMu orders deliveries: a transition and its notification happen
	// under it, so listeners never see a completion before its Pending.
	notifyMu sync.Mutex

	mu          sync.Mutex
	state       Result
	endpointURL string
	disposed    bool
	listeners   []subscription
	nextSubID   int
}

type subscription struct {
	id int
	fn Listener
}

func New(opts Options) (*Widget, error) {
	if opts.Adapter == nil {
		return nil, fmt.Errorf("widget %q: adapter is required", opts.Name)
	}
	if opts.Caller == nil {
		return nil, fmt.Errorf("widget %q: caller is required", opts.Name)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	ctx, stop := context.WithCancel(context.Background())
	return &Widget{
		name:          opts.Name,
		adapter:       opts.Adapter,
		caller:        opts.Caller,
		pendingStatus: opts.PendingStatus,
		timeout:       opts.Timeout,
		logger:        opts.Logger.With("widget", opts.Name),
		ctx:           ctx,
		stop:          stop,
		state:         Result{Phase: Idle, At: time.Now().UTC()},
		endpointURL:   opts.EndpointURL,
	}, nil
}

func (w *Widget) Name() string {
	return w.name
}

func (w *Widget) Dialect() adapter.Dialect {
	return w.adapter.Dialect()
}

func (w *Widget) State() Result {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// View describes the current state for a presentation layer.
func (w *Widget) View() View {
	return w.Describe(w.State())
}

func (w *Widget) Describe(r Result) View {
	return Describe(r, w.pendingStatus)
}

// EndpointURL is the URL the next submission will target.
func (w *Widget) EndpointURL() string {
	w.mu.Lock()
	override := w.endpointURL
	w.mu.Unlock()
	return adapter.EndpointConfig{URL: override, Dialect: w.adapter.Dialect()}.ResolveURL()
}

// SetEndpointURL replaces the override. It applies from the next submission.
func (w *Widget) SetEndpointURL(url string) {
	w.mu.Lock()
	w.endpointURL = url
	w.mu.Unlock()
}

// OnStateChange registers l for every later transition. Listeners run on the
// goroutine performing the transition and must not call Submit.
func (w *Widget) OnStateChange(l Listener) (unsubscribe func()) {
	w.mu.Lock()
	w.nextSubID++
	id := w.nextSubID
	w.listeners = append(w.listeners, subscription{id: id, fn: l})
	w.mu.Unlock()

	return func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		for i, s := range w.listeners {
			if s.id == id {
				w.listeners = append(w.listeners[:i:i], w.listeners[i+1:]...)
				return
			}
		}
	}
}

// Submit starts an interaction for text and returns without waiting for it.
// It reports whether an outbound call was started.
func (w *Widget) Submit(text string) bool {
	w.notifyMu.Lock()
	defer w.notifyMu.Unlock()

	w.mu.Lock()
	if w.disposed || w.state.Phase == Pending {
		phase := w.state.Phase
		w.mu.Unlock()
		w.logger.Debug("submission ignored", "phase", phase)
		return false
	}

	question := strings.TrimSpace(text)
	if question == "" {
		next := Result{Phase: Failed, Failure: adapter.NewEmptyInput(), At: time.Now().UTC()}
		w.state = next
		w.mu.Unlock()
		w.notify(next)
		return false
	}

	pending := Result{
		Phase:    Pending,
		ID:       uuid.NewString(),
		Question: question,
		At:       time.Now().UTC(),
	}
	req, err := w.adapter.BuildRequest(question, w.endpointURL)
	if err != nil {
		next := pending.fail(adapter.AsFailure(err))
		w.state = next
		w.mu.Unlock()
		w.logger.Error("failed to shape insight request", "interaction_id", pending.ID, "error", err)
		w.notify(next)
		return false
	}

	ctx, cancel := context.WithTimeout(w.ctx, w.timeout)
	w.state = pending
	w.mu.Unlock()

	w.logger.Info("insight submission", "interaction_id", pending.ID, "url", req.URL, "dialect", w.adapter.Dialect().String())
	w.notify(pending)
	go w.run(ctx, cancel, pending, req)
	return true
}

// Dispose cancels any in-flight call and stops all notifications.
func (w *Widget) Dispose() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.disposed {
		return
	}
	w.disposed = true
	w.listeners = nil
	w.stop()
}

func (w *Widget) run(ctx context.Context, cancel context.CancelFunc, pending Result, req adapter.Request) {
	defer cancel()

	next := pending.fail(adapter.NewNetworkError(fmt.Errorf("insight call aborted")))
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("insight call panicked", "interaction_id", pending.ID, "panic", r)
			next = pending.fail(adapter.NewNetworkError(fmt.Errorf("insight call panicked: %v", r)))
		}
		w.complete(next)
	}()

	resp, err := w.caller.Call(ctx, req)
	if err != nil {
		if gateway.Timeout(err) {
			w.logger.Warn("insight call timed out", "interaction_id", pending.ID, "error", err)
			err = fmt.Errorf("request timed out after %s", w.timeout)
		}
		next = pending.fail(adapter.NewNetworkError(err))
		return
	}

	answer, err := w.adapter.NormalizeReply(resp.Status, resp.Body)
	if err != nil {
		next = pending.fail(adapter.AsFailure(err))
		return
	}
	next = pending.succeed(answer)
}

func (w *Widget) complete(next Result) {
	w.notifyMu.Lock()
	defer w.notifyMu.Unlock()

	w.mu.Lock()
	if w.state.Phase != Pending || w.state.ID != next.ID {
		w.mu.Unlock()
		return
	}
	w.state = next
	disposed := w.disposed
	w.mu.Unlock()

	if next.Phase == Failed {
		w.logger.Warn("insight interaction failed", "interaction_id", next.ID, "kind", next.Failure.Kind, "error", next.Failure)
	} else {
		w.logger.Info("insight interaction succeeded", "interaction_id", next.ID, "source_rule", next.Answer.SourceRule)
	}
	if disposed {
		return
	}
	w.notify(next)
}

func (w *Widget) notify(r Result) {
	w.mu.Lock()
	subs := make([]subscription, len(w.listeners))
	copy(subs, w.listeners)
	w.mu.Unlock()

	for _, s := range subs {
		s.fn(r)
	}
}
