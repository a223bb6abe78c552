package host

import (
	"fmt"
	"log/slog"

	"github.com/Adithya411/sac-databricks-widget/internal/adapter"
	"github.com/Adithya411/sac-databricks-widget/internal/config"
	"github.com/Adithya411/sac-databricks-widget/internal/widget"
)

// Registry owns one isolated session per configured widget.
type Registry struct {
	cfg      *config.Config
	sessions map[string]*Session
}

// NewWidget builds the state machine for one configured widget.
func NewWidget(wc config.WidgetConfig, caller widget.Caller, logger *slog.Logger) (*widget.Widget, error) {
	return widget.New(widget.Options{
		Name:          wc.Name,
		Adapter:       adapter.NewInsightAdapter(wc.Dialect),
		Caller:        caller,
		EndpointURL:   wc.EndpointURL,
		PendingStatus: wc.PendingStatus,
		Timeout:       wc.Timeout,
		Logger:        logger,
	})
}

func NewRegistry(cfg *config.Config, caller widget.Caller, logger *slog.Logger) (*Registry, error) {
	r := &Registry{cfg: cfg, sessions: make(map[string]*Session, len(cfg.Widgets))}
	for _, wc := range cfg.Widgets {
		w, err := NewWidget(wc, caller, logger)
		if err != nil {
			r.Close()
			return nil, err
		}
		s := NewSession(w, nil)
		if err := s.Init(Props{EndpointURL: wc.EndpointURL, DefaultQuestion: wc.DefaultQuestion}); err != nil {
			r.Close()
			return nil, fmt.Errorf("init widget %q: %w", wc.Name, err)
		}
		r.sessions[wc.Name] = s
	}
	return r, nil
}

func (r *Registry) Get(name string) (*Session, config.WidgetConfig, bool) {
	wc, ok := r.cfg.WidgetByName(name)
	if !ok {
		return nil, config.WidgetConfig{}, false
	}
	s, ok := r.sessions[wc.Name]
	return s, wc, ok
}

func (r *Registry) Names() []string {
	return r.cfg.WidgetNames()
}

// Close disposes every session.
func (r *Registry) Close() {
	for _, s := range r.sessions {
		s.Dispose()
	}
}
