package adapter

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// EndpointConfig binds a widget to its backend. URL is an optional override;
// when blank the dialect's default endpoint is used.
type EndpointConfig struct {
	URL     string
	Dialect Dialect
}

// Request is one shaped outbound call.
type Request struct {
	URL    string
	Body   []byte
	Header http.Header
}

func (c EndpointConfig) ResolveURL() string {
	if u := strings.TrimSpace(c.URL); u != "" {
		return u
	}
	return c.Dialect.DefaultURL()
}

// Shape builds the target URL and JSON body for question.
func Shape(question string, cfg EndpointConfig) (Request, error) {
	if strings.TrimSpace(question) == "" {
		return Request{}, NewEmptyInput()
	}

	payload, err := cfg.Dialect.body(question)
	if err != nil {
		return Request{}, err
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return Request{}, fmt.Errorf("marshal %s body: %w", cfg.Dialect, err)
	}

	header := http.Header{}
	header.Set("Content-Type", "application/json")
	return Request{
		URL:    cfg.ResolveURL(),
		Body:   body,
		Header: header,
	}, nil
}
