package gateway

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/Adithya411/sac-databricks-widget/internal/adapter"
)

// MaxReplyBytes caps the reply body read from an insight endpoint.
const MaxReplyBytes = 8 << 20

// Response is the raw outcome of one insight call.
type Response struct {
	Status int
	Body   []byte
}

// Service performs the single outbound POST for a shaped request.
type Service struct {
	client *http.Client
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	return NewServiceWithClient(&http.Client{Transport: transport}, logger)
}

func NewServiceWithClient(client *http.Client, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{client: client, logger: logger}
}

// Call sends req and reads the whole reply. Any returned error is a transport
// failure; HTTP error statuses are returned as a Response.
func (s *Service) Call(ctx context.Context, req adapter.Request) (Response, error) {
	upReq, err := http.NewRequestWithContext(ctx, http.MethodPost, req.URL, bytes.NewReader(req.Body))
	if err != nil {
		return Response{}, fmt.Errorf("build insight request: %w", err)
	}
	for k, values := range req.Header {
		for _, v := range values {
			upReq.Header.Add(k, v)
		}
	}
	if upReq.Header.Get("Content-Type") == "" {
		upReq.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := s.client.Do(upReq)
	if err != nil {
		s.logger.Error("insight request failed", "url", req.URL, "error", err)
		return Response{}, describeFailure(ctx, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxReplyBytes+1))
	if err != nil {
		s.logger.Error("failed to read insight reply", "url", req.URL, "error", err)
		return Response{}, fmt.Errorf("read insight reply: %w", describeFailure(ctx, err))
	}
	if len(body) > MaxReplyBytes {
		s.logger.Error("insight reply too large", "url", req.URL, "status", resp.StatusCode, "limit", MaxReplyBytes)
		return Response{}, fmt.Errorf("insight reply exceeds %d bytes", MaxReplyBytes)
	}

	s.logger.Info(
		"insight reply",
		"url", req.URL,
		"status", resp.StatusCode,
		"bytes", len(body),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return Response{Status: resp.StatusCode, Body: body}, nil
}

// Timeout reports whether err came from an expired deadline.
func Timeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func describeFailure(ctx context.Context, err error) error {
	if Timeout(err) {
		if deadline, ok := ctx.Deadline(); ok {
			return fmt.Errorf("insight request timed out (deadline %s): %w", deadline.Format(time.RFC3339), err)
		}
		return fmt.Errorf("insight request timed out: %w", err)
	}
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("insight request cancelled: %w", err)
	}
	return fmt.Errorf("insight request failed: %w", err)
}
