package httpserver

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/yuin/goldmark"

	"github.com/Adithya411/sac-databricks-widget/internal/adapter"
	apierrors "github.com/Adithya411/sac-databricks-widget/internal/errors"
	"github.com/Adithya411/sac-databricks-widget/internal/host"
	"github.com/Adithya411/sac-databricks-widget/internal/models"
	"github.com/Adithya411/sac-databricks-widget/internal/widget"
)

const maxRequestBytes = 64 << 10

type widgetHandler struct {
	registry *host.Registry
	logger   *slog.Logger
}

type widgetResponse struct {
	ID              string           `json:"id"`
	Title           string           `json:"title"`
	Dialect         string           `json:"dialect"`
	Endpoint        string           `json:"endpoint"`
	DefaultQuestion string           `json:"default_question,omitempty"`
	Phase           widget.Phase     `json:"phase"`
	InteractionID   string           `json:"interaction_id,omitempty"`
	Question        string           `json:"question,omitempty"`
	View            widget.View      `json:"view"`
	Answer          *adapter.Answer  `json:"answer,omitempty"`
	AnswerHTML      string           `json:"answer_html,omitempty"`
	Failure         *adapter.Failure `json:"failure,omitempty"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

type submitRequest struct {
	Question *string `json:"question"`
}

type submitResponse struct {
	Accepted bool           `json:"accepted"`
	Widget   widgetResponse `json:"widget"`
}

type propsRequest struct {
	EndpointURL     *string `json:"endpoint_url"`
	DefaultQuestion *string `json:"default_question"`
}

func (h *widgetHandler) handleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.BuildListResponse(h.registry))
}

func (h *widgetHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	s, title, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.render(s, title))
}

// handleSubmit starts an interaction. A missing question submits the widget's
// default question, as the embedded input would be pre-filled with it.
func (h *widgetHandler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	s, title, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var req submitRequest
	if err := decodeBody(w, r, &req); err != nil {
		apierrors.Write(w, err, requestIDFromContext(r.Context()))
		return
	}
	question := s.Props().DefaultQuestion
	if req.Question != nil {
		question = *req.Question
	}

	accepted := s.Submit(question)
	writeJSON(w, http.StatusAccepted, submitResponse{Accepted: accepted, Widget: h.render(s, title)})
}

func (h *widgetHandler) handleProps(w http.ResponseWriter, r *http.Request) {
	s, title, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var req propsRequest
	if err := decodeBody(w, r, &req); err != nil {
		apierrors.Write(w, err, requestIDFromContext(r.Context()))
		return
	}
	props := s.Props()
	if req.EndpointURL != nil {
		props.EndpointURL = *req.EndpointURL
	}
	if req.DefaultQuestion != nil {
		props.DefaultQuestion = *req.DefaultQuestion
	}
	s.OnPropsChanged(props)

	h.logger.Info("widget props changed", "widget", s.Widget().Name(), "endpoint", s.Widget().EndpointURL(), "request_id", requestIDFromContext(r.Context()))
	writeJSON(w, http.StatusOK, h.render(s, title))
}

func (h *widgetHandler) lookup(w http.ResponseWriter, r *http.Request) (*host.Session, string, bool) {
	name := chi.URLParam(r, "name")
	s, wc, ok := h.registry.Get(name)
	if !ok {
		apierrors.Write(w, apierrors.NotFound("unknown widget: %s", name), requestIDFromContext(r.Context()))
		return nil, "", false
	}
	return s, wc.Title, true
}

func (h *widgetHandler) render(s *host.Session, title string) widgetResponse {
	wd := s.Widget()
	state := wd.State()
	resp := widgetResponse{
		ID:              wd.Name(),
		Title:           title,
		Dialect:         wd.Dialect().String(),
		Endpoint:        wd.EndpointURL(),
		DefaultQuestion: s.Props().DefaultQuestion,
		Phase:           state.Phase,
		InteractionID:   state.ID,
		Question:        state.Question,
		View:            wd.Describe(state),
		Answer:          state.Answer,
		Failure:         state.Failure,
		UpdatedAt:       state.At,
	}
	if state.Answer != nil {
		html, err := renderMarkdown(state.Answer.Text)
		if err != nil {
			h.logger.Warn("failed to render answer markdown", "widget", wd.Name(), "error", err)
		} else {
			resp.AnswerHTML = html
		}
	}
	return resp
}

// renderMarkdown converts model output to HTML. Raw HTML in the answer is
// not passed through.
func renderMarkdown(text string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(text), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// decodeBody reads a JSON body into dst. Failures are *apierrors.Error.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return apierrors.TooLarge(maxErr.Limit)
		}
		return apierrors.InvalidRequest("failed to read request body")
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return apierrors.InvalidRequest("request body is required")
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return apierrors.InvalidRequest("invalid JSON payload")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
