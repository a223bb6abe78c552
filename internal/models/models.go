package models

import (
	"time"

	"github.com/Adithya411/sac-databricks-widget/internal/host"
)

type ListResponse struct {
	Data    []Widget `json:"data"`
	FirstID string   `json:"first_id,omitempty"`
	LastID  string   `json:"last_id,omitempty"`
	HasMore bool     `json:"has_more"`
}

type Widget struct {
	ID              string    `json:"id"`
	Type            string    `json:"type"`
	DisplayName     string    `json:"display_name"`
	Dialect         string    `json:"dialect"`
	Endpoint        string    `json:"endpoint"`
	DefaultQuestion string    `json:"default_question,omitempty"`
	Phase           string    `json:"phase"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// BuildListResponse lists every hosted widget in config order.
func BuildListResponse(reg *host.Registry) ListResponse {
	names := reg.Names()
	items := make([]Widget, 0, len(names))
	for _, name := range names {
		s, wc, ok := reg.Get(name)
		if !ok {
			continue
		}
		w := s.Widget()
		state := w.State()
		items = append(items, Widget{
			ID:              wc.Name,
			Type:            "widget",
			DisplayName:     wc.Title,
			Dialect:         w.Dialect().String(),
			Endpoint:        w.EndpointURL(),
			DefaultQuestion: s.Props().DefaultQuestion,
			Phase:           string(state.Phase),
			UpdatedAt:       state.At,
		})
	}

	resp := ListResponse{
		Data:    items,
		HasMore: false,
	}
	if len(items) > 0 {
		resp.FirstID = items[0].ID
		resp.LastID = items[len(items)-1].ID
	}
	return resp
}
