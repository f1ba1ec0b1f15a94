// internal/backend/mapping.go
package backend

import (
	"time"

	"github.com/unclebandit/smsleopard-console/internal/model"
)

// Wire payloads mirror the backend's JSON field names exactly.

type campaignPayload struct {
	ID           int        `json:"id"`
	Name         string     `json:"name"`
	Channel      string     `json:"channel"`
	Status       string     `json:"status"`
	BaseTemplate string     `json:"base_template"`
	ScheduledAt  *time.Time `json:"scheduled_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

type statsPayload struct {
	Total   int `json:"total"`
	Pending int `json:"pending"`
	Sending int `json:"sending"`
	Sent    int `json:"sent"`
	Failed  int `json:"failed"`
}

type campaignWithStats struct {
	campaignPayload
	Stats *statsPayload `json:"stats,omitempty"`
}

type paginationPayload struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
	TotalPages int `json:"total_pages"`
}

type listResponse struct {
	Data       []campaignWithStats `json:"data"`
	Pagination paginationPayload   `json:"pagination"`
}

type previewResponse struct {
	RenderedMessage string `json:"rendered_message"`
}

type errorResponse struct {
	Message string `json:"message"`
}

// mapStatus folds anything the backend might report outside the known
// lifecycle states back to draft, matching how the console has always
// treated unknown statuses.
func mapStatus(s string) model.Status {
	st := model.Status(s)
	if st.Valid() {
		return st
	}
	return model.StatusDraft
}

// deliveredFromStats maps the console's delivered counter onto the backend's
// sent counter. The backend does not distinguish queued-sent from
// confirmed-delivered, so "delivered" means "sent" at this boundary. A
// backend that reports real delivery confirmations only needs to change
// this function.
func deliveredFromStats(s *statsPayload) int {
	if s == nil {
		return 0
	}
	return s.Sent
}

func (p campaignPayload) toModel(stats *statsPayload) model.Campaign {
	c := model.Campaign{
		ID:          p.ID,
		Name:        p.Name,
		Channel:     model.Channel(p.Channel),
		Status:      mapStatus(p.Status),
		Template:    p.BaseTemplate,
		ScheduledAt: p.ScheduledAt,
		CreatedAt:   p.CreatedAt,
	}
	if stats != nil {
		c.TotalMessages = stats.Total
		c.SentMessages = stats.Sent
		c.FailedMessages = stats.Failed
	}
	c.DeliveredMessages = deliveredFromStats(stats)
	return c
}
