// internal/stub/server.go
package stub

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Server is an in-memory rendition of the campaign backend, close enough to
// the real service for the console to run and be tested against it.
type Server struct {
	store *Store
	queue *Queue
	log   *zap.Logger
}

// NewServer wires a store, the delivery queue and its subscriber.
// successRate controls the simulated gateway (1.0 for deterministic tests).
func NewServer(store *Store, successRate float64, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	q := NewQueue(log)
	startDeliverySubscriber(q, store, successRate, log)
	return &Server{store: store, queue: q, log: log}
}

// Queue exposes the delivery queue so tests can drain it.
func (s *Server) Queue() *Queue { return s.queue }

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Post("/campaigns", s.createCampaign)
	r.Get("/campaigns", s.listCampaigns)
	r.Get("/campaigns/{id}", s.getCampaign)
	r.Post("/campaigns/{id}/send", s.sendCampaign)
	r.Post("/campaigns/{id}/personalized-preview", s.personalizedPreview)
	r.Get("/customers", s.listCustomers)
	return r
}

type campaignWithStats struct {
	Campaign
	Stats map[string]int `json:"stats"`
}

func (s *Server) createCampaign(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name         string     `json:"name"`
		Channel      string     `json:"channel"`
		BaseTemplate string     `json:"base_template"`
		ScheduledAt  *time.Time `json:"scheduled_at,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(payload.Name) == "" || strings.TrimSpace(payload.BaseTemplate) == "" {
		writeError(w, http.StatusBadRequest, "name and base_template are required")
		return
	}
	if payload.Channel != "whatsapp" && payload.Channel != "sms" {
		writeError(w, http.StatusBadRequest, "channel must be whatsapp or sms")
		return
	}

	campaign := s.store.CreateCampaign(&Campaign{
		Name:         payload.Name,
		Channel:      payload.Channel,
		BaseTemplate: payload.BaseTemplate,
		ScheduledAt:  payload.ScheduledAt,
	})
	writeJSON(w, http.StatusCreated, campaign)
}

func (s *Server) listCampaigns(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	pageSize := queryInt(r, "page_size", 10)
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	if pageSize > 100 {
		pageSize = 100
	}
	channel := r.URL.Query().Get("channel")
	status := r.URL.Query().Get("status")

	campaigns, total := s.store.ListCampaigns((page-1)*pageSize, pageSize, channel, status)

	data := make([]campaignWithStats, len(campaigns))
	for i, c := range campaigns {
		data[i] = campaignWithStats{Campaign: c, Stats: s.store.Stats(c.ID)}
	}

	totalPages := (total + pageSize - 1) / pageSize
	writeJSON(w, http.StatusOK, map[string]any{
		"data": data,
		"pagination": map[string]int{
			"page":        page,
			"page_size":   pageSize,
			"total_count": total,
			"total_pages": totalPages,
		},
	})
}

func (s *Server) getCampaign(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid campaign id")
		return
	}
	campaign, ok := s.store.GetCampaign(id)
	if !ok {
		writeError(w, http.StatusNotFound, "campaign not found")
		return
	}
	writeJSON(w, http.StatusOK, campaignWithStats{
		Campaign: *campaign,
		Stats:    s.store.Stats(id),
	})
}

func (s *Server) sendCampaign(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid campaign id")
		return
	}

	var payload struct {
		CustomerIDs []int `json:"customer_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(payload.CustomerIDs) == 0 {
		writeError(w, http.StatusUnprocessableEntity, "customer_ids cannot be empty")
		return
	}

	campaign, ok := s.store.GetCampaign(id)
	if !ok {
		writeError(w, http.StatusNotFound, "campaign not found")
		return
	}
	switch campaign.Status {
	case "draft", "scheduled", "sending":
	default:
		writeError(w, http.StatusConflict,
			fmt.Sprintf("campaign cannot be sent in status: %s", campaign.Status))
		return
	}

	queued := 0
	seen := make(map[int]struct{}, len(payload.CustomerIDs))
	for _, customerID := range payload.CustomerIDs {
		if _, dup := seen[customerID]; dup {
			continue
		}
		seen[customerID] = struct{}{}

		customer, ok := s.store.CustomerByID(customerID)
		if !ok {
			s.log.Warn("skipping unknown customer", zap.Int("customer_id", customerID))
			continue
		}

		msg := s.store.CreateOutbound(id, customerID)
		if msg.RenderedContent == "" {
			rendered := renderTemplate(campaign.BaseTemplate, customer)
			s.store.SetOutboundContent(msg.ID, rendered)
		}
		if err := s.queue.Publish(sendTopic, msg.ID); err != nil {
			s.log.Warn("failed to enqueue message", zap.Int("message_id", msg.ID), zap.Error(err))
			continue
		}
		queued++
	}

	if campaign.Status != "sending" {
		s.store.UpdateCampaignStatus(id, "sending")
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"campaign_id":     id,
		"messages_queued": queued,
		"status":          "sending",
	})
}

func (s *Server) personalizedPreview(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid campaign id")
		return
	}

	var payload struct {
		CustomerID       int     `json:"customer_id"`
		OverrideTemplate *string `json:"override_template"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	campaign, ok := s.store.GetCampaign(id)
	if !ok {
		writeError(w, http.StatusNotFound, "campaign not found")
		return
	}
	customer, ok := s.store.CustomerByID(payload.CustomerID)
	if !ok {
		writeError(w, http.StatusNotFound, "customer not found")
		return
	}

	template := campaign.BaseTemplate
	if payload.OverrideTemplate != nil && strings.TrimSpace(*payload.OverrideTemplate) != "" {
		template = *payload.OverrideTemplate
	}
	if strings.TrimSpace(template) == "" {
		writeError(w, http.StatusBadRequest, "template cannot be empty")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"rendered_message": renderTemplate(template, customer),
		"used_template":    template,
		"customer_id":      customer.ID,
	})
}

func (s *Server) listCustomers(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 100)
	offset := queryInt(r, "offset", 0)
	if limit < 1 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	writeJSON(w, http.StatusOK, s.store.Customers(limit, offset))
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}
