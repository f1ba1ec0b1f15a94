// internal/stub/store.go
package stub

import (
	"sync"
	"time"

	"github.com/unclebandit/smsleopard-console/internal/model"
)

// Campaign is the collaborator-side campaign record, with the backend's
// JSON field names.
type Campaign struct {
	ID           int        `json:"id"`
	Name         string     `json:"name"`
	Channel      string     `json:"channel"`
	Status       string     `json:"status"`
	BaseTemplate string     `json:"base_template"`
	ScheduledAt  *time.Time `json:"scheduled_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// OutboundMessage tracks one rendered message for one customer of one
// campaign. Status is pending, sending, sent or failed.
type OutboundMessage struct {
	ID              int
	CampaignID      int
	CustomerID      int
	Status          string
	RenderedContent string
	LastError       string
	RetryCount      int
}

// Store is the in-memory persistence of the stub collaborator.
type Store struct {
	mu sync.Mutex

	campaigns map[int]*Campaign
	customers []model.Customer
	outbound  map[int]*OutboundMessage

	nextCampaignID int
	nextCustomerID int
	nextMessageID  int
}

func NewStore() *Store {
	return &Store{
		campaigns:      make(map[int]*Campaign),
		outbound:       make(map[int]*OutboundMessage),
		nextCampaignID: 1,
		nextCustomerID: 1,
		nextMessageID:  1,
	}
}

// CreateCampaign assigns identity and initial status: scheduled when a
// schedule was supplied, draft otherwise.
func (s *Store) CreateCampaign(c *Campaign) *Campaign {
	s.mu.Lock()
	defer s.mu.Unlock()

	c.ID = s.nextCampaignID
	s.nextCampaignID++
	c.CreatedAt = time.Now()
	if c.Status == "" {
		if c.ScheduledAt != nil {
			c.Status = "scheduled"
		} else {
			c.Status = "draft"
		}
	}
	s.campaigns[c.ID] = c
	out := *c
	return &out
}

func (s *Store) GetCampaign(id int) (*Campaign, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.campaigns[id]
	if !ok {
		return nil, false
	}
	out := *c
	return &out, true
}

// ListCampaigns filters by channel and status (empty means no constraint),
// orders newest first and returns one page plus the filtered total.
func (s *Store) ListCampaigns(offset, limit int, channel, status string) ([]Campaign, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	matched := make([]Campaign, 0, len(s.campaigns))
	for id := s.nextCampaignID - 1; id >= 1; id-- {
		c, ok := s.campaigns[id]
		if !ok {
			continue
		}
		if channel != "" && c.Channel != channel {
			continue
		}
		if status != "" && c.Status != status {
			continue
		}
		matched = append(matched, *c)
	}

	total := len(matched)
	if offset >= total {
		return []Campaign{}, total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total
}

func (s *Store) UpdateCampaignStatus(id int, status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.campaigns[id]; ok {
		c.Status = status
	}
}

func (s *Store) AddCustomer(c model.Customer) model.Customer {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = s.nextCustomerID
	s.nextCustomerID++
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	s.customers = append(s.customers, c)
	return c
}

func (s *Store) Customers(limit, offset int) []model.Customer {
	s.mu.Lock()
	defer s.mu.Unlock()
	if offset >= len(s.customers) {
		return []model.Customer{}
	}
	end := offset + limit
	if end > len(s.customers) {
		end = len(s.customers)
	}
	out := make([]model.Customer, end-offset)
	copy(out, s.customers[offset:end])
	return out
}

func (s *Store) CustomerByID(id int) (model.Customer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.customers {
		if c.ID == id {
			return c, true
		}
	}
	return model.Customer{}, false
}

// CreateOutbound is idempotent per (campaign, customer) pair: re-sending a
// campaign to the same customer returns the existing message instead of
// creating a duplicate.
func (s *Store) CreateOutbound(campaignID, customerID int) *OutboundMessage {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range s.outbound {
		if m.CampaignID == campaignID && m.CustomerID == customerID {
			out := *m
			return &out
		}
	}

	m := &OutboundMessage{
		ID:         s.nextMessageID,
		CampaignID: campaignID,
		CustomerID: customerID,
		Status:     "pending",
	}
	s.nextMessageID++
	s.outbound[m.ID] = m
	out := *m
	return &out
}

func (s *Store) SetOutboundContent(id int, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.outbound[id]; ok {
		m.RenderedContent = content
	}
}

func (s *Store) UpdateOutboundStatus(id int, status, lastError string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.outbound[id]; ok {
		m.Status = status
		m.LastError = lastError
		if status == "failed" {
			m.RetryCount++
		}
	}
}

func (s *Store) OutboundByID(id int) (*OutboundMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.outbound[id]
	if !ok {
		return nil, false
	}
	out := *m
	return &out, true
}

// Stats rolls up outbound messages by status for one campaign, the same
// shape the real backend derives with a GROUP BY.
func (s *Store) Stats(campaignID int) map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := map[string]int{
		"total":   0,
		"pending": 0,
		"sending": 0,
		"sent":    0,
		"failed":  0,
	}
	for _, m := range s.outbound {
		if m.CampaignID != campaignID {
			continue
		}
		if _, ok := stats[m.Status]; ok {
			stats[m.Status]++
		}
		stats["total"]++
	}
	return stats
}
