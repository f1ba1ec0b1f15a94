// internal/model/campaign.go
package model

import "time"

// Status is the campaign lifecycle state as reported by the backend.
// The console only interprets it; the backend assigns it.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusScheduled Status = "scheduled"
	StatusSending   Status = "sending"
	StatusSent      Status = "sent"
	StatusFailed    Status = "failed"
)

// Valid reports whether s is one of the known lifecycle states.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusScheduled, StatusSending, StatusSent, StatusFailed:
		return true
	}
	return false
}

// Channel is the delivery channel, fixed at campaign creation.
type Channel string

const (
	ChannelWhatsApp Channel = "whatsapp"
	ChannelSMS      Channel = "sms"
)

func (c Channel) Valid() bool {
	return c == ChannelWhatsApp || c == ChannelSMS
}

// Campaign is the console-side view of a campaign: the campaign fields
// flattened together with the backend's rollup counters. The counters are
// backend-authoritative; the console never writes them.
type Campaign struct {
	ID          int        `json:"id"`
	Name        string     `json:"name"`
	Channel     Channel    `json:"channel"`
	Status      Status     `json:"status"`
	Template    string     `json:"template"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`

	TotalMessages     int `json:"total_messages"`
	SentMessages      int `json:"sent_messages"`
	DeliveredMessages int `json:"delivered_messages"`
	FailedMessages    int `json:"failed_messages"`
}
