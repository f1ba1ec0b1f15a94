// internal/service/campaign_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"go.uber.org/zap"

	"github.com/unclebandit/smsleopard-console/internal/backend"
	appErrors "github.com/unclebandit/smsleopard-console/internal/errors"
	"github.com/unclebandit/smsleopard-console/internal/model"
)

// CampaignAPI is the slice of the backend client the service drives.
type CampaignAPI interface {
	GetCampaign(ctx context.Context, id int) (*model.Campaign, error)
	CreateCampaign(ctx context.Context, in backend.CreateCampaignRequest) (*model.Campaign, error)
	SendCampaign(ctx context.Context, campaignID int, customerIDs []int) (*backend.SendResult, error)
	RenderPreview(ctx context.Context, campaignID, customerID int, overrideTemplate *string) (string, error)
}

// CampaignService orchestrates the console workflows that span more than
// one backend call or need local preconditions checked first.
type CampaignService struct {
	Backend CampaignAPI
	Log     *zap.Logger
}

func NewCampaignService(api CampaignAPI, log *zap.Logger) *CampaignService {
	if log == nil {
		log = zap.NewNop()
	}
	return &CampaignService{Backend: api, Log: log}
}

// CreateInput is the campaign creation form. ScheduledAt, when present, is
// wall-clock input in the "2006-01-02T15:04" shape, interpreted in Location
// (time.Local when nil).
type CreateInput struct {
	Name        string
	Template    string
	Channel     model.Channel
	ScheduledAt string
	Location    *time.Location
}

func notBlank(value interface{}) error {
	s, _ := value.(string)
	if strings.TrimSpace(s) == "" {
		return errors.New("cannot be blank")
	}
	return nil
}

func (in CreateInput) validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.By(notBlank)),
		validation.Field(&in.Template, validation.By(notBlank)),
		validation.Field(&in.Channel, validation.In(model.ChannelWhatsApp, model.ChannelSMS).
			Error("must be whatsapp or sms")),
	)
}

// Create validates the form locally, normalizes the optional schedule to an
// absolute UTC instant and creates the campaign. Invalid input never
// reaches the network. The returned campaign carries whatever status the
// backend assigned.
func (s *CampaignService) Create(ctx context.Context, in CreateInput) (*model.Campaign, error) {
	if err := in.validate(); err != nil {
		return nil, appErrors.NewValidation(err)
	}

	req := backend.CreateCampaignRequest{
		Name:     in.Name,
		Channel:  in.Channel,
		Template: in.Template,
	}
	if in.ScheduledAt != "" {
		t, err := ParseScheduledLocal(in.ScheduledAt, in.Location)
		if err != nil {
			return nil, appErrors.NewValidation(err)
		}
		req.ScheduledAt = &t
	}

	campaign, err := s.Backend.CreateCampaign(ctx, req)
	if err != nil {
		return nil, err
	}
	s.Log.Info("campaign created",
		zap.Int("campaign_id", campaign.ID),
		zap.String("status", string(campaign.Status)))
	return campaign, nil
}

// ParseScheduledLocal converts wall-clock form input into an unambiguous
// UTC instant. Bare local time strings are never sent to the backend.
func ParseScheduledLocal(input string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range []string{"2006-01-02T15:04", "2006-01-02T15:04:05"} {
		if t, err := time.ParseInLocation(layout, input, loc); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("scheduled date %q is not in YYYY-MM-DDTHH:MM format", input)
}

// Dispatch submits the recipient set and then re-fetches the campaign for
// authoritative post-send status and counters. The dispatch response only
// guarantees a queued count, so the refreshed campaign is the source of
// truth and the re-fetch is sequenced strictly after submission success.
func (s *CampaignService) Dispatch(ctx context.Context, campaignID int, customerIDs []int) (*backend.SendResult, *model.Campaign, error) {
	if len(customerIDs) == 0 {
		return nil, nil, appErrors.ErrEmptySelection
	}

	result, err := s.Backend.SendCampaign(ctx, campaignID, customerIDs)
	if err != nil {
		return nil, nil, err
	}

	refreshed, err := s.Backend.GetCampaign(ctx, campaignID)
	if err != nil {
		return result, nil, fmt.Errorf("dispatch succeeded but campaign refresh failed: %w", err)
	}
	return result, refreshed, nil
}

func (s *CampaignService) Get(ctx context.Context, id int) (*model.Campaign, error) {
	return s.Backend.GetCampaign(ctx, id)
}

func (s *CampaignService) Preview(ctx context.Context, campaignID, customerID int, overrideTemplate *string) (string, error) {
	return s.Backend.RenderPreview(ctx, campaignID, customerID, overrideTemplate)
}
