// internal/backend/client.go
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appErrors "github.com/unclebandit/smsleopard-console/internal/errors"
	"github.com/unclebandit/smsleopard-console/internal/model"
)

// FilterAll is the sentinel filter value meaning "no constraint". It is
// never sent to the backend; the query parameter is omitted instead.
const FilterAll = "all"

// Client talks to the campaign backend. It is the only place that knows the
// wire shapes; everything above it works with model types.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *zap.Logger
}

func NewClient(baseURL string, timeout time.Duration, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// SendResult is what a dispatch submission returns. It only guarantees a
// queued count; authoritative status and counters come from a re-fetch.
type SendResult struct {
	CampaignID  int          `json:"campaign_id"`
	QueuedCount int          `json:"messages_queued"`
	Status      model.Status `json:"status"`
}

type CreateCampaignRequest struct {
	Name        string
	Channel     model.Channel
	Template    string
	ScheduledAt *time.Time
}

// ListCampaigns fetches one page of campaigns with their rollup stats.
// status and channel equal to FilterAll (or empty) are omitted from the
// request. Returns the page and the server's total count across all pages.
func (c *Client) ListCampaigns(ctx context.Context, page, pageSize int, status, channel string) ([]model.Campaign, int, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("page_size", strconv.Itoa(pageSize))
	if status != "" && status != FilterAll {
		q.Set("status", status)
	}
	if channel != "" && channel != FilterAll {
		q.Set("channel", channel)
	}

	resp, err := c.do(ctx, http.MethodGet, "/campaigns", q, nil)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, 0, fmt.Errorf("failed to fetch campaigns: %s", resp.Status)
	}

	var body listResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, 0, fmt.Errorf("failed to decode campaign list: %w", err)
	}

	campaigns := make([]model.Campaign, len(body.Data))
	for i, item := range body.Data {
		campaigns[i] = item.campaignPayload.toModel(item.Stats)
	}
	return campaigns, body.Pagination.TotalCount, nil
}

// GetCampaign fetches a single campaign with stats. An unknown id yields
// appErrors.ErrCampaignNotFound.
func (c *Client) GetCampaign(ctx context.Context, id int) (*model.Campaign, error) {
	resp, err := c.do(ctx, http.MethodGet, "/campaigns/"+strconv.Itoa(id), nil, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, appErrors.NewCampaignNotFound(id)
	default:
		return nil, fmt.Errorf("failed to fetch campaign %d: %s", id, resp.Status)
	}

	var body campaignWithStats
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode campaign %d: %w", id, err)
	}
	campaign := body.campaignPayload.toModel(body.Stats)
	return &campaign, nil
}

// CreateCampaign creates a campaign. The returned status is whatever the
// backend assigned; the console does not infer it from the schedule.
func (c *Client) CreateCampaign(ctx context.Context, in CreateCampaignRequest) (*model.Campaign, error) {
	payload := map[string]any{
		"name":          in.Name,
		"channel":       in.Channel,
		"base_template": in.Template,
	}
	if in.ScheduledAt != nil {
		payload["scheduled_at"] = in.ScheduledAt.UTC().Format(time.RFC3339)
	}

	resp, err := c.do(ctx, http.MethodPost, "/campaigns", nil, payload)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("failed to create campaign: %s", resp.Status)
	}

	var body campaignPayload
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode created campaign: %w", err)
	}
	campaign := body.toModel(nil)
	return &campaign, nil
}

// SendCampaign commits a (campaign, recipient set) pair for sending. A
// non-success response becomes appErrors.BackendRejected with the backend's
// message passed through when it provided one.
func (c *Client) SendCampaign(ctx context.Context, campaignID int, customerIDs []int) (*SendResult, error) {
	if len(customerIDs) == 0 {
		return nil, appErrors.ErrEmptySelection
	}

	payload := map[string]any{"customer_ids": customerIDs}
	resp, err := c.do(ctx, http.MethodPost, "/campaigns/"+strconv.Itoa(campaignID)+"/send", nil, payload)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errBody errorResponse
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
		return nil, appErrors.NewBackendRejected(resp.StatusCode, errBody.Message)
	}

	var result SendResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode send result: %w", err)
	}
	c.log.Info("campaign dispatch accepted",
		zap.Int("campaign_id", campaignID),
		zap.Int("messages_queued", result.QueuedCount))
	return &result, nil
}

// ListCustomers fetches one page of the customer directory. The endpoint
// gives no total count; callers must not treat the page as the full
// directory size beyond what was returned.
func (c *Client) ListCustomers(ctx context.Context, limit, offset int) ([]model.Customer, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))

	resp, err := c.do(ctx, http.MethodGet, "/customers", q, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch customers: %s", resp.Status)
	}

	var customers []model.Customer
	if err := json.NewDecoder(resp.Body).Decode(&customers); err != nil {
		return nil, fmt.Errorf("failed to decode customers: %w", err)
	}
	return customers, nil
}

// RenderPreview asks the backend to render the campaign template for one
// customer, optionally with an override template not yet saved.
func (c *Client) RenderPreview(ctx context.Context, campaignID, customerID int, overrideTemplate *string) (string, error) {
	payload := map[string]any{
		"customer_id":       customerID,
		"override_template": overrideTemplate,
	}
	resp, err := c.do(ctx, http.MethodPost, "/campaigns/"+strconv.Itoa(campaignID)+"/personalized-preview", nil, payload)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to render preview: %s", resp.Status)
	}

	var body previewResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("failed to decode preview: %w", err)
	}
	return body.RenderedMessage, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) (*http.Response, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return resp, nil
}
