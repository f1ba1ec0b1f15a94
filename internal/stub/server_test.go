package stub

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unclebandit/smsleopard-console/internal/model"
)

func newTestServer(t *testing.T) (*Server, *Store, *httptest.Server) {
	t.Helper()
	store := NewStore()
	server := NewServer(store, 1.0, nil)
	ts := httptest.NewServer(server.Router())
	t.Cleanup(ts.Close)
	return server, store, ts
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	buf, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(buf))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestSendQueuesUniqueKnownCustomers(t *testing.T) {
	server, store, ts := newTestServer(t)

	store.AddCustomer(model.Customer{FirstName: "Alice", LastName: "Smith", Phone: "+1"})
	store.AddCustomer(model.Customer{FirstName: "Bob", LastName: "Jones", Phone: "+2"})
	campaign := store.CreateCampaign(&Campaign{Name: "Promo", Channel: "sms", BaseTemplate: "Hi {first_name}"})

	// One duplicate and one unknown id; both are dropped.
	resp := postJSON(t, ts.URL+"/campaigns/1/send", map[string]any{
		"customer_ids": []int{1, 2, 2, 99},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		CampaignID     int    `json:"campaign_id"`
		MessagesQueued int    `json:"messages_queued"`
		Status         string `json:"status"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, 2, result.MessagesQueued)
	assert.Equal(t, "sending", result.Status)

	server.Queue().Drain()

	stats := store.Stats(campaign.ID)
	assert.Equal(t, 2, stats["total"])
	assert.Equal(t, 2, stats["sent"])
	assert.Equal(t, 0, stats["failed"])

	got, ok := store.GetCampaign(campaign.ID)
	require.True(t, ok)
	assert.Equal(t, "sending", got.Status)
}

func TestResendDoesNotDuplicateMessages(t *testing.T) {
	server, store, ts := newTestServer(t)

	store.AddCustomer(model.Customer{FirstName: "Alice", LastName: "Smith", Phone: "+1"})
	store.CreateCampaign(&Campaign{Name: "Promo", Channel: "sms", BaseTemplate: "Hi"})

	for i := 0; i < 2; i++ {
		resp := postJSON(t, ts.URL+"/campaigns/1/send", map[string]any{"customer_ids": []int{1}})
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}
	server.Queue().Drain()

	stats := store.Stats(1)
	assert.Equal(t, 1, stats["total"], "outbound messages are idempotent per (campaign, customer)")
}

func TestSendValidation(t *testing.T) {
	_, store, ts := newTestServer(t)
	store.CreateCampaign(&Campaign{Name: "Promo", Channel: "sms", BaseTemplate: "Hi"})

	resp := postJSON(t, ts.URL+"/campaigns/1/send", map[string]any{"customer_ids": []int{}})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp = postJSON(t, ts.URL+"/campaigns/77/send", map[string]any{"customer_ids": []int{1}})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCreateCampaignValidation(t *testing.T) {
	_, _, ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/campaigns", map[string]any{
		"name": "", "channel": "sms", "base_template": "Hi",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = postJSON(t, ts.URL+"/campaigns", map[string]any{
		"name": "Promo", "channel": "carrier-pigeon", "base_template": "Hi",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestQueueRetriesUntilSuccess(t *testing.T) {
	q := NewQueue(nil)
	q.backoff = time.Millisecond

	var attempts atomic.Int32
	q.Subscribe("topic", func(payload any) error {
		if attempts.Add(1) < 3 {
			return errors.New("transient")
		}
		return nil
	})

	require.NoError(t, q.Publish("topic", 1))
	q.Drain()
	assert.Equal(t, int32(3), attempts.Load())
}

func TestQueueGivesUpAfterMaxRetries(t *testing.T) {
	q := NewQueue(nil)
	q.backoff = time.Millisecond

	var attempts atomic.Int32
	q.Subscribe("topic", func(payload any) error {
		attempts.Add(1)
		return errors.New("permanent")
	})

	require.NoError(t, q.Publish("topic", 1))
	q.Drain()
	assert.Equal(t, int32(4), attempts.Load(), "one attempt plus three retries")
}

func TestPublishWithoutSubscribersFails(t *testing.T) {
	q := NewQueue(nil)
	assert.Error(t, q.Publish("nobody-home", 1))
}

func TestRenderTemplateFallsBackToUnknown(t *testing.T) {
	customer := model.Customer{FirstName: "Alice", LastName: "", Location: "Nairobi"}
	got := renderTemplate("Hi {first_name} {last_name} from {location}, buy {preferred_product}", customer)
	assert.Equal(t, "Hi Alice <unknown> from Nairobi, buy <unknown>", got)
}
