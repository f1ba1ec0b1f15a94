package targeting_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unclebandit/smsleopard-console/internal/backend"
	appErrors "github.com/unclebandit/smsleopard-console/internal/errors"
	"github.com/unclebandit/smsleopard-console/internal/model"
	"github.com/unclebandit/smsleopard-console/internal/targeting"
)

type fakeDirectory struct {
	customers []model.Customer
	err       error
	block     chan struct{}
	calls     int
}

func (f *fakeDirectory) ListCustomers(ctx context.Context, limit, offset int) ([]model.Customer, error) {
	f.calls++
	if f.block != nil {
		<-f.block
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.customers, nil
}

type fakeDispatcher struct {
	result *backend.SendResult
	err    error
	calls  int
	gotIDs []int
}

func (f *fakeDispatcher) SendCampaign(ctx context.Context, campaignID int, customerIDs []int) (*backend.SendResult, error) {
	f.calls++
	f.gotIDs = customerIDs
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func threeCustomers() []model.Customer {
	return []model.Customer{
		{ID: 1, FirstName: "Alice", LastName: "Smith"},
		{ID: 2, FirstName: "Bob", LastName: "Jones"},
		{ID: 3, FirstName: "Carol", LastName: "Mwangi"},
	}
}

func draftCampaign() *model.Campaign {
	return &model.Campaign{ID: 7, Name: "Welcome Offer", Status: model.StatusDraft}
}

func openSession(t *testing.T, dir *fakeDirectory, disp *fakeDispatcher) *targeting.Session {
	t.Helper()
	session, err := targeting.NewSession(draftCampaign(), dir, disp, 1000, nil)
	require.NoError(t, err)
	require.NoError(t, session.Open(context.Background()))
	return session
}

func TestNewSessionRejectsIneligibleStatuses(t *testing.T) {
	for _, status := range []model.Status{model.StatusSending, model.StatusSent, model.StatusFailed} {
		t.Run(string(status), func(t *testing.T) {
			campaign := &model.Campaign{ID: 1, Status: status}
			_, err := targeting.NewSession(campaign, &fakeDirectory{}, &fakeDispatcher{}, 1000, nil)
			assert.Error(t, err)
		})
	}
}

func TestTogglePairIsNoop(t *testing.T) {
	session := openSession(t, &fakeDirectory{customers: threeCustomers()}, &fakeDispatcher{})

	session.Toggle(2)
	assert.Equal(t, []int{2}, session.Selected())

	session.Toggle(2)
	assert.Empty(t, session.Selected())
}

func TestToggleIgnoresIDsOutsideDirectory(t *testing.T) {
	session := openSession(t, &fakeDirectory{customers: threeCustomers()}, &fakeDispatcher{})

	session.Toggle(99)
	assert.Empty(t, session.Selected())
}

func TestSelectAllTogglesWholeSet(t *testing.T) {
	session := openSession(t, &fakeDirectory{customers: threeCustomers()}, &fakeDispatcher{})

	op := session.SelectAll()
	assert.Equal(t, targeting.OpSelectAll, op)
	assert.Equal(t, []int{1, 2, 3}, session.Selected())

	op = session.SelectAll()
	assert.Equal(t, targeting.OpClear, op)
	assert.Empty(t, session.Selected())
}

func TestSelectAllFromPartialSelectionFills(t *testing.T) {
	session := openSession(t, &fakeDirectory{customers: threeCustomers()}, &fakeDispatcher{})

	session.Toggle(1)
	op := session.SelectAll()
	assert.Equal(t, targeting.OpSelectAll, op)
	assert.Equal(t, []int{1, 2, 3}, session.Selected())
}

func TestSubmitEmptySelectionNeverReachesDispatcher(t *testing.T) {
	disp := &fakeDispatcher{}
	session := openSession(t, &fakeDirectory{customers: threeCustomers()}, disp)

	_, err := session.Submit(context.Background())
	assert.ErrorIs(t, err, appErrors.ErrEmptySelection)
	assert.Zero(t, disp.calls)
}

func TestSubmitSuccessClearsAndCloses(t *testing.T) {
	disp := &fakeDispatcher{result: &backend.SendResult{CampaignID: 7, QueuedCount: 2, Status: model.StatusSending}}
	session := openSession(t, &fakeDirectory{customers: threeCustomers()}, disp)

	session.Toggle(3)
	session.Toggle(1)

	result, err := session.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.QueuedCount)
	assert.Equal(t, []int{1, 3}, disp.gotIDs, "ids are submitted in ascending order")
	assert.Empty(t, session.Selected())
	assert.Equal(t, targeting.StateClosed, session.State())
}

func TestSubmitFailurePreservesSelection(t *testing.T) {
	disp := &fakeDispatcher{err: appErrors.NewBackendRejected(409, "campaign cannot be sent in status: sent")}
	session := openSession(t, &fakeDirectory{customers: threeCustomers()}, disp)

	session.Toggle(1)
	session.Toggle(2)

	_, err := session.Submit(context.Background())
	require.Error(t, err)

	rejected, ok := appErrors.AsBackendRejected(err)
	require.True(t, ok)
	assert.Equal(t, "campaign cannot be sent in status: sent", rejected.Message)

	// Nothing was lost; the operator can retry without re-selecting.
	assert.Equal(t, []int{1, 2}, session.Selected())
	assert.Equal(t, targeting.StateLoaded, session.State())

	disp.err = nil
	disp.result = &backend.SendResult{CampaignID: 7, QueuedCount: 2, Status: model.StatusSending}
	_, err = session.Submit(context.Background())
	assert.NoError(t, err)
}

func TestOpenFailureLeavesSessionRetryable(t *testing.T) {
	dir := &fakeDirectory{err: errors.New("connection refused")}
	session, err := targeting.NewSession(draftCampaign(), dir, &fakeDispatcher{}, 1000, nil)
	require.NoError(t, err)

	err = session.Open(context.Background())
	assert.Error(t, err)
	assert.Equal(t, targeting.StateError, session.State())
	assert.Empty(t, session.Directory())

	dir.err = nil
	dir.customers = threeCustomers()
	require.NoError(t, session.Open(context.Background()))
	assert.Equal(t, targeting.StateLoaded, session.State())
	assert.Len(t, session.Directory(), 3)
}

func TestMutationsAreNoopsWhileLoading(t *testing.T) {
	dir := &fakeDirectory{customers: threeCustomers(), block: make(chan struct{})}
	session, err := targeting.NewSession(draftCampaign(), dir, &fakeDispatcher{}, 1000, nil)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- session.Open(context.Background()) }()

	require.Eventually(t, func() bool {
		return session.State() == targeting.StateLoading
	}, time.Second, time.Millisecond)

	session.Toggle(1)
	session.SelectAll()
	assert.Zero(t, session.Count(), "mutations before the snapshot resolves do nothing")

	close(dir.block)
	require.NoError(t, <-done)
	assert.Equal(t, targeting.StateLoaded, session.State())
	assert.Zero(t, session.Count())
}
