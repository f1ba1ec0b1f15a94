package listing_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unclebandit/smsleopard-console/internal/backend"
	"github.com/unclebandit/smsleopard-console/internal/listing"
	"github.com/unclebandit/smsleopard-console/internal/model"
)

type fakeLister struct {
	rows  []model.Campaign
	total int
	err   error

	calls       int
	lastPage    int
	lastSize    int
	lastStatus  string
	lastChannel string

	// hook runs inside ListCampaigns, before returning. Used to race a
	// query change against an in-flight request.
	hook func()
}

func (f *fakeLister) ListCampaigns(ctx context.Context, page, pageSize int, status, channel string) ([]model.Campaign, int, error) {
	f.calls++
	f.lastPage = page
	f.lastSize = pageSize
	f.lastStatus = status
	f.lastChannel = channel
	if f.hook != nil {
		f.hook()
	}
	if f.err != nil {
		return nil, 0, f.err
	}
	return f.rows, f.total, nil
}

func campaigns(names ...string) []model.Campaign {
	out := make([]model.Campaign, len(names))
	for i, name := range names {
		out[i] = model.Campaign{ID: i + 1, Name: name, Template: "Hi {first_name}"}
	}
	return out
}

func TestLoadPassesQueryThrough(t *testing.T) {
	lister := &fakeLister{rows: campaigns("Welcome Offer"), total: 1}
	engine := listing.NewEngine(lister, 10, nil)

	require.NoError(t, engine.Load(context.Background()))
	assert.Equal(t, 1, lister.lastPage)
	assert.Equal(t, 10, lister.lastSize)
	assert.Equal(t, backend.FilterAll, lister.lastStatus)
	assert.Equal(t, backend.FilterAll, lister.lastChannel)
	assert.Equal(t, listing.StateLoaded, engine.State())
}

func TestFilterChangeResetsPage(t *testing.T) {
	lister := &fakeLister{rows: campaigns("a", "b"), total: 30}
	engine := listing.NewEngine(lister, 10, nil)
	require.NoError(t, engine.Load(context.Background()))

	engine.NextPage()
	require.Equal(t, 2, engine.Query().Page)

	engine.SetStatusFilter("draft")
	assert.Equal(t, 1, engine.Query().Page)

	engine.NextPage()
	engine.SetChannelFilter("sms")
	assert.Equal(t, 1, engine.Query().Page)

	engine.NextPage()
	engine.SetSearch("promo")
	assert.Equal(t, 1, engine.Query().Page)
}

func TestSearchNarrowsRowsButNotTotal(t *testing.T) {
	lister := &fakeLister{
		rows: []model.Campaign{
			{ID: 1, Name: "Spring Promo", Template: "Hello"},
			{ID: 2, Name: "Newsletter", Template: "promo inside: {first_name}"},
			{ID: 3, Name: "Winback", Template: "We miss you"},
		},
		total: 42,
	}
	engine := listing.NewEngine(lister, 10, nil)
	engine.SetSearch("PROMO")
	require.NoError(t, engine.Load(context.Background()))

	// Case-insensitive match over name and template of the fetched page.
	rows := engine.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, 1, rows[0].ID)
	assert.Equal(t, 2, rows[1].ID)

	// The pagination accounting still reflects the server total.
	assert.Equal(t, 42, engine.Total())
	assert.Equal(t, 5, engine.TotalPages())
}

func TestPageNavigationClamps(t *testing.T) {
	lister := &fakeLister{rows: campaigns("only"), total: 10}
	engine := listing.NewEngine(lister, 10, nil)
	require.NoError(t, engine.Load(context.Background()))
	require.Equal(t, 1, engine.TotalPages())

	engine.NextPage()
	assert.Equal(t, 1, engine.Query().Page, "next past the last page is a no-op")
	engine.PrevPage()
	assert.Equal(t, 1, engine.Query().Page, "prev before the first page is a no-op")
	engine.SetPage(9)
	assert.Equal(t, 1, engine.Query().Page)

	lister.total = 35
	require.NoError(t, engine.Load(context.Background()))
	engine.SetPage(4)
	assert.Equal(t, 4, engine.Query().Page)
	engine.SetPage(5)
	assert.Equal(t, 4, engine.Query().Page)
}

func TestStaleResponseIsDiscarded(t *testing.T) {
	lister := &fakeLister{rows: campaigns("old page"), total: 5}
	engine := listing.NewEngine(lister, 10, nil)

	// The query moves on while the request is in flight; its response must
	// not overwrite state belonging to the newer query.
	lister.hook = func() {
		lister.hook = nil
		engine.SetSearch("newer")
	}
	require.NoError(t, engine.Load(context.Background()))

	assert.Empty(t, engine.Rows())
	assert.NotEqual(t, listing.StateLoaded, engine.State())

	// The follow-up load for the newer query lands normally.
	require.NoError(t, engine.Load(context.Background()))
	assert.Equal(t, listing.StateLoaded, engine.State())
}

func TestLoadErrorKeepsPreviousRows(t *testing.T) {
	lister := &fakeLister{rows: campaigns("kept"), total: 1}
	engine := listing.NewEngine(lister, 10, nil)
	require.NoError(t, engine.Load(context.Background()))

	lister.err = errors.New("boom")
	err := engine.Load(context.Background())
	assert.Error(t, err)
	assert.Equal(t, listing.StateError, engine.State())
	assert.Len(t, engine.Rows(), 1, "rows from the last good load stay visible")
}
