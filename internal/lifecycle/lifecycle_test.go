package lifecycle_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/unclebandit/smsleopard-console/internal/lifecycle"
	"github.com/unclebandit/smsleopard-console/internal/model"
)

func TestDispatchEligible(t *testing.T) {
	tests := []struct {
		status   model.Status
		eligible bool
	}{
		{model.StatusDraft, true},
		{model.StatusScheduled, true},
		{model.StatusSending, false},
		{model.StatusSent, false},
		{model.StatusFailed, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.eligible, lifecycle.DispatchEligible(tt.status))
		})
	}
}

func TestDeriveTypicalCampaign(t *testing.T) {
	c := &model.Campaign{
		TotalMessages:     200,
		SentMessages:      150,
		DeliveredMessages: 140,
		FailedMessages:    10,
	}
	m := lifecycle.Derive(c)
	assert.Equal(t, 75, m.Progress)
	assert.Equal(t, 93, m.DeliveryRate)
	assert.Equal(t, 7, m.FailureRate)
	assert.Equal(t, 50, m.Pending)
}

func TestDeriveZeroDenominators(t *testing.T) {
	t.Run("no messages at all", func(t *testing.T) {
		m := lifecycle.Derive(&model.Campaign{})
		assert.Equal(t, 0, m.Progress)
		assert.Equal(t, 0, m.DeliveryRate)
		assert.Equal(t, 0, m.FailureRate)
		assert.Equal(t, 0, m.Pending)
	})

	t.Run("nothing sent yet", func(t *testing.T) {
		m := lifecycle.Derive(&model.Campaign{TotalMessages: 40})
		assert.Equal(t, 0, m.Progress)
		assert.Equal(t, 0, m.DeliveryRate)
		assert.Equal(t, 0, m.FailureRate)
		assert.Equal(t, 40, m.Pending)
	})
}

func TestDeriveStaysWithinPercentBounds(t *testing.T) {
	campaigns := []model.Campaign{
		{TotalMessages: 1, SentMessages: 1, DeliveredMessages: 1},
		{TotalMessages: 3, SentMessages: 2, DeliveredMessages: 1, FailedMessages: 1},
		{TotalMessages: 1000, SentMessages: 999, DeliveredMessages: 500, FailedMessages: 499},
		{TotalMessages: 7, SentMessages: 7, DeliveredMessages: 7},
	}
	for _, c := range campaigns {
		m := lifecycle.Derive(&c)
		assert.GreaterOrEqual(t, m.Progress, 0)
		assert.LessOrEqual(t, m.Progress, 100)
		assert.GreaterOrEqual(t, m.DeliveryRate, 0)
		assert.LessOrEqual(t, m.DeliveryRate, 100)
		assert.GreaterOrEqual(t, m.FailureRate, 0)
		assert.LessOrEqual(t, m.FailureRate, 100)
		assert.Equal(t, c.TotalMessages-c.SentMessages, m.Pending)
		assert.GreaterOrEqual(t, m.Pending, 0)
	}
}

func TestDeriveRoundsToNearestPercent(t *testing.T) {
	// 2/3 sent rounds up to 67, 1/3 delivered rounds down to 50 of sent.
	c := &model.Campaign{TotalMessages: 3, SentMessages: 2, DeliveredMessages: 1, FailedMessages: 1}
	m := lifecycle.Derive(c)
	assert.Equal(t, 67, m.Progress)
	assert.Equal(t, 50, m.DeliveryRate)
	assert.Equal(t, 50, m.FailureRate)
}
