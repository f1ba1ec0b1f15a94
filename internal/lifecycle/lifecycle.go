// internal/lifecycle/lifecycle.go
package lifecycle

import (
	"math"

	"github.com/unclebandit/smsleopard-console/internal/model"
)

// DispatchEligible reports whether the targeting/dispatch workflow may be
// opened for a campaign in the given status. Once a campaign has entered
// sending, sent or failed, this workflow offers no further dispatch.
func DispatchEligible(s model.Status) bool {
	return s == model.StatusDraft || s == model.StatusScheduled
}

// Metrics are the display figures derived from a campaign's rollup counters.
// All rates are integer percentages in [0,100].
type Metrics struct {
	Progress     int
	DeliveryRate int
	FailureRate  int
	Pending      int
}

// Derive computes the metrics from the counters alone. A zero denominator
// yields 0 rather than an error: a campaign with nothing sent has no
// delivery or failure rate, and one with no messages has no progress.
func Derive(c *model.Campaign) Metrics {
	return Metrics{
		Progress:     percent(c.SentMessages, c.TotalMessages),
		DeliveryRate: percent(c.DeliveredMessages, c.SentMessages),
		FailureRate:  percent(c.FailedMessages, c.SentMessages),
		Pending:      c.TotalMessages - c.SentMessages,
	}
}

// percent rounds part/whole to the nearest whole percent.
func percent(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	return int(math.Round(float64(part) * 100 / float64(whole)))
}
