// internal/stub/seed.go
package stub

import (
	"time"

	"github.com/unclebandit/smsleopard-console/internal/model"
)

// Seed fills a store with a demo directory and campaigns in assorted
// lifecycle states, including one with realistic rollup counters.
func Seed(store *Store) {
	customers := []model.Customer{
		{Phone: "+254700111222", FirstName: "Alice", LastName: "Smith", Location: "Nairobi", PreferredProduct: "Shoes"},
		{Phone: "+254700333444", FirstName: "Bob", LastName: "Jones", Location: "Mombasa", PreferredProduct: "Hat"},
		{Phone: "+254700555666", FirstName: "Carol", LastName: "Mwangi", Location: "Kisumu", PreferredProduct: "Bag"},
		{Phone: "+254700777888", FirstName: "David", LastName: "Otieno", Location: "Nakuru", PreferredProduct: "Watch"},
		{Phone: "+254700999000", FirstName: "Eve", LastName: "Wanjiru", Location: "Eldoret", PreferredProduct: "Jacket"},
		{Phone: "+254711222333", FirstName: "Frank", LastName: "Kamau"},
	}
	for _, c := range customers {
		store.AddCustomer(c)
	}

	store.CreateCampaign(&Campaign{
		Name:         "Welcome Offer",
		Channel:      "whatsapp",
		BaseTemplate: "Hi {first_name}, check out {preferred_product} deals in {location}!",
	})

	schedule := time.Now().Add(48 * time.Hour).UTC().Truncate(time.Minute)
	store.CreateCampaign(&Campaign{
		Name:         "Weekend Flash Sale",
		Channel:      "sms",
		BaseTemplate: "{first_name}, our flash sale starts Saturday. Reply STOP to opt out.",
		ScheduledAt:  &schedule,
	})

	sent := store.CreateCampaign(&Campaign{
		Name:         "October Newsletter",
		Channel:      "whatsapp",
		BaseTemplate: "Hello {first_name} {last_name}, here is what's new this month.",
		Status:       "sent",
	})
	for i, status := range []string{"sent", "sent", "sent", "sent", "failed", "pending"} {
		m := store.CreateOutbound(sent.ID, i+1)
		store.SetOutboundContent(m.ID, "seeded")
		if status != "pending" {
			store.UpdateOutboundStatus(m.ID, status, "")
		}
	}

	store.CreateCampaign(&Campaign{
		Name:         "Lapsed Customers",
		Channel:      "sms",
		BaseTemplate: "We miss you {first_name}! Here is 10% off your next order.",
		Status:       "failed",
	})
}
