// internal/model/customer.go
package model

import "time"

type Customer struct {
	ID               int       `json:"id"`
	Phone            string    `json:"phone"`
	FirstName        string    `json:"first_name"`
	LastName         string    `json:"last_name"`
	Location         string    `json:"location,omitempty"`
	PreferredProduct string    `json:"preferred_product,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// FullName is the display name used in pickers and previews.
func (c Customer) FullName() string {
	return c.FirstName + " " + c.LastName
}
