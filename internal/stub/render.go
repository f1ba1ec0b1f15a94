// internal/stub/render.go
package stub

import (
	"strings"

	"github.com/unclebandit/smsleopard-console/internal/model"
)

// renderTemplate substitutes the personalization variables the customer
// directory can supply. Missing attributes render as "<unknown>" rather
// than leaving the placeholder in the message.
func renderTemplate(template string, c model.Customer) string {
	message := template
	message = strings.ReplaceAll(message, "{first_name}", orUnknown(c.FirstName))
	message = strings.ReplaceAll(message, "{last_name}", orUnknown(c.LastName))
	message = strings.ReplaceAll(message, "{location}", orUnknown(c.Location))
	message = strings.ReplaceAll(message, "{preferred_product}", orUnknown(c.PreferredProduct))
	return message
}

func orUnknown(value string) string {
	if value == "" {
		return "<unknown>"
	}
	return value
}
