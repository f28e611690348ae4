// Package pages holds the controllers behind the browser pages. Each one
// drives the API through internal/client and exposes what the page shows:
// the banner message, the data on screen and where the browser goes next.
package pages

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rentcare/rentcare-gobackend/internal/client"
)

// ConfigError is a deployment problem the page cannot recover from, shown
// instead of the page content.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string { return e.Message }

// Confirm asks the user a yes/no question. Destructive actions do nothing
// unless it returns true.
type Confirm func(question string) bool

// ErrCancelled is returned when the user declines a confirmation.
var ErrCancelled = errors.New("cancelled by user")

// errorText is the text a page shows for a failed call: the server's plain
// text body when there is one.
func errorText(err error) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return fmt.Sprintf("HTTP error! status: %d", apiErr.Status)
	}
	return err.Error()
}

// validPublishableKey reports whether key looks like a Stripe publishable key.
func validPublishableKey(key string) bool {
	return strings.HasPrefix(key, "pk_")
}

func confirmed(confirm Confirm, question string) bool {
	return confirm != nil && confirm(question)
}
