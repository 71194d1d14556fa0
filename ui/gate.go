package ui

import (
	"errors"
	"strings"

	"video-narrator/services"
)

// keyGate returns the message shown under the key field and whether the rest of the page unlocks.
// checkErr is the result of verifying a non-empty key.
func keyGate(key string, checkErr error) (string, bool) {
	if strings.TrimSpace(key) == "" {
		return services.ErrMissingAPIKey.Error(), false
	}
	if errors.Is(checkErr, services.ErrInvalidAPIKey) || services.IsAuthError(checkErr) {
		return services.ErrInvalidAPIKey.Error(), false
	}
	if checkErr != nil {
		return checkErr.Error(), false
	}
	return "", true
}
