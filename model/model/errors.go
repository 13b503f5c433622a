package model

import (
	"errors"
)

// ErrAuthRequired is returned when no valid salesforce credential exists
// in either token location. Callers surface it as a re-authentication
// prompt, never as a retryable failure.
var ErrAuthRequired = errors.New("salesforce authentication required")
