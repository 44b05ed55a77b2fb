// Package businessflow contains the core business logic and use cases for event ingestion and forwarding workflows
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// App-related errors
	ErrAppNotFound    = errors.New("app not found")
	ErrAppUninstalled = errors.New("app is uninstalled")

	// Webhook-related errors
	ErrWebhookPayloadMalformed = errors.New("webhook payload is malformed")

	// Settings-related errors
	ErrSettingsUpdateEmpty = errors.New("at least one field must be provided for update")
	ErrCurrencyInvalid     = errors.New("currency must be a 3-letter code")

	// Catalog-related errors
	ErrCatalogNameRequired = errors.New("catalog name is required")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func IsAppNotFound(err error) bool {
	return errors.Is(err, ErrAppNotFound)
}

func IsAppUninstalled(err error) bool {
	return errors.Is(err, ErrAppUninstalled)
}
