// internal/errors/errors.go
package appErrors

import (
	"errors"
	"fmt"
)

// ErrCampaignNotFound is a sentinel error for an unknown campaign id.
// It surfaces as a terminal "not found" view, not a retryable banner.
type ErrCampaignNotFound struct {
	CampaignID int
}

func (e *ErrCampaignNotFound) Error() string {
	return fmt.Sprintf("campaign with ID %d not found", e.CampaignID)
}

// Helper constructor
func NewCampaignNotFound(id int) error {
	return &ErrCampaignNotFound{CampaignID: id}
}

func IsNotFound(err error) bool {
	var nf *ErrCampaignNotFound
	return errors.As(err, &nf)
}

// ErrEmptySelection rejects a dispatch attempt with no recipients before any
// network call is made.
var ErrEmptySelection = errors.New("no customers selected for dispatch")

// ValidationError marks input rejected locally, before any request is sent.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

func NewValidation(err error) error {
	return &ValidationError{Err: err}
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// BackendRejected carries a non-success dispatch response. The backend's own
// message is passed through verbatim when it provided one.
type BackendRejected struct {
	StatusCode int
	Message    string
}

func (e *BackendRejected) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("backend rejected the request (status %d)", e.StatusCode)
}

func NewBackendRejected(statusCode int, message string) error {
	return &BackendRejected{StatusCode: statusCode, Message: message}
}

func AsBackendRejected(err error) (*BackendRejected, bool) {
	var br *BackendRejected
	if errors.As(err, &br) {
		return br, true
	}
	return nil, false
}
