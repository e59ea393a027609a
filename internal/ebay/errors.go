package ebay

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotFound is returned when the API answers 404 for a resource lookup.
// Callers probing SKU availability treat it as "SKU is free".
var ErrNotFound = errors.New("ebay: resource not found")

// eBay error IDs the workflow cares about.
const (
	// ErrorIDOfferExists is returned by createOffer when an offer for the
	// SKU/marketplace pair already exists. The existing offer ID, when
	// present, rides along in the error parameters.
	ErrorIDOfferExists = 25002
)

// ErrorParameter is a name/value pair attached to a structured API error.
type ErrorParameter struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// ErrorDetail is one entry of an eBay errors[] payload.
type ErrorDetail struct {
	ErrorID     int              `json:"errorId"`
	Domain      string           `json:"domain,omitempty"`
	Category    string           `json:"category,omitempty"`
	Message     string           `json:"message"`
	LongMessage string           `json:"longMessage,omitempty"`
	Parameters  []ErrorParameter `json:"parameters,omitempty"`
}

// APIError wraps a non-2xx eBay API response: HTTP status, the raw body for
// diagnostics, and any structured errors[] entries parsed from it.
type APIError struct {
	StatusCode int
	Body       string
	Errors     []ErrorDetail
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if len(e.Errors) > 0 {
		return fmt.Sprintf(
			"eBay API error (status %d, errorId %d): %s",
			e.StatusCode, e.Errors[0].ErrorID, e.Errors[0].Message,
		)
	}
	return fmt.Sprintf("eBay API error (status %d): %s", e.StatusCode, e.Body)
}

// HasErrorID reports whether any structured error entry carries the given ID.
func (e *APIError) HasErrorID(id int) bool {
	for _, d := range e.Errors {
		if d.ErrorID == id {
			return true
		}
	}
	return false
}

// Parameter returns the first value of the named parameter across all error
// entries.
func (e *APIError) Parameter(name string) (string, bool) {
	for _, d := range e.Errors {
		for _, p := range d.Parameters {
			if p.Name == name {
				return p.Value, true
			}
		}
	}
	return "", false
}

// newAPIError builds an APIError from a response body, parsing the
// structured errors[] envelope best-effort.
func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status, Body: string(body)}

	var envelope struct {
		Errors []ErrorDetail `json:"errors"`
	}
	_ = json.Unmarshal(body, &envelope) //nolint:errcheck // best-effort error parsing
	apiErr.Errors = envelope.Errors

	return apiErr
}

// IsOfferExists reports whether err is the "offer already exists" conflict.
func IsOfferExists(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.HasErrorID(ErrorIDOfferExists)
}

// OfferIDFromError extracts the existing offer ID embedded in an
// offer-exists error payload, when the provider included one.
func OfferIDFromError(err error) (string, bool) {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return "", false
	}
	return apiErr.Parameter("offerId")
}
