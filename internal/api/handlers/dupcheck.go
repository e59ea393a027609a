package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/jmfallon/beepbeep/internal/dupcheck"
)

// DuplicateChecker scans inventory for items matching a UPC.
type DuplicateChecker interface {
	FindDuplicates(ctx context.Context, userID, upc string) ([]dupcheck.Match, error)
}

// DupcheckHandler exposes the standalone duplicate probe.
type DupcheckHandler struct {
	checker DuplicateChecker
}

// NewDupcheckHandler creates a new DupcheckHandler.
func NewDupcheckHandler(c DuplicateChecker) *DupcheckHandler {
	return &DupcheckHandler{checker: c}
}

// DupcheckInput is the request body for the duplicate check endpoint.
type DupcheckInput struct {
	UserID string `header:"X-User-ID" doc:"User whose inventory is scanned"`
	Body   struct {
		UPC string `json:"upc" minLength:"8" doc:"Barcode to look for" example:"885909950805"`
	}
}

// DupcheckOutput is the response body for the duplicate check endpoint.
type DupcheckOutput struct {
	Body struct {
		Duplicate bool             `json:"duplicate" doc:"Whether the UPC is already listed"`
		Matches   []dupcheck.Match `json:"matches,omitempty" doc:"Matching inventory items"`
	}
}

// Check scans the user's inventory for the UPC.
func (h *DupcheckHandler) Check(ctx context.Context, input *DupcheckInput) (*DupcheckOutput, error) {
	matches, err := h.checker.FindDuplicates(ctx, userOrDefault(input.UserID), input.Body.UPC)
	if err != nil {
		return nil, huma.Error502BadGateway("duplicate check failed: " + err.Error())
	}

	out := &DupcheckOutput{}
	out.Body.Duplicate = len(matches) > 0
	out.Body.Matches = matches
	return out, nil
}

// RegisterDupcheckRoutes registers the duplicate check endpoint with the
// Huma API.
func RegisterDupcheckRoutes(api huma.API, h *DupcheckHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "duplicate-check",
		Method:      http.MethodPost,
		Path:        "/api/v1/duplicate-check",
		Summary:     "Check inventory for a duplicate UPC",
		Tags:        []string{"inventory"},
		Errors:      []int{http.StatusBadGateway},
	}, h.Check)
}
