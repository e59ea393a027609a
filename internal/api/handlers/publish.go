package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/jmfallon/beepbeep/internal/ebay"
	"github.com/jmfallon/beepbeep/internal/publish"
	"github.com/jmfallon/beepbeep/internal/store"
	"github.com/jmfallon/beepbeep/internal/token"
	domain "github.com/jmfallon/beepbeep/pkg/types"
)

// Publisher runs the listing pipeline for one input.
type Publisher interface {
	Publish(ctx context.Context, userID string, input publish.Input) (*domain.PublishResult, error)
}

// PublishHandler publishes staged drafts to eBay.
type PublishHandler struct {
	store     DraftStore
	publisher Publisher
}

// NewPublishHandler creates a new PublishHandler.
func NewPublishHandler(s DraftStore, p Publisher) *PublishHandler {
	return &PublishHandler{store: s, publisher: p}
}

// PublishInput is the request for publishing a draft.
type PublishInput struct {
	UserID string `header:"X-User-ID" doc:"User the draft belongs to"`
	ID     string `path:"id" doc:"Draft ID to publish"`
	Body   struct {
		SKU string `json:"sku,omitempty" doc:"Use this SKU instead of generating one"`
	}
}

// PublishOutput is the response for a successful publish.
type PublishOutput struct {
	Body domain.PublishResult
}

// Publish runs the listing pipeline for one draft and deletes the draft on
// success.
func (h *PublishHandler) Publish(ctx context.Context, input *PublishInput) (*PublishOutput, error) {
	userID := userOrDefault(input.UserID)

	draft, err := h.store.GetDraft(ctx, userID, input.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, huma.Error404NotFound("draft not found")
		}
		return nil, huma.Error500InternalServerError("loading draft: " + err.Error())
	}

	result, err := h.publisher.Publish(ctx, userID, publish.Input{
		Title:       draft.Title,
		Description: draft.Description,
		Price:       draft.Price,
		Currency:    draft.Currency,
		Condition:   draft.Condition,
		ImageURLs:   draft.ImageURLs,
		CategoryID:  draft.CategoryID,
		UPC:         draft.UPC,
		SKU:         input.Body.SKU,
	})
	if err != nil {
		return nil, publishError(err)
	}

	// The draft served its staging purpose. A failed delete leaves a stale
	// draft behind but never undoes the live listing.
	if err := h.store.DeleteDraft(ctx, userID, input.ID); err != nil &&
		!errors.Is(err, store.ErrNotFound) {
		return nil, huma.Error500InternalServerError(
			"listing published but draft cleanup failed: " + err.Error(),
		)
	}

	return &PublishOutput{Body: *result}, nil
}

// publishError maps the pipeline error taxonomy onto HTTP problem responses.
func publishError(err error) error {
	var dup *publish.DuplicateError
	if errors.As(err, &dup) {
		return huma.Error409Conflict(dup.Error())
	}

	var missing *publish.MissingPoliciesError
	if errors.As(err, &missing) {
		return huma.Error422UnprocessableEntity(missing.Error())
	}

	if errors.Is(err, token.ErrNotConnected) ||
		errors.Is(err, token.ErrNoRefreshToken) ||
		errors.Is(err, token.ErrTokenExpired) {
		return huma.Error401Unauthorized(err.Error())
	}

	var apiErr *ebay.APIError
	if errors.As(err, &apiErr) {
		return huma.Error502BadGateway(err.Error())
	}

	return huma.Error500InternalServerError(err.Error())
}

// RegisterPublishRoutes registers the publish endpoint with the Huma API.
func RegisterPublishRoutes(api huma.API, h *PublishHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "publish-draft",
		Method:      http.MethodPost,
		Path:        "/api/v1/drafts/{id}/publish",
		Summary:     "Publish a draft to eBay",
		Description: "Runs the inventory item, offer and publish sequence for a staged draft.",
		Tags:        []string{"publish"},
		Errors: []int{
			http.StatusNotFound,
			http.StatusConflict,
			http.StatusUnprocessableEntity,
			http.StatusUnauthorized,
			http.StatusBadGateway,
		},
	}, h.Publish)
}
