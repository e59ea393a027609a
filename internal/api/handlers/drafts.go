package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/jmfallon/beepbeep/internal/keywords"
	"github.com/jmfallon/beepbeep/internal/store"
	domain "github.com/jmfallon/beepbeep/pkg/types"
)

// DraftStore is the slice of the datastore the draft handlers need.
type DraftStore interface {
	CreateDraft(ctx context.Context, draft *domain.DraftListing) error
	GetDraft(ctx context.Context, userID, id string) (*domain.DraftListing, error)
	ListDrafts(ctx context.Context, userID string) ([]domain.DraftListing, error)
	UpdateDraft(ctx context.Context, draft *domain.DraftListing) error
	DeleteDraft(ctx context.Context, userID, id string) error
	ListBannedKeywords(ctx context.Context, userID string) ([]string, error)
}

// DraftsHandler handles draft listing CRUD.
type DraftsHandler struct {
	store DraftStore
}

// NewDraftsHandler creates a new DraftsHandler.
func NewDraftsHandler(s DraftStore) *DraftsHandler {
	return &DraftsHandler{store: s}
}

// DraftBody is the editable part of a draft listing.
type DraftBody struct {
	Title       string   `json:"title" minLength:"1" doc:"Listing title" example:"The Thing (Blu-ray, 1982)"`
	Description string   `json:"description,omitempty" doc:"Listing description"`
	Price       string   `json:"price,omitempty" doc:"Price as a decimal string" example:"24.99"`
	Currency    string   `json:"currency,omitempty" doc:"ISO currency code" example:"USD"`
	Condition   string   `json:"condition,omitempty" doc:"Item condition" example:"new"`
	ImageURLs   []string `json:"image_urls,omitempty" doc:"Image URLs"`
	CategoryID  string   `json:"category_id,omitempty" doc:"eBay category ID" example:"617"`
	UPC         string   `json:"upc,omitempty" doc:"Product barcode" example:"885909950805"`
}

// DraftView is a draft as returned to clients, with banned keywords masked
// in the display fields.
type DraftView struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Price       string   `json:"price,omitempty"`
	Currency    string   `json:"currency,omitempty"`
	Condition   string   `json:"condition,omitempty"`
	ImageURLs   []string `json:"image_urls,omitempty"`
	CategoryID  string   `json:"category_id,omitempty"`
	UPC         string   `json:"upc,omitempty"`
}

func (h *DraftsHandler) view(ctx context.Context, userID string, d *domain.DraftListing) DraftView {
	banned, err := h.store.ListBannedKeywords(ctx, userID)
	if err != nil {
		// Masking is cosmetic; show the raw text rather than failing.
		banned = nil
	}

	return DraftView{
		ID:          d.ID,
		Title:       keywords.Mask(d.Title, banned),
		Description: keywords.Mask(d.Description, banned),
		Price:       d.Price,
		Currency:    d.Currency,
		Condition:   d.Condition,
		ImageURLs:   d.ImageURLs,
		CategoryID:  d.CategoryID,
		UPC:         d.UPC,
	}
}

// ListDraftsInput is the request for listing drafts.
type ListDraftsInput struct {
	UserID string `header:"X-User-ID" doc:"User the drafts belong to"`
}

// ListDraftsOutput is the response for listing drafts.
type ListDraftsOutput struct {
	Body struct {
		Drafts []DraftView `json:"drafts"`
		Total  int         `json:"total"`
	}
}

// List returns all drafts for the user.
func (h *DraftsHandler) List(ctx context.Context, input *ListDraftsInput) (*ListDraftsOutput, error) {
	userID := userOrDefault(input.UserID)

	drafts, err := h.store.ListDrafts(ctx, userID)
	if err != nil {
		return nil, huma.Error500InternalServerError("listing drafts: " + err.Error())
	}

	out := &ListDraftsOutput{}
	out.Body.Drafts = make([]DraftView, 0, len(drafts))
	for i := range drafts {
		out.Body.Drafts = append(out.Body.Drafts, h.view(ctx, userID, &drafts[i]))
	}
	out.Body.Total = len(out.Body.Drafts)
	return out, nil
}

// GetDraftInput is the request for fetching one draft.
type GetDraftInput struct {
	UserID string `header:"X-User-ID" doc:"User the draft belongs to"`
	ID     string `path:"id" doc:"Draft ID"`
}

// DraftOutput is the response carrying one draft.
type DraftOutput struct {
	Body DraftView
}

// Get returns one draft by ID.
func (h *DraftsHandler) Get(ctx context.Context, input *GetDraftInput) (*DraftOutput, error) {
	userID := userOrDefault(input.UserID)

	d, err := h.store.GetDraft(ctx, userID, input.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, huma.Error404NotFound("draft not found")
		}
		return nil, huma.Error500InternalServerError("loading draft: " + err.Error())
	}

	return &DraftOutput{Body: h.view(ctx, userID, d)}, nil
}

// CreateDraftInput is the request for creating a draft.
type CreateDraftInput struct {
	UserID string `header:"X-User-ID" doc:"User the draft belongs to"`
	Body   DraftBody
}

// Create stages a new draft.
func (h *DraftsHandler) Create(ctx context.Context, input *CreateDraftInput) (*DraftOutput, error) {
	userID := userOrDefault(input.UserID)

	d := &domain.DraftListing{
		ID:          uuid.NewString(),
		UserID:      userID,
		Title:       input.Body.Title,
		Description: input.Body.Description,
		Price:       input.Body.Price,
		Currency:    input.Body.Currency,
		Condition:   input.Body.Condition,
		ImageURLs:   input.Body.ImageURLs,
		CategoryID:  input.Body.CategoryID,
		UPC:         input.Body.UPC,
	}

	if err := h.store.CreateDraft(ctx, d); err != nil {
		return nil, huma.Error500InternalServerError("creating draft: " + err.Error())
	}

	return &DraftOutput{Body: h.view(ctx, userID, d)}, nil
}

// UpdateDraftInput is the request for updating a draft.
type UpdateDraftInput struct {
	UserID string `header:"X-User-ID" doc:"User the draft belongs to"`
	ID     string `path:"id" doc:"Draft ID"`
	Body   DraftBody
}

// Update replaces the editable fields of a draft.
func (h *DraftsHandler) Update(ctx context.Context, input *UpdateDraftInput) (*DraftOutput, error) {
	userID := userOrDefault(input.UserID)

	d, err := h.store.GetDraft(ctx, userID, input.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, huma.Error404NotFound("draft not found")
		}
		return nil, huma.Error500InternalServerError("loading draft: " + err.Error())
	}

	d.Title = input.Body.Title
	d.Description = input.Body.Description
	d.Price = input.Body.Price
	d.Currency = input.Body.Currency
	d.Condition = input.Body.Condition
	d.ImageURLs = input.Body.ImageURLs
	d.CategoryID = input.Body.CategoryID
	d.UPC = input.Body.UPC

	if err := h.store.UpdateDraft(ctx, d); err != nil {
		return nil, huma.Error500InternalServerError("updating draft: " + err.Error())
	}

	return &DraftOutput{Body: h.view(ctx, userID, d)}, nil
}

// DeleteDraftInput is the request for deleting a draft.
type DeleteDraftInput struct {
	UserID string `header:"X-User-ID" doc:"User the draft belongs to"`
	ID     string `path:"id" doc:"Draft ID"`
}

// DeleteDraftOutput is the response for deleting a draft.
type DeleteDraftOutput struct {
	Body StatusResponse
}

// Delete removes a draft.
func (h *DraftsHandler) Delete(ctx context.Context, input *DeleteDraftInput) (*DeleteDraftOutput, error) {
	userID := userOrDefault(input.UserID)

	if err := h.store.DeleteDraft(ctx, userID, input.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, huma.Error404NotFound("draft not found")
		}
		return nil, huma.Error500InternalServerError("deleting draft: " + err.Error())
	}

	out := &DeleteDraftOutput{}
	out.Body.Status = "deleted"
	return out, nil
}

// RegisterDraftRoutes registers draft CRUD endpoints with the Huma API.
func RegisterDraftRoutes(api huma.API, h *DraftsHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "list-drafts",
		Method:      http.MethodGet,
		Path:        "/api/v1/drafts",
		Summary:     "List drafts",
		Tags:        []string{"drafts"},
	}, h.List)

	huma.Register(api, huma.Operation{
		OperationID: "get-draft",
		Method:      http.MethodGet,
		Path:        "/api/v1/drafts/{id}",
		Summary:     "Get a draft",
		Tags:        []string{"drafts"},
		Errors:      []int{http.StatusNotFound},
	}, h.Get)

	huma.Register(api, huma.Operation{
		OperationID:   "create-draft",
		Method:        http.MethodPost,
		Path:          "/api/v1/drafts",
		Summary:       "Create a draft",
		Tags:          []string{"drafts"},
		DefaultStatus: http.StatusCreated,
	}, h.Create)

	huma.Register(api, huma.Operation{
		OperationID: "update-draft",
		Method:      http.MethodPut,
		Path:        "/api/v1/drafts/{id}",
		Summary:     "Update a draft",
		Tags:        []string{"drafts"},
		Errors:      []int{http.StatusNotFound},
	}, h.Update)

	huma.Register(api, huma.Operation{
		OperationID: "delete-draft",
		Method:      http.MethodDelete,
		Path:        "/api/v1/drafts/{id}",
		Summary:     "Delete a draft",
		Tags:        []string{"drafts"},
		Errors:      []int{http.StatusNotFound},
	}, h.Delete)
}
