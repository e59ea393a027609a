package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
)

// KeywordStore is the slice of the datastore the keyword handlers need.
type KeywordStore interface {
	ListBannedKeywords(ctx context.Context, userID string) ([]string, error)
	AddBannedKeyword(ctx context.Context, userID, keyword string) error
	RemoveBannedKeyword(ctx context.Context, userID, keyword string) error
}

// KeywordsHandler manages per-user banned keywords.
type KeywordsHandler struct {
	store KeywordStore
}

// NewKeywordsHandler creates a new KeywordsHandler.
func NewKeywordsHandler(s KeywordStore) *KeywordsHandler {
	return &KeywordsHandler{store: s}
}

// KeywordsOutput lists the user's banned keywords.
type KeywordsOutput struct {
	Body struct {
		Keywords []string `json:"keywords"`
	}
}

// List returns the user's banned keywords.
func (h *KeywordsHandler) List(ctx context.Context, input *UserInput) (*KeywordsOutput, error) {
	kws, err := h.store.ListBannedKeywords(ctx, userOrDefault(input.UserID))
	if err != nil {
		return nil, huma.Error500InternalServerError("listing keywords: " + err.Error())
	}

	if kws == nil {
		kws = []string{}
	}
	out := &KeywordsOutput{}
	out.Body.Keywords = kws
	return out, nil
}

// AddKeywordInput is the request for adding a banned keyword.
type AddKeywordInput struct {
	UserID string `header:"X-User-ID" doc:"User the keyword belongs to"`
	Body   struct {
		Keyword string `json:"keyword" minLength:"1" doc:"Keyword to mask in display text" example:"bootleg"`
	}
}

// Add stores a banned keyword. Keywords are lowercased and deduplicated.
func (h *KeywordsHandler) Add(ctx context.Context, input *AddKeywordInput) (*KeywordsOutput, error) {
	userID := userOrDefault(input.UserID)

	kw := strings.TrimSpace(input.Body.Keyword)
	if kw == "" {
		return nil, huma.Error422UnprocessableEntity("keyword must not be blank")
	}

	if err := h.store.AddBannedKeyword(ctx, userID, kw); err != nil {
		return nil, huma.Error500InternalServerError("adding keyword: " + err.Error())
	}
	return h.List(ctx, &UserInput{UserID: input.UserID})
}

// RemoveKeywordInput is the request for removing a banned keyword.
type RemoveKeywordInput struct {
	UserID  string `header:"X-User-ID" doc:"User the keyword belongs to"`
	Keyword string `path:"keyword" doc:"Keyword to remove"`
}

// Remove deletes a banned keyword.
func (h *KeywordsHandler) Remove(ctx context.Context, input *RemoveKeywordInput) (*KeywordsOutput, error) {
	userID := userOrDefault(input.UserID)

	if err := h.store.RemoveBannedKeyword(ctx, userID, input.Keyword); err != nil {
		return nil, huma.Error500InternalServerError("removing keyword: " + err.Error())
	}
	return h.List(ctx, &UserInput{UserID: input.UserID})
}

// RegisterKeywordRoutes registers banned keyword endpoints with the Huma API.
func RegisterKeywordRoutes(api huma.API, h *KeywordsHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "list-keywords",
		Method:      http.MethodGet,
		Path:        "/api/v1/keywords",
		Summary:     "List banned keywords",
		Tags:        []string{"keywords"},
	}, h.List)

	huma.Register(api, huma.Operation{
		OperationID:   "add-keyword",
		Method:        http.MethodPost,
		Path:          "/api/v1/keywords",
		Summary:       "Add a banned keyword",
		Tags:          []string{"keywords"},
		DefaultStatus: http.StatusCreated,
	}, h.Add)

	huma.Register(api, huma.Operation{
		OperationID: "remove-keyword",
		Method:      http.MethodDelete,
		Path:        "/api/v1/keywords/{keyword}",
		Summary:     "Remove a banned keyword",
		Tags:        []string{"keywords"},
	}, h.Remove)
}
