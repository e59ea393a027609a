package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	domain "github.com/jmfallon/beepbeep/pkg/types"
)

// OAuthFlow is the authorization-code consent flow.
type OAuthFlow interface {
	ConsentURL(state string) string
	Exchange(ctx context.Context, code string) (*domain.OAuthToken, error)
}

// TokenWriter persists and removes user tokens.
type TokenWriter interface {
	SetToken(ctx context.Context, token *domain.OAuthToken) error
	DeleteToken(ctx context.Context, userID string) error
}

// OAuthHandler connects and disconnects seller accounts.
type OAuthHandler struct {
	flow  OAuthFlow
	store TokenWriter
}

// NewOAuthHandler creates a new OAuthHandler.
func NewOAuthHandler(flow OAuthFlow, store TokenWriter) *OAuthHandler {
	return &OAuthHandler{flow: flow, store: store}
}

// ConnectOutput carries the consent URL.
type ConnectOutput struct {
	Body struct {
		ConsentURL string `json:"consent_url" doc:"URL the user visits to authorize the application"`
	}
}

// Connect returns the eBay consent URL for the user. The user ID rides in
// the OAuth state parameter so the callback can attribute the code.
func (h *OAuthHandler) Connect(_ context.Context, input *UserInput) (*ConnectOutput, error) {
	out := &ConnectOutput{}
	out.Body.ConsentURL = h.flow.ConsentURL(userOrDefault(input.UserID))
	return out, nil
}

// CallbackInput is the OAuth redirect request.
type CallbackInput struct {
	Code  string `query:"code" required:"true" doc:"Authorization code from eBay"`
	State string `query:"state" doc:"User ID passed through the consent URL"`
}

// CallbackOutput is the response after a successful connect.
type CallbackOutput struct {
	Body StatusResponse
}

// Callback exchanges the authorization code and persists the token pair.
func (h *OAuthHandler) Callback(ctx context.Context, input *CallbackInput) (*CallbackOutput, error) {
	tok, err := h.flow.Exchange(ctx, input.Code)
	if err != nil {
		return nil, huma.Error502BadGateway("exchanging authorization code: " + err.Error())
	}

	tok.UserID = userOrDefault(input.State)
	if err := h.store.SetToken(ctx, tok); err != nil {
		return nil, huma.Error500InternalServerError("persisting token: " + err.Error())
	}

	out := &CallbackOutput{}
	out.Body.Status = "connected"
	return out, nil
}

// DisconnectOutput is the response after removing a stored token.
type DisconnectOutput struct {
	Body StatusResponse
}

// Disconnect deletes the user's stored token.
func (h *OAuthHandler) Disconnect(ctx context.Context, input *UserInput) (*DisconnectOutput, error) {
	if err := h.store.DeleteToken(ctx, userOrDefault(input.UserID)); err != nil {
		return nil, huma.Error500InternalServerError("deleting token: " + err.Error())
	}

	out := &DisconnectOutput{}
	out.Body.Status = "disconnected"
	return out, nil
}

// RegisterOAuthRoutes registers OAuth endpoints with the Huma API.
func RegisterOAuthRoutes(api huma.API, h *OAuthHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "oauth-connect",
		Method:      http.MethodGet,
		Path:        "/api/v1/oauth/connect",
		Summary:     "Get the eBay consent URL",
		Tags:        []string{"oauth"},
	}, h.Connect)

	huma.Register(api, huma.Operation{
		OperationID: "oauth-callback",
		Method:      http.MethodGet,
		Path:        "/api/v1/oauth/callback",
		Summary:     "Complete the eBay consent flow",
		Tags:        []string{"oauth"},
		Errors:      []int{http.StatusBadGateway},
	}, h.Callback)

	huma.Register(api, huma.Operation{
		OperationID: "oauth-disconnect",
		Method:      http.MethodDelete,
		Path:        "/api/v1/oauth",
		Summary:     "Disconnect the seller account",
		Tags:        []string{"oauth"},
	}, h.Disconnect)
}
