// Package ebay provides clients for the eBay Sell Inventory, Sell Account,
// and Commerce Catalog REST APIs, abstracted behind small interfaces for
// testability.
package ebay

import "context"

// Production and sandbox endpoint roots.
const (
	ProductionAPIBaseURL = "https://api.ebay.com"
	SandboxAPIBaseURL    = "https://api.sandbox.ebay.com"

	ProductionAuthURL = "https://auth.ebay.com/oauth2/authorize"
	SandboxAuthURL    = "https://auth.sandbox.ebay.com/oauth2/authorize"

	ProductionTokenURL = "https://api.ebay.com/identity/v1/oauth2/token" //nolint:gosec // not a credential
	SandboxTokenURL    = "https://api.sandbox.ebay.com/identity/v1/oauth2/token"
)

// APIBaseURL returns the REST API root for the given environment.
func APIBaseURL(sandbox bool) string {
	if sandbox {
		return SandboxAPIBaseURL
	}
	return ProductionAPIBaseURL
}

// TokenSource supplies a valid per-user bearer token for seller API calls.
// Implementations refresh expired tokens before returning.
type TokenSource interface {
	AccessToken(ctx context.Context, userID string) (string, error)
}

// AppTokenSource supplies an application-scoped bearer token for APIs that
// do not act on behalf of a seller (catalog, taxonomy).
type AppTokenSource interface {
	Token(ctx context.Context) (string, error)
}
