// Package types defines the core domain types for beepbeep. They are shared
// between the store, the eBay workflow packages, and the API handlers.
package types

import "time"

// OAuthToken holds a user's eBay OAuth credentials. One row per user.
type OAuthToken struct {
	UserID       string    `json:"user_id"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Expired reports whether the access token is expired at now, applying the
// given safety buffer. A token within the buffer of expiry counts as expired.
func (t *OAuthToken) Expired(now time.Time, buffer time.Duration) bool {
	return !now.Before(t.ExpiresAt.Add(-buffer))
}

// SkuSettings holds a user's SKU counter state. Counter starts at 1 and only
// moves forward.
type SkuSettings struct {
	UserID  string `json:"user_id"`
	Counter int64  `json:"counter"`
	Prefix  string `json:"prefix,omitempty"`
}

// DraftListing is user-side staging data for a listing. It has no eBay-side
// lifecycle: created, edited and deleted entirely locally until published.
type DraftListing struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       string    `json:"price"`
	Currency    string    `json:"currency"`
	Condition   string    `json:"condition"`
	ImageURLs   []string  `json:"image_urls,omitempty"`
	CategoryID  string    `json:"category_id"`
	UPC         string    `json:"upc,omitempty"`
	ProductData []byte    `json:"product_data,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// BusinessPolicies holds the seller's configured eBay policy IDs. All three
// are required before an offer can be created.
type BusinessPolicies struct {
	UserID              string `json:"user_id"`
	MarketplaceID       string `json:"marketplace_id"`
	PaymentPolicyID     string `json:"payment_policy_id"`
	ReturnPolicyID      string `json:"return_policy_id"`
	FulfillmentPolicyID string `json:"fulfillment_policy_id"`
}

// Missing returns the names of policy IDs that are not configured.
func (p *BusinessPolicies) Missing() []string {
	var missing []string
	if p == nil || p.PaymentPolicyID == "" {
		missing = append(missing, "payment")
	}
	if p == nil || p.ReturnPolicyID == "" {
		missing = append(missing, "return")
	}
	if p == nil || p.FulfillmentPolicyID == "" {
		missing = append(missing, "fulfillment")
	}
	return missing
}

// BannedKeyword is a per-user keyword masked out of display text. Stored
// lowercase, unique per user.
type BannedKeyword struct {
	UserID  string `json:"user_id"`
	Keyword string `json:"keyword"`
}

// DiscountSettings is simple per-user pricing config.
type DiscountSettings struct {
	UserID        string  `json:"user_id"`
	Enabled       bool    `json:"enabled"`
	PercentOff    float64 `json:"percent_off"`
	MinPriceFloor float64 `json:"min_price_floor"`
}

// DescriptionOverride replaces draft descriptions at publish time when set.
type DescriptionOverride struct {
	UserID   string `json:"user_id"`
	Enabled  bool   `json:"enabled"`
	Template string `json:"template"`
}

// PublishResult is the outcome of a successful publish.
type PublishResult struct {
	ListingID      string `json:"listing_id"`
	OfferID        string `json:"offer_id"`
	SKU            string `json:"sku"`
	RecoveredOffer bool   `json:"recovered_offer,omitempty"`
}

// CatalogProduct is a product found by UPC/GTIN catalog search.
type CatalogProduct struct {
	EPID       string              `json:"epid"`
	Title      string              `json:"title"`
	Brand      string              `json:"brand,omitempty"`
	ImageURL   string              `json:"image_url,omitempty"`
	CategoryID string              `json:"category_id,omitempty"`
	UPC        []string            `json:"upc,omitempty"`
	EAN        []string            `json:"ean,omitempty"`
	Aspects    map[string][]string `json:"aspects,omitempty"`
}
