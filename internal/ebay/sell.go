package ebay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/jmfallon/beepbeep/internal/metrics"
)

const (
	inventoryPath = "/sell/inventory/v1"

	defaultMarketplace = "EBAY_US"
	defaultLocale      = "en_US"
)

// SellClient calls the eBay Sell Inventory API on behalf of a seller.
// Every call resolves a fresh bearer token for the acting user through the
// TokenSource, so a request is never sent with a known-expired token.
type SellClient struct {
	tokens      TokenSource
	baseURL     string
	marketplace string
	client      *http.Client
	rateLimiter *RateLimiter
}

// SellOption configures the SellClient.
type SellOption func(*SellClient)

// WithSellBaseURL overrides the API root (tests, sandbox).
func WithSellBaseURL(u string) SellOption {
	return func(c *SellClient) {
		c.baseURL = u
	}
}

// WithSellMarketplace overrides the default marketplace.
func WithSellMarketplace(m string) SellOption {
	return func(c *SellClient) {
		c.marketplace = m
	}
}

// WithSellHTTPClient overrides the default HTTP client.
func WithSellHTTPClient(hc *http.Client) SellOption {
	return func(c *SellClient) {
		c.client = hc
	}
}

// WithSellRateLimiter injects a rate limiter that controls per-second and
// daily API call limits. When set, every call goes through Wait() first.
func WithSellRateLimiter(r *RateLimiter) SellOption {
	return func(c *SellClient) {
		c.rateLimiter = r
	}
}

// NewSellClient creates a new Sell Inventory API client.
func NewSellClient(tokens TokenSource, opts ...SellOption) *SellClient {
	c := &SellClient{
		tokens:      tokens,
		baseURL:     ProductionAPIBaseURL,
		marketplace: defaultMarketplace,
		client:      &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// do executes an authenticated request and returns the response body.
// Non-2xx responses become *APIError; 404 additionally wraps ErrNotFound.
func (c *SellClient) do(
	ctx context.Context,
	userID, method, path string,
	payload any,
) ([]byte, http.Header, error) {
	if c.rateLimiter != nil {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			if errors.Is(err, ErrDailyLimitReached) {
				metrics.EbayDailyLimitHits.Inc()
			}
			return nil, nil, fmt.Errorf("rate limit: %w", err)
		}
		metrics.EbayDailyUsage.Set(float64(c.rateLimiter.DailyCount()))
	}
	metrics.EbayAPICallsTotal.WithLabelValues("sell").Inc()

	token, err := c.tokens.AccessToken(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("getting auth token: %w", err)
	}

	var reqBody io.Reader = http.NoBody
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, nil, fmt.Errorf("encoding request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, nil, fmt.Errorf("creating HTTP request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-EBAY-C-MARKETPLACE-ID", c.marketplace)
	if payload != nil {
		// The Inventory API rejects writes without a content language.
		req.Header.Set("Content-Language", "en-US")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil, fmt.Errorf("%s %s: %w", method, path, ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, nil, newAPIError(resp.StatusCode, body)
	}

	return body, resp.Header, nil
}

// CreateOrReplaceInventoryItem upserts an inventory item by SKU.
func (c *SellClient) CreateOrReplaceInventoryItem(
	ctx context.Context,
	userID, sku string,
	item *InventoryItem,
) error {
	path := inventoryPath + "/inventory_item/" + url.PathEscape(sku)
	if _, _, err := c.do(ctx, userID, http.MethodPut, path, item); err != nil {
		return fmt.Errorf("creating inventory item %q: %w", sku, err)
	}
	return nil
}

// GetInventoryItem fetches one inventory item by SKU. Returns ErrNotFound
// when the SKU is unused.
func (c *SellClient) GetInventoryItem(
	ctx context.Context,
	userID, sku string,
) (*InventoryItem, error) {
	path := inventoryPath + "/inventory_item/" + url.PathEscape(sku)
	body, _, err := c.do(ctx, userID, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var item InventoryItem
	if err := json.Unmarshal(body, &item); err != nil {
		return nil, fmt.Errorf("parsing inventory item: %w", err)
	}
	return &item, nil
}

// DeleteInventoryItem removes an inventory item by SKU.
func (c *SellClient) DeleteInventoryItem(ctx context.Context, userID, sku string) error {
	path := inventoryPath + "/inventory_item/" + url.PathEscape(sku)
	if _, _, err := c.do(ctx, userID, http.MethodDelete, path, nil); err != nil {
		return fmt.Errorf("deleting inventory item %q: %w", sku, err)
	}
	return nil
}

// ListInventoryItems fetches one page of the seller's inventory.
func (c *SellClient) ListInventoryItems(
	ctx context.Context,
	userID string,
	limit, offset int,
) (*InventoryItemsPage, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	if offset > 0 {
		params.Set("offset", strconv.Itoa(offset))
	}

	body, _, err := c.do(
		ctx, userID, http.MethodGet,
		inventoryPath+"/inventory_item?"+params.Encode(), nil,
	)
	if err != nil {
		return nil, fmt.Errorf("listing inventory items: %w", err)
	}

	var page InventoryItemsPage
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("parsing inventory page: %w", err)
	}
	return &page, nil
}

// CreateOffer creates an unpublished offer and returns its ID.
func (c *SellClient) CreateOffer(
	ctx context.Context,
	userID string,
	offer *Offer,
) (string, error) {
	body, _, err := c.do(ctx, userID, http.MethodPost, inventoryPath+"/offer", offer)
	if err != nil {
		return "", fmt.Errorf("creating offer for sku %q: %w", offer.SKU, err)
	}

	var created struct {
		OfferID string `json:"offerId"`
	}
	if err := json.Unmarshal(body, &created); err != nil {
		return "", fmt.Errorf("parsing offer response: %w", err)
	}
	return created.OfferID, nil
}

// GetOffer fetches one offer by ID.
func (c *SellClient) GetOffer(ctx context.Context, userID, offerID string) (*Offer, error) {
	path := inventoryPath + "/offer/" + url.PathEscape(offerID)
	body, _, err := c.do(ctx, userID, http.MethodGet, path, nil)
	if err != nil {
		return nil, fmt.Errorf("getting offer %q: %w", offerID, err)
	}

	var offer Offer
	if err := json.Unmarshal(body, &offer); err != nil {
		return nil, fmt.Errorf("parsing offer: %w", err)
	}
	return &offer, nil
}

// UpdateOffer replaces an existing offer.
func (c *SellClient) UpdateOffer(ctx context.Context, userID string, offer *Offer) error {
	path := inventoryPath + "/offer/" + url.PathEscape(offer.OfferID)
	if _, _, err := c.do(ctx, userID, http.MethodPut, path, offer); err != nil {
		return fmt.Errorf("updating offer %q: %w", offer.OfferID, err)
	}
	return nil
}

// PublishOffer turns an offer into a live listing and returns the listing ID.
func (c *SellClient) PublishOffer(
	ctx context.Context,
	userID, offerID string,
) (string, error) {
	path := inventoryPath + "/offer/" + url.PathEscape(offerID) + "/publish"
	body, _, err := c.do(ctx, userID, http.MethodPost, path, struct{}{})
	if err != nil {
		return "", fmt.Errorf("publishing offer %q: %w", offerID, err)
	}

	var published struct {
		ListingID string `json:"listingId"`
	}
	if err := json.Unmarshal(body, &published); err != nil {
		return "", fmt.Errorf("parsing publish response: %w", err)
	}
	return published.ListingID, nil
}

// ListLocations fetches the seller's merchant locations.
func (c *SellClient) ListLocations(ctx context.Context, userID string) (*LocationsPage, error) {
	body, _, err := c.do(ctx, userID, http.MethodGet, inventoryPath+"/location", nil)
	if err != nil {
		// The API answers 404 for sellers with no locations at all.
		if errors.Is(err, ErrNotFound) {
			return &LocationsPage{}, nil
		}
		return nil, fmt.Errorf("listing locations: %w", err)
	}

	var page LocationsPage
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("parsing locations: %w", err)
	}
	return &page, nil
}

// CreateLocation registers a merchant location under the given key.
func (c *SellClient) CreateLocation(
	ctx context.Context,
	userID, key string,
	loc *Location,
) error {
	path := inventoryPath + "/location/" + url.PathEscape(key)
	if _, _, err := c.do(ctx, userID, http.MethodPost, path, loc); err != nil {
		return fmt.Errorf("creating location %q: %w", key, err)
	}
	return nil
}
