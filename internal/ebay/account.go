package ebay

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/jmfallon/beepbeep/internal/metrics"
)

const accountPath = "/sell/account/v1"

// AccountClient calls the eBay Sell Account API to read the seller's
// business policies.
type AccountClient struct {
	tokens  TokenSource
	baseURL string
	client  *http.Client
}

// AccountOption configures the AccountClient.
type AccountOption func(*AccountClient)

// WithAccountBaseURL overrides the API root (tests, sandbox).
func WithAccountBaseURL(u string) AccountOption {
	return func(c *AccountClient) {
		c.baseURL = u
	}
}

// WithAccountHTTPClient overrides the default HTTP client.
func WithAccountHTTPClient(hc *http.Client) AccountOption {
	return func(c *AccountClient) {
		c.client = hc
	}
}

// NewAccountClient creates a new Sell Account API client.
func NewAccountClient(tokens TokenSource, opts ...AccountOption) *AccountClient {
	c := &AccountClient{
		tokens:  tokens,
		baseURL: ProductionAPIBaseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *AccountClient) get(ctx context.Context, userID, path string, out any) error {
	metrics.EbayAPICallsTotal.WithLabelValues("account").Inc()

	token, err := c.tokens.AccessToken(ctx, userID)
	if err != nil {
		return fmt.Errorf("getting auth token: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet, c.baseURL+path, http.NoBody,
	)
	if err != nil {
		return fmt.Errorf("creating HTTP request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body) //nolint:errcheck // best-effort diagnostics
		return newAPIError(resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	return nil
}

// GetPolicies fetches the seller's fulfillment, payment, and return
// policies for a marketplace in one call sequence.
func (c *AccountClient) GetPolicies(
	ctx context.Context,
	userID, marketplaceID string,
) (*SellerPolicies, error) {
	q := "?marketplace_id=" + url.QueryEscape(marketplaceID)

	var fulfillment struct {
		FulfillmentPolicies []FulfillmentPolicy `json:"fulfillmentPolicies"`
	}
	if err := c.get(ctx, userID, accountPath+"/fulfillment_policy"+q, &fulfillment); err != nil {
		return nil, fmt.Errorf("fetching fulfillment policies: %w", err)
	}

	var payment struct {
		PaymentPolicies []PaymentPolicy `json:"paymentPolicies"`
	}
	if err := c.get(ctx, userID, accountPath+"/payment_policy"+q, &payment); err != nil {
		return nil, fmt.Errorf("fetching payment policies: %w", err)
	}

	var ret struct {
		ReturnPolicies []ReturnPolicy `json:"returnPolicies"`
	}
	if err := c.get(ctx, userID, accountPath+"/return_policy"+q, &ret); err != nil {
		return nil, fmt.Errorf("fetching return policies: %w", err)
	}

	return &SellerPolicies{
		Fulfillment: fulfillment.FulfillmentPolicies,
		Payment:     payment.PaymentPolicies,
		Return:      ret.ReturnPolicies,
	}, nil
}
