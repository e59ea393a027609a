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
	domain "github.com/jmfallon/beepbeep/pkg/types"
)

const (
	catalogPath  = "/commerce/catalog/v1_beta"
	taxonomyPath = "/commerce/taxonomy/v1"
)

// CatalogClient searches the eBay product catalog by GTIN/UPC and looks up
// category aspects via the Taxonomy API. Both use an application token.
type CatalogClient struct {
	tokens      AppTokenSource
	baseURL     string
	marketplace string
	client      *http.Client
}

// CatalogOption configures the CatalogClient.
type CatalogOption func(*CatalogClient)

// WithCatalogBaseURL overrides the API root (tests, sandbox).
func WithCatalogBaseURL(u string) CatalogOption {
	return func(c *CatalogClient) {
		c.baseURL = u
	}
}

// WithCatalogMarketplace overrides the default marketplace.
func WithCatalogMarketplace(m string) CatalogOption {
	return func(c *CatalogClient) {
		c.marketplace = m
	}
}

// WithCatalogHTTPClient overrides the default HTTP client.
func WithCatalogHTTPClient(hc *http.Client) CatalogOption {
	return func(c *CatalogClient) {
		c.client = hc
	}
}

// NewCatalogClient creates a new catalog/taxonomy client.
func NewCatalogClient(tokens AppTokenSource, opts ...CatalogOption) *CatalogClient {
	c := &CatalogClient{
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

func (c *CatalogClient) get(ctx context.Context, path string, out any) error {
	metrics.EbayAPICallsTotal.WithLabelValues("catalog").Inc()

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("getting app token: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet, c.baseURL+path, http.NoBody,
	)
	if err != nil {
		return fmt.Errorf("creating HTTP request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-EBAY-C-MARKETPLACE-ID", c.marketplace)

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

type catalogSearchResponse struct {
	ProductSummaries []struct {
		EPID    string `json:"epid"`
		Title   string `json:"title"`
		Brand   string `json:"brand"`
		Image   *struct {
			ImageURL string `json:"imageUrl"`
		} `json:"image"`
		PrimaryCategory *struct {
			CategoryID string `json:"categoryId"`
		} `json:"primaryCategory"`
		UPC     []string `json:"upc"`
		EAN     []string `json:"ean"`
		Aspects []struct {
			LocalizedName   string   `json:"localizedName"`
			LocalizedValues []string `json:"localizedValues"`
		} `json:"aspects"`
	} `json:"productSummaries"`
	Total int `json:"total"`
}

// SearchByGTIN searches the catalog for products matching a UPC/EAN/GTIN.
func (c *CatalogClient) SearchByGTIN(
	ctx context.Context,
	gtin string,
) ([]domain.CatalogProduct, error) {
	path := catalogPath + "/product_summary/search?gtin=" + url.QueryEscape(gtin)

	var resp catalogSearchResponse
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, fmt.Errorf("searching catalog by gtin %q: %w", gtin, err)
	}

	products := make([]domain.CatalogProduct, 0, len(resp.ProductSummaries))
	for _, s := range resp.ProductSummaries {
		p := domain.CatalogProduct{
			EPID:  s.EPID,
			Title: s.Title,
			Brand: s.Brand,
			UPC:   s.UPC,
			EAN:   s.EAN,
		}
		if s.Image != nil {
			p.ImageURL = s.Image.ImageURL
		}
		if s.PrimaryCategory != nil {
			p.CategoryID = s.PrimaryCategory.CategoryID
		}
		if len(s.Aspects) > 0 {
			p.Aspects = make(map[string][]string, len(s.Aspects))
			for _, a := range s.Aspects {
				p.Aspects[a.LocalizedName] = a.LocalizedValues
			}
		}
		products = append(products, p)
	}
	return products, nil
}

// CategoryAspect is one item aspect of a leaf category.
type CategoryAspect struct {
	Name     string   `json:"name"`
	Required bool     `json:"required"`
	Values   []string `json:"values,omitempty"`
}

// GetCategoryAspects returns the item aspects for a leaf category in the
// given category tree.
func (c *CatalogClient) GetCategoryAspects(
	ctx context.Context,
	categoryTreeID, categoryID string,
) ([]CategoryAspect, error) {
	path := fmt.Sprintf(
		"%s/category_tree/%s/get_item_aspects_for_category?category_id=%s",
		taxonomyPath, url.PathEscape(categoryTreeID), url.QueryEscape(categoryID),
	)

	var resp struct {
		Aspects []struct {
			LocalizedAspectName string `json:"localizedAspectName"`
			AspectConstraint    struct {
				AspectRequired bool `json:"aspectRequired"`
			} `json:"aspectConstraint"`
			AspectValues []struct {
				LocalizedValue string `json:"localizedValue"`
			} `json:"aspectValues"`
		} `json:"aspects"`
	}
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, fmt.Errorf("fetching aspects for category %q: %w", categoryID, err)
	}

	aspects := make([]CategoryAspect, 0, len(resp.Aspects))
	for _, a := range resp.Aspects {
		aspect := CategoryAspect{
			Name:     a.LocalizedAspectName,
			Required: a.AspectConstraint.AspectRequired,
		}
		for _, v := range a.AspectValues {
			aspect.Values = append(aspect.Values, v.LocalizedValue)
		}
		aspects = append(aspects, aspect)
	}
	return aspects, nil
}
