package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	domain "github.com/jmfallon/beepbeep/pkg/types"
)

// CatalogSearcher looks up catalog products by barcode.
type CatalogSearcher interface {
	SearchByGTIN(ctx context.Context, gtin string) ([]domain.CatalogProduct, error)
}

// SearchHandler handles catalog search requests.
type SearchHandler struct {
	catalog CatalogSearcher
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(catalog CatalogSearcher) *SearchHandler {
	return &SearchHandler{catalog: catalog}
}

// SearchInput is the request body for the catalog search endpoint.
type SearchInput struct {
	Body struct {
		UPC string `json:"upc" minLength:"8" doc:"UPC/EAN/GTIN barcode to look up" example:"885909950805"`
	}
}

// SearchOutput is the response body for the catalog search endpoint.
type SearchOutput struct {
	Body struct {
		Products []domain.CatalogProduct `json:"products" doc:"Matching catalog products"`
		Total    int                     `json:"total" doc:"Number of matches"`
	}
}

// Search looks up a barcode in the eBay catalog.
func (h *SearchHandler) Search(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	products, err := h.catalog.SearchByGTIN(ctx, input.Body.UPC)
	if err != nil {
		return nil, huma.Error502BadGateway("eBay catalog error: " + err.Error())
	}

	if products == nil {
		products = []domain.CatalogProduct{}
	}

	out := &SearchOutput{}
	out.Body.Products = products
	out.Body.Total = len(products)
	return out, nil
}

// RegisterSearchRoutes registers search endpoints with the Huma API.
func RegisterSearchRoutes(api huma.API, h *SearchHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "search-catalog",
		Method:      http.MethodPost,
		Path:        "/api/v1/search",
		Summary:     "Search the eBay catalog by UPC",
		Description: "Looks up a barcode in the eBay Commerce Catalog and returns matching products.",
		Tags:        []string{"search"},
		Errors:      []int{http.StatusBadGateway},
	}, h.Search)
}
