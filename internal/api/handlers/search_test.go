package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmfallon/beepbeep/internal/api/handlers"
	domain "github.com/jmfallon/beepbeep/pkg/types"
)

type fakeCatalog struct {
	products []domain.CatalogProduct
	err      error
	gotGTIN  string
}

func (f *fakeCatalog) SearchByGTIN(_ context.Context, gtin string) ([]domain.CatalogProduct, error) {
	f.gotGTIN = gtin
	return f.products, f.err
}

func TestSearchHandler_Search(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		body       any
		catalog    *fakeCatalog
		wantStatus int
		wantBody   string
	}{
		{
			name: "valid upc returns products",
			body: map[string]any{"upc": "885909950805"},
			catalog: &fakeCatalog{products: []domain.CatalogProduct{
				{EPID: "12345", Title: "The Thing (Blu-ray)", Brand: "Universal"},
			}},
			wantStatus: http.StatusOK,
			wantBody:   `"total":1`,
		},
		{
			name:       "no matches returns empty list",
			body:       map[string]any{"upc": "00000000"},
			catalog:    &fakeCatalog{},
			wantStatus: http.StatusOK,
			wantBody:   `"products":[]`,
		},
		{
			name:       "missing upc returns 422",
			body:       map[string]any{},
			catalog:    &fakeCatalog{},
			wantStatus: http.StatusUnprocessableEntity,
			wantBody:   `expected required property upc to be present`,
		},
		{
			name:       "short upc returns 422",
			body:       map[string]any{"upc": "123"},
			catalog:    &fakeCatalog{},
			wantStatus: http.StatusUnprocessableEntity,
			wantBody:   `expected length >= 8`,
		},
		{
			name:       "catalog error returns 502",
			body:       map[string]any{"upc": "885909950805"},
			catalog:    &fakeCatalog{err: errors.New("connection refused")},
			wantStatus: http.StatusBadGateway,
			wantBody:   `eBay catalog error`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := handlers.NewSearchHandler(tt.catalog)

			_, api := humatest.New(t)
			handlers.RegisterSearchRoutes(api, h)

			resp := api.Post("/api/v1/search", tt.body)
			require.Equal(t, tt.wantStatus, resp.Code)
			if tt.wantBody != "" {
				assert.Contains(t, resp.Body.String(), tt.wantBody)
			}
		})
	}
}
