package ebay_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmfallon/beepbeep/internal/ebay"
)

// staticTokens satisfies ebay.TokenSource with a fixed token per user.
type staticTokens string

func (s staticTokens) AccessToken(_ context.Context, _ string) (string, error) {
	return string(s), nil
}

func newSellClient(t *testing.T, handler http.Handler) *ebay.SellClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return ebay.NewSellClient(
		staticTokens("seller-token"),
		ebay.WithSellBaseURL(srv.URL),
		ebay.WithSellMarketplace("EBAY_US"),
	)
}

func TestSellClient_CreateOrReplaceInventoryItem(t *testing.T) {
	t.Parallel()

	client := newSellClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/sell/inventory/v1/inventory_item/BD-000042", r.URL.Path)
		assert.Equal(t, "Bearer seller-token", r.Header.Get("Authorization"))
		assert.Equal(t, "EBAY_US", r.Header.Get("X-EBAY-C-MARKETPLACE-ID"))
		assert.Equal(t, "en-US", r.Header.Get("Content-Language"))

		var item ebay.InventoryItem
		require.NoError(t, json.NewDecoder(r.Body).Decode(&item))
		assert.Equal(t, "NEW", item.Condition)
		assert.Equal(t, []string{"885909950805"}, item.Product.UPC)

		w.WriteHeader(http.StatusNoContent)
	}))

	err := client.CreateOrReplaceInventoryItem(
		context.Background(), "user-1", "BD-000042",
		&ebay.InventoryItem{
			Condition: "NEW",
			Product: &ebay.Product{
				Title: "Some Movie (Blu-ray)",
				UPC:   []string{"885909950805"},
			},
		},
	)
	require.NoError(t, err)
}

func TestSellClient_GetInventoryItem_NotFound(t *testing.T) {
	t.Parallel()

	client := newSellClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	_, err := client.GetInventoryItem(context.Background(), "user-1", "FREE-SKU")
	require.Error(t, err)
	assert.ErrorIs(t, err, ebay.ErrNotFound)
}

func TestSellClient_ListInventoryItems(t *testing.T) {
	t.Parallel()

	client := newSellClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sell/inventory/v1/inventory_item", r.URL.Path)
		assert.Equal(t, "200", r.URL.Query().Get("limit"))
		assert.Equal(t, "200", r.URL.Query().Get("offset"))

		_, _ = w.Write([]byte(`{
			"inventoryItems": [{"sku": "BD-000001", "product": {"title": "x"}}],
			"total": 201,
			"limit": 200,
			"offset": 200,
			"next": ""
		}`))
	}))

	page, err := client.ListInventoryItems(context.Background(), "user-1", 200, 200)
	require.NoError(t, err)
	assert.Equal(t, 201, page.Total)
	require.Len(t, page.InventoryItems, 1)
	assert.Equal(t, "BD-000001", page.InventoryItems[0].SKU)
}

func TestSellClient_CreateOffer_Conflict(t *testing.T) {
	t.Parallel()

	client := newSellClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{
			"errors": [{
				"errorId": 25002,
				"message": "An offer already exists for this SKU.",
				"parameters": [{"name": "offerId", "value": "777"}]
			}]
		}`))
	}))

	_, err := client.CreateOffer(context.Background(), "user-1", &ebay.Offer{SKU: "BD-000042"})
	require.Error(t, err)
	assert.True(t, ebay.IsOfferExists(err))

	offerID, ok := ebay.OfferIDFromError(err)
	require.True(t, ok)
	assert.Equal(t, "777", offerID)
}

func TestSellClient_CreateAndPublishOffer(t *testing.T) {
	t.Parallel()

	client := newSellClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/sell/inventory/v1/offer":
			assert.Equal(t, http.MethodPost, r.Method)
			var offer ebay.Offer
			require.NoError(t, json.NewDecoder(r.Body).Decode(&offer))
			assert.Equal(t, "BD-000042", offer.SKU)
			assert.Equal(t, 1, offer.AvailableQuantity)
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"offerId": "9001"}`))
		case "/sell/inventory/v1/offer/9001/publish":
			assert.Equal(t, http.MethodPost, r.Method)
			_, _ = w.Write([]byte(`{"listingId": "110555"}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))

	offerID, err := client.CreateOffer(context.Background(), "user-1", &ebay.Offer{
		SKU:               "BD-000042",
		AvailableQuantity: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, "9001", offerID)

	listingID, err := client.PublishOffer(context.Background(), "user-1", offerID)
	require.NoError(t, err)
	assert.Equal(t, "110555", listingID)
}

func TestSellClient_ListLocations_EmptyOn404(t *testing.T) {
	t.Parallel()

	client := newSellClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	page, err := client.ListLocations(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Empty(t, page.Locations)
}

func TestSellClient_TokenSourceError(t *testing.T) {
	t.Parallel()

	client := ebay.NewSellClient(failingTokens{})
	_, err := client.GetInventoryItem(context.Background(), "user-1", "X")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "getting auth token")
}

type failingTokens struct{}

func (failingTokens) AccessToken(_ context.Context, _ string) (string, error) {
	return "", errors.New("no token for user")
}

func TestSellClient_RateLimiterDailyLimit(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := ebay.NewSellClient(
		staticTokens("tok"),
		ebay.WithSellBaseURL(srv.URL),
		ebay.WithSellRateLimiter(ebay.NewRateLimiter(100, 10, 1)),
	)

	_, err := client.GetInventoryItem(context.Background(), "u", "A")
	require.NoError(t, err)

	_, err = client.GetInventoryItem(context.Background(), "u", "B")
	require.Error(t, err)
	assert.ErrorIs(t, err, ebay.ErrDailyLimitReached)
}
