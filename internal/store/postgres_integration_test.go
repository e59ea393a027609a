//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/jmfallon/beepbeep/internal/store"
	domain "github.com/jmfallon/beepbeep/pkg/types"
)

func setupPostgres(t *testing.T) *store.PostgresStore {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("beepbeep_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, pgContainer.Terminate(ctx))
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	s, err := store.NewPostgresStore(ctx, connStr)
	require.NoError(t, err)

	t.Cleanup(func() {
		s.Close()
	})

	require.NoError(t, s.Migrate(ctx))

	return s
}

func TestPostgresStore_Ping(t *testing.T) {
	s := setupPostgres(t)
	require.NoError(t, s.Ping(context.Background()))
}

func TestPostgresStore_TokenLifecycle(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	_, err := s.GetToken(ctx, "user-1")
	assert.ErrorIs(t, err, store.ErrNotFound)

	tok := &domain.OAuthToken{
		UserID:       "user-1",
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		ExpiresAt:    time.Now().Add(2 * time.Hour).Truncate(time.Microsecond),
	}
	require.NoError(t, s.SetToken(ctx, tok))
	assert.False(t, tok.UpdatedAt.IsZero())

	got, err := s.GetToken(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "access-1", got.AccessToken)
	assert.Equal(t, "refresh-1", got.RefreshToken)

	// Replace on refresh.
	tok.AccessToken = "access-2"
	require.NoError(t, s.SetToken(ctx, tok))
	got, err = s.GetToken(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "access-2", got.AccessToken)

	// Disconnect.
	require.NoError(t, s.DeleteToken(ctx, "user-1"))
	_, err = s.GetToken(ctx, "user-1")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestPostgresStore_ListExpiringTokens(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	soon := &domain.OAuthToken{
		UserID:       "expiring",
		AccessToken:  "a",
		RefreshToken: "r",
		ExpiresAt:    time.Now().Add(5 * time.Minute),
	}
	later := &domain.OAuthToken{
		UserID:       "fresh",
		AccessToken:  "a",
		RefreshToken: "r",
		ExpiresAt:    time.Now().Add(6 * time.Hour),
	}
	noRefresh := &domain.OAuthToken{
		UserID:      "no-refresh",
		AccessToken: "a",
		ExpiresAt:   time.Now().Add(5 * time.Minute),
	}
	longDead := &domain.OAuthToken{
		UserID:       "long-dead",
		AccessToken:  "a",
		RefreshToken: "r",
		ExpiresAt:    time.Now().Add(-90 * 24 * time.Hour),
	}
	require.NoError(t, s.SetToken(ctx, soon))
	require.NoError(t, s.SetToken(ctx, later))
	require.NoError(t, s.SetToken(ctx, noRefresh))
	require.NoError(t, s.SetToken(ctx, longDead))

	tokens, err := s.ListExpiringTokens(ctx, 30*time.Minute)
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, "expiring", tokens[0].UserID)
}

func TestPostgresStore_SkuCounter(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	// Absent row behaves as counter 1; first increment lands on 2.
	n, err := s.IncrementSkuCounter(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = s.IncrementSkuCounter(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	// SetSkuSettings never moves the counter backward.
	require.NoError(t, s.SetSkuSettings(ctx, &domain.SkuSettings{
		UserID: "user-1", Counter: 1, Prefix: "BD",
	}))
	settings, err := s.GetSkuSettings(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), settings.Counter)
	assert.Equal(t, "BD", settings.Prefix)
}

func TestPostgresStore_DraftCRUD(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	d := &domain.DraftListing{
		ID:         "draft-1",
		UserID:     "user-1",
		Title:      "Some Movie (Blu-ray)",
		Price:      "24.99",
		Currency:   "USD",
		Condition:  "NEW",
		ImageURLs:  []string{"https://i.ebayimg.com/x.jpg"},
		CategoryID: "617",
		UPC:        "885909950805",
	}
	require.NoError(t, s.CreateDraft(ctx, d))
	assert.False(t, d.CreatedAt.IsZero())

	got, err := s.GetDraft(ctx, "user-1", "draft-1")
	require.NoError(t, err)
	assert.Equal(t, "Some Movie (Blu-ray)", got.Title)
	assert.Equal(t, []string{"https://i.ebayimg.com/x.jpg"}, got.ImageURLs)

	got.Price = "19.99"
	require.NoError(t, s.UpdateDraft(ctx, got))

	list, err := s.ListDrafts(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "19.99", list[0].Price)

	require.NoError(t, s.DeleteDraft(ctx, "user-1", "draft-1"))
	_, err = s.GetDraft(ctx, "user-1", "draft-1")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestPostgresStore_PoliciesAndKeywords(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	_, err := s.GetPolicies(ctx, "user-1")
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.SetPolicies(ctx, &domain.BusinessPolicies{
		UserID:              "user-1",
		MarketplaceID:       "EBAY_US",
		PaymentPolicyID:     "p1",
		ReturnPolicyID:      "r1",
		FulfillmentPolicyID: "f1",
	}))

	p, err := s.GetPolicies(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, p.Missing())

	// Keywords are lowercased and deduplicated.
	require.NoError(t, s.AddBannedKeyword(ctx, "user-1", "Bootleg"))
	require.NoError(t, s.AddBannedKeyword(ctx, "user-1", "bootleg"))
	require.NoError(t, s.AddBannedKeyword(ctx, "user-1", "promo"))

	keywords, err := s.ListBannedKeywords(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"bootleg", "promo"}, keywords)

	require.NoError(t, s.RemoveBannedKeyword(ctx, "user-1", "PROMO"))
	keywords, err = s.ListBannedKeywords(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"bootleg"}, keywords)
}
