// Package store defines the datastore abstraction for beepbeep.
// All business logic depends on the Store interface, never on concrete
// implementations. This enables fake-based testing without a running database.
package store

import (
	"context"
	"errors"
	"time"

	domain "github.com/jmfallon/beepbeep/pkg/types"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("store: not found")

// Store defines all data access operations for beepbeep.
type Store interface {
	// OAuth tokens (one row per user)
	GetToken(ctx context.Context, userID string) (*domain.OAuthToken, error)
	SetToken(ctx context.Context, token *domain.OAuthToken) error
	DeleteToken(ctx context.Context, userID string) error
	// ListExpiringTokens returns tokens whose expiry falls before now+within
	// and that still carry a refresh token.
	ListExpiringTokens(ctx context.Context, within time.Duration) ([]domain.OAuthToken, error)

	// SKU settings
	GetSkuSettings(ctx context.Context, userID string) (*domain.SkuSettings, error)
	SetSkuSettings(ctx context.Context, settings *domain.SkuSettings) error
	// IncrementSkuCounter bumps the counter by one atomically and returns
	// the new value. Creates the row at counter 2 if absent (first SKU was 1).
	IncrementSkuCounter(ctx context.Context, userID string) (int64, error)

	// Draft listings
	CreateDraft(ctx context.Context, draft *domain.DraftListing) error
	GetDraft(ctx context.Context, userID, id string) (*domain.DraftListing, error)
	ListDrafts(ctx context.Context, userID string) ([]domain.DraftListing, error)
	UpdateDraft(ctx context.Context, draft *domain.DraftListing) error
	DeleteDraft(ctx context.Context, userID, id string) error

	// Business policies
	GetPolicies(ctx context.Context, userID string) (*domain.BusinessPolicies, error)
	SetPolicies(ctx context.Context, policies *domain.BusinessPolicies) error

	// Banned keywords
	ListBannedKeywords(ctx context.Context, userID string) ([]string, error)
	AddBannedKeyword(ctx context.Context, userID, keyword string) error
	RemoveBannedKeyword(ctx context.Context, userID, keyword string) error

	// Per-user config rows
	GetDiscountSettings(ctx context.Context, userID string) (*domain.DiscountSettings, error)
	SetDiscountSettings(ctx context.Context, settings *domain.DiscountSettings) error
	GetDescriptionOverride(ctx context.Context, userID string) (*domain.DescriptionOverride, error)
	SetDescriptionOverride(ctx context.Context, override *domain.DescriptionOverride) error

	// Migrations
	Migrate(ctx context.Context) error

	// Health
	Ping(ctx context.Context) error
}
