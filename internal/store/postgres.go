package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domain "github.com/jmfallon/beepbeep/pkg/types"
)

const defaultPoolSize = 10

// PostgresStore implements Store using pgxpool (connection-pooled PostgreSQL).
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore with connection pooling.
func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}

	cfg.MaxConns = defaultPoolSize

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Close gracefully shuts down the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Ping verifies the database connection is alive.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Migrate applies pending SQL schema migrations.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	return RunMigrations(ctx, s.pool)
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// GetToken retrieves a user's OAuth token.
func (s *PostgresStore) GetToken(ctx context.Context, userID string) (*domain.OAuthToken, error) {
	t := &domain.OAuthToken{}
	err := s.pool.QueryRow(ctx, queryGetToken, userID).Scan(
		&t.UserID, &t.AccessToken, &t.RefreshToken, &t.ExpiresAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}
	return t, nil
}

// SetToken inserts or replaces a user's OAuth token.
func (s *PostgresStore) SetToken(ctx context.Context, token *domain.OAuthToken) error {
	args := pgx.NamedArgs{
		"user_id":       token.UserID,
		"access_token":  token.AccessToken,
		"refresh_token": token.RefreshToken,
		"expires_at":    token.ExpiresAt,
	}
	if err := s.pool.QueryRow(ctx, queryUpsertToken, args).Scan(&token.UpdatedAt); err != nil {
		return fmt.Errorf("upserting token: %w", err)
	}
	return nil
}

// DeleteToken removes a user's OAuth token (disconnect).
func (s *PostgresStore) DeleteToken(ctx context.Context, userID string) error {
	_, err := s.pool.Exec(ctx, queryDeleteToken, userID)
	return err
}

// ListExpiringTokens returns refreshable tokens expiring within the window.
// Tokens already dead for longer than one window are excluded so a token
// whose refresh permanently fails does not get retried by every sweep; its
// user's next request surfaces the error instead.
func (s *PostgresStore) ListExpiringTokens(
	ctx context.Context,
	within time.Duration,
) ([]domain.OAuthToken, error) {
	now := time.Now()
	rows, err := s.pool.Query(ctx, queryListExpiringTokens, now.Add(-within), now.Add(within))
	if err != nil {
		return nil, fmt.Errorf("querying expiring tokens: %w", err)
	}
	defer rows.Close()

	var tokens []domain.OAuthToken
	for rows.Next() {
		var t domain.OAuthToken
		if err := rows.Scan(
			&t.UserID, &t.AccessToken, &t.RefreshToken, &t.ExpiresAt, &t.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning token: %w", err)
		}
		tokens = append(tokens, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tokens: %w", err)
	}
	return tokens, nil
}

// GetSkuSettings retrieves a user's SKU settings.
func (s *PostgresStore) GetSkuSettings(
	ctx context.Context,
	userID string,
) (*domain.SkuSettings, error) {
	settings := &domain.SkuSettings{}
	err := s.pool.QueryRow(ctx, queryGetSkuSettings, userID).Scan(
		&settings.UserID, &settings.Counter, &settings.Prefix,
	)
	if err != nil {
		return nil, notFound(err)
	}
	return settings, nil
}

// SetSkuSettings inserts or replaces a user's SKU settings. The counter
// never moves backward.
func (s *PostgresStore) SetSkuSettings(
	ctx context.Context,
	settings *domain.SkuSettings,
) error {
	args := pgx.NamedArgs{
		"user_id": settings.UserID,
		"counter": settings.Counter,
		"prefix":  settings.Prefix,
	}
	if _, err := s.pool.Exec(ctx, queryUpsertSkuSettings, args); err != nil {
		return fmt.Errorf("upserting sku settings: %w", err)
	}
	return nil
}

// IncrementSkuCounter atomically bumps the counter and returns the new value.
func (s *PostgresStore) IncrementSkuCounter(
	ctx context.Context,
	userID string,
) (int64, error) {
	var counter int64
	if err := s.pool.QueryRow(ctx, queryIncrementSkuCounter, userID).Scan(&counter); err != nil {
		return 0, fmt.Errorf("incrementing sku counter: %w", err)
	}
	return counter, nil
}

// CreateDraft inserts a new draft listing.
func (s *PostgresStore) CreateDraft(ctx context.Context, d *domain.DraftListing) error {
	args := draftArgs(d)
	if err := s.pool.QueryRow(ctx, queryCreateDraft, args).Scan(
		&d.CreatedAt, &d.UpdatedAt,
	); err != nil {
		return fmt.Errorf("creating draft: %w", err)
	}
	return nil
}

// GetDraft retrieves one draft by user and ID.
func (s *PostgresStore) GetDraft(
	ctx context.Context,
	userID, id string,
) (*domain.DraftListing, error) {
	d := &domain.DraftListing{}
	err := scanDraft(s.pool.QueryRow(ctx, queryGetDraft, userID, id), d)
	if err != nil {
		return nil, notFound(err)
	}
	return d, nil
}

// ListDrafts returns all drafts for a user, most recently updated first.
func (s *PostgresStore) ListDrafts(
	ctx context.Context,
	userID string,
) ([]domain.DraftListing, error) {
	rows, err := s.pool.Query(ctx, queryListDrafts, userID)
	if err != nil {
		return nil, fmt.Errorf("querying drafts: %w", err)
	}
	defer rows.Close()

	var drafts []domain.DraftListing
	for rows.Next() {
		var d domain.DraftListing
		if err := scanDraft(rows, &d); err != nil {
			return nil, fmt.Errorf("scanning draft: %w", err)
		}
		drafts = append(drafts, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating drafts: %w", err)
	}
	return drafts, nil
}

// UpdateDraft replaces a draft's editable fields.
func (s *PostgresStore) UpdateDraft(ctx context.Context, d *domain.DraftListing) error {
	args := draftArgs(d)
	err := s.pool.QueryRow(ctx, queryUpdateDraft, args).Scan(&d.UpdatedAt)
	if err != nil {
		return notFound(err)
	}
	return nil
}

// DeleteDraft removes a draft.
func (s *PostgresStore) DeleteDraft(ctx context.Context, userID, id string) error {
	_, err := s.pool.Exec(ctx, queryDeleteDraft, userID, id)
	return err
}

func draftArgs(d *domain.DraftListing) pgx.NamedArgs {
	return pgx.NamedArgs{
		"id":           d.ID,
		"user_id":      d.UserID,
		"title":        d.Title,
		"description":  d.Description,
		"price":        d.Price,
		"currency":     d.Currency,
		"condition":    d.Condition,
		"image_urls":   d.ImageURLs,
		"category_id":  d.CategoryID,
		"upc":          d.UPC,
		"product_data": d.ProductData,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDraft(row rowScanner, d *domain.DraftListing) error {
	return row.Scan(
		&d.ID, &d.UserID, &d.Title, &d.Description, &d.Price, &d.Currency,
		&d.Condition, &d.ImageURLs, &d.CategoryID, &d.UPC, &d.ProductData,
		&d.CreatedAt, &d.UpdatedAt,
	)
}

// GetPolicies retrieves a user's configured business policy IDs.
func (s *PostgresStore) GetPolicies(
	ctx context.Context,
	userID string,
) (*domain.BusinessPolicies, error) {
	p := &domain.BusinessPolicies{}
	err := s.pool.QueryRow(ctx, queryGetPolicies, userID).Scan(
		&p.UserID, &p.MarketplaceID, &p.PaymentPolicyID,
		&p.ReturnPolicyID, &p.FulfillmentPolicyID,
	)
	if err != nil {
		return nil, notFound(err)
	}
	return p, nil
}

// SetPolicies inserts or replaces a user's business policy IDs.
func (s *PostgresStore) SetPolicies(
	ctx context.Context,
	policies *domain.BusinessPolicies,
) error {
	args := pgx.NamedArgs{
		"user_id":               policies.UserID,
		"marketplace_id":        policies.MarketplaceID,
		"payment_policy_id":     policies.PaymentPolicyID,
		"return_policy_id":      policies.ReturnPolicyID,
		"fulfillment_policy_id": policies.FulfillmentPolicyID,
	}
	if _, err := s.pool.Exec(ctx, queryUpsertPolicies, args); err != nil {
		return fmt.Errorf("upserting policies: %w", err)
	}
	return nil
}

// ListBannedKeywords returns a user's banned keywords, sorted.
func (s *PostgresStore) ListBannedKeywords(
	ctx context.Context,
	userID string,
) ([]string, error) {
	rows, err := s.pool.Query(ctx, queryListBannedKeywords, userID)
	if err != nil {
		return nil, fmt.Errorf("querying banned keywords: %w", err)
	}
	defer rows.Close()

	var keywords []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scanning keyword: %w", err)
		}
		keywords = append(keywords, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating keywords: %w", err)
	}
	return keywords, nil
}

// AddBannedKeyword stores a keyword (lowercased, deduplicated).
func (s *PostgresStore) AddBannedKeyword(ctx context.Context, userID, keyword string) error {
	_, err := s.pool.Exec(ctx, queryAddBannedKeyword, userID, keyword)
	return err
}

// RemoveBannedKeyword deletes a keyword.
func (s *PostgresStore) RemoveBannedKeyword(ctx context.Context, userID, keyword string) error {
	_, err := s.pool.Exec(ctx, queryRemoveBannedKeyword, userID, keyword)
	return err
}

// GetDiscountSettings retrieves a user's discount settings.
func (s *PostgresStore) GetDiscountSettings(
	ctx context.Context,
	userID string,
) (*domain.DiscountSettings, error) {
	d := &domain.DiscountSettings{}
	err := s.pool.QueryRow(ctx, queryGetDiscountSettings, userID).Scan(
		&d.UserID, &d.Enabled, &d.PercentOff, &d.MinPriceFloor,
	)
	if err != nil {
		return nil, notFound(err)
	}
	return d, nil
}

// SetDiscountSettings inserts or replaces a user's discount settings.
func (s *PostgresStore) SetDiscountSettings(
	ctx context.Context,
	settings *domain.DiscountSettings,
) error {
	args := pgx.NamedArgs{
		"user_id":         settings.UserID,
		"enabled":         settings.Enabled,
		"percent_off":     settings.PercentOff,
		"min_price_floor": settings.MinPriceFloor,
	}
	if _, err := s.pool.Exec(ctx, queryUpsertDiscountSettings, args); err != nil {
		return fmt.Errorf("upserting discount settings: %w", err)
	}
	return nil
}

// GetDescriptionOverride retrieves a user's description override.
func (s *PostgresStore) GetDescriptionOverride(
	ctx context.Context,
	userID string,
) (*domain.DescriptionOverride, error) {
	o := &domain.DescriptionOverride{}
	err := s.pool.QueryRow(ctx, queryGetDescriptionOverride, userID).Scan(
		&o.UserID, &o.Enabled, &o.Template,
	)
	if err != nil {
		return nil, notFound(err)
	}
	return o, nil
}

// SetDescriptionOverride inserts or replaces a user's description override.
func (s *PostgresStore) SetDescriptionOverride(
	ctx context.Context,
	override *domain.DescriptionOverride,
) error {
	args := pgx.NamedArgs{
		"user_id":  override.UserID,
		"enabled":  override.Enabled,
		"template": override.Template,
	}
	if _, err := s.pool.Exec(ctx, queryUpsertDescriptionOverride, args); err != nil {
		return fmt.Errorf("upserting description override: %w", err)
	}
	return nil
}
