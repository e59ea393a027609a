// Package token manages per-user eBay OAuth tokens: validity checks before
// every API call, serialized refreshes, and persistence of rotated tokens.
package token

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/jmfallon/beepbeep/internal/ebay"
	"github.com/jmfallon/beepbeep/internal/metrics"
	"github.com/jmfallon/beepbeep/internal/store"
	domain "github.com/jmfallon/beepbeep/pkg/types"
)

// defaultRefreshBuffer is how long before expiry a token is treated as
// expired. A request must never go out with a known-expired token.
const defaultRefreshBuffer = 60 * time.Second

var (
	// ErrNotConnected means the user has no stored token at all.
	ErrNotConnected = errors.New("token: user is not connected")

	// ErrNoRefreshToken means the access token expired and no refresh token
	// is stored. Fatal: the user must go through the consent flow again.
	ErrNoRefreshToken = errors.New("token: no refresh token stored")

	// ErrTokenExpired means the provider rejected the refresh. The caller
	// must force a full re-authorization.
	ErrTokenExpired = errors.New("token: refresh rejected, re-authorization required")
)

// TokenStore is the slice of the datastore the manager needs.
type TokenStore interface {
	GetToken(ctx context.Context, userID string) (*domain.OAuthToken, error)
	SetToken(ctx context.Context, token *domain.OAuthToken) error
	DeleteToken(ctx context.Context, userID string) error
}

// Manager holds per-user OAuth tokens and refreshes them on expiry via the
// refresh_token grant. Refreshes are serialized per user so concurrent
// requests cannot race a double refresh. Implements ebay.TokenSource.
type Manager struct {
	store        TokenStore
	clientID     string
	clientSecret string
	tokenURL     string
	client       *http.Client
	log          *slog.Logger
	buffer       time.Duration
	nowFunc      func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// ManagerOption configures the Manager.
type ManagerOption func(*Manager)

// WithManagerTokenURL overrides the token endpoint (tests, sandbox).
func WithManagerTokenURL(u string) ManagerOption {
	return func(m *Manager) {
		m.tokenURL = u
	}
}

// WithManagerHTTPClient overrides the default HTTP client.
func WithManagerHTTPClient(c *http.Client) ManagerOption {
	return func(m *Manager) {
		m.client = c
	}
}

// WithManagerNowFunc overrides the time function for testing.
func WithManagerNowFunc(f func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.nowFunc = f
	}
}

// WithManagerLogger sets the logger.
func WithManagerLogger(l *slog.Logger) ManagerOption {
	return func(m *Manager) {
		m.log = l
	}
}

// NewManager creates a token manager backed by the given store.
func NewManager(
	ts TokenStore,
	clientID, clientSecret string,
	opts ...ManagerOption,
) *Manager {
	m := &Manager{
		store:        ts,
		clientID:     clientID,
		clientSecret: clientSecret,
		tokenURL:     ebay.ProductionTokenURL,
		client:       &http.Client{Timeout: 10 * time.Second},
		log:          slog.Default(),
		buffer:       defaultRefreshBuffer,
		nowFunc:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// userLock returns the mutex serializing token state for one user.
func (m *Manager) userLock(userID string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.locks == nil {
		m.locks = make(map[string]*sync.Mutex)
	}
	l, ok := m.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		m.locks[userID] = l
	}
	return l
}

// AccessToken returns a valid access token for the user, refreshing first
// when the stored token is expired or within the refresh buffer of expiry.
func (m *Manager) AccessToken(ctx context.Context, userID string) (string, error) {
	l := m.userLock(userID)
	l.Lock()
	defer l.Unlock()

	tok, err := m.store.GetToken(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", fmt.Errorf("%w: %s", ErrNotConnected, userID)
		}
		return "", fmt.Errorf("loading token: %w", err)
	}

	if !tok.Expired(m.nowFunc(), m.buffer) {
		return tok.AccessToken, nil
	}

	refreshed, err := m.refreshLocked(ctx, tok)
	if err != nil {
		return "", err
	}
	return refreshed.AccessToken, nil
}

// Refresh forces a refresh of the user's token regardless of expiry.
// Used by the proactive refresher sweep.
func (m *Manager) Refresh(ctx context.Context, userID string) error {
	l := m.userLock(userID)
	l.Lock()
	defer l.Unlock()

	tok, err := m.store.GetToken(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrNotConnected, userID)
		}
		return fmt.Errorf("loading token: %w", err)
	}

	_, err = m.refreshLocked(ctx, tok)
	return err
}

// Disconnect removes the user's stored token.
func (m *Manager) Disconnect(ctx context.Context, userID string) error {
	l := m.userLock(userID)
	l.Lock()
	defer l.Unlock()
	return m.store.DeleteToken(ctx, userID)
}

type refreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

// refreshLocked exchanges the refresh token for a new pair and persists it.
// Callers must hold the user lock.
func (m *Manager) refreshLocked(
	ctx context.Context,
	tok *domain.OAuthToken,
) (*domain.OAuthToken, error) {
	if tok.RefreshToken == "" {
		return nil, fmt.Errorf("%w: %s", ErrNoRefreshToken, tok.UserID)
	}

	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {tok.RefreshToken},
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		m.tokenURL,
		strings.NewReader(form.Encode()),
	)
	if err != nil {
		return nil, fmt.Errorf("creating refresh request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set(
		"Authorization",
		"Basic "+ebay.BasicCredentials(m.clientID, m.clientSecret),
	)

	resp, err := m.client.Do(req)
	if err != nil {
		metrics.TokenRefreshFailuresTotal.Inc()
		return nil, fmt.Errorf("executing refresh request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.TokenRefreshFailuresTotal.Inc()
		return nil, fmt.Errorf("reading refresh response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		metrics.TokenRefreshFailuresTotal.Inc()
		m.log.Warn("token refresh rejected",
			"user_id", tok.UserID,
			"status", resp.StatusCode,
		)
		return nil, fmt.Errorf(
			"%w (status %d): %s",
			ErrTokenExpired, resp.StatusCode, strings.TrimSpace(string(body)),
		)
	}

	var parsed refreshResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		metrics.TokenRefreshFailuresTotal.Inc()
		return nil, fmt.Errorf("parsing refresh response: %w", err)
	}

	refreshed := &domain.OAuthToken{
		UserID:       tok.UserID,
		AccessToken:  parsed.AccessToken,
		RefreshToken: parsed.RefreshToken,
		ExpiresAt:    m.nowFunc().Add(time.Duration(parsed.ExpiresIn) * time.Second),
	}
	// eBay does not rotate the refresh token on every refresh.
	if refreshed.RefreshToken == "" {
		refreshed.RefreshToken = tok.RefreshToken
	}

	if err := m.store.SetToken(ctx, refreshed); err != nil {
		return nil, fmt.Errorf("persisting refreshed token: %w", err)
	}

	metrics.TokenRefreshesTotal.Inc()
	m.log.Debug("token refreshed",
		"user_id", tok.UserID,
		"expires_at", refreshed.ExpiresAt,
	)
	return refreshed, nil
}
