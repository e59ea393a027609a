package ebay

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"

	domain "github.com/jmfallon/beepbeep/pkg/types"
)

const refreshBuffer = 60 * time.Second

// AppTokenProvider implements AppTokenSource using the eBay OAuth2 client
// credentials flow. It caches tokens and refreshes automatically when
// expired or within 60 seconds of expiry. Thread-safe via mutex.
type AppTokenProvider struct {
	clientID     string
	clientSecret string
	tokenURL     string
	client       *http.Client
	scopes       string

	mu      sync.Mutex
	token   string
	expiry  time.Time
	nowFunc func() time.Time // for testing
}

// AppTokenOption configures the AppTokenProvider.
type AppTokenOption func(*AppTokenProvider)

// WithTokenURL overrides the default eBay token endpoint.
func WithTokenURL(u string) AppTokenOption {
	return func(p *AppTokenProvider) {
		p.tokenURL = u
	}
}

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(c *http.Client) AppTokenOption {
	return func(p *AppTokenProvider) {
		p.client = c
	}
}

// WithNowFunc overrides the time function for testing.
func WithNowFunc(f func() time.Time) AppTokenOption {
	return func(p *AppTokenProvider) {
		p.nowFunc = f
	}
}

// NewAppTokenProvider creates an application token provider for APIs that
// do not act on behalf of a seller.
func NewAppTokenProvider(
	clientID, clientSecret string,
	opts ...AppTokenOption,
) *AppTokenProvider {
	p := &AppTokenProvider{
		clientID:     clientID,
		clientSecret: clientSecret,
		tokenURL:     ProductionTokenURL,
		client:       &http.Client{Timeout: 10 * time.Second},
		scopes:       "https://api.ebay.com/oauth/api_scope",
		nowFunc:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

type tokenErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// Token returns a valid application access token, refreshing if necessary.
func (p *AppTokenProvider) Token(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.token != "" && p.nowFunc().Before(p.expiry.Add(-refreshBuffer)) {
		return p.token, nil
	}

	return p.refreshLocked(ctx)
}

func (p *AppTokenProvider) refreshLocked(ctx context.Context) (string, error) {
	form := url.Values{
		"grant_type": {"client_credentials"},
		"scope":      {p.scopes},
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		p.tokenURL,
		strings.NewReader(form.Encode()),
	)
	if err != nil {
		return "", fmt.Errorf("creating token request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Basic "+BasicCredentials(p.clientID, p.clientSecret))

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("executing token request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading token response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp tokenErrorResponse
		_ = json.Unmarshal(body, &errResp) //nolint:errcheck // best-effort error parsing
		return "", fmt.Errorf(
			"token request failed (status %d): %s - %s",
			resp.StatusCode,
			errResp.Error,
			errResp.ErrorDescription,
		)
	}

	var tokenResp tokenResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return "", fmt.Errorf("parsing token response: %w", err)
	}

	p.token = tokenResp.AccessToken
	p.expiry = p.nowFunc().Add(
		time.Duration(tokenResp.ExpiresIn) * time.Second,
	)

	return p.token, nil
}

// BasicCredentials encodes client credentials for the token endpoint's
// Basic authorization header.
func BasicCredentials(clientID, clientSecret string) string {
	return base64.StdEncoding.EncodeToString(
		[]byte(clientID + ":" + clientSecret),
	)
}

// OAuthConfig holds the settings for the user-consent authorization flow.
type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	Sandbox      bool
	Scopes       []string

	// AuthURL/TokenURL override the environment-derived endpoints (tests).
	AuthURL  string
	TokenURL string
}

// OAuthExchanger implements the OAuth2 authorization-code flow used to
// connect a seller account.
type OAuthExchanger struct {
	config *oauth2.Config
}

// NewOAuthExchanger builds an exchanger against the configured environment.
func NewOAuthExchanger(cfg OAuthConfig) *OAuthExchanger {
	authURL := cfg.AuthURL
	tokenURL := cfg.TokenURL
	if authURL == "" {
		authURL = ProductionAuthURL
		if cfg.Sandbox {
			authURL = SandboxAuthURL
		}
	}
	if tokenURL == "" {
		tokenURL = ProductionTokenURL
		if cfg.Sandbox {
			tokenURL = SandboxTokenURL
		}
	}

	return &OAuthExchanger{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Scopes:       cfg.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  authURL,
				TokenURL: tokenURL,
			},
		},
	}
}

// ConsentURL returns the URL the user visits to authorize the application.
func (x *OAuthExchanger) ConsentURL(state string) string {
	return x.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// Exchange trades an authorization code for a token pair. The caller fills
// in the user ID before persisting.
func (x *OAuthExchanger) Exchange(
	ctx context.Context,
	code string,
) (*domain.OAuthToken, error) {
	tok, err := x.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchanging authorization code: %w", err)
	}

	return &domain.OAuthToken{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    tok.Expiry,
	}, nil
}
