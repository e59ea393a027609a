package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmfallon/beepbeep/internal/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const minimalConfig = `
database:
  host: localhost
  name: beepbeep
  user: beepbeep
ebay:
  client_id: app-id
  client_secret: cert-id
`

func TestLoad_Minimal(t *testing.T) {
	t.Parallel()

	cfg, err := config.Load(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	// Defaults applied.
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "EBAY_US", cfg.Ebay.Marketplace)
	assert.Equal(t, 200, cfg.Duplicate.PageSize)
	assert.Equal(t, 10, cfg.Duplicate.MaxMatches)
	assert.Equal(t, 10*time.Second, cfg.Duplicate.Timeout)
	assert.Equal(t, "return_empty", cfg.Duplicate.OnFailure)
	assert.Equal(t, 6, cfg.Sku.Pad)
	require.NotNil(t, cfg.Sku.VerifyUnique)
	assert.True(t, *cfg.Sku.VerifyUnique)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Contains(t, cfg.Ebay.Scopes, "https://api.ebay.com/oauth/api_scope/sell.inventory")
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("BEEPBEEP_TEST_SECRET", "expanded-secret")

	cfg, err := config.Load(writeConfig(t, `
database:
  host: localhost
  name: beepbeep
  user: beepbeep
ebay:
  client_id: app-id
  client_secret: ${BEEPBEEP_TEST_SECRET}
`))
	require.NoError(t, err)
	assert.Equal(t, "expanded-secret", cfg.Ebay.ClientSecret)
}

func TestLoad_ValidationErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name: "missing database host",
			content: `
database:
  name: beepbeep
  user: beepbeep
ebay:
  client_id: a
  client_secret: b
`,
			wantErr: "database.host is required",
		},
		{
			name: "missing ebay credentials",
			content: `
database:
  host: localhost
  name: beepbeep
  user: beepbeep
`,
			wantErr: "ebay.client_id is required",
		},
		{
			name: "bad duplicate failure mode",
			content: minimalConfig + `
duplicate_check:
  on_failure: explode
`,
			wantErr: "on_failure must be return_empty or propagate",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := config.Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	t.Parallel()

	_, err := config.Load("/nonexistent/config.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config file")
}

func TestLoad_WebStyleSkuFormat(t *testing.T) {
	t.Parallel()

	verify := `
sku:
  default_prefix: SKU
  pad: -1
`
	_, err := config.Load(writeConfig(t, minimalConfig+verify))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sku.pad must not be negative")
}
