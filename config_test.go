package contacts_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	contacts "github.com/goliatone/go-contacts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfigFile(t, `
auth:
  signing_key: test-signing-key
  verification_key: test-verification-key
`)

	cfg, err := contacts.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, 15*time.Minute, cfg.GetAccessTokenTTL())
	assert.Equal(t, 720*time.Hour, cfg.GetRefreshTokenTTL())
	assert.Equal(t, time.Hour, cfg.GetVerificationMaxAge())
	assert.Equal(t, "header:Authorization", cfg.GetTokenLookup())
	assert.Equal(t, "Bearer", cfg.GetAuthScheme())
	assert.Equal(t, 5, cfg.RateLimit.Max)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
}

func TestLoadConfigOverrides(t *testing.T) {
	path := writeConfigFile(t, `
server:
  address: ":9000"
auth:
  signing_key: test-signing-key
  verification_key: test-verification-key
  access_token_ttl: 5m
  verification_max_age: 30m
rate_limit:
  max: 10
  window: 30s
`)

	cfg, err := contacts.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Server.Address)
	assert.Equal(t, 5*time.Minute, cfg.GetAccessTokenTTL())
	assert.Equal(t, 30*time.Minute, cfg.GetVerificationMaxAge())
	assert.Equal(t, 10, cfg.RateLimit.Max)
	assert.Equal(t, 30*time.Second, cfg.RateLimit.Window)
}

func TestLoadConfigValidation(t *testing.T) {
	tests := []struct {
		name     string
		contents string
	}{
		{
			name: "missing signing key",
			contents: `
auth:
  verification_key: test-verification-key
`,
		},
		{
			name: "missing verification key",
			contents: `
auth:
  signing_key: test-signing-key
`,
		},
		{
			name: "shared keys rejected",
			contents: `
auth:
  signing_key: same-key
  verification_key: same-key
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfigFile(t, tt.contents)
			_, err := contacts.LoadConfig(path)
			require.Error(t, err)
		})
	}
}
