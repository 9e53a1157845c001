package secrets

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newVault(t *testing.T, path, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != path || r.Header.Get("X-Vault-Token") != "root" {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"errors":["permission denied"]}`))
			return
		}
		_, _ = w.Write([]byte(body))
	}))
}

func TestApply_KVv2(t *testing.T) {
	server := newVault(t, "/v1/secret/data/healthbuddy",
		`{"data":{"data":{"GEMINI_API_KEY":"g-key","GOOGLE_MAPS_KEY":"m-key","UNRELATED":"x"}}}`)
	defer server.Close()

	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_MAPS_KEY", "from-env")
	t.Setenv("UNRELATED", "")

	result, err := Apply(context.Background(), VaultConfig{
		Enabled: true, Addr: server.URL, Token: "root", Mount: "secret", Path: "healthbuddy", KVVersion: 2,
	})

	require.NoError(t, err)
	assert.Equal(t, 1, result.Loaded)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, "g-key", os.Getenv("GEMINI_API_KEY"))
	assert.Equal(t, "from-env", os.Getenv("GOOGLE_MAPS_KEY"))
	assert.Equal(t, "", os.Getenv("UNRELATED"))
}

func TestFetch_KVv1(t *testing.T) {
	server := newVault(t, "/v1/kv/app", `{"data":{"HF_TOKEN":"hf_123","PORT":8080}}`)
	defer server.Close()

	data, err := Fetch(context.Background(), VaultConfig{
		Addr: server.URL + "/", Token: "root", Mount: "kv", Path: "/app", KVVersion: 1,
	})

	require.NoError(t, err)
	assert.Equal(t, "hf_123", data["HF_TOKEN"])
	assert.Equal(t, "8080", data["PORT"])
}

func TestFetch_Denied(t *testing.T) {
	server := newVault(t, "/v1/secret/data/healthbuddy", `{}`)
	defer server.Close()

	_, err := Fetch(context.Background(), VaultConfig{
		Addr: server.URL, Token: "wrong", Mount: "secret", Path: "healthbuddy", KVVersion: 2,
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "permission denied")
}

func TestApply_Disabled(t *testing.T) {
	result, err := Apply(context.Background(), VaultConfig{})
	require.NoError(t, err)
	assert.False(t, result.Enabled)
}

func TestFetch_IncompleteConfig(t *testing.T) {
	_, err := Fetch(context.Background(), VaultConfig{Enabled: true, Addr: "http://vault"})
	require.Error(t, err)
}

func TestLoadVaultConfigFromEnv(t *testing.T) {
	t.Setenv("VAULT_ENABLED", "TRUE")
	t.Setenv("VAULT_MOUNT", "")
	t.Setenv("VAULT_KV_VERSION", "1")
	t.Setenv("VAULT_TIMEOUT", "2s")

	cfg := LoadVaultConfigFromEnv()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, "secret", cfg.Mount)
	assert.Equal(t, 1, cfg.KVVersion)
	assert.Equal(t, "2s", cfg.Timeout.String())
}
