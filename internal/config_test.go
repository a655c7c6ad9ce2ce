package internal

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	t.Setenv("ENV", "")
	t.Setenv("API_URL", "")
	t.Chdir(t.TempDir())

	cfg, err := NewConfig(nil)
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, "http://localhost:3000/api", cfg.API.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.API.Timeout)
	assert.Equal(t, "local", cfg.State.Provider)
	assert.Equal(t, "ngn", cfg.Checkout.Currency)
	assert.Equal(t, "none", cfg.Events.Backend)
}

func TestNewConfig_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("API_URL", "https://shop.example.com/api/")
	t.Setenv("API_TIMEOUT", "5s")
	t.Setenv("CURRENCY", "USD")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")
	t.Setenv("ENV", "staging")

	cfg, err := NewConfig(nil)
	require.NoError(t, err)

	assert.Equal(t, "https://shop.example.com/api", cfg.API.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.API.Timeout)
	assert.Equal(t, "usd", cfg.Checkout.Currency)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Events.KafkaBrokers)
	assert.Equal(t, "prod", cfg.Env, "unknown env falls back to prod")
}

func TestNewConfig_FlagsWin(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("STATE_BACKEND", "redis")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("state", "", "")
	require.NoError(t, flags.Parse([]string{"--state=memory"}))

	cfg, err := NewConfig(flags)
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.State.Provider)
}

func TestNewConfig_R2RequiresCredentials(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("STATE_BACKEND", "r2")
	t.Setenv("R2_ACCOUNT_ID", "")

	_, err := NewConfig(nil)
	assert.ErrorContains(t, err, "R2_ACCOUNT_ID")
}

func TestConfig_ValidateCheckout(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"missing key", Config{Env: "dev"}, true},
		{"test key in dev", Config{Env: "dev", Stripe: StripeConfig{PublishableKey: "pk_test_123"}}, false},
		{"test key in prod", Config{Env: "prod", Stripe: StripeConfig{PublishableKey: "pk_test_123"}}, true},
		{"live key in prod", Config{Env: "prod", Stripe: StripeConfig{PublishableKey: "pk_live_123"}}, false},
		{"secret key refused", Config{Env: "dev", Stripe: StripeConfig{PublishableKey: "sk_test_123"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.ValidateCheckout()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewLogger_ProdIsJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "prod", "info")
	logger.Info().Str("key", "value").Msg("hello")
	logger.Debug().Msg("hidden")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "hello", line["message"])
	assert.Equal(t, "value", line["key"])
	assert.Contains(t, line, "time")
}
