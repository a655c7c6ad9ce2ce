package billing

import (
	"strings"
	"time"
)

// StripeConfig contains configuration for the Stripe authorizer.
type StripeConfig struct {
	// APIKey is the Stripe publishable key (pk_test_... or pk_live_...).
	// Confirmation is authorized by the intent's client secret, so the
	// merchant's secret key never reaches the storefront.
	APIKey string

	// APIURL overrides the API base URL, e.g. a local stripe-mock.
	APIURL string

	// MaxRetries is the maximum number of retries for transient failures
	// Default: 2
	MaxRetries int

	// TimeoutSeconds is the HTTP timeout for Stripe API calls in seconds
	// Default: 30
	TimeoutSeconds int
}

// Validate checks that required configuration is present.
func (c *StripeConfig) Validate() error {
	if c.APIKey == "" {
		return ErrInvalidAPIKey
	}
	if !strings.HasPrefix(c.APIKey, "pk_") {
		return ErrInvalidAPIKey
	}
	return nil
}

// IsTestMode returns true if using test mode API keys.
func (c *StripeConfig) IsTestMode() bool {
	return strings.HasPrefix(c.APIKey, "pk_test_")
}

func (c *StripeConfig) retries() int64 {
	if c.MaxRetries < 0 {
		return 0
	}
	if c.MaxRetries == 0 {
		return 2
	}
	return int64(c.MaxRetries)
}

func (c *StripeConfig) timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}
