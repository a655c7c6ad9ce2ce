// Package shipping prices delivery for checkout. Fees are looked up by the
// customer's delivery region (a state name) and are integer minor units.
package shipping

import (
	"context"
)

// OthersRegion is the fallback entry used for any region not listed.
const OthersRegion = "Others"

// Provider quotes delivery fees.
type Provider interface {
	// Fee returns the delivery fee for region in minor units.
	Fee(ctx context.Context, region string) (int64, error)

	// Regions lists the regions with their own fee, in display order.
	// The fallback region is last.
	Regions() []Region
}

// Region is one row of a fee table.
type Region struct {
	Name     string `json:"name"`
	FeeMinor int64  `json:"fee"`
}
