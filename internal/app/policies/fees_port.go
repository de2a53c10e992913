package policies

import (
	"context"

	domainlistings "rentbook/internal/domain/listings"
	domainpricing "rentbook/internal/domain/pricing"
)

// FeePolicy resolves the receipt terms that apply to a listing.
type FeePolicy interface {
	FeesFor(ctx context.Context, listing *domainlistings.Listing) domainpricing.FeeConfig
}

// StaticFees applies one fee configuration to every listing.
type StaticFees domainpricing.FeeConfig

func (f StaticFees) FeesFor(context.Context, *domainlistings.Listing) domainpricing.FeeConfig {
	return domainpricing.FeeConfig(f)
}
