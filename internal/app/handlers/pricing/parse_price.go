package pricing

import (
	"context"

	"rentbook/internal/app/dto"
	"rentbook/internal/app/queries"
	domainpricing "rentbook/internal/domain/pricing"
)

const parsePriceKey = "pricing.parse"

type ParsePriceQuery struct {
	Label string
}

func (q ParsePriceQuery) Key() string { return parsePriceKey }

// ParsePriceHandler exposes the lenient label parser; it never fails.
type ParsePriceHandler struct{}

func (ParsePriceHandler) Handle(ctx context.Context, q ParsePriceQuery) (dto.Rate, error) {
	return dto.MapRate(domainpricing.ParsePrice(q.Label)), nil
}

var _ queries.Handler[ParsePriceQuery, dto.Rate] = ParsePriceHandler{}
