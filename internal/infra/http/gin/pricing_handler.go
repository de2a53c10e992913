package ginserver

import (
	"net/http"
	"strconv"
	"strings"

	gin "github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"rentbook/internal/app/dto"
	pricingapp "rentbook/internal/app/handlers/pricing"
	"rentbook/internal/app/queries"
	domainpricing "rentbook/internal/domain/pricing"
)

type PricingHandler struct {
	Queries queries.Bus
}

func (h PricingHandler) ParsePrice(c *gin.Context) {
	query := pricingapp.ParsePriceQuery{Label: c.Query("label")}
	result, err := queries.Ask[pricingapp.ParsePriceQuery, dto.Rate](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Quote prices ?start=&end= for a listing. Any of service_pct, tax_pct,
// deposit or hours_per_day overrides the listing's fee terms.
func (h PricingHandler) Quote(c *gin.Context) {
	fees, err := feeOverrides(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	query := pricingapp.QuoteQuery{
		ListingID: c.Param("id"),
		Start:     c.Query("start"),
		End:       c.Query("end"),
		Fees:      fees,
	}
	result, err := queries.Ask[pricingapp.QuoteQuery, dto.Quote](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func feeOverrides(c *gin.Context) (*domainpricing.FeeConfig, error) {
	fees := domainpricing.DefaultFees()
	set := false
	for name, dst := range map[string]*decimal.Decimal{
		"service_pct": &fees.ServicePct,
		"tax_pct":     &fees.TaxPct,
		"deposit":     &fees.Deposit,
	} {
		raw := strings.TrimSpace(c.Query(name))
		if raw == "" {
			continue
		}
		value, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, err
		}
		*dst = value
		set = true
	}
	if raw := strings.TrimSpace(c.Query("hours_per_day")); raw != "" {
		hours, err := strconv.Atoi(raw)
		if err != nil {
			return nil, err
		}
		fees.HoursPerDay = hours
		set = true
	}
	if !set {
		return nil, nil
	}
	return &fees, nil
}

var _ PricingHTTP = PricingHandler{}
