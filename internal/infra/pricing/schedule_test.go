package pricing

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainlistings "rentbook/internal/domain/listings"
	domainpricing "rentbook/internal/domain/pricing"
)

const scheduleYAML = `
default:
  service_pct: 0.12
categories:
  Dress:
    deposit: 100
listings:
  hw-1:
    tax_pct: 0
    hours_per_day: 10
`

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestScheduleResolution(t *testing.T) {
	file, err := ParseFile([]byte(scheduleYAML))
	require.NoError(t, err)
	sched, err := file.Build(Terms{TaxPct: "0.08"})
	require.NoError(t, err)

	ctx := context.Background()
	def := sched.FeesFor(ctx, &domainlistings.Listing{ID: "x", Category: "Tools"})
	assert.True(t, dec("0.12").Equal(def.ServicePct))
	assert.True(t, dec("0.08").Equal(def.TaxPct), "env override wins over file default")
	assert.True(t, dec("50").Equal(def.Deposit))

	dress := sched.FeesFor(ctx, &domainlistings.Listing{ID: "d", Category: "dress"})
	assert.True(t, dec("100").Equal(dress.Deposit))
	assert.True(t, dec("0.08").Equal(dress.TaxPct))

	hw := sched.FeesFor(ctx, &domainlistings.Listing{ID: "hw-1", Category: "Dress"})
	assert.True(t, hw.TaxPct.IsZero())
	assert.Equal(t, 10, hw.HoursPerDay)
	assert.True(t, dec("50").Equal(hw.Deposit), "listing entry layers on the default, not the category")

	assert.Equal(t, sched.Default, sched.FeesFor(ctx, nil))
}

func TestScheduleRejectsBadTerms(t *testing.T) {
	_, err := File{Default: Terms{Deposit: "lots"}}.Build(Terms{})
	assert.Error(t, err)

	_, err = File{Categories: map[string]Terms{"x": {TaxPct: "-0.1"}}}.Build(Terms{})
	assert.ErrorIs(t, err, domainpricing.ErrInvalidFees)

	_, err = ParseFile([]byte("default: [1, 2"))
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	empty, err := LoadFile("")
	require.NoError(t, err)
	sched, err := empty.Build(Terms{})
	require.NoError(t, err)
	assert.Equal(t, domainpricing.DefaultFees(), sched.Default)

	path := filepath.Join(t.TempDir(), "fees.yaml")
	require.NoError(t, os.WriteFile(path, []byte(scheduleYAML), 0o600))
	file, err := LoadFile(path)
	require.NoError(t, err)
	assert.Contains(t, file.Categories, "Dress")

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
