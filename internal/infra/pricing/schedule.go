package pricing

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"rentbook/internal/app/policies"
	domainlistings "rentbook/internal/domain/listings"
	domainpricing "rentbook/internal/domain/pricing"
)

// Terms is a partial fee configuration. Empty fields inherit.
type Terms struct {
	ServicePct  string `yaml:"service_pct"`
	TaxPct      string `yaml:"tax_pct"`
	Deposit     string `yaml:"deposit"`
	HoursPerDay int    `yaml:"hours_per_day"`
}

// File is the fee schedule document:
//
//	default:
//	  service_pct: 0.10
//	categories:
//	  dress:
//	    deposit: 100
//	listings:
//	  hw-1:
//	    tax_pct: 0
type File struct {
	Default    Terms            `yaml:"default"`
	Categories map[string]Terms `yaml:"categories"`
	Listings   map[string]Terms `yaml:"listings"`
}

// LoadFile reads a schedule; an empty path yields an empty schedule.
func LoadFile(path string) (File, error) {
	if strings.TrimSpace(path) == "" {
		return File{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("pricing: read fee schedule: %w", err)
	}
	return ParseFile(data)
}

func ParseFile(data []byte) (File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return File{}, fmt.Errorf("pricing: decode fee schedule: %w", err)
	}
	return f, nil
}

// Schedule resolves fee terms per listing: listing entry, then category
// entry, then the default.
type Schedule struct {
	Default    domainpricing.FeeConfig
	categories map[string]domainpricing.FeeConfig
	listings   map[string]domainpricing.FeeConfig
}

// Build layers the file default and then overrides on top of the built-in
// fees. Category and listing entries layer on top of that result.
func (f File) Build(overrides Terms) (*Schedule, error) {
	def, err := apply(domainpricing.DefaultFees(), f.Default)
	if err != nil {
		return nil, fmt.Errorf("pricing: default terms: %w", err)
	}
	if def, err = apply(def, overrides); err != nil {
		return nil, fmt.Errorf("pricing: fee overrides: %w", err)
	}
	s := &Schedule{
		Default:    def,
		categories: make(map[string]domainpricing.FeeConfig, len(f.Categories)),
		listings:   make(map[string]domainpricing.FeeConfig, len(f.Listings)),
	}
	for name, terms := range f.Categories {
		cfg, err := apply(def, terms)
		if err != nil {
			return nil, fmt.Errorf("pricing: category %q: %w", name, err)
		}
		s.categories[strings.ToLower(strings.TrimSpace(name))] = cfg
	}
	for id, terms := range f.Listings {
		cfg, err := apply(def, terms)
		if err != nil {
			return nil, fmt.Errorf("pricing: listing %q: %w", id, err)
		}
		s.listings[strings.TrimSpace(id)] = cfg
	}
	return s, nil
}

func (s *Schedule) FeesFor(_ context.Context, listing *domainlistings.Listing) domainpricing.FeeConfig {
	if listing == nil {
		return s.Default
	}
	if cfg, ok := s.listings[string(listing.ID)]; ok {
		return cfg
	}
	if cfg, ok := s.categories[strings.ToLower(listing.Category)]; ok {
		return cfg
	}
	return s.Default
}

func apply(base domainpricing.FeeConfig, t Terms) (domainpricing.FeeConfig, error) {
	out := base
	var errs []error
	set := func(raw string, dst *decimal.Decimal, field string) {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			return
		}
		d, err := decimal.NewFromString(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", field, err))
			return
		}
		*dst = d
	}
	set(t.ServicePct, &out.ServicePct, "service_pct")
	set(t.TaxPct, &out.TaxPct, "tax_pct")
	set(t.Deposit, &out.Deposit, "deposit")
	if t.HoursPerDay != 0 {
		out.HoursPerDay = t.HoursPerDay
	}
	if len(errs) > 0 {
		return base, errors.Join(errs...)
	}
	if err := out.Validate(); err != nil {
		return base, err
	}
	return out, nil
}

var _ policies.FeePolicy = (*Schedule)(nil)
