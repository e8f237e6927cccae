package entity

import (
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrInvalidRate is returned when a CPM rate is not positive or a revenue share lies outside [0, 1].
var ErrInvalidRate = errors.New("invalid revenue rate")

// Rate is the effective monetization rate of an owner.
type Rate struct {
	CPMRate      decimal.Decimal // CPMRate is the gross amount paid per thousand views.
	RevenueShare decimal.Decimal // RevenueShare is the fraction of the gross amount credited to the owner.
}

// Validate checks the rate bounds.
func (r Rate) Validate() error {
	if !r.CPMRate.IsPositive() {
		return ErrInvalidRate
	}
	if r.RevenueShare.IsNegative() || r.RevenueShare.GreaterThan(decimal.NewFromInt(1)) {
		return ErrInvalidRate
	}
	return nil
}

// RateOverride holds the per-owner custom rates. A nil field falls back to the system default.
type RateOverride struct {
	OwnerID      uuid.UUID
	CPMRate      *decimal.Decimal
	RevenueShare *decimal.Decimal
}

// Apply merges the override field by field over defaults.
func (o *RateOverride) Apply(defaults Rate) Rate {
	rate := defaults
	if o == nil {
		return rate
	}
	if o.CPMRate != nil {
		rate.CPMRate = *o.CPMRate
	}
	if o.RevenueShare != nil {
		rate.RevenueShare = *o.RevenueShare
	}
	return rate
}
