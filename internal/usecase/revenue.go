package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/vadimbarashkov/linksplit/internal/entity"
)

const (
	viewsPerMille        = 1000
	milleScale     int32 = 10
	earningsScale  int32 = 4
	reconcileBatch       = 500
	maxCASAttempts       = 3
)

type rateRepository interface {
	RetrieveRateOverride(ctx context.Context, ownerID uuid.UUID) (*entity.RateOverride, error)
	SaveRateOverride(ctx context.Context, override entity.RateOverride) error
	DeleteRateOverride(ctx context.Context, ownerID uuid.UUID) error
}

type earningsRepository interface {
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*entity.Link, error)
	ListViewedAfter(ctx context.Context, afterID int64, limit int) ([]*entity.Link, error)
	RetrieveByID(ctx context.Context, id int64) (*entity.Link, error)
	UpdateEarnings(ctx context.Context, linkID, viewCount int64, amount decimal.Decimal) (bool, error)
}

// Earnings returns the owner's share for viewCount views:
// round_half_up_4(round_half_up_10(viewCount / 1000) * cpm * share).
func Earnings(viewCount int64, rate entity.Rate) decimal.Decimal {
	if viewCount <= 0 {
		return decimal.Zero
	}

	mille := decimal.NewFromInt(viewCount).DivRound(decimal.NewFromInt(viewsPerMille), milleScale)

	return mille.Mul(rate.CPMRate).Mul(rate.RevenueShare).Round(earningsScale)
}

// RevenueCalculator resolves owner rates and keeps accrued earnings in line with view counts.
type RevenueCalculator struct {
	rates    rateRepository
	links    earningsRepository
	defaults entity.Rate
	logger   *slog.Logger
}

func NewRevenueCalculator(rates rateRepository, links earningsRepository, defaults entity.Rate, logger *slog.Logger) *RevenueCalculator {
	return &RevenueCalculator{
		rates:    rates,
		links:    links,
		defaults: defaults,
		logger:   logger,
	}
}

// DefaultRate returns the system wide rate.
func (c *RevenueCalculator) DefaultRate() entity.Rate {
	return c.defaults
}

// EffectiveRate merges the owner's override over the defaults. Anonymous links use the defaults.
func (c *RevenueCalculator) EffectiveRate(ctx context.Context, ownerID *uuid.UUID) (entity.Rate, error) {
	const op = "usecase.RevenueCalculator.EffectiveRate"

	if ownerID == nil {
		return c.defaults, nil
	}

	override, err := c.rates.RetrieveRateOverride(ctx, *ownerID)
	if err != nil {
		return entity.Rate{}, fmt.Errorf("%s: failed to retrieve rate override: %w", op, err)
	}

	return override.Apply(c.defaults), nil
}

// Recalculate rewrites the accrued earnings of every link of the owner from its
// current view count. Running it twice yields the same amounts.
func (c *RevenueCalculator) Recalculate(ctx context.Context, ownerID uuid.UUID) (int, error) {
	const op = "usecase.RevenueCalculator.Recalculate"

	rate, err := c.EffectiveRate(ctx, &ownerID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	links, err := c.links.ListByOwner(ctx, ownerID)
	if err != nil {
		return 0, fmt.Errorf("%s: failed to list links: %w", op, err)
	}

	updated := 0

	for _, link := range links {
		changed, err := c.recalculateLink(ctx, link, rate)
		if err != nil {
			return updated, fmt.Errorf("%s: %w", op, err)
		}
		if changed {
			updated++
		}
	}

	c.logger.Info("earnings recalculated",
		slog.String("owner_id", ownerID.String()),
		slog.Int("links", len(links)),
		slog.Int("updated", updated),
	)

	return updated, nil
}

// UpdateOwnerRates stores a custom rate for the owner. Fields left nil keep
// falling back to the defaults. With retroactive set, existing earnings are recomputed.
func (c *RevenueCalculator) UpdateOwnerRates(ctx context.Context, override entity.RateOverride, retroactive bool) (entity.Rate, error) {
	const op = "usecase.RevenueCalculator.UpdateOwnerRates"

	rate := override.Apply(c.defaults)
	if err := rate.Validate(); err != nil {
		return entity.Rate{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := c.rates.SaveRateOverride(ctx, override); err != nil {
		return entity.Rate{}, fmt.Errorf("%s: failed to save rate override: %w", op, err)
	}

	if retroactive {
		if _, err := c.Recalculate(ctx, override.OwnerID); err != nil {
			return entity.Rate{}, fmt.Errorf("%s: %w", op, err)
		}
	}

	return rate, nil
}

// ResetOwnerRates removes the owner's custom rate.
func (c *RevenueCalculator) ResetOwnerRates(ctx context.Context, ownerID uuid.UUID, retroactive bool) (entity.Rate, error) {
	const op = "usecase.RevenueCalculator.ResetOwnerRates"

	if err := c.rates.DeleteRateOverride(ctx, ownerID); err != nil {
		return entity.Rate{}, fmt.Errorf("%s: failed to delete rate override: %w", op, err)
	}

	if retroactive {
		if _, err := c.Recalculate(ctx, ownerID); err != nil {
			return entity.Rate{}, fmt.Errorf("%s: %w", op, err)
		}
	}

	return c.defaults, nil
}

// Reconcile walks every viewed link and fixes earnings that drifted from
// the owner's current rate.
func (c *RevenueCalculator) Reconcile(ctx context.Context) (int, error) {
	const op = "usecase.RevenueCalculator.Reconcile"

	var (
		afterID int64
		checked int
		updated int
		rates   = make(map[uuid.UUID]entity.Rate)
	)

	for {
		links, err := c.links.ListViewedAfter(ctx, afterID, reconcileBatch)
		if err != nil {
			return updated, fmt.Errorf("%s: failed to list links: %w", op, err)
		}

		for _, link := range links {
			afterID = link.ID
			checked++

			rate := c.defaults
			if link.OwnerID != nil {
				r, ok := rates[*link.OwnerID]
				if !ok {
					if r, err = c.EffectiveRate(ctx, link.OwnerID); err != nil {
						return updated, fmt.Errorf("%s: %w", op, err)
					}
					rates[*link.OwnerID] = r
				}
				rate = r
			}

			changed, err := c.recalculateLink(ctx, link, rate)
			if err != nil {
				return updated, fmt.Errorf("%s: %w", op, err)
			}
			if changed {
				updated++
			}
		}

		if len(links) < reconcileBatch {
			break
		}
	}

	c.logger.Info("earnings reconciled", slog.Int("checked", checked), slog.Int("updated", updated))

	return updated, nil
}

// recalculateLink writes the earnings for link's view count. When a concurrent
// view moves the count between read and write, the link is reloaded and retried.
func (c *RevenueCalculator) recalculateLink(ctx context.Context, link *entity.Link, rate entity.Rate) (bool, error) {
	for i := 0; i < maxCASAttempts; i++ {
		amount := Earnings(link.ViewCount, rate)
		if amount.Equal(link.AccruedEarnings) {
			return false, nil
		}

		applied, err := c.links.UpdateEarnings(ctx, link.ID, link.ViewCount, amount)
		if err != nil {
			return false, fmt.Errorf("failed to update earnings of link %d: %w", link.ID, err)
		}
		if applied {
			return true, nil
		}

		if link, err = c.links.RetrieveByID(ctx, link.ID); err != nil {
			return false, fmt.Errorf("failed to reload link: %w", err)
		}
	}

	c.logger.Warn("gave up recalculating busy link", slog.Int64("link_id", link.ID))

	return false, nil
}
