package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/vadimbarashkov/linksplit/internal/entity"
)

type rateDB struct {
	OwnerID      uuid.UUID           `db:"owner_id"`
	CPMRate      decimal.NullDecimal `db:"cpm_rate"`
	RevenueShare decimal.NullDecimal `db:"revenue_share"`
}

func (r *rateDB) toEntity() *entity.RateOverride {
	o := &entity.RateOverride{OwnerID: r.OwnerID}

	if r.CPMRate.Valid {
		cpm := r.CPMRate.Decimal
		o.CPMRate = &cpm
	}
	if r.RevenueShare.Valid {
		share := r.RevenueShare.Decimal
		o.RevenueShare = &share
	}

	return o
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(*d)
}

type RateRepository struct {
	db *sqlx.DB
}

func NewRateRepository(db *sqlx.DB) *RateRepository {
	return &RateRepository{db: db}
}

// RetrieveRateOverride returns nil without error when the owner has no custom rate.
func (r *RateRepository) RetrieveRateOverride(ctx context.Context, ownerID uuid.UUID) (*entity.RateOverride, error) {
	const op = "adapter.repository.postgres.RateRepository.RetrieveRateOverride"
	const query = `SELECT owner_id, cpm_rate, revenue_share FROM owner_rates WHERE owner_id = $1`

	var rate rateDB

	if err := r.db.GetContext(ctx, &rate, query, ownerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("%s: failed to get row from owner_rates table: %w", op, err)
	}

	return rate.toEntity(), nil
}

func (r *RateRepository) SaveRateOverride(ctx context.Context, override entity.RateOverride) error {
	const op = "adapter.repository.postgres.RateRepository.SaveRateOverride"
	const query = `INSERT INTO owner_rates(owner_id, cpm_rate, revenue_share) VALUES ($1, $2, $3)
		ON CONFLICT (owner_id) DO UPDATE
		SET cpm_rate = EXCLUDED.cpm_rate, revenue_share = EXCLUDED.revenue_share, updated_at = NOW()`

	if _, err := r.db.ExecContext(ctx, query,
		override.OwnerID, nullDecimal(override.CPMRate), nullDecimal(override.RevenueShare),
	); err != nil {
		return fmt.Errorf("%s: failed to upsert into owner_rates table: %w", op, err)
	}

	return nil
}

func (r *RateRepository) DeleteRateOverride(ctx context.Context, ownerID uuid.UUID) error {
	const op = "adapter.repository.postgres.RateRepository.DeleteRateOverride"
	const query = `DELETE FROM owner_rates WHERE owner_id = $1`

	if _, err := r.db.ExecContext(ctx, query, ownerID); err != nil {
		return fmt.Errorf("%s: failed to delete from owner_rates table: %w", op, err)
	}

	return nil
}
