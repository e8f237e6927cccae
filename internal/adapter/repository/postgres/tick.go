package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/vadimbarashkov/linksplit/internal/entity"
)

type TickRepository struct {
	db *sqlx.DB
}

func NewTickRepository(db *sqlx.DB) *TickRepository {
	return &TickRepository{db: db}
}

func (r *TickRepository) CountTicksSince(ctx context.Context, clientID string, since time.Time) (int64, error) {
	const op = "adapter.repository.postgres.TickRepository.CountTicksSince"
	const query = `SELECT COUNT(*) FROM client_view_ticks WHERE client_id = $1 AND occurred_at > $2`

	var count int64

	if err := r.db.GetContext(ctx, &count, query, clientID, since); err != nil {
		return 0, fmt.Errorf("%s: failed to count client_view_ticks rows: %w", op, err)
	}

	return count, nil
}

func (r *TickRepository) AppendTick(ctx context.Context, tick entity.ClientViewTick) error {
	const op = "adapter.repository.postgres.TickRepository.AppendTick"
	const query = `INSERT INTO client_view_ticks(client_id, occurred_at) VALUES ($1, $2)`

	if _, err := r.db.ExecContext(ctx, query, tick.ClientID, tick.OccurredAt); err != nil {
		return fmt.Errorf("%s: failed to insert into client_view_ticks table: %w", op, err)
	}

	return nil
}

// AdmitTick runs the window evaluation and the insert in one transaction that
// first takes a transaction scoped advisory lock on the client. Callers on any
// replica admitting the same client are serialized by the database.
func (r *TickRepository) AdmitTick(ctx context.Context, tick entity.ClientViewTick, windows []entity.RateWindow) (verdict entity.Verdict, err error) {
	const op = "adapter.repository.postgres.TickRepository.AdmitTick"
	const (
		lockQuery   = `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`
		countQuery  = `SELECT COUNT(*) FROM client_view_ticks WHERE client_id = $1 AND occurred_at > $2`
		insertQuery = `INSERT INTO client_view_ticks(client_id, occurred_at) VALUES ($1, $2)`
	)

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return entity.Verdict{}, fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}
	defer func() {
		if err != nil || !verdict.Allowed {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, lockQuery, tick.ClientID); err != nil {
		return entity.Verdict{}, fmt.Errorf("%s: failed to lock client: %w", op, err)
	}

	verdict, err = entity.EvaluateWindows(windows, tick.OccurredAt, func(since time.Time) (int64, error) {
		var count int64
		err := tx.GetContext(ctx, &count, countQuery, tick.ClientID, since)
		return count, err
	})
	if err != nil {
		return entity.Verdict{}, fmt.Errorf("%s: %w", op, err)
	}
	if !verdict.Allowed {
		return verdict, nil
	}

	if _, err = tx.ExecContext(ctx, insertQuery, tick.ClientID, tick.OccurredAt); err != nil {
		return entity.Verdict{}, fmt.Errorf("%s: failed to insert into client_view_ticks table: %w", op, err)
	}

	if err = tx.Commit(); err != nil {
		return entity.Verdict{}, fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	return verdict, nil
}

func (r *TickRepository) DeleteTicksBefore(ctx context.Context, before time.Time) (int64, error) {
	const op = "adapter.repository.postgres.TickRepository.DeleteTicksBefore"
	const query = `DELETE FROM client_view_ticks WHERE occurred_at < $1`

	res, err := r.db.ExecContext(ctx, query, before)
	if err != nil {
		return 0, fmt.Errorf("%s: failed to delete from client_view_ticks table: %w", op, err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: failed to get number of affected rows: %w", op, err)
	}

	return rowsAffected, nil
}
