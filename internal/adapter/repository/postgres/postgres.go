package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/vadimbarashkov/linksplit/internal/entity"
)

const uniqueViolationErrCode = "23505"

const linkColumns = `id, short_code, original_url, owner_id, view_count, duplicate_view_count,
	accrued_earnings, is_active, created_at, updated_at`

func isUniqueViolationError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationErrCode
}

type linkDB struct {
	ID                 int64           `db:"id"`
	ShortCode          string          `db:"short_code"`
	OriginalURL        string          `db:"original_url"`
	OwnerID            uuid.NullUUID   `db:"owner_id"`
	ViewCount          int64           `db:"view_count"`
	DuplicateViewCount int64           `db:"duplicate_view_count"`
	AccruedEarnings    decimal.Decimal `db:"accrued_earnings"`
	IsActive           bool            `db:"is_active"`
	CreatedAt          time.Time       `db:"created_at"`
	UpdatedAt          time.Time       `db:"updated_at"`
}

func (l *linkDB) toEntity() *entity.Link {
	link := &entity.Link{
		ID:          l.ID,
		ShortCode:   l.ShortCode,
		OriginalURL: l.OriginalURL,
		LinkStats: entity.LinkStats{
			ViewCount:          l.ViewCount,
			DuplicateViewCount: l.DuplicateViewCount,
			AccruedEarnings:    l.AccruedEarnings,
		},
		IsActive:  l.IsActive,
		CreatedAt: l.CreatedAt,
		UpdatedAt: l.UpdatedAt,
	}

	if l.OwnerID.Valid {
		owner := l.OwnerID.UUID
		link.OwnerID = &owner
	}

	return link
}

func toEntities(rows []linkDB) []*entity.Link {
	links := make([]*entity.Link, 0, len(rows))
	for i := range rows {
		links = append(links, rows[i].toEntity())
	}
	return links
}

func nullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}

type LinkRepository struct {
	db *sqlx.DB
}

func NewLinkRepository(db *sqlx.DB) *LinkRepository {
	return &LinkRepository{db: db}
}

func (r *LinkRepository) Save(ctx context.Context, shortCode, originalURL string, ownerID *uuid.UUID) (*entity.Link, error) {
	const op = "adapter.repository.postgres.LinkRepository.Save"
	const query = `INSERT INTO links(short_code, original_url, owner_id) VALUES ($1, $2, $3) RETURNING ` + linkColumns

	var link linkDB

	if err := r.db.GetContext(ctx, &link, query, shortCode, originalURL, nullUUID(ownerID)); err != nil {
		if isUniqueViolationError(err) {
			return nil, fmt.Errorf("%s: %w", op, entity.ErrShortCodeExists)
		}

		return nil, fmt.Errorf("%s: failed to insert into links table: %w", op, err)
	}

	return link.toEntity(), nil
}

func (r *LinkRepository) ShortCodeExists(ctx context.Context, shortCode string) (bool, error) {
	const op = "adapter.repository.postgres.LinkRepository.ShortCodeExists"
	const query = `SELECT EXISTS(SELECT 1 FROM links WHERE short_code = $1)`

	var exists bool

	if err := r.db.GetContext(ctx, &exists, query, shortCode); err != nil {
		return false, fmt.Errorf("%s: failed to query links table: %w", op, err)
	}

	return exists, nil
}

// RetrieveByShortCode returns active links only.
func (r *LinkRepository) RetrieveByShortCode(ctx context.Context, shortCode string) (*entity.Link, error) {
	const op = "adapter.repository.postgres.LinkRepository.RetrieveByShortCode"
	const query = `SELECT ` + linkColumns + ` FROM links WHERE short_code = $1 AND is_active`

	var link linkDB

	if err := r.db.GetContext(ctx, &link, query, shortCode); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, entity.ErrLinkNotFound)
		}

		return nil, fmt.Errorf("%s: failed to get row from links table: %w", op, err)
	}

	return link.toEntity(), nil
}

func (r *LinkRepository) RetrieveByID(ctx context.Context, id int64) (*entity.Link, error) {
	const op = "adapter.repository.postgres.LinkRepository.RetrieveByID"
	const query = `SELECT ` + linkColumns + ` FROM links WHERE id = $1`

	var link linkDB

	if err := r.db.GetContext(ctx, &link, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, entity.ErrLinkNotFound)
		}

		return nil, fmt.Errorf("%s: failed to get row from links table: %w", op, err)
	}

	return link.toEntity(), nil
}

// ListByOwner returns all links of the owner, removed ones included, oldest first.
func (r *LinkRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*entity.Link, error) {
	const op = "adapter.repository.postgres.LinkRepository.ListByOwner"
	const query = `SELECT ` + linkColumns + ` FROM links WHERE owner_id = $1 ORDER BY id`

	var rows []linkDB

	if err := r.db.SelectContext(ctx, &rows, query, ownerID); err != nil {
		return nil, fmt.Errorf("%s: failed to select from links table: %w", op, err)
	}

	return toEntities(rows), nil
}

// ListViewedAfter pages through links having at least one view by ascending id.
func (r *LinkRepository) ListViewedAfter(ctx context.Context, afterID int64, limit int) ([]*entity.Link, error) {
	const op = "adapter.repository.postgres.LinkRepository.ListViewedAfter"
	const query = `SELECT ` + linkColumns + ` FROM links WHERE id > $1 AND view_count > 0 ORDER BY id LIMIT $2`

	var rows []linkDB

	if err := r.db.SelectContext(ctx, &rows, query, afterID, limit); err != nil {
		return nil, fmt.Errorf("%s: failed to select from links table: %w", op, err)
	}

	return toEntities(rows), nil
}

func (r *LinkRepository) Deactivate(ctx context.Context, id int64) error {
	const op = "adapter.repository.postgres.LinkRepository.Deactivate"
	const query = `UPDATE links SET is_active = FALSE WHERE id = $1`

	return r.execOne(ctx, op, query, id)
}

func (r *LinkRepository) IncrementDuplicateViewCount(ctx context.Context, linkID int64) error {
	const op = "adapter.repository.postgres.LinkRepository.IncrementDuplicateViewCount"
	const query = `UPDATE links SET duplicate_view_count = duplicate_view_count + 1 WHERE id = $1`

	return r.execOne(ctx, op, query, linkID)
}

// UpdateEarnings writes amount only while the link still has viewCount views and
// reports whether the row was updated.
func (r *LinkRepository) UpdateEarnings(ctx context.Context, linkID, viewCount int64, amount decimal.Decimal) (bool, error) {
	const op = "adapter.repository.postgres.LinkRepository.UpdateEarnings"
	const query = `UPDATE links SET accrued_earnings = $3 WHERE id = $1 AND view_count = $2`

	res, err := r.db.ExecContext(ctx, query, linkID, viewCount, amount)
	if err != nil {
		return false, fmt.Errorf("%s: failed to update links table row: %w", op, err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: failed to get number of affected rows: %w", op, err)
	}

	return rowsAffected == 1, nil
}

func (r *LinkRepository) execOne(ctx context.Context, op, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: failed to update links table row: %w", op, err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: failed to get number of affected rows: %w", op, err)
	}

	if rowsAffected != 1 {
		return fmt.Errorf("%s: %w", op, entity.ErrLinkNotFound)
	}

	return nil
}
