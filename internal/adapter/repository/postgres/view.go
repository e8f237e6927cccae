package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/vadimbarashkov/linksplit/internal/entity"
)

type ViewRepository struct {
	db *sqlx.DB
}

func NewViewRepository(db *sqlx.DB) *ViewRepository {
	return &ViewRepository{db: db}
}

// SaveViewAndIncrement inserts the view event and bumps the link's view count in
// one transaction. The row lock taken by the UPDATE orders concurrent views, so
// every caller gets a distinct count.
func (r *ViewRepository) SaveViewAndIncrement(ctx context.Context, view entity.ViewEvent) (count int64, err error) {
	const op = "adapter.repository.postgres.ViewRepository.SaveViewAndIncrement"
	const insertQuery = `INSERT INTO view_events(
		link_id, client_id, viewed_at, user_agent, device_type, browser, operating_system,
		country, region, city, referrer, session_id, time_to_complete_seconds, completed
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	const updateQuery = `UPDATE links SET view_count = view_count + 1 WHERE id = $1 RETURNING view_count`

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var ttc sql.NullInt32
	if view.TimeToCompleteSeconds != nil {
		ttc = sql.NullInt32{Int32: int32(*view.TimeToCompleteSeconds), Valid: true}
	}

	m := view.Metadata

	if _, err = tx.ExecContext(ctx, insertQuery,
		view.LinkID, view.ClientID, view.ViewedAt, m.UserAgent, m.DeviceType, m.Browser, m.OperatingSystem,
		m.Country, m.Region, m.City, m.Referrer, m.SessionID, ttc, view.Completed,
	); err != nil {
		return 0, fmt.Errorf("%s: failed to insert into view_events table: %w", op, err)
	}

	if err = tx.GetContext(ctx, &count, updateQuery, view.LinkID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("%s: %w", op, entity.ErrLinkNotFound)
		}

		return 0, fmt.Errorf("%s: failed to update links table row: %w", op, err)
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	return count, nil
}

const viewRangeFilter = `link_id = $1 AND viewed_at >= $2 AND viewed_at < $3`

// dimensionExprs whitelists the expressions analytics may group by. Referrers
// are reduced to their lowercased host; anything without a scheme becomes ''.
var dimensionExprs = map[entity.AnalyticsDimension]string{
	entity.DimensionDevice:          `device_type`,
	entity.DimensionBrowser:         `browser`,
	entity.DimensionOperatingSystem: `operating_system`,
	entity.DimensionCountry:         `country`,
	entity.DimensionReferrer:        `COALESCE(lower(substring(referrer FROM '^[A-Za-z][A-Za-z0-9+.-]*://(?:[^@/]*@)?([^/:?#]+)')), '')`,
}

type viewSummaryDB struct {
	TotalViews        int64   `db:"total_views"`
	CompletedViews    int64   `db:"completed_views"`
	UniqueClients     int64   `db:"unique_clients"`
	AvgTimeToComplete float64 `db:"avg_time_to_complete"`
}

type bucketDB struct {
	Key   string `db:"key"`
	Count int64  `db:"count"`
}

type dailyCountDB struct {
	Day   time.Time `db:"day"`
	Count int64     `db:"count"`
}

func (r *ViewRepository) SummarizeViews(ctx context.Context, linkID int64, dr entity.DateRange) (entity.ViewSummary, error) {
	const op = "adapter.repository.postgres.ViewRepository.SummarizeViews"
	const query = `SELECT
		COUNT(*) AS total_views,
		COUNT(*) FILTER (WHERE completed) AS completed_views,
		COUNT(DISTINCT client_id) AS unique_clients,
		COALESCE(AVG(time_to_complete_seconds), 0)::float8 AS avg_time_to_complete
	FROM view_events WHERE ` + viewRangeFilter

	var row viewSummaryDB

	if err := r.db.GetContext(ctx, &row, query, linkID, dr.From, dr.To); err != nil {
		return entity.ViewSummary{}, fmt.Errorf("%s: failed to summarize view_events: %w", op, err)
	}

	return entity.ViewSummary{
		TotalViews:            row.TotalViews,
		CompletedViews:        row.CompletedViews,
		UniqueClients:         row.UniqueClients,
		AvgTimeToCompleteSecs: row.AvgTimeToComplete,
	}, nil
}

// CountViewsBy returns the limit most frequent values of dim, most frequent first.
func (r *ViewRepository) CountViewsBy(ctx context.Context, linkID int64, dim entity.AnalyticsDimension, dr entity.DateRange, limit int) ([]entity.Bucket, error) {
	const op = "adapter.repository.postgres.ViewRepository.CountViewsBy"

	expr, ok := dimensionExprs[dim]
	if !ok {
		return nil, fmt.Errorf("%s: unknown dimension %q", op, dim)
	}

	query := `SELECT ` + expr + ` AS key, COUNT(*) AS count
	FROM view_events WHERE ` + viewRangeFilter + `
	GROUP BY 1 ORDER BY count DESC, key LIMIT $4`

	var rows []bucketDB

	if err := r.db.SelectContext(ctx, &rows, query, linkID, dr.From, dr.To, limit); err != nil {
		return nil, fmt.Errorf("%s: failed to group view_events by %s: %w", op, dim, err)
	}

	buckets := make([]entity.Bucket, 0, len(rows))
	for _, row := range rows {
		buckets = append(buckets, entity.Bucket{Key: row.Key, Count: row.Count})
	}

	return buckets, nil
}

// CountViewsByDay returns one entry per UTC day that has views, oldest first.
func (r *ViewRepository) CountViewsByDay(ctx context.Context, linkID int64, dr entity.DateRange) ([]entity.DailyCount, error) {
	const op = "adapter.repository.postgres.ViewRepository.CountViewsByDay"
	const query = `SELECT date_trunc('day', viewed_at AT TIME ZONE 'UTC') AS day, COUNT(*) AS count
	FROM view_events WHERE ` + viewRangeFilter + `
	GROUP BY 1 ORDER BY 1`

	var rows []dailyCountDB

	if err := r.db.SelectContext(ctx, &rows, query, linkID, dr.From, dr.To); err != nil {
		return nil, fmt.Errorf("%s: failed to group view_events by day: %w", op, err)
	}

	days := make([]entity.DailyCount, 0, len(rows))
	for _, row := range rows {
		d := row.Day
		days = append(days, entity.DailyCount{
			Day:   time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC),
			Count: row.Count,
		})
	}

	return days, nil
}
