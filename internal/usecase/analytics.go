package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vadimbarashkov/linksplit/internal/entity"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultAnalyticsDays is the range used when the caller gives no start date.
	DefaultAnalyticsDays = 30
	// MaxAnalyticsDays bounds a single analytics request.
	MaxAnalyticsDays = 366

	analyticsTopN = 10
)

type analyticsRepository interface {
	SummarizeViews(ctx context.Context, linkID int64, dr entity.DateRange) (entity.ViewSummary, error)
	// CountViewsBy returns at most limit buckets, most frequent first.
	CountViewsBy(ctx context.Context, linkID int64, dim entity.AnalyticsDimension, dr entity.DateRange, limit int) ([]entity.Bucket, error)
	// CountViewsByDay omits days without views.
	CountViewsByDay(ctx context.Context, linkID int64, dr entity.DateRange) ([]entity.DailyCount, error)
}

// AnalyticsUseCase reports how, where and when the views of a link happened.
type AnalyticsUseCase struct {
	links linkFinder
	views analyticsRepository
	now   func() time.Time
}

func NewAnalyticsUseCase(links linkFinder, views analyticsRepository) *AnalyticsUseCase {
	return &AnalyticsUseCase{
		links: links,
		views: views,
		now:   time.Now,
	}
}

// LinkAnalytics aggregates the views of the owner's link within dr. A zero
// dr.To means the end of today (UTC), a zero dr.From means DefaultAnalyticsDays
// before dr.To. Days without views appear in the daily series with a zero count.
func (uc *AnalyticsUseCase) LinkAnalytics(ctx context.Context, shortCode string, ownerID uuid.UUID, dr entity.DateRange) (*entity.LinkAnalytics, error) {
	const op = "usecase.AnalyticsUseCase.LinkAnalytics"

	dr, err := uc.normalizeRange(dr)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	link, err := uc.links.RetrieveByShortCode(ctx, shortCode)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to retrieve link: %w", op, err)
	}

	if link.OwnerID == nil || *link.OwnerID != ownerID {
		return nil, fmt.Errorf("%s: %w", op, entity.ErrForbidden)
	}

	res := &entity.LinkAnalytics{
		Link:      link,
		Range:     dr,
		Breakdown: make(map[entity.AnalyticsDimension][]entity.Bucket, len(entity.AnalyticsDimensions)),
	}
	breakdown := make([][]entity.Bucket, len(entity.AnalyticsDimensions))

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		summary, err := uc.views.SummarizeViews(gctx, link.ID, dr)
		if err != nil {
			return err
		}
		res.Summary = summary
		return nil
	})

	for i, dim := range entity.AnalyticsDimensions {
		g.Go(func() error {
			buckets, err := uc.views.CountViewsBy(gctx, link.ID, dim, dr, analyticsTopN)
			if err != nil {
				return err
			}
			breakdown[i] = labelBuckets(dim, buckets)
			return nil
		})
	}

	g.Go(func() error {
		days, err := uc.views.CountViewsByDay(gctx, link.ID, dr)
		if err != nil {
			return err
		}
		res.Daily = fillDays(dr, days)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%s: failed to aggregate views: %w", op, err)
	}

	for i, dim := range entity.AnalyticsDimensions {
		res.Breakdown[dim] = breakdown[i]
	}

	return res, nil
}

func (uc *AnalyticsUseCase) normalizeRange(dr entity.DateRange) (entity.DateRange, error) {
	if dr.To.IsZero() {
		dr.To = startOfDay(uc.now()).AddDate(0, 0, 1)
	}
	if dr.From.IsZero() {
		dr.From = dr.To.AddDate(0, 0, -DefaultAnalyticsDays)
	}

	dr.From, dr.To = startOfDay(dr.From), startOfDay(dr.To)

	if !dr.From.Before(dr.To) {
		return entity.DateRange{}, fmt.Errorf("start must precede end: %w", entity.ErrInvalidRange)
	}
	if dr.Days() > MaxAnalyticsDays {
		return entity.DateRange{}, fmt.Errorf("range exceeds %d days: %w", MaxAnalyticsDays, entity.ErrInvalidRange)
	}

	return dr, nil
}

// labelBuckets names the empty key: a missing referrer is direct traffic,
// anything else could not be resolved.
func labelBuckets(dim entity.AnalyticsDimension, buckets []entity.Bucket) []entity.Bucket {
	empty := entity.UnknownTag
	if dim == entity.DimensionReferrer {
		empty = entity.DirectReferrer
	}

	for i := range buckets {
		if buckets[i].Key == "" {
			buckets[i].Key = empty
		}
	}

	return buckets
}

func fillDays(dr entity.DateRange, days []entity.DailyCount) []entity.DailyCount {
	counts := make(map[time.Time]int64, len(days))
	for _, d := range days {
		counts[startOfDay(d.Day)] += d.Count
	}

	series := make([]entity.DailyCount, 0, dr.Days())
	for d := dr.From; d.Before(dr.To); d = d.AddDate(0, 0, 1) {
		series = append(series, entity.DailyCount{Day: d, Count: counts[d]})
	}

	return series
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
