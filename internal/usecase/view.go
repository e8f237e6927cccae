package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/vadimbarashkov/linksplit/internal/entity"
)

type viewRepository interface {
	// SaveViewAndIncrement appends the view event and increments the link's view
	// count in one transaction, returning the new count.
	SaveViewAndIncrement(ctx context.Context, view entity.ViewEvent) (int64, error)
}

type linkCounter interface {
	IncrementDuplicateViewCount(ctx context.Context, linkID int64) error
	// UpdateEarnings stores amount only if the link still has viewCount views.
	UpdateEarnings(ctx context.Context, linkID, viewCount int64, amount decimal.Decimal) (bool, error)
}

type viewAdmitter interface {
	AdmitAndRecord(ctx context.Context, clientID string) (entity.Verdict, error)
}

type rateResolver interface {
	EffectiveRate(ctx context.Context, ownerID *uuid.UUID) (entity.Rate, error)
}

// ViewRecorder turns a redeemed credential into a counted, monetized view.
type ViewRecorder struct {
	views   viewRepository
	links   linkCounter
	limiter viewAdmitter
	rates   rateResolver
	logger  *slog.Logger
	now     func() time.Time
}

func NewViewRecorder(views viewRepository, links linkCounter, limiter viewAdmitter, rates rateResolver, logger *slog.Logger) *ViewRecorder {
	return &ViewRecorder{
		views:   views,
		links:   links,
		limiter: limiter,
		rates:   rates,
		logger:  logger,
		now:     time.Now,
	}
}

// RecordView admits the client against the rate limiter and, when allowed,
// persists the view and refreshes the link's earnings from the new count.
//
// A denied view is reported through the result, not as an error. Once admitted
// the rate limiter tick stays even if persistence fails afterwards.
func (r *ViewRecorder) RecordView(ctx context.Context, link *entity.Link, clientID string, meta entity.ViewMetadata, timeToComplete *int) (entity.RecordResult, error) {
	const op = "usecase.ViewRecorder.RecordView"

	verdict, err := r.limiter.AdmitAndRecord(ctx, clientID)
	if err != nil {
		return entity.RecordResult{}, fmt.Errorf("%s: %w", op, err)
	}

	if !verdict.Allowed {
		if err := r.links.IncrementDuplicateViewCount(ctx, link.ID); err != nil {
			r.logger.Warn("failed to count duplicate view", slog.String("op", op), slog.Any("err", err))
		}

		return entity.RecordResult{Message: verdict.Reason()}, nil
	}

	rate, err := r.rates.EffectiveRate(ctx, link.OwnerID)
	if err != nil {
		return entity.RecordResult{}, fmt.Errorf("%s: %w", op, err)
	}

	viewCount, err := r.views.SaveViewAndIncrement(ctx, entity.ViewEvent{
		LinkID:                link.ID,
		ClientID:              clientID,
		ViewedAt:              r.now().UTC(),
		Metadata:              meta,
		TimeToCompleteSeconds: timeToComplete,
		Completed:             true,
	})
	if err != nil {
		return entity.RecordResult{}, fmt.Errorf("%s: failed to save view: %w", op, err)
	}

	applied, err := r.links.UpdateEarnings(ctx, link.ID, viewCount, Earnings(viewCount, rate))
	if err != nil {
		return entity.RecordResult{}, fmt.Errorf("%s: failed to update earnings: %w", op, err)
	}
	if !applied {
		r.logger.Debug("earnings already advanced by a later view",
			slog.Int64("link_id", link.ID),
			slog.Int64("view_count", viewCount),
		)
	}

	return entity.RecordResult{
		Recorded:  true,
		Message:   "view recorded",
		ViewCount: viewCount,
	}, nil
}
