// Package memory implements every repository on top of process memory.
// It backs local runs without a database and the concurrency tests of the use cases.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/vadimbarashkov/linksplit/internal/entity"
	"github.com/vadimbarashkov/linksplit/pkg/keylock"
)

// Store keeps links, view events, rate limiter ticks and owner rates.
// All methods are safe for concurrent use.
type Store struct {
	mu        sync.Mutex
	nextID    int64
	links     map[int64]*entity.Link
	codes     map[string]int64
	views     []entity.ViewEvent
	ticks     map[string][]time.Time
	overrides map[uuid.UUID]entity.RateOverride
	clients   *keylock.KeyLock
	now       func() time.Time
}

func NewStore() *Store {
	return &Store{
		links:     make(map[int64]*entity.Link),
		codes:     make(map[string]int64),
		ticks:     make(map[string][]time.Time),
		overrides: make(map[uuid.UUID]entity.RateOverride),
		clients:   keylock.New(),
		now:       time.Now,
	}
}

func (s *Store) Save(_ context.Context, shortCode, originalURL string, ownerID *uuid.UUID) (*entity.Link, error) {
	const op = "adapter.repository.memory.Store.Save"

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.codes[shortCode]; ok {
		return nil, fmt.Errorf("%s: %w", op, entity.ErrShortCodeExists)
	}

	s.nextID++
	now := s.now().UTC()

	link := &entity.Link{
		ID:          s.nextID,
		ShortCode:   shortCode,
		OriginalURL: originalURL,
		OwnerID:     ownerID,
		LinkStats:   entity.LinkStats{AccruedEarnings: decimal.Zero},
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	s.links[link.ID] = link
	s.codes[shortCode] = link.ID

	return clone(link), nil
}

func (s *Store) ShortCodeExists(_ context.Context, shortCode string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.codes[shortCode]
	return ok, nil
}

// RetrieveByShortCode returns active links only.
func (s *Store) RetrieveByShortCode(_ context.Context, shortCode string) (*entity.Link, error) {
	const op = "adapter.repository.memory.Store.RetrieveByShortCode"

	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.codes[shortCode]
	if !ok || !s.links[id].IsActive {
		return nil, fmt.Errorf("%s: %w", op, entity.ErrLinkNotFound)
	}

	return clone(s.links[id]), nil
}

func (s *Store) RetrieveByID(_ context.Context, id int64) (*entity.Link, error) {
	const op = "adapter.repository.memory.Store.RetrieveByID"

	s.mu.Lock()
	defer s.mu.Unlock()

	link, ok := s.links[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, entity.ErrLinkNotFound)
	}

	return clone(link), nil
}

func (s *Store) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]*entity.Link, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var links []*entity.Link

	for _, link := range s.links {
		if link.OwnerID != nil && *link.OwnerID == ownerID {
			links = append(links, clone(link))
		}
	}

	sortByID(links)

	return links, nil
}

func (s *Store) ListViewedAfter(_ context.Context, afterID int64, limit int) ([]*entity.Link, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var links []*entity.Link

	for _, link := range s.links {
		if link.ID > afterID && link.ViewCount > 0 {
			links = append(links, clone(link))
		}
	}

	sortByID(links)

	if len(links) > limit {
		links = links[:limit]
	}

	return links, nil
}

func (s *Store) Deactivate(_ context.Context, id int64) error {
	const op = "adapter.repository.memory.Store.Deactivate"

	s.mu.Lock()
	defer s.mu.Unlock()

	link, ok := s.links[id]
	if !ok {
		return fmt.Errorf("%s: %w", op, entity.ErrLinkNotFound)
	}

	link.IsActive = false
	link.UpdatedAt = s.now().UTC()

	return nil
}

func (s *Store) IncrementDuplicateViewCount(_ context.Context, linkID int64) error {
	const op = "adapter.repository.memory.Store.IncrementDuplicateViewCount"

	s.mu.Lock()
	defer s.mu.Unlock()

	link, ok := s.links[linkID]
	if !ok {
		return fmt.Errorf("%s: %w", op, entity.ErrLinkNotFound)
	}

	link.DuplicateViewCount++

	return nil
}

func (s *Store) UpdateEarnings(_ context.Context, linkID, viewCount int64, amount decimal.Decimal) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	link, ok := s.links[linkID]
	if !ok || link.ViewCount != viewCount {
		return false, nil
	}

	link.AccruedEarnings = amount
	link.UpdatedAt = s.now().UTC()

	return true, nil
}

func (s *Store) SaveViewAndIncrement(_ context.Context, view entity.ViewEvent) (int64, error) {
	const op = "adapter.repository.memory.Store.SaveViewAndIncrement"

	s.mu.Lock()
	defer s.mu.Unlock()

	link, ok := s.links[view.LinkID]
	if !ok {
		return 0, fmt.Errorf("%s: %w", op, entity.ErrLinkNotFound)
	}

	view.ID = int64(len(s.views) + 1)
	s.views = append(s.views, view)

	link.ViewCount++
	link.UpdatedAt = s.now().UTC()

	return link.ViewCount, nil
}

// Views returns a copy of the recorded view events of a link.
func (s *Store) Views(linkID int64) []entity.ViewEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	var views []entity.ViewEvent

	for _, v := range s.views {
		if v.LinkID == linkID {
			views = append(views, v)
		}
	}

	return views
}

func (s *Store) SummarizeViews(_ context.Context, linkID int64, dr entity.DateRange) (entity.ViewSummary, error) {
	var (
		summary entity.ViewSummary
		clients = make(map[string]struct{})
		ttcSum  int64
		ttcN    int64
	)

	for _, v := range s.viewsIn(linkID, dr) {
		summary.TotalViews++
		if v.Completed {
			summary.CompletedViews++
		}
		clients[v.ClientID] = struct{}{}

		if v.TimeToCompleteSeconds != nil {
			ttcSum += int64(*v.TimeToCompleteSeconds)
			ttcN++
		}
	}

	summary.UniqueClients = int64(len(clients))
	if ttcN > 0 {
		summary.AvgTimeToCompleteSecs = float64(ttcSum) / float64(ttcN)
	}

	return summary, nil
}

func (s *Store) CountViewsBy(_ context.Context, linkID int64, dim entity.AnalyticsDimension, dr entity.DateRange, limit int) ([]entity.Bucket, error) {
	const op = "adapter.repository.memory.Store.CountViewsBy"

	counts := make(map[string]int64)

	for _, v := range s.viewsIn(linkID, dr) {
		var key string

		switch dim {
		case entity.DimensionDevice:
			key = v.Metadata.DeviceType
		case entity.DimensionBrowser:
			key = v.Metadata.Browser
		case entity.DimensionOperatingSystem:
			key = v.Metadata.OperatingSystem
		case entity.DimensionCountry:
			key = v.Metadata.Country
		case entity.DimensionReferrer:
			key = entity.ReferrerDomain(v.Metadata.Referrer)
		default:
			return nil, fmt.Errorf("%s: unknown dimension %q", op, dim)
		}

		counts[key]++
	}

	buckets := make([]entity.Bucket, 0, len(counts))
	for k, n := range counts {
		buckets = append(buckets, entity.Bucket{Key: k, Count: n})
	}

	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].Count != buckets[j].Count {
			return buckets[i].Count > buckets[j].Count
		}
		return buckets[i].Key < buckets[j].Key
	})

	if len(buckets) > limit {
		buckets = buckets[:limit]
	}

	return buckets, nil
}

func (s *Store) CountViewsByDay(_ context.Context, linkID int64, dr entity.DateRange) ([]entity.DailyCount, error) {
	counts := make(map[time.Time]int64)

	for _, v := range s.viewsIn(linkID, dr) {
		counts[v.ViewedAt.UTC().Truncate(24*time.Hour)]++
	}

	days := make([]entity.DailyCount, 0, len(counts))
	for d, n := range counts {
		days = append(days, entity.DailyCount{Day: d, Count: n})
	}

	sort.Slice(days, func(i, j int) bool {
		return days[i].Day.Before(days[j].Day)
	})

	return days, nil
}

func (s *Store) viewsIn(linkID int64, dr entity.DateRange) []entity.ViewEvent {
	var views []entity.ViewEvent

	for _, v := range s.Views(linkID) {
		if dr.Contains(v.ViewedAt) {
			views = append(views, v)
		}
	}

	return views
}

func (s *Store) CountTicksSince(_ context.Context, clientID string, since time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64

	for _, t := range s.ticks[clientID] {
		if t.After(since) {
			n++
		}
	}

	return n, nil
}

func (s *Store) AppendTick(_ context.Context, tick entity.ClientViewTick) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ticks[tick.ClientID] = append(s.ticks[tick.ClientID], tick.OccurredAt)

	return nil
}

// AdmitTick holds the client's lock across evaluation and append. Other clients
// are not blocked.
func (s *Store) AdmitTick(ctx context.Context, tick entity.ClientViewTick, windows []entity.RateWindow) (entity.Verdict, error) {
	const op = "adapter.repository.memory.Store.AdmitTick"

	unlock := s.clients.Lock(tick.ClientID)
	defer unlock()

	verdict, err := entity.EvaluateWindows(windows, tick.OccurredAt, func(since time.Time) (int64, error) {
		return s.CountTicksSince(ctx, tick.ClientID, since)
	})
	if err != nil {
		return entity.Verdict{}, fmt.Errorf("%s: %w", op, err)
	}
	if !verdict.Allowed {
		return verdict, nil
	}

	if err := s.AppendTick(ctx, tick); err != nil {
		return entity.Verdict{}, fmt.Errorf("%s: %w", op, err)
	}

	return verdict, nil
}

func (s *Store) DeleteTicksBefore(_ context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64

	for clientID, ticks := range s.ticks {
		kept := ticks[:0]
		for _, t := range ticks {
			if t.Before(before) {
				deleted++
				continue
			}
			kept = append(kept, t)
		}

		if len(kept) == 0 {
			delete(s.ticks, clientID)
		} else {
			s.ticks[clientID] = kept
		}
	}

	return deleted, nil
}

// RetrieveRateOverride returns nil without error when the owner has no custom rate.
func (s *Store) RetrieveRateOverride(_ context.Context, ownerID uuid.UUID) (*entity.RateOverride, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.overrides[ownerID]
	if !ok {
		return nil, nil
	}

	return &o, nil
}

func (s *Store) SaveRateOverride(_ context.Context, override entity.RateOverride) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.overrides[override.OwnerID] = override

	return nil
}

func (s *Store) DeleteRateOverride(_ context.Context, ownerID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.overrides, ownerID)

	return nil
}

func clone(link *entity.Link) *entity.Link {
	c := *link
	return &c
}

func sortByID(links []*entity.Link) {
	sort.Slice(links, func(i, j int) bool {
		return links[i].ID < links[j].ID
	})
}
