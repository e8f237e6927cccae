package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/vadimbarashkov/linksplit/internal/adapter/repository/memory"
	"github.com/vadimbarashkov/linksplit/internal/entity"
	"github.com/vadimbarashkov/linksplit/mocks/usecase"
)

type ViewRecorderTestSuite struct {
	suite.Suite
	store    *memory.Store
	limiter  *RateLimiter
	calc     *RevenueCalculator
	recorder *ViewRecorder
	owner    uuid.UUID
	link     *entity.Link
}

func (suite *ViewRecorderTestSuite) SetupSubTest() {
	suite.store = memory.NewStore()
	suite.limiter = NewRateLimiter(suite.store, RateLimiterConfig{Enabled: true, Windows: entity.DefaultRateWindows}, discardLogger())
	suite.calc = NewRevenueCalculator(suite.store, suite.store, entity.Rate{CPMRate: dec("1.00"), RevenueShare: dec("0.50")}, discardLogger())
	suite.recorder = NewViewRecorder(suite.store, suite.store, suite.limiter, suite.calc, discardLogger())
	suite.owner = uuid.New()

	var err error
	suite.link, err = suite.store.Save(context.Background(), "abc123", "https://example.com", &suite.owner)
	suite.Require().NoError(err)
}

func (suite *ViewRecorderTestSuite) reload() *entity.Link {
	link, err := suite.store.RetrieveByID(context.Background(), suite.link.ID)
	suite.Require().NoError(err)
	return link
}

func (suite *ViewRecorderTestSuite) TestRecordView() {
	ctx := context.Background()

	suite.Run("records view and earnings", func() {
		seconds := 7
		meta := entity.ViewMetadata{Browser: "Chrome", Referrer: "https://news.example.com"}

		res, err := suite.recorder.RecordView(ctx, suite.link, "203.0.113.7", meta, &seconds)

		suite.NoError(err)
		suite.True(res.Recorded)
		suite.Equal(int64(1), res.ViewCount)

		link := suite.reload()
		suite.Equal(int64(1), link.ViewCount)
		suite.True(link.AccruedEarnings.Equal(dec("0.0005")))

		views := suite.store.Views(suite.link.ID)
		suite.Require().Len(views, 1)
		suite.Equal("203.0.113.7", views[0].ClientID)
		suite.Equal("Chrome", views[0].Metadata.Browser)
		suite.Equal(7, *views[0].TimeToCompleteSeconds)
		suite.True(views[0].Completed)
	})

	suite.Run("sixth view is rejected", func() {
		for i := 0; i < 5; i++ {
			res, err := suite.recorder.RecordView(ctx, suite.link, "203.0.113.7", entity.ViewMetadata{}, nil)
			suite.Require().NoError(err)
			suite.Require().True(res.Recorded)
		}

		res, err := suite.recorder.RecordView(ctx, suite.link, "203.0.113.7", entity.ViewMetadata{}, nil)

		suite.NoError(err)
		suite.False(res.Recorded)
		suite.Equal("5-minute limit exceeded: max 5 views per 5 minutes", res.Message)

		link := suite.reload()
		suite.Equal(int64(5), link.ViewCount)
		suite.Equal(int64(1), link.DuplicateViewCount)
		suite.True(link.AccruedEarnings.Equal(Earnings(5, suite.calc.DefaultRate())))
	})

	suite.Run("owner override applies", func() {
		suite.Require().NoError(suite.store.SaveRateOverride(ctx, entity.RateOverride{
			OwnerID:      suite.owner,
			CPMRate:      decPtr("1.50"),
			RevenueShare: decPtr("0.70"),
		}))

		for i := 0; i < 40; i++ {
			_, err := suite.store.SaveViewAndIncrement(ctx, entity.ViewEvent{LinkID: suite.link.ID})
			suite.Require().NoError(err)
		}

		res, err := suite.recorder.RecordView(ctx, suite.link, "client", entity.ViewMetadata{}, nil)
		suite.NoError(err)
		suite.Equal(int64(41), res.ViewCount)

		suite.True(suite.reload().AccruedEarnings.Equal(dec("0.0431")))
	})

	suite.Run("concurrent views are all counted", func() {
		const n = 100

		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				res, err := suite.recorder.RecordView(ctx, suite.link, fmt.Sprintf("client-%d", i), entity.ViewMetadata{}, nil)
				suite.NoError(err)
				suite.True(res.Recorded)
			}(i)
		}
		wg.Wait()

		link := suite.reload()
		suite.Equal(int64(n), link.ViewCount)
		suite.True(link.AccruedEarnings.Equal(Earnings(n, suite.calc.DefaultRate())), "earnings %s", link.AccruedEarnings)
	})

	suite.Run("persistence error keeps the tick", func() {
		errUnknown := errors.New("unknown error")

		views := usecase.NewMockViewRepository(suite.T())
		views.On("SaveViewAndIncrement", ctx, mock.Anything).Once().Return(int64(0), errUnknown)

		recorder := NewViewRecorder(views, suite.store, suite.limiter, suite.calc, discardLogger())

		res, err := recorder.RecordView(ctx, suite.link, "client", entity.ViewMetadata{}, nil)

		suite.ErrorIs(err, errUnknown)
		suite.False(res.Recorded)

		stats, err := suite.limiter.Stats(ctx, "client")
		suite.Require().NoError(err)
		suite.Equal(int64(1), stats[0].Count)
	})
}

func TestViewRecorderTestSuite(t *testing.T) {
	suite.Run(t, new(ViewRecorderTestSuite))
}
