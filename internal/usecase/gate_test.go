package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/vadimbarashkov/linksplit/internal/adapter/repository/memory"
	sessionmemory "github.com/vadimbarashkov/linksplit/internal/adapter/session/memory"
	"github.com/vadimbarashkov/linksplit/internal/entity"
	"github.com/vadimbarashkov/linksplit/mocks/usecase"
)

type GateTestSuite struct {
	suite.Suite
	store    *memory.Store
	sessions *sessionmemory.Store
	limiter  *RateLimiter
	gate     *Gate
	link     *entity.Link
}

func (suite *GateTestSuite) SetupSubTest() {
	suite.store = memory.NewStore()
	suite.sessions = sessionmemory.NewStore(time.Hour)
	suite.limiter = NewRateLimiter(suite.store, RateLimiterConfig{Enabled: true, Windows: entity.DefaultRateWindows}, discardLogger())
	suite.gate = NewGate(suite.sessions, suite.store, suite.limiter, discardLogger())

	n := 0
	suite.gate.newToken = func() (string, error) {
		n++
		return fmt.Sprintf("token-%d", n), nil
	}

	var err error
	suite.link, err = suite.store.Save(context.Background(), "abc123", "https://example.com", nil)
	suite.Require().NoError(err)
}

func (suite *GateTestSuite) TestIssue() {
	ctx := context.Background()

	suite.Run("unknown link", func() {
		res, err := suite.gate.Issue(ctx, "sess", "client", "zzzzzz", "")

		suite.ErrorIs(err, entity.ErrLinkNotFound)
		suite.Nil(res)
	})

	suite.Run("deactivated link", func() {
		suite.Require().NoError(suite.store.Deactivate(ctx, suite.link.ID))

		res, err := suite.gate.Issue(ctx, "sess", "client", "abc123", "")

		suite.ErrorIs(err, entity.ErrLinkNotFound)
		suite.Nil(res)
	})

	suite.Run("success", func() {
		res, err := suite.gate.Issue(ctx, "sess", "client", "abc123", "https://news.example.com")

		suite.NoError(err)
		suite.Equal("token-1", res.Credential.Token)
		suite.Equal("abc123", res.Credential.LinkCode)
		suite.Equal("https://example.com", res.Link.OriginalURL)
		suite.True(res.Advisory.Allowed)
	})

	suite.Run("advisory verdict does not block issuance", func() {
		for i := 0; i < 5; i++ {
			_, err := suite.limiter.AdmitAndRecord(ctx, "client")
			suite.Require().NoError(err)
		}

		res, err := suite.gate.Issue(ctx, "sess", "client", "abc123", "")

		suite.NoError(err)
		suite.NotEmpty(res.Credential.Token)
		suite.False(res.Advisory.Allowed)
		suite.Equal("5-minute", res.Advisory.Window.Name)
	})

	suite.Run("session store error", func() {
		errUnknown := errors.New("unknown error")

		sessions := usecase.NewMockSessionStore(suite.T())
		sessions.On("Put", ctx, "sess", "ad_session:abc123", mock.Anything).Once().Return(errUnknown)

		gate := NewGate(sessions, suite.store, suite.limiter, discardLogger())

		res, err := gate.Issue(ctx, "sess", "client", "abc123", "")

		suite.ErrorIs(err, errUnknown)
		suite.Nil(res)
	})
}

func (suite *GateTestSuite) TestRedeem() {
	ctx := context.Background()

	suite.Run("nothing issued", func() {
		r, err := suite.gate.Redeem(ctx, "sess", "abc123", "token-1")

		suite.NoError(err)
		suite.Equal(entity.RedeemMismatch, r.Outcome)
	})

	suite.Run("matched once", func() {
		_, err := suite.gate.Issue(ctx, "sess", "client", "abc123", "https://news.example.com")
		suite.Require().NoError(err)

		r, err := suite.gate.Redeem(ctx, "sess", "abc123", "token-1")
		suite.NoError(err)
		suite.Equal(entity.RedeemMatched, r.Outcome)
		suite.Equal("https://news.example.com", r.Referrer)
		suite.False(r.IssuedAt.IsZero())

		r, err = suite.gate.Redeem(ctx, "sess", "abc123", "token-1")
		suite.NoError(err)
		suite.Equal(entity.RedeemMismatch, r.Outcome)
	})

	suite.Run("wrong token clears the credential", func() {
		_, err := suite.gate.Issue(ctx, "sess", "client", "abc123", "")
		suite.Require().NoError(err)

		r, err := suite.gate.Redeem(ctx, "sess", "abc123", "guess")
		suite.NoError(err)
		suite.Equal(entity.RedeemMismatch, r.Outcome)

		r, err = suite.gate.Redeem(ctx, "sess", "abc123", "token-1")
		suite.NoError(err)
		suite.Equal(entity.RedeemMismatch, r.Outcome)
	})

	suite.Run("reissue invalidates the earlier token", func() {
		first, err := suite.gate.Issue(ctx, "sess", "client", "abc123", "")
		suite.Require().NoError(err)
		second, err := suite.gate.Issue(ctx, "sess", "client", "abc123", "")
		suite.Require().NoError(err)
		suite.NotEqual(first.Credential.Token, second.Credential.Token)

		r, err := suite.gate.Redeem(ctx, "sess", "abc123", first.Credential.Token)
		suite.NoError(err)
		suite.Equal(entity.RedeemMismatch, r.Outcome)
	})

	suite.Run("reissued token matches", func() {
		_, err := suite.gate.Issue(ctx, "sess", "client", "abc123", "")
		suite.Require().NoError(err)
		second, err := suite.gate.Issue(ctx, "sess", "client", "abc123", "")
		suite.Require().NoError(err)

		r, err := suite.gate.Redeem(ctx, "sess", "abc123", second.Credential.Token)
		suite.NoError(err)
		suite.Equal(entity.RedeemMatched, r.Outcome)
	})

	suite.Run("credential is bound to the session", func() {
		_, err := suite.gate.Issue(ctx, "sess", "client", "abc123", "")
		suite.Require().NoError(err)

		r, err := suite.gate.Redeem(ctx, "other", "abc123", "token-1")
		suite.NoError(err)
		suite.Equal(entity.RedeemMismatch, r.Outcome)
	})

	suite.Run("session store error", func() {
		errUnknown := errors.New("unknown error")

		sessions := usecase.NewMockSessionStore(suite.T())
		sessions.On("Take", ctx, "sess", "ad_session:abc123").Once().Return("", false, errUnknown)

		gate := NewGate(sessions, suite.store, suite.limiter, discardLogger())

		_, err := gate.Redeem(ctx, "sess", "abc123", "token-1")

		suite.ErrorIs(err, errUnknown)
	})
}

func TestGateTestSuite(t *testing.T) {
	suite.Run(t, new(GateTestSuite))
}
