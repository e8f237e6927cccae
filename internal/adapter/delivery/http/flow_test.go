package http

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gavv/httpexpect/v2"
	"github.com/go-chi/httplog/v2"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/vadimbarashkov/linksplit/internal/adapter/geo"
	"github.com/vadimbarashkov/linksplit/internal/adapter/repository/memory"
	sessionmemory "github.com/vadimbarashkov/linksplit/internal/adapter/session/memory"
	"github.com/vadimbarashkov/linksplit/internal/adapter/useragent"
	"github.com/vadimbarashkov/linksplit/internal/entity"
	"github.com/vadimbarashkov/linksplit/internal/metrics"
	"github.com/vadimbarashkov/linksplit/internal/usecase"
)

// FlowTestSuite drives the whole redirect flow through the router on in-memory stores.
type FlowTestSuite struct {
	suite.Suite
	store  *memory.Store
	server *httptest.Server
	e      *httpexpect.Expect
	owner  uuid.UUID
}

func (suite *FlowTestSuite) SetupSubTest() {
	httpLogger := httplog.NewLogger("", httplog.Options{Writer: io.Discard})
	logger := httpLogger.Logger

	suite.store = memory.NewStore()
	suite.owner = uuid.New()

	limiter := usecase.NewRateLimiter(suite.store, usecase.RateLimiterConfig{
		Enabled: true,
		Windows: entity.DefaultRateWindows,
	}, logger)
	calc := usecase.NewRevenueCalculator(suite.store, suite.store, entity.Rate{
		CPMRate:      decimal.RequireFromString("1.00"),
		RevenueShare: decimal.RequireFromString("0.50"),
	}, logger)
	gate := usecase.NewGate(sessionmemory.NewStore(time.Hour), suite.store, limiter, logger)
	recorder := usecase.NewViewRecorder(suite.store, suite.store, limiter, calc, logger)
	redirect := usecase.NewRedirectUseCase(gate, suite.store, recorder, geo.NewLocator(geo.Config{}, logger), useragent.NewParser(), logger)

	router := NewRouter(httpLogger, testConfig(), UseCases{
		Links:     usecase.NewLinkUseCase(suite.store, 6, logger),
		Analytics: usecase.NewAnalyticsUseCase(suite.store, suite.store),
		Redirect:  redirect,
		Limits:    limiter,
		Revenue:   calc,
	}, metrics.New(prometheus.NewRegistry()))

	suite.server = httptest.NewServer(router)
	suite.T().Cleanup(func() {
		suite.server.Close()
	})

	suite.e = httpexpect.Default(suite.T(), suite.server.URL)
}

func (suite *FlowTestSuite) shorten() string {
	return suite.e.POST("/api/v1/links").
		WithHeader("X-User-ID", suite.owner.String()).
		WithJSON(map[string]string{"url": "https://example.com/article"}).
		Expect().
		Status(http.StatusCreated).
		JSON().Object().
		Value("short_code").String().Raw()
}

// open issues a credential and returns the session cookie and token.
func (suite *FlowTestSuite) open(code, session string) (string, string) {
	req := suite.e.GET("/link/"+code).WithHeader("X-Forwarded-For", "203.0.113.7")
	if session != "" {
		req = req.WithCookie(testCookie, session)
	}

	resp := req.Expect().Status(http.StatusOK)

	if session == "" {
		session = resp.Cookie(testCookie).Value().Raw()
	}

	token := resp.JSON().Object().Value("token").String().Raw()

	return session, token
}

func (suite *FlowTestSuite) complete(code, session, token string) *httpexpect.Object {
	return suite.e.POST("/api/v1/complete-view").
		WithCookie(testCookie, session).
		WithHeader("X-Forwarded-For", "203.0.113.7").
		WithHeader("User-Agent", "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) Version/17.0 Mobile/15E148 Safari/604.1").
		WithJSON(map[string]any{"code": code, "token": token, "time_to_complete_seconds": 5}).
		Expect().
		Status(http.StatusOK).
		JSON().Object()
}

func (suite *FlowTestSuite) TestRedirectFlow() {
	suite.Run("view is recorded once", func() {
		code := suite.shorten()
		session, token := suite.open(code, "")

		first := suite.complete(code, session, token)
		first.HasValue("recorded", true)

		replay := suite.complete(code, session, token)
		replay.HasValue("recorded", false)
		replay.HasValue("message", usecase.MsgInvalidToken)

		stats := suite.e.GET("/api/v1/links/" + code).
			Expect().
			Status(http.StatusOK).
			JSON().Object().
			Value("stats").Object()

		stats.HasValue("view_count", 1)
		stats.HasValue("accrued_earnings", "0.0005")
	})

	suite.Run("reissue invalidates the earlier token", func() {
		code := suite.shorten()
		session, stale := suite.open(code, "")
		_, fresh := suite.open(code, session)

		suite.complete(code, session, stale).HasValue("recorded", false)
		suite.complete(code, session, fresh).HasValue("recorded", true)
	})

	suite.Run("token is bound to its session", func() {
		code := suite.shorten()
		_, token := suite.open(code, "")

		suite.complete(code, "another-session", token).
			HasValue("message", usecase.MsgInvalidToken)
	})

	suite.Run("sixth view in five minutes is rejected", func() {
		code := suite.shorten()

		for i := 0; i < 5; i++ {
			session, token := suite.open(code, "")
			suite.complete(code, session, token).HasValue("recorded", true)
		}

		session, token := suite.open(code, "")
		sixth := suite.complete(code, session, token)
		sixth.HasValue("recorded", false)
		sixth.HasValue("message", "5-minute limit exceeded: max 5 views per 5 minutes")

		suite.e.GET("/link/"+code).
			WithHeader("X-Forwarded-For", "203.0.113.7").
			Expect().
			Status(http.StatusOK).
			JSON().Object().
			HasValue("view_blocked", true)

		stats := suite.e.GET("/api/v1/links/" + code).
			Expect().
			Status(http.StatusOK).
			JSON().Object().
			Value("stats").Object()

		stats.HasValue("view_count", 5)
		stats.HasValue("duplicate_view_count", 1)

		suite.e.GET("/api/v1/limits").
			WithHeader("X-Forwarded-For", "203.0.113.7").
			Expect().
			Status(http.StatusOK).
			JSON().Object().
			Value("windows").Array().Value(0).Object().
			HasValue("views", 5).
			HasValue("remaining", 0)
	})

	suite.Run("removed link cannot be opened", func() {
		code := suite.shorten()

		suite.e.DELETE("/api/v1/links/"+code).
			WithHeader("X-User-ID", suite.owner.String()).
			Expect().
			Status(http.StatusNoContent)

		suite.e.GET("/link/" + code).
			Expect().
			Status(http.StatusNotFound)

		suite.e.GET("/api/v1/links").
			WithHeader("X-User-ID", suite.owner.String()).
			Expect().
			Status(http.StatusOK).
			JSON().Array().Value(0).Object().
			HasValue("is_active", false)
	})

	suite.Run("owner sees view analytics", func() {
		code := suite.shorten()
		session, token := suite.open(code, "")
		suite.complete(code, session, token).HasValue("recorded", true)

		suite.e.GET("/api/v1/links/"+code+"/analytics").
			WithHeader("X-User-ID", uuid.NewString()).
			Expect().
			Status(http.StatusForbidden)

		resp := suite.e.GET("/api/v1/links/"+code+"/analytics").
			WithHeader("X-User-ID", suite.owner.String()).
			Expect().
			Status(http.StatusOK).
			JSON().Object()

		resp.HasValue("total_views", 1)
		resp.HasValue("unique_clients", 1)
		resp.HasValue("avg_time_to_complete_seconds", 5)
		resp.Value("daily").Array().Length().IsEqual(usecase.DefaultAnalyticsDays)

		referrer := resp.Value("referrers").Array().Value(0).Object()
		referrer.HasValue("name", entity.DirectReferrer)
		referrer.HasValue("percentage", 100)
	})

	suite.Run("retroactive rate change", func() {
		code := suite.shorten()
		session, token := suite.open(code, "")
		suite.complete(code, session, token).HasValue("recorded", true)

		suite.e.PUT("/api/v1/admin/owners/"+suite.owner.String()+"/rates").
			WithHeader("X-Admin-Token", testAdminToken).
			WithJSON(map[string]any{"cpm_rate": "2.00", "revenue_share_percent": 100, "retroactive": true}).
			Expect().
			Status(http.StatusOK)

		suite.e.GET("/api/v1/links/" + code).
			Expect().
			Status(http.StatusOK).
			JSON().Object().
			Value("stats").Object().
			HasValue("accrued_earnings", "0.002")
	})
}

func TestFlowTestSuite(t *testing.T) {
	suite.Run(t, new(FlowTestSuite))
}
