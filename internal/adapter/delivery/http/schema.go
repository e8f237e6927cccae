package http

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/vadimbarashkov/linksplit/internal/entity"
	"github.com/vadimbarashkov/linksplit/internal/usecase"
	"github.com/vadimbarashkov/linksplit/pkg/response"
)

var hundred = decimal.NewFromInt(100)

var invalidURLResponse = response.ErrorResponse(
	"Invalid URL",
	"URL must be an absolute http:// or https:// URL of at most 2048 characters.",
)

// linkRequest represents the structure for a request to shorten a URL.
type linkRequest struct {
	URL string `json:"url" validate:"required,max=2048"`
}

// linkResponse represents a shortened link together with its statistics.
type linkResponse struct {
	ID          int64      `json:"id"`
	ShortCode   string     `json:"short_code"`
	OriginalURL string     `json:"original_url"`
	OwnerID     *uuid.UUID `json:"owner_id,omitempty"`
	IsActive    bool       `json:"is_active"`
	Stats       linkStats  `json:"stats"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type linkStats struct {
	ViewCount          int64           `json:"view_count"`
	DuplicateViewCount int64           `json:"duplicate_view_count"`
	AccruedEarnings    decimal.Decimal `json:"accrued_earnings"`
}

func toLinkResponse(link *entity.Link) linkResponse {
	return linkResponse{
		ID:          link.ID,
		ShortCode:   link.ShortCode,
		OriginalURL: link.OriginalURL,
		OwnerID:     link.OwnerID,
		IsActive:    link.IsActive,
		Stats: linkStats{
			ViewCount:          link.ViewCount,
			DuplicateViewCount: link.DuplicateViewCount,
			AccruedEarnings:    link.AccruedEarnings,
		},
		CreatedAt: link.CreatedAt,
		UpdatedAt: link.UpdatedAt,
	}
}

func toLinkResponses(links []*entity.Link) []linkResponse {
	resp := make([]linkResponse, 0, len(links))
	for _, link := range links {
		resp = append(resp, toLinkResponse(link))
	}
	return resp
}

// issueResponse is returned when a visitor opens the interstitial page.
type issueResponse struct {
	ShortCode        string `json:"short_code"`
	DestinationURL   string `json:"destination_url"`
	CountdownSeconds int    `json:"countdown_seconds"`
	Token            string `json:"token"`
	RateLimitMessage string `json:"rate_limit_message,omitempty"`
	ViewBlocked      bool   `json:"view_blocked"`
}

func toIssueResponse(res *usecase.IssueResult, countdown int) issueResponse {
	resp := issueResponse{
		ShortCode:        res.Link.ShortCode,
		DestinationURL:   res.Link.OriginalURL,
		CountdownSeconds: countdown,
		Token:            res.Credential.Token,
	}

	if !res.Advisory.Allowed {
		resp.RateLimitMessage = res.Advisory.Reason()
		resp.ViewBlocked = true
	}

	return resp
}

type completeViewRequest struct {
	Code                  string `json:"code" validate:"required"`
	Token                 string `json:"token" validate:"required"`
	TimeToCompleteSeconds *int   `json:"time_to_complete_seconds" validate:"omitempty,gte=0"`
}

type completeViewResponse struct {
	Recorded bool   `json:"recorded"`
	Message  string `json:"message"`
}

type limitsResponse struct {
	ClientID string        `json:"client_id"`
	Windows  []windowUsage `json:"windows"`
}

type windowUsage struct {
	Name            string `json:"name"`
	DurationSeconds int64  `json:"duration_seconds"`
	MaxViews        int64  `json:"max_views"`
	Views           int64  `json:"views"`
	Remaining       int64  `json:"remaining"`
}

func toLimitsResponse(clientID string, counts []entity.WindowCount) limitsResponse {
	resp := limitsResponse{
		ClientID: clientID,
		Windows:  make([]windowUsage, 0, len(counts)),
	}

	for _, c := range counts {
		resp.Windows = append(resp.Windows, windowUsage{
			Name:            c.Window.Name,
			DurationSeconds: int64(c.Window.Duration.Seconds()),
			MaxViews:        c.Window.MaxEvents,
			Views:           c.Count,
			Remaining:       max(c.Window.MaxEvents-c.Count, 0),
		})
	}

	return resp
}

// ratesRequest updates or resets the custom rates of an owner. The share is sent
// as a percentage.
type ratesRequest struct {
	CPMRate             *decimal.Decimal `json:"cpm_rate"`
	RevenueSharePercent *decimal.Decimal `json:"revenue_share_percent"`
	Reset               bool             `json:"reset"`
	Retroactive         bool             `json:"retroactive"`
}

func (req ratesRequest) toOverride(ownerID uuid.UUID) entity.RateOverride {
	o := entity.RateOverride{OwnerID: ownerID, CPMRate: req.CPMRate}
	if req.RevenueSharePercent != nil {
		share := req.RevenueSharePercent.Div(hundred)
		o.RevenueShare = &share
	}
	return o
}

type ratesResponse struct {
	OwnerID             uuid.UUID       `json:"owner_id"`
	CPMRate             decimal.Decimal `json:"cpm_rate"`
	RevenueSharePercent decimal.Decimal `json:"revenue_share_percent"`
	Retroactive         bool            `json:"retroactive"`
}

func toRatesResponse(ownerID uuid.UUID, rate entity.Rate, retroactive bool) ratesResponse {
	return ratesResponse{
		OwnerID:             ownerID,
		CPMRate:             rate.CPMRate,
		RevenueSharePercent: rate.RevenueShare.Mul(hundred),
		Retroactive:         retroactive,
	}
}

type recalculateResponse struct {
	OwnerID      *uuid.UUID `json:"owner_id,omitempty"`
	LinksUpdated int        `json:"links_updated"`
}

type analyticsResponse struct {
	ShortCode                string           `json:"short_code"`
	From                     string           `json:"from"`
	To                       string           `json:"to"`
	TotalViews               int64            `json:"total_views"`
	CompletedViews           int64            `json:"completed_views"`
	UniqueClients            int64            `json:"unique_clients"`
	AvgTimeToCompleteSeconds float64          `json:"avg_time_to_complete_seconds"`
	Devices                  []bucketResponse `json:"devices"`
	Browsers                 []bucketResponse `json:"browsers"`
	OperatingSystems         []bucketResponse `json:"operating_systems"`
	Countries                []bucketResponse `json:"countries"`
	Referrers                []bucketResponse `json:"referrers"`
	Daily                    []dailyResponse  `json:"daily"`
}

// bucketResponse carries the share of all views in the range, in percent with
// one decimal.
type bucketResponse struct {
	Name       string  `json:"name"`
	Views      int64   `json:"views"`
	Percentage float64 `json:"percentage"`
}

type dailyResponse struct {
	Date  string `json:"date"`
	Views int64  `json:"views"`
}

func toAnalyticsResponse(a *entity.LinkAnalytics) analyticsResponse {
	total := a.Summary.TotalViews

	buckets := func(dim entity.AnalyticsDimension) []bucketResponse {
		resp := make([]bucketResponse, 0, len(a.Breakdown[dim]))
		for _, b := range a.Breakdown[dim] {
			resp = append(resp, bucketResponse{Name: b.Key, Views: b.Count, Percentage: percentage(b.Count, total)})
		}
		return resp
	}

	daily := make([]dailyResponse, 0, len(a.Daily))
	for _, d := range a.Daily {
		daily = append(daily, dailyResponse{Date: d.Day.Format(dateLayout), Views: d.Count})
	}

	return analyticsResponse{
		ShortCode:                a.Link.ShortCode,
		From:                     a.Range.From.Format(dateLayout),
		To:                       a.Range.To.AddDate(0, 0, -1).Format(dateLayout),
		TotalViews:               total,
		CompletedViews:           a.Summary.CompletedViews,
		UniqueClients:            a.Summary.UniqueClients,
		AvgTimeToCompleteSeconds: math.Round(a.Summary.AvgTimeToCompleteSecs*10) / 10,
		Devices:                  buckets(entity.DimensionDevice),
		Browsers:                 buckets(entity.DimensionBrowser),
		OperatingSystems:         buckets(entity.DimensionOperatingSystem),
		Countries:                buckets(entity.DimensionCountry),
		Referrers:                buckets(entity.DimensionReferrer),
		Daily:                    daily,
	}
}

func percentage(n, total int64) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(n)*1000/float64(total)) / 10
}
