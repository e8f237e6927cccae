package entity

import (
	"errors"
	"net/url"
	"strings"
	"time"
)

// ErrInvalidRange is returned when an analytics range is empty, inverted or too long.
var ErrInvalidRange = errors.New("invalid date range")

// DirectReferrer labels views that arrived without a referrer.
const DirectReferrer = "Direct"

// AnalyticsDimension names a view attribute that analytics can be grouped by.
type AnalyticsDimension string

const (
	DimensionDevice          AnalyticsDimension = "device_type"
	DimensionBrowser         AnalyticsDimension = "browser"
	DimensionOperatingSystem AnalyticsDimension = "operating_system"
	DimensionCountry         AnalyticsDimension = "country"
	DimensionReferrer        AnalyticsDimension = "referrer"
)

// AnalyticsDimensions lists every dimension in response order.
var AnalyticsDimensions = []AnalyticsDimension{
	DimensionDevice,
	DimensionBrowser,
	DimensionOperatingSystem,
	DimensionCountry,
	DimensionReferrer,
}

// DateRange is the half-open interval [From, To).
type DateRange struct {
	From time.Time
	To   time.Time
}

func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.From) && t.Before(r.To)
}

// Days returns the number of whole days covered by the range.
func (r DateRange) Days() int {
	return int(r.To.Sub(r.From) / (24 * time.Hour))
}

// ViewSummary aggregates every view event of a link within a range.
type ViewSummary struct {
	TotalViews            int64
	CompletedViews        int64
	UniqueClients         int64
	AvgTimeToCompleteSecs float64
}

// Bucket is the number of views sharing one value of a dimension.
type Bucket struct {
	Key   string
	Count int64
}

// DailyCount is the number of views on one UTC day.
type DailyCount struct {
	Day   time.Time
	Count int64
}

// LinkAnalytics is the breakdown of the views of one link.
type LinkAnalytics struct {
	Link      *Link
	Range     DateRange
	Summary   ViewSummary
	Breakdown map[AnalyticsDimension][]Bucket
	Daily     []DailyCount
}

// ReferrerDomain reduces a referrer URL to its lowercased host. An empty or
// unparsable referrer yields "".
func ReferrerDomain(referrer string) string {
	referrer = strings.TrimSpace(referrer)
	if referrer == "" {
		return ""
	}

	u, err := url.Parse(referrer)
	if err != nil {
		return ""
	}

	return strings.ToLower(u.Hostname())
}
