// Package geo resolves client addresses to a coarse location using the ip-api.com JSON API.
package geo

import (
	"context"
	"fmt"
	"log/slog"
	"net/netip"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/vadimbarashkov/linksplit/internal/entity"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultBaseURL   = "http://ip-api.com"
	DefaultTimeout   = 2 * time.Second
	DefaultCacheTTL  = 24 * time.Hour
	DefaultCacheSize = 10_000
)

type Config struct {
	Enabled   bool
	BaseURL   string
	Timeout   time.Duration
	CacheTTL  time.Duration
	CacheSize int
}

type apiResponse struct {
	Status     string `json:"status"`
	Message    string `json:"message"`
	Country    string `json:"country"`
	RegionName string `json:"regionName"`
	City       string `json:"city"`
}

// Locator looks up locations and remembers them for a while. Lookups for the
// same address in flight at the same time share one upstream request.
type Locator struct {
	client  *resty.Client
	enabled bool
	logger  *slog.Logger
	group   singleflight.Group
	cache   *expirable.LRU[string, entity.Location]
}

func NewLocator(cfg Config, logger *slog.Logger) *Locator {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = DefaultCacheTTL
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = DefaultCacheSize
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json")

	return &Locator{
		client:  client,
		enabled: cfg.Enabled,
		logger:  logger,
		cache:   expirable.NewLRU[string, entity.Location](cfg.CacheSize, nil, cfg.CacheTTL),
	}
}

// Locate never fails: unresolvable, private or malformed addresses map to entity.UnknownLocation.
func (l *Locator) Locate(ctx context.Context, ip string) entity.Location {
	const op = "adapter.geo.Locator.Locate"

	if !l.enabled || !IsPublic(ip) {
		return entity.UnknownLocation()
	}

	if loc, ok := l.cache.Get(ip); ok {
		return loc
	}

	v, err, _ := l.group.Do(ip, func() (any, error) {
		return l.lookup(ctx, ip)
	})
	if err != nil {
		l.logger.Warn("failed to locate ip", slog.String("op", op), slog.String("ip", ip), slog.Any("err", err))
		return entity.UnknownLocation()
	}

	loc := v.(entity.Location)
	l.cache.Add(ip, loc)

	return loc
}

func (l *Locator) lookup(ctx context.Context, ip string) (entity.Location, error) {
	var body apiResponse

	resp, err := l.client.R().
		SetContext(ctx).
		SetPathParam("ip", ip).
		SetQueryParam("fields", "status,message,country,regionName,city").
		SetResult(&body).
		Get("/json/{ip}")
	if err != nil {
		return entity.Location{}, fmt.Errorf("request failed: %w", err)
	}
	if resp.IsError() {
		return entity.Location{}, fmt.Errorf("unexpected status %d", resp.StatusCode())
	}
	if body.Status != "success" {
		return entity.Location{}, fmt.Errorf("lookup failed: %s", body.Message)
	}

	return entity.Location{
		Country: orUnknown(body.Country),
		Region:  orUnknown(body.RegionName),
		City:    orUnknown(body.City),
	}, nil
}

// IsPublic reports whether ip parses as a globally routable address.
func IsPublic(ip string) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}

	addr = addr.Unmap()

	return !(addr.IsPrivate() ||
		addr.IsLoopback() ||
		addr.IsLinkLocalUnicast() ||
		addr.IsLinkLocalMulticast() ||
		addr.IsMulticast() ||
		addr.IsUnspecified())
}

func orUnknown(s string) string {
	if s == "" {
		return entity.UnknownTag
	}
	return s
}
