// Package config loads the service configuration from a YAML file.
// Environment variables referenced as ${NAME} in the file are expanded before
// decoding, so secrets can live in the environment or a .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

const (
	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"
)

var (
	ErrUnknownStorage      = errors.New("unknown storage driver")
	ErrUnknownSessionStore = errors.New("unknown session store")
	ErrInvalidValue        = errors.New("invalid configuration value")
)

// MaxShortCodeLength matches the width of the links.short_code column.
const MaxShortCodeLength = 16

type Config struct {
	Env             string `yaml:"env"`
	ShortCodeLength int    `yaml:"short_code_length"`
	HTTPServer      `yaml:"http_server"`
	Postgres        `yaml:"postgres"`
	Redis           Redis           `yaml:"redis"`
	Storage         Storage         `yaml:"storage"`
	Session         Session         `yaml:"session"`
	Ad              Ad              `yaml:"ad"`
	Revenue         Revenue         `yaml:"revenue"`
	FraudPrevention FraudPrevention `yaml:"fraud_prevention"`
	Maintenance     Maintenance     `yaml:"maintenance"`
	Geo             Geo             `yaml:"geo"`
	Admin           Admin           `yaml:"admin"`
	Log             Log             `yaml:"log"`
}

type HTTPServer struct {
	Port           int           `yaml:"port"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	IdleTimeout    time.Duration `yaml:"idle_timeout"`
	MaxHeaderBytes int           `yaml:"max_header_bytes"`
	CertFile       string        `yaml:"cert_file"`
	KeyFile        string        `yaml:"key_file"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
}

var defaultHTTPServer = HTTPServer{
	Port:           8080,
	ReadTimeout:    5 * time.Second,
	WriteTimeout:   10 * time.Second,
	IdleTimeout:    time.Minute,
	MaxHeaderBytes: 1 << 20,
	AllowedOrigins: []string{"https://*", "http://*"},
}

func (s *HTTPServer) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

type Postgres struct {
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	DB              string        `yaml:"db"`
	SSLMode         string        `yaml:"sslmode"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
}

var defaultPostgres = Postgres{
	Host:            "localhost",
	Port:            5432,
	SSLMode:         "disable",
	ConnMaxIdleTime: 5 * time.Minute,
	ConnMaxLifetime: 30 * time.Minute,
	MaxIdleConns:    5,
	MaxOpenConns:    25,
}

func (p *Postgres) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.DB, p.SSLMode)
}

type Redis struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

var defaultRedis = Redis{
	Addr:     "localhost:6379",
	PoolSize: 10,
}

// Storage selects where links, views, ticks and rates are kept. The memory
// driver keeps everything in process and is meant for local runs.
type Storage struct {
	Driver string `yaml:"driver"`
}

type Session struct {
	Store         string        `yaml:"store"`
	CookieName    string        `yaml:"cookie_name"`
	TTL           time.Duration `yaml:"ttl"`
	SecureCookie  bool          `yaml:"secure_cookie"`
	SweepSchedule string        `yaml:"sweep_schedule"`
}

var defaultSession = Session{
	Store:         SessionStoreMemory,
	CookieName:    "linksplit_session",
	TTL:           24 * time.Hour,
	SweepSchedule: "@every 10m",
}

type Ad struct {
	DisplaySeconds int `yaml:"display_seconds"`
}

// Revenue holds the system default rates. Amounts are kept as strings so that
// they reach decimal arithmetic without a float round trip.
type Revenue struct {
	CPMRate      string `yaml:"cpm_rate"`
	RevenueShare string `yaml:"revenue_share"`
}

var defaultRevenue = Revenue{
	CPMRate:      "1.00",
	RevenueShare: "0.50",
}

// Rates parses the configured defaults.
func (r Revenue) Rates() (cpm, share decimal.Decimal, err error) {
	const op = "config.Revenue.Rates"

	cpm, err = decimal.NewFromString(r.CPMRate)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("%s: cpm_rate %q: %w", op, r.CPMRate, ErrInvalidValue)
	}

	share, err = decimal.NewFromString(r.RevenueShare)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("%s: revenue_share %q: %w", op, r.RevenueShare, ErrInvalidValue)
	}

	return cpm, share, nil
}

type RateWindow struct {
	Name     string        `yaml:"name"`
	Duration time.Duration `yaml:"duration"`
	MaxViews int64         `yaml:"max_views"`
}

type FraudPrevention struct {
	Enabled   bool          `yaml:"enabled"`
	Windows   []RateWindow  `yaml:"windows"`
	Retention time.Duration `yaml:"retention"`
}

var defaultFraudPrevention = FraudPrevention{
	Enabled: true,
	Windows: []RateWindow{
		{Name: "5-minute", Duration: 5 * time.Minute, MaxViews: 5},
		{Name: "hourly", Duration: time.Hour, MaxViews: 20},
		{Name: "daily", Duration: 24 * time.Hour, MaxViews: 50},
	},
	Retention: 48 * time.Hour,
}

type Maintenance struct {
	Enabled           bool   `yaml:"enabled"`
	TickSweepSchedule string `yaml:"tick_sweep_schedule"`
	ReconcileSchedule string `yaml:"reconcile_schedule"`
}

var defaultMaintenance = Maintenance{
	Enabled:           true,
	TickSweepSchedule: "@every 1h",
	ReconcileSchedule: "@every 1h",
}

type Geo struct {
	Enabled   bool          `yaml:"enabled"`
	BaseURL   string        `yaml:"base_url"`
	Timeout   time.Duration `yaml:"timeout"`
	CacheTTL  time.Duration `yaml:"cache_ttl"`
	CacheSize int           `yaml:"cache_size"`
}

var defaultGeo = Geo{
	Enabled:   true,
	BaseURL:   "http://ip-api.com",
	Timeout:   2 * time.Second,
	CacheTTL:  time.Hour,
	CacheSize: 10000,
}

// Admin protects the rate management endpoints. An empty token disables them.
type Admin struct {
	Token string `yaml:"token"`
}

type Log struct {
	Level   string `yaml:"level"`
	JSON    bool   `yaml:"json"`
	Concise bool   `yaml:"concise"`
}

var defaultLog = Log{
	Level:   "info",
	Concise: true,
}

func Load(path string) (*Config, error) {
	const op = "config.Load"

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read config file: %w", op, err)
	}

	var cfg Config
	setDefaults(&cfg)

	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, fmt.Errorf("%s: failed to decode config file: %w", op, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &cfg, nil
}

func setDefaults(cfg *Config) {
	cfg.Env = EnvDev
	cfg.ShortCodeLength = 6
	cfg.HTTPServer = defaultHTTPServer
	cfg.Postgres = defaultPostgres
	cfg.Redis = defaultRedis
	cfg.Storage = Storage{Driver: StoragePostgres}
	cfg.Session = defaultSession
	cfg.Ad = Ad{DisplaySeconds: 5}
	cfg.Revenue = defaultRevenue
	cfg.FraudPrevention = defaultFraudPrevention
	cfg.FraudPrevention.Windows = append([]RateWindow(nil), defaultFraudPrevention.Windows...)
	cfg.Maintenance = defaultMaintenance
	cfg.Geo = defaultGeo
	cfg.Log = defaultLog
}

func (cfg *Config) validate() error {
	switch cfg.Storage.Driver {
	case StorageMemory, StoragePostgres:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStorage, cfg.Storage.Driver)
	}

	switch cfg.Session.Store {
	case SessionStoreMemory, SessionStoreRedis:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownSessionStore, cfg.Session.Store)
	}

	if cfg.ShortCodeLength < 1 || cfg.ShortCodeLength > MaxShortCodeLength {
		return fmt.Errorf("%w: short_code_length must be within 1..%d", ErrInvalidValue, MaxShortCodeLength)
	}

	if cfg.Ad.DisplaySeconds < 0 {
		return fmt.Errorf("%w: ad.display_seconds must not be negative", ErrInvalidValue)
	}

	for _, w := range cfg.FraudPrevention.Windows {
		if w.Duration <= 0 || w.MaxViews <= 0 {
			return fmt.Errorf("%w: fraud_prevention window %q needs a positive duration and max_views", ErrInvalidValue, w.Name)
		}
	}

	if _, _, err := cfg.Revenue.Rates(); err != nil {
		return err
	}

	return nil
}
