package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"bedreport/internal/models"
)

// Fetch sources reported to OnFetch.
const (
	SourceCache  = "cache"
	SourceRemote = "remote"
	SourceFailed = "failed"
)

// BankHolidayConfig configures the bank holiday feed client.
type BankHolidayConfig struct {
	BaseURL           string
	Path              string
	Division          string
	Timeout           time.Duration
	RetryCount        int
	RequestsPerSecond float64
	Burst             int
}

// DefaultBankHolidayConfig points at the gov.uk feed for England and Wales.
func DefaultBankHolidayConfig() BankHolidayConfig {
	return BankHolidayConfig{
		BaseURL:           "https://www.gov.uk",
		Path:              "/bank-holidays.json",
		Division:          "england-and-wales",
		Timeout:           10 * time.Second,
		RetryCount:        3,
		RequestsPerSecond: 2,
		Burst:             5,
	}
}

type bankHolidayEvent struct {
	Title   string `json:"title"`
	Date    string `json:"date"`
	Notes   string `json:"notes"`
	Bunting bool   `json:"bunting"`
}

type bankHolidayDivision struct {
	Division string             `json:"division"`
	Events   []bankHolidayEvent `json:"events"`
}

// BankHolidayClient fetches bank holidays from a gov.uk style JSON feed.
type BankHolidayClient struct {
	http     *resty.Client
	path     string
	division string
	logger   *zerolog.Logger

	redis    *redis.Client
	cacheTTL time.Duration

	// OnFetch is called with the source of every Fetch result.
	OnFetch func(source string)
}

// NewBankHolidayClient constructs a client with retries and client-side rate limiting.
func NewBankHolidayClient(cfg BankHolidayConfig, logger *zerolog.Logger) *BankHolidayClient {
	def := DefaultBankHolidayConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.Path == "" {
		cfg.Path = def.Path
	}
	if cfg.Division == "" {
		cfg.Division = def.Division
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = def.RequestsPerSecond
	}
	if cfg.Burst <= 0 {
		cfg.Burst = def.Burst
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(3 * time.Second).
		SetRateLimiter(rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst)).
		SetHeader("Accept", "application/json")

	l := logger.With().Str("component", "bank_holidays").Logger()
	return &BankHolidayClient{
		http:     httpClient,
		path:     cfg.Path,
		division: cfg.Division,
		logger:   &l,
	}
}

// UseRedisCache configures optional Redis caching of the feed.
func (c *BankHolidayClient) UseRedisCache(redisClient *redis.Client, ttl time.Duration) {
	c.redis = redisClient
	c.cacheTTL = ttl
}

func (c *BankHolidayClient) cacheKey() string {
	return "bank-holidays:" + c.division
}

// Fetch returns the bank holidays of the configured division.
func (c *BankHolidayClient) Fetch(ctx context.Context) ([]Holiday, error) {
	var div bankHolidayDivision
	if c.readCache(ctx, c.cacheKey(), &div) {
		c.report(SourceCache)
		return toHolidays(div)
	}

	feed := map[string]bankHolidayDivision{}
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&feed).
		Get(c.path)
	if err != nil {
		c.report(SourceFailed)
		return nil, fmt.Errorf("fetch bank holidays: %w", err)
	}
	if resp.IsError() {
		c.report(SourceFailed)
		return nil, fmt.Errorf("fetch bank holidays: unexpected status %d", resp.StatusCode())
	}

	div, ok := feed[c.division]
	if !ok {
		c.report(SourceFailed)
		return nil, fmt.Errorf("fetch bank holidays: division %q not in feed", c.division)
	}

	holidays, err := toHolidays(div)
	if err != nil {
		c.report(SourceFailed)
		return nil, err
	}

	c.writeCache(ctx, c.cacheKey(), div)
	c.report(SourceRemote)
	c.logger.Info().Str("division", c.division).Int("count", len(holidays)).Msg("Bank holidays fetched")
	return holidays, nil
}

func (c *BankHolidayClient) report(source string) {
	if c.OnFetch != nil {
		c.OnFetch(source)
	}
}

func toHolidays(div bankHolidayDivision) ([]Holiday, error) {
	out := make([]Holiday, 0, len(div.Events))
	for i, ev := range div.Events {
		d, err := time.Parse(models.DateFormat, ev.Date)
		if err != nil {
			return nil, fmt.Errorf("bank holiday[%d]: invalid date %q", i, ev.Date)
		}
		out = append(out, Holiday{Date: d, Name: ev.Title})
	}
	return out, nil
}

func (c *BankHolidayClient) readCache(ctx context.Context, key string, out any) bool {
	if c.redis == nil || c.cacheTTL <= 0 {
		return false
	}
	val, err := c.redis.Get(ctx, key).Result()
	if err != nil {
		return false
	}
	if err := json.Unmarshal([]byte(val), out); err != nil {
		return false
	}
	return true
}

func (c *BankHolidayClient) writeCache(ctx context.Context, key string, val any) {
	if c.redis == nil || c.cacheTTL <= 0 {
		return
	}
	data, err := json.Marshal(val)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, key, data, c.cacheTTL).Err(); err != nil {
		c.logger.Warn().Err(err).Msg("Failed to cache bank holidays")
	}
}
