// Package currency looks up the USD to INR exchange rate used to price
// itineraries, caching it for EXCHANGE_RATE_TTL.
package currency

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"travel_crm_backend/platform/apperr"
	"travel_crm_backend/platform/config"
	"travel_crm_backend/platform/logger"
	"travel_crm_backend/platform/metrics"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

const (
	cacheKeyUSDINR = "fx:USD:INR"
	cacheName      = "exchange_rate"
	defaultTTL     = 6 * time.Hour
)

type ratesResponse struct {
	Result string                     `json:"result"`
	Base   string                     `json:"base_code"`
	Rates  map[string]decimal.Decimal `json:"rates"`
}

type RateSource struct {
	url     string
	ttl     time.Duration
	cache   Cache
	http    *http.Client
	group   singleflight.Group
	metrics *metrics.Metrics
	log     *logger.Logger
}

func NewRateSource(cfg config.ExchangeRateConfig, cache Cache, m *metrics.Metrics, log *logger.Logger) *RateSource {
	ttl := cfg.GetExchangeRateTTL()
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if cache == nil {
		cache = NewMemoryCache()
	}
	return &RateSource{
		url:     strings.TrimSpace(cfg.GetExchangeRateURL()),
		ttl:     ttl,
		cache:   cache,
		http:    &http.Client{Timeout: 10 * time.Second},
		metrics: m,
		log:     log,
	}
}

// LatestUSDToINR returns the cached rate, fetching it once across
// concurrent callers on a miss. A cache read error falls through to the API.
func (s *RateSource) LatestUSDToINR(ctx context.Context) (decimal.Decimal, error) {
	cached, ok, err := s.cache.Get(ctx, cacheKeyUSDINR)
	if err != nil {
		s.log.Warn("exchange rate cache read failed", "error", err)
	}
	if ok {
		if rate, parseErr := decimal.NewFromString(cached); parseErr == nil {
			s.metrics.RecordCache(cacheName, true)
			return rate, nil
		}
	}
	s.metrics.RecordCache(cacheName, false)

	v, err, _ := s.group.Do(cacheKeyUSDINR, func() (any, error) {
		rate, err := s.fetch(ctx)
		if err != nil {
			return decimal.Zero, err
		}
		if err := s.cache.Set(ctx, cacheKeyUSDINR, rate.String(), s.ttl); err != nil {
			s.log.Warn("exchange rate cache write failed", "error", err)
		}
		return rate, nil
	})
	if err != nil {
		return decimal.Zero, apperr.External("exchange rate lookup failed", err).WithOp("currency.LatestUSDToINR")
	}
	return v.(decimal.Decimal), nil
}

func (s *RateSource) fetch(ctx context.Context) (decimal.Decimal, error) {
	if s.url == "" {
		return decimal.Zero, fmt.Errorf("exchange rate url not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return decimal.Zero, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return decimal.Zero, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return decimal.Zero, fmt.Errorf("exchange rate api returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out ratesResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return decimal.Zero, fmt.Errorf("decode exchange rates: %w", err)
	}
	if out.Result != "" && out.Result != "success" {
		return decimal.Zero, fmt.Errorf("exchange rate api result %q", out.Result)
	}
	rate, ok := out.Rates["INR"]
	if !ok || !rate.IsPositive() {
		return decimal.Zero, fmt.Errorf("exchange rate response has no INR rate")
	}
	return rate, nil
}
