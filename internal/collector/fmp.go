package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/lelsaesser/tradebot-sub000/internal/model"
)

// FmpFetcher fetches stock quotes and industry performance from the
// Financial Modeling Prep REST API. Requests are rate limited so evaluation
// passes over many symbols stay under the upstream quota.
type FmpFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
	limiter *rate.Limiter
	logger  zerolog.Logger
}

// NewFmpFetcher creates a fetcher with optional proxy support.
func NewFmpFetcher(baseURL, apiKey, proxyURL string) *FmpFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if baseURL == "" {
		baseURL = "https://financialmodelingprep.com"
	}
	return &FmpFetcher{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		limiter: rate.NewLimiter(rate.Every(250*time.Millisecond), 1),
		logger:  log.With().Str("component", "fmp_fetcher").Logger(),
	}
}

func (f *FmpFetcher) Name() string { return "fmp" }

// fmpQuote is the quote-short response shape.
type fmpQuote struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
}

// FetchLatestPrice returns the latest quote for the ticker.
func (f *FmpFetcher) FetchLatestPrice(ctx context.Context, symbol string) (float64, error) {
	endpoint := fmt.Sprintf("%s/api/v3/quote-short/%s?apikey=%s",
		f.BaseURL, url.PathEscape(symbol), url.QueryEscape(f.APIKey))

	body, err := f.get(ctx, endpoint)
	if err != nil {
		return 0, fmt.Errorf("fetch quote for %s: %w", symbol, err)
	}

	var quotes []fmpQuote
	if err := json.Unmarshal(body, &quotes); err != nil {
		return 0, fmt.Errorf("decode quote for %s: %w", symbol, err)
	}
	if len(quotes) == 0 {
		return 0, fmt.Errorf("no quote returned for %s", symbol)
	}
	return quotes[0].Price, nil
}

// fmpIndustry is the industry performance response shape. Percentage fields
// come back as strings like "1.23%" and may be missing for thin sectors.
type fmpIndustry struct {
	Sector         string `json:"sector"`
	ChangesDay     string `json:"changesPercentage"`
	ChangesWeek    string `json:"changesPercentage5D"`
	ChangesMonth   string `json:"changesPercentage1M"`
	ChangesQuarter string `json:"changesPercentage3M"`
	ChangesHalf    string `json:"changesPercentage6M"`
	ChangesYear    string `json:"changesPercentage1Y"`
	ChangesYTD     string `json:"changesPercentageYTD"`
}

// FetchIndustryPerformance returns the current sector performance table.
func (f *FmpFetcher) FetchIndustryPerformance(ctx context.Context) ([]model.IndustrySnapshot, error) {
	endpoint := fmt.Sprintf("%s/api/v3/sectors-performance?apikey=%s",
		f.BaseURL, url.QueryEscape(f.APIKey))

	body, err := f.get(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("fetch industry performance: %w", err)
	}

	var industries []fmpIndustry
	if err := json.Unmarshal(body, &industries); err != nil {
		return nil, fmt.Errorf("decode industry performance: %w", err)
	}

	snapshots := make([]model.IndustrySnapshot, 0, len(industries))
	for _, ind := range industries {
		if ind.Sector == "" {
			continue
		}
		snapshots = append(snapshots, model.IndustrySnapshot{
			Sector:         ind.Sector,
			ChangeDay:      parsePercent(ind.ChangesDay),
			ChangeWeek:     parsePercent(ind.ChangesWeek),
			ChangeMonth:    parsePercent(ind.ChangesMonth),
			ChangeQuarter:  parsePercent(ind.ChangesQuarter),
			ChangeHalfYear: parsePercent(ind.ChangesHalf),
			ChangeYear:     parsePercent(ind.ChangesYear),
			ChangeYTD:      parsePercent(ind.ChangesYTD),
		})
	}
	return snapshots, nil
}

// parsePercent converts "1.23%" to a float pointer, nil when absent or
// malformed.
func parsePercent(s string) *float64 {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// get performs a rate-limited GET with exponential backoff retries.
func (f *FmpFetcher) get(ctx context.Context, endpoint string) ([]byte, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	var body []byte
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		resp, err := f.Client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		if resp.StatusCode != http.StatusOK {
			err := fmt.Errorf("status %d, body: %s", resp.StatusCode, string(data))
			if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
				return backoff.Permanent(err)
			}
			return err
		}
		body = data
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}
	return body, nil
}
