package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// CoinGeckoFetcher fetches crypto-asset prices from the CoinGecko simple
// price API. Symbols are CoinGecko ids (e.g. "bitcoin"), quoted in USD.
type CoinGeckoFetcher struct {
	BaseURL string
	Client  *http.Client
	limiter *rate.Limiter
	logger  zerolog.Logger
}

// NewCoinGeckoFetcher creates a fetcher with optional proxy support. The
// free tier throttles hard, so the limiter is deliberately conservative.
func NewCoinGeckoFetcher(baseURL, proxyURL string) *CoinGeckoFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if baseURL == "" {
		baseURL = "https://api.coingecko.com"
	}
	return &CoinGeckoFetcher{
		BaseURL: baseURL,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		limiter: rate.NewLimiter(rate.Every(2*time.Second), 1),
		logger:  log.With().Str("component", "coingecko_fetcher").Logger(),
	}
}

func (f *CoinGeckoFetcher) Name() string { return "coingecko" }

// FetchLatestPrice returns the current USD price for the CoinGecko id.
func (f *CoinGeckoFetcher) FetchLatestPrice(ctx context.Context, symbol string) (float64, error) {
	id := strings.ToLower(strings.TrimSpace(symbol))
	endpoint := fmt.Sprintf("%s/api/v3/simple/price?ids=%s&vs_currencies=usd",
		f.BaseURL, url.QueryEscape(id))

	if err := f.limiter.Wait(ctx); err != nil {
		return 0, fmt.Errorf("rate limiter: %w", err)
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
		return 0, fmt.Errorf("fetch price for %s: %w", id, err)
	}

	var result map[string]map[string]float64
	if err := json.Unmarshal(body, &result); err != nil {
		return 0, fmt.Errorf("decode price for %s: %w", id, err)
	}
	quote, ok := result[id]
	if !ok {
		return 0, fmt.Errorf("no price returned for %s", id)
	}
	price, ok := quote["usd"]
	if !ok {
		return 0, fmt.Errorf("no usd quote returned for %s", id)
	}
	return price, nil
}
