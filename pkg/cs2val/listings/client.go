package listings

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"github.com/pyrrhulla/cs2val/pkg/cs2val/types"
)

const (
	// DefaultBaseURL is the CSFloat listings endpoint.
	DefaultBaseURL = "https://csfloat.com/api/v1/listings"

	// DefaultPoliteness is the pause after each successful request,
	// independent of any rate-limit backoff.
	DefaultPoliteness = 500 * time.Millisecond

	requestTimeout = 25 * time.Second
	minKeyLen      = 8
)

// Listing is one entry of the listings response, decoded at the API
// boundary. Price is in cents.
type Listing struct {
	ID    string `json:"id"`
	Price int64  `json:"price"`
}

// Options configures a Client. The caller supplies everything explicitly;
// the client never reads the process environment.
type Options struct {
	APIKey     string
	BaseURL    string        // defaults to DefaultBaseURL
	Politeness time.Duration // negative is clamped to zero
	Retry      RetryPolicy   // zero value picks DefaultRetryPolicy
	Logger     *logrus.Logger
	Sleep      func(time.Duration) // injectable for tests; defaults to time.Sleep
}

// Client looks up the cheapest listing for an item name, with per-name
// caching, retry with backoff, and a dedicated rate-limit wait loop.
// One Client serves one valuation run; it is not safe for concurrent use.
type Client struct {
	http       *resty.Client
	key        string
	baseURL    string
	politeness time.Duration
	retry      RetryPolicy
	log        *logrus.Logger
	sleep      func(time.Duration)
	cache      *quoteCache
}

func New(opts Options) (*Client, error) {
	if len(strings.TrimSpace(opts.APIKey)) < minKeyLen {
		return nil, &types.ConfigError{Reason: "missing CSFloat API key: set CSFLOAT_API_KEY or pass --key"}
	}
	key := strings.TrimPrefix(strings.TrimSpace(opts.APIKey), "Bearer ")

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	politeness := opts.Politeness
	if politeness < 0 {
		politeness = 0
	}
	retry := opts.Retry
	if retry.MaxAttempts <= 0 {
		retry = DefaultRetryPolicy()
	}
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	sleep := opts.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	hc := resty.New()
	hc.SetTimeout(requestTimeout)
	hc.SetHeader("User-Agent", "cs2val/1.2")
	hc.SetHeader("Accept", "application/json")

	return &Client{
		http:       hc,
		key:        key,
		baseURL:    baseURL,
		politeness: politeness,
		retry:      retry,
		log:        log,
		sleep:      sleep,
		cache:      newQuoteCache(),
	}, nil
}

// LowestExact returns the cheapest listing for the unmodified name, or nil
// when the service reports no listing. Results, including the no-listing
// outcome, are cached for the lifetime of the client.
func (c *Client) LowestExact(ctx context.Context, name string) (*types.Quote, error) {
	key := "exact|" + name
	if q, ok := c.cache.get(key); ok {
		return q, nil
	}
	q, err := c.lookup(ctx, name)
	if err != nil {
		return nil, err
	}
	c.cache.put(key, q)
	return q, nil
}

// LowestBroad strips one trailing parenthesized qualifier from the name and
// looks up the remainder. When the name carries no such qualifier the result
// is the cached no-listing outcome without any network call, since the exact
// lookup already asked for the identical string.
func (c *Client) LowestBroad(ctx context.Context, name string) (*types.Quote, error) {
	base := BaseName(name)
	key := "broad|" + base
	if q, ok := c.cache.get(key); ok {
		return q, nil
	}
	if base == name {
		c.cache.put(key, nil)
		return nil, nil
	}
	q, err := c.lookup(ctx, base)
	if err != nil {
		return nil, err
	}
	c.cache.put(key, q)
	return q, nil
}

// Probe fetches a handful of site-wide listings to confirm the key works.
func (c *Client) Probe(ctx context.Context) ([]Listing, error) {
	data, _, err := c.do(ctx, map[string]string{"limit": "5", "sort_by": "most_recent"})
	return data, err
}

var trailingQualifier = regexp.MustCompile(`^(.*?)\s*\([^)]*\)$`)

// BaseName removes exactly one trailing parenthesized group, e.g.
// "AK-47 | Redline (Field-Tested)" becomes "AK-47 | Redline". Names with
// no trailing group come back unchanged apart from outer whitespace.
func BaseName(name string) string {
	if m := trailingQualifier.FindStringSubmatch(name); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(name)
}

func (c *Client) lookup(ctx context.Context, name string) (*types.Quote, error) {
	params := map[string]string{
		"market_hash_name": name,
		"limit":            "1",
		"sort_by":          "lowest_price",
	}
	data, finalURL, err := c.do(ctx, params)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}
	return &types.Quote{
		PriceCents: data[0].Price,
		ListingID:  data[0].ID,
		URL:        finalURL,
	}, nil
}

// do executes one listings request with the retry policy applied. After a
// successful request the politeness delay elapses before returning.
func (c *Client) do(ctx context.Context, params map[string]string) ([]Listing, string, error) {
	var lastErr error
	for attempt := 0; attempt < c.retry.MaxAttempts; attempt++ {
		data, finalURL, err := c.attempt(ctx, params)
		if err == nil {
			c.sleep(c.politeness)
			return data, finalURL, nil
		}
		var accessErr *types.AccessError
		if errors.As(err, &accessErr) {
			return nil, "", err
		}
		lastErr = err
		if attempt+1 < c.retry.MaxAttempts {
			c.sleep(c.retry.GenericDelay(attempt))
		}
	}
	return nil, "", &types.TransportError{Op: "listings request failed after retries", Err: lastErr}
}

// attempt issues the request once, looping in place while the service
// reports rate limiting. Rate-limit waits do not count against the generic
// retry budget.
func (c *Client) attempt(ctx context.Context, params map[string]string) ([]Listing, string, error) {
	for try := 0; ; try++ {
		resp, err := c.http.R().
			SetContext(ctx).
			SetQueryParams(params).
			SetHeader("Authorization", c.key).
			Get(c.baseURL)
		if err != nil {
			return nil, "", err
		}

		finalURL := resp.Request.URL
		c.log.WithFields(logrus.Fields{"url": finalURL, "status": resp.StatusCode()}).Debug("csfloat GET")

		switch code := resp.StatusCode(); {
		case code == http.StatusUnauthorized || code == http.StatusForbidden:
			return nil, finalURL, &types.AccessError{
				Op:  "listings",
				Err: fmt.Errorf("auth rejected (%d): check your key", code),
			}
		case code == http.StatusTooManyRequests:
			c.sleep(c.retry.RateLimitDelay(try))
			continue
		case code >= 300:
			return nil, finalURL, fmt.Errorf("unexpected status %s", resp.Status())
		}

		body := bytes.TrimSpace(resp.Body())
		if len(body) == 0 {
			return nil, finalURL, nil
		}
		if body[0] != '[' {
			if !json.Valid(body) {
				return nil, finalURL, fmt.Errorf("decode response: invalid JSON")
			}
			// A non-array payload carries no listings.
			return nil, finalURL, nil
		}
		var data []Listing
		if err := json.Unmarshal(body, &data); err != nil {
			return nil, finalURL, fmt.Errorf("decode response: %w", err)
		}
		return data, finalURL, nil
	}
}
