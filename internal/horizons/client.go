// Package horizons implements a longitude oracle backed by the JPL Horizons
// API. Requests respect a shared rate limiter and retry on transient errors
// (transport failures, 429, 5xx).
package horizons

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/thurmanmarka/retroglide/internal/ephemeris"
	"github.com/thurmanmarka/retroglide/internal/solver"
)

const (
	DefaultBaseURL = "https://ssd.jpl.nasa.gov/api/horizons.api"
	defaultRetries = 4
	defaultBackoff = 500 * time.Millisecond
	timeLayout     = "2006-01-02 15:04:05"
)

// ErrNoData is returned when a response carries no ephemeris rows.
var ErrNoData = errors.New("horizons: no ephemeris data")

// Options configures a Client. Zero values select defaults.
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	RatePerSec float64
	MaxRetries int
	Backoff    time.Duration // first retry delay; doubles on each attempt
	Logger     *slog.Logger
}

// Client is the Horizons API HTTP client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	maxRetries int
	backoff    time.Duration
	log        *slog.Logger
}

// NewClient creates a Client.
func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.RatePerSec <= 0 {
		opts.RatePerSec = 2
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = defaultRetries
	}
	if opts.Backoff <= 0 {
		opts.Backoff = defaultBackoff
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	burst := int(opts.RatePerSec)
	if burst < 1 {
		burst = 1
	}
	return &Client{
		baseURL:    opts.BaseURL,
		httpClient: &http.Client{Timeout: opts.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(opts.RatePerSec), burst),
		maxRetries: opts.MaxRetries,
		backoff:    opts.Backoff,
		log:        opts.Logger,
	}
}

// ApparentLongitude fetches the observer ecliptic longitude of the body,
// seen from the geocentre, at t.
func (c *Client) ApparentLongitude(ctx context.Context, key string, t time.Time) (float64, error) {
	body, err := ephemeris.Lookup(key)
	if err != nil {
		return 0, err
	}

	start := t.UTC().Truncate(time.Second)
	params := url.Values{}
	params.Set("format", "json")
	params.Set("COMMAND", quote(body.HorizonsID))
	params.Set("OBJ_DATA", quote("NO"))
	params.Set("MAKE_EPHEM", quote("YES"))
	params.Set("EPHEM_TYPE", quote("OBSERVER"))
	params.Set("CENTER", quote("500@399"))
	params.Set("START_TIME", quote(start.Format(timeLayout)))
	params.Set("STOP_TIME", quote(start.Add(time.Minute).Format(timeLayout)))
	params.Set("STEP_SIZE", quote("1m"))
	params.Set("QUANTITIES", quote("31"))
	params.Set("ANG_FORMAT", quote("DEG"))
	params.Set("CSV_FORMAT", quote("YES"))
	params.Set("TIME_DIGITS", quote("SECONDS"))

	var raw struct {
		Result string `json:"result"`
		Error  string `json:"error"`
	}
	if err := c.get(ctx, params, &raw); err != nil {
		return 0, fmt.Errorf("horizons %s: %w", body.Key, err)
	}
	if raw.Error != "" {
		return 0, fmt.Errorf("horizons %s: API error: %s", body.Key, strings.TrimSpace(raw.Error))
	}

	lon, err := parseLongitude(raw.Result)
	if err != nil {
		return 0, fmt.Errorf("horizons %s at %s: %w", body.Key, start.Format(time.RFC3339), err)
	}
	return lon, nil
}

// Bind returns an oracle whose calls use ctx.
func (c *Client) Bind(ctx context.Context) solver.Oracle {
	return solver.OracleFunc(func(key string, t time.Time) (float64, error) {
		return c.ApparentLongitude(ctx, key, t)
	})
}

func quote(s string) string {
	return "'" + s + "'"
}

// parseLongitude reads the first row between $$SOE and $$EOE. Rows are
// CSV: the date, then marker columns that may be blank, then longitude and
// latitude.
func parseLongitude(result string) (float64, error) {
	begin := strings.Index(result, "$$SOE")
	end := strings.Index(result, "$$EOE")
	if begin < 0 || end < begin {
		return 0, ErrNoData
	}

	for _, line := range strings.Split(result[begin+len("$$SOE"):end], "\n") {
		fields := strings.Split(line, ",")
		if len(fields) < 2 {
			continue
		}
		for _, f := range fields[1:] {
			v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
			if err == nil {
				return v, nil
			}
		}
	}
	return 0, ErrNoData
}

// ─── Internal helpers ─────────────────────────────────────────────────────────

func (c *Client) get(ctx context.Context, params url.Values, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	reqURL := c.baseURL + "?" + params.Encode()
	c.log.Debug("horizons request", "url", reqURL)

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * c.backoff
			c.log.Debug("retrying after backoff", "attempt", attempt, "backoff", backoff)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return fmt.Errorf("building request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "retroglide/1.0")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = fmt.Errorf("http: %w", err)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("reading body: %w", err)
			continue
		}
		c.log.Debug("horizons response", "status", resp.StatusCode, "bytes", len(body))

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
			continue
		}

		if resp.StatusCode != http.StatusOK {
			var apiErr struct {
				Error string `json:"error"`
			}
			_ = json.Unmarshal(body, &apiErr)
			if apiErr.Error != "" {
				return fmt.Errorf("API error: %s", strings.TrimSpace(apiErr.Error))
			}
			return fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		}

		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
		return nil
	}
	return fmt.Errorf("after %d attempts: %w", c.maxRetries, lastErr)
}
