package store

import (
	"log/slog"
	"sync"
	"time"

	"github.com/thurmanmarka/retroglide/internal/solver"
)

// DefaultFlushThreshold is the number of pending samples that triggers an
// automatic Flush.
const DefaultFlushThreshold = 4096

type sampleKey struct {
	body string
	unix int64
}

// CacheStats summarises a CachedOracle's activity.
type CacheStats struct {
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
	Pending int   `json:"pending"`
}

// CachedOracle memoises an oracle in the store. Lookups check samples not
// yet flushed, then the database, then the wrapped oracle. New samples are
// buffered and written in one transaction by Flush.
//
// Samples are keyed by source so that different oracles never share
// answers.
type CachedOracle struct {
	store     *Store
	source    string
	next      solver.Oracle
	threshold int
	log       *slog.Logger

	mu      sync.Mutex
	pending map[sampleKey]float64
	hits    int64
	misses  int64
}

// CacheOption configures a CachedOracle.
type CacheOption func(*CachedOracle)

// WithFlushThreshold sets how many pending samples trigger a Flush.
// n <= 0 disables automatic flushing.
func WithFlushThreshold(n int) CacheOption {
	return func(c *CachedOracle) { c.threshold = n }
}

// WithCacheLogger sets the logger.
func WithCacheLogger(l *slog.Logger) CacheOption {
	return func(c *CachedOracle) {
		if l != nil {
			c.log = l
		}
	}
}

// NewCachedOracle wraps next, storing its answers under source.
func NewCachedOracle(st *Store, source string, next solver.Oracle, opts ...CacheOption) *CachedOracle {
	c := &CachedOracle{
		store:     st,
		source:    source,
		next:      next,
		threshold: DefaultFlushThreshold,
		log:       slog.Default(),
		pending:   make(map[sampleKey]float64),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ApparentLongitude implements solver.Oracle.
func (c *CachedOracle) ApparentLongitude(key string, t time.Time) (float64, error) {
	k := sampleKey{body: key, unix: t.Unix()}

	c.mu.Lock()
	if lon, ok := c.pending[k]; ok {
		c.hits++
		c.mu.Unlock()
		return lon, nil
	}
	c.mu.Unlock()

	lon, ok, err := c.store.GetLongitude(c.source, key, t)
	if err != nil {
		c.log.Warn("cache read failed", "body", key, "error", err)
	}
	if ok {
		c.mu.Lock()
		c.hits++
		c.mu.Unlock()
		return lon, nil
	}

	lon, err = c.next.ApparentLongitude(key, t)
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	c.misses++
	c.pending[k] = lon
	full := c.threshold > 0 && len(c.pending) >= c.threshold
	c.mu.Unlock()

	if full {
		if err := c.Flush(); err != nil {
			c.log.Warn("cache flush failed", "error", err)
		}
	}
	return lon, nil
}

// Flush writes pending samples to the store.
func (c *CachedOracle) Flush() error {
	c.mu.Lock()
	if len(c.pending) == 0 {
		c.mu.Unlock()
		return nil
	}
	samples := make([]Sample, 0, len(c.pending))
	for k, lon := range c.pending {
		samples = append(samples, Sample{Body: k.body, Time: time.Unix(k.unix, 0).UTC(), Longitude: lon})
	}
	c.pending = make(map[sampleKey]float64)
	c.mu.Unlock()

	if err := c.store.PutLongitudes(c.source, samples); err != nil {
		c.requeue(samples)
		return err
	}
	c.log.Debug("flushed longitude cache", "source", c.source, "samples", len(samples))
	return nil
}

// requeue puts samples from a failed flush back into pending, keeping any
// value recorded for the same key since.
func (c *CachedOracle) requeue(samples []Sample) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, smp := range samples {
		k := sampleKey{body: smp.Body, unix: smp.Time.Unix()}
		if _, ok := c.pending[k]; !ok {
			c.pending[k] = smp.Longitude
		}
	}
}

// Stats returns hit, miss and pending counts.
func (c *CachedOracle) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CacheStats{Hits: c.hits, Misses: c.misses, Pending: len(c.pending)}
}
