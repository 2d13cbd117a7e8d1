// Package app wires together configuration, the longitude oracle, the cache
// and metrics into a single Deps struct that commands receive at runtime.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/thurmanmarka/retroglide/internal/config"
	"github.com/thurmanmarka/retroglide/internal/ephemeris"
	"github.com/thurmanmarka/retroglide/internal/horizons"
	"github.com/thurmanmarka/retroglide/internal/metrics"
	"github.com/thurmanmarka/retroglide/internal/solver"
	"github.com/thurmanmarka/retroglide/internal/store"
)

// Search kinds, used as result cache keys and metric labels.
const (
	KindStation = "station"
	KindMoment  = "moment"
)

// Deps holds all runtime dependencies injected into command Run functions.
type Deps struct {
	Config   config.Config
	Log      *slog.Logger
	Registry *prometheus.Registry
	Metrics  *metrics.Collector

	// Store and Cache are nil when caching is off.
	Store *store.Store
	Cache *store.CachedOracle

	Oracle   solver.Oracle
	Searcher *solver.Searcher

	// Refresh skips cached search results; fresh results are still stored.
	Refresh bool

	resultHits int
}

// New builds a Deps from resolved config. ctx bounds every remote oracle
// call made through the returned Deps.
func New(ctx context.Context, cfg config.Config, log *slog.Logger) (*Deps, error) {
	if log == nil {
		log = slog.Default()
	}
	reg := prometheus.NewRegistry()
	d := &Deps{
		Config:   cfg,
		Log:      log,
		Registry: reg,
		Metrics:  metrics.New("", reg),
	}

	var base solver.Oracle
	switch cfg.Oracle {
	case config.OracleHorizons:
		client := horizons.NewClient(horizons.Options{
			BaseURL:    cfg.Horizons.BaseURL,
			Timeout:    cfg.Timeout,
			RatePerSec: cfg.Rate,
			MaxRetries: cfg.Horizons.MaxRetries,
			Backoff:    cfg.Horizons.Backoff,
			Logger:     log,
		})
		base = client.Bind(ctx)
	default:
		base = ephemeris.Oracle{}
	}
	d.Oracle = d.Metrics.Instrument(base)

	if !cfg.NoCache {
		st, err := store.Open(cfg.DB)
		if err != nil {
			return nil, err
		}
		d.Store = st
		d.Cache = store.NewCachedOracle(st, cfg.Oracle, d.Oracle, store.WithCacheLogger(log))
		d.Oracle = d.Cache
	}

	d.Searcher = solver.New(d.Oracle, solver.WithLogger(log))
	return d, nil
}

// Close flushes pending cache writes and closes the store.
func (d *Deps) Close() error {
	if d.Store == nil {
		return nil
	}
	return errors.Join(d.Cache.Flush(), d.Store.Close())
}

// Search runs a station or moment search, answering from the result cache
// when possible. It is not safe for concurrent use.
func (d *Deps) Search(kind string, q solver.Query) (solver.Result, error) {
	var run func(solver.Query) (solver.Result, error)
	switch kind {
	case KindStation:
		run = d.Searcher.NextStation
	case KindMoment:
		run = d.Searcher.NextMoment
	default:
		return solver.Result{}, fmt.Errorf("unknown search kind %q", kind)
	}

	var key string
	if d.Store != nil {
		key = store.ResultKey(kind, d.Config.Oracle, q.Body, q.Time, q.Direction.String(), q.Regime.String())
		if !d.Refresh {
			res, ok, err := d.Store.GetResult(key)
			if err != nil {
				d.Log.Warn("result cache read failed", "key", key, "error", err)
			}
			if ok {
				d.resultHits++
				d.Log.Debug("result cache hit", "key", key)
				return res, nil
			}
		}
	}

	start := time.Now()
	res, err := run(q)
	d.Metrics.ObserveSearch(kind, q.Body, start, err)
	if err != nil {
		return solver.Result{}, err
	}

	if key != "" {
		if err := d.Store.PutResult(key, res); err != nil {
			d.Log.Warn("result cache write failed", "key", key, "error", err)
		}
	}
	return res, nil
}

// Summary describes cache effectiveness for the verbose footer.
func (d *Deps) Summary() string {
	if d.Cache == nil {
		return "cache off"
	}
	st := d.Cache.Stats()
	return fmt.Sprintf("longitudes %d hit / %d miss, results %d hit", st.Hits, st.Misses, d.resultHits)
}
