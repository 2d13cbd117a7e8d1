package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thurmanmarka/retroglide/internal/config"
	"github.com/thurmanmarka/retroglide/internal/motion"
	"github.com/thurmanmarka/retroglide/internal/solver"
	"github.com/thurmanmarka/retroglide/internal/store"
	"github.com/thurmanmarka/retroglide/internal/timeutil"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg, err := config.Load(config.New(filepath.Join(dir, "missing.toml")))
	require.NoError(t, err)
	cfg.DB = filepath.Join(dir, "cache", "retroglide.db")
	return cfg
}

var inRetrograde = solver.Query{
	Body:      "mercury",
	Time:      time.Date(2019, time.November, 5, 12, 34, 56, 0, time.UTC),
	Direction: timeutil.Next,
	Regime:    motion.Retrograde,
}

func TestNew_NoCache(t *testing.T) {
	cfg := testConfig(t)
	cfg.NoCache = true

	d, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer d.Close()

	assert.Nil(t, d.Store)
	assert.Nil(t, d.Cache)
	assert.Equal(t, "cache off", d.Summary())

	res, err := d.Search(KindMoment, inRetrograde)
	require.NoError(t, err)
	assert.True(t, res.Time.Equal(inRetrograde.Time))
	assert.Equal(t, 1.0, testutil.ToFloat64(d.Metrics.Searches.WithLabelValues(KindMoment, "mercury", "ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(d.Metrics.OracleCalls.WithLabelValues("mercury")))
}

func TestSearch_ResultCache(t *testing.T) {
	cfg := testConfig(t)

	d, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)

	first, err := d.Search(KindMoment, inRetrograde)
	require.NoError(t, err)
	second, err := d.Search(KindMoment, inRetrograde)
	require.NoError(t, err)

	assert.True(t, first.Time.Equal(second.Time))
	assert.Equal(t, first.Longitude, second.Longitude)
	assert.Equal(t, 1.0, testutil.ToFloat64(d.Metrics.Searches.WithLabelValues(KindMoment, "mercury", "ok")),
		"second search must come from the result cache")
	assert.Contains(t, d.Summary(), "results 1 hit")

	d.Refresh = true
	_, err = d.Search(KindMoment, inRetrograde)
	require.NoError(t, err)
	assert.Equal(t, 2.0, testutil.ToFloat64(d.Metrics.Searches.WithLabelValues(KindMoment, "mercury", "ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(d.Metrics.OracleCalls.WithLabelValues("mercury")),
		"the refreshed search is answered by the longitude cache")

	require.NoError(t, d.Close())

	st, err := store.Open(cfg.DB)
	require.NoError(t, err)
	defer st.Close()
	lon, ok, err := st.GetLongitude(config.OracleBuiltin, "mercury", inRetrograde.Time)
	require.NoError(t, err)
	assert.True(t, ok, "Close must flush pending samples")
	assert.Equal(t, first.Longitude, lon)
}

func TestSearch_Errors(t *testing.T) {
	cfg := testConfig(t)
	cfg.NoCache = true

	d, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)

	_, err = d.Search("sideways", inRetrograde)
	assert.Error(t, err)

	q := inRetrograde
	q.Body = "vulcan"
	_, err = d.Search(KindMoment, q)
	assert.Error(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(d.Metrics.Searches.WithLabelValues(KindMoment, "vulcan", "error")))
}

func TestNew_Horizons(t *testing.T) {
	cfg := testConfig(t)
	cfg.NoCache = true
	cfg.Oracle = config.OracleHorizons

	d, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.NotNil(t, d.Oracle)
	assert.NotNil(t, d.Searcher)
}
