package watch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thurmanmarka/retroglide/internal/metrics"
	"github.com/thurmanmarka/retroglide/internal/motion"
	"github.com/thurmanmarka/retroglide/internal/solver"
)

var turn = time.Date(2021, time.January, 30, 0, 0, 0, 0, time.UTC)

// vee is direct before turn and retrograde after it.
func vee(_ string, t time.Time) (float64, error) {
	s := float64(t.Unix() - turn.Unix())
	if s < 0 {
		return 100 + s*1e-5, nil
	}
	return 100 - s*1e-5, nil
}

func TestTickFlagsTransitions(t *testing.T) {
	c := metrics.New("test", prometheus.NewRegistry())
	w := New(solver.New(solver.OracleFunc(vee)), []string{"mars"}, WithMetrics(c))

	events, err := w.Tick(turn.Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, motion.MovementDirect, events[0].Movement)
	assert.False(t, events[0].Changed)
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Movement.WithLabelValues("mars")))

	events, err = w.Tick(turn.Add(-30 * time.Minute))
	require.NoError(t, err)
	assert.False(t, events[0].Changed)

	events, err = w.Tick(turn.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, motion.MovementRetrograde, events[0].Movement)
	assert.True(t, events[0].Changed)
	require.NotNil(t, events[0].Previous)
	assert.Equal(t, motion.MovementDirect, *events[0].Previous)
	assert.Equal(t, -1.0, testutil.ToFloat64(c.Movement.WithLabelValues("mars")))
}

func TestSetBodies(t *testing.T) {
	w := New(solver.New(solver.OracleFunc(vee)), []string{"mars", "venus"})

	_, err := w.Tick(turn.Add(-time.Hour))
	require.NoError(t, err)

	w.SetBodies([]string{"venus", "jupiter"})
	assert.Equal(t, []string{"venus", "jupiter"}, w.Bodies())

	events, err := w.Tick(turn.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.True(t, events[0].Changed, "venus keeps its history")
	assert.False(t, events[1].Changed, "jupiter starts fresh")
}

func TestTickError(t *testing.T) {
	boom := errors.New("boom")
	w := New(solver.New(solver.OracleFunc(func(string, time.Time) (float64, error) {
		return 0, boom
	})), []string{"mars"})

	_, err := w.Tick(turn)
	assert.ErrorIs(t, err, boom)
}

func TestRunStopsOnCancel(t *testing.T) {
	w := New(solver.New(solver.OracleFunc(vee)), []string{"mars"}, WithInterval(5*time.Millisecond))
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	var n int
	err := w.Run(ctx, func(Event) { n++ })
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.GreaterOrEqual(t, n, 2)
}
