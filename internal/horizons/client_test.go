package horizons

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thurmanmarka/retroglide/internal/ephemeris"
)

const sampleResult = `*******************************************************************************
Ephemeris / API_USER Thu Oct 31 12:00:00 2019 Pasadena, USA      / Horizons
*******************************************************************************
 Date__(UT)__HR:MN:SS, , ,  ObsEcLon,   ObsEcLat,
**************************************************************
$$SOE
 2019-Oct-31 15:43:00, , , 237.6381234, -2.3412345,
 2019-Oct-31 15:44:00, , , 237.6381233, -2.3413001,
$$EOE
**************************************************************
`

func newTestClient(url string) *Client {
	return NewClient(Options{
		BaseURL:    url,
		Timeout:    5 * time.Second,
		RatePerSec: 1000,
		Backoff:    time.Millisecond,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestApparentLongitude(t *testing.T) {
	var query map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		writeJSON(w, http.StatusOK, map[string]string{"result": sampleResult})
	}))
	defer srv.Close()

	at := time.Date(2019, time.October, 31, 15, 43, 0, 400, time.UTC)
	lon, err := newTestClient(srv.URL).ApparentLongitude(context.Background(), "Mercury", at)
	require.NoError(t, err)
	assert.InDelta(t, 237.6381234, lon, 1e-12)

	assert.Equal(t, []string{"'199'"}, query["COMMAND"])
	assert.Equal(t, []string{"'500@399'"}, query["CENTER"])
	assert.Equal(t, []string{"'31'"}, query["QUANTITIES"])
	assert.Equal(t, []string{"'2019-10-31 15:43:00'"}, query["START_TIME"])
	assert.Equal(t, []string{"'2019-10-31 15:44:00'"}, query["STOP_TIME"])
	assert.Equal(t, []string{"json"}, query["format"])
}

func TestRetriesTransientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch calls.Add(1) {
		case 1:
			http.Error(w, "busy", http.StatusServiceUnavailable)
		case 2:
			http.Error(w, "slow down", http.StatusTooManyRequests)
		default:
			writeJSON(w, http.StatusOK, map[string]string{"result": sampleResult})
		}
	}))
	defer srv.Close()

	lon, err := newTestClient(srv.URL).ApparentLongitude(context.Background(), "mercury", time.Now())
	require.NoError(t, err)
	assert.InDelta(t, 237.6381234, lon, 1e-12)
	assert.Equal(t, int32(3), calls.Load())
}

func TestGivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).ApparentLongitude(context.Background(), "mars", time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 4 attempts")
	assert.Equal(t, int32(defaultRetries), calls.Load())
}

func TestAPIError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid START_TIME"})
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).ApparentLongitude(context.Background(), "venus", time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid START_TIME")
	assert.Equal(t, int32(1), calls.Load(), "client errors are not retried")
}

func TestErrorInOKBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"error": "no ephemeris for target"})
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).ApparentLongitude(context.Background(), "pluto", time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no ephemeris for target")
}

func TestNoRows(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"result": "nothing here"})
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).ApparentLongitude(context.Background(), "saturn", time.Now())
	assert.ErrorIs(t, err, ErrNoData)
}

func TestUnknownBody(t *testing.T) {
	c := newTestClient("http://127.0.0.1:0")
	_, err := c.ApparentLongitude(context.Background(), "vulcan", time.Now())
	assert.ErrorIs(t, err, ephemeris.ErrBodyNotFound)
}

func TestBindHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"result": sampleResult})
	}))
	defer srv.Close()
	c := newTestClient(srv.URL)

	lon, err := c.Bind(context.Background()).ApparentLongitude("mercury", time.Now())
	require.NoError(t, err)
	assert.InDelta(t, 237.6381234, lon, 1e-12)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.Bind(ctx).ApparentLongitude("mercury", time.Now())
	assert.True(t, errors.Is(err, context.Canceled), "got %v", err)
}

func TestParseLongitude(t *testing.T) {
	lon, err := parseLongitude("$$SOE\n 2020-Feb-17 00:55:00,*, , 342.8897, -1.2,\n$$EOE")
	require.NoError(t, err)
	assert.InDelta(t, 342.8897, lon, 1e-12)

	_, err = parseLongitude("$$SOE\n$$EOE")
	assert.ErrorIs(t, err, ErrNoData)
}
