package calendar

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const feedBody = `{
  "england-and-wales": {
    "division": "england-and-wales",
    "events": [
      {"title": "Good Friday", "date": "2023-04-07", "notes": "", "bunting": false},
      {"title": "Easter Monday", "date": "2023-04-10", "notes": "", "bunting": true}
    ]
  },
  "scotland": {"division": "scotland", "events": []}
}`

func newFeedServer(t *testing.T, status int, body string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "/bank-holidays.json", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func testClientConfig(baseURL string) BankHolidayConfig {
	cfg := DefaultBankHolidayConfig()
	cfg.BaseURL = baseURL
	cfg.RetryCount = 0
	cfg.Timeout = time.Second
	cfg.RequestsPerSecond = 100
	return cfg
}

func TestBankHolidayClient_Fetch(t *testing.T) {
	srv, hits := newFeedServer(t, http.StatusOK, feedBody)
	client := NewBankHolidayClient(testClientConfig(srv.URL), nil)

	var sources []string
	client.OnFetch = func(s string) { sources = append(sources, s) }

	holidays, err := client.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, holidays, 2)
	assert.Equal(t, "Good Friday", holidays[0].Name)
	assert.Equal(t, day(2023, 4, 10), holidays[1].Date)
	assert.Equal(t, int32(1), hits.Load())
	assert.Equal(t, []string{SourceRemote}, sources)
}

func TestBankHolidayClient_RedisCache(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	srv, hits := newFeedServer(t, http.StatusOK, feedBody)
	client := NewBankHolidayClient(testClientConfig(srv.URL), nil)
	client.UseRedisCache(rdb, time.Hour)

	var sources []string
	client.OnFetch = func(s string) { sources = append(sources, s) }

	first, err := client.Fetch(context.Background())
	require.NoError(t, err)
	second, err := client.Fetch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), hits.Load())
	assert.Equal(t, []string{SourceRemote, SourceCache}, sources)
	assert.True(t, mr.Exists("bank-holidays:england-and-wales"))

	mr.FastForward(2 * time.Hour)
	_, err = client.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load())
}

func TestBankHolidayClient_Errors(t *testing.T) {
	t.Run("status", func(t *testing.T) {
		srv, _ := newFeedServer(t, http.StatusNotFound, `{}`)
		client := NewBankHolidayClient(testClientConfig(srv.URL), nil)

		var sources []string
		client.OnFetch = func(s string) { sources = append(sources, s) }

		_, err := client.Fetch(context.Background())
		assert.Error(t, err)
		assert.Equal(t, []string{SourceFailed}, sources)
	})

	t.Run("unknown division", func(t *testing.T) {
		srv, _ := newFeedServer(t, http.StatusOK, feedBody)
		cfg := testClientConfig(srv.URL)
		cfg.Division = "northern-ireland"
		client := NewBankHolidayClient(cfg, nil)

		_, err := client.Fetch(context.Background())
		assert.ErrorContains(t, err, "northern-ireland")
	})

	t.Run("bad date", func(t *testing.T) {
		srv, _ := newFeedServer(t, http.StatusOK,
			`{"england-and-wales":{"division":"england-and-wales","events":[{"title":"x","date":"07/04/2023"}]}}`)
		client := NewBankHolidayClient(testClientConfig(srv.URL), nil)

		_, err := client.Fetch(context.Background())
		assert.Error(t, err)
	})
}
