package httpclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostJSONRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		assert.Equal(t, "secret", r.Header.Get("X-Api-Key"))
		if n < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		var body map[string]int64
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_ = json.NewEncoder(w).Encode(map[string]int64{"echo": body["amount"]})
	}))
	defer srv.Close()

	c := New(Config{
		BaseURL:    srv.URL,
		Logger:     zerolog.Nop(),
		MaxRetries: 3,
		Backoff:    time.Millisecond,
		Headers:    map[string]string{"X-Api-Key": "secret"},
	})

	var out map[string]int64
	err := c.PostJSON(context.Background(), "/tax/collect", map[string]int64{"amount": 60}, nil, &out)
	require.NoError(t, err)
	assert.Equal(t, int64(60), out["echo"])
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestClientErrorsAreNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "bad", http.StatusBadRequest)
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL, MaxRetries: 5, Backoff: time.Millisecond})
	var out struct{}
	err := c.GetJSON(context.Background(), "/tax/totals", nil, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}
