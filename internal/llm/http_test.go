package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "v", r.Header.Get("X-Test"))
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "gpt", body["model"])
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	raw, err := SendJSON(context.Background(), srv.Client(), srv.URL, map[string]any{"model": "gpt"},
		map[string]string{"X-Test": "v"}, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(raw))
}

func TestSendJSON_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"rate limited"}`))
	}))
	defer srv.Close()

	_, err := SendJSON(context.Background(), srv.Client(), srv.URL, map[string]any{}, nil, nil)
	var httpErr *ErrHTTP
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, 429, httpErr.Status)
	assert.Equal(t, 7*time.Second, httpErr.RetryAfter)
	assert.Contains(t, httpErr.Body, "rate limited")
	assert.True(t, IsTransient(err))
}
