package restclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, header map[string]string) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Config{BaseURL: srv.URL + "/", Header: header})
}

func TestNew_TrimsBaseURL(t *testing.T) {
	c := New(Config{BaseURL: "http://localhost:6333/"})
	assert.Equal(t, "http://localhost:6333", c.BaseURL())
	assert.Equal(t, DefaultTimeout, c.httpClient.Timeout)
}

func TestPost_SendsJSONAndHeaders(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/things", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "Bearer k", r.Header.Get("Authorization"))

		var in map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "b", in["a"])

		_, _ = w.Write([]byte(`{"ok": true}`))
	}, map[string]string{"Authorization": "Bearer k"})

	var out struct {
		OK bool `json:"ok"`
	}
	require.NoError(t, c.Post(context.Background(), "/v1/things", map[string]string{"a": "b"}, &out))
	assert.True(t, out.OK)
}

func TestGet_NoBodyNoContentType(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusNoContent)
	}, nil)

	var out map[string]any
	require.NoError(t, c.Get(context.Background(), "/health", &out))
	assert.Nil(t, out)
}

func TestDo_StatusErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"openai shape", http.StatusTooManyRequests, `{"error": {"message": "rate limit reached"}}`, "rate limit reached"},
		{"ollama shape", http.StatusNotFound, `{"error": "model not found"}`, "model not found"},
		{"qdrant shape", http.StatusBadRequest, `{"status": {"error": "wrong vector size"}}`, "wrong vector size"},
		{"plain text", http.StatusInternalServerError, "boom\n", "boom"},
		{"empty", http.StatusBadGateway, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}, nil)

			err := c.Post(context.Background(), "/x", struct{}{}, nil)
			require.Error(t, err)

			var se *StatusError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, tt.status, se.StatusCode)
			assert.Equal(t, tt.message, se.Message)
			assert.Equal(t, tt.status, StatusCode(fmt.Errorf("wrapped: %w", err)))
			assert.Contains(t, err.Error(), fmt.Sprintf("status %d", tt.status))
		})
	}
}

func TestErrorMessage_TruncatesLongBodies(t *testing.T) {
	msg := errorMessage([]byte(strings.Repeat("x", maxErrorText+100)))
	assert.Len(t, msg, maxErrorText+3)
	assert.True(t, strings.HasSuffix(msg, "..."))
}

func TestDo_DecodeError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}, nil)

	var out map[string]any
	err := c.Get(context.Background(), "/x", &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
	assert.Zero(t, StatusCode(err))
}

func TestDo_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	t.Cleanup(srv.Close)

	c := New(Config{BaseURL: srv.URL, Timeout: 20 * time.Millisecond})
	err := c.Get(context.Background(), "/slow", nil)
	require.Error(t, err)
	assert.Zero(t, StatusCode(err))
}

func TestDo_ContextCanceled(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		t.Error("no request expected")
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := c.Get(ctx, "/x", nil)
	assert.ErrorIs(t, err, context.Canceled)
}
