package factapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearch_Success(t *testing.T) {
	body := `{"claims":[{"text":"The earth is round","claimReview":[{"textualRating":"True"}]}]}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "The earth is round", r.URL.Query().Get("query"))
		assert.Equal(t, "secret", r.URL.Query().Get("key"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	c := New(Config{APIKey: "secret", BaseURL: srv.URL})
	payload, err := c.Search(context.Background(), "The earth is round")
	require.NoError(t, err)
	assert.JSONEq(t, body, string(payload))
}

func TestSearch_MissingKey(t *testing.T) {
	c := New(Config{})
	_, err := c.Search(context.Background(), "q")
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestSearch_RemoteError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"API key not valid","status":"PERMISSION_DENIED"}}`))
	}))
	defer srv.Close()

	c := New(Config{APIKey: "bad", BaseURL: srv.URL})
	_, err := c.Search(context.Background(), "q")

	var remote *RemoteError
	require.True(t, errors.As(err, &remote))
	assert.Equal(t, http.StatusForbidden, remote.Status)
	assert.Equal(t, "API key not valid", remote.Message)
}

func TestSearch_RemoteErrorWithoutEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream broke", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(Config{APIKey: "k", BaseURL: srv.URL})
	_, err := c.Search(context.Background(), "q")

	var remote *RemoteError
	require.True(t, errors.As(err, &remote))
	assert.Equal(t, http.StatusBadGateway, remote.Status)
	assert.Equal(t, "Bad Gateway", remote.Message)
}

func TestSearch_InvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{'claims': []}`))
	}))
	defer srv.Close()

	c := New(Config{APIKey: "k", BaseURL: srv.URL})
	_, err := c.Search(context.Background(), "q")

	var remote *RemoteError
	assert.True(t, errors.As(err, &remote))
}

func TestSearch_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := New(Config{APIKey: "k", BaseURL: srv.URL, Timeout: 50 * time.Millisecond})
	_, err := c.Search(context.Background(), "q")

	var transport *TransportError
	require.True(t, errors.As(err, &transport))
	assert.True(t, transport.Timeout())
}

func TestSearch_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := New(Config{APIKey: "very-secret-key", BaseURL: url})
	_, err := c.Search(context.Background(), "q")

	var transport *TransportError
	require.True(t, errors.As(err, &transport))
	assert.False(t, transport.Timeout())
	assert.NotContains(t, err.Error(), "very-secret-key")
}

func TestSearch_RateLimitHonoursContext(t *testing.T) {
	c := New(Config{APIKey: "k", BaseURL: "http://127.0.0.1:1", RPS: 0.001, Burst: 1})
	// Drain the single token.
	require.True(t, c.limiter.Allow())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Search(ctx, "q")

	var transport *TransportError
	require.True(t, errors.As(err, &transport))
	assert.Equal(t, "rate limit", transport.Op)
}

func TestRemoteError_Message(t *testing.T) {
	assert.Equal(t, "fact check service returned status 500", (&RemoteError{Status: 500}).Error())
}
