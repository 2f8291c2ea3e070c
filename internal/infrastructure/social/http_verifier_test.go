package social

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestVerifier(t *testing.T, handler http.HandlerFunc) *HTTPVerifier {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewHTTPVerifier(HTTPVerifierConfig{
		Timeout:        time.Second,
		RequestsPerSec: 100,
		Burst:          10,
		UserAgent:      "verifier-test",
		ProfileURLs:    map[string]string{"tiktok": srv.URL + "/@%s"},
	})
}

func TestHTTPVerifier_StatusMapping(t *testing.T) {
	p := newTestVerifier(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "verifier-test", r.Header.Get("User-Agent"))
		switch strings.TrimPrefix(r.URL.Path, "/@") {
		case "real":
			w.WriteHeader(http.StatusOK)
		case "ghost":
			w.WriteHeader(http.StatusNotFound)
		case "login":
			http.Redirect(w, r, "/login", http.StatusFound)
		default:
			w.WriteHeader(http.StatusTooManyRequests)
		}
	})
	ctx := context.Background()

	cases := map[string]Result{
		"@real":   Exists,
		"ghost":   NotExists,
		"login":   Unknown,
		"limited": Unknown,
	}
	for handle, want := range cases {
		got, err := p.Verify(ctx, "TikTok", handle)
		require.NoError(t, err, handle)
		assert.Equal(t, want, got, handle)
	}
}

func TestHTTPVerifier_NetworkErrorIsUnknown(t *testing.T) {
	p := newTestVerifier(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(50 * time.Millisecond)
	})
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	got, err := p.Verify(ctx, "tiktok", "slow")
	assert.Error(t, err)
	assert.Equal(t, Unknown, got)
}

func TestHTTPVerifier_UnsupportedPlatform(t *testing.T) {
	p := NewHTTPVerifier(HTTPVerifierConfig{})
	got, err := p.Verify(context.Background(), "myspace", "tom")
	assert.Error(t, err)
	assert.Equal(t, Unknown, got)
}

func TestStaticVerifier(t *testing.T) {
	p := NewStaticVerifier(Exists)
	p.Set("tiktok", "@ghost", NotExists)

	got, _ := p.Verify(context.Background(), "TikTok", "GHOST")
	assert.Equal(t, NotExists, got)
	got, _ = p.Verify(context.Background(), "instagram", "ghost")
	assert.Equal(t, Exists, got)
	assert.Equal(t, 2, p.Calls)
}
