package social

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// DefaultProfileURLs: profile URL template per platform, %s là handle
var DefaultProfileURLs = map[string]string{
	"tiktok":    "https://www.tiktok.com/@%s",
	"instagram": "https://www.instagram.com/%s/",
	"facebook":  "https://www.facebook.com/%s",
	"youtube":   "https://www.youtube.com/@%s",
	"x":         "https://x.com/%s",
	"snapchat":  "https://www.snapchat.com/add/%s",
}

type HTTPVerifierConfig struct {
	Timeout        time.Duration
	RequestsPerSec float64
	Burst          int
	UserAgent      string
	ProfileURLs    map[string]string
}

// HTTPVerifier requests the public profile page: 200 → exists, 404 → not exists,
// anything else (429, 5xx, redirects to login walls, network errors) → unknown.
type HTTPVerifier struct {
	client    *http.Client
	limiter   *rate.Limiter
	userAgent string
	urls      map[string]string
}

func NewHTTPVerifier(cfg HTTPVerifierConfig) *HTTPVerifier {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.RequestsPerSec <= 0 {
		cfg.RequestsPerSec = 2
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 4
	}
	if cfg.ProfileURLs == nil {
		cfg.ProfileURLs = DefaultProfileURLs
	}

	return &HTTPVerifier{
		client: &http.Client{
			Timeout: cfg.Timeout,
			// Redirect thường là trang đăng nhập, không kết luận được
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		limiter:   rate.NewLimiter(rate.Limit(cfg.RequestsPerSec), cfg.Burst),
		userAgent: cfg.UserAgent,
		urls:      cfg.ProfileURLs,
	}
}

func (p *HTTPVerifier) Verify(ctx context.Context, platform, handle string) (Result, error) {
	tmpl, ok := p.urls[strings.ToLower(platform)]
	if !ok {
		return Unknown, fmt.Errorf("unsupported platform %q", platform)
	}
	handle = NormalizeHandle(handle)
	if handle == "" {
		return NotExists, nil
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return Unknown, fmt.Errorf("verify rate limit: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf(tmpl, url.PathEscape(handle)), nil)
	if err != nil {
		return Unknown, err
	}
	if p.userAgent != "" {
		req.Header.Set("User-Agent", p.userAgent)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return Unknown, fmt.Errorf("verify %s: %w", platform, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	switch resp.StatusCode {
	case http.StatusOK:
		return Exists, nil
	case http.StatusNotFound, http.StatusGone:
		return NotExists, nil
	default:
		return Unknown, nil
	}
}
