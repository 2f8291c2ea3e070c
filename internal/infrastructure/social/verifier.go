package social

import (
	"context"
	"strings"
	"sync"
)

// Result of a social-existence check
type Result int

const (
	Unknown Result = iota
	Exists
	NotExists
)

func (r Result) String() string {
	switch r {
	case Exists:
		return "exists"
	case NotExists:
		return "not_exists"
	default:
		return "unknown"
	}
}

// Verifier checks whether a handle exists on a platform.
// Errors and timeouts are reported as Unknown; callers decide how to treat it.
type Verifier interface {
	Verify(ctx context.Context, platform, handle string) (Result, error)
}

// NormalizeHandle bỏ khoảng trắng và ký tự @ ở đầu
func NormalizeHandle(handle string) string {
	return strings.TrimPrefix(strings.TrimSpace(handle), "@")
}

// StaticVerifier answers from a fixed table; anything not listed gets Default.
// Used by tests and by STORE_DRIVER=memory setups without outbound network.
type StaticVerifier struct {
	mu      sync.Mutex
	Answers map[string]Result
	Default Result
	Calls   int
}

func NewStaticVerifier(def Result) *StaticVerifier {
	return &StaticVerifier{Answers: make(map[string]Result), Default: def}
}

func key(platform, handle string) string {
	return strings.ToLower(platform) + "/" + strings.ToLower(NormalizeHandle(handle))
}

func (p *StaticVerifier) Set(platform, handle string, result Result) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Answers[key(platform, handle)] = result
}

func (p *StaticVerifier) Verify(_ context.Context, platform, handle string) (Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Calls++
	if r, ok := p.Answers[key(platform, handle)]; ok {
		return r, nil
	}
	return p.Default, nil
}
