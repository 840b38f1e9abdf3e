package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.2, 10.0.0.1")
	assert.Equal(t, "203.0.113.7", clientIP(req))

	req.Header.Set("X-Forwarded-For", " 203.0.113.7 ")
	assert.Equal(t, "203.0.113.7", clientIP(req))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.9:51234"
	assert.Equal(t, "192.0.2.9", clientIP(req))
}

func TestRateLimit_ProxyChainVariationsShareOneBucket(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	h := RateLimitMiddleware(rl)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// The same client arriving through differently long proxy chains
	// must drain a single bucket.
	chains := []string{
		"203.0.113.7",
		"203.0.113.7, 10.0.0.2",
		"203.0.113.7, 10.0.0.2, 10.0.0.1",
	}
	codes := make([]int, 0, len(chains))
	for _, chain := range chains {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Forwarded-For", chain)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}
