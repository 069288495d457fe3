package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// SecurityHeaders adds security response headers (CSP, X-Frame-Options, etc.)
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("X-XSS-Protection", "0")
		h.Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")
		h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		h.Set("Strict-Transport-Security", "max-age=63072000; includeSubDomains")
		next.ServeHTTP(w, r)
	})
}

// window counts hits per client over one minute.
type window interface {
	// Allow records a hit for key. When the limit is exceeded it returns
	// false and how long the client should wait.
	Allow(ctx context.Context, key string, limit int) (bool, time.Duration, error)
}

// RateLimiter provides IP-based rate limiting.
type RateLimiter struct {
	maxPerMinute      int
	trustedProxyCount int
	window            window
}

// NewRateLimiter creates an in-process sliding-window limiter.
// Assumes a single trusted reverse proxy by default.
func NewRateLimiter(maxPerMinute int) *RateLimiter {
	return newRateLimiter(maxPerMinute, newMemoryWindow())
}

func newRateLimiter(maxPerMinute int, w window) *RateLimiter {
	return &RateLimiter{
		maxPerMinute:      maxPerMinute,
		trustedProxyCount: 1,
		window:            w,
	}
}

// Middleware returns an http.Handler that enforces rate limits. A limit of
// zero disables limiting. Backend errors let the request through.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rl.maxPerMinute <= 0 {
			next.ServeHTTP(w, r)
			return
		}

		ip := rl.clientIP(r)
		ok, retryAfter, err := rl.window.Allow(r.Context(), ip, rl.maxPerMinute)
		if err != nil {
			slog.Warn("rate limiter unavailable", "remote_ip", ip, "error", err)
			next.ServeHTTP(w, r)
			return
		}
		if !ok {
			w.Header().Set("Retry-After", retryAfterSeconds(retryAfter))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			if err := json.NewEncoder(w).Encode(map[string]string{
				"error": "rate limit exceeded",
			}); err != nil {
				slog.Error("rate limiter: failed to write response", "error", err)
			}
			return
		}

		next.ServeHTTP(w, r)
	})
}

func retryAfterSeconds(d time.Duration) string {
	secs := int(d.Seconds()) + 1
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}

// clientIP extracts the real client IP, reading from the rightmost trusted
// proxy position in X-Forwarded-For to prevent spoofing.
func (rl *RateLimiter) clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" && rl.trustedProxyCount > 0 {
		parts := strings.Split(xff, ",")
		idx := len(parts) - rl.trustedProxyCount
		if idx >= 0 && idx < len(parts) {
			return strings.TrimSpace(parts[idx])
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// memoryWindow is a per-process sliding window.
type memoryWindow struct {
	mu      sync.Mutex
	clients map[string][]time.Time
	now     func() time.Time
}

func newMemoryWindow() *memoryWindow {
	mw := &memoryWindow{clients: make(map[string][]time.Time), now: time.Now}
	go mw.cleanupLoop()
	return mw
}

// cleanupLoop periodically removes stale entries from the clients map.
func (mw *memoryWindow) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		mw.mu.Lock()
		windowStart := mw.now().Add(-time.Minute)
		for ip, ts := range mw.clients {
			ts = prune(ts, windowStart)
			if len(ts) == 0 {
				delete(mw.clients, ip)
				continue
			}
			mw.clients[ip] = ts
		}
		mw.mu.Unlock()
	}
}

func (mw *memoryWindow) Allow(_ context.Context, key string, limit int) (bool, time.Duration, error) {
	mw.mu.Lock()
	defer mw.mu.Unlock()

	now := mw.now()
	ts := prune(mw.clients[key], now.Add(-time.Minute))
	if len(ts) >= limit {
		mw.clients[key] = ts
		return false, ts[0].Add(time.Minute).Sub(now), nil
	}
	mw.clients[key] = append(ts, now)
	return true, 0, nil
}

// prune filters in place, keeping timestamps after windowStart.
func prune(ts []time.Time, windowStart time.Time) []time.Time {
	valid := ts[:0]
	for _, t := range ts {
		if t.After(windowStart) {
			valid = append(valid, t)
		}
	}
	return valid
}
