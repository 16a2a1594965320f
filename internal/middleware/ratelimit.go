// AngelaMos | 2026
// ratelimit.go

package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	redis_rate "github.com/go-redis/redis_rate/v10"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/carterperez-dev/invoice-manager/internal/config"
	"github.com/carterperez-dev/invoice-manager/internal/core"
)

const keyPrefix = "invoice:rl:"

// RateLimitConfig configures one limiter. Name namespaces its buckets so
// the global limiter and the login limiter never share a counter.
type RateLimitConfig struct {
	Name     string
	Limit    redis_rate.Limit
	KeyFunc  func(*http.Request) string
	FailOpen bool
	Skip     func(*http.Request) bool
}

// RateLimiter enforces Limit in Redis. While Redis is unreachable an
// in-process token bucket per key takes over.
type RateLimiter struct {
	limiter  *redis_rate.Limiter
	fallback *localLimiter
	config   RateLimitConfig
}

func NewRateLimiter(rdb *redis.Client, cfg RateLimitConfig) *RateLimiter {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = KeyByClient
	}
	if cfg.Name == "" {
		cfg.Name = "api"
	}

	return &RateLimiter{
		limiter:  redis_rate.NewLimiter(rdb),
		fallback: newLocalLimiter(),
		config:   cfg,
	}
}

func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rl.config.Skip != nil && rl.config.Skip(r) {
			next.ServeHTTP(w, r)
			return
		}

		key := keyPrefix + rl.config.Name + ":" + rl.config.KeyFunc(r)
		res, err := rl.allow(r.Context(), key)
		if err != nil {
			if rl.config.FailOpen {
				slog.WarnContext(r.Context(), "rate limiter error, failing open",
					"error", err,
					"limiter", rl.config.Name,
				)
				next.ServeHTTP(w, r)
				return
			}
			core.JSONError(w, core.NewAppError(
				err,
				"rate limiter unavailable",
				http.StatusServiceUnavailable,
				"RATE_LIMITER_UNAVAILABLE",
			))
			return
		}

		setRateLimitHeaders(w, res, rl.config.Limit)

		if res.Allowed == 0 {
			slog.InfoContext(r.Context(), "request rate limited",
				"limiter", rl.config.Name,
				"path", r.URL.Path,
			)
			writeRateLimitExceeded(w, res)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) allow(
	ctx context.Context,
	key string,
) (*redis_rate.Result, error) {
	res, err := rl.limiter.Allow(ctx, key, rl.config.Limit)
	if err != nil {
		return rl.fallback.allow(key, rl.config.Limit, time.Now())
	}
	return res, nil
}

// LimitFromConfig turns the rate_limit config section into a limit. A zero
// window means per minute.
func LimitFromConfig(cfg config.RateLimitConfig) redis_rate.Limit {
	period := cfg.Window
	if period <= 0 {
		period = time.Minute
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = cfg.Requests
	}
	return redis_rate.Limit{Rate: cfg.Requests, Burst: burst, Period: period}
}

func PerMinute(rate, burst int) redis_rate.Limit {
	return redis_rate.Limit{Rate: rate, Burst: burst, Period: time.Minute}
}

// SkipProbes exempts health probes and the JWKS document, which load
// balancers and token verifiers poll on their own schedule.
func SkipProbes(r *http.Request) bool {
	switch r.URL.Path {
	case "/healthz", "/livez", "/readyz", "/.well-known/jwks.json":
		return true
	}
	return false
}

// ClientIP is the address of the caller. Behind a proxy it is the last hop
// the proxy appended to X-Forwarded-For.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		hops := strings.Split(xff, ",")
		return strings.TrimSpace(hops[len(hops)-1])
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

func KeyByClient(r *http.Request) string {
	return "ip:" + ClientIP(r)
}

// KeyByUser buckets signed-in callers by user id and everyone else by IP.
func KeyByUser(r *http.Request) string {
	if userID := GetUserID(r.Context()); userID != "" {
		return "user:" + userID
	}
	return KeyByClient(r)
}

func KeyByUserAndEndpoint(r *http.Request) string {
	return KeyByUser(r) + ":" + r.Method + " " + normalizeEndpoint(r.URL.Path)
}

var invoiceIDPattern = regexp.MustCompile(`^INV-\d+$`)

// normalizeEndpoint collapses resource ids so /api/invoices/INV-001 and
// /api/invoices/INV-002 share one bucket.
func normalizeEndpoint(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	for i, part := range parts {
		if isResourceID(part) {
			parts[i] = "{id}"
		}
	}
	return "/" + strings.Join(parts, "/")
}

func isResourceID(s string) bool {
	if s == "" {
		return false
	}
	if uuid.Validate(s) == nil || invoiceIDPattern.MatchString(s) {
		return true
	}
	_, err := strconv.ParseUint(s, 10, 64)
	return err == nil
}

func setRateLimitHeaders(
	w http.ResponseWriter,
	res *redis_rate.Result,
	limit redis_rate.Limit,
) {
	h := w.Header()

	h.Set("X-RateLimit-Limit", strconv.Itoa(limit.Rate))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(max(res.Remaining, 0)))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(
		time.Now().Add(res.ResetAfter).Unix(), 10))
	h.Set("RateLimit-Policy",
		fmt.Sprintf(`%d;w=%d`, limit.Rate, int(limit.Period.Seconds())))
}

func writeRateLimitExceeded(w http.ResponseWriter, res *redis_rate.Result) {
	retryAfter := max(int(res.RetryAfter.Seconds()), 1)

	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	core.JSONError(w, core.NewAppError(
		nil,
		fmt.Sprintf("too many requests, retry after %d seconds", retryAfter),
		http.StatusTooManyRequests,
		"RATE_LIMITED",
	))
}

const (
	sweepInterval = 5 * time.Minute
	bucketIdleTTL = 10 * time.Minute
)

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// localLimiter is the in-process stand-in for Redis. Idle buckets are
// swept lazily from allow.
type localLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
}

func newLocalLimiter() *localLimiter {
	return &localLimiter{buckets: map[string]*bucket{}, lastSweep: time.Now()}
}

func (l *localLimiter) allow(
	key string,
	limit redis_rate.Limit,
	now time.Time,
) (*redis_rate.Result, error) {
	if limit.Rate <= 0 || limit.Period <= 0 {
		return nil, fmt.Errorf("invalid limit %s", limit)
	}
	perToken := limit.Period / time.Duration(limit.Rate)

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) > sweepInterval {
		for k, b := range l.buckets {
			if now.Sub(b.lastSeen) > bucketIdleTTL {
				delete(l.buckets, k)
			}
		}
		l.lastSweep = now
	}

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(rate.Every(perToken), limit.Burst)}
		l.buckets[key] = b
	}
	b.lastSeen = now

	res := &redis_rate.Result{
		Limit:      limit,
		RetryAfter: -1,
		ResetAfter: perToken,
	}
	if b.limiter.AllowN(now, 1) {
		res.Allowed = 1
	} else {
		res.RetryAfter = perToken
	}
	res.Remaining = max(int(b.limiter.TokensAt(now)), 0)

	return res, nil
}
