// AngelaMos | 2026
// handler.go

package dashboard

import (
	"context"
	"database/sql"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/carterperez-dev/invoice-manager/internal/core"
	"github.com/carterperez-dev/invoice-manager/internal/invoice"
	"github.com/carterperez-dev/invoice-manager/internal/middleware"
)

const pingTimeout = 2 * time.Second

// SummaryProvider is satisfied by invoice.Service.
type SummaryProvider interface {
	Summary(ctx context.Context) (*invoice.Summary, error)
}

// HandlerConfig wires the handler. Stats and ping hooks are optional; a
// missing one is reported as an unhealthy backend without pool numbers.
type HandlerConfig struct {
	Invoices   SummaryProvider
	DBStats    func() sql.DBStats
	RedisStats func() *redis.PoolStats
	DBPing     func(ctx context.Context) error
	RedisPing  func(ctx context.Context) error
}

type Handler struct {
	cfg     HandlerConfig
	started time.Time
}

func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{cfg: cfg, started: time.Now()}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/dashboard", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/summary", h.GetSummary)
		r.With(middleware.RequireAdmin).Get("/system", h.GetSystemStats)
	})
}

// GetSummary is the invoice overview every role sees on the landing page.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.cfg.Invoices.Summary(r.Context())
	if err != nil {
		core.InternalServerError(w, r, err)
		return
	}
	core.OK(w, summary)
}

// GetSystemStats pings both backends in parallel and reports their pool
// counters alongside the Go runtime numbers.
func (h *Handler) GetSystemStats(w http.ResponseWriter, r *http.Request) {
	resp := SystemStatsResponse{
		UptimeSeconds: int64(time.Since(h.started).Seconds()),
		Runtime:       readRuntimeStats(),
	}

	var wg sync.WaitGroup
	wg.Go(func() {
		resp.Database = checkBackend(r.Context(), h.cfg.DBPing, dbPool(h.cfg.DBStats))
	})
	wg.Go(func() {
		resp.Redis = checkBackend(r.Context(), h.cfg.RedisPing, redisPool(h.cfg.RedisStats))
	})
	wg.Wait()

	core.OK(w, resp)
}

func checkBackend[P any](
	ctx context.Context,
	ping func(context.Context) error,
	pool *P,
) Backend[P] {
	b := Backend[P]{Pool: pool}
	if ping == nil {
		return b
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	start := time.Now()
	b.Healthy = ping(ctx) == nil
	b.LatencyMS = time.Since(start).Milliseconds()
	return b
}

func dbPool(stats func() sql.DBStats) *DBPool {
	if stats == nil {
		return nil
	}
	s := stats()
	return &DBPool{
		MaxOpen:   s.MaxOpenConnections,
		Open:      s.OpenConnections,
		InUse:     s.InUse,
		Idle:      s.Idle,
		WaitCount: s.WaitCount,
		WaitMS:    s.WaitDuration.Milliseconds(),
	}
}

func redisPool(stats func() *redis.PoolStats) *RedisPool {
	if stats == nil {
		return nil
	}
	s := stats()
	if s == nil {
		return nil
	}
	return &RedisPool{
		Hits:     s.Hits,
		Misses:   s.Misses,
		Timeouts: s.Timeouts,
		Total:    s.TotalConns,
		Idle:     s.IdleConns,
	}
}

func readRuntimeStats() RuntimeStats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return RuntimeStats{
		GoVersion:  runtime.Version(),
		Goroutines: runtime.NumGoroutine(),
		NumCPU:     runtime.NumCPU(),
		HeapBytes:  m.HeapAlloc,
		SysBytes:   m.Sys,
		NumGC:      m.NumGC,
	}
}

type SystemStatsResponse struct {
	UptimeSeconds int64              `json:"uptime_seconds"`
	Database      Backend[DBPool]    `json:"database"`
	Redis         Backend[RedisPool] `json:"redis"`
	Runtime       RuntimeStats       `json:"runtime"`
}

// Backend is the reachability of one backing service plus its client
// pool counters.
type Backend[P any] struct {
	Healthy   bool  `json:"healthy"`
	LatencyMS int64 `json:"latency_ms,omitempty"`
	Pool      *P    `json:"pool,omitempty"`
}

type DBPool struct {
	MaxOpen   int   `json:"max_open"`
	Open      int   `json:"open"`
	InUse     int   `json:"in_use"`
	Idle      int   `json:"idle"`
	WaitCount int64 `json:"wait_count"`
	WaitMS    int64 `json:"wait_ms"`
}

type RedisPool struct {
	Hits     uint32 `json:"hits"`
	Misses   uint32 `json:"misses"`
	Timeouts uint32 `json:"timeouts"`
	Total    uint32 `json:"total"`
	Idle     uint32 `json:"idle"`
}

type RuntimeStats struct {
	GoVersion  string `json:"go_version"`
	Goroutines int    `json:"goroutines"`
	NumCPU     int    `json:"num_cpu"`
	HeapBytes  uint64 `json:"heap_bytes"`
	SysBytes   uint64 `json:"sys_bytes"`
	NumGC      uint32 `json:"num_gc"`
}
