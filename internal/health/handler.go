// AngelaMos | 2026
// handler.go

package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
)

const probeTimeout = 5 * time.Second

type Checker interface {
	Ping(ctx context.Context) error
}

// Dependency is a named backing service probed by /readyz.
type Dependency struct {
	Name    string
	Checker Checker
}

type state int32

const (
	stateServing state = iota
	stateDraining
	stateStopping
)

// Handler answers the orchestrator probes. Liveness only reflects the
// process, readiness also pings every dependency.
type Handler struct {
	deps    []Dependency
	state   atomic.Int32
	started time.Time
}

func NewHandler(deps ...Dependency) *Handler {
	return &Handler{deps: deps, started: time.Now()}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", h.Liveness)
	r.Get("/livez", h.Liveness)
	r.Get("/readyz", h.Readiness)
}

// SetReady(false) takes the instance out of rotation while it drains.
func (h *Handler) SetReady(ready bool) {
	if ready {
		h.state.CompareAndSwap(int32(stateDraining), int32(stateServing))
		return
	}
	h.state.CompareAndSwap(int32(stateServing), int32(stateDraining))
}

func (h *Handler) SetShutdown(shutdown bool) {
	if shutdown {
		h.state.Store(int32(stateStopping))
		return
	}
	h.state.Store(int32(stateServing))
}

func (h *Handler) current() state {
	return state(h.state.Load())
}

func (h *Handler) Liveness(w http.ResponseWriter, _ *http.Request) {
	if h.current() == stateStopping {
		writeProbe(w, http.StatusServiceUnavailable, StatusResponse{Status: "shutting_down"})
		return
	}
	writeProbe(w, http.StatusOK, StatusResponse{
		Status:        "ok",
		UptimeSeconds: int64(time.Since(h.started).Seconds()),
	})
}

func (h *Handler) Readiness(w http.ResponseWriter, r *http.Request) {
	switch h.current() {
	case stateStopping:
		writeProbe(w, http.StatusServiceUnavailable, StatusResponse{Status: "shutting_down"})
		return
	case stateDraining:
		writeProbe(w, http.StatusServiceUnavailable, StatusResponse{Status: "not_ready"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
	defer cancel()

	resp := ReadinessResponse{Status: "ok", Checks: h.probeAll(ctx)}
	code := http.StatusOK
	for _, c := range resp.Checks {
		if !c.Healthy {
			resp.Status = "degraded"
			code = http.StatusServiceUnavailable
			break
		}
	}

	writeProbe(w, code, resp)
}

// probeAll pings every dependency concurrently. Results keep the order the
// dependencies were registered in.
func (h *Handler) probeAll(ctx context.Context) []HealthCheck {
	out := make([]HealthCheck, len(h.deps))

	var wg sync.WaitGroup
	for i := range h.deps {
		wg.Go(func() {
			out[i] = probe(ctx, h.deps[i])
		})
	}
	wg.Wait()

	return out
}

func probe(ctx context.Context, dep Dependency) HealthCheck {
	hc := HealthCheck{Name: dep.Name}
	if dep.Checker == nil {
		hc.Message = "not configured"
		return hc
	}

	start := time.Now()
	err := dep.Checker.Ping(ctx)
	hc.LatencyMS = time.Since(start).Milliseconds()

	if err != nil {
		// the cause stays out of the response; probes are unauthenticated
		hc.Message = "unreachable"
		return hc
	}
	hc.Healthy = true
	return hc
}

func writeProbe(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body) //nolint:errcheck // client may be gone
}

type StatusResponse struct {
	Status        string `json:"status"`
	UptimeSeconds int64  `json:"uptime_seconds,omitempty"`
}

type ReadinessResponse struct {
	Status string        `json:"status"`
	Checks []HealthCheck `json:"checks"`
}

type HealthCheck struct {
	Name      string `json:"name"`
	Healthy   bool   `json:"healthy"`
	LatencyMS int64  `json:"latency_ms"`
	Message   string `json:"message,omitempty"`
}
