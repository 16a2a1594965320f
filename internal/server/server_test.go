// AngelaMos | 2026
// server_test.go

package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/invoice-manager/internal/config"
)

type fakeDrainer struct {
	ready    bool
	shutdown bool
}

func (f *fakeDrainer) SetReady(ready bool)       { f.ready = ready }
func (f *fakeDrainer) SetShutdown(shutdown bool) { f.shutdown = shutdown }

func TestRouterFallbacks(t *testing.T) {
	srv := New(Config{ServerConfig: config.ServerConfig{Host: "127.0.0.1", Port: 0}})
	srv.Router().Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":false`)

	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ping", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestShutdown(t *testing.T) {
	drainer := &fakeDrainer{ready: true}
	srv := New(Config{
		ServerConfig:  config.ServerConfig{Host: "127.0.0.1", Port: 0},
		HealthHandler: drainer,
	})

	done := make(chan error, 1)
	go func() { done <- srv.Start() }()
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, srv.Shutdown(t.Context(), 10*time.Millisecond))
	assert.False(t, drainer.ready)
	assert.True(t, drainer.shutdown)

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop")
	}
}
