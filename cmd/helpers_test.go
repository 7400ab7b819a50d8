// ABOUTME: Shared test helpers for the command tests
// ABOUTME: Isolates configuration and serves a fake HomelabCmd API over httptest

package cmd

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/DarrenBenson/HomelabCmd-sub011/internal/config"
)

// isolateConfig points the config directory at a temp dir and clears every
// HOMELABCMD_ variable and global flag so tests see defaults only.
func isolateConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	for _, kv := range os.Environ() {
		name, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(name, config.EnvPrefix+"_") {
			t.Setenv(name, "")
			os.Unsetenv(name)
		}
	}
	t.Setenv("LOG_LEVEL", "error")

	apiURL = ""
	jsonOutput = false
	t.Cleanup(func() {
		apiURL = ""
		jsonOutput = false
	})
	return dir
}

// backend is a fake API. Routes use ServeMux patterns such as "GET /api/v1/servers".
type backend struct {
	mux *http.ServeMux

	mu     sync.Mutex
	hits   map[string]int
	bodies map[string]string
}

// newBackend starts a fake API and points --api-url at it
func newBackend(t *testing.T) *backend {
	t.Helper()
	isolateConfig(t)

	b := &backend{
		mux:    http.NewServeMux(),
		hits:   make(map[string]int),
		bodies: make(map[string]string),
	}
	server := httptest.NewServer(b.mux)
	t.Cleanup(server.Close)
	apiURL = server.URL
	return b
}

// handle answers pattern with status and body encoded as JSON
func (b *backend) handle(pattern string, status int, body any) {
	b.mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.hits[pattern]++
		if r.Body != nil {
			var raw json.RawMessage
			if json.NewDecoder(r.Body).Decode(&raw) == nil {
				b.bodies[pattern] = string(raw)
			}
		}
		b.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if body != nil {
			json.NewEncoder(w).Encode(body)
		}
	})
}

func (b *backend) count(pattern string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hits[pattern]
}

func (b *backend) body(pattern string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.bodies[pattern]
}

// fleet registers list endpoints for a small fleet: two servers (one offline),
// one open critical alert, one pending action and two cost entries.
func (b *backend) fleet() {
	b.handle("GET /api/v1/servers", http.StatusOK, map[string]any{
		"servers": []map[string]any{
			{"id": "srv-1", "hostname": "web-01", "status": "online", "cpu_percent": 40, "memory_percent": 60},
			{"id": "srv-2", "hostname": "db-01", "status": "offline"},
		},
		"total": 2,
	})
	b.handle("GET /api/v1/alerts", http.StatusOK, map[string]any{
		"alerts": []map[string]any{
			{"id": 7, "server_id": "srv-2", "severity": "critical", "status": "open", "title": "Server offline"},
		},
		"total": 1,
	})
	b.handle("GET /api/v1/actions", http.StatusOK, map[string]any{
		"actions": []map[string]any{
			{"id": 3, "server_id": "srv-1", "action_type": "restart_service", "service_name": "nginx", "status": "pending"},
		},
		"total": 1,
	})
	b.handle("GET /api/v1/costs/breakdown", http.StatusOK, map[string]any{
		"servers": []map[string]any{
			{"server_id": "srv-1", "hostname": "web-01", "tdp_watts": 65, "estimated_monthly_cost": 30},
			{"server_id": "srv-2", "hostname": "db-01", "tdp_watts": 120, "estimated_monthly_cost": 12.5},
		},
	})
}
