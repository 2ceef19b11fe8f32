package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kbukum/govkit/component"
	"github.com/kbukum/govkit/logger"
)

func newTestServer(checker func(context.Context) []component.Health, ready func() bool) *Server {
	cfg := Config{}
	cfg.ApplyDefaults()
	s := New(cfg, logger.Nop())
	s.ApplyDefaults("govkit-test", checker, ready)
	return s
}

func get(t *testing.T, h http.Handler, path string) (int, map[string]any) {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, http.NoBody))
	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("GET %s: decode %q: %v", path, rr.Body.String(), err)
	}
	return rr.Code, body
}

func TestDefaultEndpoints(t *testing.T) {
	h := newTestServer(nil, nil).Handler()

	for _, path := range []string{"/health", "/ready", "/alive", "/info", "/version"} {
		t.Run(path, func(t *testing.T) {
			code, _ := get(t, h, path)
			if code != http.StatusOK {
				t.Errorf("status = %d, want 200", code)
			}
		})
	}
}

func TestHealth_Unhealthy(t *testing.T) {
	checker := func(context.Context) []component.Health {
		return []component.Health{
			{Name: "registry", Status: component.StatusHealthy},
			{Name: "kafka", Status: component.StatusUnhealthy, Message: "broker down"},
		}
	}
	h := newTestServer(checker, nil).Handler()

	code, body := get(t, h, "/health")
	if code != http.StatusServiceUnavailable || body["status"] != "unhealthy" {
		t.Errorf("health = %d %v, want 503 unhealthy", code, body["status"])
	}
	code, body = get(t, h, "/ready")
	if code != http.StatusServiceUnavailable || body["reason"] != "kafka unhealthy" {
		t.Errorf("ready = %d %v, want 503 kafka unhealthy", code, body["reason"])
	}
}

func TestHealth_Degraded(t *testing.T) {
	checker := func(context.Context) []component.Health {
		return []component.Health{{Name: "events", Status: component.StatusDegraded}}
	}
	code, body := get(t, newTestServer(checker, nil).Handler(), "/health")
	if code != http.StatusOK || body["status"] != "degraded" {
		t.Errorf("health = %d %v, want 200 degraded", code, body["status"])
	}
}

func TestReady_PendingSync(t *testing.T) {
	synced := false
	h := newTestServer(nil, func() bool { return synced }).Handler()

	if code, _ := get(t, h, "/ready"); code != http.StatusServiceUnavailable {
		t.Errorf("before sync: status = %d, want 503", code)
	}
	synced = true
	if code, _ := get(t, h, "/ready"); code != http.StatusOK {
		t.Errorf("after sync: status = %d, want 200", code)
	}
}

func TestRequestIDHeader(t *testing.T) {
	h := newTestServer(nil, nil).Handler()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/alive", http.NoBody))
	if rr.Header().Get("X-Request-Id") == "" {
		t.Error("expected X-Request-Id on the response")
	}
}

func TestComponentLifecycle(t *testing.T) {
	cfg := Config{Host: "127.0.0.1"}
	cfg.ApplyDefaults()
	cfg.Port = 0
	s := New(cfg, logger.Nop())
	s.RegisterDefaultEndpoints("govkit-test", nil, nil)
	c := NewComponent(s)
	ctx := context.Background()

	if h := c.Health(ctx); h.Status != component.StatusUnhealthy {
		t.Errorf("before start: %s, want unhealthy", h.Status)
	}
	if err := c.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer func() { _ = c.Stop(ctx) }()

	if h := c.Health(ctx); h.Status != component.StatusHealthy {
		t.Errorf("after start: %s, want healthy", h.Status)
	}

	resp, err := http.Get("http://" + s.Addr() + "/alive")
	if err != nil {
		t.Fatalf("GET /alive: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}

	if d := c.Describe(); d.Type != "server" || d.Details == "" {
		t.Errorf("Describe = %+v", d)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"bad port", func(c *Config) { c.Port = 70000 }, true},
		{"negative timeout", func(c *Config) { c.ReadTimeout = "-1s" }, true},
		{"bad timeout", func(c *Config) { c.IdleTimeout = "a minute" }, true},
		{"bad body size", func(c *Config) { c.MaxBodySize = "lots" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{}
			cfg.ApplyDefaults()
			tt.mutate(&cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
