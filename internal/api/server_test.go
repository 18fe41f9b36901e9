package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/metcalfc/aloud/internal/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

type fakeController struct {
	commands []Command
	snap     Snapshot
}

func (c *fakeController) Dispatch(cmd Command) error {
	c.commands = append(c.commands, cmd)
	return nil
}

func (c *fakeController) Snapshot() Snapshot { return c.snap }

func newTestServer(token string, ctrl Controller) *Server {
	cfg := &config.Config{APIAddr: "127.0.0.1:0", BearerToken: token}
	return New(cfg, testLogger(), ctrl)
}

func TestHealthz(t *testing.T) {
	s := newTestServer("", &fakeController{})

	req := httptest.NewRequest(http.MethodGet, "/v1/healthz", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("status = %q", resp.Status)
	}
}

func TestStatusReturnsSnapshot(t *testing.T) {
	ctrl := &fakeController{snap: Snapshot{
		State:      "paused",
		Status:     "Paused",
		Chunk:      2,
		ChunkCount: 5,
		Word:       3,
		Rate:       1.5,
	}}
	s := newTestServer("", ctrl)

	req := httptest.NewRequest(http.MethodGet, "/v1/status", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var snap Snapshot
	if err := json.NewDecoder(rec.Body).Decode(&snap); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if snap.State != "paused" || snap.Chunk != 2 || snap.Rate != 1.5 {
		t.Errorf("snapshot = %+v", snap)
	}
}

func TestChunkRendersHighlightedHTML(t *testing.T) {
	ctrl := &fakeController{snap: Snapshot{
		Chunk:      0,
		ChunkCount: 1,
		Word:       1,
		ChunkText:  "hello brave world",
	}}
	s := newTestServer("", ctrl)

	req := httptest.NewRequest(http.MethodGet, "/v1/chunk", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	var resp ChunkResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if resp.HTML != "hello <mark>brave</mark> world" {
		t.Errorf("html = %q", resp.HTML)
	}
}

func TestCommandEndpoints(t *testing.T) {
	ctrl := &fakeController{}
	s := newTestServer("", ctrl)

	for _, cmd := range []Command{CmdPlay, CmdPause, CmdStop, CmdNext, CmdPrev, CmdReset} {
		req := httptest.NewRequest(http.MethodPost, "/v1/"+string(cmd), nil)
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, req)

		if rec.Code != http.StatusAccepted {
			t.Errorf("%s: status = %d, want 202", cmd, rec.Code)
		}
	}
	if len(ctrl.commands) != 6 {
		t.Fatalf("dispatched %d commands, want 6", len(ctrl.commands))
	}
	if ctrl.commands[0] != CmdPlay || ctrl.commands[5] != CmdReset {
		t.Errorf("commands = %v", ctrl.commands)
	}
}

func TestCommandRequiresPost(t *testing.T) {
	s := newTestServer("", &fakeController{})

	req := httptest.NewRequest(http.MethodGet, "/v1/play", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestAuthRequiredWhenTokenConfigured(t *testing.T) {
	ctrl := &fakeController{}
	s := newTestServer("secret", ctrl)

	req := httptest.NewRequest(http.MethodPost, "/v1/play", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if len(ctrl.commands) != 0 {
		t.Error("command dispatched without auth")
	}
}

func TestAuthAcceptsValidBearer(t *testing.T) {
	ctrl := &fakeController{}
	s := newTestServer("secret", ctrl)

	req := httptest.NewRequest(http.MethodPost, "/v1/play", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", rec.Code)
	}
	if len(ctrl.commands) != 1 {
		t.Error("command not dispatched")
	}
}

func TestAuthRejectsWrongToken(t *testing.T) {
	s := newTestServer("secret", &fakeController{})

	tests := []string{"Bearer wrong", "Basic secret", "secret"}
	for _, header := range tests {
		req := httptest.NewRequest(http.MethodGet, "/v1/status", nil)
		req.Header.Set("Authorization", header)
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("header %q: status = %d, want 401", header, rec.Code)
		}
	}
}

func TestHealthzSkipsAuth(t *testing.T) {
	s := newTestServer("secret", &fakeController{})

	req := httptest.NewRequest(http.MethodGet, "/v1/healthz", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}
