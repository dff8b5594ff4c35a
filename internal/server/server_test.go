package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/me/sourcewatch/internal/classify"
	"github.com/me/sourcewatch/internal/fakehost"
	"github.com/me/sourcewatch/internal/reactivate"
	"github.com/me/sourcewatch/internal/scheduler"
	"github.com/me/sourcewatch/internal/store"
)

type testEnv struct {
	server *Server
	host   *fakehost.Host
	timer  *fakehost.ManualTimer
	engine *scheduler.Controller
}

func setup(t *testing.T) *testEnv {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	h := fakehost.New()
	h.AddResource("display_capture", "screen", map[string]bool{"restart_capture": true})
	h.AddResource("game_capture", "game", map[string]bool{"restart": true})

	st, err := store.NewSQLiteStore(":memory:", logger)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	if err := st.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	timer := fakehost.NewManualTimer()
	reg := classify.NewRegistry(classify.DefaultSpecs())
	att := reactivate.New(h, logger, reactivate.WithSink(st))
	engine := scheduler.NewController(h, timer, st, reg, att, logger)
	engine.OnLoad(time.Now())
	t.Cleanup(engine.OnUnload)

	return &testEnv{
		server: New(engine, st, logger),
		host:   h,
		timer:  timer,
		engine: engine,
	}
}

type envelope struct {
	Status     string          `json:"status"`
	RequestID  string          `json:"request_id"`
	Data       json.RawMessage `json:"data"`
	Pagination *struct {
		Total int `json:"total"`
	} `json:"pagination"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func doRequest(t *testing.T, s *Server, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("parse envelope: %v\nbody: %s", err, rec.Body.String())
	}
	return rec, env
}

func TestHandleHealth(t *testing.T) {
	env := setup(t)
	rec, resp := doRequest(t, env.server, "GET", "/api/v1/health", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if resp.Status != "ok" {
		t.Errorf("envelope status = %q, want ok", resp.Status)
	}
	if resp.RequestID == "" || rec.Header().Get("X-Request-ID") == "" {
		t.Error("request id missing")
	}

	var data healthResponse
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		t.Fatalf("parse data: %v", err)
	}
	if data.Mode != scheduler.ModeIncremental {
		t.Errorf("mode = %q, want incremental", data.Mode)
	}
}

func TestHandleStatus(t *testing.T) {
	env := setup(t)
	rec, resp := doRequest(t, env.server, "GET", "/api/v1/status", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var data statusResponse
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		t.Fatalf("parse data: %v", err)
	}
	if data.CacheSize != 2 {
		t.Errorf("cache_size = %d, want 2", data.CacheSize)
	}
	if data.LastRebuild == "never" || data.LastRebuild == "" {
		t.Errorf("last_rebuild = %q, want a relative time", data.LastRebuild)
	}
}

func TestHandleListAttempts(t *testing.T) {
	env := setup(t)

	// Two ticks check both cached entries and record two attempts.
	now := time.Now()
	env.timer.Advance(now.Add(1 * time.Second))
	env.timer.Advance(now.Add(2 * time.Second))

	rec, resp := doRequest(t, env.server, "GET", "/api/v1/attempts?limit=1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if resp.Pagination == nil || resp.Pagination.Total != 2 {
		t.Fatalf("pagination = %+v, want total 2", resp.Pagination)
	}
	var recs []map[string]any
	if err := json.Unmarshal(resp.Data, &recs); err != nil {
		t.Fatalf("parse data: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("len = %d, want 1 (limit)", len(recs))
	}
}

func TestHandleListAttempts_BadPaging(t *testing.T) {
	env := setup(t)

	for _, path := range []string{
		"/api/v1/attempts?limit=abc",
		"/api/v1/attempts?offset=1.5",
	} {
		rec, resp := doRequest(t, env.server, "GET", path, "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", path, rec.Code)
		}
		if resp.Error == nil || resp.Error.Code != "VALIDATION_ERROR" {
			t.Errorf("%s: error = %+v, want VALIDATION_ERROR", path, resp.Error)
		}
	}
}

func TestUnknownRoute(t *testing.T) {
	env := setup(t)
	rec, resp := doRequest(t, env.server, "GET", "/api/v1/nope", "")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if resp.Status != "error" || resp.Error == nil || resp.Error.Code != "NOT_FOUND" {
		t.Errorf("envelope = %+v, want a NOT_FOUND error", resp)
	}
}

func TestHandleGetConfig(t *testing.T) {
	env := setup(t)
	_, resp := doRequest(t, env.server, "GET", "/api/v1/config", "")

	var data configResponse
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		t.Fatalf("parse data: %v", err)
	}
	if data.CheckIntervalMs != 500 || data.SourcesPerCheck != 1 || data.UseCooperativeMode {
		t.Errorf("config = %+v, want declared defaults", data)
	}
}

func TestHandlePutConfig(t *testing.T) {
	env := setup(t)

	// Out-of-range interval is clamped; the mode switch reinstalls the
	// cooperative scheduler.
	body := `{"check_interval_ms": 50, "use_cooperative_mode": true}`
	rec, resp := doRequest(t, env.server, "PUT", "/api/v1/config", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200\nbody: %s", rec.Code, rec.Body.String())
	}

	var data configResponse
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		t.Fatalf("parse data: %v", err)
	}
	if data.CheckIntervalMs != 100 {
		t.Errorf("check_interval_ms = %d, want clamped 100", data.CheckIntervalMs)
	}
	if !data.UseCooperativeMode {
		t.Error("use_cooperative_mode should be true")
	}

	regs := env.timer.Registered()
	if len(regs) != 1 || regs[0] != scheduler.TickIDCooperative {
		t.Errorf("registered = %v, want only the cooperative tick", regs)
	}

	// The follow-up GET reads back the clamped effective config.
	_, resp = doRequest(t, env.server, "GET", "/api/v1/config", "")
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		t.Fatalf("parse data: %v", err)
	}
	if data.CheckIntervalMs != 100 || !data.UseCooperativeMode {
		t.Errorf("config after PUT = %+v", data)
	}
}

func TestHandlePutConfig_InvalidBody(t *testing.T) {
	env := setup(t)
	rec, resp := doRequest(t, env.server, "PUT", "/api/v1/config", "{not json")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if resp.Status != "error" {
		t.Errorf("envelope status = %q, want error", resp.Status)
	}
}
