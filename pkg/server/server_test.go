package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/perimeter/pkg/animator"
	"github.com/matzehuels/perimeter/pkg/errors"
	"github.com/matzehuels/perimeter/pkg/geom"
	"github.com/matzehuels/perimeter/pkg/httputil"
	"github.com/matzehuels/perimeter/pkg/layout"
	"github.com/matzehuels/perimeter/pkg/observability"
	"github.com/matzehuels/perimeter/pkg/session"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func testScene() *layout.Static {
	return layout.NewStatic(layout.Container{Width: 320, Height: 240, DPR: 1}, []geom.Rect{
		{X: 40, Y: 40, Width: 160, Height: 60},
		{X: 40, Y: 140, Width: 120, Height: 60},
	})
}

func newTestServer(t *testing.T, opts ...Option) *Server {
	t.Helper()
	opts = append([]Option{WithSeed(1)}, opts...)
	s := New(testScene(), animator.DefaultConfig(), opts...)
	t.Cleanup(s.Store().Close)
	return s
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func create(t *testing.T, s *Server) sessionInfo {
	t.Helper()
	rec := do(t, s, http.MethodPost, "/sessions", "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /sessions = %d: %s", rec.Code, rec.Body)
	}
	var info sessionInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &info); err != nil {
		t.Fatal(err)
	}
	return info
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) errors.Code {
	t.Helper()
	var body httputil.ErrorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("error body %q: %v", rec.Body, err)
	}
	return body.Code
}

func TestHealthAndVersion(t *testing.T) {
	s := newTestServer(t)
	create(t, s)

	rec := do(t, s, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz = %d", rec.Code)
	}
	var health struct {
		Status   string `json:"status"`
		Sessions int    `json:"sessions"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &health); err != nil {
		t.Fatal(err)
	}
	if health.Status != "ok" || health.Sessions != 1 {
		t.Errorf("health = %+v", health)
	}

	rec = do(t, s, http.MethodGet, "/version", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"version"`) {
		t.Errorf("version = %d %s", rec.Code, rec.Body)
	}
}

func TestCreateSession(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodPost, "/sessions", "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d", rec.Code)
	}
	var info sessionInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &info); err != nil {
		t.Fatal(err)
	}
	if err := errors.ValidateSessionID(info.ID); err != nil {
		t.Errorf("id %q: %v", info.ID, err)
	}
	if loc := rec.Header().Get("Location"); loc != "/sessions/"+info.ID {
		t.Errorf("Location = %q", loc)
	}
	if info.Sections != 2 || info.Hinges != 8 || info.Width != 320 || info.FPS != 30 {
		t.Errorf("info = %+v", info)
	}

	sess, err := s.Store().Get(info.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !sess.Running() {
		t.Error("session loop not started")
	}
	deadline := time.Now().Add(2 * time.Second)
	for sess.Animator().Ticks() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("frame loop never ticked")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	s := newTestServer(t)
	a, b := create(t, s), create(t, s)

	rec := do(t, s, http.MethodPut, "/sessions/"+a.ID+"/viewport", `{"width": 800, "height": 600, "dpr": 2}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("viewport = %d: %s", rec.Code, rec.Body)
	}
	var resized sessionInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &resized); err != nil {
		t.Fatal(err)
	}
	if resized.Width != 800 || resized.Height != 600 || resized.DPR != 2 {
		t.Errorf("resized = %+v", resized)
	}

	rec = do(t, s, http.MethodGet, "/sessions/"+b.ID, "")
	var other sessionInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &other); err != nil {
		t.Fatal(err)
	}
	if other.Width != 320 || other.Height != 240 {
		t.Errorf("viewport change leaked into another session: %+v", other)
	}
}

func TestCursor(t *testing.T) {
	s := newTestServer(t)
	info := create(t, s)
	path := "/sessions/" + info.ID + "/cursor"

	if rec := do(t, s, http.MethodPut, path, `{"x": 44, "y": 46}`); rec.Code != http.StatusNoContent {
		t.Fatalf("PUT cursor = %d: %s", rec.Code, rec.Body)
	}
	sess, _ := s.Store().Get(info.ID)
	if got := sess.Animator().Cursor(); got != geom.Pt(44, 46) {
		t.Errorf("cursor = %v", got)
	}

	if rec := do(t, s, http.MethodDelete, path, ""); rec.Code != http.StatusNoContent {
		t.Fatalf("DELETE cursor = %d", rec.Code)
	}
	if got := sess.Animator().Cursor(); got != animator.Offscreen {
		t.Errorf("cursor after leave = %v", got)
	}

	bad := []struct {
		name string
		body string
	}{
		{"missing y", `{"x": 1}`},
		{"malformed", `{"x": `},
		{"unknown field", `{"x": 1, "y": 2, "z": 3}`},
		{"string", `{"x": "1", "y": 2}`},
	}
	for _, tt := range bad {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPut, path, tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			if code := errorCode(t, rec); code != errors.ErrCodeInvalidInput {
				t.Errorf("code = %s", code)
			}
		})
	}
}

func TestViewportValidation(t *testing.T) {
	s := newTestServer(t)
	info := create(t, s)
	path := "/sessions/" + info.ID + "/viewport"

	for _, body := range []string{
		`{"width": 0, "height": 100}`,
		`{"width": 100, "height": -1}`,
		`{"width": 100, "height": 100, "dpr": -2}`,
	} {
		t.Run(body, func(t *testing.T) {
			if rec := do(t, s, http.MethodPut, path, body); rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestFrame(t *testing.T) {
	s := newTestServer(t)
	info := create(t, s)
	base := "/sessions/" + info.ID + "/frame."

	tests := []struct {
		name   string
		path   string
		ctype  string
		prefix string
	}{
		{"svg", base + "svg", "image/svg+xml", "<svg"},
		{"svg without glow", base + "svg?glow=0&trail=0", "image/svg+xml", "<svg"},
		{"svg scrolled", base + "svg?scroll_top=100&view_height=120", "image/svg+xml", "<svg"},
		{"png", base + "png", "image/png", "\x89PNG"},
		{"txt", base + "txt?cols=40&rows=12", "text/plain; charset=utf-8", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodGet, tt.path, "")
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d: %s", rec.Code, rec.Body)
			}
			if ct := rec.Header().Get("Content-Type"); ct != tt.ctype {
				t.Errorf("Content-Type = %q, want %q", ct, tt.ctype)
			}
			if cc := rec.Header().Get("Cache-Control"); cc != "no-store" {
				t.Errorf("Cache-Control = %q", cc)
			}
			if !bytes.HasPrefix(rec.Body.Bytes(), []byte(tt.prefix)) {
				t.Errorf("body does not start with %q", tt.prefix)
			}
		})
	}

	t.Run("glow filters toggle", func(t *testing.T) {
		glow := do(t, s, http.MethodGet, base+"svg", "").Body.String()
		flat := do(t, s, http.MethodGet, base+"svg?glow=0", "").Body.String()
		if !strings.Contains(glow, "feDropShadow") || strings.Contains(flat, "feDropShadow") {
			t.Error("glow query parameter not honored")
		}
	})

	t.Run("txt size", func(t *testing.T) {
		body := do(t, s, http.MethodGet, base+"txt?cols=40&rows=12", "").Body.String()
		if lines := strings.Split(strings.TrimRight(body, "\n"), "\n"); len(lines) != 12 {
			t.Errorf("lines = %d, want 12", len(lines))
		}
	})

	bad := []struct {
		name string
		path string
		code errors.Code
	}{
		{"unknown format", base + "gif", errors.ErrCodeInvalidFormat},
		{"bad scroll", base + "svg?scroll_top=abc", errors.ErrCodeInvalidInput},
		{"bad cols", base + "txt?cols=0", errors.ErrCodeInvalidInput},
		{"huge rows", base + "txt?rows=100000", errors.ErrCodeInvalidInput},
	}
	for _, tt := range bad {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodGet, tt.path, "")
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			if code := errorCode(t, rec); code != tt.code {
				t.Errorf("code = %s, want %s", code, tt.code)
			}
		})
	}
}

func TestSessionErrors(t *testing.T) {
	s := newTestServer(t)
	missing := "/sessions/6f1c2a4e-3b7d-4c1e-9a2f-0d5b8e7c6a91"

	tests := []struct {
		name   string
		method string
		path   string
		status int
		code   errors.Code
	}{
		{"unknown id", http.MethodGet, missing, http.StatusNotFound, errors.ErrCodeSessionNotFound},
		{"unknown frame", http.MethodGet, missing + "/frame.svg", http.StatusNotFound, errors.ErrCodeSessionNotFound},
		{"unknown delete", http.MethodDelete, missing, http.StatusNotFound, errors.ErrCodeSessionNotFound},
		{"malformed id", http.MethodGet, "/sessions/not-a-uuid", http.StatusBadRequest, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, tt.method, tt.path, "")
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			if code := errorCode(t, rec); code != tt.code {
				t.Errorf("code = %s, want %s", code, tt.code)
			}
		})
	}
}

func TestDeleteSession(t *testing.T) {
	s := newTestServer(t)
	info := create(t, s)
	sess, _ := s.Store().Get(info.ID)

	if rec := do(t, s, http.MethodDelete, "/sessions/"+info.ID, ""); rec.Code != http.StatusNoContent {
		t.Fatalf("DELETE = %d", rec.Code)
	}
	if sess.Running() {
		t.Error("deleted session still running")
	}
	if rec := do(t, s, http.MethodGet, "/sessions/"+info.ID, ""); rec.Code != http.StatusNotFound {
		t.Errorf("GET after delete = %d, want 404", rec.Code)
	}
}

func TestSessionExpiry(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	store := session.NewStore(time.Minute, session.WithStoreClock(clock.Now))
	s := newTestServer(t, WithStore(store))
	info := create(t, s)

	clock.Advance(30 * time.Second)
	if rec := do(t, s, http.MethodGet, "/sessions/"+info.ID, ""); rec.Code != http.StatusOK {
		t.Fatalf("GET within ttl = %d", rec.Code)
	}

	clock.Advance(2 * time.Minute)
	rec := do(t, s, http.MethodGet, "/sessions/"+info.ID+"/frame.svg", "")
	if rec.Code != http.StatusGone {
		t.Fatalf("GET after ttl = %d, want 410", rec.Code)
	}
	if code := errorCode(t, rec); code != errors.ErrCodeSessionExpired {
		t.Errorf("code = %s", code)
	}
	if store.Len() != 0 {
		t.Errorf("expired session not removed")
	}
}

func TestSessionLimit(t *testing.T) {
	store := session.NewStore(time.Minute, session.WithMaxSessions(1))
	s := newTestServer(t, WithStore(store))
	create(t, s)

	rec := do(t, s, http.MethodPost, "/sessions", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	if code := errorCode(t, rec); code != errors.ErrCodeUnsupported {
		t.Errorf("code = %s", code)
	}
}

func TestPublishStartsBeforeAdd(t *testing.T) {
	store := session.NewStore(time.Minute, session.WithMaxSessions(1))
	s := newTestServer(t, WithStore(store))

	newSession := func() *session.Session {
		sess, err := session.New(layout.NewStatic(s.scene.Container(), s.scene.Sections()), s.cfg)
		if err != nil {
			t.Fatal(err)
		}
		return sess
	}

	first := newSession()
	if err := s.publish(first); err != nil {
		t.Fatal(err)
	}
	got, err := store.Get(first.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Running() {
		t.Error("published session has no running loop")
	}

	rejected := newSession()
	if err := s.publish(rejected); !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Fatalf("publish over the limit = %v, want UNSUPPORTED", err)
	}
	if rejected.Running() {
		t.Error("rejected session loop still running")
	}
}

type recordingHTTPHooks struct {
	observability.NoopHTTPHooks
	mu     sync.Mutex
	routes []string
	status []int
}

func (h *recordingHTTPHooks) OnResponse(_ context.Context, _, route string, status int, _ time.Duration) {
	h.mu.Lock()
	h.routes = append(h.routes, route)
	h.status = append(h.status, status)
	h.mu.Unlock()
}

func TestObserveHooks(t *testing.T) {
	hooks := &recordingHTTPHooks{}
	observability.SetHTTPHooks(hooks)
	t.Cleanup(observability.Reset)

	s := newTestServer(t)
	info := create(t, s)
	do(t, s, http.MethodGet, "/sessions/"+info.ID+"/frame.svg", "")

	hooks.mu.Lock()
	defer hooks.mu.Unlock()
	if len(hooks.routes) != 2 {
		t.Fatalf("recorded %d responses, want 2", len(hooks.routes))
	}
	if hooks.status[0] != http.StatusCreated || hooks.status[1] != http.StatusOK {
		t.Errorf("status = %v", hooks.status)
	}
	if strings.Contains(hooks.routes[1], info.ID) {
		t.Errorf("route %q contains the session id", hooks.routes[1])
	}
}

func TestListenAndServeStops(t *testing.T) {
	s := newTestServer(t, WithJanitorInterval(10*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("ListenAndServe = %v, want nil on cancel", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
