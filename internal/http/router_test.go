package http

import (
	"context"
	"encoding/json"
	"errors"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/hphuyvu-stack/inclusing/internal/data/kv"
	"github.com/hphuyvu-stack/inclusing/internal/data/testutil"
	"github.com/hphuyvu-stack/inclusing/internal/domain"
	httpH "github.com/hphuyvu-stack/inclusing/internal/http/handlers"
	httpMW "github.com/hphuyvu-stack/inclusing/internal/http/middleware"
	"github.com/hphuyvu-stack/inclusing/internal/platform/pcm"
	"github.com/hphuyvu-stack/inclusing/internal/realtime"
	"github.com/hphuyvu-stack/inclusing/internal/realtime/bus"
	"github.com/hphuyvu-stack/inclusing/internal/session"
	"github.com/hphuyvu-stack/inclusing/internal/settings"
)

type fakeAI struct {
	speakErr error
}

func (f *fakeAI) Simplify(_ context.Context, text string, _ domain.Language) (string, error) {
	return "simple", nil
}

func (f *fakeAI) Speak(context.Context, string, domain.Language) (pcm.Clip, error) {
	if f.speakErr != nil {
		return pcm.Clip{}, f.speakErr
	}
	return pcm.FromBytes([]byte{0, 0, 0, 0x40})
}

func newTestRouter(t *testing.T, ai *fakeAI) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := testutil.Logger(t)
	hub := realtime.NewSSEHub(log)
	b := bus.NewLocalBus()
	reg := session.NewRegistry(kv.NewMemory(), ai, session.NewNotifier(hub, b, "test", log), log, session.Options{Policy: settings.PolicyDefaults})
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(func() {
		cancel()
		reg.Close()
	})
	if err := b.StartForwarder(ctx, reg.Forward); err != nil {
		t.Fatalf("StartForwarder: %v", err)
	}
	return NewRouter(RouterConfig{
		Log:                 log,
		ProfileMiddleware:   httpMW.NewProfileMiddleware(log, ""),
		SettingsHandler:     httpH.NewSettingsHandler(reg),
		PresentationHandler: httpH.NewPresentationHandler(reg),
		ContentHandler:      httpH.NewContentHandler(reg, domain.SampleCourse()),
		KeyboardHandler:     httpH.NewKeyboardHandler(reg),
		RealtimeHandler:     httpH.NewRealtimeHandler(log, hub, reg),
		ViewportHandler:     httpH.NewViewportHandler(log, hub, reg, nil),
		HealthHandler:       httpH.NewHealthHandler(nil),
	})
}

func call(t *testing.T, r stdhttp.Handler, method, target, profile, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if profile != "" {
		req.Header.Set(httpMW.HeaderProfileID, profile)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeSettings(t *testing.T, rec *httptest.ResponseRecorder) domain.AccessibilitySettings {
	t.Helper()
	var out struct {
		Settings domain.AccessibilitySettings `json:"settings"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out.Settings
}

func TestHealthcheck(t *testing.T) {
	r := newTestRouter(t, &fakeAI{})
	rec := call(t, r, stdhttp.MethodGet, "/healthcheck", "", "")
	if rec.Code != stdhttp.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("healthcheck: got=%d %q", rec.Code, rec.Body.String())
	}
}

func TestPatchSettingsMergesAndPersistsPerProfile(t *testing.T) {
	r := newTestRouter(t, &fakeAI{})

	rec := call(t, r, stdhttp.MethodPatch, "/api/settings", "alice", `{"fontSize":150}`)
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("patch: got=%d body=%s", rec.Code, rec.Body.String())
	}
	want := domain.DefaultSettings()
	want.FontSize = 150
	if got := decodeSettings(t, rec); got != want {
		t.Fatalf("patch result: got=%+v want=%+v", got, want)
	}

	if got := decodeSettings(t, call(t, r, stdhttp.MethodGet, "/api/settings", "alice", "")); got != want {
		t.Fatalf("get alice: got=%+v", got)
	}
	if got := decodeSettings(t, call(t, r, stdhttp.MethodGet, "/api/settings", "bob", "")); got != domain.DefaultSettings() {
		t.Fatalf("bob must not see alice's settings: %+v", got)
	}
}

func TestPatchSettingsRejectsInvalidValues(t *testing.T) {
	r := newTestRouter(t, &fakeAI{})
	cases := []struct {
		body string
		code string
	}{
		{`{"fontSize":85}`, "invalid_settings"},
		{`{"fontSize":210}`, "invalid_settings"},
		{`{"theme":"sepia"}`, "invalid_settings"},
		{`{"language":"fr"}`, "invalid_settings"},
		{`{"fontSize":"big"}`, "invalid_request"},
	}
	for _, tc := range cases {
		rec := call(t, r, stdhttp.MethodPatch, "/api/settings", "alice", tc.body)
		if rec.Code != stdhttp.StatusBadRequest {
			t.Fatalf("%s: got=%d want=400", tc.body, rec.Code)
		}
		var env struct {
			Error struct {
				Code string `json:"code"`
			} `json:"error"`
		}
		_ = json.Unmarshal(rec.Body.Bytes(), &env)
		if env.Error.Code != tc.code {
			t.Fatalf("%s: code got=%q want=%q", tc.body, env.Error.Code, tc.code)
		}
	}
	if got := decodeSettings(t, call(t, r, stdhttp.MethodGet, "/api/settings", "alice", "")); got != domain.DefaultSettings() {
		t.Fatalf("rejected patches changed settings: %+v", got)
	}
}

func TestResetKeepsPanelOpen(t *testing.T) {
	r := newTestRouter(t, &fakeAI{})
	call(t, r, stdhttp.MethodPatch, "/api/settings", "alice", `{"theme":"dark"}`)
	rec := call(t, r, stdhttp.MethodPost, "/api/settings/reset", "alice", "")
	if got := decodeSettings(t, rec); got != domain.ResetSettings() {
		t.Fatalf("reset: got=%+v", got)
	}
}

func TestForgetReturnsDefaults(t *testing.T) {
	r := newTestRouter(t, &fakeAI{})
	call(t, r, stdhttp.MethodPatch, "/api/settings", "alice", `{"theme":"dark","isPanelOpen":true}`)
	rec := call(t, r, stdhttp.MethodDelete, "/api/settings", "alice", "")
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("forget: got=%d %s", rec.Code, rec.Body.String())
	}
	if got := decodeSettings(t, rec); got != domain.DefaultSettings() {
		t.Fatalf("forget: got=%+v", got)
	}
	if got := decodeSettings(t, call(t, r, stdhttp.MethodGet, "/api/settings", "alice", "")); got != domain.DefaultSettings() {
		t.Fatalf("get after forget: got=%+v", got)
	}
}

func TestPresentationReflectsSettings(t *testing.T) {
	r := newTestRouter(t, &fakeAI{})
	call(t, r, stdhttp.MethodPatch, "/api/settings", "alice", `{"theme":"dark","fontSize":120,"dyslexicFont":true}`)
	rec := call(t, r, stdhttp.MethodGet, "/api/presentation", "alice", "")
	var out struct {
		Presentation struct {
			RootStyle string `json:"rootStyle"`
			ClassName string `json:"className"`
		} `json:"presentation"`
		Themes []json.RawMessage `json:"themes"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Presentation.RootStyle != "font-size: 120%" {
		t.Fatalf("rootStyle: got=%q", out.Presentation.RootStyle)
	}
	if !strings.HasPrefix(out.Presentation.ClassName, "theme-dark") || !strings.HasSuffix(out.Presentation.ClassName, "font-dyslexic") {
		t.Fatalf("className: got=%q", out.Presentation.ClassName)
	}
	if len(out.Themes) != 5 {
		t.Fatalf("themes: got=%d want=5", len(out.Themes))
	}
}

func TestKeyboardEndpointTogglesPanel(t *testing.T) {
	r := newTestRouter(t, &fakeAI{})
	rec := call(t, r, stdhttp.MethodPost, "/api/keyboard", "alice", `{"key":"A","altKey":true}`)
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("keyboard: got=%d body=%s", rec.Code, rec.Body.String())
	}
	if !decodeSettings(t, rec).IsPanelOpen {
		t.Fatalf("panel should be open")
	}
	rec = call(t, r, stdhttp.MethodPost, "/api/keyboard", "alice", `{"key":"2","altKey":true}`)
	if !strings.Contains(rec.Body.String(), `"handled":false`) {
		t.Fatalf("Alt+2 should be unhandled: %s", rec.Body.String())
	}
}

func TestReadAloudReturnsWav(t *testing.T) {
	r := newTestRouter(t, &fakeAI{})
	rec := call(t, r, stdhttp.MethodPost, "/api/content/read-aloud", "alice", "")
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("read-aloud: got=%d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "audio/wav" {
		t.Fatalf("content type: got=%q", ct)
	}
	if body := rec.Body.Bytes(); len(body) != 48 || string(body[:4]) != "RIFF" {
		t.Fatalf("wav body: len=%d", len(body))
	}
}

func TestReadAloudFailureIsNoContent(t *testing.T) {
	r := newTestRouter(t, &fakeAI{speakErr: errors.New("API Key not found")})
	rec := call(t, r, stdhttp.MethodPost, "/api/content/read-aloud", "alice", "")
	if rec.Code != stdhttp.StatusNoContent {
		t.Fatalf("read-aloud failure: got=%d want=204", rec.Code)
	}
}

func TestContentShowsSourceByDefault(t *testing.T) {
	r := newTestRouter(t, &fakeAI{})
	rec := call(t, r, stdhttp.MethodGet, "/api/content", "alice", "")
	var out struct {
		Content domain.CourseContent `json:"content"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Content.Text != domain.SampleCourse().Content || out.Content.Simplified {
		t.Fatalf("content: %+v", out.Content)
	}
}

func TestViewportSocketTracksPointer(t *testing.T) {
	r := newTestRouter(t, &fakeAI{})
	call(t, r, stdhttp.MethodPatch, "/api/settings", "alice", `{"readingMask":true}`)

	srv := httptest.NewServer(r)
	defer srv.Close()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/viewport/ws?profile=alice"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(map[string]any{"type": "pointer", "y": 300}); err != nil {
		t.Fatalf("write: %v", err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		var msg struct {
			Type string `json:"type"`
			Data struct {
				Active bool `json:"active"`
				Band   *struct {
					Top    int `json:"top"`
					Bottom int `json:"bottom"`
				} `json:"band"`
			} `json:"data"`
		}
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read: %v", err)
		}
		if msg.Type == "mask" && msg.Data.Band != nil && msg.Data.Band.Top == 260 && msg.Data.Band.Bottom == 340 {
			return
		}
	}
}

func TestViewportSocketScrollShortcut(t *testing.T) {
	r := newTestRouter(t, &fakeAI{})
	srv := httptest.NewServer(r)
	defer srv.Close()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/viewport/ws?profile=bob"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(map[string]any{"type": "key", "key": "1", "altKey": true}); err != nil {
		t.Fatalf("write: %v", err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		var msg struct {
			Type     string `json:"type"`
			Top      *int   `json:"top"`
			Behavior string `json:"behavior"`
		}
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read: %v", err)
		}
		if msg.Type == "scroll" {
			if msg.Top == nil || *msg.Top != 0 || msg.Behavior != "smooth" {
				t.Fatalf("scroll message: %+v", msg)
			}
			return
		}
	}
}
