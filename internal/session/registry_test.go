package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/hphuyvu-stack/inclusing/internal/data/kv"
	"github.com/hphuyvu-stack/inclusing/internal/data/testutil"
	"github.com/hphuyvu-stack/inclusing/internal/domain"
	"github.com/hphuyvu-stack/inclusing/internal/keyboard"
	"github.com/hphuyvu-stack/inclusing/internal/platform/pcm"
	"github.com/hphuyvu-stack/inclusing/internal/readingmask"
	"github.com/hphuyvu-stack/inclusing/internal/realtime"
	"github.com/hphuyvu-stack/inclusing/internal/realtime/bus"
	"github.com/hphuyvu-stack/inclusing/internal/settings"
)

type stubAI struct {
	mu    sync.Mutex
	calls int
}

func (a *stubAI) Simplify(_ context.Context, text string, lang domain.Language) (string, error) {
	a.mu.Lock()
	a.calls++
	a.mu.Unlock()
	return "simple:" + string(lang), nil
}

func (a *stubAI) Speak(context.Context, string, domain.Language) (pcm.Clip, error) {
	return pcm.FromBytes([]byte{0, 0})
}

type fixture struct {
	hub      *realtime.SSEHub
	registry *Registry
	storage  *kv.Memory
	ai       *stubAI
}

func newFixture(t *testing.T, storage *kv.Memory, instance string, b bus.Bus) *fixture {
	t.Helper()
	log := testutil.Logger(t)
	hub := realtime.NewSSEHub(log)
	ai := &stubAI{}
	reg := NewRegistry(storage, ai, NewNotifier(hub, b, instance, log), log, Options{Policy: settings.PolicyDefaults})
	t.Cleanup(reg.Close)
	return &fixture{hub: hub, registry: reg, storage: storage, ai: ai}
}

func (f *fixture) listen(profile string) *realtime.SSEClient {
	c := f.hub.NewSSEClient(profile)
	f.hub.AddChannel(c, realtime.ProfileChannel(profile))
	return c
}

func waitFor(t *testing.T, c *realtime.SSEClient, ev realtime.SSEEvent) realtime.SSEMessage {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case msg := <-c.Outbound:
			if msg.Event == ev {
				return msg
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s", ev)
		}
	}
}

func startLocal(t *testing.T, f *fixture, b bus.Bus) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	if err := b.StartForwarder(ctx, f.registry.Forward); err != nil {
		t.Fatalf("StartForwarder: %v", err)
	}
}

func TestGetReusesSessionPerProfile(t *testing.T) {
	b := bus.NewLocalBus()
	f := newFixture(t, kv.NewMemory(), "i-1", b)
	ctx := context.Background()
	a1, err := f.registry.Get(ctx, "alice")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	a2, _ := f.registry.Get(ctx, "alice")
	bob, _ := f.registry.Get(ctx, "bob")
	if a1 != a2 || a1 == bob || f.registry.Len() != 2 {
		t.Fatalf("sessions not keyed by profile")
	}
}

func TestSettingsChangeReachesHub(t *testing.T) {
	b := bus.NewLocalBus()
	f := newFixture(t, kv.NewMemory(), "i-1", b)
	startLocal(t, f, b)
	client := f.listen("alice")

	s, _ := f.registry.Get(context.Background(), "alice")
	if _, err := s.Store.Update(context.Background(), domain.SettingsPatch{Theme: domain.Some(domain.ThemeDark)}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	msg := waitFor(t, client, realtime.SSEEventSettingsChanged)
	ev, err := DecodeSettingsEvent(msg.Data)
	if err != nil || ev.Settings.Theme != domain.ThemeDark || ev.Reason != settings.ReasonUpdate {
		t.Fatalf("event: %+v err=%v", ev, err)
	}
}

func TestKeyboardPublishesPanelAndScroll(t *testing.T) {
	b := bus.NewLocalBus()
	f := newFixture(t, kv.NewMemory(), "i-1", b)
	startLocal(t, f, b)
	client := f.listen("alice")
	s, _ := f.registry.Get(context.Background(), "alice")

	if _, err := s.Keyboard.Dispatch(context.Background(), keyboard.KeyEvent{Key: "a", Alt: true}); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	panel := waitFor(t, client, realtime.SSEEventPanelToggled)
	if ev, ok := panel.Data.(PanelEvent); !ok || !ev.Open {
		t.Fatalf("panel event: %+v", panel.Data)
	}

	if _, err := s.Keyboard.Dispatch(context.Background(), keyboard.KeyEvent{Key: "1", Alt: true}); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	scroll := waitFor(t, client, realtime.SSEEventScrollRequested)
	if ev, ok := scroll.Data.(ScrollEvent); !ok || ev.Top != 0 || ev.Behavior != "smooth" {
		t.Fatalf("scroll event: %+v", scroll.Data)
	}
}

func TestReadingMaskEventsFollowPointer(t *testing.T) {
	b := bus.NewLocalBus()
	f := newFixture(t, kv.NewMemory(), "i-1", b)
	client := f.listen("alice")
	s, _ := f.registry.Get(context.Background(), "alice")

	if _, err := s.Store.Update(context.Background(), domain.SettingsPatch{ReadingMask: domain.Some(true)}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	s.Pointer.Publish(300)
	for {
		msg := waitFor(t, client, realtime.SSEEventReadingMaskChanged)
		st, ok := msg.Data.(readingmask.State)
		if !ok {
			t.Fatalf("mask payload: %T", msg.Data)
		}
		if st.Band != nil && st.Band.Top == 260 && st.Band.Bottom == 340 {
			break
		}
	}
}

func TestPeerSettingsAreAdopted(t *testing.T) {
	storage := kv.NewMemory()
	b := bus.NewLocalBus()
	f := newFixture(t, storage, "i-1", b)
	client := f.listen("alice")
	s, _ := f.registry.Get(context.Background(), "alice")

	peer := domain.DefaultSettings()
	peer.SimplifiedContent = true
	peer.Language = domain.LanguageBahasaMalaysia
	f.registry.Forward(realtime.SSEMessage{
		Channel: realtime.ProfileChannel("alice"),
		Event:   realtime.SSEEventSettingsChanged,
		Data:    map[string]any{"settings": map[string]any{"language": "ms", "fontSize": 100, "theme": "default", "simplifiedContent": true}, "reason": "update"},
		Origin:  "i-2",
	})
	if got := s.Store.Get(); got != peer {
		t.Fatalf("adopted snapshot: got=%+v want=%+v", got, peer)
	}
	msg := waitFor(t, client, realtime.SSEEventSettingsChanged)
	if ev, _ := DecodeSettingsEvent(msg.Data); ev.Reason != settings.ReasonRemote {
		t.Fatalf("reason: got=%q want=remote", ev.Reason)
	}
	s.Content.Wait()
	if got := s.Content.Content(); got.Text != "simple:ms" {
		t.Fatalf("content after adopt: %+v", got)
	}
}
