package keyboard

import (
	"context"
	"errors"
	"testing"

	"github.com/hphuyvu-stack/inclusing/internal/data/kv"
	"github.com/hphuyvu-stack/inclusing/internal/data/testutil"
	"github.com/hphuyvu-stack/inclusing/internal/settings"
)

type countingScroller struct{ calls int }

func (s *countingScroller) ScrollToTop(context.Context) { s.calls++ }

func newDispatcher(t *testing.T, storage kv.Storage) (*Dispatcher, *settings.Store, *countingScroller) {
	t.Helper()
	store, err := settings.New(context.Background(), "p", storage, testutil.Logger(t), settings.Options{})
	if err != nil {
		t.Fatalf("settings.New: %v", err)
	}
	sc := &countingScroller{}
	return NewDispatcher(store, sc, testutil.Logger(t)), store, sc
}

func TestMatch(t *testing.T) {
	cases := []struct {
		ev   KeyEvent
		want Action
	}{
		{KeyEvent{Key: "a", Alt: true}, ActionTogglePanel},
		{KeyEvent{Key: "A", Alt: true, Shift: true}, ActionTogglePanel},
		{KeyEvent{Key: "1", Alt: true}, ActionScrollTop},
		{KeyEvent{Key: "a"}, ActionNone},
		{KeyEvent{Key: "1", Ctrl: true}, ActionNone},
		{KeyEvent{Key: "2", Alt: true}, ActionNone},
		{KeyEvent{Key: "3", Alt: true}, ActionNone},
		{KeyEvent{Key: "b", Alt: true}, ActionNone},
	}
	for _, tc := range cases {
		if got := Match(tc.ev); got != tc.want {
			t.Fatalf("Match(%+v): got=%q want=%q", tc.ev, got, tc.want)
		}
	}
}

func TestAltATogglesPanel(t *testing.T) {
	d, store, _ := newDispatcher(t, kv.NewMemory())
	ctx := context.Background()

	if _, err := d.Dispatch(ctx, KeyEvent{Key: "a", Alt: true}); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if !store.Get().IsPanelOpen {
		t.Fatalf("panel should be open after first Alt+A")
	}
	if _, err := d.Dispatch(ctx, KeyEvent{Key: "A", Alt: true}); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if store.Get().IsPanelOpen {
		t.Fatalf("panel should be closed after second Alt+A")
	}
}

func TestAlt1ScrollsWithoutTouchingSettings(t *testing.T) {
	d, store, sc := newDispatcher(t, kv.NewMemory())
	before := store.Get()
	action, err := d.Dispatch(context.Background(), KeyEvent{Key: "1", Alt: true})
	if err != nil || action != ActionScrollTop {
		t.Fatalf("Dispatch: action=%q err=%v", action, err)
	}
	if sc.calls != 1 {
		t.Fatalf("scroll calls: got=%d want=1", sc.calls)
	}
	if store.Get() != before {
		t.Fatalf("Alt+1 changed settings")
	}
}

func TestUnwiredShortcutsAreIgnored(t *testing.T) {
	d, store, sc := newDispatcher(t, kv.NewMemory())
	for _, key := range []string{"2", "3"} {
		action, err := d.Dispatch(context.Background(), KeyEvent{Key: key, Alt: true})
		if err != nil || action != ActionNone {
			t.Fatalf("Alt+%s: action=%q err=%v", key, action, err)
		}
	}
	if sc.calls != 0 || store.Get().IsPanelOpen {
		t.Fatalf("unwired shortcuts had side effects")
	}

	wired := 0
	for _, s := range Shortcuts() {
		if s.Wired {
			wired++
		}
	}
	if len(Shortcuts()) != 4 || wired != 2 {
		t.Fatalf("shortcuts: got=%d wired=%d", len(Shortcuts()), wired)
	}
}

func TestTogglePersistFailureIsReturned(t *testing.T) {
	storage := kv.NewMemory()
	d, store, _ := newDispatcher(t, storage)
	storage.FailPuts = errors.New("quota exceeded")
	if _, err := d.Dispatch(context.Background(), KeyEvent{Key: "a", Alt: true}); err == nil {
		t.Fatalf("Dispatch: want error")
	}
	if store.Get().IsPanelOpen {
		t.Fatalf("panel flag changed despite failed write")
	}
}
