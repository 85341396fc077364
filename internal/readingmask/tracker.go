// Package readingmask derives the undimmed band of the reading mask from the
// pointer position while the readingMask setting is on.
package readingmask

import (
	"fmt"
	"sync"

	"github.com/hphuyvu-stack/inclusing/internal/platform/logger"
	"github.com/hphuyvu-stack/inclusing/internal/settings"
)

// HalfHeight is the distance kept undimmed above and below the pointer.
const HalfHeight = 40

const dimColor = "rgba(0, 0, 0, 0.6)"

// Band is the undimmed region [Top, Bottom] in viewport pixels.
type Band struct {
	Top    int `json:"top"`
	Bottom int `json:"bottom"`
}

func BandAt(y int) Band {
	return Band{Top: y - HalfHeight, Bottom: y + HalfHeight}
}

// Gradient renders the overlay background that dims everything outside b.
func (b Band) Gradient() string {
	return fmt.Sprintf("linear-gradient(to bottom, %[1]s 0%%, %[1]s %[2]dpx, transparent %[2]dpx, transparent %[3]dpx, %[1]s %[3]dpx, %[1]s 100%%)",
		dimColor, b.Top, b.Bottom)
}

// State is what the front end renders. Band is nil while the mask is off.
type State struct {
	Active  bool   `json:"active"`
	Band    *Band  `json:"band,omitempty"`
	Overlay string `json:"overlay,omitempty"`
}

type Tracker struct {
	src PointerSource
	log *logger.Logger

	mu       sync.Mutex
	active   bool
	y        int
	detach   func()
	onChange func(State)
}

// NewTracker returns an inactive tracker. onChange, when non-nil, receives
// the new state after every enable, disable and observed position.
func NewTracker(src PointerSource, baseLog *logger.Logger, onChange func(State)) *Tracker {
	return &Tracker{
		src:      src,
		log:      baseLog.With("component", "ReadingMaskTracker"),
		onChange: onChange,
	}
}

// SetEnabled attaches to the pointer source on true and detaches on false.
// The last observed position survives a disable.
func (t *Tracker) SetEnabled(on bool) {
	t.mu.Lock()
	if on == t.active {
		t.mu.Unlock()
		return
	}
	t.active = on
	if on {
		t.detach = t.src.Attach(t.Observe)
	} else {
		detach := t.detach
		t.detach = nil
		if detach != nil {
			detach()
		}
	}
	st := t.stateLocked()
	t.mu.Unlock()

	t.log.Debug("Reading mask toggled", "active", on)
	t.emit(st)
}

// Observe records a pointer position. Positions seen while inactive are ignored.
func (t *Tracker) Observe(y int) {
	t.mu.Lock()
	if !t.active {
		t.mu.Unlock()
		return
	}
	t.y = y
	st := t.stateLocked()
	t.mu.Unlock()
	t.emit(st)
}

func (t *Tracker) Active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}

// Band reports the undimmed band; ok is false while the mask is off.
func (t *Tracker) Band() (Band, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.active {
		return Band{}, false
	}
	return BandAt(t.y), true
}

// Overlay returns the overlay background, or "" when nothing is rendered.
func (t *Tracker) Overlay() string {
	if b, ok := t.Band(); ok {
		return b.Gradient()
	}
	return ""
}

func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stateLocked()
}

func (t *Tracker) stateLocked() State {
	if !t.active {
		return State{}
	}
	b := BandAt(t.y)
	return State{Active: true, Band: &b, Overlay: b.Gradient()}
}

func (t *Tracker) emit(st State) {
	if t.onChange != nil {
		t.onChange(st)
	}
}

// Follow gates the tracker on the store's readingMask flag, starting from the
// current snapshot. The returned function stops following and detaches.
func (t *Tracker) Follow(store *settings.Store) func() {
	t.SetEnabled(store.Get().ReadingMask)
	unsubscribe := store.Subscribe(func(ch settings.Change) {
		if ch.Prev.ReadingMask != ch.Next.ReadingMask {
			t.SetEnabled(ch.Next.ReadingMask)
		}
	})
	return func() {
		unsubscribe()
		t.SetEnabled(false)
	}
}
