// Package keyboard maps global key chords to settings and viewport actions.
package keyboard

import (
	"context"
	"fmt"
	"strings"

	"github.com/hphuyvu-stack/inclusing/internal/domain"
	"github.com/hphuyvu-stack/inclusing/internal/platform/logger"
	"github.com/hphuyvu-stack/inclusing/internal/settings"
)

// KeyEvent mirrors the browser's KeyboardEvent fields the dispatcher reads.
type KeyEvent struct {
	Key   string `json:"key"`
	Alt   bool   `json:"altKey"`
	Ctrl  bool   `json:"ctrlKey"`
	Shift bool   `json:"shiftKey"`
	Meta  bool   `json:"metaKey"`
}

type Action string

const (
	ActionNone        Action = ""
	ActionTogglePanel Action = "toggle_panel"
	ActionScrollTop   Action = "scroll_top"
)

// Scroller moves the profile's viewport.
type Scroller interface {
	ScrollToTop(ctx context.Context)
}

type Dispatcher struct {
	store    *settings.Store
	scroller Scroller
	log      *logger.Logger
}

func NewDispatcher(store *settings.Store, scroller Scroller, baseLog *logger.Logger) *Dispatcher {
	return &Dispatcher{
		store:    store,
		scroller: scroller,
		log:      baseLog.With("component", "KeyboardDispatcher"),
	}
}

// Match resolves ev to an action without performing it. Only the Alt
// modifier is consulted; the other modifiers do not block a chord.
func Match(ev KeyEvent) Action {
	if !ev.Alt {
		return ActionNone
	}
	switch {
	case strings.ToLower(ev.Key) == "a":
		return ActionTogglePanel
	case ev.Key == "1":
		return ActionScrollTop
	default:
		return ActionNone
	}
}

// Dispatch performs the action bound to ev. Unrecognized chords return
// ActionNone and a nil error.
func (d *Dispatcher) Dispatch(ctx context.Context, ev KeyEvent) (Action, error) {
	action := Match(ev)
	switch action {
	case ActionTogglePanel:
		snap, err := d.store.Modify(ctx, func(cur domain.AccessibilitySettings) domain.SettingsPatch {
			return domain.SettingsPatch{IsPanelOpen: domain.Some(!cur.IsPanelOpen)}
		})
		if err != nil {
			return action, fmt.Errorf("toggle panel: %w", err)
		}
		d.log.Debug("Accessibility panel toggled", "open", snap.IsPanelOpen)
	case ActionScrollTop:
		if d.scroller != nil {
			d.scroller.ScrollToTop(ctx)
		}
	}
	return action, nil
}

type Shortcut struct {
	Keys  string `json:"keys"`
	Label string `json:"label"`
	// Wired is false for shortcuts the panel lists but nothing handles.
	Wired bool `json:"wired"`
}

// Shortcuts is the list the settings panel documents, in panel order.
func Shortcuts() []Shortcut {
	return []Shortcut{
		{Keys: "Alt + 1", Label: "Course Home", Wired: true},
		{Keys: "Alt + 2", Label: "Assignments"},
		{Keys: "Alt + 3", Label: "Grades"},
		{Keys: "Alt + A", Label: "Open Settings", Wired: true},
	}
}
