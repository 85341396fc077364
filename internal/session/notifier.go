package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hphuyvu-stack/inclusing/internal/domain"
	"github.com/hphuyvu-stack/inclusing/internal/platform/logger"
	"github.com/hphuyvu-stack/inclusing/internal/realtime"
	"github.com/hphuyvu-stack/inclusing/internal/realtime/bus"
	"github.com/hphuyvu-stack/inclusing/internal/settings"
)

// SettingsEvent is the payload of SettingsChanged.
type SettingsEvent struct {
	Settings domain.AccessibilitySettings `json:"settings"`
	Reason   settings.Reason              `json:"reason"`
}

// ScrollEvent is the payload of ScrollRequested.
type ScrollEvent struct {
	Top      int    `json:"top"`
	Behavior string `json:"behavior"`
}

type PanelEvent struct {
	Open bool `json:"open"`
}

// Notifier routes session events. Persisted settings changes travel over the
// bus so peer instances can adopt them; everything derived per instance goes
// straight to the local hub.
type Notifier struct {
	hub        *realtime.SSEHub
	bus        bus.Bus
	instanceID string
	log        *logger.Logger
}

func NewNotifier(hub *realtime.SSEHub, b bus.Bus, instanceID string, baseLog *logger.Logger) *Notifier {
	return &Notifier{
		hub:        hub,
		bus:        b,
		instanceID: instanceID,
		log:        baseLog.With("component", "SessionNotifier"),
	}
}

func (n *Notifier) InstanceID() string { return n.instanceID }

func (n *Notifier) local(profile string, ev realtime.SSEEvent, data any) {
	n.hub.Broadcast(realtime.SSEMessage{
		Channel: realtime.ProfileChannel(profile),
		Event:   ev,
		Data:    data,
		Origin:  n.instanceID,
	})
}

func (n *Notifier) settingsChanged(ctx context.Context, ch settings.Change) {
	msg := realtime.SSEMessage{
		Channel: realtime.ProfileChannel(ch.Owner),
		Event:   realtime.SSEEventSettingsChanged,
		Data:    SettingsEvent{Settings: ch.Next, Reason: ch.Reason},
		Origin:  n.instanceID,
	}
	if ch.Reason == settings.ReasonRemote {
		n.hub.Broadcast(msg)
	} else if err := n.bus.Publish(ctx, msg); err != nil {
		n.log.Warn("Publishing settings change failed; delivering locally", "error", err, "profile_id", ch.Owner)
		n.hub.Broadcast(msg)
	}
	if ch.Prev.IsPanelOpen != ch.Next.IsPanelOpen {
		n.local(ch.Owner, realtime.SSEEventPanelToggled, PanelEvent{Open: ch.Next.IsPanelOpen})
	}
}

// DecodeSettingsEvent recovers a SettingsEvent from a message that may have
// crossed the bus as generic JSON.
func DecodeSettingsEvent(data any) (SettingsEvent, error) {
	if ev, ok := data.(SettingsEvent); ok {
		return ev, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return SettingsEvent{}, err
	}
	var ev SettingsEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		return SettingsEvent{}, fmt.Errorf("decode settings event: %w", err)
	}
	return ev, nil
}
