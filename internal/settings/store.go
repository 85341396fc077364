// Package settings owns a profile's accessibility snapshot: it loads it from
// durable storage, applies merge-patches, writes every mutation through and
// notifies listeners.
package settings

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/hphuyvu-stack/inclusing/internal/data/kv"
	"github.com/hphuyvu-stack/inclusing/internal/domain"
	"github.com/hphuyvu-stack/inclusing/internal/platform/logger"
)

var ErrCorruptSettings = errors.New("settings: stored snapshot is corrupt")

// LoadPolicy decides what happens when the stored blob cannot be decoded.
type LoadPolicy string

const (
	// PolicyDefaults starts from DefaultSettings and logs a warning. The
	// corrupt blob stays in storage until the first mutation overwrites it.
	PolicyDefaults LoadPolicy = "defaults"
	// PolicyStrict fails the load with ErrCorruptSettings.
	PolicyStrict LoadPolicy = "strict"
)

func ParseLoadPolicy(raw string) (LoadPolicy, error) {
	switch LoadPolicy(raw) {
	case "", PolicyDefaults:
		return PolicyDefaults, nil
	case PolicyStrict:
		return PolicyStrict, nil
	default:
		return "", fmt.Errorf("unknown settings load policy %q", raw)
	}
}

type Reason string

const (
	ReasonUpdate Reason = "update"
	ReasonReset  Reason = "reset"
	ReasonRemote Reason = "remote"
	ReasonForget Reason = "forget"
)

type Change struct {
	Owner  string
	Prev   domain.AccessibilitySettings
	Next   domain.AccessibilitySettings
	Reason Reason
}

// Listener is called synchronously after a mutation is persisted. It may read
// the store but must not mutate it.
type Listener func(Change)

type Options struct {
	Policy LoadPolicy
}

type Store struct {
	owner   string
	storage kv.Storage
	log     *logger.Logger

	// mutateMu orders mutations together with their notifications.
	mutateMu sync.Mutex

	mu        sync.RWMutex
	snap      domain.AccessibilitySettings
	nextID    int
	listeners []listenerEntry
}

type listenerEntry struct {
	id int
	fn Listener
}

// New loads owner's snapshot from storage. A missing blob yields the defaults.
func New(ctx context.Context, owner string, storage kv.Storage, baseLog *logger.Logger, opts Options) (*Store, error) {
	if storage == nil {
		return nil, fmt.Errorf("settings: storage required")
	}
	if owner == "" {
		return nil, kv.ErrEmptyOwner
	}
	s := &Store{
		owner:   owner,
		storage: storage,
		log:     baseLog.With("component", "SettingsStore", "owner", owner),
	}
	snap, err := s.load(ctx, opts.Policy)
	if err != nil {
		return nil, err
	}
	s.snap = snap
	return s, nil
}

func (s *Store) load(ctx context.Context, policy LoadPolicy) (domain.AccessibilitySettings, error) {
	raw, ok, err := s.storage.Get(ctx, s.owner, domain.SettingsKey)
	if err != nil {
		return domain.AccessibilitySettings{}, fmt.Errorf("settings: read storage: %w", err)
	}
	if !ok {
		return domain.DefaultSettings(), nil
	}
	snap, decErr := Decode(raw)
	if decErr == nil {
		return snap, nil
	}
	if policy == PolicyStrict {
		return domain.AccessibilitySettings{}, decErr
	}
	s.log.Warn("Stored accessibility settings are corrupt; starting from defaults",
		"error", decErr,
		"bytes", len(raw),
	)
	return domain.DefaultSettings(), nil
}

// Decode parses a stored snapshot. Fields missing from the blob keep their
// default values; anything that is not a JSON object is corrupt.
func Decode(raw []byte) (domain.AccessibilitySettings, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return domain.AccessibilitySettings{}, fmt.Errorf("%w: not a JSON object", ErrCorruptSettings)
	}
	snap := domain.DefaultSettings()
	if err := json.Unmarshal(trimmed, &snap); err != nil {
		return domain.AccessibilitySettings{}, fmt.Errorf("%w: %v", ErrCorruptSettings, err)
	}
	return snap, nil
}

func Encode(snap domain.AccessibilitySettings) ([]byte, error) {
	return json.Marshal(snap)
}

func (s *Store) Owner() string { return s.owner }

func (s *Store) Get() domain.AccessibilitySettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

func (s *Store) Update(ctx context.Context, patch domain.SettingsPatch) (domain.AccessibilitySettings, error) {
	return s.mutate(ctx, ReasonUpdate, func(cur domain.AccessibilitySettings) domain.AccessibilitySettings {
		return patch.Apply(cur)
	})
}

// Modify derives a patch from the current snapshot and applies it atomically.
func (s *Store) Modify(ctx context.Context, fn func(domain.AccessibilitySettings) domain.SettingsPatch) (domain.AccessibilitySettings, error) {
	return s.mutate(ctx, ReasonUpdate, func(cur domain.AccessibilitySettings) domain.AccessibilitySettings {
		return fn(cur).Apply(cur)
	})
}

func (s *Store) Reset(ctx context.Context) (domain.AccessibilitySettings, error) {
	return s.mutate(ctx, ReasonReset, func(domain.AccessibilitySettings) domain.AccessibilitySettings {
		return domain.ResetSettings()
	})
}

// Forget deletes the stored blob and returns the snapshot to defaults. The
// next load of this owner starts from defaults as well.
func (s *Store) Forget(ctx context.Context) (domain.AccessibilitySettings, error) {
	s.mutateMu.Lock()
	defer s.mutateMu.Unlock()

	prev := s.Get()
	if err := s.storage.Delete(ctx, s.owner, domain.SettingsKey); err != nil {
		s.log.Error("Deleting accessibility settings failed", "error", err)
		return prev, fmt.Errorf("settings: delete storage: %w", err)
	}
	snap := domain.DefaultSettings()
	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()

	s.notify(Change{Owner: s.owner, Prev: prev, Next: snap, Reason: ReasonForget})
	return snap, nil
}

func (s *Store) mutate(ctx context.Context, reason Reason, next func(domain.AccessibilitySettings) domain.AccessibilitySettings) (domain.AccessibilitySettings, error) {
	s.mutateMu.Lock()
	defer s.mutateMu.Unlock()

	prev := s.Get()
	snap := next(prev)

	raw, err := Encode(snap)
	if err != nil {
		return prev, fmt.Errorf("settings: encode: %w", err)
	}
	if err := s.storage.Put(ctx, s.owner, domain.SettingsKey, raw); err != nil {
		s.log.Error("Persisting accessibility settings failed", "error", err, "reason", string(reason))
		return prev, fmt.Errorf("settings: write storage: %w", err)
	}

	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()

	s.notify(Change{Owner: s.owner, Prev: prev, Next: snap, Reason: reason})
	return snap, nil
}

// Adopt replaces the snapshot with one already persisted by another instance.
func (s *Store) Adopt(snap domain.AccessibilitySettings) {
	s.mutateMu.Lock()
	defer s.mutateMu.Unlock()

	prev := s.Get()
	if prev == snap {
		return
	}
	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()
	s.notify(Change{Owner: s.owner, Prev: prev, Next: snap, Reason: ReasonRemote})
}

// Subscribe registers fn and returns a function that removes it.
func (s *Store) Subscribe(fn Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, listenerEntry{id: id, fn: fn})
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, l := range s.listeners {
			if l.id == id {
				s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

func (s *Store) notify(ch Change) {
	s.mu.RLock()
	ls := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		ls = append(ls, l.fn)
	}
	s.mu.RUnlock()
	for _, fn := range ls {
		fn(ch)
	}
}
