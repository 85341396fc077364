// Package session composes the per-profile components: one settings store
// and the reading mask, content pipeline and keyboard dispatcher that follow it.
package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/hphuyvu-stack/inclusing/internal/content"
	"github.com/hphuyvu-stack/inclusing/internal/data/kv"
	"github.com/hphuyvu-stack/inclusing/internal/domain"
	"github.com/hphuyvu-stack/inclusing/internal/keyboard"
	"github.com/hphuyvu-stack/inclusing/internal/platform/logger"
	"github.com/hphuyvu-stack/inclusing/internal/readingmask"
	"github.com/hphuyvu-stack/inclusing/internal/realtime"
	"github.com/hphuyvu-stack/inclusing/internal/settings"
)

// AI is the external collaborator the content pipeline calls.
type AI interface {
	content.Simplifier
	content.Speaker
}

type Session struct {
	Profile  string
	Store    *settings.Store
	Pointer  *readingmask.PointerFeed
	Mask     *readingmask.Tracker
	Content  *content.Pipeline
	Keyboard *keyboard.Dispatcher

	notifier *Notifier
	stops    []func()
}

// ScrollToTop asks the profile's viewports to scroll to the top.
func (s *Session) ScrollToTop(context.Context) {
	s.notifier.local(s.Profile, realtime.SSEEventScrollRequested, ScrollEvent{Top: 0, Behavior: "smooth"})
}

func (s *Session) close() {
	for i := len(s.stops) - 1; i >= 0; i-- {
		s.stops[i]()
	}
	s.Content.Close()
}

type Options struct {
	Policy settings.LoadPolicy
	// Source is the lesson text every session displays.
	Source string
}

type Registry struct {
	storage  kv.Storage
	ai       AI
	notifier *Notifier
	base     *logger.Logger
	log      *logger.Logger
	opts     Options

	mu       sync.Mutex
	sessions map[string]*Session
	closed   bool
}

func NewRegistry(storage kv.Storage, ai AI, notifier *Notifier, baseLog *logger.Logger, opts Options) *Registry {
	if opts.Source == "" {
		opts.Source = domain.SampleCourse().Content
	}
	return &Registry{
		storage:  storage,
		ai:       ai,
		notifier: notifier,
		base:     baseLog,
		log:      baseLog.With("component", "SessionRegistry"),
		opts:     opts,
		sessions: make(map[string]*Session),
	}
}

// Get returns profile's session, loading its settings on first use.
func (r *Registry) Get(ctx context.Context, profile string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, fmt.Errorf("session registry closed")
	}
	if s, ok := r.sessions[profile]; ok {
		return s, nil
	}
	s, err := r.open(ctx, profile)
	if err != nil {
		return nil, err
	}
	r.sessions[profile] = s
	r.log.Debug("Session opened", "profile_id", profile)
	return s, nil
}

func (r *Registry) open(ctx context.Context, profile string) (*Session, error) {
	store, err := settings.New(ctx, profile, r.storage, r.base, settings.Options{Policy: r.opts.Policy})
	if err != nil {
		return nil, err
	}
	n := r.notifier
	s := &Session{
		Profile:  profile,
		Store:    store,
		Pointer:  readingmask.NewPointerFeed(),
		notifier: n,
	}
	s.Mask = readingmask.NewTracker(s.Pointer, r.base, func(st readingmask.State) {
		n.local(profile, realtime.SSEEventReadingMaskChanged, st)
	})
	s.Content = content.NewPipeline(r.opts.Source, r.ai, r.ai, r.base, func(c domain.CourseContent) {
		n.local(profile, realtime.SSEEventContentChanged, c)
	})
	s.Keyboard = keyboard.NewDispatcher(store, s, r.base)

	s.stops = append(s.stops,
		store.Subscribe(func(ch settings.Change) { n.settingsChanged(context.Background(), ch) }),
		s.Mask.Follow(store),
		s.Content.Follow(store),
	)
	return s, nil
}

// Adopt applies a snapshot another instance persisted. Profiles without a
// live session here pick it up from storage on first use.
func (r *Registry) Adopt(profile string, snap domain.AccessibilitySettings) {
	r.mu.Lock()
	s, ok := r.sessions[profile]
	r.mu.Unlock()
	if ok {
		s.Store.Adopt(snap)
	}
}

// Forward handles a message from the bus: local messages go to the hub,
// settings changes from peers are adopted.
func (r *Registry) Forward(msg realtime.SSEMessage) {
	if msg.Origin == r.notifier.InstanceID() {
		r.notifier.hub.Broadcast(msg)
		return
	}
	if msg.Event != realtime.SSEEventSettingsChanged {
		return
	}
	profile, ok := realtime.ProfileFromChannel(msg.Channel)
	if !ok {
		return
	}
	ev, err := DecodeSettingsEvent(msg.Data)
	if err != nil {
		r.log.Warn("Ignoring malformed peer settings event", "error", err, "profile_id", profile)
		return
	}
	r.Adopt(profile, ev.Settings)
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *Registry) Close() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = map[string]*Session{}
	r.closed = true
	r.mu.Unlock()
	for _, s := range sessions {
		s.close()
	}
}
