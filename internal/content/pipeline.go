// Package content derives the lesson body a profile sees: the static source
// text, or its AI-simplified rewrite while simplifiedContent is on.
package content

import (
	"context"
	"errors"
	"sync"

	"github.com/hphuyvu-stack/inclusing/internal/domain"
	"github.com/hphuyvu-stack/inclusing/internal/platform/logger"
	"github.com/hphuyvu-stack/inclusing/internal/platform/pcm"
	"github.com/hphuyvu-stack/inclusing/internal/settings"
)

var ErrAlreadyReading = errors.New("content: read-aloud already in progress")

type Simplifier interface {
	Simplify(ctx context.Context, text string, lang domain.Language) (string, error)
}

type Speaker interface {
	Speak(ctx context.Context, text string, lang domain.Language) (pcm.Clip, error)
}

// Player outputs a decoded clip.
type Player interface {
	Play(ctx context.Context, clip pcm.Clip) error
}

type PlayerFunc func(ctx context.Context, clip pcm.Clip) error

func (f PlayerFunc) Play(ctx context.Context, clip pcm.Clip) error { return f(ctx, clip) }

type Pipeline struct {
	source     string
	simplifier Simplifier
	speaker    Speaker
	log        *logger.Logger
	onChange   func(domain.CourseContent)

	mu     sync.Mutex
	state  domain.CourseContent
	seq    uint64
	gen    uint64
	cancel context.CancelFunc
	closed bool
	wg     sync.WaitGroup

	// emitMu orders onChange calls; emitted is the seq of the last state sent.
	emitMu  sync.Mutex
	emitted uint64
}

// NewPipeline starts out showing source in English. onChange, when non-nil,
// receives the state after each transition.
func NewPipeline(source string, simplifier Simplifier, speaker Speaker, baseLog *logger.Logger, onChange func(domain.CourseContent)) *Pipeline {
	return &Pipeline{
		source:     source,
		simplifier: simplifier,
		speaker:    speaker,
		log:        baseLog.With("component", "ContentPipeline"),
		onChange:   onChange,
		state:      domain.CourseContent{Text: source, Language: domain.LanguageEnglish},
	}
}

func (p *Pipeline) Content() domain.CourseContent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Apply re-derives the content for snap. Every call supersedes the previous
// one: its in-flight simplify call is cancelled and its result dropped.
func (p *Pipeline) Apply(snap domain.AccessibilitySettings) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.gen++
	gen := p.gen
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.state.Language = snap.Language

	if !snap.SimplifiedContent {
		p.state.Text = p.source
		p.state.Simplified = false
		p.state.Processing = false
		st, seq := p.commit()
		p.mu.Unlock()
		p.emit(st, seq)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.state.Processing = true
	st, seq := p.commit()
	p.wg.Add(1)
	p.mu.Unlock()
	p.emit(st, seq)

	go p.simplify(ctx, gen, snap.Language)
}

func (p *Pipeline) simplify(ctx context.Context, gen uint64, lang domain.Language) {
	defer p.wg.Done()
	text, err := p.simplifier.Simplify(ctx, p.source, lang)

	p.mu.Lock()
	if gen != p.gen {
		p.mu.Unlock()
		p.log.Debug("Dropping stale simplify result", "generation", gen, "error", err)
		return
	}
	p.cancel = nil
	p.state.Processing = false
	switch {
	case err != nil:
		p.log.Warn("Simplify failed; showing source content", "language", string(lang), "error", err)
		p.state.Text = p.source
		p.state.Simplified = false
	case text == "":
		p.state.Text = p.source
		p.state.Simplified = false
	default:
		p.state.Text = text
		p.state.Simplified = true
	}
	st, seq := p.commit()
	p.mu.Unlock()
	p.emit(st, seq)
}

// ReadAloud speaks the displayed text through player. It reports whether
// anything was played; speech or playback failures are logged, not returned.
func (p *Pipeline) ReadAloud(ctx context.Context, player Player) (bool, error) {
	p.mu.Lock()
	if p.state.Reading {
		p.mu.Unlock()
		return false, ErrAlreadyReading
	}
	p.state.Reading = true
	text, lang := p.state.Text, p.state.Language
	st, seq := p.commit()
	p.mu.Unlock()
	p.emit(st, seq)

	// The reading flag only travels as ContentChanged, which SSE streams
	// carry and the viewport socket does not.
	defer func() {
		p.mu.Lock()
		p.state.Reading = false
		st, seq := p.commit()
		p.mu.Unlock()
		p.emit(st, seq)
	}()

	clip, err := p.speaker.Speak(ctx, text, lang)
	if err != nil {
		p.log.Warn("Read aloud failed", "language", string(lang), "error", err)
		return false, nil
	}
	if err := player.Play(ctx, clip); err != nil {
		p.log.Warn("Audio playback failed", "error", err, "duration", clip.Duration())
		return false, nil
	}
	return true, nil
}

// Follow re-derives the content whenever simplifiedContent or language
// changes, starting from the store's current snapshot.
func (p *Pipeline) Follow(store *settings.Store) func() {
	p.Apply(store.Get())
	return store.Subscribe(func(ch settings.Change) {
		if ch.Prev.SimplifiedContent != ch.Next.SimplifiedContent || ch.Prev.Language != ch.Next.Language {
			p.Apply(ch.Next)
		}
	})
}

// Wait blocks until every in-flight simplify call has returned.
func (p *Pipeline) Wait() { p.wg.Wait() }

// Close cancels any in-flight call and waits for it. Later Apply calls are no-ops.
func (p *Pipeline) Close() {
	p.mu.Lock()
	p.closed = true
	p.gen++
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.mu.Unlock()
	p.wg.Wait()
}

// commit stamps the current state with the next sequence number. Callers
// hold p.mu.
func (p *Pipeline) commit() (domain.CourseContent, uint64) {
	p.seq++
	return p.state, p.seq
}

// emit delivers st unless a later state was already delivered, so listeners
// observe transitions in commit order and never end on a superseded one.
func (p *Pipeline) emit(st domain.CourseContent, seq uint64) {
	if p.onChange == nil {
		return
	}
	p.emitMu.Lock()
	defer p.emitMu.Unlock()
	if seq <= p.emitted {
		p.log.Debug("Dropping superseded content event", "seq", seq, "emitted", p.emitted)
		return
	}
	p.emitted = seq
	p.onChange(st)
}
