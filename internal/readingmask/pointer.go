package readingmask

import "sync"

// PointerSource delivers vertical pointer positions in device pixels.
type PointerSource interface {
	// Attach starts delivering positions to fn until the returned detach is called.
	Attach(fn func(y int)) (detach func())
}

// PointerFeed is an in-process PointerSource. The viewport socket publishes
// into it; whoever is attached receives the positions.
type PointerFeed struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]func(int)
}

func NewPointerFeed() *PointerFeed {
	return &PointerFeed{subs: make(map[int]func(int))}
}

func (f *PointerFeed) Attach(fn func(y int)) func() {
	f.mu.Lock()
	f.nextID++
	id := f.nextID
	f.subs[id] = fn
	f.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.subs, id)
			f.mu.Unlock()
		})
	}
}

// Publish fans y out to every attached listener. Positions published while
// nothing is attached are dropped.
func (f *PointerFeed) Publish(y int) {
	f.mu.RLock()
	fns := make([]func(int), 0, len(f.subs))
	for _, fn := range f.subs {
		fns = append(fns, fn)
	}
	f.mu.RUnlock()
	for _, fn := range fns {
		fn(y)
	}
}

func (f *PointerFeed) Attached() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subs)
}
