// Package events carries the process-wide signals the UI listens to. The Bus
// is created once by the composition root and handed to whoever publishes or
// subscribes; there is no package-level instance.
package events

import (
	"sort"
	"sync"
	"time"
)

// SyncCompleted fires after a pull has attempted every collection.
type SyncCompleted struct {
	At     time.Time
	Pulled map[string]int
	Failed map[string]string
}

// LevelUp fires once when a stopped timer pushes total XP into a new level.
type LevelUp struct {
	Level   int
	TotalXP int64
}

// AuthRejected fires the first time the remote refuses our credentials.
type AuthRejected struct {
	UserID string
	Reason string
}

type Topic[T any] struct {
	mu   sync.RWMutex
	next int
	subs map[int]func(T)
}

// Subscribe registers fn and returns a func that removes it.
func (t *Topic[T]) Subscribe(fn func(T)) func() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.subs == nil {
		t.subs = map[int]func(T){}
	}
	id := t.next
	t.next++
	t.subs[id] = fn
	return func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		delete(t.subs, id)
	}
}

// Publish calls every subscriber synchronously in registration order.
func (t *Topic[T]) Publish(v T) {
	t.mu.RLock()
	ids := make([]int, 0, len(t.subs))
	for id := range t.subs {
		ids = append(ids, id)
	}
	fns := make([]func(T), 0, len(ids))
	sort.Ints(ids)
	for _, id := range ids {
		fns = append(fns, t.subs[id])
	}
	t.mu.RUnlock()
	for _, fn := range fns {
		fn(v)
	}
}

type Bus struct {
	SyncCompleted Topic[SyncCompleted]
	LevelUp       Topic[LevelUp]
	AuthRejected  Topic[AuthRejected]
}

func NewBus() *Bus {
	return &Bus{}
}
