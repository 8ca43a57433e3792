// Package broadcast provides the reactive value holder every client store
// publishes through.
//
// A Store keeps exactly one current value. Write replaces it and delivers it
// synchronously to every subscriber in subscription order; Subscribe replays
// the current value immediately so a new subscriber never waits for the next
// write to see state.
package broadcast

import "sync"

// Stream is the read side of a Store handed to consumers.
type Stream[T any] interface {
	Read() T
	Subscribe(fn func(T)) (unsubscribe func())
}

var _ Stream[int] = (*Store[int])(nil)

// Store is a broadcast-on-write value holder. The zero value is not usable;
// construct one with New.
//
// Subscriber callbacks run on the writer's goroutine while the store holds its
// delivery lock. A callback may Read the store it is subscribed to, but must
// not Write to it or Subscribe to it.
type Store[T any] struct {
	// deliverMu serializes write-then-deliver so subscribers observe values in
	// write order.
	deliverMu sync.Mutex

	mu     sync.RWMutex
	value  T
	nextID uint64
	subs   []subscription[T]
}

type subscription[T any] struct {
	id uint64
	fn func(T)
}

// New returns a store holding initial.
func New[T any](initial T) *Store[T] {
	return &Store[T]{value: initial}
}

// Read returns the current value without side effects.
func (s *Store[T]) Read() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Write replaces the current value and delivers it to every subscriber.
func (s *Store[T]) Write(value T) {
	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()

	s.mu.Lock()
	s.value = value
	subs := make([]subscription[T], len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.fn(value)
	}
}

// Update applies fn to the current value and writes the result. The read and
// the write happen under the delivery lock, so concurrent Updates never lose
// each other's changes.
func (s *Store[T]) Update(fn func(T) T) T {
	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()

	s.mu.Lock()
	s.value = fn(s.value)
	value := s.value
	subs := make([]subscription[T], len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.fn(value)
	}
	return value
}

// Subscribe registers fn and invokes it once with the current value before
// returning. The returned function removes the subscription; calling it more
// than once is harmless.
func (s *Store[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}

	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()

	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, subscription[T]{id: id, fn: fn})
	value := s.value
	s.mu.Unlock()

	fn(value)

	var once sync.Once
	return func() {
		once.Do(func() { s.remove(id) })
	}
}

func (s *Store[T]) subscribers() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs)
}

func (s *Store[T]) remove(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, sub := range s.subs {
		if sub.id == id {
			s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
			return
		}
	}
}
