// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package featuresync

import "sync"

// Signal is a fan-out notification with no payload. The new-feature form
// notifies it after a successful create so the list controller revalidates.
type Signal struct {
	mu   sync.Mutex
	next int
	subs map[int]func()
}

func NewSignal() *Signal {
	return &Signal{subs: make(map[int]func())}
}

// Subscribe registers fn and returns a function that removes it.
// Calling the returned function more than once is harmless.
func (s *Signal) Subscribe(fn func()) (unsubscribe func()) {
	s.mu.Lock()
	id := s.next
	s.next++
	s.subs[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

// Notify calls every current subscriber. Subscribers run outside the lock.
func (s *Signal) Notify() {
	s.mu.Lock()
	fns := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
