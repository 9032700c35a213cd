package syncutil

import "sync"

// Semaphore is a counting semaphore used to cap concurrent in-flight
// requests (e.g. progress stream connections). Acquire returns
// immediately while capacity remains; otherwise the caller is queued
// and woken in FIFO order by Release.
type Semaphore struct {
	mu        sync.Mutex
	available int
	waiters   []chan struct{}
}

func NewSemaphore(capacity int) *Semaphore {
	if capacity < 1 {
		capacity = 1
	}
	return &Semaphore{available: capacity}
}

// Acquire blocks until a slot is available.
func (s *Semaphore) Acquire() {
	s.mu.Lock()
	if s.available > 0 {
		s.available--
		s.mu.Unlock()
		return
	}
	wake := make(chan struct{})
	s.waiters = append(s.waiters, wake)
	s.mu.Unlock()

	<-wake
}

// TryAcquire takes a slot without blocking, reporting whether it got one.
func (s *Semaphore) TryAcquire() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.available > 0 {
		s.available--
		return true
	}
	return false
}

// Release wakes the oldest waiter, or restores a slot when nobody is
// queued.
func (s *Semaphore) Release() {
	s.mu.Lock()
	if len(s.waiters) > 0 {
		wake := s.waiters[0]
		s.waiters = s.waiters[1:]
		s.mu.Unlock()
		close(wake)
		return
	}
	s.available++
	s.mu.Unlock()
}
