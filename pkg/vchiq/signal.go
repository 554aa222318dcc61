//go:build linux

package vchiq

import (
	"sync"
	"time"
)

// Signal is a boolean flag with wait/notify. Notify sets the flag and wakes
// every waiter; Wait blocks until the flag is set and clears it.
type Signal struct {
	mu     sync.Mutex
	cond   *sync.Cond
	set    bool
	closed bool
}

// NewSignal creates a cleared Signal.
func NewSignal() *Signal {
	s := &Signal{}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// Notify sets the flag.
func (s *Signal) Notify() {
	s.mu.Lock()
	s.set = true
	s.mu.Unlock()
	s.cond.Broadcast()
}

// Wait blocks until the flag is set, then clears it. It returns false once
// the Signal is closed.
func (s *Signal) Wait() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for !s.set && !s.closed {
		s.cond.Wait()
	}
	if s.closed {
		return false
	}
	s.set = false
	return true
}

// WaitTimeout is Wait bounded by d. It returns false on timeout or close.
func (s *Signal) WaitTimeout(d time.Duration) bool {
	expired := false
	timer := time.AfterFunc(d, func() {
		s.mu.Lock()
		expired = true
		s.mu.Unlock()
		s.cond.Broadcast()
	})
	defer timer.Stop()

	s.mu.Lock()
	defer s.mu.Unlock()

	for !s.set && !s.closed && !expired {
		s.cond.Wait()
	}
	if s.closed || !s.set {
		return false
	}
	s.set = false
	return true
}

// Close wakes every waiter; subsequent waits return false.
func (s *Signal) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.cond.Broadcast()
}
