package suggest

import "sync"

// Sequencer assigns monotonically increasing sequence numbers per key and
// decides whether a completed response is still current. Suggestion calls
// can finish out of order; a response carrying a stale sequence number must
// be discarded so typed-ahead results never clobber newer ones.
type Sequencer struct {
	mu     sync.Mutex
	latest map[string]uint64
}

func NewSequencer() *Sequencer {
	return &Sequencer{latest: make(map[string]uint64)}
}

// Next reserves the next sequence number for key and marks it as the latest.
func (s *Sequencer) Next(key string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest[key]++
	return s.latest[key]
}

// Observe records a client-supplied sequence number. Numbers only move
// forward; an older number than the recorded latest is ignored.
func (s *Sequencer) Observe(key string, seq uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq > s.latest[key] {
		s.latest[key] = seq
	}
}

// Current reports whether seq is still the latest issued number for key.
// Responses for which this returns false must be dropped.
func (s *Sequencer) Current(key string, seq uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest[key] == seq
}
