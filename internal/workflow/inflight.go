package workflow

import "sync"

// InFlight tracks videos currently being processed so concurrent requests for
// the same video collapse into one job. It is the only shared mutable state
// between update handlers.
type InFlight struct {
	mu  sync.Mutex
	ids map[string]bool
}

// NewInFlight creates an empty tracking set.
func NewInFlight() *InFlight {
	return &InFlight{ids: make(map[string]bool)}
}

// Begin marks a video as in flight. It returns false when the video is
// already being processed.
func (s *InFlight) Begin(videoID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ids[videoID] {
		return false
	}

	s.ids[videoID] = true

	return true
}

// End releases a video. Callers must pair every successful Begin with a
// deferred End so failures and panics cannot leak entries.
func (s *InFlight) End(videoID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.ids, videoID)
}

// Active returns the number of videos currently in flight.
func (s *InFlight) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.ids)
}
