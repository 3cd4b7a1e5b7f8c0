package application

import "sync"

// FlightRegistry tracks aggregate loads that are currently running, keyed by
// user and operation. Redundant UI triggers (focus, visibility, cached-page
// restore) fire the same load several times in quick succession; only the
// first caller proceeds, the rest are told a refresh is already underway.
type FlightRegistry struct {
	mu       sync.Mutex
	inflight map[string]bool
}

func NewFlightRegistry() *FlightRegistry {
	return &FlightRegistry{inflight: make(map[string]bool)}
}

// Begin claims the key. It returns false when the same operation is already
// running for that key.
func (r *FlightRegistry) Begin(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.inflight[key] {
		return false
	}
	r.inflight[key] = true
	return true
}

// End releases the key. Callers must defer this right after a successful
// Begin so every exit path clears the claim.
func (r *FlightRegistry) End(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.inflight, key)
}
