package giveaway

import "sync"

// WinHistory counts lifetime wins per username for the duration of the
// process. The scheduler is the only writer; the HTTP status layer reads
// concurrently, so access is guarded by a RWMutex.
type WinHistory struct {
	mu   sync.RWMutex
	wins map[string]int
}

func NewWinHistory() *WinHistory {
	return &WinHistory{wins: make(map[string]int)}
}

// Get returns the win count for a username, defaulting to zero.
func (h *WinHistory) Get(username string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.wins[username]
}

// Increment bumps the win count for a username by one.
func (h *WinHistory) Increment(username string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.wins[username]++
}

// Snapshot returns a copy of all counts for presentation.
func (h *WinHistory) Snapshot() map[string]int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make(map[string]int, len(h.wins))
	for k, v := range h.wins {
		out[k] = v
	}
	return out
}
