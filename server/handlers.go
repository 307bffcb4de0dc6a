package server

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/onnwee/giveaway-tender/chat"
	"github.com/onnwee/giveaway-tender/giveaway"
)

// Snapshotter is the slice of the scheduler the status endpoint needs.
type Snapshotter interface {
	Snapshot() giveaway.Snapshot
}

// Handlers holds the dependencies the HTTP endpoints read from. DB is nil
// when the round journal is disabled; readiness then skips the ping.
type Handlers struct {
	DB        *sql.DB
	Scheduler Snapshotter
	History   *giveaway.WinHistory
	Source    chat.Source
}

// HandleHealthz responds to liveness probe requests.
func (h *Handlers) HandleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// HandleReadyz responds to readiness probe requests with detailed system checks.
func (h *Handlers) HandleReadyz(w http.ResponseWriter, r *http.Request) {
	checks := []struct {
		name string
		fn   func() error
	}{
		{"chat_source", func() error {
			if h.Source == nil || !h.Source.IsAlive() {
				return fmt.Errorf("chat session not live")
			}
			return nil
		}},
		{"database", func() error {
			if h.DB == nil {
				return nil
			}
			return h.DB.PingContext(r.Context())
		}},
	}

	for _, check := range checks {
		if err := check.fn(); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"status":       "not_ready",
				"failed_check": check.name,
				"error":        err.Error(),
			})
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ready"})
}

// statusResponse is the JSON shape of /status.
type statusResponse struct {
	State            string         `json:"state"`
	Deadline         *time.Time     `json:"deadline,omitempty"`
	SecondsRemaining *int64         `json:"seconds_remaining,omitempty"`
	Entrants         int            `json:"entrants"`
	Wins             map[string]int `json:"wins"`
}

// HandleStatus reports the current round: state, countdown, entrant count,
// and the all-time win tally.
func (h *Handlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	snap := h.Scheduler.Snapshot()
	resp := statusResponse{
		State:    snap.State,
		Entrants: snap.Entrants,
		Wins:     h.History.Snapshot(),
	}
	if !snap.Deadline.IsZero() {
		d := snap.Deadline
		resp.Deadline = &d
		remaining := int64(time.Until(d).Seconds())
		if remaining < 0 {
			remaining = 0
		}
		resp.SecondsRemaining = &remaining
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}
