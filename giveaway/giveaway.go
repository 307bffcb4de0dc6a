// Package giveaway implements the round orchestration engine: a state
// machine that opens an intake window over a live chat feed, dedups and
// screens entrants, resolves their eligibility against the Roblox catalog,
// picks one winner uniformly at random when the window closes, and drives
// the gamepass repurchase for the winner. Rounds repeat until the context
// is cancelled.
package giveaway

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNotEligible marks an entrant whose identity or catalog resolution
// failed or yielded no qualifying gamepass. It is recovered locally; the
// entrant is excluded with a log line and the round continues.
var ErrNotEligible = errors.New("not eligible")

// RewardCandidate is the gamepass chosen for an entrant: the highest-priced
// pass within the configured price band among all passes of all games the
// entrant created. ProductID is the transactable product identifier,
// resolved lazily for the chosen candidate only.
type RewardCandidate struct {
	PassID    int64
	Name      string
	Price     int64
	ProductID int64
}

// Participant is a successfully joined entrant of the current round.
type Participant struct {
	Username string
	UserID   int64
	Reward   RewardCandidate
}

// Resolver resolves a username into a joined Participant or ErrNotEligible.
type Resolver interface {
	Resolve(ctx context.Context, username string) (Participant, error)
}

// Fulfiller transfers the reward to the winner. A failed transfer returns a
// *FulfillmentError; it never panics and never aborts the round loop.
type Fulfiller interface {
	Fulfill(ctx context.Context, winner Participant) error
}

// FulfillmentError reports a reward transfer that did not confirm purchase.
// Raw carries the commerce API response body for diagnostics.
type FulfillmentError struct {
	Reason string
	Raw    []byte
}

func (e *FulfillmentError) Error() string {
	if len(e.Raw) > 0 {
		return fmt.Sprintf("fulfillment failed: %s: %s", e.Reason, e.Raw)
	}
	return "fulfillment failed: " + e.Reason
}

// RoundRecord summarizes one finished round for the operational journal.
// Winner is empty for rounds with no entrants.
type RoundRecord struct {
	RoundID    string
	Winner     string
	Entrants   int
	PassID     int64
	PriceRobux int64
	Fulfilled  bool
	FulfillErr string
	StartedAt  time.Time
	EndedAt    time.Time
}

// Journal records finished rounds. Implementations are write-only history;
// the engine never reads a journal back (win caps live in memory).
type Journal interface {
	RecordRound(ctx context.Context, rec RoundRecord) error
}
