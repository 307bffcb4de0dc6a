package giveaway

import "context"

// JoinOutcome is the result of one entry attempt.
type JoinOutcome int

const (
	Joined JoinOutcome = iota
	AlreadyJoined
	NotEligible
	Capped
)

func (o JoinOutcome) String() string {
	switch o {
	case Joined:
		return "joined"
	case AlreadyJoined:
		return "already_joined"
	case NotEligible:
		return "not_eligible"
	case Capped:
		return "capped"
	default:
		return "unknown"
	}
}

// Registry accumulates the entrants of a single round. It is owned
// exclusively by the scheduler's control loop and is not safe for concurrent
// use; eligibility resolutions run on worker goroutines, but Screen and
// Complete are always called from the loop, which is what keeps dedup and
// cap checks race-free.
type Registry struct {
	history  *WinHistory
	maxWins  int
	members  map[string]Participant
	order    []Participant
	inflight map[string]struct{}
}

func NewRegistry(history *WinHistory, maxWins int) *Registry {
	r := &Registry{history: history, maxWins: maxWins}
	r.Reset()
	return r
}

// Reset empties the registry at round start. Pending resolutions from the
// previous round are forgotten; their late results are discarded by Complete.
func (r *Registry) Reset() {
	r.members = make(map[string]Participant)
	r.order = r.order[:0]
	r.inflight = make(map[string]struct{})
}

// Screen applies the pre-dispatch checks in order: win cap first (before any
// network call), then round dedup (including resolutions still in flight).
// When it returns ok, the username is reserved and the caller must follow up
// with Complete.
func (r *Registry) Screen(username string) (JoinOutcome, bool) {
	if r.history.Get(username) >= r.maxWins {
		return Capped, false
	}
	if _, ok := r.members[username]; ok {
		return AlreadyJoined, false
	}
	if _, ok := r.inflight[username]; ok {
		return AlreadyJoined, false
	}
	r.inflight[username] = struct{}{}
	return Joined, true
}

// Complete records the outcome of a dispatched resolution. A stale result
// whose reservation was cleared by Reset is reported as NotEligible and
// otherwise ignored.
func (r *Registry) Complete(username string, p Participant, err error) JoinOutcome {
	if _, ok := r.inflight[username]; !ok {
		return NotEligible
	}
	delete(r.inflight, username)
	if err != nil {
		return NotEligible
	}
	r.members[username] = p
	r.order = append(r.order, p)
	return Joined
}

// TryJoin runs the full join sequence synchronously: cap check, dedup,
// eligibility resolution, admission.
func (r *Registry) TryJoin(ctx context.Context, username string, resolver Resolver) JoinOutcome {
	outcome, ok := r.Screen(username)
	if !ok {
		return outcome
	}
	p, err := resolver.Resolve(ctx, username)
	return r.Complete(username, p, err)
}

// Len returns the number of joined entrants.
func (r *Registry) Len() int { return len(r.order) }

// Participants returns the joined entrants in join order.
func (r *Registry) Participants() []Participant { return r.order }
