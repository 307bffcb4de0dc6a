package giveaway

import (
	"context"
	"testing"
)

// countingResolver admits everyone and counts how often it is consulted.
type countingResolver struct {
	calls int
}

func (r *countingResolver) Resolve(ctx context.Context, username string) (Participant, error) {
	r.calls++
	return Participant{
		Username: username,
		UserID:   int64(1000 + r.calls),
		Reward:   RewardCandidate{PassID: 1, Name: "VIP", Price: 3, ProductID: 9},
	}, nil
}

func TestRegistry_TryJoin(t *testing.T) {
	hist := NewWinHistory()
	reg := NewRegistry(hist, 3)
	resolver := &countingResolver{}

	if out := reg.TryJoin(context.Background(), "Alice", resolver); out != Joined {
		t.Fatalf("first join = %v, want joined", out)
	}
	if reg.Len() != 1 {
		t.Fatalf("Len = %d, want 1", reg.Len())
	}

	// Same username again within the round: rejected before any network call.
	if out := reg.TryJoin(context.Background(), "Alice", resolver); out != AlreadyJoined {
		t.Fatalf("duplicate join = %v, want already_joined", out)
	}
	if resolver.calls != 1 {
		t.Errorf("resolver consulted %d times, want 1", resolver.calls)
	}
}

func TestRegistry_CappedBeforeResolution(t *testing.T) {
	hist := NewWinHistory()
	hist.Increment("Alice")
	hist.Increment("Alice")
	reg := NewRegistry(hist, 2)
	resolver := &countingResolver{}

	if out := reg.TryJoin(context.Background(), "Alice", resolver); out != Capped {
		t.Fatalf("capped join = %v, want capped", out)
	}
	if resolver.calls != 0 {
		t.Errorf("resolver consulted %d times for a capped user, want 0", resolver.calls)
	}

	// One win below the cap is still allowed in.
	if out := reg.TryJoin(context.Background(), "Bob", resolver); out != Joined {
		t.Fatalf("join below cap = %v, want joined", out)
	}
}

func TestRegistry_ZeroCapRejectsEveryone(t *testing.T) {
	reg := NewRegistry(NewWinHistory(), 0)
	resolver := &countingResolver{}
	if out := reg.TryJoin(context.Background(), "Alice", resolver); out != Capped {
		t.Fatalf("join with zero cap = %v, want capped", out)
	}
}

func TestRegistry_NotEligible(t *testing.T) {
	reg := NewRegistry(NewWinHistory(), 3)
	out := reg.TryJoin(context.Background(), "Alice", resolverFunc(func(ctx context.Context, username string) (Participant, error) {
		return Participant{}, ErrNotEligible
	}))
	if out != NotEligible {
		t.Fatalf("ineligible join = %v, want not_eligible", out)
	}
	if reg.Len() != 0 {
		t.Errorf("Len = %d, want 0", reg.Len())
	}

	// A failed resolution releases the reservation; the user may retry.
	out = reg.TryJoin(context.Background(), "Alice", &countingResolver{})
	if out != Joined {
		t.Fatalf("retry after failure = %v, want joined", out)
	}
}

func TestRegistry_ScreenReservesInflight(t *testing.T) {
	reg := NewRegistry(NewWinHistory(), 3)

	if out, ok := reg.Screen("Alice"); !ok || out != Joined {
		t.Fatalf("Screen = (%v, %v), want clear", out, ok)
	}
	// While the resolution is in flight the same username is a duplicate.
	if out, ok := reg.Screen("Alice"); ok || out != AlreadyJoined {
		t.Fatalf("Screen during inflight = (%v, %v), want already_joined", out, ok)
	}

	p := Participant{Username: "Alice", UserID: 1}
	if out := reg.Complete("Alice", p, nil); out != Joined {
		t.Fatalf("Complete = %v, want joined", out)
	}
	if reg.Len() != 1 {
		t.Errorf("Len = %d, want 1", reg.Len())
	}
}

func TestRegistry_ResetDiscardsStaleResults(t *testing.T) {
	reg := NewRegistry(NewWinHistory(), 3)
	if _, ok := reg.Screen("Alice"); !ok {
		t.Fatal("Screen rejected Alice")
	}
	reg.Reset()

	// The reservation from the previous round is gone; the late result must
	// not be admitted into the fresh round.
	out := reg.Complete("Alice", Participant{Username: "Alice"}, nil)
	if out != NotEligible {
		t.Fatalf("stale Complete = %v, want not_eligible", out)
	}
	if reg.Len() != 0 {
		t.Errorf("Len = %d after stale complete, want 0", reg.Len())
	}
}

// resolverFunc adapts a function to the Resolver interface.
type resolverFunc func(ctx context.Context, username string) (Participant, error)

func (f resolverFunc) Resolve(ctx context.Context, username string) (Participant, error) {
	return f(ctx, username)
}
