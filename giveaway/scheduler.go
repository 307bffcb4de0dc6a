package giveaway

import (
	"context"
	crand "crypto/rand"
	"errors"
	"log/slog"
	"math/big"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/onnwee/giveaway-tender/chat"
	"github.com/onnwee/giveaway-tender/telemetry"
)

// Scheduler drives the round state machine:
//
//	Idle → Intake → Selecting → Fulfilling → Cooldown → Intake (loop)
//
// with a terminal Stopped reached on context cancellation. A single Run loop
// owns all per-round state; chat polls and eligibility resolutions are
// dispatched to worker goroutines so deadline and cancellation checks stay
// responsive while network calls are outstanding.
type Scheduler struct {
	Source    chat.Source
	Resolver  Resolver
	Fulfiller Fulfiller
	History   *WinHistory
	Journal   Journal // optional; nil disables the round journal

	CommandPrefix string
	RoundDuration time.Duration
	MaxWins       int
	Cooldown      time.Duration // default 5s
	PollInterval  time.Duration // default 1s

	// PickIndex selects the winner's index uniformly from [0, n). It defaults
	// to a crypto/rand draw; tests substitute a deterministic source.
	PickIndex func(n int) (int, error)

	registry *Registry
	state    atomic.Int32
	deadline atomic.Int64 // unix nano; 0 outside intake
	entrants atomic.Int32

	// A chat poll may still be in flight when the intake window closes; it is
	// reused by the next round instead of starting a second concurrent poll.
	pollC   chan pollOutcome
	polling bool
}

type pollOutcome struct {
	msgs []chat.Message
	err  error
}

type joinResult struct {
	username string
	p        Participant
	err      error
}

// Snapshot is a point-in-time view of the scheduler for the status API.
type Snapshot struct {
	State    string    `json:"state"`
	Deadline time.Time `json:"deadline,omitempty"`
	Entrants int       `json:"entrants"`
}

// Snapshot reads the scheduler state. Safe to call from other goroutines.
func (s *Scheduler) Snapshot() Snapshot {
	snap := Snapshot{
		State:    State(s.state.Load()).String(),
		Entrants: int(s.entrants.Load()),
	}
	if d := s.deadline.Load(); d != 0 {
		snap.Deadline = time.Unix(0, d).UTC()
	}
	return snap
}

func (s *Scheduler) setState(st State) {
	s.state.Store(int32(st))
	telemetry.SetRoundState(int(st))
}

// Run executes giveaway rounds until ctx is cancelled. It never returns an
// error: every per-round failure is logged and the loop starts over.
func (s *Scheduler) Run(ctx context.Context) {
	if s.Cooldown <= 0 {
		s.Cooldown = 5 * time.Second
	}
	if s.PollInterval <= 0 {
		s.PollInterval = time.Second
	}
	if s.PickIndex == nil {
		s.PickIndex = secureRandomIndex
	}
	s.CommandPrefix = NormalizePrefix(s.CommandPrefix)
	s.registry = NewRegistry(s.History, s.MaxWins)
	s.pollC = make(chan pollOutcome, 1)

	slog.Info("giveaway scheduler starting",
		slog.Duration("round_duration", s.RoundDuration),
		slog.String("command_prefix", s.CommandPrefix),
		slog.Int("max_wins", s.MaxWins),
		slog.String("component", "giveaway"))

	for {
		if ctx.Err() != nil {
			s.setState(StateStopped)
			slog.Info("closing giveaway scheduler", slog.String("component", "giveaway"))
			return
		}
		s.runRound(ctx)
	}
}

// runRound executes one full round. Any panic escaping a collaborator is
// caught here so the loop proceeds to the next round.
func (s *Scheduler) runRound(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("round aborted by unexpected error", slog.Any("panic", r), slog.String("component", "giveaway"))
			telemetry.RoundsRecovered.Inc()
		}
	}()

	roundID := uuid.NewString()
	logger := slog.Default().With(slog.String("round_id", roundID), slog.String("component", "giveaway"))

	s.registry.Reset()
	s.entrants.Store(0)
	telemetry.SetEntrants(0)

	start := time.Now()
	deadline := start.Add(s.RoundDuration)
	s.deadline.Store(deadline.UnixNano())
	telemetry.RoundsStarted.Inc()
	logger.Info("starting the next giveaway", slog.Time("deadline", deadline))

	s.setState(StateIntake)
	s.intake(ctx, deadline, logger)
	s.deadline.Store(0)
	if ctx.Err() != nil {
		return
	}

	s.setState(StateSelecting)
	participants := s.registry.Participants()
	logger.Info("selecting winner", slog.Int("entrants", len(participants)))

	rec := RoundRecord{RoundID: roundID, Entrants: len(participants), StartedAt: start.UTC()}
	if len(participants) == 0 {
		logger.Info("no entrants this round")
		telemetry.RoundsEmpty.Inc()
	} else {
		idx, err := s.PickIndex(len(participants))
		if err != nil {
			logger.Error("winner draw failed", slog.Any("err", err))
		} else {
			winner := participants[idx]
			s.History.Increment(winner.Username)
			telemetry.RoundsWithWinner.Inc()
			logger.Info("winner selected",
				slog.String("winner", winner.Username),
				slog.Int64("price", winner.Reward.Price),
				slog.String("gamepass", winner.Reward.Name))

			s.setState(StateFulfilling)
			rec.Winner = winner.Username
			rec.PassID = winner.Reward.PassID
			rec.PriceRobux = winner.Reward.Price
			if err := s.Fulfiller.Fulfill(ctx, winner); err != nil {
				var ferr *FulfillmentError
				if errors.As(err, &ferr) {
					logger.Error("fulfillment failed", slog.String("reason", ferr.Reason), slog.String("raw", string(ferr.Raw)))
				} else {
					logger.Error("fulfillment failed", slog.Any("err", err))
				}
				telemetry.FulfillmentsFailed.Inc()
				rec.FulfillErr = err.Error()
			} else {
				logger.Info("gamepass purchased", slog.Int64("price", winner.Reward.Price), slog.String("winner", winner.Username))
				telemetry.FulfillmentsSucceeded.Inc()
				rec.Fulfilled = true
			}
		}
	}

	rec.EndedAt = time.Now().UTC()
	telemetry.RoundDuration.Observe(rec.EndedAt.Sub(start).Seconds())
	if s.Journal != nil {
		if err := s.Journal.RecordRound(ctx, rec); err != nil {
			logger.Warn("round journal write failed", slog.Any("err", err))
		}
	}

	s.setState(StateCooldown)
	logger.Info("resetting the giveaway")
	select {
	case <-ctx.Done():
	case <-time.After(s.Cooldown):
	}
}

// intake ingests chat until the deadline passes, the chat session dies, or
// ctx is cancelled. Membership screening happens here on the control loop;
// eligibility resolutions run on workers and report back through results.
func (s *Scheduler) intake(ctx context.Context, deadline time.Time, logger *slog.Logger) {
	results := make(chan joinResult, 64)
	var wg sync.WaitGroup

	ticker := time.NewTicker(s.PollInterval)
	defer ticker.Stop()

	for s.Source.IsAlive() && time.Now().Before(deadline) && ctx.Err() == nil {
		if !s.polling {
			s.polling = true
			go func() {
				msgs, err := s.Source.Poll(ctx)
				s.pollC <- pollOutcome{msgs: msgs, err: err}
			}()
		}
		select {
		case <-ctx.Done():
		case po := <-s.pollC:
			s.polling = false
			if po.err != nil && ctx.Err() == nil {
				logger.Warn("chat poll failed", slog.Any("err", po.err))
				telemetry.ChatPollErrors.Inc()
			}
			for _, m := range po.msgs {
				s.handleMessage(ctx, m, results, &wg, logger)
			}
		case res := <-results:
			s.finishJoin(res, logger)
		case <-ticker.C:
			// Wake up to re-check deadline, liveness, and cancellation.
		}
	}

	// Entries dispatched before the window closed still count; wait for the
	// in-flight resolutions to land.
	go func() {
		wg.Wait()
		close(results)
	}()
	for res := range results {
		s.finishJoin(res, logger)
	}
}

func (s *Scheduler) handleMessage(ctx context.Context, m chat.Message, results chan<- joinResult, wg *sync.WaitGroup, logger *slog.Logger) {
	username, ok := ParseCommand(m.Text, s.CommandPrefix)
	if !ok {
		return
	}
	outcome, proceed := s.registry.Screen(username)
	if !proceed {
		switch outcome {
		case Capped:
			logger.Info("user reached the win cap", slog.String("user", username))
		case AlreadyJoined:
			logger.Info("user is already in the giveaway", slog.String("user", username))
		}
		telemetry.RejectEntry(outcome.String())
		return
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		start := time.Now()
		p, err := s.Resolver.Resolve(ctx, username)
		telemetry.ResolveDuration.Observe(time.Since(start).Seconds())
		results <- joinResult{username: username, p: p, err: err}
	}()
}

func (s *Scheduler) finishJoin(res joinResult, logger *slog.Logger) {
	outcome := s.registry.Complete(res.username, res.p, res.err)
	if outcome == Joined {
		logger.Info("user joined the giveaway",
			slog.String("user", res.username),
			slog.Int64("price", res.p.Reward.Price),
			slog.String("gamepass", res.p.Reward.Name))
		s.entrants.Store(int32(s.registry.Len()))
		telemetry.SetEntrants(s.registry.Len())
		telemetry.EntriesJoined.Inc()
		return
	}
	logger.Info("user is not eligible for the giveaway",
		slog.String("user", res.username),
		slog.Any("err", res.err))
	telemetry.RejectEntry(outcome.String())
}

// secureRandomIndex draws a uniform index in [0, n) from crypto/rand.
func secureRandomIndex(n int) (int, error) {
	if n <= 0 {
		return 0, errors.New("no entrants to draw from")
	}
	v, err := crand.Int(crand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, err
	}
	return int(v.Int64()), nil
}
