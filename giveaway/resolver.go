package giveaway

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/onnwee/giveaway-tender/roblox"
)

// CatalogResolver resolves entrants against the Roblox catalog: username →
// user id → created games → gamepass offerings. The chosen candidate is the
// strictly highest-priced pass with a defined price in [1, MaxPrice]; ties
// keep the first-seen pass. Every network failure degrades to ErrNotEligible.
type CatalogResolver struct {
	Client   *roblox.Client
	MaxPrice int64
}

func (r *CatalogResolver) Resolve(ctx context.Context, username string) (Participant, error) {
	userID, err := r.Client.ResolveUsername(ctx, username)
	if err != nil {
		return Participant{}, fmt.Errorf("%w: identity lookup: %v", ErrNotEligible, err)
	}
	games, err := r.Client.ListGames(ctx, userID)
	if err != nil {
		return Participant{}, fmt.Errorf("%w: games listing: %v", ErrNotEligible, err)
	}

	var best *roblox.GamePass
	for _, game := range games {
		passes, err := r.Client.ListGamePasses(ctx, game.ID)
		if err != nil {
			// One broken game should not disqualify the rest of the catalog.
			slog.Warn("gamepass listing failed", slog.Int64("game_id", game.ID), slog.Any("err", err), slog.String("component", "resolver"))
			continue
		}
		for i := range passes {
			gp := passes[i]
			if gp.Price == nil || *gp.Price < 1 || *gp.Price > r.MaxPrice {
				continue
			}
			if best == nil || *gp.Price > *best.Price {
				best = &gp
			}
		}
	}
	if best == nil {
		return Participant{}, fmt.Errorf("%w: no gamepass priced within 1..%d", ErrNotEligible, r.MaxPrice)
	}

	productID, err := r.Client.GetGamePassProduct(ctx, best.ID)
	if err != nil {
		return Participant{}, fmt.Errorf("%w: product lookup: %v", ErrNotEligible, err)
	}
	return Participant{
		Username: username,
		UserID:   userID,
		Reward: RewardCandidate{
			PassID:    best.ID,
			Name:      best.Name,
			Price:     *best.Price,
			ProductID: productID,
		},
	}, nil
}
