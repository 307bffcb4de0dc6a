package giveaway

import (
	"context"
	"log/slog"

	"github.com/onnwee/giveaway-tender/roblox"
)

// CommerceFulfiller performs the revoke-then-repurchase transfer through the
// Roblox commerce API. The purchase is made at the expected currency/price/
// seller triple, with the winner's user id as the expected seller.
type CommerceFulfiller struct {
	Client *roblox.Client
}

func (f *CommerceFulfiller) Fulfill(ctx context.Context, winner Participant) error {
	// A failed revoke does not abort the purchase. This mirrors the original
	// best-effort behavior; if the seller account never owned the pass the
	// revoke fails routinely.
	if err := f.Client.RevokeOwnership(ctx, winner.Reward.PassID, winner.Reward.Name); err != nil {
		slog.Warn("revoke ownership failed; attempting purchase anyway",
			slog.Int64("pass_id", winner.Reward.PassID),
			slog.Any("err", err),
			slog.String("component", "fulfill"))
	}
	res, err := f.Client.Purchase(ctx, winner.Reward.ProductID, winner.Reward.Price, winner.UserID)
	if err != nil {
		return &FulfillmentError{Reason: err.Error()}
	}
	if !res.Purchased {
		return &FulfillmentError{Reason: "purchase not acknowledged", Raw: res.Raw}
	}
	return nil
}
