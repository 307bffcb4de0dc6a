package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/onnwee/giveaway-tender/giveaway"
)

// RoundStore writes completed round outcomes to the rounds table. It is an
// append-only audit trail; the round loop never reads it back.
type RoundStore struct{ DB *sql.DB }

var _ giveaway.Journal = (*RoundStore)(nil)

func (s *RoundStore) RecordRound(ctx context.Context, rec giveaway.RoundRecord) error {
	q := `INSERT INTO rounds(round_id, winner, entrants, pass_id, price_robux, fulfilled, fulfill_error, started_at, ended_at)
		  VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9)
		  ON CONFLICT(round_id) DO NOTHING`
	if _, err := s.DB.ExecContext(ctx, q,
		rec.RoundID, rec.Winner, rec.Entrants, rec.PassID, rec.PriceRobux,
		rec.Fulfilled, rec.FulfillErr, rec.StartedAt, rec.EndedAt); err != nil {
		return fmt.Errorf("insert round: %w", err)
	}
	return nil
}
