package engine

import (
	"context"
	"fmt"

	"helplink/pkg/types"
)

// CountProjector derives response_count and accepted_count for a need from
// its responses. Counts are never stored authoritatively; stores surface
// them on reads and the projector recomputes them from scratch, so the two
// can be checked against each other for drift.
type CountProjector struct {
	responses ResponseStore
}

type NeedCounts struct {
	Responses int `json:"response_count"`
	Accepted  int `json:"accepted_count"`
}

// Recount recomputes the counters from the full response set.
func (p *CountProjector) Recount(ctx context.Context, needID string) (NeedCounts, error) {
	total, accepted, err := p.responses.CountsByNeed(ctx, needID)
	if err != nil {
		return NeedCounts{}, fmt.Errorf("recount need %s: %w", needID, err)
	}
	return NeedCounts{Responses: total, Accepted: accepted}, nil
}

// Refresh stamps freshly recomputed counters onto the need. Idempotent.
func (p *CountProjector) Refresh(ctx context.Context, need *types.Need) error {
	counts, err := p.Recount(ctx, need.ID)
	if err != nil {
		return err
	}
	need.ResponseCount = counts.Responses
	need.AcceptedCount = counts.Accepted
	return nil
}
