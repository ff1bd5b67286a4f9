package engine

import (
	"context"
	"fmt"

	"helplink/pkg/types"
)

// Region directory reads for the public surface. Mutation is admin-only and
// lives on the overlay.

func (e *Engine) Region(ctx context.Context, regionID string) (*types.Region, error) {
	return e.regions.Region(ctx, regionID)
}

func (e *Engine) ListRegions(ctx context.Context, q types.RegionQuery) ([]*types.Region, error) {
	regions, _, err := e.regions.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list regions: %w", err)
	}
	return regions, nil
}
