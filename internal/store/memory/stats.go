package memory

import (
	"context"
	"time"

	"helplink/internal/stats"
	"helplink/pkg/types"
)

// Stats source implementation over the in-memory state.

func (db *DB) MonthlyNeedCounts(_ context.Context, from, to time.Time, regionID, category string) (map[string]int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	out := make(map[string]int)
	for _, need := range db.needs {
		if need.Status != types.NeedStatusPublished {
			continue
		}
		if regionID != "" && need.RegionID != regionID {
			continue
		}
		if category != "" && need.Category != category {
			continue
		}
		created := need.CreatedAt.UTC()
		if created.Before(from) || !created.Before(to) {
			continue
		}
		out[created.Format("2006-01")]++
	}
	return out, nil
}

func (db *DB) MonthlyMatchCounts(_ context.Context, from, to time.Time, regionID, category string) (map[string]int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	out := make(map[string]int)
	for _, match := range db.matches {
		if regionID != "" && match.RegionID != regionID {
			continue
		}
		if category != "" && match.Category != category {
			continue
		}
		accepted := match.AcceptedDate.UTC()
		if accepted.Before(from) || !accepted.Before(to) {
			continue
		}
		out[accepted.Format("2006-01")]++
	}
	return out, nil
}

func (db *DB) Totals(_ context.Context) (stats.Totals, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	totals := stats.Totals{
		Users:           len(db.users),
		Needs:           len(db.needs),
		Responses:       len(db.responses),
		AcceptedMatches: len(db.matches),
	}
	for _, need := range db.needs {
		if need.Status == types.NeedStatusPublished {
			totals.PublishedNeeds++
		}
	}
	return totals, nil
}
