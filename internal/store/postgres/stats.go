package postgres

import (
	"context"
	"fmt"
	"time"

	"helplink/internal/stats"
	"helplink/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

// StatsRepository is the postgres stats.Source: read-only aggregation over
// needs and accepted_matches.
type StatsRepository struct {
	pool *pgxpool.Pool
}

func NewStatsRepository(pool *pgxpool.Pool) *StatsRepository {
	return &StatsRepository{pool: pool}
}

type monthCount struct {
	Month string `db:"month"`
	Count int    `db:"count"`
}

func (r *StatsRepository) MonthlyNeedCounts(ctx context.Context, from, to time.Time, regionID, category string) (map[string]int, error) {
	builder := psql().
		Select("to_char(date_trunc('month', created_at), 'YYYY-MM') AS month", "count(*) AS count").
		From(needTableName).
		Where(sq.Eq{"status": types.NeedStatusPublished}).
		Where(sq.GtOrEq{"created_at": from}).
		Where(sq.Lt{"created_at": to}).
		GroupBy("1").
		OrderBy("1")
	if regionID != "" {
		builder = builder.Where(sq.Eq{"region_id": regionID})
	}
	if category != "" {
		builder = builder.Where(sq.Eq{"category": category})
	}

	return r.monthlyCounts(ctx, builder)
}

func (r *StatsRepository) MonthlyMatchCounts(ctx context.Context, from, to time.Time, regionID, category string) (map[string]int, error) {
	builder := psql().
		Select("to_char(date_trunc('month', accepted_date), 'YYYY-MM') AS month", "count(*) AS count").
		From(matchTableName).
		Where(sq.GtOrEq{"accepted_date": from}).
		Where(sq.Lt{"accepted_date": to}).
		GroupBy("1").
		OrderBy("1")
	if regionID != "" {
		builder = builder.Where(sq.Eq{"region_id": regionID})
	}
	if category != "" {
		builder = builder.Where(sq.Eq{"category": category})
	}

	return r.monthlyCounts(ctx, builder)
}

func (r *StatsRepository) monthlyCounts(ctx context.Context, builder sq.SelectBuilder) (map[string]int, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate monthly counts query: %w", err)
	}

	rows := make([]monthCount, 0)
	if err := pgxscan.Select(ctx, r.pool, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to aggregate monthly counts: %w", err)
	}

	out := make(map[string]int, len(rows))
	for _, row := range rows {
		out[row.Month] = row.Count
	}
	return out, nil
}

func (r *StatsRepository) Totals(ctx context.Context) (stats.Totals, error) {
	query := `SELECT
		(SELECT count(*) FROM users) AS users,
		(SELECT count(*) FROM needs) AS needs,
		(SELECT count(*) FROM needs WHERE status = 'PUBLISHED') AS published_needs,
		(SELECT count(*) FROM responses) AS responses,
		(SELECT count(*) FROM accepted_matches) AS accepted_matches`

	var totals stats.Totals
	err := r.pool.QueryRow(ctx, query).Scan(
		&totals.Users,
		&totals.Needs,
		&totals.PublishedNeeds,
		&totals.Responses,
		&totals.AcceptedMatches,
	)
	if err != nil {
		return stats.Totals{}, fmt.Errorf("failed to aggregate totals: %w", err)
	}
	return totals, nil
}
