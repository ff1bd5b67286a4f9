package postgres

import (
	"context"
	"fmt"
	"time"

	"helplink/internal/utils"
	"helplink/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const needTableName = "needs"

var (
	needColumns     = utils.StructTagValues(types.Need{})
	needBaseColumns = writableColumns(needColumns, types.NeedDerivedColumns)
)

type NeedRepository struct {
	pool *pgxpool.Pool
}

func NewNeedRepository(pool *pgxpool.Pool) *NeedRepository {
	return &NeedRepository{pool: pool}
}

// needSelect joins owner and region and derives the counters inline, so
// every read carries counts consistent with the same snapshot.
func needSelect() sq.SelectBuilder {
	return psql().
		Select(utils.PrefixSliceOfStrings("n", needBaseColumns)...).
		Column("(SELECT count(*) FROM responses r WHERE r.need_id = n.id) AS response_count").
		Column("(SELECT count(*) FROM responses r WHERE r.need_id = n.id AND r.status = 'ACCEPTED') AS accepted_count").
		Column("COALESCE(NULLIF(u.full_name, ''), u.username) AS owner_name").
		Column("rg.full_name AS region_full_name").
		From(needTableName + " n").
		LeftJoin("users u ON u.id = n.user_id").
		LeftJoin("regions rg ON rg.id = n.region_id")
}

func (r *NeedRepository) Need(ctx context.Context, needID string) (*types.Need, error) {
	query, args, err := needSelect().
		Where(sq.Eq{"n.id": needID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate need query: %w", err)
	}

	var need types.Need
	err = pgxscan.Get(ctx, r.pool, &need, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrNeedNotFound
		}
		return nil, fmt.Errorf("failed to fetch need: %w", err)
	}

	return &need, nil
}

func (r *NeedRepository) Create(ctx context.Context, need *types.Need) error {
	now := time.Now()
	need.ID = utils.NanoID()
	need.CreatedAt = now
	need.UpdatedAt = now

	needMap := writableMap(utils.StructToMap(need), types.NeedDerivedColumns)

	query, args, err := psql().Insert(needTableName).SetMap(needMap).ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert need query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to create need")
}

func (r *NeedRepository) Update(ctx context.Context, need *types.Need) error {
	need.UpdatedAt = time.Now()

	needMap := writableMap(utils.StructToMap(need), types.NeedDerivedColumns)
	delete(needMap, "id")
	delete(needMap, "created_at")
	delete(needMap, "status")

	query, args, err := psql().
		Update(needTableName).
		SetMap(needMap).
		Where(sq.Eq{"id": need.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate update need query for need %s: %w", need.ID, err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to update need")
}

// UpdateStatus commits only when the stored status still matches from.
func (r *NeedRepository) UpdateStatus(ctx context.Context, needID string, from, to types.NeedStatus) error {
	query, args, err := psql().
		Update(needTableName).
		Set("status", to).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": needID, "status": from}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate need status update query: %w", err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update need status: %w", err)
	}

	if tag.RowsAffected() == 0 {
		if _, err := r.Need(ctx, needID); err != nil {
			return err
		}
		return types.NewConflict("需求状态已变更")
	}
	return nil
}

func (r *NeedRepository) List(ctx context.Context, q types.NeedQuery) ([]*types.Need, int, error) {
	where := needListFilter(q)

	countQuery, countArgs, err := psql().
		Select("count(*)").
		From(needTableName + " n").
		LeftJoin("users u ON u.id = n.user_id").
		Where(where).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to generate need count query: %w", err)
	}

	var total int
	if err := pgxscan.Get(ctx, r.pool, &total, countQuery, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("failed to count needs: %w", err)
	}

	query, args, err := needSelect().
		Where(where).
		OrderBy(orderClause(q.Ordering, needOrderColumns, "n.created_at DESC")).
		Limit(uint64(q.Limit())).
		Offset(uint64(q.Offset())).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to generate need list query: %w", err)
	}

	needs := make([]*types.Need, 0)
	if err := pgxscan.Select(ctx, r.pool, &needs, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list needs: %w", err)
	}

	return needs, total, nil
}

func (r *NeedRepository) ByOwner(ctx context.Context, userID string) ([]*types.Need, error) {
	query, args, err := needSelect().
		Where(sq.Eq{"n.user_id": userID}).
		OrderBy("n.created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate needs-by-owner query: %w", err)
	}

	needs := make([]*types.Need, 0)
	if err := pgxscan.Select(ctx, r.pool, &needs, query, args...); err != nil {
		return nil, fmt.Errorf("failed to fetch needs by owner: %w", err)
	}

	return needs, nil
}

func needListFilter(q types.NeedQuery) sq.And {
	where := sq.And{}
	if q.Category != "" {
		where = append(where, sq.Eq{"n.category": q.Category})
	}
	if q.RegionID != "" {
		where = append(where, sq.Eq{"n.region_id": q.RegionID})
	}
	if q.Status != "" {
		where = append(where, sq.Eq{"n.status": q.Status})
	}
	if q.Search != "" {
		pattern := "%" + q.Search + "%"
		where = append(where, sq.Or{
			sq.ILike{"n.title": pattern},
			sq.ILike{"n.description": pattern},
			sq.ILike{"u.username": pattern},
			sq.ILike{"u.full_name": pattern},
		})
	}
	if len(where) == 0 {
		where = append(where, sq.Expr("TRUE"))
	}
	return where
}

var needOrderColumns = map[string]string{
	"created_at": "n.created_at",
	"updated_at": "n.updated_at",
	"title":      "n.title",
	"id":         "n.id",
}

// orderClause maps an "ordering" query value ("-"-prefixed for descending)
// onto a whitelisted column, falling back when the field is unknown.
func orderClause(ordering string, columns map[string]string, fallback string) string {
	field := ordering
	direction := "ASC"
	if len(field) > 0 && field[0] == '-' {
		field = field[1:]
		direction = "DESC"
	}

	column, ok := columns[field]
	if !ok {
		return fallback
	}
	return column + " " + direction
}
