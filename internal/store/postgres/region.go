package postgres

import (
	"context"
	"fmt"

	"helplink/internal/utils"
	"helplink/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const regionTableName = "regions"

var (
	regionColumns     = utils.StructTagValues(types.Region{})
	regionBaseColumns = writableColumns(regionColumns, []string{"need_count"})
)

type RegionRepository struct {
	pool *pgxpool.Pool
}

func NewRegionRepository(pool *pgxpool.Pool) *RegionRepository {
	return &RegionRepository{pool: pool}
}

func regionSelect() sq.SelectBuilder {
	return psql().
		Select(utils.PrefixSliceOfStrings("rg", regionBaseColumns)...).
		Column("(SELECT count(*) FROM needs n WHERE n.region_id = rg.id) AS need_count").
		From(regionTableName + " rg")
}

func (r *RegionRepository) Region(ctx context.Context, regionID string) (*types.Region, error) {
	query, args, err := regionSelect().
		Where(sq.Eq{"rg.id": regionID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate region query: %w", err)
	}

	var region types.Region
	err = pgxscan.Get(ctx, r.pool, &region, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrRegionNotFound
		}
		return nil, fmt.Errorf("failed to fetch region: %w", err)
	}

	return &region, nil
}

func (r *RegionRepository) Create(ctx context.Context, region *types.Region) error {
	if region.ID == "" {
		region.ID = utils.NanoID()
	}
	region.FullName = region.DisplayName()

	regionMap := writableMap(utils.StructToMap(region), []string{"need_count"})

	query, args, err := psql().Insert(regionTableName).SetMap(regionMap).ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert region query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to create region")
}

func (r *RegionRepository) Update(ctx context.Context, region *types.Region) error {
	regionMap := writableMap(utils.StructToMap(region), []string{"need_count"})
	delete(regionMap, "id")

	query, args, err := psql().
		Update(regionTableName).
		SetMap(regionMap).
		Where(sq.Eq{"id": region.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate update region query for region %s: %w", region.ID, err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to update region")
}

// Delete refuses while any need still points at the region; the guard is in
// the statement itself so a concurrent need create cannot slip past it.
func (r *RegionRepository) Delete(ctx context.Context, regionID string) error {
	query := `DELETE FROM regions
		WHERE id = $1
		AND NOT EXISTS (SELECT 1 FROM needs WHERE region_id = $1)`

	tag, err := r.pool.Exec(ctx, query, regionID)
	if err != nil {
		return fmt.Errorf("failed to delete region: %w", err)
	}

	if tag.RowsAffected() == 0 {
		if _, err := r.Region(ctx, regionID); err != nil {
			return err
		}
		return types.NewConflict("该地域下仍有需求，无法删除")
	}
	return nil
}

func (r *RegionRepository) List(ctx context.Context, q types.RegionQuery) ([]*types.Region, int, error) {
	where := regionListFilter(q)

	countQuery, countArgs, err := psql().
		Select("count(*)").
		From(regionTableName + " rg").
		Where(where).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to generate region count query: %w", err)
	}

	var total int
	if err := pgxscan.Get(ctx, r.pool, &total, countQuery, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("failed to count regions: %w", err)
	}

	query, args, err := regionSelect().
		Where(where).
		OrderBy(orderClause(q.Ordering, regionOrderColumns, "rg.full_name ASC")).
		Limit(uint64(q.Limit())).
		Offset(uint64(q.Offset())).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to generate region list query: %w", err)
	}

	regions := make([]*types.Region, 0)
	if err := pgxscan.Select(ctx, r.pool, &regions, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list regions: %w", err)
	}

	return regions, total, nil
}

func (r *RegionRepository) Provinces(ctx context.Context) ([]string, error) {
	query := `SELECT DISTINCT province FROM regions WHERE province <> '' ORDER BY province`

	provinces := make([]string, 0)
	if err := pgxscan.Select(ctx, r.pool, &provinces, query); err != nil {
		return nil, fmt.Errorf("failed to fetch provinces: %w", err)
	}
	return provinces, nil
}

func (r *RegionRepository) Cities(ctx context.Context, province string) ([]string, error) {
	builder := psql().
		Select("DISTINCT city").
		From(regionTableName).
		Where(sq.NotEq{"city": ""}).
		OrderBy("city")
	if province != "" {
		builder = builder.Where(sq.Eq{"province": province})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate cities query: %w", err)
	}

	cities := make([]string, 0)
	if err := pgxscan.Select(ctx, r.pool, &cities, query, args...); err != nil {
		return nil, fmt.Errorf("failed to fetch cities: %w", err)
	}
	return cities, nil
}

func regionListFilter(q types.RegionQuery) sq.And {
	where := sq.And{}
	if q.Province != "" {
		where = append(where, sq.Eq{"rg.province": q.Province})
	}
	if q.City != "" {
		where = append(where, sq.Eq{"rg.city": q.City})
	}
	if q.Search != "" {
		pattern := "%" + q.Search + "%"
		where = append(where, sq.Or{
			sq.ILike{"rg.name": pattern},
			sq.ILike{"rg.city": pattern},
			sq.ILike{"rg.province": pattern},
			sq.ILike{"rg.full_name": pattern},
		})
	}
	if len(where) == 0 {
		where = append(where, sq.Expr("TRUE"))
	}
	return where
}

var regionOrderColumns = map[string]string{
	"full_name": "rg.full_name",
	"province":  "rg.province",
	"city":      "rg.city",
	"name":      "rg.name",
	"id":        "rg.id",
}
