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

const (
	responseTableName = "responses"
	matchTableName    = "accepted_matches"
)

var (
	responseColumns     = utils.StructTagValues(types.Response{})
	responseBaseColumns = writableColumns(responseColumns, types.ResponseDerivedColumns)
)

type ResponseRepository struct {
	pool *pgxpool.Pool
}

func NewResponseRepository(pool *pgxpool.Pool) *ResponseRepository {
	return &ResponseRepository{pool: pool}
}

func responseSelect() sq.SelectBuilder {
	return psql().
		Select(utils.PrefixSliceOfStrings("r", responseBaseColumns)...).
		Column("n.title AS need_title").
		Column("n.user_id AS need_owner_id").
		Column("COALESCE(NULLIF(u.full_name, ''), u.username) AS responder_name").
		Column("u.phone AS responder_phone").
		From(responseTableName + " r").
		LeftJoin("needs n ON n.id = r.need_id").
		LeftJoin("users u ON u.id = r.user_id")
}

func (r *ResponseRepository) Response(ctx context.Context, responseID string) (*types.Response, error) {
	query, args, err := responseSelect().
		Where(sq.Eq{"r.id": responseID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate response query: %w", err)
	}

	var response types.Response
	err = pgxscan.Get(ctx, r.pool, &response, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrResponseNotFound
		}
		return nil, fmt.Errorf("failed to fetch response: %w", err)
	}

	return &response, nil
}

func (r *ResponseRepository) Create(ctx context.Context, response *types.Response) error {
	now := time.Now()
	response.ID = utils.NanoID()
	response.CreatedAt = now
	response.UpdatedAt = now

	responseMap := writableMap(utils.StructToMap(response), types.ResponseDerivedColumns)

	query, args, err := psql().Insert(responseTableName).SetMap(responseMap).ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert response query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to create response")
}

func (r *ResponseRepository) Update(ctx context.Context, response *types.Response) error {
	response.UpdatedAt = time.Now()

	responseMap := writableMap(utils.StructToMap(response), types.ResponseDerivedColumns)
	delete(responseMap, "id")
	delete(responseMap, "created_at")
	delete(responseMap, "status")
	delete(responseMap, "need_id")
	delete(responseMap, "user_id")

	query, args, err := psql().
		Update(responseTableName).
		SetMap(responseMap).
		Where(sq.Eq{"id": response.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate update response query for response %s: %w", response.ID, err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to update response")
}

func (r *ResponseRepository) UpdateStatus(ctx context.Context, responseID string, from, to types.ResponseStatus) error {
	query, args, err := psql().
		Update(responseTableName).
		Set("status", to).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": responseID, "status": from}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate response status update query: %w", err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update response status: %w", err)
	}

	if tag.RowsAffected() == 0 {
		if _, err := r.Response(ctx, responseID); err != nil {
			return err
		}
		return types.NewConflict("该响应已被处理")
	}
	return nil
}

// Accept runs the conditional PENDING→ACCEPTED update and the match insert
// in one transaction, so readers never observe an accepted response without
// its match record.
func (r *ResponseRepository) Accept(ctx context.Context, responseID string, match *types.AcceptedMatch) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin accept transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	updateQuery, updateArgs, err := psql().
		Update(responseTableName).
		Set("status", types.ResponseStatusAccepted).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": responseID, "status": types.ResponseStatusPending}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate accept update query: %w", err)
	}

	tag, err := tx.Exec(ctx, updateQuery, updateArgs...)
	if err != nil {
		return fmt.Errorf("failed to accept response: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.Response(ctx, responseID); err != nil {
			return err
		}
		return types.NewConflict("该响应已被处理")
	}

	match.ID = utils.NanoID()
	match.CreatedAt = time.Now()

	insertQuery, insertArgs, err := psql().
		Insert(matchTableName).
		SetMap(utils.StructToMap(match)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate match insert query: %w", err)
	}

	if _, err := tx.Exec(ctx, insertQuery, insertArgs...); err != nil {
		return fmt.Errorf("failed to record accepted match: %w", err)
	}

	return tx.Commit(ctx)
}

func (r *ResponseRepository) ByNeed(ctx context.Context, needID string, includeCancelled bool) ([]*types.Response, error) {
	builder := responseSelect().Where(sq.Eq{"r.need_id": needID})
	if !includeCancelled {
		builder = builder.Where(sq.NotEq{"r.status": types.ResponseStatusCancelled})
	}

	query, args, err := builder.OrderBy("r.created_at DESC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate responses-by-need query: %w", err)
	}

	responses := make([]*types.Response, 0)
	if err := pgxscan.Select(ctx, r.pool, &responses, query, args...); err != nil {
		return nil, fmt.Errorf("failed to fetch responses by need: %w", err)
	}

	return responses, nil
}

func (r *ResponseRepository) ByResponder(ctx context.Context, userID string, status *types.ResponseStatus) ([]*types.Response, error) {
	builder := responseSelect().Where(sq.Eq{"r.user_id": userID})
	if status != nil {
		builder = builder.Where(sq.Eq{"r.status": *status})
	}

	query, args, err := builder.OrderBy("r.created_at DESC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate responses-by-responder query: %w", err)
	}

	responses := make([]*types.Response, 0)
	if err := pgxscan.Select(ctx, r.pool, &responses, query, args...); err != nil {
		return nil, fmt.Errorf("failed to fetch responses by responder: %w", err)
	}

	return responses, nil
}

func (r *ResponseRepository) List(ctx context.Context, q types.ResponseQuery) ([]*types.Response, int, error) {
	where := responseListFilter(q)

	countQuery, countArgs, err := psql().
		Select("count(*)").
		From(responseTableName + " r").
		LeftJoin("needs n ON n.id = r.need_id").
		LeftJoin("users u ON u.id = r.user_id").
		Where(where).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to generate response count query: %w", err)
	}

	var total int
	if err := pgxscan.Get(ctx, r.pool, &total, countQuery, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("failed to count responses: %w", err)
	}

	query, args, err := responseSelect().
		Where(where).
		OrderBy(orderClause(q.Ordering, responseOrderColumns, "r.created_at DESC")).
		Limit(uint64(q.Limit())).
		Offset(uint64(q.Offset())).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to generate response list query: %w", err)
	}

	responses := make([]*types.Response, 0)
	if err := pgxscan.Select(ctx, r.pool, &responses, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list responses: %w", err)
	}

	return responses, total, nil
}

func (r *ResponseRepository) HasActive(ctx context.Context, needID, userID string) (bool, error) {
	query, args, err := psql().
		Select("count(*)").
		From(responseTableName).
		Where(sq.Eq{
			"need_id": needID,
			"user_id": userID,
			"status":  []types.ResponseStatus{types.ResponseStatusPending, types.ResponseStatusAccepted},
		}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to generate active response query: %w", err)
	}

	var count int
	if err := pgxscan.Get(ctx, r.pool, &count, query, args...); err != nil {
		return false, fmt.Errorf("failed to check active response: %w", err)
	}
	return count > 0, nil
}

func (r *ResponseRepository) CountsByNeed(ctx context.Context, needID string) (int, int, error) {
	query, args, err := psql().
		Select(
			"count(*)",
			"count(*) FILTER (WHERE status = 'ACCEPTED')",
		).
		From(responseTableName).
		Where(sq.Eq{"need_id": needID}).
		ToSql()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to generate counts query: %w", err)
	}

	var total, accepted int
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&total, &accepted); err != nil {
		return 0, 0, fmt.Errorf("failed to count responses for need %s: %w", needID, err)
	}
	return total, accepted, nil
}

func responseListFilter(q types.ResponseQuery) sq.And {
	where := sq.And{}
	if q.Status != "" {
		where = append(where, sq.Eq{"r.status": q.Status})
	}
	if q.NeedID != "" {
		where = append(where, sq.Eq{"r.need_id": q.NeedID})
	}
	if q.UserID != "" {
		where = append(where, sq.Eq{"r.user_id": q.UserID})
	}
	if q.Search != "" {
		pattern := "%" + q.Search + "%"
		where = append(where, sq.Or{
			sq.ILike{"r.description": pattern},
			sq.ILike{"u.username": pattern},
			sq.ILike{"u.full_name": pattern},
			sq.ILike{"n.title": pattern},
		})
	}
	if len(where) == 0 {
		where = append(where, sq.Expr("TRUE"))
	}
	return where
}

var responseOrderColumns = map[string]string{
	"created_at": "r.created_at",
	"updated_at": "r.updated_at",
	"id":         "r.id",
}
