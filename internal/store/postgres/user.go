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

const userTableName = "users"

var userColumns = utils.StructTagValues(types.User{})

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) User(ctx context.Context, userID string) (*types.User, error) {
	query, args, err := psql().
		Select(userColumns...).
		From(userTableName).
		Where(sq.Eq{"id": userID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate user query: %w", err)
	}

	var user types.User
	err = pgxscan.Get(ctx, r.pool, &user, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}

	return &user, nil
}

// UpsertIdentity writes the verified identity claims; the user_type column
// is only set on first insert so moderation grants survive re-logins.
func (r *UserRepository) UpsertIdentity(ctx context.Context, user *types.User) error {
	now := time.Now()
	if user.UserType == "" {
		user.UserType = types.UserTypeNormal
	}

	query, args, err := psql().
		Insert(userTableName).
		Columns("id", "username", "full_name", "phone", "bio", "user_type", "created_at", "updated_at").
		Values(user.ID, user.Username, user.FullName, user.Phone, user.Bio, user.UserType, now, now).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			username = EXCLUDED.username,
			full_name = COALESCE(EXCLUDED.full_name, users.full_name),
			phone = COALESCE(EXCLUDED.phone, users.phone),
			bio = COALESCE(EXCLUDED.bio, users.bio),
			updated_at = EXCLUDED.updated_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate upsert identity query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to upsert user identity")
}

func (r *UserRepository) List(ctx context.Context, q types.UserQuery) ([]*types.User, int, error) {
	where := userListFilter(q)

	countQuery, countArgs, err := psql().
		Select("count(*)").
		From(userTableName).
		Where(where).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to generate user count query: %w", err)
	}

	var total int
	if err := pgxscan.Get(ctx, r.pool, &total, countQuery, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	query, args, err := psql().
		Select(userColumns...).
		From(userTableName).
		Where(where).
		OrderBy(orderClause(q.Ordering, userOrderColumns, "username ASC")).
		Limit(uint64(q.Limit())).
		Offset(uint64(q.Offset())).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to generate user list query: %w", err)
	}

	users := make([]*types.User, 0)
	if err := pgxscan.Select(ctx, r.pool, &users, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}

	return users, total, nil
}

func userListFilter(q types.UserQuery) sq.And {
	where := sq.And{}
	if q.UserType != "" {
		where = append(where, sq.Eq{"user_type": q.UserType})
	}
	if q.Search != "" {
		pattern := "%" + q.Search + "%"
		where = append(where, sq.Or{
			sq.ILike{"username": pattern},
			sq.ILike{"full_name": pattern},
			sq.ILike{"phone": pattern},
		})
	}
	if len(where) == 0 {
		where = append(where, sq.Expr("TRUE"))
	}
	return where
}

var userOrderColumns = map[string]string{
	"username":   "username",
	"created_at": "created_at",
	"id":         "id",
}
