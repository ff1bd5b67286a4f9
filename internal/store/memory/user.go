package memory

import (
	"context"

	"helplink/pkg/types"
)

type UserStore struct {
	db *DB
}

func (s *UserStore) User(_ context.Context, userID string) (*types.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	user, ok := s.db.users[userID]
	if !ok {
		return nil, types.ErrUserNotFound
	}
	return cloneUser(user), nil
}

func (s *UserStore) UpsertIdentity(_ context.Context, user *types.User) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	now := s.db.now()
	stored, ok := s.db.users[user.ID]
	if !ok {
		created := *user
		if created.UserType == "" {
			created.UserType = types.UserTypeNormal
		}
		created.CreatedAt = now
		created.UpdatedAt = now
		s.db.users[user.ID] = &created
		return nil
	}

	stored.Username = user.Username
	if user.FullName != nil {
		stored.FullName = user.FullName
	}
	if user.Phone != nil {
		stored.Phone = user.Phone
	}
	if user.Bio != nil {
		stored.Bio = user.Bio
	}
	if user.UserType != "" {
		stored.UserType = user.UserType
	}
	stored.UpdatedAt = now
	return nil
}

func (s *UserStore) List(_ context.Context, q types.UserQuery) ([]*types.User, int, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	out := make([]*types.User, 0)
	for _, user := range s.db.users {
		if q.UserType != "" && string(user.UserType) != q.UserType {
			continue
		}
		if !matchesSearch(q.Search, str(user.Username), user.FullName, user.Phone) {
			continue
		}
		out = append(out, cloneUser(user))
	}

	applyOrdering(out, orDefault(q.Ordering, "username"), func(u *types.User, field string) string {
		switch field {
		case "created_at":
			return sortKeyTime(u.CreatedAt, u.ID)
		case "id":
			return u.ID
		default:
			return u.Username + "/" + u.ID
		}
	})

	page, total := paginate(out, q.PageQuery)
	return page, total, nil
}
