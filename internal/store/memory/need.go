package memory

import (
	"context"

	"helplink/pkg/types"
)

type NeedStore struct {
	db *DB
}

func (s *NeedStore) Need(_ context.Context, needID string) (*types.Need, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	need, ok := s.db.needs[needID]
	if !ok {
		return nil, types.ErrNeedNotFound
	}
	return s.db.cloneNeed(need), nil
}

func (s *NeedStore) Create(_ context.Context, need *types.Need) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	now := s.db.now()
	need.ID = nextID()
	need.CreatedAt = now
	need.UpdatedAt = now

	stored := *need
	s.db.needs[need.ID] = &stored
	return nil
}

func (s *NeedStore) Update(_ context.Context, need *types.Need) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	stored, ok := s.db.needs[need.ID]
	if !ok {
		return types.ErrNeedNotFound
	}

	stored.RegionID = need.RegionID
	stored.Category = need.Category
	stored.Title = need.Title
	stored.Description = need.Description
	stored.Images = append([]string(nil), need.Images...)
	stored.Videos = append([]string(nil), need.Videos...)
	stored.UpdatedAt = s.db.now()
	return nil
}

func (s *NeedStore) UpdateStatus(_ context.Context, needID string, from, to types.NeedStatus) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	stored, ok := s.db.needs[needID]
	if !ok {
		return types.ErrNeedNotFound
	}
	if stored.Status != from {
		return types.NewConflict("需求状态已变更")
	}

	stored.Status = to
	stored.UpdatedAt = s.db.now()
	return nil
}

func (s *NeedStore) List(_ context.Context, q types.NeedQuery) ([]*types.Need, int, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	out := make([]*types.Need, 0)
	for _, need := range s.db.needs {
		if q.Category != "" && need.Category != q.Category {
			continue
		}
		if q.RegionID != "" && need.RegionID != q.RegionID {
			continue
		}
		if q.Status != "" && string(need.Status) != q.Status {
			continue
		}

		clone := s.db.cloneNeed(need)
		if !matchesSearch(q.Search, str(need.Title), str(need.Description), clone.OwnerName) {
			continue
		}
		out = append(out, clone)
	}

	applyOrdering(out, q.Ordering, func(n *types.Need, field string) string {
		switch field {
		case "updated_at":
			return sortKeyTime(n.UpdatedAt, n.ID)
		case "title":
			return n.Title + "/" + n.ID
		case "id":
			return n.ID
		default:
			return sortKeyTime(n.CreatedAt, n.ID)
		}
	})

	page, total := paginate(out, q.PageQuery)
	return page, total, nil
}

func (s *NeedStore) ByOwner(_ context.Context, userID string) ([]*types.Need, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	out := make([]*types.Need, 0)
	for _, need := range s.db.needs {
		if need.UserID == userID {
			out = append(out, s.db.cloneNeed(need))
		}
	}

	applyOrdering(out, "-created_at", func(n *types.Need, _ string) string {
		return sortKeyTime(n.CreatedAt, n.ID)
	})
	return out, nil
}
