package memory

import (
	"context"

	"helplink/pkg/types"
)

type ResponseStore struct {
	db *DB
}

func (s *ResponseStore) Response(_ context.Context, responseID string) (*types.Response, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	response, ok := s.db.responses[responseID]
	if !ok {
		return nil, types.ErrResponseNotFound
	}
	return s.db.cloneResponse(response), nil
}

func (s *ResponseStore) Create(_ context.Context, response *types.Response) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	now := s.db.now()
	response.ID = nextID()
	response.CreatedAt = now
	response.UpdatedAt = now

	stored := *response
	s.db.responses[response.ID] = &stored

	s.db.countersFor(response.NeedID).responses++
	return nil
}

func (s *ResponseStore) Update(_ context.Context, response *types.Response) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	stored, ok := s.db.responses[response.ID]
	if !ok {
		return types.ErrResponseNotFound
	}

	stored.Description = response.Description
	stored.Images = append([]string(nil), response.Images...)
	stored.Videos = append([]string(nil), response.Videos...)
	stored.UpdatedAt = s.db.now()
	return nil
}

func (s *ResponseStore) UpdateStatus(_ context.Context, responseID string, from, to types.ResponseStatus) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return s.transition(responseID, from, to)
}

// Accept performs the conditional PENDING→ACCEPTED transition and records
// the match while still holding the store mutex, the in-memory equivalent of
// the postgres transaction.
func (s *ResponseStore) Accept(_ context.Context, responseID string, match *types.AcceptedMatch) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if err := s.transition(responseID, types.ResponseStatusPending, types.ResponseStatusAccepted); err != nil {
		return err
	}

	match.ID = nextID()
	match.CreatedAt = s.db.now()
	stored := *match
	s.db.matches[match.ID] = &stored
	return nil
}

func (s *ResponseStore) transition(responseID string, from, to types.ResponseStatus) error {
	stored, ok := s.db.responses[responseID]
	if !ok {
		return types.ErrResponseNotFound
	}
	if stored.Status != from {
		return types.NewConflict("该响应已被处理")
	}

	stored.Status = to
	stored.UpdatedAt = s.db.now()

	counters := s.db.countersFor(stored.NeedID)
	if to == types.ResponseStatusAccepted {
		counters.accepted++
	}
	if from == types.ResponseStatusAccepted {
		counters.accepted--
	}
	return nil
}

func (s *ResponseStore) ByNeed(_ context.Context, needID string, includeCancelled bool) ([]*types.Response, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	out := make([]*types.Response, 0)
	for _, response := range s.db.responses {
		if response.NeedID != needID {
			continue
		}
		if !includeCancelled && response.Status == types.ResponseStatusCancelled {
			continue
		}
		out = append(out, s.db.cloneResponse(response))
	}

	applyOrdering(out, "-created_at", func(r *types.Response, _ string) string {
		return sortKeyTime(r.CreatedAt, r.ID)
	})
	return out, nil
}

func (s *ResponseStore) ByResponder(_ context.Context, userID string, status *types.ResponseStatus) ([]*types.Response, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	out := make([]*types.Response, 0)
	for _, response := range s.db.responses {
		if response.UserID != userID {
			continue
		}
		if status != nil && response.Status != *status {
			continue
		}
		out = append(out, s.db.cloneResponse(response))
	}

	applyOrdering(out, "-created_at", func(r *types.Response, _ string) string {
		return sortKeyTime(r.CreatedAt, r.ID)
	})
	return out, nil
}

func (s *ResponseStore) List(_ context.Context, q types.ResponseQuery) ([]*types.Response, int, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	out := make([]*types.Response, 0)
	for _, response := range s.db.responses {
		if q.Status != "" && string(response.Status) != q.Status {
			continue
		}
		if q.NeedID != "" && response.NeedID != q.NeedID {
			continue
		}
		if q.UserID != "" && response.UserID != q.UserID {
			continue
		}

		clone := s.db.cloneResponse(response)
		if !matchesSearch(q.Search, str(response.Description), clone.ResponderName, clone.NeedTitle) {
			continue
		}
		out = append(out, clone)
	}

	applyOrdering(out, q.Ordering, func(r *types.Response, field string) string {
		switch field {
		case "updated_at":
			return sortKeyTime(r.UpdatedAt, r.ID)
		case "id":
			return r.ID
		default:
			return sortKeyTime(r.CreatedAt, r.ID)
		}
	})

	page, total := paginate(out, q.PageQuery)
	return page, total, nil
}

func (s *ResponseStore) HasActive(_ context.Context, needID, userID string) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	for _, response := range s.db.responses {
		if response.NeedID != needID || response.UserID != userID {
			continue
		}
		if response.Status == types.ResponseStatusPending || response.Status == types.ResponseStatusAccepted {
			return true, nil
		}
	}
	return false, nil
}

// CountsByNeed recomputes from the full response set, bypassing the
// incremental counters.
func (s *ResponseStore) CountsByNeed(_ context.Context, needID string) (int, int, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	total, accepted := 0, 0
	for _, response := range s.db.responses {
		if response.NeedID != needID {
			continue
		}
		total++
		if response.Status == types.ResponseStatusAccepted {
			accepted++
		}
	}
	return total, accepted, nil
}
