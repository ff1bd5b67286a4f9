package memory

import (
	"context"
	"sort"

	"helplink/pkg/types"
)

type RegionStore struct {
	db *DB
}

func (s *RegionStore) Region(_ context.Context, regionID string) (*types.Region, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	region, ok := s.db.regions[regionID]
	if !ok {
		return nil, types.ErrRegionNotFound
	}
	return cloneRegion(region, s.needCountLocked(regionID)), nil
}

func (s *RegionStore) Create(_ context.Context, region *types.Region) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if region.ID == "" {
		region.ID = nextID()
	}
	stored := *region
	s.db.regions[region.ID] = &stored
	return nil
}

func (s *RegionStore) Update(_ context.Context, region *types.Region) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	stored, ok := s.db.regions[region.ID]
	if !ok {
		return types.ErrRegionNotFound
	}

	stored.Province = region.Province
	stored.City = region.City
	stored.Name = region.Name
	stored.FullName = region.FullName
	return nil
}

func (s *RegionStore) Delete(_ context.Context, regionID string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.regions[regionID]; !ok {
		return types.ErrRegionNotFound
	}
	if s.needCountLocked(regionID) > 0 {
		return types.NewConflict("该地域下仍有需求，无法删除")
	}

	delete(s.db.regions, regionID)
	return nil
}

func (s *RegionStore) List(_ context.Context, q types.RegionQuery) ([]*types.Region, int, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	out := make([]*types.Region, 0)
	for _, region := range s.db.regions {
		if q.Province != "" && region.Province != q.Province {
			continue
		}
		if q.City != "" && region.City != q.City {
			continue
		}
		if !matchesSearch(q.Search, str(region.Name), str(region.City), str(region.Province), str(region.FullName)) {
			continue
		}
		out = append(out, cloneRegion(region, s.needCountLocked(region.ID)))
	}

	applyOrdering(out, orDefault(q.Ordering, "full_name"), func(r *types.Region, field string) string {
		switch field {
		case "province":
			return r.Province + "/" + r.ID
		case "city":
			return r.City + "/" + r.ID
		case "name":
			return r.Name + "/" + r.ID
		case "id":
			return r.ID
		default:
			return r.FullName + "/" + r.ID
		}
	})

	page, total := paginate(out, q.PageQuery)
	return page, total, nil
}

func (s *RegionStore) Provinces(_ context.Context) ([]string, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	seen := make(map[string]bool)
	out := make([]string, 0)
	for _, region := range s.db.regions {
		if region.Province == "" || seen[region.Province] {
			continue
		}
		seen[region.Province] = true
		out = append(out, region.Province)
	}
	sort.Strings(out)
	return out, nil
}

func (s *RegionStore) Cities(_ context.Context, province string) ([]string, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	seen := make(map[string]bool)
	out := make([]string, 0)
	for _, region := range s.db.regions {
		if province != "" && region.Province != province {
			continue
		}
		if region.City == "" || seen[region.City] {
			continue
		}
		seen[region.City] = true
		out = append(out, region.City)
	}
	sort.Strings(out)
	return out, nil
}

func (s *RegionStore) needCountLocked(regionID string) int {
	count := 0
	for _, need := range s.db.needs {
		if need.RegionID == regionID {
			count++
		}
	}
	return count
}

func orDefault(ordering, fallback string) string {
	if ordering == "" {
		return fallback
	}
	return ordering
}
