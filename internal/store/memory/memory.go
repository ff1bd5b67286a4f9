// Package memory is the in-process store driver. It backs the engine tests
// and the serve --dev mode with the exact conditional-update semantics the
// postgres driver has: every status transition checks the current status
// under the store mutex, so a raced second decision loses with a conflict.
package memory

import (
	"sort"
	"strings"
	"sync"
	"time"

	"helplink/internal/utils"
	"helplink/pkg/types"
)

type needCounters struct {
	responses int
	accepted  int
}

type DB struct {
	mu sync.Mutex

	needs     map[string]*types.Need
	responses map[string]*types.Response
	regions   map[string]*types.Region
	users     map[string]*types.User
	matches   map[string]*types.AcceptedMatch

	// Incrementally maintained projection; CountsByNeed recomputes from the
	// response set so tests can check the two never drift.
	counters map[string]*needCounters

	now func() time.Time
}

func New() *DB {
	return &DB{
		needs:     make(map[string]*types.Need),
		responses: make(map[string]*types.Response),
		regions:   make(map[string]*types.Region),
		users:     make(map[string]*types.User),
		matches:   make(map[string]*types.AcceptedMatch),
		counters:  make(map[string]*needCounters),
		now:       time.Now,
	}
}

// SetClock overrides the timestamp source; tests use it for stable dates.
func (db *DB) SetClock(now func() time.Time) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.now = now
}

func (db *DB) Needs() *NeedStore         { return &NeedStore{db: db} }
func (db *DB) Responses() *ResponseStore { return &ResponseStore{db: db} }
func (db *DB) Regions() *RegionStore     { return &RegionStore{db: db} }
func (db *DB) Users() *UserStore         { return &UserStore{db: db} }

func (db *DB) countersFor(needID string) *needCounters {
	c, ok := db.counters[needID]
	if !ok {
		c = &needCounters{}
		db.counters[needID] = c
	}
	return c
}

// ownerDisplayName prefers the real name over the login name, matching what
// listings show next to a need.
func (db *DB) ownerDisplayName(userID string) *string {
	user, ok := db.users[userID]
	if !ok {
		return nil
	}
	if user.FullName != nil && *user.FullName != "" {
		return user.FullName
	}
	name := user.Username
	return &name
}

func (db *DB) regionFullName(regionID string) *string {
	region, ok := db.regions[regionID]
	if !ok {
		return nil
	}
	name := region.DisplayName()
	return &name
}

func (db *DB) cloneNeed(n *types.Need) *types.Need {
	out := *n
	out.Images = append([]string(nil), n.Images...)
	out.Videos = append([]string(nil), n.Videos...)

	c := db.countersFor(n.ID)
	out.ResponseCount = c.responses
	out.AcceptedCount = c.accepted
	out.OwnerName = db.ownerDisplayName(n.UserID)
	out.RegionFullName = db.regionFullName(n.RegionID)
	return &out
}

func (db *DB) cloneResponse(r *types.Response) *types.Response {
	out := *r
	out.Images = append([]string(nil), r.Images...)
	out.Videos = append([]string(nil), r.Videos...)

	if need, ok := db.needs[r.NeedID]; ok {
		title := need.Title
		ownerID := need.UserID
		out.NeedTitle = &title
		out.NeedOwnerID = &ownerID
	}
	out.ResponderName = db.ownerDisplayName(r.UserID)
	if user, ok := db.users[r.UserID]; ok && user.Phone != nil {
		phone := *user.Phone
		out.ResponderPhone = &phone
	}
	return &out
}

func cloneRegion(r *types.Region, needCount int) *types.Region {
	out := *r
	out.NeedCount = needCount
	return &out
}

func cloneUser(u *types.User) *types.User {
	out := *u
	return &out
}

func matchesSearch(search string, haystacks ...*string) bool {
	if search == "" {
		return true
	}
	needle := strings.ToLower(search)
	for _, h := range haystacks {
		if h != nil && strings.Contains(strings.ToLower(*h), needle) {
			return true
		}
	}
	return false
}

func str(s string) *string { return &s }

// applyOrdering orders by an "ordering" expression: a field name, optionally
// "-"-prefixed for descending. Unknown fields fall back to created_at desc.
func applyOrdering[T any](items []T, ordering string, key func(T, string) string) {
	field := strings.TrimPrefix(ordering, "-")
	desc := strings.HasPrefix(ordering, "-")
	if field == "" {
		field, desc = "created_at", true
	}

	sort.SliceStable(items, func(i, j int) bool {
		a, b := key(items[i], field), key(items[j], field)
		if desc {
			return a > b
		}
		return a < b
	})
}

func paginate[T any](items []T, q types.PageQuery) ([]T, int) {
	total := len(items)
	start := q.Offset()
	if start > total {
		start = total
	}
	end := start + q.Limit()
	if end > total {
		end = total
	}
	return items[start:end], total
}

func sortKeyTime(t time.Time, id string) string {
	// RFC3339Nano sorts lexicographically within the same offset; append the
	// id to keep the order deterministic for equal timestamps.
	return t.UTC().Format("2006-01-02T15:04:05.000000000") + "/" + id
}

func nextID() string { return utils.NanoID() }
