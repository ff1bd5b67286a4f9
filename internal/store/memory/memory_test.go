package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"helplink/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedNeed(t *testing.T, db *DB, userID string, status types.NeedStatus) *types.Need {
	t.Helper()
	need := &types.Need{
		UserID:      userID,
		RegionID:    "region-1",
		Category:    types.CategoryElderCare,
		Title:       "需要助老上门服务",
		Description: "老人行动不便，需要定期的上门照护",
		Status:      status,
	}
	require.NoError(t, db.Needs().Create(context.Background(), need))
	return need
}

func seedResponse(t *testing.T, db *DB, needID, userID string) *types.Response {
	t.Helper()
	response := &types.Response{
		NeedID:      needID,
		UserID:      userID,
		Description: "我可以提供这项服务",
		Status:      types.ResponseStatusPending,
	}
	require.NoError(t, db.Responses().Create(context.Background(), response))
	return response
}

func TestNeedStatusTransitionIsConditional(t *testing.T) {
	db := New()
	ctx := context.Background()
	need := seedNeed(t, db, "owner-1", types.NeedStatusPublished)

	err := db.Needs().UpdateStatus(ctx, need.ID, types.NeedStatusPublished, types.NeedStatusCancelled)
	require.NoError(t, err)

	// Second transition sees CANCELLED, not PUBLISHED.
	err = db.Needs().UpdateStatus(ctx, need.ID, types.NeedStatusPublished, types.NeedStatusCancelled)
	require.True(t, types.IsConflict(err))

	err = db.Needs().UpdateStatus(ctx, "missing", types.NeedStatusPublished, types.NeedStatusCancelled)
	require.True(t, types.IsNotFound(err))
}

func TestResponseAcceptIsAtomic(t *testing.T) {
	db := New()
	ctx := context.Background()
	need := seedNeed(t, db, "owner-1", types.NeedStatusPublished)
	response := seedResponse(t, db, need.ID, "helper-1")

	match := &types.AcceptedMatch{NeedID: need.ID, ResponseID: response.ID}
	require.NoError(t, db.Responses().Accept(ctx, response.ID, match))
	assert.NotEmpty(t, match.ID)

	// A raced second accept loses and must not write a second match.
	err := db.Responses().Accept(ctx, response.ID, &types.AcceptedMatch{NeedID: need.ID, ResponseID: response.ID})
	require.True(t, types.IsConflict(err))

	totals, err := db.Totals(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, totals.AcceptedMatches)
}

func TestCountersMatchRecount(t *testing.T) {
	db := New()
	ctx := context.Background()
	need := seedNeed(t, db, "owner-1", types.NeedStatusPublished)

	first := seedResponse(t, db, need.ID, "helper-1")
	second := seedResponse(t, db, need.ID, "helper-2")
	seedResponse(t, db, need.ID, "helper-3")

	require.NoError(t, db.Responses().Accept(ctx, first.ID, &types.AcceptedMatch{NeedID: need.ID, ResponseID: first.ID}))
	require.NoError(t, db.Responses().UpdateStatus(ctx, second.ID, types.ResponseStatusPending, types.ResponseStatusRejected))

	stored, err := db.Needs().Need(ctx, need.ID)
	require.NoError(t, err)

	total, accepted, err := db.Responses().CountsByNeed(ctx, need.ID)
	require.NoError(t, err)
	assert.Equal(t, stored.ResponseCount, total)
	assert.Equal(t, stored.AcceptedCount, accepted)
	assert.Equal(t, 3, total)
	assert.Equal(t, 1, accepted)
}

func TestHasActive(t *testing.T) {
	db := New()
	ctx := context.Background()
	need := seedNeed(t, db, "owner-1", types.NeedStatusPublished)
	response := seedResponse(t, db, need.ID, "helper-1")

	active, err := db.Responses().HasActive(ctx, need.ID, "helper-1")
	require.NoError(t, err)
	assert.True(t, active)

	active, err = db.Responses().HasActive(ctx, need.ID, "helper-2")
	require.NoError(t, err)
	assert.False(t, active)

	require.NoError(t, db.Responses().UpdateStatus(ctx, response.ID, types.ResponseStatusPending, types.ResponseStatusRejected))
	active, err = db.Responses().HasActive(ctx, need.ID, "helper-1")
	require.NoError(t, err)
	assert.False(t, active, "a rejected response is not live")

	accepted := seedResponse(t, db, need.ID, "helper-1")
	require.NoError(t, db.Responses().Accept(ctx, accepted.ID, &types.AcceptedMatch{NeedID: need.ID, ResponseID: accepted.ID}))
	active, err = db.Responses().HasActive(ctx, need.ID, "helper-1")
	require.NoError(t, err)
	assert.True(t, active, "an accepted response is live")
}

func TestNeedListFilterOrderPaginate(t *testing.T) {
	db := New()
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	db.SetClock(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	})

	for i := 0; i < 5; i++ {
		need := &types.Need{
			UserID:      "owner-1",
			RegionID:    "region-1",
			Category:    types.CategoryElderCare,
			Title:       fmt.Sprintf("需要助老上门服务 %d", i),
			Description: "老人行动不便，需要定期的上门照护",
			Status:      types.NeedStatusPublished,
		}
		require.NoError(t, db.Needs().Create(ctx, need))
	}
	seedNeed(t, db, "owner-1", types.NeedStatusCancelled)

	published, total, err := db.Needs().List(ctx, types.NeedQuery{
		Status:    string(types.NeedStatusPublished),
		PageQuery: types.PageQuery{Page: 1, PageSize: 3},
	})
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, published, 3)

	// Default ordering is newest first.
	assert.True(t, published[0].CreatedAt.After(published[1].CreatedAt))

	secondPage, total, err := db.Needs().List(ctx, types.NeedQuery{
		Status:    string(types.NeedStatusPublished),
		PageQuery: types.PageQuery{Page: 2, PageSize: 3},
	})
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Len(t, secondPage, 2)

	ascending, _, err := db.Needs().List(ctx, types.NeedQuery{
		Status:    string(types.NeedStatusPublished),
		Ordering:  "title",
		PageQuery: types.PageQuery{Page: 1, PageSize: 10},
	})
	require.NoError(t, err)
	assert.Equal(t, "需要助老上门服务 0", ascending[0].Title)

	searched, total, err := db.Needs().List(ctx, types.NeedQuery{
		Search:    "服务 3",
		PageQuery: types.PageQuery{Page: 1, PageSize: 10},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, searched, 1)
	assert.Equal(t, "需要助老上门服务 3", searched[0].Title)
}

func TestRegionDeleteGuard(t *testing.T) {
	db := New()
	ctx := context.Background()

	region := &types.Region{Province: "北京市", City: "北京市", Name: "朝阳区", FullName: "北京市-北京市-朝阳区"}
	require.NoError(t, db.Regions().Create(ctx, region))

	need := seedNeed(t, db, "owner-1", types.NeedStatusPublished)
	stored := db.needs[need.ID]
	stored.RegionID = region.ID

	err := db.Regions().Delete(ctx, region.ID)
	require.True(t, types.IsConflict(err))

	delete(db.needs, need.ID)
	require.NoError(t, db.Regions().Delete(ctx, region.ID))
}

func TestClientSuppliedRegionIDSurvives(t *testing.T) {
	db := New()
	ctx := context.Background()

	region := &types.Region{ID: "fixed-region-id", Province: "上海市", City: "上海市", Name: "徐汇区", FullName: "上海市-上海市-徐汇区"}
	require.NoError(t, db.Regions().Create(ctx, region))

	stored, err := db.Regions().Region(ctx, "fixed-region-id")
	require.NoError(t, err)
	assert.Equal(t, "徐汇区", stored.Name)
}

func TestUpsertIdentityPreservesProfile(t *testing.T) {
	db := New()
	ctx := context.Background()

	full := "李阿姨"
	phone := "13800000002"
	require.NoError(t, db.Users().UpsertIdentity(ctx, &types.User{
		ID: "u1", Username: "helper", FullName: &full, Phone: &phone,
	}))

	// A later login without the optional claims keeps the stored values.
	require.NoError(t, db.Users().UpsertIdentity(ctx, &types.User{ID: "u1", Username: "helper_renamed"}))

	stored, err := db.Users().User(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "helper_renamed", stored.Username)
	require.NotNil(t, stored.FullName)
	assert.Equal(t, "李阿姨", *stored.FullName)
	require.NotNil(t, stored.Phone)
	assert.Equal(t, "13800000002", *stored.Phone)
	assert.Equal(t, types.UserTypeNormal, stored.UserType)
}
