package engine_test

import (
	"context"
	"testing"

	"helplink/internal/utils"
	"helplink/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminRequiresAdminFlag(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.eng.Admin()

	_, err := admin.ListNeeds(ctx, env.owner, types.NeedQuery{})
	require.True(t, types.IsPermissionDenied(err))
	assert.EqualError(t, err, "仅管理员可访问")

	_, err = admin.ListUsers(ctx, env.helper, types.UserQuery{})
	require.True(t, types.IsPermissionDenied(err))

	err = admin.DeleteRegion(ctx, env.other, env.region.ID)
	require.True(t, types.IsPermissionDenied(err))
}

func TestAdminUpdateNeedKeepsDataInvariant(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.eng.Admin()

	need := env.publishNeed(t)

	// Ownership does not bind the admin.
	updated, err := admin.UpdateNeed(ctx, env.admin, need.ID, types.UpdateNeedInput{
		Title: utils.StringPtr("管理员修改后的标题"),
	})
	require.NoError(t, err)
	assert.Equal(t, "管理员修改后的标题", updated.Title)

	// The zero-responses invariant does.
	env.respond(t, env.helper, need.ID)
	_, err = admin.UpdateNeed(ctx, env.admin, need.ID, types.UpdateNeedInput{
		Title: utils.StringPtr("有响应之后管理员再改"),
	})
	require.True(t, types.IsConflict(err))
	assert.EqualError(t, err, "该需求已有响应，无法修改")
}

func TestAdminSetNeedStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.eng.Admin()

	need := env.publishNeed(t)

	_, err := admin.SetNeedStatus(ctx, env.admin, need.ID, "ARCHIVED")
	require.True(t, types.IsValidation(err))

	// Same-status overwrite is a no-op.
	same, err := admin.SetNeedStatus(ctx, env.admin, need.ID, types.NeedStatusPublished)
	require.NoError(t, err)
	assert.Equal(t, types.NeedStatusPublished, same.Status)

	cancelled, err := admin.SetNeedStatus(ctx, env.admin, need.ID, types.NeedStatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, types.NeedStatusCancelled, cancelled.Status)

	_, err = admin.SetNeedStatus(ctx, env.admin, need.ID, types.NeedStatusPublished)
	require.True(t, types.IsConflict(err))
	assert.EqualError(t, err, "已取消的需求无法重新发布")
}

func TestAdminDeleteNeedCancels(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.eng.Admin()

	need := env.publishNeed(t)
	deleted, err := admin.DeleteNeed(ctx, env.admin, need.ID)
	require.NoError(t, err)
	assert.Equal(t, types.NeedStatusCancelled, deleted.Status)

	// The record survives as a cancelled need.
	fresh, err := env.eng.Need(ctx, need.ID)
	require.NoError(t, err)
	assert.Equal(t, types.NeedStatusCancelled, fresh.Status)
}

func TestAdminSetResponseStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.eng.Admin()

	need := env.publishNeed(t)
	response := env.respond(t, env.helper, need.ID)

	// Accepting through the overlay records the match like an owner accept.
	accepted, err := admin.SetResponseStatus(ctx, env.admin, response.ID, types.ResponseStatusAccepted)
	require.NoError(t, err)
	assert.Equal(t, types.ResponseStatusAccepted, accepted.Status)

	totals, err := env.db.Totals(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, totals.AcceptedMatches)

	// Out of a terminal status nothing moves.
	_, err = admin.SetResponseStatus(ctx, env.admin, response.ID, types.ResponseStatusRejected)
	require.True(t, types.IsConflict(err))

	// Except the no-op overwrite to the same status.
	same, err := admin.SetResponseStatus(ctx, env.admin, response.ID, types.ResponseStatusAccepted)
	require.NoError(t, err)
	assert.Equal(t, types.ResponseStatusAccepted, same.Status)
}

func TestAdminDeleteResponseCancels(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.eng.Admin()

	need := env.publishNeed(t)
	response := env.respond(t, env.helper, need.ID)

	deleted, err := admin.DeleteResponse(ctx, env.admin, response.ID)
	require.NoError(t, err)
	assert.Equal(t, types.ResponseStatusCancelled, deleted.Status)

	_, err = admin.DeleteResponse(ctx, env.admin, response.ID)
	require.NoError(t, err, "delete of an already cancelled response is the same-status no-op")
}

func TestAdminRegionLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.eng.Admin()

	_, err := admin.CreateRegion(ctx, env.admin, types.RegionInput{Province: "广东省", City: "广州市"})
	require.True(t, types.IsValidation(err))

	region, err := admin.CreateRegion(ctx, env.admin, types.RegionInput{
		Province: "广东省",
		City:     "广州市",
		Name:     "天河区",
	})
	require.NoError(t, err)
	assert.Equal(t, "广东省-广州市-天河区", region.FullName)

	updated, err := admin.UpdateRegion(ctx, env.admin, region.ID, types.RegionInput{Name: "越秀区"})
	require.NoError(t, err)
	assert.Equal(t, "越秀区", updated.Name)
	assert.Equal(t, "广东省-广州市-越秀区", updated.FullName)

	provinces, err := admin.Provinces(ctx, env.admin)
	require.NoError(t, err)
	assert.Contains(t, provinces, "广东省")
	assert.Contains(t, provinces, "北京市")

	cities, err := admin.Cities(ctx, env.admin, "广东省")
	require.NoError(t, err)
	assert.Equal(t, []string{"广州市"}, cities)

	require.NoError(t, admin.DeleteRegion(ctx, env.admin, region.ID))
	_, err = env.eng.Region(ctx, region.ID)
	require.True(t, types.IsNotFound(err))
}

func TestAdminDeleteReferencedRegionConflicts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.eng.Admin()

	env.publishNeed(t)

	err := admin.DeleteRegion(ctx, env.admin, env.region.ID)
	require.True(t, types.IsConflict(err))
	assert.EqualError(t, err, "该地域下仍有需求，无法删除")
}

func TestAdminListUsers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.eng.Admin()

	page, err := admin.ListUsers(ctx, env.admin, types.UserQuery{UserType: string(types.UserTypeAdmin)})
	require.NoError(t, err)
	require.Len(t, page.Results, 1)
	assert.Equal(t, "admin-1", page.Results[0].ID)

	user, err := admin.User(ctx, env.admin, "helper-1")
	require.NoError(t, err)
	assert.Equal(t, "helper", user.Username)
}
