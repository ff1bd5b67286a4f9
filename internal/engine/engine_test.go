package engine_test

import (
	"context"
	"io"
	"sync"
	"testing"

	"helplink/internal/engine"
	"helplink/internal/metrics"
	"helplink/internal/store/memory"
	"helplink/internal/utils"
	"helplink/pkg/types"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	db     *memory.DB
	eng    *engine.Engine
	region *types.Region

	owner  types.Actor
	helper types.Actor
	other  types.Actor
	admin  types.Actor
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	db := memory.New()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	eng := engine.New(db.Needs(), db.Responses(), db.Regions(), db.Users(), logger, metrics.New())

	users := []types.User{
		{ID: "owner-1", Username: "owner", FullName: utils.StringPtr("张大爷")},
		{ID: "helper-1", Username: "helper", FullName: utils.StringPtr("李阿姨"), Phone: utils.StringPtr("13800000002")},
		{ID: "other-1", Username: "other"},
		{ID: "admin-1", Username: "admin", UserType: types.UserTypeAdmin},
	}
	for i := range users {
		require.NoError(t, db.Users().UpsertIdentity(ctx, &users[i]))
	}

	region := &types.Region{Province: "北京市", City: "北京市", Name: "朝阳区", FullName: "北京市-北京市-朝阳区"}
	require.NoError(t, db.Regions().Create(ctx, region))

	return &testEnv{
		db:     db,
		eng:    eng,
		region: region,
		owner:  types.Actor{UserID: "owner-1"},
		helper: types.Actor{UserID: "helper-1"},
		other:  types.Actor{UserID: "other-1"},
		admin:  types.Actor{UserID: "admin-1", Admin: true},
	}
}

func (env *testEnv) publishNeed(t *testing.T) *types.Need {
	t.Helper()
	need, err := env.eng.CreateNeed(context.Background(), env.owner, types.CreateNeedInput{
		RegionID:    env.region.ID,
		Category:    types.CategoryElderCare,
		Title:       "需要助老上门服务",
		Description: "老人行动不便，需要每周两次的上门照护服务",
	})
	require.NoError(t, err)
	return need
}

func (env *testEnv) respond(t *testing.T, actor types.Actor, needID string) *types.Response {
	t.Helper()
	response, err := env.eng.CreateResponse(context.Background(), actor, types.CreateResponseInput{
		NeedID:      needID,
		Description: "我有照护经验，可以每周上门两次",
	})
	require.NoError(t, err)
	return response
}

func TestCreateNeedValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.eng.CreateNeed(ctx, env.owner, types.CreateNeedInput{
		RegionID:    "no-such-region",
		Category:    "修理飞机",
		Title:       "短",
		Description: "太短",
	})
	require.Error(t, err)
	require.True(t, types.IsValidation(err))

	var domainErr *types.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Contains(t, domainErr.Fields, "title")
	assert.Contains(t, domainErr.Fields, "description")
	assert.Contains(t, domainErr.Fields, "category")
	assert.Contains(t, domainErr.Fields, "region_id")
}

func TestCreateNeed(t *testing.T) {
	env := newTestEnv(t)

	need := env.publishNeed(t)

	assert.Equal(t, types.NeedStatusPublished, need.Status)
	assert.Equal(t, "owner-1", need.UserID)
	assert.Zero(t, need.ResponseCount)
	assert.Zero(t, need.AcceptedCount)
	require.NotNil(t, need.OwnerName)
	assert.Equal(t, "张大爷", *need.OwnerName)
	require.NotNil(t, need.RegionFullName)
	assert.Equal(t, "北京市-北京市-朝阳区", *need.RegionFullName)
}

func TestListNeedsDefaultsToPublished(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	published := env.publishNeed(t)
	cancelled := env.publishNeed(t)
	_, err := env.eng.CancelNeed(ctx, env.owner, cancelled.ID)
	require.NoError(t, err)

	page, err := env.eng.ListNeeds(ctx, types.NeedQuery{})
	require.NoError(t, err)
	require.Len(t, page.Results, 1)
	assert.Equal(t, published.ID, page.Results[0].ID)
	assert.Equal(t, 1, page.Total)

	page, err = env.eng.ListNeeds(ctx, types.NeedQuery{Status: string(types.NeedStatusCancelled)})
	require.NoError(t, err)
	require.Len(t, page.Results, 1)
	assert.Equal(t, cancelled.ID, page.Results[0].ID)
}

func TestEditNeed(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	need := env.publishNeed(t)

	updated, err := env.eng.EditNeed(ctx, env.owner, need.ID, types.UpdateNeedInput{
		Title: utils.StringPtr("需要每周三次助老服务"),
	})
	require.NoError(t, err)
	assert.Equal(t, "需要每周三次助老服务", updated.Title)

	_, err = env.eng.EditNeed(ctx, env.other, need.ID, types.UpdateNeedInput{
		Title: utils.StringPtr("不该被允许的修改标题"),
	})
	require.True(t, types.IsPermissionDenied(err))

	env.respond(t, env.helper, need.ID)
	_, err = env.eng.EditNeed(ctx, env.owner, need.ID, types.UpdateNeedInput{
		Title: utils.StringPtr("已有响应后的修改标题"),
	})
	require.True(t, types.IsConflict(err))
	assert.EqualError(t, err, "该需求已有响应，无法修改")
}

func TestEditCancelledNeed(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	need := env.publishNeed(t)
	_, err := env.eng.CancelNeed(ctx, env.owner, need.ID)
	require.NoError(t, err)

	_, err = env.eng.EditNeed(ctx, env.owner, need.ID, types.UpdateNeedInput{
		Title: utils.StringPtr("取消之后修改的标题"),
	})
	require.True(t, types.IsConflict(err))
	assert.EqualError(t, err, "该需求已取消，无法修改")
}

func TestCancelNeed(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	need := env.publishNeed(t)

	_, err := env.eng.CancelNeed(ctx, env.other, need.ID)
	require.True(t, types.IsPermissionDenied(err))

	cancelled, err := env.eng.CancelNeed(ctx, env.owner, need.ID)
	require.NoError(t, err)
	assert.Equal(t, types.NeedStatusCancelled, cancelled.Status)

	_, err = env.eng.CancelNeed(ctx, env.owner, need.ID)
	require.True(t, types.IsConflict(err))
}

func TestCreateResponseRules(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	need := env.publishNeed(t)

	_, err := env.eng.CreateResponse(ctx, env.owner, types.CreateResponseInput{
		NeedID:      need.ID,
		Description: "给自己的需求提交一个响应",
	})
	require.True(t, types.IsPermissionDenied(err))
	assert.EqualError(t, err, "不能响应自己发布的需求")

	env.respond(t, env.helper, need.ID)
	_, err = env.eng.CreateResponse(ctx, env.helper, types.CreateResponseInput{
		NeedID:      need.ID,
		Description: "同一个人的第二个响应内容",
	})
	require.True(t, types.IsConflict(err))
	assert.EqualError(t, err, "您已对该需求提交过响应")

	cancelled := env.publishNeed(t)
	_, err = env.eng.CancelNeed(ctx, env.owner, cancelled.ID)
	require.NoError(t, err)
	_, err = env.eng.CreateResponse(ctx, env.helper, types.CreateResponseInput{
		NeedID:      cancelled.ID,
		Description: "响应一个已经取消的需求",
	})
	require.True(t, types.IsConflict(err))
	assert.EqualError(t, err, "该需求已取消，无法响应")
}

func TestRespondAgainAfterRejection(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	need := env.publishNeed(t)
	response := env.respond(t, env.helper, need.ID)

	_, err := env.eng.RejectResponse(ctx, env.owner, response.ID)
	require.NoError(t, err)

	// A rejected response is no longer live, so a fresh one is allowed.
	again := env.respond(t, env.helper, need.ID)
	assert.Equal(t, types.ResponseStatusPending, again.Status)

	counts, err := env.eng.Projector().Recount(ctx, need.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, counts.Responses)
	assert.Equal(t, 0, counts.Accepted)
}

func TestAcceptResponse(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	need := env.publishNeed(t)
	first := env.respond(t, env.helper, need.ID)
	second := env.respond(t, env.other, need.ID)

	_, err := env.eng.AcceptResponse(ctx, env.helper, first.ID)
	require.True(t, types.IsPermissionDenied(err))

	accepted, err := env.eng.AcceptResponse(ctx, env.owner, first.ID)
	require.NoError(t, err)
	assert.Equal(t, types.ResponseStatusAccepted, accepted.Status)

	// Acceptance is not exclusive: the sibling stays pending and the need
	// stays published.
	sibling, err := env.eng.Response(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, types.ResponseStatusPending, sibling.Status)

	fresh, err := env.eng.Need(ctx, need.ID)
	require.NoError(t, err)
	assert.Equal(t, types.NeedStatusPublished, fresh.Status)
	assert.Equal(t, 2, fresh.ResponseCount)
	assert.Equal(t, 1, fresh.AcceptedCount)

	totals, err := env.db.Totals(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, totals.AcceptedMatches)
}

func TestTerminalResponseImmutable(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	need := env.publishNeed(t)
	response := env.respond(t, env.helper, need.ID)

	_, err := env.eng.AcceptResponse(ctx, env.owner, response.ID)
	require.NoError(t, err)

	_, err = env.eng.EditResponse(ctx, env.helper, response.ID, types.UpdateResponseInput{
		Description: utils.StringPtr("接受之后还想改响应内容"),
	})
	require.True(t, types.IsConflict(err))

	_, err = env.eng.CancelResponse(ctx, env.helper, response.ID)
	require.True(t, types.IsConflict(err))

	_, err = env.eng.RejectResponse(ctx, env.owner, response.ID)
	require.True(t, types.IsConflict(err))
	assert.EqualError(t, err, "该响应已被处理")
}

func TestConcurrentAcceptReject(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	need := env.publishNeed(t)
	response := env.respond(t, env.helper, need.ID)

	var wg sync.WaitGroup
	errs := make([]error, 2)

	wg.Add(2)
	go func() {
		defer wg.Done()
		_, errs[0] = env.eng.AcceptResponse(ctx, env.owner, response.ID)
	}()
	go func() {
		defer wg.Done()
		_, errs[1] = env.eng.RejectResponse(ctx, env.owner, response.ID)
	}()
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			require.True(t, types.IsConflict(err), "loser must get a conflict, got %v", err)
		}
	}
	assert.Equal(t, 1, winners, "exactly one of accept/reject may win")

	fresh, err := env.eng.Response(ctx, response.ID)
	require.NoError(t, err)
	assert.True(t, fresh.Status.Terminal())

	counts, err := env.eng.Projector().Recount(ctx, need.ID)
	require.NoError(t, err)
	if errs[0] == nil {
		assert.Equal(t, 1, counts.Accepted)
	} else {
		assert.Equal(t, 0, counts.Accepted)
	}
}

func TestCountsNeverDrift(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	need := env.publishNeed(t)
	first := env.respond(t, env.helper, need.ID)
	second := env.respond(t, env.other, need.ID)

	_, err := env.eng.AcceptResponse(ctx, env.owner, first.ID)
	require.NoError(t, err)
	_, err = env.eng.RejectResponse(ctx, env.owner, second.ID)
	require.NoError(t, err)

	fresh, err := env.eng.Need(ctx, need.ID)
	require.NoError(t, err)

	counts, err := env.eng.Projector().Recount(ctx, need.ID)
	require.NoError(t, err)
	assert.Equal(t, fresh.ResponseCount, counts.Responses)
	assert.Equal(t, fresh.AcceptedCount, counts.Accepted)

	require.NoError(t, env.eng.Projector().Refresh(ctx, fresh))
	assert.Equal(t, counts.Responses, fresh.ResponseCount)
	assert.Equal(t, counts.Accepted, fresh.AcceptedCount)
}

func TestResponsesByNeedVisibility(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	need := env.publishNeed(t)
	response := env.respond(t, env.helper, need.ID)

	_, err := env.eng.ResponsesByNeed(ctx, env.helper, need.ID)
	require.True(t, types.IsPermissionDenied(err))

	listed, err := env.eng.ResponsesByNeed(ctx, env.owner, need.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Nil(t, listed[0].ResponderPhone, "contact details stay hidden before acceptance")

	_, err = env.eng.AcceptResponse(ctx, env.owner, response.ID)
	require.NoError(t, err)

	listed, err = env.eng.ResponsesByNeed(ctx, env.owner, need.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.NotNil(t, listed[0].ResponderPhone)
	assert.Equal(t, "13800000002", *listed[0].ResponderPhone)
}

func TestResponsesByNeedExcludesCancelled(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	need := env.publishNeed(t)
	response := env.respond(t, env.helper, need.ID)
	_, err := env.eng.CancelResponse(ctx, env.helper, response.ID)
	require.NoError(t, err)

	listed, err := env.eng.ResponsesByNeed(ctx, env.owner, need.ID)
	require.NoError(t, err)
	assert.Empty(t, listed)

	// The cancelled response still counts toward the total.
	counts, err := env.eng.Projector().Recount(ctx, need.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, counts.Responses)
}

func TestResponsesByResponder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	need := env.publishNeed(t)
	response := env.respond(t, env.helper, need.ID)

	_, err := env.eng.ResponsesByResponder(ctx, env.helper, "NOT_A_STATUS")
	require.True(t, types.IsValidation(err))

	mine, err := env.eng.ResponsesByResponder(ctx, env.helper, "")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, response.ID, mine[0].ID)

	accepted, err := env.eng.AcceptedResponsesByResponder(ctx, env.helper)
	require.NoError(t, err)
	assert.Empty(t, accepted)

	_, err = env.eng.AcceptResponse(ctx, env.owner, response.ID)
	require.NoError(t, err)

	accepted, err = env.eng.AcceptedResponsesByResponder(ctx, env.helper)
	require.NoError(t, err)
	require.Len(t, accepted, 1)
	assert.Equal(t, response.ID, accepted[0].ID)
}
