package engine

import (
	"context"
	"fmt"

	"helplink/pkg/types"

	"github.com/sirupsen/logrus"
)

// Admin is the privileged overlay over the engine. It skips ownership
// predicates but keeps every state-machine and data invariant: a terminal
// status stays terminal and a responded-to need stays frozen, moderator or
// not.
type Admin struct {
	engine *Engine
}

func (e *Engine) Admin() *Admin {
	return &Admin{engine: e}
}

func requireAdmin(actor types.Actor) error {
	if !actor.Admin {
		return types.NewPermissionDenied("仅管理员可访问")
	}
	return nil
}

func (a *Admin) ListNeeds(ctx context.Context, actor types.Actor, q types.NeedQuery) (*types.Page[*types.Need], error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	needs, total, err := a.engine.needs.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("admin list needs: %w", err)
	}
	return types.NewPage(needs, total, q.PageQuery), nil
}

func (a *Admin) Need(ctx context.Context, actor types.Actor, needID string) (*types.Need, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return a.engine.needs.Need(ctx, needID)
}

// UpdateNeed edits structural fields without an ownership check. The
// zero-responses invariant still applies.
func (a *Admin) UpdateNeed(ctx context.Context, actor types.Actor, needID string, input types.UpdateNeedInput) (*types.Need, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return a.engine.EditNeed(ctx, actor, needID, input)
}

// SetNeedStatus is the moderation overwrite. The only legal transition is
// PUBLISHED→CANCELLED; a cancelled need cannot come back.
func (a *Admin) SetNeedStatus(ctx context.Context, actor types.Actor, needID string, status types.NeedStatus) (*types.Need, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if status != types.NeedStatusPublished && status != types.NeedStatusCancelled {
		return nil, types.NewValidationError(map[string]string{"status": "未知的状态"})
	}

	need, err := a.engine.needs.Need(ctx, needID)
	if err != nil {
		return nil, err
	}

	if need.Status == status {
		return need, nil
	}
	if need.Status == types.NeedStatusCancelled {
		return nil, types.NewConflict("已取消的需求无法重新发布")
	}

	err = a.engine.needs.UpdateStatus(ctx, needID, need.Status, status)
	a.engine.metrics.Transition("need", "admin_set_status", err)
	if err != nil {
		return nil, err
	}

	a.engine.logger.WithFields(logrus.Fields{
		"need_id":  needID,
		"admin_id": actor.UserID,
		"status":   status,
	}).Info("need status overwritten")

	return a.engine.needs.Need(ctx, needID)
}

func (a *Admin) DeleteNeed(ctx context.Context, actor types.Actor, needID string) (*types.Need, error) {
	return a.SetNeedStatus(ctx, actor, needID, types.NeedStatusCancelled)
}

func (a *Admin) ListResponses(ctx context.Context, actor types.Actor, q types.ResponseQuery) (*types.Page[*types.Response], error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	responses, total, err := a.engine.responses.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("admin list responses: %w", err)
	}
	return types.NewPage(responses, total, q.PageQuery), nil
}

func (a *Admin) Response(ctx context.Context, actor types.Actor, responseID string) (*types.Response, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return a.engine.responses.Response(ctx, responseID)
}

func (a *Admin) UpdateResponse(ctx context.Context, actor types.Actor, responseID string, input types.UpdateResponseInput) (*types.Response, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return a.engine.EditResponse(ctx, actor, responseID, input)
}

// SetResponseStatus overwrites a response status. Transitions are only legal
// out of PENDING; accepting through the overlay records the match exactly as
// the owner's accept would.
func (a *Admin) SetResponseStatus(ctx context.Context, actor types.Actor, responseID string, status types.ResponseStatus) (*types.Response, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if !types.ValidResponseStatus(status) {
		return nil, types.NewValidationError(map[string]string{"status": "未知的状态"})
	}

	response, err := a.engine.responses.Response(ctx, responseID)
	if err != nil {
		return nil, err
	}

	if response.Status == status {
		return response, nil
	}
	if response.Status.Terminal() {
		return nil, types.NewConflict("该响应已被处理")
	}

	if status == types.ResponseStatusAccepted {
		return a.engine.AcceptResponse(ctx, actor, responseID)
	}

	err = a.engine.responses.UpdateStatus(ctx, responseID, types.ResponseStatusPending, status)
	a.engine.metrics.Transition("response", "admin_set_status", err)
	if err != nil {
		return nil, err
	}

	a.engine.logger.WithFields(logrus.Fields{
		"response_id": responseID,
		"admin_id":    actor.UserID,
		"status":      status,
	}).Info("response status overwritten")

	return a.engine.responses.Response(ctx, responseID)
}

func (a *Admin) DeleteResponse(ctx context.Context, actor types.Actor, responseID string) (*types.Response, error) {
	return a.SetResponseStatus(ctx, actor, responseID, types.ResponseStatusCancelled)
}

func (a *Admin) ListUsers(ctx context.Context, actor types.Actor, q types.UserQuery) (*types.Page[*types.User], error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	users, total, err := a.engine.users.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("admin list users: %w", err)
	}
	return types.NewPage(users, total, q.PageQuery), nil
}

func (a *Admin) User(ctx context.Context, actor types.Actor, userID string) (*types.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return a.engine.users.User(ctx, userID)
}

func (a *Admin) CreateRegion(ctx context.Context, actor types.Actor, input types.RegionInput) (*types.Region, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	fields := fieldErrors{}
	if input.Name == "" {
		fields.add("name", "请填写地域名称")
	}
	if len(fields) > 0 {
		return nil, types.NewValidationError(fields)
	}

	region := &types.Region{
		Province: input.Province,
		City:     input.City,
		Name:     input.Name,
		FullName: input.FullName,
	}
	region.FullName = region.DisplayName()

	if err := a.engine.regions.Create(ctx, region); err != nil {
		return nil, fmt.Errorf("create region: %w", err)
	}
	return region, nil
}

func (a *Admin) UpdateRegion(ctx context.Context, actor types.Actor, regionID string, input types.RegionInput) (*types.Region, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	region, err := a.engine.regions.Region(ctx, regionID)
	if err != nil {
		return nil, err
	}

	if input.Province != "" {
		region.Province = input.Province
	}
	if input.City != "" {
		region.City = input.City
	}
	if input.Name != "" {
		region.Name = input.Name
	}
	region.FullName = input.FullName
	if region.FullName == "" {
		region.FullName = fmt.Sprintf("%s-%s-%s", region.Province, region.City, region.Name)
	}

	if err := a.engine.regions.Update(ctx, region); err != nil {
		return nil, fmt.Errorf("update region %s: %w", regionID, err)
	}
	return a.engine.regions.Region(ctx, regionID)
}

// DeleteRegion removes a region permanently; the store rejects the delete
// with a Conflict error while any need still references it.
func (a *Admin) DeleteRegion(ctx context.Context, actor types.Actor, regionID string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	return a.engine.regions.Delete(ctx, regionID)
}

func (a *Admin) ListRegions(ctx context.Context, actor types.Actor, q types.RegionQuery) (*types.Page[*types.Region], error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	regions, total, err := a.engine.regions.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("admin list regions: %w", err)
	}
	return types.NewPage(regions, total, q.PageQuery), nil
}

func (a *Admin) Provinces(ctx context.Context, actor types.Actor) ([]string, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return a.engine.regions.Provinces(ctx)
}

func (a *Admin) Cities(ctx context.Context, actor types.Actor, province string) ([]string, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return a.engine.regions.Cities(ctx, province)
}
