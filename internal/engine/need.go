package engine

import (
	"context"
	"errors"
	"fmt"

	"helplink/internal/guard"
	"helplink/pkg/types"

	"github.com/sirupsen/logrus"
)

func (e *Engine) CreateNeed(ctx context.Context, actor types.Actor, input types.CreateNeedInput) (*types.Need, error) {
	fields := fieldErrors{}
	if !validTitle(input.Title) {
		fields.add("title", fmt.Sprintf("标题至少%d个字符", minTitleRunes))
	}
	if !validDescription(input.Description) {
		fields.add("description", fmt.Sprintf("描述至少%d个字符", minDescriptionRunes))
	}
	if !types.ValidServiceCategory(input.Category) {
		fields.add("category", "未知的服务类型")
	}
	if input.RegionID == "" {
		fields.add("region_id", "请选择地域")
	} else if _, err := e.regions.Region(ctx, input.RegionID); err != nil {
		if !errors.Is(err, types.ErrRegionNotFound) {
			return nil, fmt.Errorf("verify region: %w", err)
		}
		fields.add("region_id", "未知的地域")
	}
	if len(fields) > 0 {
		return nil, types.NewValidationError(fields)
	}

	need := &types.Need{
		UserID:      actor.UserID,
		RegionID:    input.RegionID,
		Category:    input.Category,
		Title:       input.Title,
		Description: input.Description,
		Images:      emptyIfNil(input.Images),
		Videos:      emptyIfNil(input.Videos),
		Status:      types.NeedStatusPublished,
	}

	err := e.needs.Create(ctx, need)
	e.metrics.Transition("need", "create", err)
	if err != nil {
		return nil, fmt.Errorf("create need: %w", err)
	}

	e.logger.WithFields(logrus.Fields{
		"need_id": need.ID,
		"user_id": actor.UserID,
	}).Info("need published")

	return e.needs.Need(ctx, need.ID)
}

func (e *Engine) Need(ctx context.Context, needID string) (*types.Need, error) {
	return e.needs.Need(ctx, needID)
}

// ListNeeds is the public browse listing; without an explicit status filter
// it shows published needs only.
func (e *Engine) ListNeeds(ctx context.Context, q types.NeedQuery) (*types.Page[*types.Need], error) {
	if q.Status == "" {
		q.Status = string(types.NeedStatusPublished)
	}

	needs, total, err := e.needs.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list needs: %w", err)
	}
	return types.NewPage(needs, total, q.PageQuery), nil
}

func (e *Engine) NeedsByOwner(ctx context.Context, actor types.Actor) ([]*types.Need, error) {
	return e.needs.ByOwner(ctx, actor.UserID)
}

func (e *Engine) EditNeed(ctx context.Context, actor types.Actor, needID string, input types.UpdateNeedInput) (*types.Need, error) {
	need, err := e.needs.Need(ctx, needID)
	if err != nil {
		return nil, err
	}

	if !guard.CanEditNeed(actor, need) {
		if !actor.Admin && actor.UserID != need.UserID {
			return nil, types.NewPermissionDenied("无权修改他人的需求")
		}
		if need.Status != types.NeedStatusPublished {
			return nil, types.NewConflict("该需求已取消，无法修改")
		}
		return nil, types.NewConflict("该需求已有响应，无法修改")
	}

	if err := applyNeedEdit(ctx, e, need, input); err != nil {
		return nil, err
	}

	err = e.needs.Update(ctx, need)
	e.metrics.Transition("need", "edit", err)
	if err != nil {
		return nil, fmt.Errorf("update need %s: %w", needID, err)
	}

	return e.needs.Need(ctx, needID)
}

func applyNeedEdit(ctx context.Context, e *Engine, need *types.Need, input types.UpdateNeedInput) error {
	fields := fieldErrors{}

	if input.Title != nil {
		if !validTitle(*input.Title) {
			fields.add("title", fmt.Sprintf("标题至少%d个字符", minTitleRunes))
		} else {
			need.Title = *input.Title
		}
	}
	if input.Description != nil {
		if !validDescription(*input.Description) {
			fields.add("description", fmt.Sprintf("描述至少%d个字符", minDescriptionRunes))
		} else {
			need.Description = *input.Description
		}
	}
	if input.Category != nil {
		if !types.ValidServiceCategory(*input.Category) {
			fields.add("category", "未知的服务类型")
		} else {
			need.Category = *input.Category
		}
	}
	if input.RegionID != nil {
		if _, err := e.regions.Region(ctx, *input.RegionID); err != nil {
			if !errors.Is(err, types.ErrRegionNotFound) {
				return fmt.Errorf("verify region: %w", err)
			}
			fields.add("region_id", "未知的地域")
		} else {
			need.RegionID = *input.RegionID
		}
	}
	if input.Images != nil {
		need.Images = emptyIfNil(*input.Images)
	}
	if input.Videos != nil {
		need.Videos = emptyIfNil(*input.Videos)
	}

	if len(fields) > 0 {
		return types.NewValidationError(fields)
	}
	return nil
}

// CancelNeed is the public delete: the need stays stored, its status moves
// to the terminal CANCELLED.
func (e *Engine) CancelNeed(ctx context.Context, actor types.Actor, needID string) (*types.Need, error) {
	need, err := e.needs.Need(ctx, needID)
	if err != nil {
		return nil, err
	}

	if !guard.CanCancelNeed(actor, need) {
		if !actor.Admin && actor.UserID != need.UserID {
			return nil, types.NewPermissionDenied("无权删除他人的需求")
		}
		return nil, types.NewConflict("该需求已取消")
	}

	err = e.needs.UpdateStatus(ctx, needID, types.NeedStatusPublished, types.NeedStatusCancelled)
	e.metrics.Transition("need", "cancel", err)
	if err != nil {
		return nil, err
	}

	e.logger.WithFields(logrus.Fields{
		"need_id": needID,
		"user_id": actor.UserID,
	}).Info("need cancelled")

	return e.needs.Need(ctx, needID)
}

func emptyIfNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
