package engine

import (
	"context"
	"fmt"

	"helplink/internal/guard"
	"helplink/pkg/types"

	"github.com/sirupsen/logrus"
)

func (e *Engine) CreateResponse(ctx context.Context, actor types.Actor, input types.CreateResponseInput) (*types.Response, error) {
	fields := fieldErrors{}
	if !validDescription(input.Description) {
		fields.add("description", fmt.Sprintf("描述至少%d个字符", minDescriptionRunes))
	}
	if input.NeedID == "" {
		fields.add("need_id", "请选择需求")
	}
	if len(fields) > 0 {
		return nil, types.NewValidationError(fields)
	}

	need, err := e.needs.Need(ctx, input.NeedID)
	if err != nil {
		return nil, err
	}

	if !guard.CanRespond(actor, need) {
		if actor.UserID == need.UserID {
			return nil, types.NewPermissionDenied("不能响应自己发布的需求")
		}
		return nil, types.NewConflict("该需求已取消，无法响应")
	}

	// One live response per responder per need.
	active, err := e.responses.HasActive(ctx, need.ID, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("check existing response: %w", err)
	}
	if active {
		return nil, types.NewConflict("您已对该需求提交过响应")
	}

	response := &types.Response{
		NeedID:      need.ID,
		UserID:      actor.UserID,
		Description: input.Description,
		Images:      emptyIfNil(input.Images),
		Videos:      emptyIfNil(input.Videos),
		Status:      types.ResponseStatusPending,
	}

	err = e.responses.Create(ctx, response)
	e.metrics.Transition("response", "create", err)
	if err != nil {
		return nil, fmt.Errorf("create response: %w", err)
	}

	e.logger.WithFields(logrus.Fields{
		"response_id": response.ID,
		"need_id":     need.ID,
		"user_id":     actor.UserID,
	}).Info("response submitted")

	return e.responses.Response(ctx, response.ID)
}

func (e *Engine) Response(ctx context.Context, responseID string) (*types.Response, error) {
	return e.responses.Response(ctx, responseID)
}

func (e *Engine) EditResponse(ctx context.Context, actor types.Actor, responseID string, input types.UpdateResponseInput) (*types.Response, error) {
	response, err := e.responses.Response(ctx, responseID)
	if err != nil {
		return nil, err
	}

	if !guard.CanEditResponse(actor, response) {
		if !actor.Admin && actor.UserID != response.UserID {
			return nil, types.NewPermissionDenied("无权修改他人的响应")
		}
		return nil, types.NewConflict("该响应已被处理，无法修改")
	}

	fields := fieldErrors{}
	if input.Description != nil {
		if !validDescription(*input.Description) {
			fields.add("description", fmt.Sprintf("描述至少%d个字符", minDescriptionRunes))
		} else {
			response.Description = *input.Description
		}
	}
	if input.Images != nil {
		response.Images = emptyIfNil(*input.Images)
	}
	if input.Videos != nil {
		response.Videos = emptyIfNil(*input.Videos)
	}
	if len(fields) > 0 {
		return nil, types.NewValidationError(fields)
	}

	err = e.responses.Update(ctx, response)
	e.metrics.Transition("response", "edit", err)
	if err != nil {
		return nil, fmt.Errorf("update response %s: %w", responseID, err)
	}

	return e.responses.Response(ctx, responseID)
}

func (e *Engine) CancelResponse(ctx context.Context, actor types.Actor, responseID string) (*types.Response, error) {
	response, err := e.responses.Response(ctx, responseID)
	if err != nil {
		return nil, err
	}

	if !guard.CanCancelResponse(actor, response) {
		if !actor.Admin && actor.UserID != response.UserID {
			return nil, types.NewPermissionDenied("无权删除他人的响应")
		}
		return nil, types.NewConflict("该响应已被处理，无法删除")
	}

	err = e.responses.UpdateStatus(ctx, responseID, types.ResponseStatusPending, types.ResponseStatusCancelled)
	e.metrics.Transition("response", "cancel", err)
	if err != nil {
		return nil, err
	}

	return e.responses.Response(ctx, responseID)
}

// AcceptResponse moves a pending response to ACCEPTED and records the match
// in the same atomic unit. Acceptance is not exclusive: sibling pending
// responses stay pending and the need stays published.
func (e *Engine) AcceptResponse(ctx context.Context, actor types.Actor, responseID string) (*types.Response, error) {
	response, need, err := e.responseWithNeed(ctx, responseID)
	if err != nil {
		return nil, err
	}

	if !guard.CanDecide(actor, need, response) {
		if !actor.Admin && actor.UserID != need.UserID {
			return nil, types.NewPermissionDenied("只有需求发布者可以接受响应")
		}
		return nil, types.NewConflict("该响应已被处理")
	}

	match := &types.AcceptedMatch{
		NeedID:         need.ID,
		NeedUserID:     need.UserID,
		ResponseID:     response.ID,
		ResponseUserID: response.UserID,
		AcceptedDate:   e.now(),
		Category:       need.Category,
		RegionID:       need.RegionID,
	}

	err = e.responses.Accept(ctx, responseID, match)
	e.metrics.Transition("response", "accept", err)
	if err != nil {
		return nil, err
	}

	e.logger.WithFields(logrus.Fields{
		"response_id": responseID,
		"need_id":     need.ID,
		"owner_id":    need.UserID,
	}).Info("response accepted")

	return e.responses.Response(ctx, responseID)
}

func (e *Engine) RejectResponse(ctx context.Context, actor types.Actor, responseID string) (*types.Response, error) {
	response, need, err := e.responseWithNeed(ctx, responseID)
	if err != nil {
		return nil, err
	}

	if !guard.CanDecide(actor, need, response) {
		if !actor.Admin && actor.UserID != need.UserID {
			return nil, types.NewPermissionDenied("只有需求发布者可以拒绝响应")
		}
		return nil, types.NewConflict("该响应已被处理")
	}

	err = e.responses.UpdateStatus(ctx, responseID, types.ResponseStatusPending, types.ResponseStatusRejected)
	e.metrics.Transition("response", "reject", err)
	if err != nil {
		return nil, err
	}

	return e.responses.Response(ctx, responseID)
}

// ResponsesByNeed lists a need's live responses for its owner. Responder
// contact details stay hidden until the owner accepts.
func (e *Engine) ResponsesByNeed(ctx context.Context, actor types.Actor, needID string) ([]*types.Response, error) {
	need, err := e.needs.Need(ctx, needID)
	if err != nil {
		return nil, err
	}

	if !guard.CanViewResponses(actor, need) {
		return nil, types.NewPermissionDenied("只有需求发布者可以查看响应")
	}

	responses, err := e.responses.ByNeed(ctx, needID, false)
	if err != nil {
		return nil, fmt.Errorf("list responses for need %s: %w", needID, err)
	}

	if !actor.Admin {
		for _, r := range responses {
			if r.Status != types.ResponseStatusAccepted {
				r.ResponderPhone = nil
			}
		}
	}
	return responses, nil
}

func (e *Engine) ResponsesByResponder(ctx context.Context, actor types.Actor, statusFilter string) ([]*types.Response, error) {
	var status *types.ResponseStatus
	if statusFilter != "" {
		s := types.ResponseStatus(statusFilter)
		if !types.ValidResponseStatus(s) {
			return nil, types.NewValidationError(map[string]string{"status": "未知的状态"})
		}
		status = &s
	}

	return e.responses.ByResponder(ctx, actor.UserID, status)
}

func (e *Engine) AcceptedResponsesByResponder(ctx context.Context, actor types.Actor) ([]*types.Response, error) {
	accepted := types.ResponseStatusAccepted
	return e.responses.ByResponder(ctx, actor.UserID, &accepted)
}

func (e *Engine) responseWithNeed(ctx context.Context, responseID string) (*types.Response, *types.Need, error) {
	response, err := e.responses.Response(ctx, responseID)
	if err != nil {
		return nil, nil, err
	}

	need, err := e.needs.Need(ctx, response.NeedID)
	if err != nil {
		return nil, nil, err
	}
	return response, need, nil
}
