// Package guard holds the authorization predicates for the need/response
// lifecycle. Predicates are pure: they look at the actor and the current
// entity state and nothing else, so the HTTP layer and the engine share one
// source of truth for "who may do what".
//
// Administrators pass every ownership check. They do not pass checks that
// encode data invariants (a need with responses is frozen for everyone).
package guard

import "helplink/pkg/types"

func CanEditNeed(actor types.Actor, need *types.Need) bool {
	if !need.CanEdit() {
		return false
	}
	return actor.Admin || actor.UserID == need.UserID
}

func CanCancelNeed(actor types.Actor, need *types.Need) bool {
	if need.Status != types.NeedStatusPublished {
		return false
	}
	return actor.Admin || actor.UserID == need.UserID
}

// CanRespond rejects owners responding to their own need; administrators get
// no exemption here because the rule is about the responder role, not
// privilege.
func CanRespond(actor types.Actor, need *types.Need) bool {
	if need.Status != types.NeedStatusPublished {
		return false
	}
	return actor.UserID != need.UserID
}

func CanEditResponse(actor types.Actor, response *types.Response) bool {
	if !response.CanEdit() {
		return false
	}
	return actor.Admin || actor.UserID == response.UserID
}

func CanCancelResponse(actor types.Actor, response *types.Response) bool {
	if response.Status != types.ResponseStatusPending {
		return false
	}
	return actor.Admin || actor.UserID == response.UserID
}

// CanDecide covers accept and reject; only the owner of the responded-to
// need (or an administrator) decides, and only while the response is
// pending.
func CanDecide(actor types.Actor, need *types.Need, response *types.Response) bool {
	if response.Status != types.ResponseStatusPending {
		return false
	}
	return actor.Admin || actor.UserID == need.UserID
}

func CanViewResponses(actor types.Actor, need *types.Need) bool {
	return actor.Admin || actor.UserID == need.UserID
}
