package guard_test

import (
	"testing"

	"helplink/internal/guard"
	"helplink/pkg/types"

	"github.com/stretchr/testify/assert"
)

var (
	owner     = types.Actor{UserID: "owner"}
	responder = types.Actor{UserID: "responder"}
	stranger  = types.Actor{UserID: "stranger"}
	admin     = types.Actor{UserID: "moderator", Admin: true}
)

func publishedNeed(responses int) *types.Need {
	return &types.Need{ID: "n1", UserID: "owner", Status: types.NeedStatusPublished, ResponseCount: responses}
}

func pendingResponse() *types.Response {
	return &types.Response{ID: "r1", NeedID: "n1", UserID: "responder", Status: types.ResponseStatusPending}
}

func TestCanEditNeed(t *testing.T) {
	assert.True(t, guard.CanEditNeed(owner, publishedNeed(0)))
	assert.True(t, guard.CanEditNeed(admin, publishedNeed(0)))
	assert.False(t, guard.CanEditNeed(stranger, publishedNeed(0)))

	// A responded-to need is frozen for everyone, including administrators.
	assert.False(t, guard.CanEditNeed(owner, publishedNeed(1)))
	assert.False(t, guard.CanEditNeed(admin, publishedNeed(1)))

	cancelled := publishedNeed(0)
	cancelled.Status = types.NeedStatusCancelled
	assert.False(t, guard.CanEditNeed(owner, cancelled))
	assert.False(t, guard.CanEditNeed(admin, cancelled))
}

func TestCanCancelNeed(t *testing.T) {
	// Cancel stays available after responses arrive; only edit freezes.
	assert.True(t, guard.CanCancelNeed(owner, publishedNeed(3)))
	assert.True(t, guard.CanCancelNeed(admin, publishedNeed(3)))
	assert.False(t, guard.CanCancelNeed(stranger, publishedNeed(0)))

	cancelled := publishedNeed(0)
	cancelled.Status = types.NeedStatusCancelled
	assert.False(t, guard.CanCancelNeed(owner, cancelled))
	assert.False(t, guard.CanCancelNeed(admin, cancelled))
}

func TestCanRespond(t *testing.T) {
	assert.True(t, guard.CanRespond(responder, publishedNeed(0)))
	assert.False(t, guard.CanRespond(owner, publishedNeed(0)))

	cancelled := publishedNeed(0)
	cancelled.Status = types.NeedStatusCancelled
	assert.False(t, guard.CanRespond(responder, cancelled))

	// Admin privilege does not make someone a responder to their own need.
	adminOwned := publishedNeed(0)
	adminOwned.UserID = admin.UserID
	assert.False(t, guard.CanRespond(admin, adminOwned))
}

func TestCanEditAndCancelResponse(t *testing.T) {
	assert.True(t, guard.CanEditResponse(responder, pendingResponse()))
	assert.True(t, guard.CanEditResponse(admin, pendingResponse()))
	assert.False(t, guard.CanEditResponse(owner, pendingResponse()))

	assert.True(t, guard.CanCancelResponse(responder, pendingResponse()))
	assert.False(t, guard.CanCancelResponse(stranger, pendingResponse()))

	for _, status := range []types.ResponseStatus{
		types.ResponseStatusAccepted,
		types.ResponseStatusRejected,
		types.ResponseStatusCancelled,
	} {
		r := pendingResponse()
		r.Status = status
		assert.False(t, guard.CanEditResponse(responder, r), "edit out of %s", status)
		assert.False(t, guard.CanCancelResponse(responder, r), "cancel out of %s", status)
		assert.False(t, guard.CanEditResponse(admin, r), "admin edit out of %s", status)
	}
}

func TestCanDecide(t *testing.T) {
	need := publishedNeed(1)

	assert.True(t, guard.CanDecide(owner, need, pendingResponse()))
	assert.True(t, guard.CanDecide(admin, need, pendingResponse()))
	assert.False(t, guard.CanDecide(responder, need, pendingResponse()))
	assert.False(t, guard.CanDecide(stranger, need, pendingResponse()))

	decided := pendingResponse()
	decided.Status = types.ResponseStatusAccepted
	assert.False(t, guard.CanDecide(owner, need, decided))
	assert.False(t, guard.CanDecide(admin, need, decided))
}

func TestCanViewResponses(t *testing.T) {
	assert.True(t, guard.CanViewResponses(owner, publishedNeed(0)))
	assert.True(t, guard.CanViewResponses(admin, publishedNeed(0)))
	assert.False(t, guard.CanViewResponses(responder, publishedNeed(0)))
}
