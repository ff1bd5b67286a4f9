// Package engine orchestrates the need/response lifecycle: it runs every
// public operation as guard check → conditional store write → derived count
// read, and owns the error taxonomy surfaced to callers.
package engine

import (
	"context"
	"time"

	"helplink/internal/metrics"
	"helplink/pkg/types"

	"github.com/sirupsen/logrus"
)

// NeedStore is the persistence surface the engine needs for Need entities.
// Status changes go through UpdateStatus, a conditional update keyed on the
// current status: implementations must fail with a Conflict error when the
// stored status no longer matches from, so concurrent transitions cannot
// both win.
type NeedStore interface {
	Need(ctx context.Context, needID string) (*types.Need, error)
	Create(ctx context.Context, need *types.Need) error
	Update(ctx context.Context, need *types.Need) error
	UpdateStatus(ctx context.Context, needID string, from, to types.NeedStatus) error
	List(ctx context.Context, q types.NeedQuery) ([]*types.Need, int, error)
	ByOwner(ctx context.Context, userID string) ([]*types.Need, error)
}

// ResponseStore mirrors NeedStore for Response entities. Accept performs the
// conditional PENDING→ACCEPTED update and the accepted-match insert as one
// atomic unit.
type ResponseStore interface {
	Response(ctx context.Context, responseID string) (*types.Response, error)
	Create(ctx context.Context, response *types.Response) error
	Update(ctx context.Context, response *types.Response) error
	UpdateStatus(ctx context.Context, responseID string, from, to types.ResponseStatus) error
	Accept(ctx context.Context, responseID string, match *types.AcceptedMatch) error
	ByNeed(ctx context.Context, needID string, includeCancelled bool) ([]*types.Response, error)
	ByResponder(ctx context.Context, userID string, status *types.ResponseStatus) ([]*types.Response, error)
	List(ctx context.Context, q types.ResponseQuery) ([]*types.Response, int, error)
	HasActive(ctx context.Context, needID, userID string) (bool, error)
	CountsByNeed(ctx context.Context, needID string) (total, accepted int, err error)
}

type RegionStore interface {
	Region(ctx context.Context, regionID string) (*types.Region, error)
	Create(ctx context.Context, region *types.Region) error
	Update(ctx context.Context, region *types.Region) error
	// Delete fails with a Conflict error while any need references the region.
	Delete(ctx context.Context, regionID string) error
	List(ctx context.Context, q types.RegionQuery) ([]*types.Region, int, error)
	Provinces(ctx context.Context) ([]string, error)
	Cities(ctx context.Context, province string) ([]string, error)
}

type UserStore interface {
	User(ctx context.Context, userID string) (*types.User, error)
	UpsertIdentity(ctx context.Context, user *types.User) error
	List(ctx context.Context, q types.UserQuery) ([]*types.User, int, error)
}

type Engine struct {
	needs     NeedStore
	responses ResponseStore
	regions   RegionStore
	users     UserStore

	projector *CountProjector

	logger  *logrus.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

func New(
	needs NeedStore,
	responses ResponseStore,
	regions RegionStore,
	users UserStore,
	logger *logrus.Logger,
	m *metrics.Metrics,
) *Engine {
	if logger == nil {
		logger = logrus.New()
	}

	return &Engine{
		needs:     needs,
		responses: responses,
		regions:   regions,
		users:     users,
		projector: &CountProjector{responses: responses},
		logger:    logger,
		metrics:   m,
		now:       time.Now,
	}
}

func (e *Engine) Projector() *CountProjector {
	return e.projector
}

// SyncIdentity upserts the verified identity claims into the local user
// record. Called by the session middleware after token verification.
func (e *Engine) SyncIdentity(ctx context.Context, user *types.User) error {
	return e.users.UpsertIdentity(ctx, user)
}

func (e *Engine) User(ctx context.Context, userID string) (*types.User, error) {
	return e.users.User(ctx, userID)
}
