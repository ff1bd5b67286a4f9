// Package server exposes the lifecycle engine as a JSON API. Routing,
// session verification and the response envelope live here; all domain
// decisions belong to the engine.
package server

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"helplink/internal/engine"
	"helplink/internal/metrics"
	"helplink/internal/stats"
	"helplink/internal/storage"
	"helplink/pkg/types"

	"github.com/alexedwards/flow"
	"github.com/go-playground/form/v4"
	"github.com/gorilla/securecookie"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/sirupsen/logrus"
)

var decoder = form.NewDecoder()

type Service struct {
	logger  *logrus.Logger
	config  *types.Config
	engine  *engine.Engine
	stats   *stats.Service
	media   *storage.MediaStore
	metrics *metrics.Metrics

	cookie *securecookie.SecureCookie

	jwksCache *jwk.Cache
	jwksURL   string

	server *http.Server
}

func New(
	config *types.Config,
	logger *logrus.Logger,
	eng *engine.Engine,
	statsSvc *stats.Service,
	media *storage.MediaStore,
	m *metrics.Metrics,
	jwkCache *jwk.Cache,
	jwksURL string,
) (*Service, error) {
	mux := flow.New()

	hashKey, _ := base64.StdEncoding.DecodeString(config.CookieHashKey)
	blockKey, _ := base64.StdEncoding.DecodeString(config.CookieBlockKey)

	s := &Service{
		logger:  logger,
		config:  config,
		engine:  eng,
		stats:   statsSvc,
		media:   media,
		metrics: m,
		cookie:  securecookie.New(hashKey, blockKey),

		jwksCache: jwkCache,
		jwksURL:   jwksURL,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", config.ServerPort),
			Handler:           mux,
			ReadTimeout:       time.Duration(config.ReadTimeoutSec) * time.Second,
			ReadHeaderTimeout: time.Duration(config.ReadTimeoutSec) * time.Second,
			WriteTimeout:      time.Duration(config.WriteTimeoutSec) * time.Second,
			MaxHeaderBytes:    1 << 20,
		},
	}

	s.buildRouter(mux)

	return s, nil
}

func (s *Service) Start() error {
	return s.server.ListenAndServe()
}

func (s *Service) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Service) buildRouter(r *flow.Mux) {
	r.Use(s.StripTrailingSlash)
	r.Use(s.LoggingMiddleware)

	r.HandleFunc("/healthz", s.handleHealth, http.MethodGet)
	r.Handle("/metrics", s.metrics.Handler(), http.MethodGet)

	r.Group(func(r *flow.Mux) {
		r.Use(s.RequireAuth)

		r.HandleFunc("/needs", s.handleListNeeds, http.MethodGet)
		r.HandleFunc("/needs", s.handleCreateNeed, http.MethodPost)
		r.HandleFunc("/needs/my", s.handleMyNeeds, http.MethodGet)
		r.HandleFunc("/needs/:id", s.handleGetNeed, http.MethodGet)
		r.HandleFunc("/needs/:id", s.handleUpdateNeed, http.MethodPut)
		r.HandleFunc("/needs/:id", s.handleCancelNeed, http.MethodDelete)

		r.HandleFunc("/responses", s.handleCreateResponse, http.MethodPost)
		r.HandleFunc("/responses/my", s.handleMyResponses, http.MethodGet)
		r.HandleFunc("/responses/my/accepted", s.handleMyAcceptedResponses, http.MethodGet)
		r.HandleFunc("/responses/need/:id", s.handleResponsesByNeed, http.MethodGet)
		r.HandleFunc("/responses/:id", s.handleUpdateResponse, http.MethodPut)
		r.HandleFunc("/responses/:id", s.handleCancelResponse, http.MethodDelete)
		r.HandleFunc("/responses/:id/accept", s.handleAcceptResponse, http.MethodPost)
		r.HandleFunc("/responses/:id/reject", s.handleRejectResponse, http.MethodPost)

		r.HandleFunc("/regions", s.handleListRegions, http.MethodGet)
		r.HandleFunc("/regions/:id", s.handleGetRegion, http.MethodGet)

		r.HandleFunc("/statistics/monthly", s.handleMonthlyStatistics, http.MethodGet)
		r.HandleFunc("/statistics/overview", s.handleStatisticsOverview, http.MethodGet)

		r.HandleFunc("/admin/needs", s.handleAdminListNeeds, http.MethodGet)
		r.HandleFunc("/admin/needs/:id", s.handleAdminGetNeed, http.MethodGet)
		r.HandleFunc("/admin/needs/:id", s.handleAdminUpdateNeed, http.MethodPut)
		r.HandleFunc("/admin/needs/:id/status", s.handleAdminSetNeedStatus, http.MethodPost)
		r.HandleFunc("/admin/needs/:id", s.handleAdminDeleteNeed, http.MethodDelete)

		r.HandleFunc("/admin/responses", s.handleAdminListResponses, http.MethodGet)
		r.HandleFunc("/admin/responses/:id", s.handleAdminGetResponse, http.MethodGet)
		r.HandleFunc("/admin/responses/:id", s.handleAdminUpdateResponse, http.MethodPut)
		r.HandleFunc("/admin/responses/:id/status", s.handleAdminSetResponseStatus, http.MethodPost)
		r.HandleFunc("/admin/responses/:id", s.handleAdminDeleteResponse, http.MethodDelete)

		r.HandleFunc("/admin/users", s.handleAdminListUsers, http.MethodGet)
		r.HandleFunc("/admin/users/:id", s.handleAdminGetUser, http.MethodGet)

		r.HandleFunc("/admin/regions", s.handleAdminListRegions, http.MethodGet)
		r.HandleFunc("/admin/regions", s.handleAdminCreateRegion, http.MethodPost)
		r.HandleFunc("/admin/regions/provinces", s.handleAdminProvinces, http.MethodGet)
		r.HandleFunc("/admin/regions/cities", s.handleAdminCities, http.MethodGet)
		r.HandleFunc("/admin/regions/:id", s.handleAdminUpdateRegion, http.MethodPut)
		r.HandleFunc("/admin/regions/:id", s.handleAdminDeleteRegion, http.MethodDelete)
	})
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.respondData(w, http.StatusOK, map[string]string{"status": "ok"})
}
