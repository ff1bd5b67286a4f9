package server

import (
	"net/http"

	"helplink/pkg/types"

	"github.com/alexedwards/flow"
)

func (s *Service) handleListRegions(w http.ResponseWriter, r *http.Request) {
	var q types.RegionQuery
	if err := decodeQuery(r.URL.Query(), &q); err != nil {
		s.respondError(w, err)
		return
	}

	regions, err := s.engine.ListRegions(r.Context(), q)
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondData(w, http.StatusOK, regions)
}

func (s *Service) handleGetRegion(w http.ResponseWriter, r *http.Request) {
	region, err := s.engine.Region(r.Context(), flow.Param(r.Context(), "id"))
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondData(w, http.StatusOK, region)
}
