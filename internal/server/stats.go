package server

import (
	"net/http"

	"helplink/pkg/types"
)

func (s *Service) handleMonthlyStatistics(w http.ResponseWriter, r *http.Request) {
	var q types.StatsQuery
	if err := decodeQuery(r.URL.Query(), &q); err != nil {
		s.respondError(w, err)
		return
	}

	report, err := s.stats.Monthly(r.Context(), q)
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondData(w, http.StatusOK, report)
}

func (s *Service) handleStatisticsOverview(w http.ResponseWriter, r *http.Request) {
	actor := s.actorFromContext(r.Context())

	totals, err := s.stats.Overview(r.Context(), actor)
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondData(w, http.StatusOK, totals)
}
