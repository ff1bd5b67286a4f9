package server

import (
	"net/http"

	"helplink/pkg/types"

	"github.com/alexedwards/flow"
)

type statusPayload struct {
	Status string `json:"status"`
}

func (s *Service) handleAdminListNeeds(w http.ResponseWriter, r *http.Request) {
	actor := s.actorFromContext(r.Context())

	var q types.NeedQuery
	if err := decodeQuery(r.URL.Query(), &q); err != nil {
		s.respondError(w, err)
		return
	}

	page, err := s.engine.Admin().ListNeeds(r.Context(), actor, q)
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondData(w, http.StatusOK, s.presentNeedPage(page))
}

func (s *Service) handleAdminGetNeed(w http.ResponseWriter, r *http.Request) {
	actor := s.actorFromContext(r.Context())

	need, err := s.engine.Admin().Need(r.Context(), actor, flow.Param(r.Context(), "id"))
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondData(w, http.StatusOK, s.presentNeed(need))
}

func (s *Service) handleAdminUpdateNeed(w http.ResponseWriter, r *http.Request) {
	actor := s.actorFromContext(r.Context())

	var input types.UpdateNeedInput
	if err := s.decodeJSON(r, &input); err != nil {
		s.respondError(w, err)
		return
	}

	need, err := s.engine.Admin().UpdateNeed(r.Context(), actor, flow.Param(r.Context(), "id"), input)
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondData(w, http.StatusOK, s.presentNeed(need))
}

func (s *Service) handleAdminSetNeedStatus(w http.ResponseWriter, r *http.Request) {
	actor := s.actorFromContext(r.Context())

	var payload statusPayload
	if err := s.decodeJSON(r, &payload); err != nil {
		s.respondError(w, err)
		return
	}

	need, err := s.engine.Admin().SetNeedStatus(r.Context(), actor, flow.Param(r.Context(), "id"), types.NeedStatus(payload.Status))
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondData(w, http.StatusOK, s.presentNeed(need))
}

func (s *Service) handleAdminDeleteNeed(w http.ResponseWriter, r *http.Request) {
	actor := s.actorFromContext(r.Context())

	need, err := s.engine.Admin().DeleteNeed(r.Context(), actor, flow.Param(r.Context(), "id"))
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondData(w, http.StatusOK, s.presentNeed(need))
}

func (s *Service) handleAdminListResponses(w http.ResponseWriter, r *http.Request) {
	actor := s.actorFromContext(r.Context())

	var q types.ResponseQuery
	if err := decodeQuery(r.URL.Query(), &q); err != nil {
		s.respondError(w, err)
		return
	}

	page, err := s.engine.Admin().ListResponses(r.Context(), actor, q)
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondData(w, http.StatusOK, s.presentResponsePage(page))
}

func (s *Service) handleAdminGetResponse(w http.ResponseWriter, r *http.Request) {
	actor := s.actorFromContext(r.Context())

	response, err := s.engine.Admin().Response(r.Context(), actor, flow.Param(r.Context(), "id"))
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondData(w, http.StatusOK, s.presentResponse(response))
}

func (s *Service) handleAdminUpdateResponse(w http.ResponseWriter, r *http.Request) {
	actor := s.actorFromContext(r.Context())

	var input types.UpdateResponseInput
	if err := s.decodeJSON(r, &input); err != nil {
		s.respondError(w, err)
		return
	}

	response, err := s.engine.Admin().UpdateResponse(r.Context(), actor, flow.Param(r.Context(), "id"), input)
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondData(w, http.StatusOK, s.presentResponse(response))
}

func (s *Service) handleAdminSetResponseStatus(w http.ResponseWriter, r *http.Request) {
	actor := s.actorFromContext(r.Context())

	var payload statusPayload
	if err := s.decodeJSON(r, &payload); err != nil {
		s.respondError(w, err)
		return
	}

	response, err := s.engine.Admin().SetResponseStatus(r.Context(), actor, flow.Param(r.Context(), "id"), types.ResponseStatus(payload.Status))
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondData(w, http.StatusOK, s.presentResponse(response))
}

func (s *Service) handleAdminDeleteResponse(w http.ResponseWriter, r *http.Request) {
	actor := s.actorFromContext(r.Context())

	response, err := s.engine.Admin().DeleteResponse(r.Context(), actor, flow.Param(r.Context(), "id"))
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondData(w, http.StatusOK, s.presentResponse(response))
}

func (s *Service) handleAdminListUsers(w http.ResponseWriter, r *http.Request) {
	actor := s.actorFromContext(r.Context())

	var q types.UserQuery
	if err := decodeQuery(r.URL.Query(), &q); err != nil {
		s.respondError(w, err)
		return
	}

	page, err := s.engine.Admin().ListUsers(r.Context(), actor, q)
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondData(w, http.StatusOK, page)
}

func (s *Service) handleAdminGetUser(w http.ResponseWriter, r *http.Request) {
	actor := s.actorFromContext(r.Context())

	user, err := s.engine.Admin().User(r.Context(), actor, flow.Param(r.Context(), "id"))
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondData(w, http.StatusOK, user)
}

func (s *Service) handleAdminListRegions(w http.ResponseWriter, r *http.Request) {
	actor := s.actorFromContext(r.Context())

	var q types.RegionQuery
	if err := decodeQuery(r.URL.Query(), &q); err != nil {
		s.respondError(w, err)
		return
	}

	page, err := s.engine.Admin().ListRegions(r.Context(), actor, q)
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondData(w, http.StatusOK, page)
}

func (s *Service) handleAdminCreateRegion(w http.ResponseWriter, r *http.Request) {
	actor := s.actorFromContext(r.Context())

	var input types.RegionInput
	if err := s.decodeJSON(r, &input); err != nil {
		s.respondError(w, err)
		return
	}

	region, err := s.engine.Admin().CreateRegion(r.Context(), actor, input)
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondData(w, http.StatusCreated, region)
}

func (s *Service) handleAdminUpdateRegion(w http.ResponseWriter, r *http.Request) {
	actor := s.actorFromContext(r.Context())

	var input types.RegionInput
	if err := s.decodeJSON(r, &input); err != nil {
		s.respondError(w, err)
		return
	}

	region, err := s.engine.Admin().UpdateRegion(r.Context(), actor, flow.Param(r.Context(), "id"), input)
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondData(w, http.StatusOK, region)
}

func (s *Service) handleAdminDeleteRegion(w http.ResponseWriter, r *http.Request) {
	actor := s.actorFromContext(r.Context())

	if err := s.engine.Admin().DeleteRegion(r.Context(), actor, flow.Param(r.Context(), "id")); err != nil {
		s.respondError(w, err)
		return
	}

	s.respondData(w, http.StatusOK, nil)
}

func (s *Service) handleAdminProvinces(w http.ResponseWriter, r *http.Request) {
	actor := s.actorFromContext(r.Context())

	provinces, err := s.engine.Admin().Provinces(r.Context(), actor)
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondData(w, http.StatusOK, provinces)
}

func (s *Service) handleAdminCities(w http.ResponseWriter, r *http.Request) {
	actor := s.actorFromContext(r.Context())

	cities, err := s.engine.Admin().Cities(r.Context(), actor, r.URL.Query().Get("province"))
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondData(w, http.StatusOK, cities)
}
