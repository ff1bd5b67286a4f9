package server

import (
	"net/http"

	"helplink/pkg/types"

	"github.com/alexedwards/flow"
)

func (s *Service) handleCreateNeed(w http.ResponseWriter, r *http.Request) {
	actor := s.actorFromContext(r.Context())

	var input types.CreateNeedInput
	if err := s.decodeJSON(r, &input); err != nil {
		s.respondError(w, err)
		return
	}

	if err := s.verifyMediaRefs(r.Context(), input.Images, input.Videos); err != nil {
		s.respondError(w, err)
		return
	}

	need, err := s.engine.CreateNeed(r.Context(), actor, input)
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondData(w, http.StatusCreated, s.presentNeed(need))
}

func (s *Service) handleListNeeds(w http.ResponseWriter, r *http.Request) {
	var q types.NeedQuery
	if err := decodeQuery(r.URL.Query(), &q); err != nil {
		s.respondError(w, err)
		return
	}

	page, err := s.engine.ListNeeds(r.Context(), q)
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondData(w, http.StatusOK, s.presentNeedPage(page))
}

func (s *Service) handleMyNeeds(w http.ResponseWriter, r *http.Request) {
	actor := s.actorFromContext(r.Context())

	needs, err := s.engine.NeedsByOwner(r.Context(), actor)
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondData(w, http.StatusOK, s.presentNeeds(needs))
}

func (s *Service) handleGetNeed(w http.ResponseWriter, r *http.Request) {
	need, err := s.engine.Need(r.Context(), flow.Param(r.Context(), "id"))
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondData(w, http.StatusOK, s.presentNeed(need))
}

func (s *Service) handleUpdateNeed(w http.ResponseWriter, r *http.Request) {
	actor := s.actorFromContext(r.Context())

	var input types.UpdateNeedInput
	if err := s.decodeJSON(r, &input); err != nil {
		s.respondError(w, err)
		return
	}

	if err := s.verifyMediaRefsPtr(r.Context(), input.Images, input.Videos); err != nil {
		s.respondError(w, err)
		return
	}

	need, err := s.engine.EditNeed(r.Context(), actor, flow.Param(r.Context(), "id"), input)
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondData(w, http.StatusOK, s.presentNeed(need))
}

func (s *Service) handleCancelNeed(w http.ResponseWriter, r *http.Request) {
	actor := s.actorFromContext(r.Context())

	need, err := s.engine.CancelNeed(r.Context(), actor, flow.Param(r.Context(), "id"))
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondData(w, http.StatusOK, s.presentNeed(need))
}
