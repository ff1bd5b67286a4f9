package server

import (
	"net/http"

	"helplink/pkg/types"

	"github.com/alexedwards/flow"
)

func (s *Service) handleCreateResponse(w http.ResponseWriter, r *http.Request) {
	actor := s.actorFromContext(r.Context())

	var input types.CreateResponseInput
	if err := s.decodeJSON(r, &input); err != nil {
		s.respondError(w, err)
		return
	}

	if err := s.verifyMediaRefs(r.Context(), input.Images, input.Videos); err != nil {
		s.respondError(w, err)
		return
	}

	response, err := s.engine.CreateResponse(r.Context(), actor, input)
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondData(w, http.StatusCreated, s.presentResponse(response))
}

func (s *Service) handleMyResponses(w http.ResponseWriter, r *http.Request) {
	actor := s.actorFromContext(r.Context())

	responses, err := s.engine.ResponsesByResponder(r.Context(), actor, r.URL.Query().Get("status"))
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondData(w, http.StatusOK, s.presentResponses(responses))
}

func (s *Service) handleMyAcceptedResponses(w http.ResponseWriter, r *http.Request) {
	actor := s.actorFromContext(r.Context())

	responses, err := s.engine.AcceptedResponsesByResponder(r.Context(), actor)
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondData(w, http.StatusOK, s.presentResponses(responses))
}

func (s *Service) handleResponsesByNeed(w http.ResponseWriter, r *http.Request) {
	actor := s.actorFromContext(r.Context())

	responses, err := s.engine.ResponsesByNeed(r.Context(), actor, flow.Param(r.Context(), "id"))
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondData(w, http.StatusOK, s.presentResponses(responses))
}

func (s *Service) handleUpdateResponse(w http.ResponseWriter, r *http.Request) {
	actor := s.actorFromContext(r.Context())

	var input types.UpdateResponseInput
	if err := s.decodeJSON(r, &input); err != nil {
		s.respondError(w, err)
		return
	}

	if err := s.verifyMediaRefsPtr(r.Context(), input.Images, input.Videos); err != nil {
		s.respondError(w, err)
		return
	}

	response, err := s.engine.EditResponse(r.Context(), actor, flow.Param(r.Context(), "id"), input)
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondData(w, http.StatusOK, s.presentResponse(response))
}

func (s *Service) handleCancelResponse(w http.ResponseWriter, r *http.Request) {
	actor := s.actorFromContext(r.Context())

	response, err := s.engine.CancelResponse(r.Context(), actor, flow.Param(r.Context(), "id"))
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondData(w, http.StatusOK, s.presentResponse(response))
}

func (s *Service) handleAcceptResponse(w http.ResponseWriter, r *http.Request) {
	actor := s.actorFromContext(r.Context())

	response, err := s.engine.AcceptResponse(r.Context(), actor, flow.Param(r.Context(), "id"))
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondData(w, http.StatusOK, s.presentResponse(response))
}

func (s *Service) handleRejectResponse(w http.ResponseWriter, r *http.Request) {
	actor := s.actorFromContext(r.Context())

	response, err := s.engine.RejectResponse(r.Context(), actor, flow.Param(r.Context(), "id"))
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondData(w, http.StatusOK, s.presentResponse(response))
}
