package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"helplink/pkg/types"
)

// envelope is the wire shape every endpoint answers with. Code mirrors the
// HTTP status; Errors is set for validation failures only.
type envelope struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Data    any               `json:"data,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

func (s *Service) respondData(w http.ResponseWriter, status int, data any) {
	s.writeJSON(w, status, envelope{Code: status, Message: "success", Data: data})
}

func (s *Service) respondMessage(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, envelope{Code: status, Message: message})
}

// respondError maps a domain error kind to its HTTP status. State conflicts
// answer 400, matching the original wire behavior.
func (s *Service) respondError(w http.ResponseWriter, err error) {
	var domainErr *types.Error
	if !errors.As(err, &domainErr) {
		s.logger.WithError(err).Error("unhandled error")
		s.writeJSON(w, http.StatusInternalServerError, envelope{
			Code:    http.StatusInternalServerError,
			Message: "服务器内部错误",
		})
		return
	}

	switch domainErr.Kind {
	case types.ErrorKindValidation:
		s.writeJSON(w, http.StatusBadRequest, envelope{
			Code:    http.StatusBadRequest,
			Message: domainErr.Message,
			Errors:  domainErr.Fields,
		})
	case types.ErrorKindPermissionDenied:
		s.writeJSON(w, http.StatusForbidden, envelope{
			Code:    http.StatusForbidden,
			Message: domainErr.Message,
		})
	case types.ErrorKindNotFound:
		s.writeJSON(w, http.StatusNotFound, envelope{
			Code:    http.StatusNotFound,
			Message: domainErr.Message,
		})
	case types.ErrorKindConflict:
		s.writeJSON(w, http.StatusBadRequest, envelope{
			Code:    http.StatusBadRequest,
			Message: domainErr.Message,
		})
	default:
		s.writeJSON(w, http.StatusInternalServerError, envelope{
			Code:    http.StatusInternalServerError,
			Message: "服务器内部错误",
		})
	}
}

func (s *Service) writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.WithError(err).Error("failed to encode response body")
	}
}

func (s *Service) decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return types.NewValidationError(map[string]string{"body": "请求体格式错误"})
	}
	return nil
}

func decodeQuery(values url.Values, dst any) error {
	if err := decoder.Decode(dst, values); err != nil {
		return types.NewValidationError(map[string]string{"query": "查询参数格式错误"})
	}
	return nil
}
