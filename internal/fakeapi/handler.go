package fakeapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"

	"github.com/Rrens/chat-client/internal/api/response"
	"github.com/Rrens/chat-client/internal/domain"
)

const maxUploadSize = 32 << 20

// fieldError mirrors one entry of a 422 validation detail list
type fieldError struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

// decodeAndValidate reads a JSON body into v. It writes the error response
// itself and reports whether the handler may continue.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		response.UnprocessableEntity(w, []fieldError{{
			Loc:  []string{"body"},
			Msg:  "invalid request body",
			Type: "value_error.jsondecode",
		}})
		return false
	}
	return validateInput(w, v)
}

func validateInput(w http.ResponseWriter, v any) bool {
	err := domain.Validate(v)
	if err == nil {
		return true
	}

	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		response.BadRequest(w, err.Error())
		return false
	}

	fields := make([]string, 0, len(verr.Fields))
	for field := range verr.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	detail := make([]fieldError, 0, len(fields))
	for _, field := range fields {
		detail = append(detail, fieldError{
			Loc:  []string{"body", field},
			Msg:  verr.Fields[field],
			Type: "value_error",
		})
	}
	response.UnprocessableEntity(w, detail)
	return false
}

func (s *Server) listModels(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	models := append([]domain.Model{}, s.models...)
	s.mu.Unlock()

	response.OK(w, models)
}
