package response

import (
	"encoding/json"
	"net/http"
	"strings"
)

// ErrorBody is the error envelope of the backend: {"detail": ...}. Detail is
// either a string or a list of field errors.
type ErrorBody struct {
	Detail any `json:"detail"`
}

// JSON sends a JSON response
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Error sends an error response
func Error(w http.ResponseWriter, status int, detail any) {
	JSON(w, status, ErrorBody{Detail: detail})
}

// OK sends a 200 OK response with data
func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, data)
}

// Message sends the confirmation body used by delete endpoints
func Message(w http.ResponseWriter, msg string) {
	JSON(w, http.StatusOK, map[string]string{"message": msg})
}

// BadRequest sends a 400 Bad Request response
func BadRequest(w http.ResponseWriter, detail any) {
	Error(w, http.StatusBadRequest, detail)
}

// Unauthorized sends a 401 Unauthorized response
func Unauthorized(w http.ResponseWriter, detail any) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	Error(w, http.StatusUnauthorized, detail)
}

// NotFound sends a 404 Not Found response
func NotFound(w http.ResponseWriter, detail any) {
	Error(w, http.StatusNotFound, detail)
}

// UnprocessableEntity sends a 422 response
func UnprocessableEntity(w http.ResponseWriter, detail any) {
	Error(w, http.StatusUnprocessableEntity, detail)
}

// InternalError sends a 500 Internal Server Error response
func InternalError(w http.ResponseWriter, detail any) {
	Error(w, http.StatusInternalServerError, detail)
}

// Detail extracts a human readable message from an error body. It returns
// "" when the body carries no usable detail.
func Detail(body []byte) string {
	var eb ErrorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return ""
	}

	switch d := eb.Detail.(type) {
	case string:
		return d
	case []any:
		msgs := make([]string, 0, len(d))
		for _, item := range d {
			entry, ok := item.(map[string]any)
			if !ok {
				continue
			}
			msg, _ := entry["msg"].(string)
			if msg == "" {
				continue
			}
			if field := fieldName(entry["loc"]); field != "" {
				msg = field + ": " + msg
			}
			msgs = append(msgs, msg)
		}
		return strings.Join(msgs, "; ")
	case map[string]any:
		// field -> message maps
		msgs := make([]string, 0, len(d))
		for field, v := range d {
			if s, ok := v.(string); ok {
				msgs = append(msgs, field+": "+s)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}

// fieldName returns the last element of a FastAPI error location
func fieldName(loc any) string {
	parts, ok := loc.([]any)
	if !ok || len(parts) == 0 {
		return ""
	}
	if s, ok := parts[len(parts)-1].(string); ok {
		return s
	}
	return ""
}
