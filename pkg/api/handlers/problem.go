// Package handlers implements the HTTP handlers for the admin API.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/marmos91/attrmeta/internal/logger"
)

// ContentTypeProblemJSON is the media type for RFC 7807 problem responses.
const ContentTypeProblemJSON = "application/problem+json"

// Problem is an RFC 7807 problem details response body.
type Problem struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
}

// WriteProblem writes an RFC 7807 problem response.
func WriteProblem(w http.ResponseWriter, r *http.Request, status int, title, detail string) {
	problem := Problem{
		Type:     "about:blank",
		Title:    title,
		Status:   status,
		Detail:   detail,
		Instance: r.URL.Path,
	}

	w.Header().Set("Content-Type", ContentTypeProblemJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem); err != nil {
		logger.Error("failed to encode problem response", logger.Err(err))
	}
}

// BadRequest writes a 400 problem response.
func BadRequest(w http.ResponseWriter, r *http.Request, detail string) {
	WriteProblem(w, r, http.StatusBadRequest, "Bad Request", detail)
}

// Unauthorized writes a 401 problem response.
func Unauthorized(w http.ResponseWriter, r *http.Request, detail string) {
	WriteProblem(w, r, http.StatusUnauthorized, "Unauthorized", detail)
}

// Forbidden writes a 403 problem response.
func Forbidden(w http.ResponseWriter, r *http.Request, detail string) {
	WriteProblem(w, r, http.StatusForbidden, "Forbidden", detail)
}

// NotFound writes a 404 problem response.
func NotFound(w http.ResponseWriter, r *http.Request, detail string) {
	WriteProblem(w, r, http.StatusNotFound, "Not Found", detail)
}

// Conflict writes a 409 problem response.
func Conflict(w http.ResponseWriter, r *http.Request, detail string) {
	WriteProblem(w, r, http.StatusConflict, "Conflict", detail)
}

// UnprocessableEntity writes a 422 problem response.
func UnprocessableEntity(w http.ResponseWriter, r *http.Request, detail string) {
	WriteProblem(w, r, http.StatusUnprocessableEntity, "Unprocessable Entity", detail)
}

// InternalServerError writes a 500 problem response.
func InternalServerError(w http.ResponseWriter, r *http.Request, detail string) {
	WriteProblem(w, r, http.StatusInternalServerError, "Internal Server Error", detail)
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			logger.Error("failed to encode JSON response", logger.Err(err))
		}
	}
}

// WriteJSONOK writes a 200 JSON response.
func WriteJSONOK(w http.ResponseWriter, v any) {
	WriteJSON(w, http.StatusOK, v)
}

// WriteJSONCreated writes a 201 JSON response.
func WriteJSONCreated(w http.ResponseWriter, v any) {
	WriteJSON(w, http.StatusCreated, v)
}

// WriteNoContent writes a 204 response.
func WriteNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}
