package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/marmos91/attrmeta/pkg/attrmeta"
)

// decodeJSONBody decodes the request body into v. Writes a 400 problem
// response and returns false on failure.
func decodeJSONBody(w http.ResponseWriter, r *http.Request, v any) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(v); err != nil {
		BadRequest(w, r, "Invalid JSON body: "+err.Error())
		return false
	}
	return true
}

// attributeIDParam parses the {id} URL parameter as a positive attribute
// id. Writes a 400 problem response and returns false on failure.
func attributeIDParam(w http.ResponseWriter, r *http.Request) (attrmeta.AttributeID, bool) {
	raw := chi.URLParam(r, "id")
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		BadRequest(w, r, "Attribute id must be an integer")
		return 0, false
	}

	id := attrmeta.AttributeID(n)
	if !id.Valid() {
		BadRequest(w, r, "Attribute id must be positive")
		return 0, false
	}
	return id, true
}
