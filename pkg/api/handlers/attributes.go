package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/marmos91/attrmeta/internal/logger"
	"github.com/marmos91/attrmeta/pkg/api/auth"
	"github.com/marmos91/attrmeta/pkg/attrmeta"
	"github.com/marmos91/attrmeta/pkg/events"
	"github.com/marmos91/attrmeta/pkg/hooks"
)

// AttributesHandler serves the attribute metadata management surface.
type AttributesHandler struct {
	store  *attrmeta.Store
	bus    *events.Bus
	nonces hooks.NonceIssuer
}

// NewAttributesHandler creates a handler over store and bus. nonces is
// used to mint form tokens for the field endpoint and may be nil.
func NewAttributesHandler(store *attrmeta.Store, bus *events.Bus, nonces hooks.NonceIssuer) *AttributesHandler {
	return &AttributesHandler{
		store:  store,
		bus:    bus,
		nonces: nonces,
	}
}

type metaResponse struct {
	AttributeID int64               `json:"attribute_id"`
	Meta        attrmeta.EntityMeta `json:"meta"`
}

type metaValueResponse struct {
	AttributeID int64          `json:"attribute_id"`
	Key         string         `json:"key"`
	Value       attrmeta.Value `json:"value"`
}

type metaValueRequest struct {
	Value attrmeta.Value `json:"value"`
}

// GetAll handles GET /attributes/{id}/meta.
func (h *AttributesHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	id, ok := attributeIDParam(w, r)
	if !ok {
		return
	}

	WriteJSONOK(w, metaResponse{
		AttributeID: int64(id),
		Meta:        h.store.GetAll(r.Context(), id),
	})
}

// Get handles GET /attributes/{id}/meta/{key}.
func (h *AttributesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := attributeIDParam(w, r)
	if !ok {
		return
	}
	key := chi.URLParam(r, "key")

	value, ok := h.store.Lookup(r.Context(), id, key)
	if !ok {
		NotFound(w, r, "No value stored for this attribute and key")
		return
	}

	WriteJSONOK(w, metaValueResponse{
		AttributeID: int64(id),
		Key:         key,
		Value:       value,
	})
}

// Update handles PUT /attributes/{id}/meta/{key}.
func (h *AttributesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := attributeIDParam(w, r)
	if !ok {
		return
	}
	key := chi.URLParam(r, "key")

	var req metaValueRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	if err := h.store.Update(r.Context(), id, key, req.Value); err != nil {
		logger.ErrorCtx(r.Context(), "failed to update attribute meta",
			logger.AttributeID(int64(id)), logger.MetaKey(key), logger.Err(err))
		InternalServerError(w, r, "Failed to persist metadata")
		return
	}

	WriteJSONOK(w, metaValueResponse{
		AttributeID: int64(id),
		Key:         key,
		Value:       req.Value,
	})
}

// Delete handles DELETE /attributes/{id}/meta/{key}.
func (h *AttributesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := attributeIDParam(w, r)
	if !ok {
		return
	}
	key := chi.URLParam(r, "key")
	if key == "" {
		BadRequest(w, r, "Meta key must not be empty")
		return
	}

	if err := h.store.Delete(r.Context(), id, key); err != nil {
		logger.ErrorCtx(r.Context(), "failed to delete attribute meta",
			logger.AttributeID(int64(id)), logger.MetaKey(key), logger.Err(err))
		InternalServerError(w, r, "Failed to persist metadata")
		return
	}

	WriteNoContent(w)
}

// DeleteAll handles DELETE /attributes/{id}/meta.
func (h *AttributesHandler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	id, ok := attributeIDParam(w, r)
	if !ok {
		return
	}

	if err := h.store.DeleteAll(r.Context(), id); err != nil {
		logger.ErrorCtx(r.Context(), "failed to delete attribute meta",
			logger.AttributeID(int64(id)), logger.Err(err))
		InternalServerError(w, r, "Failed to persist metadata")
		return
	}

	WriteNoContent(w)
}

type fieldResponse struct {
	AttributeID int64  `json:"attribute_id"`
	Enabled     bool   `json:"enabled"`
	HTML        string `json:"html"`
	Nonce       string `json:"nonce,omitempty"`
}

// Field handles GET /attributes/{id}/field. It renders the form field
// through the event bus so the response matches what subscribers emit,
// and mints a fresh form token for the next save.
func (h *AttributesHandler) Field(w http.ResponseWriter, r *http.Request) {
	id, ok := attributeIDParam(w, r)
	if !ok {
		return
	}

	var fragments []string
	ev := events.RenderField{ID: int64(id), Output: &fragments}
	if err := h.bus.PublishRenderField(r.Context(), ev); err != nil {
		logger.ErrorCtx(r.Context(), "failed to render attribute field",
			logger.AttributeID(int64(id)), logger.Err(err))
		InternalServerError(w, r, "Failed to render field")
		return
	}

	resp := fieldResponse{
		AttributeID: int64(id),
		Enabled:     h.store.Enabled(r.Context(), id, hooks.FieldUseInFilter),
		HTML:        strings.Join(fragments, "\n"),
	}
	if h.nonces != nil {
		token, err := h.nonces.Create(hooks.NonceAction)
		if err != nil {
			logger.ErrorCtx(r.Context(), "failed to issue form token", logger.Err(err))
			InternalServerError(w, r, "Failed to issue form token")
			return
		}
		resp.Nonce = token
	}

	WriteJSONOK(w, resp)
}

type lifecycleRequest struct {
	Event   string            `json:"event"`
	OldSlug string            `json:"old_slug,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

type lifecycleResponse struct {
	AttributeID int64  `json:"attribute_id"`
	Event       string `json:"event"`
}

// Lifecycle handles POST /attributes/{id}/lifecycle. It publishes the
// named lifecycle event on the bus, so subscribers see API-driven
// changes the same way they see form submissions. The caller's role
// travels on the context for the subscribers' permission checks.
func (h *AttributesHandler) Lifecycle(w http.ResponseWriter, r *http.Request) {
	id, ok := attributeIDParam(w, r)
	if !ok {
		return
	}

	var req lifecycleRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	ctx := r.Context()
	if claims := auth.ClaimsFromContext(ctx); claims != nil {
		ctx = hooks.WithActor(ctx, claims.Role)
	}

	var err error
	switch req.Event {
	case "created":
		err = h.bus.PublishAttributeCreated(ctx, events.AttributeCreated{
			ID:         int64(id),
			FormFields: req.Fields,
		})
	case "updated":
		err = h.bus.PublishAttributeUpdated(ctx, events.AttributeUpdated{
			ID:         int64(id),
			OldSlug:    req.OldSlug,
			FormFields: req.Fields,
		})
	case "deleted":
		err = h.bus.PublishAttributeDeleted(ctx, events.AttributeDeleted{ID: int64(id)})
	default:
		BadRequest(w, r, "Event must be one of: created, updated, deleted")
		return
	}

	if err != nil {
		logger.WarnCtx(ctx, "lifecycle event handler failed",
			logger.AttributeID(int64(id)), logger.Operation(req.Event), logger.Err(err))
		UnprocessableEntity(w, r, "Event was rejected: "+err.Error())
		return
	}

	WriteJSONOK(w, lifecycleResponse{AttributeID: int64(id), Event: req.Event})
}
