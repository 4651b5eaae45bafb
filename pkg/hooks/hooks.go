// Package hooks subscribes the metadata store to attribute lifecycle
// events. It reproduces the admin-form flow of the host platform: the
// rendered attribute form carries a checkbox and a one-time token, and
// the save handlers persist the checkbox state after checking the
// caller's permission and the token.
package hooks

import (
	"context"
	"fmt"

	"github.com/marmos91/attrmeta/internal/logger"
	"github.com/marmos91/attrmeta/pkg/attrmeta"
	"github.com/marmos91/attrmeta/pkg/events"
)

// FieldUseInFilter is the form field and meta key for the layered-nav
// filter checkbox.
const FieldUseInFilter = "use_in_filter"

// NonceField is the form field carrying the one-time token.
const NonceField = "_attrmeta_nonce"

// NonceAction scopes tokens to the attribute form.
const NonceAction = "attrmeta-save"

// CapabilityManage is the permission required to change attribute
// metadata.
const CapabilityManage = "manage_attributes"

// Authorizer answers permission checks for the acting user.
type Authorizer interface {
	Can(ctx context.Context, capability string) bool
}

// NonceVerifier validates one-time form tokens.
type NonceVerifier interface {
	Verify(token, action string) error
}

// Subscriber wires a metadata store to the event bus.
//
// Save handlers are deliberately lenient about permission: a caller
// without the manage capability gets a silent no-op, matching the host
// platform's hook contract. A missing or invalid token is an error,
// since it indicates a forged or stale form submission.
type Subscriber struct {
	store  *attrmeta.Store
	auth   Authorizer
	nonces NonceVerifier
}

// NewSubscriber creates a subscriber persisting through store, guarded
// by auth and nonces.
func NewSubscriber(store *attrmeta.Store, auth Authorizer, nonces NonceVerifier) *Subscriber {
	return &Subscriber{
		store:  store,
		auth:   auth,
		nonces: nonces,
	}
}

// Register attaches all handlers to bus.
func (s *Subscriber) Register(bus *events.Bus) {
	bus.OnAttributeCreated(s.handleCreated)
	bus.OnAttributeUpdated(s.handleUpdated)
	bus.OnAttributeDeleted(s.handleDeleted)
	bus.OnRenderField(s.handleRenderField)
}

func (s *Subscriber) handleCreated(ctx context.Context, ev events.AttributeCreated) error {
	return s.saveFromForm(ctx, ev.ID, ev.FormFields)
}

func (s *Subscriber) handleUpdated(ctx context.Context, ev events.AttributeUpdated) error {
	return s.saveFromForm(ctx, ev.ID, ev.FormFields)
}

// saveFromForm persists the checkbox state submitted with the form.
// An unchecked checkbox is absent from the submission, so absence
// stores false rather than leaving the old value.
func (s *Subscriber) saveFromForm(ctx context.Context, id int64, fields map[string]string) error {
	if !s.auth.Can(ctx, CapabilityManage) {
		logger.DebugCtx(ctx, "attribute save skipped, caller lacks capability",
			"attribute_id", id,
			"capability", CapabilityManage,
		)
		return nil
	}

	if err := s.nonces.Verify(fields[NonceField], NonceAction); err != nil {
		return fmt.Errorf("attribute form token rejected: %w", err)
	}

	value := attrmeta.ParseBool(fields[FieldUseInFilter])
	return s.store.Update(ctx, attrmeta.AttributeID(id), FieldUseInFilter, value)
}

func (s *Subscriber) handleDeleted(ctx context.Context, ev events.AttributeDeleted) error {
	return s.store.DeleteAll(ctx, attrmeta.AttributeID(ev.ID))
}

// handleRenderField appends the checkbox fragment for the attribute
// form. The fragment carries the current state and a fresh form token
// when the verifier can issue one.
func (s *Subscriber) handleRenderField(ctx context.Context, ev events.RenderField) error {
	if ev.Output == nil {
		return nil
	}

	checked := ""
	if s.store.Enabled(ctx, attrmeta.AttributeID(ev.ID), FieldUseInFilter) {
		checked = " checked"
	}

	fragment := fmt.Sprintf(
		`<input type="checkbox" name=%q value="1"%s>`,
		FieldUseInFilter, checked,
	)
	*ev.Output = append(*ev.Output, fragment)

	if issuer, ok := s.nonces.(NonceIssuer); ok {
		token, err := issuer.Create(NonceAction)
		if err != nil {
			return fmt.Errorf("failed to issue form token: %w", err)
		}
		*ev.Output = append(*ev.Output, fmt.Sprintf(
			`<input type="hidden" name=%q value=%q>`,
			NonceField, token,
		))
	}

	return nil
}

// NonceIssuer is implemented by verifiers that can also mint tokens.
type NonceIssuer interface {
	Create(action string) (string, error)
}
