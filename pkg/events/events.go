// Package events carries attribute lifecycle notifications from the
// host platform to interested subscribers.
//
// The bus replaces stringly-typed callback registration with typed
// subscription methods: a subscriber that wants attribute updates
// implements a func(context.Context, AttributeUpdated) and registers
// it once. Delivery is synchronous and in registration order, matching
// the hook semantics of the platforms this integrates with.
package events

import (
	"context"
	"sync"

	"github.com/marmos91/attrmeta/internal/telemetry"
)

// AttributeCreated is published after the platform persists a new
// attribute. FormFields carries the raw submitted form values so
// subscribers can pick out their own fields.
type AttributeCreated struct {
	ID         int64
	FormFields map[string]string
}

// AttributeUpdated is published after an existing attribute is saved.
// OldSlug is the attribute's slug before the edit; platforms key
// taxonomy tables by slug, so subscribers tracking renames need it.
type AttributeUpdated struct {
	ID         int64
	OldSlug    string
	FormFields map[string]string
}

// AttributeDeleted is published after an attribute is removed, so
// subscribers can drop any state they keyed by the id.
type AttributeDeleted struct {
	ID int64
}

// RenderField is published while the platform renders the attribute
// add/edit form. Subscribers append their own form controls to Output.
type RenderField struct {
	ID int64

	// Output collects rendered form fragments. Subscribers append to
	// it; the publisher joins and emits the result.
	Output *[]string
}

// Bus dispatches attribute lifecycle events to registered handlers.
//
// Handlers run synchronously on the publishing goroutine, in the order
// they were registered. A handler error does not stop delivery to
// later handlers; Publish returns the first error encountered.
type Bus struct {
	mu        sync.RWMutex
	onCreated []func(context.Context, AttributeCreated) error
	onUpdated []func(context.Context, AttributeUpdated) error
	onDeleted []func(context.Context, AttributeDeleted) error
	onRender  []func(context.Context, RenderField) error
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// OnAttributeCreated registers a handler for AttributeCreated events.
func (b *Bus) OnAttributeCreated(fn func(context.Context, AttributeCreated) error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onCreated = append(b.onCreated, fn)
}

// OnAttributeUpdated registers a handler for AttributeUpdated events.
func (b *Bus) OnAttributeUpdated(fn func(context.Context, AttributeUpdated) error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onUpdated = append(b.onUpdated, fn)
}

// OnAttributeDeleted registers a handler for AttributeDeleted events.
func (b *Bus) OnAttributeDeleted(fn func(context.Context, AttributeDeleted) error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onDeleted = append(b.onDeleted, fn)
}

// OnRenderField registers a handler for RenderField events.
func (b *Bus) OnRenderField(fn func(context.Context, RenderField) error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onRender = append(b.onRender, fn)
}

// PublishAttributeCreated delivers ev to all created handlers.
func (b *Bus) PublishAttributeCreated(ctx context.Context, ev AttributeCreated) error {
	ctx, span := telemetry.StartEventSpan(ctx, "attribute.created", telemetry.AttributeID(ev.ID))
	defer span.End()

	b.mu.RLock()
	handlers := b.onCreated
	b.mu.RUnlock()

	var firstErr error
	for _, fn := range handlers {
		if err := fn(ctx, ev); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		telemetry.RecordError(ctx, firstErr)
	}
	return firstErr
}

// PublishAttributeUpdated delivers ev to all updated handlers.
func (b *Bus) PublishAttributeUpdated(ctx context.Context, ev AttributeUpdated) error {
	ctx, span := telemetry.StartEventSpan(ctx, "attribute.updated", telemetry.AttributeID(ev.ID))
	defer span.End()

	b.mu.RLock()
	handlers := b.onUpdated
	b.mu.RUnlock()

	var firstErr error
	for _, fn := range handlers {
		if err := fn(ctx, ev); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		telemetry.RecordError(ctx, firstErr)
	}
	return firstErr
}

// PublishAttributeDeleted delivers ev to all deleted handlers.
func (b *Bus) PublishAttributeDeleted(ctx context.Context, ev AttributeDeleted) error {
	ctx, span := telemetry.StartEventSpan(ctx, "attribute.deleted", telemetry.AttributeID(ev.ID))
	defer span.End()

	b.mu.RLock()
	handlers := b.onDeleted
	b.mu.RUnlock()

	var firstErr error
	for _, fn := range handlers {
		if err := fn(ctx, ev); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		telemetry.RecordError(ctx, firstErr)
	}
	return firstErr
}

// PublishRenderField delivers ev to all render handlers.
func (b *Bus) PublishRenderField(ctx context.Context, ev RenderField) error {
	ctx, span := telemetry.StartEventSpan(ctx, "attribute.render_field", telemetry.AttributeID(ev.ID))
	defer span.End()

	b.mu.RLock()
	handlers := b.onRender
	b.mu.RUnlock()

	var firstErr error
	for _, fn := range handlers {
		if err := fn(ctx, ev); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		telemetry.RecordError(ctx, firstErr)
	}
	return firstErr
}
