package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Common attribute keys for store and API operations. Generic keys
// follow OpenTelemetry semantic conventions where applicable.
const (
	// Client attributes
	AttrClientIP   = "client.ip"
	AttrClientAddr = "client.address"

	// Metadata store attributes
	AttrOption      = "meta.option"
	AttrAttributeID = "meta.attribute_id"
	AttrMetaKey     = "meta.key"
	AttrOperation   = "meta.operation"
	AttrStoreType   = "store.type"

	// User/auth attributes
	AttrActor = "user.name"

	// Event bus attributes
	AttrEvent = "event.name"
)

// ClientIP returns an attribute for client IP address
func ClientIP(ip string) attribute.KeyValue {
	return attribute.String(AttrClientIP, ip)
}

// ClientAddr returns an attribute for full client address
func ClientAddr(addr string) attribute.KeyValue {
	return attribute.String(AttrClientAddr, addr)
}

// Option returns an attribute for the option slot name
func Option(name string) attribute.KeyValue {
	return attribute.String(AttrOption, name)
}

// AttributeID returns an attribute for the attribute identifier
func AttributeID(id int64) attribute.KeyValue {
	return attribute.Int64(AttrAttributeID, id)
}

// MetaKey returns an attribute for the metadata key
func MetaKey(key string) attribute.KeyValue {
	return attribute.String(AttrMetaKey, key)
}

// Operation returns an attribute for a store operation name
func Operation(op string) attribute.KeyValue {
	return attribute.String(AttrOperation, op)
}

// StoreType returns an attribute for the provider backend type
func StoreType(t string) attribute.KeyValue {
	return attribute.String(AttrStoreType, t)
}

// Actor returns an attribute for the authenticated subject
func Actor(name string) attribute.KeyValue {
	return attribute.String(AttrActor, name)
}

// Event returns an attribute for an event bus event name
func Event(name string) attribute.KeyValue {
	return attribute.String(AttrEvent, name)
}

// StartStoreSpan starts a span for a metadata store operation.
func StartStoreSpan(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := []attribute.KeyValue{Operation(operation)}
	allAttrs = append(allAttrs, attrs...)
	return StartSpan(ctx, "attrmeta."+operation, trace.WithAttributes(allAttrs...))
}

// StartEventSpan starts a span for event bus dispatch.
func StartEventSpan(ctx context.Context, event string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := []attribute.KeyValue{Event(event)}
	allAttrs = append(allAttrs, attrs...)
	return StartSpan(ctx, "events."+event, trace.WithAttributes(allAttrs...))
}
