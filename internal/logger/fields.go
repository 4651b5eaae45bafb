package logger

import "log/slog"

// Standard field keys for structured logging. Use these consistently
// across all log statements so aggregated logs stay queryable.
const (
	// Distributed tracing
	KeyTraceID = "trace_id"
	KeySpanID  = "span_id"

	// HTTP request handling
	KeyRequestID = "request_id"
	KeyClientIP  = "client_ip"
	KeyActor     = "actor"
	KeyMethod    = "method"
	KeyRoute     = "route"
	KeyStatus    = "status"

	// Metadata store
	KeyOption      = "option"
	KeyAttributeID = "attribute_id"
	KeyMetaKey     = "meta_key"
	KeyStoreType   = "store_type"
	KeyOperation   = "operation"

	// Operation metadata
	KeyDurationMs = "duration_ms"
	KeyError      = "error"
)

// TraceID returns a slog.Attr for OpenTelemetry trace ID
func TraceID(id string) slog.Attr {
	return slog.String(KeyTraceID, id)
}

// SpanID returns a slog.Attr for OpenTelemetry span ID
func SpanID(id string) slog.Attr {
	return slog.String(KeySpanID, id)
}

// RequestID returns a slog.Attr for the HTTP request ID
func RequestID(id string) slog.Attr {
	return slog.String(KeyRequestID, id)
}

// ClientIP returns a slog.Attr for client IP address
func ClientIP(addr string) slog.Attr {
	return slog.String(KeyClientIP, addr)
}

// Actor returns a slog.Attr for the authenticated subject
func Actor(subject string) slog.Attr {
	return slog.String(KeyActor, subject)
}

// Method returns a slog.Attr for the HTTP method
func Method(method string) slog.Attr {
	return slog.String(KeyMethod, method)
}

// Route returns a slog.Attr for the request path
func Route(path string) slog.Attr {
	return slog.String(KeyRoute, path)
}

// Status returns a slog.Attr for the HTTP response status code
func Status(code int) slog.Attr {
	return slog.Int(KeyStatus, code)
}

// Option returns a slog.Attr for the option slot name
func Option(name string) slog.Attr {
	return slog.String(KeyOption, name)
}

// AttributeID returns a slog.Attr for an attribute identifier
func AttributeID(id int64) slog.Attr {
	return slog.Int64(KeyAttributeID, id)
}

// MetaKey returns a slog.Attr for a metadata key
func MetaKey(key string) slog.Attr {
	return slog.String(KeyMetaKey, key)
}

// StoreType returns a slog.Attr for the provider backend type
func StoreType(t string) slog.Attr {
	return slog.String(KeyStoreType, t)
}

// Operation returns a slog.Attr for a store operation name
func Operation(op string) slog.Attr {
	return slog.String(KeyOperation, op)
}

// DurationMs returns a slog.Attr for duration in milliseconds
func DurationMs(ms float64) slog.Attr {
	return slog.Float64(KeyDurationMs, ms)
}

// Err returns a slog.Attr for an error
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}
