// Package options defines the named option slot abstraction used for
// persistence.
//
// An option slot stores one opaque serialized value under a fixed name,
// the way a host platform's option table does. Providers implement the
// slot against different backends (memory, file, BadgerDB, SQL) and are
// interchangeable: callers only ever load and save whole values.
package options

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned by Load when no value exists under the
// requested name.
var ErrNotFound = errors.New("option not found")

// Provider is a named key/value slot for opaque serialized blobs.
//
// Implementations must treat values as opaque: no partial reads, no
// partial writes. Save replaces the entire value atomically from the
// caller's perspective.
type Provider interface {
	// Load returns the value stored under name, or ErrNotFound.
	Load(ctx context.Context, name string) ([]byte, error)

	// Save stores value under name, replacing any previous value.
	Save(ctx context.Context, name string, value []byte) error

	// Delete removes the value stored under name. Deleting an absent
	// name is not an error.
	Delete(ctx context.Context, name string) error

	// Close releases backend resources. The provider must not be used
	// after Close returns.
	Close() error
}

// ValidateName rejects empty and oversized option names before they
// reach a backend.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("option name must not be empty")
	}
	if len(name) > 255 {
		return fmt.Errorf("option name exceeds 255 bytes")
	}
	return nil
}
