// Package memory provides an in-memory option provider.
//
// Values live only for the lifetime of the process. Intended for tests
// and ephemeral runs; the provider is safe for concurrent use.
package memory

import (
	"context"
	"sync"

	"github.com/marmos91/attrmeta/pkg/options"
)

// Provider is a map-backed option slot.
type Provider struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// New creates an empty in-memory provider.
func New() *Provider {
	return &Provider{
		values: make(map[string][]byte),
	}
}

// Load returns the value stored under name, or options.ErrNotFound.
func (p *Provider) Load(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := options.ValidateName(name); err != nil {
		return nil, err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	value, ok := p.values[name]
	if !ok {
		return nil, options.ErrNotFound
	}

	// Copy so callers cannot mutate the stored value.
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

// Save stores value under name, replacing any previous value.
func (p *Provider) Save(ctx context.Context, name string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := options.ValidateName(name); err != nil {
		return err
	}

	stored := make([]byte, len(value))
	copy(stored, value)

	p.mu.Lock()
	p.values[name] = stored
	p.mu.Unlock()
	return nil
}

// Delete removes the value stored under name. Absent names are a no-op.
func (p *Provider) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := options.ValidateName(name); err != nil {
		return err
	}

	p.mu.Lock()
	delete(p.values, name)
	p.mu.Unlock()
	return nil
}

// Close is a no-op for the in-memory provider.
func (p *Provider) Close() error {
	return nil
}
