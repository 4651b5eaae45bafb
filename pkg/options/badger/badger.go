// Package badger provides a BadgerDB-backed option provider.
//
// BadgerDB gives durable, transactional single-key storage without an
// external database process, which suits single-node deployments.
package badger

import (
	"context"
	"fmt"

	badgerdb "github.com/dgraph-io/badger/v4"

	"github.com/marmos91/attrmeta/pkg/options"
)

// keyPrefix namespaces option keys inside the database so the same
// BadgerDB directory can be shared with other data in the future.
const keyPrefix = "option/"

// Config contains BadgerDB provider configuration.
type Config struct {
	// Path is the BadgerDB directory (required unless InMemory).
	Path string `mapstructure:"path"`

	// InMemory runs BadgerDB without disk persistence. Useful for
	// tests; all data is lost on Close.
	InMemory bool `mapstructure:"in_memory"`

	// SyncWrites forces an fsync on every commit. Slower but survives
	// power loss. Default: true.
	SyncWrites *bool `mapstructure:"sync_writes"`
}

// Provider stores options as BadgerDB keys.
type Provider struct {
	db *badgerdb.DB
}

// New opens (or creates) the BadgerDB database described by cfg.
func New(ctx context.Context, cfg Config) (*Provider, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if cfg.Path == "" && !cfg.InMemory {
		return nil, fmt.Errorf("badger provider requires path to be set")
	}

	opts := badgerdb.DefaultOptions(cfg.Path)
	opts.InMemory = cfg.InMemory
	if cfg.InMemory {
		opts.Dir = ""
		opts.ValueDir = ""
	}
	opts.SyncWrites = true
	if cfg.SyncWrites != nil {
		opts.SyncWrites = *cfg.SyncWrites
	}
	// Badger's own logger is chatty at INFO; route nothing through it.
	opts.Logger = nil

	db, err := badgerdb.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database: %w", err)
	}

	return &Provider{db: db}, nil
}

// Load returns the value stored under name, or options.ErrNotFound.
func (p *Provider) Load(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := options.ValidateName(name); err != nil {
		return nil, err
	}

	var value []byte
	err := p.db.View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get(key(name))
		if err == badgerdb.ErrKeyNotFound {
			return options.ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			value = append([]byte{}, val...)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Save stores value under name, replacing any previous value.
func (p *Provider) Save(ctx context.Context, name string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := options.ValidateName(name); err != nil {
		return err
	}

	return p.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Set(key(name), value)
	})
}

// Delete removes the value stored under name. Absent keys are a no-op.
func (p *Provider) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := options.ValidateName(name); err != nil {
		return err
	}

	return p.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Delete(key(name))
	})
}

// Close closes the underlying BadgerDB database.
func (p *Provider) Close() error {
	return p.db.Close()
}

func key(name string) []byte {
	return []byte(keyPrefix + name)
}
