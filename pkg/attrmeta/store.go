package attrmeta

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/marmos91/attrmeta/internal/logger"
	"github.com/marmos91/attrmeta/internal/telemetry"
	"github.com/marmos91/attrmeta/pkg/metrics"
	"github.com/marmos91/attrmeta/pkg/options"
)

// ErrInvalidAttributeID is returned by mutations on non-positive ids.
var ErrInvalidAttributeID = errors.New("attribute id must be positive")

// ErrEmptyMetaKey is returned by mutations with an empty meta key.
var ErrEmptyMetaKey = errors.New("meta key must not be empty")

// Store provides CRUD access to per-attribute metadata bags persisted
// as one serialized document in a named option slot.
//
// Reads are total: a missing slot, an undecodable document, or a
// provider read failure all behave as an empty store. Mutations return
// the provider's save error.
//
// A Store serializes its own load-mutate-persist cycles, so a single
// process never loses its own updates. Two processes sharing a slot
// still race at the blob level: the last save wins. See the package
// documentation for the rationale.
type Store struct {
	provider options.Provider
	option   string

	mu sync.Mutex
}

// New creates a store persisting under optionName via provider.
// An empty optionName selects DefaultOptionName.
func New(provider options.Provider, optionName string) *Store {
	if optionName == "" {
		optionName = DefaultOptionName
	}
	return &Store{
		provider: provider,
		option:   optionName,
	}
}

// OptionName returns the option slot this store persists under.
func (s *Store) OptionName() string {
	return s.option
}

// Lookup returns the value stored for (id, key) and whether it is
// present. Unlike Get, a stored false and a missing key remain
// distinguishable.
func (s *Store) Lookup(ctx context.Context, id AttributeID, key string) (Value, bool) {
	if !id.Valid() || key == "" {
		return nil, false
	}

	meta := s.load(ctx)
	bag, ok := meta[id]
	if !ok {
		return nil, false
	}
	value, ok := bag[key]
	return value, ok
}

// Get returns the value stored for (id, key), or false when nothing is
// stored. This is the sentinel-style accessor checkbox callers use:
// "never set" and "stored false" collapse to the same answer.
func (s *Store) Get(ctx context.Context, id AttributeID, key string) Value {
	value, ok := s.Lookup(ctx, id, key)
	if !ok {
		return false
	}
	return value
}

// Enabled reports whether (id, key) holds a truthy value.
func (s *Store) Enabled(ctx context.Context, id AttributeID, key string) bool {
	return ParseBool(s.Get(ctx, id, key))
}

// GetAll returns the full metadata bag for id, or an empty bag when the
// attribute has none. The returned map is a copy.
func (s *Store) GetAll(ctx context.Context, id AttributeID) EntityMeta {
	out := EntityMeta{}
	if !id.Valid() {
		return out
	}

	for key, value := range s.load(ctx)[id] {
		out[key] = value
	}
	return out
}

// Update sets (id, key) to value and persists the whole document.
func (s *Store) Update(ctx context.Context, id AttributeID, key string, value Value) error {
	start := time.Now()
	ctx, span := telemetry.StartSpan(ctx, "attrmeta.Update")
	defer span.End()

	err := s.update(ctx, id, key, value)
	metrics.RecordStoreOperation("update", err, start)
	if err != nil {
		telemetry.RecordError(ctx, err)
	}
	return err
}

func (s *Store) update(ctx context.Context, id AttributeID, key string, value Value) error {
	if !id.Valid() {
		return ErrInvalidAttributeID
	}
	if key == "" {
		return ErrEmptyMetaKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	meta := s.load(ctx)
	bag, ok := meta[id]
	if !ok {
		bag = EntityMeta{}
		meta[id] = bag
	}
	bag[key] = value

	return s.persist(ctx, meta)
}

// Delete removes key from the bag of id and persists the document.
// Removing an absent key is a no-op that still persists, so Delete is
// idempotent.
func (s *Store) Delete(ctx context.Context, id AttributeID, key string) error {
	start := time.Now()
	ctx, span := telemetry.StartSpan(ctx, "attrmeta.Delete")
	defer span.End()

	err := s.delete(ctx, id, key)
	metrics.RecordStoreOperation("delete", err, start)
	if err != nil {
		telemetry.RecordError(ctx, err)
	}
	return err
}

func (s *Store) delete(ctx context.Context, id AttributeID, key string) error {
	if !id.Valid() {
		return ErrInvalidAttributeID
	}
	if key == "" {
		return ErrEmptyMetaKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	meta := s.load(ctx)
	if bag, ok := meta[id]; ok {
		delete(bag, key)
		if len(bag) == 0 {
			delete(meta, id)
		}
	}

	return s.persist(ctx, meta)
}

// DeleteAll removes the entire metadata bag of id and persists the
// document. Removing an absent bag is a no-op that still persists.
func (s *Store) DeleteAll(ctx context.Context, id AttributeID) error {
	start := time.Now()
	ctx, span := telemetry.StartSpan(ctx, "attrmeta.DeleteAll")
	defer span.End()

	err := s.deleteAll(ctx, id)
	metrics.RecordStoreOperation("delete_all", err, start)
	if err != nil {
		telemetry.RecordError(ctx, err)
	}
	return err
}

func (s *Store) deleteAll(ctx context.Context, id AttributeID) error {
	if !id.Valid() {
		return ErrInvalidAttributeID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	meta := s.load(ctx)
	delete(meta, id)

	return s.persist(ctx, meta)
}

// load reads and decodes the document. It never fails: missing slots,
// undecodable payloads and provider errors all yield an empty store.
// Provider errors are logged since they usually mean the backend is
// unhealthy, not that the store is empty.
func (s *Store) load(ctx context.Context) metaMap {
	data, err := s.provider.Load(ctx, s.option)
	if err != nil {
		if !errors.Is(err, options.ErrNotFound) {
			logger.Warn("failed to load option blob, treating as empty",
				"option", s.option,
				"error", err,
			)
		}
		return metaMap{}
	}

	var raw map[string]EntityMeta
	if err := json.Unmarshal(data, &raw); err != nil {
		logger.Warn("option blob is not a metadata document, treating as empty",
			"option", s.option,
			"error", err,
		)
		return metaMap{}
	}

	meta := make(metaMap, len(raw))
	for idStr, bag := range raw {
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil || id <= 0 {
			logger.Warn("dropping metadata entry with invalid attribute id",
				"option", s.option,
				"id", idStr,
			)
			continue
		}
		if bag == nil {
			bag = EntityMeta{}
		}
		meta[AttributeID(id)] = bag
	}
	return meta
}

// persist encodes and saves the whole document.
func (s *Store) persist(ctx context.Context, meta metaMap) error {
	raw := make(map[string]EntityMeta, len(meta))
	for id, bag := range meta {
		raw[strconv.FormatInt(int64(id), 10)] = bag
	}

	data, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("failed to encode metadata document: %w", err)
	}

	if err := s.provider.Save(ctx, s.option, data); err != nil {
		return fmt.Errorf("failed to save option %q: %w", s.option, err)
	}
	return nil
}
