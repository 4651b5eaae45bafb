// Package attrmeta implements per-attribute metadata storage on top of
// a single named option slot.
//
// The host platform has no native metadata table for product
// attributes, so the whole store is one serialized document: a mapping
// from attribute id to a bag of meta-key/value pairs. Every mutation
// rewrites the entire document; reads decode it on demand. The
// persistence boundary is the injected options.Provider, so the store
// itself carries no backend knowledge.
package attrmeta

import "fmt"

// DefaultOptionName is the option slot the store persists under when
// no explicit name is configured.
const DefaultOptionName = "attribute_meta"

// AttributeID identifies a product attribute. IDs are opaque positive
// integers assigned by the host platform.
type AttributeID int64

// Valid reports whether the id is usable as a store key.
func (id AttributeID) Valid() bool {
	return id > 0
}

func (id AttributeID) String() string {
	return fmt.Sprintf("%d", int64(id))
}

// Value is a stored meta value. Values round-trip through JSON, so
// only JSON scalars survive; in practice this store only ever holds
// booleans.
type Value = any

// EntityMeta is the metadata bag of a single attribute.
type EntityMeta map[string]Value

// metaMap is the full store document: attribute id -> metadata bag.
// JSON object keys are strings, so ids are encoded as decimal strings.
type metaMap map[AttributeID]EntityMeta
