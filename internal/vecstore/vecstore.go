// Package vecstore provides named collections of (id, document, metadata)
// records with text-similarity queries over per-record embedding vectors.
// Implementations live under internal/vecstore/<driver>/ (sqlite, postgres).
package vecstore

import (
	"context"
	"encoding/binary"
	"math"
)

// Record is a single stored document with flat scalar metadata.
type Record struct {
	ID       string
	Document string
	Metadata map[string]interface{}
}

// QueryHit is a similarity-search result. Lower distance means more similar.
type QueryHit struct {
	Record
	Distance float64
}

// Store exposes the collection operations required by the memory manager.
// All mutations are durably persisted before the call returns.
type Store interface {
	// EnsureCollection creates the named collection if absent.
	EnsureCollection(ctx context.Context, name string) error
	// Add inserts records; any pre-existing id fails the whole call with
	// model.ErrDuplicateID.
	Add(ctx context.Context, collection string, recs []Record) error
	// Update overwrites document and metadata of existing records; a missing
	// id fails with model.ErrNotFound.
	Update(ctx context.Context, collection string, recs []Record) error
	// Get returns records matching the given ids (all when nil) and the
	// exact-match metadata filter (AND across keys; nil matches everything).
	Get(ctx context.Context, collection string, ids []string, where map[string]interface{}) ([]Record, error)
	// Query ranks records of the collection by similarity of their document
	// text to queryText and returns up to k hits, ascending by distance.
	Query(ctx context.Context, collection, queryText string, k int) ([]QueryHit, error)
	// Delete removes records by id. Deleting an absent id fails with
	// model.ErrNotFound.
	Delete(ctx context.Context, collection string, ids []string) error
	// Count returns the number of records in the collection.
	Count(ctx context.Context, collection string) (int, error)
	// Close releases the underlying storage handle.
	Close() error
}

// CleanMetadata strips nil values so a missing field is absent, not null.
func CleanMetadata(md map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(md))
	for k, v := range md {
		if v == nil {
			continue
		}
		out[k] = v
	}
	return out
}

// MatchesWhere reports whether metadata satisfies an exact-match AND filter.
// Numeric values are compared after normalizing to float64, since metadata
// round-trips through JSON.
func MatchesWhere(md, where map[string]interface{}) bool {
	for k, want := range where {
		got, ok := md[k]
		if !ok {
			return false
		}
		if !scalarEqual(got, want) {
			return false
		}
	}
	return true
}

func scalarEqual(a, b interface{}) bool {
	if af, aok := asFloat(a); aok {
		bf, bok := asFloat(b)
		return bok && af == bf
	}
	return a == b
}

func asFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// EncodeVector serializes an embedding as little-endian float32 bytes.
func EncodeVector(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

// DecodeVector deserializes an embedding produced by EncodeVector.
func DecodeVector(buf []byte) []float32 {
	vec := make([]float32, len(buf)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return vec
}
