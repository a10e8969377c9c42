// internal/app/store/docstore/docstore.go

// Package docstore is the document store the quest core reads and writes.
//
// Documents are addressed by collection + id and carry an integer "version"
// field used for optimistic concurrency. Three backends implement Backend:
// MongoDB (production), SQLite (single node) and an in-memory map (tests and
// local development). Every committed write is published to the backend's
// Hub so callers can subscribe to document snapshots.
package docstore

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

var (
	ErrNotFound    = errors.New("document not found")
	ErrExists      = errors.New("document already exists")
	ErrConflict    = errors.New("document was modified concurrently")
	ErrUnavailable = errors.New("document store unavailable")
)

// Raw is a stored document as read from a backend.
type Raw struct {
	ID      string
	Version int64
	Data    bson.Raw
}

// Decode unmarshals the document into v.
func (r Raw) Decode(v any) error {
	return bson.Unmarshal(r.Data, v)
}

// Backend is the document read/write interface consumed by the stores.
type Backend interface {
	// Get returns ErrNotFound when the document is absent.
	Get(ctx context.Context, coll, id string) (Raw, error)
	// Create inserts a new document; ErrExists if the id is taken.
	Create(ctx context.Context, coll, id string, doc any) error
	// Replace overwrites the document if its stored version equals
	// expectVersion. doc must carry version expectVersion+1.
	Replace(ctx context.Context, coll, id string, doc any, expectVersion int64) error
	// Delete removes the document; ErrNotFound if absent.
	Delete(ctx context.Context, coll, id string) error
	// Find returns documents matching q.
	Find(ctx context.Context, coll string, q Query) ([]Raw, error)
	// WithTx runs fn as one unit of work. Nested calls join the outer unit.
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error

	Hub() *Hub
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Get loads and decodes one document.
func Get[T any](ctx context.Context, b Backend, coll, id string) (T, error) {
	var v T
	raw, err := b.Get(ctx, coll, id)
	if err != nil {
		return v, err
	}
	if err := raw.Decode(&v); err != nil {
		return v, fmt.Errorf("decode %s/%s: %w", coll, id, err)
	}
	return v, nil
}

// Find runs q and decodes every match.
func Find[T any](ctx context.Context, b Backend, coll string, q Query) ([]T, error) {
	raws, err := b.Find(ctx, coll, q)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(raws))
	for _, raw := range raws {
		var v T
		if err := raw.Decode(&v); err != nil {
			return nil, fmt.Errorf("decode %s/%s: %w", coll, raw.ID, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// encode marshals doc and extracts its id and version.
func encode(doc any) (bson.Raw, int64, error) {
	data, err := bson.Marshal(doc)
	if err != nil {
		return nil, 0, fmt.Errorf("encode document: %w", err)
	}
	return data, versionOf(data), nil
}

func newRaw(id string, data bson.Raw) Raw {
	return Raw{ID: id, Version: versionOf(data), Data: data}
}

func versionOf(data bson.Raw) int64 {
	v, err := data.LookupErr("version")
	if err != nil {
		return 0
	}
	switch v.Type {
	case bsontype.Int64:
		return v.Int64()
	case bsontype.Int32:
		return int64(v.Int32())
	case bsontype.Double:
		return int64(v.Double())
	default:
		return 0
	}
}

func checkAdvance(coll, id string, next, expect int64) error {
	if next != expect+1 {
		return fmt.Errorf("replace %s/%s: version must advance from %d, got %d", coll, id, expect, next)
	}
	return nil
}
