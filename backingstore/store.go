// Package backingstore is the secondary tier: a structured store consulted
// when the primary endpoint cannot serve a request. It only supports
// equality lookup by id and bulk select; results are a degraded
// approximation of what the primary tier would have returned.
package backingstore

import (
	"context"

	"github.com/pkg/errors"
)

var (
	ErrNotFound          = errors.New("record not found")
	ErrUnknownCollection = errors.New("unknown collection")
)

// Store is the secondary structured store abstraction. Records are schemaless
// documents addressed by collection name and string id.
type Store interface {
	Select(ctx context.Context, collection string) ([]map[string]any, error)
	GetByID(ctx context.Context, collection, id string) (map[string]any, error)
	Insert(ctx context.Context, collection string, doc map[string]any) (map[string]any, error)
	Update(ctx context.Context, collection, id string, doc map[string]any) (map[string]any, error)
	DeleteByID(ctx context.Context, collection, id string) error
}
