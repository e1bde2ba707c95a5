package backingstore

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var _ Store = (*MemoryStore)(nil)

// MemoryStore is an embedded Store used when no external backing store is
// configured, and by tests. Unlike the synthetic tier it behaves like a real
// store for the life of the process: writes are visible to later reads.
type MemoryStore struct {
	lock        sync.RWMutex
	collections map[string][]map[string]any
}

// NewMemoryStore builds an empty in-process store for the given collections.
func NewMemoryStore(collections []string) *MemoryStore {
	data := make(map[string][]map[string]any, len(collections))
	for _, collection := range collections {
		data[collection] = []map[string]any{}
	}
	return &MemoryStore{collections: data}
}

// Load replaces a collection's records wholesale.
func (s *MemoryStore) Load(collection string, records []map[string]any) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.collections[collection] = cloneDocs(records)
}

// Select implements Store.
func (s *MemoryStore) Select(_ context.Context, collection string) ([]map[string]any, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	records, ok := s.collections[collection]
	if !ok {
		return nil, errors.Wrap(ErrUnknownCollection, collection)
	}
	return cloneDocs(records), nil
}

// GetByID implements Store.
func (s *MemoryStore) GetByID(_ context.Context, collection, id string) (map[string]any, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	records, ok := s.collections[collection]
	if !ok {
		return nil, errors.Wrap(ErrUnknownCollection, collection)
	}
	for _, record := range records {
		if docID(record) == id {
			return cloneDoc(record), nil
		}
	}
	return nil, errors.Wrapf(ErrNotFound, "%s/%s", collection, id)
}

// Insert implements Store.
func (s *MemoryStore) Insert(_ context.Context, collection string, doc map[string]any) (map[string]any, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	records, ok := s.collections[collection]
	if !ok {
		return nil, errors.Wrap(ErrUnknownCollection, collection)
	}
	stored := cloneDoc(doc)
	if docID(stored) == "" {
		stored["id"] = uuid.New().String()
	}
	s.collections[collection] = append(records, stored)
	return cloneDoc(stored), nil
}

// Update implements Store.
func (s *MemoryStore) Update(_ context.Context, collection, id string, doc map[string]any) (map[string]any, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	records, ok := s.collections[collection]
	if !ok {
		return nil, errors.Wrap(ErrUnknownCollection, collection)
	}
	for i, record := range records {
		if docID(record) != id {
			continue
		}
		updated := cloneDoc(record)
		for k, v := range doc {
			updated[k] = cloneValue(v)
		}
		updated["id"] = id
		records[i] = updated
		return cloneDoc(updated), nil
	}
	return nil, errors.Wrapf(ErrNotFound, "%s/%s", collection, id)
}

// DeleteByID implements Store.
func (s *MemoryStore) DeleteByID(_ context.Context, collection, id string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	records, ok := s.collections[collection]
	if !ok {
		return errors.Wrap(ErrUnknownCollection, collection)
	}
	for i, record := range records {
		if docID(record) == id {
			s.collections[collection] = append(records[:i], records[i+1:]...)
			return nil
		}
	}
	return errors.Wrapf(ErrNotFound, "%s/%s", collection, id)
}

func docID(doc map[string]any) string {
	id, _ := doc["id"].(string)
	return id
}

// cloneDoc isolates stored records from caller-held maps: documents cross the
// Store boundary by value, never by shared reference.
func cloneDoc(doc map[string]any) map[string]any {
	out := make(map[string]any, len(doc))
	for k, v := range doc {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneDocs(records []map[string]any) []map[string]any {
	out := make([]map[string]any, len(records))
	for i, record := range records {
		out[i] = cloneDoc(record)
	}
	return out
}

func cloneValue(v any) any {
	switch value := v.(type) {
	case map[string]any:
		return cloneDoc(value)
	case []any:
		items := make([]any, len(value))
		for i, item := range value {
			items[i] = cloneValue(item)
		}
		return items
	default:
		return v
	}
}
