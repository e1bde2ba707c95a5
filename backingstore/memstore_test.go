package backingstore_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/docuvault/go-admin-core/backingstore"
)

func setupMemoryStore(t *testing.T) *backingstore.MemoryStore {
	t.Helper()
	store := backingstore.NewMemoryStore([]string{"documents"})
	store.Load("documents", []map[string]any{
		{"id": "D1", "title": "Q3 Report", "tags": []any{"finance", "q3"}},
	})
	return store
}

func TestMemoryStoreReturnsIsolatedCopies(t *testing.T) {
	store := setupMemoryStore(t)

	doc, err := store.GetByID(context.Background(), "documents", "D1")
	require.NoError(t, err)
	doc["title"] = "tampered"
	doc["tags"].([]any)[0] = "tampered"

	again, err := store.GetByID(context.Background(), "documents", "D1")
	require.NoError(t, err)
	require.Equal(t, "Q3 Report", again["title"])
	require.Equal(t, "finance", again["tags"].([]any)[0])

	listed, err := store.Select(context.Background(), "documents")
	require.NoError(t, err)
	listed[0]["title"] = "tampered"

	again, err = store.GetByID(context.Background(), "documents", "D1")
	require.NoError(t, err)
	require.Equal(t, "Q3 Report", again["title"])
}

func TestMemoryStoreInsertDetachesCallerDoc(t *testing.T) {
	store := setupMemoryStore(t)

	doc := map[string]any{"title": "New Policy"}
	stored, err := store.Insert(context.Background(), "documents", doc)
	require.NoError(t, err)

	// Mutating either the caller's map or the returned one must not leak
	// into the store.
	doc["title"] = "tampered"
	stored["status"] = "tampered"

	fetched, err := store.GetByID(context.Background(), "documents", stored["id"].(string))
	require.NoError(t, err)
	require.Equal(t, "New Policy", fetched["title"])
	_, leaked := fetched["status"]
	require.False(t, leaked)
}

func TestMemoryStoreUpdateDetachesCallerDoc(t *testing.T) {
	store := setupMemoryStore(t)

	patch := map[string]any{"meta": map[string]any{"reviewer": "U2"}}
	updated, err := store.Update(context.Background(), "documents", "D1", patch)
	require.NoError(t, err)
	require.Equal(t, "U2", updated["meta"].(map[string]any)["reviewer"])

	patch["meta"].(map[string]any)["reviewer"] = "tampered"
	updated["meta"].(map[string]any)["reviewer"] = "tampered"

	fetched, err := store.GetByID(context.Background(), "documents", "D1")
	require.NoError(t, err)
	require.Equal(t, "U2", fetched["meta"].(map[string]any)["reviewer"])
}
