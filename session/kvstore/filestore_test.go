package kvstore_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/docuvault/go-admin-core/session/kvstore"
)

func TestFileStoreRoundTrip(t *testing.T) {
	store, err := kvstore.NewFileStore(t.TempDir())
	require.NoError(t, err)

	_, found, err := store.Get("docuvault.session")
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, store.Set("docuvault.session", []byte(`{"token":"T1"}`)))

	value, found, err := store.Get("docuvault.session")
	require.NoError(t, err)
	require.True(t, found)
	require.JSONEq(t, `{"token":"T1"}`, string(value))

	require.NoError(t, store.Remove("docuvault.session"))
	_, found, err = store.Get("docuvault.session")
	require.NoError(t, err)
	require.False(t, found)
}

func TestFileStoreRemoveIsIdempotent(t *testing.T) {
	store, err := kvstore.NewFileStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Remove("never-written"))
}

func TestFileStoreLastWriterWins(t *testing.T) {
	store, err := kvstore.NewFileStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("slot", []byte("first")))
	require.NoError(t, store.Set("slot", []byte("second")))

	value, found, err := store.Get("slot")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "second", string(value))
}
