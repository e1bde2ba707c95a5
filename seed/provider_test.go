package seed_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/docuvault/go-admin-core/seed"
)

func TestSeedKnownCollections(t *testing.T) {
	p := seed.NewProvider()

	for _, collection := range []string{"documents", "departments", "users", "document-categories", "clients"} {
		require.True(t, p.Known(collection), collection)
		records, err := p.Seed(collection)
		require.NoError(t, err)
		require.NotEmpty(t, records, collection)
	}
	require.False(t, p.Known("audit-log"))

	_, err := p.Seed("audit-log")
	require.ErrorIs(t, err, seed.ErrUnknownCollection)
}

func TestSeedReturnsIsolatedCopies(t *testing.T) {
	p := seed.NewProvider()

	first, err := p.Seed("documents")
	require.NoError(t, err)
	first[0]["title"] = "tampered"

	second, err := p.Seed("documents")
	require.NoError(t, err)
	require.NotEqual(t, "tampered", second[0]["title"])
}

func TestSeedCopiesIsolateNestedValues(t *testing.T) {
	p := seed.NewProvider()

	created, err := p.Mutate("documents", seed.Op{Kind: seed.OpCreate, Doc: map[string]any{
		"title":     "Scratch",
		"revisions": []any{map[string]any{"rev": 1, "author": "U1"}},
	}})
	require.NoError(t, err)
	id, _ := created["id"].(string)

	first, err := p.Get("documents", id)
	require.NoError(t, err)
	first["revisions"].([]any)[0].(map[string]any)["author"] = "tampered"

	second, err := p.Get("documents", id)
	require.NoError(t, err)
	require.Equal(t, "U1", second["revisions"].([]any)[0].(map[string]any)["author"])
}

func TestMutateCreateUpdateDelete(t *testing.T) {
	p := seed.NewProvider()
	require.Zero(t, p.Version("documents"))

	created, err := p.Mutate("documents", seed.Op{Kind: seed.OpCreate, Doc: map[string]any{"title": "Scratch"}})
	require.NoError(t, err)
	require.NotEmpty(t, created["id"])
	require.Equal(t, int64(1), p.Version("documents"))

	id, _ := created["id"].(string)
	updated, err := p.Mutate("documents", seed.Op{Kind: seed.OpUpdate, ID: id, Doc: map[string]any{"title": "Renamed"}})
	require.NoError(t, err)
	require.Equal(t, "Renamed", updated["title"])
	require.Equal(t, int64(2), p.Version("documents"))

	_, err = p.Mutate("documents", seed.Op{Kind: seed.OpDelete, ID: id})
	require.NoError(t, err)
	require.Equal(t, int64(3), p.Version("documents"))

	_, err = p.Get("documents", id)
	require.ErrorIs(t, err, seed.ErrRecordNotFound)
}

func TestMutationsAreEphemeral(t *testing.T) {
	p := seed.NewProvider()
	_, err := p.Mutate("documents", seed.Op{Kind: seed.OpDelete, ID: "D1"})
	require.NoError(t, err)

	// A fresh provider (new process) starts from the seeds again.
	fresh := seed.NewProvider()
	record, err := fresh.Get("documents", "D1")
	require.NoError(t, err)
	require.Equal(t, "D1", record["id"])
	require.Zero(t, fresh.Version("documents"))
}

func TestAuthenticate(t *testing.T) {
	p := seed.NewProvider()

	account, ok := p.Authenticate("admin@x.com", "admin123")
	require.True(t, ok)
	require.Equal(t, "admin", account.Role)
	require.Equal(t, "U1", account.ID)

	_, ok = p.Authenticate("admin@x.com", "wrong")
	require.False(t, ok)

	_, ok = p.Authenticate("nobody@x.com", "admin123")
	require.False(t, ok)
}
