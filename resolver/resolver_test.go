package resolver_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/docuvault/go-admin-core/backingstore"
	"github.com/docuvault/go-admin-core/resolver"
	"github.com/docuvault/go-admin-core/resolver/remote"
	"github.com/docuvault/go-admin-core/resolver/remote/callerfakes"
	"github.com/docuvault/go-admin-core/seed"
)

// stubStrategy is a scripted tier that counts invocations.
type stubStrategy struct {
	name   string
	result *resolver.Result
	err    error
	calls  int
}

func (s *stubStrategy) Name() string { return s.name }

func (s *stubStrategy) Resolve(_ context.Context, _ resolver.Descriptor) (*resolver.Result, error) {
	s.calls++
	return s.result, s.err
}

func okResult(tier resolver.Tier) *resolver.Result {
	return &resolver.Result{Data: json.RawMessage(`[]`), Status: 200, Tier: tier, Durable: tier != resolver.TierSynthetic}
}

func newResolver(t *testing.T, primary, secondary, synthetic resolver.Strategy, options ...resolver.Option) *resolver.Resolver {
	t.Helper()
	r, err := resolver.New(primary, secondary, synthetic, options...)
	require.NoError(t, err)
	return r
}

func mustDescriptor(t *testing.T, verb, path string) resolver.Descriptor {
	t.Helper()
	d, err := resolver.ParseDescriptor(verb, path)
	require.NoError(t, err)
	return d
}

func TestPrimarySuccessShortCircuits(t *testing.T) {
	primary := &stubStrategy{name: "primary", result: okResult(resolver.TierPrimary)}
	secondary := &stubStrategy{name: "secondary", result: okResult(resolver.TierBackingStore)}
	synthetic := &stubStrategy{name: "synthetic", result: okResult(resolver.TierSynthetic)}
	r := newResolver(t, primary, secondary, synthetic)

	res, err := r.Execute(context.Background(), mustDescriptor(t, http.MethodGet, "/documents"))
	require.NoError(t, err)
	require.Equal(t, resolver.TierPrimary, res.Tier)
	require.True(t, res.Durable)
	require.Zero(t, secondary.calls)
	require.Zero(t, synthetic.calls)
}

func TestServerErrorFallsBackToSyntheticForReads(t *testing.T) {
	// Scenario: primary answers 500, the backing store raises, and the
	// resolver serves the seeded documents tagged non-durable.
	primary := &stubStrategy{name: "primary", err: resolver.NewRemoteRejected(500, json.RawMessage(`{"error":"boom"}`))}
	secondary := &stubStrategy{name: "secondary", err: resolver.NewTranslation(errors.New("store down"))}
	synthetic, err := seed.NewStrategy(seed.NewProvider())
	require.NoError(t, err)
	r := newResolver(t, primary, secondary, synthetic)

	res, err := r.Execute(context.Background(), mustDescriptor(t, http.MethodGet, "/documents"))
	require.NoError(t, err)
	require.Equal(t, resolver.TierSynthetic, res.Tier)
	require.False(t, res.Durable)

	var docs []map[string]any
	require.NoError(t, res.Decode(&docs))
	require.NotEmpty(t, docs)
	require.Equal(t, 1, secondary.calls)
}

func TestTimeoutFallsBackToBackingStoreForWrites(t *testing.T) {
	// Scenario: primary times out, the translator serves the update, the
	// result is durable and the synthetic tier is never consulted.
	caller := callerfakes.NewFakeCaller()
	caller.BlockOnCtx = true
	primary, err := remote.NewStrategy(caller)
	require.NoError(t, err)

	store := backingstore.NewMemoryStore([]string{"documents"})
	store.Load("documents", []map[string]any{{"id": "D1", "title": "old", "status": "draft"}})
	translator, err := backingstore.NewTranslator(store, []string{"documents"})
	require.NoError(t, err)

	synthetic := &stubStrategy{name: "synthetic", result: okResult(resolver.TierSynthetic)}
	r := newResolver(t, primary, translator, synthetic, resolver.WithTimeout(30*time.Millisecond))

	d := mustDescriptor(t, http.MethodPut, "/documents/D1")
	d.Body = map[string]any{"title": "new"}

	res, err := r.Execute(context.Background(), d)
	require.NoError(t, err)
	require.Equal(t, resolver.TierBackingStore, res.Tier)
	require.True(t, res.Durable)
	require.Zero(t, synthetic.calls)

	var doc map[string]any
	require.NoError(t, res.Decode(&doc))
	require.Equal(t, "new", doc["title"])
	require.Equal(t, "draft", doc["status"])
}

func TestActionPathsNeverFallBack(t *testing.T) {
	primary := &stubStrategy{name: "primary", err: resolver.NewTransport(errors.New("connection refused"))}
	secondary := &stubStrategy{name: "secondary", result: okResult(resolver.TierBackingStore)}
	synthetic := &stubStrategy{name: "synthetic", result: okResult(resolver.TierSynthetic)}
	r := newResolver(t, primary, secondary, synthetic)

	_, err := r.Execute(context.Background(), mustDescriptor(t, http.MethodPost, "/documents/D1/approve"))
	require.Error(t, err)
	rerr, ok := resolver.AsError(err)
	require.True(t, ok)
	require.Equal(t, resolver.ClassTransport, rerr.Class)
	require.Zero(t, secondary.calls)
	require.Zero(t, synthetic.calls)
}

func TestExhaustedWritesSurfaceTheError(t *testing.T) {
	primary := &stubStrategy{name: "primary", err: resolver.NewTimeout(context.DeadlineExceeded)}
	secondary := &stubStrategy{name: "secondary", err: resolver.NewTranslation(errors.New("store down"))}
	synthetic := &stubStrategy{name: "synthetic", result: okResult(resolver.TierSynthetic)}
	r := newResolver(t, primary, secondary, synthetic)

	d := mustDescriptor(t, http.MethodPost, "/documents")
	d.Body = map[string]any{"title": "unsaved"}

	_, err := r.Execute(context.Background(), d)
	require.Error(t, err)
	rerr, ok := resolver.AsError(err)
	require.True(t, ok)
	require.Equal(t, resolver.ClassTranslation, rerr.Class)
	require.Zero(t, synthetic.calls)
}

func TestUnknownCollectionReadsSurfaceTheError(t *testing.T) {
	primary := &stubStrategy{name: "primary", err: resolver.NewRemoteRejected(502, nil)}
	secondary := &stubStrategy{name: "secondary", err: resolver.NewTranslation(errors.New("unknown collection"))}
	synthetic, err := seed.NewStrategy(seed.NewProvider())
	require.NoError(t, err)
	r := newResolver(t, primary, secondary, synthetic)

	_, err = r.Execute(context.Background(), mustDescriptor(t, http.MethodGet, "/audit-log"))
	require.Error(t, err)
	rerr, ok := resolver.AsError(err)
	require.True(t, ok)
	require.Equal(t, resolver.ClassTranslation, rerr.Class)
}

func TestTimeoutRaceCancelsThePrimaryCall(t *testing.T) {
	caller := callerfakes.NewFakeCaller()
	caller.BlockOnCtx = true
	primary, err := remote.NewStrategy(caller)
	require.NoError(t, err)
	secondary := &stubStrategy{name: "secondary", result: okResult(resolver.TierBackingStore)}
	synthetic := &stubStrategy{name: "synthetic", result: okResult(resolver.TierSynthetic)}
	r := newResolver(t, primary, secondary, synthetic, resolver.WithTimeout(20*time.Millisecond))

	start := time.Now()
	res, err := r.Execute(context.Background(), mustDescriptor(t, http.MethodGet, "/documents"))
	require.NoError(t, err)
	require.Equal(t, resolver.TierBackingStore, res.Tier)
	// The blocked call settled with the cancelled context; nothing leaked
	// past the deadline by more than scheduling noise.
	require.Less(t, time.Since(start), 5*time.Second)
	require.Len(t, caller.Calls(), 1)
}

func TestNotFoundStatusMapsToNotFoundClass(t *testing.T) {
	rerr := resolver.NewRemoteRejected(404, nil)
	require.Equal(t, resolver.ClassNotFound, rerr.Class)
	require.True(t, resolver.IsRejection(rerr))

	rerr = resolver.NewRemoteRejected(401, json.RawMessage(`{"message":"nope"}`))
	require.Equal(t, resolver.ClassRemoteRejected, rerr.Class)
	require.True(t, resolver.IsRejection(rerr))

	require.False(t, resolver.IsRejection(resolver.NewTimeout(context.DeadlineExceeded)))
	require.False(t, resolver.IsRejection(resolver.NewTransport(errors.New("refused"))))
}

func TestServerFaultsAreNotRejections(t *testing.T) {
	// 5xx means the endpoint broke, not that it refused the request.
	require.False(t, resolver.IsRejection(resolver.NewRemoteRejected(500, nil)))
	require.False(t, resolver.IsRejection(resolver.NewRemoteRejected(503, json.RawMessage(`{"error":"overloaded"}`))))

	require.True(t, resolver.IsRejection(resolver.NewRemoteRejected(400, nil)))
	require.True(t, resolver.IsRejection(resolver.NewRemoteRejected(403, nil)))
}
