package remote_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/docuvault/go-admin-core/resolver"
	"github.com/docuvault/go-admin-core/resolver/remote"
)

func TestHTTPCallerSendsBearerTokenAndBody(t *testing.T) {
	var gotAuth, gotContentType string
	var gotBody map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"D9"}`))
	}))
	defer server.Close()

	caller, err := remote.NewHTTPCaller(server.URL)
	require.NoError(t, err)

	resp, err := caller.Do(context.Background(), http.MethodPost, "/documents", map[string]any{"title": "X"}, "tok-1")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.Status)
	require.Equal(t, "Bearer tok-1", gotAuth)
	require.Equal(t, "application/json", gotContentType)
	require.Equal(t, "X", gotBody["title"])
	require.JSONEq(t, `{"id":"D9"}`, string(resp.Body))
}

func TestHTTPCallerReturnsNonSuccessStatuses(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"boom"}`))
	}))
	defer server.Close()

	caller, err := remote.NewHTTPCaller(server.URL)
	require.NoError(t, err)

	resp, err := caller.Do(context.Background(), http.MethodGet, "/documents", nil, "")
	require.NoError(t, err)
	require.Equal(t, http.StatusInternalServerError, resp.Status)
}

func TestHTTPCallerHonorsContextDeadline(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()
	defer close(release)

	caller, err := remote.NewHTTPCaller(server.URL)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err = caller.Do(ctx, http.MethodGet, "/documents", nil, "")
	require.Error(t, err)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestStrategyClassifiesResponses(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/documents":
			_, _ = w.Write([]byte(`[{"id":"D1"}]`))
		case "/documents/D9":
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"missing"}`))
		case "/documents/D1":
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusForbidden)
		}
	}))
	defer server.Close()

	caller, err := remote.NewHTTPCaller(server.URL)
	require.NoError(t, err)
	strategy, err := remote.NewStrategy(caller)
	require.NoError(t, err)

	list, err := resolver.ParseDescriptor(http.MethodGet, "/documents")
	require.NoError(t, err)
	res, err := strategy.Resolve(context.Background(), list)
	require.NoError(t, err)
	require.Equal(t, resolver.TierPrimary, res.Tier)
	require.True(t, res.Durable)

	missing, err := resolver.ParseDescriptor(http.MethodGet, "/documents/D9")
	require.NoError(t, err)
	_, err = strategy.Resolve(context.Background(), missing)
	rerr, ok := resolver.AsError(err)
	require.True(t, ok)
	require.Equal(t, resolver.ClassNotFound, rerr.Class)
	require.Equal(t, http.StatusNotFound, rerr.Status)

	del, err := resolver.ParseDescriptor(http.MethodDelete, "/documents/D1")
	require.NoError(t, err)
	res, err = strategy.Resolve(context.Background(), del)
	require.NoError(t, err)
	require.Nil(t, res.Data)
}
