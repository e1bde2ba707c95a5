// Package console is the consumer-facing surface: session lifecycle plus a
// thin per-verb data API that routes every call through the tiered resolver
// with the current session token attached.
package console

import (
	"context"
	"net/http"

	"github.com/pkg/errors"

	"github.com/docuvault/go-admin-core/resolver"
	"github.com/docuvault/go-admin-core/session"
)

// Client bundles the session manager and the request resolver.
type Client struct {
	sessions *session.Manager
	resolver *resolver.Resolver
}

// New builds a Client over its two collaborators.
func New(sessions *session.Manager, res *resolver.Resolver) (*Client, error) {
	if sessions == nil {
		return nil, errors.New("[console.New] session manager is required")
	}
	if res == nil {
		return nil, errors.New("[console.New] resolver is required")
	}
	return &Client{sessions: sessions, resolver: res}, nil
}

// Login authenticates and starts the session lifecycle.
func (c *Client) Login(ctx context.Context, email, secret string, remember bool) (*session.Session, error) {
	return c.sessions.Login(ctx, email, secret, remember)
}

// Logout ends the session; remote invalidation is best effort.
func (c *Client) Logout(ctx context.Context) {
	c.sessions.Logout(ctx)
}

// Restore reactivates a persisted session, if one is still valid.
func (c *Client) Restore(ctx context.Context) (*session.Session, error) {
	return c.sessions.Restore(ctx)
}

// CurrentSession returns the active session, or nil.
func (c *Client) CurrentSession() *session.Session {
	return c.sessions.Current()
}

// Close disposes the session manager's scheduler.
func (c *Client) Close() {
	c.sessions.Close()
}

// Get resolves a read against the tier chain.
func (c *Client) Get(ctx context.Context, path string) (*resolver.Result, error) {
	return c.do(ctx, http.MethodGet, path, nil)
}

// Post resolves a create (or an action sub-path) against the tier chain.
func (c *Client) Post(ctx context.Context, path string, body any) (*resolver.Result, error) {
	return c.do(ctx, http.MethodPost, path, body)
}

// Put resolves an update against the tier chain.
func (c *Client) Put(ctx context.Context, path string, body any) (*resolver.Result, error) {
	return c.do(ctx, http.MethodPut, path, body)
}

// Delete resolves a delete against the tier chain.
func (c *Client) Delete(ctx context.Context, path string) (*resolver.Result, error) {
	return c.do(ctx, http.MethodDelete, path, nil)
}

func (c *Client) do(ctx context.Context, verb, path string, body any) (*resolver.Result, error) {
	d, err := resolver.ParseDescriptor(verb, path)
	if err != nil {
		return nil, err
	}
	d.Body = body
	if sess := c.sessions.Current(); sess != nil {
		d.Token = sess.Token
	}
	return c.resolver.Execute(ctx, d)
}
