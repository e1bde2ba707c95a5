// Package remote implements the primary-tier strategy: requests sent
// verbatim to the console backend over HTTP.
package remote

import (
	"context"
	"encoding/json"
)

// Response is what the primary endpoint answered, including non-2xx statuses.
type Response struct {
	Status int
	Body   json.RawMessage
}

// Caller sends a method + path + body + optional bearer token to the remote
// endpoint. Implementations return an error only for transport-level
// failures; a served non-2xx status is a valid Response.
type Caller interface {
	Do(ctx context.Context, method, path string, body any, token string) (*Response, error)
}
