package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const maxResponseBytes = 8 << 20

// HTTPCaller is the production Caller over net/http. The request context
// carries the resolver deadline, so a lost timeout race actually tears the
// connection down instead of leaking an in-flight request.
type HTTPCaller struct {
	baseURL string
	client  *http.Client
	logger  zerolog.Logger
}

// HTTPCallerOption modifies an HTTPCaller instance.
type HTTPCallerOption func(*HTTPCaller)

// WithHTTPClient overrides the underlying http.Client.
func WithHTTPClient(client *http.Client) HTTPCallerOption {
	return func(c *HTTPCaller) {
		c.client = client
	}
}

// WithLogger sets the caller logger.
func WithLogger(logger zerolog.Logger) HTTPCallerOption {
	return func(c *HTTPCaller) {
		c.logger = logger
	}
}

// NewHTTPCaller builds a caller for the given base URL.
func NewHTTPCaller(baseURL string, options ...HTTPCallerOption) (*HTTPCaller, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("[NewHTTPCaller] baseURL is required")
	}
	c := &HTTPCaller{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
		logger:  zerolog.Nop(),
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

// Do implements Caller.
func (c *HTTPCaller) Do(ctx context.Context, method, path string, body any, token string) (*Response, error) {
	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(err, "[HTTPCaller.Do] marshal body")
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, errors.Wrap(err, "[HTTPCaller.Do] build request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "[HTTPCaller.Do] request")
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, errors.Wrap(err, "[HTTPCaller.Do] read body")
	}

	c.logger.Debug().Str("method", method).Str("path", path).Int("status", resp.StatusCode).Msg("remote call completed")
	return &Response{Status: resp.StatusCode, Body: payload}, nil
}
