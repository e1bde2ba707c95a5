package callerfakes

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/docuvault/go-admin-core/resolver/remote"
)

var _ remote.Caller = (*FakeCaller)(nil)

// Call records one request seen by the fake.
type Call struct {
	Method string
	Path   string
	Body   any
	Token  string
}

// FakeCaller is a scripted Caller for tests. Responses are matched by
// "METHOD path"; the Err and Response fields act as a catch-all when no
// scripted entry matches.
type FakeCaller struct {
	Response   *remote.Response
	Err        error
	Scripted   map[string]ScriptedResponse
	BlockOnCtx bool

	lock  sync.Mutex
	calls []Call
}

// ScriptedResponse is a per-route response or error.
type ScriptedResponse struct {
	Response *remote.Response
	Err      error
}

// NewFakeCaller builds an empty fake that answers 200 with a null body.
func NewFakeCaller() *FakeCaller {
	return &FakeCaller{
		Response: &remote.Response{Status: 200, Body: json.RawMessage(`null`)},
		Scripted: make(map[string]ScriptedResponse),
	}
}

// Script registers a response for "METHOD path".
func (f *FakeCaller) Script(method, path string, resp *remote.Response, err error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.Scripted[method+" "+path] = ScriptedResponse{Response: resp, Err: err}
}

// Do implements remote.Caller.
func (f *FakeCaller) Do(ctx context.Context, method, path string, body any, token string) (*remote.Response, error) {
	f.lock.Lock()
	f.calls = append(f.calls, Call{Method: method, Path: path, Body: body, Token: token})
	scripted, ok := f.Scripted[method+" "+path]
	block := f.BlockOnCtx
	f.lock.Unlock()

	if block {
		// Simulate a hung endpoint: settle only when the context does.
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if ok {
		return scripted.Response, scripted.Err
	}
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Response, nil
}

// Calls returns a copy of the recorded requests.
func (f *FakeCaller) Calls() []Call {
	f.lock.Lock()
	defer f.lock.Unlock()
	out := make([]Call, len(f.calls))
	copy(out, f.calls)
	return out
}

// LastCall returns the most recent request, or nil.
func (f *FakeCaller) LastCall() *Call {
	f.lock.Lock()
	defer f.lock.Unlock()
	if len(f.calls) == 0 {
		return nil
	}
	call := f.calls[len(f.calls)-1]
	return &call
}
