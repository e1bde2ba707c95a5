package session

import "errors"

var (
	// ErrInvalidCredentials means the primary endpoint was reached and
	// explicitly rejected the credentials. It is never synthesized by a
	// fallback tier.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUnreachable means no tier could authenticate the caller.
	ErrUnreachable = errors.New("authentication service unreachable")
)
