package auth

import (
	"errors"
	"fmt"
)

// Kind classifies authentication failures into the stable categories callers
// are expected to branch on.
type Kind string

const (
	KindInvalidCredentials Kind = "invalid_credentials"
	KindUnconfirmed        Kind = "unconfirmed"
	KindRateLimited        Kind = "rate_limited"
	KindAlreadyRegistered  Kind = "already_registered"
	KindWeakPassword       Kind = "weak_password"
	KindInvalidEmail       Kind = "invalid_email"
	KindUnknown            Kind = "unknown"
)

// Error is an authentication failure carrying a machine-readable kind.
type Error struct {
	Kind  Kind
	msg   string
	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.cause)
	}
	return e.msg
}

func (e *Error) Unwrap() error { return e.cause }

func newError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, msg: msg}
}

func wrapError(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, msg: msg, cause: cause}
}

// KindOf extracts the failure kind from err. Non-auth errors report KindUnknown.
func KindOf(err error) Kind {
	var authErr *Error
	if errors.As(err, &authErr) {
		return authErr.Kind
	}
	return KindUnknown
}

var (
	// ErrSessionNotFound indicates the provided refresh token does not map to an active session.
	ErrSessionNotFound = errors.New("session not found")
	// ErrRefreshTokenExpired indicates the refresh token has expired and cannot be used.
	ErrRefreshTokenExpired = errors.New("refresh token expired")
	// ErrInvalidAccessToken indicates the presented access token failed verification.
	ErrInvalidAccessToken = errors.New("invalid access token")
)
