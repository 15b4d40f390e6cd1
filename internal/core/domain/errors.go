package domain

import "errors"

// Kind classifies an error for callers that need to decide between retrying,
// fixing the request, or giving up.
type Kind string

const (
	KindConflict        Kind = "conflict"
	KindInvalidArgument Kind = "invalid_argument"
	KindUnauthorized    Kind = "unauthorized"
	KindForbidden       Kind = "forbidden"
	KindNotFound        Kind = "not_found"
	KindUnavailable     Kind = "unavailable"
	KindInternal        Kind = "internal"
)

// Error is a sentinel that carries its Kind. Compare with errors.Is.
type Error struct {
	kind Kind
	msg  string
}

func newError(kind Kind, msg string) *Error {
	return &Error{kind: kind, msg: msg}
}

func (e *Error) Error() string { return e.msg }

// Kind returns the classification of e.
func (e *Error) Kind() Kind { return e.kind }

var (
	ErrAccountExists   = newError(KindConflict, "user already exists")
	ErrAlreadyVerified = newError(KindConflict, "account already verified")

	ErrInvalidToken         = newError(KindInvalidArgument, "invalid token")
	ErrTokenExpired         = newError(KindInvalidArgument, "token expired")
	ErrTokenUsed            = newError(KindInvalidArgument, "token already used")
	ErrTokenUserNotFound    = newError(KindInvalidArgument, "user not found")
	ErrNoUpdateFields       = newError(KindInvalidArgument, "at least one of first_name, last_name or password is required")
	ErrEmailImmutable       = newError(KindInvalidArgument, "email cannot be changed")
	ErrUnsupportedMediaType = newError(KindInvalidArgument, "unsupported media type")
	ErrInvalidInput         = newError(KindInvalidArgument, "invalid input")

	ErrUnauthorized = newError(KindUnauthorized, "unauthorized")
	ErrNotVerified  = newError(KindForbidden, "account email is not verified")

	ErrAccountNotFound = newError(KindNotFound, "user not found")
	ErrTokenNotFound   = newError(KindNotFound, "verification token not found")
	ErrAssetNotFound   = newError(KindNotFound, "profile picture not found")

	ErrUnavailable = newError(KindUnavailable, "dependency unavailable")

	ErrInconsistentState = newError(KindInternal, "inconsistent state")
)

// KindOf walks the wrap chain of err and returns the Kind of the first domain
// error found. Errors outside the taxonomy are KindInternal.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.kind
	}
	return KindInternal
}
