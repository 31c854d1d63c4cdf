package models

import (
	"fmt"
	"net/http"
)

type ErrorKind string

const (
	KindValidation        ErrorKind = "validation"
	KindAuthentication    ErrorKind = "authentication"
	KindAuthorization     ErrorKind = "authorization"
	KindNotFound          ErrorKind = "not_found"
	KindConflict          ErrorKind = "conflict"
	KindInsufficientFunds ErrorKind = "insufficient_funds"
	KindConfiguration     ErrorKind = "configuration"
	KindTransientStore    ErrorKind = "transient_store"
)

// Error is the machine-readable error shape returned to callers. Internal
// detail (wrapped store errors and the like) stays server-side.
type Error struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Is matches on kind so callers can test errors.Is(err, models.ErrConflict)
// without caring about the message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func E(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

var (
	ErrValidation        = &Error{Kind: KindValidation, Message: "invalid request"}
	ErrAuthentication    = &Error{Kind: KindAuthentication, Message: "authentication failed"}
	ErrAuthorization     = &Error{Kind: KindAuthorization, Message: "not permitted"}
	ErrNotFound          = &Error{Kind: KindNotFound, Message: "not found"}
	ErrConflict          = &Error{Kind: KindConflict, Message: "request not pending"}
	ErrInsufficientFunds = &Error{Kind: KindInsufficientFunds, Message: "insufficient balance"}
	ErrConfiguration     = &Error{Kind: KindConfiguration, Message: "service misconfigured"}
	ErrTransientStore    = &Error{Kind: KindTransientStore, Message: "store unavailable"}
)

// HTTPStatus maps an error to the response status. Unknown errors are treated
// as transient store failures so the caller retries rather than gives up.
func HTTPStatus(err error) int {
	e, ok := err.(*Error)
	if !ok {
		return http.StatusServiceUnavailable
	}

	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindInsufficientFunds:
		return http.StatusPaymentRequired
	case KindConfiguration:
		return http.StatusInternalServerError
	default:
		return http.StatusServiceUnavailable
	}
}
