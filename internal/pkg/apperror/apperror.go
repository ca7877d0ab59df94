// internal/pkg/apperror/apperror.go
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for boundary mapping.
type Kind int

const (
	KindValidation Kind = iota
	KindNotFound
	KindInconsistentCart
	KindStore
)

// Error is a tagged application error. Reason is a short machine-stable
// string surfaced on 4xx responses; Message is human-readable.
type Error struct {
	Kind    Kind
	Reason  string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation creates a 400-class input error.
func Validation(reason, message string) *Error {
	return &Error{Kind: KindValidation, Reason: reason, Message: message}
}

// NotFound creates a 404-class error.
func NotFound(reason, message string) *Error {
	return &Error{Kind: KindNotFound, Reason: reason, Message: message}
}

// InconsistentCart marks a cart whose referential integrity is broken at
// finalize time. Distinct from NotFound: it blocks a financial transaction.
func InconsistentCart(message string) *Error {
	return &Error{Kind: KindInconsistentCart, Reason: "inconsistent_cart", Message: message}
}

// Store wraps an underlying persistence failure. The wrapped error is for
// logs; responses carry a generic message only.
func Store(err error) *Error {
	return &Error{Kind: KindStore, Reason: "store_error", Message: "internal server error", Err: err}
}

// IsKind reports whether err is an application error of the given kind.
func IsKind(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}

// StatusCode maps an error to its HTTP status. Unknown errors are treated
// as store failures.
func StatusCode(err error) int {
	var appErr *Error
	if !errors.As(err, &appErr) {
		return http.StatusInternalServerError
	}
	switch appErr.Kind {
	case KindValidation, KindInconsistentCart:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Reason extracts the machine-stable reason string, or "internal_error" for
// untagged errors.
func Reason(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Reason
	}
	return "internal_error"
}
