// Package apperrors defines the error taxonomy shared by services and controllers.
// Every domain failure carries the HTTP status and business code it maps to.
package apperrors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

// Kind classifies an application error
type Kind string

const (
	KindValidation          Kind = "VALIDATION_ERROR"
	KindNotFound            Kind = "NOT_FOUND"
	KindForbidden           Kind = "FORBIDDEN"
	KindUnauthenticated     Kind = "UNAUTHENTICATED"
	KindInvalidState        Kind = "INVALID_STATE"
	KindInsufficientStock   Kind = "INSUFFICIENT_STOCK"
	KindPaymentNotCompleted Kind = "PAYMENT_NOT_COMPLETED"
	KindPaymentMismatch     Kind = "PAYMENT_MISMATCH"
	KindExternalService     Kind = "EXTERNAL_SERVICE_ERROR"
	KindInternal            Kind = "INTERNAL_ERROR"
)

var httpCodes = map[Kind]int{
	KindValidation:          http.StatusBadRequest,
	KindNotFound:            http.StatusNotFound,
	KindForbidden:           http.StatusForbidden,
	KindUnauthenticated:     http.StatusUnauthorized,
	KindInvalidState:        http.StatusBadRequest,
	KindInsufficientStock:   http.StatusBadRequest,
	KindPaymentNotCompleted: http.StatusBadRequest,
	KindPaymentMismatch:     http.StatusBadRequest,
	KindExternalService:     http.StatusInternalServerError,
	KindInternal:            http.StatusInternalServerError,
}

// Sentinels for errors.Is comparisons. Any *Error matches the sentinel of its kind.
var (
	ErrValidation          = &Error{kind: KindValidation}
	ErrNotFound            = &Error{kind: KindNotFound}
	ErrForbidden           = &Error{kind: KindForbidden}
	ErrUnauthenticated     = &Error{kind: KindUnauthenticated}
	ErrInvalidState        = &Error{kind: KindInvalidState}
	ErrInsufficientStock   = &Error{kind: KindInsufficientStock}
	ErrPaymentNotCompleted = &Error{kind: KindPaymentNotCompleted}
	ErrPaymentMismatch     = &Error{kind: KindPaymentMismatch}
	ErrExternalService     = &Error{kind: KindExternalService}
	ErrInternal            = &Error{kind: KindInternal}
)

// Error is an application error with a user-facing message
type Error struct {
	kind    Kind
	message string
	details string
	cause   error
}

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{kind: kind, message: fmt.Sprintf(format, args...)}
}

// Validation reports malformed or missing input
func Validation(format string, args ...any) *Error {
	return newError(KindValidation, format, args...)
}

// NotFound reports a referenced entity that does not exist
func NotFound(format string, args ...any) *Error {
	return newError(KindNotFound, format, args...)
}

// Forbidden reports an authenticated caller that is not entitled to the operation
func Forbidden(format string, args ...any) *Error {
	return newError(KindForbidden, format, args...)
}

// Unauthenticated reports a missing or invalid credential
func Unauthenticated(format string, args ...any) *Error {
	return newError(KindUnauthenticated, format, args...)
}

// InvalidState reports an operation that is not legal in the current lifecycle state
func InvalidState(format string, args ...any) *Error {
	return newError(KindInvalidState, format, args...)
}

// InsufficientStock reports a product line that exceeds the available stock
func InsufficientStock(productName string) *Error {
	return newError(KindInsufficientStock, "Not enough stock for %s", productName)
}

// PaymentNotCompleted reports a payment intent whose status is not "succeeded"
func PaymentNotCompleted(status string) *Error {
	return newError(KindPaymentNotCompleted, "Payment has not been completed yet").WithDetails("status: " + status)
}

// PaymentMismatch reports a payment reference that belongs to another order or does not cover its total
func PaymentMismatch() *Error {
	return newError(KindPaymentMismatch, "Payment ID does not match this order")
}

// ExternalService wraps a failure of a collaborator such as the payment gateway
func ExternalService(cause error, format string, args ...any) *Error {
	e := newError(KindExternalService, format, args...)
	e.cause = errors.WithStack(cause)
	return e
}

// Internal wraps an unclassified server fault
func Internal(cause error) *Error {
	return &Error{kind: KindInternal, message: "Server error", cause: cause}
}

// WithDetails returns a copy of the error carrying extra detail text
func (e *Error) WithDetails(details string) *Error {
	clone := *e
	clone.details = details
	return &clone
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.cause != nil {
		return e.message + ": " + e.cause.Error()
	}
	return e.message
}

// Unwrap exposes the wrapped cause
func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches any *Error of the same kind, which lets the sentinels work with errors.Is
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.kind == e.kind
}

// Kind returns the error classification
func (e *Error) Kind() Kind {
	return e.kind
}

// HTTPCode returns the HTTP status code for the error
func (e *Error) HTTPCode() int {
	if code, ok := httpCodes[e.kind]; ok {
		return code
	}
	return http.StatusInternalServerError
}

// Code returns the business error code
func (e *Error) Code() string {
	return string(e.kind)
}

// Message returns the user-facing message
func (e *Error) Message() string {
	return e.message
}

// Details returns optional detail text
func (e *Error) Details() string {
	return e.details
}

// From classifies any error. Errors that are not application errors become Internal.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}

// KindOf returns the classification of err
func KindOf(err error) Kind {
	return From(err).Kind()
}
