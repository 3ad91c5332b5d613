// Package apperror provides structured error handling for the reservation API.
// All business errors must use AppError for consistent API responses.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes following domain-driven design
const (
	// Infrastructure errors (5xx)
	CodeInternal = "INTERNAL_ERROR"

	// Validation errors (400)
	CodeValidation = "VALIDATION_ERROR"

	// Session and authentication (401, 409)
	CodeSessionRequired = "SESSION_REQUIRED"
	CodeNotLoggedIn     = "NOT_LOGGED_IN"
	CodeAlreadyLoggedIn = "ALREADY_LOGGED_IN"
	CodeLoginFailed     = "LOGIN_FAILED"

	// Business rule violations (404, 422)
	CodeNoSuchItinerary     = "NO_SUCH_ITINERARY"
	CodeSameDayConflict     = "SAME_DAY_CONFLICT"
	CodeReservationNotFound = "RESERVATION_NOT_FOUND"
	CodeInsufficientFunds   = "INSUFFICIENT_FUNDS"
	CodeNoReservations      = "NO_RESERVATIONS"

	// Generic per-operation failures. Each public operation has exactly one
	// catch-all code, distinct from its business-rule failures.
	CodeCreateUserFailed = "CREATE_USER_FAILED"
	CodeSearchFailed     = "SEARCH_FAILED"
	CodeBookingFailed    = "BOOKING_FAILED"
	CodePaymentFailed    = "PAYMENT_FAILED"
	CodeCancelFailed     = "CANCEL_FAILED"
	CodeListFailed       = "LIST_FAILED"

	// Transaction conflict that survived the bounded retry (409)
	CodeTxConflict = "TX_CONFLICT"
)

// AppError is the standard error type for the service.
// It implements error interface and provides structured details for API responses.
type AppError struct {
	// Code is a machine-readable error identifier
	Code string `json:"code"`

	// Message is a human-readable error description
	Message string `json:"message"`

	// Details contains additional context (ids, amounts, etc.)
	Details map[string]any `json:"details,omitempty"`

	// HTTPStatus is the suggested HTTP status code
	HTTPStatus int `json:"-"`

	// Err is the underlying error (not exposed in JSON)
	Err error `json:"-"`
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail adds a key-value pair to error details
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause sets the underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Err = err
	return e
}

// --- Factory functions ---

// NewValidation creates a validation error (400)
func NewValidation(message string) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewInternal creates an internal server error (hides details from client)
func NewInternal(err error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    "Internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewSessionRequired is returned when a request carries no valid session token.
func NewSessionRequired() *AppError {
	return &AppError{
		Code:       CodeSessionRequired,
		Message:    "A valid session token is required",
		HTTPStatus: http.StatusUnauthorized,
	}
}

// NewNotLoggedIn is returned when an operation requires a logged-in session.
// The message is operation-specific ("Cannot book reservations, not logged in").
func NewNotLoggedIn(message string) *AppError {
	return &AppError{
		Code:       CodeNotLoggedIn,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// NewAlreadyLoggedIn is returned when a session tries to log in twice.
func NewAlreadyLoggedIn() *AppError {
	return &AppError{
		Code:       CodeAlreadyLoggedIn,
		Message:    "User already logged in",
		HTTPStatus: http.StatusConflict,
	}
}

// NewLoginFailed is returned for both unknown users and wrong passwords,
// which must stay indistinguishable to the caller.
func NewLoginFailed(err error) *AppError {
	return &AppError{
		Code:       CodeLoginFailed,
		Message:    "Login failed",
		HTTPStatus: http.StatusUnauthorized,
		Err:        err,
	}
}

// NewCreateUserFailed covers every account-creation failure: duplicates,
// negative balances and store errors all collapse into one answer.
func NewCreateUserFailed(err error) *AppError {
	return &AppError{
		Code:       CodeCreateUserFailed,
		Message:    "Failed to create user",
		HTTPStatus: http.StatusBadRequest,
		Err:        err,
	}
}

// NewNoSuchItinerary is returned when the index does not match a cached
// itinerary from the session's most recent search.
func NewNoSuchItinerary(index int) *AppError {
	return &AppError{
		Code:       CodeNoSuchItinerary,
		Message:    fmt.Sprintf("No such itinerary %d", index),
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"itinerary": index},
	}
}

// NewSameDayConflict is returned when a booking would put two flights of the
// same user on the same day.
func NewSameDayConflict() *AppError {
	return &AppError{
		Code:       CodeSameDayConflict,
		Message:    "You cannot book two flights in the same day",
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}

// NewReservationNotFound is returned when the user owns no unpaid reservation
// with the given id.
func NewReservationNotFound(id int64, username string) *AppError {
	return &AppError{
		Code:       CodeReservationNotFound,
		Message:    fmt.Sprintf("Cannot find unpaid reservation %d under user: %s", id, username),
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"reservation_id": id},
	}
}

// NewInsufficientFunds reports the exact balance and cost without mutating
// either of them.
func NewInsufficientFunds(balance, cost int64) *AppError {
	return &AppError{
		Code:       CodeInsufficientFunds,
		Message:    fmt.Sprintf("User has only %d in account but itinerary costs %d", balance, cost),
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"balance": balance, "cost": cost},
	}
}

// NewNoReservations is returned when the user has no reservations to list.
func NewNoReservations() *AppError {
	return &AppError{
		Code:       CodeNoReservations,
		Message:    "No reservations found",
		HTTPStatus: http.StatusNotFound,
	}
}

// NewSearchFailed is the generic search failure.
func NewSearchFailed(err error) *AppError {
	return &AppError{
		Code:       CodeSearchFailed,
		Message:    "Failed to search",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewBookingFailed is the generic booking failure, also used when every seat
// on a requested flight is taken.
func NewBookingFailed(err error) *AppError {
	return &AppError{
		Code:       CodeBookingFailed,
		Message:    "Booking failed",
		HTTPStatus: http.StatusConflict,
		Err:        err,
	}
}

// NewPaymentFailed is the generic payment failure.
func NewPaymentFailed(id int64, err error) *AppError {
	return &AppError{
		Code:       CodePaymentFailed,
		Message:    fmt.Sprintf("Failed to pay for reservation %d", id),
		HTTPStatus: http.StatusInternalServerError,
		Details:    map[string]any{"reservation_id": id},
		Err:        err,
	}
}

// NewCancelFailed is the generic cancellation failure, also used when the
// user owns no reservation with the given id.
func NewCancelFailed(id int64, err error) *AppError {
	return &AppError{
		Code:       CodeCancelFailed,
		Message:    fmt.Sprintf("Failed to cancel reservation %d", id),
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"reservation_id": id},
		Err:        err,
	}
}

// NewListFailed is the generic reservation-listing failure.
func NewListFailed(err error) *AppError {
	return &AppError{
		Code:       CodeListFailed,
		Message:    "Failed to retrieve reservations",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewTxConflict is returned when a transaction still conflicts after the
// bounded retry gave up.
func NewTxConflict(err error) *AppError {
	return &AppError{
		Code:       CodeTxConflict,
		Message:    "Operation conflicted with concurrent activity, please retry",
		HTTPStatus: http.StatusConflict,
		Err:        err,
	}
}

// --- Helper functions ---

// IsAppError checks if error is AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError extracts AppError from error chain
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// GetHTTPStatus returns appropriate HTTP status for any error
func GetHTTPStatus(err error) int {
	if appErr, ok := AsAppError(err); ok {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// IsCode checks whether err carries the given application code.
func IsCode(err error, code string) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == code
	}
	return false
}
