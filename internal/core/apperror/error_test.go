package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	base := NewNoReservations()
	if got := base.Error(); got != "NO_RESERVATIONS: No reservations found" {
		t.Errorf("unexpected error string: %q", got)
	}

	cause := errors.New("connection reset")
	withCause := NewSearchFailed(cause)
	if got := withCause.Error(); got != "SEARCH_FAILED: Failed to search (caused by: connection reset)" {
		t.Errorf("unexpected error string: %q", got)
	}
	if !errors.Is(withCause, cause) {
		t.Error("expected Unwrap to expose the cause")
	}
}

func TestLegacyMessages(t *testing.T) {
	tests := []struct {
		err  *AppError
		want string
	}{
		{NewAlreadyLoggedIn(), "User already logged in"},
		{NewLoginFailed(nil), "Login failed"},
		{NewCreateUserFailed(nil), "Failed to create user"},
		{NewNoSuchItinerary(3), "No such itinerary 3"},
		{NewSameDayConflict(), "You cannot book two flights in the same day"},
		{NewBookingFailed(nil), "Booking failed"},
		{NewReservationNotFound(7, "alice"), "Cannot find unpaid reservation 7 under user: alice"},
		{NewInsufficientFunds(100, 350), "User has only 100 in account but itinerary costs 350"},
		{NewNoReservations(), "No reservations found"},
		{NewPaymentFailed(7, nil), "Failed to pay for reservation 7"},
		{NewCancelFailed(7, nil), "Failed to cancel reservation 7"},
		{NewSearchFailed(nil), "Failed to search"},
		{NewListFailed(nil), "Failed to retrieve reservations"},
	}
	for _, tt := range tests {
		if tt.err.Message != tt.want {
			t.Errorf("%s: got message %q, want %q", tt.err.Code, tt.err.Message, tt.want)
		}
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{NewNotLoggedIn("Cannot pay, not logged in"), http.StatusUnauthorized},
		{NewAlreadyLoggedIn(), http.StatusConflict},
		{NewNoSuchItinerary(0), http.StatusNotFound},
		{NewSameDayConflict(), http.StatusUnprocessableEntity},
		{NewInsufficientFunds(0, 1), http.StatusUnprocessableEntity},
		{NewTxConflict(nil), http.StatusConflict},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := GetHTTPStatus(tt.err); got != tt.want {
			t.Errorf("GetHTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestIsCodeThroughWrapping(t *testing.T) {
	err := fmt.Errorf("operation: %w", NewLoginFailed(nil))
	if !IsCode(err, CodeLoginFailed) {
		t.Error("expected IsCode to see through wrapping")
	}
	if IsCode(err, CodeBookingFailed) {
		t.Error("IsCode matched the wrong code")
	}
	if IsCode(errors.New("plain"), CodeLoginFailed) {
		t.Error("IsCode matched a non-AppError")
	}
}

func TestWithDetail(t *testing.T) {
	err := NewValidation("day of month must be between 1 and 31").WithDetail("day", 42)
	if err.Details["day"] != 42 {
		t.Errorf("detail not recorded: %v", err.Details)
	}
}
