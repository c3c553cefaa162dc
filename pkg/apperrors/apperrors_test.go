package apperrors

import (
	"errors"
	"fmt"
	"testing"
)

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{InvalidArgument("bad field"), 400},
		{Unauthenticated("login required"), 401},
		{Unauthorized("not your trip"), 403},
		{NotFound("no such booking"), 404},
		{Conflict("duplicate"), 409},
		{InvalidState("not pending"), 409},
		{Internal("db failure", errors.New("boom")), 500},
		{errors.New("plain error"), 500},
	}

	for _, tc := range cases {
		if got := HTTPStatus(tc.err); got != tc.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestErrorWrapping(t *testing.T) {
	cause := errors.New("connection refused")
	err := Internal("store unavailable", cause)

	if !errors.Is(err, cause) {
		t.Error("wrapped cause not reachable via errors.Is")
	}

	wrapped := fmt.Errorf("creating booking: %w", err)
	if KindOf(wrapped) != KindInternal {
		t.Error("Kind lost through fmt.Errorf wrapping")
	}
	if HTTPStatus(wrapped) != 500 {
		t.Error("status lost through fmt.Errorf wrapping")
	}
}

func TestErrorMessage(t *testing.T) {
	if got := NotFound("Trip not found").Error(); got != "Trip not found" {
		t.Errorf("Error() = %q", got)
	}
}
