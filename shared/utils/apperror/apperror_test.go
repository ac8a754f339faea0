package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

func TestConstructorsCarryStatus(t *testing.T) {
	cases := []struct {
		err  *AppError
		want int
	}{
		{Unauthenticated("no token"), http.StatusUnauthorized},
		{Forbidden("wrong role"), http.StatusForbidden},
		{NotFound("missing"), http.StatusNotFound},
		{Conflict("duplicate"), http.StatusConflict},
		{InvalidInput("bad input", nil), http.StatusBadRequest},
		{InvalidState("last admin"), http.StatusBadRequest},
	}

	for _, tc := range cases {
		if tc.err.StatusCode != tc.want {
			t.Errorf("%q: status = %d, want %d", tc.err.Message, tc.err.StatusCode, tc.want)
		}
	}
}

func TestFromPassesThroughAppError(t *testing.T) {
	original := Conflict("slug already exists")

	got := From(fmt.Errorf("create organization: %w", original))
	if got != original {
		t.Errorf("From did not unwrap the AppError, got %+v", got)
	}
}

func TestFromMapsDatastoreErrors(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{gorm.ErrRecordNotFound, http.StatusNotFound},
		{gorm.ErrDuplicatedKey, http.StatusConflict},
		{gorm.ErrForeignKeyViolated, http.StatusBadRequest},
	}

	for _, tc := range cases {
		if got := From(tc.err); got.StatusCode != tc.want {
			t.Errorf("From(%v): status = %d, want %d", tc.err, got.StatusCode, tc.want)
		}
	}
}

func TestFromUnknownErrorIsGeneric500(t *testing.T) {
	got := From(errors.New("pq: connection reset by peer"))

	if got.StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", got.StatusCode)
	}
	if got.Message != "Something went wrong" {
		t.Errorf("internal detail leaked: %q", got.Message)
	}
}

func TestFromValidationErrorsHaveFieldDetails(t *testing.T) {
	type loginForm struct {
		Email    string `validate:"required,email"`
		Password string `validate:"required,min=6"`
	}

	err := validator.New().Struct(loginForm{Email: "not-an-email", Password: "abc"})
	if err == nil {
		t.Fatal("expected validation to fail")
	}

	got := From(err)
	if got.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", got.StatusCode)
	}

	fields, ok := got.Details.([]FieldError)
	if !ok {
		t.Fatalf("Details = %T, want []FieldError", got.Details)
	}
	if len(fields) != 2 {
		t.Fatalf("got %d field errors, want 2", len(fields))
	}
	for _, fe := range fields {
		if fe.Field == "" || fe.Message == "" {
			t.Errorf("incomplete field error: %+v", fe)
		}
	}
}
