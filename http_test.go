package contacts_test

import (
	"errors"
	"testing"

	validation "github.com/go-ozzo/ozzo-validation"
	contacts "github.com/goliatone/go-contacts"
	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusFromError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"bad credentials", contacts.ErrBadCredentials, 401},
		{"unauthenticated", contacts.ErrUnauthenticated, 401},
		{"expired token", contacts.ErrTokenExpired, 401},
		{"duplicate email", contacts.ErrDuplicateEmail, 409},
		{"invalid verification token", contacts.ErrVerificationInvalid, 400},
		{"contact not found", contacts.ErrContactNotFound, 404},
		{"account not found", contacts.ErrAccountNotFound, 404},
		{"rate limited", contacts.ErrRateLimited, 429},
		{"bad input", goerrors.New("malformed payload", goerrors.CategoryBadInput), 400},
		{"plain error", assert.AnError, 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, contacts.HTTPStatusFromError(tt.err))
		})
	}
}

func TestFormatValidationErrorToMap(t *testing.T) {
	verr := validation.Errors{
		"email":    errors.New("cannot be blank"),
		"password": errors.New("the length must be between 1 and 100"),
	}

	fields := contacts.FormatValidationErrorToMap(verr)
	assert.Equal(t, "cannot be blank", fields["email"])
	assert.Equal(t, "the length must be between 1 and 100", fields["password"])

	t.Run("non validation errors collapse to payload", func(t *testing.T) {
		fields := contacts.FormatValidationErrorToMap(assert.AnError)
		assert.Contains(t, fields, "payload")
	})
}
