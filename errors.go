package contacts

import (
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// ErrDuplicateEmail is returned when registering an email that is already taken
var ErrDuplicateEmail = goerrors.New("email already registered", goerrors.CategoryConflict).
	WithCode(goerrors.CodeConflict).
	WithTextCode("DUPLICATE_EMAIL")

// ErrBadCredentials collapses unknown-email and wrong-password into one error
// so the response never reveals which check failed
var ErrBadCredentials = goerrors.New("bad email or password", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized).
	WithTextCode("BAD_CREDENTIALS")

// ErrUnauthenticated covers missing, malformed, invalid, and expired session
// tokens with a single client-facing response
var ErrUnauthenticated = goerrors.New("authentication required", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized).
	WithTextCode("UNAUTHENTICATED")

// ErrTokenExpired signals an expired session token. The HTTP boundary folds it
// into ErrUnauthenticated before anything reaches the client.
var ErrTokenExpired = goerrors.New("token is expired", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized).
	WithTextCode("TOKEN_EXPIRED")

// ErrTokenMalformed signals a token that failed parsing or signature checks
var ErrTokenMalformed = goerrors.New("token is malformed", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized).
	WithTextCode("TOKEN_MALFORMED")

// ErrVerificationInvalid is the uniform failure for verification token
// redemption: malformed, tampered, and expired tokens are indistinguishable
// to a remote caller
var ErrVerificationInvalid = goerrors.New("the confirmation link is invalid or has expired", goerrors.CategoryValidation).
	WithCode(goerrors.CodeBadRequest).
	WithTextCode("INVALID_OR_EXPIRED_TOKEN")

// ErrContactNotFound covers both a contact that does not exist and a contact
// owned by another account; the two cases must not be distinguishable
var ErrContactNotFound = goerrors.New("contact not found", goerrors.CategoryNotFound).
	WithCode(goerrors.CodeNotFound).
	WithTextCode("CONTACT_NOT_FOUND")

// ErrAccountNotFound is returned when confirming an email with no account
var ErrAccountNotFound = goerrors.New("account not found", goerrors.CategoryNotFound).
	WithCode(goerrors.CodeNotFound).
	WithTextCode("ACCOUNT_NOT_FOUND")

// ErrRateLimited is returned when a client exceeds the mutation budget
var ErrRateLimited = goerrors.New("rate limit exceeded", goerrors.CategoryRateLimit).
	WithTextCode("RATE_LIMITED")

// ErrNoEmptyString rejects empty required inputs before they reach bcrypt
var ErrNoEmptyString = goerrors.New("value must not be empty", goerrors.CategoryValidation).
	WithCode(goerrors.CodeBadRequest).
	WithTextCode("EMPTY_VALUE")

// ErrMismatchedHashAndPassword is the normalized bcrypt mismatch error
var ErrMismatchedHashAndPassword = goerrors.New("password does not match", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized).
	WithTextCode("PASSWORD_MISMATCH")

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}

// IsUniqueViolation reports whether a storage error came from a unique
// constraint. Both mattn and modernc sqlite drivers surface the constraint
// name in the message.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
