// Package contacts implements a multi-tenant contact book service: account
// registration with email-ownership verification, bearer-token sessions, and
// per-account contact storage.
//
// Identity core:
//   - Users carry a bcrypt credential hash and a Confirmed flag that flips
//     exactly once when a signed verification token is redeemed. Email
//     uniqueness is enforced by the storage layer, never by check-then-act
//     application code.
//   - TokenService issues HMAC signed access and refresh tokens. The token
//     use is part of the signed payload, so a refresh token can never be
//     replayed as an access token.
//   - VerificationCodec issues and redeems the time-boxed tokens used by the
//     confirm-email flow. Redemption failures collapse into a single error so
//     remote callers cannot probe token structure.
//
// Authorization boundary:
//   - middleware/jwtware resolves the bearer token and injects the account
//     identity into the request context. Handlers never derive identity from
//     any other source.
//
// Collaborators (email transport, avatar storage) are consumed through narrow
// interfaces and run best-effort; their failures are logged and never roll
// back committed state.
package contacts
