// Package mailer delivers account verification emails. The Brevo client
// speaks the transactional email HTTP API; Noop drops messages on the floor
// for development and tests.
package mailer

import (
	"context"
	"fmt"
)

// Mailer delivers a verification token to an inbox. Implementations satisfy
// the VerificationMailer interface consumed by the registration commands.
type Mailer interface {
	SendVerificationEmail(ctx context.Context, email, token string) error
}

// Noop discards every message. The delivery path stays wired without an
// external dependency.
type Noop struct{}

func (Noop) SendVerificationEmail(ctx context.Context, email, token string) error {
	return nil
}

var _ Mailer = Noop{}

// ConfirmLink builds the URL the recipient clicks, embedding the signed
// token as the final path segment.
func ConfirmLink(baseURL, token string) string {
	if baseURL == "" {
		return token
	}
	return fmt.Sprintf("%s/%s", baseURL, token)
}
