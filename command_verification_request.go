package contacts

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

type VerificationRequestMessage struct {
	Email string `json:"email"`
}

func (e VerificationRequestMessage) Type() string { return "user.verification_request" }

// VerificationRequestHandler re-sends a confirmation token. Unknown addresses
// and already confirmed accounts both return success without sending, so the
// endpoint cannot be used to probe which emails are registered.
type VerificationRequestHandler struct {
	repo   RepositoryManager
	codec  VerificationCodec
	mailer VerificationMailer
	logger Logger
}

func NewVerificationRequestHandler(repo RepositoryManager, codec VerificationCodec, mailer VerificationMailer) *VerificationRequestHandler {
	return &VerificationRequestHandler{
		repo:   repo,
		codec:  codec,
		mailer: mailer,
		logger: defLogger{},
	}
}

func (h *VerificationRequestHandler) WithLogger(l Logger) *VerificationRequestHandler {
	if l != nil {
		h.logger = l
	}
	return h
}

func (h *VerificationRequestHandler) Execute(ctx context.Context, event VerificationRequestMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(ctx.Err(), goerrors.CategoryOperation, "context cancelled during verification request")
	default:
		return h.execute(ctx, event)
	}
}

func (h *VerificationRequestHandler) execute(ctx context.Context, event VerificationRequestMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	user, err := h.repo.Users().GetByEmail(ctx, event.Email)
	if err != nil {
		if goerrors.IsNotFound(err) {
			h.logger.Debug("verification requested for unknown address", "email", event.Email)
			return nil
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve account for verification request")
	}

	if user.Confirmed {
		h.logger.Debug("verification requested for confirmed account", "email", user.Email)
		return nil
	}

	token, err := h.codec.Issue(user.Email)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to issue verification token")
	}

	if err := h.mailer.SendVerificationEmail(ctx, user.Email, token); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to deliver verification email")
	}

	return nil
}
