package contacts

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

type ConfirmAccountMessage struct {
	Token      string `json:"token"`
	MaxAge     time.Duration
	OnResponse func(u *User)
}

func (e ConfirmAccountMessage) Type() string { return "user.confirm" }

// ConfirmAccountHandler redeems a verification token and flips the account
// to confirmed. Redeeming the same token again inside its window succeeds
// without a second transition.
type ConfirmAccountHandler struct {
	repo  RepositoryManager
	codec VerificationCodec
}

func NewConfirmAccountHandler(repo RepositoryManager, codec VerificationCodec) *ConfirmAccountHandler {
	return &ConfirmAccountHandler{
		repo:  repo,
		codec: codec,
	}
}

func (h *ConfirmAccountHandler) Execute(ctx context.Context, event ConfirmAccountMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(ctx.Err(), goerrors.CategoryOperation, "context cancelled during account confirmation")
	default:
		return h.execute(ctx, event)
	}
}

func (h *ConfirmAccountHandler) execute(ctx context.Context, event ConfirmAccountMessage) error {
	email, err := h.codec.Redeem(event.Token, event.MaxAge)
	if err != nil {
		return ErrVerificationInvalid
	}

	user := &User{}
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err = h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		user, err = h.repo.Users().ConfirmTx(ctx, tx, email)
		return err
	})

	if err != nil {
		if goerrors.Is(err, ErrAccountNotFound) {
			// The address signed into the token no longer maps to an account;
			// indistinguishable from a bad token on purpose.
			return ErrVerificationInvalid
		}

		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "account confirmation transaction failed")
	}

	if event.OnResponse != nil {
		event.OnResponse(user)
	}

	return nil
}
