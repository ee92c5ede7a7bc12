package contacts

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ConfirmUserSQL flips the confirmed flag. The WHERE clause makes redeeming
// the same token twice a no-op instead of a second state transition.
var ConfirmUserSQL = `UPDATE "users" AS "usr"
SET
	"confirmed" = TRUE,
	"updated_at" = CURRENT_TIMESTAMP
WHERE
	"usr"."email" = ?
AND "usr"."confirmed" = FALSE
RETURNING *;`

type Users interface {
	repository.Repository[*User]

	Register(ctx context.Context, user *User) (*User, error)
	RegisterTx(ctx context.Context, tx bun.IDB, user *User) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*User, error)
	Confirm(ctx context.Context, email string) (*User, error)
	ConfirmTx(ctx context.Context, tx bun.IDB, email string) (*User, error)
	SetAvatarURL(ctx context.Context, id uuid.UUID, url string) (*User, error)
}

type users struct {
	repository.Repository[*User]
	db *bun.DB
}

var (
	_ Users                        = (*users)(nil)
	_ repository.Repository[*User] = (*users)(nil)
)

func NewUsersRepository(db *bun.DB) Users {
	repo := repository.NewRepository[*User](db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID: func(u *User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &users{
		Repository: repo,
		db:         db,
	}
}

func (a *users) Register(ctx context.Context, user *User) (*User, error) {
	return a.RegisterTx(ctx, a.db, user)
}

// RegisterTx inserts a new unconfirmed account. Uniqueness is the unique
// index on users.email: a concurrent duplicate registration loses the insert
// race at the storage layer and surfaces here as ErrDuplicateEmail.
func (a *users) RegisterTx(ctx context.Context, tx bun.IDB, user *User) (*User, error) {
	prepareUserDefaults(user)

	record, err := a.Repository.CreateTx(ctx, tx, user)
	if err != nil {
		if IsUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}

	return record, nil
}

func (a *users) GetByEmail(ctx context.Context, email string) (*User, error) {
	return a.GetByEmailTx(ctx, a.db, email)
}

func (a *users) GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*User, error) {
	record := &User{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.email = ?", NormalizeEmail(email)).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"identifier": NormalizeEmail(email),
				})
		}
		return nil, err
	}

	return record, nil
}

func (a *users) Confirm(ctx context.Context, email string) (*User, error) {
	return a.ConfirmTx(ctx, a.db, email)
}

// ConfirmTx marks the account confirmed. Already-confirmed accounts return
// successfully without a second transition; unknown emails return
// ErrAccountNotFound.
func (a *users) ConfirmTx(ctx context.Context, tx bun.IDB, email string) (*User, error) {
	res, err := a.Repository.RawTx(ctx, tx, ConfirmUserSQL, NormalizeEmail(email))
	if err != nil {
		return nil, err
	}

	if len(res) > 0 {
		return res[0], nil
	}

	// Zero rows means either an unknown address or an account that was
	// already confirmed; a lookup disambiguates without racing the update.
	record, err := a.GetByEmailTx(ctx, tx, email)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}

	return record, nil
}

// SetAvatarURL updates only the avatar column, leaving the rest of the row
// untouched.
func (a *users) SetAvatarURL(ctx context.Context, id uuid.UUID, url string) (*User, error) {
	res, err := a.db.NewUpdate().
		Model((*User)(nil)).
		Set("avatar_url = ?", url).
		Set("updated_at = CURRENT_TIMESTAMP").
		Where("id = ?", id).
		Exec(ctx)

	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to persist avatar url")
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to persist avatar url")
	}

	if affected == 0 {
		return nil, ErrAccountNotFound
	}

	record := &User{}
	if err := a.db.NewSelect().Model(record).Where("?TableAlias.id = ?", id).Limit(1).Scan(ctx); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to reload account")
	}

	return record, nil
}

func prepareUserDefaults(record *User) {
	if record == nil {
		return
	}
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	record.Email = NormalizeEmail(record.Email)
}
