package contacts

import (
	"context"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Contacts interface {
	repository.Repository[*Contact]

	CreateOwned(ctx context.Context, contact *Contact) (*Contact, error)
	CreateOwnedTx(ctx context.Context, tx bun.IDB, contact *Contact) (*Contact, error)
	ListForOwner(ctx context.Context, ownerID uuid.UUID) ([]*Contact, error)
	DeleteOwned(ctx context.Context, ownerID, contactID uuid.UUID) error
}

type contactsRepo struct {
	repository.Repository[*Contact]
	db *bun.DB
}

var (
	_ Contacts                        = (*contactsRepo)(nil)
	_ repository.Repository[*Contact] = (*contactsRepo)(nil)
)

func NewContactsRepository(db *bun.DB) Contacts {
	repo := repository.NewRepository[*Contact](db, repository.ModelHandlers[*Contact]{
		NewRecord: func() *Contact { return &Contact{} },
		GetID: func(c *Contact) uuid.UUID {
			if c == nil {
				return uuid.Nil
			}
			return c.ID
		},
		SetID: func(c *Contact, id uuid.UUID) {
			if c != nil {
				c.ID = id
			}
		},
	})

	return &contactsRepo{
		Repository: repo,
		db:         db,
	}
}

func (r *contactsRepo) CreateOwned(ctx context.Context, contact *Contact) (*Contact, error) {
	return r.CreateOwnedTx(ctx, r.db, contact)
}

func (r *contactsRepo) CreateOwnedTx(ctx context.Context, tx bun.IDB, contact *Contact) (*Contact, error) {
	if contact.ID == uuid.Nil {
		contact.ID = uuid.New()
	}
	return r.Repository.CreateTx(ctx, tx, contact)
}

// ListForOwner returns the owner's contacts in insertion order. Other
// accounts' rows are invisible by construction: every query carries the
// owner predicate.
func (r *contactsRepo) ListForOwner(ctx context.Context, ownerID uuid.UUID) ([]*Contact, error) {
	records := []*Contact{}
	err := r.db.NewSelect().
		Model(&records).
		Where("?TableAlias.user_id = ?", ownerID).
		Order("created_at ASC").
		Scan(ctx)

	if err != nil {
		return nil, err
	}

	return records, nil
}

// DeleteOwned removes a contact only when it belongs to ownerID. A missing
// row and a row owned by someone else produce the same ErrContactNotFound,
// so deletion attempts cannot probe other accounts' data.
func (r *contactsRepo) DeleteOwned(ctx context.Context, ownerID, contactID uuid.UUID) error {
	res, err := r.db.NewDelete().
		Model((*Contact)(nil)).
		Where("id = ?", contactID).
		Where("user_id = ?", ownerID).
		Exec(ctx)

	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if affected == 0 {
		return ErrContactNotFound
	}

	return nil
}
