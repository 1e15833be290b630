package users

import (
	"context"

	"github.com/angelmondragon/pantryshare-backend/pkg/docstore"
)

const collection = "users"

// Repository exposes user profile persistence.
type Repository struct {
	store docstore.Store
}

func NewRepository(store docstore.Store) *Repository {
	return &Repository{store: store}
}

// FindByID returns docstore.ErrNotFound for unknown users.
func (r *Repository) FindByID(ctx context.Context, uid string) (*Profile, error) {
	path, err := docstore.Join(collection, uid)
	if err != nil {
		return nil, err
	}
	fields, err := r.store.Get(ctx, path)
	if err != nil {
		return nil, err
	}
	p := fromFields(uid, fields)
	return &p, nil
}

// FindByEmail returns the first profile with the normalized address.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*Profile, error) {
	docs, err := r.store.Query(ctx, collection, docstore.Query{}.
		Where("email", docstore.OpEqual, NormalizeEmail(email)).
		OrderedBy(docstore.DocumentID, docstore.Asc).
		Limited(1))
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, docstore.ErrNotFound
	}
	p := fromFields(docs[0].ID, docs[0].Fields)
	return &p, nil
}

func (r *Repository) Create(ctx context.Context, p Profile) error {
	path, err := docstore.Join(collection, p.UID)
	if err != nil {
		return err
	}
	return r.store.Set(ctx, path, toFields(p))
}

// Touch refreshes the email and last-seen time of an existing profile.
func (r *Repository) Touch(ctx context.Context, p Profile) error {
	path, err := docstore.Join(collection, p.UID)
	if err != nil {
		return err
	}
	return r.store.Update(ctx, path, docstore.Fields{
		"email":      p.Email,
		"lastSeenAt": p.LastSeenAt.UTC(),
	})
}

// ListUIDs pages through every known user id in id order, starting after
// the given uid.
func (r *Repository) ListUIDs(ctx context.Context, limit int, after string) ([]string, error) {
	q := docstore.Query{}.OrderedBy(docstore.DocumentID, docstore.Asc)
	if after != "" {
		q = q.After(after)
	}
	if limit > 0 {
		q = q.Limited(limit)
	}
	docs, err := r.store.Query(ctx, collection, q)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(docs))
	for _, doc := range docs {
		out = append(out, doc.ID)
	}
	return out, nil
}
