package groups

import (
	"context"

	"github.com/angelmondragon/pantryshare-backend/pkg/docstore"
	"github.com/angelmondragon/pantryshare-backend/pkg/pagination"
)

const (
	groupsCollection      = "groups"
	membershipsCollection = "groups"
)

// Repository persists group documents and the per-user membership mirror.
type Repository struct {
	store docstore.Store
}

func NewRepository(store docstore.Store) *Repository {
	return &Repository{store: store}
}

func (r *Repository) GetGroup(ctx context.Context, groupID string) (*Group, error) {
	path, err := docstore.Join(groupsCollection, groupID)
	if err != nil {
		return nil, err
	}
	fields, err := r.store.Get(ctx, path)
	if err != nil {
		return nil, err
	}
	g := groupFromFields(groupID, fields)
	return &g, nil
}

func (r *Repository) SaveGroup(ctx context.Context, g Group) error {
	path, err := docstore.Join(groupsCollection, g.GroupID)
	if err != nil {
		return err
	}
	return r.store.Set(ctx, path, groupToFields(g))
}

func (r *Repository) DeleteGroup(ctx context.Context, groupID string) error {
	path, err := docstore.Join(groupsCollection, groupID)
	if err != nil {
		return err
	}
	return r.store.Delete(ctx, path)
}

// ListCreatedBy returns groups created by uid ordered by name then id.
func (r *Repository) ListCreatedBy(ctx context.Context, uid string, limit int, after *pagination.Cursor) ([]Group, error) {
	q := docstore.Query{}.
		Where("createdBy", docstore.OpEqual, uid).
		OrderedBy("groupName", docstore.Asc).
		OrderedBy(docstore.DocumentID, docstore.Asc)
	if after != nil {
		q = q.After(after.Key, after.ID)
	}
	if limit > 0 {
		q = q.Limited(limit)
	}
	docs, err := r.store.Query(ctx, groupsCollection, q)
	if err != nil {
		return nil, err
	}
	out := make([]Group, 0, len(docs))
	for _, doc := range docs {
		out = append(out, groupFromFields(doc.ID, doc.Fields))
	}
	return out, nil
}

func (r *Repository) GetMembership(ctx context.Context, uid, groupID string) (*Membership, error) {
	path, err := docstore.Join("users", uid, membershipsCollection, groupID)
	if err != nil {
		return nil, err
	}
	fields, err := r.store.Get(ctx, path)
	if err != nil {
		return nil, err
	}
	m := membershipFromFields(groupID, fields)
	return &m, nil
}

func (r *Repository) SaveMembership(ctx context.Context, uid string, m Membership) error {
	path, err := docstore.Join("users", uid, membershipsCollection, m.GroupID)
	if err != nil {
		return err
	}
	return r.store.Set(ctx, path, membershipToFields(m))
}

func (r *Repository) DeleteMembership(ctx context.Context, uid, groupID string) error {
	path, err := docstore.Join("users", uid, membershipsCollection, groupID)
	if err != nil {
		return err
	}
	return r.store.Delete(ctx, path)
}

// ListMemberships returns the caller's membership records with the given
// pending flag, ordered by group name then id.
func (r *Repository) ListMemberships(ctx context.Context, uid string, pending bool, limit int, after *pagination.Cursor) ([]Membership, error) {
	col, err := docstore.Join("users", uid, membershipsCollection)
	if err != nil {
		return nil, err
	}
	q := docstore.Query{}.
		Where("pending", docstore.OpEqual, pending).
		OrderedBy("groupName", docstore.Asc).
		OrderedBy(docstore.DocumentID, docstore.Asc)
	if after != nil {
		q = q.After(after.Key, after.ID)
	}
	if limit > 0 {
		q = q.Limited(limit)
	}
	docs, err := r.store.Query(ctx, col, q)
	if err != nil {
		return nil, err
	}
	out := make([]Membership, 0, len(docs))
	for _, doc := range docs {
		out = append(out, membershipFromFields(doc.ID, doc.Fields))
	}
	return out, nil
}
