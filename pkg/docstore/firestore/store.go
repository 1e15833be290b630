// Package firestore backs docstore.Store with Cloud Firestore. Paths map
// one-to-one onto Firestore document and collection paths.
package firestore

import (
	"context"
	"errors"
	"fmt"

	fs "cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/angelmondragon/pantryshare-backend/pkg/config"
	"github.com/angelmondragon/pantryshare-backend/pkg/docstore"
	"github.com/angelmondragon/pantryshare-backend/pkg/logger"
)

type Store struct {
	client *fs.Client
}

var _ docstore.Store = (*Store)(nil)

// New dials Firestore using the project and optional credentials file from cfg.
func New(ctx context.Context, cfg config.DocStoreConfig, logg *logger.Logger) (*Store, error) {
	var opts []option.ClientOption
	if cfg.FirestoreCredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.FirestoreCredentialsFile))
	}

	client, err := fs.NewClientWithDatabase(ctx, cfg.FirestoreProjectID, cfg.FirestoreDatabase, opts...)
	if err != nil {
		return nil, fmt.Errorf("firestore client: %w", err)
	}

	if logg != nil {
		logg.Info(logg.WithFields(ctx, map[string]any{
			"project":  cfg.FirestoreProjectID,
			"database": cfg.FirestoreDatabase,
		}), "docstore.firestore.connected")
	}
	return &Store{client: client}, nil
}

func (s *Store) Get(ctx context.Context, docPath string) (docstore.Fields, error) {
	if _, _, err := docstore.Split(docPath); err != nil {
		return nil, err
	}
	snap, err := s.client.Doc(docPath).Get(ctx)
	if err != nil {
		return nil, translate(err)
	}
	return normalize(snap.Data()), nil
}

func (s *Store) Set(ctx context.Context, docPath string, fields docstore.Fields) error {
	if _, _, err := docstore.Split(docPath); err != nil {
		return err
	}
	_, err := s.client.Doc(docPath).Set(ctx, encode(docstore.ResolveTransforms(fields, nil)))
	return translate(err)
}

func (s *Store) Update(ctx context.Context, docPath string, fields docstore.Fields) error {
	if _, _, err := docstore.Split(docPath); err != nil {
		return err
	}
	if len(fields) == 0 {
		return nil
	}
	updates := make([]fs.Update, 0, len(fields))
	for k, v := range fields {
		updates = append(updates, fs.Update{Path: k, Value: encodeValue(v)})
	}
	_, err := s.client.Doc(docPath).Update(ctx, updates)
	return translate(err)
}

func (s *Store) Delete(ctx context.Context, docPath string) error {
	if _, _, err := docstore.Split(docPath); err != nil {
		return err
	}
	_, err := s.client.Doc(docPath).Delete(ctx)
	return translate(err)
}

func (s *Store) Query(ctx context.Context, collectionPath string, q docstore.Query) ([]docstore.Document, error) {
	if err := docstore.ValidateCollection(collectionPath); err != nil {
		return nil, err
	}
	coll := s.client.Collection(collectionPath)
	query := coll.Query

	for _, f := range q.Filters {
		query = query.Where(fieldPath(f.Field), string(f.Op), encodeValue(f.Value))
	}
	for _, o := range q.OrderBy {
		dir := fs.Asc
		if o.Dir == docstore.Desc {
			dir = fs.Desc
		}
		query = query.OrderBy(fieldPath(o.Field), dir)
	}
	if len(q.StartAfter) > 0 {
		query = query.StartAfter(q.StartAfter...)
	}
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	var out []docstore.Document
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, translate(err)
		}
		out = append(out, docstore.Document{
			ID:     snap.Ref.ID,
			Path:   collectionPath + "/" + snap.Ref.ID,
			Fields: normalize(snap.Data()),
		})
	}
	return out, nil
}

// Ping reads a sentinel document; NotFound still proves the connection works.
func (s *Store) Ping(ctx context.Context) error {
	_, err := s.client.Doc("_health/ping").Get(ctx)
	if err != nil && status.Code(err) != codes.NotFound {
		return err
	}
	return nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

func fieldPath(field string) string {
	if field == docstore.DocumentID {
		return fs.DocumentID
	}
	return field
}

func translate(err error) error {
	if err == nil {
		return nil
	}
	if status.Code(err) == codes.NotFound {
		return fmt.Errorf("%w: %v", docstore.ErrNotFound, err)
	}
	return err
}

func encode(fields docstore.Fields) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = encodeValue(v)
	}
	return out
}

func encodeValue(v any) any {
	switch t := v.(type) {
	case docstore.Transform:
		if t.IsRemove() {
			return fs.ArrayRemove(t.Values()...)
		}
		return fs.ArrayUnion(t.Values()...)
	case docstore.Fields:
		return encode(t)
	default:
		return v
	}
}

func normalize(data map[string]any) docstore.Fields {
	out := make(docstore.Fields, len(data))
	for k, v := range data {
		if m, ok := v.(map[string]any); ok {
			out[k] = normalize(m)
			continue
		}
		out[k] = v
	}
	return out
}
