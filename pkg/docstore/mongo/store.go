// Package mongo backs docstore.Store with MongoDB. Every document lives in
// the collection named after its last collection segment (pantry, groups,
// ...) with the full path as _id and the parent collection path in _parent,
// so a subcollection query is a filter on _parent.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/angelmondragon/pantryshare-backend/pkg/config"
	"github.com/angelmondragon/pantryshare-backend/pkg/docstore"
	"github.com/angelmondragon/pantryshare-backend/pkg/logger"
)

const (
	fieldID     = "_id"
	fieldParent = "_parent"
	fieldDocID  = "_docId"
)

type Store struct {
	client  *mongo.Client
	db      *mongo.Database
	timeout time.Duration
}

var _ docstore.Store = (*Store)(nil)

func New(ctx context.Context, cfg config.DocStoreConfig, logg *logger.Logger) (*Store, error) {
	connectCtx, cancel := context.WithTimeout(ctx, cfg.MongoTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	if logg != nil {
		logg.Info(logg.WithField(ctx, "database", cfg.MongoDatabase), "docstore.mongo.connected")
	}
	return &Store{
		client:  client,
		db:      client.Database(cfg.MongoDatabase),
		timeout: cfg.MongoTimeout,
	}, nil
}

// EnsureIndexes creates the (_parent, field) indexes the listing queries rely on.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	specs := map[string][]string{
		"pantry":          {"ingredientName"},
		"shoppingList":    {"ingredientName"},
		"mealPlans":       {"date", "recipeId"},
		"favoriteRecipes": {"title"},
		"groups":          {"groupName", "createdBy", "pending"},
		"recipes":         {"title"},
		"users":           {"email"},
	}
	for coll, fields := range specs {
		models := make([]mongo.IndexModel, 0, len(fields))
		for _, f := range fields {
			models = append(models, mongo.IndexModel{Keys: bson.D{{Key: fieldParent, Value: 1}, {Key: f, Value: 1}}})
		}
		if _, err := s.db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", coll, err)
		}
	}
	return nil
}

func (s *Store) collectionFor(collectionPath string) *mongo.Collection {
	segs := strings.Split(collectionPath, "/")
	return s.db.Collection(segs[len(segs)-1])
}

func (s *Store) Get(ctx context.Context, docPath string) (docstore.Fields, error) {
	parent, _, err := docstore.Split(docPath)
	if err != nil {
		return nil, err
	}
	var raw bson.M
	err = s.collectionFor(parent).FindOne(ctx, bson.M{fieldID: docPath}).Decode(&raw)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, docstore.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return decode(raw), nil
}

func (s *Store) Set(ctx context.Context, docPath string, fields docstore.Fields) error {
	parent, id, err := docstore.Split(docPath)
	if err != nil {
		return err
	}
	doc := bson.M{}
	for k, v := range docstore.ResolveTransforms(fields, nil) {
		doc[k] = encodeValue(v)
	}
	doc[fieldID] = docPath
	doc[fieldParent] = parent
	doc[fieldDocID] = id

	_, err = s.collectionFor(parent).ReplaceOne(ctx, bson.M{fieldID: docPath}, doc, options.Replace().SetUpsert(true))
	return err
}

func (s *Store) Update(ctx context.Context, docPath string, fields docstore.Fields) error {
	parent, _, err := docstore.Split(docPath)
	if err != nil {
		return err
	}
	set, addToSet, pull := bson.M{}, bson.M{}, bson.M{}
	for k, v := range fields {
		t, ok := v.(docstore.Transform)
		switch {
		case ok && t.IsUnion():
			addToSet[k] = bson.M{"$each": t.Values()}
		case ok && t.IsRemove():
			pull[k] = bson.M{"$in": t.Values()}
		default:
			set[k] = encodeValue(v)
		}
	}
	update := bson.M{}
	if len(set) > 0 {
		update["$set"] = set
	}
	if len(addToSet) > 0 {
		update["$addToSet"] = addToSet
	}
	if len(pull) > 0 {
		update["$pull"] = pull
	}
	if len(update) == 0 {
		update["$set"] = bson.M{}
	}

	res, err := s.collectionFor(parent).UpdateOne(ctx, bson.M{fieldID: docPath}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return docstore.ErrNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, docPath string) error {
	parent, _, err := docstore.Split(docPath)
	if err != nil {
		return err
	}
	_, err = s.collectionFor(parent).DeleteOne(ctx, bson.M{fieldID: docPath})
	return err
}

func (s *Store) Query(ctx context.Context, collectionPath string, q docstore.Query) ([]docstore.Document, error) {
	if err := docstore.ValidateCollection(collectionPath); err != nil {
		return nil, err
	}

	clauses := bson.A{bson.M{fieldParent: collectionPath}}
	for _, f := range q.Filters {
		clauses = append(clauses, filterClause(f))
	}
	for _, o := range q.OrderBy {
		if o.Field != docstore.DocumentID {
			clauses = append(clauses, bson.M{o.Field: bson.M{"$exists": true}})
		}
	}
	if len(q.StartAfter) > 0 {
		clauses = append(clauses, cursorClause(q.OrderBy, q.StartAfter))
	}

	sort := bson.D{}
	for _, o := range q.OrderBy {
		dir := 1
		if o.Dir == docstore.Desc {
			dir = -1
		}
		sort = append(sort, bson.E{Key: mongoField(o.Field), Value: dir})
	}
	if !hasDocIDOrder(q.OrderBy) {
		sort = append(sort, bson.E{Key: fieldDocID, Value: 1})
	}

	opts := options.Find().SetSort(sort)
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}

	cur, err := s.collectionFor(collectionPath).Find(ctx, bson.M{"$and": clauses}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []docstore.Document
	for cur.Next(ctx) {
		var raw bson.M
		if err := cur.Decode(&raw); err != nil {
			return nil, err
		}
		id, _ := raw[fieldDocID].(string)
		out = append(out, docstore.Document{
			ID:     id,
			Path:   collectionPath + "/" + id,
			Fields: decode(raw),
		})
	}
	return out, cur.Err()
}

func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func mongoField(field string) string {
	if field == docstore.DocumentID {
		return fieldDocID
	}
	return field
}

func hasDocIDOrder(order []docstore.Order) bool {
	for _, o := range order {
		if o.Field == docstore.DocumentID {
			return true
		}
	}
	return false
}

func filterClause(f docstore.Filter) bson.M {
	field := mongoField(f.Field)
	value := encodeValue(f.Value)
	switch f.Op {
	case docstore.OpLess:
		return bson.M{field: bson.M{"$lt": value}}
	case docstore.OpLessEqual:
		return bson.M{field: bson.M{"$lte": value}}
	case docstore.OpGreater:
		return bson.M{field: bson.M{"$gt": value}}
	case docstore.OpGreaterEqual:
		return bson.M{field: bson.M{"$gte": value}}
	case docstore.OpArrayContains:
		return bson.M{field: bson.M{"$elemMatch": bson.M{"$eq": value}}}
	default:
		return bson.M{field: bson.M{"$eq": value}}
	}
}

// cursorClause expands "strictly after (v1, v2, ...)" into the equivalent
// disjunction of prefix-equal, next-field-greater comparisons.
func cursorClause(order []docstore.Order, after []any) bson.M {
	n := len(order)
	if len(after) < n {
		n = len(after)
	}
	or := bson.A{}
	for i := 0; i < n; i++ {
		clause := bson.M{}
		for j := 0; j < i; j++ {
			clause[mongoField(order[j].Field)] = encodeValue(after[j])
		}
		op := "$gt"
		if order[i].Dir == docstore.Desc {
			op = "$lt"
		}
		clause[mongoField(order[i].Field)] = bson.M{op: encodeValue(after[i])}
		or = append(or, clause)
	}
	return bson.M{"$or": or}
}

func encodeValue(v any) any {
	switch t := v.(type) {
	case docstore.Fields:
		m := bson.M{}
		for k, inner := range t {
			m[k] = encodeValue(inner)
		}
		return m
	case []string:
		out := bson.A{}
		for _, s := range t {
			out = append(out, s)
		}
		return out
	case time.Time:
		return t.UTC()
	default:
		return v
	}
}

func decode(raw bson.M) docstore.Fields {
	out := make(docstore.Fields, len(raw))
	for k, v := range raw {
		switch k {
		case fieldID, fieldParent, fieldDocID:
			continue
		}
		out[k] = decodeValue(v)
	}
	return out
}

func decodeValue(v any) any {
	switch t := v.(type) {
	case primitive.DateTime:
		return t.Time().UTC()
	case primitive.A:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = decodeValue(item)
		}
		return out
	case bson.M:
		return decode(t)
	case primitive.D:
		return decode(t.Map())
	case int32:
		return int64(t)
	default:
		return v
	}
}
