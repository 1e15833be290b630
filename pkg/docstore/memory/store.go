// Package memory is an in-process docstore backend used for local
// development and as the repository double in tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/angelmondragon/pantryshare-backend/pkg/docstore"
)

// FaultFunc lets tests fail a specific operation on a specific path. op is
// one of get, set, update, delete, query.
type FaultFunc func(op, path string) error

type Store struct {
	mu    sync.RWMutex
	docs  map[string]docstore.Fields
	fault FaultFunc
}

var _ docstore.Store = (*Store)(nil)

func New() *Store {
	return &Store{docs: map[string]docstore.Fields{}}
}

func (s *Store) SetFault(fn FaultFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fault = fn
}

func (s *Store) check(op, path string) error {
	if s.fault == nil {
		return nil
	}
	return s.fault(op, path)
}

func (s *Store) Get(_ context.Context, docPath string) (docstore.Fields, error) {
	if _, _, err := docstore.Split(docPath); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check("get", docPath); err != nil {
		return nil, err
	}
	doc, ok := s.docs[docPath]
	if !ok {
		return nil, docstore.ErrNotFound
	}
	return doc.Clone(), nil
}

func (s *Store) Set(_ context.Context, docPath string, fields docstore.Fields) error {
	if _, _, err := docstore.Split(docPath); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("set", docPath); err != nil {
		return err
	}
	s.docs[docPath] = docstore.ResolveTransforms(fields, nil).Clone()
	return nil
}

func (s *Store) Update(_ context.Context, docPath string, fields docstore.Fields) error {
	if _, _, err := docstore.Split(docPath); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("update", docPath); err != nil {
		return err
	}
	existing, ok := s.docs[docPath]
	if !ok {
		return docstore.ErrNotFound
	}
	for k, v := range docstore.ResolveTransforms(fields, existing) {
		existing[k] = docstore.CloneValue(v)
	}
	return nil
}

func (s *Store) Delete(_ context.Context, docPath string) error {
	if _, _, err := docstore.Split(docPath); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("delete", docPath); err != nil {
		return err
	}
	delete(s.docs, docPath)
	return nil
}

func (s *Store) Query(_ context.Context, collectionPath string, q docstore.Query) ([]docstore.Document, error) {
	if err := docstore.ValidateCollection(collectionPath); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check("query", collectionPath); err != nil {
		return nil, err
	}

	var out []docstore.Document
	for p, fields := range s.docs {
		parent, id, err := docstore.Split(p)
		if err != nil || parent != collectionPath {
			continue
		}
		doc := docstore.Document{ID: id, Path: p, Fields: fields}
		if !matches(doc, q) {
			continue
		}
		out = append(out, docstore.Document{ID: id, Path: p, Fields: fields.Clone()})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if c := compareTuple(orderValues(out[i], q.OrderBy), orderValues(out[j], q.OrderBy), q.OrderBy); c != 0 {
			return c < 0
		}
		return out[i].ID < out[j].ID
	})

	if len(q.StartAfter) > 0 {
		trimmed := out[:0]
		for _, doc := range out {
			if compareTuple(orderValues(doc, q.OrderBy), q.StartAfter, q.OrderBy) > 0 {
				trimmed = append(trimmed, doc)
			}
		}
		out = trimmed
	}

	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() error { return nil }

func matches(doc docstore.Document, q docstore.Query) bool {
	for _, o := range q.OrderBy {
		if o.Field != docstore.DocumentID && !doc.Fields.Has(o.Field) {
			return false
		}
	}
	for _, f := range q.Filters {
		value, ok := fieldValue(doc, f.Field)
		if !ok {
			return false
		}
		if !evaluate(value, f.Op, f.Value) {
			return false
		}
	}
	return true
}

func evaluate(value any, op docstore.Operator, operand any) bool {
	switch op {
	case docstore.OpArrayContains:
		list, ok := value.([]any)
		if !ok {
			return false
		}
		for _, item := range list {
			if docstore.SameKind(item, operand) && docstore.Compare(item, operand) == 0 {
				return true
			}
		}
		return false
	}

	if !docstore.SameKind(value, operand) {
		return false
	}
	c := docstore.Compare(value, operand)
	switch op {
	case docstore.OpEqual:
		return c == 0
	case docstore.OpLess:
		return c < 0
	case docstore.OpLessEqual:
		return c <= 0
	case docstore.OpGreater:
		return c > 0
	case docstore.OpGreaterEqual:
		return c >= 0
	default:
		return false
	}
}

func fieldValue(doc docstore.Document, field string) (any, bool) {
	if field == docstore.DocumentID {
		return doc.ID, true
	}
	v, ok := doc.Fields[field]
	return v, ok
}

func orderValues(doc docstore.Document, order []docstore.Order) []any {
	out := make([]any, len(order))
	for i, o := range order {
		out[i], _ = fieldValue(doc, o.Field)
	}
	return out
}

func compareTuple(a, b []any, order []docstore.Order) int {
	n := len(order)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		c := docstore.Compare(a[i], b[i])
		if order[i].Dir == docstore.Desc {
			c = -c
		}
		if c != 0 {
			return c
		}
	}
	return 0
}
