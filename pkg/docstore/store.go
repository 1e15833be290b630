// Package docstore is the contract every repository talks to: a hierarchical
// collection/document store addressed by slash-separated paths, in the shape
// of Firestore. Backends live in the memory, firestore and mongo subpackages.
package docstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get and Update when the document does not exist.
var ErrNotFound = errors.New("docstore: document not found")

// DocumentID orders or filters by the document's own id instead of a field.
const DocumentID = "__name__"

// Store offers per-document CRUD and ordered range queries. There are no
// multi-document transactions; callers sequence writes themselves.
type Store interface {
	// Get returns the fields stored at docPath or ErrNotFound.
	Get(ctx context.Context, docPath string) (Fields, error)
	// Set creates or fully replaces the document.
	Set(ctx context.Context, docPath string, fields Fields) error
	// Update merges top-level fields into an existing document. ArrayUnion
	// and ArrayRemove values are applied against the stored array.
	Update(ctx context.Context, docPath string, fields Fields) error
	// Delete removes the document. Deleting a missing document is not an error.
	Delete(ctx context.Context, docPath string) error
	// Query lists the documents directly inside collectionPath.
	Query(ctx context.Context, collectionPath string, q Query) ([]Document, error)
	Ping(ctx context.Context) error
	Close() error
}

// Document is one query result.
type Document struct {
	ID     string
	Path   string
	Fields Fields
}

type Operator string

const (
	OpEqual         Operator = "=="
	OpLess          Operator = "<"
	OpLessEqual     Operator = "<="
	OpGreater       Operator = ">"
	OpGreaterEqual  Operator = ">="
	OpArrayContains Operator = "array-contains"
)

type Filter struct {
	Field string
	Op    Operator
	Value any
}

type Direction int

const (
	Asc Direction = iota
	Desc
)

type Order struct {
	Field string
	Dir   Direction
}

// Query describes a filtered, ordered range read. StartAfter holds one value
// per OrderBy entry; results resume strictly after that tuple.
type Query struct {
	Filters    []Filter
	OrderBy    []Order
	StartAfter []any
	Limit      int
}

// Where appends an equality or range filter.
func (q Query) Where(field string, op Operator, value any) Query {
	q.Filters = append(append([]Filter(nil), q.Filters...), Filter{Field: field, Op: op, Value: value})
	return q
}

// OrderedBy appends an ordering clause.
func (q Query) OrderedBy(field string, dir Direction) Query {
	q.OrderBy = append(append([]Order(nil), q.OrderBy...), Order{Field: field, Dir: dir})
	return q
}

// After sets the cursor tuple. A nil or empty tuple means from the start.
func (q Query) After(values ...any) Query {
	if len(values) == 0 {
		q.StartAfter = nil
		return q
	}
	q.StartAfter = values
	return q
}

func (q Query) Limited(limit int) Query {
	q.Limit = limit
	return q
}
