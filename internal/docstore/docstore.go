// Package docstore is the document-store collaborator boundary: point reads,
// writes, queries, and live subscriptions that deliver full ordered snapshots.
package docstore

import (
	"context"
	"time"
)

// Document is one stored record. Returned documents carry their ID under
// "_id". Nested documents are map[string]any and lists are []any.
type Document map[string]any

type serverTimestamp struct{}

// ServerTimestamp marks a field to be stamped with the store's own clock at
// write time.
var ServerTimestamp = serverTimestamp{}

type Op string

const (
	OpEq            Op = "eq"
	OpArrayContains Op = "array-contains"
	OpPrefix        Op = "prefix"
)

type Cond struct {
	Field string
	Op    Op
	Value any
}

type Filter []Cond

func Eq(field string, value any) Cond {
	return Cond{Field: field, Op: OpEq, Value: value}
}

func ArrayContains(field string, value any) Cond {
	return Cond{Field: field, Op: OpArrayContains, Value: value}
}

// Prefix matches string fields by prefix. Against a string-array field it
// matches when any element has the prefix.
func Prefix(field, prefix string) Cond {
	return Cond{Field: field, Op: OpPrefix, Value: prefix}
}

type Order struct {
	Field string
	Desc  bool
}

type UpdateOp string

const (
	UpSet      UpdateOp = "set"
	UpAddToSet UpdateOp = "add-to-set"
	UpPull     UpdateOp = "pull"
	UpPush     UpdateOp = "push"
)

// Update is a single atomic field update applied server-side, so concurrent
// clients cannot clobber each other's set/list members.
type Update struct {
	Op    UpdateOp
	Field string
	Value any
}

func Set(field string, value any) Update {
	return Update{Op: UpSet, Field: field, Value: value}
}

// AddToSet appends value to a list field only if it is not already present.
func AddToSet(field string, value any) Update {
	return Update{Op: UpAddToSet, Field: field, Value: value}
}

// Pull removes every occurrence of value from a list field.
func Pull(field string, value any) Update {
	return Update{Op: UpPull, Field: field, Value: value}
}

// Push appends value to a list field unconditionally.
func Push(field string, value any) Update {
	return Update{Op: UpPush, Field: field, Value: value}
}

// CancelFunc tears down a subscription. Safe to call more than once; no
// snapshot is delivered after it returns.
type CancelFunc func()

// SnapshotFunc receives the complete ordered result set for the subscribed
// query. Each delivery supersedes the previous one; it is never a patch.
type SnapshotFunc func(docs []Document)

type ErrorFunc func(err error)

type Store interface {
	// Write stores fields under id, assigning an id when it is empty. With
	// merge set, existing fields not named are kept; otherwise the document
	// is replaced (or created).
	Write(ctx context.Context, collection, id string, fields Document, merge bool) (string, error)

	// Read returns the document or a NOT_FOUND error.
	Read(ctx context.Context, collection, id string) (Document, error)

	Query(ctx context.Context, collection string, filter Filter, order Order) ([]Document, error)

	// Subscribe delivers an initial snapshot and a fresh full snapshot after
	// every change to the collection.
	Subscribe(ctx context.Context, collection string, filter Filter, order Order, onSnapshot SnapshotFunc, onError ErrorFunc) (CancelFunc, error)

	// Apply performs atomic field updates on an existing document.
	// NOT_FOUND when the document does not exist.
	Apply(ctx context.Context, collection, id string, updates ...Update) error

	// Delete removes the document. Deleting an absent document is not an
	// error.
	Delete(ctx context.Context, collection, id string) error

	// RunTransaction runs fn so that its writes commit together where the
	// backing deployment supports it. Stores without transaction support
	// return an UNAVAILABLE error and callers fall back to sequential
	// writes.
	RunTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// AsTime converts a stored timestamp value to local time.
func AsTime(v any) time.Time {
	if t, ok := v.(time.Time); ok {
		return t
	}
	return time.Time{}
}
