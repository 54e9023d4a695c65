package repos

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrNotFound is returned by every engine when a document id does not resolve.
var ErrNotFound = errors.New("document not found")

const (
	CollProducts  = "products"
	CollCustomers = "customers"
	CollOrders    = "orders"
)

// Doc is a stored document waiting to be decoded.
type Doc interface {
	Decode(out any) error
}

// Backend is the document capability set shared by the memory, sqlite and mongo engines.
// Engines know nothing about entity types or cross-record invariants.
type Backend interface {
	Get(ctx context.Context, coll, id string) (Doc, error)
	Put(ctx context.Context, coll, id string, v any) error
	Delete(ctx context.Context, coll, id string) error
	List(ctx context.Context, coll string) ([]Doc, error)
	// RunInTx runs fn against a transactional view of the engine. Writes made through
	// that view are committed together when fn returns nil and discarded otherwise.
	RunInTx(ctx context.Context, fn func(ctx context.Context, b Backend) error) error
	Close() error
}

type jsonDoc []byte

func (d jsonDoc) Decode(out any) error { return json.Unmarshal(d, out) }

func getDoc[T any](ctx context.Context, b Backend, coll, id string) (*T, error) {
	d, err := b.Get(ctx, coll, id)
	if err != nil {
		return nil, err
	}
	var v T
	if err := d.Decode(&v); err != nil {
		return nil, err
	}
	return &v, nil
}

func listDocs[T any](ctx context.Context, b Backend, coll string) ([]T, error) {
	docs, err := b.List(ctx, coll)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(docs))
	for _, d := range docs {
		var v T
		if err := d.Decode(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func marshalJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
