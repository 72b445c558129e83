package store

import (
	"context"
	"encoding/json"
	"fmt"
)

// Keyed entities know the id they are stored under.
type Keyed interface {
	Key() string
}

// Repository is the typed view of one collection inside a transaction.
type Repository[T Keyed] struct {
	txn        Txn
	collection string
}

func NewRepository[T Keyed](txn Txn, collection string) Repository[T] {
	return Repository[T]{txn: txn, collection: collection}
}

func (r Repository[T]) Get(ctx context.Context, id string) (T, error) {
	var out T
	raw, err := r.txn.Get(ctx, r.collection, id)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("decode %s/%s: %w", r.collection, id, err)
	}
	return out, nil
}

func (r Repository[T]) Find(ctx context.Context, f Filter) ([]T, error) {
	raws, err := r.txn.Find(ctx, r.collection, f)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(raws))
	for _, raw := range raws {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("decode %s: %w", r.collection, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// FindOne returns the first match or ErrNotFound.
func (r Repository[T]) FindOne(ctx context.Context, f Filter) (T, error) {
	var zero T
	all, err := r.Find(ctx, f)
	if err != nil {
		return zero, err
	}
	if len(all) == 0 {
		return zero, ErrNotFound
	}
	return all[0], nil
}

func (r Repository[T]) Insert(ctx context.Context, v T) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", r.collection, err)
	}
	return r.txn.Insert(ctx, r.collection, v.Key(), raw)
}

func (r Repository[T]) Update(ctx context.Context, v T) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", r.collection, err)
	}
	return r.txn.Replace(ctx, r.collection, v.Key(), raw)
}

func (r Repository[T]) Delete(ctx context.Context, id string) error {
	return r.txn.Delete(ctx, r.collection, id)
}
