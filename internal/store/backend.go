// Package store is the storage-agnostic persistence layer. Backends move raw JSON documents;
// Repository gives every entity typed find/insert/update/delete on top of them.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrNotFound  = errors.New("document not found")
	ErrDuplicate = errors.New("document already exists")
)

// Filter matches documents whose top-level fields equal the given values.
// Values must be strings, bools or numbers.
type Filter map[string]any

// Txn is a unit of work on a backend. Documents are returned in insertion order.
type Txn interface {
	Get(ctx context.Context, collection, id string) (json.RawMessage, error)
	Find(ctx context.Context, collection string, f Filter) ([]json.RawMessage, error)
	Insert(ctx context.Context, collection, id string, doc json.RawMessage) error
	Replace(ctx context.Context, collection, id string, doc json.RawMessage) error
	Delete(ctx context.Context, collection, id string) error
}

// Backend runs fn inside a transaction. Update commits only when fn returns nil; a document
// read inside Update stays locked against other writers until the transaction ends.
type Backend interface {
	View(ctx context.Context, fn func(Txn) error) error
	Update(ctx context.Context, fn func(Txn) error) error
	Close(ctx context.Context) error
}

// Match reports whether doc satisfies f. Used by backends that filter in process.
func Match(doc json.RawMessage, f Filter) (bool, error) {
	if len(f) == 0 {
		return true, nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(doc, &fields); err != nil {
		return false, fmt.Errorf("decode document: %w", err)
	}
	for k, want := range f {
		got, ok := fields[k]
		if !ok {
			return false, nil
		}
		wantJSON, err := json.Marshal(want)
		if err != nil {
			return false, fmt.Errorf("encode filter %s: %w", k, err)
		}
		if !bytes.Equal(compact(got), wantJSON) {
			return false, nil
		}
	}
	return true, nil
}

func compact(b []byte) []byte {
	var buf bytes.Buffer
	if err := json.Compact(&buf, b); err != nil {
		return b
	}
	return buf.Bytes()
}
