// Package filestore keeps every collection in memory and mirrors it to a single JSON file.
// Writers are serialized; a failed transaction leaves both memory and file untouched.
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/ariefcatur/go-delivery-marketplace/internal/store"
)

var errReadOnly = errors.New("filestore: write in read-only transaction")

type Backend struct {
	path  string
	mu    sync.RWMutex
	state *state
}

// Open loads path if it exists. An empty path keeps everything in memory.
func Open(path string) (*Backend, error) {
	b := &Backend{path: path, state: newState()}
	if path == "" {
		return b, nil
	}
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return b, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(raw) == 0 {
		return b, nil
	}
	var f fileFormat
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	for name, docs := range f.Collections {
		c := b.state.coll(name)
		for _, d := range docs {
			c.ids = append(c.ids, d.ID)
			c.docs[d.ID] = d.Doc
		}
	}
	return b, nil
}

func (b *Backend) View(ctx context.Context, fn func(store.Txn) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return fn(&txn{st: b.state, readOnly: true})
}

func (b *Backend) Update(ctx context.Context, fn func(store.Txn) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	next := b.state.clone()
	t := &txn{st: next}
	if err := fn(t); err != nil {
		return err
	}
	if !t.dirty {
		return nil
	}
	if err := b.flush(next); err != nil {
		return err
	}
	b.state = next
	return nil
}

func (b *Backend) Close(context.Context) error { return nil }

type fileDoc struct {
	ID  string          `json:"id"`
	Doc json.RawMessage `json:"doc"`
}

type fileFormat struct {
	Collections map[string][]fileDoc `json:"collections"`
}

// flush writes the whole state next to the target and renames it into place.
func (b *Backend) flush(st *state) error {
	if b.path == "" {
		return nil
	}
	f := fileFormat{Collections: make(map[string][]fileDoc, len(st.colls))}
	for name, c := range st.colls {
		docs := make([]fileDoc, 0, len(c.ids))
		for _, id := range c.ids {
			docs = append(docs, fileDoc{ID: id, Doc: c.docs[id]})
		}
		f.Collections[name] = docs
	}
	raw, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	dir := filepath.Dir(b.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".filestore-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	return os.Rename(tmp.Name(), b.path)
}

type state struct {
	colls map[string]*collection
}

type collection struct {
	ids  []string
	docs map[string]json.RawMessage
}

func newState() *state { return &state{colls: map[string]*collection{}} }

func (s *state) coll(name string) *collection {
	c, ok := s.colls[name]
	if !ok {
		c = &collection{docs: map[string]json.RawMessage{}}
		s.colls[name] = c
	}
	return c
}

// clone is shallow on documents; they are never mutated in place.
func (s *state) clone() *state {
	out := &state{colls: make(map[string]*collection, len(s.colls))}
	for name, c := range s.colls {
		docs := make(map[string]json.RawMessage, len(c.docs))
		for id, d := range c.docs {
			docs[id] = d
		}
		out.colls[name] = &collection{ids: append([]string(nil), c.ids...), docs: docs}
	}
	return out
}

type txn struct {
	st       *state
	readOnly bool
	dirty    bool
}

func (t *txn) Get(ctx context.Context, collection, id string) (json.RawMessage, error) {
	c, ok := t.st.colls[collection]
	if !ok {
		return nil, store.ErrNotFound
	}
	d, ok := c.docs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return d, nil
}

func (t *txn) Find(ctx context.Context, collection string, f store.Filter) ([]json.RawMessage, error) {
	c, ok := t.st.colls[collection]
	if !ok {
		return nil, nil
	}
	var out []json.RawMessage
	for _, id := range c.ids {
		d := c.docs[id]
		ok, err := store.Match(d, f)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, d)
		}
	}
	return out, nil
}

func (t *txn) Insert(ctx context.Context, collection, id string, doc json.RawMessage) error {
	if t.readOnly {
		return errReadOnly
	}
	c := t.st.coll(collection)
	if _, ok := c.docs[id]; ok {
		return store.ErrDuplicate
	}
	c.ids = append(c.ids, id)
	c.docs[id] = append(json.RawMessage(nil), doc...)
	t.dirty = true
	return nil
}

func (t *txn) Replace(ctx context.Context, collection, id string, doc json.RawMessage) error {
	if t.readOnly {
		return errReadOnly
	}
	c, ok := t.st.colls[collection]
	if !ok {
		return store.ErrNotFound
	}
	if _, ok := c.docs[id]; !ok {
		return store.ErrNotFound
	}
	c.docs[id] = append(json.RawMessage(nil), doc...)
	t.dirty = true
	return nil
}

func (t *txn) Delete(ctx context.Context, collection, id string) error {
	if t.readOnly {
		return errReadOnly
	}
	c, ok := t.st.colls[collection]
	if !ok {
		return store.ErrNotFound
	}
	if _, ok := c.docs[id]; !ok {
		return store.ErrNotFound
	}
	delete(c.docs, id)
	for i, v := range c.ids {
		if v == id {
			c.ids = append(c.ids[:i:i], c.ids[i+1:]...)
			break
		}
	}
	t.dirty = true
	return nil
}
