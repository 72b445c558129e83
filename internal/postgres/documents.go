package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ariefcatur/go-delivery-marketplace/internal/store"
)

// Backend stores every collection in the documents table.
// Reads inside Update take row locks (FOR UPDATE), same as stock reservation did.
type Backend struct{ DB *pgxpool.Pool }

func (b *Backend) View(ctx context.Context, fn func(store.Txn) error) error {
	tx, err := b.DB.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(&txn{tx: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (b *Backend) Update(ctx context.Context, fn func(store.Txn) error) error {
	tx, err := b.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(&txn{tx: tx, lock: true}); err != nil {
		return err // rollback via defer
	}
	return tx.Commit(ctx)
}

func (b *Backend) Close(context.Context) error {
	b.DB.Close()
	return nil
}

type txn struct {
	tx   pgx.Tx
	lock bool
}

func (t *txn) suffix() string {
	if t.lock {
		return " FOR UPDATE"
	}
	return ""
}

func (t *txn) Get(ctx context.Context, collection, id string) (json.RawMessage, error) {
	var body []byte
	err := t.tx.QueryRow(ctx,
		`SELECT body FROM documents WHERE collection=$1 AND id=$2`+t.suffix(),
		collection, id,
	).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return body, nil
}

func (t *txn) Find(ctx context.Context, collection string, f store.Filter) ([]json.RawMessage, error) {
	containment := []byte("{}")
	if len(f) > 0 {
		var err error
		if containment, err = json.Marshal(f); err != nil {
			return nil, fmt.Errorf("encode filter: %w", err)
		}
	}
	rows, err := t.tx.Query(ctx,
		`SELECT body FROM documents WHERE collection=$1 AND body @> $2::jsonb ORDER BY seq`+t.suffix(),
		collection, string(containment),
	)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", collection, err)
	}
	defer rows.Close()

	var out []json.RawMessage
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, err
		}
		out = append(out, body)
	}
	return out, rows.Err()
}

func (t *txn) Insert(ctx context.Context, collection, id string, doc json.RawMessage) error {
	ct, err := t.tx.Exec(ctx, `
		INSERT INTO documents(collection, id, body)
		VALUES ($1, $2, $3::jsonb)
		ON CONFLICT (collection, id) DO NOTHING`,
		collection, id, string(doc),
	)
	if isUniqueViolation(err) {
		return store.ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("insert %s/%s: %w", collection, id, err)
	}
	if ct.RowsAffected() != 1 {
		return store.ErrDuplicate
	}
	return nil
}

func (t *txn) Replace(ctx context.Context, collection, id string, doc json.RawMessage) error {
	ct, err := t.tx.Exec(ctx,
		`UPDATE documents SET body=$3::jsonb, updated_at=now() WHERE collection=$1 AND id=$2`,
		collection, id, string(doc),
	)
	if isUniqueViolation(err) {
		return store.ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("replace %s/%s: %w", collection, id, err)
	}
	if ct.RowsAffected() != 1 {
		return store.ErrNotFound
	}
	return nil
}

func (t *txn) Delete(ctx context.Context, collection, id string) error {
	ct, err := t.tx.Exec(ctx, `DELETE FROM documents WHERE collection=$1 AND id=$2`, collection, id)
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	if ct.RowsAffected() != 1 {
		return store.ErrNotFound
	}
	return nil
}

// SQLSTATE unique_violation, raised by secondary unique indexes such as the user email one.
const codeUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation
}
