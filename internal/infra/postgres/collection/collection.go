package infra_postgres_collection

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/porchrate/core/internal/storage/collection"
)

// Store keeps each collection as one jsonb document row. Update takes a row
// lock for the whole read-decide-write sequence, which gives the exclusive
// update discipline the registry and ledger rely on.
type Store struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// EnsureSchema creates the backing table. Safe to call on every start.
func (s *Store) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS collections (
			name TEXT PRIMARY KEY,
			doc  JSONB NOT NULL
		)
	`
	_, err := s.db.ExecContext(ctx, query)
	return err
}

func (s *Store) Get(ctx context.Context, name string) ([]byte, error) {
	var doc []byte

	query := `SELECT doc FROM collections WHERE name = $1`

	err := s.db.GetContext(ctx, &doc, query, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return emptyToNil(doc), nil
}

func (s *Store) Update(ctx context.Context, name string, fn collection.UpdateFunc) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	// Insert a placeholder row first so FOR UPDATE has something to lock
	// the very first time a collection is touched.
	ensureQuery := `
		INSERT INTO collections (name, doc)
		VALUES ($1, 'null'::jsonb)
		ON CONFLICT (name) DO NOTHING
	`
	if _, err := tx.ExecContext(ctx, ensureQuery, name); err != nil {
		return err
	}

	var doc []byte
	lockQuery := `SELECT doc FROM collections WHERE name = $1 FOR UPDATE`
	if err := tx.GetContext(ctx, &doc, lockQuery, name); err != nil {
		return err
	}

	next, err := fn(emptyToNil(doc))
	if err != nil {
		return err
	}

	writeQuery := `UPDATE collections SET doc = $2 WHERE name = $1`
	if _, err := tx.ExecContext(ctx, writeQuery, name, next); err != nil {
		return err
	}

	return tx.Commit()
}

// emptyToNil maps the placeholder jsonb null to "collection absent".
func emptyToNil(doc []byte) []byte {
	if len(doc) == 0 || string(doc) == "null" {
		return nil
	}
	return doc
}
