// Package postgres backs the secondary tier with Postgres document tables.
// Each collection maps to one table with an id column and a jsonb doc
// column; richer filtering stays the primary tier's job.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/docuvault/go-admin-core/backingstore"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
)

var _ backingstore.Store = (*Store)(nil)

// tableNames whitelists collection-to-table mappings; collection names come
// from request paths and must never be interpolated unchecked.
var tableNames = map[string]string{
	"documents":           "documents",
	"departments":         "departments",
	"users":               "users",
	"document-categories": "document_categories",
	"clients":             "clients",
}

// Store is a pgx-backed document store.
type Store struct {
	pool *pgxpool.Pool
}

// NewPool connects a pgx pool for the store.
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "[postgres.NewPool] connect")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "[postgres.NewPool] ping")
	}
	return pool, nil
}

// NewStore wraps an existing pool.
func NewStore(pool *pgxpool.Pool) (*Store, error) {
	if pool == nil {
		return nil, errors.New("[postgres.NewStore] pool is required")
	}
	return &Store{pool: pool}, nil
}

// Close releases the underlying pool.
func (s *Store) Close() {
	s.pool.Close()
}

// Select implements backingstore.Store.
func (s *Store) Select(ctx context.Context, collection string) ([]map[string]any, error) {
	table, err := tableFor(collection)
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, fmt.Sprintf(`SELECT id, doc FROM %s ORDER BY id`, table))
	if err != nil {
		return nil, errors.Wrapf(err, "[Store.Select] query %s", table)
	}
	defer rows.Close()

	records := make([]map[string]any, 0)
	for rows.Next() {
		record, err := scanDocument(rows)
		if err != nil {
			return nil, errors.Wrapf(err, "[Store.Select] scan %s", table)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrapf(err, "[Store.Select] rows %s", table)
	}
	return records, nil
}

// GetByID implements backingstore.Store.
func (s *Store) GetByID(ctx context.Context, collection, id string) (map[string]any, error) {
	table, err := tableFor(collection)
	if err != nil {
		return nil, err
	}

	row := s.pool.QueryRow(ctx, fmt.Sprintf(`SELECT id, doc FROM %s WHERE id = $1`, table), id)
	record, err := scanDocument(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errors.Wrapf(backingstore.ErrNotFound, "%s/%s", collection, id)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "[Store.GetByID] %s/%s", table, id)
	}
	return record, nil
}

// Insert implements backingstore.Store.
func (s *Store) Insert(ctx context.Context, collection string, doc map[string]any) (map[string]any, error) {
	table, err := tableFor(collection)
	if err != nil {
		return nil, err
	}

	id, _ := doc["id"].(string)
	if id == "" {
		id = uuid.New().String()
		doc["id"] = id
	}
	encoded, err := json.Marshal(doc)
	if err != nil {
		return nil, errors.Wrap(err, "[Store.Insert] marshal doc")
	}

	_, err = s.pool.Exec(ctx,
		fmt.Sprintf(`INSERT INTO %s (id, doc) VALUES ($1, $2)`, table), id, encoded)
	if err != nil {
		return nil, errors.Wrapf(err, "[Store.Insert] %s", table)
	}
	return doc, nil
}

// Update implements backingstore.Store.
func (s *Store) Update(ctx context.Context, collection, id string, doc map[string]any) (map[string]any, error) {
	table, err := tableFor(collection)
	if err != nil {
		return nil, err
	}

	existing, err := s.GetByID(ctx, collection, id)
	if err != nil {
		return nil, err
	}
	for k, v := range doc {
		existing[k] = v
	}
	existing["id"] = id

	encoded, err := json.Marshal(existing)
	if err != nil {
		return nil, errors.Wrap(err, "[Store.Update] marshal doc")
	}
	tag, err := s.pool.Exec(ctx,
		fmt.Sprintf(`UPDATE %s SET doc = $2 WHERE id = $1`, table), id, encoded)
	if err != nil {
		return nil, errors.Wrapf(err, "[Store.Update] %s/%s", table, id)
	}
	if tag.RowsAffected() == 0 {
		return nil, errors.Wrapf(backingstore.ErrNotFound, "%s/%s", collection, id)
	}
	return existing, nil
}

// DeleteByID implements backingstore.Store.
func (s *Store) DeleteByID(ctx context.Context, collection, id string) error {
	table, err := tableFor(collection)
	if err != nil {
		return err
	}

	tag, err := s.pool.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, table), id)
	if err != nil {
		return errors.Wrapf(err, "[Store.DeleteByID] %s/%s", table, id)
	}
	if tag.RowsAffected() == 0 {
		return errors.Wrapf(backingstore.ErrNotFound, "%s/%s", collection, id)
	}
	return nil
}

func tableFor(collection string) (string, error) {
	table, ok := tableNames[collection]
	if !ok {
		return "", errors.Wrap(backingstore.ErrUnknownCollection, collection)
	}
	return table, nil
}

// scanDocument merges the id column into the decoded jsonb document.
func scanDocument(row pgx.Row) (map[string]any, error) {
	var (
		id      string
		rawDoc  []byte
		decoded map[string]any
	)
	if err := row.Scan(&id, &rawDoc); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(rawDoc, &decoded); err != nil {
		return nil, err
	}
	if decoded == nil {
		decoded = make(map[string]any)
	}
	decoded["id"] = id
	return decoded, nil
}
