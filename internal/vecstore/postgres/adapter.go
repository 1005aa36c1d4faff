// Package postgres implements vecstore.Store on PostgreSQL via the pgx stdlib driver.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog"

	"github.com/reflective-ai/reflective-server/internal/embeddings"
	"github.com/reflective-ai/reflective-server/internal/model"
	"github.com/reflective-ai/reflective-server/internal/vecstore"
)

const schema = `
CREATE TABLE IF NOT EXISTS collections (
	name TEXT PRIMARY KEY
);
CREATE TABLE IF NOT EXISTS records (
	collection TEXT NOT NULL REFERENCES collections(name),
	id         TEXT NOT NULL,
	document   TEXT NOT NULL,
	metadata   JSONB NOT NULL DEFAULT '{}',
	embedding  BYTEA,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (collection, id)
);
`

// PostgresStore implements vecstore.Store using PostgreSQL.
type PostgresStore struct {
	db  *sql.DB
	emb embeddings.Provider
	log zerolog.Logger
}

// Open returns a *sql.DB using the pgx stdlib driver.
func Open(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is empty")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// New opens a connection and applies the schema.
func New(dsn string, emb embeddings.Provider, log zerolog.Logger) (*PostgresStore, error) {
	db, err := Open(dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open postgres: %v", model.ErrStorage, err)
	}
	return NewWithDB(db, emb, log)
}

// NewWithDB constructs an adapter from an existing connection.
func NewWithDB(db *sql.DB, emb embeddings.Provider, log zerolog.Logger) (*PostgresStore, error) {
	if db == nil {
		return nil, fmt.Errorf("nil db")
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("%w: apply schema: %v", model.ErrStorage, err)
	}
	return &PostgresStore{db: db, emb: emb, log: log}, nil
}

func (s *PostgresStore) Close() error { return s.db.Close() }

func (s *PostgresStore) EnsureCollection(ctx context.Context, name string) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO collections (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`, name)
	if err != nil {
		return fmt.Errorf("%w: ensure collection %s: %v", model.ErrStorage, name, err)
	}
	return nil
}

func (s *PostgresStore) Add(ctx context.Context, collection string, recs []vecstore.Record) error {
	if err := s.EnsureCollection(ctx, collection); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin tx: %v", model.ErrStorage, err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, r := range recs {
		var exists int
		row := tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM records WHERE collection = $1 AND id = $2`, collection, r.ID)
		if err := row.Scan(&exists); err != nil {
			return fmt.Errorf("%w: check id: %v", model.ErrStorage, err)
		}
		if exists > 0 {
			return fmt.Errorf("%w: %s in %s", model.ErrDuplicateID, r.ID, collection)
		}
		mdJSON, vec, err := s.prepareRecord(ctx, r)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO records (collection, id, document, metadata, embedding) VALUES ($1,$2,$3,$4,$5)`,
			collection, r.ID, r.Document, mdJSON, vec)
		if err != nil {
			return fmt.Errorf("%w: insert: %v", model.ErrStorage, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", model.ErrStorage, err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, collection string, recs []vecstore.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin tx: %v", model.ErrStorage, err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, r := range recs {
		mdJSON, vec, err := s.prepareRecord(ctx, r)
		if err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx,
			`UPDATE records SET document = $1, metadata = $2, embedding = $3 WHERE collection = $4 AND id = $5`,
			r.Document, mdJSON, vec, collection, r.ID)
		if err != nil {
			return fmt.Errorf("%w: update: %v", model.ErrStorage, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("%w: %s in %s", model.ErrNotFound, r.ID, collection)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", model.ErrStorage, err)
	}
	return nil
}

func (s *PostgresStore) prepareRecord(ctx context.Context, r vecstore.Record) (string, []byte, error) {
	md, err := json.Marshal(vecstore.CleanMetadata(r.Metadata))
	if err != nil {
		return "", nil, fmt.Errorf("%w: marshal metadata: %v", model.ErrStorage, err)
	}
	var vec []byte
	if s.emb != nil {
		v, err := s.emb.Embed(ctx, r.Document)
		if err != nil {
			s.log.Warn().Err(err).Str("id", r.ID).Msg("embed failed; storing record without vector")
		} else {
			vec = vecstore.EncodeVector(v)
		}
	}
	return string(md), vec, nil
}

func (s *PostgresStore) Get(ctx context.Context, collection string, ids []string, where map[string]interface{}) ([]vecstore.Record, error) {
	q := `SELECT id, document, metadata FROM records WHERE collection = $1`
	args := []interface{}{collection}
	if len(where) > 0 {
		filter, err := json.Marshal(vecstore.CleanMetadata(where))
		if err != nil {
			return nil, fmt.Errorf("%w: marshal filter: %v", model.ErrStorage, err)
		}
		args = append(args, string(filter))
		q += fmt.Sprintf(` AND metadata @> $%d::jsonb`, len(args))
	}
	if len(ids) > 0 {
		args = append(args, ids)
		q += fmt.Sprintf(` AND id = ANY($%d)`, len(args))
	}
	q += ` ORDER BY created_at, id`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: get: %v", model.ErrStorage, err)
	}
	defer func() { _ = rows.Close() }()

	var out []vecstore.Record
	for rows.Next() {
		var r vecstore.Record
		var mdJSON string
		if err := rows.Scan(&r.ID, &r.Document, &mdJSON); err != nil {
			return nil, fmt.Errorf("%w: scan: %v", model.ErrStorage, err)
		}
		if err := json.Unmarshal([]byte(mdJSON), &r.Metadata); err != nil {
			s.log.Warn().Err(err).Str("id", r.ID).Msg("corrupt metadata; skipping record")
			continue
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Query(ctx context.Context, collection, queryText string, k int) ([]vecstore.QueryHit, error) {
	if s.emb == nil {
		return nil, fmt.Errorf("%w: no embedding provider configured", model.ErrStorage)
	}
	qvec, err := s.emb.Embed(ctx, queryText)
	if err != nil {
		return nil, fmt.Errorf("%w: embed query: %v", model.ErrStorage, err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, document, metadata, embedding FROM records WHERE collection = $1 AND embedding IS NOT NULL ORDER BY created_at, id`,
		collection)
	if err != nil {
		return nil, fmt.Errorf("%w: query: %v", model.ErrStorage, err)
	}
	defer func() { _ = rows.Close() }()

	var hits []vecstore.QueryHit
	for rows.Next() {
		var h vecstore.QueryHit
		var mdJSON string
		var blob []byte
		if err := rows.Scan(&h.ID, &h.Document, &mdJSON, &blob); err != nil {
			return nil, fmt.Errorf("%w: scan: %v", model.ErrStorage, err)
		}
		if err := json.Unmarshal([]byte(mdJSON), &h.Metadata); err != nil {
			s.log.Warn().Err(err).Str("id", h.ID).Msg("corrupt metadata; skipping record")
			continue
		}
		h.Distance = embeddings.CosineDistance(qvec, vecstore.DecodeVector(blob))
		hits = append(hits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate: %v", model.ErrStorage, err)
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })
	if k > 0 && len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

func (s *PostgresStore) Delete(ctx context.Context, collection string, ids []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin tx: %v", model.ErrStorage, err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, id := range ids {
		res, err := tx.ExecContext(ctx, `DELETE FROM records WHERE collection = $1 AND id = $2`, collection, id)
		if err != nil {
			return fmt.Errorf("%w: delete: %v", model.ErrStorage, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("%w: %s in %s", model.ErrNotFound, id, collection)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", model.ErrStorage, err)
	}
	return nil
}

func (s *PostgresStore) Count(ctx context.Context, collection string) (int, error) {
	var n int
	row := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM records WHERE collection = $1`, collection)
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: count: %v", model.ErrStorage, err)
	}
	return n, nil
}
