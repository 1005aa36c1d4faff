// Package sqlite implements vecstore.Store on a single SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"time"

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
	metadata   TEXT NOT NULL DEFAULT '{}',
	embedding  BLOB,
	created_at TEXT NOT NULL,
	PRIMARY KEY (collection, id)
);
`

// SqliteStore implements vecstore.Store using the modernc SQLite driver.
type SqliteStore struct {
	db  *sql.DB
	emb embeddings.Provider
	log zerolog.Logger
}

// New opens (or creates) the database file and applies the schema.
func New(path string, emb embeddings.Provider, log zerolog.Logger) (*SqliteStore, error) {
	db, err := Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open sqlite: %v", model.ErrStorage, err)
	}
	return NewWithDB(db, emb, log)
}

// NewWithDB allows wiring with an existing connection (used by factory and tests).
func NewWithDB(db *sql.DB, emb embeddings.Provider, log zerolog.Logger) (*SqliteStore, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("%w: apply schema: %v", model.ErrStorage, err)
	}
	return &SqliteStore{db: db, emb: emb, log: log}, nil
}

// DB exposes the underlying connection (local-only use case).
func (s *SqliteStore) DB() *sql.DB { return s.db }

func (s *SqliteStore) Close() error { return s.db.Close() }

func (s *SqliteStore) EnsureCollection(ctx context.Context, name string) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO collections (name) VALUES (?) ON CONFLICT(name) DO NOTHING`, name)
	if err != nil {
		return fmt.Errorf("%w: ensure collection %s: %v", model.ErrStorage, name, err)
	}
	return nil
}

func (s *SqliteStore) Add(ctx context.Context, collection string, recs []vecstore.Record) error {
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
		row := tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM records WHERE collection = ? AND id = ?`, collection, r.ID)
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
			`INSERT INTO records (collection, id, document, metadata, embedding, created_at) VALUES (?,?,?,?,?,?)`,
			collection, r.ID, r.Document, mdJSON, vec, time.Now().UTC().Format(time.RFC3339Nano))
		if err != nil {
			return fmt.Errorf("%w: insert: %v", model.ErrStorage, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", model.ErrStorage, err)
	}
	return nil
}

func (s *SqliteStore) Update(ctx context.Context, collection string, recs []vecstore.Record) error {
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
			`UPDATE records SET document = ?, metadata = ?, embedding = ? WHERE collection = ? AND id = ?`,
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

// prepareRecord marshals metadata and embeds the document. Embedding is
// best-effort: a failed embed stores the record without a vector so the data
// is never lost, at the cost of excluding it from similarity results.
func (s *SqliteStore) prepareRecord(ctx context.Context, r vecstore.Record) (string, []byte, error) {
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

func (s *SqliteStore) Get(ctx context.Context, collection string, ids []string, where map[string]interface{}) ([]vecstore.Record, error) {
	q := `SELECT id, document, metadata FROM records WHERE collection = ?`
	args := []interface{}{collection}
	if len(ids) > 0 {
		q += ` AND id IN (?` + repeat(",?", len(ids)-1) + `)`
		for _, id := range ids {
			args = append(args, id)
		}
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
		if len(where) > 0 && !vecstore.MatchesWhere(r.Metadata, where) {
			continue
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SqliteStore) Query(ctx context.Context, collection, queryText string, k int) ([]vecstore.QueryHit, error) {
	if s.emb == nil {
		return nil, fmt.Errorf("%w: no embedding provider configured", model.ErrStorage)
	}
	qvec, err := s.emb.Embed(ctx, queryText)
	if err != nil {
		return nil, fmt.Errorf("%w: embed query: %v", model.ErrStorage, err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, document, metadata, embedding FROM records WHERE collection = ? AND embedding IS NOT NULL ORDER BY created_at, id`,
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

func (s *SqliteStore) Delete(ctx context.Context, collection string, ids []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin tx: %v", model.ErrStorage, err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, id := range ids {
		res, err := tx.ExecContext(ctx, `DELETE FROM records WHERE collection = ? AND id = ?`, collection, id)
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

func (s *SqliteStore) Count(ctx context.Context, collection string) (int, error) {
	var n int
	row := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM records WHERE collection = ?`, collection)
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: count: %v", model.ErrStorage, err)
	}
	return n, nil
}

func repeat(s string, n int) string {
	out := ""
	for i := 0; i < n; i++ {
		out += s
	}
	return out
}
