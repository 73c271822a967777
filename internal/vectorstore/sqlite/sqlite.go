// Package sqlite is a persistent vector store kept in a single SQLite file.
// Similarity is computed in Go over all stored rows, which is fine for the
// document sizes this tool indexes.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	_ "modernc.org/sqlite"

	"docchat/internal/domain"
	"docchat/internal/vectorstore/vecmath"
)

const schema = `
CREATE TABLE IF NOT EXISTS meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS chunks (
	chunk_id    TEXT PRIMARY KEY,
	document_id TEXT NOT NULL,
	source      TEXT NOT NULL DEFAULT '',
	idx         INTEGER NOT NULL,
	text        TEXT NOT NULL,
	vector      BLOB NOT NULL
);`

// Storage implements the vector store on top of database/sql.
type Storage struct {
	db        *sql.DB
	dimension int
}

// Open opens or creates the index at path, creating parent directories.
func Open(path string) (*Storage, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}
	dsn := path +
		"?_pragma=journal_mode(WAL)" +
		"&_pragma=busy_timeout(5000)" +
		"&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}
	// one writer; keeps :memory: databases on a single connection too
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: schema: %w", err)
	}
	return &Storage{db: db}, nil
}

func (s *Storage) Close() error { return s.db.Close() }

// Init records the dimension of the index. An index built with a different
// dimension must be cleared before it can be reused.
func (s *Storage) Init(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	stored, err := s.storedDimension(ctx)
	if err != nil {
		return err
	}
	if stored != 0 && stored != dimension {
		n, err := s.Count(ctx)
		if err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("sqlite: index has dimension %d, got %d", stored, dimension)
		}
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO meta(key, value) VALUES('dimension', ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, strconv.Itoa(dimension))
	if err != nil {
		return err
	}
	s.dimension = dimension
	return nil
}

// storedDimension is 0 for a fresh index.
func (s *Storage) storedDimension(ctx context.Context) (int, error) {
	var v string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = 'dimension'`).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(v)
}

func (s *Storage) Upsert(ctx context.Context, chunks []domain.Chunk, vectors [][]float64) error {
	if len(chunks) != len(vectors) {
		return errors.New("chunks and vectors length mismatch")
	}
	for _, v := range vectors {
		if len(v) != s.dimension {
			return errors.New("vector dimension mismatch")
		}
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO chunks(chunk_id, document_id, source, idx, text, vector) VALUES(?, ?, ?, ?, ?, ?)
		 ON CONFLICT(chunk_id) DO UPDATE SET
		   document_id = excluded.document_id, source = excluded.source,
		   idx = excluded.idx, text = excluded.text, vector = excluded.vector`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i, ch := range chunks {
		if _, err := stmt.ExecContext(ctx, ch.ChunkID, ch.DocumentID, ch.Source, ch.Index, ch.Text, vecmath.Encode(vectors[i])); err != nil {
			return fmt.Errorf("sqlite: upsert %s: %w", ch.ChunkID, err)
		}
	}
	return tx.Commit()
}

func (s *Storage) Search(ctx context.Context, vector []float64, topK int) ([]domain.SearchResult, error) {
	if topK <= 0 {
		topK = 5
	}
	rows, err := s.db.QueryContext(ctx, `SELECT chunk_id, document_id, source, idx, text, vector FROM chunks ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var all []domain.SearchResult
	var scores []float64
	for rows.Next() {
		var ch domain.Chunk
		var blob []byte
		if err := rows.Scan(&ch.ChunkID, &ch.DocumentID, &ch.Source, &ch.Index, &ch.Text, &blob); err != nil {
			return nil, err
		}
		v, err := vecmath.Decode(blob)
		if err != nil {
			return nil, fmt.Errorf("sqlite: chunk %s: %w", ch.ChunkID, err)
		}
		score := vecmath.Cosine(v, vector)
		all = append(all, domain.SearchResult{Chunk: ch, Score: score})
		scores = append(scores, score)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	idxs := vecmath.ArgsortDesc(scores)
	if topK > len(idxs) {
		topK = len(idxs)
	}
	out := make([]domain.SearchResult, 0, topK)
	for _, i := range idxs[:topK] {
		out = append(out, all[i])
	}
	return out, nil
}

func (s *Storage) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM chunks`)
	return err
}

func (s *Storage) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks`).Scan(&n)
	return n, err
}
