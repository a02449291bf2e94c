package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/canhta/CareCircle/pkg/carecircle"
	"github.com/canhta/CareCircle/pkg/carecircle/chunk"
	"github.com/canhta/CareCircle/pkg/carecircle/internalerr"
	"github.com/canhta/CareCircle/pkg/carecircle/store"
)

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite database with WAL mode enabled and creates the
// schema if needed.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, errors.Join(internalerr.ErrStoreUnavailable, err))
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable wal: %w", errors.Join(internalerr.ErrStoreUnavailable, err))
	}

	// Enable foreign keys
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS items (
	content_id TEXT PRIMARY KEY,
	run_id TEXT,
	source_url TEXT NOT NULL,
	title TEXT,
	title_lower TEXT,
	specialty TEXT,
	content_type TEXT,
	quality_score REAL NOT NULL,
	medical_relevance REAL NOT NULL,
	processed_at TEXT,
	payload TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_items_source_url ON items(source_url);

CREATE TABLE IF NOT EXISTS item_keywords (
	content_id TEXT NOT NULL,
	keyword TEXT NOT NULL,
	PRIMARY KEY(content_id, keyword),
	FOREIGN KEY(content_id) REFERENCES items(content_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_item_keywords_keyword ON item_keywords(keyword);

CREATE TABLE IF NOT EXISTS chunks (
	point_id TEXT PRIMARY KEY,
	content_id TEXT NOT NULL,
	chunk_index INTEGER NOT NULL,
	chunk_type TEXT NOT NULL,
	start_position INTEGER NOT NULL,
	end_position INTEGER NOT NULL,
	quality_score REAL NOT NULL,
	medical_relevance REAL NOT NULL,
	content TEXT NOT NULL,
	UNIQUE(content_id, chunk_index),
	FOREIGN KEY(content_id) REFERENCES items(content_id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	started_at TEXT NOT NULL,
	started_unix INTEGER NOT NULL,
	finished_at TEXT,
	workers INTEGER DEFAULT 1,
	admitted INTEGER DEFAULT 0,
	stats_json TEXT
);
`

	_, err := db.ExecContext(ctx, schema)
	return err
}

// PutItems upserts all items in one transaction.
func (s *sqliteStore) PutItems(ctx context.Context, runID string, items []carecircle.ProcessedItem) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, item := range items {
		if item.ContentID == "" {
			return fmt.Errorf("item %q has no content id: %w", item.SourceURL, internalerr.ErrInvalidInput)
		}
		if err := upsertItem(ctx, tx, runID, item); err != nil {
			return fmt.Errorf("upsert %s: %w", item.ContentID, err)
		}
	}

	return tx.Commit()
}

func upsertItem(ctx context.Context, tx *sql.Tx, runID string, item carecircle.ProcessedItem) error {
	payload, err := json.Marshal(item)
	if err != nil {
		return err
	}

	const stmt = `
INSERT INTO items (content_id, run_id, source_url, title, title_lower, specialty, content_type,
	quality_score, medical_relevance, processed_at, payload)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(content_id) DO UPDATE SET
	run_id=excluded.run_id,
	source_url=excluded.source_url,
	title=excluded.title,
	title_lower=excluded.title_lower,
	specialty=excluded.specialty,
	content_type=excluded.content_type,
	quality_score=excluded.quality_score,
	medical_relevance=excluded.medical_relevance,
	processed_at=excluded.processed_at,
	payload=excluded.payload;
`
	if _, err := tx.ExecContext(ctx, stmt,
		item.ContentID,
		runID,
		item.SourceURL,
		item.Title,
		strings.ToLower(item.Title),
		item.MedicalSpecialty,
		item.ContentType,
		item.QualityScore,
		item.MedicalRelevance,
		formatTime(item.ProcessedAt),
		string(payload),
	); err != nil {
		return err
	}

	if err := replaceKeywords(ctx, tx, item); err != nil {
		return err
	}
	return replaceChunks(ctx, tx, item)
}

func replaceKeywords(ctx context.Context, tx *sql.Tx, item carecircle.ProcessedItem) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM item_keywords WHERE content_id = ?`, item.ContentID); err != nil {
		return err
	}
	for _, kw := range item.SearchKeywords {
		kw = store.NormalizeKeyword(kw)
		if kw == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO item_keywords (content_id, keyword) VALUES (?, ?)`,
			item.ContentID, kw); err != nil {
			return err
		}
	}
	return nil
}

func replaceChunks(ctx context.Context, tx *sql.Tx, item carecircle.ProcessedItem) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM chunks WHERE content_id = ?`, item.ContentID); err != nil {
		return err
	}

	const stmt = `
INSERT INTO chunks (point_id, content_id, chunk_index, chunk_type, start_position, end_position,
	quality_score, medical_relevance, content)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
`
	for _, c := range item.Chunks {
		if _, err := tx.ExecContext(ctx, stmt,
			chunk.PointID(item.ContentID, c.ChunkID),
			item.ContentID,
			c.ChunkID,
			c.ChunkType,
			c.StartPosition,
			c.EndPosition,
			c.QualityScore,
			c.MedicalRelevance,
			c.Content,
		); err != nil {
			return err
		}
	}
	return nil
}

// GetItem returns an item by content ID.
func (s *sqliteStore) GetItem(ctx context.Context, contentID string) (carecircle.ProcessedItem, bool, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM items WHERE content_id = ?`, contentID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return carecircle.ProcessedItem{}, false, nil
	}
	if err != nil {
		return carecircle.ProcessedItem{}, false, err
	}

	item, err := decodeItem(payload)
	if err != nil {
		return carecircle.ProcessedItem{}, false, err
	}
	return item, true, nil
}

// SearchByKeyword matches the keyword index first and falls back to the
// lowercased title. instr keeps the title match literal for % and _.
func (s *sqliteStore) SearchByKeyword(ctx context.Context, keyword string, limit int) ([]carecircle.ProcessedItem, error) {
	keyword = store.NormalizeKeyword(keyword)
	if keyword == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = -1
	}

	const query = `
SELECT payload FROM items
WHERE content_id IN (SELECT content_id FROM item_keywords WHERE keyword = ?)
	OR instr(title_lower, ?) > 0
ORDER BY quality_score DESC, content_id ASC
LIMIT ?
`
	rows, err := s.db.QueryContext(ctx, query, keyword, keyword, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []carecircle.ProcessedItem
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		item, err := decodeItem(payload)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

// ChunkCount returns the number of chunk rows stored for an item.
func ChunkCount(ctx context.Context, st store.Store, contentID string) (int, error) {
	s, ok := st.(*sqliteStore)
	if !ok {
		return 0, fmt.Errorf("not a sqlite store: %w", internalerr.ErrInvalidInput)
	}
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks WHERE content_id = ?`, contentID).Scan(&n)
	return n, err
}

// PutRun inserts or replaces a run.
func (s *sqliteStore) PutRun(ctx context.Context, run store.Run) error {
	if run.ID == "" {
		return fmt.Errorf("run has no id: %w", internalerr.ErrInvalidInput)
	}

	stats, err := json.Marshal(run.Stats)
	if err != nil {
		return err
	}

	const stmt = `
INSERT INTO runs (id, started_at, started_unix, finished_at, workers, admitted, stats_json)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	started_at=excluded.started_at,
	started_unix=excluded.started_unix,
	finished_at=excluded.finished_at,
	workers=excluded.workers,
	admitted=excluded.admitted,
	stats_json=excluded.stats_json
`
	_, err = s.db.ExecContext(ctx, stmt,
		run.ID,
		formatTime(run.StartedAt),
		run.StartedAt.UnixNano(),
		formatTime(run.FinishedAt),
		run.Workers,
		run.Admitted,
		string(stats),
	)
	return err
}

// ListRuns returns runs newest first.
func (s *sqliteStore) ListRuns(ctx context.Context, limit int) ([]store.Run, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT id, started_at, finished_at, workers, admitted, stats_json
FROM runs
ORDER BY started_unix DESC, id DESC
LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []store.Run
	for rows.Next() {
		var (
			run               store.Run
			started, finished string
			statsJSON         sql.NullString
		)
		if err := rows.Scan(&run.ID, &started, &finished, &run.Workers, &run.Admitted, &statsJSON); err != nil {
			return nil, err
		}
		if run.StartedAt, err = parseTime(started); err != nil {
			return nil, err
		}
		if run.FinishedAt, err = parseTime(finished); err != nil {
			return nil, err
		}
		if statsJSON.Valid && statsJSON.String != "" {
			if err := json.Unmarshal([]byte(statsJSON.String), &run.Stats); err != nil {
				return nil, err
			}
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func decodeItem(payload string) (carecircle.ProcessedItem, error) {
	var item carecircle.ProcessedItem
	if err := json.Unmarshal([]byte(payload), &item); err != nil {
		return carecircle.ProcessedItem{}, fmt.Errorf("decode item: %w", err)
	}
	return item, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}
