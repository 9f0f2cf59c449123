package store

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/mealscope/enrich-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite. Embeddings are
// stored as a JSON array in a text column; SQLite has no vector type.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS food_groups (
	id                  TEXT PRIMARY KEY,
	name_jp             TEXT NOT NULL,
	group_code          TEXT,
	original_sort_order INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS foods (
	id             TEXT PRIMARY KEY,
	name_jp        TEXT NOT NULL,
	remarks        TEXT,
	food_code      TEXT,
	index_code     TEXT,
	group_id       TEXT NOT NULL REFERENCES food_groups(id),
	name_embedding TEXT,
	created_at     DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at     DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_foods_group_id ON foods(group_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) ListItems(ctx context.Context, offset, limit int) ([]model.CatalogItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT f.id, f.name_jp, COALESCE(f.remarks, ''), COALESCE(f.food_code, ''), COALESCE(f.index_code, ''), f.group_id, g.name_jp, g.original_sort_order
		FROM foods f JOIN food_groups g ON g.id = f.group_id
		ORDER BY f.id LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list items")
	}
	defer rows.Close()

	var items []model.CatalogItem
	for rows.Next() {
		var it model.CatalogItem
		if err := rows.Scan(&it.ID, &it.Name, &it.Remarks, &it.FoodCode, &it.IndexCode, &it.GroupID, &it.GroupName, &it.GroupOrder); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan item")
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: list items rows")
	}
	return items, nil
}

func (s *SQLiteStore) ListEmbeddedIDs(ctx context.Context, offset, limit int) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM foods WHERE name_embedding IS NOT NULL ORDER BY id LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list embedded ids")
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan embedded id")
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: list embedded ids rows")
	}
	return ids, nil
}

func (s *SQLiteStore) UpsertEmbedding(ctx context.Context, itemID string, vec []float32) error {
	data, err := json.Marshal(vec)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal embedding")
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE foods SET name_embedding = ?, updated_at = datetime('now') WHERE id = ?`,
		string(data), itemID)
	if err != nil {
		return eris.Wrapf(err, "sqlite: upsert embedding %s", itemID)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return eris.Errorf("sqlite: upsert embedding: item %s not found", itemID)
	}
	return nil
}

func (s *SQLiteStore) CountItems(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM foods`).Scan(&n); err != nil {
		return 0, eris.Wrap(err, "sqlite: count items")
	}
	return n, nil
}

func (s *SQLiteStore) CountEmbedded(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM foods WHERE name_embedding IS NOT NULL`).Scan(&n); err != nil {
		return 0, eris.Wrap(err, "sqlite: count embedded")
	}
	return n, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
