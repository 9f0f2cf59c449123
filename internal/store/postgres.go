package store

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/mealscope/enrich-cli/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses. pgxmock satisfies it
// for unit tests.
type Pool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool. Embeddings are written to a
// pgvector column.
type PostgresStore struct {
	pool Pool
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

const (
	sqlListItems = `SELECT f.id, f.name_jp, COALESCE(f.remarks, ''), COALESCE(f.food_code, ''), COALESCE(f.index_code, ''), f.group_id, g.name_jp, g.original_sort_order
FROM foods f JOIN food_groups g ON g.id = f.group_id
ORDER BY f.id LIMIT $1 OFFSET $2`
	sqlListEmbedded  = `SELECT id FROM foods WHERE name_embedding IS NOT NULL ORDER BY id LIMIT $1 OFFSET $2`
	sqlUpsertEmbed   = `UPDATE foods SET name_embedding = $1::vector, updated_at = now() WHERE id = $2`
	sqlCountItems    = `SELECT count(*) FROM foods`
	sqlCountEmbedded = `SELECT count(*) FROM foods WHERE name_embedding IS NOT NULL`
)

// preparedStatements lists queries to prepare on each new connection for
// faster execution of the page-fetch loop.
var preparedStatements = map[string]string{
	"list_items":    sqlListItems,
	"list_embedded": sqlListEmbedded,
	"upsert_embed":  sqlUpsertEmbed,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	// Apply pool sizing from config with sensible defaults.
	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE EXTENSION IF NOT EXISTS vector;

CREATE TABLE IF NOT EXISTS food_groups (
	id                  TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	name_jp             TEXT NOT NULL,
	group_code          TEXT,
	original_sort_order INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS foods (
	id             TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	name_jp        TEXT NOT NULL,
	remarks        TEXT,
	food_code      TEXT,
	index_code     TEXT,
	group_id       TEXT NOT NULL REFERENCES food_groups(id),
	name_embedding vector(1536),
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_foods_group_id ON foods(group_id);
CREATE INDEX IF NOT EXISTS idx_foods_embedded ON foods(id) WHERE name_embedding IS NOT NULL;
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, postgresMigration); err != nil {
		return eris.Wrap(err, "postgres: migrate")
	}
	return nil
}

func (s *PostgresStore) ListItems(ctx context.Context, offset, limit int) ([]model.CatalogItem, error) {
	rows, err := s.pool.Query(ctx, sqlListItems, limit, offset)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list items")
	}
	defer rows.Close()

	var items []model.CatalogItem
	for rows.Next() {
		var it model.CatalogItem
		if err := rows.Scan(&it.ID, &it.Name, &it.Remarks, &it.FoodCode, &it.IndexCode, &it.GroupID, &it.GroupName, &it.GroupOrder); err != nil {
			return nil, eris.Wrap(err, "postgres: scan item")
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: list items rows")
	}
	return items, nil
}

func (s *PostgresStore) ListEmbeddedIDs(ctx context.Context, offset, limit int) ([]string, error) {
	rows, err := s.pool.Query(ctx, sqlListEmbedded, limit, offset)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list embedded ids")
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, eris.Wrap(err, "postgres: scan embedded id")
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: list embedded ids rows")
	}
	return ids, nil
}

func (s *PostgresStore) UpsertEmbedding(ctx context.Context, itemID string, vec []float32) error {
	tag, err := s.pool.Exec(ctx, sqlUpsertEmbed, vectorLiteral(vec), itemID)
	if err != nil {
		return eris.Wrapf(err, "postgres: upsert embedding %s", itemID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("postgres: upsert embedding: item %s not found", itemID)
	}
	return nil
}

func (s *PostgresStore) CountItems(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, sqlCountItems).Scan(&n); err != nil {
		return 0, eris.Wrap(err, "postgres: count items")
	}
	return n, nil
}

func (s *PostgresStore) CountEmbedded(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, sqlCountEmbedded).Scan(&n); err != nil {
		return 0, eris.Wrap(err, "postgres: count embedded")
	}
	return n, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// vectorLiteral renders a float32 slice as a pgvector input literal,
// e.g. "[0.1,0.2,0.3]".
func vectorLiteral(vec []float32) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, v := range vec {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(float64(v), 'g', -1, 32))
	}
	b.WriteByte(']')
	return b.String()
}
