package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres stores each collection as one JSONB row per (user, name).
// See migrations/001_collections.sql for the schema.
type Postgres struct {
	pool   *pgxpool.Pool
	userID string
}

// NewPostgres returns a Gateway over pool scoped to userID's namespace.
func NewPostgres(pool *pgxpool.Pool, userID string) *Postgres {
	return &Postgres{pool: pool, userID: userID}
}

func (g *Postgres) Get(ctx context.Context, collection string, out any) error {
	var data []byte
	err := g.pool.QueryRow(ctx,
		"SELECT data FROM user_collections WHERE user_id = $1 AND collection = $2",
		g.userID, collection,
	).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("fetch collection %q: %w", collection, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode collection %q: %w", collection, err)
	}
	return nil
}

func (g *Postgres) Save(ctx context.Context, collection string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode collection %q: %w", collection, err)
	}
	_, err = g.pool.Exec(ctx, `
		INSERT INTO user_collections (user_id, collection, data, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id, collection) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()
	`, g.userID, collection, data)
	if err != nil {
		return fmt.Errorf("save collection %q: %w", collection, err)
	}
	return nil
}

func (g *Postgres) ExportSnapshot(ctx context.Context) (*Document, error) {
	rows, err := g.pool.Query(ctx,
		"SELECT collection, data FROM user_collections WHERE user_id = $1 ORDER BY collection",
		g.userID,
	)
	if err != nil {
		return nil, fmt.Errorf("export snapshot: %w", err)
	}
	defer rows.Close()

	doc := &Document{Collections: make(map[string]json.RawMessage)}
	for rows.Next() {
		var name string
		var data []byte
		if err := rows.Scan(&name, &data); err != nil {
			return nil, fmt.Errorf("scan collection row: %w", err)
		}
		doc.Collections[name] = json.RawMessage(data)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate collection rows: %w", err)
	}
	return doc, nil
}

func (g *Postgres) ImportSnapshot(ctx context.Context, doc *Document) error {
	tx, err := g.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "DELETE FROM user_collections WHERE user_id = $1", g.userID); err != nil {
		return fmt.Errorf("clear existing collections: %w", err)
	}
	for name, data := range doc.Collections {
		if _, err := tx.Exec(ctx, `
			INSERT INTO user_collections (user_id, collection, data, updated_at)
			VALUES ($1, $2, $3, NOW())
		`, g.userID, name, []byte(data)); err != nil {
			return fmt.Errorf("import collection %q: %w", name, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit import: %w", err)
	}
	return nil
}
