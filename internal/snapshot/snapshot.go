package snapshot

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	_ "github.com/tursodatabase/go-libsql"

	"github.com/flowsmith/mcp-node-catalog-go/internal/apptype"
)

// ErrNoSnapshot is returned by Load when nothing has been saved yet.
var ErrNoSnapshot = errors.New("no catalog snapshot saved")

// Store persists the last successfully loaded catalog snapshot in a libsql
// database, so refresh fallback survives process restarts. Save replaces
// the stored snapshot wholesale inside one transaction.
type Store struct {
	db *sql.DB
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS catalog_nodes (
        identifier TEXT PRIMARY KEY,
        display_name TEXT NOT NULL,
        description TEXT NOT NULL DEFAULT '',
        category TEXT NOT NULL DEFAULT '',
        subcategory TEXT NOT NULL DEFAULT '',
        tags TEXT NOT NULL DEFAULT '[]',
        aliases TEXT NOT NULL DEFAULT '[]',
        is_trigger INTEGER NOT NULL DEFAULT 0,
        is_ai INTEGER NOT NULL DEFAULT 0
    )`,
	`CREATE TABLE IF NOT EXISTS snapshot_meta (
        id INTEGER PRIMARY KEY CHECK (id = 1),
        revision TEXT NOT NULL,
        saved_at DATETIME DEFAULT CURRENT_TIMESTAMP
    )`,
	`CREATE INDEX IF NOT EXISTS idx_catalog_nodes_category ON catalog_nodes(category)`,
}

// Open opens (creating if needed) a snapshot store at the given path. A
// path already carrying a URI scheme is used as-is.
func Open(path string) (*Store, error) {
	url := path
	if !strings.Contains(url, ":") {
		url = "file:" + url
	}
	db, err := sql.Open("libsql", url)
	if err != nil {
		return nil, fmt.Errorf("open snapshot db: %w", err)
	}
	for _, ddl := range schema {
		if _, err := db.Exec(ddl); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply snapshot schema: %w", err)
		}
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// Save replaces the stored snapshot with the given entities and revision.
func (s *Store) Save(ctx context.Context, revision string, entities []apptype.CatalogEntity) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM catalog_nodes`); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO catalog_nodes
        (identifier, display_name, description, category, subcategory, tags, aliases, is_trigger, is_ai)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, e := range entities {
		tags, err := json.Marshal(orEmpty(e.Tags))
		if err != nil {
			return err
		}
		aliases, err := json.Marshal(orEmpty(e.Aliases))
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx,
			e.Identifier, e.DisplayName, e.Description, e.Category, e.Subcategory,
			string(tags), string(aliases), boolInt(e.IsTriggerVariant), boolInt(e.IsAI)); err != nil {
			return fmt.Errorf("save entity %q: %w", e.Identifier, err)
		}
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO snapshot_meta (id, revision, saved_at)
        VALUES (1, ?, CURRENT_TIMESTAMP)
        ON CONFLICT (id) DO UPDATE SET revision = excluded.revision, saved_at = CURRENT_TIMESTAMP`,
		revision); err != nil {
		return err
	}
	return tx.Commit()
}

// Load returns the stored snapshot and its revision, or ErrNoSnapshot.
func (s *Store) Load(ctx context.Context) (string, []apptype.CatalogEntity, error) {
	var revision string
	err := s.db.QueryRowContext(ctx, `SELECT revision FROM snapshot_meta WHERE id = 1`).Scan(&revision)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil, ErrNoSnapshot
	}
	if err != nil {
		return "", nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT identifier, display_name, description,
        category, subcategory, tags, aliases, is_trigger, is_ai
        FROM catalog_nodes ORDER BY identifier`)
	if err != nil {
		return "", nil, err
	}
	defer rows.Close()

	var entities []apptype.CatalogEntity
	for rows.Next() {
		var e apptype.CatalogEntity
		var tags, aliases string
		var isTrigger, isAI int
		if err := rows.Scan(&e.Identifier, &e.DisplayName, &e.Description,
			&e.Category, &e.Subcategory, &tags, &aliases, &isTrigger, &isAI); err != nil {
			return "", nil, err
		}
		if err := json.Unmarshal([]byte(tags), &e.Tags); err != nil {
			return "", nil, fmt.Errorf("decode tags for %q: %w", e.Identifier, err)
		}
		if err := json.Unmarshal([]byte(aliases), &e.Aliases); err != nil {
			return "", nil, fmt.Errorf("decode aliases for %q: %w", e.Identifier, err)
		}
		e.IsTriggerVariant = isTrigger != 0
		e.IsAI = isAI != 0
		entities = append(entities, e)
	}
	if err := rows.Err(); err != nil {
		return "", nil, err
	}
	return revision, entities, nil
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
