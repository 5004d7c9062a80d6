package snapshot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

const defaultHistory = 20

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS snapshots (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            version INTEGER NOT NULL,
            exported_at DATETIME NOT NULL,
            body TEXT NOT NULL,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP
        );`,
}

type snapshotRow struct {
	ID   int64  `db:"id"`
	Body string `db:"body"`
}

// SQLiteStore appends every save as a row and keeps the newest rows only.
type SQLiteStore struct {
	db      *sqlx.DB
	history int
}

func NewSQLiteStore(db *sqlx.DB) (*SQLiteStore, error) {
	for _, stmt := range sqliteSchema {
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("sqlite snapshot migration failed: %w", err)
		}
	}
	return &SQLiteStore{db: db, history: defaultHistory}, nil
}

func (s *SQLiteStore) Load(ctx context.Context) (*Document, error) {
	var row snapshotRow
	err := s.db.GetContext(ctx, &row, `SELECT id, body FROM snapshots ORDER BY id DESC LIMIT 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return Decode([]byte(row.Body))
}

func (s *SQLiteStore) Save(ctx context.Context, doc *Document) error {
	raw, err := Encode(doc)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin snapshot save: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO snapshots (version, exported_at, body) VALUES (?, ?, ?)`,
		CurrentVersion, doc.ExportDate.UTC(), string(raw),
	); err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM snapshots WHERE id NOT IN (SELECT id FROM snapshots ORDER BY id DESC LIMIT ?)`,
		s.history,
	); err != nil {
		return fmt.Errorf("prune snapshots: %w", err)
	}
	return tx.Commit()
}
