package snapshot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

type ledgerSnapshot struct {
	ID         uint      `gorm:"primaryKey;autoIncrement"`
	Version    int       `gorm:"not null"`
	ExportedAt time.Time `gorm:"not null"`
	Body       string    `gorm:"type:jsonb;not null"`
	CreatedAt  time.Time
}

func (ledgerSnapshot) TableName() string {
	return "ledger_snapshots"
}

// PostgresStore keeps every saved document as a jsonb row; Load reads the newest.
type PostgresStore struct {
	db *gorm.DB
}

func NewPostgresStore(db *gorm.DB) (*PostgresStore, error) {
	if err := db.AutoMigrate(&ledgerSnapshot{}); err != nil {
		return nil, fmt.Errorf("failed to migrate ledger_snapshots: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Load(ctx context.Context) (*Document, error) {
	var row ledgerSnapshot
	err := s.db.WithContext(ctx).Order("id DESC").First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return Decode([]byte(row.Body))
}

func (s *PostgresStore) Save(ctx context.Context, doc *Document) error {
	raw, err := Encode(doc)
	if err != nil {
		return err
	}
	row := ledgerSnapshot{
		Version:    CurrentVersion,
		ExportedAt: doc.ExportDate.UTC(),
		Body:       string(raw),
	}
	return s.db.WithContext(ctx).Create(&row).Error
}
