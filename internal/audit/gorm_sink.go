package audit

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"go-pos-ledger/internal/model"
)

// GormSink appends entries to the audit_logs table.
type GormSink struct {
	db *gorm.DB
}

func NewGormSink(db *gorm.DB) (*GormSink, error) {
	if err := db.AutoMigrate(&model.AuditRecord{}); err != nil {
		return nil, err
	}
	return &GormSink{db: db}, nil
}

func (s *GormSink) Name() string { return "postgres" }

func (s *GormSink) Write(ctx context.Context, entry model.LogEntry) error {
	record := model.AuditRecord{
		Category: string(entry.Category),
		Message:  entry.Message,
		User:     entry.User,
	}
	if id, err := uuid.Parse(entry.ID); err == nil {
		record.ID = id
	}
	record.CreatedAt = entry.Timestamp

	return s.db.WithContext(ctx).Create(&record).Error
}
