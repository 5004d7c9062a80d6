package model

import "time"

type LogCategory string

const (
	LogSale    LogCategory = "SALE"
	LogStock   LogCategory = "STOCK"
	LogFinance LogCategory = "FINANCE"
	LogClient  LogCategory = "CLIENT"
)

// LogEntry is one human-readable audit event.
type LogEntry struct {
	ID        string      `json:"id"`
	Timestamp time.Time   `json:"timestamp"`
	Category  LogCategory `json:"category"`
	Message   string      `json:"message"`
	User      string      `json:"user,omitempty"`
}

// AuditRecord is the persisted form of a LogEntry.
type AuditRecord struct {
	BaseModel
	Category string `gorm:"type:varchar(20);index;not null" json:"category"`
	Message  string `gorm:"type:text;not null" json:"message"`
	User     string `gorm:"type:varchar(255)" json:"user"`
}

// TableName specifies the table name for GORM
func (AuditRecord) TableName() string {
	return "audit_logs"
}
