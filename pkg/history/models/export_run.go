package models

import (
	"time"

	"github.com/lib/pq"
)

// ExportRun is one row of the export ledger
type ExportRun struct {
	ID        string `gorm:"primaryKey;column:id"`
	StartDate string `gorm:"column:start_date;not null"`
	EndDate   string `gorm:"column:end_date;not null"`
	// DateFields keeps the six literal form values as submitted
	DateFields pq.StringArray `gorm:"column:date_fields;type:text[]"`
	Charset    string         `gorm:"column:charset;not null"`
	OutputPath string         `gorm:"column:output_path"`
	Status     string         `gorm:"column:status;not null"`
	ErrorCode  string         `gorm:"column:error_code"`
	Error      string         `gorm:"column:error"`
	StartedAt  time.Time      `gorm:"column:started_at;not null"`
	FinishedAt time.Time      `gorm:"column:finished_at;not null"`
	CreatedAt  time.Time      `gorm:"column:created_at;not null;default:CURRENT_TIMESTAMP"`
}

// TableName specifies the table name for the ExportRun model
func (ExportRun) TableName() string {
	return "export_runs"
}
