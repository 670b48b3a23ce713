package history

import (
	"context"
	"fmt"

	"github.com/lisanmuaddib/zaim-export/pkg/exporter"
	"github.com/lisanmuaddib/zaim-export/pkg/history/models"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Store records export runs. It implements exporter.RunRecorder.
type Store struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// Open runs migrations and connects to the ledger database.
func Open(cfg Config, logger *logrus.Logger) (*Store, error) {
	logger.Debug("Starting history database setup")

	if err := RunMigrations(logger, cfg); err != nil {
		return nil, err
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: NewGormLogrusLogger(logger),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	logger.Info("History database setup completed successfully")
	return NewStore(db, logger), nil
}

// NewStore wraps an existing connection.
func NewStore(db *gorm.DB, logger *logrus.Logger) *Store {
	return &Store{db: db, logger: logger}
}

// ToModel converts a finished run into its ledger row.
func ToModel(rec exporter.RunRecord) models.ExportRun {
	return models.ExportRun{
		ID:         rec.ID,
		StartDate:  rec.Range.Start(),
		EndDate:    rec.Range.End(),
		DateFields: rec.Range.Values(),
		Charset:    string(rec.Charset),
		OutputPath: rec.OutputPath,
		Status:     string(rec.Status),
		ErrorCode:  rec.ErrorCode,
		Error:      rec.Error,
		StartedAt:  rec.StartedAt,
		FinishedAt: rec.FinishedAt,
	}
}

// RecordRun inserts the run into the ledger.
func (s *Store) RecordRun(ctx context.Context, rec exporter.RunRecord) error {
	row := ToModel(rec)
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to record export run %s: %w", rec.ID, err)
	}

	s.logger.WithFields(logrus.Fields{
		"run_id": rec.ID,
		"status": rec.Status,
	}).Debug("Export run recorded")
	return nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
