// Package postgres persists simulation runs to PostgreSQL through GORM,
// for deployments where several planners share one results database.
package postgres

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/secwest/pv-generation-planning/internal/log"
	"github.com/secwest/pv-generation-planning/internal/storage"
)

// Store is a PostgreSQL-backed storage.Backend.
type Store struct {
	db *gorm.DB
}

// New connects to PostgreSQL and migrates the results schema.
func New(connectionString string) (*Store, error) {
	// Route GORM's logging through zap
	dbLogger := logger.New(
		zap.NewStdLog(log.GetZapLogger()),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: false,
		},
	)

	log.Info("connecting to PostgreSQL...")
	db, err := gorm.Open(postgres.Open(connectionString), &gorm.Config{Logger: dbLogger})
	if err != nil {
		log.Warn("warning: unable to create a PostgreSQL connection:", err)
		return nil, err
	}

	if err := db.AutoMigrate(&storage.RunRecord{}, &storage.MonthlyRecord{}); err != nil {
		return nil, err
	}
	log.Info("PostgreSQL connection successful")

	return &Store{db: db}, nil
}

// SaveRun writes the run and its monthly rows in one transaction.
func (s *Store) SaveRun(ctx context.Context, run storage.RunRecord, monthly []storage.MonthlyRecord) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&run).Error; err != nil {
			log.Error("could not store run:", err)
			return err
		}
		if len(monthly) > 0 {
			if err := tx.Create(&monthly).Error; err != nil {
				log.Error("could not store monthly yield:", err)
				return err
			}
		}
		return nil
	})
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
