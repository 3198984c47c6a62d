package migration

import (
	"context"
	"errors"
	"fmt"
	"time"

	coreport "github.com/amirhossein-jamali/collateral-loan/internal/domain/port/core"
	"github.com/amirhossein-jamali/collateral-loan/internal/infrastructure/adapter/model"
	"gorm.io/gorm"
)

const (
	// CurrentSchemaVersion represents the current database schema version
	CurrentSchemaVersion = "1.3.0"
)

// step is one versioned schema change
type step struct {
	version string
	details string
	run     func(ctx context.Context, tx *gorm.DB) error
}

// MigrationManager manages database migrations
type MigrationManager struct {
	db               *gorm.DB
	logger           coreport.Logger
	timeProvider     coreport.TimeProvider
	advancedIndexMgr *AdvancedIndexManager
}

// NewMigrationManager creates a new migration manager
func NewMigrationManager(db *gorm.DB, logger coreport.Logger, timeProvider coreport.TimeProvider) *MigrationManager {
	return &MigrationManager{
		db:               db,
		logger:           logger,
		timeProvider:     timeProvider,
		advancedIndexMgr: NewAdvancedIndexManager(db, logger),
	}
}

// steps lists every migration in the order it must be applied
func (m *MigrationManager) steps() []step {
	return []step{
		{
			version: "1.0.0",
			details: "Base schema: loans, accounts, loan_events",
			run: func(ctx context.Context, tx *gorm.DB) error {
				return tx.WithContext(ctx).AutoMigrate(
					&model.Loan{},
					&model.Account{},
					&model.LoanEvent{},
				)
			},
		},
		{
			version: "1.1.0",
			details: "Loan listing and event log indexes",
			run: func(ctx context.Context, tx *gorm.DB) error {
				return m.advancedIndexMgr.CreateIndexes(ctx, tx)
			},
		},
		{
			version: "1.2.0",
			details: "Registry custody account",
			run: func(ctx context.Context, tx *gorm.DB) error {
				return NewSeedCustodyAccount(tx, m.logger, m.now()).Run(ctx)
			},
		},
		{
			version: "1.3.0",
			details: "Interest rates stored as decimal text",
			run: func(ctx context.Context, tx *gorm.DB) error {
				// sqlite columns take any type; only postgres needs the bigint column rewritten
				if tx.Dialector.Name() != "postgres" {
					return nil
				}
				migrator := tx.WithContext(ctx).Migrator()
				if err := migrator.AlterColumn(&model.Loan{}, "InterestRatePercent"); err != nil {
					return err
				}
				return migrator.AlterColumn(&model.LoanEvent{}, "InterestRatePercent")
			},
		},
	}
}

// MigrateAll applies every pending migration step, each in its own transaction
func (m *MigrationManager) MigrateAll(ctx context.Context) error {
	m.logger.Info("Starting database migrations", map[string]any{
		"target_version": CurrentSchemaVersion,
	})

	if err := m.db.WithContext(ctx).AutoMigrate(&model.MigrationVersion{}); err != nil {
		m.logger.Error("Failed to create migration version table", map[string]any{
			"error": err.Error(),
		})
		return err
	}

	applied, err := m.appliedVersions(ctx)
	if err != nil {
		m.logger.Error("Failed to read applied migrations", map[string]any{
			"error": err.Error(),
		})
		return err
	}

	for _, s := range m.steps() {
		if applied[s.version] {
			continue
		}

		m.logger.Info("Applying migration", map[string]any{
			"version": s.version,
			"details": s.details,
		})

		err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := s.run(ctx, tx); err != nil {
				return err
			}
			return m.setVersion(ctx, tx, s.version, s.details)
		})
		if err != nil {
			m.logger.Error("Failed to apply migration", map[string]any{
				"version": s.version,
				"error":   err.Error(),
			})
			return fmt.Errorf("migration %s failed: %w", s.version, err)
		}
	}

	// tuning is best effort and never recorded as a version
	m.advancedIndexMgr.ApplyPerformanceTweaks(ctx)

	m.logger.Info("Database migrations completed successfully", map[string]any{
		"version": CurrentSchemaVersion,
	})
	return nil
}

// GetCurrentVersion gets the most recently applied migration version
func (m *MigrationManager) GetCurrentVersion(ctx context.Context) (string, error) {
	if ctx.Err() != nil {
		return "", ctx.Err()
	}

	var version model.MigrationVersion
	result := m.db.WithContext(ctx).Order("id desc").First(&version)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", result.Error
	}

	return version.Version, nil
}

func (m *MigrationManager) appliedVersions(ctx context.Context) (map[string]bool, error) {
	var versions []model.MigrationVersion
	if err := m.db.WithContext(ctx).Find(&versions).Error; err != nil {
		return nil, err
	}

	applied := make(map[string]bool, len(versions))
	for _, v := range versions {
		applied[v.Version] = true
	}
	return applied, nil
}

// setVersion records a new migration version
func (m *MigrationManager) setVersion(ctx context.Context, tx *gorm.DB, version string, details string) error {
	migrationVersion := model.MigrationVersion{
		Version:   version,
		AppliedAt: m.now(),
		Details:   details,
	}

	return tx.WithContext(ctx).Create(&migrationVersion).Error
}

func (m *MigrationManager) now() time.Time {
	if m.timeProvider != nil {
		return m.timeProvider.Now().UTC()
	}
	return time.Now().UTC()
}
