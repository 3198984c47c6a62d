package migration

import (
	"context"
	"time"

	"github.com/amirhossein-jamali/collateral-loan/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/collateral-loan/internal/domain/port/core"
	"github.com/amirhossein-jamali/collateral-loan/internal/infrastructure/adapter/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SeedCustodyAccount opens the registry custody account with a zero balance
type SeedCustodyAccount struct {
	db     *gorm.DB
	logger coreport.Logger
	now    time.Time
}

// NewSeedCustodyAccount creates a new migration instance
func NewSeedCustodyAccount(db *gorm.DB, logger coreport.Logger, now time.Time) *SeedCustodyAccount {
	return &SeedCustodyAccount{
		db:     db,
		logger: logger,
		now:    now,
	}
}

// Run executes the migration; an existing custody account is left untouched
func (m *SeedCustodyAccount) Run(ctx context.Context) error {
	m.logger.Info("Opening registry custody account", map[string]any{
		"principal": entity.CustodyPrincipal.String(),
	})

	custody := model.Account{
		Principal: entity.CustodyPrincipal.String(),
		Balance:   "0",
		CreatedAt: m.now,
		UpdatedAt: m.now,
	}

	if err := m.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&custody).Error; err != nil {
		m.logger.Error("Failed to open custody account", map[string]any{"error": err.Error()})
		return err
	}

	return nil
}
