package migration

import (
	"context"

	coreport "github.com/amirhossein-jamali/collateral-loan/internal/domain/port/core"
	"gorm.io/gorm"
)

// AdvancedIndexManager creates the secondary indexes used by loan listings
// and the event log, plus postgres-only tuning
type AdvancedIndexManager struct {
	db     *gorm.DB
	logger coreport.Logger
}

// NewAdvancedIndexManager creates a new advanced index manager
func NewAdvancedIndexManager(db *gorm.DB, logger coreport.Logger) *AdvancedIndexManager {
	return &AdvancedIndexManager{
		db:     db,
		logger: logger,
	}
}

// CreateIndexes creates the indexes on tx. Statements are valid on both
// postgres and sqlite unless noted.
func (m *AdvancedIndexManager) CreateIndexes(ctx context.Context, tx *gorm.DB) error {
	m.logger.Info("Creating loan registry indexes", map[string]any{
		"dialect": tx.Dialector.Name(),
	})

	statements := []struct {
		name string
		sql  string
	}{
		{
			// status filters combine the three flags
			name: "idx_loans_status",
			sql:  `CREATE INDEX IF NOT EXISTS idx_loans_status ON loans (is_funded, is_repaid, is_claimed)`,
		},
		{
			// open loans ordered by deadline, for claim sweeps
			name: "idx_loans_open_due_at",
			sql: `CREATE INDEX IF NOT EXISTS idx_loans_open_due_at ON loans (due_at)
				WHERE is_funded = true AND is_repaid = false AND is_claimed = false`,
		},
		{
			name: "idx_loan_events_loan_sequence",
			sql:  `CREATE INDEX IF NOT EXISTS idx_loan_events_loan_sequence ON loan_events (loan_id, id)`,
		},
	}

	if tx.Dialector.Name() == "postgres" {
		statements = append(statements, struct {
			name string
			sql  string
		}{
			// BRIN suits the append-only, time-ordered event log
			name: "idx_loan_events_timestamp_brin",
			sql: `CREATE INDEX IF NOT EXISTS idx_loan_events_timestamp_brin
				ON loan_events USING BRIN ("timestamp") WITH (pages_per_range = 32)`,
		})
	}

	for _, stmt := range statements {
		if err := tx.WithContext(ctx).Exec(stmt.sql).Error; err != nil {
			m.logger.Error("Failed to create index", map[string]any{
				"index": stmt.name,
				"error": err.Error(),
			})
			return err
		}
	}

	m.logger.Info("Loan registry indexes created successfully", nil)
	return nil
}

// ApplyPerformanceTweaks applies postgres storage tweaks. Failures are logged only.
func (m *AdvancedIndexManager) ApplyPerformanceTweaks(ctx context.Context) {
	if m.db.Dialector.Name() != "postgres" {
		return
	}

	m.logger.Info("Applying PostgreSQL performance tweaks", nil)

	// loan rows are updated in place at most three times
	if err := m.db.WithContext(ctx).Exec(`ALTER TABLE loans SET (fillfactor = 90)`).Error; err != nil {
		m.logger.Warn("Failed to set fillfactor for loans table", map[string]any{
			"error": err.Error(),
		})
	}

	if err := m.db.WithContext(ctx).Exec(`ALTER TABLE loans ALTER COLUMN borrower SET STATISTICS 1000`).Error; err != nil {
		m.logger.Warn("Failed to set statistics target for borrower", map[string]any{
			"error": err.Error(),
		})
	}
}
