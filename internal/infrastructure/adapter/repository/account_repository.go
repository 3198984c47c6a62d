package repository

import (
	"context"
	"fmt"

	"github.com/amirhossein-jamali/collateral-loan/internal/domain/entity"
	errs "github.com/amirhossein-jamali/collateral-loan/internal/domain/error"
	coreport "github.com/amirhossein-jamali/collateral-loan/internal/domain/port/core"
	"github.com/amirhossein-jamali/collateral-loan/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/collateral-loan/internal/infrastructure/adapter/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AccountRepository implements AccountRepository interface using GORM
type AccountRepository struct {
	db              *gorm.DB
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

// NewAccountRepository creates a new AccountRepository instance
func NewAccountRepository(db *gorm.DB, logger coreport.Logger) *AccountRepository {
	return &AccountRepository{
		db:              db,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

var _ persistence.AccountRepository = (*AccountRepository)(nil)

// modelToEntity converts an account model to an entity
func (r *AccountRepository) modelToEntity(accountModel *model.Account) (*entity.Account, error) {
	balance, err := entity.ParseAmount(accountModel.Balance)
	if err != nil {
		return nil, fmt.Errorf("%w: corrupt balance for %s: %s", errs.ErrInternalServer, accountModel.Principal, err.Error())
	}

	return entity.RestoreAccount(
		entity.Principal(accountModel.Principal),
		balance,
		accountModel.CreatedAt.UTC(),
		accountModel.UpdatedAt.UTC(),
		accountModel.TransferCount,
	), nil
}

// GetByPrincipal retrieves an account
func (r *AccountRepository) GetByPrincipal(ctx context.Context, principal entity.Principal) (*entity.Account, error) {
	var accountModel model.Account
	result := r.db.WithContext(ctx).Where("principal = ?", principal.String()).First(&accountModel)
	if result.Error != nil {
		return nil, r.errorClassifier.Translate(result.Error, errs.ErrAccountNotFound, nil)
	}

	return r.modelToEntity(&accountModel)
}

// GetForUpdate retrieves an account with a row lock on postgres
func (r *AccountRepository) GetForUpdate(ctx context.Context, principal entity.Principal) (*entity.Account, error) {
	query := r.db.WithContext(ctx)
	if query.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var accountModel model.Account
	result := query.Where("principal = ?", principal.String()).First(&accountModel)
	if result.Error != nil {
		return nil, r.errorClassifier.Translate(result.Error, errs.ErrAccountNotFound, nil)
	}

	r.logger.Debug("Account locked for update", map[string]any{
		"principal": principal.String(),
		"balance":   accountModel.Balance,
	})

	return r.modelToEntity(&accountModel)
}

// Create opens a new account
func (r *AccountRepository) Create(ctx context.Context, account *entity.Account) error {
	accountModel := model.Account{
		Principal:     account.Principal.String(),
		Balance:       entity.FormatAmount(account.Balance()),
		TransferCount: account.TransferCount,
		CreatedAt:     account.CreatedAt,
		UpdatedAt:     account.UpdatedAt,
	}

	if result := r.db.WithContext(ctx).Create(&accountModel); result.Error != nil {
		r.logger.Error("Failed to create account", map[string]any{
			"principal": account.Principal.String(),
			"error":     result.Error.Error(),
		})
		return r.errorClassifier.Translate(result.Error, nil, errs.ErrDuplicateAccount)
	}

	r.logger.Info("Account opened", map[string]any{
		"principal": account.Principal.String(),
		"balance":   accountModel.Balance,
	})
	return nil
}

// Update stores the balance and counters of an existing account
func (r *AccountRepository) Update(ctx context.Context, account *entity.Account) error {
	result := r.db.WithContext(ctx).Model(&model.Account{}).
		Where("principal = ?", account.Principal.String()).
		Updates(map[string]interface{}{
			"balance":        entity.FormatAmount(account.Balance()),
			"transfer_count": account.TransferCount,
			"updated_at":     account.UpdatedAt,
		})

	if result.Error != nil {
		r.logger.Error("Failed to update account", map[string]any{
			"principal": account.Principal.String(),
			"error":     result.Error.Error(),
		})
		return r.errorClassifier.Translate(result.Error, errs.ErrAccountNotFound, nil)
	}

	if result.RowsAffected == 0 {
		return errs.ErrAccountNotFound
	}

	r.logger.Debug("Account balance updated", map[string]any{
		"principal":      account.Principal.String(),
		"balance":        entity.FormatAmount(account.Balance()),
		"transfer_count": account.TransferCount,
	})
	return nil
}
