package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/amirhossein-jamali/collateral-loan/internal/domain/entity"
	errs "github.com/amirhossein-jamali/collateral-loan/internal/domain/error"
	coreport "github.com/amirhossein-jamali/collateral-loan/internal/domain/port/core"
	"github.com/amirhossein-jamali/collateral-loan/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/collateral-loan/internal/infrastructure/adapter/model"
	"gorm.io/gorm"
)

// LoanRepository implements LoanRepository interface using GORM
type LoanRepository struct {
	db              *gorm.DB
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

// NewLoanRepository creates a new LoanRepository instance
func NewLoanRepository(db *gorm.DB, logger coreport.Logger) *LoanRepository {
	return &LoanRepository{
		db:              db,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

var _ persistence.LoanRepository = (*LoanRepository)(nil)

// entityToModel converts a loan entity to a database model
func (r *LoanRepository) entityToModel(loan *entity.Loan) model.Loan {
	var lender *string
	if loan.Lender != nil {
		l := loan.Lender.String()
		lender = &l
	}

	return model.Loan{
		ID:                  loan.ID,
		Borrower:            loan.Borrower.String(),
		Lender:              lender,
		CollateralAmount:    entity.FormatAmount(loan.CollateralAmount),
		LoanAmount:          entity.FormatAmount(loan.LoanAmount),
		InterestRatePercent: strconv.FormatUint(loan.InterestRatePercent, 10),
		DueAt:               loan.DueAt,
		IsFunded:            loan.IsFunded,
		IsRepaid:            loan.IsRepaid,
		IsClaimed:           loan.IsClaimed,
		CreatedAt:           loan.CreatedAt,
		UpdatedAt:           loan.UpdatedAt,
		FundedAt:            loan.FundedAt,
		RepaidAt:            loan.RepaidAt,
		ClaimedAt:           loan.ClaimedAt,
	}
}

// modelToEntity converts a loan model to an entity
func (r *LoanRepository) modelToEntity(loanModel *model.Loan) (*entity.Loan, error) {
	collateral, err := entity.ParseAmount(loanModel.CollateralAmount)
	if err != nil {
		return nil, fmt.Errorf("%w: corrupt collateral for loan %d: %s", errs.ErrInternalServer, loanModel.ID, err.Error())
	}
	loanAmount, err := entity.ParseAmount(loanModel.LoanAmount)
	if err != nil {
		return nil, fmt.Errorf("%w: corrupt loan amount for loan %d: %s", errs.ErrInternalServer, loanModel.ID, err.Error())
	}

	rate, err := strconv.ParseUint(loanModel.InterestRatePercent, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: corrupt interest rate for loan %d: %s", errs.ErrInternalServer, loanModel.ID, err.Error())
	}

	var lender *entity.Principal
	if loanModel.Lender != nil {
		l := entity.Principal(*loanModel.Lender)
		lender = &l
	}

	return &entity.Loan{
		ID:                  loanModel.ID,
		Borrower:            entity.Principal(loanModel.Borrower),
		Lender:              lender,
		CollateralAmount:    collateral,
		LoanAmount:          loanAmount,
		InterestRatePercent: rate,
		DueAt:               loanModel.DueAt.UTC(),
		IsFunded:            loanModel.IsFunded,
		IsRepaid:            loanModel.IsRepaid,
		IsClaimed:           loanModel.IsClaimed,
		CreatedAt:           loanModel.CreatedAt.UTC(),
		UpdatedAt:           loanModel.UpdatedAt.UTC(),
		FundedAt:            utcPtr(loanModel.FundedAt),
		RepaidAt:            utcPtr(loanModel.RepaidAt),
		ClaimedAt:           utcPtr(loanModel.ClaimedAt),
	}, nil
}

// NextID returns the identifier the next created loan receives
func (r *LoanRepository) NextID(ctx context.Context) (uint64, error) {
	var maxID uint64
	result := r.db.WithContext(ctx).Model(&model.Loan{}).Select("COALESCE(MAX(id), 0)").Scan(&maxID)
	if result.Error != nil {
		return 0, r.errorClassifier.Translate(result.Error, nil, nil)
	}

	return maxID + 1, nil
}

// Create stores a new loan
func (r *LoanRepository) Create(ctx context.Context, loan *entity.Loan) error {
	r.logger.Debug("Creating loan", map[string]any{
		"loan_id":  loan.ID,
		"borrower": loan.Borrower.String(),
	})

	loanModel := r.entityToModel(loan)
	if result := r.db.WithContext(ctx).Create(&loanModel); result.Error != nil {
		r.logger.Error("Failed to create loan", map[string]any{
			"loan_id": loan.ID,
			"error":   result.Error.Error(),
		})
		return r.errorClassifier.Translate(result.Error, nil, nil)
	}

	return nil
}

// Update persists the mutable columns of a loan
func (r *LoanRepository) Update(ctx context.Context, loan *entity.Loan) error {
	loanModel := r.entityToModel(loan)

	result := r.db.WithContext(ctx).Model(&model.Loan{}).
		Where("id = ?", loan.ID).
		Updates(map[string]interface{}{
			"lender":     loanModel.Lender,
			"is_funded":  loanModel.IsFunded,
			"is_repaid":  loanModel.IsRepaid,
			"is_claimed": loanModel.IsClaimed,
			"updated_at": loanModel.UpdatedAt,
			"funded_at":  loanModel.FundedAt,
			"repaid_at":  loanModel.RepaidAt,
			"claimed_at": loanModel.ClaimedAt,
		})

	if result.Error != nil {
		r.logger.Error("Failed to update loan", map[string]any{
			"loan_id": loan.ID,
			"error":   result.Error.Error(),
		})
		return r.errorClassifier.Translate(result.Error, errs.ErrLoanNotFound, nil)
	}

	if result.RowsAffected == 0 {
		return errs.ErrLoanNotFound
	}

	r.logger.Debug("Loan updated", map[string]any{
		"loan_id": loan.ID,
		"status":  string(loan.Status()),
	})
	return nil
}

// GetByID retrieves a loan by identifier
func (r *LoanRepository) GetByID(ctx context.Context, id uint64) (*entity.Loan, error) {
	var loanModel model.Loan
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&loanModel)
	if result.Error != nil {
		return nil, r.errorClassifier.Translate(result.Error, errs.ErrLoanNotFound, nil)
	}

	return r.modelToEntity(&loanModel)
}

// List returns loans matching the filter ordered by id
func (r *LoanRepository) List(ctx context.Context, filter persistence.LoanFilter) ([]*entity.Loan, error) {
	query := r.db.WithContext(ctx).Model(&model.Loan{})

	if filter.Borrower != nil {
		query = query.Where("borrower = ?", filter.Borrower.String())
	}
	if filter.Lender != nil {
		query = query.Where("lender = ?", filter.Lender.String())
	}
	if filter.Status != nil {
		switch *filter.Status {
		case entity.LoanStatusRequested:
			query = query.Where("is_funded = ?", false)
		case entity.LoanStatusFunded:
			query = query.Where("is_funded = ? AND is_repaid = ? AND is_claimed = ?", true, false, false)
		case entity.LoanStatusRepaid:
			query = query.Where("is_repaid = ?", true)
		case entity.LoanStatusClaimed:
			query = query.Where("is_claimed = ?", true)
		}
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var loanModels []model.Loan
	if err := query.Order("id asc").Find(&loanModels).Error; err != nil {
		return nil, r.errorClassifier.Translate(err, nil, nil)
	}

	loans := make([]*entity.Loan, 0, len(loanModels))
	for i := range loanModels {
		loan, err := r.modelToEntity(&loanModels[i])
		if err != nil {
			return nil, err
		}
		loans = append(loans, loan)
	}
	return loans, nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
