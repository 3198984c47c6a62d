package repository

import (
	"context"
	"fmt"
	"strconv"

	"github.com/amirhossein-jamali/collateral-loan/internal/domain/entity"
	errs "github.com/amirhossein-jamali/collateral-loan/internal/domain/error"
	coreport "github.com/amirhossein-jamali/collateral-loan/internal/domain/port/core"
	"github.com/amirhossein-jamali/collateral-loan/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/collateral-loan/internal/infrastructure/adapter/model"
	"gorm.io/gorm"
)

// EventRepository implements EventRepository interface using GORM
type EventRepository struct {
	db              *gorm.DB
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

// NewEventRepository creates a new EventRepository instance
func NewEventRepository(db *gorm.DB, logger coreport.Logger) *EventRepository {
	return &EventRepository{
		db:              db,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

var _ persistence.EventRepository = (*EventRepository)(nil)

func formatAmountPtr(a *entity.Amount) *string {
	if a == nil {
		return nil
	}
	s := entity.FormatAmount(*a)
	return &s
}

func formatRatePtr(rate *uint64) *string {
	if rate == nil {
		return nil
	}
	s := strconv.FormatUint(*rate, 10)
	return &s
}

func parseRatePtr(s *string) (*uint64, error) {
	if s == nil {
		return nil, nil
	}
	rate, err := strconv.ParseUint(*s, 10, 64)
	if err != nil {
		return nil, err
	}
	return &rate, nil
}

func parseAmountPtr(s *string) (*entity.Amount, error) {
	if s == nil {
		return nil, nil
	}
	a, err := entity.ParseAmount(*s)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// entityToModel converts an event entity to a database model
func (r *EventRepository) entityToModel(event *entity.LoanEvent) model.LoanEvent {
	var lender *string
	if event.Lender != nil {
		l := event.Lender.String()
		lender = &l
	}

	return model.LoanEvent{
		LoanID:              event.LoanID,
		Type:                string(event.Type),
		Principal:           event.Principal.String(),
		Lender:              lender,
		CollateralAmount:    formatAmountPtr(event.CollateralAmount),
		LoanAmount:          formatAmountPtr(event.LoanAmount),
		InterestRatePercent: formatRatePtr(event.InterestRatePercent),
		DueAt:               event.DueAt,
		Amount:              formatAmountPtr(event.Amount),
		Timestamp:           event.Timestamp,
	}
}

// modelToEntity converts an event model to an entity
func (r *EventRepository) modelToEntity(eventModel *model.LoanEvent) (*entity.LoanEvent, error) {
	event := &entity.LoanEvent{
		Sequence:  eventModel.ID,
		Type:      entity.LoanEventType(eventModel.Type),
		LoanID:    eventModel.LoanID,
		Principal: entity.Principal(eventModel.Principal),
		DueAt:     utcPtr(eventModel.DueAt),
		Timestamp: eventModel.Timestamp.UTC(),
	}
	if eventModel.Lender != nil {
		l := entity.Principal(*eventModel.Lender)
		event.Lender = &l
	}

	var err error
	if event.CollateralAmount, err = parseAmountPtr(eventModel.CollateralAmount); err != nil {
		return nil, fmt.Errorf("%w: corrupt event %d: %s", errs.ErrInternalServer, eventModel.ID, err.Error())
	}
	if event.LoanAmount, err = parseAmountPtr(eventModel.LoanAmount); err != nil {
		return nil, fmt.Errorf("%w: corrupt event %d: %s", errs.ErrInternalServer, eventModel.ID, err.Error())
	}
	if event.InterestRatePercent, err = parseRatePtr(eventModel.InterestRatePercent); err != nil {
		return nil, fmt.Errorf("%w: corrupt event %d: %s", errs.ErrInternalServer, eventModel.ID, err.Error())
	}
	if event.Amount, err = parseAmountPtr(eventModel.Amount); err != nil {
		return nil, fmt.Errorf("%w: corrupt event %d: %s", errs.ErrInternalServer, eventModel.ID, err.Error())
	}
	return event, nil
}

// Append records an event and sets its Sequence
func (r *EventRepository) Append(ctx context.Context, event *entity.LoanEvent) error {
	eventModel := r.entityToModel(event)
	if result := r.db.WithContext(ctx).Create(&eventModel); result.Error != nil {
		r.logger.Error("Failed to append loan event", map[string]any{
			"loan_id": event.LoanID,
			"type":    string(event.Type),
			"error":   result.Error.Error(),
		})
		return r.errorClassifier.Translate(result.Error, nil, nil)
	}

	event.Sequence = eventModel.ID
	r.logger.Debug("Loan event appended", map[string]any{
		"loan_id":  event.LoanID,
		"type":     string(event.Type),
		"sequence": event.Sequence,
	})
	return nil
}

// ListByLoan returns the events of one loan in emission order
func (r *EventRepository) ListByLoan(ctx context.Context, loanID uint64) ([]*entity.LoanEvent, error) {
	var eventModels []model.LoanEvent
	if err := r.db.WithContext(ctx).Where("loan_id = ?", loanID).Order("id asc").Find(&eventModels).Error; err != nil {
		return nil, r.errorClassifier.Translate(err, nil, nil)
	}

	events := make([]*entity.LoanEvent, 0, len(eventModels))
	for i := range eventModels {
		event, err := r.modelToEntity(&eventModels[i])
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, nil
}
