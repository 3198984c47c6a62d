package model

import (
	"time"
)

// LoanEvent represents an entry of the append-only loan event log
type LoanEvent struct {
	ID                  uint64     `gorm:"primaryKey;autoIncrement"`
	LoanID              uint64     `gorm:"not null;index"`
	Type                string     `gorm:"type:varchar(32);not null"`
	Principal           string     `gorm:"type:varchar(128);not null"`
	Lender              *string    `gorm:"type:varchar(128)"`
	CollateralAmount    *string    `gorm:"type:varchar(80)"`
	LoanAmount          *string    `gorm:"type:varchar(80)"`
	InterestRatePercent *string    `gorm:"type:varchar(20)"`
	DueAt               *time.Time `gorm:"null"`
	Amount              *string    `gorm:"type:varchar(80)"`
	Timestamp           time.Time  `gorm:"not null"`
}

// TableName specifies the table name for LoanEvent
func (LoanEvent) TableName() string {
	return "loan_events"
}
