package model

import (
	"time"
)

// Loan represents the database model for loans.
// Amounts and the interest rate are stored as decimal strings so they are not
// bound to a signed 64-bit range on any driver.
type Loan struct {
	ID                  uint64     `gorm:"primaryKey;autoIncrement:false"`
	Borrower            string     `gorm:"type:varchar(128);not null;index"`
	Lender              *string    `gorm:"type:varchar(128);index"`
	CollateralAmount    string     `gorm:"type:varchar(80);not null"`
	LoanAmount          string     `gorm:"type:varchar(80);not null"`
	InterestRatePercent string     `gorm:"type:varchar(20);not null"`
	DueAt               time.Time  `gorm:"not null"`
	IsFunded            bool       `gorm:"not null;default:false"`
	IsRepaid            bool       `gorm:"not null;default:false"`
	IsClaimed           bool       `gorm:"not null;default:false"`
	CreatedAt           time.Time  `gorm:"not null;autoCreateTime:false"`
	UpdatedAt           time.Time  `gorm:"not null;autoUpdateTime:false"`
	FundedAt            *time.Time `gorm:"null"`
	RepaidAt            *time.Time `gorm:"null"`
	ClaimedAt           *time.Time `gorm:"null"`
}

// TableName specifies the table name for Loan
func (Loan) TableName() string {
	return "loans"
}
