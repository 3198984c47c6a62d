package model

import (
	"time"
)

// Account represents the database model for ledger balances
type Account struct {
	Principal     string    `gorm:"primaryKey;type:varchar(128)"`
	Balance       string    `gorm:"type:varchar(80);not null"` // Base units
	TransferCount uint64    `gorm:"not null;default:0"`
	CreatedAt     time.Time `gorm:"not null;autoCreateTime:false"`
	UpdatedAt     time.Time `gorm:"not null;autoUpdateTime:false"`
}

// TableName specifies the table name for Account
func (Account) TableName() string {
	return "accounts"
}
