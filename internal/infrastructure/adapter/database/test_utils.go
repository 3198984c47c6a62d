package database

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/amirhossein-jamali/collateral-loan/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/collateral-loan/internal/domain/port/core"
	"github.com/amirhossein-jamali/collateral-loan/internal/infrastructure/adapter/model"
)

// testDBCounter keeps in-memory test databases apart
var testDBCounter atomic.Uint64

// TestDBManager provides utilities for testing against an in-memory sqlite database
type TestDBManager struct {
	Manager      *Manager
	Config       *Config
	Logger       coreport.Logger
	TimeProvider coreport.TimeProvider
}

// NewTestDBManager connects to a fresh in-memory database, migrates it and
// closes it when the test ends
func NewTestDBManager(t *testing.T, logger coreport.Logger, timeProvider coreport.TimeProvider) *TestDBManager {
	t.Helper()

	config := DefaultConfig()
	config.Path = fmt.Sprintf("file:collateral_loan_test_%d?mode=memory&cache=shared", testDBCounter.Add(1))
	config.LogLevel = "silent"
	config.RetryAttempts = 1

	manager := NewManager(config, logger, timeProvider).WithRetryConfig(RetryConfig{
		MaxRetries:    3,
		RetryInterval: time.Millisecond,
		MaxInterval:   5 * time.Millisecond,
	})

	if _, err := manager.Connect(); err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	t.Cleanup(func() {
		if err := manager.Close(); err != nil {
			t.Logf("Warning: Failed to close test database connection: %v", err)
		}
	})

	if err := manager.Migrate(context.Background()); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return &TestDBManager{
		Manager:      manager,
		Config:       config,
		Logger:       logger,
		TimeProvider: timeProvider,
	}
}

// CreateTestAccount opens an account with the given balance in base units
func (m *TestDBManager) CreateTestAccount(t *testing.T, principal string, balance string) {
	t.Helper()

	now := m.TimeProvider.Now().UTC()
	account := model.Account{
		Principal: principal,
		Balance:   balance,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := m.Manager.DB().Create(&account).Error; err != nil {
		t.Fatalf("Failed to create test account: %v", err)
	}
}

// Balance returns the stored balance of principal, "0" when it has no account
func (m *TestDBManager) Balance(t *testing.T, principal string) string {
	t.Helper()

	var accounts []model.Account
	if err := m.Manager.DB().Where("principal = ?", principal).Find(&accounts).Error; err != nil {
		t.Fatalf("Failed to read test account: %v", err)
	}
	if len(accounts) == 0 {
		return "0"
	}
	return accounts[0].Balance
}

// CustodyBalance returns the registry custody balance
func (m *TestDBManager) CustodyBalance(t *testing.T) string {
	t.Helper()
	return m.Balance(t, entity.CustodyPrincipal.String())
}

// CountRows returns the number of rows in a table
func (m *TestDBManager) CountRows(t *testing.T, table string) int64 {
	t.Helper()

	var count int64
	if err := m.Manager.DB().Table(table).Count(&count).Error; err != nil {
		t.Fatalf("Failed to count rows of %s: %v", table, err)
	}
	return count
}
