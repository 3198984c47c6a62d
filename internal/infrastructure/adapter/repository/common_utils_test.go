package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	errs "github.com/amirhossein-jamali/collateral-loan/internal/domain/error"
)

func TestErrorClassifier_Classify(t *testing.T) {
	c := NewErrorClassifier()

	testCases := []struct {
		name     string
		err      error
		expected ErrorType
	}{
		{"Nil", nil, ""},
		{"Postgres duplicate", errors.New(`ERROR: duplicate key value violates unique constraint "loans_pkey"`), DuplicateKeyError},
		{"Sqlite duplicate", errors.New("UNIQUE constraint failed: accounts.principal"), DuplicateKeyError},
		{"Gorm duplicate", gorm.ErrDuplicatedKey, DuplicateKeyError},
		{"Serialization", errors.New("ERROR: could not serialize access due to concurrent update"), LockError},
		{"Postgres serialization code", &pgconn.PgError{Code: "40001"}, LockError},
		{"Postgres unique code", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"}), DuplicateKeyError},
		{"Sqlite busy", errors.New("database is locked"), LockError},
		{"Reset", errors.New("read tcp: connection reset by peer"), TransientError},
		{"Dial", errors.New("dial tcp 127.0.0.1:5432"), ConnectionError},
		{"Not null", errors.New("NOT NULL constraint failed"), ConstraintError},
		{"Other", errors.New("syntax error"), ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, c.Classify(tc.err))
		})
	}
}

func TestErrorClassifier_Translate(t *testing.T) {
	c := NewErrorClassifier()

	assert.NoError(t, c.Translate(nil, errs.ErrLoanNotFound, nil))
	assert.Equal(t, errs.ErrLoanNotFound, c.Translate(fmt.Errorf("query: %w", gorm.ErrRecordNotFound), errs.ErrLoanNotFound, nil))
	assert.Equal(t, errs.ErrDuplicateAccount, c.Translate(errors.New("UNIQUE constraint failed"), nil, errs.ErrDuplicateAccount))

	err := c.Translate(errors.New("could not serialize access"), errs.ErrLoanNotFound, nil)
	assert.ErrorIs(t, err, errs.ErrDatabaseConnection)
	assert.Contains(t, err.Error(), "could not serialize access")

	pgErr := &pgconn.PgError{Code: "40001"}
	var target *pgconn.PgError
	assert.ErrorAs(t, c.Translate(pgErr, nil, nil), &target)
}
