package error

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorCode(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		expected int
	}{
		{"InvalidAmount", ErrInvalidAmount, 4001},
		{"NegativeAmount", ErrNegativeAmount, 4001},
		{"InvalidDuration", ErrInvalidDuration, 4002},
		{"IncorrectAmount", ErrIncorrectAmount, 4003},
		{"InsufficientBalance", ErrInsufficientBalance, 4004},
		{"NotBorrower", ErrNotBorrower, 4030},
		{"NotLender", ErrNotLender, 4031},
		{"LoanNotFound", ErrLoanNotFound, 4040},
		{"AlreadyFunded", ErrAlreadyFunded, 4090},
		{"NotFunded", ErrNotFunded, 4091},
		{"AlreadyRepaid", ErrAlreadyRepaid, 4092},
		{"NotYetDue", ErrNotYetDue, 4094},
		{"LoanOverdue", ErrLoanOverdue, 4095},
		{"RegistryClosed", ErrRegistryClosed, 5030},
		{"UnknownError", errors.New("unknown error"), 5000},
		{"WrappedError", fmt.Errorf("wrapped: %w", ErrNotLender), 4031},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			code := ErrorCode(tc.err)
			if code != tc.expected {
				t.Errorf("ErrorCode(%v) = %d, want %d", tc.err, code, tc.expected)
			}
		})
	}
}

func TestLoanError(t *testing.T) {
	err := NewLoanError("fundLoan", 7, "0xlender", ErrAlreadyFunded)

	expectedErrMsg := "fundLoan rejected for loan 7 (caller: 0xlender): loan already funded"
	if err.Error() != expectedErrMsg {
		t.Errorf("LoanError.Error() = %s, want %s", err.Error(), expectedErrMsg)
	}

	if !errors.Is(err, ErrAlreadyFunded) {
		t.Errorf("errors.Is(err, ErrAlreadyFunded) = false, want true")
	}

	var loanErr *LoanError
	if !errors.As(err, &loanErr) {
		t.Fatalf("errors.As failed: not a *LoanError")
	}
	fields := loanErr.LogFields()
	if fields["error_code"] != CodeAlreadyFunded {
		t.Errorf("error_code = %v, want %d", fields["error_code"], CodeAlreadyFunded)
	}
	if fields["loan_id"] != uint64(7) {
		t.Errorf("loan_id = %v, want 7", fields["loan_id"])
	}
}

func TestInsufficientBalanceError(t *testing.T) {
	err := NewInsufficientBalanceError("alice", "300", "150")

	expectedErrMsg := "insufficient balance for alice: required 300, available 150"
	if err.Error() != expectedErrMsg {
		t.Errorf("InsufficientBalanceError.Error() = %s, want %s", err.Error(), expectedErrMsg)
	}

	if !IsInsufficientBalanceError(err) {
		t.Errorf("IsInsufficientBalanceError(err) = false, want true")
	}

	wrapped := NewLoanError("repayLoan", 1, "alice", err)
	if ErrorCode(wrapped) != CodeInsufficientBalance {
		t.Errorf("ErrorCode(wrapped) = %d, want %d", ErrorCode(wrapped), CodeInsufficientBalance)
	}
}

func TestErrorHelperFunctions(t *testing.T) {
	if !IsNotFoundError(fmt.Errorf("lookup: %w", ErrLoanNotFound)) {
		t.Errorf("IsNotFoundError(wrapped ErrLoanNotFound) = false, want true")
	}
	if !IsNotFoundError(ErrAccountNotFound) {
		t.Errorf("IsNotFoundError(ErrAccountNotFound) = false, want true")
	}
	if IsNotFoundError(ErrNotFunded) {
		t.Errorf("IsNotFoundError(ErrNotFunded) = true, want false")
	}
	if !IsClientError(ErrNotYetDue) {
		t.Errorf("IsClientError(ErrNotYetDue) = false, want true")
	}
	if IsClientError(ErrDatabaseConnection) {
		t.Errorf("IsClientError(ErrDatabaseConnection) = true, want false")
	}
}
