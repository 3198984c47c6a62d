package entity

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"

	errs "github.com/amirhossein-jamali/collateral-loan/internal/domain/error"
)

// Amount is a non-negative integer quantity of the smallest value unit.
// It is backed by an arbitrary precision decimal so large balances never overflow.
type Amount = decimal.Decimal

// CollateralRatioPercent is the share of the collateral offered as the loan amount
const CollateralRatioPercent = 80

// ZeroAmount is the additive identity
var ZeroAmount = decimal.Zero

var hundred = decimal.NewFromInt(100)

// ParseAmount validates a base-unit amount string.
// Rules:
// - Surrounding whitespace is ignored
// - Negative values are rejected with ErrNegativeAmount (which is also an ErrInvalidAmount)
// - Fractional values and malformed numbers are rejected with ErrInvalidAmount
func ParseAmount(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if len(s) == 0 {
		return ZeroAmount, fmt.Errorf("%w: empty value", errs.ErrInvalidAmount)
	}

	if strings.HasPrefix(s, "-") {
		return ZeroAmount, fmt.Errorf("%w: %w", errs.ErrInvalidAmount, errs.ErrNegativeAmount)
	}

	value, err := decimal.NewFromString(s)
	if err != nil {
		return ZeroAmount, fmt.Errorf("%w: %s", errs.ErrInvalidAmount, err.Error())
	}

	if !value.IsInteger() {
		return ZeroAmount, fmt.Errorf("%w: fractional base units are not allowed", errs.ErrInvalidAmount)
	}

	return value.Truncate(0), nil
}

// ParsePositiveAmount is ParseAmount that also rejects zero
func ParsePositiveAmount(s string) (Amount, error) {
	value, err := ParseAmount(s)
	if err != nil {
		return ZeroAmount, err
	}
	if !value.IsPositive() {
		return ZeroAmount, fmt.Errorf("%w: amount must be greater than zero", errs.ErrInvalidAmount)
	}
	return value, nil
}

// ParseUnits converts a whole-unit amount such as "1.5" into base units using
// the given number of decimals. More precision than decimals allows is rejected.
func ParseUnits(s string, decimals int32) (Amount, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "-") {
		return ZeroAmount, fmt.Errorf("%w: %w", errs.ErrInvalidAmount, errs.ErrNegativeAmount)
	}

	value, err := decimal.NewFromString(s)
	if err != nil {
		return ZeroAmount, fmt.Errorf("%w: %s", errs.ErrInvalidAmount, err.Error())
	}

	scaled := value.Shift(decimals)
	if !scaled.IsInteger() {
		return ZeroAmount, fmt.Errorf("%w: maximum %d decimal places allowed", errs.ErrInvalidAmount, decimals)
	}

	return scaled.Truncate(0), nil
}

// FormatUnits renders a base-unit amount as whole units
func FormatUnits(a Amount, decimals int32) string {
	return a.Shift(-decimals).String()
}

// FormatAmount renders a base-unit amount as an integer string
func FormatAmount(a Amount) string {
	return a.Truncate(0).String()
}

// PercentOf returns a*p/100 using truncating integer division
func PercentOf(a Amount, p uint64) Amount {
	q, _ := a.Mul(decimal.NewFromBigInt(new(big.Int).SetUint64(p), 0)).QuoRem(hundred, 0)
	return q
}
