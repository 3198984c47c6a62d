package entity

import (
	"fmt"
	"strings"

	errs "github.com/amirhossein-jamali/collateral-loan/internal/domain/error"
)

// Principal is an opaque identifier of a party calling the registry
type Principal string

// CustodyPrincipal is the reserved ledger account holding collateral and in-flight value
const CustodyPrincipal Principal = "$registry"

// reservedPrefix marks system accounts that no caller may impersonate
const reservedPrefix = "$"

// MaxPrincipalLength bounds the identifier size accepted from callers
const MaxPrincipalLength = 128

// ParsePrincipal validates a caller supplied identifier
func ParsePrincipal(s string) (Principal, error) {
	s = strings.TrimSpace(s)
	if len(s) == 0 {
		return "", fmt.Errorf("%w: empty principal", errs.ErrInvalidPrincipal)
	}
	if strings.HasPrefix(s, reservedPrefix) {
		return "", fmt.Errorf("%w: %q is reserved", errs.ErrInvalidPrincipal, s)
	}
	if len(s) > MaxPrincipalLength {
		return "", fmt.Errorf("%w: longer than %d characters", errs.ErrInvalidPrincipal, MaxPrincipalLength)
	}
	return Principal(s), nil
}

// String returns the identifier as plain text
func (p Principal) String() string {
	return string(p)
}

// IsReserved reports whether p is a system account
func (p Principal) IsReserved() bool {
	return strings.HasPrefix(string(p), reservedPrefix)
}
