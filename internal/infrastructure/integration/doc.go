// Package integration runs the loan and account use cases against the
// sqlite-backed repositories, the custody ledger and the manual clock.
package integration
