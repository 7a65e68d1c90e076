package model

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount          = errors.New("amount must be positive")
	ErrInvalidRegistration    = errors.New("invalid registration")
	ErrInvalidRate            = errors.New("interest rate must not be negative")
	ErrLoanNotActive          = errors.New("loan is not active")
	ErrAmountExceedsBalance   = errors.New("amount exceeds remaining balance")
	ErrNoRemainingPayments    = errors.New("no remaining payments")
	ErrLoanNotFound           = errors.New("loan not found")
	ErrRepaymentNotFound      = errors.New("repayment not found")
	ErrBorrowerNotFound       = errors.New("borrower not found")
	ErrBorrowerExists         = errors.New("borrower already registered")
	ErrNationalIDMismatch     = errors.New("national id does not belong to borrower")
	ErrInstitutionNotFound    = errors.New("institution not found")
	ErrInstitutionExists      = errors.New("institution already registered")
	ErrInstitutionInactive    = errors.New("institution is not active")
	ErrProfileNotFound        = errors.New("credit profile not found")
	ErrAccessDenied           = errors.New("access denied")
	ErrStackingLimitExceeded  = errors.New("loan stacking limit exceeded")
	ErrConcurrentModification = errors.New("concurrent modification")
)

// AmountExceedsBalanceError reports the balance still owed on a loan when a
// repayment asks for more than that.
type AmountExceedsBalanceError struct {
	Remaining decimal.Decimal
}

func (e *AmountExceedsBalanceError) Error() string {
	return fmt.Sprintf("%s: remaining balance is %s", ErrAmountExceedsBalance, e.Remaining.StringFixed(2))
}

func (e *AmountExceedsBalanceError) Is(target error) bool {
	return target == ErrAmountExceedsBalance
}
