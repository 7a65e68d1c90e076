package valueobject

import (
	"fmt"
	"slices"
	"strings"
)

// AllowedTermMonths is the closed set of loan durations an institution may offer.
var AllowedTermMonths = []int{3, 6, 12, 24, 36, 48, 60}

// LoanTerm is a loan duration in whole months.
type LoanTerm struct {
	months int
}

// NewLoanTerm validates months against AllowedTermMonths.
func NewLoanTerm(months int) (LoanTerm, error) {
	if !slices.Contains(AllowedTermMonths, months) {
		return LoanTerm{}, fmt.Errorf("%w: %d months (allowed %v)", ErrInvalidTerm, months, AllowedTermMonths)
	}
	return LoanTerm{months: months}, nil
}

func (t LoanTerm) Months() int  { return t.months }
func (t LoanTerm) IsZero() bool { return t.months == 0 }

func upper(s string) string { return strings.ToUpper(strings.TrimSpace(s)) }
