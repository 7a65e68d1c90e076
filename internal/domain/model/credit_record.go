package model

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreditRecord is one institution's view of one borrower's credit history.
// Records are append-only inputs to aggregation.
type CreditRecord struct {
	RecordedAt          time.Time
	ID                  string
	InstitutionID       string
	BorrowerID          string
	NationalID          string
	TotalAmountBorrowed decimal.Decimal
	TotalAmountRepaid   decimal.Decimal
	RiskFactors         []string
	CreditScore         int
	TotalLoans          int
	ActiveLoans         int
	OnTimePayments      int
	LatePayments        int
	DefaultedPayments   int
}

// NewCreditRecord assigns an id and timestamp and normalises risk factors
// to upper-case, de-duplicated tags.
func NewCreditRecord(r CreditRecord, now time.Time) (CreditRecord, error) {
	if r.InstitutionID == "" {
		return CreditRecord{}, errors.New("institution ID is required")
	}
	if r.BorrowerID == "" {
		return CreditRecord{}, errors.New("borrower ID is required")
	}
	if r.NationalID == "" {
		return CreditRecord{}, errors.New("national ID is required")
	}
	if r.CreditScore < 0 {
		return CreditRecord{}, fmt.Errorf("credit score must not be negative: %d", r.CreditScore)
	}
	for name, v := range map[string]int{
		"total loans":        r.TotalLoans,
		"active loans":       r.ActiveLoans,
		"on-time payments":   r.OnTimePayments,
		"late payments":      r.LatePayments,
		"defaulted payments": r.DefaultedPayments,
	} {
		if v < 0 {
			return CreditRecord{}, fmt.Errorf("%s must not be negative: %d", name, v)
		}
	}
	if r.TotalAmountBorrowed.IsNegative() || r.TotalAmountRepaid.IsNegative() {
		return CreditRecord{}, fmt.Errorf("%w: amounts must not be negative", ErrInvalidAmount)
	}

	r.ID = uuid.New().String()
	r.RecordedAt = now
	r.RiskFactors = normaliseRiskFactors(r.RiskFactors)
	return r, nil
}

func normaliseRiskFactors(in []string) []string {
	out := make([]string, 0, len(in))
	for _, f := range in {
		f = strings.ToUpper(strings.TrimSpace(f))
		if f != "" && !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	slices.Sort(out)
	return out
}
