package service

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/letsema/mfi/internal/domain/model"
	"github.com/letsema/mfi/internal/domain/valueobject"
)

// UpcomingWindow is how close to its due date a repayment must be to count
// as UPCOMING.
const UpcomingWindow = 7 * 24 * time.Hour

// ---------------------------------------------------------------------------
// RepaymentValidator – domain service for repayment admission and status
// ---------------------------------------------------------------------------

// RepaymentValidation is the outcome of admitting a repayment.
type RepaymentValidation struct {
	DueDate         time.Time
	RemainingAmount decimal.Decimal
	PaymentNumber   int
}

// RepaymentValidator checks proposed repayments against a loan's balance and
// schedule and derives the status of stored repayments.
type RepaymentValidator struct {
	upcomingWindow time.Duration
}

// NewRepaymentValidator returns a validator using UpcomingWindow.
func NewRepaymentValidator() *RepaymentValidator {
	return &RepaymentValidator{upcomingWindow: UpcomingWindow}
}

// Validate admits a repayment of amount against loan given the loan's prior
// repayments. Checks run in order: loan active, amount positive, amount
// within the remaining balance, then the next installment due.
func (v *RepaymentValidator) Validate(
	loan model.Loan,
	amount decimal.Decimal,
	prior []model.Repayment,
) (RepaymentValidation, error) {
	if !loan.Status().IsActive() {
		return RepaymentValidation{}, fmt.Errorf("%w: loan %s is %s", model.ErrLoanNotActive, loan.ID(), loan.Status())
	}
	if !amount.IsPositive() {
		return RepaymentValidation{}, fmt.Errorf("%w: repayment amount %s", model.ErrInvalidAmount, amount)
	}

	remaining := v.RemainingBalance(loan, prior)
	if amount.GreaterThan(remaining) {
		return RepaymentValidation{}, &model.AmountExceedsBalanceError{Remaining: remaining}
	}

	sched, err := model.ComputeSchedule(loan.Amount(), loan.AnnualRatePercent(), loan.TermMonths())
	if err != nil {
		return RepaymentValidation{}, fmt.Errorf("compute schedule: %w", err)
	}
	next, err := sched.NextDue()
	if err != nil {
		return RepaymentValidation{}, err
	}

	return RepaymentValidation{
		RemainingAmount: remaining.Sub(amount),
		DueDate:         model.InstallmentDueDate(loan.IssuedDate(), next.PaymentNumber),
		PaymentNumber:   next.PaymentNumber,
	}, nil
}

// AmountRepaid sums the confirmed (PAID or VERIFIED) repayments of loan.
func (v *RepaymentValidator) AmountRepaid(loan model.Loan, prior []model.Repayment) decimal.Decimal {
	total := decimal.Zero
	for _, r := range prior {
		if r.LoanID() == loan.ID() && r.Status().IsConfirmed() {
			total = total.Add(r.Amount())
		}
	}
	return total
}

// RemainingBalance is the loan amount less confirmed repayments.
func (v *RepaymentValidator) RemainingBalance(loan model.Loan, prior []model.Repayment) decimal.Decimal {
	return loan.Amount().Sub(v.AmountRepaid(loan, prior))
}

// IsFullyRepaid reports whether confirmed repayments cover the loan amount.
func (v *RepaymentValidator) IsFullyRepaid(loan model.Loan, prior []model.Repayment) bool {
	return !v.RemainingBalance(loan, prior).IsPositive()
}

// DeriveStatus computes the status a repayment should be saved with. A
// payment awaiting verification and a verified payment keep their status.
func (v *RepaymentValidator) DeriveStatus(r model.Repayment, now time.Time) valueobject.RepaymentStatus {
	if r.AwaitingVerification() || r.Status().Equal(valueobject.RepaymentStatusVerified) {
		return r.Status()
	}
	switch due := r.DueDate(); {
	case due.Before(now):
		return valueobject.RepaymentStatusOverdue
	case due.Sub(now) <= v.upcomingWindow:
		return valueobject.RepaymentStatusUpcoming
	default:
		return valueobject.RepaymentStatusPending
	}
}

// Refresh applies DeriveStatus to r.
func (v *RepaymentValidator) Refresh(r model.Repayment, now time.Time) model.Repayment {
	return r.WithStatus(v.DeriveStatus(r, now), now)
}
