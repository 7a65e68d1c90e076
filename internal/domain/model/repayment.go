package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/letsema/mfi/internal/domain/event"
	"github.com/letsema/mfi/internal/domain/valueobject"
)

// ---------------------------------------------------------------------------
// Repayment aggregate root
// ---------------------------------------------------------------------------

// Repayment is one payment made against a loan. Immutable; mutations return
// a new copy.
type Repayment struct {
	id              string
	loanID          string
	institutionID   string
	borrowerID      string
	amount          decimal.Decimal
	remainingAmount decimal.Decimal
	dueDate         time.Time
	paymentDate     *time.Time
	paymentMethod   string
	reference       string
	status          valueobject.RepaymentStatus
	verifiedBy      string
	version         int
	createdAt       time.Time
	updatedAt       time.Time
	domainEvents    []event.DomainEvent
}

// NewRepayment records a borrower-submitted payment. It starts PENDING with
// the payment date set, which marks it as awaiting staff verification.
func NewRepayment(
	loan Loan,
	amount, remainingAmount decimal.Decimal,
	dueDate time.Time,
	paymentMethod, reference string,
	now time.Time,
) (Repayment, error) {
	if loan.ID() == "" {
		return Repayment{}, errors.New("loan is required")
	}
	if !amount.IsPositive() {
		return Repayment{}, fmt.Errorf("%w: repayment amount %s", ErrInvalidAmount, amount)
	}

	paid := now
	r := Repayment{
		id:              uuid.New().String(),
		loanID:          loan.ID(),
		institutionID:   loan.InstitutionID(),
		borrowerID:      loan.BorrowerID(),
		amount:          amount,
		remainingAmount: remainingAmount,
		dueDate:         dueDate,
		paymentDate:     &paid,
		paymentMethod:   paymentMethod,
		reference:       reference,
		status:          valueobject.RepaymentStatusPending,
		version:         1,
		createdAt:       now,
		updatedAt:       now,
	}

	r.domainEvents = append(r.domainEvents, event.NewRepaymentSubmitted(
		r.id, r.loanID, r.institutionID, r.borrowerID, amount, remainingAmount, dueDate,
	))

	return r, nil
}

// ReconstructRepayment rebuilds a Repayment from persistence.
func ReconstructRepayment(
	id, loanID, institutionID, borrowerID string,
	amount, remainingAmount decimal.Decimal,
	dueDate time.Time,
	paymentDate *time.Time,
	paymentMethod, reference string,
	status valueobject.RepaymentStatus,
	verifiedBy string,
	version int,
	createdAt, updatedAt time.Time,
) Repayment {
	return Repayment{
		id:              id,
		loanID:          loanID,
		institutionID:   institutionID,
		borrowerID:      borrowerID,
		amount:          amount,
		remainingAmount: remainingAmount,
		dueDate:         dueDate,
		paymentDate:     paymentDate,
		paymentMethod:   paymentMethod,
		reference:       reference,
		status:          status,
		verifiedBy:      verifiedBy,
		version:         version,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
	}
}

// ---------------------------------------------------------------------------
// State transitions
// ---------------------------------------------------------------------------

// Verify confirms a submitted payment. Only records that are not yet
// confirmed can be verified.
func (r Repayment) Verify(verifiedBy string, now time.Time) (Repayment, error) {
	if r.status.IsConfirmed() {
		return r, valueobject.ErrInvalidStatusTransition
	}
	next := r
	next.status = valueobject.RepaymentStatusVerified
	next.verifiedBy = verifiedBy
	if next.paymentDate == nil {
		paid := now
		next.paymentDate = &paid
	}
	next.updatedAt = now
	next.domainEvents = copyEvents(r.domainEvents)
	next.domainEvents = append(next.domainEvents, event.NewRepaymentVerified(
		r.id, r.loanID, r.institutionID, verifiedBy, r.amount,
	))
	return next, nil
}

// WithStatus returns a copy carrying a derived status. It does not raise
// events; derivation is bookkeeping, not a business transition.
func (r Repayment) WithStatus(status valueobject.RepaymentStatus, now time.Time) Repayment {
	if r.status.Equal(status) {
		return r
	}
	next := r
	next.status = status
	next.updatedAt = now
	return next
}

// AwaitingVerification reports whether the borrower has submitted proof of
// payment that staff have not yet confirmed.
func (r Repayment) AwaitingVerification() bool {
	return r.status.Equal(valueobject.RepaymentStatusPending) && r.paymentDate != nil
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

func (r Repayment) ID() string                          { return r.id }
func (r Repayment) LoanID() string                      { return r.loanID }
func (r Repayment) InstitutionID() string               { return r.institutionID }
func (r Repayment) BorrowerID() string                  { return r.borrowerID }
func (r Repayment) Amount() decimal.Decimal             { return r.amount }
func (r Repayment) RemainingAmount() decimal.Decimal    { return r.remainingAmount }
func (r Repayment) DueDate() time.Time                  { return r.dueDate }
func (r Repayment) PaymentDate() *time.Time             { return r.paymentDate }
func (r Repayment) PaymentMethod() string               { return r.paymentMethod }
func (r Repayment) Reference() string                   { return r.reference }
func (r Repayment) Status() valueobject.RepaymentStatus { return r.status }
func (r Repayment) VerifiedBy() string                  { return r.verifiedBy }
func (r Repayment) Version() int                        { return r.version }
func (r Repayment) CreatedAt() time.Time                { return r.createdAt }
func (r Repayment) UpdatedAt() time.Time                { return r.updatedAt }
func (r Repayment) DomainEvents() []event.DomainEvent   { return r.domainEvents }

// ClearEvents returns a copy with no pending events.
func (r Repayment) ClearEvents() Repayment {
	next := r
	next.domainEvents = nil
	return next
}
