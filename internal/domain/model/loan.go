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

// DefaultAnnualInterestRate is applied to new loans when the institution
// does not quote a rate. Stored as a fraction.
var DefaultAnnualInterestRate = decimal.RequireFromString("0.12")

// ---------------------------------------------------------------------------
// Loan aggregate root
// ---------------------------------------------------------------------------

// Loan is an immutable aggregate. Mutations return a new copy.
type Loan struct {
	id             string
	institutionID  string
	borrowerID     string
	amount         decimal.Decimal
	interestRate   decimal.Decimal
	term           valueobject.LoanTerm
	purpose        valueobject.LoanPurpose
	status         valueobject.LoanStatus
	notes          string
	decisionReason string
	reviewedBy     string
	issuedDate     time.Time
	dueDate        time.Time
	version        int
	createdAt      time.Time
	updatedAt      time.Time
	domainEvents   []event.DomainEvent
}

// ---------------------------------------------------------------------------
// Constructors
// ---------------------------------------------------------------------------

// NewLoan opens a PENDING loan application. A zero interestRate selects
// DefaultAnnualInterestRate.
func NewLoan(
	institutionID, borrowerID string,
	amount, interestRate decimal.Decimal,
	term valueobject.LoanTerm,
	purpose valueobject.LoanPurpose,
	notes string,
	now time.Time,
) (Loan, error) {
	if institutionID == "" {
		return Loan{}, errors.New("institution ID is required")
	}
	if borrowerID == "" {
		return Loan{}, errors.New("borrower ID is required")
	}
	if !amount.IsPositive() {
		return Loan{}, fmt.Errorf("%w: loan amount %s", ErrInvalidAmount, amount)
	}
	if interestRate.IsNegative() {
		return Loan{}, ErrInvalidRate
	}
	if term.IsZero() {
		return Loan{}, valueobject.ErrInvalidTerm
	}
	if purpose.IsZero() {
		purpose = valueobject.LoanPurposeOther
	}
	if interestRate.IsZero() {
		interestRate = DefaultAnnualInterestRate
	}

	loan := Loan{
		id:            uuid.New().String(),
		institutionID: institutionID,
		borrowerID:    borrowerID,
		amount:        amount,
		interestRate:  interestRate,
		term:          term,
		purpose:       purpose,
		status:        valueobject.LoanStatusPending,
		notes:         notes,
		issuedDate:    now,
		dueDate:       AddMonths(now, term.Months()),
		version:       1,
		createdAt:     now,
		updatedAt:     now,
	}

	loan.domainEvents = append(loan.domainEvents, event.NewLoanApplicationSubmitted(
		loan.id, institutionID, borrowerID, amount, term.Months(), purpose.String(),
	))

	return loan, nil
}

// ReconstructLoan rebuilds a Loan aggregate from persistence.
func ReconstructLoan(
	id, institutionID, borrowerID string,
	amount, interestRate decimal.Decimal,
	term valueobject.LoanTerm,
	purpose valueobject.LoanPurpose,
	status valueobject.LoanStatus,
	notes, decisionReason, reviewedBy string,
	issuedDate, dueDate time.Time,
	version int,
	createdAt, updatedAt time.Time,
) Loan {
	return Loan{
		id:             id,
		institutionID:  institutionID,
		borrowerID:     borrowerID,
		amount:         amount,
		interestRate:   interestRate,
		term:           term,
		purpose:        purpose,
		status:         status,
		notes:          notes,
		decisionReason: decisionReason,
		reviewedBy:     reviewedBy,
		issuedDate:     issuedDate,
		dueDate:        dueDate,
		version:        version,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
	}
}

// ---------------------------------------------------------------------------
// State transitions
// ---------------------------------------------------------------------------

// Approve transitions PENDING -> APPROVED. The loan is issued at now and
// falls due one term later.
func (l Loan) Approve(reviewedBy string, now time.Time) (Loan, error) {
	if !l.status.Equal(valueobject.LoanStatusPending) {
		return l, valueobject.ErrInvalidStatusTransition
	}
	next := l
	next.status = valueobject.LoanStatusApproved
	next.reviewedBy = reviewedBy
	next.issuedDate = now
	next.dueDate = AddMonths(now, l.term.Months())
	next.updatedAt = now
	next.domainEvents = copyEvents(l.domainEvents)
	next.domainEvents = append(next.domainEvents, event.NewLoanApproved(
		l.id, l.institutionID, l.borrowerID, reviewedBy, l.amount, next.issuedDate, next.dueDate,
	))
	return next, nil
}

// Reject transitions PENDING -> REJECTED.
func (l Loan) Reject(reviewedBy, reason string, now time.Time) (Loan, error) {
	if !l.status.Equal(valueobject.LoanStatusPending) {
		return l, valueobject.ErrInvalidStatusTransition
	}
	next := l
	next.status = valueobject.LoanStatusRejected
	next.reviewedBy = reviewedBy
	next.decisionReason = reason
	next.updatedAt = now
	next.domainEvents = copyEvents(l.domainEvents)
	next.domainEvents = append(next.domainEvents, event.NewLoanRejected(
		l.id, l.institutionID, l.borrowerID, reviewedBy, reason,
	))
	return next, nil
}

// MarkRepaid transitions APPROVED -> REPAID.
func (l Loan) MarkRepaid(now time.Time) (Loan, error) {
	if !l.status.Equal(valueobject.LoanStatusApproved) {
		return l, valueobject.ErrInvalidStatusTransition
	}
	next := l
	next.status = valueobject.LoanStatusRepaid
	next.updatedAt = now
	next.domainEvents = copyEvents(l.domainEvents)
	next.domainEvents = append(next.domainEvents, event.NewLoanRepaid(l.id, l.institutionID, l.borrowerID, l.amount))
	return next, nil
}

// ---------------------------------------------------------------------------
// Queries
// ---------------------------------------------------------------------------

// AnnualRatePercent is the interest rate as a percentage (0.12 -> 12).
func (l Loan) AnnualRatePercent() decimal.Decimal {
	return l.interestRate.Mul(hundred)
}

// Schedule computes the loan's amortization schedule dated from its issue date.
func (l Loan) Schedule() (AmortizationSchedule, error) {
	sched, err := ComputeSchedule(l.amount, l.AnnualRatePercent(), l.term.Months())
	if err != nil {
		return AmortizationSchedule{}, err
	}
	return sched.WithPaymentDates(l.issuedDate), nil
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

func (l Loan) ID() string                        { return l.id }
func (l Loan) InstitutionID() string             { return l.institutionID }
func (l Loan) BorrowerID() string                { return l.borrowerID }
func (l Loan) Amount() decimal.Decimal           { return l.amount }
func (l Loan) InterestRate() decimal.Decimal     { return l.interestRate }
func (l Loan) Term() valueobject.LoanTerm        { return l.term }
func (l Loan) TermMonths() int                   { return l.term.Months() }
func (l Loan) Purpose() valueobject.LoanPurpose  { return l.purpose }
func (l Loan) Status() valueobject.LoanStatus    { return l.status }
func (l Loan) Notes() string                     { return l.notes }
func (l Loan) DecisionReason() string            { return l.decisionReason }
func (l Loan) ReviewedBy() string                { return l.reviewedBy }
func (l Loan) IssuedDate() time.Time             { return l.issuedDate }
func (l Loan) DueDate() time.Time                { return l.dueDate }
func (l Loan) Version() int                      { return l.version }
func (l Loan) CreatedAt() time.Time              { return l.createdAt }
func (l Loan) UpdatedAt() time.Time              { return l.updatedAt }
func (l Loan) DomainEvents() []event.DomainEvent { return l.domainEvents }

// ClearEvents returns a copy with no pending events.
func (l Loan) ClearEvents() Loan {
	next := l
	next.domainEvents = nil
	return next
}

func copyEvents(src []event.DomainEvent) []event.DomainEvent {
	if src == nil {
		return nil
	}
	dst := make([]event.DomainEvent, len(src))
	copy(dst, src)
	return dst
}
