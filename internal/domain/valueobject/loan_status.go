package valueobject

import "fmt"

// ---------------------------------------------------------------------------
// LoanStatus – immutable value object
// ---------------------------------------------------------------------------

// LoanStatus is the lifecycle stage of a loan.
type LoanStatus struct {
	value string
}

const (
	loanStatusPending  = "PENDING"
	loanStatusApproved = "APPROVED"
	loanStatusRejected = "REJECTED"
	loanStatusRepaid   = "REPAID"
)

var (
	LoanStatusPending  = LoanStatus{value: loanStatusPending}
	LoanStatusApproved = LoanStatus{value: loanStatusApproved}
	LoanStatusRejected = LoanStatus{value: loanStatusRejected}
	LoanStatusRepaid   = LoanStatus{value: loanStatusRepaid}
)

var validLoanStatuses = map[string]LoanStatus{
	loanStatusPending:  LoanStatusPending,
	loanStatusApproved: LoanStatusApproved,
	loanStatusRejected: LoanStatusRejected,
	loanStatusRepaid:   LoanStatusRepaid,
}

// NewLoanStatus parses a stored status.
func NewLoanStatus(s string) (LoanStatus, error) {
	v, ok := validLoanStatuses[s]
	if !ok {
		return LoanStatus{}, fmt.Errorf("invalid loan status: %q", s)
	}
	return v, nil
}

func (s LoanStatus) String() string              { return s.value }
func (s LoanStatus) IsZero() bool                { return s.value == "" }
func (s LoanStatus) Equal(other LoanStatus) bool { return s.value == other.value }

// IsActive reports whether repayments may be taken against the loan.
func (s LoanStatus) IsActive() bool { return s == LoanStatusApproved }

// ---------------------------------------------------------------------------
// RepaymentStatus – immutable value object
// ---------------------------------------------------------------------------

// RepaymentStatus is the lifecycle stage of a single repayment.
type RepaymentStatus struct {
	value string
}

const (
	repaymentStatusPending  = "PENDING"
	repaymentStatusPaid     = "PAID"
	repaymentStatusOverdue  = "OVERDUE"
	repaymentStatusUpcoming = "UPCOMING"
	repaymentStatusVerified = "VERIFIED"
)

var (
	RepaymentStatusPending  = RepaymentStatus{value: repaymentStatusPending}
	RepaymentStatusPaid     = RepaymentStatus{value: repaymentStatusPaid}
	RepaymentStatusOverdue  = RepaymentStatus{value: repaymentStatusOverdue}
	RepaymentStatusUpcoming = RepaymentStatus{value: repaymentStatusUpcoming}
	RepaymentStatusVerified = RepaymentStatus{value: repaymentStatusVerified}
)

var validRepaymentStatuses = map[string]RepaymentStatus{
	repaymentStatusPending:  RepaymentStatusPending,
	repaymentStatusPaid:     RepaymentStatusPaid,
	repaymentStatusOverdue:  RepaymentStatusOverdue,
	repaymentStatusUpcoming: RepaymentStatusUpcoming,
	repaymentStatusVerified: RepaymentStatusVerified,
}

// NewRepaymentStatus parses a stored status.
func NewRepaymentStatus(s string) (RepaymentStatus, error) {
	v, ok := validRepaymentStatuses[s]
	if !ok {
		return RepaymentStatus{}, fmt.Errorf("invalid repayment status: %q", s)
	}
	return v, nil
}

func (s RepaymentStatus) String() string                   { return s.value }
func (s RepaymentStatus) IsZero() bool                     { return s.value == "" }
func (s RepaymentStatus) Equal(other RepaymentStatus) bool { return s.value == other.value }

// IsConfirmed reports whether the amount counts towards the amount repaid.
func (s RepaymentStatus) IsConfirmed() bool {
	return s == RepaymentStatusPaid || s == RepaymentStatusVerified
}

// ---------------------------------------------------------------------------
// LoanPurpose – immutable value object
// ---------------------------------------------------------------------------

// LoanPurpose classifies what the borrower intends to use the funds for.
type LoanPurpose struct {
	value string
}

var (
	LoanPurposePersonal  = LoanPurpose{value: "PERSONAL"}
	LoanPurposeBusiness  = LoanPurpose{value: "BUSINESS"}
	LoanPurposeEducation = LoanPurpose{value: "EDUCATION"}
	LoanPurposeMedical   = LoanPurpose{value: "MEDICAL"}
	LoanPurposeOther     = LoanPurpose{value: "OTHER"}
)

var validLoanPurposes = map[string]LoanPurpose{
	LoanPurposePersonal.value:  LoanPurposePersonal,
	LoanPurposeBusiness.value:  LoanPurposeBusiness,
	LoanPurposeEducation.value: LoanPurposeEducation,
	LoanPurposeMedical.value:   LoanPurposeMedical,
	LoanPurposeOther.value:     LoanPurposeOther,
}

// NewLoanPurpose parses a purpose case-insensitively.
func NewLoanPurpose(s string) (LoanPurpose, error) {
	v, ok := validLoanPurposes[upper(s)]
	if !ok {
		return LoanPurpose{}, fmt.Errorf("%w: %q", ErrInvalidPurpose, s)
	}
	return v, nil
}

func (p LoanPurpose) String() string { return p.value }
func (p LoanPurpose) IsZero() bool   { return p.value == "" }
