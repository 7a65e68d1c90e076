package event

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/letsema/mfi/pkg/events"
)

// DomainEvent is an alias for the shared pkg/events.DomainEvent interface.
type DomainEvent = events.DomainEvent

// Event types, also used as Kafka header values.
const (
	TypeLoanApplicationSubmitted = "lending.loan.submitted"
	TypeLoanApproved             = "lending.loan.approved"
	TypeLoanRejected             = "lending.loan.rejected"
	TypeLoanRepaid               = "lending.loan.repaid"
	TypeRepaymentSubmitted       = "lending.repayment.submitted"
	TypeRepaymentVerified        = "lending.repayment.verified"
	TypeInstitutionRegistered    = "lending.institution.registered"
	TypeBorrowerRegistered       = "lending.borrower.registered"
	TypeCreditRecordRecorded     = "credit.credit_record.recorded"
	TypeCreditProfileAggregated  = "credit.profile.aggregated"
	TypeCreditProfileAccessed    = "credit.profile.accessed"
)

// ---------------------------------------------------------------------------
// Registration events
// ---------------------------------------------------------------------------

// InstitutionRegistered is raised when an institution joins the network.
type InstitutionRegistered struct {
	events.BaseEvent
	Name         string `json:"name"`
	LocationCode string `json:"location_code"`
}

func NewInstitutionRegistered(institutionID, name, locationCode string) InstitutionRegistered {
	return InstitutionRegistered{
		BaseEvent:    events.NewBaseEvent(TypeInstitutionRegistered, institutionID, "Institution", institutionID),
		Name:         name,
		LocationCode: locationCode,
	}
}

// BorrowerRegistered is raised when an institution onboards a borrower.
type BorrowerRegistered struct {
	events.BaseEvent
	NationalID string `json:"national_id"`
}

func NewBorrowerRegistered(borrowerID, institutionID, nationalID string) BorrowerRegistered {
	return BorrowerRegistered{
		BaseEvent:  events.NewBaseEvent(TypeBorrowerRegistered, borrowerID, "Borrower", institutionID),
		NationalID: nationalID,
	}
}

// ---------------------------------------------------------------------------
// Loan events
// ---------------------------------------------------------------------------

// LoanApplicationSubmitted is raised when a borrower applies for a loan.
type LoanApplicationSubmitted struct {
	events.BaseEvent
	BorrowerID string          `json:"borrower_id"`
	Amount     decimal.Decimal `json:"amount"`
	Purpose    string          `json:"purpose"`
	TermMonths int             `json:"term_months"`
}

func NewLoanApplicationSubmitted(
	loanID, institutionID, borrowerID string,
	amount decimal.Decimal, termMonths int, purpose string,
) LoanApplicationSubmitted {
	return LoanApplicationSubmitted{
		BaseEvent:  events.NewBaseEvent(TypeLoanApplicationSubmitted, loanID, "Loan", institutionID),
		BorrowerID: borrowerID,
		Amount:     amount,
		Purpose:    purpose,
		TermMonths: termMonths,
	}
}

// LoanApproved is raised when staff approve a pending loan.
type LoanApproved struct {
	IssuedDate time.Time `json:"issued_date"`
	DueDate    time.Time `json:"due_date"`
	events.BaseEvent
	BorrowerID string          `json:"borrower_id"`
	ReviewedBy string          `json:"reviewed_by"`
	Amount     decimal.Decimal `json:"amount"`
}

func NewLoanApproved(
	loanID, institutionID, borrowerID, reviewedBy string,
	amount decimal.Decimal, issued, due time.Time,
) LoanApproved {
	return LoanApproved{
		BaseEvent:  events.NewBaseEvent(TypeLoanApproved, loanID, "Loan", institutionID),
		BorrowerID: borrowerID,
		ReviewedBy: reviewedBy,
		Amount:     amount,
		IssuedDate: issued,
		DueDate:    due,
	}
}

// LoanRejected is raised when staff decline a pending loan.
type LoanRejected struct {
	events.BaseEvent
	BorrowerID string `json:"borrower_id"`
	ReviewedBy string `json:"reviewed_by"`
	Reason     string `json:"reason"`
}

func NewLoanRejected(loanID, institutionID, borrowerID, reviewedBy, reason string) LoanRejected {
	return LoanRejected{
		BaseEvent:  events.NewBaseEvent(TypeLoanRejected, loanID, "Loan", institutionID),
		BorrowerID: borrowerID,
		ReviewedBy: reviewedBy,
		Reason:     reason,
	}
}

// LoanRepaid is raised once confirmed repayments cover the loan amount.
type LoanRepaid struct {
	events.BaseEvent
	BorrowerID string          `json:"borrower_id"`
	Amount     decimal.Decimal `json:"amount"`
}

func NewLoanRepaid(loanID, institutionID, borrowerID string, amount decimal.Decimal) LoanRepaid {
	return LoanRepaid{
		BaseEvent:  events.NewBaseEvent(TypeLoanRepaid, loanID, "Loan", institutionID),
		BorrowerID: borrowerID,
		Amount:     amount,
	}
}

// ---------------------------------------------------------------------------
// Repayment events
// ---------------------------------------------------------------------------

// RepaymentSubmitted is raised when a borrower reports a payment.
type RepaymentSubmitted struct {
	DueDate time.Time `json:"due_date"`
	events.BaseEvent
	LoanID          string          `json:"loan_id"`
	BorrowerID      string          `json:"borrower_id"`
	Amount          decimal.Decimal `json:"amount"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
}

func NewRepaymentSubmitted(
	repaymentID, loanID, institutionID, borrowerID string,
	amount, remaining decimal.Decimal, due time.Time,
) RepaymentSubmitted {
	return RepaymentSubmitted{
		BaseEvent:       events.NewBaseEvent(TypeRepaymentSubmitted, repaymentID, "Repayment", institutionID),
		LoanID:          loanID,
		BorrowerID:      borrowerID,
		Amount:          amount,
		RemainingAmount: remaining,
		DueDate:         due,
	}
}

// RepaymentVerified is raised when staff confirm a submitted payment.
type RepaymentVerified struct {
	events.BaseEvent
	LoanID     string          `json:"loan_id"`
	VerifiedBy string          `json:"verified_by"`
	Amount     decimal.Decimal `json:"amount"`
}

func NewRepaymentVerified(repaymentID, loanID, institutionID, verifiedBy string, amount decimal.Decimal) RepaymentVerified {
	return RepaymentVerified{
		BaseEvent:  events.NewBaseEvent(TypeRepaymentVerified, repaymentID, "Repayment", institutionID),
		LoanID:     loanID,
		VerifiedBy: verifiedBy,
		Amount:     amount,
	}
}

// ---------------------------------------------------------------------------
// Credit history events
// ---------------------------------------------------------------------------

// CreditRecordRecorded is raised when an institution files a credit record.
// Consumers react to it by re-aggregating the borrower's profile.
type CreditRecordRecorded struct {
	events.BaseEvent
	BorrowerID  string `json:"borrower_id"`
	NationalID  string `json:"national_id"`
	CreditScore int    `json:"credit_score"`
}

func NewCreditRecordRecorded(recordID, institutionID, borrowerID, nationalID string, score int) CreditRecordRecorded {
	return CreditRecordRecorded{
		BaseEvent:   events.NewBaseEvent(TypeCreditRecordRecorded, recordID, "CreditRecord", institutionID),
		BorrowerID:  borrowerID,
		NationalID:  nationalID,
		CreditScore: score,
	}
}

// CreditProfileAggregated is raised after a consolidated profile is rebuilt.
type CreditProfileAggregated struct {
	events.BaseEvent
	NationalID            string `json:"national_id"`
	LocationCode          string `json:"location_code"`
	AggregatedCreditScore int    `json:"aggregated_credit_score"`
	ContributingRecords   int    `json:"contributing_records"`
}

func NewCreditProfileAggregated(nationalID, locationCode string, score, records int) CreditProfileAggregated {
	return CreditProfileAggregated{
		BaseEvent:             events.NewBaseEvent(TypeCreditProfileAggregated, ProfileAggregateID(nationalID, locationCode), "CreditProfile", ""),
		NationalID:            nationalID,
		LocationCode:          locationCode,
		AggregatedCreditScore: score,
		ContributingRecords:   records,
	}
}

// CreditProfileAccessed is raised for every read of a consolidated profile.
type CreditProfileAccessed struct {
	events.BaseEvent
	NationalID   string `json:"national_id"`
	LocationCode string `json:"location_code"`
	UserID       string `json:"user_id"`
	Purpose      string `json:"purpose"`
}

func NewCreditProfileAccessed(nationalID, locationCode, institutionID, userID, purpose string) CreditProfileAccessed {
	return CreditProfileAccessed{
		BaseEvent:    events.NewBaseEvent(TypeCreditProfileAccessed, ProfileAggregateID(nationalID, locationCode), "CreditProfile", institutionID),
		NationalID:   nationalID,
		LocationCode: locationCode,
		UserID:       userID,
		Purpose:      purpose,
	}
}

// ProfileAggregateID is the aggregate id of the profile keyed by
// (nationalID, locationCode).
func ProfileAggregateID(nationalID, locationCode string) string {
	return nationalID + ":" + locationCode
}
