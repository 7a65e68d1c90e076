package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/letsema/mfi/internal/domain/model"
)

// ---------------------------------------------------------------------------
// Request DTOs
// ---------------------------------------------------------------------------

// ComputeScheduleRequest asks for a simple-interest schedule. IssueDate,
// when set, dates the installments.
type ComputeScheduleRequest struct {
	IssueDate         *time.Time      `json:"issue_date,omitempty"`
	Principal         decimal.Decimal `json:"principal"`
	AnnualRatePercent decimal.Decimal `json:"annual_rate_percent"`
	TermMonths        int             `json:"term_months"`
}

// SubmitLoanApplicationRequest carries a new loan application. InstitutionID
// defaults to the borrower's home institution; a zero InterestRate selects
// the default rate.
type SubmitLoanApplicationRequest struct {
	Actor         model.Actor     `json:"-"`
	BorrowerID    string          `json:"borrower_id"`
	InstitutionID string          `json:"institution_id,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	InterestRate  decimal.Decimal `json:"interest_rate"`
	TermMonths    int             `json:"term_months"`
	Purpose       string          `json:"purpose"`
	Notes         string          `json:"notes,omitempty"`
}

// ReviewLoanApplicationRequest approves or rejects a pending loan.
type ReviewLoanApplicationRequest struct {
	Actor   model.Actor `json:"-"`
	LoanID  string      `json:"loan_id"`
	Approve bool        `json:"approve"`
	Reason  string      `json:"reason,omitempty"`
}

// RegisterInstitutionRequest registers an institution. RegisteredBy is the
// administrator's user ID.
type RegisterInstitutionRequest struct {
	RegisteredBy       string `json:"-"`
	Name               string `json:"name"`
	RegistrationNumber string `json:"registration_number"`
	Location           string `json:"location"`
}

// RegisterBorrowerRequest onboards a borrower at the acting staff member's
// institution.
type RegisterBorrowerRequest struct {
	Actor      model.Actor `json:"-"`
	NationalID string      `json:"national_id"`
	FullName   string      `json:"full_name"`
	Phone      string      `json:"phone,omitempty"`
	UserID     string      `json:"user_id,omitempty"`
}

// GetLoanRequest identifies a loan to retrieve.
type GetLoanRequest struct {
	Actor  model.Actor `json:"-"`
	LoanID string      `json:"loan_id"`
}

// SubmitRepaymentRequest reports a payment made by a borrower.
type SubmitRepaymentRequest struct {
	Actor         model.Actor     `json:"-"`
	LoanID        string          `json:"loan_id"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"payment_method,omitempty"`
	Reference     string          `json:"reference,omitempty"`
}

// VerifyRepaymentRequest confirms a submitted payment.
type VerifyRepaymentRequest struct {
	Actor       model.Actor `json:"-"`
	RepaymentID string      `json:"repayment_id"`
}

// ListLoanRepaymentsRequest identifies the loan whose repayments to list.
type ListLoanRepaymentsRequest struct {
	Actor  model.Actor `json:"-"`
	LoanID string      `json:"loan_id"`
}

// RecordCreditHistoryRequest files an institution's credit record for one
// of its borrowers.
type RecordCreditHistoryRequest struct {
	Actor               model.Actor     `json:"-"`
	BorrowerID          string          `json:"borrower_id"`
	TotalAmountBorrowed decimal.Decimal `json:"total_amount_borrowed"`
	TotalAmountRepaid   decimal.Decimal `json:"total_amount_repaid"`
	RiskFactors         []string        `json:"risk_factors,omitempty"`
	CreditScore         int             `json:"credit_score"`
	TotalLoans          int             `json:"total_loans"`
	ActiveLoans         int             `json:"active_loans"`
	OnTimePayments      int             `json:"on_time_payments"`
	LatePayments        int             `json:"late_payments"`
	DefaultedPayments   int             `json:"defaulted_payments"`
}

// AggregateCreditHistoryRequest rebuilds a consolidated profile.
// InstitutionID is optional.
type AggregateCreditHistoryRequest struct {
	BorrowerID    string `json:"borrower_id"`
	NationalID    string `json:"national_id"`
	InstitutionID string `json:"institution_id,omitempty"`
}

// GetCreditHistoryRequest reads a consolidated profile.
type GetCreditHistoryRequest struct {
	Actor      model.Actor `json:"-"`
	NationalID string      `json:"national_id"`
	Purpose    string      `json:"purpose"`
}

// GetCreditHistoryStatsRequest asks for profile statistics.
type GetCreditHistoryStatsRequest struct {
	Actor model.Actor `json:"-"`
}

// ---------------------------------------------------------------------------
// Response DTOs
// ---------------------------------------------------------------------------

// InstallmentResponse is one row of a schedule.
type InstallmentResponse struct {
	PaymentDate      *time.Time      `json:"payment_date,omitempty"`
	PaymentAmount    decimal.Decimal `json:"payment_amount"`
	PrincipalPayment decimal.Decimal `json:"principal_payment"`
	InterestPayment  decimal.Decimal `json:"interest_payment"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
	PaymentNumber    int             `json:"payment_number"`
}

// ScheduleResponse is a full amortization schedule.
type ScheduleResponse struct {
	MonthlyPayment decimal.Decimal       `json:"monthly_payment"`
	TotalPayment   decimal.Decimal       `json:"total_payment"`
	TotalInterest  decimal.Decimal       `json:"total_interest"`
	Installments   []InstallmentResponse `json:"installments"`
}

// LoanResponse is the external representation of a loan.
type LoanResponse struct {
	ID             string          `json:"id"`
	InstitutionID  string          `json:"institution_id"`
	BorrowerID     string          `json:"borrower_id"`
	Amount         decimal.Decimal `json:"amount"`
	InterestRate   decimal.Decimal `json:"interest_rate"`
	TermMonths     int             `json:"term_months"`
	Purpose        string          `json:"purpose"`
	Status         string          `json:"status"`
	Notes          string          `json:"notes,omitempty"`
	DecisionReason string          `json:"decision_reason,omitempty"`
	ReviewedBy     string          `json:"reviewed_by,omitempty"`
	IssuedDate     time.Time       `json:"issued_date"`
	DueDate        time.Time       `json:"due_date"`
	AmountRepaid   decimal.Decimal `json:"amount_repaid"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// RepaymentResponse is the external representation of a repayment.
type RepaymentResponse struct {
	ID              string          `json:"id"`
	LoanID          string          `json:"loan_id"`
	Amount          decimal.Decimal `json:"amount"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
	DueDate         time.Time       `json:"due_date"`
	PaymentDate     *time.Time      `json:"payment_date,omitempty"`
	PaymentMethod   string          `json:"payment_method,omitempty"`
	Reference       string          `json:"reference,omitempty"`
	Status          string          `json:"status"`
	VerifiedBy      string          `json:"verified_by,omitempty"`
}

// VerifyRepaymentResponse reports the verified repayment and the loan
// status afterwards.
type VerifyRepaymentResponse struct {
	Repayment  RepaymentResponse `json:"repayment"`
	LoanStatus string            `json:"loan_status"`
}

// InstitutionResponse is the external representation of an institution.
type InstitutionResponse struct {
	CreatedAt          time.Time `json:"created_at"`
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	RegistrationNumber string    `json:"registration_number"`
	Location           string    `json:"location"`
	LocationCode       string    `json:"location_code"`
	Active             bool      `json:"active"`
}

// BorrowerResponse is the external representation of a borrower.
type BorrowerResponse struct {
	CreatedAt     time.Time `json:"created_at"`
	ID            string    `json:"id"`
	NationalID    string    `json:"national_id"`
	FullName      string    `json:"full_name"`
	Phone         string    `json:"phone,omitempty"`
	InstitutionID string    `json:"institution_id"`
	UserID        string    `json:"user_id,omitempty"`
}

// CreditRecordResponse acknowledges a filed credit record.
type CreditRecordResponse struct {
	ID            string    `json:"id"`
	InstitutionID string    `json:"institution_id"`
	BorrowerID    string    `json:"borrower_id"`
	NationalID    string    `json:"national_id"`
	CreditScore   int       `json:"credit_score"`
	RecordedAt    time.Time `json:"recorded_at"`
}

// ContributorResponse identifies a contributing institution.
type ContributorResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`
}

// AuditEntryResponse is one data-sharing log line.
type AuditEntryResponse struct {
	Action        string    `json:"action"`
	InstitutionID string    `json:"institution_id"`
	UserID        string    `json:"user_id,omitempty"`
	Purpose       string    `json:"purpose,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// CreditProfileResponse is the external representation of a consolidated
// credit profile.
type CreditProfileResponse struct {
	NationalID            string                `json:"national_id"`
	LocationCode          string                `json:"location_code"`
	BorrowerID            string                `json:"borrower_id"`
	AggregatedCreditScore int                   `json:"aggregated_credit_score"`
	TotalLoans            int                   `json:"total_loans"`
	ActiveLoans           int                   `json:"active_loans"`
	TotalAmountBorrowed   decimal.Decimal       `json:"total_amount_borrowed"`
	TotalAmountRepaid     decimal.Decimal       `json:"total_amount_repaid"`
	OnTimePayments        int                   `json:"on_time_payments"`
	LatePayments          int                   `json:"late_payments"`
	DefaultedPayments     int                   `json:"defaulted_payments"`
	RiskFactors           []string              `json:"risk_factors"`
	Contributors          []ContributorResponse `json:"contributors"`
	AuditLog              []AuditEntryResponse  `json:"audit_log"`
	UpdatedAt             time.Time             `json:"updated_at"`
}

// AggregateCreditHistoryResponse carries the rebuilt profile, or nil when
// no credit record contributed.
type AggregateCreditHistoryResponse struct {
	Profile *CreditProfileResponse `json:"profile,omitempty"`
}

// CreditHistoryStatsResponse summarises the consolidated profiles on file.
type CreditHistoryStatsResponse struct {
	ProfilesByLocation map[string]int `json:"profiles_by_location"`
	UniqueNationalIDs  int            `json:"unique_national_ids"`
	AverageCreditScore float64        `json:"average_credit_score"`
	TotalProfiles      int            `json:"total_profiles"`
	TotalActiveLoans   int            `json:"total_active_loans"`
}
