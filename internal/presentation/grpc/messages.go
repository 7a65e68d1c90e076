package grpc

import "time"

// Wire messages. Money travels as decimal strings rounded to two places;
// dates as RFC 3339 timestamps.

type ComputeScheduleRequest struct {
	Principal         string `json:"principal"`
	AnnualRatePercent string `json:"annual_rate_percent"`
	// IssueDate (YYYY-MM-DD) dates the installments when set.
	IssueDate  string `json:"issue_date,omitempty"`
	TermMonths int32  `json:"term_months"`
}

type InstallmentMsg struct {
	PaymentDate      *time.Time `json:"payment_date,omitempty"`
	PaymentAmount    string     `json:"payment_amount"`
	PrincipalPayment string     `json:"principal_payment"`
	InterestPayment  string     `json:"interest_payment"`
	RemainingBalance string     `json:"remaining_balance"`
	PaymentNumber    int32      `json:"payment_number"`
}

type ScheduleMsg struct {
	MonthlyPayment string            `json:"monthly_payment"`
	TotalPayment   string            `json:"total_payment"`
	TotalInterest  string            `json:"total_interest"`
	Installments   []*InstallmentMsg `json:"installments"`
}

type RegisterInstitutionRequest struct {
	Name               string `json:"name"`
	RegistrationNumber string `json:"registration_number"`
	Location           string `json:"location"`
}

type InstitutionMsg struct {
	CreatedAt          time.Time `json:"created_at"`
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	RegistrationNumber string    `json:"registration_number"`
	Location           string    `json:"location"`
	LocationCode       string    `json:"location_code"`
	Active             bool      `json:"active"`
}

type RegisterBorrowerRequest struct {
	NationalID string `json:"national_id"`
	FullName   string `json:"full_name"`
	Phone      string `json:"phone,omitempty"`
	// UserID links the borrower to an existing login.
	UserID string `json:"user_id,omitempty"`
}

type BorrowerMsg struct {
	CreatedAt     time.Time `json:"created_at"`
	ID            string    `json:"id"`
	NationalID    string    `json:"national_id"`
	FullName      string    `json:"full_name"`
	Phone         string    `json:"phone,omitempty"`
	InstitutionID string    `json:"institution_id"`
	UserID        string    `json:"user_id,omitempty"`
}

type SubmitLoanApplicationRequest struct {
	BorrowerID    string `json:"borrower_id"`
	InstitutionID string `json:"institution_id,omitempty"`
	Amount        string `json:"amount"`
	// InterestRate is an annual fraction; empty selects the default rate.
	InterestRate string `json:"interest_rate,omitempty"`
	Purpose      string `json:"purpose"`
	Notes        string `json:"notes,omitempty"`
	TermMonths   int32  `json:"term_months"`
}

type ReviewLoanApplicationRequest struct {
	LoanID  string `json:"loan_id"`
	Reason  string `json:"reason,omitempty"`
	Approve bool   `json:"approve"`
}

type GetLoanRequest struct {
	LoanID string `json:"loan_id"`
}

type LoanMsg struct {
	ID             string    `json:"id"`
	InstitutionID  string    `json:"institution_id"`
	BorrowerID     string    `json:"borrower_id"`
	Amount         string    `json:"amount"`
	InterestRate   string    `json:"interest_rate"`
	AmountRepaid   string    `json:"amount_repaid"`
	Purpose        string    `json:"purpose"`
	Status         string    `json:"status"`
	Notes          string    `json:"notes,omitempty"`
	DecisionReason string    `json:"decision_reason,omitempty"`
	ReviewedBy     string    `json:"reviewed_by,omitempty"`
	IssuedDate     time.Time `json:"issued_date"`
	DueDate        time.Time `json:"due_date"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	TermMonths     int32     `json:"term_months"`
}

type SubmitRepaymentRequest struct {
	LoanID        string `json:"loan_id"`
	Amount        string `json:"amount"`
	PaymentMethod string `json:"payment_method,omitempty"`
	Reference     string `json:"reference,omitempty"`
}

type VerifyRepaymentRequest struct {
	RepaymentID string `json:"repayment_id"`
}

type RepaymentMsg struct {
	PaymentDate     *time.Time `json:"payment_date,omitempty"`
	ID              string     `json:"id"`
	LoanID          string     `json:"loan_id"`
	Amount          string     `json:"amount"`
	RemainingAmount string     `json:"remaining_amount"`
	PaymentMethod   string     `json:"payment_method,omitempty"`
	Reference       string     `json:"reference,omitempty"`
	Status          string     `json:"status"`
	VerifiedBy      string     `json:"verified_by,omitempty"`
	DueDate         time.Time  `json:"due_date"`
}

type VerifyRepaymentResponse struct {
	Repayment  *RepaymentMsg `json:"repayment"`
	LoanStatus string        `json:"loan_status"`
}

type ListLoanRepaymentsRequest struct {
	LoanID string `json:"loan_id"`
}

type ListLoanRepaymentsResponse struct {
	Repayments []*RepaymentMsg `json:"repayments"`
}

type RecordCreditHistoryRequest struct {
	BorrowerID          string   `json:"borrower_id"`
	TotalAmountBorrowed string   `json:"total_amount_borrowed"`
	TotalAmountRepaid   string   `json:"total_amount_repaid"`
	RiskFactors         []string `json:"risk_factors,omitempty"`
	CreditScore         int32    `json:"credit_score"`
	TotalLoans          int32    `json:"total_loans"`
	ActiveLoans         int32    `json:"active_loans"`
	OnTimePayments      int32    `json:"on_time_payments"`
	LatePayments        int32    `json:"late_payments"`
	DefaultedPayments   int32    `json:"defaulted_payments"`
}

type CreditRecordMsg struct {
	RecordedAt    time.Time `json:"recorded_at"`
	ID            string    `json:"id"`
	InstitutionID string    `json:"institution_id"`
	BorrowerID    string    `json:"borrower_id"`
	NationalID    string    `json:"national_id"`
	CreditScore   int32     `json:"credit_score"`
}

type AggregateCreditHistoryRequest struct {
	BorrowerID    string `json:"borrower_id"`
	NationalID    string `json:"national_id"`
	InstitutionID string `json:"institution_id,omitempty"`
}

// AggregateCreditHistoryResponse summarises a rebuild. Aggregated is false
// when no credit record contributed. Profile bodies are only returned by
// GetCreditHistory.
type AggregateCreditHistoryResponse struct {
	LocationCode             string `json:"location_code,omitempty"`
	AggregatedCreditScore    int32  `json:"aggregated_credit_score"`
	ContributingInstitutions int32  `json:"contributing_institutions"`
	Aggregated               bool   `json:"aggregated"`
}

type GetCreditHistoryRequest struct {
	NationalID string `json:"national_id"`
	Purpose    string `json:"purpose"`
}

type ContributorMsg struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`
}

type AuditEntryMsg struct {
	Timestamp     time.Time `json:"timestamp"`
	Action        string    `json:"action"`
	InstitutionID string    `json:"institution_id"`
	UserID        string    `json:"user_id,omitempty"`
	Purpose       string    `json:"purpose,omitempty"`
}

type CreditProfileMsg struct {
	UpdatedAt             time.Time         `json:"updated_at"`
	NationalID            string            `json:"national_id"`
	LocationCode          string            `json:"location_code"`
	BorrowerID            string            `json:"borrower_id"`
	TotalAmountBorrowed   string            `json:"total_amount_borrowed"`
	TotalAmountRepaid     string            `json:"total_amount_repaid"`
	RiskFactors           []string          `json:"risk_factors"`
	Contributors          []*ContributorMsg `json:"contributors"`
	AuditLog              []*AuditEntryMsg  `json:"audit_log"`
	AggregatedCreditScore int32             `json:"aggregated_credit_score"`
	TotalLoans            int32             `json:"total_loans"`
	ActiveLoans           int32             `json:"active_loans"`
	OnTimePayments        int32             `json:"on_time_payments"`
	LatePayments          int32             `json:"late_payments"`
	DefaultedPayments     int32             `json:"defaulted_payments"`
}

type GetCreditHistoryStatsRequest struct{}

type CreditHistoryStatsMsg struct {
	ProfilesByLocation map[string]int32 `json:"profiles_by_location"`
	AverageCreditScore float64          `json:"average_credit_score"`
	UniqueNationalIDs  int32            `json:"unique_national_ids"`
	TotalProfiles      int32            `json:"total_profiles"`
	TotalActiveLoans   int32            `json:"total_active_loans"`
}
