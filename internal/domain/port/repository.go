package port

import (
	"context"

	"github.com/letsema/mfi/internal/domain/event"
	"github.com/letsema/mfi/internal/domain/model"
)

// ---------------------------------------------------------------------------
// Repository ports (driven/secondary adapters)
// ---------------------------------------------------------------------------

// LoanRepository persists and retrieves loans.
type LoanRepository interface {
	Save(ctx context.Context, loan model.Loan) error
	FindByID(ctx context.Context, id string) (model.Loan, error)
	FindByBorrowerID(ctx context.Context, borrowerID string) ([]model.Loan, error)
}

// RepaymentRepository persists and retrieves repayments.
type RepaymentRepository interface {
	Save(ctx context.Context, r model.Repayment) error
	FindByID(ctx context.Context, id string) (model.Repayment, error)
	FindByLoanID(ctx context.Context, loanID string) ([]model.Repayment, error)
}

// LendingTransactor runs fn with loan and repayment repositories whose
// writes commit or roll back together.
type LendingTransactor interface {
	WithinTx(ctx context.Context, fn func(loans LoanRepository, repayments RepaymentRepository) error) error
}

// InstitutionRepository persists and resolves institutions. Save fails
// with model.ErrInstitutionExists on a taken registration number.
type InstitutionRepository interface {
	Save(ctx context.Context, inst model.Institution) error
	FindByID(ctx context.Context, id string) (model.Institution, error)
	FindByIDs(ctx context.Context, ids []string) ([]model.Institution, error)
}

// BorrowerRepository persists and resolves borrowers. Save fails with
// model.ErrBorrowerExists when the national ID is already registered at the
// same institution.
type BorrowerRepository interface {
	Save(ctx context.Context, b model.Borrower) error
	FindByID(ctx context.Context, id string) (model.Borrower, error)
	FindByNationalID(ctx context.Context, nationalID string) ([]model.Borrower, error)
}

// CreditRecordStore persists per-institution credit records.
type CreditRecordStore interface {
	Insert(ctx context.Context, r model.CreditRecord) error
	FindByBorrowerIDs(ctx context.Context, borrowerIDs []string) ([]model.CreditRecord, error)
}

// CreditProfileStore persists consolidated credit profiles keyed by
// (nationalID, locationCode).
type CreditProfileStore interface {
	Find(ctx context.Context, nationalID, locationCode string) (model.ConsolidatedCreditProfile, error)
	// Save inserts a new profile or updates an existing one if its version
	// is unchanged since it was loaded; otherwise it fails with
	// model.ErrConcurrentModification.
	Save(ctx context.Context, p model.ConsolidatedCreditProfile) error
	// AppendAudit appends entries without touching the version.
	AppendAudit(ctx context.Context, nationalID, locationCode string, entries ...model.AuditEntry) error
	Stats(ctx context.Context) (model.CreditHistoryStats, error)
}

// ---------------------------------------------------------------------------
// Event publisher port
// ---------------------------------------------------------------------------

// EventPublisher publishes domain events to external consumers.
type EventPublisher interface {
	Publish(ctx context.Context, events ...event.DomainEvent) error
}
