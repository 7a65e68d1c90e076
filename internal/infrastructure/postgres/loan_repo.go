package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/letsema/mfi/internal/domain/model"
	"github.com/letsema/mfi/internal/domain/valueobject"
	pkgpostgres "github.com/letsema/mfi/pkg/postgres"
)

const loanColumns = `
	id, institution_id, borrower_id, amount, interest_rate, term_months,
	purpose, status, notes, decision_reason, reviewed_by,
	issued_date, due_date, version, created_at, updated_at`

// LoanRepo implements port.LoanRepository.
type LoanRepo struct {
	db pkgpostgres.Querier
}

// NewLoanRepo creates a new PostgreSQL-backed loan repository.
func NewLoanRepo(pool *pgxpool.Pool) *LoanRepo {
	return &LoanRepo{db: pool}
}

// Save inserts a loan or updates it when the stored version still matches.
func (r *LoanRepo) Save(ctx context.Context, loan model.Loan) error {
	query := `
		INSERT INTO loans (` + loanColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
		ON CONFLICT (id) DO UPDATE SET
			status          = EXCLUDED.status,
			decision_reason = EXCLUDED.decision_reason,
			reviewed_by     = EXCLUDED.reviewed_by,
			issued_date     = EXCLUDED.issued_date,
			due_date        = EXCLUDED.due_date,
			version         = loans.version + 1,
			updated_at      = EXCLUDED.updated_at
		WHERE loans.version = $14
	`
	tag, err := r.db.Exec(ctx, query,
		loan.ID(), loan.InstitutionID(), loan.BorrowerID(), loan.Amount(), loan.InterestRate(), loan.TermMonths(),
		loan.Purpose().String(), loan.Status().String(), loan.Notes(), loan.DecisionReason(), loan.ReviewedBy(),
		loan.IssuedDate(), loan.DueDate(), loan.Version(), loan.CreatedAt(), loan.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("save loan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: loan %s", model.ErrConcurrentModification, loan.ID())
	}
	return nil
}

// FindByID retrieves a loan by ID.
func (r *LoanRepo) FindByID(ctx context.Context, id string) (model.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1`
	loan, err := scanLoanRow(r.db.QueryRow(ctx, query, id))
	if pkgpostgres.IsNoRows(err) {
		return model.Loan{}, fmt.Errorf("%w: %s", model.ErrLoanNotFound, id)
	}
	return loan, err
}

// FindByBorrowerID retrieves a borrower's loans, newest first.
func (r *LoanRepo) FindByBorrowerID(ctx context.Context, borrowerID string) ([]model.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE borrower_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query, borrowerID)
	if err != nil {
		return nil, fmt.Errorf("query loans: %w", err)
	}
	defer rows.Close()

	var loans []model.Loan
	for rows.Next() {
		loan, err := scanLoanRow(rows)
		if err != nil {
			return nil, err
		}
		loans = append(loans, loan)
	}
	return loans, rows.Err()
}

func scanLoanRow(s scannable) (model.Loan, error) {
	var (
		id, institutionID, borrowerID             string
		amount, interestRate                      decimal.Decimal
		termMonths, version                       int
		purposeStr, statusStr                     string
		notes, decisionReason, reviewedBy         string
		issuedDate, dueDate, createdAt, updatedAt time.Time
	)

	err := s.Scan(
		&id, &institutionID, &borrowerID, &amount, &interestRate, &termMonths,
		&purposeStr, &statusStr, &notes, &decisionReason, &reviewedBy,
		&issuedDate, &dueDate, &version, &createdAt, &updatedAt,
	)
	if err != nil {
		return model.Loan{}, fmt.Errorf("scan loan: %w", err)
	}

	term, err := valueobject.NewLoanTerm(termMonths)
	if err != nil {
		return model.Loan{}, fmt.Errorf("parse loan term: %w", err)
	}
	purpose, err := valueobject.NewLoanPurpose(purposeStr)
	if err != nil {
		return model.Loan{}, fmt.Errorf("parse loan purpose: %w", err)
	}
	status, err := valueobject.NewLoanStatus(statusStr)
	if err != nil {
		return model.Loan{}, fmt.Errorf("parse loan status: %w", err)
	}

	return model.ReconstructLoan(
		id, institutionID, borrowerID, amount, interestRate, term,
		purpose, status, notes, decisionReason, reviewedBy,
		issuedDate, dueDate, version, createdAt, updatedAt,
	), nil
}
