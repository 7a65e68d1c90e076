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

const repaymentColumns = `
	id, loan_id, institution_id, borrower_id, amount, remaining_amount,
	due_date, payment_date, payment_method, reference, status, verified_by,
	version, created_at, updated_at`

// RepaymentRepo implements port.RepaymentRepository.
type RepaymentRepo struct {
	db pkgpostgres.Querier
}

// NewRepaymentRepo creates a new PostgreSQL-backed repayment repository.
func NewRepaymentRepo(pool *pgxpool.Pool) *RepaymentRepo {
	return &RepaymentRepo{db: pool}
}

// Save inserts a repayment or updates it when the stored version still
// matches.
func (r *RepaymentRepo) Save(ctx context.Context, rep model.Repayment) error {
	query := `
		INSERT INTO repayments (` + repaymentColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
		ON CONFLICT (id) DO UPDATE SET
			status       = EXCLUDED.status,
			payment_date = EXCLUDED.payment_date,
			verified_by  = EXCLUDED.verified_by,
			version      = repayments.version + 1,
			updated_at   = EXCLUDED.updated_at
		WHERE repayments.version = $13
	`
	tag, err := r.db.Exec(ctx, query,
		rep.ID(), rep.LoanID(), rep.InstitutionID(), rep.BorrowerID(), rep.Amount(), rep.RemainingAmount(),
		rep.DueDate(), rep.PaymentDate(), rep.PaymentMethod(), rep.Reference(), rep.Status().String(), rep.VerifiedBy(),
		rep.Version(), rep.CreatedAt(), rep.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("save repayment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: repayment %s", model.ErrConcurrentModification, rep.ID())
	}
	return nil
}

// FindByID retrieves a repayment by ID.
func (r *RepaymentRepo) FindByID(ctx context.Context, id string) (model.Repayment, error) {
	query := `SELECT ` + repaymentColumns + ` FROM repayments WHERE id = $1`
	rep, err := scanRepaymentRow(r.db.QueryRow(ctx, query, id))
	if pkgpostgres.IsNoRows(err) {
		return model.Repayment{}, fmt.Errorf("%w: %s", model.ErrRepaymentNotFound, id)
	}
	return rep, err
}

// FindByLoanID retrieves a loan's repayments in submission order.
func (r *RepaymentRepo) FindByLoanID(ctx context.Context, loanID string) ([]model.Repayment, error) {
	query := `SELECT ` + repaymentColumns + ` FROM repayments WHERE loan_id = $1 ORDER BY created_at, id`
	rows, err := r.db.Query(ctx, query, loanID)
	if err != nil {
		return nil, fmt.Errorf("query repayments: %w", err)
	}
	defer rows.Close()

	var out []model.Repayment
	for rows.Next() {
		rep, err := scanRepaymentRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rep)
	}
	return out, rows.Err()
}

func scanRepaymentRow(s scannable) (model.Repayment, error) {
	var (
		id, loanID, institutionID, borrowerID string
		amount, remaining                     decimal.Decimal
		dueDate, createdAt, updatedAt         time.Time
		paymentDate                           *time.Time
		method, reference, statusStr          string
		verifiedBy                            string
		version                               int
	)

	err := s.Scan(
		&id, &loanID, &institutionID, &borrowerID, &amount, &remaining,
		&dueDate, &paymentDate, &method, &reference, &statusStr, &verifiedBy,
		&version, &createdAt, &updatedAt,
	)
	if err != nil {
		return model.Repayment{}, fmt.Errorf("scan repayment: %w", err)
	}

	status, err := valueobject.NewRepaymentStatus(statusStr)
	if err != nil {
		return model.Repayment{}, fmt.Errorf("parse repayment status: %w", err)
	}

	return model.ReconstructRepayment(
		id, loanID, institutionID, borrowerID, amount, remaining,
		dueDate, paymentDate, method, reference, status, verifiedBy,
		version, createdAt, updatedAt,
	), nil
}
