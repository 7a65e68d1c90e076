package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/letsema/mfi/internal/domain/model"
	pkgpostgres "github.com/letsema/mfi/pkg/postgres"
)

const borrowerColumns = `id, national_id, full_name, phone, institution_id, user_id, created_at`

// BorrowerRepo implements port.BorrowerRepository.
type BorrowerRepo struct {
	db pkgpostgres.Querier
}

// NewBorrowerRepo creates a new PostgreSQL-backed borrower repository.
func NewBorrowerRepo(pool *pgxpool.Pool) *BorrowerRepo {
	return &BorrowerRepo{db: pool}
}

// Save upserts a borrower.
func (r *BorrowerRepo) Save(ctx context.Context, b model.Borrower) error {
	query := `
		INSERT INTO borrowers (` + borrowerColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (id) DO UPDATE SET
			full_name = EXCLUDED.full_name,
			phone     = EXCLUDED.phone,
			user_id   = EXCLUDED.user_id
	`
	_, err := r.db.Exec(ctx, query,
		b.ID(), b.NationalID(), b.FullName(), b.Phone(), b.InstitutionID(), b.UserID(), b.CreatedAt(),
	)
	if pkgpostgres.IsUniqueViolation(err) {
		return fmt.Errorf("%w: national id %s at institution %s", model.ErrBorrowerExists, b.NationalID(), b.InstitutionID())
	}
	if err != nil {
		return fmt.Errorf("save borrower: %w", err)
	}
	return nil
}

// FindByID retrieves a borrower by ID.
func (r *BorrowerRepo) FindByID(ctx context.Context, id string) (model.Borrower, error) {
	query := `SELECT ` + borrowerColumns + ` FROM borrowers WHERE id = $1`
	b, err := scanBorrowerRow(r.db.QueryRow(ctx, query, id))
	if pkgpostgres.IsNoRows(err) {
		return model.Borrower{}, fmt.Errorf("%w: %s", model.ErrBorrowerNotFound, id)
	}
	return b, err
}

// FindByNationalID retrieves every registration of a national identity,
// one per institution.
func (r *BorrowerRepo) FindByNationalID(ctx context.Context, nationalID string) ([]model.Borrower, error) {
	query := `SELECT ` + borrowerColumns + ` FROM borrowers WHERE national_id = $1 ORDER BY created_at`
	rows, err := r.db.Query(ctx, query, nationalID)
	if err != nil {
		return nil, fmt.Errorf("query borrowers: %w", err)
	}
	defer rows.Close()

	var out []model.Borrower
	for rows.Next() {
		b, err := scanBorrowerRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func scanBorrowerRow(s scannable) (model.Borrower, error) {
	var (
		id, nationalID, fullName, phone string
		institutionID, userID           string
		createdAt                       time.Time
	)
	if err := s.Scan(&id, &nationalID, &fullName, &phone, &institutionID, &userID, &createdAt); err != nil {
		return model.Borrower{}, fmt.Errorf("scan borrower: %w", err)
	}
	return model.ReconstructBorrower(id, nationalID, fullName, phone, institutionID, userID, createdAt), nil
}
