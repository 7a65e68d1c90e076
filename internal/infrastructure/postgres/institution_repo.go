package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/letsema/mfi/internal/domain/model"
	pkgpostgres "github.com/letsema/mfi/pkg/postgres"
)

const institutionColumns = `id, name, registration_number, location, is_active, created_at`

// InstitutionRepo implements port.InstitutionRepository.
type InstitutionRepo struct {
	db pkgpostgres.Querier
}

// NewInstitutionRepo creates a new PostgreSQL-backed institution repository.
func NewInstitutionRepo(pool *pgxpool.Pool) *InstitutionRepo {
	return &InstitutionRepo{db: pool}
}

// Save upserts an institution.
func (r *InstitutionRepo) Save(ctx context.Context, inst model.Institution) error {
	query := `
		INSERT INTO institutions (` + institutionColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (id) DO UPDATE SET
			name      = EXCLUDED.name,
			location  = EXCLUDED.location,
			is_active = EXCLUDED.is_active
	`
	_, err := r.db.Exec(ctx, query,
		inst.ID(), inst.Name(), inst.RegistrationNumber(), inst.Location(), inst.IsActive(), inst.CreatedAt(),
	)
	if pkgpostgres.IsUniqueViolation(err) {
		return fmt.Errorf("%w: registration number %s", model.ErrInstitutionExists, inst.RegistrationNumber())
	}
	if err != nil {
		return fmt.Errorf("save institution: %w", err)
	}
	return nil
}

// FindByID retrieves an institution by ID.
func (r *InstitutionRepo) FindByID(ctx context.Context, id string) (model.Institution, error) {
	query := `SELECT ` + institutionColumns + ` FROM institutions WHERE id = $1`
	inst, err := scanInstitutionRow(r.db.QueryRow(ctx, query, id))
	if pkgpostgres.IsNoRows(err) {
		return model.Institution{}, fmt.Errorf("%w: %s", model.ErrInstitutionNotFound, id)
	}
	return inst, err
}

// FindByIDs retrieves every institution among ids. Unknown ids are skipped.
func (r *InstitutionRepo) FindByIDs(ctx context.Context, ids []string) ([]model.Institution, error) {
	query := `SELECT ` + institutionColumns + ` FROM institutions WHERE id = ANY($1::uuid[])`
	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("query institutions: %w", err)
	}
	defer rows.Close()

	var out []model.Institution
	for rows.Next() {
		inst, err := scanInstitutionRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inst)
	}
	return out, rows.Err()
}

func scanInstitutionRow(s scannable) (model.Institution, error) {
	var (
		id, name, regNo, location string
		active                    bool
		createdAt                 time.Time
	)
	if err := s.Scan(&id, &name, &regNo, &location, &active, &createdAt); err != nil {
		return model.Institution{}, fmt.Errorf("scan institution: %w", err)
	}
	return model.ReconstructInstitution(id, name, regNo, location, active, createdAt), nil
}
