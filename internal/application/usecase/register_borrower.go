package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/letsema/mfi/internal/application/dto"
	"github.com/letsema/mfi/internal/domain/event"
	"github.com/letsema/mfi/internal/domain/model"
	"github.com/letsema/mfi/internal/domain/port"
)

// RegisterBorrowerUseCase onboards a borrower at the acting staff member's
// institution.
type RegisterBorrowerUseCase struct {
	borrowerRepo    port.BorrowerRepository
	institutionRepo port.InstitutionRepository
	publisher       port.EventPublisher
	logger          *slog.Logger
}

// NewRegisterBorrowerUseCase wires dependencies.
func NewRegisterBorrowerUseCase(
	borrowerRepo port.BorrowerRepository,
	institutionRepo port.InstitutionRepository,
	publisher port.EventPublisher,
	logger *slog.Logger,
) *RegisterBorrowerUseCase {
	return &RegisterBorrowerUseCase{
		borrowerRepo:    borrowerRepo,
		institutionRepo: institutionRepo,
		publisher:       publisher,
		logger:          logger,
	}
}

// Execute registers the borrower. A national ID may be registered once per
// institution; other institutions may hold their own Borrower for it.
func (uc *RegisterBorrowerUseCase) Execute(
	ctx context.Context,
	req dto.RegisterBorrowerRequest,
) (dto.BorrowerResponse, error) {
	now := time.Now().UTC()

	// 1. Only staff of an active institution register borrowers.
	staff, err := requireStaff(req.Actor, "")
	if err != nil {
		return dto.BorrowerResponse{}, err
	}
	inst, err := uc.institutionRepo.FindByID(ctx, staff.InstitutionID)
	if err != nil {
		return dto.BorrowerResponse{}, fmt.Errorf("find institution: %w", err)
	}
	if !inst.IsActive() {
		return dto.BorrowerResponse{}, fmt.Errorf("%w: %s", model.ErrInstitutionInactive, inst.ID())
	}

	// 2. Build the borrower.
	borrower, err := model.NewBorrower(req.NationalID, req.FullName, req.Phone, inst.ID(), req.UserID, now)
	if err != nil {
		return dto.BorrowerResponse{}, fmt.Errorf("create borrower: %w", err)
	}

	// 3. Refuse a second registration at the same institution.
	existing, err := uc.borrowerRepo.FindByNationalID(ctx, borrower.NationalID())
	if err != nil {
		return dto.BorrowerResponse{}, fmt.Errorf("find borrowers by national id: %w", err)
	}
	for _, b := range existing {
		if b.InstitutionID() == inst.ID() {
			return dto.BorrowerResponse{}, fmt.Errorf("%w: national id %s at institution %s",
				model.ErrBorrowerExists, borrower.NationalID(), inst.ID())
		}
	}

	// 4. Persist. The store enforces the same rule for concurrent callers.
	if err := uc.borrowerRepo.Save(ctx, borrower); err != nil {
		return dto.BorrowerResponse{}, fmt.Errorf("save borrower: %w", err)
	}

	// 5. Publish.
	evt := event.NewBorrowerRegistered(borrower.ID(), inst.ID(), borrower.NationalID())
	if err := uc.publisher.Publish(ctx, evt); err != nil {
		return dto.BorrowerResponse{}, fmt.Errorf("publish events: %w", err)
	}

	uc.logger.Info("borrower registered",
		"borrower_id", borrower.ID(),
		"institution_id", inst.ID(),
		"registered_by", staff.UserID,
	)

	return toBorrowerResponse(borrower), nil
}
