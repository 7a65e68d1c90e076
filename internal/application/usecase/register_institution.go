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
	"github.com/letsema/mfi/internal/domain/valueobject"
)

// RegisterInstitutionUseCase adds an institution to the network. Callers
// are authorised as system administrators at the transport boundary.
type RegisterInstitutionUseCase struct {
	institutionRepo port.InstitutionRepository
	publisher       port.EventPublisher
	logger          *slog.Logger
}

// NewRegisterInstitutionUseCase wires dependencies.
func NewRegisterInstitutionUseCase(
	institutionRepo port.InstitutionRepository,
	publisher port.EventPublisher,
	logger *slog.Logger,
) *RegisterInstitutionUseCase {
	return &RegisterInstitutionUseCase{
		institutionRepo: institutionRepo,
		publisher:       publisher,
		logger:          logger,
	}
}

// Execute validates and stores the institution.
func (uc *RegisterInstitutionUseCase) Execute(
	ctx context.Context,
	req dto.RegisterInstitutionRequest,
) (dto.InstitutionResponse, error) {
	now := time.Now().UTC()

	// 1. Build the institution; its location must resolve to one district.
	inst, err := model.NewInstitution(req.Name, req.RegistrationNumber, req.Location, now)
	if err != nil {
		return dto.InstitutionResponse{}, fmt.Errorf("create institution: %w", err)
	}
	district, err := valueobject.ResolveDistrict(inst.Location())
	if err != nil {
		return dto.InstitutionResponse{}, fmt.Errorf("resolve district: %w", err)
	}

	// 2. Persist. A taken registration number surfaces ErrInstitutionExists.
	if err := uc.institutionRepo.Save(ctx, inst); err != nil {
		return dto.InstitutionResponse{}, fmt.Errorf("save institution: %w", err)
	}

	// 3. Publish.
	evt := event.NewInstitutionRegistered(inst.ID(), inst.Name(), district.Code)
	if err := uc.publisher.Publish(ctx, evt); err != nil {
		return dto.InstitutionResponse{}, fmt.Errorf("publish events: %w", err)
	}

	uc.logger.Info("institution registered",
		"institution_id", inst.ID(),
		"location_code", district.Code,
		"registered_by", req.RegisteredBy,
	)

	return toInstitutionResponse(inst, district.Code), nil
}
