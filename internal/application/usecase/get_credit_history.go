package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/letsema/mfi/internal/application/dto"
	"github.com/letsema/mfi/internal/domain/model"
	"github.com/letsema/mfi/internal/domain/port"
	"github.com/letsema/mfi/internal/domain/service"
)

// GetCreditHistoryUseCase reads a consolidated profile on behalf of an
// actor. Every read is recorded in the profile's audit log.
type GetCreditHistoryUseCase struct {
	borrowerRepo    port.BorrowerRepository
	institutionRepo port.InstitutionRepository
	profileStore    port.CreditProfileStore
	publisher       port.EventPublisher
	aggregator      *service.CreditAggregator
}

// NewGetCreditHistoryUseCase wires dependencies.
func NewGetCreditHistoryUseCase(
	borrowerRepo port.BorrowerRepository,
	institutionRepo port.InstitutionRepository,
	profileStore port.CreditProfileStore,
	publisher port.EventPublisher,
	aggregator *service.CreditAggregator,
) *GetCreditHistoryUseCase {
	return &GetCreditHistoryUseCase{
		borrowerRepo:    borrowerRepo,
		institutionRepo: institutionRepo,
		profileStore:    profileStore,
		publisher:       publisher,
		aggregator:      aggregator,
	}
}

// Execute returns the profile held for the national ID in the actor's
// district. Staff see the district of their institution; a borrower may
// only read their own identity, in the district of their home institution.
func (uc *GetCreditHistoryUseCase) Execute(
	ctx context.Context,
	req dto.GetCreditHistoryRequest,
) (dto.CreditProfileResponse, error) {
	now := time.Now().UTC()

	// 1. Resolve the institution the read is made through.
	var institutionID string
	switch a := req.Actor.(type) {
	case model.InstitutionStaff:
		institutionID = a.InstitutionID
	case model.BorrowerUser:
		borrower, err := uc.borrowerRepo.FindByID(ctx, a.BorrowerID)
		if err != nil {
			return dto.CreditProfileResponse{}, fmt.Errorf("find borrower: %w", err)
		}
		if borrower.NationalID() != req.NationalID {
			return dto.CreditProfileResponse{}, fmt.Errorf("%w: borrowers may only read their own credit history", model.ErrAccessDenied)
		}
		institutionID = borrower.InstitutionID()
	default:
		return dto.CreditProfileResponse{}, fmt.Errorf("%w: unknown actor", model.ErrAccessDenied)
	}

	inst, err := uc.institutionRepo.FindByID(ctx, institutionID)
	if err != nil {
		return dto.CreditProfileResponse{}, fmt.Errorf("find institution: %w", err)
	}
	district, err := uc.aggregator.ResolveLocation(inst)
	if err != nil {
		return dto.CreditProfileResponse{}, err
	}

	// 2. Load the profile.
	profile, err := uc.profileStore.Find(ctx, req.NationalID, district.Code)
	if err != nil {
		return dto.CreditProfileResponse{}, fmt.Errorf("find credit profile: %w", err)
	}

	// 3. Record the read.
	query := model.AccessQuery{
		Timestamp:     now,
		InstitutionID: inst.ID(),
		UserID:        req.Actor.User(),
		Purpose:       req.Purpose,
	}
	if err := uc.profileStore.AppendAudit(ctx, profile.NationalID(), profile.LocationCode(), query); err != nil {
		return dto.CreditProfileResponse{}, fmt.Errorf("append audit: %w", err)
	}
	profile = profile.RecordAccess(query)

	// 4. Publish domain events.
	if err := uc.publisher.Publish(ctx, profile.DomainEvents()...); err != nil {
		return dto.CreditProfileResponse{}, fmt.Errorf("publish events: %w", err)
	}

	return toProfileResponse(profile), nil
}
