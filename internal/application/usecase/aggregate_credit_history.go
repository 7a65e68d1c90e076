package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/letsema/mfi/internal/application/dto"
	"github.com/letsema/mfi/internal/domain/model"
	"github.com/letsema/mfi/internal/domain/port"
	"github.com/letsema/mfi/internal/domain/service"
)

// AggregateCreditHistoryUseCase rebuilds the consolidated profile of one
// national identity in the district of an institution.
type AggregateCreditHistoryUseCase struct {
	borrowerRepo    port.BorrowerRepository
	institutionRepo port.InstitutionRepository
	recordStore     port.CreditRecordStore
	profileStore    port.CreditProfileStore
	publisher       port.EventPublisher
	aggregator      *service.CreditAggregator
	logger          *slog.Logger
}

// NewAggregateCreditHistoryUseCase wires dependencies.
func NewAggregateCreditHistoryUseCase(
	borrowerRepo port.BorrowerRepository,
	institutionRepo port.InstitutionRepository,
	recordStore port.CreditRecordStore,
	profileStore port.CreditProfileStore,
	publisher port.EventPublisher,
	aggregator *service.CreditAggregator,
	logger *slog.Logger,
) *AggregateCreditHistoryUseCase {
	return &AggregateCreditHistoryUseCase{
		borrowerRepo:    borrowerRepo,
		institutionRepo: institutionRepo,
		recordStore:     recordStore,
		profileStore:    profileStore,
		publisher:       publisher,
		aggregator:      aggregator,
		logger:          logger,
	}
}

// Execute aggregates and upserts the profile. The response carries no
// profile when no credit record contributes. An empty national ID is taken
// from the borrower; any other value must match it.
func (uc *AggregateCreditHistoryUseCase) Execute(
	ctx context.Context,
	req dto.AggregateCreditHistoryRequest,
) (_ dto.AggregateCreditHistoryResponse, err error) {
	ctx, span := tracer.Start(ctx, "AggregateCreditHistory")
	span.SetAttributes(
		attribute.String("borrower_id", req.BorrowerID),
		attribute.String("institution_id", req.InstitutionID),
	)
	defer func() { endSpan(span, err) }()

	now := time.Now().UTC()

	// 1. Resolve the borrower and the target institution.
	borrower, err := uc.borrowerRepo.FindByID(ctx, req.BorrowerID)
	if err != nil {
		return dto.AggregateCreditHistoryResponse{}, fmt.Errorf("find borrower: %w", err)
	}
	nationalID := req.NationalID
	switch {
	case nationalID == "":
		nationalID = borrower.NationalID()
	case nationalID != borrower.NationalID():
		return dto.AggregateCreditHistoryResponse{}, fmt.Errorf("borrower %s: %w", borrower.ID(), model.ErrNationalIDMismatch)
	}
	institutionID := req.InstitutionID
	if institutionID == "" {
		institutionID = borrower.InstitutionID()
	}
	inst, err := uc.institutionRepo.FindByID(ctx, institutionID)
	if err != nil {
		return dto.AggregateCreditHistoryResponse{}, fmt.Errorf("find institution: %w", err)
	}

	// 2. Gather the borrower's records and those of every other borrower
	// sharing the national ID.
	own, err := uc.recordStore.FindByBorrowerIDs(ctx, []string{borrower.ID()})
	if err != nil {
		return dto.AggregateCreditHistoryResponse{}, fmt.Errorf("find own credit records: %w", err)
	}
	peers, err := uc.borrowerRepo.FindByNationalID(ctx, nationalID)
	if err != nil {
		return dto.AggregateCreditHistoryResponse{}, fmt.Errorf("find borrowers by national id: %w", err)
	}
	peerIDs := make([]string, 0, len(peers))
	for _, p := range peers {
		if p.ID() != borrower.ID() {
			peerIDs = append(peerIDs, p.ID())
		}
	}
	var peerRecords []model.CreditRecord
	if len(peerIDs) > 0 {
		peerRecords, err = uc.recordStore.FindByBorrowerIDs(ctx, peerIDs)
		if err != nil {
			return dto.AggregateCreditHistoryResponse{}, fmt.Errorf("find peer credit records: %w", err)
		}
	}

	// 3. Resolve every institution the records mention.
	institutions, err := uc.loadInstitutions(ctx, inst, own, peerRecords)
	if err != nil {
		return dto.AggregateCreditHistoryResponse{}, err
	}

	// 4. Aggregate.
	agg, err := uc.aggregator.Aggregate(service.AggregationInput{
		BorrowerID:   borrower.ID(),
		NationalID:   nationalID,
		Institution:  inst,
		OwnRecords:   own,
		PeerRecords:  peerRecords,
		Institutions: institutions,
	}, now)
	if err != nil {
		return dto.AggregateCreditHistoryResponse{}, fmt.Errorf("aggregate: %w", err)
	}
	if agg == nil {
		uc.logger.Info("no credit records to aggregate",
			"borrower_id", borrower.ID(),
			"institution_id", inst.ID(),
		)
		return dto.AggregateCreditHistoryResponse{}, nil
	}

	// 5. Upsert by (national ID, location code).
	existing, err := uc.profileStore.Find(ctx, agg.NationalID, agg.LocationCode)
	var profile model.ConsolidatedCreditProfile
	switch {
	case errors.Is(err, model.ErrProfileNotFound):
		profile = model.NewConsolidatedCreditProfile(*agg, now)
	case err != nil:
		return dto.AggregateCreditHistoryResponse{}, fmt.Errorf("find credit profile: %w", err)
	default:
		profile = existing.Merge(*agg, now)
	}
	if err := uc.profileStore.Save(ctx, profile); err != nil {
		return dto.AggregateCreditHistoryResponse{}, fmt.Errorf("save credit profile: %w", err)
	}

	// 6. Publish domain events.
	if err := uc.publisher.Publish(ctx, profile.DomainEvents()...); err != nil {
		return dto.AggregateCreditHistoryResponse{}, fmt.Errorf("publish events: %w", err)
	}

	uc.logger.Info("credit history aggregated",
		"location_code", agg.LocationCode,
		"records", len(agg.Contributions),
		"score", agg.Totals.AggregatedCreditScore,
	)

	resp := toProfileResponse(profile)
	return dto.AggregateCreditHistoryResponse{Profile: &resp}, nil
}

func (uc *AggregateCreditHistoryUseCase) loadInstitutions(
	ctx context.Context,
	target model.Institution,
	recordSets ...[]model.CreditRecord,
) (map[string]model.Institution, error) {
	out := map[string]model.Institution{target.ID(): target}

	seen := map[string]bool{target.ID(): true}
	var ids []string
	for _, set := range recordSets {
		for _, r := range set {
			if !seen[r.InstitutionID] {
				seen[r.InstitutionID] = true
				ids = append(ids, r.InstitutionID)
			}
		}
	}
	if len(ids) == 0 {
		return out, nil
	}

	found, err := uc.institutionRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("find institutions: %w", err)
	}
	for _, i := range found {
		out[i.ID()] = i
	}
	return out, nil
}
