package usecase

import (
	"context"
	"fmt"

	"github.com/letsema/mfi/internal/application/dto"
	"github.com/letsema/mfi/internal/domain/port"
)

// GetCreditHistoryStatsUseCase reports summary figures over all profiles.
type GetCreditHistoryStatsUseCase struct {
	profileStore port.CreditProfileStore
}

// NewGetCreditHistoryStatsUseCase wires dependencies.
func NewGetCreditHistoryStatsUseCase(profileStore port.CreditProfileStore) *GetCreditHistoryStatsUseCase {
	return &GetCreditHistoryStatsUseCase{profileStore: profileStore}
}

// Execute returns the statistics. Staff only.
func (uc *GetCreditHistoryStatsUseCase) Execute(
	ctx context.Context,
	req dto.GetCreditHistoryStatsRequest,
) (dto.CreditHistoryStatsResponse, error) {
	if _, err := requireStaff(req.Actor, ""); err != nil {
		return dto.CreditHistoryStatsResponse{}, err
	}

	stats, err := uc.profileStore.Stats(ctx)
	if err != nil {
		return dto.CreditHistoryStatsResponse{}, fmt.Errorf("credit history stats: %w", err)
	}

	return dto.CreditHistoryStatsResponse{
		ProfilesByLocation: stats.ProfilesByLocation,
		UniqueNationalIDs:  stats.UniqueNationalIDs,
		AverageCreditScore: stats.AverageCreditScore,
		TotalProfiles:      stats.TotalProfiles,
		TotalActiveLoans:   stats.TotalActiveLoans,
	}, nil
}
