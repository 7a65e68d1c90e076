package usecase

import (
	"context"
	"fmt"

	"github.com/letsema/mfi/internal/application/dto"
	"github.com/letsema/mfi/internal/domain/model"
)

// ComputeScheduleUseCase previews a loan's amortization schedule.
type ComputeScheduleUseCase struct{}

// NewComputeScheduleUseCase wires dependencies.
func NewComputeScheduleUseCase() *ComputeScheduleUseCase {
	return &ComputeScheduleUseCase{}
}

// Execute computes the schedule and dates it when an issue date is given.
func (uc *ComputeScheduleUseCase) Execute(
	_ context.Context,
	req dto.ComputeScheduleRequest,
) (dto.ScheduleResponse, error) {
	sched, err := model.ComputeSchedule(req.Principal, req.AnnualRatePercent, req.TermMonths)
	if err != nil {
		return dto.ScheduleResponse{}, fmt.Errorf("compute schedule: %w", err)
	}
	if req.IssueDate != nil {
		sched = sched.WithPaymentDates(*req.IssueDate)
	}
	return toScheduleResponse(sched), nil
}
