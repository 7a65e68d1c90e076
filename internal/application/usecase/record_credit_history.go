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

// RecordCreditHistoryUseCase files an institution's credit record for one
// of its borrowers. Aggregation follows asynchronously from the published
// event.
type RecordCreditHistoryUseCase struct {
	borrowerRepo port.BorrowerRepository
	recordStore  port.CreditRecordStore
	publisher    port.EventPublisher
	logger       *slog.Logger
}

// NewRecordCreditHistoryUseCase wires dependencies.
func NewRecordCreditHistoryUseCase(
	borrowerRepo port.BorrowerRepository,
	recordStore port.CreditRecordStore,
	publisher port.EventPublisher,
	logger *slog.Logger,
) *RecordCreditHistoryUseCase {
	return &RecordCreditHistoryUseCase{
		borrowerRepo: borrowerRepo,
		recordStore:  recordStore,
		publisher:    publisher,
		logger:       logger,
	}
}

// Execute stores the record and announces it.
func (uc *RecordCreditHistoryUseCase) Execute(
	ctx context.Context,
	req dto.RecordCreditHistoryRequest,
) (dto.CreditRecordResponse, error) {
	now := time.Now().UTC()

	// 1. Only staff record credit history.
	staff, err := requireStaff(req.Actor, "")
	if err != nil {
		return dto.CreditRecordResponse{}, err
	}

	// 2. Resolve the borrower; it must belong to the staff's institution.
	borrower, err := uc.borrowerRepo.FindByID(ctx, req.BorrowerID)
	if err != nil {
		return dto.CreditRecordResponse{}, fmt.Errorf("find borrower: %w", err)
	}
	if borrower.InstitutionID() != staff.InstitutionID {
		return dto.CreditRecordResponse{}, fmt.Errorf("%w: borrower %s is not registered with institution %s",
			model.ErrAccessDenied, borrower.ID(), staff.InstitutionID)
	}

	// 3. Build and store the record.
	record, err := model.NewCreditRecord(model.CreditRecord{
		InstitutionID:       staff.InstitutionID,
		BorrowerID:          borrower.ID(),
		NationalID:          borrower.NationalID(),
		CreditScore:         req.CreditScore,
		TotalLoans:          req.TotalLoans,
		ActiveLoans:         req.ActiveLoans,
		TotalAmountBorrowed: req.TotalAmountBorrowed,
		TotalAmountRepaid:   req.TotalAmountRepaid,
		OnTimePayments:      req.OnTimePayments,
		LatePayments:        req.LatePayments,
		DefaultedPayments:   req.DefaultedPayments,
		RiskFactors:         req.RiskFactors,
	}, now)
	if err != nil {
		return dto.CreditRecordResponse{}, fmt.Errorf("create credit record: %w", err)
	}
	if err := uc.recordStore.Insert(ctx, record); err != nil {
		return dto.CreditRecordResponse{}, fmt.Errorf("insert credit record: %w", err)
	}

	// 4. Publish so the profile is re-aggregated.
	evt := event.NewCreditRecordRecorded(record.ID, record.InstitutionID, record.BorrowerID, record.NationalID, record.CreditScore)
	if err := uc.publisher.Publish(ctx, evt); err != nil {
		return dto.CreditRecordResponse{}, fmt.Errorf("publish events: %w", err)
	}

	uc.logger.Info("credit record recorded",
		"record_id", record.ID,
		"institution_id", record.InstitutionID,
		"borrower_id", record.BorrowerID,
	)

	return dto.CreditRecordResponse{
		ID:            record.ID,
		InstitutionID: record.InstitutionID,
		BorrowerID:    record.BorrowerID,
		NationalID:    record.NationalID,
		CreditScore:   record.CreditScore,
		RecordedAt:    record.RecordedAt,
	}, nil
}
