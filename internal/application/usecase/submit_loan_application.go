package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/letsema/mfi/internal/application/dto"
	"github.com/letsema/mfi/internal/domain/model"
	"github.com/letsema/mfi/internal/domain/port"
	"github.com/letsema/mfi/internal/domain/valueobject"
)

// SubmitLoanApplicationUseCase opens a pending loan for a borrower.
type SubmitLoanApplicationUseCase struct {
	loanRepo        port.LoanRepository
	borrowerRepo    port.BorrowerRepository
	institutionRepo port.InstitutionRepository
	publisher       port.EventPublisher
	logger          *slog.Logger
}

// NewSubmitLoanApplicationUseCase wires dependencies.
func NewSubmitLoanApplicationUseCase(
	loanRepo port.LoanRepository,
	borrowerRepo port.BorrowerRepository,
	institutionRepo port.InstitutionRepository,
	publisher port.EventPublisher,
	logger *slog.Logger,
) *SubmitLoanApplicationUseCase {
	return &SubmitLoanApplicationUseCase{
		loanRepo:        loanRepo,
		borrowerRepo:    borrowerRepo,
		institutionRepo: institutionRepo,
		publisher:       publisher,
		logger:          logger,
	}
}

// Execute validates and persists a new loan application.
func (uc *SubmitLoanApplicationUseCase) Execute(
	ctx context.Context,
	req dto.SubmitLoanApplicationRequest,
) (dto.LoanResponse, error) {
	now := time.Now().UTC()

	// 1. Validate the terms.
	term, err := valueobject.NewLoanTerm(req.TermMonths)
	if err != nil {
		return dto.LoanResponse{}, err
	}
	var purpose valueobject.LoanPurpose
	if req.Purpose != "" {
		if purpose, err = valueobject.NewLoanPurpose(req.Purpose); err != nil {
			return dto.LoanResponse{}, err
		}
	}

	// 2. Resolve the borrower.
	borrower, err := uc.borrowerRepo.FindByID(ctx, req.BorrowerID)
	if err != nil {
		return dto.LoanResponse{}, fmt.Errorf("find borrower: %w", err)
	}

	institutionID := req.InstitutionID
	if institutionID == "" {
		institutionID = borrower.InstitutionID()
	}

	// 3. Borrowers apply for themselves; staff apply at their own institution.
	switch a := req.Actor.(type) {
	case model.BorrowerUser:
		if a.BorrowerID != borrower.ID() {
			return dto.LoanResponse{}, fmt.Errorf("%w: cannot apply for another borrower", model.ErrAccessDenied)
		}
	default:
		if _, err := requireStaff(req.Actor, institutionID); err != nil {
			return dto.LoanResponse{}, err
		}
	}

	// 4. The lending institution must be active.
	inst, err := uc.institutionRepo.FindByID(ctx, institutionID)
	if err != nil {
		return dto.LoanResponse{}, fmt.Errorf("find institution: %w", err)
	}
	if !inst.IsActive() {
		return dto.LoanResponse{}, fmt.Errorf("%w: %s", model.ErrInstitutionInactive, inst.Name())
	}

	// 5. Create the loan aggregate.
	loan, err := model.NewLoan(inst.ID(), borrower.ID(), req.Amount, req.InterestRate, term, purpose, req.Notes, now)
	if err != nil {
		return dto.LoanResponse{}, fmt.Errorf("create loan: %w", err)
	}

	// 6. Persist.
	if err := uc.loanRepo.Save(ctx, loan); err != nil {
		return dto.LoanResponse{}, fmt.Errorf("save loan: %w", err)
	}

	// 7. Publish domain events.
	if err := uc.publisher.Publish(ctx, loan.DomainEvents()...); err != nil {
		return dto.LoanResponse{}, fmt.Errorf("publish events: %w", err)
	}

	uc.logger.Info("loan application submitted",
		"loan_id", loan.ID(),
		"institution_id", inst.ID(),
		"borrower_id", borrower.ID(),
		"amount", loan.Amount().String(),
	)

	return toLoanResponse(loan, decimal.Zero), nil
}
