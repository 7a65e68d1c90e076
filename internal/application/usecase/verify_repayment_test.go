package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/letsema/mfi/internal/application/dto"
	"github.com/letsema/mfi/internal/application/usecase"
	"github.com/letsema/mfi/internal/domain/event"
	"github.com/letsema/mfi/internal/domain/model"
	"github.com/letsema/mfi/internal/domain/service"
	"github.com/letsema/mfi/internal/domain/valueobject"
	"github.com/letsema/mfi/pkg/testutil"
)

func TestVerifyRepayment_Execute(t *testing.T) {
	approved := loanFixture(valueobject.LoanStatusApproved, fixtureTime)

	newUC := func(pending model.Repayment, others ...model.Repayment) (*usecase.VerifyRepaymentUseCase, *mockLoanRepository, *mockRepaymentRepository, *mockEventPublisher) {
		loanRepo := &mockLoanRepository{
			findByIDFunc: func(ctx context.Context, id string) (model.Loan, error) { return approved, nil },
		}
		repaymentRepo := &mockRepaymentRepository{
			findByIDFunc: func(ctx context.Context, id string) (model.Repayment, error) { return pending, nil },
			findByLoanIDFunc: func(ctx context.Context, loanID string) ([]model.Repayment, error) {
				return append([]model.Repayment{pending}, others...), nil
			},
		}
		publisher := &mockEventPublisher{}
		tx := &mockLendingTx{loans: loanRepo, repayments: repaymentRepo}
		uc := usecase.NewVerifyRepaymentUseCase(loanRepo, repaymentRepo, tx, publisher, service.NewRepaymentValidator(), testLogger())
		return uc, loanRepo, repaymentRepo, publisher
	}

	t.Run("partial payment keeps loan open", func(t *testing.T) {
		pending := repaymentFixture("r1", 300, valueobject.RepaymentStatusPending, &fixtureTime)
		uc, loanRepo, repo, publisher := newUC(pending)

		resp, err := uc.Execute(context.Background(), dto.VerifyRepaymentRequest{Actor: maseruStaff, RepaymentID: "r1"})

		require.NoError(t, err)
		assert.Equal(t, "VERIFIED", resp.Repayment.Status)
		assert.Equal(t, testutil.StaffUser, resp.Repayment.VerifiedBy)
		assert.Equal(t, "APPROVED", resp.LoanStatus)
		require.Len(t, repo.savedRepayments, 1)
		assert.Empty(t, loanRepo.savedLoans)
		assert.Equal(t, []string{event.TypeRepaymentVerified}, publisher.eventTypes())
	})

	t.Run("final payment repays loan", func(t *testing.T) {
		pending := repaymentFixture("r2", 400, valueobject.RepaymentStatusPending, &fixtureTime)
		earlier := repaymentFixture("r1", 600, valueobject.RepaymentStatusVerified, &fixtureTime)
		uc, loanRepo, _, publisher := newUC(pending, earlier)

		resp, err := uc.Execute(context.Background(), dto.VerifyRepaymentRequest{Actor: maseruStaff, RepaymentID: "r2"})

		require.NoError(t, err)
		assert.Equal(t, "REPAID", resp.LoanStatus)
		require.Len(t, loanRepo.savedLoans, 1)
		assert.Equal(t, []string{event.TypeRepaymentVerified, event.TypeLoanRepaid}, publisher.eventTypes())
	})

	t.Run("borrower cannot verify", func(t *testing.T) {
		uc, _, _, _ := newUC(repaymentFixture("r1", 300, valueobject.RepaymentStatusPending, &fixtureTime))
		_, err := uc.Execute(context.Background(), dto.VerifyRepaymentRequest{Actor: borrowerMe, RepaymentID: "r1"})
		assert.ErrorIs(t, err, model.ErrAccessDenied)
	})

	t.Run("already verified", func(t *testing.T) {
		uc, _, _, _ := newUC(repaymentFixture("r1", 300, valueobject.RepaymentStatusVerified, &fixtureTime))
		_, err := uc.Execute(context.Background(), dto.VerifyRepaymentRequest{Actor: maseruStaff, RepaymentID: "r1"})
		assert.ErrorIs(t, err, valueobject.ErrInvalidStatusTransition)
	})
}
