package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/letsema/mfi/internal/application/dto"
	"github.com/letsema/mfi/internal/application/usecase"
	"github.com/letsema/mfi/internal/domain/model"
	"github.com/letsema/mfi/internal/domain/service"
	"github.com/letsema/mfi/internal/domain/valueobject"
	"github.com/letsema/mfi/pkg/testutil"
)

func TestGetLoan_Execute(t *testing.T) {
	loan := loanFixture(valueobject.LoanStatusApproved, fixtureTime)
	loanRepo := &mockLoanRepository{
		findByIDFunc: func(ctx context.Context, id string) (model.Loan, error) { return loan, nil },
	}
	repaymentRepo := &mockRepaymentRepository{
		findByLoanIDFunc: func(ctx context.Context, loanID string) ([]model.Repayment, error) {
			return []model.Repayment{
				repaymentFixture("r1", 250, valueobject.RepaymentStatusVerified, &fixtureTime),
				repaymentFixture("r2", 100, valueobject.RepaymentStatusPending, &fixtureTime),
			}, nil
		},
	}
	uc := usecase.NewGetLoanUseCase(loanRepo, repaymentRepo, service.NewRepaymentValidator())

	t.Run("borrower reads own loan", func(t *testing.T) {
		resp, err := uc.Execute(context.Background(), dto.GetLoanRequest{Actor: borrowerMe, LoanID: loan.ID()})
		require.NoError(t, err)
		assert.Equal(t, loan.ID(), resp.ID)
		testutil.AssertDecimalEqualString(t, "250", resp.AmountRepaid)
	})

	t.Run("staff of lending institution", func(t *testing.T) {
		_, err := uc.Execute(context.Background(), dto.GetLoanRequest{Actor: maseruStaff, LoanID: loan.ID()})
		require.NoError(t, err)
	})

	t.Run("other institution denied", func(t *testing.T) {
		_, err := uc.Execute(context.Background(), dto.GetLoanRequest{Actor: leribeStaff, LoanID: loan.ID()})
		assert.ErrorIs(t, err, model.ErrAccessDenied)
	})

	t.Run("not found", func(t *testing.T) {
		uc := usecase.NewGetLoanUseCase(&mockLoanRepository{}, repaymentRepo, service.NewRepaymentValidator())
		_, err := uc.Execute(context.Background(), dto.GetLoanRequest{Actor: maseruStaff, LoanID: "nope"})
		assert.ErrorIs(t, err, model.ErrLoanNotFound)
	})
}
