package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/letsema/mfi/internal/application/dto"
	"github.com/letsema/mfi/internal/application/usecase"
	"github.com/letsema/mfi/internal/domain/model"
	"github.com/letsema/mfi/internal/domain/service"
	"github.com/letsema/mfi/internal/domain/valueobject"
	"github.com/letsema/mfi/pkg/testutil"
)

func TestListLoanRepayments_Execute(t *testing.T) {
	loan := loanFixture(valueobject.LoanStatusApproved, fixtureTime)
	now := time.Now().UTC()

	placeholder := func(id string, due time.Time) model.Repayment {
		return model.ReconstructRepayment(id, loan.ID(), testutil.InstitutionMaseru, testutil.BorrowerAtMaseru,
			decimal.NewFromInt(100), decimal.Zero, due, nil, "", "", valueobject.RepaymentStatusPending, "", 1, now, now)
	}

	repaymentRepo := &mockRepaymentRepository{
		findByLoanIDFunc: func(ctx context.Context, loanID string) ([]model.Repayment, error) {
			return []model.Repayment{
				placeholder("overdue", now.AddDate(0, 0, -3)),
				placeholder("soon", now.AddDate(0, 0, 3)),
				placeholder("later", now.AddDate(0, 1, 0)),
				repaymentFixture("verified", 100, valueobject.RepaymentStatusVerified, &fixtureTime),
			}, nil
		},
	}
	loanRepo := &mockLoanRepository{
		findByIDFunc: func(ctx context.Context, id string) (model.Loan, error) { return loan, nil },
	}
	uc := usecase.NewListLoanRepaymentsUseCase(loanRepo, repaymentRepo, service.NewRepaymentValidator())

	out, err := uc.Execute(context.Background(), dto.ListLoanRepaymentsRequest{Actor: borrowerMe, LoanID: loan.ID()})
	require.NoError(t, err)

	statuses := make([]string, 0, len(out))
	for _, r := range out {
		statuses = append(statuses, r.Status)
	}
	assert.Equal(t, []string{"OVERDUE", "UPCOMING", "PENDING", "VERIFIED"}, statuses)
	assert.Empty(t, repaymentRepo.savedRepayments)
}
