package usecase_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/letsema/mfi/internal/application/dto"
	"github.com/letsema/mfi/internal/application/usecase"
	"github.com/letsema/mfi/internal/domain/event"
	"github.com/letsema/mfi/internal/domain/model"
	"github.com/letsema/mfi/internal/domain/valueobject"
	"github.com/letsema/mfi/pkg/testutil"
)

func TestSubmitLoanApplication_Execute(t *testing.T) {
	newUC := func(loanRepo *mockLoanRepository, publisher *mockEventPublisher, insts ...model.Institution) *usecase.SubmitLoanApplicationUseCase {
		if len(insts) == 0 {
			insts = []model.Institution{maseruInst, leribeInst}
		}
		return usecase.NewSubmitLoanApplicationUseCase(
			loanRepo,
			newMockBorrowerRepository(borrowerMaseru),
			newMockInstitutionRepository(insts...),
			publisher,
			testLogger(),
		)
	}

	validReq := func() dto.SubmitLoanApplicationRequest {
		return dto.SubmitLoanApplicationRequest{
			Actor:      borrowerMe,
			BorrowerID: testutil.BorrowerAtMaseru,
			Amount:     decimal.NewFromInt(2500),
			TermMonths: 6,
			Purpose:    "business",
		}
	}

	t.Run("borrower applies at home institution", func(t *testing.T) {
		loanRepo := &mockLoanRepository{}
		publisher := &mockEventPublisher{}

		resp, err := newUC(loanRepo, publisher).Execute(context.Background(), validReq())

		require.NoError(t, err)
		assert.Equal(t, "PENDING", resp.Status)
		assert.Equal(t, "BUSINESS", resp.Purpose)
		assert.Equal(t, testutil.InstitutionMaseru, resp.InstitutionID)
		testutil.AssertDecimalEqualString(t, "0.12", resp.InterestRate)
		assert.WithinDuration(t, model.AddMonths(resp.IssuedDate, 6), resp.DueDate, time.Second)
		require.Len(t, loanRepo.savedLoans, 1)
		assert.Equal(t, []string{event.TypeLoanApplicationSubmitted}, publisher.eventTypes())
	})

	t.Run("blank purpose defaults to other", func(t *testing.T) {
		req := validReq()
		req.Purpose = ""
		resp, err := newUC(&mockLoanRepository{}, &mockEventPublisher{}).Execute(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, "OTHER", resp.Purpose)
	})

	t.Run("staff applies at own institution", func(t *testing.T) {
		req := validReq()
		req.Actor = maseruStaff
		_, err := newUC(&mockLoanRepository{}, &mockEventPublisher{}).Execute(context.Background(), req)
		require.NoError(t, err)
	})

	t.Run("staff of another institution is denied", func(t *testing.T) {
		req := validReq()
		req.Actor = leribeStaff
		_, err := newUC(&mockLoanRepository{}, &mockEventPublisher{}).Execute(context.Background(), req)
		assert.ErrorIs(t, err, model.ErrAccessDenied)
	})

	t.Run("borrower cannot apply for someone else", func(t *testing.T) {
		req := validReq()
		req.Actor = model.BorrowerUser{BorrowerID: "someone-else"}
		_, err := newUC(&mockLoanRepository{}, &mockEventPublisher{}).Execute(context.Background(), req)
		assert.ErrorIs(t, err, model.ErrAccessDenied)
	})

	t.Run("term outside allowed set", func(t *testing.T) {
		req := validReq()
		req.TermMonths = 9
		_, err := newUC(&mockLoanRepository{}, &mockEventPublisher{}).Execute(context.Background(), req)
		assert.ErrorIs(t, err, valueobject.ErrInvalidTerm)
	})

	t.Run("unknown purpose", func(t *testing.T) {
		req := validReq()
		req.Purpose = "holiday"
		_, err := newUC(&mockLoanRepository{}, &mockEventPublisher{}).Execute(context.Background(), req)
		assert.ErrorIs(t, err, valueobject.ErrInvalidPurpose)
	})

	t.Run("non-positive amount", func(t *testing.T) {
		req := validReq()
		req.Amount = decimal.Zero
		_, err := newUC(&mockLoanRepository{}, &mockEventPublisher{}).Execute(context.Background(), req)
		assert.ErrorIs(t, err, model.ErrInvalidAmount)
	})

	t.Run("inactive institution", func(t *testing.T) {
		closed := model.ReconstructInstitution(testutil.InstitutionMaseru, "Closed", "REG", "Maseru", false, fixtureTime)
		_, err := newUC(&mockLoanRepository{}, &mockEventPublisher{}, closed).Execute(context.Background(), validReq())
		assert.ErrorIs(t, err, model.ErrInstitutionInactive)
	})

	t.Run("unknown borrower", func(t *testing.T) {
		req := validReq()
		req.BorrowerID = "missing"
		_, err := newUC(&mockLoanRepository{}, &mockEventPublisher{}).Execute(context.Background(), req)
		assert.ErrorIs(t, err, model.ErrBorrowerNotFound)
	})

	t.Run("save failure", func(t *testing.T) {
		loanRepo := &mockLoanRepository{
			saveFunc: func(ctx context.Context, l model.Loan) error { return fmt.Errorf("database unavailable") },
		}
		publisher := &mockEventPublisher{}
		_, err := newUC(loanRepo, publisher).Execute(context.Background(), validReq())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "save loan")
		assert.Empty(t, publisher.publishedEvents)
	})
}
