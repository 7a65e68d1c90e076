package model_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/letsema/mfi/internal/domain/event"
	"github.com/letsema/mfi/internal/domain/model"
	"github.com/letsema/mfi/internal/domain/valueobject"
	"github.com/letsema/mfi/pkg/testutil"
)

func TestRepayment_Lifecycle(t *testing.T) {
	now := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
	loan, err := newPendingLoan(t, now).Approve(testutil.StaffUser, now)
	require.NoError(t, err)

	r, err := model.NewRepayment(loan, decimal.NewFromInt(100), decimal.NewFromInt(900),
		now, "MOBILE_MONEY", "MP-123", now)
	require.NoError(t, err)

	t.Run("submitted payment awaits verification", func(t *testing.T) {
		assert.Equal(t, valueobject.RepaymentStatusPending, r.Status())
		assert.True(t, r.AwaitingVerification())
		require.NotNil(t, r.PaymentDate())
		assert.Equal(t, loan.ID(), r.LoanID())
		assert.Equal(t, loan.InstitutionID(), r.InstitutionID())
		require.Len(t, r.DomainEvents(), 1)
		assert.Equal(t, event.TypeRepaymentSubmitted, r.DomainEvents()[0].EventType())
	})

	t.Run("verify confirms", func(t *testing.T) {
		verified, err := r.ClearEvents().Verify(testutil.StaffUser, now.Add(time.Hour))
		require.NoError(t, err)
		assert.Equal(t, valueobject.RepaymentStatusVerified, verified.Status())
		assert.True(t, verified.Status().IsConfirmed())
		assert.False(t, verified.AwaitingVerification())
		assert.Equal(t, testutil.StaffUser, verified.VerifiedBy())
		require.Len(t, verified.DomainEvents(), 1)
		assert.Equal(t, event.TypeRepaymentVerified, verified.DomainEvents()[0].EventType())

		_, err = verified.Verify(testutil.StaffUser, now)
		assert.ErrorIs(t, err, valueobject.ErrInvalidStatusTransition)
	})

	t.Run("non-positive amount", func(t *testing.T) {
		_, err := model.NewRepayment(loan, decimal.Zero, decimal.Zero, now, "", "", now)
		assert.ErrorIs(t, err, model.ErrInvalidAmount)
	})
}

func TestAmountExceedsBalanceError(t *testing.T) {
	var err error = &model.AmountExceedsBalanceError{Remaining: decimal.NewFromInt(400)}

	assert.ErrorIs(t, err, model.ErrAmountExceedsBalance)
	assert.Contains(t, err.Error(), "400.00")
}
