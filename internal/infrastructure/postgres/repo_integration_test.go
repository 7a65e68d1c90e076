//go:build integration

package postgres_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/letsema/mfi/internal/domain/model"
	"github.com/letsema/mfi/internal/domain/port"
	"github.com/letsema/mfi/internal/domain/valueobject"
	"github.com/letsema/mfi/internal/infrastructure/postgres"
	"github.com/letsema/mfi/pkg/testutil"
)

func TestRepositories_Integration(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t, postgres.Migrations, postgres.MigrationsDir)
	now := time.Now().UTC().Truncate(time.Microsecond)

	institutions := postgres.NewInstitutionRepo(pc.Pool)
	borrowers := postgres.NewBorrowerRepo(pc.Pool)
	loans := postgres.NewLoanRepo(pc.Pool)
	repayments := postgres.NewRepaymentRepo(pc.Pool)

	maseru := model.ReconstructInstitution(uuid.NewString(), "Maseru MFI", "REG-1", "Maseru", true, now)
	kingsway := model.ReconstructInstitution(uuid.NewString(), "Kingsway Lenders", "REG-2", "Kingsway, Maseru", true, now)
	require.NoError(t, institutions.Save(ctx, maseru))
	require.NoError(t, institutions.Save(ctx, kingsway))

	home := model.ReconstructBorrower(uuid.NewString(), testutil.NationalID, "Palesa Mokoena", "+26650000001", maseru.ID(), "user-1", now)
	other := model.ReconstructBorrower(uuid.NewString(), testutil.NationalID, "Palesa Mokoena", "+26650000001", kingsway.ID(), "", now)
	require.NoError(t, borrowers.Save(ctx, home))
	require.NoError(t, borrowers.Save(ctx, other))

	t.Run("institutions by ids", func(t *testing.T) {
		found, err := institutions.FindByIDs(ctx, []string{maseru.ID(), kingsway.ID(), uuid.NewString()})
		require.NoError(t, err)
		assert.Len(t, found, 2)

		_, err = institutions.FindByID(ctx, uuid.NewString())
		assert.ErrorIs(t, err, model.ErrInstitutionNotFound)
	})

	t.Run("registration number is unique", func(t *testing.T) {
		clone := model.ReconstructInstitution(uuid.NewString(), "Maseru MFI Two", "REG-1", "Maseru", true, now)
		assert.ErrorIs(t, institutions.Save(ctx, clone), model.ErrInstitutionExists)
	})

	t.Run("borrowers by national id", func(t *testing.T) {
		found, err := borrowers.FindByNationalID(ctx, testutil.NationalID)
		require.NoError(t, err)
		assert.Len(t, found, 2)

		dup := model.ReconstructBorrower(uuid.NewString(), testutil.NationalID, "Palesa Mokoena", "+26650000001", maseru.ID(), "", now)
		assert.ErrorIs(t, borrowers.Save(ctx, dup), model.ErrBorrowerExists)
	})

	t.Run("loan lifecycle with optimistic locking", func(t *testing.T) {
		term, err := valueobject.NewLoanTerm(12)
		require.NoError(t, err)
		loan, err := model.NewLoan(maseru.ID(), home.ID(), decimal.NewFromInt(1000), decimal.Zero, term,
			valueobject.LoanPurposeBusiness, "", now)
		require.NoError(t, err)
		require.NoError(t, loans.Save(ctx, loan))

		stored, err := loans.FindByID(ctx, loan.ID())
		require.NoError(t, err)
		testutil.AssertDecimalEqualString(t, "0.12", stored.InterestRate())

		approved, err := stored.Approve("staff-1", now)
		require.NoError(t, err)
		require.NoError(t, loans.Save(ctx, approved))

		// A second writer holding the pre-approval version loses.
		rejected, err := stored.Reject("staff-2", "late", now)
		require.NoError(t, err)
		assert.ErrorIs(t, loans.Save(ctx, rejected), model.ErrConcurrentModification)

		reloaded, err := loans.FindByID(ctx, loan.ID())
		require.NoError(t, err)
		assert.Equal(t, valueobject.LoanStatusApproved, reloaded.Status())
		assert.Equal(t, 2, reloaded.Version())

		byBorrower, err := loans.FindByBorrowerID(ctx, home.ID())
		require.NoError(t, err)
		assert.Len(t, byBorrower, 1)

		t.Run("repayments", func(t *testing.T) {
			rep, err := model.NewRepayment(reloaded, decimal.NewFromInt(250), decimal.NewFromInt(750),
				reloaded.IssuedDate(), "CASH", "R-1", now)
			require.NoError(t, err)
			require.NoError(t, repayments.Save(ctx, rep))

			verified, err := rep.Verify("staff-1", now)
			require.NoError(t, err)
			require.NoError(t, repayments.Save(ctx, verified))

			list, err := repayments.FindByLoanID(ctx, loan.ID())
			require.NoError(t, err)
			require.Len(t, list, 1)
			assert.Equal(t, valueobject.RepaymentStatusVerified, list[0].Status())
			assert.Equal(t, "staff-1", list[0].VerifiedBy())
			require.NotNil(t, list[0].PaymentDate())
		})

		t.Run("lending tx rolls back on error", func(t *testing.T) {
			rep, err := model.NewRepayment(reloaded, decimal.NewFromInt(100), decimal.NewFromInt(650),
				reloaded.IssuedDate(), "CASH", "R-2", now)
			require.NoError(t, err)

			boom := errors.New("boom")
			err = postgres.NewLendingTx(pc.Pool).WithinTx(ctx, func(_ port.LoanRepository, txRepayments port.RepaymentRepository) error {
				if err := txRepayments.Save(ctx, rep); err != nil {
					return err
				}
				return boom
			})
			assert.ErrorIs(t, err, boom)

			_, err = repayments.FindByID(ctx, rep.ID())
			assert.ErrorIs(t, err, model.ErrRepaymentNotFound)
		})
	})

	t.Run("missing loan", func(t *testing.T) {
		_, err := loans.FindByID(ctx, uuid.NewString())
		assert.ErrorIs(t, err, model.ErrLoanNotFound)
	})
}
