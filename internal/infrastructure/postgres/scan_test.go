package postgres

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/letsema/mfi/internal/domain/valueobject"
)

// fakeRow hands back fixed column values in order.
type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) != len(r.values) {
		return errors.New("column count mismatch")
	}
	for i, d := range dest {
		reflect.ValueOf(d).Elem().Set(reflect.ValueOf(r.values[i]))
	}
	return nil
}

func TestScanLoanRow(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	row := func(term int, purpose, status string) fakeRow {
		return fakeRow{values: []any{
			"loan-1", "inst-1", "borrower-1", decimal.NewFromInt(1000), decimal.RequireFromString("0.12"), term,
			purpose, status, "", "", "staff-1",
			now, now.AddDate(1, 0, 0), 3, now, now,
		}}
	}

	t.Run("reconstructs loan", func(t *testing.T) {
		loan, err := scanLoanRow(row(12, "BUSINESS", "APPROVED"))

		require.NoError(t, err)
		assert.Equal(t, "loan-1", loan.ID())
		assert.Equal(t, 12, loan.TermMonths())
		assert.Equal(t, valueobject.LoanStatusApproved, loan.Status())
		assert.Equal(t, valueobject.LoanPurposeBusiness, loan.Purpose())
		assert.Equal(t, 3, loan.Version())
		assert.Equal(t, "12", loan.AnnualRatePercent().String())
	})

	t.Run("rejects unknown term", func(t *testing.T) {
		_, err := scanLoanRow(row(7, "BUSINESS", "APPROVED"))
		assert.ErrorIs(t, err, valueobject.ErrInvalidTerm)
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		_, err := scanLoanRow(row(12, "BUSINESS", "ARCHIVED"))
		assert.ErrorContains(t, err, "parse loan status")
	})

	t.Run("propagates scan error", func(t *testing.T) {
		_, err := scanLoanRow(fakeRow{err: errors.New("boom")})
		assert.ErrorContains(t, err, "scan loan: boom")
	})
}

func TestScanRepaymentRow(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)

	t.Run("with payment date", func(t *testing.T) {
		paid := now
		rep, err := scanRepaymentRow(fakeRow{values: []any{
			"rep-1", "loan-1", "inst-1", "borrower-1", decimal.NewFromInt(100), decimal.NewFromInt(900),
			now, &paid, "MOBILE_MONEY", "MP-1", "PENDING", "",
			1, now, now,
		}})

		require.NoError(t, err)
		assert.True(t, rep.AwaitingVerification())
		assert.Equal(t, "MOBILE_MONEY", rep.PaymentMethod())
	})

	t.Run("placeholder without payment date", func(t *testing.T) {
		rep, err := scanRepaymentRow(fakeRow{values: []any{
			"rep-2", "loan-1", "inst-1", "borrower-1", decimal.NewFromInt(100), decimal.NewFromInt(900),
			now, (*time.Time)(nil), "", "", "UPCOMING", "",
			1, now, now,
		}})

		require.NoError(t, err)
		assert.Nil(t, rep.PaymentDate())
		assert.Equal(t, valueobject.RepaymentStatusUpcoming, rep.Status())
	})
}

func TestScanBorrowerAndInstitutionRows(t *testing.T) {
	now := time.Now().UTC()

	b, err := scanBorrowerRow(fakeRow{values: []any{"b-1", "0123456789012", "Palesa", "+266", "inst-1", "u-1", now}})
	require.NoError(t, err)
	assert.Equal(t, "0123456789012", b.NationalID())
	assert.Equal(t, "inst-1", b.InstitutionID())

	inst, err := scanInstitutionRow(fakeRow{values: []any{"inst-1", "Maseru MFI", "REG-1", "Maseru", false, now}})
	require.NoError(t, err)
	assert.False(t, inst.IsActive())
	assert.Equal(t, "Maseru", inst.Location())
}
