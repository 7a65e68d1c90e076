package service_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/letsema/mfi/internal/domain/model"
	"github.com/letsema/mfi/internal/domain/service"
	"github.com/letsema/mfi/internal/domain/valueobject"
	"github.com/letsema/mfi/pkg/testutil"
)

var (
	maseru  = model.ReconstructInstitution(testutil.InstitutionMaseru, "Maseru Microfinance", "REG-1", "Maseru", true, issued)
	maseru2 = model.ReconstructInstitution(testutil.InstitutionMaseru2, "Kingsway Lenders", "REG-2", "Kingsway, MASERU", true, issued)
	leribe  = model.ReconstructInstitution(testutil.InstitutionLeribe, "Hlotse Credit", "REG-3", "Leribe", true, issued)

	institutions = map[string]model.Institution{
		maseru.ID():  maseru,
		maseru2.ID(): maseru2,
		leribe.ID():  leribe,
	}
)

func record(institutionID, borrowerID string, score int, risks ...string) model.CreditRecord {
	return model.CreditRecord{
		ID:                  institutionID + "/" + borrowerID,
		InstitutionID:       institutionID,
		BorrowerID:          borrowerID,
		NationalID:          testutil.NationalID,
		CreditScore:         score,
		TotalLoans:          2,
		ActiveLoans:         1,
		TotalAmountBorrowed: decimal.NewFromInt(1000),
		TotalAmountRepaid:   decimal.NewFromInt(250),
		OnTimePayments:      3,
		LatePayments:        1,
		RiskFactors:         risks,
		RecordedAt:          issued,
	}
}

func TestCreditAggregator_Aggregate(t *testing.T) {
	agg := service.NewCreditAggregator()
	now := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

	t.Run("merges own and same-location peer records", func(t *testing.T) {
		out, err := agg.Aggregate(service.AggregationInput{
			BorrowerID:  testutil.BorrowerAtMaseru,
			NationalID:  testutil.NationalID,
			Institution: maseru,
			OwnRecords:  []model.CreditRecord{record(maseru.ID(), testutil.BorrowerAtMaseru, 700, "LATE_PAYER")},
			PeerRecords: []model.CreditRecord{
				record(maseru2.ID(), testutil.BorrowerAtMaseru2, 800, "LATE_PAYER", "HIGH_DEBT"),
				record(leribe.ID(), testutil.BorrowerAtLeribe, 100),
			},
			Institutions: institutions,
		}, now)
		require.NoError(t, err)
		require.NotNil(t, out)

		assert.Equal(t, "MASERU", out.LocationCode)
		assert.Equal(t, 750, out.Totals.AggregatedCreditScore)
		assert.Equal(t, 4, out.Totals.TotalLoans)
		assert.Equal(t, 2, out.Totals.ActiveLoans)
		testutil.AssertDecimalEqualString(t, "2000", out.Totals.TotalAmountBorrowed)
		testutil.AssertDecimalEqualString(t, "500", out.Totals.TotalAmountRepaid)
		assert.Equal(t, []string{"HIGH_DEBT", "LATE_PAYER"}, out.Totals.RiskFactors)
		assert.Len(t, out.Contributors, 2)
		assert.Len(t, out.Snapshots, 2)
		require.Len(t, out.Contributions, 2)
		assert.Equal(t, model.AuditActionContribution, out.Contributions[0].Action())
		assert.Equal(t, now, out.Contributions[1].Timestamp)
	})

	t.Run("score is floored", func(t *testing.T) {
		out, err := agg.Aggregate(service.AggregationInput{
			BorrowerID:  testutil.BorrowerAtMaseru,
			NationalID:  testutil.NationalID,
			Institution: maseru,
			OwnRecords: []model.CreditRecord{
				record(maseru.ID(), testutil.BorrowerAtMaseru, 700),
				record(maseru.ID(), testutil.BorrowerAtMaseru, 701),
			},
			Institutions: institutions,
		}, now)
		require.NoError(t, err)
		require.NotNil(t, out)
		assert.Equal(t, 700, out.Totals.AggregatedCreditScore)
		assert.Len(t, out.Contributors, 1, "one institution listed once")
		assert.Len(t, out.Contributions, 2, "one audit entry per record")
	})

	t.Run("no records yields nothing", func(t *testing.T) {
		out, err := agg.Aggregate(service.AggregationInput{
			BorrowerID:   testutil.BorrowerAtMaseru,
			NationalID:   testutil.NationalID,
			Institution:  maseru,
			PeerRecords:  []model.CreditRecord{record(leribe.ID(), testutil.BorrowerAtLeribe, 650)},
			Institutions: institutions,
		}, now)
		require.NoError(t, err)
		assert.Nil(t, out)
	})

	t.Run("unresolvable location", func(t *testing.T) {
		nowhere := model.ReconstructInstitution("x", "Nowhere", "REG", "Johannesburg", true, issued)
		_, err := agg.Aggregate(service.AggregationInput{
			BorrowerID:  testutil.BorrowerAtMaseru,
			NationalID:  testutil.NationalID,
			Institution: nowhere,
			OwnRecords:  []model.CreditRecord{record("x", testutil.BorrowerAtMaseru, 700)},
		}, now)
		assert.ErrorIs(t, err, valueobject.ErrLocationUnresolved)
	})

	t.Run("unknown contributing institution is named by id", func(t *testing.T) {
		out, err := agg.Aggregate(service.AggregationInput{
			BorrowerID:  testutil.BorrowerAtMaseru,
			NationalID:  testutil.NationalID,
			Institution: maseru,
			OwnRecords:  []model.CreditRecord{record("gone", testutil.BorrowerAtMaseru, 600)},
		}, now)
		require.NoError(t, err)
		require.NotNil(t, out)
		assert.Equal(t, "Institution gone", out.Contributors[0].Name)
		assert.Equal(t, "Unknown", out.Contributors[0].Location)
	})
}

func TestAverageScore(t *testing.T) {
	assert.Equal(t, 750, service.AverageScore(1500, 2))
	assert.Equal(t, 700, service.AverageScore(1401, 2))
	assert.Equal(t, 0, service.AverageScore(0, 0))
}
