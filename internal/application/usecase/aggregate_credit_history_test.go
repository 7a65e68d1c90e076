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

type aggregateFixture struct {
	uc        *usecase.AggregateCreditHistoryUseCase
	records   *mockCreditRecordStore
	profiles  *mockCreditProfileStore
	publisher *mockEventPublisher
}

func newAggregateFixture(records ...model.CreditRecord) aggregateFixture {
	f := aggregateFixture{
		records:   &mockCreditRecordStore{records: records},
		profiles:  newMockCreditProfileStore(),
		publisher: &mockEventPublisher{},
	}
	f.uc = usecase.NewAggregateCreditHistoryUseCase(
		newMockBorrowerRepository(borrowerMaseru, borrowerMaseru2, borrowerLeribe),
		newMockInstitutionRepository(maseruInst, maseru2Inst, leribeInst),
		f.records, f.profiles, f.publisher,
		service.NewCreditAggregator(), testLogger(),
	)
	return f
}

func maseruRecords() []model.CreditRecord {
	return []model.CreditRecord{
		creditRecord(testutil.InstitutionMaseru, testutil.BorrowerAtMaseru, 700),
		creditRecord(testutil.InstitutionMaseru2, testutil.BorrowerAtMaseru2, 800),
		creditRecord(testutil.InstitutionLeribe, testutil.BorrowerAtLeribe, 300),
	}
}

func TestAggregateCreditHistory_Execute(t *testing.T) {
	req := dto.AggregateCreditHistoryRequest{
		BorrowerID: testutil.BorrowerAtMaseru,
		NationalID: testutil.NationalID,
	}

	t.Run("creates profile from district records", func(t *testing.T) {
		f := newAggregateFixture(maseruRecords()...)

		resp, err := f.uc.Execute(context.Background(), req)

		require.NoError(t, err)
		require.NotNil(t, resp.Profile)
		p := resp.Profile
		assert.Equal(t, "MASERU", p.LocationCode)
		assert.Equal(t, 750, p.AggregatedCreditScore)
		assert.Equal(t, 2, p.TotalLoans)
		testutil.AssertDecimalEqualString(t, "1000", p.TotalAmountBorrowed)
		assert.Len(t, p.Contributors, 2)
		require.Len(t, p.AuditLog, 2)
		for _, e := range p.AuditLog {
			assert.Equal(t, model.AuditActionContribution, e.Action)
		}
		require.Len(t, f.profiles.savedProfiles, 1)
		assert.True(t, f.profiles.savedProfiles[0].IsNew())
		assert.Equal(t, []string{event.TypeCreditProfileAggregated}, f.publisher.eventTypes())
	})

	t.Run("re-aggregation appends audit and dedupes contributors", func(t *testing.T) {
		f := newAggregateFixture(maseruRecords()...)

		_, err := f.uc.Execute(context.Background(), req)
		require.NoError(t, err)
		resp, err := f.uc.Execute(context.Background(), req)
		require.NoError(t, err)

		require.NotNil(t, resp.Profile)
		assert.Len(t, resp.Profile.AuditLog, 4, "one contribution per record per call")
		assert.Len(t, resp.Profile.Contributors, 2)
		assert.Equal(t, 750, resp.Profile.AggregatedCreditScore)
		assert.Equal(t, 2, resp.Profile.TotalLoans, "totals are recomputed, not accumulated")
		require.Len(t, f.profiles.savedProfiles, 2)
		assert.False(t, f.profiles.savedProfiles[1].IsNew())
	})

	t.Run("score average is floored", func(t *testing.T) {
		f := newAggregateFixture(
			creditRecord(testutil.InstitutionMaseru, testutil.BorrowerAtMaseru, 700),
			creditRecord(testutil.InstitutionMaseru2, testutil.BorrowerAtMaseru2, 701),
		)

		resp, err := f.uc.Execute(context.Background(), req)

		require.NoError(t, err)
		require.NotNil(t, resp.Profile)
		assert.Equal(t, 700, resp.Profile.AggregatedCreditScore)
	})

	t.Run("explicit institution selects its district", func(t *testing.T) {
		f := newAggregateFixture(maseruRecords()...)

		resp, err := f.uc.Execute(context.Background(), dto.AggregateCreditHistoryRequest{
			BorrowerID:    testutil.BorrowerAtLeribe,
			NationalID:    testutil.NationalID,
			InstitutionID: testutil.InstitutionLeribe,
		})

		require.NoError(t, err)
		require.NotNil(t, resp.Profile)
		assert.Equal(t, "LERIBE", resp.Profile.LocationCode)
		assert.Equal(t, 300, resp.Profile.AggregatedCreditScore)
	})

	t.Run("no records yields no profile", func(t *testing.T) {
		f := newAggregateFixture()

		resp, err := f.uc.Execute(context.Background(), req)

		require.NoError(t, err)
		assert.Nil(t, resp.Profile)
		assert.Empty(t, f.profiles.savedProfiles)
		assert.Empty(t, f.publisher.publishedEvents)
	})

	t.Run("national id taken from the borrower when omitted", func(t *testing.T) {
		f := newAggregateFixture(maseruRecords()...)

		resp, err := f.uc.Execute(context.Background(), dto.AggregateCreditHistoryRequest{BorrowerID: testutil.BorrowerAtMaseru})

		require.NoError(t, err)
		require.NotNil(t, resp.Profile)
		assert.Equal(t, testutil.NationalID, resp.Profile.NationalID)
		assert.Equal(t, 750, resp.Profile.AggregatedCreditScore)
	})

	t.Run("foreign national id is refused", func(t *testing.T) {
		f := newAggregateFixture(maseruRecords()...)

		_, err := f.uc.Execute(context.Background(), dto.AggregateCreditHistoryRequest{
			BorrowerID: testutil.BorrowerAtMaseru,
			NationalID: "9999999999999",
		})

		assert.ErrorIs(t, err, model.ErrNationalIDMismatch)
		assert.Empty(t, f.profiles.savedProfiles)
		assert.Empty(t, f.publisher.publishedEvents)
	})

	t.Run("unknown borrower", func(t *testing.T) {
		f := newAggregateFixture()
		_, err := f.uc.Execute(context.Background(), dto.AggregateCreditHistoryRequest{BorrowerID: "missing", NationalID: testutil.NationalID})
		assert.ErrorIs(t, err, model.ErrBorrowerNotFound)
	})

	t.Run("unknown institution", func(t *testing.T) {
		f := newAggregateFixture()
		r := req
		r.InstitutionID = "missing"
		_, err := f.uc.Execute(context.Background(), r)
		assert.ErrorIs(t, err, model.ErrInstitutionNotFound)
	})

	t.Run("concurrent modification surfaces", func(t *testing.T) {
		f := newAggregateFixture(maseruRecords()...)
		f.profiles.saveFunc = func(context.Context, model.ConsolidatedCreditProfile) error {
			return model.ErrConcurrentModification
		}

		_, err := f.uc.Execute(context.Background(), req)
		assert.ErrorIs(t, err, model.ErrConcurrentModification)
	})

	t.Run("unresolvable location", func(t *testing.T) {
		nowhere := model.ReconstructInstitution("inst-x", "Mobile Lenders", "REG-9", "Johannesburg", true, fixtureTime)
		f := newAggregateFixture(maseruRecords()...)
		f.uc = usecase.NewAggregateCreditHistoryUseCase(
			newMockBorrowerRepository(borrowerMaseru),
			newMockInstitutionRepository(nowhere),
			f.records, f.profiles, f.publisher,
			service.NewCreditAggregator(), testLogger(),
		)

		_, err := f.uc.Execute(context.Background(), dto.AggregateCreditHistoryRequest{
			BorrowerID:    testutil.BorrowerAtMaseru,
			NationalID:    testutil.NationalID,
			InstitutionID: "inst-x",
		})
		assert.ErrorIs(t, err, valueobject.ErrLocationUnresolved)
	})
}
