package usecase_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/letsema/mfi/internal/application/dto"
	"github.com/letsema/mfi/internal/application/usecase"
	"github.com/letsema/mfi/internal/domain/event"
	"github.com/letsema/mfi/internal/domain/model"
	"github.com/letsema/mfi/pkg/testutil"
)

func TestRegisterBorrower_Execute(t *testing.T) {
	closed := model.ReconstructInstitution("inst-closed", "Closed Lenders", "REG-099", "Maseru", false, fixtureTime)

	newUC := func(borrowers *mockBorrowerRepository, publisher *mockEventPublisher) *usecase.RegisterBorrowerUseCase {
		return usecase.NewRegisterBorrowerUseCase(
			borrowers,
			newMockInstitutionRepository(maseruInst, leribeInst, closed),
			publisher, testLogger(),
		)
	}
	req := func(actor model.Actor, nationalID string) dto.RegisterBorrowerRequest {
		return dto.RegisterBorrowerRequest{
			Actor:      actor,
			NationalID: nationalID,
			FullName:   "Thabo Letsie",
			Phone:      "+26658000000",
		}
	}

	t.Run("registers at the staff member's institution", func(t *testing.T) {
		borrowers := newMockBorrowerRepository()
		publisher := &mockEventPublisher{}

		resp, err := newUC(borrowers, publisher).Execute(context.Background(), req(leribeStaff, "0555555555555"))

		require.NoError(t, err)
		assert.Equal(t, testutil.InstitutionLeribe, resp.InstitutionID)
		assert.Equal(t, "0555555555555", resp.NationalID)
		require.Len(t, borrowers.saved, 1)
		assert.Equal(t, []string{event.TypeBorrowerRegistered}, publisher.eventTypes())
	})

	t.Run("same person at another institution is allowed", func(t *testing.T) {
		borrowers := newMockBorrowerRepository(borrowerMaseru)

		resp, err := newUC(borrowers, &mockEventPublisher{}).Execute(context.Background(), req(leribeStaff, testutil.NationalID))

		require.NoError(t, err)
		assert.Equal(t, testutil.NationalID, resp.NationalID)
	})

	t.Run("duplicate national id at the same institution", func(t *testing.T) {
		borrowers := newMockBorrowerRepository(borrowerMaseru)
		publisher := &mockEventPublisher{}

		_, err := newUC(borrowers, publisher).Execute(context.Background(), req(maseruStaff, testutil.NationalID))

		assert.ErrorIs(t, err, model.ErrBorrowerExists)
		assert.Empty(t, borrowers.saved)
		assert.Empty(t, publisher.publishedEvents)
	})

	t.Run("concurrent duplicate caught by the store", func(t *testing.T) {
		borrowers := newMockBorrowerRepository()
		borrowers.saveErr = fmt.Errorf("%w: national id 0555555555555", model.ErrBorrowerExists)

		_, err := newUC(borrowers, &mockEventPublisher{}).Execute(context.Background(), req(maseruStaff, "0555555555555"))

		assert.ErrorIs(t, err, model.ErrBorrowerExists)
	})

	t.Run("borrowers cannot register others", func(t *testing.T) {
		_, err := newUC(newMockBorrowerRepository(), &mockEventPublisher{}).Execute(context.Background(), req(borrowerMe, "0555555555555"))
		assert.ErrorIs(t, err, model.ErrAccessDenied)
	})

	t.Run("inactive institution", func(t *testing.T) {
		staff := model.InstitutionStaff{InstitutionID: "inst-closed", UserID: testutil.StaffUser}
		_, err := newUC(newMockBorrowerRepository(), &mockEventPublisher{}).Execute(context.Background(), req(staff, "0555555555555"))
		assert.ErrorIs(t, err, model.ErrInstitutionInactive)
	})

	t.Run("missing national id", func(t *testing.T) {
		_, err := newUC(newMockBorrowerRepository(), &mockEventPublisher{}).Execute(context.Background(), req(maseruStaff, ""))
		assert.ErrorIs(t, err, model.ErrInvalidRegistration)
	})
}
