package model_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/letsema/mfi/internal/domain/model"
	"github.com/letsema/mfi/internal/domain/valueobject"
	"github.com/letsema/mfi/pkg/testutil"
)

func TestNewInstitution(t *testing.T) {
	now := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	t.Run("trims and activates", func(t *testing.T) {
		inst, err := model.NewInstitution("  Quthing Credit ", "REG-7", " Moyeni, Quthing ", now)
		require.NoError(t, err)
		assert.NotEmpty(t, inst.ID())
		assert.Equal(t, "Quthing Credit", inst.Name())
		assert.Equal(t, "Moyeni, Quthing", inst.Location())
		assert.True(t, inst.IsActive())
		assert.Equal(t, now, inst.CreatedAt())
	})

	tests := []struct {
		name     string
		instName string
		reg      string
		location string
		want     error
	}{
		{"no name", "", "REG-7", "Quthing", model.ErrInvalidRegistration},
		{"no registration number", "Quthing Credit", "", "Quthing", model.ErrInvalidRegistration},
		{"unknown district", "Quthing Credit", "REG-7", "Durban", valueobject.ErrLocationUnresolved},
		{"two districts", "Quthing Credit", "REG-7", "Maseru and Leribe", valueobject.ErrLocationUnresolved},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := model.NewInstitution(tt.instName, tt.reg, tt.location, now)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestNewBorrower(t *testing.T) {
	now := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	b, err := model.NewBorrower(" "+testutil.NationalID+" ", "Palesa Mokoena", "+26650000001", testutil.InstitutionMaseru, "", now)
	require.NoError(t, err)
	assert.NotEmpty(t, b.ID())
	assert.Equal(t, testutil.NationalID, b.NationalID())
	assert.Equal(t, testutil.InstitutionMaseru, b.InstitutionID())

	t.Run("validation", func(t *testing.T) {
		_, err := model.NewBorrower("", "Palesa", "", testutil.InstitutionMaseru, "", now)
		assert.ErrorIs(t, err, model.ErrInvalidRegistration)

		_, err = model.NewBorrower(strings.Repeat("1", 21), "Palesa", "", testutil.InstitutionMaseru, "", now)
		assert.ErrorIs(t, err, model.ErrInvalidRegistration)

		_, err = model.NewBorrower(testutil.NationalID, " ", "", testutil.InstitutionMaseru, "", now)
		assert.ErrorIs(t, err, model.ErrInvalidRegistration)

		_, err = model.NewBorrower(testutil.NationalID, "Palesa", "", "", "", now)
		assert.ErrorIs(t, err, model.ErrInvalidRegistration)
	})
}
