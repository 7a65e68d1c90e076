package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/letsema/mfi/internal/domain/valueobject"
)

// Institution is a microfinance institution. Its free-text location
// determines which district its borrowers' credit records are pooled in.
type Institution struct {
	id                 string
	name               string
	registrationNumber string
	location           string
	active             bool
	createdAt          time.Time
}

// NewInstitution registers an active institution. The location must name
// exactly one district, otherwise its borrowers could never be aggregated.
func NewInstitution(name, registrationNumber, location string, now time.Time) (Institution, error) {
	name = strings.TrimSpace(name)
	registrationNumber = strings.TrimSpace(registrationNumber)
	location = strings.TrimSpace(location)

	if name == "" {
		return Institution{}, fmt.Errorf("%w: institution name is required", ErrInvalidRegistration)
	}
	if registrationNumber == "" {
		return Institution{}, fmt.Errorf("%w: registration number is required", ErrInvalidRegistration)
	}
	if _, err := valueobject.ResolveDistrict(location); err != nil {
		return Institution{}, err
	}

	return Institution{
		id:                 uuid.New().String(),
		name:               name,
		registrationNumber: registrationNumber,
		location:           location,
		active:             true,
		createdAt:          now,
	}, nil
}

// ReconstructInstitution rebuilds an Institution from persistence.
func ReconstructInstitution(id, name, registrationNumber, location string, active bool, createdAt time.Time) Institution {
	return Institution{
		id:                 id,
		name:               name,
		registrationNumber: registrationNumber,
		location:           location,
		active:             active,
		createdAt:          createdAt,
	}
}

func (i Institution) ID() string                 { return i.id }
func (i Institution) Name() string               { return i.name }
func (i Institution) RegistrationNumber() string { return i.registrationNumber }
func (i Institution) Location() string           { return i.location }
func (i Institution) IsActive() bool             { return i.active }
func (i Institution) CreatedAt() time.Time       { return i.createdAt }
