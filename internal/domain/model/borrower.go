package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const maxNationalIDLength = 20

// Borrower is a person registered with one institution. The same person
// holds a separate Borrower at every institution they use; NationalID ties
// them together.
type Borrower struct {
	id            string
	nationalID    string
	fullName      string
	phone         string
	institutionID string
	userID        string
	createdAt     time.Time
}

// NewBorrower registers a person with institutionID. userID, when set,
// links the borrower to a login.
func NewBorrower(nationalID, fullName, phone, institutionID, userID string, now time.Time) (Borrower, error) {
	nationalID = strings.TrimSpace(nationalID)
	fullName = strings.TrimSpace(fullName)

	switch {
	case nationalID == "":
		return Borrower{}, fmt.Errorf("%w: national id is required", ErrInvalidRegistration)
	case len(nationalID) > maxNationalIDLength:
		return Borrower{}, fmt.Errorf("%w: national id longer than %d characters", ErrInvalidRegistration, maxNationalIDLength)
	case fullName == "":
		return Borrower{}, fmt.Errorf("%w: full name is required", ErrInvalidRegistration)
	case institutionID == "":
		return Borrower{}, fmt.Errorf("%w: institution is required", ErrInvalidRegistration)
	}

	return Borrower{
		id:            uuid.New().String(),
		nationalID:    nationalID,
		fullName:      fullName,
		phone:         strings.TrimSpace(phone),
		institutionID: institutionID,
		userID:        userID,
		createdAt:     now,
	}, nil
}

// ReconstructBorrower rebuilds a Borrower from persistence.
func ReconstructBorrower(id, nationalID, fullName, phone, institutionID, userID string, createdAt time.Time) Borrower {
	return Borrower{
		id:            id,
		nationalID:    nationalID,
		fullName:      fullName,
		phone:         phone,
		institutionID: institutionID,
		userID:        userID,
		createdAt:     createdAt,
	}
}

func (b Borrower) ID() string         { return b.id }
func (b Borrower) NationalID() string { return b.nationalID }
func (b Borrower) FullName() string   { return b.fullName }
func (b Borrower) Phone() string      { return b.phone }

// InstitutionID is the borrower's home institution.
func (b Borrower) InstitutionID() string { return b.institutionID }
func (b Borrower) UserID() string        { return b.userID }
func (b Borrower) CreatedAt() time.Time  { return b.createdAt }
