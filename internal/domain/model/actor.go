package model

// Actor is the authenticated caller of an operation, resolved once from the
// request credentials. The variants are InstitutionStaff and BorrowerUser.
type Actor interface {
	User() string
	actor()
}

// InstitutionStaff is an employee acting for one institution.
type InstitutionStaff struct {
	InstitutionID string
	UserID        string
}

func (s InstitutionStaff) User() string { return s.UserID }
func (InstitutionStaff) actor()         {}

// BorrowerUser is a borrower acting on their own behalf.
type BorrowerUser struct {
	BorrowerID string
	UserID     string
}

func (b BorrowerUser) User() string { return b.UserID }
func (BorrowerUser) actor()         {}

// ActingInstitution returns the institution an actor speaks for, if any.
func ActingInstitution(a Actor) (string, bool) {
	if s, ok := a.(InstitutionStaff); ok && s.InstitutionID != "" {
		return s.InstitutionID, true
	}
	return "", false
}
