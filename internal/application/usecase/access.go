package usecase

import (
	"fmt"

	"github.com/letsema/mfi/internal/domain/model"
)

// authorizeLoan lets staff of the lending institution and the borrower
// themselves act on a loan.
func authorizeLoan(actor model.Actor, loan model.Loan) error {
	switch a := actor.(type) {
	case model.InstitutionStaff:
		if a.InstitutionID == loan.InstitutionID() {
			return nil
		}
	case model.BorrowerUser:
		if a.BorrowerID == loan.BorrowerID() {
			return nil
		}
	}
	return fmt.Errorf("%w: loan %s", model.ErrAccessDenied, loan.ID())
}

// requireStaff returns the staff member when actor works for institutionID.
// An empty institutionID accepts staff of any institution.
func requireStaff(actor model.Actor, institutionID string) (model.InstitutionStaff, error) {
	staff, ok := actor.(model.InstitutionStaff)
	if !ok {
		return model.InstitutionStaff{}, fmt.Errorf("%w: institution staff only", model.ErrAccessDenied)
	}
	if institutionID != "" && staff.InstitutionID != institutionID {
		return model.InstitutionStaff{}, fmt.Errorf("%w: not staff of institution %s", model.ErrAccessDenied, institutionID)
	}
	return staff, nil
}
