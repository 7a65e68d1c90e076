package auth

import (
	"slices"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the JWT claims issued to MFI staff and borrowers. Staff tokens
// carry InstitutionID; borrower tokens carry BorrowerID.
type Claims struct {
	jwt.RegisteredClaims
	UserID        string   `json:"user_id"`
	InstitutionID string   `json:"institution_id,omitempty"`
	BorrowerID    string   `json:"borrower_id,omitempty"`
	Roles         []string `json:"roles"`
}

// HasRole reports whether role is among the granted roles.
func (c Claims) HasRole(role string) bool {
	return slices.Contains(c.Roles, role)
}

// Role names as issued by the identity provider.
const (
	RoleLoanOfficer   = "LOAN_OFFICER"
	RoleMFIAdmin      = "MFI_ADMIN"
	RoleCreditAnalyst = "CREDIT_ANALYST"
	RoleSystemAdmin   = "SYSTEM_ADMIN"
	RoleBorrower      = "BORROWER"
)

// StaffRoles are the roles that act on behalf of an institution.
var StaffRoles = []string{RoleLoanOfficer, RoleMFIAdmin, RoleCreditAnalyst, RoleSystemAdmin}
