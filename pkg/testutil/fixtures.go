package testutil

// Fixed identifiers for deterministic tests.
const (
	InstitutionMaseru  = "00000000-0000-0000-0000-00000000a001"
	InstitutionLeribe  = "00000000-0000-0000-0000-00000000a002"
	InstitutionMaseru2 = "00000000-0000-0000-0000-00000000a003"

	BorrowerAtMaseru  = "00000000-0000-0000-0000-00000000b001"
	BorrowerAtMaseru2 = "00000000-0000-0000-0000-00000000b002"
	BorrowerAtLeribe  = "00000000-0000-0000-0000-00000000b003"

	StaffUser    = "00000000-0000-0000-0000-00000000c001"
	BorrowerUser = "00000000-0000-0000-0000-00000000c002"

	NationalID = "0123456789012"
)
