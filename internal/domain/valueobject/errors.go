package valueobject

import "errors"

var (
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrInvalidTerm             = errors.New("invalid term")
	ErrInvalidPurpose          = errors.New("invalid loan purpose")
	ErrLocationUnresolved      = errors.New("location unresolved")
)
