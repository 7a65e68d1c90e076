package valueobject

import (
	"fmt"
	"strings"
)

// District is one of the ten administrative districts of Lesotho. The table
// is closed: locations that name none of them do not resolve.
type District struct {
	Code string
	Name string
}

var Districts = []District{
	{Code: "BERA", Name: "Berea"},
	{Code: "BUTHA", Name: "Butha-Buthe"},
	{Code: "LERIBE", Name: "Leribe"},
	{Code: "MAFETENG", Name: "Mafeteng"},
	{Code: "MASERU", Name: "Maseru"},
	{Code: "MOHALES", Name: "Mohale's Hoek"},
	{Code: "MOKHOTLONG", Name: "Mokhotlong"},
	{Code: "QACHA", Name: "Qacha's Nek"},
	{Code: "QUTHING", Name: "Quthing"},
	{Code: "THABA", Name: "Thaba-Tseka"},
}

// ResolveDistrict finds the district whose name occurs in location,
// ignoring case. A location naming no district, or more than one, fails
// with ErrLocationUnresolved.
func ResolveDistrict(location string) (District, error) {
	haystack := strings.ToUpper(location)

	var matches []District
	for _, d := range Districts {
		if strings.Contains(haystack, strings.ToUpper(d.Name)) {
			matches = append(matches, d)
		}
	}

	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return District{}, fmt.Errorf("%w: %q matches no district", ErrLocationUnresolved, location)
	default:
		return District{}, fmt.Errorf("%w: %q matches %s and %s", ErrLocationUnresolved, location, matches[0].Name, matches[1].Name)
	}
}

// DistrictByCode looks a district up by its code.
func DistrictByCode(code string) (District, bool) {
	for _, d := range Districts {
		if d.Code == code {
			return d, true
		}
	}
	return District{}, false
}
