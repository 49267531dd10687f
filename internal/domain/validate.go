package domain

import (
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

// availabilityWindowYears bounds how far ahead availability dates may be set.
const availabilityWindowYears = 10

var usStates = map[string]struct{}{
	"AL": {}, "AK": {}, "AZ": {}, "AR": {}, "CA": {}, "CO": {}, "CT": {}, "DE": {}, "FL": {}, "GA": {},
	"HI": {}, "ID": {}, "IL": {}, "IN": {}, "IA": {}, "KS": {}, "KY": {}, "LA": {}, "ME": {}, "MD": {},
	"MA": {}, "MI": {}, "MN": {}, "MS": {}, "MO": {}, "MT": {}, "NE": {}, "NV": {}, "NH": {}, "NJ": {},
	"NM": {}, "NY": {}, "NC": {}, "ND": {}, "OH": {}, "OK": {}, "OR": {}, "PA": {}, "RI": {}, "SC": {},
	"SD": {}, "TN": {}, "TX": {}, "UT": {}, "VT": {}, "VA": {}, "WA": {}, "WV": {}, "WI": {}, "WY": {},
	"DC": {},
}

// ValidateEmail trims raw and checks it has a local part, an @ and a dotted domain.
func ValidateEmail(raw string) (string, error) {
	email := strings.TrimSpace(raw)
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		return "", fmt.Errorf("%w: %q", ErrInvalidEmail, raw)
	}
	if !strings.Contains(email[at+1:], ".") {
		return "", fmt.Errorf("%w: %q", ErrInvalidEmail, raw)
	}
	return email, nil
}

// ValidateStateCode returns the upper-cased two letter code of a US state or DC.
func ValidateStateCode(raw string) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(raw))
	if len(code) != 2 {
		return "", fmt.Errorf("%w: %q", ErrInvalidState, raw)
	}
	if _, ok := usStates[code]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidState, raw)
	}
	return code, nil
}

// ValidateAvailabilityDates checks both dates fall in the next ten calendar
// years and that to, when given, does not precede from.
func ValidateAvailabilityDates(from civil.Date, to *civil.Date) error {
	return validateAvailabilityDates(from, to, civil.DateOf(time.Now()))
}

func validateAvailabilityDates(from civil.Date, to *civil.Date, today civil.Date) error {
	minYear, maxYear := today.Year, today.Year+availabilityWindowYears
	if from.Year < minYear || from.Year > maxYear {
		return fmt.Errorf("%w: available_from %s not in [%d, %d]", ErrDateOutOfRange, from, minYear, maxYear)
	}
	if to == nil {
		return nil
	}
	if to.Before(from) {
		return fmt.Errorf("%w: %s < %s", ErrDateOrder, *to, from)
	}
	if to.Year < minYear || to.Year > maxYear {
		return fmt.Errorf("%w: available_to %s not in [%d, %d]", ErrDateOutOfRange, *to, minYear, maxYear)
	}
	return nil
}

func normalizeOptionalEmail(email *string) (*string, error) {
	if email == nil {
		return nil, nil
	}
	valid, err := ValidateEmail(*email)
	if err != nil {
		return nil, AsValidation(err)
	}
	return &valid, nil
}
