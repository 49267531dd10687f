package domain

import (
	"sort"
	"strings"

	"cloud.google.com/go/civil"
)

// SeekerProfile describes someone looking for a sublease.
type SeekerProfile struct {
	ID            SeekerID    `json:"id"`
	UserID        UserID      `json:"user_id"`
	Bio           string      `json:"bio"`
	AvailableFrom civil.Date  `json:"available_from"`
	AvailableTo   *civil.Date `json:"available_to"`
	BudgetMin     *Money      `json:"budget_min"`
	BudgetMax     *Money      `json:"budget_max"`
	City          string      `json:"city"`
	Interests     []string    `json:"interests"`
	ContactEmail  *string     `json:"contact_email"`
	Hidden        bool        `json:"hidden"`
	Photos        []Photo     `json:"photos"`
}

// Photo is an image owned by a seeker profile or a listing.
type Photo struct {
	URL      string `json:"url"`
	Position int    `json:"position"`
}

// NewSeekerProfile validates and normalizes s, returning a new value.
func NewSeekerProfile(s SeekerProfile) (*SeekerProfile, error) {
	if strings.TrimSpace(string(s.ID)) == "" || strings.TrimSpace(string(s.UserID)) == "" {
		return nil, Validationf("seeker id and user id are required")
	}
	if s.AvailableFrom == (civil.Date{}) {
		return nil, Validationf("available_from is required")
	}
	if !s.AvailableFrom.IsValid() || (s.AvailableTo != nil && !s.AvailableTo.IsValid()) {
		return nil, Validationf("availability dates must be valid calendar dates")
	}
	if err := ValidateAvailabilityDates(s.AvailableFrom, s.AvailableTo); err != nil {
		return nil, AsValidation(err)
	}
	if s.BudgetMin != nil && s.BudgetMax != nil && s.BudgetMin.GreaterThan(*s.BudgetMax) {
		return nil, Validationf("budget_min (%s) cannot exceed budget_max (%s)", s.BudgetMin, s.BudgetMax)
	}
	email, err := normalizeOptionalEmail(s.ContactEmail)
	if err != nil {
		return nil, err
	}
	photos, err := normalizePhotos(s.Photos)
	if err != nil {
		return nil, err
	}

	s.ContactEmail = email
	s.City = strings.TrimSpace(s.City)
	s.Interests = NormalizeInterests(s.Interests)
	s.Photos = photos
	return &s, nil
}

// Publishable reports whether the profile may appear in host queues.
func (s *SeekerProfile) Publishable() bool {
	return !s.Hidden
}

// NormalizeInterests lower-cases and trims each tag, drops blanks and
// duplicates, and returns the result sorted.
func NormalizeInterests(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, tag := range in {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}

func normalizePhotos(in []Photo) ([]Photo, error) {
	out := make([]Photo, 0, len(in))
	for i, p := range in {
		url := strings.TrimSpace(p.URL)
		if url == "" {
			return nil, Validationf("photo %d has an empty url", i)
		}
		out = append(out, Photo{URL: url, Position: i})
	}
	return out, nil
}
