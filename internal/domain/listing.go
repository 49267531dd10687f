package domain

import (
	"strings"

	"cloud.google.com/go/civil"
)

type Listing struct {
	ID             ListingID         `json:"id"`
	HostID         HostID            `json:"host_id"`
	Title          string            `json:"title"`
	PricePerMonth  *Money            `json:"price_per_month"`
	City           string            `json:"city"`
	State          string            `json:"state"`
	AvailableFrom  *civil.Date       `json:"available_from"`
	AvailableTo    *civil.Date       `json:"available_to"`
	Status         ListingStatus     `json:"status"`
	ContactEmail   *string           `json:"contact_email"`
	Bio            *string           `json:"bio"`
	Roommates      []RoommateProfile `json:"roommates"`
	RoommatesCount int               `json:"roommates_count"`
	Photos         []Photo           `json:"photos"`
}

type RoommateProfile struct {
	ID             RoommateID `json:"id"`
	Name           string     `json:"name"`
	SleepingHabits *string    `json:"sleeping_habits"`
	Gender         *string    `json:"gender"`
	Pronouns       *string    `json:"pronouns"`
	Interests      []string   `json:"interests"`
	MajorMinor     *string    `json:"major_minor"`
}

// NewListing validates and normalizes l, returning a new value.
func NewListing(l Listing) (*Listing, error) {
	if strings.TrimSpace(string(l.ID)) == "" || strings.TrimSpace(string(l.HostID)) == "" {
		return nil, Validationf("listing id and host id are required")
	}
	l.Title = strings.TrimSpace(l.Title)
	l.City = strings.TrimSpace(l.City)

	if strings.TrimSpace(l.State) == "" {
		return nil, Validationf("state is required")
	}
	state, err := ValidateStateCode(l.State)
	if err != nil {
		return nil, AsValidation(err)
	}
	l.State = state

	email, err := normalizeOptionalEmail(l.ContactEmail)
	if err != nil {
		return nil, err
	}
	l.ContactEmail = email

	if l.AvailableFrom != nil || l.AvailableTo != nil {
		if l.AvailableFrom == nil {
			return nil, Validationf("available_from is required when available_to is set")
		}
		if err := ValidateAvailabilityDates(*l.AvailableFrom, l.AvailableTo); err != nil {
			return nil, AsValidation(err)
		}
	}

	if l.Status == "" {
		l.Status = ListingDraft
	}
	switch l.Status {
	case ListingDraft, ListingPublished, ListingUnlisted:
	default:
		return nil, Validationf("unknown listing status %q", l.Status)
	}

	if l.RoommatesCount < 0 {
		return nil, Validationf("roommates_count cannot be negative")
	}
	if l.RoommatesCount != len(l.Roommates) {
		return nil, Validationf("roommates_count (%d) must equal the number of roommates (%d)", l.RoommatesCount, len(l.Roommates))
	}
	roommates := make([]RoommateProfile, 0, len(l.Roommates))
	for _, r := range l.Roommates {
		r.Name = strings.TrimSpace(r.Name)
		if r.ID == "" {
			r.ID = NewRoommateID()
		}
		r.Interests = NormalizeInterests(r.Interests)
		roommates = append(roommates, r)
	}
	l.Roommates = roommates

	photos, err := normalizePhotos(l.Photos)
	if err != nil {
		return nil, err
	}
	l.Photos = photos
	return &l, nil
}

// Publish moves a complete listing to PUBLISHED. On failure the status is
// left untouched.
func (l *Listing) Publish() error {
	if l.Status == ListingPublished {
		return Validationf("listing is already published")
	}
	if strings.TrimSpace(l.Title) == "" {
		return Validationf("title is required to publish")
	}
	if strings.TrimSpace(l.City) == "" {
		return Validationf("city is required to publish")
	}
	if strings.TrimSpace(l.State) == "" {
		return Validationf("state is required to publish")
	}
	if l.ContactEmail == nil {
		return Validationf("contact_email is required to publish")
	}
	email, err := ValidateEmail(*l.ContactEmail)
	if err != nil {
		return AsValidation(err)
	}
	state, err := ValidateStateCode(l.State)
	if err != nil {
		return AsValidation(err)
	}
	l.ContactEmail = &email
	l.State = state
	l.Status = ListingPublished
	return nil
}

// Unlist hides the listing from queues. Unlisting twice is a no-op.
func (l *Listing) Unlist() {
	l.Status = ListingUnlisted
}

func (l *Listing) IsPublished() bool {
	return l.Status == ListingPublished
}
