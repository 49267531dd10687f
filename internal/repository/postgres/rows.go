package postgres

import (
	"database/sql"
	"time"

	"cloud.google.com/go/civil"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/gdugdh24/sublease-matcher-backend/internal/domain"
)

type userRow struct {
	ID                 string         `db:"id"`
	Email              string         `db:"email"`
	FirstName          string         `db:"first_name"`
	LastName           string         `db:"last_name"`
	Roles              pq.StringArray `db:"roles"`
	ShowInSwipe        bool           `db:"show_in_swipe"`
	EmailNotifications bool           `db:"email_notifications"`
	CreatedAt          time.Time      `db:"created_at"`
}

func (r userRow) toDomain() *domain.UserAccount {
	roles := make([]domain.Role, 0, len(r.Roles))
	for _, role := range r.Roles {
		roles = append(roles, domain.Role(role))
	}
	return &domain.UserAccount{
		ID:                 domain.UserID(r.ID),
		Email:              r.Email,
		FirstName:          r.FirstName,
		LastName:           r.LastName,
		Roles:              roles,
		ShowInSwipe:        r.ShowInSwipe,
		EmailNotifications: r.EmailNotifications,
		CreatedAt:          r.CreatedAt,
	}
}

type seekerRow struct {
	ID            string              `db:"id"`
	UserID        string              `db:"user_id"`
	Bio           string              `db:"bio"`
	AvailableFrom time.Time           `db:"available_from"`
	AvailableTo   sql.NullTime        `db:"available_to"`
	BudgetMin     decimal.NullDecimal `db:"budget_min"`
	BudgetMax     decimal.NullDecimal `db:"budget_max"`
	City          string              `db:"city"`
	Interests     pq.StringArray      `db:"interests"`
	ContactEmail  sql.NullString      `db:"contact_email"`
	Hidden        bool                `db:"hidden"`
}

func (r seekerRow) toDomain() domain.SeekerProfile {
	return domain.SeekerProfile{
		ID:            domain.SeekerID(r.ID),
		UserID:        domain.UserID(r.UserID),
		Bio:           r.Bio,
		AvailableFrom: civil.DateOf(r.AvailableFrom),
		AvailableTo:   datePtr(r.AvailableTo),
		BudgetMin:     moneyPtr(r.BudgetMin),
		BudgetMax:     moneyPtr(r.BudgetMax),
		City:          r.City,
		Interests:     []string(r.Interests),
		ContactEmail:  stringPtr(r.ContactEmail),
		Hidden:        r.Hidden,
	}
}

type listingRow struct {
	ID             string              `db:"id"`
	HostID         string              `db:"host_id"`
	Title          string              `db:"title"`
	PricePerMonth  decimal.NullDecimal `db:"price_per_month"`
	City           string              `db:"city"`
	State          string              `db:"state"`
	AvailableFrom  sql.NullTime        `db:"available_from"`
	AvailableTo    sql.NullTime        `db:"available_to"`
	Status         string              `db:"status"`
	ContactEmail   sql.NullString      `db:"contact_email"`
	Bio            sql.NullString      `db:"bio"`
	RoommatesCount int                 `db:"roommates_count"`
}

func (r listingRow) toDomain() domain.Listing {
	return domain.Listing{
		ID:             domain.ListingID(r.ID),
		HostID:         domain.HostID(r.HostID),
		Title:          r.Title,
		PricePerMonth:  moneyPtr(r.PricePerMonth),
		City:           r.City,
		State:          r.State,
		AvailableFrom:  datePtr(r.AvailableFrom),
		AvailableTo:    datePtr(r.AvailableTo),
		Status:         domain.ListingStatus(r.Status),
		ContactEmail:   stringPtr(r.ContactEmail),
		Bio:            stringPtr(r.Bio),
		RoommatesCount: r.RoommatesCount,
	}
}

type roommateRow struct {
	ID             string         `db:"id"`
	ListingID      string         `db:"listing_id"`
	Name           string         `db:"name"`
	SleepingHabits sql.NullString `db:"sleeping_habits"`
	Gender         sql.NullString `db:"gender"`
	Pronouns       sql.NullString `db:"pronouns"`
	Interests      pq.StringArray `db:"interests"`
	MajorMinor     sql.NullString `db:"major_minor"`
}

func (r roommateRow) toDomain() domain.RoommateProfile {
	return domain.RoommateProfile{
		ID:             domain.RoommateID(r.ID),
		Name:           r.Name,
		SleepingHabits: stringPtr(r.SleepingHabits),
		Gender:         stringPtr(r.Gender),
		Pronouns:       stringPtr(r.Pronouns),
		Interests:      []string(r.Interests),
		MajorMinor:     stringPtr(r.MajorMinor),
	}
}

type photoRow struct {
	OwnerID  string `db:"owner_id"`
	Position int    `db:"position"`
	URL      string `db:"url"`
}

type swipeRow struct {
	ID         string    `db:"id"`
	UserID     string    `db:"user_id"`
	TargetKind string    `db:"target_kind"`
	TargetID   string    `db:"target_id"`
	Decision   string    `db:"decision"`
	CreatedAt  time.Time `db:"created_at"`
}

func (r swipeRow) toDomain() domain.Swipe {
	return domain.Swipe{
		ID:        domain.SwipeID(r.ID),
		UserID:    domain.UserID(r.UserID),
		Target:    domain.SwipeTarget{Kind: domain.TargetKind(r.TargetKind), ID: r.TargetID},
		Decision:  domain.Decision(r.Decision),
		CreatedAt: r.CreatedAt.UTC(),
	}
}

type matchRow struct {
	ID        string          `db:"id"`
	SeekerID  string          `db:"seeker_id"`
	ListingID string          `db:"listing_id"`
	Status    string          `db:"status"`
	Score     sql.NullFloat64 `db:"score"`
	MatchedAt sql.NullTime    `db:"matched_at"`
}

func (r matchRow) toDomain() domain.Match {
	m := domain.Match{
		ID:        domain.MatchID(r.ID),
		SeekerID:  domain.SeekerID(r.SeekerID),
		ListingID: domain.ListingID(r.ListingID),
		Status:    domain.MatchStatus(r.Status),
	}
	if r.Score.Valid {
		s := r.Score.Float64
		m.Score = &s
	}
	if r.MatchedAt.Valid {
		at := r.MatchedAt.Time.UTC()
		m.MatchedAt = &at
	}
	return m
}

func datePtr(t sql.NullTime) *civil.Date {
	if !t.Valid {
		return nil
	}
	d := civil.DateOf(t.Time)
	return &d
}

func moneyPtr(d decimal.NullDecimal) *domain.Money {
	if !d.Valid {
		return nil
	}
	m, err := domain.NewMoney(d.Decimal)
	if err != nil {
		return nil
	}
	return &m
}

func stringPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

func dateArg(d *civil.Date) any {
	if d == nil {
		return nil
	}
	return d.String()
}

func moneyArg(m *domain.Money) decimal.NullDecimal {
	if m == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: m.Decimal(), Valid: true}
}

func stringArg(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
