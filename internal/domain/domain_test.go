package domain

import (
	"errors"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nextYear(month time.Month, day int) civil.Date {
	return civil.Date{Year: time.Now().Year() + 1, Month: month, Day: day}
}

func money(t *testing.T, s string) *Money {
	t.Helper()
	m, err := ParseMoney(s)
	require.NoError(t, err)
	return &m
}

func strPtr(s string) *string { return &s }

func TestMoney(t *testing.T) {
	t.Run("rounds half up to cents", func(t *testing.T) {
		m, err := NewMoney(decimal.RequireFromString("10.005"))
		require.NoError(t, err)
		assert.Equal(t, "10.01", m.String())
	})

	t.Run("always shows two decimals", func(t *testing.T) {
		m, err := ParseMoney("650")
		require.NoError(t, err)
		assert.Equal(t, "650.00", m.String())
	})

	t.Run("rejects negative amounts", func(t *testing.T) {
		_, err := ParseMoney("-1")
		assert.ErrorIs(t, err, ErrNegativeMoney)
	})

	t.Run("json accepts numbers and strings", func(t *testing.T) {
		var a, b Money
		require.NoError(t, a.UnmarshalJSON([]byte(`700.5`)))
		require.NoError(t, b.UnmarshalJSON([]byte(`"700.50"`)))
		assert.True(t, a.Equal(b))

		out, err := a.MarshalJSON()
		require.NoError(t, err)
		assert.JSONEq(t, `"700.50"`, string(out))
	})
}

func TestValidateEmail(t *testing.T) {
	email, err := ValidateEmail("  ana@example.com ")
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", email)

	for _, bad := range []string{"", "ana", "@example.com", "ana@example", "ana@"} {
		_, err := ValidateEmail(bad)
		assert.ErrorIs(t, err, ErrInvalidEmail, bad)
	}
}

func TestValidateStateCode(t *testing.T) {
	code, err := ValidateStateCode(" ca ")
	require.NoError(t, err)
	assert.Equal(t, "CA", code)

	code, err = ValidateStateCode("dc")
	require.NoError(t, err)
	assert.Equal(t, "DC", code)

	for _, bad := range []string{"", "C", "CAL", "XX", "PR"} {
		_, err := ValidateStateCode(bad)
		assert.ErrorIs(t, err, ErrInvalidState, bad)
	}
}

func TestValidateAvailabilityDates(t *testing.T) {
	today := civil.Date{Year: 2026, Month: time.March, Day: 1}
	from := civil.Date{Year: 2026, Month: time.June, Day: 1}
	to := civil.Date{Year: 2026, Month: time.August, Day: 31}

	assert.NoError(t, validateAvailabilityDates(from, nil, today))
	assert.NoError(t, validateAvailabilityDates(from, &to, today))
	assert.NoError(t, validateAvailabilityDates(from, &from, today))

	before := civil.Date{Year: 2026, Month: time.May, Day: 1}
	assert.ErrorIs(t, validateAvailabilityDates(from, &before, today), ErrDateOrder)

	past := civil.Date{Year: 2025, Month: time.December, Day: 31}
	assert.ErrorIs(t, validateAvailabilityDates(past, nil, today), ErrDateOutOfRange)

	far := civil.Date{Year: 2037, Month: time.January, Day: 1}
	assert.ErrorIs(t, validateAvailabilityDates(from, &far, today), ErrDateOutOfRange)

	edge := civil.Date{Year: 2036, Month: time.December, Day: 31}
	assert.NoError(t, validateAvailabilityDates(from, &edge, today))
}

func TestErrorKinds(t *testing.T) {
	assert.ErrorIs(t, ErrDuplicateSwipe, ErrValidation)
	assert.ErrorIs(t, ErrSeekerNotFound, ErrNotFound)
	assert.ErrorIs(t, ErrForeignListing, ErrConflict)
	assert.NotErrorIs(t, ErrSeekerNotFound, ErrValidation)

	wrapped := AsValidation(ErrInvalidEmail)
	assert.ErrorIs(t, wrapped, ErrValidation)
	assert.ErrorIs(t, wrapped, ErrInvalidEmail)

	assert.Same(t, ErrListingNotFound, AsValidation(ErrListingNotFound))

	plain := errors.New("boom")
	assert.False(t, HasKind(plain))
	assert.True(t, HasKind(Conflictf("x %d", 1)))
}

func TestNewSeekerProfile(t *testing.T) {
	base := SeekerProfile{
		ID:            "user-1",
		UserID:        "user-1",
		Bio:           "grad student",
		AvailableFrom: nextYear(time.June, 1),
	}

	t.Run("normalizes interests", func(t *testing.T) {
		s := base
		s.Interests = []string{" Coding", "coding", "", "MUSIC "}
		got, err := NewSeekerProfile(s)
		require.NoError(t, err)
		assert.Equal(t, []string{"coding", "music"}, got.Interests)
	})

	t.Run("rejects min above max", func(t *testing.T) {
		s := base
		s.BudgetMin = money(t, "1000")
		s.BudgetMax = money(t, "500")
		_, err := NewSeekerProfile(s)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("requires available_from", func(t *testing.T) {
		s := base
		s.AvailableFrom = civil.Date{}
		_, err := NewSeekerProfile(s)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("validates contact email", func(t *testing.T) {
		s := base
		s.ContactEmail = strPtr("nope")
		_, err := NewSeekerProfile(s)
		assert.ErrorIs(t, err, ErrValidation)
		assert.ErrorIs(t, err, ErrInvalidEmail)

		s.ContactEmail = strPtr(" ana@example.com ")
		got, err := NewSeekerProfile(s)
		require.NoError(t, err)
		assert.Equal(t, "ana@example.com", *got.ContactEmail)
	})

	t.Run("does not mutate the input", func(t *testing.T) {
		s := base
		s.City = "  Austin "
		got, err := NewSeekerProfile(s)
		require.NoError(t, err)
		assert.Equal(t, "Austin", got.City)
		assert.Equal(t, "  Austin ", s.City)
	})
}

func validListing() Listing {
	from := nextYear(time.June, 1)
	return Listing{
		ID:            "listing-1",
		HostID:        "host-1",
		Title:         "Sunny room",
		City:          "Austin",
		State:         "tx",
		AvailableFrom: &from,
	}
}

func TestNewListing(t *testing.T) {
	t.Run("defaults to draft and normalizes state", func(t *testing.T) {
		l, err := NewListing(validListing())
		require.NoError(t, err)
		assert.Equal(t, ListingDraft, l.Status)
		assert.Equal(t, "TX", l.State)
	})

	t.Run("requires state", func(t *testing.T) {
		in := validListing()
		in.State = " "
		_, err := NewListing(in)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("roommates count must match", func(t *testing.T) {
		in := validListing()
		in.Roommates = []RoommateProfile{{Name: "Sam"}}
		in.RoommatesCount = 2
		_, err := NewListing(in)
		assert.ErrorIs(t, err, ErrValidation)

		in.RoommatesCount = 1
		l, err := NewListing(in)
		require.NoError(t, err)
		assert.NotEmpty(t, l.Roommates[0].ID)
	})

	t.Run("negative roommates count", func(t *testing.T) {
		in := validListing()
		in.RoommatesCount = -1
		_, err := NewListing(in)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("available_to without available_from", func(t *testing.T) {
		in := validListing()
		to := nextYear(time.July, 1)
		in.AvailableFrom = nil
		in.AvailableTo = &to
		_, err := NewListing(in)
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestListingPublish(t *testing.T) {
	t.Run("missing email keeps draft", func(t *testing.T) {
		l, err := NewListing(validListing())
		require.NoError(t, err)

		err = l.Publish()
		assert.ErrorIs(t, err, ErrValidation)
		assert.Equal(t, ListingDraft, l.Status)
	})

	t.Run("publishes a complete listing once", func(t *testing.T) {
		in := validListing()
		in.ContactEmail = strPtr("host@example.com")
		l, err := NewListing(in)
		require.NoError(t, err)

		require.NoError(t, l.Publish())
		assert.True(t, l.IsPublished())

		err = l.Publish()
		assert.ErrorIs(t, err, ErrValidation)
		assert.Equal(t, ListingPublished, l.Status)
	})

	t.Run("unlisted can be republished", func(t *testing.T) {
		in := validListing()
		in.ContactEmail = strPtr("host@example.com")
		in.Status = ListingUnlisted
		l, err := NewListing(in)
		require.NoError(t, err)
		require.NoError(t, l.Publish())
	})

	t.Run("unlist is idempotent", func(t *testing.T) {
		l, err := NewListing(validListing())
		require.NoError(t, err)
		l.Unlist()
		l.Unlist()
		assert.Equal(t, ListingUnlisted, l.Status)
	})
}

func TestParseDecision(t *testing.T) {
	d, err := ParseDecision("  LiKe ")
	require.NoError(t, err)
	assert.Equal(t, DecisionLike, d)

	d, err = ParseDecision("pass")
	require.NoError(t, err)
	assert.Equal(t, DecisionPass, d)

	_, err = ParseDecision("maybe")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestParseSwipeTarget(t *testing.T) {
	target, err := ParseSwipeTarget("", "listing-1")
	require.NoError(t, err)
	assert.Equal(t, ListingTarget("listing-1"), target)

	target, err = ParseSwipeTarget("", "seeker-9")
	require.NoError(t, err)
	assert.Equal(t, TargetSeeker, target.Kind)

	target, err = ParseSwipeTarget("Seeker", "user-42")
	require.NoError(t, err)
	assert.Equal(t, SeekerTarget("user-42"), target)

	_, err = ParseSwipeTarget("", "user-42")
	assert.ErrorIs(t, err, ErrValidation)
	assert.ErrorIs(t, err, ErrInvalidTarget)

	_, err = ParseSwipeTarget("host", "listing-1")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = ParseSwipeTarget("listing", "  ")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestIdempotencyKey(t *testing.T) {
	s := Swipe{UserID: "u1", Target: ListingTarget("listing-1"), Decision: DecisionLike}
	assert.Equal(t, "u1:listing-1:LIKE", s.IdempotencyKey())
}

func TestMatchApply(t *testing.T) {
	score := 0.8
	t0 := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	m, err := NewMatch("seeker-1", "listing-1", MatchPending, &score, t0)
	require.NoError(t, err)
	assert.Equal(t, MatchPending, m.Status)
	assert.Nil(t, m.MatchedAt)
	assert.Equal(t, MatchIDFor("seeker-1", "listing-1"), m.ID)

	require.NoError(t, m.Apply(MatchMutual, &score, t0))
	require.NotNil(t, m.MatchedAt)
	assert.Equal(t, t0, *m.MatchedAt)

	fresh := 0.9
	require.NoError(t, m.Apply(MatchMutual, &fresh, t0.Add(time.Hour)))
	assert.Equal(t, t0, *m.MatchedAt)
	assert.Equal(t, 0.9, *m.Score)

	require.NoError(t, m.Apply(MatchPending, nil, t0.Add(2*time.Hour)))
	assert.Equal(t, MatchMutual, m.Status)

	bad := 1.5
	assert.ErrorIs(t, m.Apply(MatchMutual, &bad, t0), ErrValidation)
}

func TestMatchIDIsDeterministic(t *testing.T) {
	assert.Equal(t, MatchIDFor("a", "b"), MatchIDFor("a", "b"))
	assert.NotEqual(t, MatchIDFor("a", "b"), MatchIDFor("b", "a"))
}

func TestNewUserAccount(t *testing.T) {
	u, err := NewUserAccount(UserAccount{ID: "u1", Email: " u@x.io ", Roles: []Role{"seeker", RoleSeeker, RoleHost}})
	require.NoError(t, err)
	assert.Equal(t, "u@x.io", u.Email)
	assert.Equal(t, []Role{RoleSeeker, RoleHost}, u.Roles)
	assert.True(t, u.HasRole(RoleHost))

	_, err = NewUserAccount(UserAccount{ID: "u1", Email: "u@x.io"})
	assert.ErrorIs(t, err, ErrValidation)
}
