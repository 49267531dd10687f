// Package repositorytest holds the contract every storage adapter must satisfy.
package repositorytest

import (
	"context"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gdugdh24/sublease-matcher-backend/internal/domain"
	"github.com/gdugdh24/sublease-matcher-backend/internal/repository"
)

// Run executes the suite. newUoW must return an empty store for every call.
func Run(t *testing.T, newUoW func(t *testing.T) repository.UnitOfWork) {
	t.Helper()

	t.Run("SeekerRoundTripAndSearch", func(t *testing.T) { testSeekers(t, newUoW(t)) })
	t.Run("ListingHostUniqueness", func(t *testing.T) { testListings(t, newUoW(t)) })
	t.Run("SwipeIdempotencyAndUndo", func(t *testing.T) { testSwipes(t, newUoW(t)) })
	t.Run("MatchUpsertIsMonotonic", func(t *testing.T) { testMatches(t, newUoW(t)) })
	t.Run("RollbackDiscardsWrites", func(t *testing.T) { testRollback(t, newUoW(t)) })
	t.Run("UserEmailIsUnique", func(t *testing.T) { testUsers(t, newUoW(t)) })
}

func inTx(t *testing.T, uow repository.UnitOfWork, fn func(tx repository.Tx)) {
	t.Helper()
	err := repository.WithinTx(context.Background(), uow, func(tx repository.Tx) error {
		fn(tx)
		return nil
	})
	require.NoError(t, err)
}

func date(year int, month time.Month, day int) civil.Date {
	return civil.Date{Year: year, Month: month, Day: day}
}

// Seeker builds a stored seeker fixture.
func Seeker(id string, city string, hidden bool) *domain.SeekerProfile {
	return &domain.SeekerProfile{
		ID:            domain.SeekerID(id),
		UserID:        domain.UserID(id),
		Bio:           "bio of " + id,
		AvailableFrom: date(time.Now().Year()+1, time.June, 1),
		City:          city,
		Interests:     []string{"music"},
		Hidden:        hidden,
	}
}

// Listing builds a stored listing fixture.
func Listing(id, hostID, city string, status domain.ListingStatus) *domain.Listing {
	email := hostID + "@example.com"
	return &domain.Listing{
		ID:           domain.ListingID(id),
		HostID:       domain.HostID(hostID),
		Title:        "Room " + id,
		City:         city,
		State:        "TX",
		Status:       status,
		ContactEmail: &email,
		Roommates:    []domain.RoommateProfile{},
	}
}

func testSeekers(t *testing.T, uow repository.UnitOfWork) {
	ctx := context.Background()
	inTx(t, uow, func(tx repository.Tx) {
		_, err := tx.Seekers().Get(ctx, "seeker-missing")
		assert.ErrorIs(t, err, domain.ErrSeekerNotFound)

		require.NoError(t, tx.Seekers().Upsert(ctx, Seeker("seeker-b", "Austin", false)))
		require.NoError(t, tx.Seekers().Upsert(ctx, Seeker("seeker-a", " austin", false)))
		require.NoError(t, tx.Seekers().Upsert(ctx, Seeker("seeker-c", "Austin", true)))
		require.NoError(t, tx.Seekers().Upsert(ctx, Seeker("seeker-d", "Dallas", false)))
	})

	inTx(t, uow, func(tx repository.Tx) {
		got, err := tx.Seekers().Get(ctx, "seeker-a")
		require.NoError(t, err)
		assert.Equal(t, domain.UserID("seeker-a"), got.UserID)
		assert.Equal(t, []string{"music"}, got.Interests)

		page, err := tx.Seekers().Search(ctx, repository.SeekerFilter{City: "AUSTIN"})
		require.NoError(t, err)
		require.Len(t, page.Items, 2)
		assert.Equal(t, domain.SeekerID("seeker-a"), page.Items[0].ID)
		assert.Equal(t, domain.SeekerID("seeker-b"), page.Items[1].ID)

		page, err = tx.Seekers().Search(ctx, repository.SeekerFilter{IncludeHidden: true, Limit: 2, Offset: 1})
		require.NoError(t, err)
		assert.Equal(t, 4, page.Total)
		require.Len(t, page.Items, 2)
		assert.Equal(t, domain.SeekerID("seeker-b"), page.Items[0].ID)
	})
}

func testListings(t *testing.T, uow repository.UnitOfWork) {
	ctx := context.Background()
	inTx(t, uow, func(tx repository.Tx) {
		_, err := tx.Listings().Get(ctx, "listing-missing")
		assert.ErrorIs(t, err, domain.ErrListingNotFound)

		l := Listing("listing-1", "host-1", "Austin", domain.ListingPublished)
		l.Roommates = []domain.RoommateProfile{{ID: "rm-1", Name: "Sam", Interests: []string{"chess"}}}
		l.RoommatesCount = 1
		require.NoError(t, tx.Listings().Upsert(ctx, l))
		require.NoError(t, tx.Listings().Upsert(ctx, Listing("listing-2", "host-2", "Austin", domain.ListingDraft)))
	})

	err := repository.WithinTx(ctx, uow, func(tx repository.Tx) error {
		return tx.Listings().Upsert(ctx, Listing("listing-3", "host-1", "Austin", domain.ListingDraft))
	})
	assert.ErrorIs(t, err, domain.ErrHostAlreadyHasListing)

	inTx(t, uow, func(tx repository.Tx) {
		got, err := tx.Listings().Get(ctx, "listing-1")
		require.NoError(t, err)
		require.Len(t, got.Roommates, 1)
		assert.Equal(t, "Sam", got.Roommates[0].Name)

		ids, err := tx.Hosts().ListingIDsForHost(ctx, "host-1")
		require.NoError(t, err)
		assert.Equal(t, []domain.ListingID{"listing-1"}, ids)

		ids, err = tx.Hosts().ListingIDsForHost(ctx, "host-9")
		require.NoError(t, err)
		assert.Empty(t, ids)

		page, err := tx.Listings().Search(ctx, repository.ListingFilter{City: "austin", Status: domain.ListingPublished})
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.Equal(t, domain.ListingID("listing-1"), page.Items[0].ID)

		_, err = tx.Listings().Get(ctx, "listing-3")
		assert.ErrorIs(t, err, domain.ErrListingNotFound)
	})
}

func testSwipes(t *testing.T, uow repository.UnitOfWork) {
	ctx := context.Background()
	t0 := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	swipe := func(id, user string, target domain.SwipeTarget, d domain.Decision, offset time.Duration) *domain.Swipe {
		return &domain.Swipe{ID: domain.SwipeID(id), UserID: domain.UserID(user), Target: target, Decision: d, CreatedAt: t0.Add(offset)}
	}

	inTx(t, uow, func(tx repository.Tx) {
		require.NoError(t, tx.Swipes().Append(ctx, swipe("s1", "u1", domain.ListingTarget("listing-1"), domain.DecisionLike, 0)))
		require.NoError(t, tx.Swipes().Append(ctx, swipe("s2", "u1", domain.ListingTarget("listing-2"), domain.DecisionPass, time.Second)))
		require.NoError(t, tx.Swipes().Append(ctx, swipe("s3", "u2", domain.SeekerTarget("u1"), domain.DecisionLike, 2*time.Second)))
	})

	err := repository.WithinTx(ctx, uow, func(tx repository.Tx) error {
		return tx.Swipes().Append(ctx, swipe("s4", "u1", domain.ListingTarget("listing-1"), domain.DecisionLike, 3*time.Second))
	})
	assert.ErrorIs(t, err, domain.ErrDuplicateSwipe)

	inTx(t, uow, func(tx repository.Tx) {
		got, err := tx.Swipes().GetByIdempotencyKey(ctx, "u1:listing-1:LIKE")
		require.NoError(t, err)
		assert.Equal(t, domain.SwipeID("s1"), got.ID)
		assert.Equal(t, domain.TargetListing, got.Target.Kind)

		_, err = tx.Swipes().GetByIdempotencyKey(ctx, "u1:listing-1:PASS")
		assert.ErrorIs(t, err, domain.ErrSwipeNotFound)

		latest, err := tx.Swipes().LatestForUser(ctx, "u1", 10)
		require.NoError(t, err)
		require.Len(t, latest, 2)
		assert.Equal(t, domain.SwipeID("s2"), latest[0].ID)

		undone, err := tx.Swipes().UndoLast(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, domain.SwipeID("s2"), undone.ID)

		undone, err = tx.Swipes().UndoLast(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, domain.SwipeID("s1"), undone.ID)

		_, err = tx.Swipes().UndoLast(ctx, "u1")
		assert.ErrorIs(t, err, domain.ErrSwipeNotFound)

		_, err = tx.Swipes().GetByIdempotencyKey(ctx, "u2:u1:LIKE")
		assert.NoError(t, err)
	})
}

func testMatches(t *testing.T, uow repository.UnitOfWork) {
	ctx := context.Background()
	low, high := 0.5, 0.8

	inTx(t, uow, func(tx repository.Tx) {
		require.NoError(t, tx.Seekers().Upsert(ctx, Seeker("seeker-1", "Austin", false)))
		require.NoError(t, tx.Listings().Upsert(ctx, Listing("listing-1", "host-1", "Austin", domain.ListingPublished)))

		_, err := tx.Matches().ForPair(ctx, "seeker-1", "listing-1")
		assert.ErrorIs(t, err, domain.ErrMatchNotFound)

		m, err := tx.Matches().Upsert(ctx, "seeker-1", "listing-1", domain.MatchPending, &low)
		require.NoError(t, err)
		assert.Equal(t, domain.MatchPending, m.Status)
		assert.Nil(t, m.MatchedAt)
		assert.Equal(t, domain.MatchIDFor("seeker-1", "listing-1"), m.ID)
	})

	var matchedAt time.Time
	inTx(t, uow, func(tx repository.Tx) {
		require.NoError(t, tx.Matches().LockPair(ctx, "seeker-1", "listing-1"))
		require.NoError(t, tx.Matches().LockPair(ctx, "seeker-1", "listing-1"))
		m, err := tx.Matches().Upsert(ctx, "seeker-1", "listing-1", domain.MatchMutual, &high)
		require.NoError(t, err)
		assert.Equal(t, domain.MatchMutual, m.Status)
		require.NotNil(t, m.MatchedAt)
		matchedAt = *m.MatchedAt
	})

	inTx(t, uow, func(tx repository.Tx) {
		m, err := tx.Matches().Upsert(ctx, "seeker-1", "listing-1", domain.MatchPending, &low)
		require.NoError(t, err)
		assert.Equal(t, domain.MatchMutual, m.Status)
		require.NotNil(t, m.MatchedAt)
		assert.True(t, matchedAt.Equal(*m.MatchedAt))

		m, err = tx.Matches().Upsert(ctx, "seeker-1", "listing-1", domain.MatchMutual, &high)
		require.NoError(t, err)
		assert.True(t, matchedAt.Equal(*m.MatchedAt))
	})

	inTx(t, uow, func(tx repository.Tx) {
		bySeeker, err := tx.Matches().ForUser(ctx, "seeker-1", 10, 0)
		require.NoError(t, err)
		assert.Len(t, bySeeker.Items, 1)

		byHost, err := tx.Matches().ForUser(ctx, "host-1", 10, 0)
		require.NoError(t, err)
		require.Len(t, byHost.Items, 1)

		got, err := tx.Matches().Get(ctx, byHost.Items[0].ID)
		require.NoError(t, err)
		assert.Equal(t, domain.ListingID("listing-1"), got.ListingID)

		none, err := tx.Matches().ForUser(ctx, "stranger", 10, 0)
		require.NoError(t, err)
		assert.Empty(t, none.Items)
	})
}

func testRollback(t *testing.T, uow repository.UnitOfWork) {
	ctx := context.Background()
	tx, err := uow.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.Seekers().Upsert(ctx, Seeker("seeker-r", "Austin", false)))
	require.NoError(t, tx.Rollback())
	require.NoError(t, tx.Rollback())

	inTx(t, uow, func(tx repository.Tx) {
		_, err := tx.Seekers().Get(ctx, "seeker-r")
		assert.ErrorIs(t, err, domain.ErrSeekerNotFound)
	})
}

func testUsers(t *testing.T, uow repository.UnitOfWork) {
	ctx := context.Background()
	inTx(t, uow, func(tx repository.Tx) {
		require.NoError(t, tx.Users().Upsert(ctx, &domain.UserAccount{ID: "u1", Email: "a@example.com", Roles: []domain.Role{domain.RoleSeeker}}))
	})

	err := repository.WithinTx(ctx, uow, func(tx repository.Tx) error {
		return tx.Users().Upsert(ctx, &domain.UserAccount{ID: "u2", Email: "A@example.com", Roles: []domain.Role{domain.RoleHost}})
	})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)

	inTx(t, uow, func(tx repository.Tx) {
		got, err := tx.Users().ByEmail(ctx, "a@example.com")
		require.NoError(t, err)
		assert.Equal(t, domain.UserID("u1"), got.ID)
		assert.Equal(t, []domain.Role{domain.RoleSeeker}, got.Roles)

		_, err = tx.Users().Get(ctx, "u2")
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})
}
