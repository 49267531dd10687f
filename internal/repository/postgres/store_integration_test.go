//go:build integration

package postgres

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gdugdh24/sublease-matcher-backend/internal/domain"
	"github.com/gdugdh24/sublease-matcher-backend/internal/repository"
	"github.com/gdugdh24/sublease-matcher-backend/internal/repository/repositorytest"
	"github.com/gdugdh24/sublease-matcher-backend/internal/usecase/matchengine"
	"github.com/gdugdh24/sublease-matcher-backend/internal/usecase/swipe"
)

// Run with: TEST_DATABASE_URL=postgres://... go test -tags integration ./internal/repository/postgres
func TestStoreCompliance(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL is not set")
	}
	db, err := sqlx.Connect("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repositorytest.Run(t, func(t *testing.T) repository.UnitOfWork {
		store := NewStore(db)
		require.NoError(t, store.Migrate(context.Background()))
		_, err := db.Exec(`TRUNCATE users, seekers, seeker_photos, listings, listing_roommates, listing_photos, swipes, matches`)
		require.NoError(t, err)
		return store
	})
}

func TestConcurrentLikesFormMutualMatch(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL is not set")
	}
	db, err := sqlx.Connect("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	store := NewStore(db)
	require.NoError(t, store.Migrate(ctx))
	uc := swipe.NewSwipeUseCase(store, matchengine.New(), nil, nil, nil)

	for round := 0; round < 25; round++ {
		_, err := db.Exec(`TRUNCATE users, seekers, seeker_photos, listings, listing_roommates, listing_photos, swipes, matches`)
		require.NoError(t, err)
		require.NoError(t, repository.WithinTx(ctx, store, func(tx repository.Tx) error {
			if err := tx.Seekers().Upsert(ctx, repositorytest.Seeker("seeker-1", "Austin", false)); err != nil {
				return err
			}
			return tx.Listings().Upsert(ctx, repositorytest.Listing("listing-1", "host-1", "Austin", domain.ListingPublished))
		}))

		cmds := []swipe.SwipeCmd{
			{UserID: "seeker-1", Target: domain.ListingTarget("listing-1"), Decision: "like"},
			{UserID: "host-1", Target: domain.SeekerTarget("seeker-1"), Decision: "like"},
		}
		start := make(chan struct{})
		errs := make([]error, len(cmds))
		var wg sync.WaitGroup
		for i, cmd := range cmds {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				_, errs[i] = uc.Record(ctx, cmd)
			}()
		}
		close(start)
		wg.Wait()
		for _, err := range errs {
			require.NoError(t, err)
		}

		require.NoError(t, repository.WithinTx(ctx, store, func(tx repository.Tx) error {
			m, err := tx.Matches().ForPair(ctx, "seeker-1", "listing-1")
			if err != nil {
				return err
			}
			assert.Equal(t, domain.MatchMutual, m.Status, "round %d", round)
			assert.NotNil(t, m.MatchedAt, "round %d", round)
			return nil
		}))
	}
}
