package listing

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gdugdh24/sublease-matcher-backend/internal/domain"
	"github.com/gdugdh24/sublease-matcher-backend/internal/repository/memory"
	"github.com/gdugdh24/sublease-matcher-backend/pkg/patch"
)

func createCmd(host domain.HostID) *UpsertListingCmd {
	return &UpsertListingCmd{
		HostID:       host,
		Title:        patch.Set("Sunny room near campus"),
		City:         patch.Set("Austin"),
		State:        patch.Set("tx"),
		ContactEmail: patch.Set("host@example.com"),
	}
}

func TestUpsertMineCreatesDraft(t *testing.T) {
	uc := NewListingUseCase(memory.NewStore(), nil)
	ctx := context.Background()

	l, err := uc.UpsertMine(ctx, createCmd("host-1"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(l.ID), "listing-"))
	assert.Equal(t, domain.ListingDraft, l.Status)
	assert.Equal(t, "TX", l.State)

	mine, err := uc.GetMine(ctx, "host-1")
	require.NoError(t, err)
	assert.Equal(t, l.ID, mine.ID)

	got, err := uc.Get(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, l, got)
}

func TestUpsertMineCreateRequiresFields(t *testing.T) {
	uc := NewListingUseCase(memory.NewStore(), nil)

	cmd := createCmd("host-1")
	cmd.State = patch.Absent[string]()
	_, err := uc.UpsertMine(context.Background(), cmd)
	assert.ErrorIs(t, err, domain.ErrValidation)

	cmd = createCmd("host-1")
	cmd.Title = patch.Set("   ")
	_, err = uc.UpsertMine(context.Background(), cmd)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = uc.GetMine(context.Background(), "host-1")
	assert.ErrorIs(t, err, domain.ErrHostListingNotFound)
}

func TestUpsertMineMerges(t *testing.T) {
	uc := NewListingUseCase(memory.NewStore(), nil)
	ctx := context.Background()
	created, err := uc.UpsertMine(ctx, createCmd("host-1"))
	require.NoError(t, err)

	l, err := uc.UpsertMine(ctx, &UpsertListingCmd{
		HostID: "host-1",
		Roommates: patch.Set([]domain.RoommateProfile{
			{Name: "Sam", Interests: []string{"Chess"}},
			{Name: "Alex"},
		}),
		Bio: patch.Set("Quiet apartment"),
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, l.ID)
	assert.Equal(t, "Sunny room near campus", l.Title)
	assert.Equal(t, 2, l.RoommatesCount)
	require.Len(t, l.Roommates, 2)
	assert.NotEmpty(t, l.Roommates[0].ID)
	assert.Equal(t, []string{"chess"}, l.Roommates[0].Interests)

	l, err = uc.UpsertMine(ctx, &UpsertListingCmd{
		HostID:    "host-1",
		Roommates: patch.Set([]domain.RoommateProfile{}),
		Bio:       patch.Null[string](),
	})
	require.NoError(t, err)
	assert.Zero(t, l.RoommatesCount)
	assert.Empty(t, l.Roommates)
	assert.Nil(t, l.Bio)

	_, err = uc.UpsertMine(ctx, &UpsertListingCmd{HostID: "host-1", City: patch.Null[string]()})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = uc.UpsertMine(ctx, &UpsertListingCmd{HostID: "host-1", State: patch.Set("ZZ")})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestUpsertMineOwnership(t *testing.T) {
	uc := NewListingUseCase(memory.NewStore(), nil)
	ctx := context.Background()
	l, err := uc.UpsertMine(ctx, createCmd("host-1"))
	require.NoError(t, err)

	cmd := createCmd("host-2")
	cmd.ListingID = l.ID
	_, err = uc.UpsertMine(ctx, cmd)
	assert.ErrorIs(t, err, domain.ErrForeignListing)
	assert.ErrorIs(t, err, domain.ErrConflict)

	cmd = createCmd("host-1")
	cmd.ListingID = "listing-second"
	_, err = uc.UpsertMine(ctx, cmd)
	assert.ErrorIs(t, err, domain.ErrHostAlreadyHasListing)
}

func TestPublishAndUnlist(t *testing.T) {
	uc := NewListingUseCase(memory.NewStore(), nil)
	ctx := context.Background()
	cmd := createCmd("host-1")
	cmd.ContactEmail = patch.Absent[string]()
	l, err := uc.UpsertMine(ctx, cmd)
	require.NoError(t, err)

	_, err = uc.Publish(ctx, PublishListingCmd{ListingID: l.ID, HostID: "host-1"})
	assert.ErrorIs(t, err, domain.ErrValidation)
	got, err := uc.Get(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ListingDraft, got.Status)

	_, err = uc.UpsertMine(ctx, &UpsertListingCmd{HostID: "host-1", ContactEmail: patch.Set("host@example.com")})
	require.NoError(t, err)

	_, err = uc.Publish(ctx, PublishListingCmd{ListingID: l.ID, HostID: "host-2"})
	assert.ErrorIs(t, err, domain.ErrForeignListing)

	published, err := uc.Publish(ctx, PublishListingCmd{ListingID: l.ID, HostID: "host-1"})
	require.NoError(t, err)
	assert.Equal(t, domain.ListingPublished, published.Status)

	for i := 0; i < 2; i++ {
		unlisted, err := uc.Unlist(ctx, UnlistListingCmd{ListingID: l.ID, HostID: "host-1"})
		require.NoError(t, err)
		assert.Equal(t, domain.ListingUnlisted, unlisted.Status)
	}

	_, err = uc.Unlist(ctx, UnlistListingCmd{ListingID: "listing-missing", HostID: "host-1"})
	assert.ErrorIs(t, err, domain.ErrListingNotFound)
}

func TestUpsertMineKeepsEmailOnPublishedListing(t *testing.T) {
	uc := NewListingUseCase(memory.NewStore(), nil)
	ctx := context.Background()
	l, err := uc.UpsertMine(ctx, createCmd("host-1"))
	require.NoError(t, err)
	_, err = uc.Publish(ctx, PublishListingCmd{ListingID: l.ID, HostID: "host-1"})
	require.NoError(t, err)

	for _, email := range []patch.Field[string]{patch.Null[string](), patch.Set("   ")} {
		_, err = uc.UpsertMine(ctx, &UpsertListingCmd{HostID: "host-1", ContactEmail: email})
		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.ErrorContains(t, err, "contact_email")
	}

	got, err := uc.Get(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ListingPublished, got.Status)
	require.NotNil(t, got.ContactEmail)
	assert.Equal(t, "host@example.com", *got.ContactEmail)

	// Once unlisted the email may be cleared again.
	_, err = uc.Unlist(ctx, UnlistListingCmd{ListingID: l.ID, HostID: "host-1"})
	require.NoError(t, err)
	cleared, err := uc.UpsertMine(ctx, &UpsertListingCmd{HostID: "host-1", ContactEmail: patch.Null[string]()})
	require.NoError(t, err)
	assert.Nil(t, cleared.ContactEmail)
}
