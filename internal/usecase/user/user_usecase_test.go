package user

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gdugdh24/sublease-matcher-backend/internal/domain"
	"github.com/gdugdh24/sublease-matcher-backend/internal/repository/memory"
	"github.com/gdugdh24/sublease-matcher-backend/pkg/patch"
)

func newUseCase() *UserUseCase {
	uc := NewUserUseCase(memory.NewStore(), nil)
	uc.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return uc
}

func TestUpsertCreatesWithDefaults(t *testing.T) {
	uc := newUseCase()
	ctx := context.Background()

	u, err := uc.Upsert(ctx, &UpsertUserCmd{
		UserID: "user-1",
		Email:  patch.Set(" jo@example.com "),
		Roles:  patch.Set([]domain.Role{"seeker", "HOST", "Seeker"}),
	})
	require.NoError(t, err)
	assert.Equal(t, "jo@example.com", u.Email)
	assert.Equal(t, []domain.Role{domain.RoleSeeker, domain.RoleHost}, u.Roles)
	assert.True(t, u.ShowInSwipe)
	assert.True(t, u.EmailNotifications)
	assert.Equal(t, 2026, u.CreatedAt.Year())

	got, err := uc.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, u.Email, got.Email)
}

func TestUpsertRequiresEmailAndRoles(t *testing.T) {
	uc := newUseCase()
	ctx := context.Background()

	_, err := uc.Upsert(ctx, &UpsertUserCmd{UserID: "user-1", Roles: patch.Set([]domain.Role{domain.RoleHost})})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = uc.Upsert(ctx, &UpsertUserCmd{UserID: "user-1", Email: patch.Set("jo@example.com")})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = uc.Get(ctx, "user-1")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUpsertMergesSettings(t *testing.T) {
	uc := newUseCase()
	ctx := context.Background()
	_, err := uc.Upsert(ctx, &UpsertUserCmd{
		UserID:    "user-1",
		Email:     patch.Set("jo@example.com"),
		FirstName: patch.Set("Jo"),
		Roles:     patch.Set([]domain.Role{domain.RoleSeeker}),
	})
	require.NoError(t, err)

	u, err := uc.Upsert(ctx, &UpsertUserCmd{
		UserID:             "user-1",
		ShowInSwipe:        patch.Set(false),
		EmailNotifications: patch.Null[bool](),
	})
	require.NoError(t, err)
	assert.False(t, u.ShowInSwipe)
	assert.True(t, u.EmailNotifications)
	assert.Equal(t, "Jo", u.FirstName)

	_, err = uc.Upsert(ctx, &UpsertUserCmd{UserID: "user-1", Email: patch.Null[string]()})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestUpsertEmailConflict(t *testing.T) {
	uc := newUseCase()
	ctx := context.Background()
	for _, id := range []domain.UserID{"user-1", "user-2"} {
		_, err := uc.Upsert(ctx, &UpsertUserCmd{
			UserID: id,
			Email:  patch.Set(string(id) + "@example.com"),
			Roles:  patch.Set([]domain.Role{domain.RoleSeeker}),
		})
		require.NoError(t, err)
	}

	_, err := uc.Upsert(ctx, &UpsertUserCmd{UserID: "user-2", Email: patch.Set("USER-1@example.com")})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
	assert.ErrorIs(t, err, domain.ErrConflict)

	u, err := uc.Upsert(ctx, &UpsertUserCmd{UserID: "user-1", Email: patch.Set("user-1@example.com")})
	require.NoError(t, err)
	assert.Equal(t, domain.UserID("user-1"), u.ID)
}
