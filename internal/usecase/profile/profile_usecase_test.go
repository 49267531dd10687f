package profile

import (
	"context"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gdugdh24/sublease-matcher-backend/internal/domain"
	"github.com/gdugdh24/sublease-matcher-backend/internal/repository/memory"
	"github.com/gdugdh24/sublease-matcher-backend/pkg/patch"
)

func date(month time.Month, day int) civil.Date {
	return civil.Date{Year: time.Now().Year() + 1, Month: month, Day: day}
}

func money(t *testing.T, s string) domain.Money {
	t.Helper()
	m, err := domain.ParseMoney(s)
	require.NoError(t, err)
	return m
}

func createCmd() *UpdateSeekerCmd {
	return &UpdateSeekerCmd{
		UserID:        "user-1",
		Bio:           patch.Set("CS grad student"),
		AvailableFrom: patch.Set(date(time.June, 1)),
		AvailableTo:   patch.Set(date(time.August, 31)),
		City:          patch.Set(" Austin "),
		Interests:     patch.Set([]string{"Hiking", "hiking", " cooking"}),
		ContactEmail:  patch.Set("seeker@example.com"),
	}
}

func TestUpsertForUserCreates(t *testing.T) {
	uc := NewProfileUseCase(memory.NewStore(), nil)
	ctx := context.Background()

	s, err := uc.UpsertForUser(ctx, createCmd())
	require.NoError(t, err)
	assert.Equal(t, domain.SeekerID("user-1"), s.ID)
	assert.Equal(t, "Austin", s.City)
	assert.Equal(t, []string{"cooking", "hiking"}, s.Interests)

	got, err := uc.GetByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, s, got)
}

func TestUpsertForUserCreateRequiresFields(t *testing.T) {
	uc := NewProfileUseCase(memory.NewStore(), nil)
	ctx := context.Background()

	cmd := createCmd()
	cmd.AvailableTo = patch.Absent[civil.Date]()
	_, err := uc.UpsertForUser(ctx, cmd)
	assert.ErrorIs(t, err, domain.ErrValidation)

	cmd = createCmd()
	cmd.Bio = patch.Null[string]()
	_, err = uc.UpsertForUser(ctx, cmd)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = uc.GetByUser(ctx, "user-1")
	assert.ErrorIs(t, err, domain.ErrSeekerNotFound)
}

func TestUpsertForUserMerges(t *testing.T) {
	uc := NewProfileUseCase(memory.NewStore(), nil)
	ctx := context.Background()
	_, err := uc.UpsertForUser(ctx, createCmd())
	require.NoError(t, err)

	s, err := uc.UpsertForUser(ctx, &UpdateSeekerCmd{
		UserID:       "user-1",
		BudgetMax:    patch.Set(money(t, "900")),
		ContactEmail: patch.Null[string](),
		City:         patch.Set("Dallas"),
	})
	require.NoError(t, err)
	assert.Equal(t, "CS grad student", s.Bio)
	assert.Equal(t, "Dallas", s.City)
	assert.Nil(t, s.ContactEmail)
	require.NotNil(t, s.BudgetMax)
	assert.Equal(t, "900.00", s.BudgetMax.String())
	require.NotNil(t, s.AvailableTo)

	s, err = uc.UpsertForUser(ctx, &UpdateSeekerCmd{UserID: "user-1", AvailableTo: patch.Null[civil.Date]()})
	require.NoError(t, err)
	assert.Nil(t, s.AvailableTo)
	require.NotNil(t, s.BudgetMax)
}

func TestUpsertForUserRejectsInvalidMerge(t *testing.T) {
	uc := NewProfileUseCase(memory.NewStore(), nil)
	ctx := context.Background()
	_, err := uc.UpsertForUser(ctx, createCmd())
	require.NoError(t, err)

	_, err = uc.UpsertForUser(ctx, &UpdateSeekerCmd{
		UserID:    "user-1",
		BudgetMin: patch.Set(money(t, "1000")),
		BudgetMax: patch.Set(money(t, "500")),
	})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = uc.UpsertForUser(ctx, &UpdateSeekerCmd{UserID: "user-1", AvailableFrom: patch.Null[civil.Date]()})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = uc.UpsertForUser(ctx, &UpdateSeekerCmd{UserID: "user-1", ContactEmail: patch.Set("not-an-email")})
	assert.ErrorIs(t, err, domain.ErrValidation)

	got, err := uc.GetByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Nil(t, got.BudgetMin)
	require.NotNil(t, got.ContactEmail)
	assert.Equal(t, "seeker@example.com", *got.ContactEmail)
}
