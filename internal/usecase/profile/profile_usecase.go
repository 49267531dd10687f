package profile

import (
	"context"
	"errors"
	"strings"

	"cloud.google.com/go/civil"
	"go.uber.org/zap"

	"github.com/gdugdh24/sublease-matcher-backend/internal/domain"
	"github.com/gdugdh24/sublease-matcher-backend/internal/repository"
	"github.com/gdugdh24/sublease-matcher-backend/pkg/patch"
)

// ProfileUseCase manages seeker profiles. A user owns at most one, keyed by
// the user id.
type ProfileUseCase struct {
	uow    repository.UnitOfWork
	logger *zap.Logger
}

func NewProfileUseCase(uow repository.UnitOfWork, logger *zap.Logger) *ProfileUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileUseCase{
		uow:    uow,
		logger: logger,
	}
}

// UpdateSeekerCmd is a partial update of the caller's seeker profile. Absent
// fields are left alone; null clears optional fields.
type UpdateSeekerCmd struct {
	UserID        domain.UserID             `json:"-"`
	Bio           patch.Field[string]       `json:"bio"`
	AvailableFrom patch.Field[civil.Date]   `json:"available_from"`
	AvailableTo   patch.Field[civil.Date]   `json:"available_to"`
	BudgetMin     patch.Field[domain.Money] `json:"budget_min"`
	BudgetMax     patch.Field[domain.Money] `json:"budget_max"`
	City          patch.Field[string]       `json:"city"`
	Interests     patch.Field[[]string]     `json:"interests"`
	ContactEmail  patch.Field[string]       `json:"contact_email"`
	Hidden        patch.Field[bool]         `json:"hidden"`
	PhotoURLs     patch.Field[[]string]     `json:"photo_urls"`
}

// GetByUser returns the seeker profile owned by userID.
func (uc *ProfileUseCase) GetByUser(ctx context.Context, userID domain.UserID) (*domain.SeekerProfile, error) {
	var seeker *domain.SeekerProfile
	err := repository.WithinTx(ctx, uc.uow, func(tx repository.Tx) error {
		var err error
		seeker, err = tx.Seekers().Get(ctx, domain.SeekerIDFor(userID))
		return err
	})
	if err != nil {
		return nil, err
	}
	return seeker, nil
}

// UpsertForUser creates the profile on first call and merges present fields
// afterwards. The result is validated as a whole before it is saved.
func (uc *ProfileUseCase) UpsertForUser(ctx context.Context, cmd *UpdateSeekerCmd) (*domain.SeekerProfile, error) {
	if cmd.UserID == "" {
		return nil, domain.Validationf("user id is required")
	}
	seekerID := domain.SeekerIDFor(cmd.UserID)
	var saved *domain.SeekerProfile
	created := false

	err := repository.WithinTx(ctx, uc.uow, func(tx repository.Tx) error {
		var next domain.SeekerProfile
		current, err := tx.Seekers().Get(ctx, seekerID)
		switch {
		case errors.Is(err, domain.ErrSeekerNotFound):
			next, err = newSeeker(seekerID, cmd)
			created = true
		case err != nil:
			return err
		default:
			next, err = mergeSeeker(*current, cmd)
		}
		if err != nil {
			return err
		}

		validated, err := domain.NewSeekerProfile(next)
		if err != nil {
			return err
		}
		if err := tx.Seekers().Upsert(ctx, validated); err != nil {
			return err
		}
		saved = validated
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("seeker profile saved",
		zap.String("seeker_id", string(saved.ID)),
		zap.Bool("created", created),
	)
	return saved, nil
}

func newSeeker(id domain.SeekerID, cmd *UpdateSeekerCmd) (domain.SeekerProfile, error) {
	bio, ok := cmd.Bio.Value()
	if !ok {
		return domain.SeekerProfile{}, domain.Validationf("bio is required to create a seeker profile")
	}
	from, ok := cmd.AvailableFrom.Value()
	if !ok {
		return domain.SeekerProfile{}, domain.Validationf("available_from is required to create a seeker profile")
	}
	if _, ok := cmd.AvailableTo.Value(); !ok {
		return domain.SeekerProfile{}, domain.Validationf("available_to is required to create a seeker profile")
	}

	s := domain.SeekerProfile{
		ID:            id,
		UserID:        cmd.UserID,
		Bio:           bio,
		AvailableFrom: from,
	}
	return applySeekerFields(s, cmd), nil
}

func mergeSeeker(current domain.SeekerProfile, cmd *UpdateSeekerCmd) (domain.SeekerProfile, error) {
	if cmd.Bio.IsPresent() {
		current.Bio, _ = cmd.Bio.Value()
	}
	if cmd.AvailableFrom.IsPresent() {
		from, ok := cmd.AvailableFrom.Value()
		if !ok {
			return domain.SeekerProfile{}, domain.Validationf("available_from cannot be cleared")
		}
		current.AvailableFrom = from
	}
	return applySeekerFields(current, cmd), nil
}

// applySeekerFields copies the optional fields shared by create and merge.
func applySeekerFields(s domain.SeekerProfile, cmd *UpdateSeekerCmd) domain.SeekerProfile {
	patch.Apply(cmd.AvailableTo, &s.AvailableTo)
	patch.Apply(cmd.BudgetMin, &s.BudgetMin)
	patch.Apply(cmd.BudgetMax, &s.BudgetMax)

	if cmd.City.IsPresent() {
		s.City, _ = cmd.City.Value()
	}
	if cmd.Interests.IsPresent() {
		s.Interests, _ = cmd.Interests.Value()
	}
	if cmd.Hidden.IsPresent() {
		s.Hidden, _ = cmd.Hidden.Value()
	}
	if cmd.ContactEmail.IsPresent() {
		s.ContactEmail = nil
		if email, ok := cmd.ContactEmail.Value(); ok && strings.TrimSpace(email) != "" {
			s.ContactEmail = &email
		}
	}
	if cmd.PhotoURLs.IsPresent() {
		urls, _ := cmd.PhotoURLs.Value()
		s.Photos = make([]domain.Photo, 0, len(urls))
		for i, u := range urls {
			s.Photos = append(s.Photos, domain.Photo{URL: u, Position: i})
		}
	}
	return s
}
