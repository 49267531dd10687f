package user

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/gdugdh24/sublease-matcher-backend/internal/domain"
	"github.com/gdugdh24/sublease-matcher-backend/internal/repository"
	"github.com/gdugdh24/sublease-matcher-backend/pkg/patch"
)

type UserUseCase struct {
	uow    repository.UnitOfWork
	logger *zap.Logger
	now    func() time.Time
}

func NewUserUseCase(uow repository.UnitOfWork, logger *zap.Logger) *UserUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserUseCase{
		uow:    uow,
		logger: logger,
		now:    time.Now,
	}
}

// UpsertUserCmd updates the caller's account. Email and roles are required
// the first time.
type UpsertUserCmd struct {
	UserID             domain.UserID              `json:"-"`
	Email              patch.Field[string]        `json:"email"`
	FirstName          patch.Field[string]        `json:"first_name"`
	LastName           patch.Field[string]        `json:"last_name"`
	Roles              patch.Field[[]domain.Role] `json:"roles"`
	ShowInSwipe        patch.Field[bool]          `json:"show_in_swipe"`
	EmailNotifications patch.Field[bool]          `json:"email_notifications_enabled"`
}

func (uc *UserUseCase) Get(ctx context.Context, id domain.UserID) (*domain.UserAccount, error) {
	var user *domain.UserAccount
	err := repository.WithinTx(ctx, uc.uow, func(tx repository.Tx) error {
		var err error
		user, err = tx.Users().Get(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Upsert creates or updates the account. Emails are unique across accounts.
func (uc *UserUseCase) Upsert(ctx context.Context, cmd *UpsertUserCmd) (*domain.UserAccount, error) {
	if cmd.UserID == "" {
		return nil, domain.Validationf("user id is required")
	}
	var saved *domain.UserAccount

	err := repository.WithinTx(ctx, uc.uow, func(tx repository.Tx) error {
		current, err := tx.Users().Get(ctx, cmd.UserID)
		switch {
		case errors.Is(err, domain.ErrUserNotFound):
			current = &domain.UserAccount{
				ID:                 cmd.UserID,
				ShowInSwipe:        true,
				EmailNotifications: true,
				CreatedAt:          uc.now().UTC(),
			}
		case err != nil:
			return err
		}

		next, err := applyUserFields(*current, cmd)
		if err != nil {
			return err
		}
		validated, err := domain.NewUserAccount(next)
		if err != nil {
			return err
		}

		owner, err := tx.Users().ByEmail(ctx, validated.Email)
		switch {
		case err == nil && owner.ID != validated.ID:
			return domain.ErrEmailTaken
		case err != nil && !errors.Is(err, domain.ErrUserNotFound):
			return err
		}

		if err := tx.Users().Upsert(ctx, validated); err != nil {
			return err
		}
		saved = validated
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("user saved", zap.String("user_id", string(saved.ID)))
	return saved, nil
}

func applyUserFields(u domain.UserAccount, cmd *UpsertUserCmd) (domain.UserAccount, error) {
	if cmd.Email.IsPresent() {
		email, ok := cmd.Email.Value()
		if !ok {
			return domain.UserAccount{}, domain.Validationf("email cannot be cleared")
		}
		u.Email = email
	}
	if cmd.Roles.IsPresent() {
		u.Roles, _ = cmd.Roles.Value()
	}
	if cmd.FirstName.IsPresent() {
		u.FirstName, _ = cmd.FirstName.Value()
	}
	if cmd.LastName.IsPresent() {
		u.LastName, _ = cmd.LastName.Value()
	}
	if v, ok := cmd.ShowInSwipe.Value(); ok {
		u.ShowInSwipe = v
	}
	if v, ok := cmd.EmailNotifications.Value(); ok {
		u.EmailNotifications = v
	}
	return u, nil
}
