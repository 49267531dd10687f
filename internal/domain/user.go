package domain

import (
	"strings"
	"time"
)

type UserAccount struct {
	ID                 UserID    `json:"id"`
	Email              string    `json:"email"`
	FirstName          string    `json:"first_name"`
	LastName           string    `json:"last_name"`
	Roles              []Role    `json:"roles"`
	ShowInSwipe        bool      `json:"show_in_swipe"`
	EmailNotifications bool      `json:"email_notifications_enabled"`
	CreatedAt          time.Time `json:"created_at"`
}

// NewUserAccount validates and normalizes u, returning a new value.
func NewUserAccount(u UserAccount) (*UserAccount, error) {
	if strings.TrimSpace(string(u.ID)) == "" {
		return nil, Validationf("user id is required")
	}
	email, err := ValidateEmail(u.Email)
	if err != nil {
		return nil, AsValidation(err)
	}
	u.Email = email
	u.FirstName = strings.TrimSpace(u.FirstName)
	u.LastName = strings.TrimSpace(u.LastName)

	if len(u.Roles) == 0 {
		return nil, Validationf("user must have at least one role")
	}
	seen := make(map[Role]struct{}, len(u.Roles))
	roles := make([]Role, 0, len(u.Roles))
	for _, r := range u.Roles {
		r = Role(strings.ToUpper(strings.TrimSpace(string(r))))
		if !r.Valid() {
			return nil, Validationf("unknown role %q", r)
		}
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		roles = append(roles, r)
	}
	u.Roles = roles
	return &u, nil
}

func (u *UserAccount) HasRole(role Role) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}
