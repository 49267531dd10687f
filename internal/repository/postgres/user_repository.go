package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/gdugdh24/sublease-matcher-backend/internal/domain"
)

type userRepository struct {
	tx *sqlx.Tx
}

const userColumns = `id, email, first_name, last_name, roles, show_in_swipe, email_notifications, created_at`

func (r *userRepository) Get(ctx context.Context, id domain.UserID) (*domain.UserAccount, error) {
	var row userRow
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	if err := r.tx.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return row.toDomain(), nil
}

func (r *userRepository) ByEmail(ctx context.Context, email string) (*domain.UserAccount, error) {
	var row userRow
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1)`
	if err := r.tx.GetContext(ctx, &row, query, strings.TrimSpace(email)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return row.toDomain(), nil
}

func (r *userRepository) Upsert(ctx context.Context, user *domain.UserAccount) error {
	roles := make([]string, 0, len(user.Roles))
	for _, role := range user.Roles {
		roles = append(roles, string(role))
	}
	query := `
		INSERT INTO users (id, email, first_name, last_name, roles, show_in_swipe, email_notifications, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			email = EXCLUDED.email,
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			roles = EXCLUDED.roles,
			show_in_swipe = EXCLUDED.show_in_swipe,
			email_notifications = EXCLUDED.email_notifications
	`
	createdAt := user.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := r.tx.ExecContext(ctx, query,
		user.ID, user.Email, user.FirstName, user.LastName, pq.Array(roles),
		user.ShowInSwipe, user.EmailNotifications, createdAt,
	)
	return mapUniqueViolation(err, map[string]error{"users_email_key": domain.ErrEmailTaken})
}
