package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/gdugdh24/sublease-matcher-backend/internal/domain"
)

type swipeRepository struct {
	tx *sqlx.Tx
}

const swipeColumns = `id, user_id, target_kind, target_id, decision, created_at`

func (r *swipeRepository) Append(ctx context.Context, swipe *domain.Swipe) error {
	query := `
		INSERT INTO swipes (id, user_id, target_kind, target_id, decision, idempotency_key, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.tx.ExecContext(ctx, query,
		swipe.ID, swipe.UserID, swipe.Target.Kind, swipe.Target.ID, swipe.Decision,
		swipe.IdempotencyKey(), swipe.CreatedAt.UTC(),
	)
	return mapUniqueViolation(err, map[string]error{"swipes_idempotency_key_key": domain.ErrDuplicateSwipe})
}

func (r *swipeRepository) GetByIdempotencyKey(ctx context.Context, key string) (*domain.Swipe, error) {
	var row swipeRow
	query := `SELECT ` + swipeColumns + ` FROM swipes WHERE idempotency_key = $1`
	if err := r.tx.GetContext(ctx, &row, query, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSwipeNotFound
		}
		return nil, err
	}
	s := row.toDomain()
	return &s, nil
}

func (r *swipeRepository) UndoLast(ctx context.Context, userID domain.UserID) (*domain.Swipe, error) {
	var row swipeRow
	query := `
		DELETE FROM swipes
		WHERE seq = (SELECT seq FROM swipes WHERE user_id = $1 ORDER BY seq DESC LIMIT 1)
		RETURNING ` + swipeColumns
	if err := r.tx.GetContext(ctx, &row, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSwipeNotFound
		}
		return nil, err
	}
	s := row.toDomain()
	return &s, nil
}

func (r *swipeRepository) LatestForUser(ctx context.Context, userID domain.UserID, limit int) ([]domain.Swipe, error) {
	var rows []swipeRow
	query := `SELECT ` + swipeColumns + ` FROM swipes WHERE user_id = $1 ORDER BY seq DESC LIMIT $2`
	if err := r.tx.SelectContext(ctx, &rows, query, userID, limitArg(limit)); err != nil {
		return nil, err
	}
	swipes := make([]domain.Swipe, 0, len(rows))
	for _, row := range rows {
		swipes = append(swipes, row.toDomain())
	}
	return swipes, nil
}
