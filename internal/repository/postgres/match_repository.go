package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/gdugdh24/sublease-matcher-backend/internal/domain"
	"github.com/gdugdh24/sublease-matcher-backend/internal/repository"
)

type matchRepository struct {
	tx  *sqlx.Tx
	now func() time.Time
}

const matchColumns = `id, seeker_id, listing_id, status, score, matched_at`

func (r *matchRepository) Get(ctx context.Context, id domain.MatchID) (*domain.Match, error) {
	return r.getOne(ctx, `SELECT `+matchColumns+` FROM matches WHERE id = $1`, id)
}

func (r *matchRepository) ForPair(ctx context.Context, seekerID domain.SeekerID, listingID domain.ListingID) (*domain.Match, error) {
	return r.getOne(ctx, `SELECT `+matchColumns+` FROM matches WHERE seeker_id = $1 AND listing_id = $2`, seekerID, listingID)
}

// LockPair takes a transaction-scoped advisory lock keyed by the pair. Under
// READ COMMITTED the next statement after the lock sees rows committed by
// the transaction that held it.
func (r *matchRepository) LockPair(ctx context.Context, seekerID domain.SeekerID, listingID domain.ListingID) error {
	_, err := r.tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, pairLockKey(seekerID, listingID))
	return err
}

func pairLockKey(seekerID domain.SeekerID, listingID domain.ListingID) string {
	return string(seekerID) + ":" + string(listingID)
}

func (r *matchRepository) getOne(ctx context.Context, query string, args ...any) (*domain.Match, error) {
	var row matchRow
	if err := r.tx.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrMatchNotFound
		}
		return nil, err
	}
	m := row.toDomain()
	return &m, nil
}

// Upsert writes the pair in one statement. An existing MUTUAL row is never
// downgraded to PENDING and matched_at keeps its first value.
func (r *matchRepository) Upsert(
	ctx context.Context,
	seekerID domain.SeekerID,
	listingID domain.ListingID,
	status domain.MatchStatus,
	score *float64,
) (*domain.Match, error) {
	if _, err := domain.NewMatch(seekerID, listingID, status, score, r.now()); err != nil {
		return nil, err
	}

	var matchedAt *time.Time
	if status == domain.MatchMutual {
		at := r.now().UTC()
		matchedAt = &at
	}

	query := `
		INSERT INTO matches (id, seeker_id, listing_id, status, score, matched_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (seeker_id, listing_id) DO UPDATE SET
			status = CASE
				WHEN matches.status = 'MUTUAL' AND EXCLUDED.status = 'PENDING' THEN matches.status
				ELSE EXCLUDED.status
			END,
			score = COALESCE(EXCLUDED.score, matches.score),
			matched_at = COALESCE(matches.matched_at, EXCLUDED.matched_at)
		RETURNING ` + matchColumns

	var row matchRow
	err := r.tx.GetContext(ctx, &row, query,
		domain.MatchIDFor(seekerID, listingID), seekerID, listingID, status, score, matchedAt,
	)
	if err != nil {
		return nil, err
	}
	m := row.toDomain()
	return &m, nil
}

func (r *matchRepository) ForUser(ctx context.Context, userID domain.UserID, limit, offset int) (repository.Page[domain.Match], error) {
	where := `
		FROM matches m
		LEFT JOIN listings l ON l.id = m.listing_id
		WHERE m.seeker_id = $1 OR l.host_id = $2
	`
	seekerID, hostID := domain.SeekerIDFor(userID), domain.HostIDFor(userID)

	var total int
	if err := r.tx.GetContext(ctx, &total, `SELECT COUNT(*) `+where, seekerID, hostID); err != nil {
		return repository.Page[domain.Match]{}, err
	}

	var rows []matchRow
	query := `SELECT m.id, m.seeker_id, m.listing_id, m.status, m.score, m.matched_at ` + where + `
		ORDER BY m.id
		LIMIT $3 OFFSET $4`
	if err := r.tx.SelectContext(ctx, &rows, query, seekerID, hostID, limitArg(limit), offsetArg(offset)); err != nil {
		return repository.Page[domain.Match]{}, err
	}
	matches := make([]domain.Match, 0, len(rows))
	for _, row := range rows {
		matches = append(matches, row.toDomain())
	}
	return page(matches, total, limit, offset), nil
}
