package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/gdugdh24/sublease-matcher-backend/internal/domain"
	"github.com/gdugdh24/sublease-matcher-backend/internal/repository"
)

// profileRepository stores seeker profiles and their photos.
type profileRepository struct {
	tx *sqlx.Tx
}

const seekerColumns = `id, user_id, bio, available_from, available_to, budget_min, budget_max,
	city, interests, contact_email, hidden`

const seekerFilter = `($1::text = '' OR LOWER(TRIM(city)) = LOWER(TRIM($1::text))) AND ($2::boolean OR NOT hidden)`

func (r *profileRepository) Get(ctx context.Context, id domain.SeekerID) (*domain.SeekerProfile, error) {
	var row seekerRow
	query := `SELECT ` + seekerColumns + ` FROM seekers WHERE id = $1`
	if err := r.tx.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSeekerNotFound
		}
		return nil, err
	}
	seekers, err := r.withPhotos(ctx, []seekerRow{row})
	if err != nil {
		return nil, err
	}
	return &seekers[0], nil
}

func (r *profileRepository) Upsert(ctx context.Context, seeker *domain.SeekerProfile) error {
	query := `
		INSERT INTO seekers (
			id, user_id, bio, available_from, available_to, budget_min, budget_max,
			city, interests, contact_email, hidden
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			user_id = EXCLUDED.user_id,
			bio = EXCLUDED.bio,
			available_from = EXCLUDED.available_from,
			available_to = EXCLUDED.available_to,
			budget_min = EXCLUDED.budget_min,
			budget_max = EXCLUDED.budget_max,
			city = EXCLUDED.city,
			interests = EXCLUDED.interests,
			contact_email = EXCLUDED.contact_email,
			hidden = EXCLUDED.hidden
	`
	_, err := r.tx.ExecContext(ctx, query,
		seeker.ID, seeker.UserID, seeker.Bio, seeker.AvailableFrom.String(), dateArg(seeker.AvailableTo),
		moneyArg(seeker.BudgetMin), moneyArg(seeker.BudgetMax),
		seeker.City, pq.Array(seeker.Interests), stringArg(seeker.ContactEmail), seeker.Hidden,
	)
	if err != nil {
		return mapUniqueViolation(err, map[string]error{
			"seekers_user_id_key": domain.Conflictf("user %s already has a seeker profile", seeker.UserID),
		})
	}

	if _, err := r.tx.ExecContext(ctx, `DELETE FROM seeker_photos WHERE seeker_id = $1`, seeker.ID); err != nil {
		return fmt.Errorf("failed to clear seeker photos: %w", err)
	}
	for _, p := range seeker.Photos {
		_, err := r.tx.ExecContext(ctx,
			`INSERT INTO seeker_photos (seeker_id, position, url) VALUES ($1, $2, $3)`,
			seeker.ID, p.Position, p.URL,
		)
		if err != nil {
			return fmt.Errorf("failed to save seeker photo: %w", err)
		}
	}
	return nil
}

func (r *profileRepository) Search(ctx context.Context, f repository.SeekerFilter) (repository.Page[domain.SeekerProfile], error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM seekers WHERE ` + seekerFilter
	if err := r.tx.GetContext(ctx, &total, countQuery, f.City, f.IncludeHidden); err != nil {
		return repository.Page[domain.SeekerProfile]{}, err
	}

	var rows []seekerRow
	query := `SELECT ` + seekerColumns + ` FROM seekers WHERE ` + seekerFilter + `
		ORDER BY id
		LIMIT $3 OFFSET $4`
	if err := r.tx.SelectContext(ctx, &rows, query, f.City, f.IncludeHidden, limitArg(f.Limit), offsetArg(f.Offset)); err != nil {
		return repository.Page[domain.SeekerProfile]{}, err
	}
	seekers, err := r.withPhotos(ctx, rows)
	if err != nil {
		return repository.Page[domain.SeekerProfile]{}, err
	}
	return page(seekers, total, f.Limit, f.Offset), nil
}

func (r *profileRepository) withPhotos(ctx context.Context, rows []seekerRow) ([]domain.SeekerProfile, error) {
	seekers := make([]domain.SeekerProfile, 0, len(rows))
	if len(rows) == 0 {
		return seekers, nil
	}
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}

	var photos []photoRow
	query := `
		SELECT seeker_id AS owner_id, position, url
		FROM seeker_photos
		WHERE seeker_id = ANY($1)
		ORDER BY seeker_id, position
	`
	if err := r.tx.SelectContext(ctx, &photos, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("failed to load seeker photos: %w", err)
	}
	byOwner := groupPhotos(photos)

	for _, row := range rows {
		s := row.toDomain()
		s.Photos = byOwner[row.ID]
		if s.Photos == nil {
			s.Photos = []domain.Photo{}
		}
		seekers = append(seekers, s)
	}
	return seekers, nil
}

func groupPhotos(rows []photoRow) map[string][]domain.Photo {
	out := make(map[string][]domain.Photo)
	for _, p := range rows {
		out[p.OwnerID] = append(out[p.OwnerID], domain.Photo{URL: p.URL, Position: p.Position})
	}
	return out
}
