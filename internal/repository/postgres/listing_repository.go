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

type listingRepository struct {
	tx *sqlx.Tx
}

const listingColumns = `id, host_id, title, price_per_month, city, state, available_from, available_to,
	status, contact_email, bio, roommates_count`

const listingFilter = `($1::text = '' OR LOWER(TRIM(city)) = LOWER(TRIM($1::text))) AND ($2::text = '' OR status = $2::text)`

func (r *listingRepository) Get(ctx context.Context, id domain.ListingID) (*domain.Listing, error) {
	var row listingRow
	query := `SELECT ` + listingColumns + ` FROM listings WHERE id = $1`
	if err := r.tx.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrListingNotFound
		}
		return nil, err
	}
	listings, err := r.withChildren(ctx, []listingRow{row})
	if err != nil {
		return nil, err
	}
	return &listings[0], nil
}

func (r *listingRepository) Upsert(ctx context.Context, l *domain.Listing) error {
	query := `
		INSERT INTO listings (
			id, host_id, title, price_per_month, city, state, available_from, available_to,
			status, contact_email, bio, roommates_count
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			host_id = EXCLUDED.host_id,
			title = EXCLUDED.title,
			price_per_month = EXCLUDED.price_per_month,
			city = EXCLUDED.city,
			state = EXCLUDED.state,
			available_from = EXCLUDED.available_from,
			available_to = EXCLUDED.available_to,
			status = EXCLUDED.status,
			contact_email = EXCLUDED.contact_email,
			bio = EXCLUDED.bio,
			roommates_count = EXCLUDED.roommates_count
	`
	_, err := r.tx.ExecContext(ctx, query,
		l.ID, l.HostID, l.Title, moneyArg(l.PricePerMonth), l.City, l.State,
		dateArg(l.AvailableFrom), dateArg(l.AvailableTo),
		l.Status, stringArg(l.ContactEmail), stringArg(l.Bio), l.RoommatesCount,
	)
	if err != nil {
		return mapUniqueViolation(err, map[string]error{"listings_host_id_key": domain.ErrHostAlreadyHasListing})
	}

	if _, err := r.tx.ExecContext(ctx, `DELETE FROM listing_roommates WHERE listing_id = $1`, l.ID); err != nil {
		return fmt.Errorf("failed to clear roommates: %w", err)
	}
	for i, rm := range l.Roommates {
		_, err := r.tx.ExecContext(ctx, `
			INSERT INTO listing_roommates (
				id, listing_id, position, name, sleeping_habits, gender, pronouns, interests, major_minor
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			rm.ID, l.ID, i, rm.Name, stringArg(rm.SleepingHabits), stringArg(rm.Gender),
			stringArg(rm.Pronouns), pq.Array(rm.Interests), stringArg(rm.MajorMinor),
		)
		if err != nil {
			return fmt.Errorf("failed to save roommate: %w", err)
		}
	}

	if _, err := r.tx.ExecContext(ctx, `DELETE FROM listing_photos WHERE listing_id = $1`, l.ID); err != nil {
		return fmt.Errorf("failed to clear listing photos: %w", err)
	}
	for _, p := range l.Photos {
		_, err := r.tx.ExecContext(ctx,
			`INSERT INTO listing_photos (listing_id, position, url) VALUES ($1, $2, $3)`,
			l.ID, p.Position, p.URL,
		)
		if err != nil {
			return fmt.Errorf("failed to save listing photo: %w", err)
		}
	}
	return nil
}

func (r *listingRepository) Search(ctx context.Context, f repository.ListingFilter) (repository.Page[domain.Listing], error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM listings WHERE ` + listingFilter
	if err := r.tx.GetContext(ctx, &total, countQuery, f.City, string(f.Status)); err != nil {
		return repository.Page[domain.Listing]{}, err
	}

	var rows []listingRow
	query := `SELECT ` + listingColumns + ` FROM listings WHERE ` + listingFilter + `
		ORDER BY id
		LIMIT $3 OFFSET $4`
	if err := r.tx.SelectContext(ctx, &rows, query, f.City, string(f.Status), limitArg(f.Limit), offsetArg(f.Offset)); err != nil {
		return repository.Page[domain.Listing]{}, err
	}
	listings, err := r.withChildren(ctx, rows)
	if err != nil {
		return repository.Page[domain.Listing]{}, err
	}
	return page(listings, total, f.Limit, f.Offset), nil
}

// withChildren loads roommates and photos for rows in two queries.
func (r *listingRepository) withChildren(ctx context.Context, rows []listingRow) ([]domain.Listing, error) {
	listings := make([]domain.Listing, 0, len(rows))
	if len(rows) == 0 {
		return listings, nil
	}
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}

	var roommates []roommateRow
	roommateQuery := `
		SELECT id, listing_id, name, sleeping_habits, gender, pronouns, interests, major_minor
		FROM listing_roommates
		WHERE listing_id = ANY($1)
		ORDER BY listing_id, position
	`
	if err := r.tx.SelectContext(ctx, &roommates, roommateQuery, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("failed to load roommates: %w", err)
	}
	roommatesByListing := make(map[string][]domain.RoommateProfile)
	for _, rm := range roommates {
		roommatesByListing[rm.ListingID] = append(roommatesByListing[rm.ListingID], rm.toDomain())
	}

	var photos []photoRow
	photoQuery := `
		SELECT listing_id AS owner_id, position, url
		FROM listing_photos
		WHERE listing_id = ANY($1)
		ORDER BY listing_id, position
	`
	if err := r.tx.SelectContext(ctx, &photos, photoQuery, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("failed to load listing photos: %w", err)
	}
	photosByListing := groupPhotos(photos)

	for _, row := range rows {
		l := row.toDomain()
		l.Roommates = roommatesByListing[row.ID]
		if l.Roommates == nil {
			l.Roommates = []domain.RoommateProfile{}
		}
		l.Photos = photosByListing[row.ID]
		if l.Photos == nil {
			l.Photos = []domain.Photo{}
		}
		listings = append(listings, l)
	}
	return listings, nil
}

type hostRepository struct {
	tx *sqlx.Tx
}

func (r *hostRepository) ListingIDsForHost(ctx context.Context, hostID domain.HostID) ([]domain.ListingID, error) {
	var ids []domain.ListingID
	query := `SELECT id FROM listings WHERE host_id = $1 ORDER BY id`
	if err := r.tx.SelectContext(ctx, &ids, query, hostID); err != nil {
		return nil, err
	}
	return ids, nil
}
