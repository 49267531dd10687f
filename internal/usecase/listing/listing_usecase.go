package listing

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

// ListingUseCase manages host listings. A host owns at most one listing.
type ListingUseCase struct {
	uow    repository.UnitOfWork
	logger *zap.Logger
}

func NewListingUseCase(uow repository.UnitOfWork, logger *zap.Logger) *ListingUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ListingUseCase{
		uow:    uow,
		logger: logger,
	}
}

// UpsertListingCmd is a partial update of the caller's listing. Roommates and
// photos, when present, replace the stored sets.
type UpsertListingCmd struct {
	ListingID     domain.ListingID                      `json:"id"`
	HostID        domain.HostID                         `json:"-"`
	Title         patch.Field[string]                   `json:"title"`
	PricePerMonth patch.Field[domain.Money]             `json:"price_per_month"`
	City          patch.Field[string]                   `json:"city"`
	State         patch.Field[string]                   `json:"state"`
	AvailableFrom patch.Field[civil.Date]               `json:"available_from"`
	AvailableTo   patch.Field[civil.Date]               `json:"available_to"`
	ContactEmail  patch.Field[string]                   `json:"contact_email"`
	Bio           patch.Field[string]                   `json:"bio"`
	Roommates     patch.Field[[]domain.RoommateProfile] `json:"roommates"`
	PhotoURLs     patch.Field[[]string]                 `json:"photo_urls"`
}

type PublishListingCmd struct {
	ListingID domain.ListingID
	HostID    domain.HostID
}

type UnlistListingCmd struct {
	ListingID domain.ListingID
	HostID    domain.HostID
}

func (uc *ListingUseCase) Get(ctx context.Context, id domain.ListingID) (*domain.Listing, error) {
	var listing *domain.Listing
	err := repository.WithinTx(ctx, uc.uow, func(tx repository.Tx) error {
		var err error
		listing, err = tx.Listings().Get(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return listing, nil
}

// GetMine returns the listing owned by hostID.
func (uc *ListingUseCase) GetMine(ctx context.Context, hostID domain.HostID) (*domain.Listing, error) {
	var listing *domain.Listing
	err := repository.WithinTx(ctx, uc.uow, func(tx repository.Tx) error {
		var err error
		listing, err = hostListing(ctx, tx, hostID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return listing, nil
}

// UpsertMine creates the host's listing or merges present fields into it.
// New listings start as DRAFT.
func (uc *ListingUseCase) UpsertMine(ctx context.Context, cmd *UpsertListingCmd) (*domain.Listing, error) {
	if cmd.HostID == "" {
		return nil, domain.Validationf("host id is required")
	}
	var saved *domain.Listing
	created := false

	err := repository.WithinTx(ctx, uc.uow, func(tx repository.Tx) error {
		current, err := resolveTarget(ctx, tx, cmd.ListingID, cmd.HostID)
		if err != nil {
			return err
		}

		var next domain.Listing
		if current == nil {
			id := cmd.ListingID
			if id == "" {
				id = domain.NewListingID()
			}
			next, err = newListing(id, cmd)
			created = true
		} else {
			next, err = applyListingFields(*current, cmd)
		}
		if err != nil {
			return err
		}

		validated, err := domain.NewListing(next)
		if err != nil {
			return err
		}
		if err := tx.Listings().Upsert(ctx, validated); err != nil {
			return err
		}
		saved = validated
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("listing saved",
		zap.String("listing_id", string(saved.ID)),
		zap.String("host_id", string(saved.HostID)),
		zap.Bool("created", created),
	)
	return saved, nil
}

// Publish moves the host's listing to PUBLISHED. A listing without a valid
// contact email stays where it was.
func (uc *ListingUseCase) Publish(ctx context.Context, cmd PublishListingCmd) (*domain.Listing, error) {
	return uc.transition(ctx, cmd.ListingID, cmd.HostID, "listing published", func(l *domain.Listing) error {
		return l.Publish()
	})
}

// Unlist hides the host's listing from queues.
func (uc *ListingUseCase) Unlist(ctx context.Context, cmd UnlistListingCmd) (*domain.Listing, error) {
	return uc.transition(ctx, cmd.ListingID, cmd.HostID, "listing unlisted", func(l *domain.Listing) error {
		l.Unlist()
		return nil
	})
}

func (uc *ListingUseCase) transition(
	ctx context.Context,
	id domain.ListingID,
	hostID domain.HostID,
	msg string,
	apply func(l *domain.Listing) error,
) (*domain.Listing, error) {
	var listing *domain.Listing
	err := repository.WithinTx(ctx, uc.uow, func(tx repository.Tx) error {
		var err error
		listing, err = tx.Listings().Get(ctx, id)
		if err != nil {
			return err
		}
		if listing.HostID != hostID {
			return domain.ErrForeignListing
		}
		if err := apply(listing); err != nil {
			return err
		}
		return tx.Listings().Upsert(ctx, listing)
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info(msg,
		zap.String("listing_id", string(listing.ID)),
		zap.String("status", string(listing.Status)),
	)
	return listing, nil
}

// resolveTarget finds the listing an upsert applies to. It returns nil when a
// new listing should be created.
func resolveTarget(ctx context.Context, tx repository.Tx, id domain.ListingID, hostID domain.HostID) (*domain.Listing, error) {
	if id != "" {
		current, err := tx.Listings().Get(ctx, id)
		if errors.Is(err, domain.ErrListingNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		if current.HostID != hostID {
			return nil, domain.ErrForeignListing
		}
		return current, nil
	}

	current, err := hostListing(ctx, tx, hostID)
	if errors.Is(err, domain.ErrHostListingNotFound) {
		return nil, nil
	}
	return current, err
}

func hostListing(ctx context.Context, tx repository.Tx, hostID domain.HostID) (*domain.Listing, error) {
	ids, err := tx.Hosts().ListingIDsForHost(ctx, hostID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, domain.ErrHostListingNotFound
	}
	return tx.Listings().Get(ctx, ids[0])
}

func newListing(id domain.ListingID, cmd *UpsertListingCmd) (domain.Listing, error) {
	required := []struct {
		name  string
		field patch.Field[string]
	}{
		{"title", cmd.Title},
		{"city", cmd.City},
		{"state", cmd.State},
	}
	for _, r := range required {
		if v, ok := r.field.Value(); !ok || strings.TrimSpace(v) == "" {
			return domain.Listing{}, domain.Validationf("%s is required to create a listing", r.name)
		}
	}

	l := domain.Listing{
		ID:     id,
		HostID: cmd.HostID,
		Status: domain.ListingDraft,
	}
	return applyListingFields(l, cmd)
}

func applyListingFields(l domain.Listing, cmd *UpsertListingCmd) (domain.Listing, error) {
	var err error
	if l.Title, err = requiredText("title", cmd.Title, l.Title); err != nil {
		return domain.Listing{}, err
	}
	if l.City, err = requiredText("city", cmd.City, l.City); err != nil {
		return domain.Listing{}, err
	}
	if l.State, err = requiredText("state", cmd.State, l.State); err != nil {
		return domain.Listing{}, err
	}

	patch.Apply(cmd.PricePerMonth, &l.PricePerMonth)
	patch.Apply(cmd.AvailableFrom, &l.AvailableFrom)
	patch.Apply(cmd.AvailableTo, &l.AvailableTo)
	patch.Apply(cmd.Bio, &l.Bio)

	if cmd.ContactEmail.IsPresent() {
		email, ok := cmd.ContactEmail.Value()
		switch {
		case ok && strings.TrimSpace(email) != "":
			l.ContactEmail = &email
		case l.Status == domain.ListingPublished:
			// Publishing requires a contact email, so a live listing keeps one.
			return domain.Listing{}, domain.Validationf("contact_email cannot be cleared while the listing is published")
		default:
			l.ContactEmail = nil
		}
	}
	if cmd.Roommates.IsPresent() {
		roommates, _ := cmd.Roommates.Value()
		l.Roommates = roommates
		l.RoommatesCount = len(roommates)
	}
	if cmd.PhotoURLs.IsPresent() {
		urls, _ := cmd.PhotoURLs.Value()
		l.Photos = make([]domain.Photo, 0, len(urls))
		for i, u := range urls {
			l.Photos = append(l.Photos, domain.Photo{URL: u, Position: i})
		}
	}
	return l, nil
}

// requiredText applies f to current for fields that may change but never be
// cleared.
func requiredText(name string, f patch.Field[string], current string) (string, error) {
	if !f.IsPresent() {
		return current, nil
	}
	v, ok := f.Value()
	if !ok || strings.TrimSpace(v) == "" {
		return "", domain.Validationf("%s cannot be blank", name)
	}
	return v, nil
}
