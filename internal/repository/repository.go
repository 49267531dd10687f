package repository

import (
	"context"

	"github.com/gdugdh24/sublease-matcher-backend/internal/domain"
)

// Page is one slice of an ordered result set.
type Page[T any] struct {
	Items  []T `json:"items"`
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// Paginate cuts items to the requested window. A non-positive limit returns
// everything after offset.
func Paginate[T any](items []T, limit, offset int) Page[T] {
	total := len(items)
	if offset < 0 {
		offset = 0
	}
	if offset > total {
		offset = total
	}
	end := total
	if limit > 0 && offset+limit < total {
		end = offset + limit
	}
	return Page[T]{Items: items[offset:end], Total: total, Limit: limit, Offset: offset}
}

type UserRepository interface {
	Get(ctx context.Context, id domain.UserID) (*domain.UserAccount, error)
	ByEmail(ctx context.Context, email string) (*domain.UserAccount, error)
	Upsert(ctx context.Context, user *domain.UserAccount) error
}

type SeekerFilter struct {
	City          string
	IncludeHidden bool
	Limit         int
	Offset        int
}

type SeekerRepository interface {
	Get(ctx context.Context, id domain.SeekerID) (*domain.SeekerProfile, error)
	Upsert(ctx context.Context, seeker *domain.SeekerProfile) error
	Search(ctx context.Context, filter SeekerFilter) (Page[domain.SeekerProfile], error)
}

type ListingFilter struct {
	City   string
	Status domain.ListingStatus
	Limit  int
	Offset int
}

type ListingRepository interface {
	Get(ctx context.Context, id domain.ListingID) (*domain.Listing, error)
	Upsert(ctx context.Context, listing *domain.Listing) error
	Search(ctx context.Context, filter ListingFilter) (Page[domain.Listing], error)
}

type HostRepository interface {
	// ListingIDsForHost returns the host's listings ordered by id.
	ListingIDsForHost(ctx context.Context, hostID domain.HostID) ([]domain.ListingID, error)
}

type SwipeRepository interface {
	// Append stores a swipe. A second swipe with the same idempotency key
	// fails with domain.ErrDuplicateSwipe.
	Append(ctx context.Context, swipe *domain.Swipe) error
	GetByIdempotencyKey(ctx context.Context, key string) (*domain.Swipe, error)
	// UndoLast removes and returns the user's most recent swipe, or
	// domain.ErrSwipeNotFound when there is none.
	UndoLast(ctx context.Context, userID domain.UserID) (*domain.Swipe, error)
	// LatestForUser returns the user's swipes, newest first.
	LatestForUser(ctx context.Context, userID domain.UserID, limit int) ([]domain.Swipe, error)
}
