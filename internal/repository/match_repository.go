package repository

import (
	"context"

	"github.com/gdugdh24/sublease-matcher-backend/internal/domain"
)

type MatchRepository interface {
	Get(ctx context.Context, id domain.MatchID) (*domain.Match, error)
	ForPair(ctx context.Context, seekerID domain.SeekerID, listingID domain.ListingID) (*domain.Match, error)
	// Upsert creates or advances the match for the pair. Status never
	// regresses from MUTUAL and matched_at is set only on the first
	// transition to MUTUAL.
	Upsert(ctx context.Context, seekerID domain.SeekerID, listingID domain.ListingID, status domain.MatchStatus, score *float64) (*domain.Match, error)
	// LockPair serializes writers of one (seeker, listing) pair until the
	// surrounding transaction ends. Callers take it before reading the
	// counter-like so two concurrent likes cannot both miss each other.
	LockPair(ctx context.Context, seekerID domain.SeekerID, listingID domain.ListingID) error
	// ForUser lists matches where the user is the seeker or hosts the listing.
	ForUser(ctx context.Context, userID domain.UserID, limit, offset int) (Page[domain.Match], error)
}
