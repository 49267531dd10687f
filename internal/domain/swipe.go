package domain

import (
	"fmt"
	"strings"
	"time"
)

type TargetKind string

const (
	TargetListing TargetKind = "listing"
	TargetSeeker  TargetKind = "seeker"
)

// SwipeTarget is what a swipe points at: a listing (seeker side) or a seeker
// profile (host side).
type SwipeTarget struct {
	Kind TargetKind `json:"kind"`
	ID   string     `json:"id"`
}

func ListingTarget(id ListingID) SwipeTarget {
	return SwipeTarget{Kind: TargetListing, ID: string(id)}
}

func SeekerTarget(id SeekerID) SwipeTarget {
	return SwipeTarget{Kind: TargetSeeker, ID: string(id)}
}

// ParseSwipeTarget resolves a raw target id. An explicit kind wins; without one
// the listing-/seeker- id prefix decides.
func ParseSwipeTarget(kind, rawID string) (SwipeTarget, error) {
	id := strings.TrimSpace(rawID)
	if id == "" {
		return SwipeTarget{}, AsValidation(fmt.Errorf("%w: empty target id", ErrInvalidTarget))
	}
	switch TargetKind(strings.ToLower(strings.TrimSpace(kind))) {
	case TargetListing:
		return SwipeTarget{Kind: TargetListing, ID: id}, nil
	case TargetSeeker:
		return SwipeTarget{Kind: TargetSeeker, ID: id}, nil
	case "":
	default:
		return SwipeTarget{}, AsValidation(fmt.Errorf("%w: unknown kind %q", ErrInvalidTarget, kind))
	}
	switch {
	case strings.HasPrefix(id, string(TargetListing)+"-"):
		return SwipeTarget{Kind: TargetListing, ID: id}, nil
	case strings.HasPrefix(id, string(TargetSeeker)+"-"):
		return SwipeTarget{Kind: TargetSeeker, ID: id}, nil
	}
	return SwipeTarget{}, AsValidation(fmt.Errorf("%w: cannot infer kind of %q", ErrInvalidTarget, id))
}

func (t SwipeTarget) ListingID() ListingID {
	return ListingID(t.ID)
}

func (t SwipeTarget) SeekerID() SeekerID {
	return SeekerID(t.ID)
}

func (t SwipeTarget) Valid() bool {
	return (t.Kind == TargetListing || t.Kind == TargetSeeker) && t.ID != ""
}

type Swipe struct {
	ID        SwipeID     `json:"id"`
	UserID    UserID      `json:"user_id"`
	Target    SwipeTarget `json:"target"`
	Decision  Decision    `json:"decision"`
	CreatedAt time.Time   `json:"created_at"`
}

// IdempotencyKey identifies a directed decision: user_id:target_id:DECISION.
func IdempotencyKey(userID UserID, targetID string, decision Decision) string {
	return fmt.Sprintf("%s:%s:%s", userID, targetID, decision)
}

func (s *Swipe) IdempotencyKey() string {
	return IdempotencyKey(s.UserID, s.Target.ID, s.Decision)
}

func (s *Swipe) IsLike() bool {
	return s.Decision == DecisionLike
}
