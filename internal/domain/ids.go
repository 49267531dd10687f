package domain

import (
	"strings"

	"github.com/google/uuid"
)

type (
	UserID     string
	SeekerID   string
	HostID     string
	ListingID  string
	MatchID    string
	SwipeID    string
	RoommateID string
)

// SeekerIDFor returns the seeker profile id owned by a user.
func SeekerIDFor(userID UserID) SeekerID {
	return SeekerID(userID)
}

// HostIDFor returns the host id of a user.
func HostIDFor(userID UserID) HostID {
	return HostID(userID)
}

func (id HostID) UserID() UserID {
	return UserID(id)
}

const listingIDPrefix = "listing-"

// NewListingID generates a listing id that follows the listing- prefix convention.
func NewListingID() ListingID {
	return ListingID(listingIDPrefix + uuid.NewString())
}

func NewSwipeID() SwipeID {
	return SwipeID(uuid.NewString())
}

func NewRoommateID() RoommateID {
	return RoommateID(uuid.NewString())
}

// MatchIDFor derives the stable match id for a seeker/listing pair.
func MatchIDFor(seekerID SeekerID, listingID ListingID) MatchID {
	name := strings.Join([]string{string(seekerID), string(listingID)}, ":")
	return MatchID(uuid.NewSHA1(uuid.NameSpaceDNS, []byte(name)).String())
}
