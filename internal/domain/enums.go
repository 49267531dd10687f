package domain

import (
	"strings"
)

type Role string

const (
	RoleSeeker Role = "SEEKER"
	RoleHost   Role = "HOST"
)

func (r Role) Valid() bool {
	return r == RoleSeeker || r == RoleHost
}

type ListingStatus string

const (
	ListingDraft     ListingStatus = "DRAFT"
	ListingPublished ListingStatus = "PUBLISHED"
	ListingUnlisted  ListingStatus = "UNLISTED"
)

type Decision string

const (
	DecisionLike Decision = "LIKE"
	DecisionPass Decision = "PASS"
)

// ParseDecision accepts "like" or "pass" in any case, surrounded by any whitespace.
func ParseDecision(raw string) (Decision, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "like":
		return DecisionLike, nil
	case "pass":
		return DecisionPass, nil
	default:
		return "", Validationf("decision must be 'like' or 'pass', got %q", raw)
	}
}

type MatchStatus string

const (
	MatchPending MatchStatus = "PENDING"
	MatchMutual  MatchStatus = "MUTUAL"
	MatchClosed  MatchStatus = "CLOSED"
)
