package domain

import "time"

type Match struct {
	ID        MatchID     `json:"id"`
	SeekerID  SeekerID    `json:"seeker_id"`
	ListingID ListingID   `json:"listing_id"`
	Status    MatchStatus `json:"status"`
	Score     *float64    `json:"score"`
	MatchedAt *time.Time  `json:"matched_at"`
}

// NewMatch returns a fresh match for the pair in the given status.
func NewMatch(seekerID SeekerID, listingID ListingID, status MatchStatus, score *float64, now time.Time) (*Match, error) {
	m := &Match{
		ID:        MatchIDFor(seekerID, listingID),
		SeekerID:  seekerID,
		ListingID: listingID,
		Status:    MatchPending,
	}
	if err := m.Apply(status, score, now); err != nil {
		return nil, err
	}
	return m, nil
}

// Apply moves the match towards status. MUTUAL is terminal for this
// transition: a later PENDING never downgrades it and matched_at is written
// only once. The score is refreshed whenever one is given.
func (m *Match) Apply(status MatchStatus, score *float64, now time.Time) error {
	if err := ValidateScore(score); err != nil {
		return err
	}
	switch status {
	case MatchPending, MatchMutual, MatchClosed:
	default:
		return Validationf("unknown match status %q", status)
	}
	if score != nil {
		s := *score
		m.Score = &s
	}
	if m.Status == MatchMutual && status == MatchPending {
		return nil
	}
	if status == MatchMutual && m.MatchedAt == nil {
		at := now.UTC()
		m.MatchedAt = &at
	}
	m.Status = status
	return nil
}

func (m *Match) IsMutual() bool {
	return m.Status == MatchMutual
}

// ScoreValue returns the score, treating a missing one as 0.
func (m *Match) ScoreValue() float64 {
	if m.Score == nil {
		return 0
	}
	return *m.Score
}

func ValidateScore(score *float64) error {
	if score == nil {
		return nil
	}
	if *score < 0 || *score > 1 {
		return Validationf("score must be within [0, 1], got %v", *score)
	}
	return nil
}
