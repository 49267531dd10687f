// Package memory is the in-process storage adapter used for development,
// tests and demos. A Store is created once and injected; it is not a global.
package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gdugdh24/sublease-matcher-backend/internal/domain"
	"github.com/gdugdh24/sublease-matcher-backend/internal/repository"
)

var errTxClosed = errors.New("memory: transaction already finished")

type pairKey struct {
	seeker  domain.SeekerID
	listing domain.ListingID
}

type state struct {
	users    map[domain.UserID]domain.UserAccount
	seekers  map[domain.SeekerID]domain.SeekerProfile
	listings map[domain.ListingID]domain.Listing
	swipes   []domain.Swipe
	matches  map[pairKey]domain.Match
}

func newState() *state {
	return &state{
		users:    make(map[domain.UserID]domain.UserAccount),
		seekers:  make(map[domain.SeekerID]domain.SeekerProfile),
		listings: make(map[domain.ListingID]domain.Listing),
		matches:  make(map[pairKey]domain.Match),
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.users {
		c.users[k] = cloneUser(v)
	}
	for k, v := range s.seekers {
		c.seekers[k] = cloneSeeker(v)
	}
	for k, v := range s.listings {
		c.listings[k] = cloneListing(v)
	}
	c.swipes = cloneSlice(s.swipes)
	for k, v := range s.matches {
		c.matches[k] = cloneMatch(v)
	}
	return c
}

// Store holds all entities in memory. Transactions are serialized: Begin
// blocks until the previous transaction commits or rolls back.
type Store struct {
	mu   sync.Mutex
	data *state
	now  func() time.Time
}

type Option func(*Store)

// WithClock overrides the time source used for matched_at.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func NewStore(opts ...Option) *Store {
	s := &Store{data: newState(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Begin locks the store and snapshots it so Rollback can restore it.
func (s *Store) Begin(ctx context.Context) (repository.Tx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	return &tx{store: s, snapshot: s.data.clone()}, nil
}

type tx struct {
	store    *Store
	snapshot *state
	done     bool
}

func (t *tx) Users() repository.UserRepository       { return userRepo{t} }
func (t *tx) Seekers() repository.SeekerRepository   { return seekerRepo{t} }
func (t *tx) Hosts() repository.HostRepository       { return hostRepo{t} }
func (t *tx) Listings() repository.ListingRepository { return listingRepo{t} }
func (t *tx) Swipes() repository.SwipeRepository     { return swipeRepo{t} }
func (t *tx) Matches() repository.MatchRepository    { return matchRepo{t} }

func (t *tx) Commit() error {
	if t.done {
		return nil
	}
	t.done = true
	t.snapshot = nil
	t.store.mu.Unlock()
	return nil
}

func (t *tx) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	t.store.data = t.snapshot
	t.snapshot = nil
	t.store.mu.Unlock()
	return nil
}

// data returns the live state, or an error once the transaction is over.
func (t *tx) data() (*state, error) {
	if t.done {
		return nil, errTxClosed
	}
	return t.store.data, nil
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	return append(make([]T, 0, len(s)), s...)
}

func cloneUser(u domain.UserAccount) domain.UserAccount {
	u.Roles = cloneSlice(u.Roles)
	return u
}

func cloneSeeker(s domain.SeekerProfile) domain.SeekerProfile {
	s.AvailableTo = clonePtr(s.AvailableTo)
	s.BudgetMin = clonePtr(s.BudgetMin)
	s.BudgetMax = clonePtr(s.BudgetMax)
	s.ContactEmail = clonePtr(s.ContactEmail)
	s.Interests = cloneSlice(s.Interests)
	s.Photos = cloneSlice(s.Photos)
	return s
}

func cloneListing(l domain.Listing) domain.Listing {
	l.PricePerMonth = clonePtr(l.PricePerMonth)
	l.AvailableFrom = clonePtr(l.AvailableFrom)
	l.AvailableTo = clonePtr(l.AvailableTo)
	l.ContactEmail = clonePtr(l.ContactEmail)
	l.Bio = clonePtr(l.Bio)
	l.Photos = cloneSlice(l.Photos)
	roommates := cloneSlice(l.Roommates)
	for i, r := range roommates {
		r.SleepingHabits = clonePtr(r.SleepingHabits)
		r.Gender = clonePtr(r.Gender)
		r.Pronouns = clonePtr(r.Pronouns)
		r.MajorMinor = clonePtr(r.MajorMinor)
		r.Interests = cloneSlice(r.Interests)
		roommates[i] = r
	}
	l.Roommates = roommates
	return l
}

func cloneMatch(m domain.Match) domain.Match {
	m.Score = clonePtr(m.Score)
	m.MatchedAt = clonePtr(m.MatchedAt)
	return m
}
