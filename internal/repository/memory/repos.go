package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/gdugdh24/sublease-matcher-backend/internal/domain"
	"github.com/gdugdh24/sublease-matcher-backend/internal/repository"
)

func sameCity(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

type userRepo struct{ tx *tx }

func (r userRepo) Get(_ context.Context, id domain.UserID) (*domain.UserAccount, error) {
	st, err := r.tx.data()
	if err != nil {
		return nil, err
	}
	u, ok := st.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u = cloneUser(u)
	return &u, nil
}

func (r userRepo) ByEmail(_ context.Context, email string) (*domain.UserAccount, error) {
	st, err := r.tx.data()
	if err != nil {
		return nil, err
	}
	for _, u := range st.users {
		if strings.EqualFold(u.Email, strings.TrimSpace(email)) {
			u = cloneUser(u)
			return &u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r userRepo) Upsert(_ context.Context, user *domain.UserAccount) error {
	st, err := r.tx.data()
	if err != nil {
		return err
	}
	for id, u := range st.users {
		if id != user.ID && strings.EqualFold(u.Email, user.Email) {
			return domain.ErrEmailTaken
		}
	}
	st.users[user.ID] = cloneUser(*user)
	return nil
}

type seekerRepo struct{ tx *tx }

func (r seekerRepo) Get(_ context.Context, id domain.SeekerID) (*domain.SeekerProfile, error) {
	st, err := r.tx.data()
	if err != nil {
		return nil, err
	}
	s, ok := st.seekers[id]
	if !ok {
		return nil, domain.ErrSeekerNotFound
	}
	s = cloneSeeker(s)
	return &s, nil
}

func (r seekerRepo) Upsert(_ context.Context, seeker *domain.SeekerProfile) error {
	st, err := r.tx.data()
	if err != nil {
		return err
	}
	for id, s := range st.seekers {
		if id != seeker.ID && s.UserID == seeker.UserID {
			return domain.Conflictf("user %s already has a seeker profile", seeker.UserID)
		}
	}
	st.seekers[seeker.ID] = cloneSeeker(*seeker)
	return nil
}

func (r seekerRepo) Search(_ context.Context, f repository.SeekerFilter) (repository.Page[domain.SeekerProfile], error) {
	st, err := r.tx.data()
	if err != nil {
		return repository.Page[domain.SeekerProfile]{}, err
	}
	out := make([]domain.SeekerProfile, 0, len(st.seekers))
	for _, s := range st.seekers {
		if f.City != "" && !sameCity(s.City, f.City) {
			continue
		}
		if s.Hidden && !f.IncludeHidden {
			continue
		}
		out = append(out, cloneSeeker(s))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return repository.Paginate(out, f.Limit, f.Offset), nil
}

type listingRepo struct{ tx *tx }

func (r listingRepo) Get(_ context.Context, id domain.ListingID) (*domain.Listing, error) {
	st, err := r.tx.data()
	if err != nil {
		return nil, err
	}
	l, ok := st.listings[id]
	if !ok {
		return nil, domain.ErrListingNotFound
	}
	l = cloneListing(l)
	return &l, nil
}

func (r listingRepo) Upsert(_ context.Context, listing *domain.Listing) error {
	st, err := r.tx.data()
	if err != nil {
		return err
	}
	for id, l := range st.listings {
		if id != listing.ID && l.HostID == listing.HostID {
			return domain.ErrHostAlreadyHasListing
		}
	}
	st.listings[listing.ID] = cloneListing(*listing)
	return nil
}

func (r listingRepo) Search(_ context.Context, f repository.ListingFilter) (repository.Page[domain.Listing], error) {
	st, err := r.tx.data()
	if err != nil {
		return repository.Page[domain.Listing]{}, err
	}
	out := make([]domain.Listing, 0, len(st.listings))
	for _, l := range st.listings {
		if f.City != "" && !sameCity(l.City, f.City) {
			continue
		}
		if f.Status != "" && l.Status != f.Status {
			continue
		}
		out = append(out, cloneListing(l))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return repository.Paginate(out, f.Limit, f.Offset), nil
}

type hostRepo struct{ tx *tx }

func (r hostRepo) ListingIDsForHost(_ context.Context, hostID domain.HostID) ([]domain.ListingID, error) {
	st, err := r.tx.data()
	if err != nil {
		return nil, err
	}
	var ids []domain.ListingID
	for id, l := range st.listings {
		if l.HostID == hostID {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

type swipeRepo struct{ tx *tx }

func (r swipeRepo) Append(_ context.Context, swipe *domain.Swipe) error {
	st, err := r.tx.data()
	if err != nil {
		return err
	}
	key := swipe.IdempotencyKey()
	for _, s := range st.swipes {
		if s.IdempotencyKey() == key {
			return domain.ErrDuplicateSwipe
		}
	}
	st.swipes = append(st.swipes, *swipe)
	return nil
}

func (r swipeRepo) GetByIdempotencyKey(_ context.Context, key string) (*domain.Swipe, error) {
	st, err := r.tx.data()
	if err != nil {
		return nil, err
	}
	for _, s := range st.swipes {
		if s.IdempotencyKey() == key {
			return &s, nil
		}
	}
	return nil, domain.ErrSwipeNotFound
}

func (r swipeRepo) UndoLast(_ context.Context, userID domain.UserID) (*domain.Swipe, error) {
	st, err := r.tx.data()
	if err != nil {
		return nil, err
	}
	for i := len(st.swipes) - 1; i >= 0; i-- {
		if st.swipes[i].UserID != userID {
			continue
		}
		removed := st.swipes[i]
		st.swipes = append(st.swipes[:i:i], st.swipes[i+1:]...)
		return &removed, nil
	}
	return nil, domain.ErrSwipeNotFound
}

func (r swipeRepo) LatestForUser(_ context.Context, userID domain.UserID, limit int) ([]domain.Swipe, error) {
	st, err := r.tx.data()
	if err != nil {
		return nil, err
	}
	var out []domain.Swipe
	for i := len(st.swipes) - 1; i >= 0; i-- {
		if st.swipes[i].UserID != userID {
			continue
		}
		out = append(out, st.swipes[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

type matchRepo struct{ tx *tx }

func (r matchRepo) Get(_ context.Context, id domain.MatchID) (*domain.Match, error) {
	st, err := r.tx.data()
	if err != nil {
		return nil, err
	}
	for _, m := range st.matches {
		if m.ID == id {
			m = cloneMatch(m)
			return &m, nil
		}
	}
	return nil, domain.ErrMatchNotFound
}

// LockPair only checks the transaction is open; memory transactions already
// run one at a time.
func (r matchRepo) LockPair(context.Context, domain.SeekerID, domain.ListingID) error {
	_, err := r.tx.data()
	return err
}

func (r matchRepo) ForPair(_ context.Context, seekerID domain.SeekerID, listingID domain.ListingID) (*domain.Match, error) {
	st, err := r.tx.data()
	if err != nil {
		return nil, err
	}
	m, ok := st.matches[pairKey{seekerID, listingID}]
	if !ok {
		return nil, domain.ErrMatchNotFound
	}
	m = cloneMatch(m)
	return &m, nil
}

func (r matchRepo) Upsert(_ context.Context, seekerID domain.SeekerID, listingID domain.ListingID, status domain.MatchStatus, score *float64) (*domain.Match, error) {
	st, err := r.tx.data()
	if err != nil {
		return nil, err
	}
	now := r.tx.store.now()
	key := pairKey{seekerID, listingID}

	var m *domain.Match
	if existing, ok := st.matches[key]; ok {
		existing = cloneMatch(existing)
		if err := existing.Apply(status, score, now); err != nil {
			return nil, err
		}
		m = &existing
	} else {
		m, err = domain.NewMatch(seekerID, listingID, status, score, now)
		if err != nil {
			return nil, err
		}
	}
	st.matches[key] = cloneMatch(*m)
	return m, nil
}

func (r matchRepo) ForUser(_ context.Context, userID domain.UserID, limit, offset int) (repository.Page[domain.Match], error) {
	st, err := r.tx.data()
	if err != nil {
		return repository.Page[domain.Match]{}, err
	}
	seekerID := domain.SeekerIDFor(userID)
	hostID := domain.HostIDFor(userID)

	var out []domain.Match
	for _, m := range st.matches {
		listing, ok := st.listings[m.ListingID]
		if m.SeekerID == seekerID || (ok && listing.HostID == hostID) {
			out = append(out, cloneMatch(m))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return repository.Paginate(out, limit, offset), nil
}
