package swipe

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/gdugdh24/sublease-matcher-backend/internal/domain"
	"github.com/gdugdh24/sublease-matcher-backend/internal/repository"
	"github.com/gdugdh24/sublease-matcher-backend/internal/usecase/matchengine"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100

	notifyTimeout = 5 * time.Second
)

type MatchEngine interface {
	Score(seeker *domain.SeekerProfile, listing *domain.Listing) float64
	Recommend(seeker *domain.SeekerProfile, candidates []domain.Listing, limit int) []matchengine.Recommendation
}

// MatchNotifier is told about matches that just became mutual, after commit.
type MatchNotifier interface {
	MatchFormed(ctx context.Context, match *domain.Match, seeker *domain.SeekerProfile, listing *domain.Listing) error
}

type Metrics interface {
	SwipeRecorded(decision domain.Decision)
	DuplicateSwipe()
	MatchMutual()
}

type SwipeUseCase struct {
	uow      repository.UnitOfWork
	engine   MatchEngine
	notifier MatchNotifier
	metrics  Metrics
	logger   *zap.Logger
	now      func() time.Time
}

func NewSwipeUseCase(
	uow repository.UnitOfWork,
	engine MatchEngine,
	notifier MatchNotifier,
	metrics Metrics,
	logger *zap.Logger,
) *SwipeUseCase {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	if metrics == nil {
		metrics = nopMetrics{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SwipeUseCase{
		uow:      uow,
		engine:   engine,
		notifier: notifier,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
	}
}

// SwipeCmd is a decision by UserID on Target. Decision is the raw "like" or
// "pass" string as received.
type SwipeCmd struct {
	UserID   domain.UserID
	Target   domain.SwipeTarget
	Decision string
}

// SwipeResult is the outcome of Record. Match is set for likes that touched a
// match row; Mutual is true only when this swipe completed the match.
type SwipeResult struct {
	Swipe  *domain.Swipe `json:"swipe"`
	Match  *domain.Match `json:"match,omitempty"`
	Mutual bool          `json:"is_match"`
}

type ListingQueueItem struct {
	Listing domain.Listing `json:"listing"`
	Score   float64        `json:"score"`
}

type SeekerQueueItem struct {
	Seeker domain.SeekerProfile `json:"seeker"`
	Score  float64              `json:"score"`
}

// NormalizeLimit applies the default page size and the upper bound.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// QueueForSeeker returns published listings to show the seeker, best first.
// Listings the seeker already swiped on and the seeker's own listing are left
// out. Without same-city recommendations it falls back to every published
// listing ordered by id.
func (uc *SwipeUseCase) QueueForSeeker(ctx context.Context, seekerID domain.SeekerID, limit int) ([]ListingQueueItem, error) {
	limit = NormalizeLimit(limit)
	var items []ListingQueueItem

	err := repository.WithinTx(ctx, uc.uow, func(tx repository.Tx) error {
		seeker, err := tx.Seekers().Get(ctx, seekerID)
		if err != nil {
			return err
		}
		excluded, err := uc.swipedTargets(ctx, tx, seeker.UserID)
		if err != nil {
			return err
		}
		own, err := tx.Hosts().ListingIDsForHost(ctx, domain.HostIDFor(seeker.UserID))
		if err != nil {
			return fmt.Errorf("failed to load own listings: %w", err)
		}
		for _, id := range own {
			excluded[string(id)] = struct{}{}
		}

		// Searches are unbounded; ranking sees every published listing.
		if seeker.City != "" {
			page, err := tx.Listings().Search(ctx, repository.ListingFilter{
				City:   seeker.City,
				Status: domain.ListingPublished,
			})
			if err != nil {
				return fmt.Errorf("failed to search listings: %w", err)
			}
			for _, rec := range uc.engine.Recommend(seeker, withoutListings(page.Items, excluded), limit) {
				items = append(items, ListingQueueItem{Listing: rec.Listing, Score: rec.Score})
			}
			if len(items) > 0 {
				return nil
			}
		}

		page, err := tx.Listings().Search(ctx, repository.ListingFilter{
			Status: domain.ListingPublished,
		})
		if err != nil {
			return fmt.Errorf("failed to search listings: %w", err)
		}
		fallback := withoutListings(page.Items, excluded)
		sort.Slice(fallback, func(i, j int) bool { return fallback[i].ID < fallback[j].ID })
		for _, l := range fallback {
			if len(items) == limit {
				break
			}
			items = append(items, ListingQueueItem{Listing: l, Score: uc.engine.Score(seeker, &l)})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// QueueForHost returns visible seekers to show the owner of listingID,
// ordered by score desc then seeker id.
func (uc *SwipeUseCase) QueueForHost(ctx context.Context, listingID domain.ListingID, limit int) ([]SeekerQueueItem, error) {
	limit = NormalizeLimit(limit)
	var items []SeekerQueueItem

	err := repository.WithinTx(ctx, uc.uow, func(tx repository.Tx) error {
		listing, err := tx.Listings().Get(ctx, listingID)
		if err != nil {
			return err
		}
		hostUser := listing.HostID.UserID()
		excluded, err := uc.swipedTargets(ctx, tx, hostUser)
		if err != nil {
			return err
		}

		// Every visible seeker is scored before truncation.
		page, err := tx.Seekers().Search(ctx, repository.SeekerFilter{})
		if err != nil {
			return fmt.Errorf("failed to search seekers: %w", err)
		}
		for _, s := range page.Items {
			if !s.Publishable() || s.UserID == hostUser {
				continue
			}
			if _, seen := excluded[string(s.ID)]; seen {
				continue
			}
			items = append(items, SeekerQueueItem{Seeker: s, Score: uc.engine.Score(&s, listing)})
		}
		sort.SliceStable(items, func(i, j int) bool {
			if items[i].Score != items[j].Score {
				return items[i].Score > items[j].Score
			}
			return items[i].Seeker.ID < items[j].Seeker.ID
		})
		if len(items) > limit {
			items = items[:limit]
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// Record stores a swipe once per (user, target, decision). A like also
// creates or advances the match for the pair in the same transaction, so a
// failure anywhere leaves neither the swipe nor the match behind.
func (uc *SwipeUseCase) Record(ctx context.Context, cmd SwipeCmd) (*SwipeResult, error) {
	decision, err := domain.ParseDecision(cmd.Decision)
	if err != nil {
		return nil, err
	}
	if !cmd.Target.Valid() {
		return nil, domain.AsValidation(domain.ErrInvalidTarget)
	}
	if cmd.UserID == "" {
		return nil, domain.Validationf("user id is required")
	}

	swipe := &domain.Swipe{
		ID:        domain.NewSwipeID(),
		UserID:    cmd.UserID,
		Target:    cmd.Target,
		Decision:  decision,
		CreatedAt: uc.now().UTC(),
	}
	result := &SwipeResult{Swipe: swipe}
	var pair *matchPair

	err = repository.WithinTx(ctx, uc.uow, func(tx repository.Tx) error {
		if _, err := tx.Swipes().GetByIdempotencyKey(ctx, swipe.IdempotencyKey()); err == nil {
			return domain.ErrDuplicateSwipe
		} else if !errors.Is(err, domain.ErrSwipeNotFound) {
			return fmt.Errorf("failed to check swipe: %w", err)
		}

		if err := uc.checkTarget(ctx, tx, swipe); err != nil {
			return err
		}
		if err := tx.Swipes().Append(ctx, swipe); err != nil {
			return err
		}
		if !swipe.IsLike() {
			return nil
		}

		pair, err = uc.promote(ctx, tx, swipe)
		if err != nil {
			return err
		}
		if pair != nil {
			result.Match = pair.match
			result.Mutual = pair.becameMutual
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateSwipe) {
			uc.metrics.DuplicateSwipe()
		}
		return nil, err
	}

	uc.metrics.SwipeRecorded(decision)
	uc.logger.Info("swipe recorded",
		zap.String("user_id", string(swipe.UserID)),
		zap.String("target_kind", string(swipe.Target.Kind)),
		zap.String("target_id", swipe.Target.ID),
		zap.String("decision", string(decision)),
	)

	if result.Mutual {
		uc.metrics.MatchMutual()
		uc.logger.Info("mutual match formed",
			zap.String("match_id", string(pair.match.ID)),
			zap.String("seeker_id", string(pair.match.SeekerID)),
			zap.String("listing_id", string(pair.match.ListingID)),
		)
		uc.notify(ctx, pair)
	}
	return result, nil
}

// UndoLast removes the user's most recent swipe. ok is false when the user
// has no swipes. Matches created by the swipe are kept.
func (uc *SwipeUseCase) UndoLast(ctx context.Context, userID domain.UserID) (swipe *domain.Swipe, ok bool, err error) {
	err = repository.WithinTx(ctx, uc.uow, func(tx repository.Tx) error {
		swipe, err = tx.Swipes().UndoLast(ctx, userID)
		return err
	})
	if errors.Is(err, domain.ErrSwipeNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	uc.logger.Info("swipe undone",
		zap.String("user_id", string(userID)),
		zap.String("swipe_id", string(swipe.ID)),
	)
	return swipe, true, nil
}

// History returns the user's swipes, newest first.
func (uc *SwipeUseCase) History(ctx context.Context, userID domain.UserID, limit int) ([]domain.Swipe, error) {
	limit = NormalizeLimit(limit)
	var swipes []domain.Swipe
	err := repository.WithinTx(ctx, uc.uow, func(tx repository.Tx) error {
		var err error
		swipes, err = tx.Swipes().LatestForUser(ctx, userID, limit)
		return err
	})
	return swipes, err
}

func (uc *SwipeUseCase) checkTarget(ctx context.Context, tx repository.Tx, swipe *domain.Swipe) error {
	switch swipe.Target.Kind {
	case domain.TargetListing:
		listing, err := tx.Listings().Get(ctx, swipe.Target.ListingID())
		if err != nil {
			return err
		}
		if listing.HostID == domain.HostIDFor(swipe.UserID) {
			return domain.ErrCannotSwipeSelf
		}
	case domain.TargetSeeker:
		seeker, err := tx.Seekers().Get(ctx, swipe.Target.SeekerID())
		if err != nil {
			return err
		}
		if seeker.UserID == swipe.UserID {
			return domain.ErrCannotSwipeSelf
		}
	}
	return nil
}

type matchPair struct {
	match        *domain.Match
	seeker       *domain.SeekerProfile
	listing      *domain.Listing
	becameMutual bool
}

// promote writes the match for a like. The counter-like decides the status:
// MUTUAL when the other side already liked back, PENDING otherwise. It
// returns nil when the liker has no profile on the other side of the pair.
func (uc *SwipeUseCase) promote(ctx context.Context, tx repository.Tx, like *domain.Swipe) (*matchPair, error) {
	var (
		seeker      *domain.SeekerProfile
		listing     *domain.Listing
		counterLike string
		err         error
	)

	switch like.Target.Kind {
	case domain.TargetListing:
		listing, err = tx.Listings().Get(ctx, like.Target.ListingID())
		if err != nil {
			return nil, err
		}
		seeker, err = tx.Seekers().Get(ctx, domain.SeekerIDFor(like.UserID))
		if errors.Is(err, domain.ErrSeekerNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		counterLike = domain.IdempotencyKey(listing.HostID.UserID(), string(seeker.ID), domain.DecisionLike)

	case domain.TargetSeeker:
		seeker, err = tx.Seekers().Get(ctx, like.Target.SeekerID())
		if err != nil {
			return nil, err
		}
		ids, err := tx.Hosts().ListingIDsForHost(ctx, domain.HostIDFor(like.UserID))
		if err != nil {
			return nil, fmt.Errorf("failed to load host listings: %w", err)
		}
		if len(ids) == 0 {
			return nil, nil
		}
		listing, err = tx.Listings().Get(ctx, ids[0])
		if err != nil {
			return nil, err
		}
		counterLike = domain.IdempotencyKey(seeker.UserID, string(listing.ID), domain.DecisionLike)

	default:
		return nil, domain.AsValidation(domain.ErrInvalidTarget)
	}

	// Both likes of a pair may be in flight at once; whichever locks second
	// sees the other's committed swipe.
	if err := tx.Matches().LockPair(ctx, seeker.ID, listing.ID); err != nil {
		return nil, fmt.Errorf("failed to lock match pair: %w", err)
	}

	_, err = tx.Swipes().GetByIdempotencyKey(ctx, counterLike)
	mutual := err == nil
	if err != nil && !errors.Is(err, domain.ErrSwipeNotFound) {
		return nil, fmt.Errorf("failed to check counter like: %w", err)
	}

	wasMutual := false
	if existing, err := tx.Matches().ForPair(ctx, seeker.ID, listing.ID); err == nil {
		wasMutual = existing.IsMutual()
	} else if !errors.Is(err, domain.ErrMatchNotFound) {
		return nil, fmt.Errorf("failed to load match: %w", err)
	}

	status := domain.MatchPending
	if mutual {
		status = domain.MatchMutual
	}
	score := uc.engine.Score(seeker, listing)
	match, err := tx.Matches().Upsert(ctx, seeker.ID, listing.ID, status, &score)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert match: %w", err)
	}

	return &matchPair{
		match:        match,
		seeker:       seeker,
		listing:      listing,
		becameMutual: match.IsMutual() && !wasMutual,
	}, nil
}

func (uc *SwipeUseCase) notify(ctx context.Context, pair *matchPair) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()
	if err := uc.notifier.MatchFormed(ctx, pair.match, pair.seeker, pair.listing); err != nil {
		uc.logger.Warn("match notification failed",
			zap.String("match_id", string(pair.match.ID)),
			zap.Error(err),
		)
	}
}

// swipedTargets returns the ids the user has already swiped on.
func (uc *SwipeUseCase) swipedTargets(ctx context.Context, tx repository.Tx, userID domain.UserID) (map[string]struct{}, error) {
	swipes, err := tx.Swipes().LatestForUser(ctx, userID, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to load swipe history: %w", err)
	}
	seen := make(map[string]struct{}, len(swipes))
	for _, s := range swipes {
		seen[s.Target.ID] = struct{}{}
	}
	return seen, nil
}

func withoutListings(listings []domain.Listing, excluded map[string]struct{}) []domain.Listing {
	out := make([]domain.Listing, 0, len(listings))
	for _, l := range listings {
		if _, skip := excluded[string(l.ID)]; skip {
			continue
		}
		out = append(out, l)
	}
	return out
}

type nopNotifier struct{}

func (nopNotifier) MatchFormed(context.Context, *domain.Match, *domain.SeekerProfile, *domain.Listing) error {
	return nil
}

type nopMetrics struct{}

func (nopMetrics) SwipeRecorded(domain.Decision) {}
func (nopMetrics) DuplicateSwipe()               {}
func (nopMetrics) MatchMutual()                  {}
