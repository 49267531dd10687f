package match

import (
	"context"
	"sort"

	"github.com/gdugdh24/sublease-matcher-backend/internal/domain"
	"github.com/gdugdh24/sublease-matcher-backend/internal/repository"
)

type MatchUseCase struct {
	uow repository.UnitOfWork
}

func NewMatchUseCase(uow repository.UnitOfWork) *MatchUseCase {
	return &MatchUseCase{uow: uow}
}

// MyMatches returns the matches the user takes part in, either as the seeker
// or as the host of the listing. Best score first; a missing score counts as
// zero and ties are broken by id.
func (uc *MatchUseCase) MyMatches(ctx context.Context, userID domain.UserID, limit, offset int) (repository.Page[domain.Match], error) {
	var all repository.Page[domain.Match]
	err := repository.WithinTx(ctx, uc.uow, func(tx repository.Tx) error {
		var err error
		all, err = tx.Matches().ForUser(ctx, userID, 0, 0)
		return err
	})
	if err != nil {
		return repository.Page[domain.Match]{}, err
	}

	items := all.Items
	sort.SliceStable(items, func(i, j int) bool {
		si, sj := items[i].ScoreValue(), items[j].ScoreValue()
		if si != sj {
			return si > sj
		}
		return items[i].ID < items[j].ID
	})
	return repository.Paginate(items, limit, offset), nil
}

// Get returns a match the user takes part in.
func (uc *MatchUseCase) Get(ctx context.Context, userID domain.UserID, id domain.MatchID) (*domain.Match, error) {
	var match *domain.Match
	err := repository.WithinTx(ctx, uc.uow, func(tx repository.Tx) error {
		var err error
		match, err = tx.Matches().Get(ctx, id)
		if err != nil {
			return err
		}
		if match.SeekerID == domain.SeekerIDFor(userID) {
			return nil
		}
		listing, err := tx.Listings().Get(ctx, match.ListingID)
		if err != nil {
			return err
		}
		if listing.HostID != domain.HostIDFor(userID) {
			return domain.ErrMatchNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return match, nil
}
