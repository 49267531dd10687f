package repository

import (
	"context"
	"errors"
	"fmt"
)

// UnitOfWork starts transactions over the whole store.
type UnitOfWork interface {
	Begin(ctx context.Context) (Tx, error)
}

// Tx is an open transaction. Commit and Rollback are no-ops once either has
// completed.
type Tx interface {
	Users() UserRepository
	Seekers() SeekerRepository
	Hosts() HostRepository
	Listings() ListingRepository
	Swipes() SwipeRepository
	Matches() MatchRepository

	Commit() error
	Rollback() error
}

// WithinTx runs fn in a transaction. It commits when fn returns nil and rolls
// back when fn returns an error or panics; the panic is re-raised.
func WithinTx(ctx context.Context, uow UnitOfWork, fn func(tx Tx) error) (err error) {
	tx, err := uow.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				err = errors.Join(err, fmt.Errorf("rollback failed: %w", rbErr))
			}
			return
		}
		if cErr := tx.Commit(); cErr != nil {
			_ = tx.Rollback()
			err = fmt.Errorf("failed to commit transaction: %w", cErr)
		}
	}()

	return fn(tx)
}
