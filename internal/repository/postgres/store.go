// Package postgres is the PostgreSQL storage adapter built on sqlx.
package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/gdugdh24/sublease-matcher-backend/internal/domain"
	"github.com/gdugdh24/sublease-matcher-backend/internal/repository"
)

//go:embed schema.sql
var schema string

const uniqueViolation = "23505"

// Store opens transactions on a shared connection pool.
type Store struct {
	db  *sqlx.DB
	now func() time.Time
}

type Option func(*Store)

// WithClock overrides the time source used for matched_at.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func NewStore(db *sqlx.DB, opts ...Option) *Store {
	s := &Store{db: db, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Migrate creates the tables and indexes when they do not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

func (s *Store) Begin(ctx context.Context) (repository.Tx, error) {
	sqlTx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &tx{tx: sqlTx, now: s.now}, nil
}

type tx struct {
	tx   *sqlx.Tx
	now  func() time.Time
	done bool
}

func (t *tx) Users() repository.UserRepository       { return &userRepository{tx: t.tx} }
func (t *tx) Seekers() repository.SeekerRepository   { return &profileRepository{tx: t.tx} }
func (t *tx) Hosts() repository.HostRepository       { return &hostRepository{tx: t.tx} }
func (t *tx) Listings() repository.ListingRepository { return &listingRepository{tx: t.tx} }
func (t *tx) Swipes() repository.SwipeRepository     { return &swipeRepository{tx: t.tx} }
func (t *tx) Matches() repository.MatchRepository    { return &matchRepository{tx: t.tx, now: t.now} }

func (t *tx) Commit() error {
	if t.done {
		return nil
	}
	t.done = true
	return t.tx.Commit()
}

func (t *tx) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	if err := t.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return err
	}
	return nil
}

// mapUniqueViolation turns a unique constraint failure into the domain error
// registered for that constraint.
func mapUniqueViolation(err error, byConstraint map[string]error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		if mapped, ok := byConstraint[pqErr.Constraint]; ok {
			return mapped
		}
		return domain.Conflictf("unique constraint %s violated", pqErr.Constraint)
	}
	return err
}

// limitArg returns nil for a non-positive limit so LIMIT $n means no limit.
func limitArg(limit int) any {
	if limit <= 0 {
		return nil
	}
	return limit
}

func page[T any](items []T, total, limit, offset int) repository.Page[T] {
	if offset < 0 {
		offset = 0
	}
	if offset > total {
		offset = total
	}
	if items == nil {
		items = []T{}
	}
	return repository.Page[T]{Items: items, Total: total, Limit: limit, Offset: offset}
}

func offsetArg(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}
