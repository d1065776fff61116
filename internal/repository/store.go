package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrDuplicateKey signals a unique constraint violation on insert.
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrUnitOccupied signals that a conditional bind found the unit already taken.
	ErrUnitOccupied = errors.New("unit already occupied")
)

const uniqueViolation = "23505"

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store groups the repositories that share one connection or transaction.
type Store interface {
	Units() UnitRepository
	RegistrationKeys() RegistrationKeyRepository
	Users() UserRepository
	Profiles() ProfileRepository
	Properties() PropertyRepository
}

// Transactor runs fn against a Store bound to a single transaction.
// fn's error rolls the transaction back; nil commits.
type Transactor interface {
	RunInTx(ctx context.Context, fn func(store Store) error) error
}

type pgStore struct {
	units      UnitRepository
	keys       RegistrationKeyRepository
	users      UserRepository
	profiles   ProfileRepository
	properties PropertyRepository
}

// NewStore builds Postgres-backed repositories over db.
func NewStore(db DBTX) Store {
	return &pgStore{
		units:      NewUnitRepository(db),
		keys:       NewRegistrationKeyRepository(db),
		users:      NewUserRepository(db),
		profiles:   NewProfileRepository(db),
		properties: NewPropertyRepository(db),
	}
}

func (s *pgStore) Units() UnitRepository                       { return s.units }
func (s *pgStore) RegistrationKeys() RegistrationKeyRepository { return s.keys }
func (s *pgStore) Users() UserRepository                       { return s.users }
func (s *pgStore) Profiles() ProfileRepository                 { return s.profiles }
func (s *pgStore) Properties() PropertyRepository              { return s.properties }

// PgTransactor opens read-committed transactions on a pool.
type PgTransactor struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

// NewPgTransactor constructs a transactor. A zero timeout defaults to five seconds.
func NewPgTransactor(pool *pgxpool.Pool, timeout time.Duration) *PgTransactor {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &PgTransactor{pool: pool, timeout: timeout}
}

func (t *PgTransactor) RunInTx(ctx context.Context, fn func(store Store) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("transaction aborted: %w", err)
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	tx, err := t.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := fn(NewStore(tx)); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
