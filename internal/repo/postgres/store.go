package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/tasktracker/internal/observability"
	"github.com/geocoder89/tasktracker/internal/repo"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	constraintUsernameUnique  = "users_username_uniq"
	constraintLabelNameUnique = "labels_name_owner_uniq"

	constraintLabelOwnerFK     = "labels_owner_fk"
	constraintTaskOwnerFK      = "tasks_owner_fk"
	constraintTaskLabelLabelFK = "task_labels_label_fk"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Store struct {
	pool *pgxpool.Pool
	q    querier
	prom *observability.Prom
}

var _ repo.Store = (*Store)(nil)

func NewStore(pool *pgxpool.Pool, prom *observability.Prom) *Store {
	return &Store{
		pool: pool,
		q:    pool,
		prom: prom,
	}
}

func (s *Store) observe(op string, fn func() error) error {
	if s.prom != nil {
		return s.prom.ObserveDB(op, fn)
	}
	return fn()
}

// WithinTx uses the named return and defer approach so every exit path rolls back
// unless Commit succeeded. A store already bound to a transaction runs fn inline.
func (s *Store) WithinTx(ctx context.Context, fn func(repo.Store) error) (err error) {
	if s.pool == nil {
		return fn(s)
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	err = fn(&Store{q: tx, prom: s.prom})
	if err != nil {
		return
	}

	err = tx.Commit(ctx)
	return
}

func violates(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == constraint
}

func missingReference(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503" && pgErr.ConstraintName == constraint
}
