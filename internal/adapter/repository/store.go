package repository

import (
	"context"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/eslsoft/vocengage/internal/repository"
)

type txKey struct{}

// Store shares one ent driver between the repositories and scopes them to a transaction when the
// context carries one.
type Store struct {
	drv dialect.Driver
}

// NewStore wraps an ent driver.
func NewStore(drv dialect.Driver) *Store {
	return &Store{drv: drv}
}

// NewTransactor exposes the store as a repository.Transactor.
func NewTransactor(store *Store) repository.Transactor {
	return store
}

// InTx implements repository.Transactor. Nested calls join the outer transaction.
func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if _, ok := ctx.Value(txKey{}).(dialect.Tx); ok {
		return fn(ctx)
	}

	tx, err := s.drv.Tx(ctx)
	if err != nil {
		return storageError("begin transaction", err)
	}
	defer func() {
		if v := recover(); v != nil {
			_ = tx.Rollback()
			panic(v)
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			return fmt.Errorf("%w (rollback: %v)", err, rerr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return storageError("commit transaction", err)
	}
	return nil
}

func (s *Store) conn(ctx context.Context) dialect.ExecQuerier {
	if tx, ok := ctx.Value(txKey{}).(dialect.Tx); ok {
		return tx
	}
	return s.drv
}

func (s *Store) sql() *entsql.DialectBuilder {
	return entsql.Dialect(s.drv.Dialect())
}

func (s *Store) query(ctx context.Context, q entsql.Querier) (*entsql.Rows, error) {
	query, args := q.Query()
	rows := &entsql.Rows{}
	if err := s.conn(ctx).Query(ctx, query, args, rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// exec runs q and returns the number of affected rows.
func (s *Store) exec(ctx context.Context, q entsql.Querier) (int64, error) {
	query, args := q.Query()
	var res stdsqlResult
	if err := s.conn(ctx).Exec(ctx, query, args, &res); err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store) count(ctx context.Context, table string, where *entsql.Predicate) (int64, error) {
	rows, err := s.query(ctx, s.sql().Select(entsql.Count("*")).From(entsql.Table(table)).Where(where))
	if err != nil {
		return 0, err
	}
	defer rows.Close()
	var n int64
	if rows.Next() {
		if err := rows.Scan(&n); err != nil {
			return 0, err
		}
	}
	return n, rows.Err()
}

func orderExpr(column string, desc bool) string {
	if desc {
		return entsql.Desc(column)
	}
	return entsql.Asc(column)
}

func utc(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC()
}
