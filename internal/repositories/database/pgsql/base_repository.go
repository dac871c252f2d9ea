package pgsql

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SscSPs/fundraising_app/internal/apperrors"
	portsrepo "github.com/SscSPs/fundraising_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// dbtx is satisfied by both *pgxpool.Pool and pgx.Tx.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// BaseRepository provides common functionality for all repositories
type BaseRepository struct {
	Pool *pgxpool.Pool
}

// Begin starts a new database transaction
func (r *BaseRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.Pool.Begin(ctx)
	if err != nil {
		return nil, apperrors.NewAppError(apperrors.KindInternal, "failed to begin transaction", err)
	}
	return tx, nil
}

// Commit commits a transaction
func (r *BaseRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Commit(ctx); err != nil {
		return apperrors.NewAppError(apperrors.KindInternal, "failed to commit transaction", err)
	}
	return nil
}

// Rollback rolls back a transaction
func (r *BaseRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return apperrors.NewAppError(apperrors.KindInternal, "failed to rollback transaction", err)
	}
	return nil
}

// WithinTx runs fn with queries bound to a single transaction.
func (r *BaseRepository) WithinTx(ctx context.Context, fn func(ctx context.Context, tx portsrepo.MirrorTx) error) (err error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			_ = r.Rollback(ctx, tx)
			panic(p)
		}
	}()

	if err := fn(ctx, &pgxQueries{db: tx}); err != nil {
		if rbErr := r.Rollback(ctx, tx); rbErr != nil {
			slog.ErrorContext(ctx, "Rollback failed", slog.String("error", rbErr.Error()))
		}
		return err
	}
	return r.Commit(ctx, tx)
}

// pgErrorCode returns the SQLSTATE of a PostgreSQL error, or "".
func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

func notFoundOr(err error, format string, args ...any) error {
	if errorsIsNoRows(err) {
		return apperrors.ErrNotFound
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

func errorsIsNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
