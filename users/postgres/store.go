// Package postgres implements the user store on PostgreSQL via pgx.
package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	apperrors "github.com/jrsteele09/go-session-auth/internal/errors"
	"github.com/jrsteele09/go-session-auth/users"
)

// Store is a pgx-backed users.Repo. The pool is safe for concurrent use.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a Store on the given connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

var _ users.Repo = (*Store)(nil)

// Health checks database connectivity.
func (s *Store) Health(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

const userColumns = `id, login_id, display_name, email, password_hash, role, created_at`

// GetByLoginID returns the user with the given login_id.
func (s *Store) GetByLoginID(ctx context.Context, loginID string) (*users.User, error) {
	return s.getBy(ctx, `SELECT `+userColumns+` FROM users WHERE login_id = $1`, loginID)
}

// GetByID returns the user with the given id.
func (s *Store) GetByID(ctx context.Context, id string) (*users.User, error) {
	return s.getBy(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (s *Store) getBy(ctx context.Context, query, arg string) (*users.User, error) {
	var u users.User
	row := s.pool.QueryRow(ctx, query, arg)
	err := row.Scan(
		&u.ID,
		&u.LoginID,
		&u.DisplayName,
		&u.Email,
		&u.PasswordHash,
		&u.Role,
		&u.CreatedAt,
	)
	if err != nil {
		return nil, mapReadErr(err)
	}
	return &u, nil
}

// Insert persists a new user record. A collision on login_id or email
// surfaces as errors.ErrDuplicateAccount.
func (s *Store) Insert(ctx context.Context, user *users.User) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO users (id, login_id, display_name, email, password_hash, role, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		user.ID,
		user.LoginID,
		user.DisplayName,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.CreatedAt,
	)
	if err != nil {
		return mapWriteErr(err)
	}
	return nil
}

// ExistsByLoginID reports whether a user with the given login_id exists.
func (s *Store) ExistsByLoginID(ctx context.Context, loginID string) (bool, error) {
	var one int
	err := s.pool.QueryRow(ctx, `SELECT 1 FROM users WHERE login_id = $1`, loginID).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, mapConnErr(err)
	}
	return true, nil
}

func mapReadErr(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.ErrAccountNotFound
	}
	return mapConnErr(err)
}

func mapWriteErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return apperrors.ErrDuplicateAccount
	}
	return mapConnErr(err)
}

// mapConnErr folds timeouts and cancellation into the retryable
// Unavailable condition; anything else keeps its driver detail for logs.
func mapConnErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return apperrors.Wrapf(apperrors.ErrUnavailable, "user store: %v", err)
	}
	return apperrors.Wrapf(err, "user store")
}
