package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/Flarenzy/stateless-auth/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const (
	findUserByUsername = `SELECT username, password_hash, roles FROM users WHERE username = $1`
	listUsers          = `SELECT username, password_hash, roles FROM users ORDER BY username`
	createUser         = `INSERT INTO users (username, password_hash, roles) VALUES ($1, $2, $3)`
)

type PostgresUserRepository struct {
	db DBTX
}

func NewPostgresUserRepository(db DBTX) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

func (r *PostgresUserRepository) FindByUsername(ctx context.Context, username string) (domain.User, error) {
	var u domain.User
	err := r.db.QueryRow(ctx, findUserByUsername, username).Scan(&u.Username, &u.PasswordHash, &u.Roles)
	if err != nil {
		if isNoRows(err) {
			return domain.User{}, domain.ErrNotFound
		}
		return domain.User{}, err
	}

	return u, nil
}

func (r *PostgresUserRepository) List(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.Query(ctx, listUsers)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.Username, &u.PasswordHash, &u.Roles); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return out, nil
}

func (r *PostgresUserRepository) Create(ctx context.Context, u domain.User) error {
	if u.Username == "" || u.PasswordHash == "" {
		return fmt.Errorf("%w: username and password hash are required", domain.ErrInvalidInput)
	}

	roles := u.Roles
	if roles == nil {
		roles = []string{}
	}

	if _, err := r.db.Exec(ctx, createUser, u.Username, u.PasswordHash, roles); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return err
	}
	return nil
}

func (r *PostgresUserRepository) Ping(ctx context.Context) error {
	_, err := r.db.Exec(ctx, "SELECT 1")
	return err
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
