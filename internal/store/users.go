package store

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/ecashph/ecash/internal/apperr"
	"github.com/ecashph/ecash/internal/domain"
)

const userColumns = "id, username, first_name, last_name, email, role, password_hash, created_at"

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Username, &u.FirstName, &u.LastName,
		&u.Email, &u.Role, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser inserts an account. Duplicate username or email surfaces
// as a Conflict.
func (s *Store) CreateUser(ctx context.Context, u *domain.User) (*domain.User, error) {
	err := s.db.QueryRow(ctx,
		`INSERT INTO users (username, first_name, last_name, email, role, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, created_at`,
		u.Username, u.FirstName, u.LastName, u.Email, u.Role, u.PasswordHash,
	).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err, "") {
			return nil, apperr.New(apperr.Conflict, "user already exists")
		}
		return nil, internalErr(err, "user insert")
	}
	return u, nil
}

// GetUserByEmail finds an account by email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	u, err := scanUser(s.db.QueryRow(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=$1", email))
	if err == pgx.ErrNoRows {
		return nil, apperr.New(apperr.NotFound, "user not found")
	}
	if err != nil {
		return nil, internalErr(err, "user query")
	}
	return u, nil
}

// GetUser finds an account by id.
func (s *Store) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	u, err := scanUser(s.db.QueryRow(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=$1", id))
	if err == pgx.ErrNoRows {
		return nil, apperr.New(apperr.NotFound, "user not found")
	}
	if err != nil {
		return nil, internalErr(err, "user query")
	}
	return u, nil
}

// UpdatePassword replaces the stored hash of the account with the
// given email.
func (s *Store) UpdatePassword(ctx context.Context, email, passwordHash string) error {
	tag, err := s.db.Exec(ctx,
		"UPDATE users SET password_hash=$1 WHERE email=$2", passwordHash, email)
	if err != nil {
		return internalErr(err, "password update")
	}
	if tag.RowsAffected() == 0 {
		return apperr.New(apperr.NotFound, "user not found")
	}
	return nil
}
