package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ecashph/ecash/internal/apperr"
	"github.com/ecashph/ecash/internal/domain"
)

// CreateOtp persists a fresh password-reset challenge.
func (s *Store) CreateOtp(ctx context.Context, otp *domain.OtpChallenge) error {
	_, err := s.db.Exec(ctx,
		"INSERT INTO otp_challenges (id, email, code, expires_at) VALUES ($1, $2, $3, $4)",
		otp.ID, otp.Email, otp.Code, otp.ExpiresAt)
	if err != nil {
		return internalErr(err, "otp insert")
	}
	return nil
}

// LatestOtp returns the newest unconsumed challenge for an email.
// Expiry is the caller's check; storage only tracks consumption.
func (s *Store) LatestOtp(ctx context.Context, email string) (*domain.OtpChallenge, error) {
	var otp domain.OtpChallenge
	err := s.db.QueryRow(ctx,
		`SELECT id, email, code, expires_at, consumed, created_at
		FROM otp_challenges WHERE email=$1 AND consumed=FALSE
		ORDER BY created_at DESC LIMIT 1`, email,
	).Scan(&otp.ID, &otp.Email, &otp.Code, &otp.ExpiresAt, &otp.Consumed, &otp.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, apperr.New(apperr.NotFound, "no pending reset code")
	}
	if err != nil {
		return nil, internalErr(err, "otp query")
	}
	return &otp, nil
}

// ConsumeOtp marks a challenge used. The consumed=FALSE guard makes
// consumption exactly-once even under concurrent verification.
func (s *Store) ConsumeOtp(ctx context.Context, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx,
		"UPDATE otp_challenges SET consumed=TRUE WHERE id=$1 AND consumed=FALSE", id)
	if err != nil {
		return internalErr(err, "otp consume")
	}
	if tag.RowsAffected() == 0 {
		return apperr.New(apperr.Conflict, "reset code already used")
	}
	return nil
}
