package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/google/uuid"

	"github.com/ecashph/ecash/internal/apperr"
	"github.com/ecashph/ecash/internal/auth"
	"github.com/ecashph/ecash/internal/clock"
	"github.com/ecashph/ecash/internal/domain"
	"github.com/ecashph/ecash/internal/mail"
)

// UserStore is the account persistence the auth flow needs.
type UserStore interface {
	CreateUser(ctx context.Context, u *domain.User) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	UpdatePassword(ctx context.Context, email, passwordHash string) error
	CreateOtp(ctx context.Context, otp *domain.OtpChallenge) error
	LatestOtp(ctx context.Context, email string) (*domain.OtpChallenge, error)
	ConsumeOtp(ctx context.Context, id uuid.UUID) error
}

// AuthService handles account signup/login and the OTP password-reset
// flow. It is the collaborator surface around the ledger core: the
// core only ever sees the actor id resolved from a session token.
type AuthService struct {
	store  UserStore
	tokens *auth.Tokens
	mailer mail.Mailer
	clock  clock.Clock
	log    *slog.Logger
}

func NewAuthService(store UserStore, tokens *auth.Tokens, mailer mail.Mailer, clk clock.Clock, log *slog.Logger) *AuthService {
	return &AuthService{store: store, tokens: tokens, mailer: mailer, clock: clk, log: log}
}

// Signup creates an account with a bcrypt-hashed password.
func (s *AuthService) Signup(ctx context.Context, username, firstName, lastName, email, password string) (*domain.User, error) {
	if username == "" || firstName == "" || lastName == "" || email == "" || password == "" {
		return nil, apperr.New(apperr.Validation, "all fields are required")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "password hashing failed")
	}
	u := &domain.User{
		Username:     username,
		FirstName:    firstName,
		LastName:     lastName,
		Email:        email,
		Role:         domain.RoleUser,
		PasswordHash: hash,
	}
	return s.store.CreateUser(ctx, u)
}

// Login verifies credentials and issues a session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	if email == "" || password == "" {
		return nil, "", apperr.New(apperr.Validation, "email and password are required")
	}
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		// Same response for unknown email and bad password.
		return nil, "", apperr.New(apperr.Validation, "invalid credentials")
	}
	if !auth.CheckPassword(password, user.PasswordHash) {
		return nil, "", apperr.New(apperr.Validation, "invalid credentials")
	}

	token, err := s.tokens.Issue(user, s.clock.Now())
	if err != nil {
		return nil, "", apperr.Wrap(apperr.Internal, err, "token issue failed")
	}
	return user, token, nil
}

// RequestReset issues a 6-digit OTP valid for domain.OtpWindow and
// emails it. An unknown email gets the same success response so the
// endpoint does not reveal which addresses exist.
func (s *AuthService) RequestReset(ctx context.Context, email string) error {
	if email == "" {
		return apperr.New(apperr.Validation, "email is required")
	}
	if _, err := s.store.GetUserByEmail(ctx, email); err != nil {
		s.log.Warn("password reset requested for unknown email", "email", email)
		return nil
	}

	code, err := generateOtpCode()
	if err != nil {
		return apperr.Wrap(apperr.Internal, err, "otp generation failed")
	}
	otp := &domain.OtpChallenge{
		ID:        uuid.New(),
		Email:     email,
		Code:      code,
		ExpiresAt: s.clock.Now().Add(domain.OtpWindow),
	}
	if err := s.store.CreateOtp(ctx, otp); err != nil {
		return err
	}
	if err := s.mailer.SendOtp(email, code); err != nil {
		s.log.Error("otp email delivery failed", "email", email, "error", err)
		return apperr.Wrap(apperr.Internal, err, "otp delivery failed")
	}
	return nil
}

// CompleteReset consumes a matching, unexpired OTP exactly once and
// sets the new password.
func (s *AuthService) CompleteReset(ctx context.Context, email, code, newPassword string) error {
	if email == "" || code == "" || newPassword == "" {
		return apperr.New(apperr.Validation, "email, code and new password are required")
	}

	otp, err := s.store.LatestOtp(ctx, email)
	if err != nil {
		return apperr.New(apperr.Validation, "invalid or expired reset code")
	}
	if otp.Code != code {
		return apperr.New(apperr.Validation, "invalid or expired reset code")
	}
	if s.clock.Now().After(otp.ExpiresAt) {
		return apperr.New(apperr.Validation, "invalid or expired reset code")
	}
	if err := s.store.ConsumeOtp(ctx, otp.ID); err != nil {
		return apperr.New(apperr.Validation, "invalid or expired reset code")
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return apperr.Wrap(apperr.Internal, err, "password hashing failed")
	}
	return s.store.UpdatePassword(ctx, email, hash)
}

// Verify resolves a session token to its claims.
func (s *AuthService) Verify(token string) (*auth.Claims, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, apperr.Wrap(apperr.Validation, err, "invalid token")
	}
	return claims, nil
}

func generateOtpCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
