// Package services contains the account flow orchestration: registration,
// e-mail verification, password reset and credential sign-in. Each operation
// is a short sequence of store reads/writes gated by token validity checks.
// Collaborator failures are logged and surface as common.ErrorInternal; no
// store or mail detail crosses the service boundary.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/dbx"
	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/server/auth"
	"github.com/dmitrijs2005/authkeeper/internal/server/config"
	"github.com/dmitrijs2005/authkeeper/internal/server/mail"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/authkeeper/internal/server/tokens"
	"github.com/google/uuid"
)

// User-facing response messages. The resend/forgot generic messages are
// returned whether or not the account exists, so the endpoints cannot be
// used to enumerate registered addresses.
const (
	MsgUserCreated      = "User created successfully. Please check your email to verify your account."
	MsgEmailVerified    = "Email verified successfully"
	MsgVerificationSent = "Verification email sent successfully"
	MsgResendGeneric    = "If an account with that email exists and is unverified, we've sent a verification email."
	MsgForgotGeneric    = "If an account with that email exists, we've sent a password reset link."
	MsgPasswordReset    = "Password reset successfully"
)

// TokenPair is the session credential set issued on sign-in.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Identity is the minimal view of an authenticated user handed to the
// session layer.
type Identity struct {
	ID       string
	Email    string
	Name     string
	IsActive bool
}

type AccountService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	mailer                       mail.Mailer
	logger                       logging.Logger
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
	verificationTokenValidity    time.Duration
	resetTokenValidity           time.Duration
	resendCooldown               time.Duration

	// now is a clock seam for expiry and rate-limit tests.
	now func() time.Time
}

func NewAccountService(db *sql.DB, m repomanager.RepositoryManager, mailer mail.Mailer, logger logging.Logger, cfg *config.Config) *AccountService {
	return &AccountService{
		db:                           db,
		repomanager:                  m,
		mailer:                       mailer,
		logger:                       logger.With("module", "accounts"),
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
		verificationTokenValidity:    cfg.VerificationTokenValidityDuration,
		resetTokenValidity:           cfg.ResetTokenValidityDuration,
		resendCooldown:               cfg.ResendCooldown,
		now:                          time.Now,
	}
}

// issueToken creates a fresh verification token row bound to identifier,
// replacing any live tokens of the same type. Runs on the provided handle so
// callers can make replacement atomic.
func (s *AccountService) issueToken(ctx context.Context, tx dbx.DBTX, identifier, tokenType string, validity time.Duration) (*models.VerificationToken, error) {
	repo := s.repomanager.VerificationTokens(tx)

	if err := repo.DeleteByIdentifier(ctx, identifier, tokenType); err != nil {
		return nil, fmt.Errorf("error deleting previous tokens: %w", err)
	}

	value, err := tokens.Issue(tokens.DefaultByteLength)
	if err != nil {
		return nil, fmt.Errorf("error issuing token: %w", err)
	}

	now := s.now()
	vt := &models.VerificationToken{
		Identifier: identifier,
		Token:      value,
		Type:       tokenType,
		Expires:    tokens.ExpiryFrom(now, validity),
		CreatedAt:  now,
	}

	if err := repo.Create(ctx, vt); err != nil {
		return nil, fmt.Errorf("error storing token: %w", err)
	}

	return vt, nil
}

// Register creates an inactive user, stores a 24h e-mail verification token
// and mails the verification link. The token exists durably before the mail
// referencing it is sent.
func (s *AccountService) Register(ctx context.Context, name, email, password string) (*models.User, error) {

	if name == "" || email == "" || password == "" {
		return nil, common.ErrorValidation
	}

	userRepo := s.repomanager.Users(s.db)

	_, err := userRepo.GetByEmail(ctx, email)
	if err == nil {
		return nil, common.ErrorAlreadyExists
	}
	if !errors.Is(err, common.ErrorNotFound) {
		s.logger.Error(ctx, "registration lookup failed", "error", err)
		return nil, common.ErrorInternal
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		s.logger.Error(ctx, "password hashing failed", "error", err)
		return nil, common.ErrorInternal
	}

	user := &models.User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: &hash,
		IsActive:     false,
	}

	var vt *models.VerificationToken

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.repomanager.Users(tx).Create(ctx, user); err != nil {
			return fmt.Errorf("error creating user: %w", err)
		}

		vt, err = s.issueToken(ctx, tx, email, models.TokenTypeEmailVerification, s.verificationTokenValidity)
		return err
	})
	if err != nil {
		s.logger.Error(ctx, "registration failed", "error", err)
		return nil, common.ErrorInternal
	}

	if err := s.mailer.SendVerificationEmail(ctx, email, vt.Token); err != nil {
		s.logger.Error(ctx, "verification email failed", "error", err)
		return nil, common.ErrorInternal
	}

	s.logger.Info(ctx, "user registered", "email", email)
	return user, nil
}

// VerifyEmail consumes an e-mail verification token: the target user becomes
// active with email_verified stamped, and the token is deleted. An expired
// token is purged as a side effect of detecting the expiry.
func (s *AccountService) VerifyEmail(ctx context.Context, token string) error {

	if token == "" {
		return common.ErrorValidation
	}

	tokenRepo := s.repomanager.VerificationTokens(s.db)

	vt, err := tokenRepo.GetByToken(ctx, token, models.TokenTypeEmailVerification)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrInvalidToken
		}
		s.logger.Error(ctx, "token lookup failed", "error", err)
		return common.ErrorInternal
	}

	now := s.now()
	if vt.IsExpired(now) {
		if err := tokenRepo.Delete(ctx, token); err != nil {
			s.logger.Error(ctx, "expired token purge failed", "error", err)
			return common.ErrorInternal
		}
		return common.ErrTokenExpired
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Users(tx).Activate(ctx, vt.Identifier, now); err != nil {
			return fmt.Errorf("error activating user: %w", err)
		}
		if err := s.repomanager.VerificationTokens(tx).Delete(ctx, token); err != nil {
			return fmt.Errorf("error consuming token: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error(ctx, "email verification failed", "error", err)
		return common.ErrorInternal
	}

	s.logger.Info(ctx, "email verified", "email", vt.Identifier)
	return nil
}

// ResendVerification replaces the live verification token for an unverified
// account and mails a fresh link. Requests within the cooldown window of the
// newest live token are rejected. An unknown address gets the same generic
// success message as a served one.
func (s *AccountService) ResendVerification(ctx context.Context, email string) (string, error) {

	if email == "" {
		return "", common.ErrorValidation
	}

	userRepo := s.repomanager.Users(s.db)

	user, err := userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return MsgResendGeneric, nil
		}
		s.logger.Error(ctx, "resend lookup failed", "error", err)
		return "", common.ErrorInternal
	}

	if user.IsActive {
		return "", common.ErrAlreadyVerified
	}

	now := s.now()
	tokenRepo := s.repomanager.VerificationTokens(s.db)

	latest, err := tokenRepo.FindNewestLive(ctx, email, models.TokenTypeEmailVerification, now)
	if err == nil {
		if now.Sub(latest.CreatedAt) < s.resendCooldown {
			return "", common.ErrRateLimited
		}
	} else if !errors.Is(err, common.ErrorNotFound) {
		s.logger.Error(ctx, "resend token lookup failed", "error", err)
		return "", common.ErrorInternal
	}

	var vt *models.VerificationToken

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		vt, err = s.issueToken(ctx, tx, email, models.TokenTypeEmailVerification, s.verificationTokenValidity)
		return err
	})
	if err != nil {
		s.logger.Error(ctx, "verification token reissue failed", "error", err)
		return "", common.ErrorInternal
	}

	if err := s.mailer.SendVerificationEmail(ctx, email, vt.Token); err != nil {
		s.logger.Error(ctx, "verification email failed", "error", err)
		return "", common.ErrorInternal
	}

	return MsgVerificationSent, nil
}

// ForgotPassword issues a 1h password-reset token and mails the link. The
// response message is byte-identical whether or not the account exists.
func (s *AccountService) ForgotPassword(ctx context.Context, email string) (string, error) {

	if email == "" {
		return "", common.ErrorValidation
	}

	userRepo := s.repomanager.Users(s.db)

	if _, err := userRepo.GetByEmail(ctx, email); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return MsgForgotGeneric, nil
		}
		s.logger.Error(ctx, "forgot-password lookup failed", "error", err)
		return "", common.ErrorInternal
	}

	var vt *models.VerificationToken
	var err error

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		vt, err = s.issueToken(ctx, tx, email, models.TokenTypePasswordReset, s.resetTokenValidity)
		return err
	})
	if err != nil {
		s.logger.Error(ctx, "reset token issue failed", "error", err)
		return "", common.ErrorInternal
	}

	if err := s.mailer.SendPasswordResetEmail(ctx, email, vt.Token); err != nil {
		s.logger.Error(ctx, "reset email failed", "error", err)
		return "", common.ErrorInternal
	}

	return MsgForgotGeneric, nil
}

// ResetPassword consumes a password-reset token and replaces the password
// hash of the user the token identifies.
func (s *AccountService) ResetPassword(ctx context.Context, token, password string) error {

	if token == "" || password == "" {
		return common.ErrorValidation
	}

	tokenRepo := s.repomanager.VerificationTokens(s.db)

	vt, err := tokenRepo.GetByToken(ctx, token, models.TokenTypePasswordReset)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrInvalidToken
		}
		s.logger.Error(ctx, "token lookup failed", "error", err)
		return common.ErrorInternal
	}

	if vt.IsExpired(s.now()) {
		if err := tokenRepo.Delete(ctx, token); err != nil {
			s.logger.Error(ctx, "expired token purge failed", "error", err)
			return common.ErrorInternal
		}
		return common.ErrTokenExpired
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		s.logger.Error(ctx, "password hashing failed", "error", err)
		return common.ErrorInternal
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Users(tx).UpdatePasswordHash(ctx, vt.Identifier, hash); err != nil {
			return fmt.Errorf("error updating password: %w", err)
		}
		if err := s.repomanager.VerificationTokens(tx).Delete(ctx, token); err != nil {
			return fmt.Errorf("error consuming token: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error(ctx, "password reset failed", "error", err)
		return common.ErrorInternal
	}

	s.logger.Info(ctx, "password reset", "email", vt.Identifier)
	return nil
}

// Authorize checks credentials and returns the minimal identity handed to
// the session layer. An existing credential on an inactive account is the
// distinguished common.ErrEmailNotVerified, which callers must surface
// separately from plain bad credentials.
func (s *AccountService) Authorize(ctx context.Context, email, password string) (*Identity, error) {

	if email == "" || password == "" {
		return nil, common.ErrorUnauthorized
	}

	userRepo := s.repomanager.Users(s.db)

	user, err := userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		s.logger.Error(ctx, "sign-in lookup failed", "error", err)
		return nil, common.ErrorInternal
	}

	if user.PasswordHash == nil {
		return nil, common.ErrorUnauthorized
	}

	if !user.IsActive {
		return nil, common.ErrEmailNotVerified
	}

	if !auth.CheckPassword(password, *user.PasswordHash) {
		return nil, common.ErrorUnauthorized
	}

	return &Identity{ID: user.ID, Email: user.Email, Name: user.Name, IsActive: user.IsActive}, nil
}

// Login authorizes the credentials and issues a session token pair.
func (s *AccountService) Login(ctx context.Context, email, password string) (*TokenPair, error) {

	identity, err := s.Authorize(ctx, email, password)
	if err != nil {
		return nil, err
	}

	var pair *TokenPair

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		pair, err = s.generateTokenPair(ctx, tx, identity.ID)
		return err
	})
	if err != nil {
		s.logger.Error(ctx, "session issue failed", "error", err)
		return nil, common.ErrorInternal
	}

	return pair, nil
}

// RefreshSession rotates a refresh token: the presented token is revoked and
// a fresh pair is issued, atomically.
func (s *AccountService) RefreshSession(ctx context.Context, refreshToken string) (*TokenPair, error) {

	repo := s.repomanager.RefreshTokens(s.db)

	token, err := repo.Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidToken
		}
		s.logger.Error(ctx, "refresh token lookup failed", "error", err)
		return nil, common.ErrorInternal
	}

	if token.Expires.Before(s.now()) {
		return nil, common.ErrRefreshTokenExpired
	}

	var pair *TokenPair

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.RefreshTokens(tx).Delete(ctx, refreshToken); err != nil {
			return fmt.Errorf("error deleting refresh token: %w", err)
		}

		pair, err = s.generateTokenPair(ctx, tx, token.UserID)
		return err
	})
	if err != nil {
		s.logger.Error(ctx, "session refresh failed", "error", err)
		return nil, common.ErrorInternal
	}

	return pair, nil
}

// ProvisionFederatedUser records a user created by an external identity
// provider. Federated identities are trusted without the e-mail token loop:
// the account is active immediately, email_verified is stamped and no
// password hash is stored. Existing accounts are returned unchanged.
func (s *AccountService) ProvisionFederatedUser(ctx context.Context, name, email string) (*models.User, error) {

	if email == "" {
		return nil, common.ErrorValidation
	}

	userRepo := s.repomanager.Users(s.db)

	existing, err := userRepo.GetByEmail(ctx, email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		s.logger.Error(ctx, "federated lookup failed", "error", err)
		return nil, common.ErrorInternal
	}

	now := s.now()
	user := &models.User{
		ID:            uuid.New().String(),
		Name:          name,
		Email:         email,
		IsActive:      true,
		EmailVerified: &now,
	}

	if _, err := userRepo.Create(ctx, user); err != nil {
		s.logger.Error(ctx, "federated provisioning failed", "error", err)
		return nil, common.ErrorInternal
	}

	s.logger.Info(ctx, "federated user provisioned", "email", email)
	return user, nil
}

func (s *AccountService) generateTokenPair(ctx context.Context, tx dbx.DBTX, userID string) (*TokenPair, error) {

	accessToken, err := auth.GenerateToken(userID, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, fmt.Errorf("error generating access token: %w", err)
	}

	refreshToken, err := tokens.Issue(tokens.DefaultByteLength)
	if err != nil {
		return nil, fmt.Errorf("error generating refresh token: %w", err)
	}

	err = s.repomanager.RefreshTokens(tx).Create(ctx, userID, refreshToken, s.refreshTokenValidityDuration)
	if err != nil {
		return nil, fmt.Errorf("error storing refresh token: %w", err)
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}
