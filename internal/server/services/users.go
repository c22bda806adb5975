// Package services implements the application operations over the version
// store: users, households, accounts, entries and debts. Each mutation goes
// through the stale-then-append write path and emits one audit entry.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/homeledger/internal/common"
	"github.com/dmitrijs2005/homeledger/internal/logging"
	"github.com/dmitrijs2005/homeledger/internal/server/audit"
	"github.com/dmitrijs2005/homeledger/internal/server/auth"
	"github.com/dmitrijs2005/homeledger/internal/server/config"
	"github.com/dmitrijs2005/homeledger/internal/server/models"
	"github.com/dmitrijs2005/homeledger/internal/versionstore"
)

type TokenPair struct {
	AccessToken  string
	RefreshToken string

	// PasswordExpired is set on login when the password is older than
	// auth.PasswordExpiryDays. Login still succeeds; clients are expected
	// to steer the user towards a password change.
	PasswordExpired bool
}

// UserUpdate carries optional field changes; nil means "keep".
type UserUpdate struct {
	UserName *string
	Email    *string
	Password *string
}

type Users struct {
	users           *versionstore.Store[models.User, *models.User]
	refreshTokens   *versionstore.Store[models.RefreshToken, *models.RefreshToken]
	passwordHistory *versionstore.Store[models.PasswordHistory, *models.PasswordHistory]
	passwordResets  *versionstore.Store[models.PasswordResetToken, *models.PasswordResetToken]
	userHouseholds  *versionstore.Store[models.UserHousehold, *models.UserHousehold]
	userAccounts    *versionstore.Store[models.UserAccount, *models.UserAccount]

	audit *audit.Recorder
	log   logging.Logger

	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
}

func NewUsers(
	users *versionstore.Store[models.User, *models.User],
	refreshTokens *versionstore.Store[models.RefreshToken, *models.RefreshToken],
	passwordHistory *versionstore.Store[models.PasswordHistory, *models.PasswordHistory],
	passwordResets *versionstore.Store[models.PasswordResetToken, *models.PasswordResetToken],
	userHouseholds *versionstore.Store[models.UserHousehold, *models.UserHousehold],
	userAccounts *versionstore.Store[models.UserAccount, *models.UserAccount],
	rec *audit.Recorder,
	log logging.Logger,
	cfg *config.Config,
) *Users {
	return &Users{
		users:                        users,
		refreshTokens:                refreshTokens,
		passwordHistory:              passwordHistory,
		passwordResets:               passwordResets,
		userHouseholds:               userHouseholds,
		userAccounts:                 userAccounts,
		audit:                        rec,
		log:                          log.With("service", "users"),
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
	}
}

func (s *Users) findLiveByEmail(ctx context.Context, email string) (*models.User, error) {
	rows, err := s.users.Load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		u := &rows[i]
		if u.Meta.Live() && u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (s *Users) Register(ctx context.Context, userName, email, password string) (*models.User, error) {
	email = auth.NormalizeEmail(email)

	if err := auth.ValidatePasswordStrength(password); err != nil {
		return nil, err
	}

	existing, err := s.findLiveByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("email already registered: %w", common.ErrorAlreadyExists)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &models.User{
		UserID:         uuid.NewString(),
		UserName:       userName,
		Email:          email,
		HashedPassword: hash,
		IsActive:       true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, user.UserID, "register", models.Users.Name, user.UserID,
		map[string]any{"email": email})
	return user, nil
}

func (s *Users) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	user, err := s.findLiveByEmail(ctx, auth.NormalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if user == nil || !auth.CheckPassword(user.HashedPassword, password) {
		return nil, fmt.Errorf("invalid email or password: %w", common.ErrorUnauthorized)
	}
	if user.IsSuspended {
		return nil, fmt.Errorf("user is suspended: %w", common.ErrorForbidden)
	}

	pair, err := s.issueTokens(ctx, user.UserID)
	if err != nil {
		return nil, err
	}
	pair.PasswordExpired = auth.IsPasswordExpired(user.PasswordChangedAt)

	s.audit.Record(ctx, user.UserID, "login", models.Users.Name, user.UserID, nil)
	return pair, nil
}

func (s *Users) issueTokens(ctx context.Context, userID string) (*TokenPair, error) {
	accessToken, err := auth.GenerateToken(userID, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}

	refreshToken, err := common.MakeRandHexString(32)
	if err != nil {
		return nil, common.ErrorInternal
	}

	rec := &models.RefreshToken{
		RefreshTokenID: uuid.NewString(),
		UserID:         userID,
		Token:          refreshToken,
		ExpiresAt:      time.Now().UTC().Add(s.refreshTokenValidityDuration),
	}
	if err := s.refreshTokens.Create(ctx, rec); err != nil {
		return nil, err
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// Refresh rotates a refresh token: the presented token version is staled and
// a fresh pair is issued.
func (s *Users) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	rows, err := s.refreshTokens.Load(ctx)
	if err != nil {
		return nil, err
	}

	var match *models.RefreshToken
	for i := range rows {
		t := &rows[i]
		if t.Meta.Live() && t.Token == refreshToken {
			match = t
			break
		}
	}
	if match == nil {
		return nil, common.ErrInvalidToken
	}
	if time.Now().After(match.ExpiresAt) {
		return nil, common.ErrRefreshTokenExpired
	}

	if err := s.refreshTokens.MarkStale(ctx, match.RefreshTokenID); err != nil {
		return nil, err
	}

	return s.issueTokens(ctx, match.UserID)
}

// Get returns the live user for id.
func (s *Users) Get(ctx context.Context, userID string) (*models.User, error) {
	return s.users.Current(ctx, userID)
}

// Update replaces the user's current version, carrying created_at and
// unchanged fields forward. A password change appends a password-history
// record, stamps password_changed_at and invalidates every refresh token so
// the user has to log in again everywhere.
func (s *Users) Update(ctx context.Context, userID string, upd UserUpdate) (*models.User, error) {
	user, err := s.users.Current(ctx, userID)
	if err != nil {
		return nil, err
	}

	passwordChanged := false
	if upd.UserName != nil {
		user.UserName = *upd.UserName
	}
	if upd.Email != nil {
		user.Email = auth.NormalizeEmail(*upd.Email)
	}
	if upd.Password != nil {
		if err := auth.ValidatePasswordStrength(*upd.Password); err != nil {
			return nil, err
		}
		hash, err := auth.HashPassword(*upd.Password)
		if err != nil {
			return nil, fmt.Errorf("hashing password: %w", err)
		}
		user.HashedPassword = hash
		now := time.Now().UTC()
		user.PasswordChangedAt = &now
		passwordChanged = true
	}

	if err := s.users.Replace(ctx, user); err != nil {
		return nil, err
	}

	if passwordChanged {
		if err := s.onPasswordChange(ctx, user); err != nil {
			return nil, err
		}
	}

	s.audit.Record(ctx, userID, "update", models.Users.Name, userID, nil)
	return user, nil
}

// onPasswordChange is the trigger executed whenever a password is changed:
// snapshot the hash now in force into history and force re-login everywhere.
func (s *Users) onPasswordChange(ctx context.Context, user *models.User) error {
	hist := &models.PasswordHistory{
		HistoryID:      uuid.NewString(),
		UserID:         user.UserID,
		HashedPassword: user.HashedPassword,
		ChangedAt:      time.Now().UTC(),
	}
	if err := s.passwordHistory.Create(ctx, hist); err != nil {
		return err
	}

	if err := s.invalidateRefreshTokens(ctx, user.UserID); err != nil {
		return err
	}

	s.audit.Record(ctx, user.UserID, "change_password", models.Users.Name, user.UserID, nil)
	return nil
}

func (s *Users) invalidateRefreshTokens(ctx context.Context, userID string) error {
	_, err := s.refreshTokens.StaleWhere(ctx, func(t *models.RefreshToken) bool {
		return t.UserID == userID
	})
	return err
}

// SoftDelete removes the user and cascades: household memberships and
// account assignments are soft-deleted, refresh tokens staled. The user's
// own delete lands first; see the cascade ordering note in versionstore.
func (s *Users) SoftDelete(ctx context.Context, actorID, userID string) error {
	if _, err := s.users.SoftDelete(ctx, userID, func(u *models.User) {
		u.IsActive = false
	}); err != nil {
		return err
	}

	if _, err := s.userHouseholds.SoftDeleteWhere(ctx, func(m *models.UserHousehold) bool {
		return m.UserID == userID
	}); err != nil {
		return err
	}
	if _, err := s.userAccounts.SoftDeleteWhere(ctx, func(m *models.UserAccount) bool {
		return m.UserID == userID
	}); err != nil {
		return err
	}
	if err := s.invalidateRefreshTokens(ctx, userID); err != nil {
		return err
	}

	s.audit.Record(ctx, actorID, "delete", models.Users.Name, userID, nil)
	return nil
}

// Suspend blocks a user. Only superusers may suspend; active refresh tokens
// are staled so the account is locked out immediately.
func (s *Users) Suspend(ctx context.Context, admin *models.User, userID, reason string) error {
	if !admin.IsSuperuser {
		return fmt.Errorf("superuser required: %w", common.ErrorForbidden)
	}

	user, err := s.users.Current(ctx, userID)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	user.IsSuspended = true
	user.SuspendedAt = &now
	user.SuspensionReason = &reason

	if err := s.users.Replace(ctx, user); err != nil {
		return err
	}
	if err := s.invalidateRefreshTokens(ctx, userID); err != nil {
		return err
	}

	s.audit.Record(ctx, admin.UserID, "suspend", models.Users.Name, userID,
		map[string]any{"reason": reason})
	return nil
}

func (s *Users) Unsuspend(ctx context.Context, admin *models.User, userID string) error {
	if !admin.IsSuperuser {
		return fmt.Errorf("superuser required: %w", common.ErrorForbidden)
	}

	user, err := s.users.Current(ctx, userID)
	if err != nil {
		return err
	}

	user.IsSuspended = false
	user.SuspendedAt = nil
	user.SuspensionReason = nil

	if err := s.users.Replace(ctx, user); err != nil {
		return err
	}

	s.audit.Record(ctx, admin.UserID, "unsuspend", models.Users.Name, userID, nil)
	return nil
}

// Authenticate resolves a bearer token to its live user. Suspended and
// deleted users do not authenticate.
func (s *Users) Authenticate(ctx context.Context, accessToken string) (*models.User, error) {
	userID, err := auth.GetUserIDFromToken(accessToken, s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, common.ErrorUnauthorized)
	}

	user, err := s.users.Current(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, err
	}
	if user.IsSuspended {
		return nil, fmt.Errorf("user is suspended: %w", common.ErrorForbidden)
	}
	return user, nil
}

const passwordResetValidity = 15 * time.Minute

// RequestPasswordReset issues a one-time code for the account behind email.
// The code is returned to the caller for delivery (mail is out of scope
// here); unknown emails return ErrorNotFound so the transport can decide how
// much to reveal.
func (s *Users) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	user, err := s.findLiveByEmail(ctx, auth.NormalizeEmail(email))
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", fmt.Errorf("no account for email: %w", common.ErrorNotFound)
	}

	otp, err := common.MakeRandHexString(3)
	if err != nil {
		return "", common.ErrorInternal
	}

	rec := &models.PasswordResetToken{
		TokenID:   uuid.NewString(),
		UserID:    user.UserID,
		OTPCode:   otp,
		ExpiresAt: time.Now().UTC().Add(passwordResetValidity),
	}
	if err := s.passwordResets.Create(ctx, rec); err != nil {
		return "", err
	}

	s.audit.Record(ctx, user.UserID, "request_password_reset", models.Users.Name, user.UserID, nil)
	return otp, nil
}

// ResetPassword redeems a one-time code. The token version is replaced with
// used=true, so a second redemption of the same code fails.
func (s *Users) ResetPassword(ctx context.Context, email, otp, newPassword string) error {
	user, err := s.findLiveByEmail(ctx, auth.NormalizeEmail(email))
	if err != nil {
		return err
	}
	if user == nil {
		return common.ErrInvalidToken
	}

	rows, err := s.passwordResets.Load(ctx)
	if err != nil {
		return err
	}
	var match *models.PasswordResetToken
	for i := range rows {
		t := &rows[i]
		if t.Meta.Live() && !t.Used && t.UserID == user.UserID && t.OTPCode == otp {
			match = t
			break
		}
	}
	if match == nil {
		return common.ErrInvalidToken
	}
	if time.Now().After(match.ExpiresAt) {
		return common.ErrTokenExpired
	}

	if err := auth.ValidatePasswordStrength(newPassword); err != nil {
		return err
	}
	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	match.Used = true
	if err := s.passwordResets.Replace(ctx, match); err != nil {
		return err
	}

	now := time.Now().UTC()
	user.HashedPassword = hash
	user.PasswordChangedAt = &now
	if err := s.users.Replace(ctx, user); err != nil {
		return err
	}

	return s.onPasswordChange(ctx, user)
}
