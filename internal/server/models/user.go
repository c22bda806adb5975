// Package models defines the record types persisted in the version store.
// Every record embeds versionstore.Meta (created_at, updated_at, is_current,
// is_deleted) by composition and exposes its stable id through RecordID.
package models

import (
	"time"

	"github.com/dmitrijs2005/homeledger/internal/versionstore"
)

type User struct {
	UserID            string     `parquet:"user_id" json:"user_id"`
	UserName          string     `parquet:"user_name" json:"user_name"`
	Email             string     `parquet:"email" json:"email"`
	HashedPassword    string     `parquet:"hashed_password" json:"-"`
	PasswordChangedAt *time.Time `parquet:"password_changed_at,optional" json:"password_changed_at,omitempty"`
	IsSuperuser       bool       `parquet:"is_superuser" json:"is_superuser"`
	IsSuspended       bool       `parquet:"is_suspended" json:"is_suspended"`
	SuspendedAt       *time.Time `parquet:"suspended_at,optional" json:"suspended_at,omitempty"`
	SuspensionReason  *string    `parquet:"suspension_reason,optional" json:"suspension_reason,omitempty"`
	IsActive          bool       `parquet:"is_active" json:"is_active"`
	versionstore.Meta
}

func (u *User) RecordID() string { return u.UserID }

var Users = versionstore.Descriptor{Name: "users", Singular: "user", IDField: "user_id"}

type RefreshToken struct {
	RefreshTokenID string    `parquet:"refresh_token_id" json:"refresh_token_id"`
	UserID         string    `parquet:"user_id" json:"user_id"`
	Token          string    `parquet:"token" json:"-"`
	ExpiresAt      time.Time `parquet:"expires_at" json:"expires_at"`
	versionstore.Meta
}

func (t *RefreshToken) RecordID() string { return t.RefreshTokenID }

var RefreshTokens = versionstore.Descriptor{Name: "refresh_tokens", Singular: "refresh_token", IDField: "refresh_token_id"}

type PasswordHistory struct {
	HistoryID      string    `parquet:"history_id" json:"history_id"`
	UserID         string    `parquet:"user_id" json:"user_id"`
	HashedPassword string    `parquet:"hashed_password" json:"-"`
	ChangedAt      time.Time `parquet:"changed_at" json:"changed_at"`
	versionstore.Meta
}

func (h *PasswordHistory) RecordID() string { return h.HistoryID }

var PasswordHistories = versionstore.Descriptor{Name: "password_history", Singular: "password_history", IDField: "history_id"}

type PasswordResetToken struct {
	TokenID   string    `parquet:"token_id" json:"token_id"`
	UserID    string    `parquet:"user_id" json:"user_id"`
	OTPCode   string    `parquet:"otp_code" json:"-"`
	ExpiresAt time.Time `parquet:"expires_at" json:"expires_at"`
	Used      bool      `parquet:"used" json:"used"`
	versionstore.Meta
}

func (t *PasswordResetToken) RecordID() string { return t.TokenID }

var PasswordResetTokens = versionstore.Descriptor{Name: "password_reset_tokens", Singular: "password_reset_token", IDField: "token_id"}
