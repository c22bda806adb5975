package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/homeledger/internal/logging"
	"github.com/dmitrijs2005/homeledger/internal/objstore"
	"github.com/dmitrijs2005/homeledger/internal/server/audit"
	"github.com/dmitrijs2005/homeledger/internal/server/config"
	"github.com/dmitrijs2005/homeledger/internal/server/models"
	"github.com/dmitrijs2005/homeledger/internal/server/roles"
	"github.com/dmitrijs2005/homeledger/internal/versionstore"
)

const testPassword = "Sup3r$trong"

// env wires every service against an in-memory object store, the same way
// the app does against S3.
type env struct {
	users      *Users
	households *Households
	accounts   *Accounts
	entries    *Entries
	debts      *Debts
	summaries  *Summaries

	audit *audit.Recorder

	userStore         *versionstore.Store[models.User, *models.User]
	refreshTokenStore *versionstore.Store[models.RefreshToken, *models.RefreshToken]
	historyStore      *versionstore.Store[models.PasswordHistory, *models.PasswordHistory]
	entryStore        *versionstore.Store[models.Entry, *models.Entry]
	membershipStore   *versionstore.Store[models.UserHousehold, *models.UserHousehold]
	assignmentStore   *versionstore.Store[models.UserAccount, *models.UserAccount]
}

func newEnv(t *testing.T) *env {
	t.Helper()

	client := objstore.NewMemory()
	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))

	users := versionstore.New[models.User](client, models.Users, log)
	refreshTokens := versionstore.New[models.RefreshToken](client, models.RefreshTokens, log)
	passwordHistory := versionstore.New[models.PasswordHistory](client, models.PasswordHistories, log)
	passwordResets := versionstore.New[models.PasswordResetToken](client, models.PasswordResetTokens, log)
	households := versionstore.New[models.Household](client, models.Households, log)
	accounts := versionstore.New[models.Account](client, models.Accounts, log)
	entries := versionstore.New[models.Entry](client, models.Entries, log)
	debts := versionstore.New[models.Debt](client, models.Debts, log)
	userHouseholds := versionstore.New[models.UserHousehold](client, models.UserHouseholds, log)
	userAccounts := versionstore.New[models.UserAccount](client, models.UserAccounts, log)
	auditLogs := versionstore.New[models.AuditLog](client, models.AuditLogs, log)

	rec := audit.NewRecorder(auditLogs, log, 64)
	t.Cleanup(rec.Close)

	checker := roles.NewChecker(userHouseholds, userAccounts)

	cfg := &config.Config{
		SecretKey:                    "test-secret",
		AccessTokenValidityDuration:  time.Hour,
		RefreshTokenValidityDuration: 2 * time.Hour,
	}

	return &env{
		users:      NewUsers(users, refreshTokens, passwordHistory, passwordResets, userHouseholds, userAccounts, rec, log, cfg),
		households: NewHouseholds(households, accounts, userHouseholds, checker, rec, log),
		accounts:   NewAccounts(accounts, entries, userAccounts, checker, rec, log),
		entries:    NewEntries(entries, checker, rec, log),
		debts:      NewDebts(debts, entries, checker, rec, log),
		summaries:  NewSummaries(entries, accounts, households, checker, log),

		audit: rec,

		userStore:         users,
		refreshTokenStore: refreshTokens,
		historyStore:      passwordHistory,
		entryStore:        entries,
		membershipStore:   userHouseholds,
		assignmentStore:   userAccounts,
	}
}

func (e *env) registerUser(t *testing.T, name, email string) *models.User {
	t.Helper()
	u, err := e.users.Register(context.Background(), name, email, testPassword)
	require.NoError(t, err)
	return u
}

// bootstrapAccount sets up a user owning a household with one account the
// user is assigned to. Most entry and debt tests start from here.
func (e *env) bootstrapAccount(t *testing.T) (*models.User, *models.Household, *models.Account) {
	t.Helper()
	ctx := context.Background()

	u := e.registerUser(t, "owner", "owner@example.com")

	h, err := e.households.Create(ctx, u, "home")
	require.NoError(t, err)

	a, err := e.accounts.Create(ctx, u, h.HouseholdID, "main")
	require.NoError(t, err)

	_, err = e.accounts.AssignUser(ctx, u, a.AccountID, u.UserID, models.RoleMember)
	require.NoError(t, err)

	return u, h, a
}

func (e *env) liveEntries(t *testing.T) []models.Entry {
	t.Helper()
	rows, err := e.entryStore.Load(context.Background())
	require.NoError(t, err)
	return versionstore.Live(rows)
}
