// Package server initializes and runs the bookkeeping server: it wires the
// object-store client, the versioned record stores, the services, and the
// HTTP endpoint, and handles graceful shutdown on OS signals.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/homeledger/internal/logging"
	"github.com/dmitrijs2005/homeledger/internal/objstore"
	"github.com/dmitrijs2005/homeledger/internal/server/audit"
	"github.com/dmitrijs2005/homeledger/internal/server/config"
	serverhttp "github.com/dmitrijs2005/homeledger/internal/server/http"
	"github.com/dmitrijs2005/homeledger/internal/server/models"
	"github.com/dmitrijs2005/homeledger/internal/server/roles"
	"github.com/dmitrijs2005/homeledger/internal/server/services"
	"github.com/dmitrijs2005/homeledger/internal/versionstore"
)

type App struct {
	config *config.Config
	logger logging.Logger

	audit  *audit.Recorder
	server *serverhttp.Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	client, err := objstore.NewS3Client(ctx, objstore.S3Config{
		RootUser:     cfg.S3RootUser,
		RootPassword: cfg.S3RootPassword,
		Bucket:       cfg.S3Bucket,
		Region:       cfg.S3Region,
		BaseEndpoint: cfg.S3BaseEndpoint,
	})
	if err != nil {
		return nil, fmt.Errorf("object store init error: %w", err)
	}

	users := versionstore.New[models.User](client, models.Users, logger)
	refreshTokens := versionstore.New[models.RefreshToken](client, models.RefreshTokens, logger)
	passwordHistory := versionstore.New[models.PasswordHistory](client, models.PasswordHistories, logger)
	passwordResets := versionstore.New[models.PasswordResetToken](client, models.PasswordResetTokens, logger)
	households := versionstore.New[models.Household](client, models.Households, logger)
	accounts := versionstore.New[models.Account](client, models.Accounts, logger)
	entries := versionstore.New[models.Entry](client, models.Entries, logger)
	debts := versionstore.New[models.Debt](client, models.Debts, logger)
	userHouseholds := versionstore.New[models.UserHousehold](client, models.UserHouseholds, logger)
	userAccounts := versionstore.New[models.UserAccount](client, models.UserAccounts, logger)
	auditLogs := versionstore.New[models.AuditLog](client, models.AuditLogs, logger)

	rec := audit.NewRecorder(auditLogs, logger, cfg.AuditQueueSize)
	checker := roles.NewChecker(userHouseholds, userAccounts)

	userService := services.NewUsers(users, refreshTokens, passwordHistory, passwordResets, userHouseholds, userAccounts, rec, logger, cfg)
	householdService := services.NewHouseholds(households, accounts, userHouseholds, checker, rec, logger)
	accountService := services.NewAccounts(accounts, entries, userAccounts, checker, rec, logger)
	entryService := services.NewEntries(entries, checker, rec, logger)
	debtService := services.NewDebts(debts, entries, checker, rec, logger)
	summaryService := services.NewSummaries(entries, accounts, households, checker, logger)

	srv := serverhttp.NewServer(cfg.EndpointAddrHTTP,
		userService, householdService, accountService, entryService, debtService, summaryService, rec, logger)

	return &App{config: cfg, logger: logger, audit: rec, server: srv}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, "http server stopped", "error", err)
	}

	// Drain pending audit writes before exit.
	app.audit.Close()
}
