// Package http exposes the bookkeeping services over a gin HTTP API. The
// layer is deliberately thin: it binds requests, calls a service, and maps
// sentinel errors to status codes. Business rules live in the services.
package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/homeledger/internal/logging"
	"github.com/dmitrijs2005/homeledger/internal/server/audit"
	"github.com/dmitrijs2005/homeledger/internal/server/services"
)

type Server struct {
	users      *services.Users
	households *services.Households
	accounts   *services.Accounts
	entries    *services.Entries
	debts      *services.Debts
	summaries  *services.Summaries
	audit      *audit.Recorder
	log        logging.Logger

	srv *http.Server
}

func NewServer(
	addr string,
	users *services.Users,
	households *services.Households,
	accounts *services.Accounts,
	entries *services.Entries,
	debts *services.Debts,
	summaries *services.Summaries,
	rec *audit.Recorder,
	log logging.Logger,
) *Server {
	s := &Server{
		users:      users,
		households: households,
		accounts:   accounts,
		entries:    entries,
		debts:      debts,
		summaries:  summaries,
		audit:      rec,
		log:        log.With("component", "http"),
	}
	s.srv = &http.Server{Addr: addr, Handler: s.router()}
	return s
}

func (s *Server) router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	api := r.Group("/api")

	api.POST("/users/register", s.registerHandler)
	api.POST("/users/login", s.loginHandler)
	api.POST("/users/refresh", s.refreshHandler)
	api.POST("/users/password-reset/request", s.requestPasswordResetHandler)
	api.POST("/users/password-reset/confirm", s.resetPasswordHandler)

	authed := api.Group("")
	authed.Use(s.authMiddleware())

	authed.GET("/users/me", s.meHandler)
	authed.PUT("/users/:user_id", s.updateUserHandler)
	authed.POST("/users/:user_id/delete", s.deleteUserHandler)
	authed.POST("/users/:user_id/suspend", s.suspendUserHandler)
	authed.POST("/users/:user_id/unsuspend", s.unsuspendUserHandler)

	authed.POST("/households", s.createHouseholdHandler)
	authed.GET("/households", s.listHouseholdsHandler)
	authed.GET("/households/:household_id", s.getHouseholdHandler)
	authed.PUT("/households/:household_id", s.updateHouseholdHandler)
	authed.POST("/households/:household_id/delete", s.deleteHouseholdHandler)
	authed.POST("/households/:household_id/members", s.assignMemberHandler)
	authed.POST("/households/:household_id/members/:user_id/remove", s.removeMemberHandler)

	authed.POST("/accounts", s.createAccountHandler)
	authed.GET("/accounts", s.listAccountsHandler)
	authed.GET("/accounts/:account_id", s.getAccountHandler)
	authed.PUT("/accounts/:account_id", s.updateAccountHandler)
	authed.POST("/accounts/:account_id/delete", s.deleteAccountHandler)
	authed.POST("/accounts/:account_id/users", s.assignAccountUserHandler)
	authed.GET("/accounts/:account_id/entries", s.listAccountEntriesHandler)

	authed.GET("/summary", s.entrySummaryHandler)

	authed.POST("/entries", s.createEntryHandler)
	authed.GET("/entries/:entry_id", s.getEntryHandler)
	authed.GET("/entries/:entry_id/history", s.entryHistoryHandler)
	authed.PUT("/entries/:entry_id", s.updateEntryHandler)
	authed.POST("/entries/:entry_id/delete", s.deleteEntryHandler)

	authed.POST("/debts", s.createDebtHandler)
	authed.GET("/debts", s.listDebtsHandler)
	authed.GET("/debts/:debt_id", s.getDebtHandler)
	authed.POST("/debts/:debt_id/delete", s.deleteDebtHandler)

	authed.GET("/audit/logs", s.listAuditLogsHandler)

	return r
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	s.log.Info(ctx, "http server listening", "addr", s.srv.Addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.srv.Shutdown(shutdownCtx)
	}
}
