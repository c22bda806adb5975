package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/homeledger/internal/logging"
	"github.com/dmitrijs2005/homeledger/internal/server/audit"
	"github.com/dmitrijs2005/homeledger/internal/server/models"
	"github.com/dmitrijs2005/homeledger/internal/server/roles"
	"github.com/dmitrijs2005/homeledger/internal/versionstore"
)

type Accounts struct {
	accounts     *versionstore.Store[models.Account, *models.Account]
	entries      *versionstore.Store[models.Entry, *models.Entry]
	userAccounts *versionstore.Store[models.UserAccount, *models.UserAccount]

	roles *roles.Checker
	audit *audit.Recorder
	log   logging.Logger
}

func NewAccounts(
	accounts *versionstore.Store[models.Account, *models.Account],
	entries *versionstore.Store[models.Entry, *models.Entry],
	userAccounts *versionstore.Store[models.UserAccount, *models.UserAccount],
	checker *roles.Checker,
	rec *audit.Recorder,
	log logging.Logger,
) *Accounts {
	return &Accounts{
		accounts:     accounts,
		entries:      entries,
		userAccounts: userAccounts,
		roles:        checker,
		audit:        rec,
		log:          log.With("service", "accounts"),
	}
}

func (s *Accounts) Create(ctx context.Context, actor *models.User, householdID, name string) (*models.Account, error) {
	if err := s.roles.RequireHouseholdRole(ctx, actor, householdID, models.RoleAdmin); err != nil {
		return nil, err
	}

	a := &models.Account{
		AccountID:   uuid.NewString(),
		Name:        name,
		HouseholdID: householdID,
	}
	if err := s.accounts.Create(ctx, a); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actor.UserID, "create", models.Accounts.Name, a.AccountID,
		map[string]any{"name": name, "household_id": householdID})
	return a, nil
}

func (s *Accounts) Get(ctx context.Context, accountID string) (*models.Account, error) {
	return s.accounts.Current(ctx, accountID)
}

func (s *Accounts) List(ctx context.Context) ([]models.Account, error) {
	rows, err := s.accounts.Load(ctx)
	if err != nil {
		return nil, err
	}
	return versionstore.Live(rows), nil
}

func (s *Accounts) Update(ctx context.Context, actor *models.User, accountID, name string) (*models.Account, error) {
	a, err := s.accounts.Current(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if err := s.roles.RequireHouseholdRole(ctx, actor, a.HouseholdID, models.RoleAdmin); err != nil {
		return nil, err
	}

	a.Name = name
	if err := s.accounts.Replace(ctx, a); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actor.UserID, "update", models.Accounts.Name, accountID,
		map[string]any{"name": name})
	return a, nil
}

// SoftDelete removes the account, then cascades to its user assignments and
// entries.
func (s *Accounts) SoftDelete(ctx context.Context, actor *models.User, accountID string) error {
	a, err := s.accounts.Current(ctx, accountID)
	if err != nil {
		return err
	}
	if err := s.roles.RequireHouseholdRole(ctx, actor, a.HouseholdID, models.RoleAdmin); err != nil {
		return err
	}

	if _, err := s.accounts.SoftDelete(ctx, accountID); err != nil {
		return err
	}

	if _, err := s.userAccounts.SoftDeleteWhere(ctx, func(m *models.UserAccount) bool {
		return m.AccountID == accountID
	}); err != nil {
		return err
	}
	if _, err := s.entries.SoftDeleteWhere(ctx, func(e *models.Entry) bool {
		return e.AccountID == accountID
	}); err != nil {
		return err
	}

	s.audit.Record(ctx, actor.UserID, "delete", models.Accounts.Name, accountID, nil)
	return nil
}

// AssignUser maps a user onto the account.
func (s *Accounts) AssignUser(ctx context.Context, actor *models.User, accountID, userID string, role models.Role) (*models.UserAccount, error) {
	a, err := s.accounts.Current(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if err := s.roles.RequireHouseholdRole(ctx, actor, a.HouseholdID, models.RoleAdmin); err != nil {
		return nil, err
	}

	m := &models.UserAccount{
		MappingID: uuid.NewString(),
		UserID:    userID,
		AccountID: accountID,
		Role:      role,
	}
	if err := s.userAccounts.Create(ctx, m); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actor.UserID, "assign_user", models.Accounts.Name, accountID,
		map[string]any{"user_id": userID, "role": string(role)})
	return m, nil
}
