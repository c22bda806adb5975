// Package roles enforces membership and role checks above the storage
// boundary. The store itself is agnostic to role semantics; these gates read
// membership records and return common.ErrorForbidden on failure.
package roles

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/homeledger/internal/common"
	"github.com/dmitrijs2005/homeledger/internal/server/models"
	"github.com/dmitrijs2005/homeledger/internal/versionstore"
)

type Checker struct {
	userHouseholds *versionstore.Store[models.UserHousehold, *models.UserHousehold]
	userAccounts   *versionstore.Store[models.UserAccount, *models.UserAccount]
}

func NewChecker(
	userHouseholds *versionstore.Store[models.UserHousehold, *models.UserHousehold],
	userAccounts *versionstore.Store[models.UserAccount, *models.UserAccount],
) *Checker {
	return &Checker{userHouseholds: userHouseholds, userAccounts: userAccounts}
}

// Membership returns the highest-weight live membership of the user in the
// household, or nil when there is none.
func (c *Checker) Membership(ctx context.Context, userID, householdID string) (*models.UserHousehold, error) {
	rows, err := c.userHouseholds.Load(ctx)
	if err != nil {
		return nil, err
	}

	var best *models.UserHousehold
	for i := range rows {
		m := &rows[i]
		if !m.Meta.Live() || m.UserID != userID || m.HouseholdID != householdID {
			continue
		}
		if best == nil || m.Role.Weight() > best.Role.Weight() {
			best = m
		}
	}
	return best, nil
}

// RequireHouseholdRole ensures the user holds at least the required role in
// the household. Superusers always pass.
func (c *Checker) RequireHouseholdRole(ctx context.Context, user *models.User, householdID string, required models.Role) error {
	if user.IsSuperuser {
		return nil
	}

	mem, err := c.Membership(ctx, user.UserID, householdID)
	if err != nil {
		return err
	}
	if mem == nil || mem.Role.Weight() < required.Weight() {
		return fmt.Errorf("%s role required for this household: %w", required, common.ErrorForbidden)
	}
	return nil
}

// RequireAccountAccess gates by household role first, then requires explicit
// assignment to the account unless the user is a household admin or
// superuser.
func (c *Checker) RequireAccountAccess(ctx context.Context, user *models.User, account *models.Account, minRole models.Role) error {
	if err := c.RequireHouseholdRole(ctx, user, account.HouseholdID, minRole); err != nil {
		return err
	}

	if user.IsSuperuser {
		return nil
	}

	mem, err := c.Membership(ctx, user.UserID, account.HouseholdID)
	if err != nil {
		return err
	}
	if mem != nil && mem.Role == models.RoleAdmin {
		return nil
	}

	assigned, err := c.isAssigned(ctx, user.UserID, account.AccountID)
	if err != nil {
		return err
	}
	if !assigned {
		return fmt.Errorf("not assigned to this account: %w", common.ErrorForbidden)
	}
	return nil
}

// ValidateEntryPermissions checks that the acting user owns the entry, is a
// member of the household, and is assigned to the account.
func (c *Checker) ValidateEntryPermissions(ctx context.Context, userID, accountID, householdID string, acting *models.User) error {
	if userID != acting.UserID {
		return fmt.Errorf("cannot operate on another user's entries: %w", common.ErrorForbidden)
	}

	mem, err := c.Membership(ctx, userID, householdID)
	if err != nil {
		return err
	}
	if mem == nil {
		return fmt.Errorf("user not part of household: %w", common.ErrorForbidden)
	}

	assigned, err := c.isAssigned(ctx, userID, accountID)
	if err != nil {
		return err
	}
	if !assigned {
		return fmt.Errorf("user not assigned to account: %w", common.ErrorForbidden)
	}
	return nil
}

func (c *Checker) isAssigned(ctx context.Context, userID, accountID string) (bool, error) {
	rows, err := c.userAccounts.Load(ctx)
	if err != nil {
		return false, err
	}

	for i := range rows {
		m := &rows[i]
		if m.Meta.Live() && m.UserID == userID && m.AccountID == accountID {
			return true, nil
		}
	}
	return false, nil
}
