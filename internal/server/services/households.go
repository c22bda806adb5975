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

type Households struct {
	households     *versionstore.Store[models.Household, *models.Household]
	accounts       *versionstore.Store[models.Account, *models.Account]
	userHouseholds *versionstore.Store[models.UserHousehold, *models.UserHousehold]

	roles *roles.Checker
	audit *audit.Recorder
	log   logging.Logger
}

func NewHouseholds(
	households *versionstore.Store[models.Household, *models.Household],
	accounts *versionstore.Store[models.Account, *models.Account],
	userHouseholds *versionstore.Store[models.UserHousehold, *models.UserHousehold],
	checker *roles.Checker,
	rec *audit.Recorder,
	log logging.Logger,
) *Households {
	return &Households{
		households:     households,
		accounts:       accounts,
		userHouseholds: userHouseholds,
		roles:          checker,
		audit:          rec,
		log:            log.With("service", "households"),
	}
}

// Create writes the household and makes the creator its admin member.
// Those are two independent writes; a crash between them leaves a household
// without an owning membership (no multi-record atomicity in the store).
func (s *Households) Create(ctx context.Context, actor *models.User, name string) (*models.Household, error) {
	h := &models.Household{
		HouseholdID:     uuid.NewString(),
		Name:            name,
		CreatedByUserID: actor.UserID,
	}
	if err := s.households.Create(ctx, h); err != nil {
		return nil, err
	}

	m := &models.UserHousehold{
		MappingID:   uuid.NewString(),
		UserID:      actor.UserID,
		HouseholdID: h.HouseholdID,
		Role:        models.RoleAdmin,
	}
	if err := s.userHouseholds.Create(ctx, m); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actor.UserID, "create", models.Households.Name, h.HouseholdID,
		map[string]any{"name": name})
	return h, nil
}

func (s *Households) Get(ctx context.Context, householdID string) (*models.Household, error) {
	return s.households.Current(ctx, householdID)
}

// List returns all live households. Full type scan; households are a small
// reference table.
func (s *Households) List(ctx context.Context) ([]models.Household, error) {
	rows, err := s.households.Load(ctx)
	if err != nil {
		return nil, err
	}
	return versionstore.Live(rows), nil
}

func (s *Households) Update(ctx context.Context, actor *models.User, householdID, name string) (*models.Household, error) {
	if err := s.roles.RequireHouseholdRole(ctx, actor, householdID, models.RoleAdmin); err != nil {
		return nil, err
	}

	h, err := s.households.Current(ctx, householdID)
	if err != nil {
		return nil, err
	}

	h.Name = name
	if err := s.households.Replace(ctx, h); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actor.UserID, "update", models.Households.Name, householdID,
		map[string]any{"name": name})
	return h, nil
}

// SoftDelete removes the household, then cascades to its memberships and
// accounts.
func (s *Households) SoftDelete(ctx context.Context, actor *models.User, householdID string) error {
	if err := s.roles.RequireHouseholdRole(ctx, actor, householdID, models.RoleAdmin); err != nil {
		return err
	}

	if _, err := s.households.SoftDelete(ctx, householdID); err != nil {
		return err
	}

	if _, err := s.userHouseholds.SoftDeleteWhere(ctx, func(m *models.UserHousehold) bool {
		return m.HouseholdID == householdID
	}); err != nil {
		return err
	}
	if _, err := s.accounts.SoftDeleteWhere(ctx, func(a *models.Account) bool {
		return a.HouseholdID == householdID
	}); err != nil {
		return err
	}

	s.audit.Record(ctx, actor.UserID, "delete", models.Households.Name, householdID, nil)
	return nil
}

// AssignMember adds (or re-adds) a user to the household with a role.
func (s *Households) AssignMember(ctx context.Context, actor *models.User, householdID, userID string, role models.Role) (*models.UserHousehold, error) {
	if err := s.roles.RequireHouseholdRole(ctx, actor, householdID, models.RoleAdmin); err != nil {
		return nil, err
	}

	m := &models.UserHousehold{
		MappingID:   uuid.NewString(),
		UserID:      userID,
		HouseholdID: householdID,
		Role:        role,
	}
	if err := s.userHouseholds.Create(ctx, m); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actor.UserID, "assign_member", models.Households.Name, householdID,
		map[string]any{"user_id": userID, "role": string(role)})
	return m, nil
}

// RemoveMember soft-deletes every live membership of the user in the
// household.
func (s *Households) RemoveMember(ctx context.Context, actor *models.User, householdID, userID string) error {
	if err := s.roles.RequireHouseholdRole(ctx, actor, householdID, models.RoleAdmin); err != nil {
		return err
	}

	if _, err := s.userHouseholds.SoftDeleteWhere(ctx, func(m *models.UserHousehold) bool {
		return m.HouseholdID == householdID && m.UserID == userID
	}); err != nil {
		return err
	}

	s.audit.Record(ctx, actor.UserID, "remove_member", models.Households.Name, householdID,
		map[string]any{"user_id": userID})
	return nil
}
