package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/homeledger/internal/logging"
	"github.com/dmitrijs2005/homeledger/internal/server/audit"
	"github.com/dmitrijs2005/homeledger/internal/server/models"
	"github.com/dmitrijs2005/homeledger/internal/server/roles"
	"github.com/dmitrijs2005/homeledger/internal/versionstore"
)

// EntryInput carries the caller-supplied fields of a bookkeeping entry.
type EntryInput struct {
	UserID      string
	AccountID   string
	HouseholdID string
	EntryDate   time.Time
	ValueDate   time.Time
	Type        models.EntryType
	Category    models.Category
	Amount      float64
	Description string
}

// Page bounds a history listing.
type Page struct {
	Offset int
	Limit  int
}

type Entries struct {
	entries *versionstore.Store[models.Entry, *models.Entry]

	roles *roles.Checker
	audit *audit.Recorder
	log   logging.Logger
}

func NewEntries(
	entries *versionstore.Store[models.Entry, *models.Entry],
	checker *roles.Checker,
	rec *audit.Recorder,
	log logging.Logger,
) *Entries {
	return &Entries{
		entries: entries,
		roles:   checker,
		audit:   rec,
		log:     log.With("service", "entries"),
	}
}

func (s *Entries) Create(ctx context.Context, actor *models.User, in EntryInput) (*models.Entry, error) {
	if err := s.roles.ValidateEntryPermissions(ctx, in.UserID, in.AccountID, in.HouseholdID, actor); err != nil {
		return nil, err
	}

	e := &models.Entry{
		EntryID:     uuid.NewString(),
		UserID:      in.UserID,
		AccountID:   in.AccountID,
		HouseholdID: in.HouseholdID,
		EntryDate:   in.EntryDate,
		ValueDate:   in.ValueDate,
		Type:        in.Type,
		Category:    in.Category,
		Amount:      in.Amount,
		Description: in.Description,
	}
	if err := s.entries.Create(ctx, e); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actor.UserID, "create", models.Entries.Name, e.EntryID,
		map[string]any{"amount": in.Amount, "category": string(in.Category)})
	return e, nil
}

func (s *Entries) Get(ctx context.Context, actor *models.User, entryID string) (*models.Entry, error) {
	e, err := s.entries.Current(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if err := s.roles.ValidateEntryPermissions(ctx, e.UserID, e.AccountID, e.HouseholdID, actor); err != nil {
		return nil, err
	}
	return e, nil
}

// History returns the entry's full version sequence, newest first. The
// permission check runs against the current version; a 404-style NotFound is
// returned when no live version exists, the same as Get.
func (s *Entries) History(ctx context.Context, actor *models.User, entryID string, page Page) ([]models.Entry, error) {
	if _, err := s.Get(ctx, actor, entryID); err != nil {
		return nil, err
	}

	rows, err := s.entries.History(ctx, entryID)
	if err != nil {
		return nil, err
	}

	versionstore.SortByUpdatedAt(rows, true)
	return rows.Page(page.Offset, page.Limit), nil
}

func (s *Entries) Update(ctx context.Context, actor *models.User, entryID string, in EntryInput) (*models.Entry, error) {
	e, err := s.entries.Current(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if err := s.roles.ValidateEntryPermissions(ctx, e.UserID, e.AccountID, e.HouseholdID, actor); err != nil {
		return nil, err
	}

	e.EntryDate = in.EntryDate
	e.ValueDate = in.ValueDate
	e.Type = in.Type
	e.Category = in.Category
	e.Amount = in.Amount
	e.Description = in.Description

	if err := s.entries.Replace(ctx, e); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actor.UserID, "update", models.Entries.Name, entryID, nil)
	return e, nil
}

func (s *Entries) SoftDelete(ctx context.Context, actor *models.User, entryID string) error {
	e, err := s.entries.Current(ctx, entryID)
	if err != nil {
		return err
	}
	if err := s.roles.ValidateEntryPermissions(ctx, e.UserID, e.AccountID, e.HouseholdID, actor); err != nil {
		return err
	}

	if _, err := s.entries.SoftDelete(ctx, entryID); err != nil {
		return err
	}

	s.audit.Record(ctx, actor.UserID, "delete", models.Entries.Name, entryID, nil)
	return nil
}

// ListForAccount returns live entries of one account, optionally bounded to
// a date range on entry_date. The actor needs at least member access to the
// account.
func (s *Entries) ListForAccount(ctx context.Context, actor *models.User, account *models.Account, start, end time.Time) ([]models.Entry, error) {
	if err := s.roles.RequireAccountAccess(ctx, actor, account, models.RoleMember); err != nil {
		return nil, err
	}

	rows, err := s.entries.Load(ctx)
	if err != nil {
		return nil, err
	}

	out := versionstore.Live(rows).Filter(func(e *models.Entry) bool {
		if e.AccountID != account.AccountID {
			return false
		}
		if !start.IsZero() && e.EntryDate.Before(start) {
			return false
		}
		if !end.IsZero() && e.EntryDate.After(end) {
			return false
		}
		return true
	})

	versionstore.SortByUpdatedAt(out, true)
	return out, nil
}
