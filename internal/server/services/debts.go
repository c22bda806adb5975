package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmitrijs2005/homeledger/internal/common"
	"github.com/dmitrijs2005/homeledger/internal/logging"
	"github.com/dmitrijs2005/homeledger/internal/server/audit"
	"github.com/dmitrijs2005/homeledger/internal/server/models"
	"github.com/dmitrijs2005/homeledger/internal/server/roles"
	"github.com/dmitrijs2005/homeledger/internal/versionstore"
)

// DebtInput carries the caller-supplied fields of a new debt.
type DebtInput struct {
	UserID       string
	AccountID    string
	HouseholdID  string
	Name         string
	Principal    float64
	InterestRate *float64
	Installments int
	StartDate    time.Time
	DueDay       int
}

type Debts struct {
	debts   *versionstore.Store[models.Debt, *models.Debt]
	entries *versionstore.Store[models.Entry, *models.Entry]

	roles *roles.Checker
	audit *audit.Recorder
	log   logging.Logger

	// legacyDescriptionMatch enables the best-effort cascade fallback for
	// historical entries written before debt_id existed: installments are
	// matched by description substring plus user id. Off by default; only
	// turn it on when migrating real pre-debt_id data.
	legacyDescriptionMatch bool
}

func NewDebts(
	debts *versionstore.Store[models.Debt, *models.Debt],
	entries *versionstore.Store[models.Entry, *models.Entry],
	checker *roles.Checker,
	rec *audit.Recorder,
	log logging.Logger,
) *Debts {
	return &Debts{
		debts:   debts,
		entries: entries,
		roles:   checker,
		audit:   rec,
		log:     log.With("service", "debts"),
	}
}

// EnableLegacyDescriptionMatch turns on the compatibility shim described on
// the legacyDescriptionMatch field.
func (s *Debts) EnableLegacyDescriptionMatch() {
	s.legacyDescriptionMatch = true
}

// installmentAmounts splits the principal into n two-decimal amounts. The
// last installment absorbs the rounding remainder so the parts always sum
// to the principal exactly.
func installmentAmounts(principal float64, n int) []float64 {
	total := decimal.NewFromFloat(principal)
	per := total.Div(decimal.NewFromInt(int64(n))).Round(2)

	amounts := make([]float64, n)
	for i := 0; i < n-1; i++ {
		amounts[i], _ = per.Float64()
	}
	last := total.Sub(per.Mul(decimal.NewFromInt(int64(n - 1))))
	amounts[n-1], _ = last.Float64()
	return amounts
}

// dueDate returns the i-th payment date: start date shifted i months, on
// the debt's due day (clamped to the target month's length). The month is
// advanced arithmetically, not via AddDate, which would roll a month-end
// start into the following month and skip short months entirely.
func dueDate(start time.Time, months, dueDay int) time.Time {
	m := int(start.Month()) - 1 + months
	year := start.Year() + m/12
	month := time.Month(m%12 + 1)

	lastDay := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	day := dueDay
	if day > lastDay {
		day = lastDay
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Create writes the debt and generates one financing expense entry per
// installment, each carrying debt_id so the cascade on delete is an exact
// foreign-key match.
func (s *Debts) Create(ctx context.Context, actor *models.User, in DebtInput) (*models.Debt, error) {
	if in.UserID != actor.UserID {
		return nil, fmt.Errorf("cannot create debts for another user: %w", common.ErrorForbidden)
	}
	if err := s.roles.ValidateEntryPermissions(ctx, in.UserID, in.AccountID, in.HouseholdID, actor); err != nil {
		return nil, err
	}
	if in.Installments <= 0 {
		return nil, fmt.Errorf("installments must be positive: %w", common.ErrorValidation)
	}

	debt := &models.Debt{
		DebtID:       uuid.NewString(),
		UserID:       in.UserID,
		AccountID:    in.AccountID,
		HouseholdID:  in.HouseholdID,
		Name:         in.Name,
		Principal:    in.Principal,
		InterestRate: in.InterestRate,
		Installments: int32(in.Installments),
		StartDate:    in.StartDate,
		DueDay:       int32(in.DueDay),
	}
	if err := s.debts.Create(ctx, debt); err != nil {
		return nil, err
	}

	amounts := installmentAmounts(in.Principal, in.Installments)
	for i := 0; i < in.Installments; i++ {
		due := dueDate(in.StartDate, i, in.DueDay)
		debtID := debt.DebtID

		entry := &models.Entry{
			EntryID:     uuid.NewString(),
			UserID:      in.UserID,
			AccountID:   in.AccountID,
			HouseholdID: in.HouseholdID,
			DebtID:      &debtID,
			EntryDate:   due,
			ValueDate:   due,
			Type:        models.EntryExpense,
			Category:    models.CategoryFinancing,
			Amount:      amounts[i],
			Description: fmt.Sprintf("%s installment %d/%d", in.Name, i+1, in.Installments),
		}
		if err := s.entries.Create(ctx, entry); err != nil {
			return nil, err
		}
	}

	s.audit.Record(ctx, actor.UserID, "create", models.Debts.Name, debt.DebtID,
		map[string]any{"name": in.Name, "principal": in.Principal, "installments": in.Installments})
	return debt, nil
}

func (s *Debts) Get(ctx context.Context, debtID string) (*models.Debt, error) {
	return s.debts.Current(ctx, debtID)
}

func (s *Debts) List(ctx context.Context, userID string) ([]models.Debt, error) {
	rows, err := s.debts.Load(ctx)
	if err != nil {
		return nil, err
	}
	return versionstore.Live(rows).Filter(func(d *models.Debt) bool {
		return d.UserID == userID
	}), nil
}

// SoftDelete removes the debt and cascades to its installment entries.
// Installments are matched by the debt_id foreign key; the legacy
// description-substring fallback only fires for entries without a debt_id
// and only when explicitly enabled.
func (s *Debts) SoftDelete(ctx context.Context, actor *models.User, debtID string) error {
	debt, err := s.debts.Current(ctx, debtID)
	if err != nil {
		return err
	}
	if debt.UserID != actor.UserID && !actor.IsSuperuser {
		return fmt.Errorf("cannot delete another user's debt: %w", common.ErrorForbidden)
	}

	if _, err := s.debts.SoftDelete(ctx, debtID); err != nil {
		return err
	}

	if _, err := s.entries.SoftDeleteWhere(ctx, func(e *models.Entry) bool {
		if e.DebtID != nil {
			return *e.DebtID == debtID
		}
		if s.legacyDescriptionMatch {
			return e.UserID == debt.UserID && strings.Contains(e.Description, debt.Name)
		}
		return false
	}); err != nil {
		return err
	}

	s.audit.Record(ctx, actor.UserID, "delete", models.Debts.Name, debtID, nil)
	return nil
}
