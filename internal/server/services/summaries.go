package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dmitrijs2005/homeledger/internal/common"
	"github.com/dmitrijs2005/homeledger/internal/logging"
	"github.com/dmitrijs2005/homeledger/internal/server/models"
	"github.com/dmitrijs2005/homeledger/internal/server/roles"
	"github.com/dmitrijs2005/homeledger/internal/versionstore"
)

// SummaryQuery selects the entries aggregated by Summaries.ForUser. Month,
// Start and End are YYYY-MM strings. LastNMonths takes a trailing window
// anchored to the newest entry month when no explicit month or range is
// given, and to the current month otherwise. HouseholdID restricts the
// summary to one household and requires at least member role there.
type SummaryQuery struct {
	Month       string
	Start       string
	End         string
	LastNMonths int
	Type        models.EntryType
	HouseholdID string
}

type TypeTrend struct {
	Month  string           `json:"month"`
	Type   models.EntryType `json:"type"`
	Amount float64          `json:"amount"`
}

type CategoryTrend struct {
	Month    string          `json:"month"`
	Category models.Category `json:"category"`
	Amount   float64         `json:"amount"`
}

// Summary aggregates the actor's live entries. Trends are only populated
// when the query spans a multi-month window (LastNMonths or Start/End).
type Summary struct {
	Total          float64            `json:"total"`
	ByCategory     map[string]float64 `json:"by_category"`
	ByAccount      map[string]float64 `json:"by_account"`
	ByHousehold    map[string]float64 `json:"by_household"`
	TypeTrends     []TypeTrend        `json:"type_trends,omitempty"`
	CategoryTrends []CategoryTrend    `json:"category_trends,omitempty"`
}

type Summaries struct {
	entries    *versionstore.Store[models.Entry, *models.Entry]
	accounts   *versionstore.Store[models.Account, *models.Account]
	households *versionstore.Store[models.Household, *models.Household]

	roles *roles.Checker
	log   logging.Logger
}

func NewSummaries(
	entries *versionstore.Store[models.Entry, *models.Entry],
	accounts *versionstore.Store[models.Account, *models.Account],
	households *versionstore.Store[models.Household, *models.Household],
	checker *roles.Checker,
	log logging.Logger,
) *Summaries {
	return &Summaries{
		entries:    entries,
		accounts:   accounts,
		households: households,
		roles:      checker,
		log:        log.With("service", "summaries"),
	}
}

const monthLayout = "2006-01"

// monthIndex flattens a date to a month count so window arithmetic never
// rolls through short months.
func monthIndex(t time.Time) int {
	return t.Year()*12 + int(t.Month()) - 1
}

// ForUser aggregates the actor's own live entries: totals by category,
// account and household, plus per-month trends for multi-month windows.
func (s *Summaries) ForUser(ctx context.Context, actor *models.User, q SummaryQuery) (*Summary, error) {
	if q.HouseholdID != "" {
		if err := s.roles.RequireHouseholdRole(ctx, actor, q.HouseholdID, models.RoleMember); err != nil {
			return nil, err
		}
	}

	rows, err := s.entries.Load(ctx)
	if err != nil {
		return nil, err
	}
	live := versionstore.Live(rows).Filter(func(e *models.Entry) bool {
		if e.UserID != actor.UserID {
			return false
		}
		return q.HouseholdID == "" || e.HouseholdID == q.HouseholdID
	})

	live, err = filterWindow(live, q)
	if err != nil {
		return nil, err
	}
	if q.Type != "" {
		live = live.Filter(func(e *models.Entry) bool {
			return e.Type == q.Type
		})
	}

	result := &Summary{
		ByCategory:  map[string]float64{},
		ByAccount:   map[string]float64{},
		ByHousehold: map[string]float64{},
	}

	total := decimal.Zero
	byCategory := map[string]decimal.Decimal{}
	byAccount := map[string]decimal.Decimal{}
	byHousehold := map[string]decimal.Decimal{}
	byMonthType := map[[2]string]decimal.Decimal{}
	byMonthCategory := map[[2]string]decimal.Decimal{}

	accountNames := map[string]string{}
	householdNames := map[string]string{}

	for i := range live {
		e := &live[i]
		amount := decimal.NewFromFloat(e.Amount)
		month := e.EntryDate.UTC().Format(monthLayout)

		total = total.Add(amount)
		byCategory[string(e.Category)] = byCategory[string(e.Category)].Add(amount)

		account := s.accountName(ctx, accountNames, e.AccountID)
		byAccount[account] = byAccount[account].Add(amount)

		household := s.householdName(ctx, householdNames, e.HouseholdID)
		byHousehold[household] = byHousehold[household].Add(amount)

		byMonthType[[2]string{month, string(e.Type)}] = byMonthType[[2]string{month, string(e.Type)}].Add(amount)
		byMonthCategory[[2]string{month, string(e.Category)}] = byMonthCategory[[2]string{month, string(e.Category)}].Add(amount)
	}

	result.Total = round2(total)
	for k, v := range byCategory {
		result.ByCategory[k] = round2(v)
	}
	for k, v := range byAccount {
		result.ByAccount[k] = round2(v)
	}
	for k, v := range byHousehold {
		result.ByHousehold[k] = round2(v)
	}

	if q.LastNMonths > 0 || (q.Start != "" && q.End != "") {
		for k, v := range byMonthType {
			result.TypeTrends = append(result.TypeTrends, TypeTrend{
				Month: k[0], Type: models.EntryType(k[1]), Amount: round2(v),
			})
		}
		sort.Slice(result.TypeTrends, func(i, j int) bool {
			a, b := result.TypeTrends[i], result.TypeTrends[j]
			if a.Month != b.Month {
				return a.Month < b.Month
			}
			return a.Type < b.Type
		})

		for k, v := range byMonthCategory {
			result.CategoryTrends = append(result.CategoryTrends, CategoryTrend{
				Month: k[0], Category: models.Category(k[1]), Amount: round2(v),
			})
		}
		sort.Slice(result.CategoryTrends, func(i, j int) bool {
			a, b := result.CategoryTrends[i], result.CategoryTrends[j]
			if a.Month != b.Month {
				return a.Month < b.Month
			}
			return a.Category < b.Category
		})
	}

	return result, nil
}

// filterWindow applies the query's date selection. Precedence follows the
// query shape: an anchored trailing window, a trailing window from today, an
// explicit month range, or a single month.
func filterWindow(live versionstore.Table[models.Entry], q SummaryQuery) (versionstore.Table[models.Entry], error) {
	keep := live.Filter

	switch {
	case q.LastNMonths > 0 && q.Month == "" && q.Start == "" && q.End == "":
		if len(live) == 0 {
			return live, nil
		}
		anchor := live[0].EntryDate
		for i := range live {
			if live[i].EntryDate.After(anchor) {
				anchor = live[i].EntryDate
			}
		}
		hi := monthIndex(anchor)
		lo := hi - (q.LastNMonths - 1)
		return keep(func(e *models.Entry) bool {
			idx := monthIndex(e.EntryDate)
			return idx >= lo && idx <= hi
		}), nil

	case q.LastNMonths > 0:
		lo := monthIndex(time.Now().UTC()) - (q.LastNMonths - 1)
		return keep(func(e *models.Entry) bool {
			return monthIndex(e.EntryDate) >= lo
		}), nil

	case q.Start != "" && q.End != "":
		start, err := time.Parse(monthLayout, q.Start)
		if err != nil {
			return nil, fmt.Errorf("invalid start month %q: %w", q.Start, common.ErrorValidation)
		}
		end, err := time.Parse(monthLayout, q.End)
		if err != nil {
			return nil, fmt.Errorf("invalid end month %q: %w", q.End, common.ErrorValidation)
		}
		lo, hi := monthIndex(start), monthIndex(end)
		return keep(func(e *models.Entry) bool {
			idx := monthIndex(e.EntryDate)
			return idx >= lo && idx <= hi
		}), nil

	case q.Month != "":
		if _, err := time.Parse(monthLayout, q.Month); err != nil {
			return nil, fmt.Errorf("invalid month %q: %w", q.Month, common.ErrorValidation)
		}
		return keep(func(e *models.Entry) bool {
			return e.EntryDate.UTC().Format(monthLayout) == q.Month
		}), nil
	}

	return live, nil
}

// accountName resolves an account id to its current name, falling back to
// the raw id for accounts that no longer have a live version.
func (s *Summaries) accountName(ctx context.Context, cache map[string]string, id string) string {
	if name, ok := cache[id]; ok {
		return name
	}
	name := id
	if a, err := s.accounts.Current(ctx, id); err == nil {
		name = a.Name
	}
	cache[id] = name
	return name
}

func (s *Summaries) householdName(ctx context.Context, cache map[string]string, id string) string {
	if name, ok := cache[id]; ok {
		return name
	}
	name := id
	if h, err := s.households.Current(ctx, id); err == nil {
		name = h.Name
	}
	cache[id] = name
	return name
}

func round2(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}
