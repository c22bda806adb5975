package models

import (
	"time"

	"github.com/dmitrijs2005/homeledger/internal/versionstore"
)

type Debt struct {
	DebtID       string    `parquet:"debt_id" json:"debt_id"`
	UserID       string    `parquet:"user_id" json:"user_id"`
	AccountID    string    `parquet:"account_id" json:"account_id"`
	HouseholdID  string    `parquet:"household_id" json:"household_id"`
	Name         string    `parquet:"name" json:"name"`
	Principal    float64   `parquet:"principal" json:"principal"`
	InterestRate *float64  `parquet:"interest_rate,optional" json:"interest_rate,omitempty"` // annual %
	Installments int32     `parquet:"installments" json:"installments"`
	StartDate    time.Time `parquet:"start_date" json:"start_date"`
	DueDay       int32     `parquet:"due_day" json:"due_day"` // day of month for payments
	versionstore.Meta
}

func (d *Debt) RecordID() string { return d.DebtID }

var Debts = versionstore.Descriptor{Name: "debts", Singular: "debt", IDField: "debt_id"}
