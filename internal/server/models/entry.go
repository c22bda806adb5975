package models

import (
	"time"

	"github.com/dmitrijs2005/homeledger/internal/versionstore"
)

type Entry struct {
	EntryID     string    `parquet:"entry_id" json:"entry_id"`
	UserID      string    `parquet:"user_id" json:"user_id"`
	AccountID   string    `parquet:"account_id" json:"account_id"`
	HouseholdID string    `parquet:"household_id" json:"household_id"`
	DebtID      *string   `parquet:"debt_id,optional" json:"debt_id,omitempty"`
	EntryDate   time.Time `parquet:"entry_date" json:"entry_date"`
	ValueDate   time.Time `parquet:"value_date" json:"value_date"`
	Type        EntryType `parquet:"type" json:"type"`
	Category    Category  `parquet:"category" json:"category"`
	Amount      float64   `parquet:"amount" json:"amount"`
	Description string    `parquet:"description" json:"description"`
	versionstore.Meta
}

func (e *Entry) RecordID() string { return e.EntryID }

var Entries = versionstore.Descriptor{Name: "entries", Singular: "entry", IDField: "entry_id"}
