package models

import "github.com/dmitrijs2005/homeledger/internal/versionstore"

type Account struct {
	AccountID   string `parquet:"account_id" json:"account_id"`
	Name        string `parquet:"name" json:"name"`
	HouseholdID string `parquet:"household_id" json:"household_id"`
	versionstore.Meta
}

func (a *Account) RecordID() string { return a.AccountID }

var Accounts = versionstore.Descriptor{Name: "accounts", Singular: "account", IDField: "account_id"}
