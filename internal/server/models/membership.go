package models

import "github.com/dmitrijs2005/homeledger/internal/versionstore"

// UserHousehold maps a user into a household with a role.
type UserHousehold struct {
	MappingID   string `parquet:"mapping_id" json:"mapping_id"`
	UserID      string `parquet:"user_id" json:"user_id"`
	HouseholdID string `parquet:"household_id" json:"household_id"`
	Role        Role   `parquet:"role" json:"role"`
	versionstore.Meta
}

func (m *UserHousehold) RecordID() string { return m.MappingID }

var UserHouseholds = versionstore.Descriptor{Name: "user_households", Singular: "user_household", IDField: "mapping_id"}

// UserAccount assigns a user to an account inside a household.
type UserAccount struct {
	MappingID string `parquet:"mapping_id" json:"mapping_id"`
	UserID    string `parquet:"user_id" json:"user_id"`
	AccountID string `parquet:"account_id" json:"account_id"`
	Role      Role   `parquet:"role" json:"role"`
	versionstore.Meta
}

func (m *UserAccount) RecordID() string { return m.MappingID }

var UserAccounts = versionstore.Descriptor{Name: "user_accounts", Singular: "user_account", IDField: "mapping_id"}
