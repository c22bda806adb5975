package models

import "github.com/dmitrijs2005/homeledger/internal/versionstore"

type Household struct {
	HouseholdID     string `parquet:"household_id" json:"household_id"`
	Name            string `parquet:"name" json:"name"`
	CreatedByUserID string `parquet:"created_by_user_id" json:"created_by_user_id"`
	versionstore.Meta
}

func (h *Household) RecordID() string { return h.HouseholdID }

var Households = versionstore.Descriptor{Name: "households", Singular: "household", IDField: "household_id"}
