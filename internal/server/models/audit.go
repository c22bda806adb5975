package models

import (
	"time"

	"github.com/dmitrijs2005/homeledger/internal/versionstore"
)

// AuditLog is itself a record type: audit entries are appended through the
// same version writer as everything else, which is what makes them cheap to
// query by actor, resource and time range.
type AuditLog struct {
	LogID        string    `parquet:"log_id" json:"log_id"`
	UserID       *string   `parquet:"user_id,optional" json:"user_id,omitempty"` // actor; nil for system tasks
	Action       string    `parquet:"action" json:"action"`
	ResourceType string    `parquet:"resource_type" json:"resource_type"`
	ResourceID   *string   `parquet:"resource_id,optional" json:"resource_id,omitempty"`
	Details      *string   `parquet:"details,optional" json:"details,omitempty"`
	Timestamp    time.Time `parquet:"timestamp" json:"timestamp"`
	versionstore.Meta
}

func (l *AuditLog) RecordID() string { return l.LogID }

var AuditLogs = versionstore.Descriptor{Name: "audit_logs", Singular: "audit_log", IDField: "log_id"}
