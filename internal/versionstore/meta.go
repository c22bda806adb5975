// Package versionstore implements an append-only versioned record store on
// top of an object store. Every logical record is persisted as a sequence of
// immutable, timestamped version objects; at most one version per record id
// is flagged current at any time. Updates are expressed as stale-the-old plus
// append-the-new, soft deletes as a new version with is_deleted set. Version
// objects are one-row parquet files, so every blob is self-describing.
package versionstore

import "time"

// Meta is the version envelope shared by every record type. Record structs
// embed it by composition; the store reads and writes it through the Record
// constraint.
type Meta struct {
	CreatedAt time.Time `parquet:"created_at" json:"created_at"`
	UpdatedAt time.Time `parquet:"updated_at" json:"updated_at"`
	IsCurrent bool      `parquet:"is_current" json:"is_current"`
	IsDeleted bool      `parquet:"is_deleted" json:"is_deleted"`
}

// VersionMeta returns the envelope itself, satisfying the Record constraint
// for any struct that embeds Meta.
func (m *Meta) VersionMeta() *Meta { return m }

// Live reports whether this version is the authoritative, non-deleted one.
func (m *Meta) Live() bool { return m.IsCurrent && !m.IsDeleted }

// Record constrains a record pointer type: it must expose its stable id and
// its version envelope.
type Record[T any] interface {
	*T
	RecordID() string
	VersionMeta() *Meta
}

// Descriptor names a record type in the store key layout.
type Descriptor struct {
	// Name is the plural record type and the first key segment, e.g. "accounts".
	Name string
	// Singular is the object file-name component, e.g. "account".
	Singular string
	// IDField is the partition field name, e.g. "account_id".
	IDField string
}
