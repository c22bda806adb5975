package versionstore

import "sort"

// Table is a materialized set of versions of one record type. It is what
// Load returns; callers needing "most recent" or "current" filter and sort
// it explicitly.
type Table[T any] []T

// Filter returns the rows for which keep returns true.
func (t Table[T]) Filter(keep func(*T) bool) Table[T] {
	out := make(Table[T], 0, len(t))
	for i := range t {
		if keep(&t[i]) {
			out = append(out, t[i])
		}
	}
	return out
}

// Live returns only current, non-deleted rows.
func Live[T any, P Record[T]](t Table[T]) Table[T] {
	return t.Filter(func(rec *T) bool {
		return P(rec).VersionMeta().Live()
	})
}

// CurrentFor returns the live row with the given record id, or nil.
func CurrentFor[T any, P Record[T]](t Table[T], id string) *T {
	for i := range t {
		p := P(&t[i])
		if p.RecordID() == id && p.VersionMeta().Live() {
			return &t[i]
		}
	}
	return nil
}

// SortByUpdatedAt orders rows by their updated_at timestamp, in place.
func SortByUpdatedAt[T any, P Record[T]](t Table[T], desc bool) {
	sort.SliceStable(t, func(i, j int) bool {
		a := P(&t[i]).VersionMeta().UpdatedAt
		b := P(&t[j]).VersionMeta().UpdatedAt
		if desc {
			return a.After(b)
		}
		return a.Before(b)
	})
}

// Page returns the rows in [offset, offset+limit). A limit <= 0 means no
// paging.
func (t Table[T]) Page(offset, limit int) Table[T] {
	if limit <= 0 {
		return t
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= len(t) {
		return Table[T]{}
	}
	end := offset + limit
	if end > len(t) {
		end = len(t)
	}
	return t[offset:end]
}
