package versionstore

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/homeledger/internal/common"
	"github.com/dmitrijs2005/homeledger/internal/logging"
	"github.com/dmitrijs2005/homeledger/internal/objstore"
)

// Store persists versions of one record type. T is the record struct; the
// pointer type is constrained by Record so the store can reach the id and
// the version envelope without reflection.
type Store[T any, P Record[T]] struct {
	client objstore.Client
	desc   Descriptor
	locks  *keyedMutex
	log    logging.Logger
}

func New[T any, P Record[T]](client objstore.Client, desc Descriptor, log logging.Logger) *Store[T, P] {
	return &Store[T, P]{
		client: client,
		desc:   desc,
		locks:  newKeyedMutex(),
		log:    log.With("record_type", desc.Name),
	}
}

// Descriptor returns the record-type descriptor the store was built with.
func (s *Store[T, P]) Descriptor() Descriptor {
	return s.desc
}

// Save appends one immutable version object for rec. It validates the id
// before any I/O and never touches existing objects. Durability is the
// underlying store's problem; callers retrying a failed Save may produce a
// duplicate version, which readers must tolerate.
func (s *Store[T, P]) Save(ctx context.Context, rec *T) error {
	id := P(rec).RecordID()
	if id == "" {
		return fmt.Errorf("%s: missing %s: %w", s.desc.Name, s.desc.IDField, common.ErrorMalformedRecord)
	}

	key, err := s.desc.objectKey(id, time.Now())
	if err != nil {
		return err
	}

	data, err := encode(rec)
	if err != nil {
		return fmt.Errorf("%s %s: %w", s.desc.Name, id, err)
	}

	return s.client.Put(ctx, key, data)
}

// Create writes the first version of a record: envelope defaults are filled
// in and the version is flagged current. No staling happens, so calling
// Create twice for the same id leaves two current versions behind.
func (s *Store[T, P]) Create(ctx context.Context, rec *T) error {
	meta := P(rec).VersionMeta()
	now := time.Now().UTC()
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = now
	}
	if meta.UpdatedAt.IsZero() {
		meta.UpdatedAt = meta.CreatedAt
	}
	meta.IsCurrent = true

	return s.Save(ctx, rec)
}

// loadOptions narrows a Load to one record id or a day-partition time range.
type loadOptions struct {
	id         string
	start, end time.Time
	ranged     bool
}

type LoadOption func(*loadOptions)

// ByID restricts the load to all versions of a single record id.
func ByID(id string) LoadOption {
	return func(o *loadOptions) { o.id = id }
}

// Between restricts the load to versions whose day partition falls inside
// the inclusive [start, end] range.
func Between(start, end time.Time) LoadOption {
	return func(o *loadOptions) {
		o.start, o.end = start, end
		o.ranged = true
	}
}

// Load lists and materializes version objects into an in-memory table. With
// no options it scans every version of the type, linear in history size, an
// accepted tradeoff for small reference tables. The result is empty, never
// nil, when no objects exist, and carries no ordering guarantee.
func (s *Store[T, P]) Load(ctx context.Context, opts ...LoadOption) (Table[T], error) {
	var o loadOptions
	for _, opt := range opts {
		opt(&o)
	}

	prefix := s.desc.typePrefix()
	if o.id != "" {
		prefix = s.desc.idPrefix(o.id)
	}

	keys, err := s.client.List(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.desc.Name, err)
	}

	rows := make(Table[T], 0, len(keys))
	for _, key := range keys {
		if o.ranged && !inDayRange(key, o.start, o.end) {
			continue
		}
		data, err := s.client.Get(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", s.desc.Name, err)
		}
		rec, err := decode[T](data)
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", s.desc.Name, key, err)
		}
		rows = append(rows, *rec)
	}

	return rows, nil
}

// MarkStale flips is_current off on the record's current version. Every
// version found flagged current is staled, so leftovers of an earlier race
// are cleaned up on the next write. This rewrite-in-place is the one deliberate
// exception to the append-only rule: is_current is metadata about the
// version's role, not its content.
//
// Returns common.ErrorNotFound when no versions exist for the id.
func (s *Store[T, P]) MarkStale(ctx context.Context, id string) error {
	prefix := s.desc.idPrefix(id)

	keys, err := s.client.List(ctx, prefix)
	if err != nil {
		return fmt.Errorf("%s %s: %w", s.desc.Name, id, err)
	}
	if len(keys) == 0 {
		return fmt.Errorf("no versions found for %s %s: %w", s.desc.Name, id, common.ErrorNotFound)
	}

	for _, key := range keys {
		data, err := s.client.Get(ctx, key)
		if err != nil {
			return fmt.Errorf("%s %s: %w", s.desc.Name, id, err)
		}
		rec, err := decode[T](data)
		if err != nil {
			return fmt.Errorf("%s %s: %w", s.desc.Name, key, err)
		}

		meta := P(rec).VersionMeta()
		if !meta.IsCurrent {
			continue
		}
		meta.IsCurrent = false

		staled, err := encode(rec)
		if err != nil {
			return fmt.Errorf("%s %s: %w", s.desc.Name, key, err)
		}
		if err := s.client.Put(ctx, key, staled); err != nil {
			return fmt.Errorf("%s %s: %w", s.desc.Name, id, err)
		}
	}

	return nil
}

// Replace stales the previous current version and appends rec as the new
// one. The caller carries created_at (and any unchanged fields) forward;
// Replace stamps updated_at and the current flag. Writers for the same id
// in this process are serialized by a per-id lock; see keyedMutex.
func (s *Store[T, P]) Replace(ctx context.Context, rec *T) error {
	id := P(rec).RecordID()
	if id == "" {
		return fmt.Errorf("%s: missing %s: %w", s.desc.Name, s.desc.IDField, common.ErrorMalformedRecord)
	}

	defer s.locks.lock(id).Unlock()

	if err := s.MarkStale(ctx, id); err != nil {
		return err
	}

	meta := P(rec).VersionMeta()
	meta.UpdatedAt = time.Now().UTC()
	meta.IsCurrent = true

	return s.Save(ctx, rec)
}

// Current returns the single live (current, non-deleted) version for id.
// Logical absence and physical absence collapse into the same
// common.ErrorNotFound; callers wanting deleted history must Load it.
func (s *Store[T, P]) Current(ctx context.Context, id string) (*T, error) {
	rows, err := s.Load(ctx, ByID(id))
	if err != nil {
		return nil, err
	}

	for i := range rows {
		if P(&rows[i]).VersionMeta().Live() {
			return &rows[i], nil
		}
	}
	return nil, fmt.Errorf("%s %s: %w", s.desc.Name, id, common.ErrorNotFound)
}

// History returns every version for id ordered by updated_at ascending.
func (s *Store[T, P]) History(ctx context.Context, id string) (Table[T], error) {
	rows, err := s.Load(ctx, ByID(id))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s %s: %w", s.desc.Name, id, common.ErrorNotFound)
	}

	SortByUpdatedAt[T, P](rows, false)
	return rows, nil
}

// SoftDelete stales the current version and appends a copy flagged deleted.
// Optional mutators adjust the deleted copy before it is written (e.g. a
// deleted user also becomes inactive). All prior versions stay readable as
// history. Returns the deleted version, or common.ErrorNotFound when no
// live version exists.
func (s *Store[T, P]) SoftDelete(ctx context.Context, id string, mutate ...func(*T)) (*T, error) {
	defer s.locks.lock(id).Unlock()

	cur, err := s.Current(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.MarkStale(ctx, id); err != nil {
		return nil, err
	}

	deleted := *cur
	for _, fn := range mutate {
		fn(&deleted)
	}
	meta := P(&deleted).VersionMeta()
	meta.UpdatedAt = time.Now().UTC()
	meta.IsCurrent = true
	meta.IsDeleted = true

	if err := s.Save(ctx, &deleted); err != nil {
		return nil, err
	}
	return &deleted, nil
}
