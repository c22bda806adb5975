package versionstore

import "context"

// Cascade operations propagate a parent delete to dependent rows. They scan
// the whole child type, so cost is linear in the child's version history.
// The parent's own delete happens first in the services layer; until a
// cascade completes, a reader can observe a deleted parent with still-live
// children. Callers retry the cascade to completion to close that window.

// SoftDeleteWhere soft-deletes every live row matching the predicate:
// each one is staled and replaced by a copy flagged deleted. It returns the
// number of rows cascaded.
func (s *Store[T, P]) SoftDeleteWhere(ctx context.Context, match func(*T) bool) (int, error) {
	ids, err := s.liveMatches(ctx, match)
	if err != nil {
		return 0, err
	}

	for _, id := range ids {
		if _, err := s.SoftDelete(ctx, id); err != nil {
			return 0, err
		}
	}
	return len(ids), nil
}

// StaleWhere stales every live row matching the predicate without writing a
// deleted replacement. Used to invalidate refresh tokens, where the record
// simply stops being current.
func (s *Store[T, P]) StaleWhere(ctx context.Context, match func(*T) bool) (int, error) {
	ids, err := s.liveMatches(ctx, match)
	if err != nil {
		return 0, err
	}

	for _, id := range ids {
		unlock := s.locks.lock(id)
		err := s.MarkStale(ctx, id)
		unlock.Unlock()
		if err != nil {
			return 0, err
		}
	}
	return len(ids), nil
}

func (s *Store[T, P]) liveMatches(ctx context.Context, match func(*T) bool) ([]string, error) {
	rows, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var ids []string
	for i := range rows {
		p := P(&rows[i])
		if !p.VersionMeta().Live() || !match(&rows[i]) {
			continue
		}
		id := p.RecordID()
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, nil
}
