package audit

import (
	"context"
	"sort"
	"time"

	"github.com/dmitrijs2005/homeledger/internal/server/models"
	"github.com/dmitrijs2005/homeledger/internal/versionstore"
)

// Filter narrows an audit-log listing. Zero values mean "any".
type Filter struct {
	ActorID      string
	ResourceType string
	Action       string
	Start, End   time.Time
	Offset       int
	Limit        int
}

// List returns live audit entries matching the filter, newest first. When
// both Start and End are set, the read is bounded to the matching day
// partitions instead of scanning the whole type.
func (r *Recorder) List(ctx context.Context, f Filter) ([]models.AuditLog, error) {
	var opts []versionstore.LoadOption
	if !f.Start.IsZero() && !f.End.IsZero() {
		opts = append(opts, versionstore.Between(f.Start, f.End))
	}

	rows, err := r.store.Load(ctx, opts...)
	if err != nil {
		return nil, err
	}

	rows = versionstore.Live(rows).Filter(func(l *models.AuditLog) bool {
		if f.ActorID != "" && (l.UserID == nil || *l.UserID != f.ActorID) {
			return false
		}
		if f.ResourceType != "" && l.ResourceType != f.ResourceType {
			return false
		}
		if f.Action != "" && l.Action != f.Action {
			return false
		}
		if !f.Start.IsZero() && l.Timestamp.Before(f.Start) {
			return false
		}
		if !f.End.IsZero() && l.Timestamp.After(f.End) {
			return false
		}
		return true
	})

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Timestamp.After(rows[j].Timestamp)
	})
	return rows.Page(f.Offset, f.Limit), nil
}
