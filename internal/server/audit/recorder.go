// Package audit implements the audit sink: an append-only audit_logs record
// type written through the same version writer as every other record.
// Writes are decoupled from the primary operation by a background worker so
// a failed audit write can never fail or roll back the mutation it
// describes.
package audit

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/homeledger/internal/logging"
	"github.com/dmitrijs2005/homeledger/internal/server/models"
	"github.com/dmitrijs2005/homeledger/internal/versionstore"
)

const Redacted = "***REDACTED***"

// sensitive holds lowercase substrings of detail keys whose values must
// never be stored in the clear.
var sensitive = []string{"password", "token", "secret", "otp"}

type Recorder struct {
	store *versionstore.Store[models.AuditLog, *models.AuditLog]
	log   logging.Logger

	queue chan models.AuditLog
	wg    sync.WaitGroup
	once  sync.Once
}

// NewRecorder starts the background writer. queueSize bounds the number of
// in-flight audit entries; when the queue is full, entries are dropped with
// a warning rather than blocking the primary operation.
func NewRecorder(store *versionstore.Store[models.AuditLog, *models.AuditLog], log logging.Logger, queueSize int) *Recorder {
	if queueSize <= 0 {
		queueSize = 256
	}

	r := &Recorder{
		store: store,
		log:   log.With("component", "audit"),
		queue: make(chan models.AuditLog, queueSize),
	}

	r.wg.Add(1)
	go r.worker()

	return r
}

func (r *Recorder) worker() {
	defer r.wg.Done()
	for entry := range r.queue {
		if err := r.store.Create(context.Background(), &entry); err != nil {
			r.log.Error(context.Background(), "audit write failed",
				"action", entry.Action, "resource_type", entry.ResourceType, "error", err)
		}
	}
}

// Record enqueues one audit entry describing a mutation. actorID and
// resourceID may be empty (system tasks, collection-level actions). Detail
// values under sensitive keys are redacted before serialization.
func (r *Recorder) Record(ctx context.Context, actorID, action, resourceType, resourceID string, details map[string]any) {
	entry := models.AuditLog{
		LogID:        uuid.NewString(),
		Action:       action,
		ResourceType: resourceType,
		Timestamp:    time.Now().UTC(),
	}
	if actorID != "" {
		entry.UserID = &actorID
	}
	if resourceID != "" {
		entry.ResourceID = &resourceID
	}
	if len(details) > 0 {
		data, err := json.Marshal(redact(details))
		if err != nil {
			r.log.Error(ctx, "audit details marshal failed", "action", action, "error", err)
		} else {
			s := string(data)
			entry.Details = &s
		}
	}

	select {
	case r.queue <- entry:
	default:
		r.log.Warn(ctx, "audit queue full, entry dropped",
			"action", action, "resource_type", resourceType)
	}
}

// Close stops accepting entries and drains the queue.
func (r *Recorder) Close() {
	r.once.Do(func() {
		close(r.queue)
	})
	r.wg.Wait()
}

func isSensitive(key string) bool {
	k := strings.ToLower(key)
	for _, s := range sensitive {
		if strings.Contains(k, s) {
			return true
		}
	}
	return false
}

// redact returns a copy of details with sensitive values replaced,
// descending into nested maps.
func redact(details map[string]any) map[string]any {
	out := make(map[string]any, len(details))
	for k, v := range details {
		if isSensitive(k) {
			out[k] = Redacted
			continue
		}
		if nested, ok := v.(map[string]any); ok {
			out[k] = redact(nested)
			continue
		}
		out[k] = v
	}
	return out
}
