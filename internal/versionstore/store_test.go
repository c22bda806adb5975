package versionstore

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/homeledger/internal/common"
	"github.com/dmitrijs2005/homeledger/internal/logging"
	"github.com/dmitrijs2005/homeledger/internal/objstore"
)

type note struct {
	NoteID string `parquet:"note_id" json:"note_id"`
	Body   string `parquet:"body" json:"body"`
	Meta
}

func (n *note) RecordID() string { return n.NoteID }

var notes = Descriptor{Name: "notes", Singular: "note", IDField: "note_id"}

func newTestStore(t *testing.T) (*Store[note, *note], *objstore.Memory) {
	t.Helper()
	client := objstore.NewMemory()
	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	return New[note](client, notes, log), client
}

func currentVersions(t *testing.T, s *Store[note, *note], id string) int {
	t.Helper()
	rows, err := s.Load(context.Background(), ByID(id))
	require.NoError(t, err)

	count := 0
	for i := range rows {
		if rows[i].IsCurrent {
			count++
		}
	}
	return count
}

func TestCreate_FillsEnvelope(t *testing.T) {
	s, client := newTestStore(t)
	ctx := context.Background()

	n := &note{NoteID: "n1", Body: "hello"}
	require.NoError(t, s.Create(ctx, n))

	assert.Equal(t, 1, client.Len())

	got, err := s.Current(ctx, "n1")
	require.NoError(t, err)
	assert.Equal(t, "hello", got.Body)
	assert.True(t, got.IsCurrent)
	assert.False(t, got.IsDeleted)
	assert.False(t, got.CreatedAt.IsZero())
	assert.Equal(t, got.CreatedAt, got.UpdatedAt)
}

func TestSave_MissingID(t *testing.T) {
	s, _ := newTestStore(t)

	err := s.Save(context.Background(), &note{Body: "no id"})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrorMalformedRecord)
}

func TestCurrent_NotFound(t *testing.T) {
	s, _ := newTestStore(t)

	_, err := s.Current(context.Background(), "missing")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestMarkStale_NotFound(t *testing.T) {
	s, _ := newTestStore(t)

	err := s.MarkStale(context.Background(), "missing")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestReplace_AppendsNewVersion(t *testing.T) {
	s, client := newTestStore(t)
	ctx := context.Background()

	n := &note{NoteID: "n1", Body: "v1"}
	require.NoError(t, s.Create(ctx, n))
	created := n.CreatedAt

	upd := *n
	upd.Body = "v2"
	require.NoError(t, s.Replace(ctx, &upd))

	// Two version objects, exactly one current.
	assert.Equal(t, 2, client.Len())
	assert.Equal(t, 1, currentVersions(t, s, "n1"))

	got, err := s.Current(ctx, "n1")
	require.NoError(t, err)
	assert.Equal(t, "v2", got.Body)
	assert.Equal(t, created.Unix(), got.CreatedAt.Unix())
	assert.False(t, got.UpdatedAt.Before(got.CreatedAt))
}

func TestHistory_AscendingByUpdatedAt(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	n := &note{NoteID: "n1", Body: "v1"}
	n.CreatedAt = time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	n.UpdatedAt = n.CreatedAt
	require.NoError(t, s.Create(ctx, n))

	upd := *n
	upd.Body = "v2"
	require.NoError(t, s.Replace(ctx, &upd))

	hist, err := s.History(ctx, "n1")
	require.NoError(t, err)
	require.Len(t, hist, 2)
	assert.Equal(t, "v1", hist[0].Body)
	assert.Equal(t, "v2", hist[1].Body)
	assert.False(t, hist[0].IsCurrent)
	assert.True(t, hist[1].IsCurrent)
}

func TestHistory_NotFound(t *testing.T) {
	s, _ := newTestStore(t)

	_, err := s.History(context.Background(), "missing")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestSoftDelete(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, &note{NoteID: "n1", Body: "v1"}))

	deleted, err := s.SoftDelete(ctx, "n1")
	require.NoError(t, err)
	assert.True(t, deleted.IsDeleted)
	assert.True(t, deleted.IsCurrent)

	// Logically gone, physically all versions remain.
	_, err = s.Current(ctx, "n1")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	hist, err := s.History(ctx, "n1")
	require.NoError(t, err)
	assert.Len(t, hist, 2)
}

func TestSoftDelete_AppliesMutators(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, &note{NoteID: "n1", Body: "v1"}))

	deleted, err := s.SoftDelete(ctx, "n1", func(n *note) {
		n.Body = "tombstone"
	})
	require.NoError(t, err)
	assert.Equal(t, "tombstone", deleted.Body)
}

func TestSoftDelete_NotFound(t *testing.T) {
	s, _ := newTestStore(t)

	_, err := s.SoftDelete(context.Background(), "missing")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestSoftDelete_Twice(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, &note{NoteID: "n1"}))

	_, err := s.SoftDelete(ctx, "n1")
	require.NoError(t, err)

	_, err = s.SoftDelete(ctx, "n1")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestLoad_EmptyIsNotNil(t *testing.T) {
	s, _ := newTestStore(t)

	rows, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestLoad_Between(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, &note{NoteID: "n1", Body: "today"}))

	now := time.Now().UTC()

	rows, err := s.Load(ctx, Between(now.Add(-24*time.Hour), now))
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	rows, err = s.Load(ctx, Between(now.Add(-72*time.Hour), now.Add(-48*time.Hour)))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

// Concurrent replaces of the same record must not leave more than one
// current version behind.
func TestReplace_ConcurrentSingleCurrent(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, &note{NoteID: "n1", Body: "v0"}))

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			upd := note{NoteID: "n1", Body: "concurrent"}
			assert.NoError(t, s.Replace(ctx, &upd))
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, currentVersions(t, s, "n1"))
}
