package versionstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func tableFixture() Table[note] {
	mk := func(id, body string, current, deleted bool, updated time.Time) note {
		n := note{NoteID: id, Body: body}
		n.IsCurrent = current
		n.IsDeleted = deleted
		n.UpdatedAt = updated
		return n
	}
	base := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	return Table[note]{
		mk("n1", "old", false, false, base),
		mk("n1", "new", true, false, base.Add(time.Hour)),
		mk("n2", "gone", true, true, base.Add(2*time.Hour)),
		mk("n3", "live", true, false, base.Add(3*time.Hour)),
	}
}

func TestLive(t *testing.T) {
	live := Live(tableFixture())
	assert.Len(t, live, 2)
	for i := range live {
		assert.True(t, live[i].Meta.Live())
	}
}

func TestCurrentFor(t *testing.T) {
	tbl := tableFixture()

	got := CurrentFor(tbl, "n1")
	if assert.NotNil(t, got) {
		assert.Equal(t, "new", got.Body)
	}

	assert.Nil(t, CurrentFor(tbl, "n2"), "deleted row is not current")
	assert.Nil(t, CurrentFor(tbl, "missing"))
}

func TestSortByUpdatedAt(t *testing.T) {
	tbl := tableFixture()

	SortByUpdatedAt(tbl, true)
	assert.Equal(t, "n3", tbl[0].NoteID)

	SortByUpdatedAt(tbl, false)
	assert.Equal(t, "old", tbl[0].Body)
}

func TestPage(t *testing.T) {
	tbl := tableFixture()

	assert.Len(t, tbl.Page(0, 0), 4, "limit 0 disables paging")
	assert.Len(t, tbl.Page(0, 2), 2)
	assert.Len(t, tbl.Page(3, 2), 1)
	assert.Empty(t, tbl.Page(10, 2))
	assert.Len(t, tbl.Page(-1, 2), 2)
}
