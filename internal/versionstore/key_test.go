package versionstore

import (
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectKey_Layout(t *testing.T) {
	d := Descriptor{Name: "accounts", Singular: "account", IDField: "account_id"}
	at := time.Date(2026, 3, 7, 9, 30, 15, 123456000, time.UTC)

	key, err := d.objectKey("abc", at)
	require.NoError(t, err)

	want := regexp.MustCompile(
		`^accounts/account_id=abc/year=2026/month=03/day=07/account-abc-20260307T093015123456Z-[0-9a-f]{4}\.parquet$`)
	assert.Regexp(t, want, key)
}

func TestObjectKey_RandomSuffixDiffers(t *testing.T) {
	d := Descriptor{Name: "notes", Singular: "note", IDField: "note_id"}
	at := time.Now()

	k1, err := d.objectKey("n1", at)
	require.NoError(t, err)
	k2, err := d.objectKey("n1", at)
	require.NoError(t, err)

	assert.NotEqual(t, k1, k2)
}

func TestDayFromKey(t *testing.T) {
	tests := []struct {
		name string
		key  string
		want time.Time
		ok   bool
	}{
		{
			name: "full partition",
			key:  "notes/note_id=n1/year=2026/month=03/day=07/note-n1-x.parquet",
			want: time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC),
			ok:   true,
		},
		{
			name: "missing day segment",
			key:  "notes/note_id=n1/year=2026/month=03/note-n1-x.parquet",
			ok:   false,
		},
		{
			name: "no partitions at all",
			key:  "notes/n1.parquet",
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := dayFromKey(tt.key)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestInDayRange(t *testing.T) {
	key := func(day int) string {
		return fmt.Sprintf("notes/note_id=n1/year=2026/month=03/day=%02d/x.parquet", day)
	}

	start := time.Date(2026, 3, 5, 14, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 10, 2, 0, 0, 0, time.UTC)

	assert.True(t, inDayRange(key(5), start, end), "start day inclusive")
	assert.True(t, inDayRange(key(7), start, end))
	assert.True(t, inDayRange(key(10), start, end), "end day inclusive")
	assert.False(t, inDayRange(key(4), start, end))
	assert.False(t, inDayRange(key(11), start, end))
}
