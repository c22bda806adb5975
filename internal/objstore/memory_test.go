package objstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/homeledger/internal/common"
)

func TestMemory_PutGet(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.Put(ctx, "a/b/c", []byte("payload")))

	got, err := m.Get(ctx, "a/b/c")
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), got)
	assert.Equal(t, 1, m.Len())
}

func TestMemory_GetMissing(t *testing.T) {
	m := NewMemory()

	_, err := m.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestMemory_ListByPrefix(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.Put(ctx, "notes/n1/v1", nil))
	require.NoError(t, m.Put(ctx, "notes/n1/v2", nil))
	require.NoError(t, m.Put(ctx, "notes/n2/v1", nil))
	require.NoError(t, m.Put(ctx, "other/x", nil))

	keys, err := m.List(ctx, "notes/n1/")
	require.NoError(t, err)
	assert.Equal(t, []string{"notes/n1/v1", "notes/n1/v2"}, keys)

	keys, err = m.List(ctx, "nope/")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestMemory_PutCopiesBody(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	body := []byte("before")
	require.NoError(t, m.Put(ctx, "k", body))
	body[0] = 'X'

	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("before"), got)
}
