package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/homeledger/internal/common"
	"github.com/dmitrijs2005/homeledger/internal/server/models"
)

func entryInput(u *models.User, h *models.Household, a *models.Account) EntryInput {
	day := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	return EntryInput{
		UserID:      u.UserID,
		AccountID:   a.AccountID,
		HouseholdID: h.HouseholdID,
		EntryDate:   day,
		ValueDate:   day,
		Type:        models.EntryExpense,
		Category:    models.CategoryGroceries,
		Amount:      42.5,
		Description: "weekly shop",
	}
}

func TestEntryCreateAndGet(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	u, h, a := e.bootstrapAccount(t)

	created, err := e.entries.Create(ctx, u, entryInput(u, h, a))
	require.NoError(t, err)
	assert.NotEmpty(t, created.EntryID)

	got, err := e.entries.Get(ctx, u, created.EntryID)
	require.NoError(t, err)
	assert.Equal(t, 42.5, got.Amount)
	assert.Equal(t, models.CategoryGroceries, got.Category)
}

func TestEntryCreate_NotAssignedToAccount(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	u, h, a := e.bootstrapAccount(t)

	// A member of the household without an account assignment cannot write.
	bob := e.registerUser(t, "bob", "bob@example.com")
	_, err := e.households.AssignMember(ctx, u, h.HouseholdID, bob.UserID, models.RoleMember)
	require.NoError(t, err)

	_, err = e.entries.Create(ctx, bob, entryInput(bob, h, a))
	assert.ErrorIs(t, err, common.ErrorForbidden)
}

func TestEntryCreate_ForAnotherUser(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	u, h, a := e.bootstrapAccount(t)

	in := entryInput(u, h, a)
	in.UserID = "someone-else"

	_, err := e.entries.Create(ctx, u, in)
	assert.ErrorIs(t, err, common.ErrorForbidden)
}

func TestEntryUpdate_KeepsHistory(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	u, h, a := e.bootstrapAccount(t)

	created, err := e.entries.Create(ctx, u, entryInput(u, h, a))
	require.NoError(t, err)

	in := entryInput(u, h, a)
	in.Amount = 99
	in.Description = "corrected"

	_, err = e.entries.Update(ctx, u, created.EntryID, in)
	require.NoError(t, err)

	got, err := e.entries.Get(ctx, u, created.EntryID)
	require.NoError(t, err)
	assert.Equal(t, float64(99), got.Amount)

	hist, err := e.entries.History(ctx, u, created.EntryID, Page{})
	require.NoError(t, err)
	require.Len(t, hist, 2)
	assert.Equal(t, "corrected", hist[0].Description, "newest first")
	assert.Equal(t, "weekly shop", hist[1].Description)
}

func TestEntryHistory_Paged(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	u, h, a := e.bootstrapAccount(t)

	created, err := e.entries.Create(ctx, u, entryInput(u, h, a))
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		in := entryInput(u, h, a)
		in.Amount = float64(i)
		_, err = e.entries.Update(ctx, u, created.EntryID, in)
		require.NoError(t, err)
	}

	hist, err := e.entries.History(ctx, u, created.EntryID, Page{Offset: 1, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, hist, 2)
}

func TestEntrySoftDelete(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	u, h, a := e.bootstrapAccount(t)

	created, err := e.entries.Create(ctx, u, entryInput(u, h, a))
	require.NoError(t, err)

	require.NoError(t, e.entries.SoftDelete(ctx, u, created.EntryID))

	_, err = e.entries.Get(ctx, u, created.EntryID)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	// History also 404s once no live version exists: same contract as Get.
	_, err = e.entries.History(ctx, u, created.EntryID, Page{})
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestListForAccount_DateRange(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	u, h, a := e.bootstrapAccount(t)

	for _, day := range []int{1, 10, 20} {
		in := entryInput(u, h, a)
		in.EntryDate = time.Date(2026, 6, day, 0, 0, 0, 0, time.UTC)
		in.ValueDate = in.EntryDate
		_, err := e.entries.Create(ctx, u, in)
		require.NoError(t, err)
	}

	rows, err := e.entries.ListForAccount(ctx, u, a, time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Len(t, rows, 3)

	start := time.Date(2026, 6, 5, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)
	rows, err = e.entries.ListForAccount(ctx, u, a, start, end)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 10, rows[0].EntryDate.Day())
}

func TestListForAccount_RequiresAccess(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, _, a := e.bootstrapAccount(t)

	stranger := e.registerUser(t, "eve", "eve@example.com")
	_, err := e.entries.ListForAccount(ctx, stranger, a, time.Time{}, time.Time{})
	assert.ErrorIs(t, err, common.ErrorForbidden)
}
