package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taco0513/dinotrack/compliance"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func date(t *testing.T, s string) compliance.Date {
	t.Helper()
	d, err := compliance.ParseDate(s)
	require.NoError(t, err)
	return d
}

func TestStore_SaveAndListStays(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	exit := date(t, "2025-02-10")
	require.NoError(t, store.SaveStay(ctx, compliance.StayRecord{
		ID:          "stay-2",
		CountryCode: "JP",
		EntryDate:   date(t, "2025-02-01"),
		ExitDate:    &exit,
		Purpose:     "tourism",
	}))
	require.NoError(t, store.SaveStay(ctx, compliance.StayRecord{
		ID:          "stay-1",
		CountryCode: "FR",
		EntryDate:   date(t, "2025-01-05"),
	}))

	stays, err := store.ListStays(ctx)
	require.NoError(t, err)
	require.Len(t, stays, 2)

	// Ordered by entry date, not insertion order.
	assert.Equal(t, "stay-1", stays[0].ID)
	assert.Equal(t, "FR", stays[0].CountryCode)
	assert.Nil(t, stays[0].ExitDate)

	assert.Equal(t, "stay-2", stays[1].ID)
	require.NotNil(t, stays[1].ExitDate)
	assert.Equal(t, "2025-02-10", stays[1].ExitDate.String())
	assert.Equal(t, "tourism", stays[1].Purpose)
}

func TestStore_SaveStay_RejectsExitBeforeEntry(t *testing.T) {
	store := newTestStore(t)

	exit := date(t, "2025-01-01")
	err := store.SaveStay(context.Background(), compliance.StayRecord{
		ID:          "bad",
		CountryCode: "FR",
		EntryDate:   date(t, "2025-01-10"),
		ExitDate:    &exit,
	})

	require.Error(t, err)
	var malformed *compliance.MalformedStayError
	assert.ErrorAs(t, err, &malformed)

	stays, listErr := store.ListStays(context.Background())
	require.NoError(t, listErr)
	assert.Empty(t, stays, "rejected stay must not be persisted")
}

func TestStore_CloseStay(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveStay(ctx, compliance.StayRecord{
		ID:          "ongoing",
		CountryCode: "TH",
		EntryDate:   date(t, "2025-03-01"),
	}))

	require.NoError(t, store.CloseStay(ctx, "ongoing", date(t, "2025-03-20")))

	stay, err := store.GetStay(ctx, "ongoing")
	require.NoError(t, err)
	require.NotNil(t, stay)
	require.NotNil(t, stay.ExitDate)
	assert.Equal(t, "2025-03-20", stay.ExitDate.String())
}

func TestStore_CloseStay_RejectsExitBeforeEntry(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveStay(ctx, compliance.StayRecord{
		ID:          "ongoing",
		CountryCode: "TH",
		EntryDate:   date(t, "2025-03-10"),
	}))

	err := store.CloseStay(ctx, "ongoing", date(t, "2025-03-05"))
	var malformed *compliance.MalformedStayError
	assert.ErrorAs(t, err, &malformed)

	stay, getErr := store.GetStay(ctx, "ongoing")
	require.NoError(t, getErr)
	assert.Nil(t, stay.ExitDate, "failed close must not mutate the row")
}

func TestStore_CloseStay_NotFound(t *testing.T) {
	store := newTestStore(t)
	err := store.CloseStay(context.Background(), "missing", date(t, "2025-01-01"))
	assert.ErrorIs(t, err, compliance.ErrStayNotFound)
}

func TestStore_DeleteStay(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveStay(ctx, compliance.StayRecord{
		ID:          "gone",
		CountryCode: "US",
		EntryDate:   date(t, "2025-01-01"),
	}))

	require.NoError(t, store.DeleteStay(ctx, "gone"))

	stay, err := store.GetStay(ctx, "gone")
	require.NoError(t, err)
	assert.Nil(t, stay)

	assert.ErrorIs(t, store.DeleteStay(ctx, "gone"), compliance.ErrStayNotFound)
}

func TestStore_SpecialStatuses(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveSpecialStatus(ctx, SpecialStatusRecord{
		ID:          "status-1",
		CountryCode: "KR",
		Label:       "Long-term resident card",
		ConfigJSON:  `{"country_code":"KR","method":"visa_validity","max_days_per_period":730}`,
	}))

	records, err := store.ListSpecialStatuses(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "KR", records[0].CountryCode)
	assert.Contains(t, records[0].ConfigJSON, "visa_validity")

	require.NoError(t, store.DeleteSpecialStatus(ctx, "status-1"))
	records, err = store.ListSpecialStatuses(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestStore_Profile(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// GIVEN no profile was ever saved
	p, err := store.GetProfile(ctx)
	require.NoError(t, err)
	assert.Nil(t, p)

	// WHEN saving and then updating the nationality
	require.NoError(t, store.SaveProfile(ctx, Profile{Nationality: "US"}))
	require.NoError(t, store.SaveProfile(ctx, Profile{Nationality: "KR"}))

	// THEN the single row reflects the latest value
	p, err = store.GetProfile(ctx)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "KR", p.Nationality)
}

func TestStore_Reset(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveStay(ctx, compliance.StayRecord{
		ID: "s1", CountryCode: "FR", EntryDate: date(t, "2025-01-01"),
	}))
	require.NoError(t, store.SaveProfile(ctx, Profile{Nationality: "US"}))

	require.NoError(t, store.Reset(ctx))

	stays, err := store.ListStays(ctx)
	require.NoError(t, err)
	assert.Empty(t, stays)
	p, err := store.GetProfile(ctx)
	require.NoError(t, err)
	assert.Nil(t, p)
}
