package store

import (
	"context"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/dvloznov/receipt-tracker/internal/domain"
)

func record(name, amount, date, category string) domain.Record {
	d, err := civil.ParseDate(date)
	if err != nil {
		panic(err)
	}
	return domain.Record{
		Name:     name,
		Amount:   decimal.RequireFromString(amount),
		Date:     d,
		Category: category,
	}
}

func TestMemoryStore_CreateListDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	id, err := s.Create(ctx, "alice", record("Coffee", "120", "2025-03-05", "Food & Drink"))
	require.NoError(t, err)
	require.NotEmpty(t, id)

	records, err := s.List(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, id, records[0].ID)
	require.Equal(t, "Coffee", records[0].Name)

	require.NoError(t, s.Delete(ctx, "alice", id))

	records, err = s.List(ctx, "alice")
	require.NoError(t, err)
	require.Empty(t, records)
}

func TestMemoryStore_ListOrderedDateDescending(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.Create(ctx, "alice", record("Oldest", "1", "2025-03-01", "Other"))
	require.NoError(t, err)
	_, err = s.Create(ctx, "alice", record("Newest", "2", "2025-03-09", "Other"))
	require.NoError(t, err)
	_, err = s.Create(ctx, "alice", record("Middle", "3", "2025-03-05", "Other"))
	require.NoError(t, err)

	records, err := s.List(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, []string{"Newest", "Middle", "Oldest"},
		[]string{records[0].Name, records[1].Name, records[2].Name})
}

func TestMemoryStore_Update_FullOverwrite(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	id, err := s.Create(ctx, "alice", record("Coffee", "120", "2025-03-05", "Food & Drink"))
	require.NoError(t, err)

	require.NoError(t, s.Update(ctx, "alice", id, record("Nice coffee", "150", "2025-03-06", "Food & Drink")))

	records, err := s.List(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, id, records[0].ID, "identity is immutable across edits")
	require.Equal(t, "Nice coffee", records[0].Name)
	require.True(t, records[0].Amount.Equal(decimal.NewFromInt(150)))

	require.ErrorIs(t, s.Update(ctx, "alice", "missing", record("X", "1", "2025-03-06", "Other")), ErrNotFound)
}

func TestMemoryStore_Unauthenticated(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	rec := record("Coffee", "120", "2025-03-05", "Food & Drink")

	_, err := s.Create(ctx, "", rec)
	require.ErrorIs(t, err, ErrUnauthenticated)

	_, err = s.List(ctx, "")
	require.ErrorIs(t, err, ErrUnauthenticated)

	require.ErrorIs(t, s.Delete(ctx, "", "x"), ErrUnauthenticated)
	require.ErrorIs(t, s.Update(ctx, "", "x", rec), ErrUnauthenticated)

	_, err = s.Subscribe(ctx, "", func([]domain.SavedRecord) {})
	require.ErrorIs(t, err, ErrUnauthenticated)
}

func TestMemoryStore_Subscribe_ReplacementSnapshots(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.Create(ctx, "alice", record("Existing", "10", "2025-03-01", "Other"))
	require.NoError(t, err)

	var deliveries [][]domain.SavedRecord
	stop, err := s.Subscribe(ctx, "alice", func(recs []domain.SavedRecord) {
		deliveries = append(deliveries, recs)
	})
	require.NoError(t, err)
	defer stop()

	// Initial snapshot arrives synchronously on subscribe.
	require.Len(t, deliveries, 1)
	require.Len(t, deliveries[0], 1)

	id, err := s.Create(ctx, "alice", record("Coffee", "120", "2025-03-05", "Food & Drink"))
	require.NoError(t, err)
	require.Len(t, deliveries, 2)
	require.Len(t, deliveries[1], 2, "each delivery is the complete set, not a delta")
	require.Equal(t, id, deliveries[1][0].ID, "newest date first")

	require.NoError(t, s.Delete(ctx, "alice", id))
	require.Len(t, deliveries, 3)
	require.Len(t, deliveries[2], 1)
	for _, rec := range deliveries[2] {
		require.NotEqual(t, id, rec.ID, "deleted record absent from next snapshot")
	}
}

func TestMemoryStore_Subscribe_StopEndsDeliveries(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	var count int
	stop, err := s.Subscribe(ctx, "alice", func([]domain.SavedRecord) { count++ })
	require.NoError(t, err)
	require.Equal(t, 1, count)

	stop()
	stop() // safe to call twice

	_, err = s.Create(ctx, "alice", record("Coffee", "120", "2025-03-05", "Food & Drink"))
	require.NoError(t, err)
	require.Equal(t, 1, count, "no deliveries after stop")
}

func TestMemoryStore_UserIsolation(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.Create(ctx, "alice", record("Coffee", "120", "2025-03-05", "Food & Drink"))
	require.NoError(t, err)

	records, err := s.List(ctx, "bob")
	require.NoError(t, err)
	require.Empty(t, records, "no cross-user read path")

	var bobDeliveries int
	stop, err := s.Subscribe(ctx, "bob", func([]domain.SavedRecord) { bobDeliveries++ })
	require.NoError(t, err)
	defer stop()

	_, err = s.Create(ctx, "alice", record("Tea", "80", "2025-03-06", "Food & Drink"))
	require.NoError(t, err)
	require.Equal(t, 1, bobDeliveries, "alice's writes must not notify bob")
}
