package inventory

import (
	"testing"
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ParseExpiryDate(s)
	require.NoError(t, err)
	return d
}

func TestNewBatch(t *testing.T) {
	productID := uuid.New()

	t.Run("creates batch with trimmed number and date-only expiry", func(t *testing.T) {
		expiry := time.Date(2025, 6, 30, 17, 45, 0, 0, time.UTC)
		b, err := NewBatch(productID, "  LOT-01 ", expiry, decimal.NewFromFloat(2.5), 10, testNow)

		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, b.ID)
		assert.Equal(t, productID, b.ProductID)
		assert.Equal(t, "LOT-01", b.BatchNumber)
		assert.Equal(t, time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC), b.ExpiryDate)
		assert.True(t, b.UnitCost.Equal(decimal.NewFromFloat(2.5)))
		assert.Equal(t, int64(10), b.QuantityReceived)
		assert.Equal(t, testNow, b.CreatedAt)
	})

	t.Run("allows zero received quantity", func(t *testing.T) {
		b, err := NewBatch(productID, "EMPTY", testNow, decimal.Zero, 0, testNow)
		require.NoError(t, err)
		assert.Equal(t, int64(0), b.QuantityReceived)
	})

	tests := []struct {
		name      string
		productID uuid.UUID
		number    string
		expiry    time.Time
		cost      decimal.Decimal
		qty       int64
	}{
		{"missing product", uuid.Nil, "A", testNow, decimal.Zero, 1},
		{"blank number", productID, "   ", testNow, decimal.Zero, 1},
		{"number too long", productID, string(make([]byte, MaxBatchNumberLength+1)), testNow, decimal.Zero, 1},
		{"missing expiry", productID, "A", time.Time{}, decimal.Zero, 1},
		{"negative cost", productID, "A", testNow, decimal.NewFromInt(-1), 1},
		{"negative quantity", productID, "A", testNow, decimal.Zero, -1},
	}
	for _, tt := range tests {
		t.Run("rejects "+tt.name, func(t *testing.T) {
			_, err := NewBatch(tt.productID, tt.number, tt.expiry, tt.cost, tt.qty, testNow)
			require.Error(t, err)
			assert.ErrorIs(t, err, shared.ErrValidation)
		})
	}
}

func TestParseExpiryDate(t *testing.T) {
	d, err := ParseExpiryDate("2025-02-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), d)

	for _, bad := range []string{"", "2025/02/01", "01-02-2025", "2025-13-01", "tomorrow"} {
		_, err := ParseExpiryDate(bad)
		assert.ErrorIs(t, err, shared.ErrValidation, bad)
	}
}

func TestBatch_Rename(t *testing.T) {
	b, err := NewBatch(uuid.New(), "lot-a", testNow, decimal.Zero, 1, testNow)
	require.NoError(t, err)

	t.Run("case-insensitive equal label is a no-op", func(t *testing.T) {
		changed, err := b.Rename(" LOT-A ", testNow.Add(time.Hour))
		require.NoError(t, err)
		assert.False(t, changed)
		assert.Equal(t, "lot-a", b.BatchNumber)
		assert.Equal(t, testNow, b.UpdatedAt)
	})

	t.Run("new label is applied", func(t *testing.T) {
		later := testNow.Add(time.Hour)
		changed, err := b.Rename("LOT-B", later)
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, "LOT-B", b.BatchNumber)
		assert.Equal(t, later, b.UpdatedAt)
	})

	t.Run("blank label is rejected", func(t *testing.T) {
		_, err := b.Rename("", testNow)
		assert.ErrorIs(t, err, shared.ErrValidation)
	})
}

func TestBatch_Restate(t *testing.T) {
	b, err := NewBatch(uuid.New(), "lot-a", testNow, decimal.NewFromInt(2), 10, testNow)
	require.NoError(t, err)

	changed, err := b.Restate(10, testNow.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, testNow, b.UpdatedAt)

	later := testNow.Add(2 * time.Hour)
	changed, err = b.Restate(6, later)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, int64(6), b.QuantityReceived)
	assert.Equal(t, later, b.UpdatedAt)
	assert.True(t, decimal.NewFromInt(2).Equal(b.UnitCost))

	_, err = b.Restate(-1, later)
	assert.ErrorIs(t, err, shared.ErrValidation)
	assert.Equal(t, int64(6), b.QuantityReceived)
}

func TestBatchNumberKey(t *testing.T) {
	assert.Equal(t, BatchNumberKey("Lot-7"), BatchNumberKey(" LOT-7"))
	assert.Equal(t, BatchNumberKey("LOT-Ä"), BatchNumberKey("lot-ä"))
	assert.NotEqual(t, BatchNumberKey("LOT-7"), BatchNumberKey("LOT-8"))
}

func TestBatch_IsExpired(t *testing.T) {
	b, err := NewBatch(uuid.New(), "A", mustDate(t, "2025-01-15"), decimal.Zero, 1, testNow)
	require.NoError(t, err)

	assert.False(t, b.IsExpired(mustDate(t, "2025-01-14")))
	assert.False(t, b.IsExpired(time.Date(2025, 1, 15, 23, 59, 0, 0, time.UTC)), "expiring today is still sellable")
	assert.True(t, b.IsExpired(mustDate(t, "2025-01-16")))
}
