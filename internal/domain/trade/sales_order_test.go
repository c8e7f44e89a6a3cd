package trade

import (
	"strings"
	"testing"
	"time"

	"github.com/erp/ledger/internal/domain/inventory"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)

func createTestSale(t *testing.T) *SalesOrder {
	t.Helper()
	order, err := NewSalesOrder("Acme Foods", "INV-77", "", "clerk@example.com", testNow)
	require.NoError(t, err)
	return order
}

func TestNewSalesOrder(t *testing.T) {
	order := createTestSale(t)
	assert.Equal(t, "Acme Foods", order.Customer)
	assert.Equal(t, inventory.DefaultLocation, order.Location)
	assert.Equal(t, testNow, order.SoldAt)
	assert.Equal(t, 1, order.Version)

	tests := []struct {
		name     string
		customer string
		ref      string
	}{
		{"blank customer", "  ", "R"},
		{"long customer", strings.Repeat("c", MaxCustomerLength+1), "R"},
		{"long reference", "Acme", strings.Repeat("r", MaxReferenceLength+1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSalesOrder(tt.customer, tt.ref, "MAIN", "", testNow)
			assert.ErrorIs(t, err, shared.ErrValidation)
		})
	}
}

func TestSalesOrder_AddLine(t *testing.T) {
	order := createTestSale(t)
	productID := uuid.New()

	line, err := order.AddLine(productID, 3, decimal.NewFromFloat(2.5), testNow)
	require.NoError(t, err)
	assert.Equal(t, order.ID, line.SalesOrderID)
	assert.True(t, decimal.NewFromFloat(7.5).Equal(line.Amount()))

	_, err = order.AddLine(productID, 0, decimal.Zero, testNow)
	assert.ErrorIs(t, err, shared.ErrValidation)
	_, err = order.AddLine(productID, 1, decimal.NewFromInt(-1), testNow)
	assert.ErrorIs(t, err, shared.ErrValidation)
	_, err = order.AddLine(uuid.Nil, 1, decimal.Zero, testNow)
	assert.ErrorIs(t, err, shared.ErrValidation)

	_, err = order.AddLine(productID, 2, decimal.NewFromInt(1), testNow)
	require.NoError(t, err)
	assert.Len(t, order.LineIDs(), 2)
	assert.True(t, decimal.NewFromFloat(9.5).Equal(order.TotalAmount()))
}

func TestSalesOrderLine_Allocated(t *testing.T) {
	order := createTestSale(t)
	line, err := order.AddLine(uuid.New(), 7, decimal.Zero, testNow)
	require.NoError(t, err)
	line.Deductions = []inventory.Deduction{
		{ID: uuid.New(), SalesOrderLineID: line.ID, BatchID: uuid.New(), Quantity: 5},
		{ID: uuid.New(), SalesOrderLineID: line.ID, BatchID: uuid.New(), Quantity: 2},
	}

	assert.Equal(t, int64(7), order.Lines[0].Allocated())
}

func TestSalesOrder_Revise(t *testing.T) {
	order := createTestSale(t)
	_, err := order.AddLine(uuid.New(), 1, decimal.Zero, testNow)
	require.NoError(t, err)

	later := testNow.Add(time.Hour)
	require.NoError(t, order.Revise("Beta Ltd", "INV-78", "SHOP", "boss", later))

	assert.Equal(t, "Beta Ltd", order.Customer)
	assert.Equal(t, "SHOP", order.Location)
	assert.Empty(t, order.Lines)
	assert.Equal(t, 2, order.Version)
	assert.Equal(t, later, order.UpdatedAt)
	assert.Equal(t, testNow, order.SoldAt)

	assert.ErrorIs(t, order.Revise("", "", "", "", later), shared.ErrValidation)
}
