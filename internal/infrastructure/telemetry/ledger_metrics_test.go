package telemetry

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/erp/ledger/internal/domain/inventory"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	_ "gorm.io/driver/sqlite"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := map[string]metricdata.Metrics{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func sumFor(t *testing.T, m metricdata.Metrics, attrs ...attribute.KeyValue) int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is not an int64 sum", m.Name)
	want := attribute.NewSet(attrs...)
	for _, dp := range sum.DataPoints {
		if dp.Attributes.Equals(&want) {
			return dp.Value
		}
	}
	return 0
}

func TestLedgerMetrics(t *testing.T) {
	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	meter := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter(TracerName)

	lm, err := NewLedgerMetrics(meter)
	require.NoError(t, err)

	lm.RecordMovements(ctx, []inventory.Movement{
		{Type: inventory.MovementTypeOut, SourceType: inventory.SourceTypeSale, Location: "MAIN", Quantity: 5, BalanceBefore: 10, BalanceAfter: 5},
		{Type: inventory.MovementTypeOut, SourceType: inventory.SourceTypeSale, Location: "MAIN", Quantity: 2, BalanceBefore: 5, BalanceAfter: 3},
		{Type: inventory.MovementTypeIn, SourceType: inventory.SourceTypePurchase, Location: "MAIN", Quantity: 10, BalanceBefore: 0, BalanceAfter: 10},
		{Type: inventory.MovementTypeAdjustment, SourceType: inventory.SourceTypeManual, Location: "MAIN", Quantity: 4, BalanceBefore: 10, BalanceAfter: 6},
		{Type: inventory.MovementTypeAdjustment, SourceType: inventory.SourceTypeManual, Location: "MAIN", Quantity: 1, BalanceBefore: 6, BalanceAfter: 7},
	})
	lm.RecordRejected(ctx, "ledger.allocate", shared.NewDomainErrorf(shared.CodeInsufficientStock, "short"))
	lm.RecordRejected(ctx, "ledger.allocate", errors.New("connection reset"))

	metrics := collect(t, reader)

	outSale := []attribute.KeyValue{
		AttrMovementType.String("OUT"),
		AttrDirection.String("out"),
		AttrSourceType.String("SALE"),
		AttrLocation.String("MAIN"),
	}
	assert.Equal(t, int64(2), sumFor(t, metrics["ledger_movements_total"], outSale...))
	assert.Equal(t, int64(7), sumFor(t, metrics["ledger_movement_units_total"], outSale...))

	adjusted := func(direction string) []attribute.KeyValue {
		return []attribute.KeyValue{
			AttrMovementType.String("ADJUSTMENT"),
			AttrDirection.String(direction),
			AttrSourceType.String("MANUAL"),
			AttrLocation.String("MAIN"),
		}
	}
	assert.Equal(t, int64(4), sumFor(t, metrics["ledger_movement_units_total"], adjusted("out")...))
	assert.Equal(t, int64(1), sumFor(t, metrics["ledger_movement_units_total"], adjusted("in")...))

	assert.Equal(t, int64(1), sumFor(t, metrics["ledger_operations_rejected_total"],
		AttrOperation.String("ledger.allocate"), AttrErrorCode.String(shared.CodeInsufficientStock)))
	assert.Equal(t, int64(1), sumFor(t, metrics["ledger_operations_rejected_total"],
		AttrOperation.String("ledger.allocate"), AttrErrorCode.String("INTERNAL")))
}

func TestRegisterDBPoolMetrics(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	defer db.Close()
	db.SetMaxOpenConns(3)

	reader := sdkmetric.NewManualReader()
	meter := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter(TracerName)

	reg, err := RegisterDBPoolMetrics(meter, db)
	require.NoError(t, err)
	defer func() { _ = reg.Unregister() }()

	metrics := collect(t, reader)
	gauge, ok := metrics["db_pool_connections_max"].Data.(metricdata.Gauge[int64])
	require.True(t, ok)
	require.Len(t, gauge.DataPoints, 1)
	assert.Equal(t, int64(3), gauge.DataPoints[0].Value)
	assert.Contains(t, metrics, "db_pool_connections")
}
