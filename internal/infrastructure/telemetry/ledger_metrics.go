package telemetry

import (
	"context"
	"errors"
	"fmt"

	"github.com/erp/ledger/internal/domain/inventory"
	"github.com/erp/ledger/internal/domain/shared"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys
var (
	AttrMovementType = attribute.Key("movement.type")
	AttrSourceType   = attribute.Key("movement.source_type")
	AttrDirection    = attribute.Key("movement.direction")
	AttrLocation     = attribute.Key("location")
	AttrOperation    = attribute.Key("operation")
	AttrErrorCode    = attribute.Key("error.code")
)

// LedgerMetrics counts committed movements and rejected operations.
type LedgerMetrics struct {
	movements metric.Int64Counter
	units     metric.Int64Counter
	rejected  metric.Int64Counter
}

// NewLedgerMetrics creates the ledger instruments on meter.
func NewLedgerMetrics(meter metric.Meter) (*LedgerMetrics, error) {
	movements, err := meter.Int64Counter("ledger_movements_total",
		metric.WithDescription("Committed stock movements"),
		metric.WithUnit("{movement}"))
	if err != nil {
		return nil, fmt.Errorf("failed to create counter ledger_movements_total: %w", err)
	}
	units, err := meter.Int64Counter("ledger_movement_units_total",
		metric.WithDescription("Units moved by committed stock movements"),
		metric.WithUnit("{unit}"))
	if err != nil {
		return nil, fmt.Errorf("failed to create counter ledger_movement_units_total: %w", err)
	}
	rejected, err := meter.Int64Counter("ledger_operations_rejected_total",
		metric.WithDescription("Ledger operations rolled back with an error"),
		metric.WithUnit("{operation}"))
	if err != nil {
		return nil, fmt.Errorf("failed to create counter ledger_operations_rejected_total: %w", err)
	}
	return &LedgerMetrics{movements: movements, units: units, rejected: rejected}, nil
}

// RecordMovements counts each movement by type, direction, source and location.
// Direction separates credits from debits for types that move either way.
func (m *LedgerMetrics) RecordMovements(ctx context.Context, movements []inventory.Movement) {
	for _, mv := range movements {
		direction := "out"
		if mv.IsCredit() {
			direction = "in"
		}
		opt := metric.WithAttributes(
			AttrMovementType.String(string(mv.Type)),
			AttrDirection.String(direction),
			AttrSourceType.String(string(mv.SourceType)),
			AttrLocation.String(mv.Location),
		)
		m.movements.Add(ctx, 1, opt)
		m.units.Add(ctx, mv.Quantity, opt)
	}
}

// RecordRejected counts a failed operation under its domain error code,
// or "INTERNAL" for infrastructure failures.
func (m *LedgerMetrics) RecordRejected(ctx context.Context, operation string, err error) {
	code := "INTERNAL"
	var de *shared.DomainError
	if errors.As(err, &de) {
		code = de.Code
	}
	m.rejected.Add(ctx, 1, metric.WithAttributes(
		AttrOperation.String(operation),
		AttrErrorCode.String(code),
	))
}
