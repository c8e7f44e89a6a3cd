package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/erp/ledger/internal/domain/inventory"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/infrastructure/logger"
	"github.com/erp/ledger/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Metrics receives ledger activity after a unit of work has committed
type Metrics interface {
	RecordMovements(ctx context.Context, movements []inventory.Movement)
	RecordRejected(ctx context.Context, operation string, err error)
}

type noopMetrics struct{}

func (noopMetrics) RecordMovements(context.Context, []inventory.Movement) {}
func (noopMetrics) RecordRejected(context.Context, string, error)         {}

// UnitOfWork runs one ledger use case inside one transaction, with tracing,
// logging and metrics around it.
type UnitOfWork struct {
	scope   TransactionScope
	cfg     EngineConfig
	metrics Metrics
	log     *zap.Logger
}

// NewUnitOfWork creates a new UnitOfWork
func NewUnitOfWork(scope TransactionScope, cfg EngineConfig, log *zap.Logger) *UnitOfWork {
	if log == nil {
		log = zap.NewNop()
	}
	return &UnitOfWork{scope: scope, cfg: cfg, metrics: noopMetrics{}, log: log}
}

// SetMetrics sets the recorder notified after each unit of work
func (u *UnitOfWork) SetMetrics(m Metrics) {
	if m != nil {
		u.metrics = m
	}
}

// Config returns the engine settings
func (u *UnitOfWork) Config() EngineConfig {
	return u.cfg
}

// Now returns the current instant from the configured clock
func (u *UnitOfWork) Now() time.Time {
	return u.cfg.now()
}

// Run executes fn in a transaction with a fresh Engine acting for actor.
// Any error rolls back every write made through the engine or repos.
func (u *UnitOfWork) Run(ctx context.Context, service, operation, actor string, fn func(ctx context.Context, e *Engine, repos TransactionalRepositories) error) error {
	ctx, span := telemetry.StartServiceSpan(ctx, service, operation, telemetry.SpanAttrActor, actor)
	defer span.End()

	var engine *Engine
	err := u.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		engine = NewEngine(repos, u.cfg, actor)
		return fn(ctx, engine, repos)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		u.metrics.RecordRejected(ctx, service+"."+operation, err)
		u.logFailure(ctx, service, operation, actor, err)
		return err
	}

	movements := engine.Movements()
	telemetry.SetAttribute(span, telemetry.SpanAttrMovements, len(movements))
	if len(movements) > 0 {
		u.metrics.RecordMovements(ctx, movements)
		logger.WithLogger(ctx, u.log).Info("ledger updated",
			zap.String("operation", service+"."+operation),
			zap.String("actor", actor),
			zap.Int("movements", len(movements)))
	}
	return nil
}

func (u *UnitOfWork) logFailure(ctx context.Context, service, operation, actor string, err error) {
	l := logger.WithLogger(ctx, u.log)
	fields := []zap.Field{
		zap.String("operation", service+"."+operation),
		zap.String("actor", actor),
		zap.Error(err),
	}
	var de *shared.DomainError
	if errors.As(err, &de) {
		l.Warn("ledger operation rejected", append(fields, zap.String("code", de.Code))...)
		return
	}
	l.Error("ledger operation failed", fields...)
}
