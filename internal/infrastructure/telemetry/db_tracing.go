package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig holds configuration for database tracing.
type DBTracingConfig struct {
	Enabled         bool
	LogFullSQL      bool // include query variables in spans
	SlowQueryThresh time.Duration
	DBSystem        string // "postgresql" or "sqlite"
	// TracerProvider overrides the global provider; tests set it.
	TracerProvider trace.TracerProvider
}

type queryStartKey struct{}

// RegisterDBTracing installs otelgorm on db and flags slow statements on their spans.
func RegisterDBTracing(db *gorm.DB, cfg DBTracingConfig, logger *zap.Logger) error {
	if !cfg.Enabled {
		return nil
	}

	opts := []otelgorm.Option{
		otelgorm.WithDBName(cfg.DBSystem),
		otelgorm.WithoutMetrics(), // pool statistics come from RegisterDBPoolMetrics
	}
	if !cfg.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if cfg.TracerProvider != nil {
		opts = append(opts, otelgorm.WithTracerProvider(cfg.TracerProvider))
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}
	if cfg.SlowQueryThresh > 0 {
		if err := registerSlowQueryCallbacks(db, cfg.SlowQueryThresh); err != nil {
			return err
		}
	}

	logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", cfg.LogFullSQL),
		zap.Duration("slow_query_threshold", cfg.SlowQueryThresh),
		zap.String("db_system", cfg.DBSystem),
	)
	return nil
}

// registerSlowQueryCallbacks must run after otelgorm is installed: the after
// hooks are ordered ahead of the otel:after:* hooks that end the span.
func registerSlowQueryCallbacks(db *gorm.DB, threshold time.Duration) error {
	before := func(tx *gorm.DB) {
		if tx.Statement.Context != nil {
			tx.Statement.Context = context.WithValue(tx.Statement.Context, queryStartKey{}, time.Now())
		}
	}
	after := func(tx *gorm.DB) {
		ctx := tx.Statement.Context
		if ctx == nil {
			return
		}
		span := trace.SpanFromContext(ctx)
		if !span.IsRecording() {
			return
		}
		if tx.Statement.Table != "" {
			span.SetAttributes(attribute.String("db.sql.table", tx.Statement.Table))
		}
		if tx.Error != nil && !errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			RecordError(span, tx.Error)
		}
		start, ok := ctx.Value(queryStartKey{}).(time.Time)
		if !ok {
			return
		}
		if elapsed := time.Since(start); elapsed > threshold {
			span.SetAttributes(attribute.Bool("db.slow_query", true))
			span.AddEvent("slow_query", trace.WithAttributes(
				attribute.Int64("duration_ms", elapsed.Milliseconds()),
				attribute.Int64("threshold_ms", threshold.Milliseconds()),
			))
		}
	}

	cb := db.Callback()
	registrations := []func() error{
		func() error { return cb.Create().Before("gorm:create").Register("ledger:slow_before_create", before) },
		func() error {
			return cb.Create().After("gorm:create").Before("otel:after:create").Register("ledger:slow_after_create", after)
		},
		func() error { return cb.Query().Before("gorm:query").Register("ledger:slow_before_query", before) },
		func() error {
			return cb.Query().After("gorm:query").Before("otel:after:select").Register("ledger:slow_after_query", after)
		},
		func() error { return cb.Update().Before("gorm:update").Register("ledger:slow_before_update", before) },
		func() error {
			return cb.Update().After("gorm:update").Before("otel:after:update").Register("ledger:slow_after_update", after)
		},
		func() error { return cb.Delete().Before("gorm:delete").Register("ledger:slow_before_delete", before) },
		func() error {
			return cb.Delete().After("gorm:delete").Before("otel:after:delete").Register("ledger:slow_after_delete", after)
		},
		func() error { return cb.Row().Before("gorm:row").Register("ledger:slow_before_row", before) },
		func() error {
			return cb.Row().After("gorm:row").Before("otel:after:row").Register("ledger:slow_after_row", after)
		},
		func() error { return cb.Raw().Before("gorm:raw").Register("ledger:slow_before_raw", before) },
		func() error {
			return cb.Raw().After("gorm:raw").Before("otel:after:raw").Register("ledger:slow_after_raw", after)
		},
	}
	for _, register := range registrations {
		if err := register(); err != nil {
			return err
		}
	}
	return nil
}
