package telemetry

import (
	"fmt"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const startedAtKey = "ledger:query_started_at"

// DBTracingConfig controls the GORM tracing plugin
type DBTracingConfig struct {
	Enabled         bool
	LogFullSQL      bool // keep query variables in spans; development only
	SlowQueryThresh time.Duration
	DBSystem        string
}

// RegisterDBTracing installs otelgorm on db and marks spans of statements
// slower than the configured threshold.
func RegisterDBTracing(db *gorm.DB, cfg DBTracingConfig, logger *zap.Logger) error {
	if !cfg.Enabled {
		return nil
	}
	if cfg.DBSystem == "" {
		cfg.DBSystem = "postgresql"
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(cfg.DBSystem)}
	if !cfg.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return fmt.Errorf("failed to register otelgorm plugin: %w", err)
	}

	if cfg.SlowQueryThresh > 0 {
		if err := registerSlowQueryCallbacks(db, cfg.SlowQueryThresh, logger); err != nil {
			return err
		}
	}

	logger.Info("database tracing enabled",
		zap.Bool("log_full_sql", cfg.LogFullSQL),
		zap.Duration("slow_query_threshold", cfg.SlowQueryThresh),
	)
	return nil
}

func registerSlowQueryCallbacks(db *gorm.DB, threshold time.Duration, logger *zap.Logger) error {
	start := func(tx *gorm.DB) { tx.InstanceSet(startedAtKey, time.Now()) }
	finish := func(tx *gorm.DB) {
		v, ok := tx.InstanceGet(startedAtKey)
		if !ok {
			return
		}
		elapsed := time.Since(v.(time.Time))
		if elapsed < threshold {
			return
		}
		span := trace.SpanFromContext(tx.Statement.Context)
		span.SetAttributes(
			attribute.Bool("db.slow_query", true),
			attribute.Int64("db.duration_ms", elapsed.Milliseconds()),
			attribute.String("db.table", tx.Statement.Table),
		)
		logger.Warn("slow query",
			zap.String("table", tx.Statement.Table),
			zap.Duration("elapsed", elapsed),
			zap.Int64("rows", tx.Statement.RowsAffected),
		)
	}

	cb := db.Callback()
	steps := []struct {
		name   string
		before func() error
		after  func() error
	}{
		{"create",
			func() error { return cb.Create().Before("gorm:create").Register("ledger:slow_before_create", start) },
			func() error { return cb.Create().After("gorm:create").Register("ledger:slow_after_create", finish) }},
		{"query",
			func() error { return cb.Query().Before("gorm:query").Register("ledger:slow_before_query", start) },
			func() error { return cb.Query().After("gorm:query").Register("ledger:slow_after_query", finish) }},
		{"update",
			func() error { return cb.Update().Before("gorm:update").Register("ledger:slow_before_update", start) },
			func() error { return cb.Update().After("gorm:update").Register("ledger:slow_after_update", finish) }},
		{"delete",
			func() error { return cb.Delete().Before("gorm:delete").Register("ledger:slow_before_delete", start) },
			func() error { return cb.Delete().After("gorm:delete").Register("ledger:slow_after_delete", finish) }},
		{"row",
			func() error { return cb.Row().Before("gorm:row").Register("ledger:slow_before_row", start) },
			func() error { return cb.Row().After("gorm:row").Register("ledger:slow_after_row", finish) }},
		{"raw",
			func() error { return cb.Raw().Before("gorm:raw").Register("ledger:slow_before_raw", start) },
			func() error { return cb.Raw().After("gorm:raw").Register("ledger:slow_after_raw", finish) }},
	}
	for _, step := range steps {
		if err := step.before(); err != nil {
			return fmt.Errorf("failed to register slow query %s callback: %w", step.name, err)
		}
		if err := step.after(); err != nil {
			return fmt.Errorf("failed to register slow query %s callback: %w", step.name, err)
		}
	}
	return nil
}
